// SPDX-FileCopyrightText: 2026 The dcpdecode Authors
// SPDX-License-Identifier: GPL-2.0-or-later

package dcpdecode

import (
	"strconv"
	"strings"
	"time"
)

// Flag bits carried by every sample.
type Flags uint32

const (
	FlagMissing Flags = 1 << iota
	FlagError
	FlagRedundant
	FlagLimitViolation
)

func (f Flags) Has(bit Flags) bool {
	return f&bit != 0
}

// String gives a short code per bit, e.g. "M", "E", "R", "L", or "" for none.
func (f Flags) String() string {
	var sb strings.Builder

	if f.Has(FlagMissing) {
		sb.WriteByte('M')
	}
	if f.Has(FlagError) {
		sb.WriteByte('E')
	}
	if f.Has(FlagRedundant) {
		sb.WriteByte('R')
	}
	if f.Has(FlagLimitViolation) {
		sb.WriteByte('L')
	}

	return sb.String()
}

type VariableKind int

const (
	KindNumber VariableKind = iota
	KindString
)

// Variable is a numeric or string value plus flags.
type Variable struct {
	Kind  VariableKind
	Num   float64
	Str   string
	Flags Flags
}

func NumberVariable(x float64) Variable {
	return Variable{Kind: KindNumber, Num: x}
}

func StringVariable(s string) Variable {
	return Variable{Kind: KindString, Str: s}
}

// MissingVariable is an empty sample flagged as missing.
func MissingVariable() Variable {
	return Variable{Kind: KindString, Flags: FlagMissing}
}

// ErrorVariable keeps the bad text and flags it.
func ErrorVariable(text string) Variable {
	return Variable{Kind: KindString, Str: text, Flags: FlagError}
}

func (v Variable) IsMissing() bool {
	return v.Flags.Has(FlagMissing)
}

func (v Variable) IsError() bool {
	return v.Flags.Has(FlagError)
}

// WithFlags returns a copy with extra bits set.
func (v Variable) WithFlags(f Flags) Variable {
	v.Flags |= f
	return v
}

func (v Variable) String() string {
	switch {
	case v.IsMissing():
		return "MISSING"
	case v.Kind == KindNumber:
		return strconv.FormatFloat(v.Num, 'f', -1, 64)
	default:
		return v.Str
	}
}

// TimedVariable is a sample as stored in a time series.
type TimedVariable struct {
	Variable
	Time time.Time
	Line int // Source line, 0 if the value was given an explicit time.
}
