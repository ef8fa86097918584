// SPDX-FileCopyrightText: 2026 The dcpdecode Authors
// SPDX-License-Identifier: GPL-2.0-or-later

package dcpdecode

/*------------------------------------------------------------------
 *
 * Purpose:	The built-in script operations.
 *
 * Description:	A format statement is a list of steps.  A step is
 *		either one of the operations here or a function
 *		instance from the registry.
 *
 *		The operations are a closed set; the unexported marker
 *		method keeps anything else from claiming to be one.
 *		Code() is only a label for debug output.
 *
 *------------------------------------------------------------------*/

import (
	"fmt"
	"time"
)

// Step is anything that can appear in a format statement.
type Step interface {
	Execute(c *Cursor, msg *DecodedMessage) Result
	Code() string
}

// Operation is one of Position, Scan, TimeTruncate, Skip, SkipLines.
type Operation interface {
	Step
	operation()
}

// Position moves to column N of the current line.
type Position struct {
	N int
}

func (Position) operation() {}

func (Position) Code() string { return "p" }

func (p Position) Execute(c *Cursor, _ *DecodedMessage) Result {
	return Fatal(c.PositionToColumn(p.N))
}

// Skip moves N characters, backward if negative.
type Skip struct {
	N int
}

func (Skip) operation() {}

func (Skip) Code() string { return "x" }

func (s Skip) Execute(c *Cursor, _ *DecodedMessage) Result {
	return Fatal(c.SkipChars(s.N))
}

// SkipLines moves N lines, backward if negative.
type SkipLines struct {
	N int
}

func (SkipLines) operation() {}

func (SkipLines) Code() string { return "/" }

func (s SkipLines) Execute(c *Cursor, _ *DecodedMessage) Result {
	return Fatal(c.SkipLines(s.N))
}

// ScanPattern selects what a Scan looks for.
type ScanPattern int

const (
	ScanSign ScanPattern = iota
	ScanNumber
	ScanString
	ScanChar
	ScanLetter
	ScanPseudoBinary
)

var scanPatternNames = map[ScanPattern]string{
	ScanSign:         "sign",
	ScanNumber:       "number",
	ScanString:       "string",
	ScanChar:         "char",
	ScanLetter:       "letter",
	ScanPseudoBinary: "pseudobinary",
}

func (p ScanPattern) String() string {
	if s, ok := scanPatternNames[p]; ok {
		return s
	}

	return fmt.Sprintf("ScanPattern(%d)", int(p))
}

// ParseScanPattern accepts the names above.
func ParseScanPattern(s string) (ScanPattern, error) {
	for p, name := range scanPatternNames {
		if name == s {
			return p, nil
		}
	}

	return 0, fmt.Errorf("unknown scan pattern '%s'", s)
}

/*------------------------------------------------------------------
 *
 * Name:	Scan
 *
 * Purpose:	Look up to N characters ahead for a pattern.
 *
 * Description:	Found: continue with the next step, cursor on the match.
 *		Not found, including running out of data: switch to the
 *		statement labelled FailLabel.  Never fatal.
 *
 *------------------------------------------------------------------*/

type Scan struct {
	N         int
	Pattern   ScanPattern
	Target    string // For ScanString, or one byte for ScanChar.
	FailLabel string
}

func (Scan) operation() {}

func (Scan) Code() string { return "s" }

// Validate checks Target against the pattern.
func (s Scan) Validate() error {
	switch s.Pattern {
	case ScanChar:
		if len(s.Target) != 1 {
			return fmt.Errorf("scan for a character needs exactly one, got '%s'", s.Target)
		}
	case ScanString:
		if s.Target == "" {
			return fmt.Errorf("scan for a string needs a non-empty string")
		}
	case ScanSign, ScanNumber, ScanLetter, ScanPseudoBinary:
	default:
		return fmt.Errorf("unknown scan pattern %d", int(s.Pattern))
	}

	if s.FailLabel == "" {
		return fmt.Errorf("scan needs a label to switch to")
	}

	return nil
}

func (s Scan) Execute(c *Cursor, _ *DecodedMessage) Result {
	var found bool

	switch s.Pattern {
	case ScanSign:
		found = c.ScanSign(s.N)
	case ScanNumber:
		found = c.ScanDigits(s.N)
	case ScanString:
		found = c.ScanString(s.N, s.Target)
	case ScanChar:
		found = len(s.Target) > 0 && c.ScanByte(s.N, s.Target[0])
	case ScanLetter:
		found = c.ScanLetter(s.N)
	case ScanPseudoBinary:
		found = c.ScanPseudoBinary(s.N)
	}

	if found {
		return Continue()
	}

	logger.Debug("Scan failed, switching format", "pattern", s.Pattern, "n", s.N,
		"pos", c.Pos(), "label", s.FailLabel)

	return JumpTo(s.FailLabel)
}

// TruncateUnit for TimeTruncate.
type TruncateUnit int

const (
	TruncateMinute TruncateUnit = iota
	TruncateHour
)

func ParseTruncateUnit(s string) (TruncateUnit, error) {
	switch s {
	case "m", "minute", "minutes":
		return TruncateMinute, nil
	case "h", "hour", "hours":
		return TruncateHour, nil
	default:
		return 0, fmt.Errorf("unknown time truncation unit '%s'", s)
	}
}

/*------------------------------------------------------------------
 *
 * Name:	TimeTruncate
 *
 * Purpose:	Round times down.
 *
 * Description:	First time only, per message: the message time goes
 *		down to the start of its Count minute (or hour) bucket.
 *
 *		Every time: the running data time loses its seconds,
 *		and also its minutes for Hour, or is taken down to a
 *		multiple of Count minutes for Minute with Count > 1.
 *
 *------------------------------------------------------------------*/

type TimeTruncate struct {
	Unit  TruncateUnit
	Count int
}

func (TimeTruncate) operation() {}

func (TimeTruncate) Code() string { return "t" }

func (t TimeTruncate) count() int {
	return max(t.Count, 1)
}

func (t TimeTruncate) bucket(tm time.Time) time.Time {
	var y, mo, d = tm.Date()
	var h, mi, _ = tm.Clock()
	var n = t.count()

	if t.Unit == TruncateHour {
		h -= h % n
		mi = 0
	} else {
		mi -= mi % n
	}

	return time.Date(y, mo, d, h, mi, 0, 0, tm.Location())
}

func (t TimeTruncate) dataTime(tm time.Time) time.Time {
	var y, mo, d = tm.Date()
	var h, mi, _ = tm.Clock()

	if t.Unit == TruncateHour {
		mi = 0
	} else if t.count() > 1 {
		mi -= mi % t.count()
	}

	return time.Date(y, mo, d, h, mi, 0, 0, tm.Location())
}

func (t TimeTruncate) Execute(_ *Cursor, msg *DecodedMessage) Result {
	if msg.TruncateMessageTimeOnce(t.bucket) {
		logger.Debug("Message time truncated", "time", msg.MessageTime())
	}

	msg.SetDataTime(t.dataTime(msg.DataTime()))

	return Continue()
}
