// SPDX-FileCopyrightText: 2026 The dcpdecode Authors
// SPDX-License-Identifier: GPL-2.0-or-later

package dcpdecode

/*------------------------------------------------------------------
 *
 * Purpose:	Error taxonomy and the control signal returned by every
 *		operation and function.
 *
 * Description:	Three kinds of things can happen when a step runs:
 *
 *		Continue	- go on to the next step in the statement.
 *		JumpTo(label)	- a scan failed; resume at another statement.
 *		Fatal(err)	- abort the message, keep the samples so far.
 *
 *		A scripted branch is never an error value, so callers
 *		can't confuse it with end of data or a broken script.
 *
 *------------------------------------------------------------------*/

import (
	"errors"
	"fmt"
)

// ErrEndOfData is returned when the cursor is asked to move or read past
// the end of the message buffer.
var ErrEndOfData = errors.New("end of data")

// ScriptError reports a structural problem: moving before the start of
// the buffer, jumping to a label that doesn't exist, and the like.
type ScriptError struct {
	Msg string
}

func (e *ScriptError) Error() string {
	return "script error: " + e.Msg
}

func scriptErrorf(format string, a ...any) *ScriptError {
	return &ScriptError{Msg: fmt.Sprintf(format, a...)}
}

// EndlessLoopError is raised by the loop guard when a statement is about
// to run again at a position where it already ran.
type EndlessLoopError struct {
	Statement int
	Label     string
	Position  int
}

func (e *EndlessLoopError) Error() string {
	if e.Label != "" {
		return fmt.Sprintf("endless loop detected at format label '%s' (statement %d) at position %d",
			e.Label, e.Statement, e.Position)
	}

	return fmt.Sprintf("endless loop detected at statement %d at position %d", e.Statement, e.Position)
}

// DecoderError is a fatal condition raised by a function, e.g. a NOS
// message that doesn't start with 'P'.
type DecoderError struct {
	Function string
	Msg      string
}

func (e *DecoderError) Error() string {
	return e.Function + ": " + e.Msg
}

// ArgumentError means a function's script arguments could not be parsed.
// It is fatal to compiling the script, not to any message.
type ArgumentError struct {
	Function string
	Args     string
	Err      error
}

func (e *ArgumentError) Error() string {
	return fmt.Sprintf("%s: bad arguments '%s': %s", e.Function, e.Args, e.Err)
}

func (e *ArgumentError) Unwrap() error {
	return e.Err
}

// FieldParseError is a local value error.  It is always degraded to a
// flagged sample and never escapes a function.
type FieldParseError struct {
	Field string
	Msg   string
}

func (e *FieldParseError) Error() string {
	return fmt.Sprintf("can't parse field '%s': %s", e.Field, e.Msg)
}

type resultKind int

const (
	resultContinue resultKind = iota
	resultJump
	resultFatal
)

// Result is what a step hands back to the statement driver.
type Result struct {
	kind  resultKind
	label string
	err   error
}

// Continue means carry on with the next step.
func Continue() Result {
	return Result{kind: resultContinue}
}

// JumpTo switches execution to the statement with the given label.
func JumpTo(label string) Result {
	return Result{kind: resultJump, label: label}
}

// Fatal aborts the current message.  A nil error is treated as Continue.
func Fatal(err error) Result {
	if err == nil {
		return Continue()
	}

	return Result{kind: resultFatal, err: err}
}

func (r Result) IsContinue() bool {
	return r.kind == resultContinue
}

// Jump reports the target label if this result is a branch.
func (r Result) Jump() (string, bool) {
	return r.label, r.kind == resultJump
}

// Err is the fatal error, or nil.
func (r Result) Err() error {
	if r.kind != resultFatal {
		return nil
	}

	return r.err
}

func (r Result) String() string {
	switch r.kind {
	case resultJump:
		return "JumpTo(" + r.label + ")"
	case resultFatal:
		return "Fatal(" + r.err.Error() + ")"
	default:
		return "Continue"
	}
}
