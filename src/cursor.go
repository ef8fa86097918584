// SPDX-FileCopyrightText: 2026 The dcpdecode Authors
// SPDX-License-Identifier: GPL-2.0-or-later

package dcpdecode

/*------------------------------------------------------------------
 *
 * Purpose:	Keep track of where we are while stepping through one
 *		raw message, and provide the primitive check, scan and
 *		field operations used by the script steps.
 *
 * Description:	The cursor owns:
 *
 *		pos		- byte offset, 0 <= pos <= len(data).
 *				  pos == len(data) means "at end of data".
 *
 *		line		- line number, changes only when crossing
 *				  a line feed.
 *
 *		lineStart	- byte offset of the first character of each
 *				  line seen so far, grown lazily as we go.
 *
 *		saved		- a single checkpoint for callers.  The
 *				  "check" primitives never touch it.
 *
 *		CR and LF both end a field and stop a scan.  Only LF
 *		counts as a new line.
 *
 *------------------------------------------------------------------*/

import (
	"bytes"
	"strings"
)

const (
	LF byte = '\n'
	CR byte = '\r'
)

// RawMessage is the immutable input to one decode.
type RawMessage struct {
	Data      []byte
	StartLine int // Line number before the first line.  0 means lines count from 1.
}

// CursorOptions are read once when the cursor is built.
type CursorOptions struct {
	ScanPastEOL bool // Let scan primitives continue across line terminators.
	LoopHistory int  // Capacity of the endless loop guard. 0 means DefaultLoopHistory.
}

type checkpoint struct {
	pos  int
	line int
}

// Cursor walks one raw message.  It is owned by a single decode and is not
// safe for concurrent use.
type Cursor struct {
	raw         *RawMessage
	data        []byte
	pos         int
	line        int
	startLine   int
	lineStart   []int
	saved       checkpoint
	scanPastEOL bool
	guard       *LoopGuard
}

func NewCursor(raw *RawMessage, opts CursorOptions) *Cursor {
	var c = &Cursor{
		raw:         raw,
		data:        raw.Data,
		line:        raw.StartLine,
		startLine:   raw.StartLine,
		lineStart:   []int{0},
		scanPastEOL: opts.ScanPastEOL,
		guard:       NewLoopGuard(opts.LoopHistory),
	}

	c.saved = checkpoint{pos: 0, line: c.line}

	if len(c.data) >= 2 {
		logger.Debug("Cursor created", "length", len(c.data),
			"last2", string(c.data[len(c.data)-2:]))
	}

	return c
}

// Raw returns the message being decoded.
func (c *Cursor) Raw() *RawMessage {
	return c.raw
}

func (c *Cursor) Pos() int {
	return c.pos
}

func (c *Cursor) Len() int {
	return len(c.data)
}

// Line is the current line number, first line is StartLine+1.
func (c *Cursor) Line() int {
	return c.line + 1
}

// Column is the 1-based position within the current line.
func (c *Cursor) Column() int {
	var idx = c.line - c.startLine
	if idx < 0 || idx >= len(c.lineStart) {
		return -1
	}

	return c.pos - c.lineStart[idx] + 1
}

// MoreChars is true if we are not at the end of data.
func (c *Cursor) MoreChars() bool {
	return c.pos < len(c.data)
}

// Remaining is the unread part of the buffer.  Don't modify it.
func (c *Cursor) Remaining() []byte {
	return c.data[c.pos:]
}

func isEOL(b byte) bool {
	return b == LF || b == CR
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}

func isLetter(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

func isSign(b byte) bool {
	return b == '+' || b == '-'
}

// Digits, decimal point, or sign.
func isNumeric(b byte) bool {
	return isDigit(b) || b == '.' || isSign(b)
}

// What can appear in a number once it has started, for the '!' delimiter.
func isNumberChar(b byte) bool {
	return isNumeric(b) || b == 'e' || b == 'E'
}

// Pseudo binary uses '/' and '?' through DEL.
func isPseudoBinary(b byte) bool {
	return b == '/' || (b >= 63 && b <= 127)
}

/*------------------------------------------------------------------
 *
 * Basic movement.
 *
 *------------------------------------------------------------------*/

// Peek returns the current byte without moving.
func (c *Cursor) Peek() (byte, error) {
	if c.pos >= len(c.data) {
		return 0, ErrEndOfData
	}

	return c.data[c.pos], nil
}

// Advance moves forward one byte.  Passing a line feed bumps the line.
func (c *Cursor) Advance() error {
	if c.pos >= len(c.data) {
		logger.Debug("Attempt to move past end of data", "pos", c.pos, "length", len(c.data))
		return ErrEndOfData
	}

	var b = c.data[c.pos]
	c.pos++

	if b == LF {
		c.line++
		var idx = c.line - c.startLine
		if idx >= len(c.lineStart) {
			c.lineStart = append(c.lineStart, c.pos)
		}
	}

	return nil
}

// Retreat moves back one byte.  Backing onto a line feed drops the line.
func (c *Cursor) Retreat() error {
	if c.pos <= 0 {
		return scriptErrorf("attempt to read before start of data")
	}

	c.pos--

	if c.data[c.pos] == LF {
		c.line--
	}

	return nil
}

// Checkpoint saves the current position.  Only one is kept.
func (c *Cursor) Checkpoint() {
	c.saved = checkpoint{pos: c.pos, line: c.line}
}

// Restore returns to the last checkpoint.
func (c *Cursor) Restore() {
	c.pos = c.saved.pos
	c.line = c.saved.line
}

/*------------------------------------------------------------------
 *
 * Check primitives.  Never consume, never fail.
 * End of data simply means "no".
 *
 *------------------------------------------------------------------*/

func (c *Cursor) CheckByte(b byte) bool {
	return c.pos < len(c.data) && c.data[c.pos] == b
}

func (c *Cursor) CheckSign() bool {
	return c.pos < len(c.data) && isSign(c.data[c.pos])
}

func (c *Cursor) CheckLetter() bool {
	return c.pos < len(c.data) && isLetter(c.data[c.pos])
}

// CheckString is true if s appears at the current position.
func (c *Cursor) CheckString(s string) bool {
	if c.pos >= len(c.data) {
		return false
	}

	return c.checkRun(len(s), func(i int, b byte) bool { return b == s[i] })
}

// CheckDigits is true if the next n bytes are all digits, '.', or sign.
func (c *Cursor) CheckDigits(n int) bool {
	return c.checkRun(n, func(_ int, b byte) bool { return isNumeric(b) })
}

// CheckPseudoBinary is true if the next n bytes are all pseudo binary.
func (c *Cursor) CheckPseudoBinary(n int) bool {
	return c.checkRun(n, func(_ int, b byte) bool { return isPseudoBinary(b) })
}

// checkRun consumes up to n bytes while ok holds, then puts the cursor back.
// It keeps its own copy of the position so the caller's checkpoint survives.
func (c *Cursor) checkRun(n int, ok func(i int, b byte) bool) bool {
	if c.pos >= len(c.data) {
		return false
	}

	var pos, line = c.pos, c.line

	var i int
	for i = 0; i < n; i++ {
		var b, err = c.Peek()
		if err != nil || !ok(i, b) {
			break
		}
		if c.Advance() != nil {
			break
		}
	}

	c.pos, c.line = pos, line

	return i == n
}

/*------------------------------------------------------------------
 *
 * Scan primitives.
 *
 * Look at up to n bytes for something.  On success the cursor
 * is left on it.  On failure the cursor is left where the scan
 * stopped: n bytes on, at a line terminator, or at end of data.
 *
 * n == 0 is special: check the current byte, don't move.
 *
 *------------------------------------------------------------------*/

func (c *Cursor) scan(n int, found func() bool) bool {
	if c.pos >= len(c.data) || n < 0 {
		return false
	}

	if n == 0 {
		return found()
	}

	for c.MoreChars() && n > 0 {
		n--
		if !c.scanPastEOL && isEOL(c.data[c.pos]) {
			break
		}
		if found() {
			return true
		}
		if c.Advance() != nil {
			return false
		}
	}

	return false
}

func (c *Cursor) ScanByte(n int, b byte) bool {
	return c.scan(n, func() bool { return c.CheckByte(b) })
}

func (c *Cursor) ScanSign(n int) bool {
	return c.scan(n, c.CheckSign)
}

// ScanDigits looks for the start of a number: digit, '.', or sign.
func (c *Cursor) ScanDigits(n int) bool {
	return c.scan(n, func() bool { return c.CheckDigits(1) || c.CheckSign() })
}

func (c *Cursor) ScanLetter(n int) bool {
	return c.scan(n, c.CheckLetter)
}

func (c *Cursor) ScanPseudoBinary(n int) bool {
	return c.scan(n, func() bool { return c.CheckPseudoBinary(1) })
}

// ScanString leaves the cursor at the start of s if found.
func (c *Cursor) ScanString(n int, s string) bool {
	return c.scan(n, func() bool { return c.CheckString(s) })
}

/*------------------------------------------------------------------
 *
 * Name:	PositionToColumn
 *
 * Purpose:	Put the cursor on the n'th character of the current
 *		line, 1 based.  If the line is shorter, stop at its end.
 *
 * Description:	If sitting on a line feed, back up past it first,
 *		unless the line is empty.  An empty line stays put.
 *
 *------------------------------------------------------------------*/

func (c *Cursor) PositionToColumn(n int) error {
	if c.pos > 0 && c.pos < len(c.data) && c.data[c.pos] == LF && c.data[c.pos-1] != LF {
		if err := c.Retreat(); err != nil {
			return err
		}
	}

	// Straight to the start of the line; the line number doesn't change.
	var idx = c.line - c.startLine
	if idx >= 0 && idx < len(c.lineStart) {
		c.pos = c.lineStart[idx]
	} else {
		for c.pos > 0 && c.data[c.pos-1] != LF {
			if err := c.Retreat(); err != nil {
				return err
			}
		}
	}

	for n--; n > 0 && c.pos < len(c.data) && !isEOL(c.data[c.pos]); n-- {
		if err := c.Advance(); err != nil {
			return err
		}
	}

	return nil
}

// SkipChars moves n characters, backwards if negative.
func (c *Cursor) SkipChars(n int) error {
	for ; n > 0; n-- {
		if err := c.Advance(); err != nil {
			return err
		}
	}

	for ; n < 0; n++ {
		if err := c.Retreat(); err != nil {
			return err
		}
	}

	return nil
}

/*------------------------------------------------------------------
 *
 * Name:	SkipLines
 *
 * Purpose:	Skip n lines, backwards if negative.  The cursor ends
 *		up on the first character of the target line.
 *
 * Errors:	ErrEndOfData if asked to go forward from the end of data.
 *		ScriptError if asked to go back before the first line.
 *
 *------------------------------------------------------------------*/

func (c *Cursor) SkipLines(n int) error {
	for ; n > 0; n-- {
		if c.pos >= len(c.data) {
			return ErrEndOfData
		}

		for c.pos < len(c.data) && c.data[c.pos] != LF {
			if err := c.Advance(); err != nil {
				return err
			}
		}

		if c.pos < len(c.data) {
			if err := c.Advance(); err != nil {
				return err
			}
		}
	}

	for ; n < 0; n++ {
		c.toLineStart()

		if c.pos == 0 {
			return scriptErrorf("attempt to skip back before the first line")
		}

		// Onto the previous line's line feed, then to its start.
		if err := c.Retreat(); err != nil {
			return err
		}
		c.toLineStart()
	}

	return nil
}

func (c *Cursor) toLineStart() {
	for c.pos > 0 && c.data[c.pos-1] != LF {
		c.pos--
	}
}

// SkipWhiteSpace moves to the first character that isn't a space, tab,
// CR, LF or 0xAE, or to end of data.
func (c *Cursor) SkipWhiteSpace() {
	for c.pos < len(c.data) {
		switch c.data[c.pos] {
		case ' ', '\t', CR, LF, 0xAE:
			_ = c.Advance()
		default:
			return
		}
	}
}

/*------------------------------------------------------------------
 *
 * Name:	ReadField
 *
 * Purpose:	Return up to length bytes starting at the cursor and
 *		move past them.
 *
 * Inputs:	length		- Maximum field width.
 *
 *		delims		- Characters that end the field.  Empty for none.
 *				  If it contains '!', anything that can't be part
 *				  of a number also ends the field.
 *
 *		isBinary	- No line terminator check and no delimiters.
 *
 *		allowEmpty	- A delimiter in the first character ends the
 *				  field, giving an empty one.
 *
 * Returns:	The field.  Shorter than length if something
 *		stopped it early or the data ran out.  The stopping
 *		character is not consumed.
 *
 *------------------------------------------------------------------*/

func (c *Cursor) ReadField(length int, delims string, isBinary bool, allowEmpty bool) []byte {
	var start = c.pos
	var numericOnly = strings.IndexByte(delims, '!') >= 0

	var i int
	for i = 0; i < length && c.pos < len(c.data); i++ {
		var b = c.data[c.pos]

		if !isBinary {
			if isEOL(b) {
				break
			}
			if (allowEmpty || i > 0) && delims != "" && strings.IndexByte(delims, b) >= 0 {
				break
			}
			if i > 0 && numericOnly && !isNumberChar(b) {
				break
			}
		}

		if c.Advance() != nil {
			break
		}
	}

	return bytes.Clone(c.data[start : start+i])
}

// RecordStatementVisit notes that a statement is starting at the current
// position.  It fails if that already happened recently.
func (c *Cursor) RecordStatementVisit(statement int) error {
	var err = c.guard.Visit(statement, c.pos)
	if err != nil {
		logger.Warn("Endless loop detected", "statement", statement, "pos", c.pos)
	}

	return err
}
