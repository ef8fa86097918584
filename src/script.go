// SPDX-FileCopyrightText: 2026 The dcpdecode Authors
// SPDX-License-Identifier: GPL-2.0-or-later

package dcpdecode

/*------------------------------------------------------------------
 *
 * Purpose:	Run a compiled list of format statements over a message.
 *
 * Description:	Statements run in order.  Within a statement the steps
 *		run in order until one returns something other than
 *		Continue.  A jump goes to the first statement having that
 *		label.  Falling off the end of a statement goes on to the
 *		next one, and falling off the last statement ends the
 *		decode normally.
 *
 *		Before each statement starts, the loop guard is told
 *		where we are.
 *
 *------------------------------------------------------------------*/

import (
	"errors"
	"fmt"
	"strings"
)

// FormatStatement is one labelled line of a script.
type FormatStatement struct {
	Label string
	Steps []Step
}

// Script is compiled once and may be shared by concurrent decodes, as
// long as nothing calls AddMissingToken after that.
type Script struct {
	Name       string
	Statements []FormatStatement

	missing map[string]bool
}

func NewScript(name string) *Script {
	return &Script{Name: name}
}

// AddStatement appends a statement and returns its index.
func (s *Script) AddStatement(label string, steps ...Step) int {
	s.Statements = append(s.Statements, FormatStatement{Label: label, Steps: steps})

	return len(s.Statements) - 1
}

// AddMissingToken adds to the set of strings meaning "no value".
func (s *Script) AddMissingToken(tok string) {
	if s.missing == nil {
		s.missing = make(map[string]bool)
	}
	s.missing[strings.TrimSpace(tok)] = true
}

// IsMissingToken is safe on a nil script.
func (s *Script) IsMissingToken(tok string) bool {
	if s == nil {
		return false
	}

	return s.missing[tok]
}

func (s *Script) findLabel(label string) (int, bool) {
	for i, st := range s.Statements {
		if strings.EqualFold(st.Label, label) {
			return i, true
		}
	}

	return 0, false
}

// Decode runs the script over raw, putting samples in msg.
//
// The error is nil for a normal finish.  Otherwise it is ErrEndOfData,
// *EndlessLoopError, *ScriptError, *DecoderError or whatever a function
// raised.  Samples stored before the error stay in msg.
func (s *Script) Decode(raw *RawMessage, msg *DecodedMessage, settings Settings) error {
	if len(s.Statements) == 0 {
		return scriptErrorf("script '%s' has no statements", s.Name)
	}

	var c = NewCursor(raw, settings.CursorOptions())
	var idx = 0

	for idx < len(s.Statements) {
		var st = s.Statements[idx]

		if err := c.RecordStatementVisit(idx); err != nil {
			var loop *EndlessLoopError
			if errors.As(err, &loop) {
				loop.Label = st.Label
			}
			return err
		}

		logger.Debug("Statement", "index", idx, "label", st.Label, "pos", c.Pos(), "line", c.Line())

		var next = idx + 1

	steps:
		for _, step := range st.Steps {
			var r = step.Execute(c, msg)

			if r.IsContinue() {
				continue
			}

			if label, ok := r.Jump(); ok {
				var target, found = s.findLabel(label)
				if !found {
					return scriptErrorf("no format statement with label '%s' (from '%s')", label, st.Label)
				}
				next = target
				break steps
			}

			var err = r.Err()
			if errors.Is(err, ErrEndOfData) {
				return err
			}

			return fmt.Errorf("statement '%s' %s: %w", st.Label, step.Code(), err)
		}

		idx = next
	}

	return nil
}
