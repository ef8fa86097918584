// SPDX-FileCopyrightText: 2026 The dcpdecode Authors
// SPDX-License-Identifier: GPL-2.0-or-later

package dcpdecode

import "strings"

const SetMissingFunctionName = "setmissing"

// SetMissingFunction adds tokens to the script's missing value set when
// the script is built.  Running it does nothing.
//
//	setmissing(-999, 9999, ---)
type SetMissingFunction struct {
	tokens []string
}

func (f *SetMissingFunction) Name() string { return SetMissingFunctionName }

func (f *SetMissingFunction) Code() string { return SetMissingFunctionName }

func (f *SetMissingFunction) Tokens() []string {
	return f.tokens
}

func (f *SetMissingFunction) SetArguments(args string, script *Script) error {
	f.tokens = nil

	for _, tok := range strings.Split(args, ",") {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}
		f.tokens = append(f.tokens, tok)
		script.AddMissingToken(tok)
	}

	return nil
}

func (f *SetMissingFunction) Execute(_ *Cursor, _ *DecodedMessage) Result {
	return Continue()
}
