// SPDX-FileCopyrightText: 2026 The dcpdecode Authors
// SPDX-License-Identifier: GPL-2.0-or-later

package dcpdecode

/*------------------------------------------------------------------
 *
 * Purpose:	Build a Script from its YAML description.
 *
 * Description:	Each step is either an operation or a function call.
 *
 *		  { op: position, n: 3 }
 *		  { op: skip, n: -2 }
 *		  { op: skiplines, n: 1 }
 *		  { op: scan, n: 10, pattern: string, target: "WL", fail: other }
 *		  { op: truncate, unit: minute, count: 15 }
 *		  { func: csv, args: "delimiter=;,1,2,3" }
 *
 *		Function arguments are handed over as they are, once,
 *		when the script is built.
 *
 *------------------------------------------------------------------*/

import (
	"fmt"
	"strings"
)

type ScriptConfig struct {
	Name       string            `yaml:"name"`
	Statements []StatementConfig `yaml:"statements"`
}

type StatementConfig struct {
	Label string       `yaml:"label"`
	Steps []StepConfig `yaml:"steps"`
}

type StepConfig struct {
	Op      string `yaml:"op"`
	Func    string `yaml:"func"`
	N       int    `yaml:"n"`
	Pattern string `yaml:"pattern"`
	Target  string `yaml:"target"`
	Fail    string `yaml:"fail"`
	Unit    string `yaml:"unit"`
	Count   int    `yaml:"count"`
	Args    string `yaml:"args"`
}

// BuildScript compiles the description, looking functions up in reg.
func (sc *ScriptConfig) BuildScript(reg *Registry) (*Script, error) {
	if sc == nil || len(sc.Statements) == 0 {
		return nil, scriptErrorf("no statements")
	}

	var script = NewScript(sc.Name)

	for i, stc := range sc.Statements {
		var steps = make([]Step, 0, len(stc.Steps))

		for j, stepc := range stc.Steps {
			var step, err = stepc.build(reg, script)
			if err != nil {
				return nil, fmt.Errorf("statement %d '%s' step %d: %w", i, stc.Label, j, err)
			}
			steps = append(steps, step)
		}

		script.AddStatement(stc.Label, steps...)
	}

	// Scans must switch to somewhere that exists.
	for _, st := range script.Statements {
		for _, step := range st.Steps {
			if s, ok := step.(Scan); ok {
				if _, found := script.findLabel(s.FailLabel); !found {
					return nil, scriptErrorf("statement '%s' scans with unknown label '%s'", st.Label, s.FailLabel)
				}
			}
		}
	}

	return script, nil
}

func (stepc StepConfig) build(reg *Registry, script *Script) (Step, error) { //nolint:ireturn
	if stepc.Func != "" {
		if stepc.Op != "" {
			return nil, scriptErrorf("step has both op '%s' and func '%s'", stepc.Op, stepc.Func)
		}

		var f, ok = reg.Lookup(stepc.Func)
		if !ok {
			return nil, scriptErrorf("unknown function '%s'", stepc.Func)
		}

		if err := f.SetArguments(stepc.Args, script); err != nil {
			return nil, err
		}

		return f, nil
	}

	switch strings.ToLower(stepc.Op) {
	case "position", "p":
		return Position{N: stepc.N}, nil
	case "skip", "x":
		return Skip{N: stepc.N}, nil
	case "skiplines", "/":
		return SkipLines{N: stepc.N}, nil
	case "scan", "s":
		var pattern, err = ParseScanPattern(strings.ToLower(stepc.Pattern))
		if err != nil {
			return nil, err
		}
		var s = Scan{N: stepc.N, Pattern: pattern, Target: stepc.Target, FailLabel: stepc.Fail}
		if err := s.Validate(); err != nil {
			return nil, err
		}
		return s, nil
	case "truncate", "t":
		var unit, err = ParseTruncateUnit(strings.ToLower(stepc.Unit))
		if err != nil {
			return nil, err
		}
		return TimeTruncate{Unit: unit, Count: stepc.Count}, nil
	case "":
		return nil, scriptErrorf("step needs op or func")
	default:
		return nil, scriptErrorf("unknown operation '%s'", stepc.Op)
	}
}
