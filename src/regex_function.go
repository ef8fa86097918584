// SPDX-FileCopyrightText: 2026 The dcpdecode Authors
// SPDX-License-Identifier: GPL-2.0-or-later

package dcpdecode

/*------------------------------------------------------------------
 *
 * Purpose:	regex(...) - pick one value out of the message with a
 *		regular expression.
 *
 * Arguments:	One regular expression with exactly one named group,
 *		called sensor<N>.  The group's text goes to sensor N.
 *		Both (?<sensor3>...) and (?P<sensor3>...) are accepted.
 *
 * Example:	regex(Stage:\s*(?<sensor3>[-0-9.,]+))
 *
 *------------------------------------------------------------------*/

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

const RegexFunctionName = "regex"

var sensorGroupName = regexp.MustCompile(`^sensor([0-9]+)$`)

type RegexFunction struct {
	pattern string
	re      *regexp.Regexp
	group   int // Index of the named group.
	sensor  int
}

func (f *RegexFunction) Name() string { return RegexFunctionName }

func (f *RegexFunction) Code() string { return RegexFunctionName }

func (f *RegexFunction) Pattern() string {
	return f.pattern
}

func (f *RegexFunction) Sensor() int {
	return f.sensor
}

func (f *RegexFunction) SetArguments(args string, _ *Script) error {
	var re, err = regexp.Compile(args)
	if err != nil {
		return &ArgumentError{Function: RegexFunctionName, Args: args, Err: err}
	}

	var group, sensor = -1, DiscardSensor
	for i, name := range re.SubexpNames() {
		if name == "" {
			continue
		}

		var m = sensorGroupName.FindStringSubmatch(name)
		if m == nil {
			return &ArgumentError{Function: RegexFunctionName, Args: args,
				Err: fmt.Errorf("group '%s' is not named sensor<number>", name)}
		}
		if group >= 0 {
			return &ArgumentError{Function: RegexFunctionName, Args: args,
				Err: fmt.Errorf("more than one named group")}
		}

		group = i
		sensor, _ = strconv.Atoi(m[1])
	}

	if group < 0 {
		return &ArgumentError{Function: RegexFunctionName, Args: args,
			Err: fmt.Errorf("no group named sensor<number>")}
	}

	f.pattern = args
	f.re = re
	f.group = group
	f.sensor = sensor

	return nil
}

// Execute matches from the cursor on.  A match moves the cursor to the end
// of the captured text.  No match stores a missing value and leaves the
// cursor alone.
func (f *RegexFunction) Execute(c *Cursor, msg *DecodedMessage) Result {
	var rest = c.Remaining()
	var loc = f.re.FindSubmatchIndex(rest)

	if loc == nil || loc[2*f.group] < 0 {
		logger.Debug("regex didn't match, value flagged as missing", "sensor", f.sensor, "pos", c.Pos())
		msg.AddSample(f.sensor, MissingVariable(), c.Line())
		return Continue()
	}

	var start, end = loc[2*f.group], loc[2*f.group+1]
	var text = strings.ReplaceAll(string(rest[start:end]), ",", "")

	var line = c.Line()
	if err := c.SkipChars(end); err != nil {
		return Fatal(err)
	}

	var x, err = strconv.ParseFloat(strings.TrimSpace(text), 64)
	if err != nil {
		logger.Warn("regex value can't be parsed, flagged as error", "sensor", f.sensor, "text", text)
		msg.AddSample(f.sensor, ErrorVariable(text), line)
		return Continue()
	}

	msg.AddSample(f.sensor, NumberVariable(x), line)

	return Continue()
}
