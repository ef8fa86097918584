// SPDX-FileCopyrightText: 2026 The dcpdecode Authors
// SPDX-License-Identifier: GPL-2.0-or-later

package dcpdecode

/*------------------------------------------------------------------
 *
 * Purpose:	csv(...) - split the current line into delimited columns,
 *		one sensor per column.
 *
 * Arguments:	Comma separated.  Each is either
 *
 *			delimiter=<value>	\s means space, \t means tab.
 *						Default is a comma.
 *						"delimiter=," also works.
 *
 *			<sensor number>		Next column goes to this sensor.
 *
 *		Anything else maps the column to sensor -1, which is
 *		parsed but thrown away.
 *
 * Example:	csv(delimiter=;, 1, 2, x, 4)
 *
 *------------------------------------------------------------------*/

import (
	"errors"
	"strconv"
	"strings"
)

const CsvFunctionName = "csv"

type CsvFunction struct {
	sensors   []int
	delimiter string
	script    *Script
}

func (f *CsvFunction) Name() string { return CsvFunctionName }

func (f *CsvFunction) Code() string { return CsvFunctionName }

// Sensors returns the column to sensor mapping.
func (f *CsvFunction) Sensors() []int {
	return f.sensors
}

func (f *CsvFunction) Delimiter() string {
	return f.delimiter
}

func (f *CsvFunction) SetArguments(args string, script *Script) error {
	f.script = script
	f.delimiter = ","
	f.sensors = nil

	var tokens = strings.Split(args, ",")
	for i := 0; i < len(tokens); i++ {
		var tok = strings.TrimSpace(tokens[i])

		if name, value, ok := strings.Cut(tok, "="); ok && strings.EqualFold(strings.TrimSpace(name), "delimiter") {
			value = strings.TrimSpace(value)
			if value == "" {
				// "delimiter=," got split on its own comma.
				if i+1 < len(tokens) && strings.TrimSpace(tokens[i+1]) == "" {
					i++
				}
				value = ","
			}
			f.delimiter = expandEscapes(value)
			continue
		}

		if tok == "" && i == len(tokens)-1 {
			// Trailing comma.
			continue
		}

		var n, err = strconv.Atoi(tok)
		if err != nil {
			logger.Debug("csv column will be discarded", "token", tok)
			n = DiscardSensor
		}
		f.sensors = append(f.sensors, n)
	}

	if len(f.sensors) == 0 {
		return &ArgumentError{Function: CsvFunctionName, Args: args, Err: errNoSensors}
	}

	return nil
}

var errNoSensors = errors.New("no sensor numbers given")

func expandEscapes(s string) string {
	s = strings.ReplaceAll(s, `\s`, " ")
	s = strings.ReplaceAll(s, `\t`, "\t")

	return s
}

/*------------------------------------------------------------------
 *
 * Name:	Execute
 *
 * Purpose:	Read one column per declared sensor.
 *
 * Description:	Each column runs to the next delimiter, which is
 *		consumed, or to the end of the line, which is not.
 *		We stop after the last declared column or at the end
 *		of the line, whichever comes first.
 *
 *		If the data runs out part way through a column, that
 *		column is still stored before end of data is reported.
 *
 *------------------------------------------------------------------*/

func (f *CsvFunction) Execute(c *Cursor, msg *DecodedMessage) Result {
	for _, sensor := range f.sensors {
		if !c.MoreChars() {
			return Fatal(ErrEndOfData)
		}

		var field strings.Builder
		var endOfLine, endOfData bool

		for {
			var b, err = c.Peek()
			if err != nil {
				endOfData = true
				break
			}
			if isEOL(b) {
				endOfLine = true
				break
			}
			if c.CheckString(f.delimiter) {
				if err := c.SkipChars(len(f.delimiter)); err != nil {
					endOfData = true
				}
				break
			}

			field.WriteByte(b)
			_ = c.Advance()
		}

		f.store(sensor, field.String(), c.Line(), msg)

		if endOfData {
			return Fatal(ErrEndOfData)
		}
		if endOfLine {
			break
		}
	}

	return Continue()
}

func (f *CsvFunction) store(sensor int, text string, line int, msg *DecodedMessage) {
	var s = strings.TrimSpace(text)

	if s == "" || s[0] == 'M' || s[0] == '/' || f.script.IsMissingToken(s) {
		if sensor != DiscardSensor {
			logger.Debug("csv value flagged as missing", "sensor", sensor, "text", s)
		}
		msg.AddSample(sensor, MissingVariable(), line)
		return
	}

	var x, err = strconv.ParseFloat(s, 64)
	if err != nil {
		if sensor != DiscardSensor {
			logger.Warn("csv value can't be parsed, flagged as error", "sensor", sensor, "text", s)
		}
		msg.AddSample(sensor, ErrorVariable(s), line)
		return
	}

	msg.AddSample(sensor, NumberVariable(x), line)
}
