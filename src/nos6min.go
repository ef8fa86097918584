// SPDX-FileCopyrightText: 2026 The dcpdecode Authors
// SPDX-License-Identifier: GPL-2.0-or-later

package dcpdecode

/*------------------------------------------------------------------
 *
 * Purpose:	nos6min() - decode a NOS 6-minute water level message.
 *
 * Description:	The message is pseudo binary.  After a fixed header it
 *		is a run of one character flags, each saying which group
 *		of fixed width fields comes next.  A '-' starts a two
 *		character flag.
 *
 *		Header:	'P', station id (7), DCP number (1 digit),
 *			datum offset (3), sensor offset (2, signed),
 *			system status (2), time offset in minutes (1).
 *
 *		Flag '0' carries day number and hour.  Together with the
 *		header's minute it becomes the data time for everything
 *		after it.  Redundant values are for 6 minutes earlier.
 *
 *		Sensors are found in the platform configuration by NOS
 *		code: the letter for the kind of sensor followed by the
 *		DCP number, e.g. "A1" for the first acoustic sensor.
 *
 * Sentinels:	A water level of 262143 ("???") or 0 ("@@@") means
 *		undefined.  It is logged and not stored.
 *
 *------------------------------------------------------------------*/

import (
	"fmt"
	"time"
	"unicode"
)

const Nos6MinFunctionName = "nos6min"

const (
	nosUndefinedWL     = 262143 // "???"
	nosUndefinedOffset = 262143
	nosUndefinedSensor = 2047
	nosNoValue         = 999999
	nosBaroOffset      = 8000 // Millibars added to the barometer field.
	nosBatteryOffset   = 9.5
	nosRedundantAge    = 6 * time.Minute
	nosTsunamiSamples  = 6
	nosTsunamiUnitMM   = 250 // Tsunami base offset is in quarter meters.
)

// Nos6Min has no arguments and keeps no state between messages.
type Nos6Min struct{}

func NewNos6Min() *Nos6Min {
	return &Nos6Min{}
}

func (f *Nos6Min) Name() string { return Nos6MinFunctionName }

func (f *Nos6Min) Code() string { return Nos6MinFunctionName }

func (f *Nos6Min) SetArguments(_ string, _ *Script) error {
	return nil
}

// nosRecord is the state for decoding one message.
type nosRecord struct {
	c        *Cursor
	msg      *DecodedMessage
	config   *PlatformConfig
	station  string
	dcpNum   int
	primary  int
	minute   int            // Time offset from the header.
	sensors  map[string]int // Codes already looked up for the current device.
	err      error          // Sticky: end of data.
	badField error          // Most recent unparsable field, cleared by takeBad.
}

func (f *Nos6Min) Execute(c *Cursor, msg *DecodedMessage) Result {
	if msg.Platform == nil {
		return Fatal(&DecoderError{Function: Nos6MinFunctionName, Msg: "cannot be called without a platform configuration"})
	}

	var r = &nosRecord{c: c, msg: msg, config: msg.Platform}

	if err := r.header(); err != nil {
		return Fatal(err)
	}

	if err := r.body(); err != nil {
		return Fatal(err)
	}

	logger.Debug("nos6min end of message")

	return Continue()
}

func (r *nosRecord) header() error {
	var b, err = r.c.Peek()
	if err != nil {
		return err
	}
	if b != 'P' {
		logger.Warn("This 6min message may have an issue", "raw", string(r.c.Raw().Data))
		return &DecoderError{Function: Nos6MinFunctionName, Msg: "requires 'P' in first char"}
	}
	_ = r.c.Advance()

	var id = r.c.ReadField(7, "", true, false)
	if len(id) < 7 {
		return ErrEndOfData
	}
	r.station = string(id)
	r.msg.SetPM(PMStationID, StringVariable(r.station))

	b, err = r.c.Peek()
	if err != nil {
		return err
	}
	_ = r.c.Advance()
	r.dcpNum = int(b) - '0'
	r.primary = r.dcpNum
	r.msg.SetPM(PMDcpNum, NumberVariable(float64(r.dcpNum)))

	var datumOffset = r.int(3, false)
	if datumOffset == nosUndefinedOffset {
		datumOffset = nosNoValue
	}
	var sensorOffset = r.int(2, true)
	if sensorOffset == nosUndefinedSensor {
		sensorOffset = nosNoValue
	}
	var systemStatus = r.int(2, false)
	var timeOffset = r.int(1, false)

	if r.err != nil {
		return r.err
	}
	r.takeBad()

	r.msg.SetPM(PMDatumOffset, NumberVariable(float64(datumOffset)))
	r.msg.SetPM(PMSensorOffset, NumberVariable(float64(sensorOffset)))
	r.msg.SetPM(PMSystemStatus, NumberVariable(float64(systemStatus)))

	logger.Info("nos6min header", "station", r.station, "dcp", r.dcpNum,
		"datumOffset", datumOffset, "sensorOffset", sensorOffset, "timeOffset", timeOffset)

	r.resetSensors()
	r.minute = int(timeOffset)

	return nil
}

/*------------------------------------------------------------------
 *
 * Field readers.  End of data sticks in r.err and all later reads
 * return 0; a bad character sticks in r.badField.
 *
 *------------------------------------------------------------------*/

func (r *nosRecord) field(n int) []byte {
	if r.err != nil {
		return nil
	}

	var f = r.c.ReadField(n, "", true, false)
	if len(f) < n {
		r.err = ErrEndOfData
		return nil
	}

	return f
}

func (r *nosRecord) int(n int, signed bool) int64 {
	var f = r.field(n)
	if f == nil {
		return 0
	}

	var v, err = DecodePseudoBinary(f, signed)
	if err != nil {
		r.badField = err
		return 0
	}

	return v
}

func (r *nosRecord) number(n int, signed bool) Variable {
	return NumberVariable(float64(r.int(n, signed)))
}

func (r *nosRecord) takeBad() error {
	var err = r.badField
	r.badField = nil

	return err
}

func (r *nosRecord) resetSensors() {
	r.sensors = make(map[string]int)
}

// sensorNumber finds the configured sensor for a code letter on the
// current DCP, or -1.
func (r *nosRecord) sensorNumber(letter byte) int {
	var code = fmt.Sprintf("%c%d", letter, r.dcpNum)

	if n, ok := r.sensors[code]; ok {
		return n
	}

	var n = DiscardSensor
	if s, ok := r.config.SensorByCode(code); ok {
		n = s.Number
	} else {
		logger.Debug("nos6min no sensor configured", "code", code)
	}
	r.sensors[code] = n

	return n
}

func isValidWL(wl int64) bool {
	return wl != nosUndefinedWL && wl != 0
}

// store adds a sample, or an error sample if a field in its group was bad.
func (r *nosRecord) store(sensor int, v Variable, t time.Time, what string) {
	if err := r.takeBad(); err != nil {
		logger.Warn("nos6min field can't be parsed, flagged as error", "what", what,
			"station", r.station, "err", err)
		v = ErrorVariable(v.String())
	}

	r.msg.AddSampleWithTime(sensor, v, t, r.c.Line())
}

/*------------------------------------------------------------------
 *
 * Name:	body
 *
 * Purpose:	Walk the flags until the data runs out.
 *
 *------------------------------------------------------------------*/

func (r *nosRecord) body() error {
	var dataTime = r.msg.DataTime()
	var redundantTime = dataTime.Add(-nosRedundantAge)
	var firstTime = true
	var haveBV = false
	var sensorNum = DiscardSensor // Most recent water level sensor.
	var qCount = 0

	for r.c.MoreChars() && r.err == nil {
		var flag, _ = r.c.Peek()
		_ = r.c.Advance()

		logger.Debug("nos6min", "flag", string(rune(flag)))

		switch flag {
		case '0': // Time tag
			var day = r.int(2, false)
			var hour = r.int(1, false)
			if r.err != nil {
				break
			}
			if err := r.takeBad(); err != nil {
				logger.Warn("nos6min bad time tag, keeping previous data time", "station", r.station, "err", err)
				break
			}

			dataTime = r.dayNumberTime(int(day), int(hour))
			redundantTime = dataTime.Add(-nosRedundantAge)
			r.msg.SetDataTime(dataTime)

			if firstTime {
				r.msg.SetPM(PMStationTime, StringVariable(dataTime.Format(time.RFC3339)))
				logger.Info("nos6min set station time", "time", dataTime)
				firstTime = false
			}

			logger.Info("nos6min time tag", "daynum", day, "hour", hour, "min", r.minute,
				"dataTime", dataTime, "redundantTime", redundantTime)

		case '1', '(': // Aquatrak acoustic WL, air gap
			var wl = r.int(3, false)
			var sigma = r.int(2, false)
			var outlier = r.int(1, false)

			// The second DCP's air gap doesn't have the two temperatures.
			var x, y int64 = nosNoValue, nosNoValue
			if qCount == 0 {
				x = r.int(2, true)
				y = r.int(2, true)
			}
			if r.err != nil {
				break
			}

			sensorNum = r.sensorNumber(map[byte]byte{'1': 'A', '(': 'Q'}[flag])
			if sensorNum == DiscardSensor {
				// Unconfigured group, the next one still has temperatures.
				r.takeBad()
				break
			}
			qCount++
			r.waterLevel(sensorNum, wl, fmt.Sprintf("%d,%d,%d,%d,%d", wl, sigma, outlier, x, y), dataTime,
				map[byte]string{'1': "Aqua", '(': "Air Gap"}[flag])

		case '2', '!', '8', '%', '&': // Backup, SAE, microwave, Paroscientific #1 and #2
			var wl = r.int(3, false)
			var sigma = r.int(2, false)
			var outlier = r.int(1, false)
			if r.err != nil {
				break
			}
			var kind = tripleKinds[flag]
			sensorNum = r.sensorNumber(kind.letter)
			r.waterLevel(sensorNum, wl, fmt.Sprintf("%d,%d,%d", wl, sigma, outlier), dataTime, kind.name)

		// All the redundant blocks are the same: a 3 character WL for
		// 6 minutes ago, for the sensor we just did.
		case '>', '"', '.', '#', ')', '\'', '*':
			var wl = r.int(3, false)
			if r.err != nil {
				break
			}
			if sensorNum == DiscardSensor {
				r.takeBad()
				break
			}
			if !isValidWL(wl) {
				r.takeBad()
				logger.Warn("nos6min redundant WL sensor data is discarded", "station", r.station, "wl", wl)
				break
			}
			r.store(sensorNum, NumberVariable(float64(wl)).WithFlags(FlagRedundant), redundantTime, "redundant WL")

		case '3': // Wind speed, direction, gust
			var x = r.int(2, false)
			var y = r.int(2, false)
			var z = r.int(2, false)
			if r.err != nil {
				break
			}
			r.store(r.sensorNumber('C'), StringVariable(fmt.Sprintf("%d,%d,%d", x, y, z)), dataTime, "wind")

		case '4', '5': // Air temperature, water temperature
			var v = r.number(2, true)
			if r.err != nil {
				break
			}
			r.store(r.sensorNumber(ancillary[flag]), v, dataTime, "temperature")

		case '6': // Barometric pressure
			var x = r.int(2, false) + nosBaroOffset
			if r.err != nil {
				break
			}
			r.store(r.sensorNumber('F'), NumberVariable(float64(x)), dataTime, "barometer")

		case '7', '9', ':', ';', '=': // Conductivity, RH, rain, solar, analog #2
			var v = r.number(2, false)
			if r.err != nil {
				break
			}
			r.store(r.sensorNumber(ancillary[flag]), v, dataTime, "ancillary")

		case '<': // Analog #1, always battery voltage
			var v = r.number(2, false)
			if r.err != nil {
				break
			}
			r.store(r.sensorNumber('L'), v, dataTime, "battery")

			// Whatever follows VB belongs to the next DCP.
			r.dcpNum++
			r.resetSensors()

		case '+', '/', ',': // Frequency #1 and unused flags

		case ' ': // Single character VB at the end of the message
			// Only once, otherwise we'd read past the end.
			if haveBV {
				break
			}
			var x = r.int(1, false)
			if r.err != nil {
				break
			}
			if err := r.takeBad(); err != nil {
				logger.Warn("nos6min bad battery voltage", "station", r.station, "err", err)
			} else {
				r.msg.SetPM(PMNosBattery, NumberVariable(float64(x)+nosBatteryOffset))
			}
			haveBV = true

		case '-': // Two character flag
			r.twoCharFlag(dataTime)

		case 'T': // Tsunami add-on block
			r.tsunami(dataTime)

		default:
			if !unicode.IsSpace(rune(flag)) {
				logger.Warn("nos6min unrecognized flag char", "flag", string(rune(flag)), "pos", r.c.Pos()-1)
			}
		}
	}

	return r.err
}

type tripleKind struct {
	letter byte
	name   string
}

var tripleKinds = map[byte]tripleKind{
	'2': {'B', "BWL"},
	'!': {'V', "SAE"},
	'8': {'Y', "MWWL"},
	'%': {'N', "Pressure WL #1"},
	'&': {'T', "Pressure WL #2"},
}

var ancillary = map[byte]byte{
	'4': 'D', // Air temperature
	'5': 'E', // Water temperature
	'7': 'G', // Conductivity
	'9': 'R', // Relative humidity
	':': 'J', // Rainfall
	';': 'K', // Solar radiation
	'=': 'M', // Analog #2
}

func (r *nosRecord) waterLevel(sensor int, wl int64, text string, t time.Time, what string) {
	if sensor == DiscardSensor {
		r.takeBad()
		return
	}

	if !isValidWL(wl) {
		r.takeBad()
		logger.Warn("nos6min "+what+" sensor data is discarded", "station", r.station, "dcp", r.dcpNum, "wl", wl)
		return
	}

	r.store(sensor, StringVariable(text), t, what)
}

func (r *nosRecord) twoCharFlag(dataTime time.Time) {
	var c2, err = r.c.Peek()
	if err != nil {
		r.err = err
		return
	}
	_ = r.c.Advance()

	switch c2 {
	case 'O':
		var x = r.int(3, false)
		var y = r.int(1, false)
		if r.err != nil {
			return
		}
		r.store(r.sensorNumber('O'), StringVariable(fmt.Sprintf("%d,%d", x, y)), dataTime, "-O")
	case '7': // Three character conductivity
		var v = r.number(3, false)
		if r.err != nil {
			return
		}
		r.store(r.sensorNumber('G'), v, dataTime, "conductivity")
	default:
		logger.Warn("nos6min unrecognized two character flag", "flag", "-"+string(rune(c2)))
	}
}

/*------------------------------------------------------------------
 *
 * Name:	tsunami
 *
 * Purpose:	The 'T' block.  One minute water levels for the primary
 *		DCP, newest first.
 *
 * Description:	Hour offset (1), minute offset (1), base offset in
 *		quarter meters (1), then six 2 character corrections.
 *		Each value is base*250 + correction, in mm.
 *
 *		If the hour or minute is out of range the samples are
 *		read but not stored.
 *
 *------------------------------------------------------------------*/

func (r *nosRecord) tsunami(dataTime time.Time) {
	var saved = r.dcpNum
	r.dcpNum = r.primary
	defer func() { r.dcpNum = saved }()

	var sensor = r.sensorNumber('U')
	var hourOffset = r.int(1, false)
	var minOffset = r.int(1, false)
	var base = r.int(1, false)
	if r.err != nil {
		return
	}

	var goodTime = hourOffset <= 23 && minOffset <= 59 && r.takeBad() == nil
	var t time.Time
	if goodTime {
		var y, mo, d = dataTime.Date()
		t = time.Date(y, mo, d, int(hourOffset), int(minOffset), 0, 0, dataTime.Location())
		// Around midnight the block can belong to the day before.
		if t.Sub(dataTime) > time.Hour {
			t = t.AddDate(0, 0, -1)
		}
	} else {
		logger.Warn("nos6min U1 time offset is not correct", "station", r.station,
			"hour", hourOffset, "min", minOffset)
	}

	for i := 0; i < nosTsunamiSamples; i++ {
		var y = r.int(2, false)
		if r.err != nil {
			return
		}
		if !goodTime {
			r.takeBad()
			continue
		}
		r.store(sensor, NumberVariable(float64(base*nosTsunamiUnitMM+y)), t, "tsunami")
		t = t.Add(-time.Minute)
	}
}

// dayNumberTime builds the data time from day of year, hour and the
// header's minute.  A day number ahead of the message time means the data
// is from last year.
func (r *nosRecord) dayNumberTime(day int, hour int) time.Time {
	var mt = r.msg.MessageTime().UTC()

	var t = time.Date(mt.Year(), time.January, 1, hour, r.minute, 0, 0, time.UTC).AddDate(0, 0, day-1)
	if t.Sub(mt) > 24*time.Hour {
		t = t.AddDate(-1, 0, 0)
	}

	return t
}
