// SPDX-FileCopyrightText: 2026 The dcpdecode Authors
// SPDX-License-Identifier: GPL-2.0-or-later

package dcpdecode

/*------------------------------------------------------------------
 *
 * Purpose:	Collect the samples produced while decoding one message.
 *
 * Description:	DecodedMessage is the accumulator used by the script
 *		runner and the command line tools.  It keeps one time
 *		series per sensor number, the message and data times,
 *		and some "performance measurements" that describe the
 *		message itself rather than any sensor.
 *
 *------------------------------------------------------------------*/

import (
	"slices"
	"strings"
	"time"
)

// DiscardSensor as a sensor number means "don't store".
const DiscardSensor = -1

// Performance measurement names.
const (
	PMStationID     = "StationId"
	PMDcpNum        = "DcpNum"
	PMDatumOffset   = "DatumOffset"
	PMSensorOffset  = "SensorOffset"
	PMSystemStatus  = "SystemStatus"
	PMStationTime   = "StationTime"
	PMNosBattery    = "NosBattery"
	PMMessageLength = "MessageLength"
)

// ConfigSensor is one sensor in a platform configuration.
type ConfigSensor struct {
	Number int    `yaml:"number"`
	Name   string `yaml:"name"`
	Code   string `yaml:"code"` // e.g. NOS sensor code "A1" or "N2".
}

// PlatformConfig is the part of a platform's configuration the decoder needs.
type PlatformConfig struct {
	Site    string         `yaml:"site"`
	Sensors []ConfigSensor `yaml:"sensors"`
}

// Sensor finds a sensor by number.
func (p *PlatformConfig) Sensor(number int) (ConfigSensor, bool) {
	if p == nil {
		return ConfigSensor{}, false
	}

	for _, s := range p.Sensors {
		if s.Number == number {
			return s, true
		}
	}

	return ConfigSensor{}, false
}

// SensorByCode finds a sensor by its code, ignoring case.
func (p *PlatformConfig) SensorByCode(code string) (ConfigSensor, bool) {
	if p == nil {
		return ConfigSensor{}, false
	}

	for _, s := range p.Sensors {
		if strings.EqualFold(s.Code, code) {
			return s, true
		}
	}

	return ConfigSensor{}, false
}

// TimeSeries holds the samples for one sensor, in arrival order.
type TimeSeries struct {
	Sensor  int
	Name    string
	Samples []TimedVariable
}

func (ts *TimeSeries) Size() int {
	return len(ts.Samples)
}

// DecodedMessage is the accumulator for one decode.
type DecodedMessage struct {
	Raw      *RawMessage
	Platform *PlatformConfig

	messageTime          time.Time
	dataTime             time.Time
	messageTimeTruncated bool

	series map[int]*TimeSeries
	order  []int
	pms    map[string]Variable
}

// NewDecodedMessage starts an empty accumulator.  Data time starts out
// equal to the message time.
func NewDecodedMessage(raw *RawMessage, platform *PlatformConfig, messageTime time.Time) *DecodedMessage {
	var m = &DecodedMessage{
		Raw:         raw,
		Platform:    platform,
		messageTime: messageTime,
		dataTime:    messageTime,
		series:      make(map[int]*TimeSeries),
		pms:         make(map[string]Variable),
	}

	if raw != nil {
		m.SetPM(PMMessageLength, NumberVariable(float64(len(raw.Data))))
	}

	return m
}

func (m *DecodedMessage) MessageTime() time.Time {
	return m.messageTime
}

func (m *DecodedMessage) SetMessageTime(t time.Time) {
	m.messageTime = t
}

func (m *DecodedMessage) DataTime() time.Time {
	return m.dataTime
}

func (m *DecodedMessage) SetDataTime(t time.Time) {
	m.dataTime = t
}

// TruncateMessageTimeOnce applies fn to the message time the first time it
// is called for this message.  Later calls do nothing and return false.
func (m *DecodedMessage) TruncateMessageTimeOnce(fn func(time.Time) time.Time) bool {
	if m.messageTimeTruncated {
		return false
	}

	m.messageTime = fn(m.messageTime)
	m.messageTimeTruncated = true

	return true
}

func (m *DecodedMessage) AddSample(sensor int, v Variable, lineNum int) {
	m.add(sensor, TimedVariable{Variable: v, Time: m.dataTime, Line: lineNum})
}

func (m *DecodedMessage) AddSampleWithTime(sensor int, v Variable, t time.Time, lineNum int) {
	m.add(sensor, TimedVariable{Variable: v, Time: t, Line: lineNum})
}

func (m *DecodedMessage) add(sensor int, tv TimedVariable) {
	if sensor == DiscardSensor {
		return
	}

	var ts, ok = m.series[sensor]
	if !ok {
		ts = &TimeSeries{Sensor: sensor}
		if s, found := m.Platform.Sensor(sensor); found {
			ts.Name = s.Name
		}
		m.series[sensor] = ts
		m.order = append(m.order, sensor)
	}

	ts.Samples = append(ts.Samples, tv)

	logger.Debug("Sample", "sensor", sensor, "value", tv.Variable.String(),
		"flags", tv.Flags.String(), "time", tv.Time)
}

// TimeSeries returns the series for a sensor, or nil.
func (m *DecodedMessage) TimeSeries(sensor int) *TimeSeries {
	return m.series[sensor]
}

// AllTimeSeries in order of sensor number.
func (m *DecodedMessage) AllTimeSeries() []*TimeSeries {
	var sensors = slices.Clone(m.order)
	slices.Sort(sensors)

	var all = make([]*TimeSeries, 0, len(sensors))
	for _, s := range sensors {
		all = append(all, m.series[s])
	}

	return all
}

// NumSamples counts samples over all sensors.
func (m *DecodedMessage) NumSamples() int {
	var n = 0
	for _, ts := range m.series {
		n += ts.Size()
	}

	return n
}

func (m *DecodedMessage) SetPM(name string, v Variable) {
	m.pms[name] = v
}

func (m *DecodedMessage) PM(name string) (Variable, bool) {
	var v, ok = m.pms[name]
	return v, ok
}

// PMNames returns the performance measurement names, sorted.
func (m *DecodedMessage) PMNames() []string {
	var names = make([]string, 0, len(m.pms))
	for n := range m.pms {
		names = append(names, n)
	}
	slices.Sort(names)

	return names
}
