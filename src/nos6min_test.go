package dcpdecode

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pb(v int64, n int) string {
	return string(EncodePseudoBinary(v, n))
}

var nosPlatform = &PlatformConfig{
	Site: "8454000",
	Sensors: []ConfigSensor{
		{Number: 1, Name: "WL", Code: "A1"},
		{Number: 2, Name: "BWL", Code: "B1"},
		{Number: 3, Name: "AT", Code: "D1"},
		{Number: 4, Name: "BARO", Code: "F1"},
		{Number: 5, Name: "VB", Code: "L1"},
		{Number: 6, Name: "WL2", Code: "A2"},
		{Number: 7, Name: "U1", Code: "U1"},
		{Number: 8, Name: "WIND", Code: "C1"},
	},
}

// 2026-10-14 is day 287.
var nosMessageTime = time.Date(2026, time.October, 14, 12, 5, 0, 0, time.UTC)

func nosHeader(minute int64) string {
	return "P8454000" + "1" + pb(1234, 3) + pb(-5, 2) + pb(7, 2) + pb(minute, 1)
}

func nosTimeTag(day, hour int64) string {
	return "0" + pb(day, 2) + pb(hour, 1)
}

func nosAcoustic(wl, sigma, outlier, x, y int64) string {
	return "1" + pb(wl, 3) + pb(sigma, 2) + pb(outlier, 1) + pb(x, 2) + pb(y, 2)
}

func decodeNos(t *testing.T, data string, platform *PlatformConfig) (*DecodedMessage, error) {
	t.Helper()

	var script = NewScript("nos")
	var f, ok = NewRegistry().Lookup(Nos6MinFunctionName)
	require.True(t, ok)
	require.NoError(t, f.SetArguments("", script))
	script.AddStatement("st", f)

	var raw = &RawMessage{Data: []byte(data)}
	var msg = NewDecodedMessage(raw, platform, nosMessageTime)

	return msg, script.Decode(raw, msg, DefaultSettings())
}

func Test_Nos6MinHeaderAndSamples(t *testing.T) {
	var data = nosHeader(0) + nosTimeTag(287, 12) +
		nosAcoustic(5123, 12, 3, 150, -20) +
		">" + pb(5100, 3) +
		"2" + pb(5120, 3) + pb(4, 2) + pb(1, 1) +
		"4" + pb(-15, 2) +
		"6" + pb(213, 2) +
		" " + pb(3, 1)

	var msg, err = decodeNos(t, data, nosPlatform)
	require.NoError(t, err)

	var wl = msg.TimeSeries(1)
	require.NotNil(t, wl)
	require.Equal(t, 2, wl.Size())
	assert.Equal(t, "5123,12,3,150,-20", wl.Samples[0].Str)
	assert.Equal(t, time.Date(2026, time.October, 14, 12, 0, 0, 0, time.UTC), wl.Samples[0].Time)

	// The redundant value belongs to 6 minutes earlier.
	assert.InDelta(t, 5100.0, wl.Samples[1].Num, 1e-9)
	assert.True(t, wl.Samples[1].Flags.Has(FlagRedundant))
	assert.Equal(t, time.Date(2026, time.October, 14, 11, 54, 0, 0, time.UTC), wl.Samples[1].Time)

	assert.Equal(t, "5120,4,1", msg.TimeSeries(2).Samples[0].Str)
	assert.InDelta(t, -15.0, msg.TimeSeries(3).Samples[0].Num, 1e-9)
	assert.InDelta(t, 8213.0, msg.TimeSeries(4).Samples[0].Num, 1e-9)

	var pm, _ = msg.PM(PMStationID)
	assert.Equal(t, "8454000", pm.Str)
	pm, _ = msg.PM(PMDcpNum)
	assert.InDelta(t, 1.0, pm.Num, 1e-9)
	pm, _ = msg.PM(PMDatumOffset)
	assert.InDelta(t, 1234.0, pm.Num, 1e-9)
	pm, _ = msg.PM(PMSensorOffset)
	assert.InDelta(t, -5.0, pm.Num, 1e-9)
	pm, _ = msg.PM(PMSystemStatus)
	assert.InDelta(t, 7.0, pm.Num, 1e-9)
	pm, _ = msg.PM(PMStationTime)
	assert.Equal(t, "2026-10-14T12:00:00Z", pm.Str)
	pm, _ = msg.PM(PMNosBattery)
	assert.InDelta(t, 12.5, pm.Num, 1e-9)
}

func Test_Nos6MinSentinelDiscarded(t *testing.T) {
	for _, sentinel := range []int64{nosUndefinedWL, 0} {
		var logBuf = CaptureLog(t)

		var data = nosHeader(0) + nosTimeTag(287, 12) +
			nosAcoustic(sentinel, 12, 3, 150, -20) +
			"2" + pb(sentinel, 3) + pb(4, 2) + pb(1, 1)

		var msg, err = decodeNos(t, data, nosPlatform)
		require.NoError(t, err)

		assert.Nil(t, msg.TimeSeries(1))
		assert.Nil(t, msg.TimeSeries(2))
		assert.Equal(t, 0, msg.NumSamples())
		assert.Contains(t, logBuf.String(), "discarded")
		assert.Contains(t, logBuf.String(), "WARN")
	}
}

func Test_Nos6MinRedundantSentinel(t *testing.T) {
	CaptureLog(t)

	var data = nosHeader(0) + nosTimeTag(287, 12) +
		nosAcoustic(5123, 12, 3, 150, -20) +
		">" + pb(nosUndefinedWL, 3)

	var msg, err = decodeNos(t, data, nosPlatform)
	require.NoError(t, err)

	assert.Equal(t, 1, msg.TimeSeries(1).Size())
}

func Test_Nos6MinNeedsP(t *testing.T) {
	CaptureLog(t)

	var _, err = decodeNos(t, "X8454000", nosPlatform)

	var de *DecoderError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, Nos6MinFunctionName, de.Function)
}

func Test_Nos6MinNeedsPlatform(t *testing.T) {
	var _, err = decodeNos(t, nosHeader(0), nil)

	var de *DecoderError
	assert.ErrorAs(t, err, &de)
}

func Test_Nos6MinTruncatedKeepsSamples(t *testing.T) {
	var data = nosHeader(0) + nosTimeTag(287, 12) +
		nosAcoustic(5123, 12, 3, 150, -20) +
		"2" + pb(5120, 3)

	var msg, err = decodeNos(t, data, nosPlatform)

	assert.ErrorIs(t, err, ErrEndOfData)
	assert.Equal(t, 1, msg.TimeSeries(1).Size())
	assert.Nil(t, msg.TimeSeries(2))
}

func Test_Nos6MinSecondDcp(t *testing.T) {
	var data = nosHeader(6) + nosTimeTag(287, 12) +
		nosAcoustic(5123, 12, 3, 150, -20) +
		"<" + pb(13, 2) +
		"1" + pb(4000, 3) + pb(1, 2) + pb(0, 1) // No temperatures this time.

	var msg, err = decodeNos(t, data, nosPlatform)
	require.NoError(t, err)

	assert.InDelta(t, 13.0, msg.TimeSeries(5).Samples[0].Num, 1e-9)

	// Same kind of sensor, next DCP: A2.
	var wl2 = msg.TimeSeries(6)
	require.NotNil(t, wl2)
	assert.Equal(t, "4000,1,0,999999,999999", wl2.Samples[0].Str)
	assert.Equal(t, time.Date(2026, time.October, 14, 12, 6, 0, 0, time.UTC), wl2.Samples[0].Time)
}

func Test_Nos6MinUnconfiguredAcousticKeepsTemperatures(t *testing.T) {
	var data = nosHeader(0) + nosTimeTag(287, 12) +
		nosAcoustic(5123, 12, 3, 150, -20) + // No A1 configured.
		"(" + pb(6000, 3) + pb(2, 2) + pb(1, 1) + pb(10, 2) + pb(-3, 2)

	var platform = &PlatformConfig{Sensors: []ConfigSensor{{Number: 10, Name: "AIRGAP", Code: "Q1"}}}

	var msg, err = decodeNos(t, data, platform)
	require.NoError(t, err)

	var gap = msg.TimeSeries(10)
	require.NotNil(t, gap)
	require.Equal(t, 1, gap.Size())
	assert.Equal(t, "6000,2,1,10,-3", gap.Samples[0].Str)
	assert.Equal(t, 1, msg.NumSamples())
}

func Test_Nos6MinTsunami(t *testing.T) {
	var data = nosHeader(0) + nosTimeTag(287, 12) +
		"T" + pb(12, 1) + pb(3, 1) + pb(20, 1) +
		pb(1, 2) + pb(2, 2) + pb(3, 2) + pb(4, 2) + pb(5, 2) + pb(6, 2)

	var msg, err = decodeNos(t, data, nosPlatform)
	require.NoError(t, err)

	var u = msg.TimeSeries(7)
	require.NotNil(t, u)
	require.Equal(t, 6, u.Size())

	for i, s := range u.Samples {
		assert.InDelta(t, float64(20*250+i+1), s.Num, 1e-9)
		assert.Equal(t, time.Date(2026, time.October, 14, 12, 3-i, 0, 0, time.UTC), s.Time)
	}
}

func Test_Nos6MinTsunamiBadTime(t *testing.T) {
	var logBuf = CaptureLog(t)

	var data = nosHeader(0) + nosTimeTag(287, 12) +
		"T" + pb(30, 1) + pb(3, 1) + pb(20, 1) +
		pb(1, 2) + pb(2, 2) + pb(3, 2) + pb(4, 2) + pb(5, 2) + pb(6, 2) +
		"4" + pb(20, 2)

	var msg, err = decodeNos(t, data, nosPlatform)
	require.NoError(t, err)

	assert.Nil(t, msg.TimeSeries(7))
	assert.Contains(t, logBuf.String(), "time offset is not correct")

	// Everything after the block still lines up.
	assert.InDelta(t, 20.0, msg.TimeSeries(3).Samples[0].Num, 1e-9)
}

func Test_Nos6MinTwoCharFlag(t *testing.T) {
	var data = nosHeader(0) + nosTimeTag(287, 12) +
		"-7" + pb(300, 3) +
		"3" + pb(10, 2) + pb(200, 2) + pb(15, 2)

	var platform = &PlatformConfig{Sensors: append([]ConfigSensor{{Number: 9, Code: "G1"}}, nosPlatform.Sensors...)}

	var msg, err = decodeNos(t, data, platform)
	require.NoError(t, err)

	assert.InDelta(t, 300.0, msg.TimeSeries(9).Samples[0].Num, 1e-9)
	assert.Equal(t, "10,200,15", msg.TimeSeries(8).Samples[0].Str)
}

func Test_Nos6MinUnknownFlag(t *testing.T) {
	var logBuf = CaptureLog(t)

	var data = nosHeader(0) + nosTimeTag(287, 12) + "~" + "4" + pb(20, 2)

	var msg, err = decodeNos(t, data, nosPlatform)
	require.NoError(t, err)

	assert.Contains(t, logBuf.String(), "unrecognized flag")
	assert.Equal(t, 1, msg.TimeSeries(3).Size())
}

func Test_Nos6MinDayNumberLastYear(t *testing.T) {
	// Day 365 seen early in January is from last year.
	var r = &nosRecord{msg: NewDecodedMessage(nil, nil, time.Date(2027, time.January, 1, 0, 10, 0, 0, time.UTC)), minute: 54}

	assert.Equal(t, time.Date(2026, time.December, 31, 23, 54, 0, 0, time.UTC), r.dayNumberTime(365, 23))
}
