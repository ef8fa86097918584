package dcpdecode

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRegex(t *testing.T, args string) *RegexFunction {
	t.Helper()

	var f = new(RegexFunction)
	require.NoError(t, f.SetArguments(args, nil))

	return f
}

func Test_RegexMatch(t *testing.T) {
	var c = newTestCursor("  45.2 rest")
	var msg = newTestMessage(c)

	var r = newRegex(t, "(?<sensor3>[0-9.]+)").Execute(c, msg)
	require.True(t, r.IsContinue())

	require.Equal(t, 1, msg.TimeSeries(3).Size())
	assert.InDelta(t, 45.2, msg.TimeSeries(3).Samples[0].Num, 1e-9)
	assert.Equal(t, 6, c.Pos())
	assert.Equal(t, " rest", string(c.Remaining()))
}

func Test_RegexNoMatch(t *testing.T) {
	var c = newTestCursor("no numbers here")
	var msg = newTestMessage(c)

	newRegex(t, "(?<sensor3>[0-9.]+)").Execute(c, msg)

	require.Equal(t, 1, msg.TimeSeries(3).Size())
	assert.True(t, msg.TimeSeries(3).Samples[0].IsMissing())
	assert.Equal(t, 0, c.Pos())
}

func Test_RegexStripsCommas(t *testing.T) {
	var c = newTestCursor("Stage: 1,234.5 ft")
	var msg = newTestMessage(c)

	newRegex(t, `Stage:\s*(?P<sensor7>[-0-9.,]+)`).Execute(c, msg)

	assert.InDelta(t, 1234.5, msg.TimeSeries(7).Samples[0].Num, 1e-9)
	assert.Equal(t, " ft", string(c.Remaining()))
}

func Test_RegexUnparsable(t *testing.T) {
	CaptureLog(t)
	var c = newTestCursor("v=..")
	var msg = newTestMessage(c)

	newRegex(t, `v=(?<sensor1>[0-9.]+)`).Execute(c, msg)

	assert.True(t, msg.TimeSeries(1).Samples[0].IsError())
}

func Test_RegexBadArguments(t *testing.T) {
	for _, args := range []string{
		"[0-9",
		"([0-9]+)",
		"(?<value>[0-9]+)",
		"(?<sensor1>[0-9]+) (?<sensor2>[0-9]+)",
	} {
		var ae *ArgumentError
		assert.ErrorAs(t, new(RegexFunction).SetArguments(args, nil), &ae, args)
	}
}
