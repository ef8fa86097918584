package dcpdecode

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeString(t *testing.T, script *Script, data string) (*DecodedMessage, error) {
	t.Helper()

	var raw = &RawMessage{Data: []byte(data)}
	var msg = NewDecodedMessage(raw, nil, testTime)

	return msg, script.Decode(raw, msg, DefaultSettings())
}

func Test_ScriptEndlessLoop(t *testing.T) {
	CaptureLog(t)

	var script = NewScript("loop")
	script.AddStatement("again", Scan{N: 0, Pattern: ScanChar, Target: "z", FailLabel: "again"})

	var _, err = decodeString(t, script, "abc")

	var loop *EndlessLoopError
	require.ErrorAs(t, err, &loop)
	assert.Equal(t, "again", loop.Label)
	assert.Equal(t, 0, loop.Statement)
	assert.Equal(t, 0, loop.Position)
}

func Test_ScriptJumpAndFallThrough(t *testing.T) {
	var script = NewScript("jump")
	script.AddStatement("first",
		Scan{N: 10, Pattern: ScanString, Target: "WL", FailLabel: "other"},
		Skip{N: 2},
		newCsvStep(t, "1"))
	script.AddStatement("other", newCsvStep(t, "2"))

	// Found: first, then falls through to other.
	var msg, err = decodeString(t, script, "xx WL 3.5\n")
	require.NoError(t, err)
	assert.Equal(t, 1, msg.TimeSeries(1).Size())
	assert.Equal(t, 1, msg.TimeSeries(2).Size())

	// Not found: straight to other.
	msg, err = decodeString(t, script, "7.25\n")
	require.NoError(t, err)
	assert.Nil(t, msg.TimeSeries(1))
	assert.InDelta(t, 7.25, msg.TimeSeries(2).Samples[0].Num, 1e-9)
}

func newCsvStep(t *testing.T, args string) *CsvFunction {
	t.Helper()

	return newCsv(t, args, nil)
}

func Test_ScriptUnknownLabel(t *testing.T) {
	var script = NewScript("bad")
	script.AddStatement("st", Scan{N: 1, Pattern: ScanLetter, FailLabel: "nowhere"})

	var _, err = decodeString(t, script, "1")

	var se *ScriptError
	assert.ErrorAs(t, err, &se)
}

func Test_ScriptLabelIgnoresCase(t *testing.T) {
	var script = NewScript("case")
	script.AddStatement("st", Scan{N: 0, Pattern: ScanLetter, FailLabel: "NUM"})
	script.AddStatement("letters", SkipLines{N: 5})
	script.AddStatement("num", newCsvStep(t, "4"))

	var msg, err = decodeString(t, script, "4\n")
	require.NoError(t, err)
	assert.Equal(t, 1, msg.TimeSeries(4).Size())
}

func Test_ScriptEndOfDataKeepsSamples(t *testing.T) {
	var script = NewScript("eod")
	script.AddStatement("st", newCsvStep(t, "1"), SkipLines{N: 1}, newCsvStep(t, "2"), SkipLines{N: 1}, newCsvStep(t, "3"))

	var msg, err = decodeString(t, script, "1\n2\n")

	assert.ErrorIs(t, err, ErrEndOfData)
	assert.Equal(t, 2, msg.NumSamples())
}

func Test_ScriptFatalStops(t *testing.T) {
	var script = NewScript("fatal")
	script.AddStatement("st", Skip{N: -1}, newCsvStep(t, "1"))

	var msg, err = decodeString(t, script, "1")

	var se *ScriptError
	require.ErrorAs(t, err, &se)
	assert.Contains(t, err.Error(), "statement 'st'")
	assert.Equal(t, 0, msg.NumSamples())
}

func Test_ScriptEmpty(t *testing.T) {
	var _, err = decodeString(t, NewScript("empty"), "1")

	var se *ScriptError
	assert.ErrorAs(t, err, &se)
}

func Test_ScriptSharedAcrossMessages(t *testing.T) {
	var script = NewScript("shared")
	script.AddStatement("st", newCsvStep(t, "1,2"))

	for _, data := range []string{"1,2", "3,4\n", "5"} {
		var msg, err = decodeString(t, script, data)
		if err != nil {
			require.ErrorIs(t, err, ErrEndOfData)
		}
		assert.GreaterOrEqual(t, msg.NumSamples(), 1)
	}
}

func Test_IsMissingTokenNilScript(t *testing.T) {
	var s *Script

	assert.False(t, s.IsMissingToken("-999"))
}
