package dcpdecode

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/lestrrat-go/strftime"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// pflag (not unreasonably) assumes it only ever gets called once. But lots of
// test infrastructure was built around "call this command then this command".
// Running it in Go tests (for coverage analysis and convenience etc.) means
// doing some slight bodges.
func setupPflag(args []string) {
	os.Args = args
	pflag.CommandLine = pflag.NewFlagSet(os.Args[0], pflag.ExitOnError)
}

const csvConfig = `
platform:
  site: TEST01
  sensors:
    - { number: 1, name: WL }
    - { number: 2, name: AT }
script:
  name: csv
  statements:
    - label: st
      steps:
        - { func: csv, args: "1,2" }
`

func writeTestFile(t *testing.T, dir, name, content string) string {
	t.Helper()

	var path = filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func Test_DecodeMain(t *testing.T) {
	var dir = t.TempDir()
	var cfg = writeTestFile(t, dir, "dcpdecode.yaml", csvConfig)
	var in = writeTestFile(t, dir, "msg.txt", "12.5,abc\n")
	var metrics = filepath.Join(dir, "dcpdecode.prom")
	var logDir = filepath.Join(dir, "logs")

	setupPflag([]string{"dcpdecode", "-c", cfg, "-f", in, "-t", "2026-10-14T10:07:32Z",
		"-d", "-l", logDir, "--metrics-file", metrics})

	var logBuf = CaptureLog(t)
	AssertOutputContains(t, DecodeMain, "Sensor 1 WL: 1 samples\n  2026-10-14 10:07:32  12.5\n")

	assert.Contains(t, logBuf.String(), "sensor=2")

	var prom, err = os.ReadFile(metrics)
	require.NoError(t, err)
	assert.Contains(t, string(prom), `dcpdecode_samples_total{flag="E"} 1`)

	assert.FileExists(t, filepath.Join(logDir, time.Now().UTC().Format("2006-01-02")+".log"))
}

func Test_DecodeMainHexDump(t *testing.T) {
	var dir = t.TempDir()
	var cfg = writeTestFile(t, dir, "dcpdecode.yaml", csvConfig)
	var in = writeTestFile(t, dir, "msg.txt", "1,2\n")

	setupPflag([]string{"dcpdecode", "-c", cfg, "-f", in, "-d"})

	AssertOutputContains(t, DecodeMain, "  000:  31 2c 32 0a")
}

func Test_DecodeMainVersion(t *testing.T) {
	setupPflag([]string{"dcpdecode", "--version"})

	AssertOutputContains(t, DecodeMain, "dcpdecode - Version")
}

func newTestDecoder(t *testing.T, out *bytes.Buffer) *Decoder {
	t.Helper()

	var cfg, err = ReadConfig(strings.NewReader(csvConfig))
	require.NoError(t, err)

	var script, buildErr = cfg.Script.BuildScript(NewRegistry())
	require.NoError(t, buildErr)

	var ts, tsErr = strftime.New("%H:%M")
	require.NoError(t, tsErr)

	return &Decoder{
		Script:    script,
		Platform:  cfg.Platform,
		Settings:  cfg.Settings,
		Out:       out,
		Timestamp: ts,
		Metrics:   NewDecodeMetrics(),
	}
}

func Test_DecoderEachLine(t *testing.T) {
	var out bytes.Buffer
	var d = newTestDecoder(t, &out)

	var input = "# two platforms\n1,2\n\n3,M\n"
	require.NoError(t, d.Run(strings.NewReader(input), true, testTime))

	var s = out.String()
	assert.True(t, strings.HasPrefix(s, "# two platforms\n"))
	assert.Contains(t, s, "\n1,2\nSensor 1 WL: 1 samples\n  10:07  1\n")
	assert.Contains(t, s, "  10:07  MISSING  [M]\n")
	assert.Equal(t, 2, strings.Count(s, "Result: ok"))
}

func Test_DecoderKeepsPartialResults(t *testing.T) {
	var out bytes.Buffer
	var d = newTestDecoder(t, &out)

	var msg, err = d.DecodeMessage([]byte("1"), 0, testTime)

	assert.ErrorIs(t, err, ErrEndOfData)
	assert.Equal(t, 1, msg.NumSamples())

	d.Print(msg, err)
	assert.Contains(t, out.String(), "Result: end_of_data")
}
