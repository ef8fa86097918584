// SPDX-FileCopyrightText: 2026 The dcpdecode Authors
// SPDX-License-Identifier: GPL-2.0-or-later

package dcpdecode

/*------------------------------------------------------------------
 *
 * Purpose:	Main program for standalone application to decode DCP
 *		messages and show the samples.
 *
 * Inputs:	A configuration file with the platform's sensors and the
 *		decoding script.  See config.go.
 *
 *		Raw message data from a file or stdin.  Normally the
 *		whole input is one message.  With -e each line is a
 *		message of its own; blank lines and lines starting with
 *		'#' are copied to the output.
 *
 * Outputs:	stdout
 *
 * Description:	./dcpdecode -c nos.yaml -t 2026-10-14T12:00:00Z < msg.txt
 *
 *------------------------------------------------------------------*/

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/lestrrat-go/strftime"
	"github.com/spf13/pflag"
)

const defaultTimestampFormat = "%Y-%m-%d %H:%M:%S"

// Decoder runs one script over any number of messages and reports on them.
type Decoder struct {
	Script   *Script
	Platform *PlatformConfig
	Settings Settings

	Out       io.Writer
	Timestamp *strftime.Strftime
	HexDump   bool
	Log       *SampleLog     // May be nil.
	Metrics   *DecodeMetrics // May be nil.
}

// DecodeMessage decodes one message.  The message comes back even when
// there is an error, holding whatever was decoded before it.
func (d *Decoder) DecodeMessage(data []byte, startLine int, messageTime time.Time) (*DecodedMessage, error) {
	var raw = &RawMessage{Data: data, StartLine: startLine}
	var msg = NewDecodedMessage(raw, d.Platform, messageTime)

	var err = d.Script.Decode(raw, msg, d.Settings)

	switch {
	case err == nil:
	case errors.Is(err, ErrEndOfData):
		logger.Debug("End of data", "samples", msg.NumSamples())
	default:
		logger.Error("Decode stopped", "err", err, "samples", msg.NumSamples())
	}

	d.Metrics.Observe(msg, err)

	if logErr := d.Log.Write(msg); logErr != nil {
		logger.Error("Sample log", "err", logErr)
	}

	return msg, err
}

// Print shows the samples of a decoded message.
func (d *Decoder) Print(msg *DecodedMessage, err error) {
	var w = d.Out

	if d.HexDump {
		HexDump(w, msg.Raw.Data)
	}

	for _, ts := range msg.AllTimeSeries() {
		fmt.Fprintf(w, "Sensor %d", ts.Sensor)
		if ts.Name != "" {
			fmt.Fprintf(w, " %s", ts.Name)
		}
		fmt.Fprintf(w, ": %d samples\n", ts.Size())

		for _, s := range ts.Samples {
			fmt.Fprintf(w, "  %s  %s", d.Timestamp.FormatString(s.Time), s.Variable.String())
			if flags := s.Flags.String(); flags != "" {
				fmt.Fprintf(w, "  [%s]", flags)
			}
			fmt.Fprintf(w, "\n")
		}
	}

	for _, name := range msg.PMNames() {
		var v, _ = msg.PM(name)
		fmt.Fprintf(w, "PM %s = %s\n", name, v.String())
	}

	fmt.Fprintf(w, "Result: %s\n", DecodeResult(err))
}

func DecodeMain() {
	var configFile = pflag.StringP("config", "c", "", "Configuration file.  Default is to search for dcpdecode.yaml.")
	var inputFile = pflag.StringP("file", "f", "", "Read message from this file instead of stdin.")
	var eachLine = pflag.BoolP("each-line", "e", false, "Each input line is a separate message.")
	var messageTimeStr = pflag.StringP("time", "t", "", "Message time, RFC 3339.  Default is now.")
	var timestampFormat = pflag.StringP("timestamp-format", "T", defaultTimestampFormat, "'strftime' format for sample times.")
	var hexDump = pflag.BoolP("hex-dump", "d", false, "Hex dump each message before its samples.")
	var logDir = pflag.StringP("log-dir", "l", "", "Directory for daily sample log files.")
	var logFile = pflag.StringP("log-file", "L", "", "Sample log file.")
	var metricsFile = pflag.String("metrics-file", "", "Write Prometheus textfile metrics here when done.")
	var scanPastEOL = pflag.Bool("scan-past-eol", false, "Let scans continue past the end of a line.")
	var verbose = pflag.BoolP("verbose", "v", false, "Debug logging.")
	var version = pflag.Bool("version", false, "Print version and exit.")
	var help = pflag.Bool("help", false, "Display help text.")

	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "%s - Decode DCP messages.\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\n")
		fmt.Fprintf(os.Stderr, "Usage: %s [options] < message\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\n")
		pflag.PrintDefaults()
	}

	pflag.Parse()

	if *help {
		pflag.Usage()
		os.Exit(0)
	}

	if *version {
		printVersion(os.Stdout, *verbose)
		return
	}

	if *logDir != "" && *logFile != "" {
		fmt.Fprintf(os.Stderr, "Use -l or -L but not both.\n")
		os.Exit(1)
	}

	var cfg, cfgErr = LoadConfig(*configFile)
	if cfgErr != nil {
		logger.Error("Can't load configuration", "err", cfgErr)
		os.Exit(1)
	}

	var settings = cfg.Settings
	if pflag.CommandLine.Changed("scan-past-eol") {
		settings.ScanPastEOL = *scanPastEOL
	}

	LogInit(IfThenElse(*verbose, "debug", settings.LogLevel))

	var script, scriptErr = cfg.Script.BuildScript(NewRegistry())
	if scriptErr != nil {
		logger.Error("Can't build script", "err", scriptErr)
		os.Exit(1)
	}

	var messageTime = time.Now().UTC()
	if *messageTimeStr != "" {
		var t, err = time.Parse(time.RFC3339, *messageTimeStr)
		if err != nil {
			logger.Error("Bad message time", "time", *messageTimeStr, "err", err)
			os.Exit(1)
		}
		messageTime = t
	}

	var ts, tsErr = strftime.New(*timestampFormat)
	if tsErr != nil {
		logger.Error("Bad timestamp format", "format", *timestampFormat, "err", tsErr)
		os.Exit(1)
	}

	var in io.Reader = os.Stdin
	if *inputFile != "" {
		var f, err = os.Open(*inputFile)
		if err != nil {
			logger.Error("Can't open input", "err", err)
			os.Exit(1)
		}
		defer f.Close()
		in = f
	}

	var sampleLog *SampleLog
	if *logDir != "" {
		sampleLog = NewSampleLog(true, *logDir)
	} else {
		sampleLog = NewSampleLog(false, *logFile)
	}
	defer sampleLog.Close()

	var d = &Decoder{
		Script:    script,
		Platform:  cfg.Platform,
		Settings:  settings,
		Out:       os.Stdout,
		Timestamp: ts,
		HexDump:   *hexDump,
		Log:       sampleLog,
		Metrics:   NewDecodeMetrics(),
	}

	if err := d.Run(in, *eachLine, messageTime); err != nil {
		logger.Error("Reading input", "err", err)
		os.Exit(1)
	}

	if *metricsFile != "" {
		if err := d.Metrics.WriteFile(*metricsFile); err != nil {
			logger.Error("Writing metrics", "err", err)
			os.Exit(1)
		}
	}
}

// Run decodes everything from in.
func (d *Decoder) Run(in io.Reader, eachLine bool, messageTime time.Time) error {
	if !eachLine {
		var data, err = io.ReadAll(in)
		if err != nil {
			return err
		}

		var msg, decodeErr = d.DecodeMessage(data, 0, messageTime)
		d.Print(msg, decodeErr)

		return nil
	}

	var scanner = bufio.NewScanner(in)
	var lineNum = 0

	for scanner.Scan() {
		var line = scanner.Text()

		if len(line) == 0 || strings.HasPrefix(line, "#") {
			/* comment or blank line */
			fmt.Fprintf(d.Out, "%s\n", line)
			lineNum++
			continue
		}

		fmt.Fprintf(d.Out, "\n%s\n", line)

		var msg, decodeErr = d.DecodeMessage([]byte(line+"\n"), lineNum, messageTime)
		d.Print(msg, decodeErr)
		lineNum++
	}

	return scanner.Err()
}
