// SPDX-FileCopyrightText: 2026 The dcpdecode Authors
// SPDX-License-Identifier: GPL-2.0-or-later

package dcpdecode

/*------------------------------------------------------------------
 *
 * Purpose:	Save decoded samples to a log file.
 *
 * Description: One CSV line per sample, for easy reading and later
 *		processing.
 *
 *		There are two alternatives here.
 *
 *		-L logfile		Specify full file path.
 *
 *		-l logdir		Daily names will be created here.
 *
 *		Use one or the other but not both.
 *
 *------------------------------------------------------------------*/

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/lestrrat-go/strftime"
)

const sampleLogHeader = "utime,isotime,site,sensor,name,line,value,flags"

// Daily file names, from the current date, UTC.
const sampleLogDailyFormat = "%Y-%m-%d.log"

type SampleLog struct {
	dailyNames bool
	path       string // Directory for daily names, otherwise the file.
	fp         *os.File
	openFname  string // Applicable only when dailyNames is true.

	now func() time.Time
}

/*------------------------------------------------------------------
 *
 * Function:	NewSampleLog
 *
 * Inputs:	dailyNames	- True if daily names should be generated.
 *				  In this case path is a directory.
 *				  When false, path would be the file name.
 *
 *		path		- Log file name or just directory.
 *				  Use "." for current directory.
 *				  Empty string disables feature.
 *
 * Description:	The file is kept open.  We don't open/close for every
 *		new item.
 *
 *------------------------------------------------------------------*/

func NewSampleLog(dailyNames bool, path string) *SampleLog {
	var l = &SampleLog{dailyNames: dailyNames, now: func() time.Time { return time.Now().UTC() }}

	if len(path) == 0 {
		return l
	}

	if !dailyNames {
		// Single file.  Typically logrotate would be used to keep size under control.
		logger.Info("Log file", "path", path)
		l.path = path
		return l
	}

	var stat, statErr = os.Stat(path)

	switch {
	case statErr == nil && stat.IsDir():
		l.path = path
	case statErr == nil:
		logger.Error("Log file location is not a directory, using current working directory instead", "path", path)
		l.path = "."
	default:
		// Doesn't exist.  Try to create it.  Parent directory must exist.
		if mkdirErr := os.Mkdir(path, 0o755); mkdirErr == nil { //nolint:gosec
			logger.Info("Log file location has been created", "path", path)
			l.path = path
		} else {
			logger.Error("Failed to create log file location, using current working directory instead",
				"path", path, "err", mkdirErr)
			l.path = "."
		}
	}

	return l
}

// Enabled is false when no path was given.
func (l *SampleLog) Enabled() bool {
	return l != nil && len(l.path) > 0
}

func (l *SampleLog) open() error {
	var fullPath = l.path

	if l.dailyNames {
		var fname, err = strftime.Format(sampleLogDailyFormat, l.now())
		if err != nil {
			return err
		}

		// Close current file if name has changed
		if l.fp != nil && fname != l.openFname {
			l.Close()
		}

		if l.fp != nil {
			return nil
		}

		fullPath = filepath.Join(l.path, fname)
		l.openFname = fname
	} else if l.fp != nil {
		return nil
	}

	// Header only if this will be the first line.
	var _, statErr = os.Stat(fullPath)
	var alreadyThere = statErr == nil

	logger.Info("Opening log file", "path", fullPath)

	var f, openErr = os.OpenFile(fullPath, os.O_RDWR|os.O_APPEND|os.O_CREATE, 0o644) //nolint:gosec
	if openErr != nil {
		l.openFname = ""
		return fmt.Errorf("can't open log file %s for write: %w", fullPath, openErr)
	}
	l.fp = f

	if !alreadyThere {
		fmt.Fprintln(l.fp, sampleLogHeader)
	}

	return nil
}

// Write saves every sample of a decoded message.
func (l *SampleLog) Write(msg *DecodedMessage) error {
	if !l.Enabled() {
		return nil
	}

	if err := l.open(); err != nil {
		return err
	}

	var site = ""
	if msg.Platform != nil {
		site = msg.Platform.Site
	}

	var w = csv.NewWriter(l.fp)

	for _, ts := range msg.AllTimeSeries() {
		for _, s := range ts.Samples {
			var t = s.Time.UTC()
			_ = w.Write([]string{
				strconv.FormatInt(t.Unix(), 10), t.Format(time.RFC3339),
				site, strconv.Itoa(ts.Sensor), ts.Name, strconv.Itoa(s.Line),
				s.Variable.String(), s.Flags.String(),
			})
		}
	}

	w.Flush()

	return w.Error()
}

// Close any open log file.  Called when exiting or when date changes.
func (l *SampleLog) Close() {
	if l == nil || l.fp == nil {
		return
	}

	logger.Info("Closing log file", "name", IfThenElse(l.dailyNames, l.openFname, l.path))

	l.fp.Close()
	l.fp = nil
	l.openFname = ""
}
