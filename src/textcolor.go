// SPDX-FileCopyrightText: 2026 The dcpdecode Authors
// SPDX-License-Identifier: GPL-2.0-or-later

package dcpdecode

// Diagnostics side channel.  Nothing here is part of the decoding contract.

import (
	"os"
	"strings"

	"github.com/charmbracelet/log"
)

var logger = log.NewWithOptions(os.Stderr, log.Options{
	Prefix:          "dcpdecode",
	ReportTimestamp: false,
	Level:           log.WarnLevel,
})

// SetLogger replaces the package logger and returns the old one.
func SetLogger(l *log.Logger) *log.Logger {
	var old = logger
	logger = l

	return old
}

// Logger returns the package logger.
func Logger() *log.Logger {
	return logger
}

/*------------------------------------------------------------------
 *
 * Name:	LogInit
 *
 * Purpose:	Set the level from a name such as "debug", "info",
 *		"warn" or "error".  Unknown names leave it alone.
 *
 *------------------------------------------------------------------*/

func LogInit(level string) {
	if level == "" {
		return
	}

	var lvl, err = log.ParseLevel(strings.ToLower(level))
	if err != nil {
		logger.Warn("Unknown log level, ignoring", "level", level)
		return
	}

	logger.SetLevel(lvl)
}
