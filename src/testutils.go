// SPDX-FileCopyrightText: 2026 The dcpdecode Authors
// SPDX-License-Identifier: GPL-2.0-or-later

package dcpdecode

import (
	"bytes"
	"io"
	"os"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func AssertOutputContains(t *testing.T, command func(), expectedOutputContains string) {
	t.Helper()

	var oldStdout = os.Stdout
	defer func() {
		os.Stdout = oldStdout
	}()

	var r, w, _ = os.Pipe()
	os.Stdout = w

	command()

	w.Close() //nolint:gosec

	os.Stdout = oldStdout

	var outputBytes, readErr = io.ReadAll(r)

	require.NoError(t, readErr)

	assert.Contains(t, string(outputBytes), expectedOutputContains)
}

// CaptureLog sends the package logger to a buffer, at debug level, until
// the test ends.
func CaptureLog(t *testing.T) *bytes.Buffer {
	t.Helper()

	var buf = new(bytes.Buffer)
	var old = SetLogger(log.NewWithOptions(buf, log.Options{Level: log.DebugLevel}))

	t.Cleanup(func() { SetLogger(old) })

	return buf
}
