// SPDX-FileCopyrightText: 2026 The dcpdecode Authors
// SPDX-License-Identifier: GPL-2.0-or-later

package dcpdecode

/*------------------------------------------------------------------
 *
 * Purpose:	Read the decoder configuration file.
 *
 * Description:	YAML.  Three sections, all optional except that
 *		decoding needs a script:
 *
 *		settings:
 *		  scan_past_eol: false
 *		  loop_history: 50
 *		  log_level: warn
 *		platform:
 *		  site: 8454000
 *		  sensors:
 *		    - { number: 1, name: WL, code: A1 }
 *		script:
 *		  name: st
 *		  statements:
 *		    - label: st
 *		      steps:
 *		        - { func: csv, args: "1,2,3" }
 *
 *		See script_config.go for the steps.
 *
 *------------------------------------------------------------------*/

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Settings are the knobs read once per decode.
type Settings struct {
	ScanPastEOL bool   `yaml:"scan_past_eol"`
	LoopHistory int    `yaml:"loop_history"`
	LogLevel    string `yaml:"log_level"`
}

func DefaultSettings() Settings {
	return Settings{LoopHistory: DefaultLoopHistory, LogLevel: "warn"}
}

func (s Settings) CursorOptions() CursorOptions {
	return CursorOptions{ScanPastEOL: s.ScanPastEOL, LoopHistory: s.LoopHistory}
}

// DecoderConfig is the whole file.
type DecoderConfig struct {
	Settings Settings        `yaml:"settings"`
	Platform *PlatformConfig `yaml:"platform"`
	Script   *ScriptConfig   `yaml:"script"`

	// Where it came from, if a file.
	Path string `yaml:"-"`
}

var config_search_locations = []string{
	"dcpdecode.yaml",      // Current working directory
	"data/dcpdecode.yaml", // Source tree
	"/usr/local/share/dcpdecode/dcpdecode.yaml",
	"/usr/share/dcpdecode/dcpdecode.yaml",
}

// ErrNoConfig means none of the places we looked had a file.
var ErrNoConfig = errors.New("no configuration file found")

/*------------------------------------------------------------------
 *
 * Name:	LoadConfig
 *
 * Purpose:	Find and parse the configuration file.
 *
 * Inputs:	path	- Explicit file name.  Empty means try each of
 *			  config_search_locations in turn.
 *
 *------------------------------------------------------------------*/

func LoadConfig(path string) (*DecoderConfig, error) {
	var locations = config_search_locations
	if path != "" {
		locations = []string{path}
	}

	var fp *os.File
	for _, location := range locations {
		var err error
		fp, err = os.Open(location) //nolint:gosec

		if err == nil {
			defer fp.Close()
			break
		}

		if path != "" {
			return nil, fmt.Errorf("opening config: %w", err)
		}
	}

	if fp == nil {
		logger.Error("Could not open any of these file locations", "locations", locations)
		return nil, ErrNoConfig
	}

	var cfg, err = ReadConfig(fp)
	if err != nil {
		return nil, fmt.Errorf("config file %s: %w", fp.Name(), err)
	}
	cfg.Path = fp.Name()

	logger.Info("Loaded config", "path", cfg.Path)

	return cfg, nil
}

// ReadConfig parses a config document.  Missing settings get their
// defaults.
func ReadConfig(r io.Reader) (*DecoderConfig, error) {
	var data, readErr = io.ReadAll(r)
	if readErr != nil {
		return nil, readErr
	}

	var cfg = &DecoderConfig{Settings: DefaultSettings()}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	if cfg.Settings.LoopHistory <= 0 {
		cfg.Settings.LoopHistory = DefaultLoopHistory
	}

	return cfg, nil
}
