/***************************************************************
 *
 * Copyright (C) 2025, The rcpilot Authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License"); you
 * may not use this file except in compliance with the License.  You may
 * obtain a copy of the License at
 *
 *    http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 *
 ***************************************************************/

// Package logging wires logrus to the configured level and destination.
package logging

import (
	"os"
	"path/filepath"

	"github.com/go-kit/log/term"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/rcpilot/rcpilot/param"
)

var logFHandle *os.File

// Setup applies the configured log level and, if Logging.LogLocation is
// set, redirects all output to that file.  Must run after config.InitClient.
func Setup() error {
	levelStr := param.Logging_Level.GetString()
	level, err := log.ParseLevel(levelStr)
	if err != nil {
		return errors.Wrapf(err, "unknown log level %q", levelStr)
	}
	log.SetLevel(level)

	logLocation := param.Logging_LogLocation.GetString()
	if logLocation == "" {
		log.SetOutput(os.Stderr)
		log.SetFormatter(&log.TextFormatter{
			FullTimestamp:          true,
			ForceColors:            term.IsTerminal(os.Stderr),
			DisableLevelTruncation: true,
		})
		return nil
	}

	if dir := filepath.Dir(logLocation); dir != "" {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return errors.Wrap(err, "failed to create log directory")
		}
	}
	f, err := os.OpenFile(logLocation, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0640)
	if err != nil {
		return errors.Wrap(err, "failed to open log file")
	}
	logFHandle = f
	log.SetOutput(f)

	// Colors make no sense in a file
	log.SetFormatter(&log.TextFormatter{
		FullTimestamp:          true,
		DisableColors:          true,
		DisableLevelTruncation: true,
	})
	return nil
}

// CloseLogger releases the log file handle.  Intended for tests; in normal
// operation the OS reclaims the handle at process exit.
func CloseLogger() {
	if logFHandle != nil {
		_ = logFHandle.Close()
		logFHandle = nil
	}
}
