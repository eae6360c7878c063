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

package rcclient

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"syscall"

	"github.com/pkg/errors"
)

// StatusError is returned when the daemon answers with a non-2xx status.
// The daemon reports failures as a JSON body with an "error" field; Message
// carries that field when present, otherwise the raw body.
type StatusError struct {
	Endpoint string
	Code     int
	Message  string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("daemon returned status %d for %s: %s", e.Code, e.Endpoint, e.Message)
}

// StopNotAcknowledgedError indicates a job/stop request that the daemon did
// not acknowledge with an empty body.
type StopNotAcknowledgedError struct {
	JobID int64
	Body  string
}

func (e *StopNotAcknowledgedError) Error() string {
	return fmt.Sprintf("stop of job %d not acknowledged by daemon: %s", e.JobID, e.Body)
}

// ErrDirNotFound is returned by Ls when the daemon reports the listed
// directory does not exist.
var ErrDirNotFound = errors.New("directory not found")

// IsTransient reports whether err looks like a recoverable network failure:
// a timeout, a refused or reset connection, or a dial error.  Daemon-side
// status errors and payload decode failures are never transient.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	if errors.Is(err, syscall.ECONNREFUSED) || errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.EPIPE) || errors.Is(err, syscall.EHOSTUNREACH) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	// url.Error wraps every transport-level failure from http.Client.Do;
	// anything that never produced a response is treated as retryable.
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		var statusErr *StatusError
		return !errors.As(err, &statusErr)
	}

	var opErr *net.OpError
	return errors.As(err, &opErr)
}
