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

// Package jobs is the job-tracking core: the registry of daemon-assigned
// job ids this client is responsible for, the per-job status decoding, the
// reconciliation pass against the daemon's live job list, transfer-stats
// aggregation, and the stop/confirm protocol.
package jobs

import (
	"encoding/json"
	"time"

	"github.com/pkg/errors"
)

// JobID is the opaque positive integer the daemon assigns at submission.
// The daemon may evict old job records at will; an id disappearing from the
// daemon's job list does not mean the job never ran.
type JobID int64

// Lifecycle is the derived per-job state.  Finished and Failed are
// terminal: once observed, later daemon responses never re-classify the job.
type Lifecycle int

const (
	NotStarted Lifecycle = iota
	InProgress
	Finished
	Failed
)

func (l Lifecycle) String() string {
	switch l {
	case NotStarted:
		return "not started"
	case InProgress:
		return "in progress"
	case Finished:
		return "finished"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Terminal reports whether the state admits no further transitions.
func (l Lifecycle) Terminal() bool {
	return l == Finished || l == Failed
}

// TransferStats carries byte-level progress for file-transfer jobs.  It is
// attached to a Record only while the daemon reports the job under the
// "transferring" stats group.
type TransferStats struct {
	Bytes    int64   `json:"bytes"`
	Name     string  `json:"name"`
	Size     int64   `json:"size"`
	Speed    float64 `json:"speed"`
	SpeedAvg float64 `json:"speedAvg"`
}

// ErrDivisionUndefined is returned when a progress percentage has a zero
// denominator.  It is never silently coerced to zero or infinity.
var ErrDivisionUndefined = errors.New("progress percentage undefined: total size is zero")

// Percentage returns the transferred fraction in [0, 1].
func (s *TransferStats) Percentage() (float64, error) {
	if s.Size == 0 {
		return 0, ErrDivisionUndefined
	}
	return float64(s.Bytes) / float64(s.Size), nil
}

// Record is the last daemon-reported status of one job, as decoded from
// job/status, with transfer stats merged in when available.  Lifecycle state
// is always computed from the flags, never stored.
type Record struct {
	ID        JobID
	StartTime time.Time
	EndTime   *time.Time
	Error     string
	Output    json.RawMessage
	Success   bool
	Finished  bool
	Stats     *TransferStats
}

// Status derives the lifecycle state.  A nil record means the job was
// registered but never successfully polled.  A job cannot succeed before it
// finishes, so an unfinished record is always InProgress regardless of the
// success flag.
func (r *Record) Status() Lifecycle {
	if r == nil {
		return NotStarted
	}
	if !r.Finished {
		return InProgress
	}
	if r.Success {
		return Finished
	}
	return Failed
}
