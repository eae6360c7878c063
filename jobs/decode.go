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

package jobs

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/grafana/regexp"
)

// MalformedPayloadError indicates a daemon response that does not match the
// documented protocol: a required field is missing or a timestamp cannot be
// parsed even after normalization.  It always propagates; retrying a
// protocol mismatch cannot help.
type MalformedPayloadError struct {
	Field  string
	Reason string
}

func (e *MalformedPayloadError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("malformed job payload: field %q %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("malformed job payload: %s", e.Reason)
}

// The daemon emits ISO-8601 timestamps with two known deviations: a
// fractional-seconds component of arbitrary precision, and a timezone
// suffix that is sometimes a bare letter abbreviation instead of a numeric
// offset.  The expression captures both so they can be stripped; a numeric
// +HH:MM offset is kept.
var isoTimeRe = regexp.MustCompile(`[0-9]{4}-[0-9]{2}-[0-9]{2}T[0-9]{2}:[0-9]{2}:[0-9]{2}(\.[0-9]*)?(\+[0-9]{2}:[0-9]{2}|[a-zA-Z])?`)

// normalizeTimestamp rewrites a daemon timestamp into a form the standard
// layouts can parse.  Returns ok=false when the string does not contain an
// ISO-8601 timestamp at all.
func normalizeTimestamp(ts string) (string, bool) {
	m := isoTimeRe.FindStringSubmatch(ts)
	if m == nil {
		return "", false
	}
	if m[1] != "" {
		ts = strings.Replace(ts, m[1], "", 1)
	}
	if m[2] != "" && !strings.HasPrefix(m[2], "+") {
		ts = strings.Replace(ts, m[2], "", 1)
	}
	return ts, true
}

func parseTimestamp(field, raw string) (time.Time, error) {
	norm, ok := normalizeTimestamp(raw)
	if !ok {
		return time.Time{}, &MalformedPayloadError{Field: field, Reason: fmt.Sprintf("is not an ISO-8601 timestamp: %q", raw)}
	}
	if t, err := time.Parse(time.RFC3339, norm); err == nil {
		return t, nil
	}
	t, err := time.Parse("2006-01-02T15:04:05", norm)
	if err != nil {
		return time.Time{}, &MalformedPayloadError{Field: field, Reason: fmt.Sprintf("cannot be parsed after normalization: %q", raw)}
	}
	return t, nil
}

// DecodeRecord parses a raw job/status payload.  The id, startTime,
// endTime, finished and success fields are required; their absence is a
// protocol mismatch, not a transient condition.
func DecodeRecord(raw []byte) (*Record, error) {
	var payload struct {
		ID        *int64          `json:"id"`
		StartTime *string         `json:"startTime"`
		EndTime   *string         `json:"endTime"`
		Error     string          `json:"error"`
		Output    json.RawMessage `json:"output"`
		Success   *bool           `json:"success"`
		Finished  *bool           `json:"finished"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, &MalformedPayloadError{Reason: err.Error()}
	}

	switch {
	case payload.ID == nil:
		return nil, &MalformedPayloadError{Field: "id", Reason: "is missing"}
	case payload.StartTime == nil:
		return nil, &MalformedPayloadError{Field: "startTime", Reason: "is missing"}
	case payload.EndTime == nil:
		return nil, &MalformedPayloadError{Field: "endTime", Reason: "is missing"}
	case payload.Finished == nil:
		return nil, &MalformedPayloadError{Field: "finished", Reason: "is missing"}
	case payload.Success == nil:
		return nil, &MalformedPayloadError{Field: "success", Reason: "is missing"}
	}

	startTime, err := parseTimestamp("startTime", *payload.StartTime)
	if err != nil {
		return nil, err
	}

	rec := &Record{
		ID:        JobID(*payload.ID),
		StartTime: startTime,
		Error:     payload.Error,
		Output:    payload.Output,
		Success:   *payload.Success,
		Finished:  *payload.Finished,
	}

	endTime, err := parseTimestamp("endTime", *payload.EndTime)
	if err != nil {
		return nil, err
	}
	// The daemon reports the zero timestamp while the job is still running.
	if !endTime.IsZero() {
		rec.EndTime = &endTime
	}

	return rec, nil
}

// DecodeTransferStats reads the "transferring" array of a core/stats
// payload.  An absent or empty array means the job is not a file transfer
// or has no stats yet; that is not an error.  Jobs submitted by this client
// carry one file per job, so the first element is the job's transfer.
func DecodeTransferStats(raw []byte) (*TransferStats, error) {
	var payload struct {
		Transferring []TransferStats `json:"transferring"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, &MalformedPayloadError{Field: "transferring", Reason: err.Error()}
	}
	if len(payload.Transferring) == 0 {
		return nil, nil
	}
	stats := payload.Transferring[0]
	return &stats, nil
}
