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
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeTimestamp(t *testing.T) {
	tests := []struct {
		name string
		in   string
		out  string
		ok   bool
	}{
		{"plain", "2023-05-01T10:00:00", "2023-05-01T10:00:00", true},
		{"utc designator stripped", "2023-05-01T10:00:00Z", "2023-05-01T10:00:00", true},
		{"fraction stripped", "2023-05-01T10:00:00.123456", "2023-05-01T10:00:00", true},
		{"fraction and designator stripped", "2023-05-01T10:00:00.999Z", "2023-05-01T10:00:00", true},
		{"numeric offset kept", "2023-05-01T10:00:00+02:00", "2023-05-01T10:00:00+02:00", true},
		{"fraction stripped offset kept", "2023-05-01T10:00:00.123456+02:00", "2023-05-01T10:00:00+02:00", true},
		{"empty fraction stripped", "2023-05-01T10:00:00.Z", "2023-05-01T10:00:00", true},
		{"not a timestamp", "yesterday", "", false},
		{"date only", "2023-05-01", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := normalizeTimestamp(tt.in)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.out, got)
			}
		})
	}
}

func TestParseTimestampPreservesOffset(t *testing.T) {
	got, err := parseTimestamp("startTime", "2023-05-01T10:00:00.123456+02:00")
	require.NoError(t, err)

	want := time.Date(2023, 5, 1, 10, 0, 0, 0, time.FixedZone("", 2*60*60))
	assert.True(t, want.Equal(got), "got %s, want %s", got, want)
}

func TestParseTimestampMalformed(t *testing.T) {
	_, err := parseTimestamp("startTime", "not a time")
	var malformed *MalformedPayloadError
	require.ErrorAs(t, err, &malformed)
	assert.Equal(t, "startTime", malformed.Field)
}

func statusPayload(id int64, finished, success bool) []byte {
	endTime := "0001-01-01T00:00:00Z"
	if finished {
		endTime = "2023-05-01T10:05:00Z"
	}
	return []byte(fmt.Sprintf(
		`{"id": %d, "startTime": "2023-05-01T10:00:00.123456Z", "endTime": %q,
		  "error": "", "output": {}, "finished": %t, "success": %t}`,
		id, endTime, finished, success))
}

func TestDecodeRecord(t *testing.T) {
	rec, err := DecodeRecord(statusPayload(7, false, false))
	require.NoError(t, err)

	assert.Equal(t, JobID(7), rec.ID)
	assert.True(t, rec.StartTime.Equal(time.Date(2023, 5, 1, 10, 0, 0, 0, time.UTC)))
	assert.Nil(t, rec.EndTime, "a zero endTime means the job is still running")
	assert.Equal(t, InProgress, rec.Status())
}

func TestDecodeRecordFinished(t *testing.T) {
	rec, err := DecodeRecord(statusPayload(7, true, true))
	require.NoError(t, err)

	require.NotNil(t, rec.EndTime)
	assert.True(t, rec.EndTime.Equal(time.Date(2023, 5, 1, 10, 5, 0, 0, time.UTC)))
	assert.Equal(t, Finished, rec.Status())
}

// The lifecycle state is a pure function of the finished/success pair.  An
// unfinished job is in progress no matter what the success flag claims.
func TestStatusFromFlags(t *testing.T) {
	tests := []struct {
		finished, success bool
		want              Lifecycle
	}{
		{false, false, InProgress},
		{false, true, InProgress},
		{true, false, Failed},
		{true, true, Finished},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("finished=%t success=%t", tt.finished, tt.success), func(t *testing.T) {
			rec, err := DecodeRecord(statusPayload(1, tt.finished, tt.success))
			require.NoError(t, err)
			assert.Equal(t, tt.want, rec.Status())
			assert.Equal(t, tt.finished, rec.Status().Terminal())
		})
	}
}

func TestStatusNilRecord(t *testing.T) {
	var rec *Record
	assert.Equal(t, NotStarted, rec.Status())
	assert.False(t, rec.Status().Terminal())
}

func TestDecodeRecordMissingFields(t *testing.T) {
	tests := []struct {
		field   string
		payload string
	}{
		{"id", `{"startTime": "2023-05-01T10:00:00Z", "endTime": "0001-01-01T00:00:00Z", "finished": false, "success": false}`},
		{"startTime", `{"id": 1, "endTime": "0001-01-01T00:00:00Z", "finished": false, "success": false}`},
		{"endTime", `{"id": 1, "startTime": "2023-05-01T10:00:00Z", "finished": false, "success": false}`},
		{"finished", `{"id": 1, "startTime": "2023-05-01T10:00:00Z", "endTime": "0001-01-01T00:00:00Z", "success": false}`},
		{"success", `{"id": 1, "startTime": "2023-05-01T10:00:00Z", "endTime": "0001-01-01T00:00:00Z", "finished": false}`},
	}
	for _, tt := range tests {
		t.Run(tt.field, func(t *testing.T) {
			_, err := DecodeRecord([]byte(tt.payload))
			var malformed *MalformedPayloadError
			require.ErrorAs(t, err, &malformed)
			assert.Equal(t, tt.field, malformed.Field)
		})
	}
}

func TestDecodeRecordBadJSON(t *testing.T) {
	_, err := DecodeRecord([]byte(`{"id": `))
	var malformed *MalformedPayloadError
	assert.ErrorAs(t, err, &malformed)
}

func TestDecodeTransferStats(t *testing.T) {
	raw := []byte(`{"transferring": [
		{"bytes": 50, "name": "a.bin", "size": 100, "speed": 10.5, "speedAvg": 9.5},
		{"bytes": 1, "name": "b.bin", "size": 2, "speed": 0, "speedAvg": 0}
	]}`)
	stats, err := DecodeTransferStats(raw)
	require.NoError(t, err)
	require.NotNil(t, stats)

	assert.Equal(t, "a.bin", stats.Name)
	assert.Equal(t, int64(50), stats.Bytes)
	assert.Equal(t, int64(100), stats.Size)
	assert.Equal(t, 10.5, stats.Speed)
}

func TestDecodeTransferStatsAbsent(t *testing.T) {
	for _, raw := range []string{`{}`, `{"transferring": []}`, `{"transferring": null}`} {
		stats, err := DecodeTransferStats([]byte(raw))
		require.NoError(t, err)
		assert.Nil(t, stats)
	}
}

func TestDecodeTransferStatsMalformed(t *testing.T) {
	_, err := DecodeTransferStats([]byte(`{"transferring": "lots"}`))
	var malformed *MalformedPayloadError
	assert.ErrorAs(t, err, &malformed)
}

func TestPercentageZeroSize(t *testing.T) {
	stats := &TransferStats{Bytes: 10, Size: 0}
	_, err := stats.Percentage()
	assert.ErrorIs(t, err, ErrDivisionUndefined)

	stats.Size = 40
	pct, err := stats.Percentage()
	require.NoError(t, err)
	assert.Equal(t, 0.25, pct)
}
