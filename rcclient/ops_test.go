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
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rcpilot/rcpilot/test_utils"
)

func TestCopyFile(t *testing.T) {
	ctx := context.Background()
	mock := test_utils.NewMockDaemon(t)
	client := New(mock.URL())
	defer client.Close()

	id, err := client.CopyFile(ctx, "src:", "a.bin", "dst:", "a.bin")
	require.NoError(t, err)
	assert.Equal(t, int64(1), id)

	ids, err := client.JobList(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int64{1}, ids)
}

func TestJobListMixedEncodings(t *testing.T) {
	ctx := context.Background()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"jobids": [1, "2", 3]}`))
	}))
	defer srv.Close()

	client := New(srv.URL)
	defer client.Close()

	ids, err := client.JobList(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2, 3}, ids)
}

func TestJobStopAcknowledged(t *testing.T) {
	ctx := context.Background()
	mock := test_utils.NewMockDaemon(t)
	mock.AddJob(1, map[string]any{"finished": false})

	client := New(mock.URL())
	defer client.Close()

	require.NoError(t, client.JobStop(ctx, 1))
	assert.Equal(t, []int64{1}, mock.StopCalls)
}

func TestJobStopNonEmptyBody(t *testing.T) {
	ctx := context.Background()
	mock := test_utils.NewMockDaemon(t)
	mock.AddJob(1, map[string]any{"finished": false})
	mock.StopBody = map[string]any{"status": "queued"}

	client := New(mock.URL())
	defer client.Close()

	err := client.JobStop(ctx, 1)
	var notAcked *StopNotAcknowledgedError
	require.ErrorAs(t, err, &notAcked)
	assert.Equal(t, int64(1), notAcked.JobID)
	assert.Contains(t, notAcked.Body, "queued")
}

func TestJobStopUnknownJob(t *testing.T) {
	ctx := context.Background()
	mock := test_utils.NewMockDaemon(t)

	client := New(mock.URL())
	defer client.Close()

	err := client.JobStop(ctx, 99)
	var notAcked *StopNotAcknowledgedError
	require.ErrorAs(t, err, &notAcked)
	assert.Contains(t, notAcked.Body, "job not found")
}

func TestLs(t *testing.T) {
	ctx := context.Background()
	mock := test_utils.NewMockDaemon(t)
	mock.ListResult = []map[string]any{
		{"Path": "docs", "Name": "docs", "Size": int64(-1), "IsDir": true},
		{"Path": "a.bin", "Name": "a.bin", "Size": int64(1024), "IsDir": false},
	}

	client := New(mock.URL())
	defer client.Close()

	entries, err := client.Ls(ctx, "remote:", "")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.True(t, entries[0].IsDir)
	assert.Equal(t, int64(1024), entries[1].Size)
}

func TestStat(t *testing.T) {
	ctx := context.Background()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"item": {"Path": "a.bin", "Name": "a.bin", "Size": 1024, "IsDir": false}}`))
	}))
	defer srv.Close()

	client := New(srv.URL)
	defer client.Close()

	entry, err := client.Stat(ctx, "remote:", "a.bin")
	require.NoError(t, err)
	require.NotNil(t, entry)
	assert.Equal(t, int64(1024), entry.Size)
}

func TestStatMissingObject(t *testing.T) {
	ctx := context.Background()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"item": null}`))
	}))
	defer srv.Close()

	client := New(srv.URL)
	defer client.Close()

	entry, err := client.Stat(ctx, "remote:", "missing.bin")
	require.NoError(t, err)
	assert.Nil(t, entry)
}

func TestDeleteFile(t *testing.T) {
	ctx := context.Background()
	mock := test_utils.NewMockDaemon(t)

	client := New(mock.URL())
	defer client.Close()

	assert.NoError(t, client.DeleteFile(ctx, "remote:", "stale.bin"))
}

func TestLsDirNotFound(t *testing.T) {
	ctx := context.Background()
	mock := test_utils.NewMockDaemon(t)

	client := New(mock.URL())
	defer client.Close()

	_, err := client.Ls(ctx, "remote:", "missing")
	assert.ErrorIs(t, err, ErrDirNotFound)
}

func TestListRemotesCached(t *testing.T) {
	ctx := context.Background()
	mock := test_utils.NewMockDaemon(t)
	mock.ConfigDump = map[string]any{
		"s3backup": map[string]any{"type": "s3"},
		"gdrive":   map[string]any{"type": "drive"},
	}

	client := New(mock.URL())
	defer client.Close()

	remotes, err := client.ListRemotes(ctx)
	require.NoError(t, err)
	require.Len(t, remotes, 2)
	assert.Equal(t, Remote{Name: "gdrive:", Type: "drive"}, remotes[0])
	assert.Equal(t, Remote{Name: "s3backup:", Type: "s3"}, remotes[1])

	// A second call within the TTL is served from the cache.
	mock.ConfigDump = map[string]any{}
	cached, err := client.ListRemotes(ctx)
	require.NoError(t, err)
	assert.Equal(t, remotes, cached)
}

func TestGroupListAndStatsDelete(t *testing.T) {
	ctx := context.Background()
	mock := test_utils.NewMockDaemon(t)
	mock.Groups = []string{"job/1", "job/2"}

	client := New(mock.URL())
	defer client.Close()

	groups, err := client.GroupList(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"job/1", "job/2"}, groups)

	require.NoError(t, client.StatsDelete(ctx, "job/1"))
	assert.Equal(t, []string{"job/1"}, mock.DeletedGroups)
}
