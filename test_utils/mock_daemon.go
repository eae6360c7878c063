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

package test_utils

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
)

// MockJob is one job the mock daemon knows about.  Status is served from
// job/status, Stats from core/stats for the job's group.
type MockJob struct {
	Status map[string]any
	Stats  map[string]any
}

// MockDaemon is an httptest stand-in for an rclone rc daemon, implementing
// the endpoints the client consumes.  Tests mutate its fields directly
// (under Lock) to simulate job progress, eviction, and stop behavior.
type MockDaemon struct {
	mu sync.Mutex

	Jobs map[int64]*MockJob
	// Live is the id set reported by job/list; evict a job by removing its
	// id here while keeping (or dropping) its Jobs entry.
	Live map[int64]bool

	// StopBody overrides the job/stop acknowledgment; nil means the empty
	// object (success).
	StopBody map[string]any
	// StopFinishes marks stopped jobs finished (unsuccessfully) so the
	// confirmation loop can observe completion.
	StopFinishes bool

	// Request accounting for assertions.
	StatusCalls map[int64]int
	StopCalls   []int64
	ListCalls   int

	// Canned responses for the pass-through operations.
	ListResult    []map[string]any
	ConfigDump    map[string]any
	Groups        []string
	DeletedGroups []string

	server *httptest.Server
}

// NewMockDaemon starts the mock server; it is closed with the test.
func NewMockDaemon(t *testing.T) *MockDaemon {
	m := &MockDaemon{
		Jobs:        make(map[int64]*MockJob),
		Live:        make(map[int64]bool),
		StatusCalls: make(map[int64]int),
	}
	m.server = httptest.NewServer(http.HandlerFunc(m.handle))
	t.Cleanup(m.server.Close)
	return m
}

func (m *MockDaemon) URL() string {
	return m.server.URL
}

// Close shuts the server down early, before test cleanup.  Useful for
// simulating a daemon that stopped listening.
func (m *MockDaemon) Close() {
	m.server.Close()
}

// AddJob registers a job as live with the given status payload.
func (m *MockDaemon) AddJob(id int64, status map[string]any) *MockJob {
	m.mu.Lock()
	defer m.mu.Unlock()
	job := &MockJob{Status: status}
	m.Jobs[id] = job
	m.Live[id] = true
	return job
}

// Evict drops an id from the live list and forgets its record, as the real
// daemon does after its retention window.
func (m *MockDaemon) Evict(id int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.Live, id)
	delete(m.Jobs, id)
}

func (m *MockDaemon) handle(w http.ResponseWriter, r *http.Request) {
	var params map[string]any
	if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
		params = map[string]any{}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	switch r.URL.Path {
	case "/rc/noop":
		writeJSON(w, http.StatusOK, map[string]any{})
	case "/core/quit":
		writeJSON(w, http.StatusOK, map[string]any{})
	case "/job/list":
		m.ListCalls++
		ids := make([]int64, 0, len(m.Live))
		for id := range m.Live {
			ids = append(ids, id)
		}
		writeJSON(w, http.StatusOK, map[string]any{"jobids": ids})
	case "/job/status":
		id := jobIDParam(params)
		m.StatusCalls[id]++
		job, ok := m.Jobs[id]
		if !ok {
			writeJSON(w, http.StatusInternalServerError, map[string]any{"error": "job not found"})
			return
		}
		writeJSON(w, http.StatusOK, job.Status)
	case "/job/stop":
		id := jobIDParam(params)
		m.StopCalls = append(m.StopCalls, id)
		if _, ok := m.Jobs[id]; !ok {
			writeJSON(w, http.StatusInternalServerError, map[string]any{"error": "job not found"})
			return
		}
		if m.StopFinishes {
			m.Jobs[id].Status["finished"] = true
			m.Jobs[id].Status["success"] = false
		}
		body := m.StopBody
		if body == nil {
			body = map[string]any{}
		}
		writeJSON(w, http.StatusOK, body)
	case "/core/stats":
		group, _ := params["group"].(string)
		for id, job := range m.Jobs {
			if group == jobGroup(id) && job.Stats != nil {
				writeJSON(w, http.StatusOK, job.Stats)
				return
			}
		}
		writeJSON(w, http.StatusOK, map[string]any{})
	case "/core/group-list":
		writeJSON(w, http.StatusOK, map[string]any{"groups": m.Groups})
	case "/core/stats-delete":
		group, _ := params["group"].(string)
		m.DeletedGroups = append(m.DeletedGroups, group)
		writeJSON(w, http.StatusOK, map[string]any{})
	case "/operations/list":
		if m.ListResult == nil {
			writeJSON(w, http.StatusInternalServerError, map[string]any{"error": "error in ListJSON: directory not found"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"list": m.ListResult})
	case "/config/dump":
		writeJSON(w, http.StatusOK, m.ConfigDump)
	case "/operations/copyfile":
		id := int64(len(m.Jobs) + 1)
		m.Jobs[id] = &MockJob{Status: map[string]any{
			"id": id, "startTime": "2023-05-01T10:00:00+00:00", "endTime": "0001-01-01T00:00:00Z",
			"error": "", "output": map[string]any{}, "finished": false, "success": false,
		}}
		m.Live[id] = true
		writeJSON(w, http.StatusOK, map[string]any{"jobid": id})
	case "/operations/deletefile", "/operations/stat", "/operations/hashsum":
		writeJSON(w, http.StatusOK, map[string]any{})
	default:
		writeJSON(w, http.StatusNotFound, map[string]any{"error": "unknown endpoint " + r.URL.Path})
	}
}

func jobIDParam(params map[string]any) int64 {
	v, _ := params["jobid"].(float64)
	return int64(v)
}

func jobGroup(id int64) string {
	return fmt.Sprintf("job/%d", id)
}

func writeJSON(w http.ResponseWriter, code int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(body)
}
