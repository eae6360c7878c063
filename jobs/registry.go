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

import "sync"

// Registry is the set of job ids this client is responsible for, each with
// its last known status record (nil until the first successful poll).
// Membership only changes through Add, Remove and CleanupTerminal; polling
// never implicitly drops an id.
type Registry struct {
	mu      sync.RWMutex
	order   []JobID
	records map[JobID]*Record
}

func NewRegistry() *Registry {
	return &Registry{
		records: make(map[JobID]*Record),
	}
}

// Add registers a job id with no status record.  Idempotent: adding an id
// that is already tracked is a no-op.
func (r *Registry) Add(id JobID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.records[id]; exists {
		return
	}
	r.records[id] = nil
	r.order = append(r.order, id)
}

// Get returns the stored record for id and whether the id is tracked.  A
// tracked id with a nil record has never been successfully polled.
func (r *Registry) Get(id JobID) (*Record, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, exists := r.records[id]
	return rec, exists
}

// SetRecord overwrites the stored record for a tracked id.  Untracked ids
// are ignored; the poller only writes what the caller registered.
func (r *Registry) SetRecord(id JobID, rec *Record) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.records[id]; !exists {
		return
	}
	r.records[id] = rec
}

// Remove drops a job id and its record.
func (r *Registry) Remove(id JobID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.records[id]; !exists {
		return
	}
	delete(r.records, id)
	for i, other := range r.order {
		if other == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
}

// IDs returns the tracked ids in insertion order.  The returned slice is a
// snapshot; mutating the registry afterwards does not affect it.
func (r *Registry) IDs() []JobID {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]JobID, len(r.order))
	copy(ids, r.order)
	return ids
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}

// Records returns a snapshot of the stored records in insertion order,
// skipping ids that have never been polled.  Input for the aggregation
// functions.
func (r *Registry) Records() []*Record {
	r.mu.RLock()
	defer r.mu.RUnlock()

	records := make([]*Record, 0, len(r.order))
	for _, id := range r.order {
		if rec := r.records[id]; rec != nil {
			records = append(records, rec)
		}
	}
	return records
}

// CleanupTerminal removes every entry whose derived status is terminal.
// Entries that are NotStarted or InProgress stay tracked even if polling is
// currently failing for them.  Scan over a stable snapshot first, then
// remove, so no removal happens while iterating.
func (r *Registry) CleanupTerminal() {
	terminal := make([]JobID, 0)
	for _, id := range r.IDs() {
		rec, _ := r.Get(id)
		if rec.Status().Terminal() {
			terminal = append(terminal, id)
		}
	}
	for _, id := range terminal {
		r.Remove(id)
	}
}
