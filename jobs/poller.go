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
	"context"
	"encoding/json"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/rcpilot/rcpilot/rcclient"
)

// DaemonAPI is the slice of the daemon transport the job core consumes.
// *rcclient.Client satisfies it; tests substitute fakes.
type DaemonAPI interface {
	JobList(ctx context.Context) ([]int64, error)
	JobStatusRaw(ctx context.Context, jobid int64) (json.RawMessage, error)
	CoreStats(ctx context.Context, group string) (json.RawMessage, error)
	JobStop(ctx context.Context, jobid int64) error
}

// JobState pairs a tracked id with its derived lifecycle state after a
// reconciliation pass.
type JobState struct {
	ID    JobID
	State Lifecycle
}

// Poller reconciles the registry against daemon-reported truth.  All of its
// methods issue daemon round-trips sequentially; no two passes for the same
// registry may run concurrently.
type Poller struct {
	api      DaemonAPI
	registry *Registry
}

func NewPoller(api DaemonAPI, registry *Registry) *Poller {
	return &Poller{api: api, registry: registry}
}

// Registry exposes the registry the poller reconciles.
func (p *Poller) Registry() *Registry {
	return p.registry
}

// RefreshEach performs one reconciliation pass, invoking visit once per
// tracked job in registry insertion order.  The daemon's live job-id list
// is queried exactly once, at the start of the pass: the daemon silently
// forgets ids after a retention window, and re-requesting status for an
// evicted id yields a "not found" indistinguishable from "hasn't started".
// Per job:
//
//   - live and not yet terminal: query status, merge transfer stats, and
//     overwrite the stored record;
//   - status query failed transiently: keep the previous record; state is
//     never dropped on a recoverable error;
//   - evicted: use whatever record is already stored;
//   - never stored: NotStarted.
//
// Malformed payloads and a failed live-list query abort the pass.
func (p *Poller) RefreshEach(ctx context.Context, visit func(JobID, Lifecycle) error) error {
	liveIDs, err := p.api.JobList(ctx)
	if err != nil {
		return err
	}
	live := make(map[JobID]struct{}, len(liveIDs))
	for _, id := range liveIDs {
		live[JobID(id)] = struct{}{}
	}

	for _, id := range p.registry.IDs() {
		prev, _ := p.registry.Get(id)
		_, isLive := live[id]

		// Terminal states are absorbing; whatever the daemon reports now
		// (including a recycled id) must not re-classify the job.
		if isLive && !prev.Status().Terminal() {
			rec, err := p.fetchRecord(ctx, id)
			switch {
			case err == nil:
				p.registry.SetRecord(id, rec)
			case rcclient.IsTransient(err):
				log.Debugf("Transient error polling job %d, keeping previous state: %v", id, err)
			default:
				return err
			}
		}

		rec, _ := p.registry.Get(id)
		if err := visit(id, rec.Status()); err != nil {
			return err
		}
	}
	return nil
}

// RefreshAll is the slice-returning convenience over RefreshEach.
func (p *Poller) RefreshAll(ctx context.Context) ([]JobState, error) {
	states := make([]JobState, 0, p.registry.Len())
	err := p.RefreshEach(ctx, func(id JobID, state Lifecycle) error {
		states = append(states, JobState{ID: id, State: state})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return states, nil
}

// AllTerminal reports whether every tracked job has been positively
// confirmed terminal.  It performs one full reconciliation pass as a side
// effect and never times out silently into "done": a job the daemon has not
// confirmed finished keeps the result false.
func (p *Poller) AllTerminal(ctx context.Context) (bool, error) {
	all := true
	err := p.RefreshEach(ctx, func(id JobID, state Lifecycle) error {
		if !state.Terminal() {
			all = false
		}
		return nil
	})
	if err != nil {
		return false, err
	}
	return all, nil
}

// fetchRecord queries job/status and merges in the job's transfer stats.
// The stats query is part of the same refresh step: if either leg fails the
// whole fetch fails and the retained-state policy applies.
func (p *Poller) fetchRecord(ctx context.Context, id JobID) (*Record, error) {
	rawStatus, err := p.api.JobStatusRaw(ctx, int64(id))
	if err != nil {
		return nil, err
	}
	rec, err := DecodeRecord(rawStatus)
	if err != nil {
		return nil, err
	}

	rawStats, err := p.api.CoreStats(ctx, statsGroup(id))
	if err != nil {
		return nil, err
	}
	stats, err := DecodeTransferStats(rawStats)
	if err != nil {
		return nil, err
	}
	rec.Stats = stats
	return rec, nil
}

// statsGroup names the per-job stats group the daemon files transfer
// statistics under.
func statsGroup(id JobID) string {
	return fmt.Sprintf("job/%d", id)
}
