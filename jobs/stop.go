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
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/rcpilot/rcpilot/rcclient"
)

const defaultStopPollInterval = 500 * time.Millisecond

// StopOptions bounds the stop-confirmation wait.  Stopping is
// fire-and-forget on the daemon side, so confirmation requires polling; the
// caller's context is always honored, and MaxAttempts adds an explicit
// per-job ceiling (0 means no ceiling beyond the context).
type StopOptions struct {
	PollInterval time.Duration
	MaxAttempts  int
}

func (o StopOptions) pollInterval() time.Duration {
	if o.PollInterval <= 0 {
		return defaultStopPollInterval
	}
	return o.PollInterval
}

// StopJob asks the daemon to stop one job.  A stop that is not acknowledged
// surfaces as *rcclient.StopNotAcknowledgedError; it is never retried
// automatically.  Stopping does not itself change tracked state; state
// only moves when a poll observes a daemon-reported status.
func (p *Poller) StopJob(ctx context.Context, id JobID) error {
	return p.api.JobStop(ctx, int64(id))
}

// StopAllPending performs one reconciliation pass and, for every job that
// is NotStarted or InProgress, issues a stop and then blocks until the
// daemon confirms the job finished.  Jobs already terminal are untouched.
// Aborting mid-way (context cancellation, attempt ceiling) leaves the
// registry in a valid partially-stopped state: some jobs InProgress, some
// already Finished.
func (p *Poller) StopAllPending(ctx context.Context, opts StopOptions) error {
	states, err := p.RefreshAll(ctx)
	if err != nil {
		return err
	}

	for _, st := range states {
		if st.State.Terminal() {
			continue
		}
		log.Debugf("Stopping %s job %d", st.State, st.ID)
		if err := p.StopJob(ctx, st.ID); err != nil {
			return err
		}
		if err := p.awaitFinished(ctx, st.ID, opts); err != nil {
			return err
		}
	}
	return nil
}

// awaitFinished polls job/status until the daemon reports the job finished.
// A job the daemon evicts mid-stop can never report finished; eviction is
// detected through the live list and treated as confirmation, since an
// evicted job is no longer running.
func (p *Poller) awaitFinished(ctx context.Context, id JobID, opts StopOptions) error {
	ticker := time.NewTicker(opts.pollInterval())
	defer ticker.Stop()

	attempts := 0
	for {
		select {
		case <-ctx.Done():
			return errors.Wrapf(ctx.Err(), "gave up waiting for job %d to stop", id)
		case <-ticker.C:
		}

		attempts++
		raw, err := p.api.JobStatusRaw(ctx, int64(id))
		if err == nil {
			rec, err := DecodeRecord(raw)
			if err != nil {
				return err
			}
			if rec.Finished {
				p.registry.SetRecord(id, rec)
				return nil
			}
		} else if rcclient.IsTransient(err) {
			log.Debugf("Transient error confirming stop of job %d: %v", id, err)
		} else {
			evicted, listErr := p.jobEvicted(ctx, id)
			if listErr != nil {
				return listErr
			}
			if evicted {
				log.Debugf("Job %d evicted while awaiting stop confirmation", id)
				return nil
			}
			return err
		}

		if opts.MaxAttempts > 0 && attempts >= opts.MaxAttempts {
			return errors.Errorf("job %d did not stop after %d status checks", id, attempts)
		}
	}
}

func (p *Poller) jobEvicted(ctx context.Context, id JobID) (bool, error) {
	liveIDs, err := p.api.JobList(ctx)
	if err != nil {
		return false, err
	}
	for _, live := range liveIDs {
		if JobID(live) == id {
			return false, nil
		}
	}
	return true, nil
}
