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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rcpilot/rcpilot/rcclient"
)

var fastStop = StopOptions{PollInterval: time.Millisecond}

func TestStopAllPendingStopsOnlyPending(t *testing.T) {
	ctx := context.Background()
	fake := newFakeDaemon()
	fake.setJob(1, true, true)
	fake.setJob(2, false, false)
	fake.onStop = func(id int64) {
		fake.status[id] = statusPayload(id, true, false)
	}

	p := newTestPoller(fake, 1, 2)
	require.NoError(t, p.StopAllPending(ctx, fastStop))

	assert.Equal(t, []int64{2}, fake.stopCalls, "terminal jobs are not stopped")
	rec, _ := p.Registry().Get(2)
	assert.Equal(t, Failed, rec.Status(), "the confirming status is recorded")
}

func TestStopWaitsForConfirmation(t *testing.T) {
	ctx := context.Background()
	fake := newFakeDaemon()
	fake.setJob(1, false, false)

	// The stop is acknowledged but the job takes a few polls to wind down.
	stopped := make(chan struct{})
	fake.onStop = func(id int64) {
		go func() {
			time.Sleep(10 * time.Millisecond)
			fake.mu.Lock()
			fake.status[id] = statusPayload(id, true, false)
			fake.mu.Unlock()
			close(stopped)
		}()
	}

	p := newTestPoller(fake, 1)
	require.NoError(t, p.StopAllPending(ctx, fastStop))
	<-stopped

	rec, _ := p.Registry().Get(1)
	assert.True(t, rec.Status().Terminal())
	assert.Greater(t, fake.statusCalls[1], 1, "confirmation required polling")
}

func TestStopEvictionCountsAsConfirmation(t *testing.T) {
	ctx := context.Background()
	fake := newFakeDaemon()
	fake.setJob(1, false, false)

	// The daemon evicts the job right after the stop: status queries fail
	// with a daemon-side error and the id is gone from the live list.
	fake.onStop = func(id int64) {
		fake.statusErr[id] = &rcclient.StatusError{Endpoint: "job/status", Code: 500, Message: "job not found"}
		for i, live := range fake.live {
			if live == id {
				fake.live = append(fake.live[:i], fake.live[i+1:]...)
				break
			}
		}
	}

	p := newTestPoller(fake, 1)
	require.NoError(t, p.StopAllPending(ctx, fastStop))
}

func TestStopAttemptCeiling(t *testing.T) {
	ctx := context.Background()
	fake := newFakeDaemon()
	fake.setJob(1, false, false) // never finishes

	p := newTestPoller(fake, 1)
	err := p.StopAllPending(ctx, StopOptions{PollInterval: time.Millisecond, MaxAttempts: 3})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "did not stop")

	// The job stays tracked and in progress; aborting the wait must not
	// corrupt the registry.
	rec, tracked := p.Registry().Get(1)
	assert.True(t, tracked)
	assert.Equal(t, InProgress, rec.Status())
}

func TestStopContextCancellation(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	fake := newFakeDaemon()
	fake.setJob(1, false, false) // never finishes

	p := newTestPoller(fake, 1)
	err := p.StopAllPending(ctx, StopOptions{PollInterval: 5 * time.Millisecond})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestStopNotAcknowledgedPropagates(t *testing.T) {
	ctx := context.Background()
	fake := newFakeDaemon()
	fake.setJob(1, false, false)
	fake.stopErr = &rcclient.StopNotAcknowledgedError{JobID: 1, Body: `{"status": "busy"}`}

	p := newTestPoller(fake, 1)
	err := p.StopAllPending(ctx, fastStop)
	var notAcked *rcclient.StopNotAcknowledgedError
	require.ErrorAs(t, err, &notAcked)
	assert.Equal(t, int64(1), notAcked.JobID)
	assert.Equal(t, 1, len(fake.stopCalls), "an unacknowledged stop is not retried")
}
