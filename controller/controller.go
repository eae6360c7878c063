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

// Package controller ties the transport, the job-tracking core and the
// daemon lifecycle together into one client instance.  A Controller either
// launches its own daemon or attaches to an already-running one; either
// way it owns exactly one transport session, created lazily and released
// once at Close.
package controller

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/rcpilot/rcpilot/jobs"
	"github.com/rcpilot/rcpilot/param"
	"github.com/rcpilot/rcpilot/rcclient"
	"github.com/rcpilot/rcpilot/rcdaemon"
)

type Controller struct {
	client   *rcclient.Client
	registry *jobs.Registry
	poller   *jobs.Poller

	launcher *rcdaemon.Launcher
	proc     *rcdaemon.Process
}

// New builds a controller around an existing transport client.  The daemon
// is assumed to be managed externally unless StartDaemon is called.
func New(client *rcclient.Client) *Controller {
	registry := jobs.NewRegistry()
	return &Controller{
		client:   client,
		registry: registry,
		poller:   jobs.NewPoller(client, registry),
		launcher: rcdaemon.NewLauncherFromConfig(),
	}
}

// NewFromConfig builds a controller whose transport targets the configured
// daemon address.
func NewFromConfig() *Controller {
	return New(rcclient.New(""))
}

func (c *Controller) Client() *rcclient.Client { return c.client }
func (c *Controller) Registry() *jobs.Registry { return c.registry }
func (c *Controller) Poller() *jobs.Poller     { return c.poller }

// StartDaemon launches the configured rclone rcd child process and blocks
// until it answers the readiness probe.
func (c *Controller) StartDaemon(ctx context.Context) error {
	if c.proc != nil {
		return errors.New("daemon already launched by this controller")
	}
	proc, err := c.launcher.Launch(ctx)
	if err != nil {
		return err
	}
	if err := rcdaemon.WaitUntilReady(ctx, proc, c.client.IsReady); err != nil {
		_ = proc.Kill()
		return err
	}
	c.proc = proc
	return nil
}

// Connect verifies an externally-managed daemon is reachable.
func (c *Controller) Connect(ctx context.Context) error {
	if !c.client.IsReady(ctx) {
		return errors.New("daemon is not reachable; is rclone rcd running?")
	}
	return nil
}

// EnsureDaemon connects to a running daemon or, failing that, launches one.
func (c *Controller) EnsureDaemon(ctx context.Context) error {
	if c.client.IsReady(ctx) {
		log.Debugln("Attached to already-running daemon")
		return nil
	}
	return c.StartDaemon(ctx)
}

// Copy submits an asynchronous file copy and registers the returned job id
// for tracking.  Tracking starts in the "not started" state; the first
// reconciliation pass fills in daemon-reported truth.
func (c *Controller) Copy(ctx context.Context, srcFs, srcRemote, dstFs, dstRemote string) (jobs.JobID, error) {
	jobid, err := c.client.CopyFile(ctx, srcFs, srcRemote, dstFs, dstRemote)
	if err != nil {
		return 0, err
	}
	id := jobs.JobID(jobid)
	c.registry.Add(id)
	return id, nil
}

// Track registers an externally-submitted job id.
func (c *Controller) Track(id jobs.JobID) {
	c.registry.Add(id)
}

// Refresh performs one reconciliation pass.
func (c *Controller) Refresh(ctx context.Context) ([]jobs.JobState, error) {
	return c.poller.RefreshAll(ctx)
}

// WaitAll polls until every tracked job is terminal.  Each probe is a full
// reconciliation pass, so completion is only ever reported on positive
// daemon confirmation.
func (c *Controller) WaitAll(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		done, err := c.poller.AllTerminal(ctx)
		if err != nil {
			return err
		}
		if done {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// StopAll stops every pending tracked job and waits for the daemon to
// confirm each, bounded by the configured stop options and the context.
func (c *Controller) StopAll(ctx context.Context) error {
	return c.poller.StopAllPending(ctx, jobs.StopOptions{
		PollInterval: param.Client_StopPollInterval.GetDuration(),
		MaxAttempts:  param.Client_StopMaxAttempts.GetInt(),
	})
}

// Cleanup drops the daemon-side stats groups of terminal tracked jobs and
// then removes those jobs from the registry.  Pending jobs are untouched.
func (c *Controller) Cleanup(ctx context.Context) error {
	states, err := c.poller.RefreshAll(ctx)
	if err != nil {
		return err
	}

	groups, err := c.client.GroupList(ctx)
	if err != nil {
		return err
	}
	liveGroups := make(map[jobs.JobID]string, len(groups))
	for _, group := range groups {
		idStr, found := strings.CutPrefix(group, "job/")
		if !found {
			continue
		}
		id, err := strconv.ParseInt(idStr, 10, 64)
		if err != nil {
			continue
		}
		liveGroups[jobs.JobID(id)] = group
	}

	for _, st := range states {
		if !st.State.Terminal() {
			continue
		}
		if group, ok := liveGroups[st.ID]; ok {
			if err := c.client.StatsDelete(ctx, group); err != nil {
				return errors.Wrapf(err, "failed to delete stats group for job %d", st.ID)
			}
		}
	}

	c.registry.CleanupTerminal()
	return nil
}

// Close tears the instance down: gracefully quits the daemon if this
// controller launched it, then releases the transport.  Call exactly once.
func (c *Controller) Close(ctx context.Context) error {
	var err error
	if c.proc != nil {
		err = c.proc.Terminate(ctx, c.client.Quit, param.Daemon_ShutdownGrace.GetDuration())
		c.proc = nil
	}
	c.client.Close()
	return err
}
