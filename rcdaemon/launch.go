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

// Package rcdaemon manages the rclone remote-control daemon as a child
// process: launch, readiness wait, graceful quit, and kill-and-drain
// termination.  The HTTP conversation with the daemon lives in rcclient;
// this package only owns the process.
package rcdaemon

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os/exec"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/rcpilot/rcpilot/param"
)

// Launcher describes how to spawn the daemon.
type Launcher struct {
	Command     string
	Address     string
	Port        int
	AuthEnabled bool
	Username    string
	Password    string
}

// NewLauncherFromConfig builds a launcher from the configured parameters.
func NewLauncherFromConfig() *Launcher {
	return &Launcher{
		Command:     param.Daemon_Command.GetString(),
		Address:     param.Daemon_Address.GetString(),
		Port:        param.Daemon_Port.GetInt(),
		AuthEnabled: param.Daemon_AuthEnabled.GetBool(),
		Username:    param.Daemon_Username.GetString(),
		Password:    param.Daemon_Password.GetString(),
	}
}

// Args assembles the rcd command line.  Without credentials the daemon must
// be told explicitly to skip authentication.
func (l *Launcher) Args() []string {
	args := []string{
		"rcd",
		"--rc-addr", fmt.Sprintf("%s:%d", l.Address, l.Port),
	}
	if l.AuthEnabled {
		args = append(args, "--rc-user", l.Username, "--rc-pass", l.Password)
	} else {
		args = append(args, "--rc-no-auth")
	}
	return args
}

// Process is a launched daemon.  Its context is cancelled (with the Wait
// result as cause) when the child exits, however that happens.
type Process struct {
	cmd  *exec.Cmd
	done context.Context
}

// Launch starts the daemon and begins forwarding its output to the logger.
// The returned Process is not necessarily ready to serve requests yet; use
// WaitUntilReady with a readiness probe.
func (l *Launcher) Launch(ctx context.Context) (*Process, error) {
	cmd := exec.CommandContext(ctx, l.Command, l.Args()...)
	if cmd.Err != nil {
		return nil, cmd.Err
	}

	cmdStdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, err
	}
	cmdStderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, err
	}

	if err := cmd.Start(); err != nil {
		return nil, errors.Wrapf(err, "failed to launch %s", l.Command)
	}
	go forwardToLogger(l.Command, cmdStdout, cmdStderr)

	// Draining stdout/stderr and calling Wait after the child dies is what
	// keeps it from lingering as a zombie; the forwarder handles the pipes
	// and this goroutine handles the reaping.
	done, cancel := context.WithCancelCause(ctx)
	go func() {
		cancel(cmd.Wait())
	}()

	log.Infof("Launched %s rcd (PID %d) on %s:%d", l.Command, cmd.Process.Pid, l.Address, l.Port)
	return &Process{cmd: cmd, done: done}, nil
}

func (p *Process) PID() int {
	return p.cmd.Process.Pid
}

// Done is closed when the daemon process has exited.
func (p *Process) Done() <-chan struct{} {
	return p.done.Done()
}

// Kill forcibly terminates the daemon.  Used when the daemon is
// unresponsive to a graceful quit.
func (p *Process) Kill() error {
	if err := p.cmd.Process.Kill(); err != nil {
		return errors.Wrap(err, "failed to kill daemon process")
	}
	<-p.done.Done()
	return nil
}

// Terminate shuts the daemon down: quit is the graceful path (typically
// rcclient's core/quit); if the process is still alive after the grace
// period it is killed.  Every exit path reaps the child.
func (p *Process) Terminate(ctx context.Context, quit func(context.Context) error, grace time.Duration) error {
	if quit != nil {
		if err := quit(ctx); err != nil {
			log.Warnf("Graceful daemon quit failed, will kill: %v", err)
		}
	}

	select {
	case <-p.done.Done():
		log.Debugln("Daemon exited after quit request")
		return nil
	case <-time.After(grace):
		log.Warnf("Daemon (PID %d) did not exit within %s, killing", p.PID(), grace)
		return p.Kill()
	case <-ctx.Done():
		if err := p.Kill(); err != nil {
			return err
		}
		return ctx.Err()
	}
}

// WaitUntilReady polls the readiness probe until it reports true or the
// configured startup timeout elapses.  A probe that fails at the connection
// level means the daemon is not listening yet, so failures here are
// expected early on.
func WaitUntilReady(ctx context.Context, proc *Process, ready func(context.Context) bool) error {
	timeout := param.Daemon_StartupTimeout.GetDuration()
	interval := param.Daemon_StartupPollInterval.GetDuration()

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-proc.Done():
			return errors.Wrap(context.Cause(proc.done), "daemon exited before becoming ready")
		case <-ctx.Done():
			return errors.Wrapf(ctx.Err(), "daemon not ready after %s", timeout)
		case <-ticker.C:
			if ready(ctx) {
				log.Debugln("Daemon is ready")
				return nil
			}
		}
	}
}

func forwardToLogger(name string, cmdStdout, cmdStderr io.ReadCloser) {
	cmdLogger := log.WithFields(log.Fields{"daemon": name})
	forward := func(pipe io.ReadCloser) {
		scanner := bufio.NewScanner(pipe)
		for scanner.Scan() {
			cmdLogger.Info(scanner.Text())
		}
	}
	go forward(cmdStderr)
	forward(cmdStdout)
}
