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

package rcdaemon

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"

	"github.com/rcpilot/rcpilot/param"
)

func TestLauncherArgsNoAuth(t *testing.T) {
	l := &Launcher{Command: "rclone", Address: "localhost", Port: 5572}
	assert.Equal(t, []string{"rcd", "--rc-addr", "localhost:5572", "--rc-no-auth"}, l.Args())
}

func TestLauncherArgsWithAuth(t *testing.T) {
	l := &Launcher{
		Command: "rclone", Address: "127.0.0.1", Port: 5573,
		AuthEnabled: true, Username: "alice", Password: "hunter2",
	}
	assert.Equal(t,
		[]string{"rcd", "--rc-addr", "127.0.0.1:5573", "--rc-user", "alice", "--rc-pass", "hunter2"},
		l.Args())
}

func TestNewLauncherFromConfig(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)
	viper.Set(param.Daemon_Command.GetName(), "rclone-beta")
	viper.Set(param.Daemon_Address.GetName(), "0.0.0.0")
	viper.Set(param.Daemon_Port.GetName(), 6000)

	l := NewLauncherFromConfig()
	assert.Equal(t, "rclone-beta", l.Command)
	assert.Equal(t, []string{"rcd", "--rc-addr", "0.0.0.0:6000", "--rc-no-auth"}, l.Args())
}
