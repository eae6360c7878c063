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

package logging

import (
	"os"
	"path/filepath"
	"testing"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rcpilot/rcpilot/param"
)

func TestSetupLevel(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)
	viper.Set(param.Logging_Level.GetName(), "debug")

	require.NoError(t, Setup())
	assert.Equal(t, log.DebugLevel, log.GetLevel())
}

func TestSetupBadLevel(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)
	viper.Set(param.Logging_Level.GetName(), "chatty")

	assert.Error(t, Setup())
}

func TestSetupLogFile(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)
	t.Cleanup(CloseLogger)
	t.Cleanup(func() {
		log.SetOutput(os.Stderr)
	})

	logPath := filepath.Join(t.TempDir(), "logs", "rcpilot.log")
	viper.Set(param.Logging_Level.GetName(), "info")
	viper.Set(param.Logging_LogLocation.GetName(), logPath)

	require.NoError(t, Setup())
	log.Infoln("hello from the test")

	contents, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.Contains(t, string(contents), "hello from the test")
}
