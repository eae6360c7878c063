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

// Package config bootstraps the client configuration and owns process-wide
// resources derived from it, such as the shared HTTP transport.
package config

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"github.com/rcpilot/rcpilot/param"
)

var (
	initOnce sync.Once
	initErr  error
)

// InitClient establishes configuration defaults, binds environment
// variables with the RCPILOT_ prefix, and merges the user's config file if
// one exists.  Safe to call more than once; only the first call does work.
func InitClient() error {
	initOnce.Do(func() {
		initErr = initClient()
	})
	return initErr
}

func initClient() error {
	viper.SetEnvPrefix("RCPILOT")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	setDefaults()

	home, err := os.UserHomeDir()
	if err == nil {
		viper.AddConfigPath(filepath.Join(home, ".rcpilot"))
	}
	viper.SetConfigName("rcpilot")
	viper.SetConfigType("yaml")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return errors.Wrap(err, "failed to read config file")
		}
	} else {
		log.Debugln("Merged configuration from", viper.ConfigFileUsed())
	}

	return nil
}

func setDefaults() {
	viper.SetDefault(param.Daemon_Command.GetName(), "rclone")
	viper.SetDefault(param.Daemon_Address.GetName(), "localhost")
	viper.SetDefault(param.Daemon_Port.GetName(), 5572)
	viper.SetDefault(param.Daemon_AuthEnabled.GetName(), false)
	viper.SetDefault(param.Daemon_StartupTimeout.GetName(), 10*time.Second)
	viper.SetDefault(param.Daemon_StartupPollInterval.GetName(), 100*time.Millisecond)
	viper.SetDefault(param.Daemon_ShutdownGrace.GetName(), 5*time.Second)

	viper.SetDefault(param.Client_RequestTimeout.GetName(), 30*time.Second)
	viper.SetDefault(param.Client_StopPollInterval.GetName(), 500*time.Millisecond)
	viper.SetDefault(param.Client_StopMaxAttempts.GetName(), 0)
	viper.SetDefault(param.Client_RemotesCacheTTL.GetName(), time.Minute)

	viper.SetDefault(param.Logging_Level.GetName(), "info")

	viper.SetDefault(param.Transport_DialerTimeout.GetName(), 10*time.Second)
	viper.SetDefault(param.Transport_DialerKeepAlive.GetName(), 30*time.Second)
	viper.SetDefault(param.Transport_MaxIdleConns.GetName(), 30)
	viper.SetDefault(param.Transport_IdleConnTimeout.GetName(), 90*time.Second)
	viper.SetDefault(param.Transport_TLSHandshakeTimeout.GetName(), 15*time.Second)
	viper.SetDefault(param.Transport_ExpectContinueTimeout.GetName(), time.Second)
	viper.SetDefault(param.Transport_ResponseHeaderTimeout.GetName(), 10*time.Second)

	viper.SetDefault(param.TLSSkipVerify.GetName(), false)
}

// ResetForTest clears the global viper state and the init guard so unit
// tests can exercise InitClient with their own environment.
func ResetForTest() {
	viper.Reset()
	initOnce = sync.Once{}
	initErr = nil
}
