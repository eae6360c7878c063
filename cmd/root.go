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

package main

import (
	"context"
	"fmt"
	"os/signal"
	"strings"
	"syscall"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/rcpilot/rcpilot/config"
	"github.com/rcpilot/rcpilot/logging"
	"github.com/rcpilot/rcpilot/param"
)

var (
	debugFlag bool

	rootCmd = &cobra.Command{
		Use:   "rcpilot",
		Short: "Drive an rclone remote-control daemon",
		Long: `rcpilot submits asynchronous operations (copies, deletions, listings)
to an rclone remote-control daemon and tracks the resulting jobs: polling
status, aggregating transfer progress, and cancelling cooperatively.`,
		Version:           fmt.Sprintf("%s (commit %s, built %s)", version, commit, date),
		PersistentPreRunE: initRoot,
		SilenceUsage:      true,
	}
)

func init() {
	flags := rootCmd.PersistentFlags()
	flags.BoolVarP(&debugFlag, "debug", "d", false, "Enable debug logging")
	flags.String("address", "", "Daemon address to connect to or bind")
	flags.Int("port", 0, "Daemon rc port")
	flags.String("log", "", "Redirect logs to this file")

	if err := viper.BindPFlag(param.Daemon_Address.GetName(), flags.Lookup("address")); err != nil {
		panic(err)
	}
	if err := viper.BindPFlag(param.Daemon_Port.GetName(), flags.Lookup("port")); err != nil {
		panic(err)
	}
	if err := viper.BindPFlag(param.Logging_LogLocation.GetName(), flags.Lookup("log")); err != nil {
		panic(err)
	}
}

func initRoot(cmd *cobra.Command, args []string) error {
	if err := config.InitClient(); err != nil {
		return errors.Wrap(err, "failed to initialize configuration")
	}
	if debugFlag {
		viper.Set(param.Logging_Level.GetName(), "debug")
	}
	return logging.Setup()
}

func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

// splitTarget splits an "fs:path" argument into the rclone fs string and
// the path within it.
func splitTarget(arg string) (fs string, remote string, err error) {
	idx := strings.Index(arg, ":")
	if idx < 0 {
		return "", "", errors.Errorf("%q is not of the form remote:path", arg)
	}
	return arg[:idx+1], arg[idx+1:], nil
}
