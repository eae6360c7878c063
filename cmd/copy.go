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
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/rcpilot/rcpilot/controller"
)

var (
	copyCmd = &cobra.Command{
		Use:   "copy <src-remote:path> <dst-remote:path>",
		Short: "Copy a file between remotes as an asynchronous job",
		Args:  cobra.ExactArgs(2),
		RunE:  copyMain,
	}

	copyWait    bool
	copySpawn   bool
	copyCleanup bool
)

func init() {
	copyCmd.Flags().BoolVarP(&copyWait, "wait", "w", false, "Block until the copy job reaches a terminal state")
	copyCmd.Flags().BoolVar(&copySpawn, "spawn-daemon", false, "Launch an rclone rcd if none is reachable")
	copyCmd.Flags().BoolVar(&copyCleanup, "cleanup", false, "Drop daemon-side stats for the job once terminal (implies --wait)")
	rootCmd.AddCommand(copyCmd)
}

func copyMain(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	srcFs, srcRemote, err := splitTarget(args[0])
	if err != nil {
		return err
	}
	dstFs, dstRemote, err := splitTarget(args[1])
	if err != nil {
		return err
	}

	ctrl := controller.NewFromConfig()
	defer func() {
		// A spawned daemon would take the submitted job down with it, so
		// only tear down eagerly when we waited for the result.
		if copyWait || copyCleanup || !copySpawn {
			_ = ctrl.Close(ctx)
		}
	}()

	if copySpawn {
		if err := ctrl.EnsureDaemon(ctx); err != nil {
			return err
		}
	} else if err := ctrl.Connect(ctx); err != nil {
		return err
	}

	id, err := ctrl.Copy(ctx, srcFs, srcRemote, dstFs, dstRemote)
	if err != nil {
		return errors.Wrap(err, "copy submission failed")
	}
	fmt.Printf("Job %d: copying %s -> %s\n", id, args[0], args[1])

	if !copyWait && !copyCleanup {
		return nil
	}

	if err := waitWithProgress(ctx, ctrl); err != nil {
		return err
	}
	if err := reportOutcome(ctrl); err != nil {
		return err
	}
	if copyCleanup {
		return ctrl.Cleanup(ctx)
	}
	return nil
}

// reportOutcome prints the final state of every tracked job and returns an
// error if any of them failed.
func reportOutcome(ctrl *controller.Controller) error {
	failed := 0
	for _, id := range ctrl.Registry().IDs() {
		rec, _ := ctrl.Registry().Get(id)
		state := rec.Status()
		fmt.Printf("Job %d: %s", id, state)
		if rec != nil && rec.Error != "" {
			fmt.Printf(" (%s)", rec.Error)
		}
		fmt.Println()
		if !state.Terminal() || rec == nil || !rec.Success {
			failed++
		}
	}
	if failed > 0 {
		return errors.Errorf("%d job(s) did not finish successfully", failed)
	}
	return nil
}
