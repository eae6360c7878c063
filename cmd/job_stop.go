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
	"github.com/rcpilot/rcpilot/jobs"
)

var (
	jobStopCmd = &cobra.Command{
		Use:   "stop [job id]",
		Short: "Ask the daemon to stop a job and wait for it to settle",
		Args:  cobra.MaximumNArgs(1),
		RunE:  jobStopMain,
	}

	jobStopAll bool
)

func init() {
	jobStopCmd.Flags().BoolVar(&jobStopAll, "all", false, "Stop every job the daemon is tracking")
	jobCmd.AddCommand(jobStopCmd)
}

func jobStopMain(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if jobStopAll == (len(args) == 1) {
		return errors.New("provide either a job id or --all")
	}

	ctrl := controller.NewFromConfig()
	defer func() { _ = ctrl.Close(ctx) }()
	if err := ctrl.Connect(ctx); err != nil {
		return err
	}

	if jobStopAll {
		ids, err := ctrl.Client().JobList(ctx)
		if err != nil {
			return err
		}
		for _, id := range ids {
			ctrl.Track(jobs.JobID(id))
		}
		if err := ctrl.StopAll(ctx); err != nil {
			return err
		}
		fmt.Printf("Stopped %d job(s)\n", len(ids))
		return nil
	}

	id, err := parseJobID(args[0])
	if err != nil {
		return err
	}
	ctrl.Track(jobs.JobID(id))
	if err := ctrl.StopAll(ctx); err != nil {
		return err
	}
	fmt.Printf("Stopped job %d\n", id)
	return nil
}
