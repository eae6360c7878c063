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
	"time"

	"github.com/spf13/cobra"

	"github.com/rcpilot/rcpilot/controller"
	"github.com/rcpilot/rcpilot/jobs"
)

var (
	jobStatusCmd = &cobra.Command{
		Use:   "status <job id>",
		Short: "Show the lifecycle state and transfer stats of a job",
		Args:  cobra.ExactArgs(1),
		RunE:  jobStatusMain,
	}

	jobStatusWatch bool
)

func init() {
	jobStatusCmd.Flags().BoolVarP(&jobStatusWatch, "watch", "W", false, "Keep refreshing until the job reaches a terminal state")
	jobCmd.AddCommand(jobStatusCmd)
}

func jobStatusMain(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	id, err := parseJobID(args[0])
	if err != nil {
		return err
	}

	ctrl := controller.NewFromConfig()
	defer func() { _ = ctrl.Close(ctx) }()
	if err := ctrl.Connect(ctx); err != nil {
		return err
	}
	ctrl.Track(jobs.JobID(id))

	for {
		if _, err := ctrl.Refresh(ctx); err != nil {
			return err
		}
		rec, _ := ctrl.Registry().Get(jobs.JobID(id))
		printRecord(jobs.JobID(id), rec)
		if !jobStatusWatch || rec.Status().Terminal() {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Second):
		}
	}
}

func printRecord(id jobs.JobID, rec *jobs.Record) {
	status := rec.Status()
	fmt.Printf("job %d: %s\n", id, status)
	if rec == nil {
		return
	}
	fmt.Printf("  started: %s\n", rec.StartTime.Format(time.RFC3339))
	if rec.EndTime != nil {
		fmt.Printf("  ended:   %s\n", rec.EndTime.Format(time.RFC3339))
	}
	if status == jobs.Failed && rec.Error != "" {
		fmt.Printf("  error:   %s\n", rec.Error)
	}
	if rec.Stats != nil {
		fmt.Printf("  file:    %s\n", rec.Stats.Name)
		fmt.Printf("  bytes:   %d / %d\n", rec.Stats.Bytes, rec.Stats.Size)
		if pct, err := rec.Stats.Percentage(); err == nil {
			fmt.Printf("  done:    %.1f%%\n", pct*100)
		}
	}
}
