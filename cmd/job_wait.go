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
	"github.com/spf13/cobra"

	"github.com/rcpilot/rcpilot/controller"
	"github.com/rcpilot/rcpilot/jobs"
)

var jobWaitCmd = &cobra.Command{
	Use:   "wait <job id> [job id...]",
	Short: "Block until the given jobs reach a terminal state",
	Args:  cobra.MinimumNArgs(1),
	RunE:  jobWaitMain,
}

func init() {
	jobCmd.AddCommand(jobWaitCmd)
}

func jobWaitMain(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	ctrl := controller.NewFromConfig()
	defer func() { _ = ctrl.Close(ctx) }()
	if err := ctrl.Connect(ctx); err != nil {
		return err
	}
	for _, arg := range args {
		id, err := parseJobID(arg)
		if err != nil {
			return err
		}
		ctrl.Track(jobs.JobID(id))
	}

	if err := waitWithProgress(ctx, ctrl); err != nil {
		return err
	}
	return reportOutcome(ctrl)
}
