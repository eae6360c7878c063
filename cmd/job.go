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
	"strconv"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var jobCmd = &cobra.Command{
	Use:   "job",
	Short: "Inspect and manage asynchronous daemon jobs",
}

func init() {
	rootCmd.AddCommand(jobCmd)
}

// parseJobID converts a CLI argument into a daemon job id.
func parseJobID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		return 0, errors.Wrapf(err, "invalid job id %q", arg)
	}
	if id <= 0 {
		return 0, errors.Errorf("invalid job id %d; ids are positive", id)
	}
	return id, nil
}
