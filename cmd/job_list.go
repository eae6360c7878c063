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
	"os"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/rcpilot/rcpilot/rcclient"
)

var jobListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the job ids the daemon is currently tracking",
	Args:  cobra.NoArgs,
	RunE:  jobListMain,
}

func init() {
	jobCmd.AddCommand(jobListCmd)
}

func jobListMain(cmd *cobra.Command, args []string) error {
	client := rcclient.New("")
	defer client.Close()

	ids, err := client.JobList(cmd.Context())
	if err != nil {
		return err
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	w := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)
	for _, id := range ids {
		fmt.Fprintf(w, "%d\n", id)
	}
	return w.Flush()
}
