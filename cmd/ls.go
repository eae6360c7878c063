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
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/rcpilot/rcpilot/rcclient"
)

var lsCmd = &cobra.Command{
	Use:   "ls <remote:path>",
	Short: "List the contents of a remote directory",
	Args:  cobra.ExactArgs(1),
	RunE:  lsMain,
}

func init() {
	rootCmd.AddCommand(lsCmd)
}

func lsMain(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	fs, remote, err := splitTarget(args[0])
	if err != nil {
		return err
	}

	client := rcclient.New("")
	defer client.Close()

	entries, err := client.Ls(ctx, fs, remote)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)
	for _, entry := range entries {
		kind := "file"
		if entry.IsDir {
			kind = "dir"
		}
		fmt.Fprintf(w, "%s\t%d\t%s\n", kind, entry.Size, entry.Path)
	}
	return w.Flush()
}
