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

var remotesCmd = &cobra.Command{
	Use:   "remotes",
	Short: "List the remotes configured in the daemon",
	Args:  cobra.NoArgs,
	RunE:  remotesMain,
}

func init() {
	rootCmd.AddCommand(remotesCmd)
}

func remotesMain(cmd *cobra.Command, args []string) error {
	client := rcclient.New("")
	defer client.Close()

	remotes, err := client.ListRemotes(cmd.Context())
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)
	for _, remote := range remotes {
		fmt.Fprintf(w, "%s\t%s\n", remote.Name, remote.Type)
	}
	return w.Flush()
}
