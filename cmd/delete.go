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

	"github.com/spf13/cobra"

	"github.com/rcpilot/rcpilot/rcclient"
)

var deleteCmd = &cobra.Command{
	Use:   "delete <remote:path>",
	Short: "Delete a single remote file",
	Args:  cobra.ExactArgs(1),
	RunE:  deleteMain,
}

func init() {
	rootCmd.AddCommand(deleteCmd)
}

func deleteMain(cmd *cobra.Command, args []string) error {
	fs, remote, err := splitTarget(args[0])
	if err != nil {
		return err
	}

	client := rcclient.New("")
	defer client.Close()

	if err := client.DeleteFile(cmd.Context(), fs, remote); err != nil {
		return err
	}
	fmt.Println("Deleted", args[0])
	return nil
}
