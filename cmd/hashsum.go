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

var (
	hashsumCmd = &cobra.Command{
		Use:   "hashsum <remote:path>",
		Short: "Compute checksums for every object under a remote path",
		Args:  cobra.ExactArgs(1),
		RunE:  hashsumMain,
	}

	hashsumType string
)

func init() {
	hashsumCmd.Flags().StringVarP(&hashsumType, "type", "t", "md5", "Hash type (md5, sha1, ...)")
	rootCmd.AddCommand(hashsumCmd)
}

func hashsumMain(cmd *cobra.Command, args []string) error {
	client := rcclient.New("")
	defer client.Close()

	sums, err := client.Hashsum(cmd.Context(), args[0], hashsumType)
	if err != nil {
		return err
	}

	paths := make([]string, 0, len(sums))
	for path := range sums {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	w := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)
	for _, path := range paths {
		fmt.Fprintf(w, "%s\t%s\n", sums[path], path)
	}
	return w.Flush()
}
