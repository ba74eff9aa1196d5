/*
Copyright The GhostDock Authors.
Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var usersOpts struct {
	page  int
	limit int
}

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "List registry users (requires admin privileges)",
	Args:  cobra.NoArgs,
	RunE:  runUsers,
}

func init() {
	usersCmd.Flags().IntVar(&usersOpts.page, "page", 0, "page number, 1-based")
	usersCmd.Flags().IntVar(&usersOpts.limit, "limit", 0, "page size")
	rootCmd.AddCommand(usersCmd)
}

func runUsers(cmd *cobra.Command, args []string) error {
	client, err := newManagementClient()
	if err != nil {
		return err
	}
	list, err := client.Users(cmd.Context(), usersOpts.page, usersOpts.limit)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "USERNAME\tEMAIL\tADMIN\tACTIVE")
	for _, user := range list.Users {
		fmt.Fprintf(w, "%s\t%s\t%t\t%t\n", user.Username, user.Email, user.IsAdmin, user.IsActive)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Printf("\n%d of %d users (page %d)\n", len(list.Users), list.Total, list.Page)
	return nil
}
