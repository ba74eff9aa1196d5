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

	"github.com/spf13/cobra"
)

var repoCmd = &cobra.Command{
	Use:   "repo",
	Short: "Repository metadata operations",
}

var repoInfoCmd = &cobra.Command{
	Use:   "info <repository>",
	Short: "Show detailed repository information",
	Args:  cobra.ExactArgs(1),
	RunE:  runRepoInfo,
}

func init() {
	repoCmd.AddCommand(repoInfoCmd)
	rootCmd.AddCommand(repoCmd)
}

func runRepoInfo(cmd *cobra.Command, args []string) error {
	client, err := newManagementClient()
	if err != nil {
		return err
	}
	info, err := client.RepositoryInfo(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	fmt.Printf("Name:        %s\n", info.Name)
	if info.Namespace != "" {
		fmt.Printf("Namespace:   %s\n", info.Namespace)
	}
	if info.Description != "" {
		fmt.Printf("Description: %s\n", info.Description)
	}
	fmt.Printf("Public:      %t\n", info.IsPublic)
	fmt.Printf("Size:        %d\n", info.Size)
	fmt.Printf("Stars:       %d\n", info.StarCount)
	fmt.Printf("Pulls:       %d\n", info.PullCount)
	fmt.Printf("Pushes:      %d\n", info.PushCount)
	fmt.Printf("Created:     %s\n", info.CreatedAt.Format("2006-01-02 15:04:05 MST"))
	fmt.Printf("Updated:     %s\n", info.UpdatedAt.Format("2006-01-02 15:04:05 MST"))
	return nil
}
