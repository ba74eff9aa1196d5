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

var pingCmd = &cobra.Command{
	Use:   "ping",
	Short: "Check the distribution API of the registry",
	Args:  cobra.NoArgs,
	RunE:  runPing,
}

func init() {
	rootCmd.AddCommand(pingCmd)
}

func runPing(cmd *cobra.Command, args []string) error {
	reg, err := newRegistryClient()
	if err != nil {
		return err
	}
	info, err := reg.CheckAPI(cmd.Context())
	if err != nil {
		return err
	}

	fmt.Printf("API version: %s\n", info.Registry.Version)
	if info.Registry.Name != "" {
		fmt.Printf("Registry:    %s", info.Registry.Name)
		if info.Registry.Build != "" {
			fmt.Printf(" %s", info.Registry.Build)
		}
		fmt.Println()
	}
	if info.Registry.Vendor != "" {
		fmt.Printf("Vendor:      %s\n", info.Registry.Vendor)
	}
	return nil
}
