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
	"sort"
	"time"

	"github.com/spf13/cobra"
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Show the system health of the registry",
	Args:  cobra.NoArgs,
	RunE:  runHealth,
}

var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Show usage metrics of the registry",
	Args:  cobra.NoArgs,
	RunE:  runMetrics,
}

func init() {
	rootCmd.AddCommand(healthCmd, metricsCmd)
}

func runHealth(cmd *cobra.Command, args []string) error {
	client, err := newManagementClient()
	if err != nil {
		return err
	}
	health, err := client.Health(cmd.Context())
	if err != nil {
		return err
	}

	fmt.Printf("Status:  %s\n", health.Status)
	fmt.Printf("Version: %s\n", health.Version)
	fmt.Printf("Uptime:  %s\n", time.Duration(health.Uptime)*time.Second)
	names := make([]string, 0, len(health.Services))
	for name := range health.Services {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Printf("  %s: %s\n", name, health.Services[name])
	}
	return nil
}

func runMetrics(cmd *cobra.Command, args []string) error {
	client, err := newManagementClient()
	if err != nil {
		return err
	}
	metrics, err := client.Metrics(cmd.Context())
	if err != nil {
		return err
	}

	fmt.Printf("Repositories: %d\n", metrics.Registry.Repositories)
	fmt.Printf("Images:       %d\n", metrics.Registry.Images)
	fmt.Printf("Pulls:        %d\n", metrics.Registry.Pulls)
	fmt.Printf("Pushes:       %d\n", metrics.Registry.Pushes)
	fmt.Printf("Storage used: %d bytes\n", metrics.Storage.UsedBytes)
	return nil
}
