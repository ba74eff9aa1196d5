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
	"time"

	"github.com/spf13/cobra"

	"github.com/ghostdock/ghostdock-go/mgmt"
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Personal access token operations",
}

var tokenCreateOpts struct {
	permissions []string
	expiresIn   time.Duration
}

var tokenCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a personal access token",
	Long: `Create a personal access token for the authenticated user.
The token secret is printed once and cannot be retrieved again.`,
	Args: cobra.ExactArgs(1),
	RunE: runTokenCreate,
}

func init() {
	tokenCreateCmd.Flags().StringSliceVar(&tokenCreateOpts.permissions, "permission", []string{"pull"}, "permissions granted to the token")
	tokenCreateCmd.Flags().DurationVar(&tokenCreateOpts.expiresIn, "expires-in", 0, "token lifetime, e.g. 720h; 0 means no expiry")
	tokenCmd.AddCommand(tokenCreateCmd)
	rootCmd.AddCommand(tokenCmd)
}

func runTokenCreate(cmd *cobra.Command, args []string) error {
	client, err := newManagementClient()
	if err != nil {
		return err
	}

	request := mgmt.TokenRequest{
		Name:        args[0],
		Permissions: tokenCreateOpts.permissions,
	}
	if tokenCreateOpts.expiresIn > 0 {
		expiresAt := time.Now().Add(tokenCreateOpts.expiresIn).UTC()
		request.ExpiresAt = &expiresAt
	}

	token, err := client.CreateToken(cmd.Context(), request)
	if err != nil {
		return err
	}

	fmt.Printf("Name:  %s\n", token.Name)
	fmt.Printf("Token: %s\n", token.Token)
	if token.ExpiresAt != nil {
		fmt.Printf("Expires: %s\n", token.ExpiresAt.Format(time.RFC3339))
	}
	return nil
}
