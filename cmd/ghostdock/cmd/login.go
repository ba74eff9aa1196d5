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

	pkgerrors "github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var loginShowToken bool

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in to the registry and verify the credential",
	Args:  cobra.NoArgs,
	RunE:  runLogin,
}

func init() {
	loginCmd.Flags().BoolVar(&loginShowToken, "show-token", false, "print the obtained bearer token")
	rootCmd.AddCommand(loginCmd)
}

func runLogin(cmd *cobra.Command, args []string) error {
	host, err := registryHost()
	if err != nil {
		return err
	}
	client := newAuthClient(host)
	token, err := client.Login(cmd.Context(), host)
	if err != nil {
		return pkgerrors.Wrapf(err, "failed to log in to %q", host)
	}
	if loginShowToken {
		fmt.Println(token)
		return nil
	}
	fmt.Println("Login succeeded")
	return nil
}
