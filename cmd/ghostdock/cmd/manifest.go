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
	"os"

	"github.com/spf13/cobra"

	ghostdock "github.com/ghostdock/ghostdock-go"
)

var manifestCmd = &cobra.Command{
	Use:   "manifest",
	Short: "Manifest operations",
}

var manifestGetDescriptor bool

var manifestGetCmd = &cobra.Command{
	Use:   "get <repository> <reference>",
	Short: "Fetch a manifest by tag or digest",
	Args:  cobra.ExactArgs(2),
	RunE:  runManifestGet,
}

var manifestDeleteCmd = &cobra.Command{
	Use:   "delete <repository> <digest>",
	Short: "Delete a manifest by digest",
	Args:  cobra.ExactArgs(2),
	RunE:  runManifestDelete,
}

func init() {
	manifestGetCmd.Flags().BoolVar(&manifestGetDescriptor, "descriptor", false, "print the descriptor instead of the content")
	manifestCmd.AddCommand(manifestGetCmd, manifestDeleteCmd)
	rootCmd.AddCommand(manifestCmd)
}

func runManifestGet(cmd *cobra.Command, args []string) error {
	repo, err := newRepositoryClient(args[0])
	if err != nil {
		return err
	}
	desc, content, err := ghostdock.FetchManifest(cmd.Context(), repo, args[1], ghostdock.DefaultFetchBytesOptions)
	if err != nil {
		return err
	}
	if manifestGetDescriptor {
		fmt.Printf("%s %s %d\n", desc.Digest, desc.MediaType, desc.Size)
		return nil
	}
	os.Stdout.Write(content)
	return nil
}

func runManifestDelete(cmd *cobra.Command, args []string) error {
	repo, err := newRepositoryClient(args[0])
	if err != nil {
		return err
	}
	if err := repo.Manifests().Delete(cmd.Context(), args[1]); err != nil {
		return err
	}
	fmt.Printf("Deleted %s\n", args[1])
	return nil
}
