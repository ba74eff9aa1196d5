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
	"io"
	"os"

	pkgerrors "github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var blobCmd = &cobra.Command{
	Use:   "blob",
	Short: "Blob operations",
}

var blobGetOutput string

var blobGetCmd = &cobra.Command{
	Use:   "get <repository> <digest>",
	Short: "Fetch a blob by digest",
	Args:  cobra.ExactArgs(2),
	RunE:  runBlobGet,
}

var blobExistsCmd = &cobra.Command{
	Use:   "exists <repository> <digest>",
	Short: "Check whether a blob exists",
	Args:  cobra.ExactArgs(2),
	RunE:  runBlobExists,
}

func init() {
	blobGetCmd.Flags().StringVarP(&blobGetOutput, "output", "o", "", "write the blob to a file instead of stdout")
	blobCmd.AddCommand(blobGetCmd, blobExistsCmd)
	rootCmd.AddCommand(blobCmd)
}

func runBlobGet(cmd *cobra.Command, args []string) error {
	repo, err := newRepositoryClient(args[0])
	if err != nil {
		return err
	}
	_, rc, err := repo.Blobs().FetchReference(cmd.Context(), args[1])
	if err != nil {
		return err
	}
	defer rc.Close()

	var w io.Writer = os.Stdout
	if blobGetOutput != "" {
		f, err := os.Create(blobGetOutput)
		if err != nil {
			return pkgerrors.Wrapf(err, "failed to create %q", blobGetOutput)
		}
		defer f.Close()
		w = f
	}
	_, err = io.Copy(w, rc)
	return err
}

func runBlobExists(cmd *cobra.Command, args []string) error {
	repo, err := newRepositoryClient(args[0])
	if err != nil {
		return err
	}
	exists, err := repo.Blobs().Exists(cmd.Context(), args[1])
	if err != nil {
		return err
	}
	fmt.Println(exists)
	return nil
}
