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
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/ghostdock/ghostdock-go/registry"
)

var reposOpts struct {
	last        string
	withTags    bool
	concurrency int
}

var reposCmd = &cobra.Command{
	Use:   "repos",
	Short: "List repositories in the registry",
	Args:  cobra.NoArgs,
	RunE:  runRepos,
}

func init() {
	reposCmd.Flags().StringVar(&reposOpts.last, "last", "", "start listing after this repository")
	reposCmd.Flags().BoolVar(&reposOpts.withTags, "tags", false, "also list the tags of each repository")
	reposCmd.Flags().IntVar(&reposOpts.concurrency, "concurrency", 3, "max concurrent tag list requests")
	rootCmd.AddCommand(reposCmd)
}

func runRepos(cmd *cobra.Command, args []string) error {
	reg, err := newRegistryClient()
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	var repos []string
	if err := reg.Repositories(ctx, reposOpts.last, func(page []string) error {
		repos = append(repos, page...)
		return nil
	}); err != nil {
		return err
	}
	if !reposOpts.withTags {
		for _, repo := range repos {
			fmt.Println(repo)
		}
		return nil
	}
	return printReposWithTags(ctx, reg, repos)
}

// printReposWithTags fetches the tags of each repository concurrently and
// prints them in the listing order.
func printReposWithTags(ctx context.Context, reg registry.Registry, repos []string) error {
	var mu sync.Mutex
	tagsByRepo := make(map[string][]string, len(repos))

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(reposOpts.concurrency)
	for _, name := range repos {
		name := name
		eg.Go(func() error {
			repo, err := reg.Repository(egCtx, name)
			if err != nil {
				return err
			}
			tags, err := registry.Tags(egCtx, repo)
			if err != nil {
				return err
			}
			mu.Lock()
			tagsByRepo[name] = tags
			mu.Unlock()
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return err
	}

	for _, name := range repos {
		tags := tagsByRepo[name]
		sort.Strings(tags)
		fmt.Printf("%s: %s\n", name, strings.Join(tags, ", "))
	}
	return nil
}
