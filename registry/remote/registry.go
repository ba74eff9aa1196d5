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

// Package remote provides a client to the remote GhostDock registry.
package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/ghostdock/ghostdock-go/errdef"
	"github.com/ghostdock/ghostdock-go/registry"
	"github.com/ghostdock/ghostdock-go/registry/remote/auth"
	"github.com/ghostdock/ghostdock-go/registry/remote/remoteerr"
)

// RepositoryOptions is an alias of Repository to avoid name conflicts.
// It also hides all methods of Repository.
type RepositoryOptions Repository

// APIInfo is the discovery payload returned by the base API endpoint.
type APIInfo struct {
	// Registry describes the serving registry.
	Registry RegistryInfo `json:"registry"`
}

// RegistryInfo describes the registry behind the base API endpoint.
type RegistryInfo struct {
	// Version is the distribution API version, e.g. "2.0".
	Version string `json:"version"`

	// Name is the product name of the registry.
	Name string `json:"name"`

	// Vendor is the vendor of the registry.
	Vendor string `json:"vendor"`

	// Build is the build version of the serving registry.
	Build string `json:"build"`
}

// Registry is an HTTP client to a remote registry.
type Registry struct {
	// RepositoryOptions contains common options for Registry and repositories
	// within the registry.
	// It is also used as a template for derived repositories.
	RepositoryOptions

	// RepositoryListPageSize specifies the page size when invoking the catalog
	// API.
	// If zero, the page size is determined by the remote registry.
	RepositoryListPageSize int
}

// NewRegistry creates a client to the remote registry with the specified
// registry name.
// Example: localhost:5000
func NewRegistry(name string) (*Registry, error) {
	ref := registry.Reference{
		Registry: name,
	}
	if err := ref.ValidateRegistry(); err != nil {
		return nil, err
	}
	return &Registry{
		RepositoryOptions: RepositoryOptions{
			Reference: ref,
		},
	}, nil
}

// client returns an HTTP client used to access the remote registry.
// A default HTTP client is return if the client is not configured.
func (r *Registry) client() Client {
	if r.Client == nil {
		return auth.DefaultClient
	}
	return r.Client
}

// Ping checks whether or not the registry implements the distribution API.
// Ping can be used to check authentication when an auth client is configured.
func (r *Registry) Ping(ctx context.Context) error {
	url := buildRegistryBaseURL(r.PlainHTTP, r.Reference)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}

	resp, err := r.client().Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		return nil
	case http.StatusNotFound:
		return errdef.ErrNotFound
	default:
		return remoteerr.ParseErrorResponse(resp)
	}
}

// CheckAPI fetches the discovery payload of the base API endpoint.
// GhostDock reports its product name, vendor and build version there in
// addition to the distribution API version.
func (r *Registry) CheckAPI(ctx context.Context) (APIInfo, error) {
	url := buildRegistryBaseURL(r.PlainHTTP, r.Reference)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return APIInfo{}, err
	}

	resp, err := r.client().Do(req)
	if err != nil {
		return APIInfo{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return APIInfo{}, remoteerr.ParseErrorResponse(resp)
	}

	var info APIInfo
	lr := limitReader(resp.Body, r.MaxMetadataBytes)
	if err := json.NewDecoder(lr).Decode(&info); err != nil {
		return APIInfo{}, fmt.Errorf("%s %q: failed to decode response: %w", resp.Request.Method, resp.Request.URL, err)
	}
	return info, nil
}

// Repositories lists the name of repositories available in the registry.
// See also `RepositoryListPageSize`.
// If `last` is NOT empty, the entries in the response start after the
// repository specified by `last`. Otherwise, the response starts from the top
// of the repository list.
func (r *Registry) Repositories(ctx context.Context, last string, fn func(repos []string) error) error {
	url := buildRegistryCatalogURL(r.PlainHTTP, r.Reference)
	var err error
	for err == nil {
		url, err = r.repositories(ctx, last, fn, url)
		// clear `last` for subsequent pages
		last = ""
	}
	if err != errNoLink {
		return err
	}
	return nil
}

// repositories returns a single page of repository list with the next link.
func (r *Registry) repositories(ctx context.Context, last string, fn func(repos []string) error, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	if r.RepositoryListPageSize > 0 || last != "" {
		q := req.URL.Query()
		if r.RepositoryListPageSize > 0 {
			q.Set("n", strconv.Itoa(r.RepositoryListPageSize))
		}
		if last != "" {
			q.Set("last", last)
		}
		req.URL.RawQuery = q.Encode()
	}
	resp, err := r.client().Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", remoteerr.ParseErrorResponse(resp)
	}
	var page struct {
		Repositories []string `json:"repositories"`
	}
	lr := limitReader(resp.Body, r.MaxMetadataBytes)
	if err := json.NewDecoder(lr).Decode(&page); err != nil {
		return "", fmt.Errorf("%s %q: failed to decode response: %w", resp.Request.Method, resp.Request.URL, err)
	}
	if err := fn(page.Repositories); err != nil {
		return "", err
	}

	return parseLink(resp)
}

// Repository returns a repository reference by the given name in the registry.
func (r *Registry) Repository(ctx context.Context, name string) (registry.Repository, error) {
	ref := registry.Reference{
		Registry:   r.Reference.Registry,
		Repository: name,
	}
	if err := ref.Validate(); err != nil {
		return nil, err
	}

	repo := Repository(r.RepositoryOptions)
	repo.Reference = ref
	return &repo, nil
}
