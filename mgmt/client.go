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

// Package mgmt provides a client to the GhostDock management API.
//
// The management API lives next to the distribution API on the same host
// under /api/v1 and exposes repository metadata, user administration,
// personal access tokens, and system health and metrics.
package mgmt

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/sirupsen/logrus"

	"github.com/ghostdock/ghostdock-go/registry/remote/auth"
)

// defaultMaxResponseBytes specifies the default limit on how many response
// bytes are allowed in the server's response to the management APIs.
var defaultMaxResponseBytes int64 = 4 * 1024 * 1024 // 4 MiB

// Client is an interface for a HTTP client.
// It matches the Client interface of the registry/remote package so that the
// same auth-decorated client can serve both APIs.
type Client interface {
	// Do sends an HTTP request and returns an HTTP response.
	Do(*http.Request) (*http.Response, error)
}

// ManagementClient is an HTTP client to the management API of a GhostDock
// registry.
type ManagementClient struct {
	// Client is the underlying HTTP client used to access the management API.
	// If nil, auth.DefaultClient is used.
	Client Client

	// Registry is the host name of the registry, optionally with a port.
	// Example: localhost:5000
	Registry string

	// PlainHTTP signals the transport to access the management API via HTTP
	// instead of HTTPS.
	PlainHTTP bool

	// MaxResponseBytes specifies a limit on how many response bytes are
	// allowed in the server's response to the management APIs.
	// If less than or equal to zero, a default (currently 4MiB) is used.
	MaxResponseBytes int64
}

// NewManagementClient creates a client to the management API of the remote
// registry with the specified registry name.
// Example: localhost:5000
func NewManagementClient(registry string) *ManagementClient {
	return &ManagementClient{
		Registry: registry,
	}
}

// client returns an HTTP client used to access the management API.
// A default client is return if the client is not configured.
func (c *ManagementClient) client() Client {
	if c.Client == nil {
		return auth.DefaultClient
	}
	return c.Client
}

// baseURL builds the URL of the management API root.
// Format: <scheme>://<registry>/api/v1
func (c *ManagementClient) baseURL() string {
	scheme := "https"
	if c.PlainHTTP {
		scheme = "http"
	}
	return fmt.Sprintf("%s://%s/api/v1", scheme, c.Registry)
}

// get issues a GET request and decodes the JSON response into result.
func (c *ManagementClient) get(ctx context.Context, url string, result any) error {
	logrus.Debugf("GET %s", url)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	return c.do(req, result)
}

// post issues a POST request with a JSON body and decodes the JSON response
// into result.
func (c *ManagementClient) post(ctx context.Context, url string, body, result any) error {
	logrus.Debugf("POST %s", url)
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, result)
}

// do sends the request and decodes a successful JSON response into result.
func (c *ManagementClient) do(req *http.Request, result any) error {
	resp, err := c.client().Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return parseErrorResponse(resp)
	}

	limit := c.MaxResponseBytes
	if limit <= 0 {
		limit = defaultMaxResponseBytes
	}
	lr := io.LimitReader(resp.Body, limit)
	if err := json.NewDecoder(lr).Decode(result); err != nil {
		return fmt.Errorf("%s %q: failed to decode response: %w", resp.Request.Method, resp.Request.URL, err)
	}
	return nil
}

// RepositoryInfo fetches detailed information of the given repository.
func (c *ManagementClient) RepositoryInfo(ctx context.Context, repository string) (*RepositoryInfo, error) {
	url := fmt.Sprintf("%s/repositories/%s", c.baseURL(), repository)
	var info RepositoryInfo
	if err := c.get(ctx, url, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// Users lists registry user accounts. Listing users requires admin
// privileges.
// page is 1-based; if page or limit is not positive, the server default is
// used.
func (c *ManagementClient) Users(ctx context.Context, page, limit int) (*UserList, error) {
	listURL := c.baseURL() + "/users"
	q := url.Values{}
	if page > 0 {
		q.Set("page", strconv.Itoa(page))
	}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	if len(q) > 0 {
		listURL += "?" + q.Encode()
	}
	var users UserList
	if err := c.get(ctx, listURL, &users); err != nil {
		return nil, err
	}
	return &users, nil
}

// CreateToken creates a personal access token for the authenticated user.
// The returned token carries the secret, which cannot be retrieved again
// afterwards.
func (c *ManagementClient) CreateToken(ctx context.Context, request TokenRequest) (*Token, error) {
	url := c.baseURL() + "/tokens"
	var token Token
	if err := c.post(ctx, url, request, &token); err != nil {
		return nil, err
	}
	return &token, nil
}

// Health fetches the system health report of the registry.
func (c *ManagementClient) Health(ctx context.Context) (*Health, error) {
	url := c.baseURL() + "/health"
	var health Health
	if err := c.get(ctx, url, &health); err != nil {
		return nil, err
	}
	return &health, nil
}

// Metrics fetches the system metrics report of the registry.
func (c *ManagementClient) Metrics(ctx context.Context) (*Metrics, error) {
	url := c.baseURL() + "/metrics"
	var metrics Metrics
	if err := c.get(ctx, url, &metrics); err != nil {
		return nil, err
	}
	return &metrics, nil
}
