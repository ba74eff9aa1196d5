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

// Package auth provides authentication for a client to a remote GhostDock
// registry.
//
// GhostDock does not use the distribution token challenge flow. Instead, a
// bearer token is obtained by posting the username and password to the /auth
// endpoint of the registry, and presented on subsequent requests in the
// Authorization header.
package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/ghostdock/ghostdock-go/registry/remote/retry"
)

// HTTP header names used in authentication.
const (
	headerAuthorization = "Authorization"
	headerContentType   = "Content-Type"
	headerUserAgent     = "User-Agent"
)

// ErrCredentialNotFound is returned when a request requires authentication
// but no credential is available for the registry.
var ErrCredentialNotFound = errors.New("credential not found")

// DefaultClient is the default auth-decorated client.
var DefaultClient = &Client{
	Client: retry.DefaultClient,
	Header: http.Header{
		headerUserAgent: {"ghostdock-go"},
	},
	Cache: DefaultCache,
}

// maxTokenResponseBytes specifies the default limit on how many response
// bytes are allowed in the login response of the registry.
// The response carries a JWT whose size is bounded by the HTTP header size
// limit, usually 16 KiB. Hence, 128 KiB should be sufficient.
var maxTokenResponseBytes int64 = 128 * 1024 // 128 KiB

// Client is an auth-decorated HTTP client.
// Its zero value is a usable client that uses http.DefaultClient with no
// cache.
type Client struct {
	// Client is the underlying HTTP client used to access the remote server.
	// If nil, http.DefaultClient is used.
	// It is possible to use the default retry client from the package
	// `github.com/ghostdock/ghostdock-go/registry/remote/retry`. That client
	// is already available in the DefaultClient.
	Client *http.Client

	// Header contains the custom headers to be added to each request.
	Header http.Header

	// CredentialFunc specifies the function for resolving the credential for
	// the given registry (i.e. host:port).
	// EmptyCredential is a valid return value and should not be considered as
	// an error.
	// If nil, the credential is always resolved to EmptyCredential.
	CredentialFunc CredentialFunc

	// Cache caches tokens for accessing the remote registry.
	// If nil, no cache is used.
	Cache Cache

	// PlainHTTP signals Login to access the login endpoint via HTTP instead
	// of HTTPS. Regular requests derive the scheme from the request URL and
	// do not consult this field.
	PlainHTTP bool
}

// client returns an HTTP client used to access the remote registry.
// http.DefaultClient is return if the client is not configured.
func (c *Client) client() *http.Client {
	if c.Client == nil {
		return http.DefaultClient
	}
	return c.Client
}

// send adds headers to the request and sends the request to the remote
// server.
func (c *Client) send(req *http.Request) (*http.Response, error) {
	for key, values := range c.Header {
		req.Header[key] = append(req.Header[key], values...)
	}
	return c.client().Do(req)
}

// credential resolves the credential for the given registry.
func (c *Client) credential(ctx context.Context, reg string) (Credential, error) {
	if c.CredentialFunc == nil {
		return EmptyCredential, nil
	}
	return c.CredentialFunc(ctx, reg)
}

// cache resolves the cache.
// noCache is return if the cache is not configured.
func (c *Client) cache() Cache {
	if c.Cache == nil {
		return noCache{}
	}
	return c.Cache
}

// SetUserAgent sets the user agent for all out-going requests.
func (c *Client) SetUserAgent(userAgent string) {
	if c.Header == nil {
		c.Header = http.Header{}
	}
	c.Header.Set(headerUserAgent, userAgent)
}

// Do sends the request to the remote server, attempting to resolve
// authentication if the 'Authorization' header is not set.
//
// If a cached token is available for the target host, it is presented
// directly. On a 401 Unauthorized or 403 Forbidden response, the client
// obtains a fresh token from the registry's login endpoint using the
// resolved credential and retries the request once.
//
// If no credential is available, the registry response is returned without
// error so the caller observes the original status code.
func (c *Client) Do(originalReq *http.Request) (*http.Response, error) {
	if auth := originalReq.Header.Get(headerAuthorization); auth != "" {
		return c.send(originalReq)
	}

	ctx := originalReq.Context()
	req := originalReq.Clone(ctx)

	// attempt cached token
	cache := c.cache()
	host := originalReq.Host
	if host == "" {
		host = originalReq.URL.Host
	}
	if token, err := cache.GetToken(ctx, host); err == nil {
		req.Header.Set(headerAuthorization, "Bearer "+token)
	}

	resp, err := c.send(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusUnauthorized && resp.StatusCode != http.StatusForbidden {
		return resp, nil
	}

	// attempt again with a fresh token
	token, err := cache.Set(ctx, host, func(ctx context.Context) (string, error) {
		return c.fetchToken(ctx, originalReq.URL.Scheme, host)
	})
	if err != nil {
		if errors.Is(err, ErrCredentialNotFound) {
			// no credential available, return the original response
			return resp, nil
		}
		resp.Body.Close()
		return nil, fmt.Errorf("%s %q: %w", resp.Request.Method, resp.Request.URL, err)
	}
	resp.Body.Close()

	req = originalReq.Clone(ctx)
	req.Header.Set(headerAuthorization, "Bearer "+token)
	if err := rewindRequestBody(req); err != nil {
		return nil, err
	}
	return c.send(req)
}

// Login obtains a token from the registry using the resolved credential and
// caches it. The token is returned so that callers may persist it.
func (c *Client) Login(ctx context.Context, registry string) (string, error) {
	return c.cache().Set(ctx, registry, func(ctx context.Context) (string, error) {
		scheme := "https"
		if c.PlainHTTP {
			scheme = "http"
		}
		return c.fetchToken(ctx, scheme, registry)
	})
}

// fetchToken obtains a bearer token from the login endpoint of the registry.
// Format: POST <scheme>://<registry>/auth with body {"username", "password"}.
// If the credential carries an access token, it is used directly without
// contacting the registry.
func (c *Client) fetchToken(ctx context.Context, scheme, registry string) (string, error) {
	cred, err := c.credential(ctx, registry)
	if err != nil {
		return "", fmt.Errorf("failed to resolve credential: %w", err)
	}
	if cred.AccessToken != "" {
		return cred.AccessToken, nil
	}
	if cred == EmptyCredential {
		return "", ErrCredentialNotFound
	}
	if cred.Username == "" || cred.Password == "" {
		return "", errors.New("missing username or password")
	}

	body, err := json.Marshal(struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}{
		Username: cred.Username,
		Password: cred.Password,
	})
	if err != nil {
		return "", err
	}
	url := fmt.Sprintf("%s://%s/auth", scheme, registry)
	logrus.Debugf("fetching bearer token from %s for user %q", url, cred.Username)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set(headerContentType, "application/json")

	resp, err := c.send(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%s %q: response status code %d: %s", resp.Request.Method, resp.Request.URL, resp.StatusCode, http.StatusText(resp.StatusCode))
	}

	var result struct {
		Token string `json:"token"`
	}
	lr := io.LimitReader(resp.Body, maxTokenResponseBytes)
	if err := json.NewDecoder(lr).Decode(&result); err != nil {
		return "", fmt.Errorf("%s %q: failed to decode response: %w", resp.Request.Method, resp.Request.URL, err)
	}
	if result.Token == "" {
		return "", fmt.Errorf("%s %q: empty token returned", resp.Request.Method, resp.Request.URL)
	}
	return result.Token, nil
}

// rewindRequestBody tries to rewind the request body if exists.
func rewindRequestBody(req *http.Request) error {
	if req.Body == nil || req.Body == http.NoBody {
		return nil
	}
	if req.GetBody == nil {
		return fmt.Errorf("%s %q: request body is not rewindable", req.Method, req.URL)
	}
	body, err := req.GetBody()
	if err != nil {
		return fmt.Errorf("%s %q: failed to get request body: %w", req.Method, req.URL, err)
	}
	req.Body = body
	return nil
}
