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

package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
)

// newAuthServer starts a test server that issues the given token on
// POST /auth for the given credential, and serves /v2/ only with that token.
func newAuthServer(t *testing.T, username, password, token string, loginCount *atomic.Int32) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/auth":
			if r.Method != http.MethodPost {
				t.Errorf("unexpected access: %s %s", r.Method, r.URL)
				w.WriteHeader(http.StatusMethodNotAllowed)
				return
			}
			if loginCount != nil {
				loginCount.Add(1)
			}
			var cred struct {
				Username string `json:"username"`
				Password string `json:"password"`
			}
			if err := json.NewDecoder(r.Body).Decode(&cred); err != nil {
				w.WriteHeader(http.StatusBadRequest)
				return
			}
			if cred.Username != username || cred.Password != password {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(map[string]string{"token": token})
		case "/v2/":
			if auth := r.Header.Get("Authorization"); auth != "Bearer "+token {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			w.WriteHeader(http.StatusOK)
		default:
			t.Errorf("unexpected access: %s %s", r.Method, r.URL)
			w.WriteHeader(http.StatusNotFound)
		}
	}))
}

func testHost(t *testing.T, ts *httptest.Server) string {
	t.Helper()
	uri, err := url.Parse(ts.URL)
	if err != nil {
		t.Fatalf("invalid test http server: %v", err)
	}
	return uri.Host
}

func TestClient_Do_FetchesTokenOn401(t *testing.T) {
	var loginCount atomic.Int32
	ts := newAuthServer(t, "admin", "secret", "test-token", &loginCount)
	defer ts.Close()
	host := testHost(t, ts)

	client := &Client{
		CredentialFunc: StaticCredentialFunc(host, Credential{
			Username: "admin",
			Password: "secret",
		}),
		Cache: NewCache(),
	}

	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, ts.URL+"/v2/", nil)
	if err != nil {
		t.Fatalf("failed to create request: %v", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("Client.Do() error = %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("Client.Do() status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
	if got := loginCount.Load(); got != 1 {
		t.Errorf("login endpoint hit %d times, want 1", got)
	}

	// the second request uses the cached token
	req, err = http.NewRequestWithContext(context.Background(), http.MethodGet, ts.URL+"/v2/", nil)
	if err != nil {
		t.Fatalf("failed to create request: %v", err)
	}
	resp, err = client.Do(req)
	if err != nil {
		t.Fatalf("Client.Do() error = %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("Client.Do() status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
	if got := loginCount.Load(); got != 1 {
		t.Errorf("login endpoint hit %d times, want 1", got)
	}
}

func TestClient_Do_NoCredential(t *testing.T) {
	ts := newAuthServer(t, "admin", "secret", "test-token", nil)
	defer ts.Close()

	// no credential configured: the original 401 response is returned
	client := &Client{}
	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, ts.URL+"/v2/", nil)
	if err != nil {
		t.Fatalf("failed to create request: %v", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("Client.Do() error = %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("Client.Do() status = %d, want %d", resp.StatusCode, http.StatusUnauthorized)
	}
}

func TestClient_Do_ExistingAuthorization(t *testing.T) {
	ts := newAuthServer(t, "admin", "secret", "preset-token", nil)
	defer ts.Close()

	// a preset Authorization header is never overwritten
	client := &Client{
		CredentialFunc: StaticCredentialFunc(testHost(t, ts), Credential{
			Username: "admin",
			Password: "secret",
		}),
	}
	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, ts.URL+"/v2/", nil)
	if err != nil {
		t.Fatalf("failed to create request: %v", err)
	}
	req.Header.Set("Authorization", "Bearer preset-token")
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("Client.Do() error = %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("Client.Do() status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
}

func TestClient_Do_AccessToken(t *testing.T) {
	ts := newAuthServer(t, "admin", "secret", "access-token", nil)
	defer ts.Close()
	host := testHost(t, ts)

	// an access token is presented directly without hitting the login endpoint
	client := &Client{
		CredentialFunc: StaticCredentialFunc(host, Credential{
			AccessToken: "access-token",
		}),
		Cache: NewCache(),
	}
	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, ts.URL+"/v2/", nil)
	if err != nil {
		t.Fatalf("failed to create request: %v", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("Client.Do() error = %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("Client.Do() status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
}

func TestClient_Login(t *testing.T) {
	ts := newAuthServer(t, "admin", "secret", "login-token", nil)
	defer ts.Close()
	host := testHost(t, ts)

	client := &Client{
		CredentialFunc: StaticCredentialFunc(host, Credential{
			Username: "admin",
			Password: "secret",
		}),
		Cache:     NewCache(),
		PlainHTTP: true,
	}
	token, err := client.Login(context.Background(), host)
	if err != nil {
		t.Fatalf("Client.Login() error = %v", err)
	}
	if token != "login-token" {
		t.Errorf("Client.Login() = %q, want %q", token, "login-token")
	}

	// the token is cached
	got, err := client.Cache.GetToken(context.Background(), host)
	if err != nil {
		t.Fatalf("Cache.GetToken() error = %v", err)
	}
	if got != "login-token" {
		t.Errorf("Cache.GetToken() = %q, want %q", got, "login-token")
	}
}

func TestClient_Login_BadCredential(t *testing.T) {
	ts := newAuthServer(t, "admin", "secret", "login-token", nil)
	defer ts.Close()
	host := testHost(t, ts)

	client := &Client{
		CredentialFunc: StaticCredentialFunc(host, Credential{
			Username: "admin",
			Password: "wrong",
		}),
		PlainHTTP: true,
	}
	if _, err := client.Login(context.Background(), host); err == nil {
		t.Error("Client.Login() error = nil, wantErr true")
	}
}
