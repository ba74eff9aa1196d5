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

package ghostdock

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"testing"

	"github.com/opencontainers/go-digest"
	ocispec "github.com/opencontainers/image-spec/specs-go/v1"

	"github.com/ghostdock/ghostdock-go/errdef"
	"github.com/ghostdock/ghostdock-go/registry/remote"
)

func TestFetchManifest(t *testing.T) {
	manifest := []byte(`{"layers":[]}`)
	manifestDesc := ocispec.Descriptor{
		MediaType: "application/vnd.docker.distribution.manifest.v2+json",
		Digest:    digest.FromBytes(manifest),
		Size:      int64(len(manifest)),
	}
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != "/v2/test/manifests/latest" {
			t.Errorf("unexpected access: %s %s", r.Method, r.URL)
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", manifestDesc.MediaType)
		w.Header().Set("Docker-Content-Digest", manifestDesc.Digest.String())
		w.Header().Set("Content-Length", strconv.Itoa(len(manifest)))
		w.Write(manifest)
	}))
	defer ts.Close()

	repo := newTestRepository(t, ts.URL, "test")
	ctx := context.Background()

	desc, content, err := FetchManifest(ctx, repo, "latest", DefaultFetchBytesOptions)
	if err != nil {
		t.Fatalf("FetchManifest() error = %v", err)
	}
	if desc.Digest != manifestDesc.Digest {
		t.Errorf("FetchManifest() desc = %v, want %v", desc, manifestDesc)
	}
	if !bytes.Equal(content, manifest) {
		t.Errorf("FetchManifest() content = %v, want %v", content, manifest)
	}
}

func TestFetchBlob(t *testing.T) {
	blob := []byte("hello world")
	blobDesc := ocispec.Descriptor{
		MediaType: "application/octet-stream",
		Digest:    digest.FromBytes(blob),
		Size:      int64(len(blob)),
	}
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := "/v2/test/blobs/" + blobDesc.Digest.String()
		if r.Method != http.MethodGet || r.URL.Path != path {
			t.Errorf("unexpected access: %s %s", r.Method, r.URL)
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", blobDesc.MediaType)
		w.Header().Set("Docker-Content-Digest", blobDesc.Digest.String())
		w.Header().Set("Content-Length", strconv.Itoa(len(blob)))
		w.Write(blob)
	}))
	defer ts.Close()

	repo := newTestRepository(t, ts.URL, "test")
	ctx := context.Background()

	desc, content, err := FetchBlob(ctx, repo, blobDesc.Digest.String(), DefaultFetchBytesOptions)
	if err != nil {
		t.Fatalf("FetchBlob() error = %v", err)
	}
	if desc.Digest != blobDesc.Digest {
		t.Errorf("FetchBlob() desc = %v, want %v", desc, blobDesc)
	}
	if !bytes.Equal(content, blob) {
		t.Errorf("FetchBlob() content = %v, want %v", content, blob)
	}
}

func TestFetchManifest_SizeLimitExceeded(t *testing.T) {
	manifest := []byte(`{"layers":[]}`)
	manifestDesc := ocispec.Descriptor{
		MediaType: "application/vnd.docker.distribution.manifest.v2+json",
		Digest:    digest.FromBytes(manifest),
		Size:      int64(len(manifest)),
	}
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", manifestDesc.MediaType)
		w.Header().Set("Docker-Content-Digest", manifestDesc.Digest.String())
		w.Header().Set("Content-Length", strconv.Itoa(len(manifest)))
		w.Write(manifest)
	}))
	defer ts.Close()

	repo := newTestRepository(t, ts.URL, "test")
	ctx := context.Background()

	opts := FetchBytesOptions{SizeLimit: int64(len(manifest)) - 1}
	if _, _, err := FetchManifest(ctx, repo, "latest", opts); !errors.Is(err, errdef.ErrSizeExceedsLimit) {
		t.Errorf("FetchManifest() error = %v, want %v", err, errdef.ErrSizeExceedsLimit)
	}
}

func newTestRepository(t *testing.T, serverURL, name string) *remote.Repository {
	t.Helper()
	u, err := url.Parse(serverURL)
	if err != nil {
		t.Fatalf("invalid test server URL: %v", err)
	}
	repo, err := remote.NewRepository(fmt.Sprintf("%s/%s", u.Host, name))
	if err != nil {
		t.Fatalf("NewRepository() error = %v", err)
	}
	repo.PlainHTTP = true
	repo.Client = http.DefaultClient
	return repo
}
