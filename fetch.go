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

// Package ghostdock provides high level operations against a GhostDock
// container registry.
//
// The lower level building blocks live in the registry, registry/remote,
// and mgmt packages.
package ghostdock

import (
	"context"
	"fmt"
	"io"

	ocispec "github.com/opencontainers/image-spec/specs-go/v1"

	"github.com/ghostdock/ghostdock-go/errdef"
	"github.com/ghostdock/ghostdock-go/internal/ioutil"
	"github.com/ghostdock/ghostdock-go/registry"
)

// defaultSizeLimit defines the default size limit for fetching content.
const defaultSizeLimit = 1 << 22 // 4 MiB

// DefaultFetchBytesOptions provides the default FetchBytesOptions.
var DefaultFetchBytesOptions = FetchBytesOptions{
	SizeLimit: defaultSizeLimit,
}

// FetchBytesOptions contains parameters for FetchManifest and FetchBlob.
type FetchBytesOptions struct {
	// SizeLimit limits the max size of the fetched content.
	// If less than or equal to zero, the default (currently 4 MiB) is used.
	SizeLimit int64
}

// FetchManifest fetches the manifest identified by the reference from the
// repository. The fetched content is verified against the size and the
// digest of the returned descriptor.
func FetchManifest(ctx context.Context, repo registry.Repository, reference string, opts FetchBytesOptions) (ocispec.Descriptor, []byte, error) {
	return fetchBytes(ctx, repo.Manifests(), reference, opts.SizeLimit)
}

// FetchBlob fetches the blob identified by the reference from the
// repository. The fetched content is verified against the size and the
// digest of the returned descriptor.
func FetchBlob(ctx context.Context, repo registry.Repository, reference string, opts FetchBytesOptions) (ocispec.Descriptor, []byte, error) {
	return fetchBytes(ctx, repo.Blobs(), reference, opts.SizeLimit)
}

// fetchBytes fetches the content identified by the reference and reads it
// into memory, enforcing the size limit.
func fetchBytes(ctx context.Context, fetcher registry.ReferenceFetcher, reference string, limit int64) (ocispec.Descriptor, []byte, error) {
	if limit <= 0 {
		limit = defaultSizeLimit
	}
	desc, rc, err := fetcher.FetchReference(ctx, reference)
	if err != nil {
		return ocispec.Descriptor{}, nil, err
	}
	defer rc.Close()

	if desc.Size > limit {
		return ocispec.Descriptor{}, nil, fmt.Errorf(
			"content size %v exceeds max size limit %v: %w",
			desc.Size, limit, errdef.ErrSizeExceedsLimit)
	}
	content, err := ioutil.ReadAll(io.LimitReader(rc, limit), desc)
	if err != nil {
		return ocispec.Descriptor{}, nil, err
	}
	return desc, content, nil
}
