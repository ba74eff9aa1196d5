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

package registry

import (
	"context"
	"io"

	ocispec "github.com/opencontainers/image-spec/specs-go/v1"
)

// Resolver resolves a tag or digest reference to a content descriptor
// without downloading the content.
type Resolver interface {
	// Resolve resolves a reference to a descriptor.
	Resolve(ctx context.Context, reference string) (ocispec.Descriptor, error)
}

// ReferenceFetcher fetches content identified by a tag or digest reference.
type ReferenceFetcher interface {
	// FetchReference fetches the content identified by the reference along
	// with its descriptor.
	FetchReference(ctx context.Context, reference string) (ocispec.Descriptor, io.ReadCloser, error)
}

// TagLister lists tags by the tag service.
type TagLister interface {
	// Tags lists the tags available in the repository.
	// Since the returned tag list may be paginated by the underlying
	// implementation, a function should be passed in to process the paginated
	// tag list.
	// `last` is the 'last' parameter when invoking the tags API.
	// If NOT "", the entries in the response start after the tag specified by
	// `last`. Otherwise, the response starts from the top of the tag list.
	// Note: the last argument is only used on the first call of the tags API.
	// Following pages are determined by the "Link" header of the response.
	Tags(ctx context.Context, last string, fn func(tags []string) error) error
}

// BlobStore is a CAS with the ability to check for the existence of, fetch,
// and delete blobs by digest.
type BlobStore interface {
	Resolver
	ReferenceFetcher

	// Exists returns true if the content identified by the reference exists.
	Exists(ctx context.Context, reference string) (bool, error)

	// Delete removes the content identified by the reference.
	Delete(ctx context.Context, reference string) error
}

// ManifestStore accesses manifests by tag or digest.
type ManifestStore interface {
	BlobStore
}

// Repository is a collection of manifests, blobs, and tags.
type Repository interface {
	Resolver
	ReferenceFetcher
	TagLister

	// Manifests provides access to the manifest part of the repository.
	Manifests() ManifestStore

	// Blobs provides access to the blob part of the repository.
	Blobs() BlobStore
}

// Tags lists the tags available in the repository.
// This function returns tags starting from the top of the list.
func Tags(ctx context.Context, repo TagLister) ([]string, error) {
	var res []string
	if err := repo.Tags(ctx, "", func(tags []string) error {
		res = append(res, tags...)
		return nil
	}); err != nil {
		return nil, err
	}
	return res, nil
}
