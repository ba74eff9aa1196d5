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

// Package ioutil provides verified content reading.
package ioutil

import (
	"errors"
	"fmt"
	"io"

	ocispec "github.com/opencontainers/image-spec/specs-go/v1"
)

// ErrMismatchedDigest is returned when the content read does not match the
// digest of its descriptor.
var ErrMismatchedDigest = errors.New("mismatched digest")

// ErrTrailingData is returned when the content read is longer than the size
// of its descriptor.
var ErrTrailingData = errors.New("trailing data")

// ReadAll safely reads the content described by the descriptor.
// The read content is verified against the size and the digest.
func ReadAll(r io.Reader, desc ocispec.Descriptor) ([]byte, error) {
	if desc.Size < 0 {
		return nil, fmt.Errorf("invalid content size %d", desc.Size)
	}

	// verify while reading
	verifier := desc.Digest.Verifier()
	r = io.TeeReader(r, verifier)
	buf := make([]byte, desc.Size)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, fmt.Errorf("read failed: %w", err)
	}
	if !verifier.Verified() {
		return nil, ErrMismatchedDigest
	}

	// ensure EOF
	var peek [1]byte
	if _, err := io.ReadFull(r, peek[:]); err != io.EOF {
		return nil, ErrTrailingData
	}

	return buf, nil
}
