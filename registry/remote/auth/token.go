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
	"encoding/base64"
	"encoding/json"
	"strings"
	"time"
)

const (
	gracePeriodSeconds       = 10
	defaultExpirationSeconds = 60
)

// tokenEntry represents a cached token with its expiration time.
type tokenEntry struct {
	// token is the actual authentication token
	token string
	// expiresAt is when the token expires
	expiresAt time.Time
}

// jwtClaims represents the standard claims in a JWT token.
// Only the fields needed for expiration handling are parsed.
type jwtClaims struct {
	// Exp is the expiration time (seconds since Unix epoch).
	Exp int64 `json:"exp"`
	// Iat is the issued at time (seconds since Unix epoch).
	Iat int64 `json:"iat,omitempty"`
}

// parseTokenExpiration attempts to extract the expiration time from a token.
// GhostDock issues JWT tokens carrying an `exp` claim. For tokens that are
// not JWTs, or JWTs without an expiration claim (such as personal access
// tokens without expiry), it returns a default expiration of 60 seconds from
// now.
func parseTokenExpiration(token string) time.Time {
	// JWT format: header.payload.signature
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		// Not a JWT token, return default expiration
		return time.Now().Add(defaultExpirationSeconds * time.Second)
	}

	// Decode the payload (second part)
	payload, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		return time.Now().Add(defaultExpirationSeconds * time.Second)
	}

	var claims jwtClaims
	if err := json.Unmarshal(payload, &claims); err != nil {
		return time.Now().Add(defaultExpirationSeconds * time.Second)
	}

	if claims.Exp > 0 {
		return time.Unix(claims.Exp, 0)
	}

	// No expiration claim, return default expiration
	return time.Now().Add(defaultExpirationSeconds * time.Second)
}

// isExpired checks if a token entry has expired.
// It includes a grace period to avoid using tokens that are about to expire.
func (te *tokenEntry) isExpired() bool {
	if te.expiresAt.IsZero() {
		// No expiration set, consider it never expires
		return false
	}
	return time.Now().Add(gracePeriodSeconds * time.Second).After(te.expiresAt)
}

// newTokenEntry creates a new token entry with the given token.
// It automatically extracts the expiration time from JWT tokens.
func newTokenEntry(token string) *tokenEntry {
	return &tokenEntry{
		token:     token,
		expiresAt: parseTokenExpiration(token),
	}
}
