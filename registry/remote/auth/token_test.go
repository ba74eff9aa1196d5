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
	"fmt"
	"testing"
	"time"
)

// makeJWT builds an unsigned JWT carrying the given claims payload.
func makeJWT(t *testing.T, payload string) string {
	t.Helper()
	header := base64.RawURLEncoding.EncodeToString([]byte(`{"alg":"none","typ":"JWT"}`))
	body := base64.RawURLEncoding.EncodeToString([]byte(payload))
	return fmt.Sprintf("%s.%s.sig", header, body)
}

func TestParseTokenExpiration_JWT(t *testing.T) {
	exp := time.Now().Add(time.Hour).Unix()
	token := makeJWT(t, fmt.Sprintf(`{"exp":%d,"iat":%d}`, exp, time.Now().Unix()))

	got := parseTokenExpiration(token)
	if got.Unix() != exp {
		t.Errorf("parseTokenExpiration() = %v, want %v", got.Unix(), exp)
	}
}

func TestParseTokenExpiration_NotJWT(t *testing.T) {
	before := time.Now()
	got := parseTokenExpiration("opaque-token")
	after := time.Now()

	min := before.Add(defaultExpirationSeconds * time.Second)
	max := after.Add(defaultExpirationSeconds * time.Second)
	if got.Before(min) || got.After(max) {
		t.Errorf("parseTokenExpiration() = %v, want default expiration around %v", got, min)
	}
}

func TestParseTokenExpiration_NoExpClaim(t *testing.T) {
	token := makeJWT(t, `{"sub":"admin"}`)

	got := parseTokenExpiration(token)
	if remaining := time.Until(got); remaining > defaultExpirationSeconds*time.Second || remaining <= 0 {
		t.Errorf("parseTokenExpiration() = %v, want default expiration", got)
	}
}

func TestTokenEntry_IsExpired(t *testing.T) {
	tests := []struct {
		name      string
		expiresAt time.Time
		want      bool
	}{
		{
			name:      "valid",
			expiresAt: time.Now().Add(time.Hour),
			want:      false,
		},
		{
			name:      "expired",
			expiresAt: time.Now().Add(-time.Hour),
			want:      true,
		},
		{
			name:      "within grace period",
			expiresAt: time.Now().Add(gracePeriodSeconds / 2 * time.Second),
			want:      true,
		},
		{
			name: "no expiration",
			want: false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entry := &tokenEntry{token: "test", expiresAt: tt.expiresAt}
			if got := entry.isExpired(); got != tt.want {
				t.Errorf("tokenEntry.isExpired() = %v, want %v", got, tt.want)
			}
		})
	}
}
