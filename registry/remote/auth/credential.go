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

import "context"

// Credential contains authentication credentials used to access remote
// registries.
type Credential struct {
	// Username is the name of the user for the remote registry.
	Username string

	// Password is the secret associated with the username.
	Password string

	// AccessToken is a bearer token to be sent to the registry directly,
	// such as a GhostDock personal access token. If set, username and
	// password are not used to obtain a token.
	AccessToken string
}

// EmptyCredential represents an empty credential.
var EmptyCredential Credential

// CredentialFunc represents a function that resolves the credential for the
// given registry (i.e. host:port).
//
// EmptyCredential is a valid return value and should not be considered as
// an error.
type CredentialFunc func(ctx context.Context, hostport string) (Credential, error)

// StaticCredentialFunc specifies a static credential for the given host.
func StaticCredentialFunc(registry string, cred Credential) CredentialFunc {
	return func(_ context.Context, hostport string) (Credential, error) {
		if hostport == registry {
			return cred, nil
		}
		return EmptyCredential, nil
	}
}
