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

package mgmt

import (
	"time"

	"github.com/gofrs/uuid"
)

// RepositoryInfo is the detailed repository record returned by the
// management API.
type RepositoryInfo struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Namespace   string    `json:"namespace,omitempty"`
	Description string    `json:"description,omitempty"`
	IsPublic    bool      `json:"is_public"`
	OwnerID     uuid.UUID `json:"owner_id"`
	StarCount   int       `json:"star_count"`
	PullCount   int64     `json:"pull_count"`
	PushCount   int64     `json:"push_count"`

	// Size is the total size in bytes of the blobs referenced by the
	// repository.
	Size      int64     `json:"size"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// User is a registry user account.
type User struct {
	ID        uuid.UUID  `json:"id"`
	Username  string     `json:"username"`
	Email     string     `json:"email"`
	FullName  string     `json:"full_name,omitempty"`
	IsAdmin   bool       `json:"is_admin"`
	IsActive  bool       `json:"is_active"`
	CreatedAt time.Time  `json:"created_at"`
	LastLogin *time.Time `json:"last_login,omitempty"`
}

// UserList is a single page of registry users.
type UserList struct {
	Users []User `json:"users"`
	Total int64  `json:"total"`
	Page  int    `json:"page"`
	Limit int    `json:"limit"`
}

// TokenRequest describes a personal access token to be created.
type TokenRequest struct {
	// Name is a human readable label for the token.
	Name string `json:"name"`

	// Permissions lists the actions the token grants, e.g. "pull", "push".
	Permissions []string `json:"permissions"`

	// ExpiresAt is the optional expiry time of the token.
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

// Token is a personal access token.
// The Token field carries the secret and is only populated in the response
// of CreateToken; it cannot be retrieved afterwards.
type Token struct {
	ID          uuid.UUID  `json:"id"`
	Name        string     `json:"name"`
	Token       string     `json:"token,omitempty"`
	Permissions []string   `json:"permissions"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// Health is the system health report of the registry.
type Health struct {
	// Status is "healthy" if all backing services are healthy.
	Status  string `json:"status"`
	Version string `json:"version"`

	// Uptime is the number of seconds the registry has been running.
	Uptime int64 `json:"uptime"`

	// Services maps a backing service name, such as "database" or "storage",
	// to its health status.
	Services map[string]string `json:"services"`
}

// Metrics is the system metrics report of the registry.
type Metrics struct {
	Registry RegistryMetrics `json:"registry"`
	Storage  StorageMetrics  `json:"storage"`
}

// RegistryMetrics carries usage counters of the registry.
type RegistryMetrics struct {
	Repositories int64 `json:"repositories"`
	Images       int64 `json:"images"`
	Pulls        int64 `json:"pulls"`
	Pushes       int64 `json:"pushes"`
}

// StorageMetrics carries storage usage of the registry.
type StorageMetrics struct {
	UsedBytes int64 `json:"used_bytes"`
}
