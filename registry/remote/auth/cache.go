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
	"sync"

	"github.com/ghostdock/ghostdock-go/errdef"
	"github.com/ghostdock/ghostdock-go/internal/syncutil"
)

// DefaultCache is the sharable cache used by DefaultClient.
var DefaultCache Cache = NewCache()

// Cache caches the tokens obtained from the remote registries, keyed by the
// registry host.
type Cache interface {
	// GetToken returns the cached token for the given registry.
	// It returns errdef.ErrNotFound if there is no valid token cached.
	GetToken(ctx context.Context, registry string) (string, error)

	// Set fetches the token using the given fetch function and caches it for
	// the given registry. Concurrent fetches for the same registry are
	// aggregated onto a single request.
	Set(ctx context.Context, registry string, fetch func(context.Context) (string, error)) (string, error)
}

// concurrentCache is a cache suitable for concurrent invocation.
// Cached tokens expire based on the `exp` claim of the JWT issued by the
// registry; expired entries behave as cache misses.
type concurrentCache struct {
	status    sync.Map // map[string]*syncutil.Once
	cacheLock sync.RWMutex
	cache     map[string]*tokenEntry
}

// NewCache creates a new token cache.
func NewCache() Cache {
	return &concurrentCache{
		cache: make(map[string]*tokenEntry),
	}
}

// GetToken returns the cached token for the given registry.
func (cc *concurrentCache) GetToken(ctx context.Context, registry string) (string, error) {
	cc.cacheLock.RLock()
	entry, ok := cc.cache[registry]
	cc.cacheLock.RUnlock()
	if !ok || entry.isExpired() {
		return "", errdef.ErrNotFound
	}
	return entry.token, nil
}

// Set fetches and caches the token for the given registry.
func (cc *concurrentCache) Set(ctx context.Context, registry string, fetch func(context.Context) (string, error)) (string, error) {
	statusValue, _ := cc.status.LoadOrStore(registry, syncutil.NewOnce())
	fetchOnce := statusValue.(*syncutil.Once)
	fetchedFirst, result, err := fetchOnce.Do(ctx, func() (any, error) {
		return fetch(ctx)
	})
	if fetchedFirst {
		cc.status.Delete(registry)
	}
	if err != nil {
		return "", err
	}
	token := result.(string)
	if !fetchedFirst {
		return token, nil
	}

	cc.cacheLock.Lock()
	cc.cache[registry] = newTokenEntry(token)
	cc.cacheLock.Unlock()

	return token, nil
}

// noCache is a cache that does not cache anything.
type noCache struct{}

func (noCache) GetToken(ctx context.Context, registry string) (string, error) {
	return "", errdef.ErrNotFound
}

func (noCache) Set(ctx context.Context, registry string, fetch func(context.Context) (string, error)) (string, error) {
	return fetch(ctx)
}
