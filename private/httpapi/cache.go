// Copyright 2026 Anapaya Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//   http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package httpapi

import (
	"context"
	"strconv"
	"time"

	cache "github.com/patrickmn/go-cache"

	"github.com/rpki-rp/validator/private/storage/history"
)

var _ HistoryStore = (*CachedHistory)(nil)

// CachedHistory caches the results of a HistoryStore per requested number of
// runs.
type CachedHistory struct {
	store HistoryStore
	cache *cache.Cache
}

// NewCachedHistory caches the results of store for ttl.
func NewCachedHistory(store HistoryStore, ttl time.Duration) *CachedHistory {
	return &CachedHistory{
		store: store,
		cache: cache.New(ttl, 2*ttl),
	}
}

// Recent returns the cached result for n if present, otherwise it queries the
// underlying store. Errors are not cached.
func (c *CachedHistory) Recent(ctx context.Context, n int) ([]history.Run, error) {
	key := strconv.Itoa(n)
	if runs, ok := c.cache.Get(key); ok {
		return runs.([]history.Run), nil
	}
	runs, err := c.store.Recent(ctx, n)
	if err != nil {
		return nil, err
	}
	c.cache.Set(key, runs, cache.DefaultExpiration)
	return runs, nil
}

// Flush drops all cached results. It must be called after a run was stored.
func (c *CachedHistory) Flush() {
	c.cache.Flush()
}
