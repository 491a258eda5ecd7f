package core

import (
	"bytes"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/benmcmorran/anamericanday/internal/contract"
	"github.com/benmcmorran/anamericanday/internal/dataload"
	"github.com/benmcmorran/anamericanday/schema"
)

// currentCacheVersion defines the version of the cache schema
const currentCacheVersion = 1

// cacheTTL is how long a cached extraction stays fresh.
const cacheTTL = 7 * 24 * time.Hour

// cachedExtract extracts the dataset of a timescale, consulting the
// extraction cache first when one is configured.
func cachedExtract(cfg *contract.Config, ts schema.Timescale, mgr contract.CacheManager) (*schema.Extraction, bool, error) {
	path := cfg.DatasetPath(ts)
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, false, fmt.Errorf("reading %s dataset: %w", ts, err)
	}
	opts := ExtractOptions{Timescale: ts, Reference: cfg.Reference, Missing: cfg.Missing}

	var store contract.CacheStore
	if mgr != nil {
		store = mgr.GetExtractionStore()
	}
	if store == nil {
		// Fallback to direct computation
		ex, err := extractContent(content, path, opts)
		return ex, false, err
	}

	key := generateCacheKey(opts, content)

	// Check for cache hit
	if result := checkCacheHit(store, key); result != nil {
		return result, true, nil
	}

	// Cache miss: compute and store
	ex, err := extractContent(content, path, opts)
	if err != nil {
		return nil, false, err
	}
	if data, err := json.Marshal(ex); err == nil {
		if err := store.Set(key, data, currentCacheVersion, time.Now().Unix()); err != nil {
			contract.LogWarn("Failed to cache extraction", err)
		}
	}
	return ex, false, nil
}

// extractContent parses CSV content and extracts it.
func extractContent(content []byte, path string, opts ExtractOptions) (*schema.Extraction, error) {
	table, err := dataload.LoadCSV(bytes.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	mapper, err := MapperFor(opts.Timescale)
	if err != nil {
		return nil, err
	}
	return Extract(table, mapper, opts)
}

// checkCacheHit attempts to retrieve and validate a cached result
func checkCacheHit(store contract.CacheStore, key string) *schema.Extraction {
	data, version, ts, err := store.Get(key)
	if err != nil {
		return nil // Cache miss
	}

	// Validate version and staleness
	if version != currentCacheVersion || time.Since(time.Unix(ts, 0)) > cacheTTL {
		return nil
	}
	var result schema.Extraction
	if err := json.Unmarshal(data, &result); err != nil {
		return nil
	}
	return &result
}

// generateCacheKey creates a unique key from the extraction options and the
// dataset bytes, so an edited file never hits a stale entry.
func generateCacheKey(opts ExtractOptions, content []byte) string {
	contentHash := sha256.Sum256(content)
	key := fmt.Sprintf("%s:%s:%s:%x", opts.Timescale, opts.Reference, opts.Missing, contentHash)
	return fmt.Sprintf("%x", sha256.Sum256([]byte(key)))
}
