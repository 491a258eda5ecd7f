// Package iocache is for caching extractions and tracking extraction runs.
package iocache

import (
	"sync"

	"github.com/benmcmorran/anamericanday/internal/contract"
)

// CacheStoreManager manages the extraction cache and the run store.
type CacheStoreManager struct {
	sync.RWMutex // Protects the store pointers during initialization
	extraction   contract.CacheStore
	runs         contract.RunStore
}

var _ contract.CacheManager = &CacheStoreManager{} // Compile-time check

// GetExtractionStore returns the extraction CacheStore.
func (mgr *CacheStoreManager) GetExtractionStore() contract.CacheStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.extraction
}

// GetRunStore returns the RunStore.
func (mgr *CacheStoreManager) GetRunStore() contract.RunStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.runs
}
