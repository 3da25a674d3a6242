// Package iocache is for caching upstream fetches and archiving refresh runs.
package iocache

import (
	"sync"

	"github.com/signalvane/signalvane/internal/contract"
)

// CacheStoreManager manages the fetch cache and the narrative archive.
type CacheStoreManager struct {
	sync.RWMutex // Protects the store pointers during initialization
	fetch        contract.CacheStore
	archive      contract.ArchiveStore
}

var _ contract.CacheManager = &CacheStoreManager{} // Compile-time check

// GetFetchStore returns the fetch CacheStore.
func (mgr *CacheStoreManager) GetFetchStore() contract.CacheStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.fetch
}

// GetArchiveStore returns the narrative ArchiveStore.
func (mgr *CacheStoreManager) GetArchiveStore() contract.ArchiveStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.archive
}
