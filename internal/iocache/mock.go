package iocache

import (
	"time"

	"github.com/signalvane/signalvane/internal/contract"
	"github.com/signalvane/signalvane/schema"
	"github.com/stretchr/testify/mock"
)

// MockCacheManager is a mock implementation of CacheManager for testing.
type MockCacheManager struct {
	mock.Mock
}

var _ contract.CacheManager = &MockCacheManager{} // Compile-time check

// GetFetchStore implements the CacheManager interface.
func (m *MockCacheManager) GetFetchStore() contract.CacheStore {
	ret := m.Called()
	store, _ := ret.Get(0).(contract.CacheStore)
	return store
}

// GetArchiveStore implements the CacheManager interface.
func (m *MockCacheManager) GetArchiveStore() contract.ArchiveStore {
	ret := m.Called()
	store, _ := ret.Get(0).(contract.ArchiveStore)
	return store
}

// MockCacheStore is a mock implementation of CacheStore for testing.
type MockCacheStore struct {
	mock.Mock
}

var _ contract.CacheStore = &MockCacheStore{} // Compile-time check

// Get implements the CacheStore interface.
func (m *MockCacheStore) Get(key string) ([]byte, int, int64, error) {
	args := m.Called(key)
	data, _ := args.Get(0).([]byte)
	return data, args.Int(1), args.Get(2).(int64), args.Error(3)
}

// Set implements the CacheStore interface.
func (m *MockCacheStore) Set(key string, data []byte, version int, ts int64) error {
	args := m.Called(key, data, version, ts)
	return args.Error(0)
}

// Close implements the CacheStore interface.
func (m *MockCacheStore) Close() error {
	args := m.Called()
	return args.Error(0)
}

// GetStatus implements the CacheStore interface.
func (m *MockCacheStore) GetStatus() (schema.CacheStatus, error) {
	args := m.Called()
	return args.Get(0).(schema.CacheStatus), args.Error(1)
}

// MockArchiveStore is a mock implementation of ArchiveStore for testing.
type MockArchiveStore struct {
	mock.Mock
}

var _ contract.ArchiveStore = &MockArchiveStore{} // Compile-time check

// BeginRun implements the ArchiveStore interface.
func (m *MockArchiveStore) BeginRun(startTime time.Time, configParams map[string]any) (int64, error) {
	args := m.Called(startTime, configParams)
	return args.Get(0).(int64), args.Error(1)
}

// EndRun implements the ArchiveStore interface.
func (m *MockArchiveStore) EndRun(runID int64, endTime time.Time, totalSignals, totalNarratives int) error {
	args := m.Called(runID, endTime, totalSignals, totalNarratives)
	return args.Error(0)
}

// RecordNarrativeScore implements the ArchiveStore interface.
func (m *MockArchiveStore) RecordNarrativeScore(runID int64, name string, score schema.NarrativeScore) error {
	args := m.Called(runID, name, score)
	return args.Error(0)
}

// GetStatus implements the ArchiveStore interface.
func (m *MockArchiveStore) GetStatus() (schema.ArchiveStatus, error) {
	args := m.Called()
	return args.Get(0).(schema.ArchiveStatus), args.Error(1)
}

// GetAllRuns implements the ArchiveStore interface.
func (m *MockArchiveStore) GetAllRuns() ([]schema.RefreshRunRecord, error) {
	args := m.Called()
	runs, _ := args.Get(0).([]schema.RefreshRunRecord)
	return runs, args.Error(1)
}

// GetAllNarrativeScores implements the ArchiveStore interface.
func (m *MockArchiveStore) GetAllNarrativeScores() ([]schema.NarrativeScoreRecord, error) {
	args := m.Called()
	scores, _ := args.Get(0).([]schema.NarrativeScoreRecord)
	return scores, args.Error(1)
}

// Close implements the ArchiveStore interface.
func (m *MockArchiveStore) Close() error {
	args := m.Called()
	return args.Error(0)
}
