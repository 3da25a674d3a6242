// Package history persists the rolling log of narrative snapshots.
package history

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/signalvane/signalvane/internal/contract"
	"github.com/signalvane/signalvane/schema"
)

// MaxSnapshots is the number of snapshots kept in the log.
const MaxSnapshots = contract.MaxRetention

// ErrCorrupt is returned when the history file exists but cannot be decoded.
var ErrCorrupt = errors.New("history file is corrupt")

// document is the on-disk layout of the history file.
type document struct {
	Snapshots []schema.Snapshot `json:"snapshots"`
}

// Store is a file-backed, bounded log of snapshots, oldest first.
type Store struct {
	mu        sync.Mutex
	path      string
	retention int
	now       func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the clock used to stamp appended snapshots.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithRetention overrides how many snapshots are kept.
// Values below 1 are ignored and values above MaxSnapshots are clamped.
func WithRetention(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.retention = min(n, MaxSnapshots)
		}
	}
}

// NewStore returns a Store backed by the file at path.
func NewStore(path string, opts ...Option) *Store {
	s := &Store{path: path, retention: MaxSnapshots, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Path returns the backing file location.
func (s *Store) Path() string { return s.path }

// Retention returns the maximum number of snapshots kept.
func (s *Store) Retention() int { return s.retention }

// Load returns every stored snapshot, oldest first.
// A missing file yields an empty log.
func (s *Store) Load() ([]schema.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

func (s *Store) load() ([]schema.Snapshot, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return []schema.Snapshot{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read history %s: %w", s.path, err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return []schema.Snapshot{}, nil
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorrupt, s.path, err)
	}
	if doc.Snapshots == nil {
		return []schema.Snapshot{}, nil
	}
	return doc.Snapshots, nil
}

// Append stamps a new snapshot with the current time, appends it, and trims the
// log to the retention window before rewriting the file.
func (s *Store) Append(entities []schema.Entity, metrics map[string]any) (schema.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return schema.Snapshot{}, fmt.Errorf("failed to create history directory: %w", err)
	}
	unlock, err := contract.LockFile(s.path + ".lock")
	if err != nil {
		return schema.Snapshot{}, err
	}
	defer func() { _ = unlock() }()

	snaps, err := s.load()
	if err != nil {
		return schema.Snapshot{}, err
	}

	snap := schema.Snapshot{
		Timestamp: s.now().UTC(),
		Entities:  append([]schema.Entity{}, entities...),
		Metrics:   make(map[string]any, len(metrics)),
	}
	for k, v := range metrics {
		snap.Metrics[k] = v
	}

	snaps = append(snaps, snap)
	if len(snaps) > s.retention {
		snaps = snaps[len(snaps)-s.retention:]
	}

	if err := s.write(snaps); err != nil {
		return schema.Snapshot{}, err
	}
	return snap, nil
}

func (s *Store) write(snaps []schema.Snapshot) error {
	data, err := Encode(snaps)
	if err != nil {
		return err
	}
	if err := contract.WriteFileAtomic(s.path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write history: %w", err)
	}
	return nil
}

// Latest returns the newest snapshot. ok is false when the log is empty.
func (s *Store) Latest() (snap schema.Snapshot, ok bool, err error) {
	snaps, err := s.Load()
	if err != nil || len(snaps) == 0 {
		return schema.Snapshot{}, false, err
	}
	return snaps[len(snaps)-1], true, nil
}

// EntityHistory returns the observations of name across the stored log.
func (s *Store) EntityHistory(name string) ([]schema.Point, error) {
	snaps, err := s.Load()
	if err != nil {
		return nil, err
	}
	return EntityHistory(snaps, name), nil
}

// EntityHistory projects snaps onto the points recorded for name, in snapshot
// order. Snapshots without the name contribute nothing; if a snapshot lists the
// name more than once the first entry wins.
func EntityHistory(snaps []schema.Snapshot, name string) []schema.Point {
	points := []schema.Point{}
	for _, snap := range snaps {
		for _, e := range snap.Entities {
			if e.Name == name {
				points = append(points, schema.Point{Timestamp: snap.Timestamp, Score: e.Score})
				break
			}
		}
	}
	return points
}

// Encode serializes snaps in the history file layout.
func Encode(snaps []schema.Snapshot) ([]byte, error) {
	if snaps == nil {
		snaps = []schema.Snapshot{}
	}
	data, err := json.MarshalIndent(document{Snapshots: snaps}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode history: %w", err)
	}
	return append(data, '\n'), nil
}

// Decode parses data written by Encode.
func Decode(data []byte) ([]schema.Snapshot, error) {
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	if doc.Snapshots == nil {
		return []schema.Snapshot{}, nil
	}
	return doc.Snapshots, nil
}
