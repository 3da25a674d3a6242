package core

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/signalvane/signalvane/internal/contract"
	"github.com/signalvane/signalvane/schema"
)

// legacyMarkerLayout is the naive ISO timestamp accepted for markers written by older releases.
const legacyMarkerLayout = "2006-01-02T15:04:05.999999"

// ShouldRefresh decides whether upstream signals must be fetched again.
// A forced check or a missing state always refreshes; otherwise the cache
// window must have fully elapsed since the last success.
func ShouldRefresh(state schema.RefreshState, now time.Time, force bool, window time.Duration) bool {
	if force || !state.Known {
		return true
	}
	return now.Sub(state.LastRefresh) >= window
}

// MinutesSince returns the minutes elapsed since the last success, clamped at zero.
// ok is false when no refresh has ever succeeded.
func MinutesSince(state schema.RefreshState, now time.Time) (minutes float64, ok bool) {
	if !state.Known {
		return 0, false
	}
	return max(now.Sub(state.LastRefresh).Minutes(), 0), true
}

// Coordinator owns the last refresh marker file.
type Coordinator struct {
	mu         sync.Mutex
	markerPath string
	now        func() time.Time
}

// NewCoordinator returns a Coordinator persisting its state at markerPath.
func NewCoordinator(markerPath string, now func() time.Time) *Coordinator {
	if now == nil {
		now = time.Now
	}
	return &Coordinator{markerPath: markerPath, now: now}
}

// Now returns the coordinator's clock reading.
func (c *Coordinator) Now() time.Time { return c.now() }

// State reads the persisted refresh state. A missing marker is a cold start.
// An unreadable timestamp is reported as a warning and treated the same way,
// which costs at most one extra refresh.
func (c *Coordinator) State() (schema.RefreshState, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state()
}

func (c *Coordinator) state() (schema.RefreshState, error) {
	data, err := os.ReadFile(c.markerPath)
	if errors.Is(err, fs.ErrNotExist) {
		return schema.RefreshState{}, nil
	}
	if err != nil {
		return schema.RefreshState{}, fmt.Errorf("failed to read refresh marker: %w", err)
	}

	last, err := parseMarker(strings.TrimSpace(string(data)))
	if err != nil {
		contract.LogWarn("Ignoring unreadable refresh marker", err)
		return schema.RefreshState{}, nil
	}
	return schema.RefreshState{LastRefresh: last, Known: true}, nil
}

func parseMarker(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, nil
	}
	t, err := time.ParseInLocation(legacyMarkerLayout, s, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid refresh marker %q", s)
	}
	return t, nil
}

// ShouldRefresh reports whether a refresh is due along with the state it was decided on.
func (c *Coordinator) ShouldRefresh(force bool, window time.Duration) (bool, schema.RefreshState, error) {
	state, err := c.State()
	if err != nil {
		return false, state, err
	}
	return ShouldRefresh(state, c.now(), force, window), state, nil
}

// RecordRefreshSuccess persists now as the last successful refresh.
// Callers must only invoke it once every pipeline step has succeeded.
func (c *Coordinator) RecordRefreshSuccess(now time.Time) (schema.RefreshState, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(c.markerPath), 0o755); err != nil {
		return schema.RefreshState{}, fmt.Errorf("failed to create marker directory: %w", err)
	}
	unlock, err := contract.LockFile(c.markerPath + ".lock")
	if err != nil {
		return schema.RefreshState{}, err
	}
	defer func() { _ = unlock() }()

	stamp := now.UTC()
	if err := contract.WriteFileAtomic(c.markerPath, []byte(stamp.Format(time.RFC3339Nano)+"\n"), 0o644); err != nil {
		return schema.RefreshState{}, fmt.Errorf("failed to record refresh: %w", err)
	}
	return schema.RefreshState{LastRefresh: stamp, Known: true}, nil
}

// MinutesSinceLastRefresh returns the age of the data in minutes.
// ok is false when no refresh has ever succeeded.
func (c *Coordinator) MinutesSinceLastRefresh() (minutes float64, ok bool, err error) {
	state, err := c.State()
	if err != nil {
		return 0, false, err
	}
	minutes, ok = MinutesSince(state, c.now())
	return minutes, ok, nil
}

// Health summarizes data freshness. Data is fresh when it is younger than freshWindow.
func (c *Coordinator) Health(freshWindow time.Duration, snapshots int) (schema.HealthReport, error) {
	state, err := c.State()
	if err != nil {
		return schema.HealthReport{}, err
	}
	now := c.now()
	report := schema.HealthReport{
		Status:    "healthy",
		Timestamp: now.UTC(),
		Snapshots: snapshots,
	}
	if minutes, ok := MinutesSince(state, now); ok {
		last := state.LastRefresh
		report.LastRefresh = &last
		report.DataAgeMinutes = &minutes
		report.DataFresh = minutes < freshWindow.Minutes()
	}
	return report, nil
}
