package iocache

import (
	"bytes"
	"testing"
	"time"

	"github.com/signalvane/signalvane/schema"
	"github.com/stretchr/testify/assert"
)

func TestPrintCacheStatus(t *testing.T) {
	var buf bytes.Buffer
	PrintCacheStatus(&buf, schema.CacheStatus{Backend: "none"})
	assert.Equal(t, "Cache Backend: none\nConnected: false\n", buf.String())

	buf.Reset()
	ts := time.Date(2026, 3, 1, 9, 0, 0, 0, time.Local)
	PrintCacheStatus(&buf, schema.CacheStatus{Backend: "sqlite", Connected: true, TotalEntries: 2, LastEntryTime: ts, OldestEntryTime: ts, TableSizeBytes: 4096})
	assert.Contains(t, buf.String(), "Total Entries: 2")
	assert.Contains(t, buf.String(), "Last Entry: 2026-03-01 09:00:00")
	assert.Contains(t, buf.String(), "Table Size: 4096 bytes")
}

func TestPrintArchiveStatus(t *testing.T) {
	var buf bytes.Buffer
	PrintArchiveStatus(&buf, schema.ArchiveStatus{
		Backend:         "sqlite",
		Connected:       true,
		TotalRuns:       3,
		LastRunID:       3,
		TotalNarratives: 9,
		TableSizes:      map[string]int64{narrativeScoresTable: 9, refreshRunsTable: 3},
	})
	out := buf.String()
	assert.Contains(t, out, "Total Runs: 3")
	assert.Contains(t, out, "Total Narratives Archived: 9")
	// Tables are listed in name order
	assert.Less(t, bytes.Index(buf.Bytes(), []byte(narrativeScoresTable)), bytes.Index(buf.Bytes(), []byte(refreshRunsTable)))
}
