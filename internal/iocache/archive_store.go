package iocache

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/signalvane/signalvane/internal/contract"
	"github.com/signalvane/signalvane/schema"
)

// Table names for the narrative archive.
const (
	refreshRunsTable     = "signalvane_refresh_runs"
	narrativeScoresTable = "signalvane_narrative_scores"
)

// ArchiveStoreImpl implements the ArchiveStore interface.
type ArchiveStoreImpl struct {
	db      *sql.DB
	backend schema.DatabaseBackend
}

var _ contract.ArchiveStore = &ArchiveStoreImpl{} // Compile-time check

// NewArchiveStore creates a new ArchiveStore with the specified backend.
func NewArchiveStore(backend schema.DatabaseBackend, connStr string) (contract.ArchiveStore, error) {
	if backend == schema.NoneBackend {
		// No-op store for disabled archiving
		return &ArchiveStoreImpl{backend: backend}, nil
	}

	db, err := openDB(backend, connStr, GetArchiveDBFilePath())
	if err != nil {
		return nil, err
	}
	if err := createArchiveTables(db, backend); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create archive tables: %w", err)
	}
	return &ArchiveStoreImpl{db: db, backend: backend}, nil
}

// createArchiveTables creates the archive tables when they do not exist yet.
func createArchiveTables(db *sql.DB, backend schema.DatabaseBackend) error {
	tables := []struct {
		name  string
		query string
	}{
		{refreshRunsTable, getCreateRefreshRunsQuery(backend)},
		{narrativeScoresTable, getCreateNarrativeScoresQuery(backend)},
	}
	for _, table := range tables {
		if _, err := db.Exec(table.query); err != nil {
			return fmt.Errorf("failed to create table %s: %w", table.name, err)
		}
	}
	return nil
}

// getCreateRefreshRunsQuery returns the CREATE TABLE query for signalvane_refresh_runs.
func getCreateRefreshRunsQuery(backend schema.DatabaseBackend) string {
	quotedTableName := quoteTableName(refreshRunsTable, backend)
	switch backend {
	case schema.MySQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id BIGINT AUTO_INCREMENT PRIMARY KEY,
				start_time DATETIME(6) NOT NULL,
				end_time DATETIME(6),
				run_duration_ms INT,
				total_signals INT NOT NULL DEFAULT 0,
				total_narratives INT NOT NULL DEFAULT 0,
				config_params TEXT
			);
		`, quotedTableName)

	case schema.PostgreSQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id BIGSERIAL PRIMARY KEY,
				start_time TIMESTAMPTZ NOT NULL,
				end_time TIMESTAMPTZ,
				run_duration_ms INT,
				total_signals INT NOT NULL DEFAULT 0,
				total_narratives INT NOT NULL DEFAULT 0,
				config_params TEXT
			);
		`, quotedTableName)

	default: // SQLite
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id INTEGER PRIMARY KEY AUTOINCREMENT,
				start_time TEXT NOT NULL,
				end_time TEXT,
				run_duration_ms INTEGER,
				total_signals INTEGER NOT NULL DEFAULT 0,
				total_narratives INTEGER NOT NULL DEFAULT 0,
				config_params TEXT
			);
		`, quotedTableName)
	}
}

// getCreateNarrativeScoresQuery returns the CREATE TABLE query for signalvane_narrative_scores.
func getCreateNarrativeScoresQuery(backend schema.DatabaseBackend) string {
	quotedTableName := quoteTableName(narrativeScoresTable, backend)
	switch backend {
	case schema.MySQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id BIGINT NOT NULL,
				narrative_name VARCHAR(255) NOT NULL,
				observed_at DATETIME(6) NOT NULL,
				novelty_score DOUBLE NOT NULL,
				trend VARCHAR(16) NOT NULL,
				sentiment VARCHAR(16),
				explanation TEXT,
				PRIMARY KEY (run_id, narrative_name)
			);
		`, quotedTableName)

	case schema.PostgreSQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id BIGINT NOT NULL,
				narrative_name TEXT NOT NULL,
				observed_at TIMESTAMPTZ NOT NULL,
				novelty_score DOUBLE PRECISION NOT NULL,
				trend TEXT NOT NULL,
				sentiment TEXT,
				explanation TEXT,
				PRIMARY KEY (run_id, narrative_name)
			);
		`, quotedTableName)

	default: // SQLite
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id INTEGER NOT NULL,
				narrative_name TEXT NOT NULL,
				observed_at TEXT NOT NULL,
				novelty_score REAL NOT NULL,
				trend TEXT NOT NULL,
				sentiment TEXT,
				explanation TEXT,
				PRIMARY KEY (run_id, narrative_name)
			);
		`, quotedTableName)
	}
}

// BeginRun creates a new refresh run and returns its unique ID.
func (as *ArchiveStoreImpl) BeginRun(startTime time.Time, configParams map[string]any) (int64, error) {
	if as.backend == schema.NoneBackend || as.db == nil {
		return 0, nil
	}

	configJSON, err := json.Marshal(configParams)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal config params: %w", err)
	}

	quotedTableName := quoteTableName(refreshRunsTable, as.backend)

	var runID int64
	switch as.backend {
	case schema.PostgreSQLBackend:
		query := fmt.Sprintf(`INSERT INTO %s (start_time, config_params) VALUES ($1, $2) RETURNING run_id`, quotedTableName)
		err = as.db.QueryRow(query, formatTime(startTime, as.backend), string(configJSON)).Scan(&runID)
	default: // SQLite and MySQL
		query := fmt.Sprintf(`INSERT INTO %s (start_time, config_params) VALUES (?, ?)`, quotedTableName)
		var result sql.Result
		result, err = as.db.Exec(query, formatTime(startTime, as.backend), string(configJSON))
		if err == nil {
			runID, err = result.LastInsertId()
		}
	}
	if err != nil {
		return 0, fmt.Errorf("failed to insert refresh run: %w", err)
	}
	return runID, nil
}

// EndRun updates the refresh run with completion data.
func (as *ArchiveStoreImpl) EndRun(runID int64, endTime time.Time, totalSignals, totalNarratives int) error {
	if as.backend == schema.NoneBackend || as.db == nil {
		return nil
	}

	quotedTableName := quoteTableName(refreshRunsTable, as.backend)
	query := fmt.Sprintf(`SELECT start_time FROM %s WHERE run_id = %s`, quotedTableName, placeholder(as.backend, 1))
	startTime, err := as.scanTime(as.db.QueryRow(query, runID))
	if err != nil {
		return fmt.Errorf("failed to get start_time for run %d: %w", runID, err)
	}

	durationMs := endTime.Sub(startTime).Milliseconds()

	update := fmt.Sprintf(`UPDATE %s SET end_time = %s, run_duration_ms = %s, total_signals = %s, total_narratives = %s WHERE run_id = %s`,
		quotedTableName,
		placeholder(as.backend, 1), placeholder(as.backend, 2), placeholder(as.backend, 3),
		placeholder(as.backend, 4), placeholder(as.backend, 5))
	if _, err := as.db.Exec(update, formatTime(endTime, as.backend), durationMs, totalSignals, totalNarratives, runID); err != nil {
		return fmt.Errorf("failed to update refresh run: %w", err)
	}
	return nil
}

// RecordNarrativeScore stores one narrative observation for a run.
func (as *ArchiveStoreImpl) RecordNarrativeScore(runID int64, name string, score schema.NarrativeScore) error {
	if as.backend == schema.NoneBackend || as.db == nil {
		return nil
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (run_id, narrative_name, observed_at, novelty_score, trend, sentiment, explanation)
		VALUES (%s, %s, %s, %s, %s, %s, %s)
	`, quoteTableName(narrativeScoresTable, as.backend),
		placeholder(as.backend, 1), placeholder(as.backend, 2), placeholder(as.backend, 3), placeholder(as.backend, 4),
		placeholder(as.backend, 5), placeholder(as.backend, 6), placeholder(as.backend, 7))

	trend := score.Trend
	if trend == "" {
		trend = schema.TrendNew
	}
	args := []any{
		runID, name, formatTime(score.ObservedAt, as.backend), score.NoveltyScore, string(trend),
		nullString(string(score.Sentiment)), nullString(score.Explanation),
	}
	if _, err := as.db.Exec(query, args...); err != nil {
		return fmt.Errorf("failed to insert narrative score: %w", err)
	}
	return nil
}

// Close closes the underlying connection.
func (as *ArchiveStoreImpl) Close() error {
	if as.db != nil {
		return as.db.Close()
	}
	return nil
}

// GetStatus returns status information about the archive store.
func (as *ArchiveStoreImpl) GetStatus() (schema.ArchiveStatus, error) {
	status := schema.ArchiveStatus{
		Backend:    string(as.backend),
		Connected:  as.db != nil,
		TableSizes: make(map[string]int64),
	}
	if as.backend == schema.NoneBackend || as.db == nil {
		return status, nil
	}

	runsTable := quoteTableName(refreshRunsTable, as.backend)
	if err := as.db.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %s", runsTable)).Scan(&status.TotalRuns); err != nil {
		return status, fmt.Errorf("failed to get total runs: %w", err)
	}

	if status.TotalRuns > 0 {
		lastRunQuery := fmt.Sprintf("SELECT run_id, start_time FROM %s ORDER BY run_id DESC LIMIT 1", runsTable)
		var err error
		if status.LastRunID, status.LastRunTime, err = as.scanIDAndTime(as.db.QueryRow(lastRunQuery)); err != nil {
			return status, fmt.Errorf("failed to get last run info: %w", err)
		}

		oldestRunQuery := fmt.Sprintf("SELECT run_id, start_time FROM %s ORDER BY run_id ASC LIMIT 1", runsTable)
		if _, status.OldestRunTime, err = as.scanIDAndTime(as.db.QueryRow(oldestRunQuery)); err != nil {
			return status, fmt.Errorf("failed to get oldest run time: %w", err)
		}

		narrativesQuery := fmt.Sprintf("SELECT COALESCE(SUM(total_narratives), 0) FROM %s", runsTable)
		if err := as.db.QueryRow(narrativesQuery).Scan(&status.TotalNarratives); err != nil {
			return status, fmt.Errorf("failed to get total narratives: %w", err)
		}
	}

	for _, table := range []string{refreshRunsTable, narrativeScoresTable} {
		var count int64
		countQuery := fmt.Sprintf("SELECT COUNT(*) FROM %s", quoteTableName(table, as.backend))
		if err := as.db.QueryRow(countQuery).Scan(&count); err != nil {
			return status, fmt.Errorf("failed to get count for table %s: %w", table, err)
		}
		status.TableSizes[table] = count
	}

	return status, nil
}

// GetAllRuns retrieves all refresh runs from the store.
func (as *ArchiveStoreImpl) GetAllRuns() ([]schema.RefreshRunRecord, error) {
	if as.backend == schema.NoneBackend || as.db == nil {
		return nil, nil
	}

	query := fmt.Sprintf("SELECT run_id, start_time, end_time, run_duration_ms, total_signals, total_narratives, config_params FROM %s ORDER BY run_id",
		quoteTableName(refreshRunsTable, as.backend))
	rows, err := as.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query refresh runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.RefreshRunRecord
	for rows.Next() {
		var record schema.RefreshRunRecord

		switch as.backend {
		case schema.SQLiteBackend:
			var startTimeStr string
			var endTimeStr *string
			if err := rows.Scan(&record.RunID, &startTimeStr, &endTimeStr, &record.RunDurationMs, &record.TotalSignals, &record.TotalNarratives, &record.ConfigParams); err != nil {
				return nil, fmt.Errorf("failed to scan refresh run: %w", err)
			}
			if record.StartTime, err = parseSQLiteTime(startTimeStr); err != nil {
				return nil, fmt.Errorf("failed to parse start_time: %w", err)
			}
			if endTimeStr != nil {
				endTime, err := parseSQLiteTime(*endTimeStr)
				if err != nil {
					return nil, fmt.Errorf("failed to parse end_time: %w", err)
				}
				record.EndTime = &endTime
			}
		default: // MySQL and PostgreSQL
			if err := rows.Scan(&record.RunID, &record.StartTime, &record.EndTime, &record.RunDurationMs, &record.TotalSignals, &record.TotalNarratives, &record.ConfigParams); err != nil {
				return nil, fmt.Errorf("failed to scan refresh run: %w", err)
			}
		}
		results = append(results, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating refresh runs: %w", err)
	}
	return results, nil
}

// GetAllNarrativeScores retrieves all narrative observations from the store.
func (as *ArchiveStoreImpl) GetAllNarrativeScores() ([]schema.NarrativeScoreRecord, error) {
	if as.backend == schema.NoneBackend || as.db == nil {
		return nil, nil
	}

	query := fmt.Sprintf(`SELECT run_id, narrative_name, observed_at, novelty_score, trend, sentiment, explanation
		FROM %s ORDER BY run_id, narrative_name`, quoteTableName(narrativeScoresTable, as.backend))
	rows, err := as.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query narrative scores: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.NarrativeScoreRecord
	for rows.Next() {
		var record schema.NarrativeScoreRecord

		switch as.backend {
		case schema.SQLiteBackend:
			var observedAtStr string
			if err := rows.Scan(&record.RunID, &record.NarrativeName, &observedAtStr, &record.NoveltyScore,
				&record.Trend, &record.Sentiment, &record.Explanation); err != nil {
				return nil, fmt.Errorf("failed to scan narrative score: %w", err)
			}
			if record.ObservedAt, err = parseSQLiteTime(observedAtStr); err != nil {
				return nil, fmt.Errorf("failed to parse observed_at: %w", err)
			}
		default: // MySQL and PostgreSQL
			if err := rows.Scan(&record.RunID, &record.NarrativeName, &record.ObservedAt, &record.NoveltyScore,
				&record.Trend, &record.Sentiment, &record.Explanation); err != nil {
				return nil, fmt.Errorf("failed to scan narrative score: %w", err)
			}
		}
		results = append(results, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating narrative scores: %w", err)
	}
	return results, nil
}

// scanTime reads a single timestamp column, handling SQLite's text storage.
func (as *ArchiveStoreImpl) scanTime(row *sql.Row) (time.Time, error) {
	if as.backend == schema.SQLiteBackend {
		var s string
		if err := row.Scan(&s); err != nil {
			return time.Time{}, err
		}
		return parseSQLiteTime(s)
	}
	var t time.Time
	err := row.Scan(&t)
	return t, err
}

// scanIDAndTime reads a (run_id, start_time) row.
func (as *ArchiveStoreImpl) scanIDAndTime(row *sql.Row) (int64, time.Time, error) {
	var id int64
	if as.backend == schema.SQLiteBackend {
		var s string
		if err := row.Scan(&id, &s); err != nil {
			return 0, time.Time{}, err
		}
		t, err := parseSQLiteTime(s)
		return id, t, err
	}
	var t time.Time
	err := row.Scan(&id, &t)
	return id, t, err
}

// nullString stores empty strings as NULL.
func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
