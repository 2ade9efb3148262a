package recorder

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"
)

// SQLiteRecorder persists forecast history to a SQLite database.
type SQLiteRecorder struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL mode so history reads don't block the recording writer.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Info().Str("path", dbPath).Msg("sqlite recorder opened")
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS forecasts (
			id             INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id         TEXT NOT NULL,
			timestamp      INTEGER NOT NULL,
			code           TEXT NOT NULL,
			trigger_type   TEXT,
			target_date    TEXT,
			last_close     REAL,
			forecast       REAL,
			percent_change REAL,
			rmse           REAL,
			clamped        INTEGER,
			error_kind     TEXT,
			error_msg      TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_forecasts_code_ts ON forecasts(code, timestamp)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

func (r *SQLiteRecorder) RecordForecast(evt *ForecastEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if evt.RunID == "" {
		evt.RunID = uuid.NewString()
	}
	if evt.Timestamp.IsZero() {
		evt.Timestamp = time.Now()
	}
	var target string
	if !evt.TargetDate.IsZero() {
		target = evt.TargetDate.Format(time.DateOnly)
	}

	_, err := r.db.Exec(`INSERT INTO forecasts
		(run_id, timestamp, code, trigger_type, target_date, last_close, forecast,
		 percent_change, rmse, clamped, error_kind, error_msg)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?)`,
		evt.RunID, evt.Timestamp.Unix(), strings.ToUpper(evt.Code), string(evt.Trigger), target,
		evt.LastClose, evt.Forecast, evt.PercentChange, evt.RMSE, evt.Clamped,
		evt.ErrorKind, evt.ErrorMsg,
	)
	return err
}

// RecentForecasts returns up to limit events for code, newest first.
func (r *SQLiteRecorder) RecentForecasts(code string, limit int) ([]ForecastEvent, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := r.db.Query(`SELECT run_id, timestamp, code, trigger_type, target_date, last_close,
		forecast, percent_change, rmse, clamped, error_kind, error_msg
		FROM forecasts WHERE code = ? ORDER BY timestamp DESC, id DESC LIMIT ?`,
		strings.ToUpper(code), limit)
	if err != nil {
		return nil, fmt.Errorf("query forecasts: %w", err)
	}
	defer rows.Close()

	var out []ForecastEvent
	for rows.Next() {
		var (
			evt     ForecastEvent
			ts      int64
			trigger string
			target  string
		)
		if err := rows.Scan(&evt.RunID, &ts, &evt.Code, &trigger, &target, &evt.LastClose,
			&evt.Forecast, &evt.PercentChange, &evt.RMSE, &evt.Clamped, &evt.ErrorKind, &evt.ErrorMsg); err != nil {
			return nil, fmt.Errorf("scan forecast: %w", err)
		}
		evt.Timestamp = time.Unix(ts, 0)
		evt.Trigger = Trigger(trigger)
		if target != "" {
			if d, err := time.Parse(time.DateOnly, target); err == nil {
				evt.TargetDate = d
			}
		}
		out = append(out, evt)
	}
	return out, rows.Err()
}

func (r *SQLiteRecorder) Close() error {
	log.Info().Msg("closing sqlite recorder")
	return r.db.Close()
}
