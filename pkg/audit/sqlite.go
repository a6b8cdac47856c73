package audit

import (
	"context"
	"database/sql"
	"errors"

	_ "modernc.org/sqlite"
)

// SQLiteStore persists execution records in SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens a SQLite database with the modernc driver and prepares
// the schema.
func OpenSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	store, err := NewSQLiteStore(db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// NewSQLiteStore creates a SQLite-backed store on an open handle and
// ensures the schema exists.
func NewSQLiteStore(db *sql.DB) (*SQLiteStore, error) {
	if db == nil {
		return nil, errors.New("db is nil")
	}
	if err := ensureSchema(db); err != nil {
		return nil, err
	}
	return &SQLiteStore{db: db}, nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Record stores a single execution record.
func (s *SQLiteStore) Record(ctx context.Context, record Record) error {
	args := encodeJSON(record.Args)
	data := encodeJSON(record.Data)
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO skill_executions (
			execution_id, skill, success, error_text, args_json, data_json, started_at, finished_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`,
		record.ID,
		record.Skill,
		record.Success,
		record.Error,
		string(args),
		string(data),
		normalizeTime(record.StartedAt),
		normalizeTime(record.FinishedAt),
	)
	return err
}

// List returns records matching the filter in the order they were recorded.
func (s *SQLiteStore) List(ctx context.Context, filter Filter) ([]Record, error) {
	query := `
		SELECT execution_id, skill, success, error_text, args_json, data_json, started_at, finished_at
		FROM skill_executions
	`
	var params []any
	where := ""
	addFilter := func(clause string, value any) {
		if where == "" {
			where = " WHERE " + clause
		} else {
			where += " AND " + clause
		}
		params = append(params, value)
	}
	if filter.Skill != "" {
		addFilter("skill = ?", filter.Skill)
	}
	if filter.Success != nil {
		addFilter("success = ?", *filter.Success)
	}
	query += where + " ORDER BY id ASC"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		params = append(params, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, params...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var (
			rec      Record
			argsJSON string
			dataJSON string
			started  sql.NullTime
			finished sql.NullTime
		)
		if err := rows.Scan(
			&rec.ID,
			&rec.Skill,
			&rec.Success,
			&rec.Error,
			&argsJSON,
			&dataJSON,
			&started,
			&finished,
		); err != nil {
			return nil, err
		}
		if decoded, err := decodeJSON([]byte(argsJSON)); err == nil {
			if m, ok := decoded.(map[string]any); ok {
				rec.Args = m
			}
		}
		if decoded, err := decodeJSON([]byte(dataJSON)); err == nil {
			rec.Data = decoded
		}
		if started.Valid {
			rec.StartedAt = started.Time
		}
		if finished.Valid {
			rec.FinishedAt = finished.Time
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return records, nil
}

func ensureSchema(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS skill_executions (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			execution_id TEXT NOT NULL,
			skill TEXT NOT NULL,
			success BOOLEAN NOT NULL,
			error_text TEXT,
			args_json TEXT,
			data_json TEXT,
			started_at TIMESTAMP,
			finished_at TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_skill_executions_skill ON skill_executions(skill);
		CREATE INDEX IF NOT EXISTS idx_skill_executions_success ON skill_executions(success);
	`)
	return err
}
