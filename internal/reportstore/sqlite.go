// Package reportstore keeps analyzed reports in SQLite so they can be
// fetched again by ID or listed per URL.
package reportstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/rankscore/aeo-insight/internal/model"
	"github.com/rankscore/aeo-insight/internal/platform/errs"
)

const (
	DefaultListLimit = 10
	MaxListLimit     = 100

	// sortableTime keeps a fixed fraction width so text order matches time order.
	sortableTime = "2006-01-02T15:04:05.000000000Z07:00"
)

// Store persists reports in a SQLite database.
type Store struct {
	db *sql.DB
}

// Open opens or creates the database at path and initializes the schema.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("reportstore: open database: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("reportstore: connect: %w", err)
	}

	s := &Store{db: db}
	if err := s.initSchema(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("reportstore: init schema: %w", err)
	}
	return s, nil
}

func (s *Store) initSchema(ctx context.Context) error {
	const schema = `
	CREATE TABLE IF NOT EXISTS reports (
		id          TEXT PRIMARY KEY,
		account_id  TEXT NOT NULL DEFAULT '',
		url         TEXT NOT NULL,
		total_score INTEGER NOT NULL,
		analyzed_at TEXT NOT NULL,
		body        TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_reports_url ON reports(url, analyzed_at);
	CREATE INDEX IF NOT EXISTS idx_reports_account ON reports(account_id);
	`
	_, err := s.db.ExecContext(ctx, schema)
	return err
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Save stores r under accountID. Saving the same report ID twice replaces it.
func (s *Store) Save(ctx context.Context, accountID string, r *model.Report) error {
	body, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("reportstore: encode report: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO reports (id, account_id, url, total_score, analyzed_at, body)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			account_id  = EXCLUDED.account_id,
			total_score = EXCLUDED.total_score,
			body        = EXCLUDED.body
	`, r.ID, accountID, r.URL, r.RankScore.TotalScore, r.AnalyzedAt.UTC().Format(sortableTime), string(body))
	if err != nil {
		return fmt.Errorf("reportstore: save report %s: %w", r.ID, err)
	}
	return nil
}

// Get returns the report with the given ID, or an errs.NotFound error.
func (s *Store) Get(ctx context.Context, id string) (*model.Report, error) {
	var body string
	err := s.db.QueryRowContext(ctx, `SELECT body FROM reports WHERE id = ?`, id).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &errs.AppError{Kind: errs.NotFound, Message: "Report not found."}
	}
	if err != nil {
		return nil, fmt.Errorf("reportstore: get report %s: %w", id, err)
	}

	var r model.Report
	if err := json.Unmarshal([]byte(body), &r); err != nil {
		return nil, fmt.Errorf("reportstore: decode report %s: %w", id, err)
	}
	return &r, nil
}

// ListByURL returns the newest reports for targetURL. limit is clamped to
// [1, MaxListLimit]; zero or less means DefaultListLimit.
func (s *Store) ListByURL(ctx context.Context, targetURL string, limit int) ([]model.Report, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	limit = min(limit, MaxListLimit)

	rows, err := s.db.QueryContext(ctx, `
		SELECT body FROM reports
		WHERE url = ?
		ORDER BY analyzed_at DESC
		LIMIT ?
	`, targetURL, limit)
	if err != nil {
		return nil, fmt.Errorf("reportstore: list reports: %w", err)
	}
	defer func() { _ = rows.Close() }()

	reports := make([]model.Report, 0, limit)
	for rows.Next() {
		var body string
		if err := rows.Scan(&body); err != nil {
			return nil, fmt.Errorf("reportstore: scan report: %w", err)
		}
		var r model.Report
		if err := json.Unmarshal([]byte(body), &r); err != nil {
			return nil, fmt.Errorf("reportstore: decode report: %w", err)
		}
		reports = append(reports, r)
	}
	return reports, rows.Err()
}
