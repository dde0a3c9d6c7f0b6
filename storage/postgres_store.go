package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	_ "github.com/lib/pq"

	"flyer-studio/models"
	"flyer-studio/utils"
)

const batchSize = 50

// PostgresStore checkpoints the pattern library and generation records to
// PostgreSQL. It implements PatternStore and RecordWriter.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore opens a connection to PostgreSQL, waits for it with the
// given retry policy, runs schema migrations and returns a ready store.
func NewPostgresStore(ctx context.Context, dsn string, retry *utils.RetryConfig) (*PostgresStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}

	if retry == nil {
		retry = &utils.RetryConfig{MaxAttempts: 10, BaseDelay: 500 * time.Millisecond}
	}
	if err := retry.Do(ctx, "postgres ping", func() error { return db.PingContext(ctx) }); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres: %w", err)
	}

	return NewPostgresStoreFromDB(ctx, db)
}

// NewPostgresStoreFromDB wraps an existing connection and migrates the
// schema.
func NewPostgresStoreFromDB(ctx context.Context, db *sql.DB) (*PostgresStore, error) {
	ps := &PostgresStore{db: db}
	if err := ps.migrate(ctx); err != nil {
		return nil, fmt.Errorf("postgres: migrate: %w", err)
	}
	return ps, nil
}

func (ps *PostgresStore) migrate(ctx context.Context) error {
	_, err := ps.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS patterns (
			style_id    TEXT         NOT NULL,
			category    TEXT         NOT NULL,
			value       TEXT         NOT NULL,
			confidence  NUMERIC(4,2) NOT NULL,
			usage_count INTEGER      NOT NULL DEFAULT 1,
			source      TEXT         NOT NULL DEFAULT 'learned',
			learned_at  TIMESTAMPTZ  NOT NULL DEFAULT NOW(),
			updated_at  TIMESTAMPTZ  NOT NULL DEFAULT NOW(),
			PRIMARY KEY (style_id, category, value)
		);

		CREATE TABLE IF NOT EXISTS incorporated_records (
			record_id TEXT PRIMARY KEY
		);

		CREATE TABLE IF NOT EXISTS generation_records (
			id          TEXT         PRIMARY KEY,
			request_id  TEXT         NOT NULL DEFAULT '',
			style_id    TEXT         NOT NULL DEFAULT '',
			success     BOOLEAN      NOT NULL,
			error_kind  TEXT         NOT NULL DEFAULT '',
			duration_ms NUMERIC(10,3) NOT NULL DEFAULT 0,
			payload     JSONB        NOT NULL,
			created_at  TIMESTAMPTZ  NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_patterns_style       ON patterns(style_id);
		CREATE INDEX IF NOT EXISTS idx_records_style        ON generation_records(style_id);
		CREATE INDEX IF NOT EXISTS idx_records_created_at   ON generation_records(created_at);
	`)
	return err
}

type patternRow struct {
	style string
	cat   models.PatternCategory
	p     models.Pattern
}

// SavePatterns upserts every pattern in the snapshot in one transaction.
// Stored confidence and usage never go down.
func (ps *PostgresStore) SavePatterns(ctx context.Context, snap models.PatternLibrarySnapshot) error {
	rows := flattenPatterns(snap)

	tx, err := ps.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("postgres: begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for i := 0; i < len(rows); i += batchSize {
		end := min(i+batchSize, len(rows))
		if err := upsertPatterns(ctx, tx, rows[i:end]); err != nil {
			return fmt.Errorf("postgres: save patterns: %w", err)
		}
	}
	for i := 0; i < len(snap.Incorporated); i += batchSize {
		end := min(i+batchSize, len(snap.Incorporated))
		if err := insertIncorporated(ctx, tx, snap.Incorporated[i:end]); err != nil {
			return fmt.Errorf("postgres: save incorporated: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("postgres: commit: %w", err)
	}
	return nil
}

func flattenPatterns(snap models.PatternLibrarySnapshot) []patternRow {
	styles := make([]string, 0, len(snap.Styles))
	for s := range snap.Styles {
		styles = append(styles, s)
	}
	sort.Strings(styles)

	var rows []patternRow
	for _, s := range styles {
		for _, cat := range models.PatternCategories {
			for _, p := range snap.Styles[s][cat] {
				rows = append(rows, patternRow{style: s, cat: cat, p: p})
			}
		}
	}
	return rows
}

func upsertPatterns(ctx context.Context, tx *sql.Tx, batch []patternRow) error {
	const cols = 8
	valueStrings := make([]string, 0, len(batch))
	valueArgs := make([]interface{}, 0, len(batch)*cols)

	for idx, r := range batch {
		base := idx * cols
		valueStrings = append(valueStrings,
			fmt.Sprintf("($%d,$%d,$%d,$%d,$%d,$%d,$%d,$%d)",
				base+1, base+2, base+3, base+4, base+5, base+6, base+7, base+8))
		valueArgs = append(valueArgs,
			r.style, string(r.cat), r.p.Value, r.p.Confidence, r.p.UsageCount, r.p.Source, r.p.LearnedAt, r.p.UpdatedAt)
	}

	query := fmt.Sprintf(`
		INSERT INTO patterns (style_id, category, value, confidence, usage_count, source, learned_at, updated_at)
		VALUES %s
		ON CONFLICT (style_id, category, value) DO UPDATE SET
			confidence  = GREATEST(patterns.confidence, EXCLUDED.confidence),
			usage_count = GREATEST(patterns.usage_count, EXCLUDED.usage_count),
			updated_at  = GREATEST(patterns.updated_at, EXCLUDED.updated_at)
	`, strings.Join(valueStrings, ","))

	_, err := tx.ExecContext(ctx, query, valueArgs...)
	return err
}

func insertIncorporated(ctx context.Context, tx *sql.Tx, ids []string) error {
	valueStrings := make([]string, 0, len(ids))
	valueArgs := make([]interface{}, 0, len(ids))
	for idx, id := range ids {
		valueStrings = append(valueStrings, fmt.Sprintf("($%d)", idx+1))
		valueArgs = append(valueArgs, id)
	}

	query := fmt.Sprintf(`
		INSERT INTO incorporated_records (record_id)
		VALUES %s
		ON CONFLICT (record_id) DO NOTHING
	`, strings.Join(valueStrings, ","))

	_, err := tx.ExecContext(ctx, query, valueArgs...)
	return err
}

// LoadPatterns reads the stored library. An empty database yields an empty
// snapshot, not an error.
func (ps *PostgresStore) LoadPatterns(ctx context.Context) (*models.PatternLibrarySnapshot, error) {
	rows, err := ps.db.QueryContext(ctx, `
		SELECT style_id, category, value, confidence, usage_count, source, learned_at, updated_at
		FROM patterns
		ORDER BY style_id, category, confidence DESC, value
	`)
	if err != nil {
		return nil, fmt.Errorf("postgres: load patterns: %w", err)
	}
	defer rows.Close()

	snap := &models.PatternLibrarySnapshot{
		ExportedAt: time.Now(),
		Styles:     make(map[string]models.StylePatterns),
	}
	for rows.Next() {
		var (
			style, cat string
			p          models.Pattern
		)
		if err := rows.Scan(&style, &cat, &p.Value, &p.Confidence, &p.UsageCount, &p.Source, &p.LearnedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("postgres: scan pattern: %w", err)
		}
		if snap.Styles[style] == nil {
			snap.Styles[style] = models.StylePatterns{}
		}
		c := models.PatternCategory(cat)
		snap.Styles[style][c] = append(snap.Styles[style][c], p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: load patterns: %w", err)
	}

	idRows, err := ps.db.QueryContext(ctx, `SELECT record_id FROM incorporated_records ORDER BY record_id`)
	if err != nil {
		return nil, fmt.Errorf("postgres: load incorporated: %w", err)
	}
	defer idRows.Close()
	for idRows.Next() {
		var id string
		if err := idRows.Scan(&id); err != nil {
			return nil, fmt.Errorf("postgres: scan record id: %w", err)
		}
		snap.Incorporated = append(snap.Incorporated, id)
	}
	return snap, idRows.Err()
}

// WriteRecords inserts generation records. Records already stored are left
// untouched.
func (ps *PostgresStore) WriteRecords(records []models.GenerationRecord) error {
	for i := 0; i < len(records); i += batchSize {
		end := min(i+batchSize, len(records))
		if err := ps.insertRecords(records[i:end]); err != nil {
			return fmt.Errorf("postgres: write records: %w", err)
		}
	}
	return nil
}

func (ps *PostgresStore) insertRecords(batch []models.GenerationRecord) error {
	const cols = 8
	valueStrings := make([]string, 0, len(batch))
	valueArgs := make([]interface{}, 0, len(batch)*cols)

	for idx, r := range batch {
		payload, err := json.Marshal(r)
		if err != nil {
			return fmt.Errorf("encode record %s: %w", r.ID, err)
		}
		errKind := ""
		if r.Outcome.Error != nil {
			errKind = string(r.Outcome.Error.Kind)
		}

		base := idx * cols
		valueStrings = append(valueStrings,
			fmt.Sprintf("($%d,$%d,$%d,$%d,$%d,$%d,$%d,$%d)",
				base+1, base+2, base+3, base+4, base+5, base+6, base+7, base+8))
		valueArgs = append(valueArgs,
			r.ID, r.RequestID, r.StyleID, r.Outcome.Success, errKind,
			float64(r.Metrics.Duration.Microseconds())/1000, payload, r.Timestamp)
	}

	query := fmt.Sprintf(`
		INSERT INTO generation_records (id, request_id, style_id, success, error_kind, duration_ms, payload, created_at)
		VALUES %s
		ON CONFLICT (id) DO NOTHING
	`, strings.Join(valueStrings, ","))

	_, err := ps.db.Exec(query, valueArgs...)
	return err
}

func (ps *PostgresStore) Close() error {
	return ps.db.Close()
}
