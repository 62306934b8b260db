// Package sqlite is the durable ledger store backed by modernc.org/sqlite.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"kakeibo/internal/core"

	_ "modernc.org/sqlite"
)

type Repository struct {
	db *sql.DB
}

func NewRepository(dbPath string) (*Repository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Repository{db: db}, nil
}

func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// FetchSlot implements store.SlotReader.
func (r *Repository) FetchSlot(ctx context.Context, date core.DateKey, p core.Participant) ([]core.Entry, string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT amount_cents, description, recorded_at_ms
		   FROM entries
		  WHERE day = ? AND participant = ?
		  ORDER BY position`, string(date), string(p))
	if err != nil {
		return nil, "", fmt.Errorf("query slot: %w", err)
	}
	defer rows.Close()

	var entries []core.Entry
	for rows.Next() {
		var e core.Entry
		if err := rows.Scan(&e.Amount.Cents, &e.Description, &e.RecordedAt); err != nil {
			return nil, "", fmt.Errorf("scan entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, "", fmt.Errorf("iterate entries: %w", err)
	}

	var writer string
	err = r.db.QueryRowContext(ctx,
		`SELECT writer_id FROM slot_writers WHERE day = ? AND participant = ?`,
		string(date), string(p)).Scan(&writer)
	if err != nil && err != sql.ErrNoRows {
		return nil, "", fmt.Errorf("query slot writer: %w", err)
	}

	return entries, writer, nil
}

// StoreSlot implements store.SlotWriter. The slot is rewritten inside one
// transaction; rows for the other participant on the same day are untouched,
// which is the merge guarantee the write path relies on.
func (r *Repository) StoreSlot(ctx context.Context, date core.DateKey, p core.Participant, entries []core.Entry, writerID string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM entries WHERE day = ? AND participant = ?`,
		string(date), string(p)); err != nil {
		return fmt.Errorf("clear slot: %w", err)
	}

	for i, e := range entries {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO entries (day, participant, position, amount_cents, description, recorded_at_ms)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			string(date), string(p), i, e.Amount.Cents, e.Description, e.RecordedAt); err != nil {
			return fmt.Errorf("insert entry %d: %w", i, err)
		}
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO slot_writers (day, participant, writer_id) VALUES (?, ?, ?)
		 ON CONFLICT (day, participant) DO UPDATE SET writer_id = excluded.writer_id`,
		string(date), string(p), writerID); err != nil {
		return fmt.Errorf("stamp writer: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit slot: %w", err)
	}

	slog.DebugContext(ctx, "Slot stored",
		"day", string(date),
		"participant", string(p),
		"entries", len(entries),
		"writer", writerID)

	return nil
}

// LoadSnapshot implements store.SnapshotReader: the full ledger in one read.
func (r *Repository) LoadSnapshot(ctx context.Context) (core.Ledger, error) {
	ledger := core.Ledger{}

	rows, err := r.db.QueryContext(ctx,
		`SELECT day, participant, amount_cents, description, recorded_at_ms
		   FROM entries
		  ORDER BY day, participant, position`)
	if err != nil {
		return nil, fmt.Errorf("query entries: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			day, participant string
			e                core.Entry
		)
		if err := rows.Scan(&day, &participant, &e.Amount.Cents, &e.Description, &e.RecordedAt); err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		ledger.Append(core.DateKey(day), core.Participant(participant), e, "")
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate entries: %w", err)
	}

	wrows, err := r.db.QueryContext(ctx, `SELECT day, participant, writer_id FROM slot_writers`)
	if err != nil {
		return nil, fmt.Errorf("query slot writers: %w", err)
	}
	defer wrows.Close()

	for wrows.Next() {
		var day, participant, writer string
		if err := wrows.Scan(&day, &participant, &writer); err != nil {
			return nil, fmt.Errorf("scan slot writer: %w", err)
		}
		if rec, ok := ledger[core.DateKey(day)]; ok && rec.Writers != nil {
			rec.Writers[core.Participant(participant)] = writer
		}
	}
	if err := wrows.Err(); err != nil {
		return nil, fmt.Errorf("iterate slot writers: %w", err)
	}

	return ledger, nil
}
