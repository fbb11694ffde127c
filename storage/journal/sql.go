package journal

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/indieinfra/ingest/config"
	storageutil "github.com/indieinfra/ingest/storage/util"
)

type placeholderStyle int

const (
	placeholderQuestion placeholderStyle = iota
	placeholderDollar
)

type SQLStore struct {
	db          *sql.DB
	table       string
	placeholder placeholderStyle
}

func NewSQLStore(cfg *config.SQLJournalStrategy) (*SQLStore, error) {
	store, err := newSQLStoreWithDB(cfg, nil)
	if err != nil {
		return nil, err
	}

	driverName, err := resolveSQLDriverName(cfg.Driver)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(driverName, cfg.DSN)
	if err != nil {
		return nil, err
	}

	store.db = db

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := store.initSchema(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("journal schema init failed: %w", err)
	}

	return store, nil
}

func newSQLStoreWithDB(cfg *config.SQLJournalStrategy, db *sql.DB) (*SQLStore, error) {
	if cfg == nil {
		return nil, fmt.Errorf("journal sql config is nil")
	}

	placeholder, err := detectPlaceholderStyle(cfg.Driver)
	if err != nil {
		return nil, err
	}

	return &SQLStore{
		db:          db,
		table:       storageutil.DeriveTableName(cfg.TablePrefix, "journal"),
		placeholder: placeholder,
	}, nil
}

func detectPlaceholderStyle(driver string) (placeholderStyle, error) {
	driverName, err := resolveSQLDriverName(driver)
	if err != nil {
		return placeholderQuestion, err
	}

	if driverName == "pgx" {
		return placeholderDollar, nil
	}

	return placeholderQuestion, nil
}

func resolveSQLDriverName(driver string) (string, error) {
	switch strings.ToLower(driver) {
	case "postgres":
		return "pgx", nil
	case "mysql":
		return "mysql", nil
	default:
		return "", fmt.Errorf("unsupported sql driver %q", driver)
	}
}

func (s *SQLStore) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *SQLStore) initSchema(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, s.schemaQuery())
	return err
}

func (s *SQLStore) schemaQuery() string {
	return fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
job_id VARCHAR(64) NOT NULL,
kind VARCHAR(16) NOT NULL,
status VARCHAR(16) NOT NULL,
message TEXT NOT NULL,
details TEXT NOT NULL,
created_at TIMESTAMP NOT NULL,
PRIMARY KEY (job_id, kind)
)`, s.table)
}

func (s *SQLStore) insertQuery() string {
	return fmt.Sprintf("INSERT INTO %s (job_id, kind, status, message, details, created_at) VALUES (%s, %s, %s, %s, %s, %s)",
		s.table, s.placeholderFor(1), s.placeholderFor(2), s.placeholderFor(3), s.placeholderFor(4), s.placeholderFor(5), s.placeholderFor(6))
}

func (s *SQLStore) selectQuery() string {
	return fmt.Sprintf("SELECT kind, status, message, details, created_at FROM %s WHERE job_id = %s ORDER BY created_at, kind", s.table, s.placeholderFor(1))
}

func (s *SQLStore) placeholderFor(n int) string {
	if s.placeholder == placeholderDollar {
		return fmt.Sprintf("$%d", n)
	}
	return "?"
}

func (s *SQLStore) Record(ctx context.Context, e *Entry) error {
	details, err := encodeDetails(e.Details)
	if err != nil {
		return err
	}

	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}

	if _, err := s.db.ExecContext(ctx, s.insertQuery(), e.JobID, e.Kind, e.Status, e.Message, details, e.CreatedAt); err != nil {
		return fmt.Errorf("record journal entry: %w", err)
	}

	return nil
}

func (s *SQLStore) List(ctx context.Context, jobID string) ([]*Entry, error) {
	rows, err := s.db.QueryContext(ctx, s.selectQuery(), jobID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Entry
	for rows.Next() {
		e := &Entry{JobID: jobID}
		var details string
		if err := rows.Scan(&e.Kind, &e.Status, &e.Message, &details, &e.CreatedAt); err != nil {
			return nil, err
		}
		if e.Details, err = decodeDetails(details); err != nil {
			return nil, fmt.Errorf("decode details for job %s: %w", jobID, err)
		}
		out = append(out, e)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	if len(out) == 0 {
		return nil, ErrNotFound
	}

	return out, nil
}
