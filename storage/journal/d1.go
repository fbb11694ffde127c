package journal

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	cloudflare "github.com/cloudflare/cloudflare-go/v6"
	cfd1 "github.com/cloudflare/cloudflare-go/v6/d1"
	"github.com/cloudflare/cloudflare-go/v6/option"

	"github.com/indieinfra/ingest/config"
	storageutil "github.com/indieinfra/ingest/storage/util"
)

// D1Store keeps the journal in Cloudflare D1 via the HTTP API, using the same
// schema as SQLStore.
type D1Store struct {
	cfg    *config.D1JournalStrategy
	client *cloudflare.Client
	table  string
}

// NewD1Store builds a store and ensures the schema exists.
func NewD1Store(cfg *config.D1JournalStrategy) (*D1Store, error) {
	return newD1StoreWithClient(cfg, nil)
}

// newD1StoreWithClient lets tests point the Cloudflare client at a fake API.
func newD1StoreWithClient(cfg *config.D1JournalStrategy, httpClient *http.Client) (*D1Store, error) {
	if cfg == nil {
		return nil, fmt.Errorf("d1 journal config is nil")
	}

	store := &D1Store{
		cfg:    cfg,
		client: buildD1Client(cfg, httpClient),
		table:  storageutil.DeriveTableName(cfg.TablePrefix, "journal"),
	}

	if _, err := store.executeQuery(context.Background(), store.schemaQuery(), nil); err != nil {
		return nil, fmt.Errorf("d1 initialization failed (check account_id, database_id, and api_token): %w", err)
	}

	return store, nil
}

func buildD1Client(cfg *config.D1JournalStrategy, httpClient *http.Client) *cloudflare.Client {
	opts := []option.RequestOption{option.WithAPIToken(strings.TrimSpace(cfg.APIToken))}

	if httpClient != nil {
		opts = append(opts, option.WithHTTPClient(httpClient))
	}

	if base := strings.TrimSpace(cfg.Endpoint); base != "" {
		opts = append(opts, option.WithBaseURL(strings.TrimSuffix(base, "/")))
	}

	return cloudflare.NewClient(opts...)
}

func (s *D1Store) schemaQuery() string {
	return fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
job_id TEXT NOT NULL,
kind TEXT NOT NULL,
status TEXT NOT NULL,
message TEXT NOT NULL,
details TEXT NOT NULL,
created_at TEXT NOT NULL,
PRIMARY KEY (job_id, kind)
)`, s.table)
}

func (s *D1Store) Record(ctx context.Context, e *Entry) error {
	details, err := encodeDetails(e.Details)
	if err != nil {
		return err
	}

	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}

	query := fmt.Sprintf("INSERT INTO %s (job_id, kind, status, message, details, created_at) VALUES (?, ?, ?, ?, ?, ?)", s.table)
	if _, err := s.executeQuery(ctx, query, []any{e.JobID, e.Kind, e.Status, e.Message, details, e.CreatedAt.Format(time.RFC3339Nano)}); err != nil {
		return fmt.Errorf("record journal entry: %w", err)
	}

	return nil
}

func (s *D1Store) List(ctx context.Context, jobID string) ([]*Entry, error) {
	query := fmt.Sprintf("SELECT kind, status, message, details, created_at FROM %s WHERE job_id = ? ORDER BY created_at, kind", s.table)
	rows, err := s.executeQuery(ctx, query, []any{jobID})
	if err != nil {
		return nil, err
	}

	if len(rows) == 0 {
		return nil, ErrNotFound
	}

	out := make([]*Entry, 0, len(rows))
	for _, row := range rows {
		e := &Entry{
			JobID:   jobID,
			Kind:    stringColumn(row, "kind"),
			Status:  stringColumn(row, "status"),
			Message: stringColumn(row, "message"),
		}

		if e.Details, err = decodeDetails(stringColumn(row, "details")); err != nil {
			return nil, fmt.Errorf("decode details for job %s: %w", jobID, err)
		}

		if ts := stringColumn(row, "created_at"); ts != "" {
			if e.CreatedAt, err = time.Parse(time.RFC3339Nano, ts); err != nil {
				return nil, fmt.Errorf("parse created_at for job %s: %w", jobID, err)
			}
		}

		out = append(out, e)
	}

	return out, nil
}

// executeQuery sends a SQL query to the D1 database and returns the result rows.
// Returns nil rows (no error) when the query succeeds but produces no results.
func (s *D1Store) executeQuery(ctx context.Context, sql string, params []any) ([]map[string]any, error) {
	body := cfd1.DatabaseQueryParamsBodyD1SingleQuery{Sql: cloudflare.F(sql)}
	if len(params) > 0 {
		body.Params = cloudflare.F(convertParams(params))
	}

	resp, err := s.client.D1.Database.Query(ctx, s.cfg.DatabaseID, cfd1.DatabaseQueryParams{
		AccountID: cloudflare.F(strings.TrimSpace(s.cfg.AccountID)),
		Body:      body,
	})
	if err != nil {
		return nil, err
	}

	if resp == nil || len(resp.Result) == 0 {
		return nil, nil
	}

	result := resp.Result[0]
	if !result.Success {
		return nil, fmt.Errorf("d1 query execution failed")
	}

	rows := make([]map[string]any, 0, len(result.Results))
	for _, r := range result.Results {
		m, ok := r.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("unexpected row type %T", r)
		}
		rows = append(rows, m)
	}

	return rows, nil
}

func convertParams(params []any) []string {
	out := make([]string, 0, len(params))
	for _, p := range params {
		out = append(out, fmt.Sprint(p))
	}
	return out
}

func stringColumn(row map[string]any, key string) string {
	if v, ok := row[key].(string); ok {
		return v
	}
	return ""
}
