// Package store provides networked durable backends for the credential store.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
	log "github.com/sirupsen/logrus"
	"github.com/stackit-qa/stackit-client/internal/credential"
)

const defaultCredentialTable = "credential_store"

// PostgresStoreConfig captures configuration required to initialize a Postgres-backed store.
type PostgresStoreConfig struct {
	DSN    string
	Schema string
	Table  string
}

// PostgresStore persists credential pairs as JSONB rows keyed by profile.
type PostgresStore struct {
	db  *sql.DB
	cfg PostgresStoreConfig
}

// NewPostgresStore establishes a connection to PostgreSQL and ensures the schema exists.
func NewPostgresStore(ctx context.Context, cfg PostgresStoreConfig) (*PostgresStore, error) {
	cfg.DSN = strings.TrimSpace(cfg.DSN)
	if cfg.DSN == "" {
		return nil, fmt.Errorf("postgres store: DSN is required")
	}
	db, err := sql.Open("pgx", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("postgres store: open database connection: %w", err)
	}
	if err = db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres store: ping database: %w", err)
	}
	s := newPostgresStoreWithDB(db, cfg)
	if err = s.EnsureSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func newPostgresStoreWithDB(db *sql.DB, cfg PostgresStoreConfig) *PostgresStore {
	if strings.TrimSpace(cfg.Table) == "" {
		cfg.Table = defaultCredentialTable
	}
	return &PostgresStore{db: db, cfg: cfg}
}

// Close releases the underlying database connection.
func (s *PostgresStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// EnsureSchema creates the credential table (and schema when provided).
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if schema := strings.TrimSpace(s.cfg.Schema); schema != "" {
		if _, err := s.db.ExecContext(ctx, "CREATE SCHEMA IF NOT EXISTS "+quoteIdentifier(schema)); err != nil {
			return fmt.Errorf("postgres store: create schema: %w", err)
		}
	}
	if _, err := s.db.ExecContext(ctx, fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			profile TEXT PRIMARY KEY,
			content JSONB NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`, s.tableName())); err != nil {
		return fmt.Errorf("postgres store: create credential table: %w", err)
	}
	return nil
}

// Load returns the stored pair for profile, or a zero pair when no row exists.
func (s *PostgresStore) Load(ctx context.Context, profile string) (credential.Pair, error) {
	var content []byte
	query := fmt.Sprintf("SELECT content FROM %s WHERE profile = $1", s.tableName())
	err := s.db.QueryRowContext(ctx, query, profile).Scan(&content)
	if errors.Is(err, sql.ErrNoRows) {
		return credential.Pair{}, nil
	}
	if err != nil {
		return credential.Pair{}, fmt.Errorf("postgres store: load %s: %w", profile, err)
	}
	var pair credential.Pair
	if err = json.Unmarshal(content, &pair); err != nil {
		return credential.Pair{}, fmt.Errorf("postgres store: decode %s: %w", profile, err)
	}
	return pair, nil
}

// Save upserts the pair for profile.
func (s *PostgresStore) Save(ctx context.Context, profile string, pair credential.Pair) error {
	raw, err := json.Marshal(pair)
	if err != nil {
		return fmt.Errorf("postgres store: marshal: %w", err)
	}
	query := fmt.Sprintf(`
		INSERT INTO %s (profile, content, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (profile)
		DO UPDATE SET content = EXCLUDED.content, updated_at = NOW()
	`, s.tableName())
	if _, err = s.db.ExecContext(ctx, query, profile, raw); err != nil {
		return fmt.Errorf("postgres store: upsert %s: %w", profile, err)
	}
	log.WithField("profile", profile).Debug("postgres store: credentials saved")
	return nil
}

// Delete removes the row for profile. Missing rows are not an error.
func (s *PostgresStore) Delete(ctx context.Context, profile string) error {
	query := fmt.Sprintf("DELETE FROM %s WHERE profile = $1", s.tableName())
	if _, err := s.db.ExecContext(ctx, query, profile); err != nil {
		return fmt.Errorf("postgres store: delete %s: %w", profile, err)
	}
	return nil
}

func (s *PostgresStore) tableName() string {
	if strings.TrimSpace(s.cfg.Schema) == "" {
		return quoteIdentifier(s.cfg.Table)
	}
	return quoteIdentifier(s.cfg.Schema) + "." + quoteIdentifier(s.cfg.Table)
}

func quoteIdentifier(identifier string) string {
	return `"` + strings.ReplaceAll(identifier, `"`, `""`) + `"`
}

var _ credential.Backend = (*PostgresStore)(nil)
