package store

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stackit-qa/stackit-client/internal/credential"
	"github.com/stretchr/testify/require"
)

func TestQuoteIdentifier(t *testing.T) {
	require.Equal(t, `"credential_store"`, quoteIdentifier("credential_store"))
	require.Equal(t, `"we""ird"`, quoteIdentifier(`we"ird`))
}

func TestPostgresTableName(t *testing.T) {
	s := newPostgresStoreWithDB(nil, PostgresStoreConfig{})
	require.Equal(t, `"credential_store"`, s.tableName())

	s = newPostgresStoreWithDB(nil, PostgresStoreConfig{Schema: "qa", Table: "tokens"})
	require.Equal(t, `"qa"."tokens"`, s.tableName())
}

func TestNewPostgresStoreRequiresDSN(t *testing.T) {
	_, err := NewPostgresStore(context.Background(), PostgresStoreConfig{DSN: "  "})
	require.ErrorContains(t, err, "DSN is required")
}

// Runs against a live database when PGSTORE_TEST_DSN is set.
func TestPostgresStoreRoundTrip(t *testing.T) {
	dsn := os.Getenv("PGSTORE_TEST_DSN")
	if dsn == "" {
		t.Skip("PGSTORE_TEST_DSN not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	s, err := NewPostgresStore(ctx, PostgresStoreConfig{DSN: dsn, Table: "credential_store_test"})
	require.NoError(t, err)
	defer func() { _ = s.Close() }()
	defer func() { _, _ = s.db.ExecContext(ctx, "DROP TABLE IF EXISTS "+s.tableName()) }()

	pair, err := s.Load(ctx, "default")
	require.NoError(t, err)
	require.True(t, pair.Empty())

	require.NoError(t, s.Save(ctx, "default", credential.Pair{Access: "A1", Refresh: "R1"}))
	require.NoError(t, s.Save(ctx, "default", credential.Pair{Access: "A2", Refresh: "R1"}))
	pair, err = s.Load(ctx, "default")
	require.NoError(t, err)
	require.Equal(t, credential.Pair{Access: "A2", Refresh: "R1"}, pair)

	require.NoError(t, s.Delete(ctx, "default"))
	require.NoError(t, s.Delete(ctx, "default"))
	pair, err = s.Load(ctx, "default")
	require.NoError(t, err)
	require.True(t, pair.Empty())
}
