package cmd

import (
	"context"
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/stackit-qa/stackit-client/internal/config"
	"github.com/stackit-qa/stackit-client/internal/credential"
	"github.com/stackit-qa/stackit-client/internal/store"
	"github.com/stackit-qa/stackit-client/internal/util"
)

// openBackend builds the credential backend selected by cfg. The returned close function is
// never nil.
func openBackend(ctx context.Context, cfg *config.Config) (credential.Backend, func() error, error) {
	noop := func() error { return nil }
	storeCfg := cfg.CredentialStore

	switch strings.ToLower(strings.TrimSpace(storeCfg.Type)) {
	case "memory":
		log.Debug("using in-memory credential store")
		return credential.NewMemoryBackend(), noop, nil

	case "", "file":
		dir, err := util.ResolveDir(storeCfg.Dir)
		if err != nil {
			return nil, noop, err
		}
		if dir == "" {
			dir = util.DefaultCredentialDir()
		}
		backend, err := credential.NewFileBackend(dir)
		if err != nil {
			return nil, noop, err
		}
		log.Debugf("using file credential store in %s", backend.Dir())
		return backend, noop, nil

	case "postgres":
		pg, err := store.NewPostgresStore(ctx, store.PostgresStoreConfig{
			DSN:    storeCfg.Postgres.DSN,
			Schema: storeCfg.Postgres.Schema,
			Table:  storeCfg.Postgres.Table,
		})
		if err != nil {
			return nil, noop, fmt.Errorf("failed to initialize postgres credential store: %w", err)
		}
		log.Info("postgres-backed credential store enabled")
		return pg, pg.Close, nil

	case "object":
		obj, err := store.NewObjectTokenStore(store.ObjectStoreConfig{
			Endpoint:  storeCfg.Object.Endpoint,
			Bucket:    storeCfg.Object.Bucket,
			AccessKey: storeCfg.Object.AccessKey,
			SecretKey: storeCfg.Object.SecretKey,
			Region:    storeCfg.Object.Region,
			Prefix:    storeCfg.Object.Prefix,
			UseSSL:    storeCfg.Object.UseSSL,
			PathStyle: storeCfg.Object.PathStyle,
		})
		if err != nil {
			return nil, noop, fmt.Errorf("failed to initialize object credential store: %w", err)
		}
		if err = obj.EnsureBucket(ctx); err != nil {
			return nil, noop, fmt.Errorf("failed to prepare object storage bucket: %w", err)
		}
		log.Info("object storage-backed credential store enabled")
		return obj, noop, nil

	case "redis":
		rdb, err := store.NewRedisClient(ctx, storeCfg.Redis.Addr, storeCfg.Redis.Password, storeCfg.Redis.DB)
		if err != nil {
			return nil, noop, fmt.Errorf("failed to initialize redis credential store: %w", err)
		}
		log.Info("redis-backed credential store enabled")
		return store.NewRedisStore(rdb, storeCfg.Redis.Prefix), rdb.Close, nil

	default:
		return nil, noop, fmt.Errorf("unknown credential store type %q", storeCfg.Type)
	}
}
