// Package cmd implements the StackIt CLI commands on top of the authenticated client.
package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"
	"github.com/stackit-qa/stackit-client/internal/config"
	"github.com/stackit-qa/stackit-client/internal/credential"
	"github.com/stackit-qa/stackit-client/internal/metrics"
	"github.com/stackit-qa/stackit-client/internal/session"
	"github.com/stackit-qa/stackit-client/internal/store"
	"github.com/stackit-qa/stackit-client/internal/util"
	"github.com/stackit-qa/stackit-client/internal/watcher"
	"github.com/stackit-qa/stackit-client/sdk/api"
	"github.com/stackit-qa/stackit-client/sdk/client"
)

// Options carries interactive input and output for the commands.
type Options struct {
	// Prompt allows the caller to provide interactive input when needed.
	Prompt func(prompt string) (string, error)

	// Out receives user-facing output. Defaults to os.Stdout.
	Out io.Writer
}

func (o *Options) out() io.Writer {
	if o == nil || o.Out == nil {
		return os.Stdout
	}
	return o.Out
}

func (o *Options) prompt(label string) (string, error) {
	if o != nil && o.Prompt != nil {
		return o.Prompt(label)
	}
	reader := bufio.NewReader(os.Stdin)
	fmt.Print(label)
	value, err := reader.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return strings.TrimSpace(value), nil
}

// Runtime holds everything a command needs: the store, the client and its wrappers.
type Runtime struct {
	Config   *config.Config
	Store    *credential.Store
	Client   *client.Client
	API      *api.API
	Notifier *session.Notifier
	Metrics  *metrics.Metrics
	Registry *prometheus.Registry

	// EventSubscriber is set when session events travel over Redis streams.
	EventSubscriber message.Subscriber

	watcher *watcher.Watcher
	closers []func() error
}

// NewRuntime opens the configured credential backend and builds the client around it.
// configPath may be empty; when set and the file backend has watch enabled, config and
// credential changes made by other processes are picked up.
func NewRuntime(ctx context.Context, cfg *config.Config, configPath string) (*Runtime, error) {
	backend, closeBackend, err := openBackend(ctx, cfg)
	if err != nil {
		return nil, err
	}
	rt := &Runtime{Config: cfg, closers: []func() error{closeBackend}}

	rt.Store, err = credential.Open(ctx, backend, cfg.CredentialStore.Profile)
	if err != nil {
		_ = rt.Close()
		return nil, err
	}
	rt.Registry = prometheus.NewRegistry()
	rt.Metrics = metrics.New(rt.Registry)
	rt.Notifier = session.NewNotifier()
	if cfg.SessionEvents.RedisAddr != "" {
		if err = rt.attachRedisEvents(ctx); err != nil {
			_ = rt.Close()
			return nil, err
		}
	}

	rt.Client, err = client.New(client.Options{
		BaseURL:        cfg.BaseURL,
		Store:          rt.Store,
		HTTPClient:     util.NewHTTPClient(&cfg.SDKConfig, cfg.RequestTimeout),
		Notifier:       rt.Notifier,
		Metrics:        rt.Metrics,
		UserAgent:      cfg.UserAgent,
		RefreshTimeout: cfg.RefreshTimeout,
	})
	if err != nil {
		_ = rt.Close()
		return nil, err
	}
	rt.API = api.New(rt.Client)

	if fileBackend, ok := backend.(*credential.FileBackend); ok && cfg.CredentialStore.Watch {
		if err = rt.startWatcher(ctx, configPath, fileBackend); err != nil {
			log.WithError(err).Warn("credential watcher disabled")
		}
	}
	return rt, nil
}

func (rt *Runtime) startWatcher(ctx context.Context, configPath string, backend *credential.FileBackend) error {
	credentialPath, err := backend.Path(rt.Store.Profile())
	if err != nil {
		return err
	}
	if configPath != "" {
		if _, errStat := os.Stat(configPath); errStat != nil {
			configPath = ""
		}
	}
	w, err := watcher.NewWatcher(configPath, credentialPath, nil, func() {
		if errReload := rt.Store.Reload(context.Background()); errReload != nil {
			log.WithError(errReload).Warn("failed to reload credentials")
		}
	})
	if err != nil {
		return err
	}
	w.SetConfig(rt.Config)
	if err = w.Start(ctx); err != nil {
		_ = w.Stop()
		return err
	}
	rt.watcher = w
	rt.closers = append(rt.closers, w.Stop)
	return nil
}

func (rt *Runtime) attachRedisEvents(ctx context.Context) error {
	events := rt.Config.SessionEvents
	rdb, err := store.NewRedisClient(ctx, events.RedisAddr, events.RedisPassword, events.RedisDB)
	if err != nil {
		return fmt.Errorf("session events: %w", err)
	}
	rt.closers = append(rt.closers, rdb.Close)

	publisher, err := session.NewRedisStreamPublisher(rdb)
	if err != nil {
		return err
	}
	rt.closers = append(rt.closers, publisher.Close)
	subscriber, err := session.NewRedisStreamSubscriber(rdb, "")
	if err != nil {
		return err
	}
	rt.closers = append(rt.closers, subscriber.Close)

	rt.Notifier.AttachPublisher(publisher, events.Topic)
	rt.EventSubscriber = subscriber
	log.Infof("session events shared through redis stream %s", events.Topic)
	return nil
}

// Close releases the watcher and the backend connection.
func (rt *Runtime) Close() error {
	var errs []error
	for i := len(rt.closers) - 1; i >= 0; i-- {
		if err := rt.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	rt.closers = nil
	return errors.Join(errs...)
}
