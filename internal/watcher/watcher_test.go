package watcher

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stackit-qa/stackit-client/internal/config"
)

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatalf("condition not met before deadline")
}

func TestCredentialChangeTriggersReload(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "credentials.json")
	if err := os.WriteFile(path, []byte(`{"access_token":"A1"}`), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	var reloads atomic.Int32
	w, err := NewWatcher("", path, nil, func() { reloads.Add(1) })
	if err != nil {
		t.Fatalf("NewWatcher() error = %v", err)
	}
	defer func() { _ = w.Stop() }()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err = w.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	if err = os.WriteFile(path, []byte(`{"access_token":"A2"}`), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	waitFor(t, func() bool { return reloads.Load() == 1 })
}

func TestCredentialEventsIgnoreUnchangedContent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "credentials.json")
	if err := os.WriteFile(path, []byte(`{"access_token":"A1"}`), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	var reloads atomic.Int32
	w, err := NewWatcher("", path, nil, func() { reloads.Add(1) })
	if err != nil {
		t.Fatalf("NewWatcher() error = %v", err)
	}
	defer func() { _ = w.Stop() }()

	w.reloadCredentialsIfChanged()
	if got := reloads.Load(); got != 0 {
		t.Fatalf("reloads = %d, want 0 for unchanged file", got)
	}

	if err = os.Remove(path); err != nil {
		t.Fatalf("remove: %v", err)
	}
	w.reloadCredentialsIfChanged()
	if got := reloads.Load(); got != 1 {
		t.Fatalf("reloads = %d, want 1 after removal", got)
	}
}

func TestHandleEventFiltersUnrelatedFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "credentials.json")
	var reloads atomic.Int32
	w, err := NewWatcher("", path, nil, func() { reloads.Add(1) })
	if err != nil {
		t.Fatalf("NewWatcher() error = %v", err)
	}
	defer func() { _ = w.Stop() }()

	if err = os.WriteFile(filepath.Join(dir, "credentials-alice.json"), []byte("{}"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	w.handleEvent(fsnotify.Event{Name: filepath.Join(dir, "credentials-alice.json"), Op: fsnotify.Write})
	w.handleEvent(fsnotify.Event{Name: path, Op: fsnotify.Chmod})
	time.Sleep(3 * credentialReloadDebounce)
	if got := reloads.Load(); got != 0 {
		t.Fatalf("reloads = %d, want 0", got)
	}
}

func TestConfigReloadAppliesNewConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("base-url: http://localhost:8000/api\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	got := make(chan *config.Config, 1)
	w, err := NewWatcher(path, "", func(cfg *config.Config) { got <- cfg }, nil)
	if err != nil {
		t.Fatalf("NewWatcher() error = %v", err)
	}
	defer func() { _ = w.Stop() }()

	if err = os.WriteFile(path, []byte("base-url: http://localhost:8000/api\ndebug: true\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	w.reloadConfigIfChanged()
	select {
	case cfg := <-got:
		if !cfg.Debug {
			t.Fatalf("expected debug enabled after reload")
		}
	default:
		t.Fatalf("config callback not invoked")
	}
	if w.Config() == nil || !w.Config().Debug {
		t.Fatalf("watcher config not updated")
	}

	w.reloadConfigIfChanged()
	select {
	case <-got:
		t.Fatalf("unchanged config must not reload")
	default:
	}
}
