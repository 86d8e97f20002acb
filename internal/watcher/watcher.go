// Package watcher watches the config file and the credential file and triggers hot reloads.
// It supports cross-platform fsnotify event handling.
package watcher

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	log "github.com/sirupsen/logrus"
	"github.com/stackit-qa/stackit-client/internal/config"
)

// Watcher manages file watching for the configuration file and the credential file
// written by another process sharing the same profile.
type Watcher struct {
	configPath     string
	credentialPath string

	mu                    sync.RWMutex
	config                *config.Config
	lastConfigHash        string
	lastCredentialHash    string
	configReloadTimer     *time.Timer
	credentialReloadTimer *time.Timer
	timerMu               sync.Mutex

	configCallback     func(*config.Config)
	credentialCallback func()
	watcher            *fsnotify.Watcher
}

const (
	// replaceCheckDelay is a short delay to allow atomic replace (rename) to settle
	// before deciding whether a Remove event indicates a real deletion.
	replaceCheckDelay        = 50 * time.Millisecond
	configReloadDebounce     = 150 * time.Millisecond
	credentialReloadDebounce = 100 * time.Millisecond
)

// NewWatcher creates a new file watcher instance. Either path may be empty to skip it.
func NewWatcher(configPath, credentialPath string, configCallback func(*config.Config), credentialCallback func()) (*Watcher, error) {
	watcher, errNewWatcher := fsnotify.NewWatcher()
	if errNewWatcher != nil {
		return nil, errNewWatcher
	}
	w := &Watcher{
		configPath:         configPath,
		credentialPath:     credentialPath,
		configCallback:     configCallback,
		credentialCallback: credentialCallback,
		watcher:            watcher,
	}
	if credentialPath != "" {
		w.lastCredentialHash, _ = fileHash(credentialPath)
	}
	if configPath != "" {
		w.lastConfigHash, _ = fileHash(configPath)
	}
	return w, nil
}

// Start begins watching. The credential file's directory is watched rather than the file
// itself so that atomic replaces and first-time creation are observed.
func (w *Watcher) Start(ctx context.Context) error {
	if w.configPath != "" {
		if errAddConfig := w.watcher.Add(w.configPath); errAddConfig != nil {
			log.Errorf("failed to watch config file %s: %v", w.configPath, errAddConfig)
			return errAddConfig
		}
		log.Debugf("watching config file: %s", w.configPath)
	}
	if w.credentialPath != "" {
		dir := filepath.Dir(w.credentialPath)
		if errAddDir := w.watcher.Add(dir); errAddDir != nil {
			log.Errorf("failed to watch credential directory %s: %v", dir, errAddDir)
			return errAddDir
		}
		log.Debugf("watching credential file: %s", w.credentialPath)
	}
	go w.processEvents(ctx)
	return nil
}

// Stop stops the file watcher
func (w *Watcher) Stop() error {
	w.stopTimers()
	return w.watcher.Close()
}

// SetConfig updates the current configuration
func (w *Watcher) SetConfig(cfg *config.Config) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.config = cfg
}

// Config returns the most recently loaded configuration.
func (w *Watcher) Config() *config.Config {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.config
}

func (w *Watcher) stopTimers() {
	w.timerMu.Lock()
	defer w.timerMu.Unlock()
	if w.configReloadTimer != nil {
		w.configReloadTimer.Stop()
		w.configReloadTimer = nil
	}
	if w.credentialReloadTimer != nil {
		w.credentialReloadTimer.Stop()
		w.credentialReloadTimer = nil
	}
}
