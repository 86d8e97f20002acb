// events.go implements fsnotify event handling for config and credential file changes.
// It normalizes paths, debounces noisy events, and triggers reload logic.
package watcher

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	log "github.com/sirupsen/logrus"
)

func (w *Watcher) processEvents(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)
		case errWatch, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.Errorf("file watcher error: %v", errWatch)
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	name := normalizePath(event.Name)
	configOps := fsnotify.Write | fsnotify.Create | fsnotify.Rename
	isConfigEvent := w.configPath != "" && name == normalizePath(w.configPath) && event.Op&configOps != 0
	credentialOps := fsnotify.Create | fsnotify.Write | fsnotify.Remove | fsnotify.Rename
	isCredentialEvent := w.credentialPath != "" && name == normalizePath(w.credentialPath) && event.Op&credentialOps != 0
	if !isConfigEvent && !isCredentialEvent {
		return
	}
	log.Debugf("file system event detected: %s %s", event.Op.String(), event.Name)

	if isConfigEvent {
		w.scheduleConfigReload()
		return
	}
	if event.Op&(fsnotify.Remove|fsnotify.Rename) != 0 {
		// Atomic replace may surface as Rename before the new file is in place.
		time.Sleep(replaceCheckDelay)
	}
	w.scheduleCredentialReload()
}

func (w *Watcher) scheduleCredentialReload() {
	w.timerMu.Lock()
	defer w.timerMu.Unlock()
	if w.credentialReloadTimer != nil {
		w.credentialReloadTimer.Stop()
	}
	w.credentialReloadTimer = time.AfterFunc(credentialReloadDebounce, func() {
		w.timerMu.Lock()
		w.credentialReloadTimer = nil
		w.timerMu.Unlock()
		w.reloadCredentialsIfChanged()
	})
}

func (w *Watcher) reloadCredentialsIfChanged() {
	hash, err := fileHash(w.credentialPath)
	if err != nil {
		log.Errorf("failed to read credential file for hash check: %v", err)
		return
	}
	w.mu.Lock()
	unchanged := hash == w.lastCredentialHash
	w.lastCredentialHash = hash
	w.mu.Unlock()
	if unchanged {
		log.Debugf("credential file unchanged (hash match), skipping reload: %s", filepath.Base(w.credentialPath))
		return
	}
	log.Infof("credential file changed, reloading: %s", filepath.Base(w.credentialPath))
	if w.credentialCallback != nil {
		w.credentialCallback()
	}
}

// fileHash returns the sha256 of path, or "" when the file does not exist.
func fileHash(path string) (string, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

func normalizePath(path string) string {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return ""
	}
	cleaned := filepath.Clean(trimmed)
	if runtime.GOOS == "windows" {
		cleaned = strings.TrimPrefix(cleaned, `\\?\`)
		cleaned = strings.ToLower(cleaned)
	}
	return cleaned
}
