// config_reload.go implements debounced configuration hot reload.
package watcher

import (
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/stackit-qa/stackit-client/internal/config"
	"github.com/stackit-qa/stackit-client/internal/util"
)

func (w *Watcher) scheduleConfigReload() {
	w.timerMu.Lock()
	defer w.timerMu.Unlock()
	if w.configReloadTimer != nil {
		w.configReloadTimer.Stop()
	}
	w.configReloadTimer = time.AfterFunc(configReloadDebounce, func() {
		w.timerMu.Lock()
		w.configReloadTimer = nil
		w.timerMu.Unlock()
		w.reloadConfigIfChanged()
	})
}

func (w *Watcher) reloadConfigIfChanged() {
	newHash, err := fileHash(w.configPath)
	if err != nil {
		log.Errorf("failed to read config file for hash check: %v", err)
		return
	}
	if newHash == "" {
		log.Debugf("ignoring config event for missing file")
		return
	}
	w.mu.RLock()
	currentHash := w.lastConfigHash
	w.mu.RUnlock()
	if currentHash != "" && currentHash == newHash {
		log.Debugf("config file content unchanged (hash match), skipping reload")
		return
	}
	log.Infof("config file changed, reloading: %s", w.configPath)
	if w.reloadConfig() {
		w.mu.Lock()
		w.lastConfigHash = newHash
		w.mu.Unlock()
	}
}

func (w *Watcher) reloadConfig() bool {
	newConfig, errLoadConfig := config.LoadConfig(w.configPath)
	if errLoadConfig != nil {
		log.Errorf("failed to reload config: %v", errLoadConfig)
		return false
	}

	w.mu.Lock()
	oldConfig := w.config
	w.config = newConfig
	w.mu.Unlock()

	util.SetLogLevel(newConfig)
	if oldConfig != nil && oldConfig.Debug != newConfig.Debug {
		log.Debugf("log level updated - debug mode changed from %t to %t", oldConfig.Debug, newConfig.Debug)
	}
	if oldConfig != nil && oldConfig.BaseURL != newConfig.BaseURL {
		log.Warnf("base-url changed from %s to %s; restart to apply", oldConfig.BaseURL, newConfig.BaseURL)
	}
	if w.configCallback != nil {
		w.configCallback(newConfig)
	}
	return true
}
