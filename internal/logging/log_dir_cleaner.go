package logging

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
)

const logDirCleanerInterval = time.Minute

var stopCleaner context.CancelFunc

func startLogDirCleanerLocked(logDir string, maxTotalSizeMB int, keepPath string) {
	stopLogDirCleanerLocked()

	dir := strings.TrimSpace(logDir)
	if maxTotalSizeMB <= 0 || dir == "" {
		return
	}
	limit := int64(maxTotalSizeMB) << 20

	ctx, cancel := context.WithCancel(context.Background())
	stopCleaner = cancel
	go func() {
		ticker := time.NewTicker(logDirCleanerInterval)
		defer ticker.Stop()
		for {
			if removed, err := pruneLogDir(filepath.Clean(dir), limit, keepPath); err != nil {
				log.WithError(err).Warn("logging: failed to prune log directory")
			} else if removed > 0 {
				log.Debugf("logging: pruned %d old log file(s)", removed)
			}
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
		}
	}()
}

func stopLogDirCleanerLocked() {
	if stopCleaner != nil {
		stopCleaner()
		stopCleaner = nil
	}
}

// pruneLogDir removes the oldest rotated log files in dir until their combined size fits
// within limit. keepPath is never removed. It returns the number of files deleted.
func pruneLogDir(dir string, limit int64, keepPath string) (int, error) {
	if limit <= 0 || dir == "" {
		return 0, nil
	}
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	if keepPath != "" {
		keepPath = filepath.Clean(keepPath)
	}

	var candidates []os.FileInfo
	var total int64
	for _, entry := range entries {
		if entry.IsDir() || !rotatedLogName(entry.Name()) {
			continue
		}
		info, errInfo := entry.Info()
		if errInfo != nil || !info.Mode().IsRegular() {
			continue
		}
		candidates = append(candidates, info)
		total += info.Size()
	}
	if total <= limit {
		return 0, nil
	}

	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].ModTime().Before(candidates[j].ModTime())
	})

	removed := 0
	for _, info := range candidates {
		if total <= limit {
			break
		}
		path := filepath.Join(dir, info.Name())
		if path == keepPath {
			continue
		}
		if errRemove := os.Remove(path); errRemove != nil {
			log.WithError(errRemove).Warnf("logging: failed to remove %s", info.Name())
			continue
		}
		total -= info.Size()
		removed++
	}
	return removed, nil
}

func rotatedLogName(name string) bool {
	name = strings.ToLower(strings.TrimSpace(name))
	return strings.HasSuffix(name, ".log") || strings.HasSuffix(name, ".log.gz")
}
