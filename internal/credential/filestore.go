package credential

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// FileBackend persists each profile's pair as a JSON document on the local filesystem.
// The default profile lives in credentials.json; others in credentials-<profile>.json.
type FileBackend struct {
	mu      sync.Mutex
	baseDir string
}

// NewFileBackend creates a backend rooted at dir. The directory is created on first save.
func NewFileBackend(dir string) (*FileBackend, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return nil, fmt.Errorf("credential filestore: directory not configured")
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("credential filestore: resolve directory: %w", err)
	}
	return &FileBackend{baseDir: abs}, nil
}

// Dir returns the directory holding the credential files.
func (b *FileBackend) Dir() string { return b.baseDir }

// Path returns the file that stores profile.
func (b *FileBackend) Path(profile string) (string, error) {
	profile = strings.TrimSpace(profile)
	if profile == "" {
		return "", fmt.Errorf("credential filestore: profile is empty")
	}
	if strings.ContainsAny(profile, `/\`) || profile == "." || profile == ".." {
		return "", fmt.Errorf("credential filestore: invalid profile %q", profile)
	}
	name := "credentials.json"
	if profile != "default" {
		name = "credentials-" + profile + ".json"
	}
	return filepath.Join(b.baseDir, name), nil
}

// Load reads profile's pair. A missing or empty file yields a zero Pair.
func (b *FileBackend) Load(_ context.Context, profile string) (Pair, error) {
	path, err := b.Path(profile)
	if err != nil {
		return Pair{}, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return Pair{}, nil
	}
	if err != nil {
		return Pair{}, fmt.Errorf("credential filestore: read %s: %w", filepath.Base(path), err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return Pair{}, nil
	}
	var pair Pair
	if err = json.Unmarshal(data, &pair); err != nil {
		return Pair{}, fmt.Errorf("credential filestore: decode %s: %w", filepath.Base(path), err)
	}
	return pair, nil
}

// Save writes profile's pair atomically (temp file + rename) with 0600 permissions.
// An unchanged pair is not rewritten.
func (b *FileBackend) Save(_ context.Context, profile string, pair Pair) error {
	path, err := b.Path(profile)
	if err != nil {
		return err
	}
	raw, err := json.MarshalIndent(pair, "", "  ")
	if err != nil {
		return fmt.Errorf("credential filestore: marshal: %w", err)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if existing, errRead := os.ReadFile(path); errRead == nil && bytes.Equal(bytes.TrimSpace(existing), raw) {
		return nil
	}
	if err = os.MkdirAll(b.baseDir, 0o700); err != nil {
		return fmt.Errorf("credential filestore: create dir failed: %w", err)
	}
	tmp, err := os.CreateTemp(b.baseDir, ".credentials-*.tmp")
	if err != nil {
		return fmt.Errorf("credential filestore: create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if err = tmp.Chmod(0o600); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("credential filestore: chmod temp file: %w", err)
	}
	if _, err = tmp.Write(raw); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("credential filestore: write temp file: %w", err)
	}
	if err = tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("credential filestore: sync temp file: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("credential filestore: close temp file: %w", err)
	}
	if err = os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("credential filestore: replace %s: %w", filepath.Base(path), err)
	}
	return nil
}

// Delete removes profile's file. A missing file is not an error.
func (b *FileBackend) Delete(_ context.Context, profile string) error {
	path, err := b.Path(profile)
	if err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if err = os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("credential filestore: delete failed: %w", err)
	}
	return nil
}
