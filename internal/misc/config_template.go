package misc

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	log "github.com/sirupsen/logrus"
)

//go:embed config.example.yaml
var configTemplate []byte

// ConfigTemplate returns the annotated example configuration.
func ConfigTemplate() []byte {
	return append([]byte(nil), configTemplate...)
}

// WriteConfigTemplate writes the example configuration to dst. An existing file is left
// untouched and reported with created == false.
func WriteConfigTemplate(dst string) (created bool, err error) {
	if err = os.MkdirAll(filepath.Dir(dst), 0o700); err != nil {
		return false, fmt.Errorf("config template: create directory: %w", err)
	}
	out, err := os.OpenFile(dst, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
	if errors.Is(err, os.ErrExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("config template: open %s: %w", dst, err)
	}
	defer func() {
		if errClose := out.Close(); errClose != nil {
			log.WithError(errClose).Warn("failed to close config file")
		}
	}()

	if _, err = out.Write(configTemplate); err != nil {
		return false, fmt.Errorf("config template: write %s: %w", dst, err)
	}
	return true, out.Sync()
}
