package cmd

import (
	"fmt"
	"strings"

	"github.com/stackit-qa/stackit-client/internal/misc"
)

// DoInitConfig writes the annotated example configuration to path unless a file exists there.
func DoInitConfig(path string, options *Options) error {
	path = strings.TrimSpace(path)
	if path == "" {
		return fmt.Errorf("init config: -config path is required")
	}
	created, err := misc.WriteConfigTemplate(path)
	if err != nil {
		return err
	}
	if created {
		_, _ = fmt.Fprintf(options.out(), "Wrote example configuration to %s\n", path)
	} else {
		_, _ = fmt.Fprintf(options.out(), "%s already exists, left unchanged\n", path)
	}
	return nil
}
