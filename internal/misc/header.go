// Package misc provides small helpers shared by the client and the CLI that don't fit
// into more specific packages.
package misc

import (
	"net/http"
	"strings"
)

// EnsureHeader sets key on target unless it already carries a non-blank value. A non-blank
// value in source wins over both the existing value and defaultValue. Blank defaults are
// never written.
func EnsureHeader(target http.Header, source http.Header, key, defaultValue string) {
	if target == nil {
		return
	}
	if source != nil {
		if val := strings.TrimSpace(source.Get(key)); val != "" {
			target.Set(key, val)
			return
		}
	}
	if strings.TrimSpace(target.Get(key)) != "" {
		return
	}
	if val := strings.TrimSpace(defaultValue); val != "" {
		target.Set(key, val)
	}
}
