package misc

import (
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestEnsureHeader(t *testing.T) {
	tests := []struct {
		name     string
		target   http.Header
		source   http.Header
		fallback string
		want     string
	}{
		{name: "default", target: http.Header{}, fallback: "app", want: "app"},
		{name: "existing kept", target: http.Header{"User-Agent": {"mine"}}, fallback: "app", want: "mine"},
		{name: "source wins", target: http.Header{"User-Agent": {"mine"}}, source: http.Header{"User-Agent": {"src"}}, fallback: "app", want: "src"},
		{name: "blank default", target: http.Header{}, fallback: "  ", want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			EnsureHeader(tt.target, tt.source, "User-Agent", tt.fallback)
			require.Equal(t, tt.want, tt.target.Get("User-Agent"))
		})
	}
	EnsureHeader(nil, nil, "User-Agent", "app")
}

func TestWriteConfigTemplate(t *testing.T) {
	dst := filepath.Join(t.TempDir(), "nested", "config.yaml")

	created, err := WriteConfigTemplate(dst)
	require.NoError(t, err)
	require.True(t, created)

	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	var parsed map[string]any
	require.NoError(t, yaml.Unmarshal(data, &parsed))
	require.Equal(t, "http://localhost:8000/api", parsed["base-url"])

	require.NoError(t, os.WriteFile(dst, []byte("base-url: http://example.test\n"), 0o600))
	created, err = WriteConfigTemplate(dst)
	require.NoError(t, err)
	require.False(t, created)
	data, _ = os.ReadFile(dst)
	require.Equal(t, "base-url: http://example.test\n", string(data))
}
