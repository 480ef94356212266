package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseManifest(t *testing.T) {
	m, err := parseManifest([]byte(`
type: GBindingGroup
properties:
  name: widget
  count: 3
  ratio: 0.5
  visible: true
`))
	require.NoError(t, err)
	assert.Equal(t, "GBindingGroup", m.Type)
	assert.Equal(t, []string{"count", "name", "ratio", "visible"}, m.PropertyNames())
	assert.Equal(t, "widget", m.Properties["name"])
	assert.Equal(t, 3, m.Properties["count"])
	assert.Equal(t, 0.5, m.Properties["ratio"])
	assert.Equal(t, true, m.Properties["visible"])
}

func TestParseManifestWithoutProperties(t *testing.T) {
	m, err := parseManifest([]byte("type: GObject\n"))
	require.NoError(t, err)
	assert.Empty(t, m.PropertyNames())
}

func TestParseManifestRejects(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want string
	}{
		{"empty", "", "empty manifest"},
		{"not yaml", "type: [unclosed", "invalid YAML"},
		{"missing type", "properties:\n  a: 1\n", "type"},
		{"empty type", "type: \"\"\n", "type"},
		{"unknown key", "type: GObject\nsignals: {}\n", "signals"},
		{"nested value", "type: GObject\nproperties:\n  a:\n    b: 1\n", "properties.a"},
		{"bad property name", "type: GObject\nproperties:\n  \"1abc\": 1\n", "invalid manifest"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseManifest([]byte(tt.doc))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadManifest(t *testing.T) {
	path := filepath.Join(t.TempDir(), "obj.yaml")
	require.NoError(t, os.WriteFile(path, []byte("type: GObject\n"), 0o644))

	m, err := loadManifest(path)
	require.NoError(t, err)
	assert.Equal(t, "GObject", m.Type)

	_, err = loadManifest(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
