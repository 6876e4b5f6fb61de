package files_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/wormwatch/wormwatch-cli/files"
)

func TestExists(t *testing.T) {
	dir := t.TempDir()
	name := filepath.Join(dir, "present.json")
	err := os.WriteFile(name, []byte(`{}`), 0600)
	assert.NoError(t, err)

	exists, err := files.Exists(name)
	assert.NoError(t, err)
	assert.True(t, exists)

	exists, err = files.Exists(dir, "absent.json")
	assert.NoError(t, err)
	assert.False(t, exists)

	// Directories are not regular files.
	exists, err = files.Exists(dir)
	assert.NoError(t, err)
	assert.False(t, exists)
}

func TestExistsWithMissingParent(t *testing.T) {
	exists, err := files.Exists(filepath.Join(t.TempDir(), "no", "such", "parent.json"))
	assert.NoError(t, err)
	assert.False(t, exists)
}

func TestReadJSON(t *testing.T) {
	dir := t.TempDir()
	name := filepath.Join(dir, "doc.json")
	err := os.WriteFile(name, []byte(`{"version": "1.2.3"}`), 0600)
	assert.NoError(t, err)

	var doc struct {
		Version string `json:"version"`
	}
	err = files.ReadJSON(&doc, name)
	assert.NoError(t, err)
	assert.Equal(t, "1.2.3", doc.Version)
}

func TestReadYAML(t *testing.T) {
	dir := t.TempDir()
	name := filepath.Join(dir, "doc.yaml")
	err := os.WriteFile(name, []byte("version: 1.2.3\n"), 0600)
	assert.NoError(t, err)

	var doc struct {
		Version string `yaml:"version"`
	}
	err = files.ReadYAML(&doc, name)
	assert.NoError(t, err)
	assert.Equal(t, "1.2.3", doc.Version)
}

func TestReadJSONMalformed(t *testing.T) {
	dir := t.TempDir()
	name := filepath.Join(dir, "doc.json")
	err := os.WriteFile(name, []byte(`{"version": `), 0600)
	assert.NoError(t, err)

	var doc map[string]interface{}
	err = files.ReadJSON(&doc, name)
	assert.Error(t, err)
}
