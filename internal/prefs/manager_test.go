package prefs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileGivesDefaults(t *testing.T) {
	m := NewManager(filepath.Join(t.TempDir(), "prefs.json"))

	p, err := m.Load()

	require.NoError(t, err)
	assert.Empty(t, p.VisibleColumns)
}

func TestSaveThenLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "prefs.json")
	m := NewManager(path)

	require.NoError(t, m.Save(Preferences{VisibleColumns: []string{"time", "bucket"}, Server: "http://localhost:8080"}))

	p, err := NewManager(path).Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"time", "bucket"}, p.VisibleColumns)
	assert.Equal(t, "http://localhost:8080", p.Server)
	_, err = os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err))
}

func TestLoadCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	_, err := NewManager(path).Load()

	assert.Error(t, err)
}
