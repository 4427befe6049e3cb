package prefs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "settings.yaml")

	s := NewStore(path, nil)
	require.NoError(t, s.Load(), "missing file is fine")

	assert.True(t, s.SetNightMode("42", true))
	assert.False(t, s.SetNightMode("42", true), "unchanged")
	assert.True(t, s.SetFluidWidth("iago@example.com", true))
	s.Wait()

	loaded := NewStore(path, nil)
	require.NoError(t, loaded.Load())

	assert.Equal(t, Settings{NightMode: true}, loaded.Get("42"))
	assert.Equal(t, Settings{FluidWidth: true}, loaded.Get("iago@example.com"))
	assert.Equal(t, Settings{}, loaded.Get("unknown"))
	assert.Len(t, loaded.All(), 2)
}

func TestStoreFileLayout(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")

	s := NewStore(path, nil)
	s.SetNightMode("7", true)
	s.Wait()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "key: \"7\"")
	assert.Contains(t, string(data), "night_mode: true")
	assert.Contains(t, string(data), "fluid_width: false")
}

func TestStoreLoadInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	require.NoError(t, os.WriteFile(path, []byte("settings: [oops"), 0644))

	err := NewStore(path, nil).Load()
	assert.Error(t, err)
}

func TestStoreInMemory(t *testing.T) {
	s := NewStore("", nil)
	require.NoError(t, s.Load())

	s.SetFluidWidth("a", true)
	s.SetFluidWidth("a", false)
	s.Wait()

	assert.Equal(t, Settings{}, s.Get("a"))
	require.NoError(t, s.Save())
}
