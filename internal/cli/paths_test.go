package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheDir(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "")

	dir, err := cacheDir()
	require.NoError(t, err)

	home, err := os.UserHomeDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".cache", appName), dir)
}

func TestCacheDirXDG(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "/tmp/custom-cache")

	dir, err := cacheDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/tmp/custom-cache", appName), dir)
}

func TestCacheDirFromConfig(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "/tmp/custom-cache")

	c := New(os.Stderr, LogInfo)
	c.config.Cache.Dir = "/var/cache/layouts"

	dir, err := c.cacheDir()
	require.NoError(t, err)
	assert.Equal(t, "/var/cache/layouts", dir)
}

func TestDefaultLayoutPath(t *testing.T) {
	assert.Equal(t, "out/mav.layout.json", defaultLayoutPath("out/mav.json"))
	assert.Equal(t, "report.layout.json", defaultLayoutPath("report"))
}
