package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	// t.Setenv registers restoration; the vars must then be truly unset,
	// since an empty-but-set value is not the same as absent.
	for _, key := range []string{"TEND_DATA_DIR", "TEND_LOCALE", "TEND_DEVICE", "TEND_SEASONAL", "TEND_CATALOG"} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ".tend", filepath.Base(cfg.DataDir))
	assert.Equal(t, "en", cfg.Locale)
	assert.False(t, cfg.Seasonal)
	assert.Empty(t, cfg.Catalog)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("TEND_DATA_DIR", "/var/lib/tend")
	t.Setenv("TEND_LOCALE", "ru")
	t.Setenv("TEND_DEVICE", "laptop")
	t.Setenv("TEND_SEASONAL", "true")
	t.Setenv("TEND_CATALOG", "/etc/tend/catalog.yaml")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "/var/lib/tend", cfg.DataDir)
	assert.Equal(t, "ru", cfg.Locale)
	assert.Equal(t, "laptop", cfg.Device)
	assert.True(t, cfg.Seasonal)
	assert.Equal(t, "/etc/tend/catalog.yaml", cfg.Catalog)
}

func TestLoadBadBool(t *testing.T) {
	t.Setenv("TEND_SEASONAL", "maybe")

	_, err := Load()
	assert.Error(t, err)
}
