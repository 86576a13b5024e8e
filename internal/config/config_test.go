package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func env(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, BackendSQLite, cfg.Backend)
	assert.Equal(t, "juno.db", filepath.Base(cfg.DBPath))
	assert.Equal(t, "juno.json", filepath.Base(cfg.FilePath))
	assert.Equal(t, filepath.Dir(cfg.DBPath), filepath.Dir(cfg.FilePath))
	assert.NotEmpty(t, cfg.Owner)
	require.NoError(t, cfg.Validate())
}

func TestLoadFrom_Overrides(t *testing.T) {
	cfg := LoadFrom(env(map[string]string{
		"JUNO_BACKEND":      " FILE ",
		"JUNO_DB":           "/tmp/a.db",
		"JUNO_FILE":         "/tmp/a.json",
		"JUNO_OWNER":        " carol ",
		"JUNO_LOG_USECASES": "1",
	}))

	assert.Equal(t, BackendFile, cfg.Backend)
	assert.Equal(t, "/tmp/a.db", cfg.DBPath)
	assert.Equal(t, "/tmp/a.json", cfg.FilePath)
	assert.Equal(t, "/tmp/a.json", cfg.StoragePath())
	assert.Equal(t, "carol", cfg.Owner)
	assert.True(t, cfg.LogUseCases)
}

func TestLoadFrom_InvalidBoolIgnored(t *testing.T) {
	cfg := LoadFrom(env(map[string]string{"JUNO_LOG_USECASES": "sure"}))
	assert.False(t, cfg.LogUseCases)
}

func TestLoadConfig_ReadsProcessEnv(t *testing.T) {
	t.Setenv("JUNO_OWNER", "dave")
	assert.Equal(t, "dave", LoadConfig().Owner)
}

func TestValidate(t *testing.T) {
	base := Config{Backend: BackendSQLite, DBPath: "x.db", FilePath: "x.json", Owner: "o"}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"ok", func(c *Config) {}, ""},
		{"unknown backend", func(c *Config) { c.Backend = "firestore" }, "unknown backend"},
		{"sqlite without path", func(c *Config) { c.DBPath = "" }, "database path"},
		{"file without path", func(c *Config) { c.Backend = BackendFile; c.FilePath = "" }, "file path"},
		{"blank owner", func(c *Config) { c.Owner = " " }, "owner"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := base
			tt.mutate(&c)
			err := c.Validate()
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
