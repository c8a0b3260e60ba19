package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	require.Equal(t, DefaultConfig(), cfg)
}

func TestLoadOverrides(t *testing.T) {
	require := require.New(t)

	cfg, err := Load(writeConfig(t, `
server:
  http_port: 9000
database:
  driver: postgres
  url: postgres://grade@localhost/grade
model:
  enabled: true
  retrain_every: 25
scoring:
  thresholds:
    excellent: 0.9
    good: 0.75
    acceptable: 0.6
  known_uploaders: [trusted]
log:
  level: debug
`))
	require.NoError(err)

	require.Equal(9000, cfg.Server.HTTPPort)
	require.Equal(9777, cfg.Server.MetricsPort)
	require.Equal("postgres", cfg.Database.Driver)
	require.True(cfg.Model.Enabled)
	require.Equal(25, cfg.Model.RetrainEvery)
	require.Equal(10, cfg.Model.MinFeedback)
	require.Equal(0.9, cfg.Scoring.Thresholds.Excellent)
	require.Equal([]string{"trusted"}, cfg.Scoring.KnownUploaders)
	// untouched lists keep their defaults
	require.Contains(cfg.Scoring.ReleaseGroups, "RARBG")

	level, err := cfg.LogLevel()
	require.NoError(err)
	require.Equal(slog.LevelDebug, level)
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"unknown driver", "database:\n  driver: mysql\n"},
		{"postgres without url", "database:\n  driver: postgres\n"},
		{"unordered thresholds", "scoring:\n  thresholds:\n    excellent: 0.5\n    good: 0.7\n    acceptable: 0.6\n"},
		{"bad log level", "log:\n  level: loud\n"},
		{"bad yaml", "server: [\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			require.Error(t, err)
		})
	}
}

func TestEnsureDirectories(t *testing.T) {
	root := t.TempDir()
	cfg := DefaultConfig()
	cfg.Database.Path = filepath.Join(root, "db", "grade.db")
	cfg.Model.Enabled = true
	cfg.Model.Path = filepath.Join(root, "models")

	require.NoError(t, cfg.EnsureDirectories())
	require.DirExists(t, filepath.Join(root, "db"))
	require.DirExists(t, cfg.Model.Path)
}
