package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
env: local
database:
  driver: SQLite
  dsn: "file::memory:"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, DriverSQLite, cfg.Database.Driver)
	assert.Equal(t, ":8080", cfg.HTTP.Address)
	assert.Equal(t, []string{"*"}, cfg.HTTP.AllowedOrigins)
	assert.Equal(t, 7*24*time.Hour, cfg.Auth.SessionTTL)
	assert.Equal(t, time.Second, cfg.QR.Tick)
	assert.Equal(t, "/metrics", cfg.Metrics.Path)

	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, "Asia/Jakarta", loc.String())
}

func TestLoadRejectsInvalid(t *testing.T) {
	cases := map[string]string{
		"driver": `
database:
  driver: mysql
  dsn: x
`,
		"dsn": `
database:
  driver: sqlite
`,
		"prod secret": `
env: prod
database:
  driver: postgres
  dsn: postgres://localhost/presensi
`,
		"timezone": `
timezone: Mars/Olympus
database:
  driver: sqlite
  dsn: x
`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeConfig(t, body))
			assert.Error(t, err)
		})
	}

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestResolvePath(t *testing.T) {
	t.Setenv("CONFIG_PATH", "/etc/presensi.yaml")
	assert.Equal(t, "flag.yaml", ResolvePath(" flag.yaml "))
	assert.Equal(t, "/etc/presensi.yaml", ResolvePath(""))

	t.Setenv("CONFIG_PATH", "")
	assert.Equal(t, "config/local.yaml", ResolvePath(""))
}
