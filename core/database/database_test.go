package database

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigNormalizeDefaults(t *testing.T) {
	cfg := Config{User: "kuaf", Name: "survey"}
	require.NoError(t, cfg.Normalize())
	assert.Equal(t, "localhost", cfg.Host)
	assert.Equal(t, "5432", cfg.Port)
	assert.Equal(t, "disable", cfg.SSLMode)
	assert.Equal(t, 10, cfg.MaxConnections)
	assert.Equal(t, "migrations", cfg.MigrationsDir)

	missing := Config{User: "kuaf"}
	if err := missing.Normalize(); err == nil {
		t.Fatalf("expected error for missing database name")
	}
}

func TestDSNAndURL(t *testing.T) {
	cfg := Config{Host: "db", Port: "5433", User: "kuaf", Password: "p@ss word", Name: "survey", SSLMode: "disable"}
	assert.Equal(t, "user=kuaf password='p@ss word' host=db port=5433 dbname=survey sslmode=disable", cfg.DSN())
	assert.Equal(t, "postgres://kuaf:p%40ss%20word@db:5433/survey?sslmode=disable", cfg.URL())

	cfg.Password = ""
	assert.Contains(t, cfg.DSN(), "password=''")
}

func TestMigrationFileSelection(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{
		"000002_staff.up.sql", "000001_init.up.sql", "000001_init.down.sql", "000003_idx.up.sql", "README.md",
	} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("--"), 0o644))
	}
	files := listMigrationFiles(dir)
	assert.Equal(t, []string{"000001_init.up.sql", "000002_staff.up.sql", "000003_idx.up.sql"}, files)
	assert.Equal(t, uint64(2), parseVersion("000002_staff.up.sql"))
	assert.Equal(t, []string{"000002_staff.up.sql", "000003_idx.up.sql"}, selectApplied(files, 1, 3))
	assert.Empty(t, selectApplied(files, 3, 3))
}
