package database

import (
	"context"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestMigrator_RunMigrations(t *testing.T) {
	logger := zap.NewNop()
	db, err := New(Config{Path: filepath.Join(t.TempDir(), "data", "rendicion.db")}, logger)
	require.NoError(t, err)
	defer db.Close()

	m := NewMigrator(db, logger)
	require.NoError(t, m.RunMigrations(Migrations, MigrationsDir))
	// a second run skips everything already applied
	require.NoError(t, m.RunMigrations(Migrations, MigrationsDir))

	var count int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&count))
	assert.Equal(t, 2, count)

	for _, table := range []string{"trip_expenses", "trip_approvals"} {
		var name string
		err := db.QueryRow("SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?", table).Scan(&name)
		require.NoError(t, err, table)
	}

	assert.NoError(t, db.Health(context.Background()))
}

func TestLoadMigrations(t *testing.T) {
	t.Run("sorted by version", func(t *testing.T) {
		fsys := fstest.MapFS{
			"m/010_later.sql":   {Data: []byte("SELECT 10;")},
			"m/002_second.sql":  {Data: []byte("SELECT 2;")},
			"m/notes.txt":       {Data: []byte("ignored")},
			"m/sub/003_x.sql":   {Data: []byte("ignored")},
			"other/001_one.sql": {Data: []byte("ignored")},
		}
		got, err := LoadMigrations(fsys, "m")
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, Migration{Version: 2, Name: "second", SQL: "SELECT 2;"}, got[0])
		assert.Equal(t, 10, got[1].Version)
		assert.Equal(t, "later", got[1].Name)
	})

	t.Run("embedded schema", func(t *testing.T) {
		got, err := LoadMigrations(Migrations, MigrationsDir)
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, "trip_expenses", got[0].Name)
		assert.Equal(t, "trip_approvals", got[1].Name)
	})

	errorCases := []struct {
		name string
		fsys fstest.MapFS
	}{
		{"duplicate version", fstest.MapFS{"m/001_a.sql": {}, "m/1_b.sql": {}}},
		{"no version", fstest.MapFS{"m/init.sql": {}}},
		{"zero version", fstest.MapFS{"m/000_init.sql": {}}},
	}
	for _, tt := range errorCases {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadMigrations(tt.fsys, "m")
			assert.Error(t, err)
		})
	}
}

func TestMigrator_AppliesOnlyNewFiles(t *testing.T) {
	logger := zap.NewNop()
	db, err := New(Config{Path: filepath.Join(t.TempDir(), "schema.db")}, logger)
	require.NoError(t, err)
	defer db.Close()

	fsys := fstest.MapFS{"m/001_notes.sql": {Data: []byte("CREATE TABLE notes (id INTEGER PRIMARY KEY);")}}
	m := NewMigrator(db, logger)
	require.NoError(t, m.RunMigrations(fsys, "m"))

	fsys["m/002_tags.sql"] = &fstest.MapFile{Data: []byte("CREATE TABLE tags (id INTEGER PRIMARY KEY);")}
	require.NoError(t, m.RunMigrations(fsys, "m"))

	var count int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&count))
	assert.Equal(t, 2, count)

	fsys["m/003_broken.sql"] = &fstest.MapFile{Data: []byte("CREATE TABLEX nope;")}
	assert.Error(t, m.RunMigrations(fsys, "m"))
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&count))
	assert.Equal(t, 2, count)
}

func TestNew_RequiresPath(t *testing.T) {
	_, err := New(Config{}, zap.NewNop())
	assert.Error(t, err)
}
