package sqlitemigrate

import (
	"context"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyMigrations_RunsOnce(t *testing.T) {
	ctx := context.Background()
	migrations := fstest.MapFS{
		"001_init.sql": {Data: []byte("-- +migrate Up\nCREATE TABLE things (id INTEGER PRIMARY KEY);\n-- +migrate Down\nDROP TABLE things;\n")},
		"002_seed.sql": {Data: []byte("INSERT INTO things (id) VALUES (1);")},
	}

	db, err := Open(ctx, filepath.Join(t.TempDir(), "test.db"), migrations)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, ApplyMigrations(ctx, db, migrations, "."))

	var count int
	require.NoError(t, db.QueryRowContext(ctx, "SELECT COUNT(*) FROM things").Scan(&count))
	assert.Equal(t, 1, count, "seed migration must not run twice")
}

func TestExtractUpMigration(t *testing.T) {
	assert.Equal(t, "\nA\n", ExtractUpMigration("-- +migrate Up\nA\n-- +migrate Down\nB"))
	assert.Equal(t, "plain", ExtractUpMigration("plain"))
}

func TestOpen_RequiresPath(t *testing.T) {
	_, err := Open(context.Background(), " ", fstest.MapFS{})
	require.Error(t, err)
}
