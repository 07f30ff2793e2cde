package migrations

import (
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFS_ContainsBothDialects(t *testing.T) {
	for _, dir := range []string{SQLiteDir, PostgresDir} {
		files, err := fs.Glob(FS, dir+"/*.sql")
		require.NoError(t, err)
		assert.NotEmpty(t, files, dir)
	}
}

func TestFS_GooseAnnotations(t *testing.T) {
	b, err := fs.ReadFile(FS, SQLiteDir+"/00001_init.sql")
	require.NoError(t, err)
	assert.Contains(t, string(b), "-- +goose Up")
	assert.Contains(t, string(b), "-- +goose Down")
}
