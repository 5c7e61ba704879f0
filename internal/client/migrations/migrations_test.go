package migrations

import (
	"io/fs"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMigrations_Embedded(t *testing.T) {
	names, err := fs.Glob(Migrations, "*.sql")
	require.NoError(t, err)
	require.Equal(t, []string{"00001_create_metadata.sql"}, names)

	b, err := fs.ReadFile(Migrations, names[0])
	require.NoError(t, err)
	require.True(t, strings.Contains(string(b), "-- +goose Up"))
	require.True(t, strings.Contains(string(b), "-- +goose Down"))
}
