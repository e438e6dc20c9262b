package migrations

import (
	"bytes"
	"io/fs"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestNewMigratorTagsComponentOnce(t *testing.T) {
	var buf bytes.Buffer
	m := NewMigrator(nil, zerolog.New(&buf))

	m.log.Info().Msg("applied")
	require.Equal(t, 1, strings.Count(buf.String(), `"component"`))
	require.Contains(t, buf.String(), `"component":"migrator"`)
}

func TestEmbeddedMigrationsAreOrdered(t *testing.T) {
	names, err := fs.Glob(Embedded(), "*.sql")
	require.NoError(t, err)
	require.NotEmpty(t, names)
	require.Equal(t, "001_create_schools.sql", names[0])
}
