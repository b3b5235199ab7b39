package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nonibytes/searchable/searchable/storage"
	"github.com/nonibytes/searchable/searchable/storage/sqlbuilder"
)

func TestConfigSearchPath(t *testing.T) {
	a := New("postgres://u:p@localhost:5432/app", "search")
	cfg, err := a.Config()
	require.NoError(t, err)
	assert.Equal(t, `"search",public`, cfg.RuntimeParams["search_path"])
	assert.Equal(t, "app", cfg.Database)
}

func TestConfigWithoutSchema(t *testing.T) {
	cfg, err := New("postgres://u:p@localhost:5432/app", "").Config()
	require.NoError(t, err)
	_, ok := cfg.RuntimeParams["search_path"]
	assert.False(t, ok)
}

func TestConfigRejectsBadSchema(t *testing.T) {
	_, err := New("postgres://u:p@localhost:5432/app", `x"; drop`).Config()
	require.Error(t, err)
}

func TestAdapterDescribesBackend(t *testing.T) {
	var a storage.Adapter = New("", "")
	assert.Equal(t, storage.BackendPostgres, a.Backend())
	assert.Equal(t, "pgsql", a.Dialect())
	assert.Equal(t, sqlbuilder.PlaceholderDollar, a.PlaceholderStyle())
}
