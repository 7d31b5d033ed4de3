package backup

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProviderDefinition(t *testing.T) {
	p := NewProvider(newTestManager(t))
	def := p.Definition()

	assert.Equal(t, "backup", def.ID)
	require.Len(t, def.Tools, 4)

	ids := make(map[string]bool)
	for _, tool := range def.Tools {
		ids[tool.ID] = true
		assert.NotEmpty(t, tool.Description)
	}
	assert.True(t, ids["backup.create"])
	assert.True(t, ids["backup.list"])
	assert.True(t, ids["backup.restore"])
	assert.True(t, ids["backup.delete"])
}

func TestProviderCreateAndList(t *testing.T) {
	p := NewProvider(newTestManager(t))
	ctx := context.Background()

	result, err := p.Execute(ctx, "backup.create", nil)
	require.NoError(t, err)
	require.True(t, result.Success)
	assert.Equal(t, "backup-2024-03-15-103000.db", result.Data["name"])

	result, err = p.Execute(ctx, "backup.list", nil)
	require.NoError(t, err)
	require.True(t, result.Success)
	assert.Equal(t, 1, result.Data["count"])
}

func TestProviderRestoreCarriesErrorCode(t *testing.T) {
	m := newTestManager(t)
	p := NewProvider(m)

	result, err := p.Execute(context.Background(), "backup.restore", map[string]interface{}{
		"path": filepath.Join(m.dir, "backup-2024-01-01-000000.db"),
	})
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, "invalid_backup", result.Code)
	require.NotNil(t, result.Error)
}

func TestProviderDeleteOutsideRoot(t *testing.T) {
	m := newTestManager(t)
	p := NewProvider(m)

	outside := filepath.Join(filepath.Dir(m.DatabasePath()), "backup-2024-01-01-000000.db")
	require.NoError(t, os.WriteFile(outside, []byte("x"), 0o644))

	result, err := p.Execute(context.Background(), "backup.delete", map[string]interface{}{
		"path": outside,
	})
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, "access_denied", result.Code)
}

func TestProviderUnknownTool(t *testing.T) {
	p := NewProvider(newTestManager(t))

	result, err := p.Execute(context.Background(), "backup.nope", nil)
	require.NoError(t, err)
	assert.False(t, result.Success)
}
