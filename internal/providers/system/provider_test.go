package system

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pbs-admin/backend/internal/shared/paths"
)

func newTestProvider(t *testing.T) *Provider {
	t.Helper()
	dir := t.TempDir()
	return NewProvider(paths.Roots{
		Data:    dir,
		Backups: dir + "/missing",
		Scratch: dir,
	}, nil)
}

func TestDefinition(t *testing.T) {
	p := newTestProvider(t)
	def := p.Definition()

	assert.Equal(t, "system", def.ID)

	ids := make([]string, len(def.Tools))
	for i, tool := range def.Tools {
		ids[i] = tool.ID
	}
	assert.Contains(t, ids, "system.info")
	assert.Contains(t, ids, "system.time")
	assert.Contains(t, ids, "system.roots")
	assert.Contains(t, ids, "system.log")
	assert.Contains(t, ids, "system.ping")
}

func TestInfo(t *testing.T) {
	p := newTestProvider(t)

	result, err := p.Execute(context.Background(), "system.info", nil)
	require.NoError(t, err)
	require.True(t, result.Success)

	assert.NotEmpty(t, result.Data["go_version"])
	assert.NotEmpty(t, result.Data["os"])
}

func TestRootsReportsExistence(t *testing.T) {
	p := newTestProvider(t)

	result, err := p.Execute(context.Background(), "system.roots", nil)
	require.NoError(t, err)
	require.True(t, result.Success)

	data := result.Data["data"].(map[string]interface{})
	backups := result.Data["backups"].(map[string]interface{})
	assert.True(t, data["exists"].(bool))
	assert.False(t, backups["exists"].(bool))
}

func TestLogRequiresMessage(t *testing.T) {
	p := newTestProvider(t)

	result, err := p.Execute(context.Background(), "system.log", map[string]interface{}{})
	require.NoError(t, err)
	assert.False(t, result.Success)

	result, err = p.Execute(context.Background(), "system.log", map[string]interface{}{
		"message": "hello",
		"level":   "warn",
	})
	require.NoError(t, err)
	assert.True(t, result.Success)
}

func TestPing(t *testing.T) {
	p := newTestProvider(t)

	result, err := p.Execute(context.Background(), "system.ping", nil)
	require.NoError(t, err)
	require.True(t, result.Success)
	assert.Equal(t, true, result.Data["pong"])
}

func TestUnknownTool(t *testing.T) {
	p := newTestProvider(t)

	result, err := p.Execute(context.Background(), "system.reboot", nil)
	require.NoError(t, err)
	assert.False(t, result.Success)
}
