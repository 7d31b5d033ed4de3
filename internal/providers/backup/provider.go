// Package backup implements database snapshot and restore for the
// single-file application database.
//
// Artifacts are byte-for-byte copies named backup-<timestamp>.db under
// the Backups root. Restore takes a safety copy of the live database
// first and rolls back to it if the overwrite fails.
package backup

import (
	"context"
	"fmt"

	"github.com/pbs-admin/backend/internal/shared/errs"
	"github.com/pbs-admin/backend/internal/shared/types"
)

// Provider exposes the backup manager as frontend-callable tools.
type Provider struct {
	manager *Manager
}

// NewProvider creates a backup provider around manager.
func NewProvider(manager *Manager) *Provider {
	return &Provider{manager: manager}
}

// Definition returns service metadata
func (p *Provider) Definition() types.Service {
	return types.Service{
		ID:          "backup",
		Name:        "Backup Service",
		Description: "Database snapshot, restore, and retention management",
		Category:    types.CategoryBackup,
		Capabilities: []string{
			"create",
			"list",
			"restore",
			"delete",
		},
		Tools: []types.Tool{
			{
				ID:          "backup.create",
				Name:        "Create Backup",
				Description: "Snapshot the database into a timestamped backup file",
				Parameters:  []types.Parameter{},
				Returns:     "object",
			},
			{
				ID:          "backup.list",
				Name:        "List Backups",
				Description: "List backup files, newest first",
				Parameters:  []types.Parameter{},
				Returns:     "array",
			},
			{
				ID:          "backup.restore",
				Name:        "Restore Backup",
				Description: "Overwrite the database with a backup file, rolling back on failure",
				Parameters: []types.Parameter{
					{Name: "path", Type: "string", Description: "Backup file path", Required: true},
				},
				Returns: "object",
			},
			{
				ID:          "backup.delete",
				Name:        "Delete Backup",
				Description: "Delete a backup file",
				Parameters: []types.Parameter{
					{Name: "path", Type: "string", Description: "Backup file path", Required: true},
				},
				Returns: "boolean",
			},
		},
	}
}

// Execute runs a backup operation
func (p *Provider) Execute(ctx context.Context, toolID string, params map[string]interface{}) (*types.Result, error) {
	switch toolID {
	case "backup.create":
		return p.create()
	case "backup.list":
		return p.list()
	case "backup.restore":
		return p.restore(params)
	case "backup.delete":
		return p.delete(params)
	default:
		return failure(errs.New(errs.InvalidPath, "backup", toolID, fmt.Sprintf("unknown tool: %s", toolID)))
	}
}

func (p *Provider) create() (*types.Result, error) {
	artifact, err := p.manager.Create()
	if err != nil {
		return failure(err)
	}
	return success(map[string]interface{}{
		"name":    artifact.Name,
		"path":    artifact.Path,
		"size":    artifact.Size,
		"created": artifact.Created,
	})
}

func (p *Provider) list() (*types.Result, error) {
	artifacts, err := p.manager.List()
	if err != nil {
		return failure(err)
	}
	return success(map[string]interface{}{
		"backups": artifacts,
		"count":   len(artifacts),
	})
}

func (p *Provider) restore(params map[string]interface{}) (*types.Result, error) {
	path, ok := params["path"].(string)
	if !ok || path == "" {
		return failure(errs.New(errs.InvalidPath, "backup.restore", "", "path parameter required"))
	}

	if err := p.manager.Restore(path); err != nil {
		return failure(err)
	}
	return success(map[string]interface{}{
		"restored": true,
		"path":     path,
		"database": p.manager.DatabasePath(),
	})
}

func (p *Provider) delete(params map[string]interface{}) (*types.Result, error) {
	path, ok := params["path"].(string)
	if !ok || path == "" {
		return failure(errs.New(errs.InvalidPath, "backup.delete", "", "path parameter required"))
	}

	if err := p.manager.Delete(path); err != nil {
		return failure(err)
	}
	return success(map[string]interface{}{"deleted": true, "path": path})
}

func success(data map[string]interface{}) (*types.Result, error) {
	return &types.Result{Success: true, Data: data}, nil
}

func failure(err error) (*types.Result, error) {
	msg := err.Error()
	return &types.Result{
		Success: false,
		Error:   &msg,
		Code:    string(errs.CodeOf(err)),
	}, nil
}
