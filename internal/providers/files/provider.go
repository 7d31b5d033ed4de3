// Package files implements the file tools the frontend calls: text and
// binary reads/writes, folder creation, listing, deletion, downloads, and
// metadata. Every tool resolves its target through the path guard before
// touching the filesystem.
package files

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/pbs-admin/backend/internal/infrastructure/resilience"
	"github.com/pbs-admin/backend/internal/logging"
	"github.com/pbs-admin/backend/internal/shared/errs"
	"github.com/pbs-admin/backend/internal/shared/paths"
	"github.com/pbs-admin/backend/internal/shared/types"
)

// downloadTimeout bounds a single file download. Copies and local I/O
// have no timeout; only the network call does.
const downloadTimeout = 5 * time.Minute

// Provider implements guarded file operations.
type Provider struct {
	guard    *paths.Guard
	dataRoot string
	http     *resty.Client
	breaker  *resilience.Breaker
	log      *logging.Logger
}

// NewProvider creates a files provider confined to the guard's roots.
func NewProvider(guard *paths.Guard, dataRoot string, log *logging.Logger) *Provider {
	if log == nil {
		log = logging.NewNop()
	}
	return &Provider{
		guard:    guard,
		dataRoot: dataRoot,
		http:     resty.New().SetTimeout(downloadTimeout),
		breaker:  resilience.New("downloads", resilience.Settings{}),
		log:      log,
	}
}

// Definition returns service metadata
func (p *Provider) Definition() types.Service {
	return types.Service{
		ID:          "files",
		Name:        "Files Service",
		Description: "File and folder operations confined to the application roots",
		Category:    types.CategoryFiles,
		Capabilities: []string{
			"read",
			"write",
			"create",
			"delete",
			"list",
			"stat",
			"download",
		},
		Tools: []types.Tool{
			{
				ID:          "files.read_text",
				Name:        "Read Text File",
				Description: "Read a text file's contents",
				Parameters: []types.Parameter{
					{Name: "path", Type: "string", Description: "File path", Required: true},
				},
				Returns: "string",
			},
			{
				ID:          "files.write_text",
				Name:        "Write Text File",
				Description: "Write text to a file (overwrites existing)",
				Parameters: []types.Parameter{
					{Name: "path", Type: "string", Description: "File path", Required: true},
					{Name: "content", Type: "string", Description: "Text content", Required: true},
				},
				Returns: "string",
			},
			{
				ID:          "files.write_binary",
				Name:        "Write Binary File",
				Description: "Write base64-encoded bytes to a file",
				Parameters: []types.Parameter{
					{Name: "path", Type: "string", Description: "File path", Required: true},
					{Name: "data", Type: "string", Description: "Base64-encoded bytes", Required: true},
				},
				Returns: "string",
			},
			{
				ID:          "files.create_folder",
				Name:        "Create Folder",
				Description: "Create a new folder; fails if it already exists",
				Parameters: []types.Parameter{
					{Name: "path", Type: "string", Description: "Folder path", Required: true},
				},
				Returns: "string",
			},
			{
				ID:          "files.list",
				Name:        "List Files",
				Description: "List files in a directory, optionally filtered by a glob pattern",
				Parameters: []types.Parameter{
					{Name: "path", Type: "string", Description: "Directory path", Required: true},
					{Name: "pattern", Type: "string", Description: "Glob pattern over file names", Required: false},
				},
				Returns: "array",
			},
			{
				ID:          "files.delete",
				Name:        "Delete File",
				Description: "Delete a file or empty folder",
				Parameters: []types.Parameter{
					{Name: "path", Type: "string", Description: "File or folder path", Required: true},
				},
				Returns: "boolean",
			},
			{
				ID:          "files.exists",
				Name:        "Check Existence",
				Description: "Check whether a file or folder exists",
				Parameters: []types.Parameter{
					{Name: "path", Type: "string", Description: "File or folder path", Required: true},
				},
				Returns: "boolean",
			},
			{
				ID:          "files.stat",
				Name:        "File Info",
				Description: "Get file metadata including detected content type",
				Parameters: []types.Parameter{
					{Name: "path", Type: "string", Description: "File path", Required: true},
				},
				Returns: "object",
			},
			{
				ID:          "files.download",
				Name:        "Download File",
				Description: "Download a URL to a file inside the permitted roots",
				Parameters: []types.Parameter{
					{Name: "url", Type: "string", Description: "Source URL", Required: true},
					{Name: "path", Type: "string", Description: "Destination file path", Required: true},
				},
				Returns: "string",
			},
			{
				ID:          "files.records_path",
				Name:        "Client Records Path",
				Description: "Return (and create if needed) the default client records folder",
				Parameters:  []types.Parameter{},
				Returns:     "string",
			},
		},
	}
}

// Execute runs a file operation
func (p *Provider) Execute(ctx context.Context, toolID string, params map[string]interface{}) (*types.Result, error) {
	switch toolID {
	case "files.read_text":
		return p.readText(params)
	case "files.write_text":
		return p.writeText(params)
	case "files.write_binary":
		return p.writeBinary(params)
	case "files.create_folder":
		return p.createFolder(params)
	case "files.list":
		return p.list(params)
	case "files.delete":
		return p.delete(params)
	case "files.exists":
		return p.exists(params)
	case "files.stat":
		return p.stat(params)
	case "files.download":
		return p.download(ctx, params)
	case "files.records_path":
		return p.recordsPath()
	default:
		return failure(errs.New(errs.InvalidPath, "files", toolID, fmt.Sprintf("unknown tool: %s", toolID)))
	}
}

func stringParam(params map[string]interface{}, key string) (string, bool) {
	v, ok := params[key].(string)
	return v, ok && v != ""
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
