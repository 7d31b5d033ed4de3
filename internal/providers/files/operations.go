package files

import (
	"context"
	"encoding/base64"
	"errors"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/gabriel-vasile/mimetype"
	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/pbs-admin/backend/internal/infrastructure/resilience"
	"github.com/pbs-admin/backend/internal/shared/errs"
	"github.com/pbs-admin/backend/internal/shared/paths"
	"github.com/pbs-admin/backend/internal/shared/types"
)

// recordsDirName is the folder under the data root that holds client
// record files.
const recordsDirName = "Client_Records"

func (p *Provider) readText(params map[string]interface{}) (*types.Result, error) {
	path, ok := stringParam(params, "path")
	if !ok {
		return failure(errs.New(errs.InvalidPath, "files.read_text", "", "path parameter required"))
	}

	validated, err := p.guard.Validate(path, paths.IntentRead)
	if err != nil {
		return failure(err)
	}

	data, err := os.ReadFile(validated)
	if err != nil {
		return failure(errs.Wrap(errs.IOError, "files.read_text", validated, err))
	}

	return success(map[string]interface{}{
		"path":    validated,
		"content": string(data),
		"size":    len(data),
	})
}

func (p *Provider) writeText(params map[string]interface{}) (*types.Result, error) {
	path, ok := stringParam(params, "path")
	if !ok {
		return failure(errs.New(errs.InvalidPath, "files.write_text", "", "path parameter required"))
	}
	content, ok := params["content"].(string)
	if !ok {
		return failure(errs.New(errs.InvalidPath, "files.write_text", path, "content parameter required"))
	}

	validated, err := p.guard.Validate(path, paths.IntentWrite)
	if err != nil {
		return failure(err)
	}

	if err := os.WriteFile(validated, []byte(content), 0o644); err != nil {
		return failure(errs.Wrap(errs.IOError, "files.write_text", validated, err))
	}

	return success(map[string]interface{}{
		"written": true,
		"path":    validated,
		"size":    len(content),
	})
}

func (p *Provider) writeBinary(params map[string]interface{}) (*types.Result, error) {
	path, ok := stringParam(params, "path")
	if !ok {
		return failure(errs.New(errs.InvalidPath, "files.write_binary", "", "path parameter required"))
	}
	encoded, ok := params["data"].(string)
	if !ok {
		return failure(errs.New(errs.InvalidPath, "files.write_binary", path, "data parameter required"))
	}

	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return failure(errs.Wrap(errs.InvalidPath, "files.write_binary", path, err))
	}

	validated, err := p.guard.Validate(path, paths.IntentWrite)
	if err != nil {
		return failure(err)
	}

	if err := os.WriteFile(validated, data, 0o644); err != nil {
		return failure(errs.Wrap(errs.IOError, "files.write_binary", validated, err))
	}

	return success(map[string]interface{}{
		"written": true,
		"path":    validated,
		"size":    len(data),
	})
}

func (p *Provider) createFolder(params map[string]interface{}) (*types.Result, error) {
	path, ok := stringParam(params, "path")
	if !ok {
		return failure(errs.New(errs.InvalidPath, "files.create_folder", "", "path parameter required"))
	}

	// Folder creation may span several missing components, so the
	// write intent's parent-must-exist rule does not apply here.
	validated, err := p.guard.ValidateCreate(path)
	if err != nil {
		return failure(err)
	}

	if _, err := os.Stat(validated); err == nil {
		return failure(errs.New(errs.InvalidPath, "files.create_folder", validated, "folder already exists"))
	}

	if err := os.MkdirAll(validated, 0o755); err != nil {
		return failure(errs.Wrap(errs.IOError, "files.create_folder", validated, err))
	}

	return success(map[string]interface{}{"created": true, "path": validated})
}

func (p *Provider) list(params map[string]interface{}) (*types.Result, error) {
	path, ok := stringParam(params, "path")
	if !ok {
		return failure(errs.New(errs.InvalidPath, "files.list", "", "path parameter required"))
	}
	pattern, _ := params["pattern"].(string)
	if pattern != "" && !doublestar.ValidatePattern(pattern) {
		return failure(errs.New(errs.InvalidPath, "files.list", path, "invalid glob pattern"))
	}

	validated, err := p.guard.Validate(path, paths.IntentRead)
	if err != nil {
		return failure(err)
	}

	info, err := os.Stat(validated)
	if err != nil {
		return failure(errs.Wrap(errs.IOError, "files.list", validated, err))
	}
	if !info.IsDir() {
		return failure(errs.New(errs.InvalidPath, "files.list", validated, "path is not a directory"))
	}

	entries, err := os.ReadDir(validated)
	if err != nil {
		return failure(errs.Wrap(errs.IOError, "files.list", validated, err))
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if pattern != "" {
			matched, _ := doublestar.Match(pattern, entry.Name())
			if !matched {
				continue
			}
		}
		names = append(names, filepath.Join(validated, entry.Name()))
	}

	return success(map[string]interface{}{
		"path":  validated,
		"files": names,
		"count": len(names),
	})
}

func (p *Provider) delete(params map[string]interface{}) (*types.Result, error) {
	path, ok := stringParam(params, "path")
	if !ok {
		return failure(errs.New(errs.InvalidPath, "files.delete", "", "path parameter required"))
	}

	validated, err := p.guard.Validate(path, paths.IntentRead)
	if err != nil {
		return failure(err)
	}

	if err := os.Remove(validated); err != nil {
		return failure(errs.Wrap(errs.IOError, "files.delete", validated, err))
	}

	return success(map[string]interface{}{"deleted": true, "path": validated})
}

func (p *Provider) exists(params map[string]interface{}) (*types.Result, error) {
	path, ok := stringParam(params, "path")
	if !ok {
		return failure(errs.New(errs.InvalidPath, "files.exists", "", "path parameter required"))
	}

	validated, err := p.guard.Validate(path, paths.IntentWrite)
	if err != nil {
		// A path that escapes the roots is refused outright; a path that
		// merely cannot resolve yet simply does not exist.
		if errs.HasCode(err, errs.AccessDenied) {
			return failure(err)
		}
		return success(map[string]interface{}{"exists": false, "path": path})
	}

	_, statErr := os.Stat(validated)
	return success(map[string]interface{}{
		"exists": statErr == nil,
		"path":   validated,
	})
}

func (p *Provider) stat(params map[string]interface{}) (*types.Result, error) {
	path, ok := stringParam(params, "path")
	if !ok {
		return failure(errs.New(errs.InvalidPath, "files.stat", "", "path parameter required"))
	}

	validated, err := p.guard.Validate(path, paths.IntentRead)
	if err != nil {
		return failure(err)
	}

	info, err := os.Stat(validated)
	if err != nil {
		return failure(errs.Wrap(errs.IOError, "files.stat", validated, err))
	}

	contentType := ""
	if !info.IsDir() {
		if mime, err := mimetype.DetectFile(validated); err == nil {
			contentType = mime.String()
		}
	}

	return success(map[string]interface{}{
		"name":         info.Name(),
		"path":         validated,
		"size":         info.Size(),
		"is_dir":       info.IsDir(),
		"mode":         info.Mode().String(),
		"modified":     info.ModTime(),
		"extension":    filepath.Ext(validated),
		"content_type": contentType,
	})
}

func (p *Provider) download(ctx context.Context, params map[string]interface{}) (*types.Result, error) {
	url, ok := stringParam(params, "url")
	if !ok {
		return failure(errs.New(errs.InvalidPath, "files.download", "", "url parameter required"))
	}
	path, ok := stringParam(params, "path")
	if !ok {
		return failure(errs.New(errs.InvalidPath, "files.download", "", "path parameter required"))
	}

	validated, err := p.guard.Validate(path, paths.IntentWrite)
	if err != nil {
		return failure(err)
	}

	var resp *resty.Response
	err = p.breaker.Do(func() error {
		var reqErr error
		resp, reqErr = p.http.R().SetContext(ctx).Get(url)
		if reqErr != nil {
			return reqErr
		}
		if resp.IsError() {
			return errs.New(errs.IOError, "files.download", url,
				"HTTP error: "+resp.Status())
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, resilience.ErrOpen) {
			return failure(errs.New(errs.IOError, "files.download", url,
				"downloads paused after repeated failures, try again shortly"))
		}
		var domainErr *errs.Error
		if errors.As(err, &domainErr) {
			return failure(domainErr)
		}
		return failure(errs.Wrap(errs.IOError, "files.download", url, err))
	}

	if err := os.WriteFile(validated, resp.Body(), 0o644); err != nil {
		return failure(errs.Wrap(errs.IOError, "files.download", validated, err))
	}

	p.log.Info("file downloaded",
		zap.String("url", url),
		zap.String("path", validated),
		zap.Int("size", len(resp.Body())))

	return success(map[string]interface{}{
		"path": validated,
		"size": len(resp.Body()),
	})
}

func (p *Provider) recordsPath() (*types.Result, error) {
	dir := filepath.Join(p.dataRoot, recordsDirName)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return failure(errs.Wrap(errs.IOError, "files.records_path", dir, err))
	}
	return success(map[string]interface{}{"path": dir})
}
