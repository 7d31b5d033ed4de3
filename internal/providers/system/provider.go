// Package system exposes runtime information and utilities to the
// frontend: process info, server time, the application roots, and a
// log forwarding tool so frontend messages land in the backend log
// stream.
package system

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"time"

	"go.uber.org/zap"

	"github.com/pbs-admin/backend/internal/logging"
	"github.com/pbs-admin/backend/internal/shared/paths"
	"github.com/pbs-admin/backend/internal/shared/types"
)

// Provider implements system information and utilities
type Provider struct {
	roots     paths.Roots
	log       *logging.Logger
	startTime time.Time
}

// NewProvider creates a system provider
func NewProvider(roots paths.Roots, log *logging.Logger) *Provider {
	if log == nil {
		log = logging.NewNop()
	}
	return &Provider{
		roots:     roots,
		log:       log,
		startTime: time.Now(),
	}
}

// Definition returns service metadata
func (s *Provider) Definition() types.Service {
	return types.Service{
		ID:          "system",
		Name:        "System Service",
		Description: "Runtime information and utilities",
		Category:    types.CategorySystem,
		Capabilities: []string{
			"info",
			"logging",
		},
		Tools: []types.Tool{
			{
				ID:          "system.info",
				Name:        "System Info",
				Description: "Get backend runtime information",
				Parameters:  []types.Parameter{},
				Returns:     "object",
			},
			{
				ID:          "system.time",
				Name:        "Current Time",
				Description: "Get current server time",
				Parameters:  []types.Parameter{},
				Returns:     "object",
			},
			{
				ID:          "system.roots",
				Name:        "Application Roots",
				Description: "Get the permitted filesystem roots",
				Parameters:  []types.Parameter{},
				Returns:     "object",
			},
			{
				ID:          "system.log",
				Name:        "Log Message",
				Description: "Forward a frontend message into the backend log",
				Parameters: []types.Parameter{
					{Name: "message", Type: "string", Description: "Log message", Required: true},
					{Name: "level", Type: "string", Description: "Log level (debug/info/warn/error)", Required: false},
				},
				Returns: "boolean",
			},
			{
				ID:          "system.ping",
				Name:        "Ping",
				Description: "Test service availability",
				Parameters:  []types.Parameter{},
				Returns:     "object",
			},
		},
	}
}

// Execute runs a system operation
func (s *Provider) Execute(ctx context.Context, toolID string, params map[string]interface{}) (*types.Result, error) {
	switch toolID {
	case "system.info":
		return s.info()
	case "system.time":
		return s.currentTime()
	case "system.roots":
		return s.rootsInfo()
	case "system.log":
		return s.logMessage(params)
	case "system.ping":
		return s.ping()
	default:
		return failure(fmt.Sprintf("unknown tool: %s", toolID))
	}
}

func (s *Provider) info() (*types.Result, error) {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	return success(map[string]interface{}{
		"go_version":     runtime.Version(),
		"os":             runtime.GOOS,
		"arch":           runtime.GOARCH,
		"cpus":           runtime.NumCPU(),
		"goroutines":     runtime.NumGoroutine(),
		"memory_alloc":   m.Alloc / 1024 / 1024, // MB
		"memory_sys":     m.Sys / 1024 / 1024,   // MB
		"uptime_seconds": time.Since(s.startTime).Seconds(),
	})
}

func (s *Provider) currentTime() (*types.Result, error) {
	now := time.Now()
	return success(map[string]interface{}{
		"timestamp": now.Unix(),
		"iso":       now.Format(time.RFC3339),
		"unix_ms":   now.UnixMilli(),
	})
}

func (s *Provider) rootsInfo() (*types.Result, error) {
	describe := func(path string) map[string]interface{} {
		_, err := os.Stat(path)
		return map[string]interface{}{
			"path":   path,
			"exists": err == nil,
		}
	}

	return success(map[string]interface{}{
		"data":    describe(s.roots.Data),
		"backups": describe(s.roots.Backups),
		"scratch": describe(s.roots.Scratch),
	})
}

func (s *Provider) logMessage(params map[string]interface{}) (*types.Result, error) {
	message, ok := params["message"].(string)
	if !ok || message == "" {
		return failure("message required")
	}

	level := "info"
	if l, ok := params["level"].(string); ok && l != "" {
		level = l
	}

	field := zap.String("origin", "frontend")
	switch level {
	case "debug":
		s.log.Debug(message, field)
	case "warn":
		s.log.Warn(message, field)
	case "error":
		s.log.Error(message, field)
	default:
		s.log.Info(message, field)
	}

	return success(map[string]interface{}{"logged": true})
}

func (s *Provider) ping() (*types.Result, error) {
	return success(map[string]interface{}{
		"pong":      true,
		"timestamp": time.Now().Unix(),
	})
}

func success(data map[string]interface{}) (*types.Result, error) {
	return &types.Result{Success: true, Data: data}, nil
}

func failure(message string) (*types.Result, error) {
	msg := message
	return &types.Result{Success: false, Error: &msg}, nil
}
