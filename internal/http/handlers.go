package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/pbs-admin/backend/internal/infrastructure/monitoring"
	"github.com/pbs-admin/backend/internal/providers/backup"
	"github.com/pbs-admin/backend/internal/service"
	"github.com/pbs-admin/backend/internal/shared/errs"
	"github.com/pbs-admin/backend/internal/shared/types"
)

// Handlers contains all HTTP handlers
type Handlers struct {
	registry *service.Registry
	backups  *backup.Manager
	metrics  *monitoring.Metrics
}

// NewHandlers creates a new handler set
func NewHandlers(registry *service.Registry, backups *backup.Manager, metrics *monitoring.Metrics) *Handlers {
	return &Handlers{
		registry: registry,
		backups:  backups,
		metrics:  metrics,
	}
}

// Root handles health check
func (h *Handlers) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "online",
		"service": "PBS_Admin Backend",
		"version": "1.0.0",
	})
}

// Health handles detailed health check
func (h *Handlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":           "healthy",
		"service_registry": h.registry.Stats(),
		"database":         gin.H{"path": h.backups.DatabasePath()},
	})
}

// ListServices lists all available services
func (h *Handlers) ListServices(c *gin.Context) {
	categoryStr := c.Query("category")

	var category *types.Category
	if categoryStr != "" {
		cat := types.Category(categoryStr)
		category = &cat
	}

	services := h.registry.List(category)
	stats := h.registry.Stats()

	c.JSON(http.StatusOK, gin.H{
		"services": services,
		"stats":    stats,
	})
}

// ExecuteService executes a service tool
func (h *Handlers) ExecuteService(c *gin.Context) {
	var req types.ExecuteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	svc, _, found := strings.Cut(req.ToolID, ".")
	if !found {
		c.JSON(http.StatusBadRequest, gin.H{"error": "tool_id must be <service>.<tool>"})
		return
	}

	timer := monitoring.NewTimer(h.metrics, svc, req.ToolID)
	result, err := h.registry.Execute(c.Request.Context(), req.ToolID, req.Params)
	if err != nil {
		timer.Stop("error")
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	if result.Success {
		timer.Stop("success")
	} else {
		timer.Stop("failure")
		h.metrics.RecordServiceError(svc, result.Code)
	}

	c.JSON(http.StatusOK, result)
}

// ListBackups lists backup artifacts, newest first
func (h *Handlers) ListBackups(c *gin.Context) {
	artifacts, err := h.backups.List()
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"backups": artifacts,
		"count":   len(artifacts),
	})
}

// CreateBackup creates a new backup of the live database
func (h *Handlers) CreateBackup(c *gin.Context) {
	artifact, err := h.backups.Create()
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	h.metrics.BackupsCreated.Inc()

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"backup":  artifact,
	})
}

// RestoreBackup restores the database from a backup artifact
func (h *Handlers) RestoreBackup(c *gin.Context) {
	var req struct {
		Path string `json:"path" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.backups.Restore(req.Path); err != nil {
		h.metrics.RecordRestore(restoreOutcome(err))
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	h.metrics.RecordRestore("success")

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"path":    req.Path,
	})
}

// DeleteBackup deletes a backup artifact by name
func (h *Handlers) DeleteBackup(c *gin.Context) {
	name := c.Param("name")

	if err := h.backups.Delete(h.backups.ArtifactPath(name)); err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	h.metrics.BackupsDeleted.Inc()

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"name":    name,
	})
}

// statusFor maps a domain error code to an HTTP status
func statusFor(err error) int {
	switch errs.CodeOf(err) {
	case errs.InvalidPath, errs.InvalidBackup:
		return http.StatusBadRequest
	case errs.AccessDenied:
		return http.StatusForbidden
	case errs.NotFound, errs.SourceMissing:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func restoreOutcome(err error) string {
	switch errs.CodeOf(err) {
	case errs.RestoreFailed:
		return "rolled_back"
	case errs.RestoreFailedUnrecoverable:
		return "unrecoverable"
	default:
		return "rejected"
	}
}
