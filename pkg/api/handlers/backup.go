package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/jordanlanch/ironoak/pkg/api/errors"
	"github.com/jordanlanch/ironoak/pkg/backup"
	"github.com/labstack/echo/v4"
)

// BackupService snapshots partitions to object storage
type BackupService interface {
	CreateBackup(ctx context.Context) (*backup.BackupResult, error)
	ListBackups(ctx context.Context) ([]backup.BackupInfo, error)
}

// BackupHandler handles backup-related requests
type BackupHandler struct {
	service BackupService
	now     func() time.Time
}

// NewBackupHandler creates a new backup handler
func NewBackupHandler(service BackupService) *BackupHandler {
	return &BackupHandler{
		service: service,
		now:     time.Now,
	}
}

// CreateBackup godoc
// @Summary Snapshot lead partitions
// @Description Manually trigger a backup of every partition file (admin only)
// @Tags admin, backup
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{} "Backup created successfully"
// @Failure 500 {object} models.ErrorResponse "Internal server error"
// @Router /api/ai/admin/backups [post]
func (h *BackupHandler) CreateBackup(c echo.Context) error {
	result, err := h.service.CreateBackup(c.Request().Context())
	if err != nil {
		return errors.InternalError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"message":     "Backup created successfully",
		"s3_key":      result.Key,
		"size_bytes":  result.Size,
		"partitions":  result.Partitions,
		"duration_ms": result.Duration.Milliseconds(),
	})
}

// ListBackups godoc
// @Summary List backups
// @Tags admin, backup
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{} "List of backups"
// @Router /api/ai/admin/backups [get]
func (h *BackupHandler) ListBackups(c echo.Context) error {
	backups, err := h.service.ListBackups(c.Request().Context())
	if err != nil {
		return errors.InternalError(c, err)
	}

	now := h.now()
	response := make([]map[string]interface{}, len(backups))
	for i, b := range backups {
		response[i] = map[string]interface{}{
			"key":           b.Key,
			"size_bytes":    b.Size,
			"last_modified": b.LastModified.Format(time.RFC3339),
			"age_days":      int(now.Sub(b.LastModified).Hours() / 24),
		}
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"backups": response,
		"count":   len(backups),
	})
}
