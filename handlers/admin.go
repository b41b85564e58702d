package handlers

import (
	"net/http"

	"finehero/models"
	"finehero/services/fine"
	"finehero/services/user"
	"finehero/utils"

	"github.com/gin-gonic/gin"
)

// AdminHandler serves back-office endpoints.
type AdminHandler struct {
	UserService user.UserService
	FineService fine.FineService
}

// ListUsersHandler handles GET /api/admin/users.
func (h *AdminHandler) ListUsersHandler(c *gin.Context) {
	users, err := h.UserService.GetAllUsers()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, users)
}

// ListFinesByStatusHandler handles GET /api/admin/fines?status=failed for
// spotting stuck or failed extractions.
func (h *AdminHandler) ListFinesByStatusHandler(c *gin.Context) {
	status := c.DefaultQuery("status", models.FineStatusFailed)
	switch status {
	case models.FineStatusUploaded, models.FineStatusProcessing,
		models.FineStatusExtracted, models.FineStatusFailed:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown status"})
		return
	}

	fines, err := h.FineService.ListByStatus(status)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, fines)
}

// StatsHandler handles GET /api/admin/stats with the latest dependency
// health snapshot and per-status fine counts.
func (h *AdminHandler) StatsHandler(c *gin.Context) {
	counts := map[string]int{}
	for _, status := range []string{
		models.FineStatusUploaded, models.FineStatusProcessing,
		models.FineStatusExtracted, models.FineStatusFailed,
	} {
		fines, err := h.FineService.ListByStatus(status)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		counts[status] = len(fines)
	}

	c.JSON(http.StatusOK, gin.H{
		"health": utils.GetHealthStatus(),
		"fines":  counts,
	})
}
