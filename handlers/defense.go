package handlers

import (
	"net/http"

	"finehero/services/defense"
	"finehero/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// DefenseHandler serves defense-letter endpoints.
type DefenseHandler struct {
	DefenseService defense.DefenseService
}

// RequestDefenseHandler handles POST /api/defenses. It expects a JSON payload
// with "fineId" and spends one credit.
func (h *DefenseHandler) RequestDefenseHandler(c *gin.Context) {
	logger := utils.GetLogger()
	userID := c.GetString("userID")

	var req struct {
		FineID string `json:"fineId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	def, err := h.DefenseService.RequestDefense(c.Request.Context(), userID, req.FineID)
	if err != nil {
		logger.Warn("Defense request rejected",
			zap.String("userId", userID), zap.String("fineId", req.FineID), zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusAccepted, def)
}

// ListDefensesHandler handles GET /api/defenses, optionally filtered by
// ?fineId=.
func (h *DefenseHandler) ListDefensesHandler(c *gin.Context) {
	userID := c.GetString("userID")

	if fineID := c.Query("fineId"); fineID != "" {
		defs, err := h.DefenseService.ListByFine(userID, fineID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, defs)
		return
	}

	defs, err := h.DefenseService.ListByUser(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, defs)
}

// GetDefenseHandler handles GET /api/defenses/:id.
func (h *DefenseHandler) GetDefenseHandler(c *gin.Context) {
	userID := c.GetString("userID")
	id := c.Param("id")

	def, err := h.DefenseService.GetByID(userID, id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, def)
}

// DefenseHTMLHandler handles GET /api/defenses/:id/html and returns the
// rendered letter for preview or print.
func (h *DefenseHandler) DefenseHTMLHandler(c *gin.Context) {
	userID := c.GetString("userID")
	id := c.Param("id")

	html, err := h.DefenseService.RenderHTMLByID(userID, id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(html))
}
