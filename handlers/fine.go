package handlers

import (
	"net/http"
	"os"
	"path/filepath"

	"finehero/config"
	"finehero/models"
	"finehero/services/fine"
	"finehero/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// FineHandler serves fine upload and lifecycle endpoints.
type FineHandler struct {
	FineService fine.FineService
}

// UploadFineHandler handles POST /api/fines. It expects a multipart form with
// a "file" field holding the notice PDF or photo.
func (h *FineHandler) UploadFineHandler(c *gin.Context) {
	logger := utils.GetLogger()
	userID := c.GetString("userID")

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing file field"})
		return
	}
	if maxBytes := config.AppConfig.MaxUploadBytes; maxBytes > 0 && fileHeader.Size > maxBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "file too large"})
		return
	}

	mimeType := fileHeader.Header.Get("Content-Type")

	tmpDir := config.AppConfig.UploadTempDir
	if tmpDir == "" {
		tmpDir = os.TempDir()
	}
	localPath := filepath.Join(tmpDir, uuid.New().String()+filepath.Ext(fileHeader.Filename))
	if err := c.SaveUploadedFile(fileHeader, localPath); err != nil {
		logger.Error("Failed to save upload", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not store upload"})
		return
	}
	defer os.Remove(localPath)

	created, err := h.FineService.Upload(c.Request.Context(), userID, localPath, fileHeader.Filename, mimeType)
	if err != nil {
		logger.Error("Upload failed", zap.String("userId", userID), zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusAccepted, created)
}

// ListFinesHandler handles GET /api/fines.
func (h *FineHandler) ListFinesHandler(c *gin.Context) {
	userID := c.GetString("userID")

	fines, err := h.FineService.ListByUser(userID)
	if err != nil {
		utils.GetLogger().Error("List fines failed", zap.String("userId", userID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, fines)
}

// GetFineHandler handles GET /api/fines/:id.
func (h *FineHandler) GetFineHandler(c *gin.Context) {
	userID := c.GetString("userID")
	id := c.Param("id")

	f, err := h.FineService.GetByID(userID, id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, f)
}

// CorrectFineHandler handles PATCH /api/fines/:id/correct.
func (h *FineHandler) CorrectFineHandler(c *gin.Context) {
	userID := c.GetString("userID")
	id := c.Param("id")

	var corr models.FineCorrection
	if err := c.ShouldBindJSON(&corr); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	f, err := h.FineService.Correct(userID, id, corr)
	if err != nil {
		utils.GetLogger().Warn("Correction rejected", zap.String("fineId", id), zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, f)
}

// FineFileURLHandler handles GET /api/fines/:id/file.
func (h *FineHandler) FineFileURLHandler(c *gin.Context) {
	userID := c.GetString("userID")
	id := c.Param("id")

	url, err := h.FineService.FileURL(c.Request.Context(), userID, id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": url})
}

// DeleteFineHandler handles DELETE /api/fines/:id.
func (h *FineHandler) DeleteFineHandler(c *gin.Context) {
	userID := c.GetString("userID")
	id := c.Param("id")

	if err := h.FineService.Delete(c.Request.Context(), userID, id); err != nil {
		utils.GetLogger().Error("Delete fine failed", zap.String("fineId", id), zap.Error(err))
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Fine deleted"})
}
