package handlers

import (
	"net/http"
	"strconv"

	"finehero/services/legal"
	"finehero/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// LegalHandler serves knowledge-base management endpoints. All routes are
// admin only except retrieval debugging, which is too.
type LegalHandler struct {
	LegalService legal.LegalService
}

// IngestArticlesHandler handles POST /api/legal/articles with a JSON array
// of articles to chunk, embed and persist.
func (h *LegalHandler) IngestArticlesHandler(c *gin.Context) {
	logger := utils.GetLogger()

	var req []legal.ArticleInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if len(req) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no articles provided"})
		return
	}

	articles, err := h.LegalService.Ingest(c.Request.Context(), req)
	if err != nil {
		logger.Error("Ingest failed", zap.Int("articles", len(req)), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, articles)
}

// ListArticlesHandler handles GET /api/legal/articles.
func (h *LegalHandler) ListArticlesHandler(c *gin.Context) {
	articles, err := h.LegalService.ListArticles()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, articles)
}

// DeleteArticleHandler handles DELETE /api/legal/articles/:id.
func (h *LegalHandler) DeleteArticleHandler(c *gin.Context) {
	id := c.Param("id")

	if err := h.LegalService.DeleteArticle(c.Request.Context(), id); err != nil {
		utils.GetLogger().Error("Delete article failed", zap.String("articleId", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Article deleted"})
}

// ReindexHandler handles POST /api/legal/reindex.
func (h *LegalHandler) ReindexHandler(c *gin.Context) {
	count, err := h.LegalService.Reindex(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"chunks": count})
}

// RetrieveHandler handles GET /api/legal/retrieve?q=...&k=... for inspecting
// what the generator would cite.
func (h *LegalHandler) RetrieveHandler(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing q parameter"})
		return
	}
	k := 0
	if raw := c.Query("k"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid k parameter"})
			return
		}
		k = parsed
	}

	chunks, err := h.LegalService.Retrieve(c.Request.Context(), query, k)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, chunks)
}
