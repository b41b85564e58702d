package handlers

import (
	"net/http"

	"finehero/models"
	"finehero/services/user"
	"finehero/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// UserHandler serves account and session endpoints.
type UserHandler struct {
	UserService user.UserService
}

// SignUpHandler handles POST /api/users/signup.
func (h *UserHandler) SignUpHandler(c *gin.Context) {
	logger := utils.GetLogger()

	var req models.User
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	resp, err := h.UserService.SignUp(req)
	if err != nil {
		logger.Error("Sign up failed", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// SignInHandler handles POST /api/users/signin.
func (h *UserHandler) SignInHandler(c *gin.Context) {
	logger := utils.GetLogger()

	var req user.SignInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	resp, err := h.UserService.SignIn(req)
	if err != nil {
		logger.Warn("Sign in failed", zap.String("email", req.Email), zap.Error(err))
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, resp)
}

// GetProfileHandler handles GET /api/users/me.
func (h *UserHandler) GetProfileHandler(c *gin.Context) {
	userID := c.GetString("userID")

	usr, err := h.UserService.GetProfile(userID)
	if err != nil {
		utils.GetLogger().Error("User not found", zap.String("id", userID), zap.Error(err))
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, usr)
}

// UpdateUserHandler handles PUT /api/users/me.
func (h *UserHandler) UpdateUserHandler(c *gin.Context) {
	logger := utils.GetLogger()

	var req models.UserUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	req.ID = c.GetString("userID")

	usr, err := h.UserService.UpdateUser(req)
	if err != nil {
		logger.Error("Failed to update user", zap.String("id", req.ID), zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, usr)
}

// UpdatePasswordHandler handles PUT /api/users/me/password.
// It expects a JSON payload with "currentPassword" and "newPassword".
func (h *UserHandler) UpdatePasswordHandler(c *gin.Context) {
	logger := utils.GetLogger()
	userID := c.GetString("userID")

	var req struct {
		CurrentPassword string `json:"currentPassword" binding:"required"`
		NewPassword     string `json:"newPassword" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.UserService.UpdateUserPassword(userID, req.CurrentPassword, req.NewPassword); err != nil {
		logger.Error("Failed to update password", zap.String("id", userID), zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Password updated, please sign in again"})
}

// SignOutHandler handles POST /api/users/signout.
func (h *UserHandler) SignOutHandler(c *gin.Context) {
	userID := c.GetString("userID")

	if err := h.UserService.RevokeAuthToken(userID); err != nil {
		utils.GetLogger().Error("Failed to revoke token", zap.String("id", userID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Signed out"})
}

// DeleteUserHandler handles DELETE /api/users/me.
func (h *UserHandler) DeleteUserHandler(c *gin.Context) {
	userID := c.GetString("userID")

	if err := h.UserService.DeleteUser(userID); err != nil {
		utils.GetLogger().Error("Delete error", zap.String("id", userID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Account deleted"})
}
