package user

import (
	userRepo "finehero/database/repository/user"
	"finehero/models"
)

// AuthResponse is returned after a successful signup or signin.
type AuthResponse struct {
	Token string      `json:"token"`
	User  models.User `json:"user"`
}

// SignInRequest carries the credentials for email/password login.
type SignInRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// UserService manages accounts and sessions.
type UserService interface {
	SignUp(user models.User) (*AuthResponse, error)
	SignIn(req SignInRequest) (*AuthResponse, error)
	GetProfile(id string) (*models.User, error)
	UpdateUser(req models.UserUpdateRequest) (*models.User, error)
	UpdateUserPassword(id, currentPassword, newPassword string) error
	// RevokeAuthToken invalidates the active session token.
	RevokeAuthToken(id string) error
	DeleteUser(id string) error

	// Admin.
	GetAllUsers() ([]models.User, error)
}

// DefaultUserService is the production implementation.
type DefaultUserService struct {
	Repo userRepo.UserRepository
}
