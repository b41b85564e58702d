package user

import (
	"fmt"
	"time"

	"finehero/models"
	"finehero/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// GetProfile returns the account without sensitive fields.
func (s *DefaultUserService) GetProfile(id string) (*models.User, error) {
	usr, err := s.Repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	usr.PasswordHash = ""
	usr.TokenHash = ""
	return usr, nil
}

// UpdateUser applies the mutable profile fields present in the request.
func (s *DefaultUserService) UpdateUser(req models.UserUpdateRequest) (*models.User, error) {
	update := bson.M{"updatedAt": time.Now()}
	if req.Name != "" {
		update["name"] = req.Name
	}
	if req.PhoneNumber != "" {
		update["phoneNumber"] = req.PhoneNumber
	}
	if req.FCMToken != "" {
		update["fcmToken"] = req.FCMToken
	}
	if len(update) == 1 {
		return nil, fmt.Errorf("no fields to update")
	}

	if err := s.Repo.UpdateSetDocument(req.ID, update); err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}
	return s.GetProfile(req.ID)
}

// UpdateUserPassword verifies the current password before replacing it.
func (s *DefaultUserService) UpdateUserPassword(id, currentPassword, newPassword string) error {
	if len(newPassword) < 8 {
		return fmt.Errorf("password must be at least 8 characters")
	}

	usr, err := s.Repo.GetByIDWithProjection(id, bson.M{"id": 1, "passwordHash": 1})
	if err != nil {
		return fmt.Errorf("lookup user: %w", err)
	}
	if usr == nil {
		return fmt.Errorf("user not found")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(usr.PasswordHash), []byte(currentPassword)); err != nil {
		return fmt.Errorf("current password is incorrect")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.Repo.UpdateSetDocument(id, bson.M{
		"passwordHash": string(hash),
		"updatedAt":    time.Now(),
	}); err != nil {
		return fmt.Errorf("store password: %w", err)
	}

	// Changing the password ends the current session.
	if err := s.RevokeAuthToken(id); err != nil {
		utils.GetLogger().Warn("user: revoke after password change failed",
			zap.String("userId", id), zap.Error(err))
	}
	return nil
}

// DeleteUser removes the account.
func (s *DefaultUserService) DeleteUser(id string) error {
	if err := s.RevokeAuthToken(id); err != nil {
		utils.GetLogger().Warn("user: revoke during delete failed",
			zap.String("userId", id), zap.Error(err))
	}
	return s.Repo.Delete(id)
}

// GetAllUsers lists every account, sensitive fields stripped. Admin only.
func (s *DefaultUserService) GetAllUsers() ([]models.User, error) {
	users, err := s.Repo.GetAll()
	if err != nil {
		return nil, err
	}
	for i := range users {
		users[i].PasswordHash = ""
		users[i].TokenHash = ""
	}
	return users, nil
}
