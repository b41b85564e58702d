package user

import (
	"context"
	"fmt"
	"strings"
	"time"

	"finehero/models"
	"finehero/utils"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// tokenDuration is the session lifetime.
const tokenDuration = 72 * time.Hour

// SignUp registers a new account and returns a session token. New accounts
// start with zero credits and the "user" role.
func (s *DefaultUserService) SignUp(user models.User) (*AuthResponse, error) {
	logger := utils.GetLogger()

	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	if user.Email == "" || user.Password == "" || user.Name == "" {
		return nil, fmt.Errorf("name, email and password are required")
	}
	if len(user.Password) < 8 {
		return nil, fmt.Errorf("password must be at least 8 characters")
	}

	existing, err := s.Repo.GetByEmailWithProjection(user.Email, bson.M{"id": 1})
	if err != nil {
		return nil, fmt.Errorf("check existing email: %w", err)
	}
	if existing != nil {
		return nil, fmt.Errorf("an account with this email already exists")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(user.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := time.Now()
	user.ID = uuid.New().String()
	user.PasswordHash = string(hash)
	user.Password = ""
	user.Role = "user"
	user.Credits = 0
	user.CreatedAt = now
	user.UpdatedAt = now

	token, err := utils.GenerateToken(user.ID, user.Email, user.Role, tokenDuration)
	if err != nil {
		return nil, fmt.Errorf("generate token: %w", err)
	}
	user.TokenHash = utils.HashToken(token)

	if err := s.Repo.Create(&user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	s.cacheTokenHash(user.ID, user.TokenHash)

	logger.Info("user: signed up", zap.String("userId", user.ID))
	return &AuthResponse{Token: token, User: user}, nil
}

// SignIn verifies the credentials and rotates the session token.
func (s *DefaultUserService) SignIn(req SignInRequest) (*AuthResponse, error) {
	logger := utils.GetLogger()

	email := strings.ToLower(strings.TrimSpace(req.Email))
	usr, err := s.Repo.GetByEmail(email)
	if err != nil {
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	if usr == nil {
		return nil, fmt.Errorf("invalid email or password")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(usr.PasswordHash), []byte(req.Password)); err != nil {
		return nil, fmt.Errorf("invalid email or password")
	}

	token, err := utils.GenerateToken(usr.ID, usr.Email, usr.Role, tokenDuration)
	if err != nil {
		return nil, fmt.Errorf("generate token: %w", err)
	}
	tokenHash := utils.HashToken(token)
	if err := s.Repo.UpdateSetDocument(usr.ID, bson.M{
		"tokenHash": tokenHash,
		"updatedAt": time.Now(),
	}); err != nil {
		return nil, fmt.Errorf("store session: %w", err)
	}
	usr.TokenHash = tokenHash
	s.cacheTokenHash(usr.ID, tokenHash)

	logger.Info("user: signed in", zap.String("userId", usr.ID))
	return &AuthResponse{Token: token, User: *usr}, nil
}

// RevokeAuthToken drops the stored token hash and its cache entry, ending
// the session everywhere.
func (s *DefaultUserService) RevokeAuthToken(id string) error {
	if err := s.Repo.UpdateSetDocument(id, bson.M{
		"tokenHash": "",
		"updatedAt": time.Now(),
	}); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := utils.GetAuthCacheClient().Del(ctx, utils.AuthCachePrefix+id).Err(); err != nil {
		utils.GetLogger().Warn("user: failed to clear auth cache",
			zap.String("userId", id), zap.Error(err))
	}
	return nil
}

func (s *DefaultUserService) cacheTokenHash(userID, tokenHash string) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := utils.GetAuthCacheClient().Set(ctx, utils.AuthCachePrefix+userID, tokenHash, time.Hour).Err(); err != nil {
		utils.GetLogger().Warn("user: failed to cache token hash",
			zap.String("userId", userID), zap.Error(err))
	}
}
