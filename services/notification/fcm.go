package notification

import (
	"context"
	"fmt"
	"time"

	userRepo "finehero/database/repository/user"
	"finehero/models"
	"finehero/utils"

	"firebase.google.com/go/v4/messaging"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

// DefaultNotificationService appends in-app notifications to the user
// document and pushes through FCM.
type DefaultNotificationService struct {
	Users userRepo.UserRepository
}

func (s *DefaultNotificationService) Notify(ctx context.Context, userID, notifType, message string, data map[string]interface{}) error {
	logger := utils.GetLogger()

	n := models.Notification{
		ID:        uuid.New().String(),
		Type:      notifType,
		Message:   message,
		Data:      data,
		CreatedAt: time.Now(),
	}
	if err := s.Users.AppendNotification(userID, n); err != nil {
		return fmt.Errorf("store notification: %w", err)
	}

	usr, err := s.Users.GetByIDWithProjection(userID, bson.M{"id": 1, "fcmToken": 1})
	if err != nil || usr == nil || usr.FCMToken == "" {
		// Push is best-effort; the in-app record already exists.
		return nil
	}

	if utils.FCMClient == nil {
		logger.Debug("notification: FCM client not initialized, skipping push")
		return nil
	}

	msg := &messaging.Message{
		Token: usr.FCMToken,
		Notification: &messaging.Notification{
			Title: "FineHero",
			Body:  message,
		},
		Data: stringify(data),
	}
	if _, err := utils.FCMClient.Send(ctx, msg); err != nil {
		logger.Warn("notification: FCM push failed",
			zap.String("userId", userID), zap.Error(err))
	}
	return nil
}

func stringify(data map[string]interface{}) map[string]string {
	out := make(map[string]string, len(data))
	for k, v := range data {
		out[k] = fmt.Sprintf("%v", v)
	}
	return out
}
