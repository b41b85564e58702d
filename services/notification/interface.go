package notification

import "context"

// NotificationService delivers user-facing notifications.
type NotificationService interface {
	// Notify records an in-app notification and pushes it via FCM when the
	// user has a registered device token.
	Notify(ctx context.Context, userID, notifType, message string, data map[string]interface{}) error
}
