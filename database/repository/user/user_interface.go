package userRepo

import (
	"finehero/models"

	"go.mongodb.org/mongo-driver/bson"
)

// UserRepository defines persistence operations for users.
type UserRepository interface {
	Create(user *models.User) error
	Update(user *models.User) error
	UpdateSetDocument(id string, updateDoc bson.M) error
	Delete(id string) error
	GetByID(id string) (*models.User, error)
	GetByEmail(email string) (*models.User, error)
	GetByIDWithProjection(id string, projection bson.M) (*models.User, error)
	GetByEmailWithProjection(email string, projection bson.M) (*models.User, error)
	GetAll() ([]models.User, error)
	// AdjustCredits atomically adds delta to the user's credit balance.
	// A negative delta fails if it would take the balance below zero.
	AdjustCredits(id string, delta int) (int, error)
	AppendNotification(id string, n models.Notification) error
}
