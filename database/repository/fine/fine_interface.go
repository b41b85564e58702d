package fineRepo

import (
	"finehero/models"

	"go.mongodb.org/mongo-driver/bson"
)

// FineRepository defines persistence operations for fines.
type FineRepository interface {
	Create(fine *models.Fine) error
	UpdateSetDocument(id string, updateDoc bson.M) error
	Delete(id string) error
	GetByID(id string) (*models.Fine, error)
	GetByUser(userID string) ([]models.Fine, error)
	GetByStatus(status string) ([]models.Fine, error)
	// SetStatus transitions a fine's status and optionally records a failure reason.
	SetStatus(id, status, failureReason string) error
}
