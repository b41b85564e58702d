package defenseRepo

import (
	"finehero/models"

	"go.mongodb.org/mongo-driver/bson"
)

// DefenseRepository defines persistence operations for defenses.
type DefenseRepository interface {
	Create(defense *models.Defense) error
	UpdateSetDocument(id string, updateDoc bson.M) error
	GetByID(id string) (*models.Defense, error)
	GetByUser(userID string) ([]models.Defense, error)
	GetByFine(fineID string) ([]models.Defense, error)
	// CountVersions returns how many defenses already exist for a fine.
	CountVersions(fineID string) (int, error)
}
