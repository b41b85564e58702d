package models

import "time"

// User represents a FineHero account holder.
type User struct {
	ID           string         `bson:"id" json:"id"`
	Name         string         `bson:"name" json:"name"`
	Email        string         `bson:"email" json:"email"`
	Password     string         `bson:"-" json:"password,omitempty"`
	PasswordHash string         `bson:"passwordHash" json:"-"`
	PhoneNumber  string         `bson:"phoneNumber,omitempty" json:"phoneNumber,omitempty"`
	Role         string         `bson:"role" json:"role"` // "user" or "admin"
	Credits      int            `bson:"credits" json:"credits"`
	TokenHash    string         `bson:"tokenHash,omitempty" json:"-"`
	FCMToken     string         `bson:"fcmToken,omitempty" json:"-"`
	Notifications []Notification `bson:"notifications,omitempty" json:"notifications,omitempty"`
	CreatedAt    time.Time      `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time      `bson:"updatedAt" json:"updatedAt"`
}

// UserUpdateRequest carries mutable profile fields.
type UserUpdateRequest struct {
	ID          string `json:"id"`
	Name        string `json:"name,omitempty"`
	PhoneNumber string `json:"phoneNumber,omitempty"`
	FCMToken    string `json:"fcmToken,omitempty"`
}
