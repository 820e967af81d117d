package domain

import "time"

// User represents a registered user of the application.
type User struct {
	UserID       string    `json:"userID"` // UUID
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	RegisteredAt time.Time `json:"registeredAt"`
}
