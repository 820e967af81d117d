package dto

import (
	"time"

	"github.com/SscSPs/valutatrade_hub/internal/core/domain"
)

// RegisterRequest is the body of POST /auth/register.
type RegisterRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginRequest is the body of POST /auth/login.
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse represents the response for a successful login.
type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	UserID    string    `json:"userID"`
}

// UserResponse defines the public view of a user.
type UserResponse struct {
	UserID       string    `json:"userID"`
	Username     string    `json:"username"`
	RegisteredAt time.Time `json:"registeredAt"`
}

// ToUserResponse converts a domain.User to UserResponse DTO
func ToUserResponse(user *domain.User) UserResponse {
	return UserResponse{
		UserID:       user.UserID,
		Username:     user.Username,
		RegisteredAt: user.RegisteredAt,
	}
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
}
