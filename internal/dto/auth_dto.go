package dto

import (
	"time"

	"github.com/noah-isme/fairshare-api/internal/models"
)

// RegisterRequest captures the payload for creating an account.
type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Name     string `json:"name" validate:"required,min=1,max=255"`
	Role     string `json:"role" validate:"required,oneof=faculty student"`
}

// LoginRequest captures credentials for issuing a token.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// UserResponse is the public view of an account.
type UserResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// AuthResponse bundles an issued token with the account it belongs to.
type AuthResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      UserResponse `json:"user"`
}

// NewUserResponse converts a user model into its public DTO.
func NewUserResponse(user models.User) UserResponse {
	return UserResponse{
		ID:        user.ID,
		Email:     user.Email,
		Name:      user.Name,
		Role:      user.Role,
		CreatedAt: user.CreatedAt,
	}
}

// StudentSummary is the compact identity used in member lists.
type StudentSummary struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// NewStudentSummarySlice converts users into compact summaries.
func NewStudentSummarySlice(users []models.User) []StudentSummary {
	result := make([]StudentSummary, 0, len(users))
	for _, user := range users {
		result = append(result, StudentSummary{ID: user.ID, Name: user.Name, Email: user.Email})
	}
	return result
}
