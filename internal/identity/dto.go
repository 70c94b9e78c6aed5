package identity

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/sipcourse-backend/pkg/db/models"
)

// RegisterRequest captures a new learner account. Username defaults to the
// local part of the email when omitted.
type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=128"`
	FullName string `json:"fullName" validate:"required,min=1,max=120"`
	Username string `json:"username" validate:"omitempty,min=3,max=40,alphanumunicode"`
}

// LoginRequest captures the credentials sent to the login endpoint.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RefreshRequest pairs the (possibly expired) access token with its refresh token.
type RefreshRequest struct {
	AccessToken  string `json:"accessToken" validate:"required"`
	RefreshToken string `json:"refreshToken" validate:"required"`
}

// InterestRequest toggles one onboarding interest.
type InterestRequest struct {
	Domain string `json:"domain" validate:"required,max=60"`
}

// UserDTO is the public view of a learner.
type UserDTO struct {
	ID          uuid.UUID  `json:"id"`
	Username    string     `json:"username"`
	Email       string     `json:"email"`
	FullName    string     `json:"fullName"`
	Interests   []string   `json:"interests"`
	LastLoginAt *time.Time `json:"lastLoginAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
}

// AuthResponse is returned by register, login and refresh.
type AuthResponse struct {
	AccessToken  string   `json:"accessToken"`
	RefreshToken string   `json:"refreshToken"`
	ExpiresIn    int64    `json:"expiresIn"`
	User         *UserDTO `json:"user"`
}

// FromModel maps a persisted user into its DTO.
func FromModel(m *models.User) *UserDTO {
	if m == nil {
		return nil
	}
	interests := m.Interests
	if interests == nil {
		interests = []string{}
	}
	return &UserDTO{
		ID:          m.ID,
		Username:    m.Username,
		Email:       m.Email,
		FullName:    m.FullName,
		Interests:   interests,
		LastLoginAt: m.LastLoginAt,
		CreatedAt:   m.CreatedAt,
	}
}
