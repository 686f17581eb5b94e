package users

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/sweetorder/sweetorder-backend/pkg/db/models"
	"github.com/sweetorder/sweetorder-backend/pkg/enums"
)

// UserDTO is the transport shape that omits sensitive credentials.
type UserDTO struct {
	ID          uuid.UUID      `json:"id"`
	Email       string         `json:"email"`
	Nickname    string         `json:"nickname"`
	Phone       *string        `json:"phone,omitempty"`
	Role        enums.UserRole `json:"role"`
	LastLoginAt *time.Time     `json:"lastLoginAt,omitempty"`
	CreatedAt   time.Time      `json:"createdAt"`
}

// CreateUserDTO holds the values required to insert a user.
type CreateUserDTO struct {
	Email        string
	PasswordHash string
	Nickname     string
	Phone        *string
	Role         enums.UserRole
}

// ToModel maps the DTO to the persistence model. Emails are stored lower-cased.
func (d CreateUserDTO) ToModel() *models.User {
	role := d.Role
	if role == "" {
		role = enums.UserRoleUser
	}
	return &models.User{
		Email:        strings.ToLower(strings.TrimSpace(d.Email)),
		PasswordHash: d.PasswordHash,
		Nickname:     strings.TrimSpace(d.Nickname),
		Phone:        d.Phone,
		Role:         role,
		IsActive:     true,
	}
}

// FromModel maps the persisted user into a DTO.
func FromModel(m *models.User) UserDTO {
	return UserDTO{
		ID:          m.ID,
		Email:       m.Email,
		Nickname:    m.Nickname,
		Phone:       m.Phone,
		Role:        m.Role,
		LastLoginAt: m.LastLoginAt,
		CreatedAt:   m.CreatedAt,
	}
}
