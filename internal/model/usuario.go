package model

import (
	"time"

	"github.com/google/uuid"
)

// Roles. Self-registration always yields RoleCaixa; admins are seeded.
const (
	RoleAdmin = "admin"
	RoleCaixa = "caixa"
)

// Usuario stores system operators with role-based access.
type Usuario struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Nome      string    `gorm:"not null"`
	Email     string    `gorm:"uniqueIndex;not null"`
	SenhaHash string    `gorm:"not null"`
	Role      string    `gorm:"type:varchar(10);not null;default:'caixa'"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
