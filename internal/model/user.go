package model

import (
	"time"
)

type UserRole string

const (
	RoleLearner    UserRole = "learner"
	RoleInstructor UserRole = "instructor"
	RoleAdmin      UserRole = "admin"
)

// User mirrors the identity provider's subject. The ID is the token's user_id,
// rows are upserted on every authenticated request.
// swagger:model User
type User struct {
	BaseModel
	Name     string    `gorm:"size:100" json:"name"`
	Email    string    `gorm:"size:100;index" json:"email"`
	Role     UserRole  `gorm:"size:20;default:'learner'" json:"role"`
	LastSeen time.Time `json:"lastSeen"`
}

func (User) TableName() string {
	return "users"
}
