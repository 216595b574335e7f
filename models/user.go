package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User is the identity record. Password is nil for accounts created through a
// federated provider; such accounts can never authenticate with credentials.
type User struct {
	ID              uuid.UUID  `json:"id" gorm:"type:uuid;primaryKey"`
	Email           string     `json:"email" gorm:"uniqueIndex;size:255;not null"`
	Password        *string    `json:"-" gorm:"size:255"`
	Name            *string    `json:"name,omitempty" gorm:"size:100"`
	AvatarURL       *string    `json:"avatar_url,omitempty" gorm:"size:500"`
	EmailVerifiedAt *time.Time `json:"email_verified_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// IsCredentialsUser reports whether the account holds a password hash and can
// therefore use the credentials sign-in path.
func (u *User) IsCredentialsUser() bool {
	return u.Password != nil && *u.Password != ""
}

func (u *User) IsVerified() bool {
	return u.EmailVerifiedAt != nil
}
