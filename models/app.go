package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// App is a testimonial collection endpoint owned by a user. Customer
// testimonials are submitted against it using its current API key.
type App struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	UserID    uuid.UUID `json:"user_id" gorm:"type:uuid;not null;index"`
	Name      string    `json:"name" gorm:"size:100;not null"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (App) TableName() string {
	return "apps"
}

func (a *App) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

// APIKey stores only the SHA-256 of the key; the plaintext is shown exactly
// once at creation. An app has at most one active key.
type APIKey struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	AppID     uuid.UUID `json:"app_id" gorm:"type:uuid;not null;uniqueIndex"`
	KeyPrefix string    `json:"key_prefix" gorm:"size:20;not null"`
	KeyHash   string    `json:"-" gorm:"uniqueIndex;size:64;not null"`
	CreatedAt time.Time `json:"created_at"`
}

func (APIKey) TableName() string {
	return "api_keys"
}

func (k *APIKey) BeforeCreate(tx *gorm.DB) error {
	if k.ID == uuid.Nil {
		k.ID = uuid.New()
	}
	return nil
}

type Testimonial struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	AppID     uuid.UUID `json:"app_id" gorm:"type:uuid;not null;index"`
	Author    string    `json:"author" gorm:"size:100;not null"`
	Content   string    `json:"content" gorm:"size:1000;not null"`
	Rating    int       `json:"rating" gorm:"not null"`
	CreatedAt time.Time `json:"created_at"`
}

func (Testimonial) TableName() string {
	return "testimonials"
}

func (t *Testimonial) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}
