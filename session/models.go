package session

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UserSession tracks an authenticated web session alongside the scs store so
// users' active sessions can be listed and revoked.
type UserSession struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	UserID    uuid.UUID `json:"user_id" gorm:"type:uuid;not null;index"`
	Token     string    `json:"-" gorm:"uniqueIndex;size:255;not null"`
	IPAddress string    `json:"ip_address" gorm:"size:45"`
	UserAgent string    `json:"user_agent" gorm:"size:500"`
	Browser   string    `json:"browser" gorm:"size:100"`
	Current   bool      `json:"current" gorm:"-"`
	CreatedAt time.Time `json:"created_at"`
	LastUsed  time.Time `json:"last_used"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (UserSession) TableName() string {
	return "user_sessions"
}

func (s *UserSession) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

type SessionService interface {
	TrackSession(userID uuid.UUID, token, ipAddress, userAgent string, expiresAt time.Time) error

	UpdateLastUsed(token string) error

	GetUserSessions(userID uuid.UUID, currentToken string) ([]UserSession, error)

	RevokeSession(userID, sessionID uuid.UUID) error

	CleanupExpiredSessions() error

	RemoveSessionByToken(token string) error
}
