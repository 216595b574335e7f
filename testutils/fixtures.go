package testutils

import (
	"time"

	"github.com/ovation-labs/ovation/config"
	"golang.org/x/crypto/bcrypt"
)

func GetTestConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{
			Name:          "Ovation Test",
			URL:           "http://localhost:8080",
			LoginRedirect: "/dashboard",
		},
		Auth: config.AuthConfig{
			BcryptCost:              bcrypt.MinCost,
			VerificationTokenLength: 32,
			VerificationTokenExpiry: time.Hour,
			MinPasswordLength:       8,
			MaxPasswordLength:       72,
		},
		Session: config.SessionConfig{
			Store:    "memory",
			Name:     "ovation_session",
			MaxAge:   time.Hour,
			Path:     "/",
			HttpOnly: true,
			SameSite: "lax",
		},
		Database: config.DatabaseConfig{
			Driver: "sqlite",
			DSN:    ":memory:",
		},
		OAuth: config.OAuthConfig{
			StateSecret: "test-state-secret-32-chars-long!",
			StateExpiry: 10 * time.Minute,
		},
	}
}

var TestUsers = struct {
	Email    string
	Password string
}{
	Email:    "test@example.com",
	Password: "Password123",
}
