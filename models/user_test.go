package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestUser_IsCredentialsUser(t *testing.T) {
	hash := "$2a$10$abcdefghijklmnopqrstuv"
	empty := ""

	assert.True(t, (&User{Password: &hash}).IsCredentialsUser())
	assert.False(t, (&User{Password: nil}).IsCredentialsUser())
	assert.False(t, (&User{Password: &empty}).IsCredentialsUser())
}

func TestUser_IsVerified(t *testing.T) {
	now := time.Now()

	assert.True(t, (&User{EmailVerifiedAt: &now}).IsVerified())
	assert.False(t, (&User{}).IsVerified())
}

func TestVerificationToken_IsExpired(t *testing.T) {
	assert.False(t, (&VerificationToken{ExpiresAt: time.Now().Add(time.Hour)}).IsExpired())
	assert.True(t, (&VerificationToken{ExpiresAt: time.Now().Add(-time.Second)}).IsExpired())
}
