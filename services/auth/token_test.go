package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ovation-labs/ovation/models"
	"github.com/ovation-labs/ovation/testutils"
)

func TestService_IssueVerificationToken(t *testing.T) {
	db := testutils.SetupTestDB(t, &models.User{}, &models.VerificationToken{})
	cfg := testutils.GetTestConfig()
	service := NewService(cfg, db, nil)
	ctx := context.Background()
	testEmail := "test@example.com"

	t.Run("creates valid token", func(t *testing.T) {
		token, err := service.IssueVerificationToken(ctx, testEmail)

		require.NoError(t, err)
		assert.Equal(t, testEmail, token.Email)
		assert.NotEmpty(t, token.Token)
		assert.Len(t, token.Token, cfg.Auth.VerificationTokenLength*2)
		assert.True(t, token.ExpiresAt.After(time.Now()))
		assert.True(t, token.ExpiresAt.Before(time.Now().Add(time.Hour+time.Minute)))
	})

	t.Run("replaces previous token for the same email", func(t *testing.T) {
		token1, err := service.IssueVerificationToken(ctx, testEmail)
		require.NoError(t, err)

		token2, err := service.IssueVerificationToken(ctx, testEmail)
		require.NoError(t, err)

		assert.NotEqual(t, token1.Token, token2.Token)

		var count int64
		require.NoError(t, db.Model(&models.VerificationToken{}).Where("email = ?", testEmail).Count(&count).Error)
		assert.Equal(t, int64(1), count)

		current, err := service.GetVerificationTokenByEmail(ctx, testEmail)
		require.NoError(t, err)
		assert.Equal(t, token2.Token, current.Token)
	})

	t.Run("does not touch tokens for other emails", func(t *testing.T) {
		_, err := service.IssueVerificationToken(ctx, "other@example.com")
		require.NoError(t, err)

		_, err = service.IssueVerificationToken(ctx, testEmail)
		require.NoError(t, err)

		other, err := service.GetVerificationTokenByEmail(ctx, "other@example.com")
		require.NoError(t, err)
		assert.Equal(t, "other@example.com", other.Email)
	})
}

func TestService_GetVerificationTokenByEmail(t *testing.T) {
	db := testutils.SetupTestDB(t, &models.User{}, &models.VerificationToken{})
	service := NewService(testutils.GetTestConfig(), db, nil)
	ctx := context.Background()

	t.Run("returns ErrTokenNotFound when absent", func(t *testing.T) {
		token, err := service.GetVerificationTokenByEmail(ctx, "nobody@example.com")

		assert.Nil(t, token)
		require.Error(t, err)
		assert.Equal(t, ErrTokenNotFound, err)
	})

	t.Run("returns live token", func(t *testing.T) {
		issued, err := service.IssueVerificationToken(ctx, "someone@example.com")
		require.NoError(t, err)

		found, err := service.GetVerificationTokenByEmail(ctx, "someone@example.com")
		require.NoError(t, err)
		assert.Equal(t, issued.Token, found.Token)
	})
}
