package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/google/uuid"
	"github.com/ovation-labs/ovation/models"
	"github.com/ovation-labs/ovation/testutils"
	"gorm.io/gorm"
)

func newTestService(t *testing.T) (*Service, *gorm.DB, *testutils.MockMailService) {
	db := testutils.SetupTestDB(t, &models.User{}, &models.VerificationToken{})
	service := NewService(testutils.GetTestConfig(), db, nil)

	mockMail := &testutils.MockMailService{}
	mockMail.On("SendTemplate", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)
	service.SetMailService(mockMail)

	return service, db, mockMail
}

func createCredentialsUser(t *testing.T, service *Service, db *gorm.DB, email, password string, verified bool) *models.User {
	hash, err := service.HashPassword(password)
	require.NoError(t, err)

	user := &models.User{Email: email, Password: &hash}
	if verified {
		now := time.Now()
		user.EmailVerifiedAt = &now
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func createFederatedUser(t *testing.T, db *gorm.DB, email string) *models.User {
	now := time.Now()
	user := &models.User{Email: email, EmailVerifiedAt: &now}
	require.NoError(t, db.Create(user).Error)
	return user
}

func TestService_SignInWithEmail(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown email registers user and sends verification email", func(t *testing.T) {
		service, db, mockMail := newTestService(t)

		result, err := service.SignInWithEmail(ctx, "a@x.com", "secret123")

		require.NoError(t, err)
		assert.Equal(t, "Verification email sent", result.Success)
		assert.False(t, result.SessionEstablished)

		var users []models.User
		require.NoError(t, db.Find(&users).Error)
		require.Len(t, users, 1)
		assert.Equal(t, "a@x.com", users[0].Email)
		assert.Equal(t, result.UserID, users[0].ID)
		assert.Nil(t, users[0].EmailVerifiedAt)
		require.NotNil(t, users[0].Password)
		assert.NotEqual(t, "secret123", *users[0].Password)

		var tokens []models.VerificationToken
		require.NoError(t, db.Where("email = ?", "a@x.com").Find(&tokens).Error)
		assert.Len(t, tokens, 1)

		mockMail.AssertNumberOfCalls(t, "SendTemplate", 1)
	})

	t.Run("repeat unverified sign-in replaces token instead of duplicating", func(t *testing.T) {
		service, db, mockMail := newTestService(t)

		first, err := service.SignInWithEmail(ctx, "a@x.com", "secret123")
		require.NoError(t, err)

		var oldToken models.VerificationToken
		require.NoError(t, db.Where("email = ?", "a@x.com").First(&oldToken).Error)

		second, err := service.SignInWithEmail(ctx, "a@x.com", "secret123")
		require.NoError(t, err)
		assert.Equal(t, first.UserID, second.UserID)
		assert.Equal(t, "Verification email sent", second.Success)

		var tokens []models.VerificationToken
		require.NoError(t, db.Where("email = ?", "a@x.com").Find(&tokens).Error)
		require.Len(t, tokens, 1)
		assert.NotEqual(t, oldToken.Token, tokens[0].Token)

		mockMail.AssertNumberOfCalls(t, "SendTemplate", 2)
	})

	t.Run("federated-only account cannot use credentials path", func(t *testing.T) {
		service, db, _ := newTestService(t)
		createFederatedUser(t, db, "fed@x.com")

		result, err := service.SignInWithEmail(ctx, "fed@x.com", "secret123")

		assert.Nil(t, result)
		require.Error(t, err)
		assert.Equal(t, ErrProviderMismatch, err)
	})

	t.Run("wrong password fails without issuing a token", func(t *testing.T) {
		service, db, mockMail := newTestService(t)
		createCredentialsUser(t, service, db, "b@x.com", "secret123", false)

		result, err := service.SignInWithEmail(ctx, "b@x.com", "wrongpass1")

		assert.Nil(t, result)
		assert.Equal(t, ErrInvalidCredentials, err)

		var count int64
		require.NoError(t, db.Model(&models.VerificationToken{}).Count(&count).Error)
		assert.Zero(t, count)
		mockMail.AssertNumberOfCalls(t, "SendTemplate", 0)
	})

	t.Run("verified user gets a session", func(t *testing.T) {
		service, db, mockMail := newTestService(t)
		user := createCredentialsUser(t, service, db, "c@x.com", "secret123", true)

		result, err := service.SignInWithEmail(ctx, "c@x.com", "secret123")

		require.NoError(t, err)
		assert.True(t, result.SessionEstablished)
		assert.Equal(t, user.ID, result.UserID)
		assert.Equal(t, "/dashboard", result.RedirectTo)
		mockMail.AssertNumberOfCalls(t, "SendTemplate", 0)
	})
}

func TestService_VerifyEmail(t *testing.T) {
	ctx := context.Background()

	t.Run("correct token verifies user and consumes token", func(t *testing.T) {
		service, db, _ := newTestService(t)
		user := createCredentialsUser(t, service, db, "a@x.com", "secret123", false)
		token, err := service.IssueVerificationToken(ctx, user.Email)
		require.NoError(t, err)

		result, err := service.VerifyEmail(ctx, user.ID, token.Token)

		require.NoError(t, err)
		assert.True(t, result.SessionEstablished)
		assert.Equal(t, "/dashboard", result.RedirectTo)

		var updated models.User
		require.NoError(t, db.First(&updated, "id = ?", user.ID).Error)
		assert.NotNil(t, updated.EmailVerifiedAt)

		var count int64
		require.NoError(t, db.Model(&models.VerificationToken{}).Where("email = ?", user.Email).Count(&count).Error)
		assert.Zero(t, count)
	})

	t.Run("second verification with consumed token fails", func(t *testing.T) {
		service, db, _ := newTestService(t)
		user := createCredentialsUser(t, service, db, "a@x.com", "secret123", false)
		token, err := service.IssueVerificationToken(ctx, user.Email)
		require.NoError(t, err)

		_, err = service.VerifyEmail(ctx, user.ID, token.Token)
		require.NoError(t, err)

		_, err = service.VerifyEmail(ctx, user.ID, token.Token)
		require.Error(t, err)
		assert.Equal(t, ErrTokenNotFound, err)
	})

	t.Run("mismatched token leaves user untouched", func(t *testing.T) {
		service, db, _ := newTestService(t)
		user := createCredentialsUser(t, service, db, "a@x.com", "secret123", false)
		_, err := service.IssueVerificationToken(ctx, user.Email)
		require.NoError(t, err)

		result, err := service.VerifyEmail(ctx, user.ID, "wrong")

		assert.Nil(t, result)
		assert.Equal(t, ErrTokenMismatch, err)

		var updated models.User
		require.NoError(t, db.First(&updated, "id = ?", user.ID).Error)
		assert.Nil(t, updated.EmailVerifiedAt)

		var count int64
		require.NoError(t, db.Model(&models.VerificationToken{}).Where("email = ?", user.Email).Count(&count).Error)
		assert.Equal(t, int64(1), count)
	})

	t.Run("expired token is rejected without mutation", func(t *testing.T) {
		service, db, _ := newTestService(t)
		user := createCredentialsUser(t, service, db, "a@x.com", "secret123", false)

		expired := &models.VerificationToken{
			Email:     user.Email,
			Token:     "expired-token",
			ExpiresAt: time.Now().Add(-time.Hour),
		}
		require.NoError(t, db.Create(expired).Error)

		result, err := service.VerifyEmail(ctx, user.ID, "expired-token")

		assert.Nil(t, result)
		assert.Equal(t, ErrTokenExpired, err)

		var updated models.User
		require.NoError(t, db.First(&updated, "id = ?", user.ID).Error)
		assert.Nil(t, updated.EmailVerifiedAt)
	})

	t.Run("unknown user", func(t *testing.T) {
		service, _, _ := newTestService(t)

		_, err := service.VerifyEmail(ctx, uuid.New(), "whatever")

		assert.Equal(t, ErrUserNotFound, err)
	})

	t.Run("no live token", func(t *testing.T) {
		service, db, _ := newTestService(t)
		user := createCredentialsUser(t, service, db, "a@x.com", "secret123", false)

		_, err := service.VerifyEmail(ctx, user.ID, "whatever")

		assert.Equal(t, ErrTokenNotFound, err)
	})
}

func TestService_ResendToken(t *testing.T) {
	ctx := context.Background()

	t.Run("unverified user gets a fresh token", func(t *testing.T) {
		service, db, mockMail := newTestService(t)
		user := createCredentialsUser(t, service, db, "a@x.com", "secret123", false)

		require.NoError(t, service.ResendToken(ctx, user.ID))
		require.NoError(t, service.ResendToken(ctx, user.ID))

		var count int64
		require.NoError(t, db.Model(&models.VerificationToken{}).Where("email = ?", user.Email).Count(&count).Error)
		assert.Equal(t, int64(1), count)
		mockMail.AssertNumberOfCalls(t, "SendTemplate", 2)
	})

	t.Run("already verified user is refused and no token is issued", func(t *testing.T) {
		service, db, mockMail := newTestService(t)
		user := createCredentialsUser(t, service, db, "a@x.com", "secret123", true)

		err := service.ResendToken(ctx, user.ID)

		assert.Equal(t, ErrAlreadyVerified, err)

		var count int64
		require.NoError(t, db.Model(&models.VerificationToken{}).Count(&count).Error)
		assert.Zero(t, count)
		mockMail.AssertNumberOfCalls(t, "SendTemplate", 0)
	})

	t.Run("unknown user", func(t *testing.T) {
		service, _, _ := newTestService(t)

		err := service.ResendToken(ctx, uuid.New())

		assert.Equal(t, ErrUserNotFound, err)
	})
}

func TestService_GetUserEmail(t *testing.T) {
	ctx := context.Background()
	service, db, _ := newTestService(t)
	user := createCredentialsUser(t, service, db, "a@x.com", "secret123", true)

	t.Run("returns email and verification timestamp", func(t *testing.T) {
		info, err := service.GetUserEmail(ctx, user.ID)

		require.NoError(t, err)
		assert.Equal(t, "a@x.com", info.Email)
		assert.NotNil(t, info.EmailVerifiedAt)
	})

	t.Run("unknown user", func(t *testing.T) {
		_, err := service.GetUserEmail(ctx, uuid.New())

		assert.Equal(t, ErrUserNotFound, err)
	})
}

func TestService_IsCredentialsUser(t *testing.T) {
	ctx := context.Background()
	service, db, _ := newTestService(t)

	credentials := createCredentialsUser(t, service, db, "cred@x.com", "secret123", true)
	federated := createFederatedUser(t, db, "fed@x.com")

	isCred, err := service.IsCredentialsUser(ctx, credentials.ID)
	require.NoError(t, err)
	assert.True(t, isCred)

	isCred, err = service.IsCredentialsUser(ctx, federated.ID)
	require.NoError(t, err)
	assert.False(t, isCred)
}

func TestService_UpdateUser(t *testing.T) {
	ctx := context.Background()

	t.Run("password change is ignored for federated accounts", func(t *testing.T) {
		service, db, _ := newTestService(t)
		user := createFederatedUser(t, db, "fed@x.com")

		err := service.UpdateUser(ctx, user.ID, UpdateUserParams{NewPassword: "NewSecret123"})

		require.NoError(t, err)

		var updated models.User
		require.NoError(t, db.First(&updated, "id = ?", user.ID).Error)
		assert.Nil(t, updated.Password)
	})

	t.Run("password change is applied for credentials accounts", func(t *testing.T) {
		service, db, _ := newTestService(t)
		user := createCredentialsUser(t, service, db, "cred@x.com", "secret123", true)

		err := service.UpdateUser(ctx, user.ID, UpdateUserParams{NewPassword: "NewSecret123"})

		require.NoError(t, err)

		var updated models.User
		require.NoError(t, db.First(&updated, "id = ?", user.ID).Error)
		require.NotNil(t, updated.Password)
		assert.NoError(t, service.VerifyPassword(*updated.Password, "NewSecret123"))
	})

	t.Run("empty name is normalised to unset", func(t *testing.T) {
		service, db, _ := newTestService(t)
		user := createCredentialsUser(t, service, db, "cred@x.com", "secret123", true)
		name := "Old Name"
		require.NoError(t, db.Model(user).Update("name", &name).Error)

		err := service.UpdateUser(ctx, user.ID, UpdateUserParams{Name: ""})

		require.NoError(t, err)

		var updated models.User
		require.NoError(t, db.First(&updated, "id = ?", user.ID).Error)
		assert.Nil(t, updated.Name)
	})

	t.Run("avatar upload failure aborts the whole update", func(t *testing.T) {
		service, db, _ := newTestService(t)
		user := createCredentialsUser(t, service, db, "cred@x.com", "secret123", true)

		uploader := &testutils.MockUploader{}
		uploader.On("UploadAvatar", mock.Anything, mock.Anything, mock.Anything).Return("", assert.AnError)
		service.SetUploader(uploader)

		err := service.UpdateUser(ctx, user.ID, UpdateUserParams{
			Name:      "New Name",
			Image:     []byte{0x89, 0x50},
			ImageType: "image/png",
		})

		require.Error(t, err)

		var updated models.User
		require.NoError(t, db.First(&updated, "id = ?", user.ID).Error)
		assert.Nil(t, updated.Name)
		assert.Nil(t, updated.AvatarURL)
	})

	t.Run("avatar upload stores returned url", func(t *testing.T) {
		service, db, _ := newTestService(t)
		user := createCredentialsUser(t, service, db, "cred@x.com", "secret123", true)

		uploader := &testutils.MockUploader{}
		uploader.On("UploadAvatar", mock.Anything, mock.Anything, "image/png").
			Return("https://cdn.example.com/avatars/a.png", nil)
		service.SetUploader(uploader)

		err := service.UpdateUser(ctx, user.ID, UpdateUserParams{
			Name:      "New Name",
			Image:     []byte{0x89, 0x50},
			ImageType: "image/png",
		})

		require.NoError(t, err)

		var updated models.User
		require.NoError(t, db.First(&updated, "id = ?", user.ID).Error)
		require.NotNil(t, updated.AvatarURL)
		assert.Equal(t, "https://cdn.example.com/avatars/a.png", *updated.AvatarURL)
		require.NotNil(t, updated.Name)
		assert.Equal(t, "New Name", *updated.Name)
	})
}

func TestService_Authorize(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown user fails as plain mismatch", func(t *testing.T) {
		service, _, _ := newTestService(t)

		user, err := service.Authorize(ctx, "nobody@x.com", "secret123")

		assert.Nil(t, user)
		assert.Equal(t, ErrInvalidCredentials, err)
	})

	t.Run("federated-only account fails as plain mismatch", func(t *testing.T) {
		service, db, _ := newTestService(t)
		createFederatedUser(t, db, "fed@x.com")

		user, err := service.Authorize(ctx, "fed@x.com", "secret123")

		assert.Nil(t, user)
		assert.Equal(t, ErrInvalidCredentials, err)
	})

	t.Run("password is compared even for verified accounts", func(t *testing.T) {
		service, db, _ := newTestService(t)
		createCredentialsUser(t, service, db, "cred@x.com", "secret123", true)

		user, err := service.Authorize(ctx, "cred@x.com", "wrongpass1")

		assert.Nil(t, user)
		assert.Equal(t, ErrInvalidCredentials, err)
	})

	t.Run("correct credentials return the user", func(t *testing.T) {
		service, db, _ := newTestService(t)
		created := createCredentialsUser(t, service, db, "cred@x.com", "secret123", true)

		user, err := service.Authorize(ctx, "cred@x.com", "secret123")

		require.NoError(t, err)
		assert.Equal(t, created.ID, user.ID)
	})
}
