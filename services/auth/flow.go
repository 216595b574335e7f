package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/ovation-labs/ovation/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// SignInResult is the outcome of a successful sign-in step. Exactly one of
// the two shapes is populated: a pending-verification acknowledgement
// (Success set), or an established session with its redirect target.
type SignInResult struct {
	UserID             uuid.UUID
	Success            string
	SessionEstablished bool
	RedirectTo         string
}

const successVerificationSent = "Verification email sent"

// SignInWithEmail drives the credentials sign-in state machine. Unknown
// emails register a new account and enter pending verification; known
// unverified accounts re-enter it with a fresh token; verified accounts get
// a session.
func (s *Service) SignInWithEmail(ctx context.Context, email, password string) (*SignInResult, error) {
	user, err := s.getUserByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	if user == nil {
		return s.registerUser(ctx, email, password)
	}

	if !user.IsCredentialsUser() {
		return nil, ErrProviderMismatch
	}

	if err := s.VerifyPassword(*user.Password, password); err != nil {
		return nil, ErrInvalidCredentials
	}

	if !user.IsVerified() {
		if err := s.enterPendingVerification(ctx, user); err != nil {
			return nil, err
		}
		return &SignInResult{UserID: user.ID, Success: successVerificationSent}, nil
	}

	if s.logger != nil {
		s.logger.Info("credentials sign-in succeeded", zap.String("user_id", user.ID.String()))
	}
	return &SignInResult{
		UserID:             user.ID,
		SessionEstablished: true,
		RedirectTo:         s.config.App.LoginRedirect,
	}, nil
}

func (s *Service) registerUser(ctx context.Context, email, password string) (*SignInResult, error) {
	hash, err := s.HashPassword(password)
	if err != nil {
		return nil, err
	}

	user := &models.User{Email: email, Password: &hash}
	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("new user registered",
			zap.String("user_id", user.ID.String()),
			zap.String("email", email))
	}

	if err := s.enterPendingVerification(ctx, user); err != nil {
		return nil, err
	}

	return &SignInResult{UserID: user.ID, Success: successVerificationSent}, nil
}

func (s *Service) enterPendingVerification(ctx context.Context, user *models.User) error {
	token, err := s.IssueVerificationToken(ctx, user.Email)
	if err != nil {
		return err
	}
	return s.sendVerificationEmail(user.Email, token.Token, user.ID.String())
}

// VerifyEmail consumes the live token for the user's email and marks the
// account verified. The token is single use: it is deleted in the same
// transaction that sets the verified timestamp.
func (s *Service) VerifyEmail(ctx context.Context, userID uuid.UUID, tokenValue string) (*SignInResult, error) {
	user, err := s.getUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	token, err := s.GetVerificationTokenByEmail(ctx, user.Email)
	if err != nil {
		return nil, err
	}

	if token.Token != tokenValue {
		return nil, ErrTokenMismatch
	}

	if token.IsExpired() {
		return nil, ErrTokenExpired
	}

	now := time.Now()
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&models.VerificationToken{}, "id = ?", token.ID).Error; err != nil {
			return err
		}
		return tx.Model(&models.User{}).Where("id = ?", user.ID).Update("email_verified_at", now).Error
	})
	if err != nil {
		return nil, fmt.Errorf("failed to mark email as verified: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("email verified",
			zap.String("user_id", user.ID.String()),
			zap.String("email", user.Email))
	}

	return &SignInResult{
		UserID:             user.ID,
		SessionEstablished: true,
		RedirectTo:         s.config.App.LoginRedirect,
	}, nil
}

// ResendToken re-issues the verification token for an unverified account.
// Safe to call repeatedly: each call replaces the previous token.
func (s *Service) ResendToken(ctx context.Context, userID uuid.UUID) error {
	user, err := s.getUserByID(ctx, userID)
	if err != nil {
		return err
	}

	if user.IsVerified() {
		return ErrAlreadyVerified
	}

	return s.enterPendingVerification(ctx, user)
}

type UserEmail struct {
	Email           string     `json:"email"`
	EmailVerifiedAt *time.Time `json:"emailVerified"`
}

func (s *Service) GetUserEmail(ctx context.Context, userID uuid.UUID) (*UserEmail, error) {
	user, err := s.getUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &UserEmail{Email: user.Email, EmailVerifiedAt: user.EmailVerifiedAt}, nil
}

// IsCredentialsUser reports whether the account signed up with credentials
// (holds a password hash) rather than a federated provider.
func (s *Service) IsCredentialsUser(ctx context.Context, userID uuid.UUID) (bool, error) {
	user, err := s.getUserByID(ctx, userID)
	if err != nil {
		return false, err
	}
	return user.IsCredentialsUser(), nil
}

type UpdateUserParams struct {
	Name        string
	Image       []byte
	ImageType   string
	NewPassword string
}

// UpdateUser applies a profile update. A supplied image is uploaded first and
// any upload failure aborts the whole operation, so no partial update is
// persisted. A password change is only honoured for credentials accounts.
func (s *Service) UpdateUser(ctx context.Context, userID uuid.UUID, params UpdateUserParams) error {
	user, err := s.getUserByID(ctx, userID)
	if err != nil {
		return err
	}

	avatarURL := user.AvatarURL
	if len(params.Image) > 0 {
		if s.uploader == nil {
			return fmt.Errorf("storage service is not configured")
		}
		url, err := s.uploader.UploadAvatar(ctx, params.Image, params.ImageType)
		if err != nil {
			return fmt.Errorf("failed to upload avatar: %w", err)
		}
		avatarURL = &url
	}

	var name *string
	if params.Name != "" {
		name = &params.Name
	}

	updates := map[string]any{
		"name":       name,
		"avatar_url": avatarURL,
	}

	if user.IsCredentialsUser() && params.NewPassword != "" {
		hash, err := s.HashPassword(params.NewPassword)
		if err != nil {
			return err
		}
		updates["password"] = hash
	}

	if err := s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", user.ID).Updates(updates).Error; err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("profile updated", zap.String("user_id", user.ID.String()))
	}
	return nil
}

// Authorize is the credentials check used when establishing a session.
// Absent users and federated-only accounts fail as a plain credentials
// mismatch rather than a distinct error. The password is always compared,
// including for already-verified accounts.
func (s *Service) Authorize(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.getUserByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	if user == nil || !user.IsCredentialsUser() {
		return nil, ErrInvalidCredentials
	}

	if err := s.VerifyPassword(*user.Password, password); err != nil {
		return nil, ErrInvalidCredentials
	}

	return user, nil
}
