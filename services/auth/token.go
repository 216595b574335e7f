package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ovation-labs/ovation/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// IssueVerificationToken creates a fresh verification token for the email,
// replacing any previously issued one. The delete and insert run in a single
// transaction so at most one live token exists per address.
func (s *Service) IssueVerificationToken(ctx context.Context, email string) (*models.VerificationToken, error) {
	value, err := s.generateTokenValue()
	if err != nil {
		if s.logger != nil {
			s.logger.Error("failed to generate verification token", zap.Error(err), zap.String("email", email))
		}
		return nil, err
	}

	token := &models.VerificationToken{
		Email:     email,
		Token:     value,
		ExpiresAt: time.Now().Add(s.config.Auth.VerificationTokenExpiry),
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("email = ?", email).Delete(&models.VerificationToken{}).Error; err != nil {
			return err
		}
		return tx.Create(token).Error
	})
	if err != nil {
		if s.logger != nil {
			s.logger.Error("failed to persist verification token", zap.Error(err), zap.String("email", email))
		}
		return nil, fmt.Errorf("failed to create verification token: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("verification token issued",
			zap.String("email", email),
			zap.Time("expires_at", token.ExpiresAt))
	}
	return token, nil
}

// GetVerificationTokenByEmail returns the live token for the email, or
// ErrTokenNotFound when none exists.
func (s *Service) GetVerificationTokenByEmail(ctx context.Context, email string) (*models.VerificationToken, error) {
	var token models.VerificationToken
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&token).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTokenNotFound
		}
		return nil, fmt.Errorf("failed to look up verification token: %w", err)
	}
	return &token, nil
}

func (s *Service) sendVerificationEmail(email, tokenValue string, userID string) error {
	if s.mailService == nil {
		return fmt.Errorf("mail service is not configured")
	}

	verificationURL := fmt.Sprintf("%s/verify-email?userId=%s&token=%s", s.config.App.URL, userID, tokenValue)

	data := map[string]any{
		"Email":           email,
		"VerificationURL": verificationURL,
		"Token":           tokenValue,
		"ExpiryDuration":  s.config.Auth.VerificationTokenExpiry.String(),
		"AppName":         s.config.App.Name,
	}

	subject := "Please verify your email address"
	if err := s.mailService.SendTemplate("email_verification", []string{email}, subject, data); err != nil {
		if s.logger != nil {
			s.logger.Error("failed to send verification email", zap.Error(err), zap.String("email", email))
		}
		return fmt.Errorf("failed to send verification email: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("verification email sent", zap.String("email", email))
	}
	return nil
}
