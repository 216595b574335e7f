package apps

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/ovation-labs/ovation/models"
	"github.com/ovation-labs/ovation/services/logging"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const keyPrefix = "ov_"

var (
	ErrAppNotFound    = errors.New("app not found")
	ErrAPIKeyNotFound = errors.New("api key not found")
	ErrInvalidAPIKey  = errors.New("invalid api key")
	ErrNotAppOwner    = errors.New("app does not belong to user")
)

type Service struct {
	db     *gorm.DB
	logger *logging.Service
}

func NewService(db *gorm.DB, logger *logging.Service) *Service {
	return &Service{db: db, logger: logger}
}

func (s *Service) CreateApp(ctx context.Context, userID uuid.UUID, name string) (*models.App, error) {
	app := &models.App{UserID: userID, Name: name}
	if err := s.db.WithContext(ctx).Create(app).Error; err != nil {
		return nil, fmt.Errorf("failed to create app: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("app created",
			zap.String("app_id", app.ID.String()),
			zap.String("user_id", userID.String()))
	}
	return app, nil
}

func (s *Service) ListApps(ctx context.Context, userID uuid.UUID) ([]models.App, error) {
	var apps []models.App
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&apps).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list apps: %w", err)
	}
	return apps, nil
}

func (s *Service) getOwnedApp(ctx context.Context, userID, appID uuid.UUID) (*models.App, error) {
	var app models.App
	if err := s.db.WithContext(ctx).Where("id = ?", appID).First(&app).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAppNotFound
		}
		return nil, fmt.Errorf("failed to look up app: %w", err)
	}
	if app.UserID != userID {
		return nil, ErrNotAppOwner
	}
	return &app, nil
}

// CreateAPIKey mints a new key for the app, replacing any existing one. Only
// the SHA-256 is stored; the returned plaintext is shown exactly once.
func (s *Service) CreateAPIKey(ctx context.Context, userID, appID uuid.UUID) (string, error) {
	app, err := s.getOwnedApp(ctx, userID, appID)
	if err != nil {
		return "", err
	}

	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("failed to generate api key: %w", err)
	}
	plaintext := keyPrefix + hex.EncodeToString(raw)

	key := &models.APIKey{
		AppID:     app.ID,
		KeyPrefix: keyPrefix,
		KeyHash:   sha256Hex(plaintext),
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("app_id = ?", app.ID).Delete(&models.APIKey{}).Error; err != nil {
			return err
		}
		return tx.Create(key).Error
	})
	if err != nil {
		return "", fmt.Errorf("failed to store api key: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("api key rotated", zap.String("app_id", app.ID.String()))
	}
	return plaintext, nil
}

// HasAPIKey reports whether the app currently has a key issued.
func (s *Service) HasAPIKey(ctx context.Context, userID, appID uuid.UUID) (bool, error) {
	app, err := s.getOwnedApp(ctx, userID, appID)
	if err != nil {
		return false, err
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&models.APIKey{}).Where("app_id = ?", app.ID).Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check api key: %w", err)
	}
	return count > 0, nil
}

// ResolveAPIKey maps a presented plaintext key to its app.
func (s *Service) ResolveAPIKey(ctx context.Context, plaintext string) (*models.App, error) {
	var key models.APIKey
	err := s.db.WithContext(ctx).Where("key_hash = ?", sha256Hex(plaintext)).First(&key).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidAPIKey
		}
		return nil, fmt.Errorf("failed to resolve api key: %w", err)
	}

	var app models.App
	if err := s.db.WithContext(ctx).Where("id = ?", key.AppID).First(&app).Error; err != nil {
		return nil, fmt.Errorf("failed to load app for api key: %w", err)
	}
	return &app, nil
}

func (s *Service) SubmitTestimonial(ctx context.Context, appID uuid.UUID, author, content string, rating int) (*models.Testimonial, error) {
	testimonial := &models.Testimonial{
		AppID:   appID,
		Author:  author,
		Content: content,
		Rating:  rating,
	}
	if err := s.db.WithContext(ctx).Create(testimonial).Error; err != nil {
		return nil, fmt.Errorf("failed to store testimonial: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("testimonial submitted",
			zap.String("app_id", appID.String()),
			zap.Int("rating", rating))
	}
	return testimonial, nil
}

func (s *Service) ListTestimonials(ctx context.Context, userID, appID uuid.UUID) ([]models.Testimonial, error) {
	app, err := s.getOwnedApp(ctx, userID, appID)
	if err != nil {
		return nil, err
	}

	var testimonials []models.Testimonial
	err = s.db.WithContext(ctx).
		Where("app_id = ?", app.ID).
		Order("created_at DESC").
		Find(&testimonials).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list testimonials: %w", err)
	}
	return testimonials, nil
}

func sha256Hex(value string) string {
	hash := sha256.Sum256([]byte(value))
	return hex.EncodeToString(hash[:])
}
