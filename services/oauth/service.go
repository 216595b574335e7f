package oauth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/ovation-labs/ovation/config"
	"github.com/ovation-labs/ovation/models"
	"github.com/ovation-labs/ovation/services/logging"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/github"
	"golang.org/x/oauth2/google"
	"gorm.io/gorm"
)

type Provider string

const (
	ProviderGoogle Provider = "google"
	ProviderGitHub Provider = "github"
)

var (
	ErrUnknownProvider = errors.New("unknown oauth provider")
	ErrInvalidState    = errors.New("invalid oauth state")
	ErrNoEmail         = errors.New("provider returned no email address")
)

// UserInfo is the subset of a provider's profile the sign-in flow needs.
type UserInfo struct {
	Email     string
	Name      string
	AvatarURL string
}

type Service struct {
	config     *config.Config
	db         *gorm.DB
	logger     *logging.Service
	providers  map[Provider]*oauth2.Config
	httpClient *http.Client
}

func NewService(cfg *config.Config, db *gorm.DB, logger *logging.Service) *Service {
	providers := map[Provider]*oauth2.Config{
		ProviderGoogle: {
			ClientID:     cfg.OAuth.Google.ClientID,
			ClientSecret: cfg.OAuth.Google.ClientSecret,
			Endpoint:     google.Endpoint,
			RedirectURL:  fmt.Sprintf("%s/auth/google/callback", cfg.App.URL),
			Scopes:       []string{"openid", "email", "profile"},
		},
		ProviderGitHub: {
			ClientID:     cfg.OAuth.GitHub.ClientID,
			ClientSecret: cfg.OAuth.GitHub.ClientSecret,
			Endpoint:     github.Endpoint,
			RedirectURL:  fmt.Sprintf("%s/auth/github/callback", cfg.App.URL),
			Scopes:       []string{"read:user", "user:email"},
		},
	}

	return &Service{
		config:     cfg,
		db:         db,
		logger:     logger,
		providers:  providers,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// AuthCodeURL builds the provider's consent URL with a signed state value,
// so the callback can verify the round trip without server-side storage.
func (s *Service) AuthCodeURL(provider Provider) (string, error) {
	cfg, ok := s.providers[provider]
	if !ok {
		return "", ErrUnknownProvider
	}

	state, err := s.signState(provider)
	if err != nil {
		return "", err
	}

	return cfg.AuthCodeURL(state), nil
}

func (s *Service) signState(provider Provider) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"provider": string(provider),
		"iat":      now.Unix(),
		"exp":      now.Add(s.config.OAuth.StateExpiry).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.config.OAuth.StateSecret))
	if err != nil {
		return "", fmt.Errorf("failed to sign oauth state: %w", err)
	}
	return signed, nil
}

func (s *Service) verifyState(provider Provider, state string) error {
	token, err := jwt.Parse(state, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.config.OAuth.StateSecret), nil
	})
	if err != nil || !token.Valid {
		return ErrInvalidState
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || claims["provider"] != string(provider) {
		return ErrInvalidState
	}
	return nil
}

// HandleCallback completes the handshake: state check, code exchange,
// profile fetch, then upsert of the federated user. Federated accounts are
// verified immediately since the provider vouches for the email.
func (s *Service) HandleCallback(ctx context.Context, provider Provider, state, code string) (*models.User, error) {
	cfg, ok := s.providers[provider]
	if !ok {
		return nil, ErrUnknownProvider
	}

	if err := s.verifyState(provider, state); err != nil {
		return nil, err
	}

	token, err := cfg.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange authorization code: %w", err)
	}

	info, err := s.fetchUserInfo(ctx, provider, token.AccessToken)
	if err != nil {
		return nil, err
	}

	if info.Email == "" {
		return nil, ErrNoEmail
	}

	return s.upsertFederatedUser(ctx, info)
}

func (s *Service) fetchUserInfo(ctx context.Context, provider Provider, accessToken string) (*UserInfo, error) {
	switch provider {
	case ProviderGoogle:
		return s.fetchGoogleUserInfo(ctx, accessToken)
	case ProviderGitHub:
		return s.fetchGitHubUserInfo(ctx, accessToken)
	default:
		return nil, ErrUnknownProvider
	}
}

func (s *Service) fetchGoogleUserInfo(ctx context.Context, accessToken string) (*UserInfo, error) {
	var payload struct {
		Email   string `json:"email"`
		Name    string `json:"name"`
		Picture string `json:"picture"`
	}
	if err := s.getJSON(ctx, "https://www.googleapis.com/oauth2/v1/userinfo", accessToken, &payload); err != nil {
		return nil, err
	}

	return &UserInfo{Email: payload.Email, Name: payload.Name, AvatarURL: payload.Picture}, nil
}

func (s *Service) fetchGitHubUserInfo(ctx context.Context, accessToken string) (*UserInfo, error) {
	var payload struct {
		Email     string `json:"email"`
		Name      string `json:"name"`
		AvatarURL string `json:"avatar_url"`
	}
	if err := s.getJSON(ctx, "https://api.github.com/user", accessToken, &payload); err != nil {
		return nil, err
	}

	info := &UserInfo{Email: payload.Email, Name: payload.Name, AvatarURL: payload.AvatarURL}

	// The profile email is empty when the user keeps it private; the emails
	// endpoint still exposes the primary verified address.
	if info.Email == "" {
		var emails []struct {
			Email    string `json:"email"`
			Primary  bool   `json:"primary"`
			Verified bool   `json:"verified"`
		}
		if err := s.getJSON(ctx, "https://api.github.com/user/emails", accessToken, &emails); err != nil {
			return nil, err
		}
		for _, e := range emails {
			if e.Primary && e.Verified {
				info.Email = e.Email
				break
			}
		}
	}

	return info, nil
}

func (s *Service) getJSON(ctx context.Context, url, accessToken string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Accept", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d from %s", resp.StatusCode, url)
	}

	return json.NewDecoder(resp.Body).Decode(out)
}

func (s *Service) upsertFederatedUser(ctx context.Context, info *UserInfo) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where("email = ?", info.Email).First(&user).Error
	if err == nil {
		return &user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to look up federated user: %w", err)
	}

	now := time.Now()
	user = models.User{
		Email:           info.Email,
		EmailVerifiedAt: &now,
	}
	if info.Name != "" {
		user.Name = &info.Name
	}
	if info.AvatarURL != "" {
		user.AvatarURL = &info.AvatarURL
	}

	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		return nil, fmt.Errorf("failed to create federated user: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("federated user registered",
			zap.String("user_id", user.ID.String()),
			zap.String("email", user.Email))
	}
	return &user, nil
}
