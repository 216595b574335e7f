package handlers

import (
	"encoding/base64"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/ovation-labs/ovation/config"
	"github.com/ovation-labs/ovation/services/auth"
	"github.com/ovation-labs/ovation/services/logging"
	"github.com/ovation-labs/ovation/session"
)

type AuthHandler struct {
	authService *auth.Service
	config      *config.Config
	logger      *logging.Service
}

func NewAuthHandler(authService *auth.Service, cfg *config.Config, logger *logging.Service) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		config:      cfg,
		logger:      logger,
	}
}

type signinPayload struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

func (h *AuthHandler) SignIn(c echo.Context) error {
	var payload signinPayload
	if !bindAndValidate(c, &payload) {
		return nil
	}

	result, err := h.authService.SignInWithEmail(c.Request().Context(), payload.Email, payload.Password)
	if err != nil {
		return respondDomainError(c, h.logger, err)
	}

	if result.SessionEstablished {
		session.Login(c, result.UserID)
		return c.JSON(http.StatusOK, map[string]any{
			"success":    "Signed in",
			"redirectTo": result.RedirectTo,
		})
	}

	return c.JSON(http.StatusOK, map[string]any{
		"userId":  result.UserID,
		"success": result.Success,
	})
}

type verifyEmailPayload struct {
	UserID string `json:"userId" validate:"required,uuid"`
	Token  string `json:"token" validate:"required"`
}

func (h *AuthHandler) VerifyEmail(c echo.Context) error {
	var payload verifyEmailPayload
	if !bindAndValidate(c, &payload) {
		return nil
	}

	userID, err := uuid.Parse(payload.UserID)
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: msgInvalidFields})
	}

	result, err := h.authService.VerifyEmail(c.Request().Context(), userID, payload.Token)
	if err != nil {
		return respondDomainError(c, h.logger, err)
	}

	session.Login(c, result.UserID)
	return c.JSON(http.StatusOK, map[string]any{
		"success":    "Email verified",
		"redirectTo": result.RedirectTo,
	})
}

type resendTokenPayload struct {
	UserID string `json:"userId" validate:"required,uuid"`
}

func (h *AuthHandler) ResendToken(c echo.Context) error {
	var payload resendTokenPayload
	if !bindAndValidate(c, &payload) {
		return nil
	}

	userID, err := uuid.Parse(payload.UserID)
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: msgInvalidFields})
	}

	if err := h.authService.ResendToken(c.Request().Context(), userID); err != nil {
		return respondDomainError(c, h.logger, err)
	}

	return c.JSON(http.StatusOK, map[string]any{"success": "Token resended successfully"})
}

func (h *AuthHandler) GetUserEmail(c echo.Context) error {
	userID, err := uuid.Parse(c.QueryParam("userId"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: msgInvalidFields})
	}

	info, err := h.authService.GetUserEmail(c.Request().Context(), userID)
	if err != nil {
		return respondDomainError(c, h.logger, err)
	}

	return c.JSON(http.StatusOK, info)
}

// SigninType reports whether the authenticated user signed up with
// credentials, so the UI can decide whether to offer a password change.
func (h *AuthHandler) SigninType(c echo.Context) error {
	userID := session.GetUserID(c)
	if userID == uuid.Nil {
		return c.JSON(http.StatusUnauthorized, errorResponse{Error: msgUnauthorized})
	}

	isCredentials, err := h.authService.IsCredentialsUser(c.Request().Context(), userID)
	if err != nil {
		return respondDomainError(c, h.logger, err)
	}

	return c.JSON(http.StatusOK, map[string]any{"isCredentialsSignin": isCredentials})
}

type updateUserPayload struct {
	Name        string `json:"name" validate:"max=100"`
	Image       string `json:"image" validate:"omitempty,max=10485760"`
	NewPassword string `json:"newPassword" validate:"omitempty,min=8,max=72"`
}

func (h *AuthHandler) UpdateUser(c echo.Context) error {
	var payload updateUserPayload
	if !bindAndValidate(c, &payload) {
		return nil
	}

	userID := session.GetUserID(c)
	if userID == uuid.Nil {
		return c.JSON(http.StatusUnauthorized, errorResponse{Error: msgUnauthorized})
	}

	params := auth.UpdateUserParams{
		Name:        payload.Name,
		NewPassword: payload.NewPassword,
	}

	if payload.Image != "" {
		data, contentType, err := decodeDataURI(payload.Image)
		if err != nil {
			return c.JSON(http.StatusBadRequest, errorResponse{Error: msgInvalidFields})
		}
		params.Image = data
		params.ImageType = contentType
	}

	if err := h.authService.UpdateUser(c.Request().Context(), userID, params); err != nil {
		return respondDomainError(c, h.logger, err)
	}

	return c.JSON(http.StatusOK, map[string]any{"success": "Profile updated"})
}

// decodeDataURI splits a "data:<type>;base64,<payload>" image submission into
// raw bytes and its content type.
func decodeDataURI(uri string) ([]byte, string, error) {
	const prefix = "data:"
	if !strings.HasPrefix(uri, prefix) {
		return nil, "", echo.ErrBadRequest
	}

	meta, payload, found := strings.Cut(uri[len(prefix):], ",")
	if !found || !strings.HasSuffix(meta, ";base64") {
		return nil, "", echo.ErrBadRequest
	}

	contentType := strings.TrimSuffix(meta, ";base64")
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, "", err
	}

	return data, contentType, nil
}
