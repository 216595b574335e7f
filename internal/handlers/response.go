package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/ovation-labs/ovation/services/apps"
	"github.com/ovation-labs/ovation/services/auth"
	"github.com/ovation-labs/ovation/services/logging"
	"github.com/ovation-labs/ovation/services/oauth"
	"go.uber.org/zap"
)

type errorResponse struct {
	Error string `json:"error"`
}

const (
	msgInvalidFields      = "Invalid fields"
	msgUnauthorized       = "Unauthorized"
	msgSomethingWentWrong = "Something went wrong"
)

// domainErrorMessage maps sentinel errors to the exact strings callers see.
// Anything unmapped is an unexpected collaborator failure: it gets logged and
// surfaces as the deliberately uninformative generic message.
func domainErrorMessage(err error) (string, int, bool) {
	switch {
	case errors.Is(err, auth.ErrInvalidCredentials):
		return "Invalid credentials", http.StatusUnauthorized, true
	case errors.Is(err, auth.ErrProviderMismatch):
		return "Try signing in with the same provider that you used during your initial sign in", http.StatusBadRequest, true
	case errors.Is(err, auth.ErrUserNotFound):
		return "User not found", http.StatusNotFound, true
	case errors.Is(err, auth.ErrTokenNotFound):
		return "Token not found", http.StatusNotFound, true
	case errors.Is(err, auth.ErrTokenMismatch):
		return "Token is not matching", http.StatusBadRequest, true
	case errors.Is(err, auth.ErrTokenExpired):
		return "Token has expired", http.StatusBadRequest, true
	case errors.Is(err, auth.ErrAlreadyVerified):
		return "Cannot send token to already verified email", http.StatusBadRequest, true
	case errors.Is(err, apps.ErrAppNotFound):
		return "App not found", http.StatusNotFound, true
	case errors.Is(err, apps.ErrNotAppOwner):
		return "App not found", http.StatusNotFound, true
	case errors.Is(err, apps.ErrInvalidAPIKey):
		return "Invalid API key", http.StatusUnauthorized, true
	case errors.Is(err, oauth.ErrUnknownProvider):
		return msgInvalidFields, http.StatusBadRequest, true
	case errors.Is(err, oauth.ErrInvalidState):
		return msgInvalidFields, http.StatusBadRequest, true
	case errors.Is(err, oauth.ErrNoEmail):
		return "Provider did not supply an email address", http.StatusBadRequest, true
	}
	return "", 0, false
}

func respondDomainError(c echo.Context, logger *logging.Service, err error) error {
	if msg, status, ok := domainErrorMessage(err); ok {
		return c.JSON(status, errorResponse{Error: msg})
	}

	if logger != nil {
		logger.Error("unexpected failure handling request",
			zap.Error(err),
			zap.String("path", c.Path()))
	}
	return c.JSON(http.StatusInternalServerError, errorResponse{Error: msgSomethingWentWrong})
}

// bindAndValidate decodes the payload and checks its shape. On failure it
// writes the validation error response and reports false; the handler must
// return without touching state.
func bindAndValidate(c echo.Context, payload any) bool {
	if err := c.Bind(payload); err != nil {
		_ = c.JSON(http.StatusBadRequest, errorResponse{Error: msgInvalidFields})
		return false
	}
	if err := c.Validate(payload); err != nil {
		_ = c.JSON(http.StatusBadRequest, errorResponse{Error: msgInvalidFields})
		return false
	}
	return true
}
