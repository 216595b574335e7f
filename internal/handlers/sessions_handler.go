package handlers

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/ovation-labs/ovation/services/logging"
	"github.com/ovation-labs/ovation/session"
)

type SessionsHandler struct {
	logger *logging.Service
}

func NewSessionsHandler(logger *logging.Service) *SessionsHandler {
	return &SessionsHandler{logger: logger}
}

func (h *SessionsHandler) SignOut(c echo.Context) error {
	session.Logout(c)
	return c.JSON(http.StatusOK, map[string]any{"success": "Signed out"})
}

// ListSessions returns the user's active sessions with the current one marked.
func (h *SessionsHandler) ListSessions(c echo.Context) error {
	userID := session.GetUserID(c)
	if userID == uuid.Nil {
		return c.JSON(http.StatusUnauthorized, errorResponse{Error: msgUnauthorized})
	}

	service := session.GetSessionService(c)
	manager := session.GetManager(c)
	if service == nil || manager == nil {
		return c.JSON(http.StatusOK, map[string]any{"sessions": []session.UserSession{}})
	}

	currentToken := manager.Token(c.Request().Context())
	sessions, err := service.GetUserSessions(userID, currentToken)
	if err != nil {
		return respondDomainError(c, h.logger, err)
	}

	return c.JSON(http.StatusOK, map[string]any{"sessions": sessions})
}

func (h *SessionsHandler) RevokeSession(c echo.Context) error {
	sessionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: msgInvalidFields})
	}

	userID := session.GetUserID(c)
	if userID == uuid.Nil {
		return c.JSON(http.StatusUnauthorized, errorResponse{Error: msgUnauthorized})
	}

	service := session.GetSessionService(c)
	if service == nil {
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: msgSomethingWentWrong})
	}

	if err := service.RevokeSession(userID, sessionID); err != nil {
		return c.JSON(http.StatusNotFound, errorResponse{Error: "Session not found"})
	}

	return c.JSON(http.StatusOK, map[string]any{"success": "Session revoked"})
}
