package handlers

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/ovation-labs/ovation/services/apps"
	"github.com/ovation-labs/ovation/services/logging"
	"github.com/ovation-labs/ovation/session"
)

const apiKeyHeader = "X-Api-Key"

type AppsHandler struct {
	appsService *apps.Service
	logger      *logging.Service
}

func NewAppsHandler(appsService *apps.Service, logger *logging.Service) *AppsHandler {
	return &AppsHandler{
		appsService: appsService,
		logger:      logger,
	}
}

type createAppPayload struct {
	Name string `json:"name" validate:"required,min=3,max=30"`
}

func (h *AppsHandler) CreateApp(c echo.Context) error {
	var payload createAppPayload
	if !bindAndValidate(c, &payload) {
		return nil
	}

	userID := session.GetUserID(c)
	if userID == uuid.Nil {
		return c.JSON(http.StatusUnauthorized, errorResponse{Error: msgUnauthorized})
	}

	app, err := h.appsService.CreateApp(c.Request().Context(), userID, payload.Name)
	if err != nil {
		return respondDomainError(c, h.logger, err)
	}

	return c.JSON(http.StatusOK, map[string]any{
		"appId":   app.ID,
		"success": "App created",
	})
}

func (h *AppsHandler) ListApps(c echo.Context) error {
	userID := session.GetUserID(c)
	if userID == uuid.Nil {
		return c.JSON(http.StatusUnauthorized, errorResponse{Error: msgUnauthorized})
	}

	list, err := h.appsService.ListApps(c.Request().Context(), userID)
	if err != nil {
		return respondDomainError(c, h.logger, err)
	}

	return c.JSON(http.StatusOK, map[string]any{"apps": list})
}

func (h *AppsHandler) CreateAPIKey(c echo.Context) error {
	appID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: msgInvalidFields})
	}

	userID := session.GetUserID(c)
	if userID == uuid.Nil {
		return c.JSON(http.StatusUnauthorized, errorResponse{Error: msgUnauthorized})
	}

	// Plaintext is returned exactly once; only its hash is stored.
	plaintext, err := h.appsService.CreateAPIKey(c.Request().Context(), userID, appID)
	if err != nil {
		return respondDomainError(c, h.logger, err)
	}

	return c.JSON(http.StatusOK, map[string]any{
		"apiKey":  plaintext,
		"success": "API key created",
	})
}

func (h *AppsHandler) CheckAPIKey(c echo.Context) error {
	appID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: msgInvalidFields})
	}

	userID := session.GetUserID(c)
	if userID == uuid.Nil {
		return c.JSON(http.StatusUnauthorized, errorResponse{Error: msgUnauthorized})
	}

	exists, err := h.appsService.HasAPIKey(c.Request().Context(), userID, appID)
	if err != nil {
		return respondDomainError(c, h.logger, err)
	}

	return c.JSON(http.StatusOK, map[string]any{"hasApiKey": exists})
}

func (h *AppsHandler) ListTestimonials(c echo.Context) error {
	appID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: msgInvalidFields})
	}

	userID := session.GetUserID(c)
	if userID == uuid.Nil {
		return c.JSON(http.StatusUnauthorized, errorResponse{Error: msgUnauthorized})
	}

	testimonials, err := h.appsService.ListTestimonials(c.Request().Context(), userID, appID)
	if err != nil {
		return respondDomainError(c, h.logger, err)
	}

	return c.JSON(http.StatusOK, map[string]any{"testimonials": testimonials})
}

type submitTestimonialPayload struct {
	Author  string `json:"author" validate:"required,max=100"`
	Content string `json:"content" validate:"required,max=500"`
	Rating  int    `json:"rating" validate:"required,min=1,max=5"`
}

// SubmitTestimonial is the public collection endpoint: callers authenticate
// with the app's API key rather than a session.
func (h *AppsHandler) SubmitTestimonial(c echo.Context) error {
	apiKey := c.Request().Header.Get(apiKeyHeader)
	if apiKey == "" {
		return c.JSON(http.StatusUnauthorized, errorResponse{Error: "Missing API key"})
	}

	var payload submitTestimonialPayload
	if !bindAndValidate(c, &payload) {
		return nil
	}

	app, err := h.appsService.ResolveAPIKey(c.Request().Context(), apiKey)
	if err != nil {
		return respondDomainError(c, h.logger, err)
	}

	testimonial, err := h.appsService.SubmitTestimonial(c.Request().Context(), app.ID, payload.Author, payload.Content, payload.Rating)
	if err != nil {
		return respondDomainError(c, h.logger, err)
	}

	return c.JSON(http.StatusOK, map[string]any{
		"testimonialId": testimonial.ID,
		"success":       "Testimonial submitted",
	})
}
