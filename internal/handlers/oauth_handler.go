package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/ovation-labs/ovation/config"
	"github.com/ovation-labs/ovation/services/logging"
	"github.com/ovation-labs/ovation/services/oauth"
	"github.com/ovation-labs/ovation/session"
)

type OAuthHandler struct {
	oauthService *oauth.Service
	config       *config.Config
	logger       *logging.Service
}

func NewOAuthHandler(oauthService *oauth.Service, cfg *config.Config, logger *logging.Service) *OAuthHandler {
	return &OAuthHandler{
		oauthService: oauthService,
		config:       cfg,
		logger:       logger,
	}
}

// Begin redirects the browser to the provider's consent screen.
func (h *OAuthHandler) Begin(c echo.Context) error {
	provider := oauth.Provider(c.Param("provider"))

	url, err := h.oauthService.AuthCodeURL(provider)
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: msgInvalidFields})
	}

	return c.Redirect(http.StatusFound, url)
}

// Callback finishes the handshake and establishes the session. Federated
// users land verified, so they go straight to the post-login destination.
func (h *OAuthHandler) Callback(c echo.Context) error {
	provider := oauth.Provider(c.Param("provider"))
	state := c.QueryParam("state")
	code := c.QueryParam("code")

	if state == "" || code == "" {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: msgInvalidFields})
	}

	user, err := h.oauthService.HandleCallback(c.Request().Context(), provider, state, code)
	if err != nil {
		return respondDomainError(c, h.logger, err)
	}

	session.Login(c, user.ID)
	return c.Redirect(http.StatusFound, h.config.App.LoginRedirect)
}
