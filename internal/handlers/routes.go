package handlers

import (
	"github.com/ovation-labs/ovation/internal/validator"
	"github.com/ovation-labs/ovation/server"
	"github.com/ovation-labs/ovation/session"
	"go.uber.org/fx"
)

// RegisterRoutes wires the HTTP surface: session middleware everywhere,
// session-guarded account and app management, and the public testimonial
// collection endpoint.
func RegisterRoutes(
	srv *server.Server,
	manager *session.Manager,
	sessionService session.SessionService,
	authHandler *AuthHandler,
	oauthHandler *OAuthHandler,
	appsHandler *AppsHandler,
	sessionsHandler *SessionsHandler,
) {
	srv.Echo().Validator = validator.New()

	srv.Use(session.Middleware(manager))
	srv.Use(session.ServiceMiddleware(sessionService))

	authGroup := srv.Group("/api/auth")
	authGroup.POST("/signin", authHandler.SignIn)
	authGroup.POST("/verify-email", authHandler.VerifyEmail)
	authGroup.POST("/resend-token", authHandler.ResendToken)
	authGroup.GET("/user-email", authHandler.GetUserEmail)
	authGroup.GET("/signin-type", authHandler.SigninType, session.RequireAuth())
	authGroup.POST("/signout", sessionsHandler.SignOut)

	srv.Get("/auth/:provider", oauthHandler.Begin)
	srv.Get("/auth/:provider/callback", oauthHandler.Callback)

	userGroup := srv.Group("/api/user", session.RequireAuth())
	userGroup.PATCH("", authHandler.UpdateUser)

	sessionsGroup := srv.Group("/api/sessions", session.RequireAuth())
	sessionsGroup.GET("", sessionsHandler.ListSessions)
	sessionsGroup.DELETE("/:id", sessionsHandler.RevokeSession)

	appsGroup := srv.Group("/api/apps", session.RequireAuth())
	appsGroup.POST("", appsHandler.CreateApp)
	appsGroup.GET("", appsHandler.ListApps)
	appsGroup.POST("/:id/api-key", appsHandler.CreateAPIKey)
	appsGroup.GET("/:id/api-key", appsHandler.CheckAPIKey)
	appsGroup.GET("/:id/testimonials", appsHandler.ListTestimonials)

	srv.Post("/public/testimonials", appsHandler.SubmitTestimonial)
}

var Module = fx.Options(
	fx.Provide(NewAuthHandler),
	fx.Provide(NewOAuthHandler),
	fx.Provide(NewAppsHandler),
	fx.Provide(NewSessionsHandler),
	fx.Invoke(RegisterRoutes),
)
