package main

import (
	"github.com/ovation-labs/ovation/config"
	"github.com/ovation-labs/ovation/database"
	"github.com/ovation-labs/ovation/internal/handlers"
	"github.com/ovation-labs/ovation/models"
	"github.com/ovation-labs/ovation/server"
	"github.com/ovation-labs/ovation/services/apps"
	"github.com/ovation-labs/ovation/services/auth"
	"github.com/ovation-labs/ovation/services/logging"
	"github.com/ovation-labs/ovation/services/mail"
	"github.com/ovation-labs/ovation/services/oauth"
	"github.com/ovation-labs/ovation/services/storage"
	"github.com/ovation-labs/ovation/session"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		config.NewProvider(nil),
		fx.Supply(database.WithModels(
			&models.User{},
			&models.VerificationToken{},
			&models.App{},
			&models.APIKey{},
			&models.Testimonial{},
			&session.UserSession{},
		)),
		fx.Supply(&session.Options{}),
		logging.Module,
		database.Module,
		session.Module,
		mail.Module,
		storage.Module,
		auth.Module,
		oauth.Module,
		apps.Module,
		handlers.Module,
		server.NewProvider(),
	)

	app.Run()
}
