package auth

import (
	"github.com/ovation-labs/ovation/config"
	"github.com/ovation-labs/ovation/services/logging"
	"github.com/ovation-labs/ovation/services/mail"
	"github.com/ovation-labs/ovation/services/storage"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

func ProvideAuthService(cfg *config.Config, db *gorm.DB, logger *logging.Service) *Service {
	return NewService(cfg, db, logger)
}

func WireCollaborators(svc *Service, mailSvc *mail.Service, storageSvc *storage.Service) {
	svc.SetMailService(mailSvc)
	svc.SetUploader(storageSvc)
}

var Module = fx.Options(
	fx.Provide(ProvideAuthService),
	fx.Invoke(WireCollaborators),
)
