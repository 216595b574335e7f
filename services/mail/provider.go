package mail

import (
	"github.com/ovation-labs/ovation/config"
	"github.com/ovation-labs/ovation/services/logging"
	"go.uber.org/fx"
)

var Module = fx.Options(
	fx.Provide(func(cfg *config.Config, logger *logging.Service) (*Service, error) {
		return NewService(&cfg.Mail, logger)
	}),
)
