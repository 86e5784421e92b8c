package app

import (
	"gorm.io/gorm"

	"github.com/macedolvs/custodia-backend/internal/platform/logger"
	"github.com/macedolvs/custodia-backend/internal/services"
)

type Services struct {
	Auth      services.AuthService
	Intake    services.IntakeService
	Custody   services.CustodyService
	Lote      services.LoteService
	Relatorio services.RelatorioService
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, r Repos) Services {
	log.Info("Wiring services...")
	return Services{
		Auth:      services.NewAuthService(db, log, r.User, cfg.JWTSecretKey, cfg.TokenTTL),
		Intake:    services.NewIntakeService(db, log, r.Ocorrencia, r.Noticiado, r.Material, r.Registro),
		Custody:   services.NewCustodyService(db, log, r.Material, r.Lote, r.Registro),
		Lote:      services.NewLoteService(db, log, r.Lote, r.Material, r.Registro),
		Relatorio: services.NewRelatorioService(db, log, r.Material),
	}
}
