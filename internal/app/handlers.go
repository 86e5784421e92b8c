package app

import (
	"gorm.io/gorm"

	"github.com/macedolvs/custodia-backend/internal/handlers"
	"github.com/macedolvs/custodia-backend/internal/platform/logger"
)

type Handlers struct {
	Healthcheck *handlers.HealthcheckHandler
	Auth        *handlers.AuthHandler
	Ocorrencia  *handlers.OcorrenciaHandler
	Material    *handlers.MaterialHandler
	Lote        *handlers.LoteHandler
	Relatorio   *handlers.RelatorioHandler
}

func wireHandlers(db *gorm.DB, log *logger.Logger, s Services) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Healthcheck: handlers.NewHealthcheckHandler(db),
		Auth:        handlers.NewAuthHandler(s.Auth),
		Ocorrencia:  handlers.NewOcorrenciaHandler(s.Intake),
		Material:    handlers.NewMaterialHandler(s.Custody),
		Lote:        handlers.NewLoteHandler(s.Lote),
		Relatorio:   handlers.NewRelatorioHandler(s.Relatorio),
	}
}
