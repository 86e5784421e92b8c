package app

import (
	"github.com/gin-gonic/gin"

	"github.com/macedolvs/custodia-backend/internal/server"
)

func wireRouter(cfg Config, h Handlers, m Middleware) *gin.Engine {
	return server.NewRouter(server.RouterConfig{
		ServiceName:        "custodia-backend",
		AllowOrigins:       cfg.AllowOrigins,
		AuthMiddleware:     m.Auth,
		HealthcheckHandler: h.Healthcheck,
		AuthHandler:        h.Auth,
		OcorrenciaHandler:  h.Ocorrencia,
		MaterialHandler:    h.Material,
		LoteHandler:        h.Lote,
		RelatorioHandler:   h.Relatorio,
	})
}
