package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/macedolvs/custodia-backend/internal/handlers"
	"github.com/macedolvs/custodia-backend/internal/middleware"
)

type RouterConfig struct {
	ServiceName        string
	AllowOrigins       []string
	AuthMiddleware     *middleware.AuthMiddleware
	HealthcheckHandler *handlers.HealthcheckHandler
	AuthHandler        *handlers.AuthHandler
	OcorrenciaHandler  *handlers.OcorrenciaHandler
	MaterialHandler    *handlers.MaterialHandler
	LoteHandler        *handlers.LoteHandler
	RelatorioHandler   *handlers.RelatorioHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.Default()

	router.Use(otelgin.Middleware(cfg.ServiceName))

	origins := cfg.AllowOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000", "http://localhost:5173"}
	}
	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
	}))

	// Public
	router.GET("/healthcheck", cfg.HealthcheckHandler.Healthcheck)
	router.POST("/api/register", cfg.AuthHandler.Register)
	router.POST("/api/login", cfg.AuthHandler.Login)

	// Protected
	api := router.Group("/api")
	api.Use(cfg.AuthMiddleware.RequireAuth())

	api.GET("/me", cfg.AuthHandler.GetMe)

	api.POST("/ocorrencias", cfg.OcorrenciaHandler.Register)
	api.GET("/ocorrencias/:id", cfg.OcorrenciaHandler.Get)
	api.PATCH("/ocorrencias/:id/policial", cfg.OcorrenciaHandler.UpdatePolicial)

	api.GET("/materiais/:id", cfg.MaterialHandler.Get)
	api.GET("/materiais/:id/historico", cfg.MaterialHandler.Historico)
	api.POST("/materiais/:id/conferencia", cfg.MaterialHandler.CheckIn)
	api.POST("/materiais/:id/autorizacao", cfg.MaterialHandler.AuthorizeDestruction)
	api.POST("/materiais/:id/lote", cfg.MaterialHandler.MoveToLote)

	api.POST("/lotes", cfg.LoteHandler.Create)
	api.GET("/lotes/abertos", cfg.LoteHandler.ListAbertos)
	api.GET("/lotes/incinerados", cfg.LoteHandler.ListIncinerados)
	api.GET("/lotes/:id", cfg.LoteHandler.Get)
	api.POST("/lotes/:id/finalizar", cfg.LoteHandler.Close)
	api.DELETE("/lotes/:id", cfg.LoteHandler.Delete)

	api.GET("/painel", cfg.RelatorioHandler.Painel)
	api.GET("/relatorios/geral", cfg.RelatorioHandler.Geral)
	api.GET("/relatorios/queima", cfg.RelatorioHandler.Queima)
	api.GET("/relatorios/forum", cfg.RelatorioHandler.Forum)

	return router
}
