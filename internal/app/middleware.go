package app

import (
	"github.com/macedolvs/custodia-backend/internal/middleware"
	"github.com/macedolvs/custodia-backend/internal/platform/logger"
)

type Middleware struct {
	Auth *middleware.AuthMiddleware
}

func wireMiddleware(log *logger.Logger, s Services) Middleware {
	log.Info("Wiring middleware...")
	return Middleware{
		Auth: middleware.NewAuthMiddleware(log, s.Auth),
	}
}
