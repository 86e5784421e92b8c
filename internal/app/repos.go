package app

import (
	"gorm.io/gorm"

	"github.com/macedolvs/custodia-backend/internal/data/repos"
	"github.com/macedolvs/custodia-backend/internal/platform/logger"
)

type Repos struct {
	User       repos.UserRepo
	Ocorrencia repos.OcorrenciaRepo
	Noticiado  repos.NoticiadoRepo
	Material   repos.MaterialRepo
	Lote       repos.LoteRepo
	Registro   repos.RegistroRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		User:       repos.NewUserRepo(db, log),
		Ocorrencia: repos.NewOcorrenciaRepo(db, log),
		Noticiado:  repos.NewNoticiadoRepo(db, log),
		Material:   repos.NewMaterialRepo(db, log),
		Lote:       repos.NewLoteRepo(db, log),
		Registro:   repos.NewRegistroRepo(db, log),
	}
}
