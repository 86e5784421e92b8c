package repos

import (
	"gorm.io/gorm"

	"github.com/macedolvs/custodia-backend/internal/data/repos/custody"
	"github.com/macedolvs/custodia-backend/internal/data/repos/user"
	"github.com/macedolvs/custodia-backend/internal/platform/logger"
)

type UserRepo = user.UserRepo

type OcorrenciaRepo = custody.OcorrenciaRepo
type NoticiadoRepo = custody.NoticiadoRepo
type MaterialRepo = custody.MaterialRepo
type LoteRepo = custody.LoteRepo
type RegistroRepo = custody.RegistroRepo

type MaterialFilter = custody.MaterialFilter
type TotalSubstancia = custody.TotalSubstancia

func NewUserRepo(db *gorm.DB, baseLog *logger.Logger) UserRepo { return user.NewUserRepo(db, baseLog) }

func NewOcorrenciaRepo(db *gorm.DB, baseLog *logger.Logger) OcorrenciaRepo {
	return custody.NewOcorrenciaRepo(db, baseLog)
}

func NewNoticiadoRepo(db *gorm.DB, baseLog *logger.Logger) NoticiadoRepo {
	return custody.NewNoticiadoRepo(db, baseLog)
}

func NewMaterialRepo(db *gorm.DB, baseLog *logger.Logger) MaterialRepo {
	return custody.NewMaterialRepo(db, baseLog)
}

func NewLoteRepo(db *gorm.DB, baseLog *logger.Logger) LoteRepo {
	return custody.NewLoteRepo(db, baseLog)
}

func NewRegistroRepo(db *gorm.DB, baseLog *logger.Logger) RegistroRepo {
	return custody.NewRegistroRepo(db, baseLog)
}
