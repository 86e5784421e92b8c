package custody

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/macedolvs/custodia-backend/internal/domain"
	"github.com/macedolvs/custodia-backend/internal/platform/dbctx"
	"github.com/macedolvs/custodia-backend/internal/platform/logger"
)

type NoticiadoRepo interface {
	Create(dbc dbctx.Context, noticiados []*types.Noticiado) ([]*types.Noticiado, error)
	GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.Noticiado, error)
	GetByOcorrenciaIDs(dbc dbctx.Context, ocorrenciaIDs []uuid.UUID) ([]*types.Noticiado, error)
}

type noticiadoRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewNoticiadoRepo(db *gorm.DB, baseLog *logger.Logger) NoticiadoRepo {
	repoLog := baseLog.With("repo", "NoticiadoRepo")
	return &noticiadoRepo{db: db, log: repoLog}
}

func (r *noticiadoRepo) Create(dbc dbctx.Context, noticiados []*types.Noticiado) ([]*types.Noticiado, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}

	if len(noticiados) == 0 {
		return []*types.Noticiado{}, nil
	}

	if err := transaction.WithContext(dbc.Ctx).Create(&noticiados).Error; err != nil {
		return nil, err
	}
	return noticiados, nil
}

func (r *noticiadoRepo) GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.Noticiado, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.Noticiado
	if len(ids) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(dbc.Ctx).
		Where("id IN ?", ids).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *noticiadoRepo) GetByOcorrenciaIDs(dbc dbctx.Context, ocorrenciaIDs []uuid.UUID) ([]*types.Noticiado, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.Noticiado
	if len(ocorrenciaIDs) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(dbc.Ctx).
		Where("ocorrencia_id IN ?", ocorrenciaIDs).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
