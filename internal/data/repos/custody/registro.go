package custody

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/macedolvs/custodia-backend/internal/domain"
	"github.com/macedolvs/custodia-backend/internal/platform/dbctx"
	"github.com/macedolvs/custodia-backend/internal/platform/logger"
)

// RegistroRepo is append-only on purpose: there is no update or delete.
type RegistroRepo interface {
	Create(dbc dbctx.Context, registros []*types.RegistroHistorico) ([]*types.RegistroHistorico, error)
	GetByMaterialIDs(dbc dbctx.Context, materialIDs []uuid.UUID) ([]*types.RegistroHistorico, error)
	CountByStatusNovo(dbc dbctx.Context, materialID uuid.UUID, statusNovo string) (int64, error)
}

type registroRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewRegistroRepo(db *gorm.DB, baseLog *logger.Logger) RegistroRepo {
	repoLog := baseLog.With("repo", "RegistroRepo")
	return &registroRepo{db: db, log: repoLog}
}

func (r *registroRepo) Create(dbc dbctx.Context, registros []*types.RegistroHistorico) ([]*types.RegistroHistorico, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}

	if len(registros) == 0 {
		return []*types.RegistroHistorico{}, nil
	}

	if err := transaction.WithContext(dbc.Ctx).Create(&registros).Error; err != nil {
		return nil, err
	}
	return registros, nil
}

// GetByMaterialIDs returns the audit trail newest-first.
func (r *registroRepo) GetByMaterialIDs(dbc dbctx.Context, materialIDs []uuid.UUID) ([]*types.RegistroHistorico, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.RegistroHistorico
	if len(materialIDs) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(dbc.Ctx).
		Where("material_id IN ?", materialIDs).
		Order("data_evento DESC, id DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *registroRepo) CountByStatusNovo(dbc dbctx.Context, materialID uuid.UUID, statusNovo string) (int64, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}

	var count int64
	if err := transaction.WithContext(dbc.Ctx).
		Model(&types.RegistroHistorico{}).
		Where("material_id = ? AND status_novo = ?", materialID, statusNovo).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
