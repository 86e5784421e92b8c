package custody

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/macedolvs/custodia-backend/internal/domain"
	"github.com/macedolvs/custodia-backend/internal/platform/dbctx"
	"github.com/macedolvs/custodia-backend/internal/platform/logger"
)

type OcorrenciaRepo interface {
	Create(dbc dbctx.Context, ocorrencias []*types.Ocorrencia) ([]*types.Ocorrencia, error)
	GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.Ocorrencia, error)
	GetByBOUs(dbc dbctx.Context, bous []string) ([]*types.Ocorrencia, error)
	UpdatePolicial(dbc dbctx.Context, id uuid.UUID, nome, graduacao, rg string) error
}

type ocorrenciaRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewOcorrenciaRepo(db *gorm.DB, baseLog *logger.Logger) OcorrenciaRepo {
	repoLog := baseLog.With("repo", "OcorrenciaRepo")
	return &ocorrenciaRepo{db: db, log: repoLog}
}

func (r *ocorrenciaRepo) Create(dbc dbctx.Context, ocorrencias []*types.Ocorrencia) ([]*types.Ocorrencia, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}

	if len(ocorrencias) == 0 {
		return []*types.Ocorrencia{}, nil
	}

	if err := transaction.WithContext(dbc.Ctx).Create(&ocorrencias).Error; err != nil {
		return nil, err
	}
	return ocorrencias, nil
}

func (r *ocorrenciaRepo) GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.Ocorrencia, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.Ocorrencia
	if len(ids) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(dbc.Ctx).
		Preload("Noticiados").
		Where("id IN ?", ids).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *ocorrenciaRepo) GetByBOUs(dbc dbctx.Context, bous []string) ([]*types.Ocorrencia, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.Ocorrencia
	if len(bous) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(dbc.Ctx).
		Where("bou IN ?", bous).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// UpdatePolicial touches only the officer identification fields, the one
// mutable slice of an Ocorrencia after intake. Names are stored uppercase.
func (r *ocorrenciaRepo) UpdatePolicial(dbc dbctx.Context, id uuid.UUID, nome, graduacao, rg string) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}

	return transaction.WithContext(dbc.Ctx).
		Model(&types.Ocorrencia{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"policial_nome":      strings.ToUpper(strings.TrimSpace(nome)),
			"policial_graduacao": strings.TrimSpace(graduacao),
			"policial_rg":        strings.TrimSpace(rg),
			"updated_at":         time.Now(),
		}).Error
}
