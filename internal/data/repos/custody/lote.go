package custody

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/macedolvs/custodia-backend/internal/domain"
	"github.com/macedolvs/custodia-backend/internal/domain/custody"
	"github.com/macedolvs/custodia-backend/internal/platform/dbctx"
	"github.com/macedolvs/custodia-backend/internal/platform/logger"
)

type LoteRepo interface {
	Create(dbc dbctx.Context, lotes []*types.Lote) ([]*types.Lote, error)
	GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.Lote, error)
	GetByIdentificadores(dbc dbctx.Context, identificadores []string) ([]*types.Lote, error)
	ListByStatus(dbc dbctx.Context, status string) ([]*types.Lote, error)

	// Update refuses to modify an incinerated lot with
	// custody.ErrImmutableRecord.
	Update(dbc dbctx.Context, lote *types.Lote) error

	// ClaimIncineracao flips the lot to INCINERADO iff it is still ABERTO,
	// in one conditional UPDATE. It reports whether this caller won the
	// claim; concurrent closers serialize here, exactly one wins.
	ClaimIncineracao(dbc dbctx.Context, id uuid.UUID, now time.Time) (bool, error)

	Delete(dbc dbctx.Context, id uuid.UUID) error
}

type loteRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewLoteRepo(db *gorm.DB, baseLog *logger.Logger) LoteRepo {
	repoLog := baseLog.With("repo", "LoteRepo")
	return &loteRepo{db: db, log: repoLog}
}

func (r *loteRepo) Create(dbc dbctx.Context, lotes []*types.Lote) ([]*types.Lote, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}

	if len(lotes) == 0 {
		return []*types.Lote{}, nil
	}

	if err := transaction.WithContext(dbc.Ctx).Create(&lotes).Error; err != nil {
		return nil, err
	}
	return lotes, nil
}

func (r *loteRepo) GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.Lote, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.Lote
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

func (r *loteRepo) GetByIdentificadores(dbc dbctx.Context, identificadores []string) ([]*types.Lote, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.Lote
	if len(identificadores) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(dbc.Ctx).
		Where("identificador IN ?", identificadores).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *loteRepo) ListByStatus(dbc dbctx.Context, status string) ([]*types.Lote, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.Lote
	if err := transaction.WithContext(dbc.Ctx).
		Where("status = ?", status).
		Order("data_criacao DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *loteRepo) Update(dbc dbctx.Context, lote *types.Lote) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}

	var stored types.Lote
	err := transaction.WithContext(dbc.Ctx).
		Where("id = ?", lote.ID).
		First(&stored).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return custody.ErrNotFound
	}
	if err != nil {
		return err
	}
	if stored.Status == custody.LoteIncinerado {
		return custody.ErrImmutableRecord
	}

	return transaction.WithContext(dbc.Ctx).Save(lote).Error
}

func (r *loteRepo) ClaimIncineracao(dbc dbctx.Context, id uuid.UUID, now time.Time) (bool, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}

	res := transaction.WithContext(dbc.Ctx).
		Model(&types.Lote{}).
		Where("id = ? AND status = ?", id, custody.LoteAberto).
		Updates(map[string]any{
			"status":           custody.LoteIncinerado,
			"data_incineracao": now,
			"updated_at":       now,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *loteRepo) Delete(dbc dbctx.Context, id uuid.UUID) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}

	return transaction.WithContext(dbc.Ctx).
		Where("id = ?", id).
		Delete(&types.Lote{}).Error
}
