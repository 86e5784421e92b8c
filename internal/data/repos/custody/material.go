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

// MaterialFilter narrows report queries. Time bounds are half-open
// [EntradaFrom, EntradaTo) over the occurrence's intake timestamp.
type MaterialFilter struct {
	Statuses    []string
	LoteID      *uuid.UUID
	Vara        string
	Substancia  string
	BOUContains string
	EntradaFrom *time.Time
	EntradaTo   *time.Time
	Order       string
}

// TotalSubstancia is one row of the per-substance weight aggregation.
type TotalSubstancia struct {
	Substancia string  `json:"substancia"`
	Unidade    string  `json:"unidade"`
	Total      float64 `json:"total"`
}

type MaterialRepo interface {
	Create(dbc dbctx.Context, materiais []*types.Material) ([]*types.Material, error)
	GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.Material, error)
	GetByLoteIDs(dbc dbctx.Context, loteIDs []uuid.UUID) ([]*types.Material, error)
	List(dbc dbctx.Context, filter MaterialFilter) ([]*types.Material, error)
	Count(dbc dbctx.Context) (int64, error)
	SumPesoRealPorSubstancia(dbc dbctx.Context, statuses []string) ([]TotalSubstancia, error)

	// Update is the general-purpose write path. It refuses to touch an
	// incinerated material, or any material whose current or target lot is
	// already incinerated, with custody.ErrImmutableRecord.
	Update(dbc dbctx.Context, material *types.Material) error

	// IncinerateByLoteID is the lot-closure sweep: it bulk-marks every
	// material of the lot INCINERADO. Only the closure transaction may call
	// it, before the lot itself is claimed.
	IncinerateByLoteID(dbc dbctx.Context, loteID uuid.UUID, now time.Time) (int64, error)

	// ClearLoteRef detaches every material from a lot being deleted before
	// closure. Statuses are left untouched.
	ClearLoteRef(dbc dbctx.Context, loteID uuid.UUID) error
}

type materialRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewMaterialRepo(db *gorm.DB, baseLog *logger.Logger) MaterialRepo {
	repoLog := baseLog.With("repo", "MaterialRepo")
	return &materialRepo{db: db, log: repoLog}
}

func (r *materialRepo) Create(dbc dbctx.Context, materiais []*types.Material) ([]*types.Material, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}

	if len(materiais) == 0 {
		return []*types.Material{}, nil
	}

	if err := transaction.WithContext(dbc.Ctx).Create(&materiais).Error; err != nil {
		return nil, err
	}
	return materiais, nil
}

func (r *materialRepo) GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.Material, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.Material
	if len(ids) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(dbc.Ctx).
		Preload("Noticiado.Ocorrencia").
		Preload("Lote").
		Where("id IN ?", ids).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *materialRepo) GetByLoteIDs(dbc dbctx.Context, loteIDs []uuid.UUID) ([]*types.Material, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.Material
	if len(loteIDs) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(dbc.Ctx).
		Where("lote_id IN ?", loteIDs).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *materialRepo) List(dbc dbctx.Context, filter MaterialFilter) ([]*types.Material, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}

	q := transaction.WithContext(dbc.Ctx).
		Model(&types.Material{}).
		Joins("JOIN noticiado ON noticiado.id = material.noticiado_id").
		Joins("JOIN ocorrencia ON ocorrencia.id = noticiado.ocorrencia_id").
		Preload("Noticiado.Ocorrencia").
		Preload("Lote")

	if len(filter.Statuses) > 0 {
		q = q.Where("material.status IN ?", filter.Statuses)
	}
	if filter.LoteID != nil {
		q = q.Where("material.lote_id = ?", *filter.LoteID)
	}
	if filter.Vara != "" {
		q = q.Where("ocorrencia.vara = ?", filter.Vara)
	}
	if filter.Substancia != "" {
		q = q.Where("material.substancia = ?", filter.Substancia)
	}
	if filter.BOUContains != "" {
		q = q.Where("ocorrencia.bou LIKE ?", "%"+filter.BOUContains+"%")
	}
	if filter.EntradaFrom != nil {
		q = q.Where("ocorrencia.data_entrada >= ?", *filter.EntradaFrom)
	}
	if filter.EntradaTo != nil {
		q = q.Where("ocorrencia.data_entrada < ?", *filter.EntradaTo)
	}

	order := filter.Order
	if order == "" {
		order = "ocorrencia.data_entrada DESC"
	}

	var results []*types.Material
	if err := q.Order(order).Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *materialRepo) Count(dbc dbctx.Context) (int64, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}

	var count int64
	if err := transaction.WithContext(dbc.Ctx).
		Model(&types.Material{}).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *materialRepo) SumPesoRealPorSubstancia(dbc dbctx.Context, statuses []string) ([]TotalSubstancia, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}

	q := transaction.WithContext(dbc.Ctx).
		Model(&types.Material{}).
		Select("substancia, unidade, SUM(COALESCE(peso_real, 0)) AS total").
		Group("substancia, unidade")
	if len(statuses) > 0 {
		q = q.Where("status IN ?", statuses)
	}

	var rows []TotalSubstancia
	if err := q.Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *materialRepo) Update(dbc dbctx.Context, material *types.Material) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}

	if err := r.guardWritable(dbc, transaction, material); err != nil {
		return err
	}

	return transaction.WithContext(dbc.Ctx).Save(material).Error
}

// guardWritable enforces the immutability invariant on the write path itself:
// no update may reach storage once the stored row, its stored lot, or the lot
// it is being moved into has been incinerated.
func (r *materialRepo) guardWritable(dbc dbctx.Context, transaction *gorm.DB, material *types.Material) error {
	var stored types.Material
	err := transaction.WithContext(dbc.Ctx).
		Where("id = ?", material.ID).
		First(&stored).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return custody.ErrNotFound
	}
	if err != nil {
		return err
	}
	if stored.Status == custody.StatusIncinerado {
		return custody.ErrImmutableRecord
	}

	loteIDs := make([]uuid.UUID, 0, 2)
	if stored.LoteID != nil {
		loteIDs = append(loteIDs, *stored.LoteID)
	}
	if material.LoteID != nil && (stored.LoteID == nil || *material.LoteID != *stored.LoteID) {
		loteIDs = append(loteIDs, *material.LoteID)
	}
	if len(loteIDs) == 0 {
		return nil
	}

	var lotes []*types.Lote
	if err := transaction.WithContext(dbc.Ctx).
		Where("id IN ?", loteIDs).
		Find(&lotes).Error; err != nil {
		return err
	}
	for _, l := range lotes {
		if l.Status == custody.LoteIncinerado {
			return custody.ErrImmutableRecord
		}
	}
	return nil
}

func (r *materialRepo) IncinerateByLoteID(dbc dbctx.Context, loteID uuid.UUID, now time.Time) (int64, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}

	res := transaction.WithContext(dbc.Ctx).
		Model(&types.Material{}).
		Where("lote_id = ?", loteID).
		Updates(map[string]any{
			"status":           custody.StatusIncinerado,
			"data_incineracao": now,
			"updated_at":       now,
		})
	return res.RowsAffected, res.Error
}

func (r *materialRepo) ClearLoteRef(dbc dbctx.Context, loteID uuid.UUID) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}

	return transaction.WithContext(dbc.Ctx).
		Model(&types.Material{}).
		Where("lote_id = ?", loteID).
		Updates(map[string]any{
			"lote_id":    nil,
			"updated_at": time.Now(),
		}).Error
}
