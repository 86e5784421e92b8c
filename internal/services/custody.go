package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/macedolvs/custodia-backend/internal/data/repos"
	types "github.com/macedolvs/custodia-backend/internal/domain"
	"github.com/macedolvs/custodia-backend/internal/domain/custody"
	"github.com/macedolvs/custodia-backend/internal/platform/dbctx"
	"github.com/macedolvs/custodia-backend/internal/platform/logger"
)

// CustodyService drives a material along the custody chain. Every transition
// runs in one transaction with its audit record; the repo layer additionally
// refuses writes on anything already incinerated.
type CustodyService interface {
	GetMaterial(ctx context.Context, id uuid.UUID) (*types.Material, error)

	// CheckIn is the conferência: weigh the item, place it in an open lot
	// and move PENDENTE -> NO_COFRE.
	CheckIn(ctx context.Context, usuarioID uuid.UUID, input CheckInInput) (*types.Material, error)

	// AuthorizeDestruction records the court order and moves
	// NO_COFRE -> PRONTO_QUEIMA.
	AuthorizeDestruction(ctx context.Context, usuarioID uuid.UUID, materialID uuid.UUID, nOficio string) (*types.Material, error)

	// MoveToLote re-parents an item onto another open lot; a still-pending
	// item is checked in as a side effect.
	MoveToLote(ctx context.Context, usuarioID uuid.UUID, materialID, loteID uuid.UUID) (*types.Material, error)

	Historico(ctx context.Context, materialID uuid.UUID) ([]*types.RegistroHistorico, error)
}

type CheckInInput struct {
	MaterialID    uuid.UUID
	LoteID        uuid.UUID
	PesoReal      string
	Caixa         string
	PosicaoSacola string
}

type custodyService struct {
	db           *gorm.DB
	log          *logger.Logger
	materialRepo repos.MaterialRepo
	loteRepo     repos.LoteRepo
	registroRepo repos.RegistroRepo
}

func NewCustodyService(
	db *gorm.DB,
	baseLog *logger.Logger,
	materialRepo repos.MaterialRepo,
	loteRepo repos.LoteRepo,
	registroRepo repos.RegistroRepo,
) CustodyService {
	serviceLog := baseLog.With("service", "CustodyService")
	return &custodyService{
		db:           db,
		log:          serviceLog,
		materialRepo: materialRepo,
		loteRepo:     loteRepo,
		registroRepo: registroRepo,
	}
}

func (s *custodyService) GetMaterial(ctx context.Context, id uuid.UUID) (*types.Material, error) {
	return s.loadMaterial(dbctx.Context{Ctx: ctx}, id)
}

func (s *custodyService) loadMaterial(dbc dbctx.Context, id uuid.UUID) (*types.Material, error) {
	materiais, err := s.materialRepo.GetByIDs(dbc, []uuid.UUID{id})
	if err != nil {
		return nil, fmt.Errorf("get material: %w", err)
	}
	if len(materiais) == 0 {
		return nil, fmt.Errorf("%w: material %s", custody.ErrNotFound, id)
	}
	return materiais[0], nil
}

func (s *custodyService) loadLote(dbc dbctx.Context, id uuid.UUID) (*types.Lote, error) {
	lotes, err := s.loteRepo.GetByIDs(dbc, []uuid.UUID{id})
	if err != nil {
		return nil, fmt.Errorf("get lote: %w", err)
	}
	if len(lotes) == 0 {
		return nil, fmt.Errorf("%w: lote %s", custody.ErrNotFound, id)
	}
	return lotes[0], nil
}

func (s *custodyService) CheckIn(ctx context.Context, usuarioID uuid.UUID, input CheckInInput) (*types.Material, error) {
	pesoReal, err := custody.ParsePeso(input.PesoReal)
	if err != nil {
		return nil, err
	}

	var result *types.Material
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}

		material, err := s.loadMaterial(dbc, input.MaterialID)
		if err != nil {
			return err
		}
		lote, err := s.loadLote(dbc, input.LoteID)
		if err != nil {
			return err
		}
		if lote.Status == custody.LoteIncinerado {
			return fmt.Errorf("%w: lote %s", custody.ErrImmutableRecord, lote.Identificador)
		}
		if !custody.PodeTransitar(material.Status, custody.StatusNoCofre) {
			return fmt.Errorf("%w: conferência a partir de %s", custody.ErrInvalidState, material.Status)
		}

		now := time.Now()
		anterior := material.Status
		material.Status = custody.StatusNoCofre
		material.PesoReal = &pesoReal
		material.LoteID = &lote.ID
		material.Caixa = strings.ToUpper(strings.TrimSpace(input.Caixa))
		material.PosicaoSacola = strings.ToUpper(strings.TrimSpace(input.PosicaoSacola))
		material.DataConferencia = &now
		if err := s.materialRepo.Update(dbc, material); err != nil {
			return fmt.Errorf("update material: %w", err)
		}

		detalhes, err := json.Marshal(map[string]any{
			"peso_real":      pesoReal,
			"unidade":        material.Unidade,
			"lote":           lote.Identificador,
			"posicao_sacola": material.PosicaoSacola,
		})
		if err != nil {
			return fmt.Errorf("marshal detalhes: %w", err)
		}
		registro := &types.RegistroHistorico{
			MaterialID:     material.ID,
			UsuarioID:      usuarioID,
			StatusAnterior: &anterior,
			StatusNovo:     custody.StatusNoCofre,
			DataEvento:     now,
			Observacao:     fmt.Sprintf("conferência no cofre, lote %s", lote.Identificador),
			Detalhes:       datatypes.JSON(detalhes),
		}
		if _, err := s.registroRepo.Create(dbc, []*types.RegistroHistorico{registro}); err != nil {
			return fmt.Errorf("create registro: %w", err)
		}

		result = material
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("material conferido", "material_id", input.MaterialID, "lote_id", input.LoteID)
	return result, nil
}

func (s *custodyService) AuthorizeDestruction(ctx context.Context, usuarioID uuid.UUID, materialID uuid.UUID, nOficio string) (*types.Material, error) {
	oficio := strings.TrimSpace(nOficio)
	if oficio == "" {
		return nil, fmt.Errorf("%w: nº do ofício obrigatório", custody.ErrValidation)
	}

	var result *types.Material
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}

		material, err := s.loadMaterial(dbc, materialID)
		if err != nil {
			return err
		}
		if !custody.PodeTransitar(material.Status, custody.StatusProntoQueima) {
			return fmt.Errorf("%w: autorização a partir de %s", custody.ErrInvalidState, material.Status)
		}

		now := time.Now()
		anterior := material.Status
		material.Status = custody.StatusProntoQueima
		material.NOficio = oficio
		if err := s.materialRepo.Update(dbc, material); err != nil {
			return fmt.Errorf("update material: %w", err)
		}

		registro := &types.RegistroHistorico{
			MaterialID:     material.ID,
			UsuarioID:      usuarioID,
			StatusAnterior: &anterior,
			StatusNovo:     custody.StatusProntoQueima,
			DataEvento:     now,
			Observacao:     fmt.Sprintf("destruição autorizada, ofício %s", oficio),
		}
		if _, err := s.registroRepo.Create(dbc, []*types.RegistroHistorico{registro}); err != nil {
			return fmt.Errorf("create registro: %w", err)
		}

		result = material
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("destruição autorizada", "material_id", materialID, "n_oficio", oficio)
	return result, nil
}

func (s *custodyService) MoveToLote(ctx context.Context, usuarioID uuid.UUID, materialID, loteID uuid.UUID) (*types.Material, error) {
	var result *types.Material
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}

		material, err := s.loadMaterial(dbc, materialID)
		if err != nil {
			return err
		}
		lote, err := s.loadLote(dbc, loteID)
		if err != nil {
			return err
		}
		if lote.Status == custody.LoteIncinerado {
			return fmt.Errorf("%w: lote %s", custody.ErrImmutableRecord, lote.Identificador)
		}
		if !material.PodeSerEditado() {
			return fmt.Errorf("%w: material %s", custody.ErrImmutableRecord, material.ID)
		}

		now := time.Now()
		material.LoteID = &lote.ID

		var registro *types.RegistroHistorico
		if material.Status == custody.StatusPendente {
			anterior := material.Status
			material.Status = custody.StatusNoCofre
			material.DataConferencia = &now
			registro = &types.RegistroHistorico{
				MaterialID:     material.ID,
				UsuarioID:      usuarioID,
				StatusAnterior: &anterior,
				StatusNovo:     custody.StatusNoCofre,
				DataEvento:     now,
				Observacao:     fmt.Sprintf("entrada no cofre via lote %s", lote.Identificador),
			}
		}

		if err := s.materialRepo.Update(dbc, material); err != nil {
			return fmt.Errorf("update material: %w", err)
		}
		if registro != nil {
			if _, err := s.registroRepo.Create(dbc, []*types.RegistroHistorico{registro}); err != nil {
				return fmt.Errorf("create registro: %w", err)
			}
		}

		result = material
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *custodyService) Historico(ctx context.Context, materialID uuid.UUID) ([]*types.RegistroHistorico, error) {
	dbc := dbctx.Context{Ctx: ctx}
	if _, err := s.loadMaterial(dbc, materialID); err != nil {
		return nil, err
	}
	registros, err := s.registroRepo.GetByMaterialIDs(dbc, []uuid.UUID{materialID})
	if err != nil {
		return nil, fmt.Errorf("get historico: %w", err)
	}
	return registros, nil
}
