package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/macedolvs/custodia-backend/internal/data/repos"
	types "github.com/macedolvs/custodia-backend/internal/domain"
	"github.com/macedolvs/custodia-backend/internal/domain/custody"
	"github.com/macedolvs/custodia-backend/internal/platform/dbctx"
	"github.com/macedolvs/custodia-backend/internal/platform/logger"
)

// LoteService manages destruction lots. Close is the one irreversible
// operation of the system.
type LoteService interface {
	Create(ctx context.Context, responsavelID uuid.UUID, identificador string) (*types.Lote, error)
	Get(ctx context.Context, id uuid.UUID) (*types.Lote, []*types.Material, error)
	ListAbertos(ctx context.Context) ([]*types.Lote, error)
	ListIncinerados(ctx context.Context) ([]*types.Lote, error)

	// Close finalizes the lot: every material of the lot becomes INCINERADO,
	// each with one audit record carrying its previous status, then the lot
	// itself is claimed with a conditional update. Exactly one concurrent
	// caller wins; the rest get ErrAlreadyFinalized. All or nothing.
	Close(ctx context.Context, usuarioID uuid.UUID, id uuid.UUID) (*types.Lote, error)

	// Delete removes an open lot and detaches its materials. A closed lot is
	// never deleted.
	Delete(ctx context.Context, id uuid.UUID) error
}

type loteService struct {
	db           *gorm.DB
	log          *logger.Logger
	loteRepo     repos.LoteRepo
	materialRepo repos.MaterialRepo
	registroRepo repos.RegistroRepo
}

func NewLoteService(
	db *gorm.DB,
	baseLog *logger.Logger,
	loteRepo repos.LoteRepo,
	materialRepo repos.MaterialRepo,
	registroRepo repos.RegistroRepo,
) LoteService {
	serviceLog := baseLog.With("service", "LoteService")
	return &loteService{
		db:           db,
		log:          serviceLog,
		loteRepo:     loteRepo,
		materialRepo: materialRepo,
		registroRepo: registroRepo,
	}
}

func (s *loteService) Create(ctx context.Context, responsavelID uuid.UUID, identificador string) (*types.Lote, error) {
	ident := strings.ToUpper(strings.TrimSpace(identificador))
	if ident == "" {
		return nil, fmt.Errorf("%w: identificador obrigatório", custody.ErrValidation)
	}

	lote := &types.Lote{
		ID:            uuid.New(),
		Identificador: ident,
		Status:        custody.LoteAberto,
		DataCriacao:   time.Now(),
		ResponsavelID: responsavelID,
	}
	dbc := dbctx.Context{Ctx: ctx}
	if _, err := s.loteRepo.Create(dbc, []*types.Lote{lote}); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("%w: lote %s", custody.ErrDuplicateKey, ident)
		}
		return nil, fmt.Errorf("create lote: %w", err)
	}
	s.log.Info("lote criado", "lote_id", lote.ID, "identificador", ident)
	return lote, nil
}

func (s *loteService) Get(ctx context.Context, id uuid.UUID) (*types.Lote, []*types.Material, error) {
	dbc := dbctx.Context{Ctx: ctx}
	lote, err := s.load(dbc, id)
	if err != nil {
		return nil, nil, err
	}
	materiais, err := s.materialRepo.List(dbc, repos.MaterialFilter{
		LoteID: &id,
		Order:  "ocorrencia.bou, material.posicao_sacola",
	})
	if err != nil {
		return nil, nil, fmt.Errorf("list materiais do lote: %w", err)
	}
	return lote, materiais, nil
}

func (s *loteService) load(dbc dbctx.Context, id uuid.UUID) (*types.Lote, error) {
	lotes, err := s.loteRepo.GetByIDs(dbc, []uuid.UUID{id})
	if err != nil {
		return nil, fmt.Errorf("get lote: %w", err)
	}
	if len(lotes) == 0 {
		return nil, fmt.Errorf("%w: lote %s", custody.ErrNotFound, id)
	}
	return lotes[0], nil
}

func (s *loteService) ListAbertos(ctx context.Context) ([]*types.Lote, error) {
	return s.loteRepo.ListByStatus(dbctx.Context{Ctx: ctx}, custody.LoteAberto)
}

func (s *loteService) ListIncinerados(ctx context.Context) ([]*types.Lote, error) {
	return s.loteRepo.ListByStatus(dbctx.Context{Ctx: ctx}, custody.LoteIncinerado)
}

func (s *loteService) Close(ctx context.Context, usuarioID uuid.UUID, id uuid.UUID) (*types.Lote, error) {
	var closed *types.Lote
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}

		lote, err := s.load(dbc, id)
		if err != nil {
			return err
		}
		if lote.Status == custody.LoteIncinerado {
			return fmt.Errorf("%w: lote %s", custody.ErrAlreadyFinalized, lote.Identificador)
		}

		itens, err := s.materialRepo.GetByLoteIDs(dbc, []uuid.UUID{id})
		if err != nil {
			return fmt.Errorf("list itens do lote: %w", err)
		}

		now := time.Now()
		registros := make([]*types.RegistroHistorico, 0, len(itens))
		for _, item := range itens {
			anterior := item.Status
			registros = append(registros, &types.RegistroHistorico{
				MaterialID:     item.ID,
				UsuarioID:      usuarioID,
				StatusAnterior: &anterior,
				StatusNovo:     custody.StatusIncinerado,
				DataEvento:     now,
				Observacao:     fmt.Sprintf("incineração oficial do lote %s", lote.Identificador),
			})
		}

		// The sweep takes every item of the lot regardless of its current
		// status; the closure is the incineration of the physical lot.
		if _, err := s.materialRepo.IncinerateByLoteID(dbc, id, now); err != nil {
			return fmt.Errorf("incinerar itens: %w", err)
		}
		if _, err := s.registroRepo.Create(dbc, registros); err != nil {
			return fmt.Errorf("create registros: %w", err)
		}

		// Conditional claim is the serialization point: of two concurrent
		// closers only one flips ABERTO -> INCINERADO, the other rolls back.
		won, err := s.loteRepo.ClaimIncineracao(dbc, id, now)
		if err != nil {
			return fmt.Errorf("claim incineração: %w", err)
		}
		if !won {
			return fmt.Errorf("%w: lote %s", custody.ErrAlreadyFinalized, lote.Identificador)
		}

		lote.Status = custody.LoteIncinerado
		lote.DataIncineracao = &now
		closed = lote
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("lote incinerado", "lote_id", id, "identificador", closed.Identificador)
	return closed, nil
}

func (s *loteService) Delete(ctx context.Context, id uuid.UUID) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}

		lote, err := s.load(dbc, id)
		if err != nil {
			return err
		}
		if lote.Status == custody.LoteIncinerado {
			return fmt.Errorf("%w: lote %s", custody.ErrAlreadyFinalized, lote.Identificador)
		}

		if err := s.materialRepo.ClearLoteRef(dbc, id); err != nil {
			return fmt.Errorf("clear lote refs: %w", err)
		}
		return s.loteRepo.Delete(dbc, id)
	})
	if err != nil {
		return err
	}
	s.log.Info("lote removido", "lote_id", id)
	return nil
}
