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

// IntakeService registers new seizures: one Ocorrencia with its Noticiados
// and Materiais in a single transaction, every material starting PENDENTE
// with its intake audit record.
type IntakeService interface {
	RegisterOcorrencia(ctx context.Context, usuarioID uuid.UUID, input RegisterOcorrenciaInput) (*types.Ocorrencia, error)
	GetOcorrencia(ctx context.Context, id uuid.UUID) (*types.Ocorrencia, error)
	UpdatePolicial(ctx context.Context, id uuid.UUID, nome, graduacao, rg string) error
}

type RegisterOcorrenciaInput struct {
	BOU               string
	Vara              string
	Processo          string
	PolicialNome      string
	PolicialGraduacao string
	PolicialRG        string
	Noticiados        []NoticiadoInput
}

type NoticiadoInput struct {
	Nome      string
	Materiais []MaterialInput
}

type MaterialInput struct {
	Substancia      string
	OutraSubstancia string
	PesoEstimado    string
	Unidade         string
	NumeroVestigio  string
}

type intakeService struct {
	db             *gorm.DB
	log            *logger.Logger
	ocorrenciaRepo repos.OcorrenciaRepo
	noticiadoRepo  repos.NoticiadoRepo
	materialRepo   repos.MaterialRepo
	registroRepo   repos.RegistroRepo
}

func NewIntakeService(
	db *gorm.DB,
	baseLog *logger.Logger,
	ocorrenciaRepo repos.OcorrenciaRepo,
	noticiadoRepo repos.NoticiadoRepo,
	materialRepo repos.MaterialRepo,
	registroRepo repos.RegistroRepo,
) IntakeService {
	serviceLog := baseLog.With("service", "IntakeService")
	return &intakeService{
		db:             db,
		log:            serviceLog,
		ocorrenciaRepo: ocorrenciaRepo,
		noticiadoRepo:  noticiadoRepo,
		materialRepo:   materialRepo,
		registroRepo:   registroRepo,
	}
}

// noticiadoPlan is a pre-validated intake entry. All parsing happens before
// the transaction opens so a bad row leaves zero state behind.
type noticiadoPlan struct {
	nome      string
	materiais []*types.Material
}

func (s *intakeService) RegisterOcorrencia(ctx context.Context, usuarioID uuid.UUID, input RegisterOcorrenciaInput) (*types.Ocorrencia, error) {
	bou := strings.ToUpper(strings.TrimSpace(input.BOU))
	if bou == "" {
		return nil, fmt.Errorf("%w: bou obrigatório", custody.ErrValidation)
	}
	vara := strings.ToUpper(strings.TrimSpace(input.Vara))
	if !custody.VaraValida(vara) {
		return nil, fmt.Errorf("%w: vara %q", custody.ErrValidation, input.Vara)
	}
	graduacao := strings.ToUpper(strings.TrimSpace(input.PolicialGraduacao))
	if graduacao != "" && !custody.GraduacaoValida(graduacao) {
		return nil, fmt.Errorf("%w: graduação %q", custody.ErrValidation, input.PolicialGraduacao)
	}

	plans, err := s.planNoticiados(input.Noticiados, usuarioID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	ocorrencia := &types.Ocorrencia{
		ID:                uuid.New(),
		BOU:               bou,
		Vara:              vara,
		Processo:          strings.TrimSpace(input.Processo),
		PolicialNome:      strings.ToUpper(strings.TrimSpace(input.PolicialNome)),
		PolicialGraduacao: graduacao,
		PolicialRG:        strings.TrimSpace(input.PolicialRG),
		DataEntrada:       now,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}

		if _, err := s.ocorrenciaRepo.Create(dbc, []*types.Ocorrencia{ocorrencia}); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return fmt.Errorf("%w: bou %s", custody.ErrDuplicateKey, bou)
			}
			return fmt.Errorf("create ocorrencia: %w", err)
		}

		for _, plan := range plans {
			noticiado := &types.Noticiado{
				ID:           uuid.New(),
				OcorrenciaID: ocorrencia.ID,
				Nome:         plan.nome,
			}
			if _, err := s.noticiadoRepo.Create(dbc, []*types.Noticiado{noticiado}); err != nil {
				return fmt.Errorf("create noticiado: %w", err)
			}

			for _, m := range plan.materiais {
				m.NoticiadoID = noticiado.ID
			}
			if _, err := s.materialRepo.Create(dbc, plan.materiais); err != nil {
				return fmt.Errorf("create materiais: %w", err)
			}

			registros := make([]*types.RegistroHistorico, 0, len(plan.materiais))
			for _, m := range plan.materiais {
				registros = append(registros, &types.RegistroHistorico{
					MaterialID: m.ID,
					UsuarioID:  usuarioID,
					StatusNovo: custody.StatusPendente,
					DataEvento: now,
					Observacao: "registro inicial de apreensão",
				})
			}
			if _, err := s.registroRepo.Create(dbc, registros); err != nil {
				return fmt.Errorf("create registros: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("ocorrencia registrada", "ocorrencia_id", ocorrencia.ID, "bou", bou, "noticiados", len(plans))
	return s.GetOcorrencia(ctx, ocorrencia.ID)
}

func (s *intakeService) planNoticiados(inputs []NoticiadoInput, usuarioID uuid.UUID) ([]noticiadoPlan, error) {
	plans := make([]noticiadoPlan, 0, len(inputs))
	for _, in := range inputs {
		nome := strings.ToUpper(strings.TrimSpace(in.Nome))
		if nome == "" {
			// Blank rows of the intake form are silently skipped.
			continue
		}

		materiais := make([]*types.Material, 0, len(in.Materiais))
		for _, mi := range in.Materiais {
			substancia := strings.ToUpper(strings.TrimSpace(mi.Substancia))
			if substancia == "" {
				substancia = custody.SubstanciaOutros
			}
			if !custody.SubstanciaValida(substancia) {
				return nil, fmt.Errorf("%w: substância %q", custody.ErrValidation, mi.Substancia)
			}
			unidade := strings.ToUpper(strings.TrimSpace(mi.Unidade))
			if unidade == "" {
				unidade = custody.UnidadeGrama
			}
			if !custody.UnidadeValida(unidade) {
				return nil, fmt.Errorf("%w: unidade %q", custody.ErrValidation, mi.Unidade)
			}
			peso, err := custody.ParsePeso(mi.PesoEstimado)
			if err != nil {
				return nil, err
			}

			uid := usuarioID
			materiais = append(materiais, &types.Material{
				ID:                uuid.New(),
				Substancia:        substancia,
				OutraSubstancia:   strings.TrimSpace(mi.OutraSubstancia),
				PesoEstimado:      peso,
				Unidade:           unidade,
				NumeroVestigio:    strings.TrimSpace(mi.NumeroVestigio),
				Status:            custody.StatusPendente,
				UsuarioRegistroID: &uid,
			})
		}
		if len(materiais) == 0 {
			return nil, fmt.Errorf("%w: noticiado %s sem materiais", custody.ErrValidation, nome)
		}
		plans = append(plans, noticiadoPlan{nome: nome, materiais: materiais})
	}
	if len(plans) == 0 {
		return nil, fmt.Errorf("%w: ao menos um noticiado com material", custody.ErrValidation)
	}
	return plans, nil
}

func (s *intakeService) GetOcorrencia(ctx context.Context, id uuid.UUID) (*types.Ocorrencia, error) {
	dbc := dbctx.Context{Ctx: ctx}
	ocorrencias, err := s.ocorrenciaRepo.GetByIDs(dbc, []uuid.UUID{id})
	if err != nil {
		return nil, fmt.Errorf("get ocorrencia: %w", err)
	}
	if len(ocorrencias) == 0 {
		return nil, fmt.Errorf("%w: ocorrencia %s", custody.ErrNotFound, id)
	}
	return ocorrencias[0], nil
}

func (s *intakeService) UpdatePolicial(ctx context.Context, id uuid.UUID, nome, graduacao, rg string) error {
	g := strings.ToUpper(strings.TrimSpace(graduacao))
	if g != "" && !custody.GraduacaoValida(g) {
		return fmt.Errorf("%w: graduação %q", custody.ErrValidation, graduacao)
	}
	if _, err := s.GetOcorrencia(ctx, id); err != nil {
		return err
	}
	dbc := dbctx.Context{Ctx: ctx}
	if err := s.ocorrenciaRepo.UpdatePolicial(dbc, id, nome, g, rg); err != nil {
		return fmt.Errorf("update policial: %w", err)
	}
	return nil
}
