package services

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/macedolvs/custodia-backend/internal/data/repos"
	types "github.com/macedolvs/custodia-backend/internal/domain"
	"github.com/macedolvs/custodia-backend/internal/domain/custody"
	"github.com/macedolvs/custodia-backend/internal/platform/dbctx"
	"github.com/macedolvs/custodia-backend/internal/platform/logger"
)

// RelatorioService builds the read-only views: the operational dashboard and
// the court-facing reports. Nothing here mutates state.
type RelatorioService interface {
	Painel(ctx context.Context, buscaBOU string) (*Painel, error)
	Geral(ctx context.Context, filtro RelatorioFiltro) (*RelatorioGeral, error)
	Queima(ctx context.Context) ([]*types.Material, error)
	Forum(ctx context.Context, vara string) ([]*types.Material, error)
}

type Painel struct {
	Pendentes   []*types.Material       `json:"pendentes"`
	NoCofre     []*types.Material       `json:"no_cofre"`
	Prontos     []*types.Material       `json:"prontos_queima"`
	Incinerados []*types.Material       `json:"incinerados"`
	Totais      []repos.TotalSubstancia `json:"totais_por_substancia"`
	TotalGeral  int64                   `json:"total_geral"`
}

type RelatorioFiltro struct {
	Vara       string
	Substancia string
	Mes        int
	Ano        int
}

type RelatorioGeral struct {
	Itens  []*types.Material       `json:"itens"`
	Resumo []repos.TotalSubstancia `json:"resumo"`
}

type relatorioService struct {
	db           *gorm.DB
	log          *logger.Logger
	materialRepo repos.MaterialRepo
}

func NewRelatorioService(db *gorm.DB, baseLog *logger.Logger, materialRepo repos.MaterialRepo) RelatorioService {
	serviceLog := baseLog.With("service", "RelatorioService")
	return &relatorioService{db: db, log: serviceLog, materialRepo: materialRepo}
}

func (s *relatorioService) Painel(ctx context.Context, buscaBOU string) (*Painel, error) {
	painel := &Painel{}

	g, gctx := errgroup.WithContext(ctx)
	dbc := dbctx.Context{Ctx: gctx}

	listar := func(status string, dest *[]*types.Material) func() error {
		return func() error {
			itens, err := s.materialRepo.List(dbc, repos.MaterialFilter{
				Statuses:    []string{status},
				BOUContains: buscaBOU,
			})
			if err != nil {
				return fmt.Errorf("listar %s: %w", status, err)
			}
			*dest = itens
			return nil
		}
	}

	g.Go(listar(custody.StatusPendente, &painel.Pendentes))
	g.Go(listar(custody.StatusNoCofre, &painel.NoCofre))
	g.Go(listar(custody.StatusProntoQueima, &painel.Prontos))
	g.Go(listar(custody.StatusIncinerado, &painel.Incinerados))
	g.Go(func() error {
		// Stock totals count what is physically in the vault.
		totais, err := s.materialRepo.SumPesoRealPorSubstancia(dbc, []string{
			custody.StatusNoCofre, custody.StatusProntoQueima,
		})
		if err != nil {
			return fmt.Errorf("totais por substância: %w", err)
		}
		painel.Totais = totais
		return nil
	})
	g.Go(func() error {
		total, err := s.materialRepo.Count(dbc)
		if err != nil {
			return fmt.Errorf("total geral: %w", err)
		}
		painel.TotalGeral = total
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return painel, nil
}

func (s *relatorioService) Geral(ctx context.Context, filtro RelatorioFiltro) (*RelatorioGeral, error) {
	if filtro.Vara != "" && !custody.VaraValida(filtro.Vara) {
		return nil, fmt.Errorf("%w: vara %q", custody.ErrValidation, filtro.Vara)
	}
	if filtro.Substancia != "" && !custody.SubstanciaValida(filtro.Substancia) {
		return nil, fmt.Errorf("%w: substância %q", custody.ErrValidation, filtro.Substancia)
	}

	f := repos.MaterialFilter{
		Vara:       filtro.Vara,
		Substancia: filtro.Substancia,
	}
	if filtro.Mes != 0 {
		if filtro.Mes < 1 || filtro.Mes > 12 {
			return nil, fmt.Errorf("%w: mês %d", custody.ErrValidation, filtro.Mes)
		}
		ano := filtro.Ano
		if ano == 0 {
			ano = time.Now().Year()
		}
		from := time.Date(ano, time.Month(filtro.Mes), 1, 0, 0, 0, 0, time.Local)
		to := from.AddDate(0, 1, 0)
		f.EntradaFrom = &from
		f.EntradaTo = &to
	}

	itens, err := s.materialRepo.List(dbctx.Context{Ctx: ctx}, f)
	if err != nil {
		return nil, fmt.Errorf("relatório geral: %w", err)
	}
	return &RelatorioGeral{Itens: itens, Resumo: resumir(itens)}, nil
}

// resumir aggregates over the already-filtered item set, so the summary
// always matches the listing it accompanies.
func resumir(itens []*types.Material) []repos.TotalSubstancia {
	type chave struct{ substancia, unidade string }
	totais := map[chave]float64{}
	ordem := []chave{}
	for _, m := range itens {
		k := chave{m.Substancia, m.Unidade}
		if _, seen := totais[k]; !seen {
			ordem = append(ordem, k)
		}
		peso := m.PesoEstimado
		if m.PesoReal != nil {
			peso = *m.PesoReal
		}
		totais[k] += peso
	}

	resumo := make([]repos.TotalSubstancia, 0, len(ordem))
	for _, k := range ordem {
		resumo = append(resumo, repos.TotalSubstancia{
			Substancia: k.substancia,
			Unidade:    k.unidade,
			Total:      totais[k],
		})
	}
	return resumo
}

func (s *relatorioService) Queima(ctx context.Context) ([]*types.Material, error) {
	itens, err := s.materialRepo.List(dbctx.Context{Ctx: ctx}, repos.MaterialFilter{
		Statuses: []string{custody.StatusProntoQueima},
		Order:    "material.lote_id, ocorrencia.bou",
	})
	if err != nil {
		return nil, fmt.Errorf("relatório de queima: %w", err)
	}
	return itens, nil
}

func (s *relatorioService) Forum(ctx context.Context, vara string) ([]*types.Material, error) {
	if vara != "" && !custody.VaraValida(vara) {
		return nil, fmt.Errorf("%w: vara %q", custody.ErrValidation, vara)
	}
	itens, err := s.materialRepo.List(dbctx.Context{Ctx: ctx}, repos.MaterialFilter{
		Statuses: []string{custody.StatusIncinerado},
		Vara:     vara,
		Order:    "material.data_incineracao DESC",
	})
	if err != nil {
		return nil, fmt.Errorf("relatório para o fórum: %w", err)
	}
	return itens, nil
}
