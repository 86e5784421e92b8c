package testutil

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/macedolvs/custodia-backend/internal/domain"
	"github.com/macedolvs/custodia-backend/internal/domain/custody"
)

func SeedUser(tb testing.TB, gdb *gorm.DB) *types.User {
	tb.Helper()
	u := &types.User{
		ID:       uuid.New(),
		Username: fmt.Sprintf("agente_%s", uuid.NewString()[:8]),
		Password: "hash",
		Nome:     "AGENTE DE TESTE",
	}
	if err := gdb.WithContext(context.Background()).Create(u).Error; err != nil {
		tb.Fatalf("seed user: %v", err)
	}
	return u
}

func SeedOcorrencia(tb testing.TB, gdb *gorm.DB, bou string) *types.Ocorrencia {
	tb.Helper()
	o := &types.Ocorrencia{
		ID:          uuid.New(),
		BOU:         bou,
		Vara:        custody.Vara01,
		Processo:    "0001234-56.2024.8.16.0021",
		DataEntrada: time.Now(),
	}
	if err := gdb.WithContext(context.Background()).Create(o).Error; err != nil {
		tb.Fatalf("seed ocorrencia: %v", err)
	}
	return o
}

func SeedNoticiado(tb testing.TB, gdb *gorm.DB, ocorrenciaID uuid.UUID, nome string) *types.Noticiado {
	tb.Helper()
	n := &types.Noticiado{
		ID:           uuid.New(),
		OcorrenciaID: ocorrenciaID,
		Nome:         nome,
	}
	if err := gdb.WithContext(context.Background()).Create(n).Error; err != nil {
		tb.Fatalf("seed noticiado: %v", err)
	}
	return n
}

func SeedMaterial(tb testing.TB, gdb *gorm.DB, noticiadoID uuid.UUID, status string) *types.Material {
	tb.Helper()
	m := &types.Material{
		ID:           uuid.New(),
		NoticiadoID:  noticiadoID,
		Substancia:   custody.SubstanciaMaconha,
		PesoEstimado: 10,
		Unidade:      custody.UnidadeGrama,
		Status:       status,
	}
	if err := gdb.WithContext(context.Background()).Create(m).Error; err != nil {
		tb.Fatalf("seed material: %v", err)
	}
	return m
}

func SeedLote(tb testing.TB, gdb *gorm.DB, identificador string, responsavelID uuid.UUID) *types.Lote {
	tb.Helper()
	l := &types.Lote{
		ID:            uuid.New(),
		Identificador: identificador,
		Status:        custody.LoteAberto,
		DataCriacao:   time.Now(),
		ResponsavelID: responsavelID,
	}
	if err := gdb.WithContext(context.Background()).Create(l).Error; err != nil {
		tb.Fatalf("seed lote: %v", err)
	}
	return l
}

func AttachToLote(tb testing.TB, gdb *gorm.DB, m *types.Material, loteID uuid.UUID) {
	tb.Helper()
	if err := gdb.WithContext(context.Background()).
		Model(&types.Material{}).
		Where("id = ?", m.ID).
		Update("lote_id", loteID).Error; err != nil {
		tb.Fatalf("attach material to lote: %v", err)
	}
	m.LoteID = &loteID
}
