package services

import (
	"context"
	"errors"
	"testing"

	"gorm.io/gorm"

	"github.com/macedolvs/custodia-backend/internal/data/repos"
	"github.com/macedolvs/custodia-backend/internal/data/repos/testutil"
	types "github.com/macedolvs/custodia-backend/internal/domain"
	"github.com/macedolvs/custodia-backend/internal/domain/custody"
)

func newIntakeService(t *testing.T, gdb *gorm.DB) IntakeService {
	t.Helper()
	log := testutil.Logger(t)
	return NewIntakeService(
		gdb,
		log,
		repos.NewOcorrenciaRepo(gdb, log),
		repos.NewNoticiadoRepo(gdb, log),
		repos.NewMaterialRepo(gdb, log),
		repos.NewRegistroRepo(gdb, log),
	)
}

func umNoticiado(nome string, materiais ...MaterialInput) []NoticiadoInput {
	return []NoticiadoInput{{Nome: nome, Materiais: materiais}}
}

func TestRegisterOcorrencia(t *testing.T) {
	gdb := testutil.DB(t)
	svc := newIntakeService(t, gdb)
	u := testutil.SeedUser(t, gdb)

	ocorrencia, err := svc.RegisterOcorrencia(context.Background(), u.ID, RegisterOcorrenciaInput{
		BOU:      "  b2024-001 ",
		Vara:     "vara_01",
		Processo: "0001234-56.2024.8.16.0021",
		Noticiados: []NoticiadoInput{
			{
				Nome: "fulano de tal",
				Materiais: []MaterialInput{
					{Substancia: "MACONHA", PesoEstimado: "150,5", Unidade: "G"},
					{Substancia: "", PesoEstimado: "", Unidade: ""},
				},
			},
			{
				Nome:      "beltrano",
				Materiais: []MaterialInput{{Substancia: "COCAINA", PesoEstimado: "20", Unidade: "G"}},
			},
		},
	})
	if err != nil {
		t.Fatalf("RegisterOcorrencia: %v", err)
	}

	if ocorrencia.BOU != "B2024-001" {
		t.Errorf("BOU = %q, want uppercase trimmed", ocorrencia.BOU)
	}
	if len(ocorrencia.Noticiados) != 2 {
		t.Fatalf("len(Noticiados) = %d, want 2", len(ocorrencia.Noticiados))
	}

	var materiais []*types.Material
	if err := gdb.Find(&materiais).Error; err != nil {
		t.Fatalf("load materiais: %v", err)
	}
	if len(materiais) != 3 {
		t.Fatalf("len(materiais) = %d, want 3", len(materiais))
	}
	for _, m := range materiais {
		if m.Status != custody.StatusPendente {
			t.Errorf("material status = %s, want PENDENTE", m.Status)
		}
	}

	// defaults on the blank material row
	var comDefaults int
	for _, m := range materiais {
		if m.Substancia == custody.SubstanciaOutros && m.Unidade == custody.UnidadeGrama && m.PesoEstimado == 0 {
			comDefaults++
		}
	}
	if comDefaults != 1 {
		t.Errorf("materiais com defaults = %d, want 1", comDefaults)
	}

	// weight with decimal comma
	var comVirgula bool
	for _, m := range materiais {
		if m.PesoEstimado == 150.5 {
			comVirgula = true
		}
	}
	if !comVirgula {
		t.Error("peso '150,5' not parsed to 150.5")
	}

	// one intake audit record per material, nil previous status
	var registros []*types.RegistroHistorico
	if err := gdb.Find(&registros).Error; err != nil {
		t.Fatalf("load registros: %v", err)
	}
	if len(registros) != 3 {
		t.Fatalf("len(registros) = %d, want 3", len(registros))
	}
	for _, r := range registros {
		if r.StatusAnterior != nil {
			t.Error("intake registro with non-nil StatusAnterior")
		}
		if r.StatusNovo != custody.StatusPendente {
			t.Errorf("registro StatusNovo = %s", r.StatusNovo)
		}
	}
}

func TestRegisterOcorrenciaSkipsBlankNames(t *testing.T) {
	gdb := testutil.DB(t)
	svc := newIntakeService(t, gdb)
	u := testutil.SeedUser(t, gdb)

	ocorrencia, err := svc.RegisterOcorrencia(context.Background(), u.ID, RegisterOcorrenciaInput{
		BOU:  "B2024-002",
		Vara: custody.Vara02,
		Noticiados: []NoticiadoInput{
			{Nome: "   "},
			{Nome: "VALIDO", Materiais: []MaterialInput{{Substancia: "CRACK", PesoEstimado: "5"}}},
		},
	})
	if err != nil {
		t.Fatalf("RegisterOcorrencia: %v", err)
	}
	if len(ocorrencia.Noticiados) != 1 || ocorrencia.Noticiados[0].Nome != "VALIDO" {
		t.Fatalf("Noticiados = %+v", ocorrencia.Noticiados)
	}
}

func TestRegisterOcorrenciaValidation(t *testing.T) {
	gdb := testutil.DB(t)
	svc := newIntakeService(t, gdb)
	u := testutil.SeedUser(t, gdb)

	cases := []struct {
		name  string
		input RegisterOcorrenciaInput
	}{
		{"bou vazio", RegisterOcorrenciaInput{Vara: custody.Vara01, Noticiados: umNoticiado("X", MaterialInput{})}},
		{"vara invalida", RegisterOcorrenciaInput{BOU: "B1", Vara: "VARA_99", Noticiados: umNoticiado("X", MaterialInput{})}},
		{"graduacao invalida", RegisterOcorrenciaInput{BOU: "B1", Vara: custody.Vara01, PolicialGraduacao: "GEN", Noticiados: umNoticiado("X", MaterialInput{})}},
		{"substancia invalida", RegisterOcorrenciaInput{BOU: "B1", Vara: custody.Vara01, Noticiados: umNoticiado("X", MaterialInput{Substancia: "LSD"})}},
		{"peso negativo", RegisterOcorrenciaInput{BOU: "B1", Vara: custody.Vara01, Noticiados: umNoticiado("X", MaterialInput{PesoEstimado: "-3"})}},
		{"sem noticiados", RegisterOcorrenciaInput{BOU: "B1", Vara: custody.Vara01}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := svc.RegisterOcorrencia(context.Background(), u.ID, c.input)
			if !errors.Is(err, custody.ErrValidation) {
				t.Fatalf("got %v, want ErrValidation", err)
			}
		})
	}

	// nothing persisted on rejection
	var count int64
	if err := gdb.Model(&types.Ocorrencia{}).Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 0 {
		t.Errorf("ocorrencias persisted after validation failures: %d", count)
	}
}

func TestRegisterOcorrenciaDuplicateBOU(t *testing.T) {
	gdb := testutil.DB(t)
	svc := newIntakeService(t, gdb)
	u := testutil.SeedUser(t, gdb)

	input := RegisterOcorrenciaInput{
		BOU:        "B2024-003",
		Vara:       custody.Vara01,
		Noticiados: umNoticiado("FULANO", MaterialInput{Substancia: "MACONHA", PesoEstimado: "1"}),
	}
	if _, err := svc.RegisterOcorrencia(context.Background(), u.ID, input); err != nil {
		t.Fatalf("first register: %v", err)
	}

	_, err := svc.RegisterOcorrencia(context.Background(), u.ID, input)
	if !errors.Is(err, custody.ErrDuplicateKey) {
		t.Fatalf("second register: got %v, want ErrDuplicateKey", err)
	}

	// the rejected attempt must leave no partial rows
	var noticiados, materiais int64
	gdb.Model(&types.Noticiado{}).Count(&noticiados)
	gdb.Model(&types.Material{}).Count(&materiais)
	if noticiados != 1 || materiais != 1 {
		t.Errorf("partial rows after duplicate: noticiados=%d materiais=%d", noticiados, materiais)
	}
}

func TestUpdatePolicial(t *testing.T) {
	gdb := testutil.DB(t)
	svc := newIntakeService(t, gdb)
	u := testutil.SeedUser(t, gdb)

	ocorrencia, err := svc.RegisterOcorrencia(context.Background(), u.ID, RegisterOcorrenciaInput{
		BOU:        "B2024-004",
		Vara:       custody.Vara03,
		Noticiados: umNoticiado("FULANO", MaterialInput{Substancia: "MACONHA", PesoEstimado: "1"}),
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	if err := svc.UpdatePolicial(context.Background(), ocorrencia.ID, "silva", "SD", "12345"); err != nil {
		t.Fatalf("UpdatePolicial: %v", err)
	}
	atualizada, err := svc.GetOcorrencia(context.Background(), ocorrencia.ID)
	if err != nil {
		t.Fatalf("GetOcorrencia: %v", err)
	}
	if atualizada.PolicialNome != "SILVA" || atualizada.PolicialGraduacao != "SD" {
		t.Errorf("policial = %q/%q", atualizada.PolicialNome, atualizada.PolicialGraduacao)
	}

	if err := svc.UpdatePolicial(context.Background(), ocorrencia.ID, "silva", "GENERAL", ""); !errors.Is(err, custody.ErrValidation) {
		t.Errorf("invalid graduacao: got %v, want ErrValidation", err)
	}
}
