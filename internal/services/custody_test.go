package services

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"gorm.io/gorm"

	"github.com/macedolvs/custodia-backend/internal/data/repos"
	"github.com/macedolvs/custodia-backend/internal/data/repos/testutil"
	types "github.com/macedolvs/custodia-backend/internal/domain"
	"github.com/macedolvs/custodia-backend/internal/domain/custody"
)

func newCustodyService(t *testing.T, gdb *gorm.DB) CustodyService {
	t.Helper()
	log := testutil.Logger(t)
	return NewCustodyService(
		gdb,
		log,
		repos.NewMaterialRepo(gdb, log),
		repos.NewLoteRepo(gdb, log),
		repos.NewRegistroRepo(gdb, log),
	)
}

func TestCheckIn(t *testing.T) {
	gdb := testutil.DB(t)
	svc := newCustodyService(t, gdb)

	u := testutil.SeedUser(t, gdb)
	o := testutil.SeedOcorrencia(t, gdb, "B123456")
	n := testutil.SeedNoticiado(t, gdb, o.ID, "FULANO DE TAL")
	m := testutil.SeedMaterial(t, gdb, n.ID, custody.StatusPendente)
	l := testutil.SeedLote(t, gdb, "LOTE-2024-01", u.ID)

	material, err := svc.CheckIn(context.Background(), u.ID, CheckInInput{
		MaterialID:    m.ID,
		LoteID:        l.ID,
		PesoReal:      "9,8",
		Caixa:         "c-01",
		PosicaoSacola: "a3",
	})
	if err != nil {
		t.Fatalf("CheckIn: %v", err)
	}

	if material.Status != custody.StatusNoCofre {
		t.Errorf("status = %s, want NO_COFRE", material.Status)
	}
	if material.PesoReal == nil || *material.PesoReal != 9.8 {
		t.Errorf("peso_real = %v, want 9.8", material.PesoReal)
	}
	if material.LoteID == nil || *material.LoteID != l.ID {
		t.Error("lote_id not set")
	}
	if material.PosicaoSacola != "A3" || material.Caixa != "C-01" {
		t.Errorf("posicao/caixa = %q/%q, want uppercase", material.PosicaoSacola, material.Caixa)
	}
	if material.DataConferencia == nil {
		t.Error("data_conferencia not set")
	}

	// audit record with structured details
	var registros []*types.RegistroHistorico
	if err := gdb.Where("material_id = ?", m.ID).Find(&registros).Error; err != nil {
		t.Fatalf("load registros: %v", err)
	}
	if len(registros) != 1 {
		t.Fatalf("len(registros) = %d, want 1", len(registros))
	}
	r := registros[0]
	if r.StatusAnterior == nil || *r.StatusAnterior != custody.StatusPendente {
		t.Errorf("StatusAnterior = %v", r.StatusAnterior)
	}
	if r.StatusNovo != custody.StatusNoCofre {
		t.Errorf("StatusNovo = %s", r.StatusNovo)
	}
	var detalhes map[string]any
	if err := json.Unmarshal(r.Detalhes, &detalhes); err != nil {
		t.Fatalf("unmarshal detalhes: %v", err)
	}
	if detalhes["lote"] != "LOTE-2024-01" || detalhes["peso_real"] != 9.8 {
		t.Errorf("detalhes = %v", detalhes)
	}
}

func TestCheckInWrongStatus(t *testing.T) {
	gdb := testutil.DB(t)
	svc := newCustodyService(t, gdb)

	u := testutil.SeedUser(t, gdb)
	o := testutil.SeedOcorrencia(t, gdb, "B123456")
	n := testutil.SeedNoticiado(t, gdb, o.ID, "FULANO DE TAL")
	l := testutil.SeedLote(t, gdb, "LOTE-2024-01", u.ID)

	for _, status := range []string{custody.StatusNoCofre, custody.StatusProntoQueima} {
		m := testutil.SeedMaterial(t, gdb, n.ID, status)
		_, err := svc.CheckIn(context.Background(), u.ID, CheckInInput{MaterialID: m.ID, LoteID: l.ID, PesoReal: "1"})
		if !errors.Is(err, custody.ErrInvalidState) {
			t.Errorf("check-in from %s: got %v, want ErrInvalidState", status, err)
		}
	}
}

func TestCheckInIntoIncineratedLote(t *testing.T) {
	gdb := testutil.DB(t)
	svc := newCustodyService(t, gdb)

	u := testutil.SeedUser(t, gdb)
	o := testutil.SeedOcorrencia(t, gdb, "B123456")
	n := testutil.SeedNoticiado(t, gdb, o.ID, "FULANO DE TAL")
	m := testutil.SeedMaterial(t, gdb, n.ID, custody.StatusPendente)
	l := testutil.SeedLote(t, gdb, "LOTE-FECHADO", u.ID)
	if err := gdb.Model(&types.Lote{}).Where("id = ?", l.ID).
		Update("status", custody.LoteIncinerado).Error; err != nil {
		t.Fatalf("force lote incinerado: %v", err)
	}

	_, err := svc.CheckIn(context.Background(), u.ID, CheckInInput{MaterialID: m.ID, LoteID: l.ID, PesoReal: "1"})
	if !errors.Is(err, custody.ErrImmutableRecord) {
		t.Fatalf("got %v, want ErrImmutableRecord", err)
	}

	// rejected check-in leaves the material untouched
	atual, err := svc.GetMaterial(context.Background(), m.ID)
	if err != nil {
		t.Fatalf("GetMaterial: %v", err)
	}
	if atual.Status != custody.StatusPendente || atual.LoteID != nil {
		t.Errorf("material mutated: status=%s lote=%v", atual.Status, atual.LoteID)
	}
}

func TestAuthorizeDestruction(t *testing.T) {
	gdb := testutil.DB(t)
	svc := newCustodyService(t, gdb)

	u := testutil.SeedUser(t, gdb)
	o := testutil.SeedOcorrencia(t, gdb, "B123456")
	n := testutil.SeedNoticiado(t, gdb, o.ID, "FULANO DE TAL")
	m := testutil.SeedMaterial(t, gdb, n.ID, custody.StatusNoCofre)

	material, err := svc.AuthorizeDestruction(context.Background(), u.ID, m.ID, "OF-123/2024")
	if err != nil {
		t.Fatalf("AuthorizeDestruction: %v", err)
	}
	if material.Status != custody.StatusProntoQueima {
		t.Errorf("status = %s, want PRONTO_QUEIMA", material.Status)
	}
	if material.NOficio != "OF-123/2024" {
		t.Errorf("n_oficio = %q", material.NOficio)
	}

	// the authorization writes its own audit record
	var registros []*types.RegistroHistorico
	if err := gdb.Where("material_id = ?", m.ID).Find(&registros).Error; err != nil {
		t.Fatalf("load registros: %v", err)
	}
	if len(registros) != 1 {
		t.Fatalf("len(registros) = %d, want 1", len(registros))
	}
	if registros[0].StatusNovo != custody.StatusProntoQueima {
		t.Errorf("StatusNovo = %s", registros[0].StatusNovo)
	}
}

func TestAuthorizeDestructionWrongStatus(t *testing.T) {
	gdb := testutil.DB(t)
	svc := newCustodyService(t, gdb)

	u := testutil.SeedUser(t, gdb)
	o := testutil.SeedOcorrencia(t, gdb, "B123456")
	n := testutil.SeedNoticiado(t, gdb, o.ID, "FULANO DE TAL")

	for _, status := range []string{custody.StatusPendente, custody.StatusProntoQueima, custody.StatusIncinerado} {
		m := testutil.SeedMaterial(t, gdb, n.ID, status)
		_, err := svc.AuthorizeDestruction(context.Background(), u.ID, m.ID, "OF-1")
		if !errors.Is(err, custody.ErrInvalidState) {
			t.Errorf("authorize from %s: got %v, want ErrInvalidState", status, err)
		}
	}
}

func TestAuthorizeDestructionRequiresOficio(t *testing.T) {
	gdb := testutil.DB(t)
	svc := newCustodyService(t, gdb)

	u := testutil.SeedUser(t, gdb)
	o := testutil.SeedOcorrencia(t, gdb, "B123456")
	n := testutil.SeedNoticiado(t, gdb, o.ID, "FULANO DE TAL")
	m := testutil.SeedMaterial(t, gdb, n.ID, custody.StatusNoCofre)

	_, err := svc.AuthorizeDestruction(context.Background(), u.ID, m.ID, "   ")
	if !errors.Is(err, custody.ErrValidation) {
		t.Fatalf("got %v, want ErrValidation", err)
	}
}

func TestMoveToLoteChecksInPendingItem(t *testing.T) {
	gdb := testutil.DB(t)
	svc := newCustodyService(t, gdb)

	u := testutil.SeedUser(t, gdb)
	o := testutil.SeedOcorrencia(t, gdb, "B123456")
	n := testutil.SeedNoticiado(t, gdb, o.ID, "FULANO DE TAL")
	m := testutil.SeedMaterial(t, gdb, n.ID, custody.StatusPendente)
	l := testutil.SeedLote(t, gdb, "LOTE-2024-01", u.ID)

	material, err := svc.MoveToLote(context.Background(), u.ID, m.ID, l.ID)
	if err != nil {
		t.Fatalf("MoveToLote: %v", err)
	}
	if material.Status != custody.StatusNoCofre {
		t.Errorf("status = %s, want NO_COFRE", material.Status)
	}
	if material.LoteID == nil || *material.LoteID != l.ID {
		t.Error("lote_id not set")
	}

	var count int64
	gdb.Model(&types.RegistroHistorico{}).Where("material_id = ?", m.ID).Count(&count)
	if count != 1 {
		t.Errorf("registros = %d, want 1 (implicit check-in)", count)
	}
}

func TestMoveToLoteKeepsStatusWhenAlreadyInVault(t *testing.T) {
	gdb := testutil.DB(t)
	svc := newCustodyService(t, gdb)

	u := testutil.SeedUser(t, gdb)
	o := testutil.SeedOcorrencia(t, gdb, "B123456")
	n := testutil.SeedNoticiado(t, gdb, o.ID, "FULANO DE TAL")
	m := testutil.SeedMaterial(t, gdb, n.ID, custody.StatusProntoQueima)
	origem := testutil.SeedLote(t, gdb, "LOTE-A", u.ID)
	destino := testutil.SeedLote(t, gdb, "LOTE-B", u.ID)
	testutil.AttachToLote(t, gdb, m, origem.ID)

	material, err := svc.MoveToLote(context.Background(), u.ID, m.ID, destino.ID)
	if err != nil {
		t.Fatalf("MoveToLote: %v", err)
	}
	if material.Status != custody.StatusProntoQueima {
		t.Errorf("status changed on move: %s", material.Status)
	}
	if material.LoteID == nil || *material.LoteID != destino.ID {
		t.Error("lote_id not moved")
	}

	// no transition, no audit record
	var count int64
	gdb.Model(&types.RegistroHistorico{}).Where("material_id = ?", m.ID).Count(&count)
	if count != 0 {
		t.Errorf("registros = %d, want 0", count)
	}
}

func TestHistorico(t *testing.T) {
	gdb := testutil.DB(t)
	svc := newCustodyService(t, gdb)

	u := testutil.SeedUser(t, gdb)
	o := testutil.SeedOcorrencia(t, gdb, "B123456")
	n := testutil.SeedNoticiado(t, gdb, o.ID, "FULANO DE TAL")
	m := testutil.SeedMaterial(t, gdb, n.ID, custody.StatusPendente)
	l := testutil.SeedLote(t, gdb, "LOTE-2024-01", u.ID)

	if _, err := svc.CheckIn(context.Background(), u.ID, CheckInInput{MaterialID: m.ID, LoteID: l.ID, PesoReal: "5"}); err != nil {
		t.Fatalf("CheckIn: %v", err)
	}
	if _, err := svc.AuthorizeDestruction(context.Background(), u.ID, m.ID, "OF-9"); err != nil {
		t.Fatalf("AuthorizeDestruction: %v", err)
	}

	trail, err := svc.Historico(context.Background(), m.ID)
	if err != nil {
		t.Fatalf("Historico: %v", err)
	}
	if len(trail) != 2 {
		t.Fatalf("len(trail) = %d, want 2", len(trail))
	}
	if trail[0].StatusNovo != custody.StatusProntoQueima {
		t.Errorf("trail[0] = %s, want PRONTO_QUEIMA (newest first)", trail[0].StatusNovo)
	}
}
