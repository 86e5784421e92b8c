package services

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"gorm.io/gorm"

	"github.com/macedolvs/custodia-backend/internal/data/repos"
	"github.com/macedolvs/custodia-backend/internal/data/repos/testutil"
	types "github.com/macedolvs/custodia-backend/internal/domain"
	"github.com/macedolvs/custodia-backend/internal/domain/custody"
)

func newLoteService(t *testing.T, gdb *gorm.DB) LoteService {
	t.Helper()
	log := testutil.Logger(t)
	return NewLoteService(
		gdb,
		log,
		repos.NewLoteRepo(gdb, log),
		repos.NewMaterialRepo(gdb, log),
		repos.NewRegistroRepo(gdb, log),
	)
}

func TestLoteCreate(t *testing.T) {
	gdb := testutil.DB(t)
	svc := newLoteService(t, gdb)
	u := testutil.SeedUser(t, gdb)

	lote, err := svc.Create(context.Background(), u.ID, " lote-2024-01 ")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if lote.Identificador != "LOTE-2024-01" {
		t.Errorf("identificador = %q", lote.Identificador)
	}
	if lote.Status != custody.LoteAberto {
		t.Errorf("status = %s, want ABERTO", lote.Status)
	}

	if _, err := svc.Create(context.Background(), u.ID, "LOTE-2024-01"); !errors.Is(err, custody.ErrDuplicateKey) {
		t.Errorf("duplicate identificador: got %v, want ErrDuplicateKey", err)
	}
	if _, err := svc.Create(context.Background(), u.ID, "   "); !errors.Is(err, custody.ErrValidation) {
		t.Errorf("blank identificador: got %v, want ErrValidation", err)
	}
}

func TestLoteCloseIncineratesEveryItem(t *testing.T) {
	gdb := testutil.DB(t)
	svc := newLoteService(t, gdb)

	u := testutil.SeedUser(t, gdb)
	o := testutil.SeedOcorrencia(t, gdb, "B123456")
	n := testutil.SeedNoticiado(t, gdb, o.ID, "FULANO DE TAL")
	l := testutil.SeedLote(t, gdb, "LOTE-2024-01", u.ID)

	// the sweep covers every item of the lot, whatever its current status
	noCofre := testutil.SeedMaterial(t, gdb, n.ID, custody.StatusNoCofre)
	pronto := testutil.SeedMaterial(t, gdb, n.ID, custody.StatusProntoQueima)
	testutil.AttachToLote(t, gdb, noCofre, l.ID)
	testutil.AttachToLote(t, gdb, pronto, l.ID)

	fechado, err := svc.Close(context.Background(), u.ID, l.ID)
	if err != nil {
		t.Fatalf("Close: %v", err)
	}
	if fechado.Status != custody.LoteIncinerado {
		t.Errorf("lote status = %s", fechado.Status)
	}
	if fechado.DataIncineracao == nil {
		t.Error("lote sem data_incineracao")
	}

	var materiais []*types.Material
	if err := gdb.Where("lote_id = ?", l.ID).Find(&materiais).Error; err != nil {
		t.Fatalf("load materiais: %v", err)
	}
	if len(materiais) != 2 {
		t.Fatalf("len(materiais) = %d", len(materiais))
	}
	for _, m := range materiais {
		if m.Status != custody.StatusIncinerado {
			t.Errorf("material %s = %s, want INCINERADO", m.ID, m.Status)
		}
	}

	// one audit record per item, each capturing its own previous status
	var registros []*types.RegistroHistorico
	if err := gdb.Find(&registros).Error; err != nil {
		t.Fatalf("load registros: %v", err)
	}
	if len(registros) != 2 {
		t.Fatalf("len(registros) = %d, want 2", len(registros))
	}
	anteriores := map[string]string{}
	for _, r := range registros {
		if r.StatusNovo != custody.StatusIncinerado {
			t.Errorf("StatusNovo = %s", r.StatusNovo)
		}
		if r.StatusAnterior == nil {
			t.Fatal("StatusAnterior nil on closure record")
		}
		anteriores[r.MaterialID.String()] = *r.StatusAnterior
	}
	if anteriores[noCofre.ID.String()] != custody.StatusNoCofre {
		t.Errorf("previous status of vault item = %s", anteriores[noCofre.ID.String()])
	}
	if anteriores[pronto.ID.String()] != custody.StatusProntoQueima {
		t.Errorf("previous status of authorized item = %s", anteriores[pronto.ID.String()])
	}
}

func TestLoteCloseIsNotRepeatable(t *testing.T) {
	gdb := testutil.DB(t)
	svc := newLoteService(t, gdb)

	u := testutil.SeedUser(t, gdb)
	o := testutil.SeedOcorrencia(t, gdb, "B123456")
	n := testutil.SeedNoticiado(t, gdb, o.ID, "FULANO DE TAL")
	l := testutil.SeedLote(t, gdb, "LOTE-2024-01", u.ID)
	m := testutil.SeedMaterial(t, gdb, n.ID, custody.StatusProntoQueima)
	testutil.AttachToLote(t, gdb, m, l.ID)

	if _, err := svc.Close(context.Background(), u.ID, l.ID); err != nil {
		t.Fatalf("first close: %v", err)
	}
	if _, err := svc.Close(context.Background(), u.ID, l.ID); !errors.Is(err, custody.ErrAlreadyFinalized) {
		t.Fatalf("second close: got %v, want ErrAlreadyFinalized", err)
	}

	// the second attempt must not add audit records
	var count int64
	gdb.Model(&types.RegistroHistorico{}).Count(&count)
	if count != 1 {
		t.Errorf("registros = %d, want 1", count)
	}
}

func TestLoteCloseFreezesItems(t *testing.T) {
	gdb := testutil.DB(t)
	loteSvc := newLoteService(t, gdb)
	custodySvc := newCustodyService(t, gdb)

	u := testutil.SeedUser(t, gdb)
	o := testutil.SeedOcorrencia(t, gdb, "B123456")
	n := testutil.SeedNoticiado(t, gdb, o.ID, "FULANO DE TAL")
	l := testutil.SeedLote(t, gdb, "LOTE-2024-01", u.ID)
	m := testutil.SeedMaterial(t, gdb, n.ID, custody.StatusProntoQueima)
	testutil.AttachToLote(t, gdb, m, l.ID)

	if _, err := loteSvc.Close(context.Background(), u.ID, l.ID); err != nil {
		t.Fatalf("Close: %v", err)
	}

	destino, err := loteSvc.Create(context.Background(), u.ID, "LOTE-NOVO")
	if err != nil {
		t.Fatalf("create destino: %v", err)
	}
	if _, err := custodySvc.MoveToLote(context.Background(), u.ID, m.ID, destino.ID); !errors.Is(err, custody.ErrImmutableRecord) {
		t.Errorf("move of incinerated item: got %v, want ErrImmutableRecord", err)
	}
}

func TestLoteCloseRollsBackWhenAuditWriteFails(t *testing.T) {
	gdb := testutil.DB(t)
	svc := newLoteService(t, gdb)

	u := testutil.SeedUser(t, gdb)
	o := testutil.SeedOcorrencia(t, gdb, "B123456")
	n := testutil.SeedNoticiado(t, gdb, o.ID, "FULANO DE TAL")
	l := testutil.SeedLote(t, gdb, "LOTE-2024-01", u.ID)
	m := testutil.SeedMaterial(t, gdb, n.ID, custody.StatusProntoQueima)
	testutil.AttachToLote(t, gdb, m, l.ID)

	// inject a failure into the audit insert to prove the closure is atomic
	err := gdb.Callback().Create().Before("gorm:create").Register("fail_registro", func(tx *gorm.DB) {
		if tx.Statement.Table == "registro_historico" {
			tx.AddError(fmt.Errorf("disk full"))
		}
	})
	if err != nil {
		t.Fatalf("register callback: %v", err)
	}
	t.Cleanup(func() {
		_ = gdb.Callback().Create().Remove("fail_registro")
	})

	if _, err := svc.Close(context.Background(), u.ID, l.ID); err == nil {
		t.Fatal("close should fail when the audit write fails")
	}

	var lote types.Lote
	if err := gdb.First(&lote, "id = ?", l.ID).Error; err != nil {
		t.Fatalf("load lote: %v", err)
	}
	if lote.Status != custody.LoteAberto {
		t.Errorf("lote status = %s, want ABERTO after rollback", lote.Status)
	}
	var material types.Material
	if err := gdb.First(&material, "id = ?", m.ID).Error; err != nil {
		t.Fatalf("load material: %v", err)
	}
	if material.Status != custody.StatusProntoQueima {
		t.Errorf("material status = %s, want PRONTO_QUEIMA after rollback", material.Status)
	}
	var count int64
	gdb.Model(&types.RegistroHistorico{}).Count(&count)
	if count != 0 {
		t.Errorf("registros = %d, want 0 after rollback", count)
	}
}

func TestLoteDelete(t *testing.T) {
	gdb := testutil.DB(t)
	svc := newLoteService(t, gdb)

	u := testutil.SeedUser(t, gdb)
	o := testutil.SeedOcorrencia(t, gdb, "B123456")
	n := testutil.SeedNoticiado(t, gdb, o.ID, "FULANO DE TAL")
	l := testutil.SeedLote(t, gdb, "LOTE-2024-01", u.ID)
	m := testutil.SeedMaterial(t, gdb, n.ID, custody.StatusNoCofre)
	testutil.AttachToLote(t, gdb, m, l.ID)

	if err := svc.Delete(context.Background(), l.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	var material types.Material
	if err := gdb.First(&material, "id = ?", m.ID).Error; err != nil {
		t.Fatalf("load material: %v", err)
	}
	if material.LoteID != nil {
		t.Error("material still references deleted lote")
	}
	if material.Status != custody.StatusNoCofre {
		t.Errorf("material status changed on lote delete: %s", material.Status)
	}

	var count int64
	gdb.Model(&types.Lote{}).Count(&count)
	if count != 0 {
		t.Errorf("lotes = %d, want 0", count)
	}
}

func TestLoteDeleteRefusesClosed(t *testing.T) {
	gdb := testutil.DB(t)
	svc := newLoteService(t, gdb)

	u := testutil.SeedUser(t, gdb)
	l := testutil.SeedLote(t, gdb, "LOTE-2024-01", u.ID)
	if _, err := svc.Close(context.Background(), u.ID, l.ID); err != nil {
		t.Fatalf("Close: %v", err)
	}

	if err := svc.Delete(context.Background(), l.ID); !errors.Is(err, custody.ErrAlreadyFinalized) {
		t.Fatalf("delete of closed lote: got %v, want ErrAlreadyFinalized", err)
	}
}

func TestLoteGetListsItems(t *testing.T) {
	gdb := testutil.DB(t)
	svc := newLoteService(t, gdb)

	u := testutil.SeedUser(t, gdb)
	o := testutil.SeedOcorrencia(t, gdb, "B123456")
	n := testutil.SeedNoticiado(t, gdb, o.ID, "FULANO DE TAL")
	l := testutil.SeedLote(t, gdb, "LOTE-2024-01", u.ID)
	m := testutil.SeedMaterial(t, gdb, n.ID, custody.StatusNoCofre)
	testutil.AttachToLote(t, gdb, m, l.ID)

	lote, materiais, err := svc.Get(context.Background(), l.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if lote.Identificador != "LOTE-2024-01" {
		t.Errorf("identificador = %q", lote.Identificador)
	}
	if len(materiais) != 1 || materiais[0].ID != m.ID {
		t.Fatalf("materiais = %+v", materiais)
	}
}
