package db

import (
	"fmt"

	"gorm.io/gorm"

	types "github.com/macedolvs/custodia-backend/internal/domain"
)

func AutoMigrateAll(db *gorm.DB) error {
	return db.AutoMigrate(
		&types.User{},

		&types.Ocorrencia{},
		&types.Noticiado{},
		&types.Lote{},
		&types.Material{},

		&types.RegistroHistorico{},
	)
}

// EnsureCustodyIndexes adds the postgres-only indexes the tag-level migration
// does not cover: the dashboard's status tabs and the newest-first audit read.
func EnsureCustodyIndexes(db *gorm.DB) error {
	if err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_material_status_lote
		ON material (status, lote_id);
	`).Error; err != nil {
		return fmt.Errorf("create idx_material_status_lote: %w", err)
	}

	if err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_registro_material_evento
		ON registro_historico (material_id, data_evento DESC);
	`).Error; err != nil {
		return fmt.Errorf("create idx_registro_material_evento: %w", err)
	}

	return nil
}

func (s *PostgresService) AutoMigrateAll() error {
	s.log.Info("Auto migrating postgres tables...")
	if err := AutoMigrateAll(s.db); err != nil {
		s.log.Error("Auto migration failed", "error", err)
		return err
	}
	if err := EnsureCustodyIndexes(s.db); err != nil {
		s.log.Error("Custody index migration failed", "error", err)
		return err
	}
	return nil
}
