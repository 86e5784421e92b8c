package custody

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// RegistroHistorico is the append-only audit trail: exactly one record per
// status transition of a material, never edited or deleted. StatusAnterior is
// nil only for the intake record.
type RegistroHistorico struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	MaterialID uuid.UUID `gorm:"type:uuid;not null;index" json:"material_id"`
	Material   *Material `gorm:"foreignKey:MaterialID;references:ID" json:"material,omitempty"`

	UsuarioID      uuid.UUID `gorm:"type:uuid;not null" json:"usuario_id"`
	StatusAnterior *string   `json:"status_anterior,omitempty"`
	StatusNovo     string    `gorm:"not null" json:"status_novo"`

	DataEvento time.Time      `gorm:"not null;index" json:"data_evento"`
	Observacao string         `json:"observacao,omitempty"`
	Detalhes   datatypes.JSON `json:"detalhes,omitempty"`
}

func (RegistroHistorico) TableName() string { return "registro_historico" }

func (r *RegistroHistorico) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
