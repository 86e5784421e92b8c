package custody

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Lot statuses. A lot is writable only while ABERTO; INCINERADO is terminal
// and freezes the lot and every material referencing it.
const (
	LoteAberto     = "ABERTO"
	LoteIncinerado = "INCINERADO"
)

// Lote groups materials destined for joint destruction. Deleting a lot is
// allowed only before closure and never cascades to its materials.
type Lote struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Identificador string    `gorm:"not null;uniqueIndex" json:"identificador"`

	Status          string     `gorm:"not null;default:'ABERTO';index" json:"status"`
	DataCriacao     time.Time  `gorm:"not null" json:"data_criacao"`
	DataIncineracao *time.Time `json:"data_incineracao,omitempty"`

	ResponsavelID uuid.UUID `gorm:"type:uuid;not null" json:"responsavel_id"`

	Materiais []Material `gorm:"foreignKey:LoteID;references:ID" json:"materiais,omitempty"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (Lote) TableName() string { return "lote" }

func (l *Lote) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}
