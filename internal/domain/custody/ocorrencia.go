package custody

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Criminal venues that forward seizures to this unit.
const (
	Vara01 = "VARA_01"
	Vara02 = "VARA_02"
	Vara03 = "VARA_03"
)

var varaNomesFormais = map[string]string{
	Vara01: "1ª Vara Criminal de Cascavel",
	Vara02: "2ª Vara Criminal de Cascavel",
	Vara03: "3º Juizado Especial Criminal de Cascavel",
}

func VaraValida(v string) bool {
	_, ok := varaNomesFormais[v]
	return ok
}

// VaraNomeFormal returns the court's formal name for report headers, or the
// raw code when it is not a known venue.
func VaraNomeFormal(v string) string {
	if nome, ok := varaNomesFormais[v]; ok {
		return nome
	}
	return v
}

// Police ranks accepted for the reporting officer.
var graduacoes = map[string]string{
	"SD":   "Soldado",
	"CB":   "Cabo",
	"3SGT": "3º Sargento",
	"2SGT": "2º Sargento",
	"1SGT": "1º Sargento",
	"SUB":  "Subtenente",
	"TEN":  "Tenente",
	"CAP":  "Capitão",
}

func GraduacaoValida(g string) bool {
	_, ok := graduacoes[g]
	return ok
}

// Ocorrencia is one offense case (BOU) under which materials were seized.
// Immutable after intake except for the officer identification fields.
type Ocorrencia struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	BOU      string    `gorm:"column:bou;not null;uniqueIndex" json:"bou"`
	Vara     string    `gorm:"not null" json:"vara"`
	Processo string    `json:"processo"`

	PolicialNome      string `json:"policial_nome,omitempty"`
	PolicialGraduacao string `json:"policial_graduacao,omitempty"`
	PolicialRG        string `gorm:"column:policial_rg" json:"policial_rg,omitempty"`

	DataEntrada time.Time `gorm:"not null" json:"data_entrada"`

	Noticiados []Noticiado `gorm:"foreignKey:OcorrenciaID;references:ID" json:"noticiados,omitempty"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (Ocorrencia) TableName() string { return "ocorrencia" }

func (o *Ocorrencia) BeforeCreate(tx *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}

// Noticiado is a person named in an Ocorrencia. Created only during intake
// and never re-parented.
type Noticiado struct {
	ID           uuid.UUID   `gorm:"type:uuid;primaryKey" json:"id"`
	OcorrenciaID uuid.UUID   `gorm:"type:uuid;not null;index" json:"ocorrencia_id"`
	Ocorrencia   *Ocorrencia `gorm:"foreignKey:OcorrenciaID;references:ID" json:"ocorrencia,omitempty"`

	Nome string `gorm:"not null" json:"nome"`

	Materiais []Material `gorm:"foreignKey:NoticiadoID;references:ID" json:"materiais,omitempty"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (Noticiado) TableName() string { return "noticiado" }

func (n *Noticiado) BeforeCreate(tx *gorm.DB) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	return nil
}
