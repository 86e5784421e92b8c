package custody

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Custody statuses of a seized material. Transitions are legal only between
// adjacent entries of statusOrdem, in order, never backwards.
const (
	StatusPendente     = "PENDENTE"
	StatusNoCofre      = "NO_COFRE"
	StatusProntoQueima = "PRONTO_QUEIMA"
	StatusIncinerado   = "INCINERADO"
)

var statusOrdem = []string{StatusPendente, StatusNoCofre, StatusProntoQueima, StatusIncinerado}

func StatusValido(s string) bool {
	for _, v := range statusOrdem {
		if v == s {
			return true
		}
	}
	return false
}

// PodeTransitar reports whether de -> para is the single legal next step of
// the custody chain. Incineration is reachable from any earlier status, but
// only the lot-closure path takes it.
func PodeTransitar(de, para string) bool {
	di, pi := statusIndex(de), statusIndex(para)
	if di < 0 || pi < 0 {
		return false
	}
	if para == StatusIncinerado {
		return di < pi
	}
	return pi == di+1
}

func statusIndex(s string) int {
	for i, v := range statusOrdem {
		if v == s {
			return i
		}
	}
	return -1
}

// Substances of the closed seizure set. OUTROS carries a free-text complement.
const (
	SubstanciaMaconha   = "MACONHA"
	SubstanciaCocaina   = "COCAINA"
	SubstanciaCrack     = "CRACK"
	SubstanciaPeMaconha = "PE_MACONHA"
	SubstanciaSintetica = "SINTETICA"
	SubstanciaEcstasy   = "ECSTASY"
	SubstanciaSkunk     = "SKUNK"
	SubstanciaHaxixe    = "HAXIXE"
	SubstanciaOutros    = "OUTROS"
)

var substanciaLabels = map[string]string{
	SubstanciaMaconha:   "Maconha",
	SubstanciaCocaina:   "Cocaína",
	SubstanciaCrack:     "Crack",
	SubstanciaPeMaconha: "Pé de Maconha",
	SubstanciaSintetica: "Droga Sintética",
	SubstanciaEcstasy:   "Ecstasy",
	SubstanciaSkunk:     "Skunk",
	SubstanciaHaxixe:    "Haxixe",
	SubstanciaOutros:    "Outros",
}

func SubstanciaValida(s string) bool {
	_, ok := substanciaLabels[s]
	return ok
}

func SubstanciaLabel(s string) string {
	if label, ok := substanciaLabels[s]; ok {
		return label
	}
	return s
}

// Measurement units: grams for mass, unidades for countable items (pills,
// plants, sachets).
const (
	UnidadeGrama    = "G"
	UnidadeUnitaria = "U"
)

func UnidadeValida(u string) bool {
	return u == UnidadeGrama || u == UnidadeUnitaria
}

// ParsePeso normalizes a weight written with either decimal separator
// ("10,5" or "10.5"). Blank input means the weight was not informed and
// defaults to zero.
func ParsePeso(raw string) (float64, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, nil
	}
	s = strings.ReplaceAll(s, ",", ".")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: peso %q", ErrValidation, raw)
	}
	if v < 0 {
		return 0, fmt.Errorf("%w: peso negativo %q", ErrValidation, raw)
	}
	return v, nil
}

// Material is one seized substance tracked from intake to incineration.
// It belongs to exactly one Noticiado and to at most one Lote; the lot
// reference is set at conferência and only cleared if the lot is deleted
// before closure.
type Material struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	NoticiadoID uuid.UUID  `gorm:"type:uuid;not null;index" json:"noticiado_id"`
	Noticiado   *Noticiado `gorm:"foreignKey:NoticiadoID;references:ID" json:"noticiado,omitempty"`

	Substancia      string   `gorm:"not null;index" json:"substancia"`
	OutraSubstancia string   `json:"outra_substancia,omitempty"`
	PesoEstimado    float64  `gorm:"not null" json:"peso_estimado"`
	PesoReal        *float64 `json:"peso_real,omitempty"`
	Unidade         string   `gorm:"not null;default:'G'" json:"unidade"`
	NumeroVestigio  string   `json:"numero_vestigio,omitempty"`

	Status string `gorm:"not null;default:'PENDENTE';index" json:"status"`
	Caixa  string `json:"caixa,omitempty"`

	LoteID        *uuid.UUID `gorm:"type:uuid;index" json:"lote_id,omitempty"`
	Lote          *Lote      `gorm:"foreignKey:LoteID;references:ID" json:"lote,omitempty"`
	PosicaoSacola string     `json:"posicao_sacola,omitempty"`
	NOficio       string     `json:"n_oficio,omitempty"`

	UsuarioRegistroID *uuid.UUID `gorm:"type:uuid" json:"usuario_registro_id,omitempty"`

	DataConferencia *time.Time `json:"data_conferencia,omitempty"`
	DataIncineracao *time.Time `json:"data_incineracao,omitempty"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (Material) TableName() string { return "material" }

func (m *Material) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

// PodeSerEditado mirrors the business rule that an incinerated item is frozen.
func (m *Material) PodeSerEditado() bool {
	return m.Status != StatusIncinerado
}
