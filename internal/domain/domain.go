package domain

import (
	"github.com/macedolvs/custodia-backend/internal/domain/auth"
	"github.com/macedolvs/custodia-backend/internal/domain/custody"
)

type User = auth.User

type Ocorrencia = custody.Ocorrencia
type Noticiado = custody.Noticiado
type Material = custody.Material
type Lote = custody.Lote
type RegistroHistorico = custody.RegistroHistorico
