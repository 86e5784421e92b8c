package handlers

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/macedolvs/custodia-backend/internal/domain/custody"
	"github.com/macedolvs/custodia-backend/internal/services"
)

type RelatorioHandler struct {
	relatorioService services.RelatorioService
}

func NewRelatorioHandler(relatorioService services.RelatorioService) *RelatorioHandler {
	return &RelatorioHandler{relatorioService: relatorioService}
}

func (h *RelatorioHandler) Painel(c *gin.Context) {
	painel, err := h.relatorioService.Painel(c.Request.Context(), strings.TrimSpace(c.Query("busca")))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	RespondOK(c, painel)
}

func (h *RelatorioHandler) Geral(c *gin.Context) {
	filtro := services.RelatorioFiltro{
		Vara:       strings.ToUpper(strings.TrimSpace(c.Query("vara"))),
		Substancia: strings.ToUpper(strings.TrimSpace(c.Query("substancia"))),
	}
	if mes := c.Query("mes"); mes != "" {
		v, err := strconv.Atoi(mes)
		if err != nil {
			RespondDomainError(c, custody.ErrValidation)
			return
		}
		filtro.Mes = v
	}
	if ano := c.Query("ano"); ano != "" {
		v, err := strconv.Atoi(ano)
		if err != nil {
			RespondDomainError(c, custody.ErrValidation)
			return
		}
		filtro.Ano = v
	}

	relatorio, err := h.relatorioService.Geral(c.Request.Context(), filtro)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	RespondOK(c, relatorio)
}

func (h *RelatorioHandler) Queima(c *gin.Context) {
	itens, err := h.relatorioService.Queima(c.Request.Context())
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	RespondOK(c, gin.H{"itens": itens})
}

func (h *RelatorioHandler) Forum(c *gin.Context) {
	vara := strings.ToUpper(strings.TrimSpace(c.Query("vara")))
	itens, err := h.relatorioService.Forum(c.Request.Context(), vara)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	RespondOK(c, gin.H{
		"vara_nome": custody.VaraNomeFormal(vara),
		"itens":     itens,
	})
}
