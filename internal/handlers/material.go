package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/macedolvs/custodia-backend/internal/domain/custody"
	"github.com/macedolvs/custodia-backend/internal/requestdata"
	"github.com/macedolvs/custodia-backend/internal/services"
)

type MaterialHandler struct {
	custodyService services.CustodyService
}

func NewMaterialHandler(custodyService services.CustodyService) *MaterialHandler {
	return &MaterialHandler{custodyService: custodyService}
}

func (h *MaterialHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondDomainError(c, custody.ErrValidation)
		return
	}
	material, err := h.custodyService.GetMaterial(c.Request.Context(), id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	RespondOK(c, gin.H{"material": material})
}

type checkInRequest struct {
	LoteID        string `json:"lote_id"`
	PesoReal      string `json:"peso_real"`
	Caixa         string `json:"caixa"`
	PosicaoSacola string `json:"posicao_sacola"`
}

func (h *MaterialHandler) CheckIn(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil {
		RespondDomainError(c, services.ErrInvalidCredentials)
		return
	}
	materialID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondDomainError(c, custody.ErrValidation)
		return
	}
	var req checkInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondDomainError(c, custody.ErrValidation)
		return
	}
	loteID, err := uuid.Parse(req.LoteID)
	if err != nil {
		RespondDomainError(c, custody.ErrValidation)
		return
	}

	material, err := h.custodyService.CheckIn(c.Request.Context(), rd.UserID, services.CheckInInput{
		MaterialID:    materialID,
		LoteID:        loteID,
		PesoReal:      req.PesoReal,
		Caixa:         req.Caixa,
		PosicaoSacola: req.PosicaoSacola,
	})
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	RespondOK(c, gin.H{"material": material})
}

type authorizeRequest struct {
	NOficio string `json:"n_oficio"`
}

func (h *MaterialHandler) AuthorizeDestruction(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil {
		RespondDomainError(c, services.ErrInvalidCredentials)
		return
	}
	materialID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondDomainError(c, custody.ErrValidation)
		return
	}
	var req authorizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondDomainError(c, custody.ErrValidation)
		return
	}

	material, err := h.custodyService.AuthorizeDestruction(c.Request.Context(), rd.UserID, materialID, req.NOficio)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	RespondOK(c, gin.H{"material": material})
}

type moveToLoteRequest struct {
	LoteID string `json:"lote_id"`
}

func (h *MaterialHandler) MoveToLote(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil {
		RespondDomainError(c, services.ErrInvalidCredentials)
		return
	}
	materialID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondDomainError(c, custody.ErrValidation)
		return
	}
	var req moveToLoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondDomainError(c, custody.ErrValidation)
		return
	}
	loteID, err := uuid.Parse(req.LoteID)
	if err != nil {
		RespondDomainError(c, custody.ErrValidation)
		return
	}

	material, err := h.custodyService.MoveToLote(c.Request.Context(), rd.UserID, materialID, loteID)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	RespondOK(c, gin.H{"material": material})
}

func (h *MaterialHandler) Historico(c *gin.Context) {
	materialID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondDomainError(c, custody.ErrValidation)
		return
	}
	registros, err := h.custodyService.Historico(c.Request.Context(), materialID)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	RespondOK(c, gin.H{"historico": registros})
}
