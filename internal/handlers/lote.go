package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/macedolvs/custodia-backend/internal/domain/custody"
	"github.com/macedolvs/custodia-backend/internal/requestdata"
	"github.com/macedolvs/custodia-backend/internal/services"
)

type LoteHandler struct {
	loteService services.LoteService
}

func NewLoteHandler(loteService services.LoteService) *LoteHandler {
	return &LoteHandler{loteService: loteService}
}

type createLoteRequest struct {
	Identificador string `json:"identificador"`
}

func (h *LoteHandler) Create(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil {
		RespondDomainError(c, services.ErrInvalidCredentials)
		return
	}
	var req createLoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondDomainError(c, custody.ErrValidation)
		return
	}
	lote, err := h.loteService.Create(c.Request.Context(), rd.UserID, req.Identificador)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	RespondCreated(c, gin.H{"lote": lote})
}

func (h *LoteHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondDomainError(c, custody.ErrValidation)
		return
	}
	lote, materiais, err := h.loteService.Get(c.Request.Context(), id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	RespondOK(c, gin.H{"lote": lote, "materiais": materiais})
}

func (h *LoteHandler) ListAbertos(c *gin.Context) {
	lotes, err := h.loteService.ListAbertos(c.Request.Context())
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	RespondOK(c, gin.H{"lotes": lotes})
}

func (h *LoteHandler) ListIncinerados(c *gin.Context) {
	lotes, err := h.loteService.ListIncinerados(c.Request.Context())
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	RespondOK(c, gin.H{"lotes": lotes})
}

func (h *LoteHandler) Close(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil {
		RespondDomainError(c, services.ErrInvalidCredentials)
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondDomainError(c, custody.ErrValidation)
		return
	}
	lote, err := h.loteService.Close(c.Request.Context(), rd.UserID, id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	RespondOK(c, gin.H{"lote": lote})
}

func (h *LoteHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondDomainError(c, custody.ErrValidation)
		return
	}
	if err := h.loteService.Delete(c.Request.Context(), id); err != nil {
		RespondDomainError(c, err)
		return
	}
	RespondOK(c, gin.H{"deleted": true})
}
