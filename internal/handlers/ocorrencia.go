package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/macedolvs/custodia-backend/internal/domain/custody"
	"github.com/macedolvs/custodia-backend/internal/requestdata"
	"github.com/macedolvs/custodia-backend/internal/services"
)

type OcorrenciaHandler struct {
	intakeService services.IntakeService
}

func NewOcorrenciaHandler(intakeService services.IntakeService) *OcorrenciaHandler {
	return &OcorrenciaHandler{intakeService: intakeService}
}

type materialRequest struct {
	Substancia      string `json:"substancia"`
	OutraSubstancia string `json:"outra_substancia"`
	PesoEstimado    string `json:"peso_estimado"`
	Unidade         string `json:"unidade"`
	NumeroVestigio  string `json:"numero_vestigio"`
}

type noticiadoRequest struct {
	Nome      string            `json:"nome"`
	Materiais []materialRequest `json:"materiais"`
}

type registerOcorrenciaRequest struct {
	BOU               string             `json:"bou"`
	Vara              string             `json:"vara"`
	Processo          string             `json:"processo"`
	PolicialNome      string             `json:"policial_nome"`
	PolicialGraduacao string             `json:"policial_graduacao"`
	PolicialRG        string             `json:"policial_rg"`
	Noticiados        []noticiadoRequest `json:"noticiados"`
}

func (h *OcorrenciaHandler) Register(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil {
		RespondDomainError(c, services.ErrInvalidCredentials)
		return
	}

	var req registerOcorrenciaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondDomainError(c, custody.ErrValidation)
		return
	}

	input := services.RegisterOcorrenciaInput{
		BOU:               req.BOU,
		Vara:              req.Vara,
		Processo:          req.Processo,
		PolicialNome:      req.PolicialNome,
		PolicialGraduacao: req.PolicialGraduacao,
		PolicialRG:        req.PolicialRG,
	}
	for _, n := range req.Noticiados {
		ni := services.NoticiadoInput{Nome: n.Nome}
		for _, m := range n.Materiais {
			ni.Materiais = append(ni.Materiais, services.MaterialInput{
				Substancia:      m.Substancia,
				OutraSubstancia: m.OutraSubstancia,
				PesoEstimado:    m.PesoEstimado,
				Unidade:         m.Unidade,
				NumeroVestigio:  m.NumeroVestigio,
			})
		}
		input.Noticiados = append(input.Noticiados, ni)
	}

	ocorrencia, err := h.intakeService.RegisterOcorrencia(c.Request.Context(), rd.UserID, input)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	RespondCreated(c, gin.H{"ocorrencia": ocorrencia})
}

func (h *OcorrenciaHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondDomainError(c, custody.ErrValidation)
		return
	}
	ocorrencia, err := h.intakeService.GetOcorrencia(c.Request.Context(), id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	RespondOK(c, gin.H{"ocorrencia": ocorrencia})
}

type updatePolicialRequest struct {
	PolicialNome      string `json:"policial_nome"`
	PolicialGraduacao string `json:"policial_graduacao"`
	PolicialRG        string `json:"policial_rg"`
}

func (h *OcorrenciaHandler) UpdatePolicial(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondDomainError(c, custody.ErrValidation)
		return
	}
	var req updatePolicialRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondDomainError(c, custody.ErrValidation)
		return
	}
	if err := h.intakeService.UpdatePolicial(c.Request.Context(), id, req.PolicialNome, req.PolicialGraduacao, req.PolicialRG); err != nil {
		RespondDomainError(c, err)
		return
	}
	RespondOK(c, gin.H{"updated": true})
}
