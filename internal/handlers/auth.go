package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/macedolvs/custodia-backend/internal/domain/custody"
	"github.com/macedolvs/custodia-backend/internal/requestdata"
	"github.com/macedolvs/custodia-backend/internal/services"
)

type AuthHandler struct {
	authService services.AuthService
}

func NewAuthHandler(authService services.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

type registerRequest struct {
	Username  string `json:"username"`
	Password  string `json:"password"`
	Nome      string `json:"nome"`
	Graduacao string `json:"graduacao"`
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondDomainError(c, custody.ErrValidation)
		return
	}
	user, err := h.authService.Register(c.Request.Context(), services.RegisterUserInput{
		Username:  req.Username,
		Password:  req.Password,
		Nome:      req.Nome,
		Graduacao: req.Graduacao,
	})
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	RespondCreated(c, gin.H{"user": user})
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondDomainError(c, custody.ErrValidation)
		return
	}
	token, user, err := h.authService.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	RespondOK(c, gin.H{"token": token, "user": user})
}

func (h *AuthHandler) GetMe(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil {
		RespondDomainError(c, services.ErrInvalidCredentials)
		return
	}
	user, err := h.authService.GetUser(c.Request.Context(), rd.UserID)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	RespondOK(c, gin.H{"me": user})
}
