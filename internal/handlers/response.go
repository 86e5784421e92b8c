package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/macedolvs/custodia-backend/internal/domain/custody"
	"github.com/macedolvs/custodia-backend/internal/platform/apierr"
	"github.com/macedolvs/custodia-backend/internal/services"
)

type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

func RespondCreated(c *gin.Context, payload any) {
	c.JSON(http.StatusCreated, payload)
}

// RespondDomainError maps the domain sentinels onto HTTP statuses. Anything
// unrecognized is a 500 with a generic message so internals do not leak.
func RespondDomainError(c *gin.Context, err error) {
	writeError(c, classify(err))
}

func classify(err error) *apierr.Error {
	switch {
	case errors.Is(err, custody.ErrValidation):
		return apierr.New(http.StatusBadRequest, "validation_failed", err)
	case errors.Is(err, custody.ErrNotFound):
		return apierr.New(http.StatusNotFound, "not_found", err)
	case errors.Is(err, custody.ErrDuplicateKey):
		return apierr.New(http.StatusConflict, "duplicate_key", err)
	case errors.Is(err, custody.ErrAlreadyFinalized):
		return apierr.New(http.StatusConflict, "already_finalized", err)
	case errors.Is(err, custody.ErrInvalidState):
		return apierr.New(http.StatusUnprocessableEntity, "invalid_state", err)
	case errors.Is(err, custody.ErrImmutableRecord):
		return apierr.New(http.StatusUnprocessableEntity, "immutable_record", err)
	case errors.Is(err, services.ErrInvalidCredentials):
		return apierr.New(http.StatusUnauthorized, "invalid_credentials", err)
	default:
		return apierr.New(http.StatusInternalServerError, "internal", nil)
	}
}

func writeError(c *gin.Context, ae *apierr.Error) {
	msg := ae.Error()
	if ae.Status == http.StatusInternalServerError {
		msg = "internal error"
	}
	c.JSON(ae.Status, ErrorEnvelope{Error: APIError{Message: msg, Code: ae.Code}})
}
