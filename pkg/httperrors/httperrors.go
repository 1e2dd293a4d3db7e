// Package httperrors maps application error kinds onto HTTP responses.
package httperrors

import (
	"net/http"

	"github.com/fekuna/omnipos-restaurant-service/internal/apperr"
	"github.com/gin-gonic/gin"
)

type ErrorResponse struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

func statusOf(kind apperr.Kind) int {
	switch kind {
	case apperr.KindValidation:
		return http.StatusBadRequest
	case apperr.KindInvalidTransition:
		return http.StatusUnprocessableEntity
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindConflict:
		return http.StatusConflict
	case apperr.KindDependency:
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

// Respond writes the error as JSON with the status its kind maps to.
func Respond(c *gin.Context, err error) {
	kind := apperr.KindOf(err)
	resp := ErrorResponse{Kind: string(kind), Message: err.Error()}
	if kind == "" {
		resp.Kind = "INTERNAL"
		resp.Message = "internal server error"
	}
	c.JSON(statusOf(kind), resp)
}
