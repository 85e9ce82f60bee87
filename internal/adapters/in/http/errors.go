package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/suchimauz/clinic-availability-engine/internal/core/domain"
)

func errorStatus(err error) int {
	switch {
	// Битая запись в хранилище: клиент тут ни при чем
	case errors.Is(err, domain.ErrInvalidStoredData):
		return http.StatusInternalServerError
	case domain.IsValidationError(err):
		return http.StatusBadRequest
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	}
	return http.StatusInternalServerError
}

func respondError(ctx *gin.Context, err error) {
	ctx.JSON(errorStatus(err), gin.H{"error": err.Error()})
}
