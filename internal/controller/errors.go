package controller

import (
	"errors"
	"net/http"

	"audit-log-search/internal/logquery"
	"audit-log-search/internal/model"
	"audit-log-search/internal/repository"
	"audit-log-search/internal/search"
	"audit-log-search/internal/service"
	"audit-log-search/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

var badRequestErrors = []error{
	logquery.ErrUnsupportedKind,
	logquery.ErrInvalidFilter,
	logquery.ErrInvalidPaging,
	logquery.ErrInvalidOrder,
	logquery.ErrInvalidTimeRange,
	service.ErrInvalidSort,
	service.ErrInvalidPreset,
	service.ErrInvalidAuditEntry,
	search.ErrUnknownColumn,
}

// statusFor maps service errors to HTTP status codes.
func statusFor(err error) int {
	for _, target := range badRequestErrors {
		if errors.Is(err, target) {
			return http.StatusBadRequest
		}
	}
	switch {
	case errors.Is(err, service.ErrSearchDisabled):
		return http.StatusServiceUnavailable
	case errors.Is(err, store.ErrSessionNotFound), errors.Is(err, repository.ErrPresetNotFound):
		return http.StatusNotFound
	case errors.Is(err, repository.ErrPresetExists):
		return http.StatusConflict
	case errors.Is(err, store.ErrTooManySessions):
		return http.StatusTooManyRequests
	}
	return http.StatusInternalServerError
}

// writeError replies with the error message, except for internal errors
// which are logged and replaced by fallback.
func writeError(ctx *gin.Context, err error, fallback string) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		log.Error().Err(err).Str("path", ctx.FullPath()).Msg(fallback)
		ctx.JSON(status, model.NewResponse(fallback, nil))
		return
	}
	ctx.JSON(status, model.NewResponse(err.Error(), nil))
}
