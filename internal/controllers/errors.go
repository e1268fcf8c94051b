package controllers

import (
	"errors"
	"net"
	"net/http"

	"github.com/franciscosanchezn/stellar-burgers-api/internal/builder"
	"github.com/franciscosanchezn/stellar-burgers-api/internal/catalog"
	"github.com/franciscosanchezn/stellar-burgers-api/internal/feed"
	"github.com/franciscosanchezn/stellar-burgers-api/internal/models"
	"github.com/franciscosanchezn/stellar-burgers-api/internal/orders"
	"github.com/franciscosanchezn/stellar-burgers-api/internal/services"
	"github.com/franciscosanchezn/stellar-burgers-api/internal/upstream"
	"github.com/franciscosanchezn/stellar-burgers-api/internal/workspace"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// errorStatus maps a domain error to an HTTP status and error code
func errorStatus(err error) (int, string) {
	var upstreamErr *upstream.Error
	var netErr net.Error

	switch {
	case errors.Is(err, catalog.ErrNotFound):
		return http.StatusNotFound, models.ErrIngredientNotFound
	case errors.Is(err, catalog.ErrLoadInFlight):
		return http.StatusServiceUnavailable, models.ErrCatalogUnavailable
	case errors.Is(err, catalog.ErrInvalidData):
		return http.StatusBadGateway, models.ErrCatalogUnavailable
	case errors.Is(err, builder.ErrOutOfRange):
		return http.StatusBadRequest, models.ErrPlacementOutOfRange
	case errors.Is(err, workspace.ErrCannotSubmit):
		return http.StatusUnprocessableEntity, models.ErrConstructorIncomplete
	case errors.Is(err, orders.ErrSubmissionInFlight):
		return http.StatusConflict, models.ErrSubmissionInFlight
	case errors.Is(err, orders.ErrNotFound):
		return http.StatusNotFound, models.ErrOrderNotFound
	case errors.Is(err, orders.ErrNoIngredients), errors.Is(err, services.ErrInvalidOrder):
		return http.StatusUnprocessableEntity, models.ErrValidationFailed
	case errors.Is(err, services.ErrInvalidTransition):
		return http.StatusConflict, models.ErrOrderStatusTransition
	case errors.Is(err, services.ErrUnauthenticated), errors.Is(err, upstream.ErrUnauthorized):
		return http.StatusUnauthorized, models.ErrUnauthorized
	case errors.Is(err, feed.ErrDisconnectFirst):
		return http.StatusConflict, models.ErrConflict
	case errors.As(err, &upstreamErr), errors.As(err, &netErr):
		return http.StatusBadGateway, models.ErrBadGateway
	default:
		return http.StatusInternalServerError, models.ErrInternalServer
	}
}

// respondError writes err as an APIError
func respondError(ctx *gin.Context, err error) {
	status, code := errorStatus(err)
	entry := logrus.WithFields(logrus.Fields{
		"path":   ctx.FullPath(),
		"status": status,
		"code":   code,
	}).WithError(err)
	if status >= http.StatusInternalServerError {
		entry.Error("Request failed")
	} else {
		entry.Debug("Request rejected")
	}
	ctx.JSON(status, models.NewAPIError(code, err.Error()))
}

func badRequest(ctx *gin.Context, message string, err error) {
	details := map[string]interface{}{}
	if err != nil {
		details["reason"] = err.Error()
	}
	ctx.JSON(http.StatusBadRequest, models.NewAPIError(models.ErrBadRequest, message, details))
}
