package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sjperalta/arrendamientos-api/internal/jobs"
	"github.com/sjperalta/arrendamientos-api/internal/repository"
	"github.com/sjperalta/arrendamientos-api/internal/services"
	"github.com/sjperalta/arrendamientos-api/pkg/logger"
)

// statusFor maps service errors onto HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, services.ErrNotFound),
		errors.Is(err, services.ErrSettingNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrInvalidInput),
		errors.Is(err, services.ErrInvalidSetting),
		errors.Is(err, services.ErrInvalidDates),
		errors.Is(err, services.ErrUnsupportedFrequency),
		errors.Is(err, services.ErrUnsupportedPolicy):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrDuplicate),
		errors.Is(err, services.ErrInvalidState),
		errors.Is(err, services.ErrAlreadyScheduled),
		errors.Is(err, services.ErrAlreadyPriced),
		errors.Is(err, services.ErrAlreadyPaidOrCancelled),
		errors.Is(err, jobs.ErrJobRunning):
		return http.StatusConflict
	case errors.Is(err, services.ErrNoParticipations),
		errors.Is(err, services.ErrNoPriceData),
		errors.Is(err, services.ErrNotPriceable),
		errors.Is(err, services.ErrNotYetPriced):
		return http.StatusUnprocessableEntity
	case errors.Is(err, jobs.ErrQueueFull),
		errors.Is(err, jobs.ErrStopped):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes err as {"error": ...} with the mapped status.
// Unexpected errors are logged and attached to the gin context.
func respondError(c *gin.Context, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		logger.Error("Request failed", "path", c.FullPath(), "error", err)
		_ = c.Error(err)
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

// paramID parses a numeric path parameter. It writes a 400 and returns false
// when the parameter is not a positive integer.
func paramID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Identificador inválido: " + name})
		return 0, false
	}
	return uint(id), true
}

// listQuery reads the page and per_page query parameters
func listQuery(c *gin.Context, defaultPerPage int) *repository.ListQuery {
	query := repository.NewListQuery()
	query.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	query.PerPage, _ = strconv.Atoi(c.DefaultQuery("per_page", strconv.Itoa(defaultPerPage)))
	if query.Page < 1 {
		query.Page = 1
	}
	if query.PerPage < 1 || query.PerPage > 200 {
		query.PerPage = defaultPerPage
	}
	return query
}

func pagination(query *repository.ListQuery, total int64) gin.H {
	return gin.H{
		"page":        query.Page,
		"per_page":    query.PerPage,
		"total":       total,
		"total_pages": (total + int64(query.PerPage) - 1) / int64(query.PerPage),
	}
}
