package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"github.com/thereayou/roomly/internal/apperr"
)

// apiResponse is the envelope every REST endpoint answers with.
type apiResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

func respondOK(c *gin.Context, message string, data any) {
	c.JSON(http.StatusOK, apiResponse{Status: "OK", Message: message, Data: data})
}

func respondErr(c *gin.Context, err error) {
	kind := apperr.KindOf(err)
	status := httpStatus(kind)

	message := err.Error()
	if kind == apperr.Internal {
		log.Error().Err(err).Str("path", c.FullPath()).Msg("internal error")
		message = "An unexpected error occurred"
	}

	c.JSON(status, apiResponse{Status: "ERROR", Message: message})
}

func httpStatus(kind apperr.Kind) int {
	switch kind {
	case apperr.NotFound:
		return http.StatusNotFound
	case apperr.Forbidden:
		return http.StatusForbidden
	case apperr.Internal:
		return http.StatusInternalServerError
	default:
		return http.StatusBadRequest
	}
}

// intQuery parses a non-negative integer query parameter, falling back to
// def when absent or malformed.
func intQuery(c *gin.Context, name string, def int) int {
	raw := c.Query(name)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return def
	}
	return v
}

// pageParams normalizes page/size with the endpoint's default size.
func pageParams(c *gin.Context, defaultSize int) (page, size int) {
	page = intQuery(c, "page", 0)
	size = intQuery(c, "size", defaultSize)
	if size < 1 {
		size = defaultSize
	}
	return page, size
}
