// README: Base handler utilities (JSON helpers, error mapping, query parsing).
package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"kavach/internal/modules/location"
	"kavach/internal/modules/report"
	"kavach/internal/modules/station"
	"kavach/internal/types"
)

type errorResponse struct {
	Error string `json:"error"`
}

// isValidID accepts uuids and the alphanumeric ids imported from older data.
func isValidID(v string) bool {
	if v == "" || len(v) > 64 {
		return false
	}
	for _, c := range v {
		if (c >= '0' && c <= '9') || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c == '-' || c == '_' {
			continue
		}
		return false
	}
	return true
}

// pathID reads and checks the :id parameter, writing 400 when it is malformed.
func pathID(c *gin.Context) (types.ID, bool) {
	id := c.Param("id")
	if !isValidID(id) {
		writeError(c, http.StatusBadRequest, "invalid id")
		return "", false
	}
	return types.ID(id), true
}

// queryLimit parses ?limit; absent means zero so the service default applies.
func queryLimit(c *gin.Context) (int, bool) {
	raw := c.Query("limit")
	if raw == "" {
		return 0, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		writeError(c, http.StatusBadRequest, "invalid limit")
		return 0, false
	}
	return n, true
}

func writeJSON(c *gin.Context, status int, v any) {
	c.JSON(status, v)
}

func writeError(c *gin.Context, status int, msg string) {
	writeJSON(c, status, errorResponse{Error: msg})
}

func writeBindError(c *gin.Context, err error) {
	_ = c.Error(err)
	writeError(c, http.StatusBadRequest, "invalid request: "+err.Error())
}

func writeReportError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, location.ErrInvalidCoordinate):
		writeError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, report.ErrBadRequest), errors.Is(err, report.ErrNotEditable):
		writeError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, report.ErrNotFound):
		writeError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, report.ErrInvalidState), errors.Is(err, report.ErrConflict):
		writeError(c, http.StatusConflict, err.Error())
	default:
		_ = c.Error(err)
		writeError(c, http.StatusInternalServerError, "internal error")
	}
}

func writeStationError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, station.ErrBadRequest):
		writeError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, station.ErrNotFound):
		writeError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, station.ErrStationInUse):
		writeError(c, http.StatusConflict, err.Error())
	default:
		_ = c.Error(err)
		writeError(c, http.StatusInternalServerError, "internal error")
	}
}
