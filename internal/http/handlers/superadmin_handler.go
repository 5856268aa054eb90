// README: Superadmin report handlers: global listing, reassignment, stats, heatmap.
package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"kavach/internal/http/middleware"
	"kavach/internal/modules/report"
	"kavach/internal/types"
)

type SuperadminHandler struct {
	reports *report.Service
}

func NewSuperadminHandler(svc *report.Service) *SuperadminHandler {
	return &SuperadminHandler{reports: svc}
}

// ListReports handles GET /api/sa/reports.
func (h *SuperadminHandler) ListReports(c *gin.Context) {
	limit, ok := queryLimit(c)
	if !ok {
		return
	}
	reports, err := h.reports.List(c.Request.Context(), report.ListFilter{
		District:  c.Query("district"),
		StationID: types.ID(c.Query("stationId")),
		Status:    report.Status(c.Query("status")),
		CrimeType: c.Query("crimeType"),
		Limit:     limit,
	})
	if err != nil {
		writeReportError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"reports": reports})
}

type reassignReq struct {
	StationID string `json:"stationId" binding:"required"`
}

// Reassign handles PATCH /api/sa/reports/:id/station.
func (h *SuperadminHandler) Reassign(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req reassignReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}
	if !isValidID(req.StationID) {
		writeError(c, http.StatusBadRequest, "invalid stationId")
		return
	}
	r, err := h.reports.Reassign(c.Request.Context(), report.ReassignCommand{
		ReportID:  id,
		StationID: types.ID(req.StationID),
		ActorID:   middleware.CallerUID(c),
	})
	if err != nil {
		writeReportError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"report": r})
}

// Stats handles GET /api/sa/reports/stats.
func (h *SuperadminHandler) Stats(c *gin.Context) {
	stats, err := h.reports.Stats(c.Request.Context(), report.StatsQuery{
		Range:     report.StatsRange(c.Query("range")),
		District:  c.Query("district"),
		StationID: types.ID(c.Query("stationId")),
	})
	if err != nil {
		writeReportError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, stats)
}

// Heatmap handles GET /api/sa/reports/heatmap.
func (h *SuperadminHandler) Heatmap(c *gin.Context) {
	var res int
	if raw := c.Query("resolution"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 15 {
			writeError(c, http.StatusBadRequest, "resolution must be within 1..15")
			return
		}
		res = n
	}
	hm, err := h.reports.Heatmap(c.Request.Context(), report.HeatmapQuery{
		Range:      report.StatsRange(c.Query("range")),
		District:   c.Query("district"),
		Resolution: res,
	})
	if err != nil {
		writeReportError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, hm)
}
