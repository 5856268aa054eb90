// README: Station admin handlers: station-scoped report queue, status workflow, case notes, dashboard.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"kavach/internal/http/middleware"
	"kavach/internal/modules/report"
	"kavach/internal/types"
)

type AdminHandler struct {
	reports *report.Service
}

func NewAdminHandler(svc *report.Service) *AdminHandler {
	return &AdminHandler{reports: svc}
}

// stationScope returns the station the caller may act on. Station admins are
// pinned to their claim; superadmins may pick one with ?stationId or see all.
func stationScope(c *gin.Context) (types.ID, bool) {
	if middleware.CallerRole(c) == middleware.RoleSuperadmin {
		return types.ID(c.Query("stationId")), true
	}
	id := middleware.CallerStationID(c)
	if id == "" {
		writeError(c, http.StatusForbidden, "forbidden: no station assigned to this account")
		return "", false
	}
	return id, true
}

// List handles GET /api/a/reports.
func (h *AdminHandler) List(c *gin.Context) {
	scope, ok := stationScope(c)
	if !ok {
		return
	}
	limit, ok := queryLimit(c)
	if !ok {
		return
	}
	reports, err := h.reports.List(c.Request.Context(), report.ListFilter{
		StationID: scope,
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

// Get handles GET /api/a/reports/:id.
func (h *AdminHandler) Get(c *gin.Context) {
	scope, ok := stationScope(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}
	r, updates, err := h.reports.GetWithUpdates(c.Request.Context(), id)
	if err != nil {
		writeReportError(c, err)
		return
	}
	if scope != "" && (r.StationID == nil || *r.StationID != scope) {
		writeReportError(c, report.ErrNotFound)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"report": r, "updates": updates})
}

type updateStatusReq struct {
	Status string `json:"status" binding:"required"`
	Note   string `json:"note" binding:"max=1000"`
}

// UpdateStatus handles PATCH /api/a/reports/:id/status.
func (h *AdminHandler) UpdateStatus(c *gin.Context) {
	scope, ok := stationScope(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req updateStatusReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}
	actor := report.ActorAdmin
	if middleware.CallerRole(c) == middleware.RoleSuperadmin {
		actor = report.ActorSuperadmin
	}
	r, u, err := h.reports.UpdateStatus(c.Request.Context(), report.UpdateStatusCommand{
		ReportID:  id,
		To:        report.Status(req.Status),
		Note:      req.Note,
		StationID: scope,
		ActorType: actor,
		ActorID:   middleware.CallerUID(c),
	})
	if err != nil {
		writeReportError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"report": r, "update": u})
}

type addNoteReq struct {
	Note string `json:"note" binding:"required,max=2000"`
}

// AddNote handles POST /api/a/reports/:id/notes.
func (h *AdminHandler) AddNote(c *gin.Context) {
	scope, ok := stationScope(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req addNoteReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}
	actor := report.ActorAdmin
	if middleware.CallerRole(c) == middleware.RoleSuperadmin {
		actor = report.ActorSuperadmin
	}
	u, err := h.reports.AddNote(c.Request.Context(), report.NoteCommand{
		ReportID:  id,
		Note:      req.Note,
		StationID: scope,
		ActorType: actor,
		ActorID:   middleware.CallerUID(c),
	})
	if err != nil {
		writeReportError(c, err)
		return
	}
	writeJSON(c, http.StatusCreated, gin.H{"update": u})
}

// Dashboard handles GET /api/a/dashboard.
func (h *AdminHandler) Dashboard(c *gin.Context) {
	scope, ok := stationScope(c)
	if !ok {
		return
	}
	stats, err := h.reports.Stats(c.Request.Context(), report.StatsQuery{
		Range:     report.StatsRange(c.Query("range")),
		StationID: scope,
	})
	if err != nil {
		writeReportError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, stats)
}
