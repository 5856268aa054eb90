// README: Citizen report handlers: submit, list, view, edit and withdraw own reports, nearby search.
package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"kavach/internal/config"
	"kavach/internal/http/middleware"
	"kavach/internal/modules/location"
	"kavach/internal/modules/report"
	"kavach/internal/types"
)

type ReportHandler struct {
	reports *report.Service
	nearby  config.NearbyConfig
}

func NewReportHandler(svc *report.Service, nearby config.NearbyConfig) *ReportHandler {
	return &ReportHandler{reports: svc, nearby: nearby}
}

type pointReq struct {
	Lat *float64 `json:"lat" binding:"required,lat"`
	Lng *float64 `json:"lng" binding:"required,lng"`
}

func (p pointReq) point() types.Point {
	return types.Point{Lat: *p.Lat, Lng: *p.Lng}
}

type createReportReq struct {
	Title       string    `json:"title" binding:"required,max=200"`
	Description string    `json:"description" binding:"max=5000"`
	CrimeType   string    `json:"crimeType" binding:"required,max=100"`
	Location    pointReq  `json:"location"`
	Address     string    `json:"address" binding:"max=500"`
	Timestamp   time.Time `json:"timestamp"`
	IsAnonymous bool      `json:"isAnonymous"`
	IsUrgent    bool      `json:"isUrgent"`
}

type stationRef struct {
	ID   types.ID `json:"id"`
	Name string   `json:"name"`
}

type createReportResp struct {
	ReportID        types.ID    `json:"reportId"`
	AssignedStation *stationRef `json:"assignedStation"`
}

// Create handles POST /api/u/reports.
func (h *ReportHandler) Create(c *gin.Context) {
	var req createReportReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}
	res, err := h.reports.Create(c.Request.Context(), report.CreateCommand{
		ReporterID:  middleware.CallerUID(c),
		Title:       req.Title,
		Description: req.Description,
		CrimeType:   req.CrimeType,
		Location:    req.Location.point(),
		Address:     req.Address,
		OccurredAt:  req.Timestamp,
		IsAnonymous: req.IsAnonymous,
		IsUrgent:    req.IsUrgent,
	})
	if err != nil {
		writeReportError(c, err)
		return
	}
	resp := createReportResp{ReportID: res.Report.ID}
	if res.Station != nil {
		resp.AssignedStation = &stationRef{ID: res.Station.ID, Name: res.Station.Name}
	}
	writeJSON(c, http.StatusCreated, resp)
}

// ListMine handles GET /api/u/reports.
func (h *ReportHandler) ListMine(c *gin.Context) {
	limit, ok := queryLimit(c)
	if !ok {
		return
	}
	reports, err := h.reports.ListByReporter(c.Request.Context(), middleware.CallerUID(c), report.Status(c.Query("status")), limit)
	if err != nil {
		writeReportError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"reports": reports})
}

// GetMine handles GET /api/u/reports/:id. Other citizens' reports read as not found.
func (h *ReportHandler) GetMine(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	r, updates, err := h.reports.GetWithUpdates(c.Request.Context(), id)
	if err != nil {
		writeReportError(c, err)
		return
	}
	if r.ReporterID != middleware.CallerUID(c) {
		writeReportError(c, report.ErrNotFound)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"report": r, "updates": updates})
}

type editReportReq struct {
	CrimeType   *string    `json:"crimeType" binding:"omitempty,max=100"`
	Description *string    `json:"description" binding:"omitempty,max=5000"`
	Timestamp   *time.Time `json:"timestamp"`
}

// Edit handles PUT /api/u/reports/:id. Only pending reports can be edited.
func (h *ReportHandler) Edit(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req editReportReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}
	r, err := h.reports.Edit(c.Request.Context(), report.EditCommand{
		ReportID:    id,
		ReporterID:  middleware.CallerUID(c),
		CrimeType:   req.CrimeType,
		Description: req.Description,
		OccurredAt:  req.Timestamp,
	})
	if err != nil {
		writeReportError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"report": r})
}

// Withdraw handles DELETE /api/u/reports/:id.
func (h *ReportHandler) Withdraw(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.reports.Withdraw(c.Request.Context(), id, middleware.CallerUID(c)); err != nil {
		writeReportError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"status": "deleted"})
}

type nearbyReq struct {
	Lat       *float64 `form:"lat" binding:"required,lat"`
	Lng       *float64 `form:"lng" binding:"required,lng"`
	Radius    *float64 `form:"radius" binding:"omitempty,gt=0"`
	Timeframe string   `form:"timeframe"`
	CrimeType string   `form:"crimeType"`
	Limit     int      `form:"limit" binding:"omitempty,min=1,max=100"`
}

// nearbyReport is a report as other citizens see it, with a display distance.
type nearbyReport struct {
	report.Report
	Distance float64 `json:"distance"`
}

type nearbyResp struct {
	Reports []nearbyReport `json:"reports"`
	Center  types.Point    `json:"center"`
}

// Nearby handles GET /api/u/reports/nearby.
func (h *ReportHandler) Nearby(c *gin.Context) {
	var req nearbyReq
	if err := c.ShouldBindQuery(&req); err != nil {
		writeBindError(c, err)
		return
	}
	radius := h.nearby.DefaultRadiusKm
	if req.Radius != nil {
		radius = *req.Radius
	}
	if h.nearby.MaxRadiusKm > 0 && radius > h.nearby.MaxRadiusKm {
		writeError(c, http.StatusBadRequest, fmt.Sprintf("radius must not exceed %g km", h.nearby.MaxRadiusKm))
		return
	}
	limit := h.nearby.DefaultLimit
	if req.Limit > 0 {
		limit = req.Limit
	}

	center := types.Point{Lat: *req.Lat, Lng: *req.Lng}
	found, err := h.reports.FindNearby(c.Request.Context(), report.NearbyQuery{
		Center:    center,
		RadiusKm:  radius,
		Timeframe: report.Timeframe(req.Timeframe),
		CrimeType: req.CrimeType,
		Limit:     limit,
	})
	if err != nil {
		writeReportError(c, err)
		return
	}

	resp := nearbyResp{Reports: make([]nearbyReport, 0, len(found)), Center: center}
	for _, f := range found {
		r := f.Report
		r.ReporterID = ""
		resp.Reports = append(resp.Reports, nearbyReport{Report: r, Distance: location.RoundKm(f.DistanceKm)})
	}
	writeJSON(c, http.StatusOK, resp)
}
