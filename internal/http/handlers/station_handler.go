// README: Superadmin station management handlers.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"kavach/internal/modules/station"
)

type StationHandler struct {
	stations *station.Service
}

func NewStationHandler(svc *station.Service) *StationHandler {
	return &StationHandler{stations: svc}
}

type createStationReq struct {
	Name     string   `json:"name" binding:"required,max=200"`
	District string   `json:"district" binding:"required,max=100"`
	Address  string   `json:"address" binding:"max=500"`
	Location pointReq `json:"location"`
	Phone    string   `json:"phone" binding:"max=32"`
	Email    string   `json:"email" binding:"omitempty,email"`
	IsActive *bool    `json:"isActive"`
}

type updateStationReq struct {
	Name     *string   `json:"name" binding:"omitempty,min=1,max=200"`
	District *string   `json:"district" binding:"omitempty,min=1,max=100"`
	Address  *string   `json:"address" binding:"omitempty,max=500"`
	Location *pointReq `json:"location"`
	Phone    *string   `json:"phone" binding:"omitempty,max=32"`
	Email    *string   `json:"email" binding:"omitempty,email"`
	IsActive *bool     `json:"isActive"`
}

// List handles GET /api/sa/stations.
func (h *StationHandler) List(c *gin.Context) {
	stations, err := h.stations.List(c.Request.Context())
	if err != nil {
		writeStationError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"stations": stations})
}

// Get handles GET /api/sa/stations/:id.
func (h *StationHandler) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	st, err := h.stations.Get(c.Request.Context(), id)
	if err != nil {
		writeStationError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, st)
}

// Create handles POST /api/sa/stations.
func (h *StationHandler) Create(c *gin.Context) {
	var req createStationReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}
	st, err := h.stations.Create(c.Request.Context(), station.CreateCommand{
		Name:     req.Name,
		District: req.District,
		Address:  req.Address,
		Location: req.Location.point(),
		Phone:    req.Phone,
		Email:    req.Email,
		IsActive: req.IsActive,
	})
	if err != nil {
		writeStationError(c, err)
		return
	}
	writeJSON(c, http.StatusCreated, st)
}

// Update handles PUT /api/sa/stations/:id. Absent fields are left unchanged.
func (h *StationHandler) Update(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req updateStationReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}
	cmd := station.UpdateCommand{
		Name:     req.Name,
		District: req.District,
		Address:  req.Address,
		Phone:    req.Phone,
		Email:    req.Email,
		IsActive: req.IsActive,
	}
	if req.Location != nil {
		p := req.Location.point()
		cmd.Location = &p
	}
	st, err := h.stations.Update(c.Request.Context(), id, cmd)
	if err != nil {
		writeStationError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, st)
}

// Delete handles DELETE /api/sa/stations/:id.
func (h *StationHandler) Delete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.stations.Delete(c.Request.Context(), id); err != nil {
		writeStationError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"status": "deleted"})
}

// Districts handles GET /api/sa/districts.
func (h *StationHandler) Districts(c *gin.Context) {
	districts, err := h.stations.ListDistricts(c.Request.Context())
	if err != nil {
		writeStationError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"districts": districts})
}
