package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/atharavsawant52/NeoRide/internal/domain"
	"github.com/atharavsawant52/NeoRide/internal/service"
)

// DriverHandler handles HTTP requests for captains.
type DriverHandler struct {
	driverService *service.DriverService
}

// NewDriverHandler creates a new DriverHandler.
func NewDriverHandler(driverService *service.DriverService) *DriverHandler {
	return &DriverHandler{driverService: driverService}
}

// RegisterDriverRequest is the HTTP request body for captain registration.
type RegisterDriverRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Vehicle struct {
		Class    string `json:"class"`
		Plate    string `json:"plate"`
		Color    string `json:"color"`
		Name     string `json:"name"`
		Capacity int    `json:"capacity"`
	} `json:"vehicle"`
}

// UpdateLocationRequest is the HTTP request body for updating driver location.
type UpdateLocationRequest struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// DriverResponse is the HTTP response for driver data.
type DriverResponse struct {
	ID      string          `json:"id"`
	Name    string          `json:"name"`
	Email   string          `json:"email"`
	Phone   string          `json:"phone,omitempty"`
	Status  string          `json:"status"`
	Vehicle VehicleResponse `json:"vehicle"`
}

// VehicleResponse is the vehicle part of DriverResponse.
type VehicleResponse struct {
	Class    string `json:"class"`
	Plate    string `json:"plate"`
	Color    string `json:"color"`
	Name     string `json:"name,omitempty"`
	Capacity int    `json:"capacity"`
}

// StatsResponse is the HTTP response for captain stats.
type StatsResponse struct {
	Earnings    int64    `json:"earnings"`
	RidesCount  int      `json:"rides_count"`
	HoursWorked float64  `json:"hours_worked"`
	Rating      *float64 `json:"rating"`
}

// Register handles POST /v1/captains/register
func (h *DriverHandler) Register(c *gin.Context) {
	var req RegisterDriverRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	driver, err := h.driverService.Register(c.Request.Context(), service.RegisterDriverRequest{
		DriverID:     actor(c).ID,
		Name:         req.Name,
		Email:        req.Email,
		Phone:        req.Phone,
		VehicleClass: req.Vehicle.Class,
		Plate:        req.Vehicle.Plate,
		Color:        req.Vehicle.Color,
		VehicleName:  req.Vehicle.Name,
		Capacity:     req.Vehicle.Capacity,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, toDriverResponse(driver))
}

// Stats handles GET /v1/captains/stats
func (h *DriverHandler) Stats(c *gin.Context) {
	stats, err := h.driverService.Stats(c.Request.Context(), actor(c).ID)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, StatsResponse{
		Earnings:    stats.Earnings,
		RidesCount:  stats.RidesCount,
		HoursWorked: stats.HoursWorked,
		Rating:      stats.Rating,
	})
}

// UpdateLocation handles POST /v1/captains/location
func (h *DriverHandler) UpdateLocation(c *gin.Context) {
	var req UpdateLocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	err := h.driverService.UpdateLocation(c.Request.Context(), service.UpdateLocationRequest{
		DriverID: actor(c).ID,
		Lat:      req.Lat,
		Lng:      req.Lng,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func toDriverResponse(d *domain.Driver) DriverResponse {
	return DriverResponse{
		ID:     d.ID,
		Name:   d.Name,
		Email:  d.Email,
		Phone:  d.Phone,
		Status: string(d.Status),
		Vehicle: VehicleResponse{
			Class:    string(d.Vehicle.Class),
			Plate:    d.Vehicle.Plate,
			Color:    d.Vehicle.Color,
			Name:     d.Vehicle.Name,
			Capacity: d.Vehicle.Capacity,
		},
	}
}
