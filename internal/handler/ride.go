package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/atharavsawant52/NeoRide/internal/domain"
	"github.com/atharavsawant52/NeoRide/internal/service"
)

// RideHandler handles HTTP requests for rides.
type RideHandler struct {
	rideService *service.RideService
}

// NewRideHandler creates a new RideHandler.
func NewRideHandler(rideService *service.RideService) *RideHandler {
	return &RideHandler{rideService: rideService}
}

// CreateRideRequest is the HTTP request body for creating a ride.
type CreateRideRequest struct {
	Pickup       string `json:"pickup"`
	Destination  string `json:"destination"`
	VehicleClass string `json:"vehicle_class"`
}

// StartRideRequest is the HTTP request body for starting a ride.
type StartRideRequest struct {
	OTP string `json:"otp"`
}

// RateRideRequest is the HTTP request body for rating a ride.
type RateRideRequest struct {
	Rating int `json:"rating"`
}

// FareEstimateResponse is the HTTP response for a fare estimate.
type FareEstimateResponse struct {
	Pickup      string                        `json:"pickup"`
	Destination string                        `json:"destination"`
	Fares       map[domain.VehicleClass]int64 `json:"fares"`
}

// CompleteRideResponse is the HTTP response for completing a ride.
type CompleteRideResponse struct {
	Ride    service.RideView    `json:"ride"`
	Receipt service.ReceiptView `json:"receipt"`
}

// CreateRide handles POST /v1/rides
func (h *RideHandler) CreateRide(c *gin.Context) {
	var req CreateRideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	ride, err := h.rideService.Create(c.Request.Context(), service.CreateRideRequest{
		RiderID:      actor(c).ID,
		Pickup:       req.Pickup,
		Destination:  req.Destination,
		VehicleClass: req.VehicleClass,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, service.NewRideView(ride, true))
}

// EstimateFare handles GET /v1/rides/fare
func (h *RideHandler) EstimateFare(c *gin.Context) {
	pickup := c.Query("pickup")
	destination := c.Query("destination")

	fares, err := h.rideService.Estimate(c.Request.Context(), pickup, destination)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, FareEstimateResponse{
		Pickup:      pickup,
		Destination: destination,
		Fares:       fares,
	})
}

// GetRide handles GET /v1/rides/:id
func (h *RideHandler) GetRide(c *gin.Context) {
	viewer := actor(c)

	ride, err := h.rideService.Get(c.Request.Context(), c.Param("id"), viewer)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, service.NewRideView(ride, ownsRide(ride, viewer)))
}

// History handles GET /v1/rides/history
func (h *RideHandler) History(c *gin.Context) {
	viewer := actor(c)

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))
	rides, err := h.rideService.History(c.Request.Context(), viewer, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	views := make([]service.RideView, 0, len(rides))
	for _, ride := range rides {
		views = append(views, service.NewRideView(ride, ownsRide(ride, viewer)))
	}
	respondJSON(c, http.StatusOK, views)
}

// AcceptRide handles POST /v1/rides/:id/accept
func (h *RideHandler) AcceptRide(c *gin.Context) {
	ride, err := h.rideService.Accept(c.Request.Context(), c.Param("id"), actor(c).ID)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, service.NewRideView(ride, false))
}

// StartRide handles POST /v1/rides/:id/start
func (h *RideHandler) StartRide(c *gin.Context) {
	var req StartRideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	ride, err := h.rideService.Start(c.Request.Context(), c.Param("id"), actor(c).ID, req.OTP)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, service.NewRideView(ride, false))
}

// CompleteRide handles POST /v1/rides/:id/complete
func (h *RideHandler) CompleteRide(c *gin.Context) {
	result, err := h.rideService.Complete(c.Request.Context(), c.Param("id"), actor(c).ID)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, CompleteRideResponse{
		Ride:    service.NewRideView(result.Ride, false),
		Receipt: service.NewReceiptView(result.Receipt),
	})
}

// CancelRide handles POST /v1/rides/:id/cancel
func (h *RideHandler) CancelRide(c *gin.Context) {
	viewer := actor(c)

	ride, err := h.rideService.Cancel(c.Request.Context(), c.Param("id"), viewer)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, service.NewRideView(ride, ownsRide(ride, viewer)))
}

// RateRide handles POST /v1/rides/:id/rate
func (h *RideHandler) RateRide(c *gin.Context) {
	var req RateRideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	ride, err := h.rideService.Rate(c.Request.Context(), c.Param("id"), actor(c).ID, req.Rating)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, service.NewRideView(ride, true))
}

// Receipt handles GET /v1/rides/:id/receipt. ?format=text returns a
// printable receipt.
func (h *RideHandler) Receipt(c *gin.Context) {
	receipt, err := h.rideService.Receipt(c.Request.Context(), c.Param("id"), actor(c))
	if err != nil {
		respondError(c, err)
		return
	}

	if c.Query("format") == "text" {
		c.String(http.StatusOK, service.FormatReceipt(receipt))
		return
	}
	respondJSON(c, http.StatusOK, service.NewReceiptView(receipt))
}

func ownsRide(ride *domain.Ride, viewer domain.Actor) bool {
	return viewer.Type == domain.ActorRider && ride.RiderID == viewer.ID
}
