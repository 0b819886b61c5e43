package handler

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/atharavsawant52/NeoRide/internal/domain"
	"github.com/atharavsawant52/NeoRide/internal/service"
)

const (
	webhookSignatureHeader = "X-Razorpay-Signature"
	maxWebhookBody         = 1 << 20
)

// PaymentHandler handles HTTP requests for payments.
type PaymentHandler struct {
	paymentService *service.PaymentService
	keyID          string
}

// NewPaymentHandler creates a new PaymentHandler. keyID is the public key
// the checkout client needs alongside the order.
func NewPaymentHandler(paymentService *service.PaymentService, keyID string) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService, keyID: keyID}
}

// CreateOrderRequest is the HTTP request body for creating a payment order.
type CreateOrderRequest struct {
	RideID string `json:"ride_id"`
}

// VerifyPaymentRequest is the HTTP request body for verifying a checkout.
type VerifyPaymentRequest struct {
	RideID    string `json:"ride_id"`
	OrderID   string `json:"order_id"`
	PaymentID string `json:"payment_id"`
	Signature string `json:"signature"`
}

// CashAckRequest is the HTTP request body for acknowledging cash.
type CashAckRequest struct {
	RideID string `json:"ride_id"`
}

// OrderResponse is the HTTP response for a payment order.
type OrderResponse struct {
	OrderID  string `json:"order_id"`
	RideID   string `json:"ride_id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	KeyID    string `json:"key_id,omitempty"`
}

// PaymentResponse is the HTTP response for a payment confirmation.
type PaymentResponse struct {
	Ride    service.RideView         `json:"ride"`
	Event   service.PaymentEventView `json:"event"`
	Updated bool                     `json:"updated"`
}

// CreateOrder handles POST /v1/payments/order
func (h *PaymentHandler) CreateOrder(c *gin.Context) {
	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	intent, err := h.paymentService.CreateIntent(c.Request.Context(), req.RideID, actor(c))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, OrderResponse{
		OrderID:  intent.IntentID,
		RideID:   intent.RideID,
		Amount:   intent.Amount,
		Currency: intent.Currency,
		KeyID:    h.keyID,
	})
}

// VerifyPayment handles POST /v1/payments/verify
func (h *PaymentHandler) VerifyPayment(c *gin.Context) {
	var req VerifyPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	result, err := h.paymentService.Verify(c.Request.Context(), service.VerifyPaymentRequest{
		RideID:    req.RideID,
		OrderID:   req.OrderID,
		PaymentID: req.PaymentID,
		Signature: req.Signature,
	}, actor(c), domain.PaymentEventVerified)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, paymentResponse(result, true))
}

// AcknowledgeCash handles POST /v1/payments/cash-ack
func (h *PaymentHandler) AcknowledgeCash(c *gin.Context) {
	var req CashAckRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	result, err := h.paymentService.AcknowledgeCash(c.Request.Context(), req.RideID, actor(c))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, paymentResponse(result, false))
}

// Webhook handles POST /v1/payments/webhook. The body is read raw because
// the signature covers the exact bytes sent.
func (h *PaymentHandler) Webhook(c *gin.Context) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
	if err != nil {
		badRequest(c, "invalid request body")
		return
	}

	result, err := h.paymentService.HandleWebhook(c.Request.Context(), body, c.GetHeader(webhookSignatureHeader))
	if err != nil {
		respondError(c, err)
		return
	}

	if result == nil {
		respondJSON(c, http.StatusOK, gin.H{"status": "ignored"})
		return
	}
	respondJSON(c, http.StatusOK, gin.H{"status": "ok", "updated": result.Flipped})
}

func paymentResponse(result *service.MarkPaidResult, includeOTP bool) PaymentResponse {
	return PaymentResponse{
		Ride:    service.NewRideView(result.Ride, includeOTP),
		Event:   service.NewPaymentEventView(result.Event),
		Updated: result.Flipped,
	}
}
