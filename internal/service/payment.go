package service

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/atharavsawant52/NeoRide/internal/domain"
	"github.com/atharavsawant52/NeoRide/internal/repository"
)

// Webhook events that confirm a payment.
const (
	webhookPaymentCaptured = "payment.captured"
	webhookOrderPaid       = "order.paid"
	webhookActor           = "webhook"
)

// OrderProvider creates payment orders with the payment provider.
type OrderProvider interface {
	CreateOrder(ctx context.Context, amount int64, currency, receipt string) (string, error)
}

// LocalOrderProvider issues order ids without calling out. It stands in for
// the provider's order API, which this service never charges through.
type LocalOrderProvider struct{}

// NewLocalOrderProvider creates a new LocalOrderProvider.
func NewLocalOrderProvider() *LocalOrderProvider {
	return &LocalOrderProvider{}
}

// CreateOrder returns a fresh order id.
func (p *LocalOrderProvider) CreateOrder(ctx context.Context, amount int64, currency, receipt string) (string, error) {
	return "order_" + uuid.New().String(), nil
}

// PaymentConfig holds the secrets the gate verifies with.
type PaymentConfig struct {
	KeySecret     string
	WebhookSecret string
	Currency      string
}

// PaymentService gates ride completion on payment. Status moves from
// pending to paid exactly once; every confirmation is still appended to the
// ride's audit log.
type PaymentService struct {
	rideRepo  repository.RideRepository
	eventRepo repository.PaymentEventRepository
	tx        repository.Transactor
	orders    OrderProvider
	dispatch  *DispatchService
	cfg       PaymentConfig
}

// NewPaymentService creates a new PaymentService.
func NewPaymentService(
	rideRepo repository.RideRepository,
	eventRepo repository.PaymentEventRepository,
	tx repository.Transactor,
	orders OrderProvider,
	dispatch *DispatchService,
	cfg PaymentConfig,
) *PaymentService {
	return &PaymentService{
		rideRepo:  rideRepo,
		eventRepo: eventRepo,
		tx:        tx,
		orders:    orders,
		dispatch:  dispatch,
		cfg:       cfg,
	}
}

// VerifyPaymentRequest carries the provider's checkout result.
type VerifyPaymentRequest struct {
	RideID    string
	OrderID   string
	PaymentID string
	Signature string
}

// MarkPaidRequest records one payment confirmation.
type MarkPaidRequest struct {
	RideID    string
	Method    domain.PaymentMethod
	PaymentID string
	Amount    int64
	Actor     string
	EventType domain.PaymentEventType
}

// MarkPaidResult reports the outcome of a confirmation.
type MarkPaidResult struct {
	Ride    *domain.Ride
	Event   domain.PaymentEvent
	Flipped bool // false when the ride was already paid
}

// CreateIntent returns the ride's payment order, creating it on first call.
func (s *PaymentService) CreateIntent(ctx context.Context, rideID string, rider domain.Actor) (*domain.PaymentIntent, error) {
	if rideID == "" {
		return nil, ErrInvalidRideID
	}

	ride, err := s.getRide(ctx, rideID)
	if err != nil {
		return nil, err
	}
	if rider.Type != domain.ActorRider || ride.RiderID != rider.ID {
		return nil, ErrRiderNotOwner
	}
	if ride.Status == domain.RideStatusCancelled {
		return nil, ErrRideNotInExpectedState
	}

	if ride.PaymentOrderID == "" {
		orderID, err := s.orders.CreateOrder(ctx, ride.Fare.Total, s.cfg.Currency, ride.ID)
		if err != nil {
			log.Printf("payment: order creation for ride %s failed: %v", ride.ID, err)
			return nil, ErrPaymentProviderUnavailable
		}

		set, err := s.rideRepo.SetPaymentOrder(ctx, ride.ID, orderID)
		if err != nil {
			return nil, err
		}
		if !set {
			// A concurrent call stored its order first; use that one.
			if ride, err = s.getRide(ctx, rideID); err != nil {
				return nil, err
			}
		} else {
			ride.PaymentOrderID = orderID
		}
	}

	return &domain.PaymentIntent{
		IntentID: ride.PaymentOrderID,
		RideID:   ride.ID,
		Amount:   ride.Fare.Total,
		Currency: s.cfg.Currency,
	}, nil
}

// Verify checks the provider signature over "orderId|paymentId" and, when it
// matches, marks the ride paid. A bad signature changes nothing.
func (s *PaymentService) Verify(ctx context.Context, req VerifyPaymentRequest, rider domain.Actor, eventType domain.PaymentEventType) (*MarkPaidResult, error) {
	if req.RideID == "" {
		return nil, ErrInvalidRideID
	}

	ride, err := s.getRide(ctx, req.RideID)
	if err != nil {
		return nil, err
	}
	if rider.Type != domain.ActorRider || ride.RiderID != rider.ID {
		return nil, ErrRiderNotOwner
	}
	if ride.PaymentOrderID == "" || req.OrderID != ride.PaymentOrderID {
		return nil, ErrPaymentIntentMismatch
	}
	if !VerifySignature(s.cfg.KeySecret, req.OrderID+"|"+req.PaymentID, req.Signature) {
		return nil, ErrInvalidSignature
	}

	return s.MarkPaid(ctx, MarkPaidRequest{
		RideID:    ride.ID,
		Method:    domain.PaymentMethodOnline,
		PaymentID: req.PaymentID,
		Amount:    ride.Fare.Total,
		Actor:     rider.String(),
		EventType: eventType,
	})
}

// AcknowledgeCash lets the assigned driver confirm a cash payment.
func (s *PaymentService) AcknowledgeCash(ctx context.Context, rideID string, driver domain.Actor) (*MarkPaidResult, error) {
	if rideID == "" {
		return nil, ErrInvalidRideID
	}

	ride, err := s.getRide(ctx, rideID)
	if err != nil {
		return nil, err
	}
	if driver.Type != domain.ActorDriver || ride.DriverID != driver.ID {
		return nil, ErrDriverNotAssignedToRide
	}
	if ride.Status == domain.RideStatusCancelled || ride.Status == domain.RideStatusRequested {
		return nil, ErrRideNotInExpectedState
	}

	return s.MarkPaid(ctx, MarkPaidRequest{
		RideID:    ride.ID,
		Method:    domain.PaymentMethodCash,
		Amount:    ride.Fare.Total,
		Actor:     driver.String(),
		EventType: domain.PaymentEventCashAcknowledged,
	})
}

// MarkPaid appends the confirmation to the audit log and flips the ride to
// paid if it is still pending, in one transaction. A repeated confirmation
// is not an error: it is logged and reported with Flipped false.
func (s *PaymentService) MarkPaid(ctx context.Context, req MarkPaidRequest) (*MarkPaidResult, error) {
	if req.RideID == "" {
		return nil, ErrInvalidRideID
	}
	if req.Method != domain.PaymentMethodCash && req.Method != domain.PaymentMethodOnline {
		return nil, ErrInvalidPaymentMethod
	}
	if req.Amount < 0 {
		return nil, ErrInvalidPaymentAmount
	}

	event := domain.PaymentEvent{
		RideID:    req.RideID,
		Type:      req.EventType,
		Method:    req.Method,
		PaymentID: req.PaymentID,
		Amount:    req.Amount,
		Actor:     req.Actor,
		At:        time.Now().UTC(),
	}

	var flipped bool
	err := s.tx.WithinTx(ctx, func(repos repository.Repositories) error {
		if err := repos.PaymentEvents.Append(ctx, &event); err != nil {
			return err
		}
		var err error
		flipped, err = repos.Rides.MarkPaid(ctx, req.RideID, req.Method, req.PaymentID)
		return err
	})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrRideNotFound
		}
		return nil, err
	}

	ride, err := s.getRide(ctx, req.RideID)
	if err != nil {
		return nil, err
	}

	if flipped {
		s.dispatch.PaymentStatusChanged(ride, event)
	}
	return &MarkPaidResult{Ride: ride, Event: event, Flipped: flipped}, nil
}

// webhookPayload is the subset of the provider's webhook body we read.
type webhookPayload struct {
	Event   string `json:"event"`
	Payload struct {
		Payment struct {
			Entity struct {
				ID      string `json:"id"`
				OrderID string `json:"order_id"`
				Amount  int64  `json:"amount"`
			} `json:"entity"`
		} `json:"payment"`
	} `json:"payload"`
}

// HandleWebhook verifies and applies an asynchronous payment confirmation.
// The signature covers the raw body and is checked before parsing. Events
// other than captured/paid are acknowledged and ignored.
func (s *PaymentService) HandleWebhook(ctx context.Context, body []byte, signature string) (*MarkPaidResult, error) {
	if !VerifySignature(s.cfg.WebhookSecret, string(body), signature) {
		return nil, ErrInvalidSignature
	}

	var payload webhookPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, ErrMalformedWebhook
	}

	if payload.Event != webhookPaymentCaptured && payload.Event != webhookOrderPaid {
		return nil, nil
	}

	entity := payload.Payload.Payment.Entity
	if entity.OrderID == "" {
		return nil, ErrMalformedWebhook
	}

	ride, err := s.rideRepo.GetByPaymentOrderID(ctx, entity.OrderID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrRideNotFound
		}
		return nil, err
	}

	req := MarkPaidRequest{
		RideID:    ride.ID,
		Method:    domain.PaymentMethodOnline,
		PaymentID: entity.ID,
		Amount:    entity.Amount / 100, // provider amounts are in the minor unit
		Actor:     webhookActor,
		EventType: domain.PaymentEventWebhook,
	}

	// A capture can land after the ride was cancelled; keep the audit entry
	// but leave the payment status alone.
	if ride.Status == domain.RideStatusCancelled {
		log.Printf("payment: capture %s for cancelled ride %s recorded without marking paid", entity.ID, ride.ID)
		return s.recordOnly(ctx, ride, req)
	}

	return s.MarkPaid(ctx, req)
}

// recordOnly appends a confirmation without touching the ride.
func (s *PaymentService) recordOnly(ctx context.Context, ride *domain.Ride, req MarkPaidRequest) (*MarkPaidResult, error) {
	event := domain.PaymentEvent{
		RideID:    req.RideID,
		Type:      req.EventType,
		Method:    req.Method,
		PaymentID: req.PaymentID,
		Amount:    req.Amount,
		Actor:     req.Actor,
		At:        time.Now().UTC(),
	}
	if err := s.eventRepo.Append(ctx, &event); err != nil {
		return nil, err
	}
	return &MarkPaidResult{Ride: ride, Event: event}, nil
}

func (s *PaymentService) getRide(ctx context.Context, rideID string) (*domain.Ride, error) {
	ride, err := s.rideRepo.GetByID(ctx, rideID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrRideNotFound
		}
		return nil, err
	}
	return ride, nil
}

// Sign returns the hex HMAC-SHA256 of message under secret.
func Sign(secret, message string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(message))
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifySignature compares signature against Sign(secret, message) in constant time.
func VerifySignature(secret, message, signature string) bool {
	if secret == "" || signature == "" {
		return false
	}
	return hmac.Equal([]byte(Sign(secret, message)), []byte(signature))
}
