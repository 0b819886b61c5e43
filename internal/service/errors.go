package service

import "errors"

// Error kinds. Every specific error below unwraps to exactly one of these,
// so callers can branch with errors.Is(err, ErrConflict).
var (
	ErrValidation         = errors.New("validation error")
	ErrNotFound           = errors.New("not found")
	ErrConflict           = errors.New("conflict")
	ErrPreconditionFailed = errors.New("precondition failed")
	ErrExternalDependency = errors.New("external dependency unavailable")
)

// Error is a specific, user-presentable failure of a given kind.
type Error struct {
	kind error
	msg  string
}

func (e *Error) Error() string { return e.msg }

// Unwrap returns the error kind.
func (e *Error) Unwrap() error { return e.kind }

func newError(kind error, msg string) *Error {
	return &Error{kind: kind, msg: msg}
}

var (
	// ErrInvalidRiderID is returned when rider ID is empty.
	ErrInvalidRiderID = newError(ErrValidation, "invalid rider id")

	// ErrInvalidRideID is returned when ride ID is empty.
	ErrInvalidRideID = newError(ErrValidation, "invalid ride id")

	// ErrInvalidDriverID is returned when driver ID is empty.
	ErrInvalidDriverID = newError(ErrValidation, "invalid driver id")

	// ErrInvalidPickup is returned when the pickup address is missing or too short.
	ErrInvalidPickup = newError(ErrValidation, "invalid pickup address")

	// ErrInvalidDestination is returned when the destination address is missing or too short.
	ErrInvalidDestination = newError(ErrValidation, "invalid destination address")

	// ErrInvalidVehicleClass is returned for an unknown vehicle class.
	ErrInvalidVehicleClass = newError(ErrValidation, "invalid vehicle class")

	// ErrInvalidLocation is returned when location coordinates are invalid.
	ErrInvalidLocation = newError(ErrValidation, "invalid location")

	// ErrInvalidRating is returned when a rating is outside 1..5.
	ErrInvalidRating = newError(ErrValidation, "rating must be between 1 and 5")

	// ErrInvalidPaymentMethod is returned when payment method is invalid.
	ErrInvalidPaymentMethod = newError(ErrValidation, "invalid payment method")

	// ErrInvalidPaymentAmount is returned when payment amount is negative.
	ErrInvalidPaymentAmount = newError(ErrValidation, "invalid payment amount")

	// ErrInvalidDriverProfile is returned when a driver registration is incomplete.
	ErrInvalidDriverProfile = newError(ErrValidation, "invalid driver profile")

	// ErrInvalidUserProfile is returned when a rider registration is incomplete.
	ErrInvalidUserProfile = newError(ErrValidation, "invalid rider profile")

	// ErrMalformedWebhook is returned when a verified webhook body cannot be parsed.
	ErrMalformedWebhook = newError(ErrValidation, "malformed webhook payload")
)

var (
	// ErrRideNotFound is returned when a ride does not exist.
	ErrRideNotFound = newError(ErrNotFound, "ride not found")

	// ErrDriverNotFound is returned when a driver does not exist.
	ErrDriverNotFound = newError(ErrNotFound, "driver not found")

	// ErrUserNotFound is returned when a rider does not exist.
	ErrUserNotFound = newError(ErrNotFound, "rider not found")

	// ErrReceiptNotFound is returned when a receipt is requested for an unfinished ride.
	ErrReceiptNotFound = newError(ErrNotFound, "receipt not available")
)

var (
	// ErrAssignmentConflict is returned when another driver already accepted the ride.
	ErrAssignmentConflict = newError(ErrConflict, "ride no longer available")

	// ErrAlreadyRated is returned on a second rating of the same ride.
	ErrAlreadyRated = newError(ErrConflict, "ride already rated")

	// ErrInvalidSignature is returned when a payment signature does not verify.
	ErrInvalidSignature = newError(ErrConflict, "invalid payment signature")

	// ErrPaymentIntentMismatch is returned when a verification names a different order.
	ErrPaymentIntentMismatch = newError(ErrConflict, "payment order does not belong to ride")

	// ErrAlreadyRegistered is returned when a rider or driver already exists.
	ErrAlreadyRegistered = newError(ErrConflict, "already registered")
)

var (
	// ErrRideNotInExpectedState is returned when a transition is attempted from the wrong state.
	ErrRideNotInExpectedState = newError(ErrPreconditionFailed, "ride not in expected state")

	// ErrInvalidOtp is returned when the supplied OTP does not match the ride.
	ErrInvalidOtp = newError(ErrPreconditionFailed, "invalid otp")

	// ErrPaymentNotCompleted is returned when completing a ride that is not paid.
	ErrPaymentNotCompleted = newError(ErrPreconditionFailed, "payment not completed")

	// ErrDriverNotAssignedToRide is returned when the acting driver does not own the ride.
	ErrDriverNotAssignedToRide = newError(ErrPreconditionFailed, "driver not assigned to this ride")

	// ErrRiderNotOwner is returned when the acting rider did not request the ride.
	ErrRiderNotOwner = newError(ErrPreconditionFailed, "ride belongs to another rider")

	// ErrNotRideParty is returned when the actor is neither the rider nor the driver of a ride.
	ErrNotRideParty = newError(ErrPreconditionFailed, "actor is not a party to this ride")
)

var (
	// ErrRoutingUnavailable is returned when the routing provider cannot price a ride.
	ErrRoutingUnavailable = newError(ErrExternalDependency, "routing provider unavailable")

	// ErrPaymentProviderUnavailable is returned when a payment order cannot be created.
	ErrPaymentProviderUnavailable = newError(ErrExternalDependency, "payment provider unavailable")
)
