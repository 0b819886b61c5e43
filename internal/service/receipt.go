package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/atharavsawant52/NeoRide/internal/domain"
)

// BuildReceipt summarizes a completed ride.
func BuildReceipt(ride *domain.Ride, currency string) *domain.Receipt {
	return &domain.Receipt{
		RideID:          ride.ID,
		RiderID:         ride.RiderID,
		DriverID:        ride.DriverID,
		Pickup:          ride.Pickup,
		Destination:     ride.Destination,
		VehicleClass:    ride.VehicleClass,
		Fare:            ride.Fare.Total,
		Currency:        currency,
		DistanceMeters:  ride.DistanceMeters,
		DurationSeconds: ride.DurationSeconds,
		PaymentMethod:   ride.PaymentMethod,
		PaymentStatus:   ride.PaymentStatus,
		StartedAt:       ride.StartedAt,
		EndedAt:         ride.EndedAt,
	}
}

// FormatReceipt renders the receipt as plain text for print or email.
func FormatReceipt(receipt *domain.Receipt) string {
	var b strings.Builder
	line := strings.Repeat("=", 37)
	rule := strings.Repeat("-", 37)

	fmt.Fprintln(&b, line)
	fmt.Fprintln(&b, "            RIDE RECEIPT")
	fmt.Fprintln(&b, line)
	fmt.Fprintf(&b, "Ride ID: %s\n", receipt.RideID)
	fmt.Fprintf(&b, "Date:    %s\n\n", receipt.EndedAt.Format("Jan 02, 2006 3:04 PM"))

	fmt.Fprintln(&b, "TRIP DETAILS")
	fmt.Fprintln(&b, rule)
	fmt.Fprintf(&b, "Pickup:      %s\n", receipt.Pickup)
	fmt.Fprintf(&b, "Destination: %s\n", receipt.Destination)
	fmt.Fprintf(&b, "Vehicle:     %s\n", receipt.VehicleClass)
	fmt.Fprintf(&b, "Duration:    %s\n", formatDuration(time.Duration(receipt.DurationSeconds)*time.Second))
	fmt.Fprintf(&b, "Distance:    %.2f km\n\n", float64(receipt.DistanceMeters)/1000)

	fmt.Fprintln(&b, "FARE")
	fmt.Fprintln(&b, rule)
	fmt.Fprintf(&b, "TOTAL:       %s %d\n\n", receipt.Currency, receipt.Fare)

	fmt.Fprintln(&b, "PAYMENT")
	fmt.Fprintln(&b, rule)
	fmt.Fprintf(&b, "Method: %s\n", receipt.PaymentMethod)
	fmt.Fprintf(&b, "Status: %s\n", receipt.PaymentStatus)
	fmt.Fprintln(&b, line)

	return b.String()
}

func formatDuration(d time.Duration) string {
	minutes := int(d.Minutes())
	seconds := int(d.Seconds()) % 60
	return fmt.Sprintf("%d min %02d s", minutes, seconds)
}
