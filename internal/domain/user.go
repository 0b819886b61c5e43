package domain

import "time"

// User represents a rider in the system.
type User struct {
	ID        string
	Name      string
	Email     string
	Phone     string
	CreatedAt time.Time
}

// ActorType distinguishes the two parties of a ride.
type ActorType string

const (
	ActorRider  ActorType = "rider"
	ActorDriver ActorType = "driver"
)

// Actor is a verified identity acting on the system.
type Actor struct {
	ID   string
	Type ActorType
}

func (a Actor) String() string {
	return string(a.Type) + ":" + a.ID
}
