package domain

import "strings"

// RideState represents the lifecycle state of a ride.
type RideState string

const (
	RideStateOfferOpen   RideState = "OFFER_OPEN"
	RideStateRequestOpen RideState = "REQUEST_OPEN"
	RideStateAccepted    RideState = "ACCEPTED"
	RideStateCompleted   RideState = "COMPLETED"
	RideStateDeleted     RideState = "DELETED"
	RideStateInvalid     RideState = "INVALID"
)

// RideOrigin records which side created the ride.
type RideOrigin string

const (
	RideOriginOffer   RideOrigin = "offer"
	RideOriginRequest RideOrigin = "request"
)

// Ride represents a marketplace listing: an offer, a request or a matched ride.
// An empty Driver or Rider means the party is absent.
type Ride struct {
	RideID   int64
	DateTime string // Opaque display string.
	Driver   string
	Rider    string
	From     string
	To       string
	Complete bool
	Origin   RideOrigin
}

// Normalize trims party identifiers so whitespace-only values count as absent.
func (r *Ride) Normalize() {
	r.Driver = strings.TrimSpace(r.Driver)
	r.Rider = strings.TrimSpace(r.Rider)
}

// HasDriver reports whether a driver is set.
func (r *Ride) HasDriver() bool {
	return strings.TrimSpace(r.Driver) != ""
}

// HasRider reports whether a rider is set.
func (r *Ride) HasRider() bool {
	return strings.TrimSpace(r.Rider) != ""
}

// State classifies the ride.
func (r *Ride) State() RideState {
	switch {
	case r.Complete:
		return RideStateCompleted
	case r.HasDriver() && r.HasRider():
		return RideStateAccepted
	case r.HasDriver():
		return RideStateOfferOpen
	case r.HasRider():
		return RideStateRequestOpen
	default:
		return RideStateInvalid
	}
}

// IsOffer reports whether the ride is an open offer.
func (r *Ride) IsOffer() bool { return r.State() == RideStateOfferOpen }

// IsRequest reports whether the ride is an open request.
func (r *Ride) IsRequest() bool { return r.State() == RideStateRequestOpen }

// IsAccepted reports whether both parties are matched and the ride is not complete.
func (r *Ride) IsAccepted() bool { return r.State() == RideStateAccepted }

// IsValid reports whether at least one party is present.
func (r *Ride) IsValid() bool {
	return r.HasDriver() || r.HasRider()
}

// IsParty reports whether user is the driver or the rider.
func (r *Ride) IsParty(user string) bool {
	if user == "" {
		return false
	}
	return r.Driver == user || r.Rider == user
}

// OriginatedAsOffer reports whether the ride was created by a driver.
// Records written before the origin marker existed fall back to the presence of a driver.
func (r *Ride) OriginatedAsOffer() bool {
	switch r.Origin {
	case RideOriginOffer:
		return true
	case RideOriginRequest:
		return false
	default:
		return r.HasDriver()
	}
}
