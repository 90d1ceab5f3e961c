package domain

import "testing"

func TestRideState(t *testing.T) {
	tests := []struct {
		name string
		ride Ride
		want RideState
	}{
		{"offer", Ride{Driver: "d"}, RideStateOfferOpen},
		{"request", Ride{Rider: "r"}, RideStateRequestOpen},
		{"accepted", Ride{Driver: "d", Rider: "r"}, RideStateAccepted},
		{"completed", Ride{Driver: "d", Rider: "r", Complete: true}, RideStateCompleted},
		{"no parties", Ride{}, RideStateInvalid},
		{"blank parties", Ride{Driver: " ", Rider: "\t"}, RideStateInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.ride.State(); got != tt.want {
				t.Errorf("State() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestRideNormalize(t *testing.T) {
	r := Ride{Driver: "  ", Rider: " r@x.com "}
	r.Normalize()

	if r.Driver != "" || r.Rider != "r@x.com" {
		t.Errorf("unexpected normalized ride %+v", r)
	}
	if !r.IsRequest() {
		t.Error("expected blank driver to count as absent")
	}
}

func TestRideIsParty(t *testing.T) {
	r := Ride{Driver: "d", Rider: "r"}

	if !r.IsParty("d") || !r.IsParty("r") {
		t.Error("expected both parties recognized")
	}
	if r.IsParty("x") || r.IsParty("") {
		t.Error("expected outsiders and blank users rejected")
	}
}

func TestRideOriginatedAsOffer(t *testing.T) {
	tests := []struct {
		name string
		ride Ride
		want bool
	}{
		{"offer origin", Ride{Driver: "d", Rider: "r", Origin: RideOriginOffer}, true},
		{"request origin with driver", Ride{Driver: "d", Rider: "r", Origin: RideOriginRequest}, false},
		{"legacy with driver", Ride{Driver: "d"}, true},
		{"legacy without driver", Ride{Rider: "r"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.ride.OriginatedAsOffer(); got != tt.want {
				t.Errorf("OriginatedAsOffer() = %v, want %v", got, tt.want)
			}
		})
	}
}
