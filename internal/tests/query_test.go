package tests

import (
	"context"
	"errors"
	"testing"

	"rideshare/internal/domain"
	"rideshare/internal/service"
)

// seedMarketplace creates:
//
//	1: offer by alice      2: request by bob     3: offer by carol
//	4: offer by alice accepted by dave           5: request by carol accepted by alice, completed
func seedMarketplace(t *testing.T) *Fixture {
	t.Helper()
	f := NewFixture()

	mustCreate := func(user string, req service.CreateRideRequest) *domain.Ride {
		ride, err := f.Service.CreateRide(As(user), req)
		if err != nil {
			t.Fatalf("CreateRide: %v", err)
		}
		return ride
	}

	mustCreate(alice, offer())
	mustCreate(bob, request())
	mustCreate(carol, offer())
	accepted := mustCreate(alice, offer())
	if _, err := f.Service.AcceptRide(As(dave), accepted.RideID); err != nil {
		t.Fatalf("AcceptRide: %v", err)
	}
	done := mustCreate(carol, request())
	if _, err := f.Service.AcceptRide(As(alice), done.RideID); err != nil {
		t.Fatalf("AcceptRide: %v", err)
	}
	if _, err := f.Service.CompleteRide(As(alice), done.RideID); err != nil {
		t.Fatalf("CompleteRide: %v", err)
	}

	return f
}

func rideIDs(rides []*domain.Ride) []int64 {
	ids := make([]int64, 0, len(rides))
	for _, r := range rides {
		ids = append(ids, r.RideID)
	}
	return ids
}

func equalIDs(got []int64, want ...int64) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range got {
		if got[i] != want[i] {
			return false
		}
	}
	return true
}

func TestGetAllRideOffers_Scopes(t *testing.T) {
	f := seedMarketplace(t)

	testCases := []struct {
		name  string
		scope service.Scope
		want  []int64
	}{
		{"all", service.ScopeAll, []int64{1, 3}},
		{"exclude self", service.ScopeExcludeSelf, []int64{3}},
		{"only self", service.ScopeOnlySelf, []int64{1}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rides, err := f.Service.GetAllRideOffers(As(alice), service.ListFilter{Scope: tc.scope})
			if err != nil {
				t.Fatalf("GetAllRideOffers: %v", err)
			}
			if got := rideIDs(rides); !equalIDs(got, tc.want...) {
				t.Errorf("expected %v, got %v", tc.want, got)
			}
		})
	}
}

func TestGetAllRideRequests_Scopes(t *testing.T) {
	f := seedMarketplace(t)

	mine, err := f.Service.GetAllRideRequests(As(bob), service.ListFilter{Scope: service.ScopeOnlySelf})
	if err != nil {
		t.Fatalf("GetAllRideRequests: %v", err)
	}
	if got := rideIDs(mine); !equalIDs(got, 2) {
		t.Errorf("expected [2], got %v", got)
	}

	others, _ := f.Service.GetAllRideRequests(As(bob), service.ListFilter{Scope: service.ScopeExcludeSelf})
	if len(others) != 0 {
		t.Errorf("expected no requests from others, got %v", rideIDs(others))
	}

	// Completed requests never show up as open.
	all, _ := f.Service.GetAllRideRequests(context.Background(), service.ListFilter{Scope: service.ScopeAll})
	if got := rideIDs(all); !equalIDs(got, 2) {
		t.Errorf("expected [2], got %v", got)
	}
}

func TestListings_ExplicitUserOverridesSession(t *testing.T) {
	f := seedMarketplace(t)

	rides, err := f.Service.GetAllRideOffers(context.Background(), service.ListFilter{Scope: service.ScopeOnlySelf, User: carol})
	if err != nil {
		t.Fatalf("GetAllRideOffers: %v", err)
	}
	if got := rideIDs(rides); !equalIDs(got, 3) {
		t.Errorf("expected [3], got %v", got)
	}
}

func TestListings_SelfScopesNeedAUser(t *testing.T) {
	f := seedMarketplace(t)

	_, err := f.Service.GetAllRideOffers(context.Background(), service.ListFilter{Scope: service.ScopeExcludeSelf})
	if !errors.Is(err, service.ErrUnauthenticated) {
		t.Errorf("expected ErrUnauthenticated, got %v", err)
	}
}

func TestGetAllAcceptedRides(t *testing.T) {
	f := seedMarketplace(t)

	dave4, err := f.Service.GetAllAcceptedRides(As(dave), "")
	if err != nil {
		t.Fatalf("GetAllAcceptedRides: %v", err)
	}
	if got := rideIDs(dave4); !equalIDs(got, 4) {
		t.Errorf("expected [4], got %v", got)
	}

	// Completed ride 5 is no longer accepted.
	aliceRides, _ := f.Service.GetAllAcceptedRides(context.Background(), alice)
	if got := rideIDs(aliceRides); !equalIDs(got, 4) {
		t.Errorf("expected [4], got %v", got)
	}

	bobRides, _ := f.Service.GetAllAcceptedRides(As(bob), "")
	if len(bobRides) != 0 {
		t.Errorf("expected none for bob, got %v", rideIDs(bobRides))
	}

	if _, err := f.Service.GetAllAcceptedRides(context.Background(), ""); !errors.Is(err, service.ErrUnauthenticated) {
		t.Errorf("expected ErrUnauthenticated, got %v", err)
	}
}

func TestGetMyRides_IncludesCompleted(t *testing.T) {
	f := seedMarketplace(t)

	rides, err := f.Service.GetMyRides(As(alice))
	if err != nil {
		t.Fatalf("GetMyRides: %v", err)
	}
	if got := rideIDs(rides); !equalIDs(got, 1, 4, 5) {
		t.Errorf("expected [1 4 5], got %v", got)
	}
}

func TestGetBoard(t *testing.T) {
	f := seedMarketplace(t)

	board, err := f.Service.GetBoard(As(dave))
	if err != nil {
		t.Fatalf("GetBoard: %v", err)
	}

	if got := rideIDs(board.Offers); !equalIDs(got, 1, 3) {
		t.Errorf("offers: expected [1 3], got %v", got)
	}
	if got := rideIDs(board.Requests); !equalIDs(got, 2) {
		t.Errorf("requests: expected [2], got %v", got)
	}
	if got := rideIDs(board.Accepted); !equalIDs(got, 4) {
		t.Errorf("accepted: expected [4], got %v", got)
	}
	if board.Balance != domain.StartingBalance {
		t.Errorf("expected balance %d, got %d", domain.StartingBalance, board.Balance)
	}
}

func TestGetBoard_PropagatesQueryError(t *testing.T) {
	f := seedMarketplace(t)
	f.Rides.QueryError = errors.New("index unavailable")

	if _, err := f.Service.GetBoard(As(dave)); err == nil {
		t.Fatal("expected error")
	}
}
