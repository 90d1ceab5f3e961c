package service

import (
	"context"

	"rideshare/internal/domain"
	"rideshare/internal/repository"
)

// Scope narrows a listing relative to the current user.
type Scope string

const (
	ScopeAll         Scope = "all"
	ScopeExcludeSelf Scope = "exclude_self"
	ScopeOnlySelf    Scope = "only_self"
)

// ParseScope validates a scope string. Empty means ScopeExcludeSelf, which is what a
// user browsing the marketplace wants to see.
func ParseScope(s string) (Scope, error) {
	switch Scope(s) {
	case "":
		return ScopeExcludeSelf, nil
	case ScopeAll, ScopeExcludeSelf, ScopeOnlySelf:
		return Scope(s), nil
	default:
		return "", ErrInvalidScope
	}
}

// ListFilter selects which rides of a category are returned.
// An empty User means the current user.
type ListFilter struct {
	Scope Scope
	User  string
}

// OfferFilter matches open offers; the scope applies to the driver.
func OfferFilter(scope Scope, user string) func(*domain.Ride) bool {
	return func(r *domain.Ride) bool {
		return r.IsOffer() && inScope(scope, r.Driver, user)
	}
}

// RequestFilter matches open requests; the scope applies to the rider.
func RequestFilter(scope Scope, user string) func(*domain.Ride) bool {
	return func(r *domain.Ride) bool {
		return r.IsRequest() && inScope(scope, r.Rider, user)
	}
}

// AcceptedFilter matches accepted rides user takes part in.
func AcceptedFilter(user string) func(*domain.Ride) bool {
	return func(r *domain.Ride) bool {
		return r.IsAccepted() && r.IsParty(user)
	}
}

// PartyFilter matches every ride user takes part in.
func PartyFilter(user string) func(*domain.Ride) bool {
	return func(r *domain.Ride) bool {
		return r.IsParty(user)
	}
}

func inScope(scope Scope, party, user string) bool {
	switch scope {
	case ScopeExcludeSelf:
		return party != user
	case ScopeOnlySelf:
		return party == user
	default:
		return true
	}
}

// GetAllRideOffers lists open offers.
func (s *RideService) GetAllRideOffers(ctx context.Context, filter ListFilter) ([]*domain.Ride, error) {
	user, err := s.filterUser(ctx, filter)
	if err != nil {
		return nil, err
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	return s.rideRepo.Query(ctx, repository.IndexRiderAbsent, OfferFilter(filter.Scope, user))
}

// GetAllRideRequests lists open requests.
func (s *RideService) GetAllRideRequests(ctx context.Context, filter ListFilter) ([]*domain.Ride, error) {
	user, err := s.filterUser(ctx, filter)
	if err != nil {
		return nil, err
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	return s.rideRepo.Query(ctx, repository.IndexDriverAbsent, RequestFilter(filter.Scope, user))
}

// GetAllAcceptedRides lists accepted rides of user, or of the current user if user is empty.
func (s *RideService) GetAllAcceptedRides(ctx context.Context, user string) ([]*domain.Ride, error) {
	if user == "" {
		current, err := s.currentUser(ctx)
		if err != nil {
			return nil, err
		}
		user = current
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	return s.rideRepo.Query(ctx, repository.IndexAll, AcceptedFilter(user))
}

// GetMyRides lists every ride the current user takes part in, completed ones included.
func (s *RideService) GetMyRides(ctx context.Context) ([]*domain.Ride, error) {
	user, err := s.currentUser(ctx)
	if err != nil {
		return nil, err
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	return s.rideRepo.Query(ctx, repository.IndexAll, PartyFilter(user))
}

// Board is the marketplace view of the current user.
type Board struct {
	Offers   []*domain.Ride
	Requests []*domain.Ride
	Accepted []*domain.Ride
	Balance  int
}

// GetBoard fetches other users' offers and requests, the user's accepted rides and
// the balance concurrently.
func (s *RideService) GetBoard(ctx context.Context) (*Board, error) {
	user, err := s.currentUser(ctx)
	if err != nil {
		return nil, err
	}

	filter := ListFilter{Scope: ScopeExcludeSelf, User: user}
	offers := Go(ctx, func(ctx context.Context) ([]*domain.Ride, error) {
		return s.GetAllRideOffers(ctx, filter)
	})
	requests := Go(ctx, func(ctx context.Context) ([]*domain.Ride, error) {
		return s.GetAllRideRequests(ctx, filter)
	})
	accepted := Go(ctx, func(ctx context.Context) ([]*domain.Ride, error) {
		return s.GetAllAcceptedRides(ctx, user)
	})
	balance := Go(ctx, func(ctx context.Context) (int, error) {
		ctx, cancel := s.withTimeout(ctx)
		defer cancel()
		return s.ledger.Balance(ctx, user)
	})

	board := &Board{}
	if board.Offers, err = Await(ctx, offers); err != nil {
		return nil, err
	}
	if board.Requests, err = Await(ctx, requests); err != nil {
		return nil, err
	}
	if board.Accepted, err = Await(ctx, accepted); err != nil {
		return nil, err
	}
	if board.Balance, err = Await(ctx, balance); err != nil {
		return nil, err
	}

	return board, nil
}

func (s *RideService) filterUser(ctx context.Context, filter ListFilter) (string, error) {
	if filter.User != "" {
		return filter.User, nil
	}
	if filter.Scope == ScopeAll || filter.Scope == "" {
		user, _ := s.currentUser(ctx)
		return user, nil
	}
	return s.currentUser(ctx)
}
