package service

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"rideshare/internal/domain"
	"rideshare/internal/identity"
	"rideshare/internal/repository"
)

// RideService handles the ride lifecycle and its points side effects.
type RideService struct {
	rideRepo  repository.RideRepository
	ledger    Ledger
	identity  identity.Provider
	notifier  *NotificationService
	opTimeout time.Duration
}

// NewRideService creates a new RideService. notifier may be nil.
// A zero opTimeout leaves deadlines to the caller.
func NewRideService(
	rideRepo repository.RideRepository,
	ledger Ledger,
	identityProvider identity.Provider,
	notifier *NotificationService,
	opTimeout time.Duration,
) *RideService {
	return &RideService{
		rideRepo:  rideRepo,
		ledger:    ledger,
		identity:  identityProvider,
		notifier:  notifier,
		opTimeout: opTimeout,
	}
}

// CreateRideRequest contains the parameters for posting a ride.
type CreateRideRequest struct {
	AsDriver bool // True posts an offer, false posts a request.
	DateTime string
	From     string
	To       string
}

// CreateRide posts an offer or a request for the current user.
// A request costs domain.RequestCost points, debited before anything is written.
func (s *RideService) CreateRide(ctx context.Context, req CreateRideRequest) (*domain.Ride, error) {
	user, err := s.currentUser(ctx)
	if err != nil {
		return nil, err
	}

	if err := validateRideFields(req.DateTime, req.From, req.To); err != nil {
		return nil, err
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	ride := &domain.Ride{
		DateTime: strings.TrimSpace(req.DateTime),
		From:     strings.TrimSpace(req.From),
		To:       strings.TrimSpace(req.To),
	}
	if req.AsDriver {
		ride.Driver = user
		ride.Origin = domain.RideOriginOffer
	} else {
		ride.Rider = user
		ride.Origin = domain.RideOriginRequest
	}

	// Requests pay up front. Nothing has been written yet if this fails.
	var debitKey string
	if !req.AsDriver {
		debitKey = "debit:request:" + uuid.New().String()
		if _, err := s.ledger.Adjust(ctx, AdjustRequest{
			UserID:         user,
			Delta:          -domain.RequestCost,
			Reason:         domain.AdjustmentRequestDebit,
			IdempotencyKey: debitKey,
		}); err != nil {
			return nil, err
		}
	}

	id, err := s.rideRepo.AllocateID(ctx)
	if err != nil {
		s.refundFailedCreate(ctx, user, debitKey, 0)
		return nil, err
	}

	if err := s.rideRepo.Save(ctx, id, ride); err != nil {
		s.refundFailedCreate(ctx, user, debitKey, id)
		return nil, err
	}

	return ride, nil
}

// AcceptRide fills the missing side of an open offer or request with the current user.
// The check and the write happen in one conditional transaction, so of several
// concurrent accepts at most one succeeds.
func (s *RideService) AcceptRide(ctx context.Context, rideID int64) (*domain.Ride, error) {
	user, err := s.currentUser(ctx)
	if err != nil {
		return nil, err
	}

	if rideID <= 0 {
		return nil, ErrInvalidRideID
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	ride, err := s.rideRepo.Mutate(ctx, rideID, func(current *domain.Ride) (*domain.Ride, error) {
		if current.IsParty(user) {
			return nil, ErrInvalidState
		}

		switch current.State() {
		case domain.RideStateOfferOpen:
			current.Rider = user
		case domain.RideStateRequestOpen:
			current.Driver = user
		default:
			return nil, ErrInvalidState
		}
		return current, nil
	})
	if err != nil {
		return nil, err
	}

	s.notifier.NotifyRideAccepted(ctx, ride, user)
	return ride, nil
}

// UpdateRideRequest contains the replacement values for a ride.
// A nil Driver or Rider keeps the current party; an empty string clears it.
type UpdateRideRequest struct {
	DateTime string
	From     string
	To       string
	Driver   *string
	Rider    *string
}

// UpdateRide replaces the mutable fields of a ride the current user is a party to.
func (s *RideService) UpdateRide(ctx context.Context, rideID int64, req UpdateRideRequest) (*domain.Ride, error) {
	user, err := s.currentUser(ctx)
	if err != nil {
		return nil, err
	}

	if rideID <= 0 {
		return nil, ErrInvalidRideID
	}

	if err := validateRideFields(req.DateTime, req.From, req.To); err != nil {
		return nil, err
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	return s.rideRepo.Mutate(ctx, rideID, func(current *domain.Ride) (*domain.Ride, error) {
		if !current.IsParty(user) {
			return nil, ErrUnauthorized
		}
		if current.Complete {
			return nil, ErrInvalidState
		}

		next := &domain.Ride{
			RideID:   rideID,
			DateTime: strings.TrimSpace(req.DateTime),
			From:     strings.TrimSpace(req.From),
			To:       strings.TrimSpace(req.To),
			Driver:   current.Driver,
			Rider:    current.Rider,
			Complete: current.Complete,
			Origin:   current.Origin,
		}

		if req.Driver != nil {
			driver, err := replaceParty(current.Driver, *req.Driver, user)
			if err != nil {
				return nil, err
			}
			next.Driver = driver
		}
		if req.Rider != nil {
			rider, err := replaceParty(current.Rider, *req.Rider, user)
			if err != nil {
				return nil, err
			}
			next.Rider = rider
		}

		if !next.IsValid() {
			return nil, ErrInvalidRideInput
		}
		if next.HasDriver() && next.Driver == next.Rider {
			return nil, ErrInvalidState
		}
		if switchesSide(current, next) {
			return nil, ErrInvalidState
		}
		return next, nil
	})
}

// CompleteRide marks a matched ride complete. Completing a completed ride is a no-op.
// The driver of a ride that started as an offer earns domain.CompletionReward.
func (s *RideService) CompleteRide(ctx context.Context, rideID int64) (*domain.Ride, error) {
	user, err := s.currentUser(ctx)
	if err != nil {
		return nil, err
	}

	if rideID <= 0 {
		return nil, ErrInvalidRideID
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var rewardDriver string
	completedNow := false
	ride, err := s.rideRepo.Mutate(ctx, rideID, func(current *domain.Ride) (*domain.Ride, error) {
		rewardDriver = ""
		completedNow = false

		if !current.IsParty(user) {
			return nil, ErrUnauthorized
		}
		if current.Complete {
			return nil, nil
		}
		if !current.IsAccepted() {
			return nil, ErrInvalidState
		}

		if current.HasDriver() && current.OriginatedAsOffer() {
			rewardDriver = current.Driver
		}
		current.Complete = true
		completedNow = true
		return current, nil
	})
	if err != nil {
		return nil, err
	}

	if completedNow {
		s.notifier.NotifyRideCompleted(ctx, ride, user)
	}

	if rewardDriver != "" {
		s.payReward(ctx, rewardDriver, rideID)
	}

	return ride, nil
}

// DeleteRide removes a ride the current user is a party to. A missing ride counts as
// deleted. Deleting an open request refunds domain.RequestCost to the rider.
func (s *RideService) DeleteRide(ctx context.Context, rideID int64) error {
	user, err := s.currentUser(ctx)
	if err != nil {
		return err
	}

	if rideID <= 0 {
		return ErrInvalidRideID
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	removed, err := s.rideRepo.Remove(ctx, rideID, func(current *domain.Ride) error {
		if !current.IsParty(user) {
			return ErrUnauthorized
		}
		return nil
	})
	if err != nil {
		return err
	}

	if removed == nil {
		return nil
	}

	s.notifier.NotifyRideCancelled(ctx, removed, user)
	// Only a ride created as a request was debited.
	if !removed.IsRequest() || removed.Origin == domain.RideOriginOffer {
		return nil
	}

	if _, err := s.ledger.Compensate(ctx, AdjustRequest{
		UserID:         removed.Rider,
		Delta:          domain.RequestCost,
		Reason:         domain.AdjustmentRequestRefund,
		RideID:         rideID,
		IdempotencyKey: fmt.Sprintf("refund:delete:%d", rideID),
	}); err != nil {
		return fmt.Errorf("ride %d deleted but refund not credited: %w", rideID, err)
	}

	return nil
}

// GetRide retrieves a ride by ID. Returns nil if the ride does not exist.
func (s *RideService) GetRide(ctx context.Context, rideID int64) (*domain.Ride, error) {
	if rideID <= 0 {
		return nil, ErrInvalidRideID
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	return s.rideRepo.Get(ctx, rideID)
}

// GetBalance returns the points balance of the current user.
func (s *RideService) GetBalance(ctx context.Context) (int, error) {
	user, err := s.currentUser(ctx)
	if err != nil {
		return 0, err
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	return s.ledger.Balance(ctx, user)
}

// GetNotifications returns up to limit recent notifications of the current user.
func (s *RideService) GetNotifications(ctx context.Context, limit int) ([]*domain.Notification, error) {
	user, err := s.currentUser(ctx)
	if err != nil {
		return nil, err
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	return s.notifier.Recent(ctx, user, limit)
}

// payReward credits the completion reward to driver. The ride is already complete, so
// a reward that can be neither credited nor deferred is logged, not returned.
func (s *RideService) payReward(ctx context.Context, driver string, rideID int64) {
	key := fmt.Sprintf("reward:%d", rideID)
	credited, err := s.ledger.Compensate(ctx, AdjustRequest{
		UserID:         driver,
		Delta:          domain.CompletionReward,
		Reason:         domain.AdjustmentCompletionReward,
		RideID:         rideID,
		IdempotencyKey: key,
	})
	if err != nil {
		log.Printf("ride service: %s for %s lost: %v", key, driver, err)
		return
	}
	if credited {
		s.notifier.NotifyPointsCredited(ctx, driver, domain.CompletionReward, domain.AdjustmentCompletionReward, rideID)
	}
}

// refundFailedCreate reverses the debit of a request whose ride was never written.
// It runs even if the caller's context is already done.
func (s *RideService) refundFailedCreate(ctx context.Context, user, debitKey string, rideID int64) {
	if debitKey == "" {
		return
	}

	ctx, cancel := s.withTimeout(context.WithoutCancel(ctx))
	defer cancel()

	_, err := s.ledger.Compensate(ctx, AdjustRequest{
		UserID:         user,
		Delta:          domain.RequestCost,
		Reason:         domain.AdjustmentRequestRefund,
		RideID:         rideID,
		IdempotencyKey: "refund:" + debitKey,
	})
	if err != nil {
		log.Printf("ride service: refund of %s for %s lost: %v", debitKey, user, err)
	}
}

func (s *RideService) currentUser(ctx context.Context) (string, error) {
	if s.identity == nil {
		return "", ErrUnauthenticated
	}
	user, ok := s.identity.CurrentUser(ctx)
	if !ok {
		return "", ErrUnauthenticated
	}
	return user, nil
}

func (s *RideService) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.opTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.opTimeout)
}

// replaceParty allows keeping the current party, clearing it, or taking the seat
// for the current user. Any other identifier is rejected.
func replaceParty(current, requested, user string) (string, error) {
	requested = strings.TrimSpace(requested)
	switch requested {
	case "", current, user:
		return requested, nil
	default:
		return "", ErrUnauthorized
	}
}

// switchesSide reports whether next would be open on the opposite side from the one
// the ride was created on.
func switchesSide(current, next *domain.Ride) bool {
	asOffer := current.OriginatedAsOffer()
	switch next.State() {
	case domain.RideStateRequestOpen:
		return asOffer
	case domain.RideStateOfferOpen:
		return !asOffer
	default:
		return false
	}
}

func validateRideFields(dateTime, from, to string) error {
	if strings.TrimSpace(dateTime) == "" || strings.TrimSpace(from) == "" || strings.TrimSpace(to) == "" {
		return ErrInvalidRideInput
	}
	return nil
}
