package redis

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"strconv"

	"github.com/redis/go-redis/v9"

	"rideshare/internal/domain"
	"rideshare/internal/repository"
)

// RideStore is a Redis implementation of repository.RideRepository.
// Each ride is a hash under rides:{id}; single-field indexes are sets of ids kept
// in step with every write.
type RideStore struct {
	client     *redis.Client
	maxRetries int
}

// NewRideStore creates a new RideStore.
func NewRideStore(client *redis.Client, maxRetries int) *RideStore {
	return &RideStore{client: client, maxRetries: maxRetries}
}

// AllocateID increments counters:lastRideId inside an optimistic transaction.
func (s *RideStore) AllocateID(ctx context.Context) (int64, error) {
	var next int64

	err := transact(ctx, s.client, s.maxRetries, repository.ErrStorageTransaction, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, lastRideIDKey).Int64()
		if err != nil && err != redis.Nil {
			return err
		}

		candidate := current + 1
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, lastRideIDKey, candidate, 0)
			return nil
		})
		if err != nil {
			return err
		}

		next = candidate
		return nil
	}, lastRideIDKey)
	if err != nil {
		return 0, err
	}

	return next, nil
}

// Save overwrites the record at id with every ride field.
// Absent parties are written as empty strings so earlier values never survive.
func (s *RideStore) Save(ctx context.Context, id int64, ride *domain.Ride) error {
	if id <= 0 || ride == nil {
		return repository.ErrInvalidRide
	}

	record := *ride
	record.Normalize()
	record.RideID = id
	if !record.IsValid() {
		return repository.ErrInvalidRide
	}

	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		key := rideKey(id)
		pipe.Del(ctx, key)
		pipe.HSet(ctx, key, encodeRide(&record))
		writeIndexes(ctx, pipe, id, &record)
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %w", repository.ErrStorageWrite, err)
	}

	ride.RideID = id
	return nil
}

// Get retrieves a ride by ID. Returns nil if no ride exists.
func (s *RideStore) Get(ctx context.Context, id int64) (*domain.Ride, error) {
	values, err := s.client.HGetAll(ctx, rideKey(id)).Result()
	if err != nil {
		return nil, err
	}
	if len(values) == 0 {
		return nil, nil
	}

	return decodeRide(id, values)
}

// UpdateFields writes only the named fields of an existing ride.
func (s *RideStore) UpdateFields(ctx context.Context, id int64, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}

	encoded := make(map[string]any, len(fields))
	for name, value := range fields {
		v, err := encodeField(name, value)
		if err != nil {
			return err
		}
		encoded[name] = v
	}

	key := rideKey(id)
	return transact(ctx, s.client, s.maxRetries, repository.ErrStorageWrite, func(tx *redis.Tx) error {
		current, err := readRide(ctx, tx, id)
		if err != nil {
			return err
		}
		if current == nil {
			return abort(repository.ErrNotFound)
		}

		next := *current
		for name, value := range encoded {
			if err := applyField(&next, name, value.(string)); err != nil {
				return abort(err)
			}
		}
		next.Normalize()
		if !next.IsValid() {
			return abort(repository.ErrInvalidRide)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, key, encoded)
			writeIndexes(ctx, pipe, id, &next)
			return nil
		})
		return err
	}, key)
}

// Delete removes a ride. Deleting a missing ride succeeds.
func (s *RideStore) Delete(ctx context.Context, id int64) error {
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		removeRide(ctx, pipe, id)
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %w", repository.ErrStorageWrite, err)
	}
	return nil
}

// Query loads the ids in the index selected by hint and keeps the rides matching pred.
// The id of every record comes from its key, not from the embedded rideId field.
func (s *RideStore) Query(ctx context.Context, hint repository.IndexHint, pred func(*domain.Ride) bool) ([]*domain.Ride, error) {
	indexKey, err := indexKeyFor(hint)
	if err != nil {
		return nil, err
	}

	members, err := s.client.SMembers(ctx, indexKey).Result()
	if err != nil {
		return nil, err
	}
	if len(members) == 0 {
		return []*domain.Ride{}, nil
	}

	ids := make([]int64, 0, len(members))
	for _, m := range members {
		id, err := strconv.ParseInt(m, 10, 64)
		if err != nil || id <= 0 {
			log.Printf("ride index %s: skipping malformed member %q", indexKey, m)
			continue
		}
		ids = append(ids, id)
	}

	// Use pipeline for batch get.
	pipe := s.client.Pipeline()
	cmds := make(map[int64]*redis.MapStringStringCmd, len(ids))
	for _, id := range ids {
		cmds[id] = pipe.HGetAll(ctx, rideKey(id))
	}
	if _, err := pipe.Exec(ctx); err != nil && err != redis.Nil {
		return nil, err
	}

	rides := make([]*domain.Ride, 0, len(ids))
	for id, cmd := range cmds {
		values, err := cmd.Result()
		if err != nil || len(values) == 0 {
			// Index entry outlived its record.
			continue
		}

		ride, err := decodeRide(id, values)
		if err != nil {
			log.Printf("ride %d: skipping undecodable record: %v", id, err)
			continue
		}

		if pred == nil || pred(ride) {
			rides = append(rides, ride)
		}
	}

	sort.Slice(rides, func(i, j int) bool { return rides[i].RideID < rides[j].RideID })
	return rides, nil
}

// Mutate runs fn on the current ride under WATCH and writes back only the fields
// that changed.
func (s *RideStore) Mutate(ctx context.Context, id int64, fn repository.RideMutation) (*domain.Ride, error) {
	key := rideKey(id)
	var committed *domain.Ride

	err := transact(ctx, s.client, s.maxRetries, repository.ErrStorageTransaction, func(tx *redis.Tx) error {
		current, err := readRide(ctx, tx, id)
		if err != nil {
			return err
		}
		if current == nil {
			return abort(repository.ErrNotFound)
		}

		snapshot := *current
		next, err := fn(&snapshot)
		if err != nil {
			return abort(err)
		}
		if next == nil {
			committed = current
			return nil
		}

		updated := *next
		updated.RideID = id
		updated.Normalize()
		if !updated.IsValid() {
			return abort(repository.ErrInvalidRide)
		}

		changed := diffFields(current, &updated)
		if len(changed) == 0 {
			committed = current
			return nil
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, key, changed)
			writeIndexes(ctx, pipe, id, &updated)
			return nil
		})
		if err != nil {
			return err
		}

		committed = &updated
		return nil
	}, key)
	if err != nil {
		return nil, err
	}

	return committed, nil
}

// Remove deletes the ride under WATCH after check accepts it and returns the removed record.
// Only one of several concurrent removers receives the record; the others see nil.
func (s *RideStore) Remove(ctx context.Context, id int64, check repository.RideCheck) (*domain.Ride, error) {
	key := rideKey(id)
	var removed *domain.Ride

	err := transact(ctx, s.client, s.maxRetries, repository.ErrStorageTransaction, func(tx *redis.Tx) error {
		removed = nil

		current, err := readRide(ctx, tx, id)
		if err != nil {
			return err
		}
		if current == nil {
			return nil
		}

		if check != nil {
			if err := check(current); err != nil {
				return abort(err)
			}
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			removeRide(ctx, pipe, id)
			return nil
		})
		if err != nil {
			return err
		}

		removed = current
		return nil
	}, key)
	if err != nil {
		return nil, err
	}

	return removed, nil
}

func readRide(ctx context.Context, tx *redis.Tx, id int64) (*domain.Ride, error) {
	values, err := tx.HGetAll(ctx, rideKey(id)).Result()
	if err != nil {
		return nil, err
	}
	if len(values) == 0 {
		return nil, nil
	}

	ride, err := decodeRide(id, values)
	if err != nil {
		return nil, abort(err)
	}
	return ride, nil
}

func indexKeyFor(hint repository.IndexHint) (string, error) {
	switch hint {
	case repository.IndexAll, "":
		return allRidesKey, nil
	case repository.IndexRiderAbsent:
		return riderAbsentIndexKey, nil
	case repository.IndexDriverAbsent:
		return driverAbsentIndexKey, nil
	default:
		return "", fmt.Errorf("unknown index hint %q", hint)
	}
}

func writeIndexes(ctx context.Context, pipe redis.Pipeliner, id int64, ride *domain.Ride) {
	member := strconv.FormatInt(id, 10)
	pipe.SAdd(ctx, allRidesKey, member)

	if ride.HasRider() {
		pipe.SRem(ctx, riderAbsentIndexKey, member)
	} else {
		pipe.SAdd(ctx, riderAbsentIndexKey, member)
	}

	if ride.HasDriver() {
		pipe.SRem(ctx, driverAbsentIndexKey, member)
	} else {
		pipe.SAdd(ctx, driverAbsentIndexKey, member)
	}
}

func removeRide(ctx context.Context, pipe redis.Pipeliner, id int64) {
	member := strconv.FormatInt(id, 10)
	pipe.Del(ctx, rideKey(id))
	pipe.SRem(ctx, allRidesKey, member)
	pipe.SRem(ctx, riderAbsentIndexKey, member)
	pipe.SRem(ctx, driverAbsentIndexKey, member)
}

func encodeRide(r *domain.Ride) map[string]any {
	return map[string]any{
		fieldDateTime: r.DateTime,
		fieldDriver:   r.Driver,
		fieldRider:    r.Rider,
		fieldTo:       r.To,
		fieldFrom:     r.From,
		fieldComplete: strconv.FormatBool(r.Complete),
		fieldRideID:   strconv.FormatInt(r.RideID, 10),
		fieldOrigin:   string(r.Origin),
	}
}

// decodeRide maps a stored hash to a ride. id is authoritative; the embedded
// rideId field is ignored.
func decodeRide(id int64, values map[string]string) (*domain.Ride, error) {
	ride := &domain.Ride{RideID: id}
	for name, value := range values {
		if name == fieldRideID {
			continue
		}
		if err := applyField(ride, name, value); err != nil {
			if errors.Is(err, repository.ErrInvalidField) {
				// Unknown extra properties are ignored.
				continue
			}
			return nil, err
		}
	}
	ride.Normalize()
	return ride, nil
}

func applyField(r *domain.Ride, name, value string) error {
	switch name {
	case fieldDateTime:
		r.DateTime = value
	case fieldDriver:
		r.Driver = value
	case fieldRider:
		r.Rider = value
	case fieldTo:
		r.To = value
	case fieldFrom:
		r.From = value
	case fieldOrigin:
		r.Origin = domain.RideOrigin(value)
	case fieldComplete:
		complete, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("field %s: %w", name, err)
		}
		r.Complete = complete
	default:
		return fmt.Errorf("%w: %s", repository.ErrInvalidField, name)
	}
	return nil
}

// encodeField converts a partial-update value to its stored string form.
func encodeField(name string, value any) (string, error) {
	switch name {
	case fieldComplete:
		b, ok := value.(bool)
		if !ok {
			return "", fmt.Errorf("%w: %s must be a bool", repository.ErrInvalidField, name)
		}
		return strconv.FormatBool(b), nil
	case fieldDateTime, fieldDriver, fieldRider, fieldTo, fieldFrom, fieldOrigin:
		switch v := value.(type) {
		case string:
			return v, nil
		case nil:
			return "", nil
		case domain.RideOrigin:
			return string(v), nil
		default:
			return "", fmt.Errorf("%w: %s must be a string", repository.ErrInvalidField, name)
		}
	default:
		return "", fmt.Errorf("%w: %s", repository.ErrInvalidField, name)
	}
}

func diffFields(before, after *domain.Ride) map[string]any {
	old := encodeRide(before)
	changed := make(map[string]any)
	for name, value := range encodeRide(after) {
		if name == fieldRideID {
			continue
		}
		if old[name] != value {
			changed[name] = value
		}
	}
	return changed
}
