package tests

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"rideshare/internal/domain"
	"rideshare/internal/identity"
	"rideshare/internal/repository"
	"rideshare/internal/service"
)

// ──────────────────────────────────────────────
// MOCK RIDE REPOSITORY
// ──────────────────────────────────────────────

// MockRideRepository is an in-memory implementation of RideRepository.
// Mutate and Remove run under the repository lock, so they behave like the
// conditional transactions of the real store.
type MockRideRepository struct {
	mu     sync.Mutex
	rides  map[int64]*domain.Ride
	lastID int64

	// Counters for verification
	AllocateCallCount int32
	SaveCallCount     int32
	MutateCallCount   int32
	RemoveCallCount   int32
	QueryCallCount    int32

	// Error injection
	AllocateError error
	SaveError     error
	QueryError    error
}

// NewMockRideRepository creates a new mock ride repository.
func NewMockRideRepository() *MockRideRepository {
	return &MockRideRepository{
		rides: make(map[int64]*domain.Ride),
	}
}

// AddRide stores a ride directly, bypassing validation.
func (m *MockRideRepository) AddRide(ride *domain.Ride) {
	m.mu.Lock()
	defer m.mu.Unlock()
	copy := *ride
	m.rides[ride.RideID] = &copy
	if ride.RideID > m.lastID {
		m.lastID = ride.RideID
	}
}

// Count returns the number of stored rides.
func (m *MockRideRepository) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.rides)
}

func (m *MockRideRepository) AllocateID(ctx context.Context) (int64, error) {
	atomic.AddInt32(&m.AllocateCallCount, 1)
	if m.AllocateError != nil {
		return 0, m.AllocateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastID++
	return m.lastID, nil
}

func (m *MockRideRepository) Save(ctx context.Context, id int64, ride *domain.Ride) error {
	atomic.AddInt32(&m.SaveCallCount, 1)
	if m.SaveError != nil {
		return m.SaveError
	}
	copy := *ride
	copy.Normalize()
	copy.RideID = id
	if id <= 0 || !copy.IsValid() {
		return repository.ErrInvalidRide
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rides[id] = &copy
	ride.RideID = id
	return nil
}

func (m *MockRideRepository) Get(ctx context.Context, id int64) (*domain.Ride, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ride, ok := m.rides[id]
	if !ok {
		return nil, nil
	}
	copy := *ride
	return &copy, nil
}

func (m *MockRideRepository) UpdateFields(ctx context.Context, id int64, fields map[string]any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	ride, ok := m.rides[id]
	if !ok {
		return repository.ErrNotFound
	}
	next := *ride
	for name, value := range fields {
		switch name {
		case "driver":
			next.Driver, _ = value.(string)
		case "rider":
			next.Rider, _ = value.(string)
		case "complete":
			b, ok := value.(bool)
			if !ok {
				return repository.ErrInvalidField
			}
			next.Complete = b
		default:
			return repository.ErrInvalidField
		}
	}
	next.Normalize()
	if !next.IsValid() {
		return repository.ErrInvalidRide
	}
	m.rides[id] = &next
	return nil
}

func (m *MockRideRepository) Delete(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.rides, id)
	return nil
}

func (m *MockRideRepository) Query(ctx context.Context, hint repository.IndexHint, pred func(*domain.Ride) bool) ([]*domain.Ride, error) {
	atomic.AddInt32(&m.QueryCallCount, 1)
	if m.QueryError != nil {
		return nil, m.QueryError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]*domain.Ride, 0, len(m.rides))
	for _, ride := range m.rides {
		switch hint {
		case repository.IndexRiderAbsent:
			if ride.HasRider() {
				continue
			}
		case repository.IndexDriverAbsent:
			if ride.HasDriver() {
				continue
			}
		}
		copy := *ride
		if pred == nil || pred(&copy) {
			result = append(result, &copy)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].RideID < result[j].RideID })
	return result, nil
}

func (m *MockRideRepository) Mutate(ctx context.Context, id int64, fn repository.RideMutation) (*domain.Ride, error) {
	atomic.AddInt32(&m.MutateCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	ride, ok := m.rides[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	snapshot := *ride
	next, err := fn(&snapshot)
	if err != nil {
		return nil, err
	}
	if next == nil {
		copy := *ride
		return &copy, nil
	}
	updated := *next
	updated.RideID = id
	updated.Normalize()
	if !updated.IsValid() {
		return nil, repository.ErrInvalidRide
	}
	m.rides[id] = &updated
	result := updated
	return &result, nil
}

func (m *MockRideRepository) Remove(ctx context.Context, id int64, check repository.RideCheck) (*domain.Ride, error) {
	atomic.AddInt32(&m.RemoveCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	ride, ok := m.rides[id]
	if !ok {
		return nil, nil
	}
	if check != nil {
		if err := check(ride); err != nil {
			return nil, err
		}
	}
	delete(m.rides, id)
	return ride, nil
}

// ──────────────────────────────────────────────
// MOCK POINTS REPOSITORY
// ──────────────────────────────────────────────

// MockPointsRepository is an in-memory implementation of PointsRepository.
type MockPointsRepository struct {
	mu       sync.Mutex
	balances map[string]int
	applied  map[string]map[string]bool

	// Counters for verification
	AdjustCallCount int32

	// Error injection; consulted before every adjustment.
	AdjustHook func(userID string, delta int, key string) error
}

// NewMockPointsRepository creates a new mock points repository.
func NewMockPointsRepository() *MockPointsRepository {
	return &MockPointsRepository{
		balances: make(map[string]int),
		applied:  make(map[string]map[string]bool),
	}
}

// SetBalance stores a balance directly.
func (m *MockPointsRepository) SetBalance(userID string, balance int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.balances[userID] = balance
}

// HasRecord reports whether a balance was ever written for userID.
func (m *MockPointsRepository) HasRecord(userID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.balances[userID]
	return ok
}

func (m *MockPointsRepository) Balance(ctx context.Context, userID string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if balance, ok := m.balances[userID]; ok {
		return balance, nil
	}
	return domain.StartingBalance, nil
}

func (m *MockPointsRepository) Adjust(ctx context.Context, userID string, delta int, key string) (int, bool, error) {
	atomic.AddInt32(&m.AdjustCallCount, 1)
	if m.AdjustHook != nil {
		if err := m.AdjustHook(userID, delta, key); err != nil {
			return 0, false, err
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	current, ok := m.balances[userID]
	if !ok {
		current = domain.StartingBalance
	}
	if key != "" && m.applied[userID][key] {
		return current, false, nil
	}
	if delta < 0 && current < -delta {
		return 0, false, repository.ErrInsufficientPoints
	}

	m.balances[userID] = current + delta
	if key != "" {
		if m.applied[userID] == nil {
			m.applied[userID] = make(map[string]bool)
		}
		m.applied[userID][key] = true
	}
	return current + delta, true, nil
}

// ──────────────────────────────────────────────
// MOCK ADJUSTMENT REPOSITORY
// ──────────────────────────────────────────────

// MockAdjustmentRepository is an in-memory adjustment journal.
type MockAdjustmentRepository struct {
	mu    sync.Mutex
	rows  map[string]*domain.PointsAdjustment
	byKey map[string]string

	// Counters for verification
	CreateCallCount int32

	// Error injection
	CreateError error
}

// NewMockAdjustmentRepository creates a new mock adjustment repository.
func NewMockAdjustmentRepository() *MockAdjustmentRepository {
	return &MockAdjustmentRepository{
		rows:  make(map[string]*domain.PointsAdjustment),
		byKey: make(map[string]string),
	}
}

// All returns every journaled adjustment ordered by creation.
func (m *MockAdjustmentRepository) All() []*domain.PointsAdjustment {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]*domain.PointsAdjustment, 0, len(m.rows))
	for _, row := range m.rows {
		copy := *row
		result = append(result, &copy)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.Before(result[j].CreatedAt) })
	return result
}

func (m *MockAdjustmentRepository) Create(ctx context.Context, adj *domain.PointsAdjustment) error {
	atomic.AddInt32(&m.CreateCallCount, 1)
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byKey[adj.IdempotencyKey]; ok {
		return repository.ErrDuplicate
	}
	copy := *adj
	m.rows[adj.ID] = &copy
	m.byKey[adj.IdempotencyKey] = adj.ID
	return nil
}

func (m *MockAdjustmentRepository) GetByIdempotencyKey(ctx context.Context, key string) (*domain.PointsAdjustment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id, ok := m.byKey[key]
	if !ok {
		return nil, nil
	}
	copy := *m.rows[id]
	return &copy, nil
}

func (m *MockAdjustmentRepository) ListPending(ctx context.Context, limit int) ([]*domain.PointsAdjustment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]*domain.PointsAdjustment, 0)
	for _, row := range m.rows {
		if row.Status == domain.AdjustmentStatusPending {
			copy := *row
			result = append(result, &copy)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.Before(result[j].CreatedAt) })
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (m *MockAdjustmentRepository) UpdateStatus(ctx context.Context, id string, status domain.AdjustmentStatus, attempts int, lastError string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	row, ok := m.rows[id]
	if !ok {
		return repository.ErrNotFound
	}
	row.Status = status
	row.Attempts = attempts
	row.LastError = lastError
	row.UpdatedAt = time.Now()
	return nil
}

// ──────────────────────────────────────────────
// MOCK ACCOUNT REPOSITORY
// ──────────────────────────────────────────────

// MockAccountRepository is an in-memory account store.
type MockAccountRepository struct {
	mu       sync.Mutex
	accounts map[string]*domain.Account
}

// NewMockAccountRepository creates a new mock account repository.
func NewMockAccountRepository() *MockAccountRepository {
	return &MockAccountRepository{accounts: make(map[string]*domain.Account)}
}

func (m *MockAccountRepository) Create(ctx context.Context, account *domain.Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.accounts[account.Email]; ok {
		return repository.ErrDuplicate
	}
	copy := *account
	m.accounts[account.Email] = &copy
	return nil
}

func (m *MockAccountRepository) GetByEmail(ctx context.Context, email string) (*domain.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	account, ok := m.accounts[email]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copy := *account
	return &copy, nil
}

// ──────────────────────────────────────────────
// MOCK TOKEN ISSUER
// ──────────────────────────────────────────────

// MockTokenIssuer issues predictable tokens.
type MockTokenIssuer struct {
	GenerateCallCount int32
}

func (m *MockTokenIssuer) Generate(email string) (string, error) {
	atomic.AddInt32(&m.GenerateCallCount, 1)
	return "token-for-" + email, nil
}

// ──────────────────────────────────────────────
// MOCK NOTIFICATION STORE
// ──────────────────────────────────────────────

// MockNotificationStore records published notifications per recipient.
type MockNotificationStore struct {
	mu     sync.Mutex
	byUser map[string][]*domain.Notification

	PublishCallCount int32
	PublishError     error
}

func NewMockNotificationStore() *MockNotificationStore {
	return &MockNotificationStore{byUser: make(map[string][]*domain.Notification)}
}

func (m *MockNotificationStore) Publish(ctx context.Context, n *domain.Notification) error {
	atomic.AddInt32(&m.PublishCallCount, 1)
	if m.PublishError != nil {
		return m.PublishError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *n
	m.byUser[n.RecipientID] = append([]*domain.Notification{&copied}, m.byUser[n.RecipientID]...)
	return nil
}

func (m *MockNotificationStore) Recent(ctx context.Context, userID string, limit int) ([]*domain.Notification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	items := m.byUser[userID]
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return append([]*domain.Notification(nil), items...), nil
}

// Types returns the notification types received by userID, newest first.
func (m *MockNotificationStore) Types(userID string) []domain.NotificationType {
	m.mu.Lock()
	defer m.mu.Unlock()
	var types []domain.NotificationType
	for _, n := range m.byUser[userID] {
		types = append(types, n.Type)
	}
	return types
}

// ──────────────────────────────────────────────
// HELPERS
// ──────────────────────────────────────────────

// Ensure mocks implement interfaces.
var (
	_ repository.RideRepository       = (*MockRideRepository)(nil)
	_ repository.PointsRepository     = (*MockPointsRepository)(nil)
	_ repository.AdjustmentRepository = (*MockAdjustmentRepository)(nil)
	_ repository.AccountRepository    = (*MockAccountRepository)(nil)
	_ service.TokenIssuer             = (*MockTokenIssuer)(nil)
	_ service.NotificationStore       = (*MockNotificationStore)(nil)
)

// Fixture bundles a RideService with the in-memory stores behind it.
type Fixture struct {
	Rides         *MockRideRepository
	Points        *MockPointsRepository
	Journal       *MockAdjustmentRepository
	Notifications *MockNotificationStore
	Ledger        *service.LedgerService
	Service       *service.RideService
}

// NewFixture wires a RideService over fresh mocks.
func NewFixture() *Fixture {
	f := &Fixture{
		Rides:         NewMockRideRepository(),
		Points:        NewMockPointsRepository(),
		Journal:       NewMockAdjustmentRepository(),
		Notifications: NewMockNotificationStore(),
	}
	f.Ledger = service.NewLedgerService(f.Points, f.Journal, 3)
	notifier := service.NewNotificationService(f.Notifications)
	f.Service = service.NewRideService(f.Rides, f.Ledger, identity.NewContextProvider(), notifier, time.Second)
	return f
}

// As returns a context signed in as user.
func As(user string) context.Context {
	return identity.WithUser(context.Background(), user)
}

// Balance returns the balance of user, failing on error.
func (f *Fixture) Balance(user string) int {
	balance, err := f.Ledger.Balance(context.Background(), user)
	if err != nil {
		panic(err)
	}
	return balance
}
