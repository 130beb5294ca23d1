package store

import (
	"context"
	"sync"

	"unit-supply-api-server/internal/models"
)

// Memory is an in-memory Store used by tests and local development. A single
// mutex gives it the same atomicity the Mongo implementation gets from
// conditional writes and transactions.
type Memory struct {
	mu            sync.Mutex
	users         map[string]models.User
	items         map[string]models.Item
	units         map[string]models.Unit
	requests      map[string]models.Request
	furniture     map[string]models.FurnitureRequest
	removals      map[string]models.RemovalRequest
	batches       map[string]models.DeliveryBatch
	batchOrder    []string
	confirmations []models.DeliveryConfirmation
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		users:     make(map[string]models.User),
		items:     make(map[string]models.Item),
		units:     make(map[string]models.Unit),
		requests:  make(map[string]models.Request),
		furniture: make(map[string]models.FurnitureRequest),
		removals:  make(map[string]models.RemovalRequest),
		batches:   make(map[string]models.DeliveryBatch),
	}
}

func (m *Memory) InsertUser(ctx context.Context, u *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[u.UserID]; ok {
		return ErrDuplicateID
	}
	m.users[u.UserID] = *u
	return nil
}

func (m *Memory) GetUser(ctx context.Context, userID string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[userID]
	if !ok {
		return nil, ErrNotFound
	}
	return &u, nil
}

func (m *Memory) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			u := u
			return &u, nil
		}
	}
	return nil, ErrNotFound
}

func (m *Memory) InsertItem(ctx context.Context, it *models.Item) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.items[it.ItemID]; ok {
		return ErrDuplicateID
	}
	m.items[it.ItemID] = *it
	return nil
}

func (m *Memory) GetItem(ctx context.Context, itemID string) (*models.Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	it, ok := m.items[itemID]
	if !ok {
		return nil, ErrNotFound
	}
	return &it, nil
}

func (m *Memory) ListItems(ctx context.Context) ([]models.Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.Item{}
	for _, it := range m.items {
		out = append(out, it)
	}
	return out, nil
}

func (m *Memory) InsertUnit(ctx context.Context, u *models.Unit) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.units[u.UnitID]; ok {
		return ErrDuplicateID
	}
	m.units[u.UnitID] = *u
	return nil
}

func (m *Memory) GetUnit(ctx context.Context, unitID string) (*models.Unit, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.units[unitID]
	if !ok {
		return nil, ErrNotFound
	}
	return &u, nil
}

func (m *Memory) ListUnits(ctx context.Context) ([]models.Unit, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.Unit{}
	for _, u := range m.units {
		out = append(out, u)
	}
	return out, nil
}

func (m *Memory) InsertRequest(ctx context.Context, r *models.Request) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.requests[r.RequestID]; ok {
		return ErrDuplicateID
	}
	m.requests[r.RequestID] = *r
	return nil
}

func (m *Memory) GetRequest(ctx context.Context, requestID string) (*models.Request, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.requests[requestID]
	if !ok {
		return nil, ErrNotFound
	}
	return &r, nil
}

func (m *Memory) ListRequests(ctx context.Context, f Filter) ([]models.Request, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.Request{}
	for _, r := range m.requests {
		if f.Status != "" && r.Status != f.Status {
			continue
		}
		if f.UnitID != "" && r.RequestingUnitID != f.UnitID {
			continue
		}
		if f.RequestedBy != "" && r.RequestedByUserID != f.RequestedBy {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

func (m *Memory) UpdateRequest(ctx context.Context, r *models.Request, fromStatus string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.requests[r.RequestID]
	if !ok {
		return ErrNotFound
	}
	if cur.Status != fromStatus {
		return ErrStaleState
	}
	m.requests[r.RequestID] = *r
	return nil
}

func (m *Memory) InsertFurnitureRequest(ctx context.Context, r *models.FurnitureRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.furniture[r.RequestID]; ok {
		return ErrDuplicateID
	}
	m.furniture[r.RequestID] = *r
	return nil
}

func (m *Memory) GetFurnitureRequest(ctx context.Context, requestID string) (*models.FurnitureRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.furniture[requestID]
	if !ok {
		return nil, ErrNotFound
	}
	return &r, nil
}

func (m *Memory) ListFurnitureRequests(ctx context.Context, f Filter) ([]models.FurnitureRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.FurnitureRequest{}
	for _, r := range m.furniture {
		if f.Status != "" && r.Status != f.Status {
			continue
		}
		if f.UnitID != "" && r.RequestingUnitID != f.UnitID {
			continue
		}
		if f.RequestedBy != "" && r.RequestedByUserID != f.RequestedBy {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

func (m *Memory) UpdateFurnitureRequest(ctx context.Context, r *models.FurnitureRequest, fromStatus string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.furniture[r.RequestID]
	if !ok {
		return ErrNotFound
	}
	if cur.Status != fromStatus {
		return ErrStaleState
	}
	m.furniture[r.RequestID] = *r
	return nil
}

func (m *Memory) InsertRemoval(ctx context.Context, r *models.RemovalRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.removals[r.RequestID]; ok {
		return ErrDuplicateID
	}
	m.removals[r.RequestID] = *r
	return nil
}

func (m *Memory) GetRemoval(ctx context.Context, requestID string) (*models.RemovalRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.removals[requestID]
	if !ok {
		return nil, ErrNotFound
	}
	return &r, nil
}

func (m *Memory) ListRemovals(ctx context.Context, f Filter) ([]models.RemovalRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.RemovalRequest{}
	for _, r := range m.removals {
		if f.Status != "" && r.Status != f.Status {
			continue
		}
		if f.UnitID != "" && r.UnitID != f.UnitID {
			continue
		}
		if f.RequestedBy != "" && r.RequestedByUserID != f.RequestedBy {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

func (m *Memory) UpdateRemoval(ctx context.Context, r *models.RemovalRequest, fromStatus string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.removals[r.RequestID]
	if !ok {
		return ErrNotFound
	}
	if cur.Status != fromStatus {
		return ErrStaleState
	}
	m.removals[r.RequestID] = *r
	return nil
}

// CreateBatch checks that no member id belongs to another open batch and
// inserts the new batch while still holding the lock, so two concurrent
// creations over overlapping members cannot both succeed.
func (m *Memory) CreateBatch(ctx context.Context, b *models.DeliveryBatch) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.batches[b.BatchID]; ok {
		return ErrDuplicateID
	}
	claimed := make(map[string]bool)
	for _, existing := range m.batches {
		if models.BatchStatusTerminal(existing.Status) {
			continue
		}
		for _, id := range existing.Members() {
			claimed[id] = true
		}
	}
	for _, id := range b.Members() {
		if claimed[id] {
			return ErrAlreadyBatched
		}
	}
	m.batches[b.BatchID] = *b
	m.batchOrder = append(m.batchOrder, b.BatchID)
	return nil
}

func (m *Memory) GetBatch(ctx context.Context, batchID string) (*models.DeliveryBatch, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.batches[batchID]
	if !ok {
		return nil, ErrNotFound
	}
	return &b, nil
}

func (m *Memory) ListBatches(ctx context.Context, f Filter) ([]models.DeliveryBatch, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.DeliveryBatch{}
	for _, id := range m.batchOrder {
		b := m.batches[id]
		if f.Status != "" && b.Status != f.Status {
			continue
		}
		if f.UnitID != "" && b.TargetUnitID != f.UnitID {
			continue
		}
		if f.DriverUserID != "" && b.DriverUserID != f.DriverUserID {
			continue
		}
		out = append(out, b)
	}
	return out, nil
}

func (m *Memory) UpdateBatch(ctx context.Context, b *models.DeliveryBatch, fromStatus string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.batches[b.BatchID]
	if !ok {
		return ErrNotFound
	}
	if cur.Status != fromStatus {
		return ErrStaleState
	}
	m.batches[b.BatchID] = *b
	return nil
}

func (m *Memory) AppendConfirmation(ctx context.Context, c *models.DeliveryConfirmation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.confirmations {
		if existing.Type == c.Type && existing.Subject() == c.Subject() {
			return ErrDuplicateConfirmation
		}
	}
	m.confirmations = append(m.confirmations, *c)
	return nil
}

func (m *Memory) ListConfirmationsByBatch(ctx context.Context, batchID string) ([]models.DeliveryConfirmation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.DeliveryConfirmation{}
	for _, c := range m.confirmations {
		if c.BatchID == batchID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *Memory) ListConfirmationsByFurnitureRequest(ctx context.Context, requestID string) ([]models.DeliveryConfirmation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.DeliveryConfirmation{}
	for _, c := range m.confirmations {
		if c.FurnitureRequestID == requestID {
			out = append(out, c)
		}
	}
	return out, nil
}
