package repository

import (
	"context"
	"sync"
	"time"

	"panaderia/internal/domain"
)

// MemoryStore объединённое in-memory хранилище и простой генератор ID
type MemoryStore struct {
	mu             sync.RWMutex
	nextProdID     int64
	nextCustomerID int64
	nextUserID     int64
	nextSaleID     int64
	nextMovementID int64
	productsByID   map[int64]domain.Product
	customersByID  map[int64]domain.Customer
	usersByID      map[int64]domain.User
	salesByID      map[int64]domain.Sale
	movementsByID  map[int64]domain.Movement
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		nextProdID:     1,
		nextCustomerID: 1,
		nextUserID:     1,
		nextSaleID:     1,
		nextMovementID: 1,
		productsByID:   make(map[int64]domain.Product),
		customersByID:  make(map[int64]domain.Customer),
		usersByID:      make(map[int64]domain.User),
		salesByID:      make(map[int64]domain.Sale),
		movementsByID:  make(map[int64]domain.Movement),
	}
}

// transaction-aware locking helpers
type txKey struct{}

func isTx(ctx context.Context) bool {
	v := ctx.Value(txKey{})
	if v == nil {
		return false
	}
	b, ok := v.(bool)
	return ok && b
}

func (m *MemoryStore) rlock(ctx context.Context) {
	if !isTx(ctx) {
		m.mu.RLock()
	}
}
func (m *MemoryStore) runlock(ctx context.Context) {
	if !isTx(ctx) {
		m.mu.RUnlock()
	}
}
func (m *MemoryStore) wlock(ctx context.Context) {
	if !isTx(ctx) {
		m.mu.Lock()
	}
}
func (m *MemoryStore) wunlock(ctx context.Context) {
	if !isTx(ctx) {
		m.mu.Unlock()
	}
}

// Ensure interfaces
var _ ProductRepository = (*MemoryStore)(nil)

// ProductRepository implementation
func (m *MemoryStore) Create(ctx context.Context, p *domain.Product) error {
	m.wlock(ctx)
	defer m.wunlock(ctx)
	p.ID = m.nextProdID
	m.nextProdID++
	m.productsByID[p.ID] = *p
	return nil
}

func (m *MemoryStore) GetByID(ctx context.Context, id int64) (*domain.Product, error) {
	m.rlock(ctx)
	defer m.runlock(ctx)
	p, ok := m.productsByID[id]
	if !ok {
		return nil, ErrNotFound
	}
	// return copy
	cp := p
	return &cp, nil
}

func (m *MemoryStore) Update(ctx context.Context, p *domain.Product) error {
	m.wlock(ctx)
	defer m.wunlock(ctx)
	if _, ok := m.productsByID[p.ID]; !ok {
		return ErrNotFound
	}
	m.productsByID[p.ID] = *p
	return nil
}

func (m *MemoryStore) Delete(ctx context.Context, id int64) error {
	m.wlock(ctx)
	defer m.wunlock(ctx)
	if _, ok := m.productsByID[id]; !ok {
		return ErrNotFound
	}
	delete(m.productsByID, id)
	return nil
}

func (m *MemoryStore) List(ctx context.Context, f ProductFilter) ([]domain.Product, error) {
	m.rlock(ctx)
	defer m.runlock(ctx)
	out := make([]domain.Product, 0)
	for _, p := range m.productsByID {
		if !containsIgnoreCase(p.Name, f.NameSubstring) {
			continue
		}
		if f.MinPrice != nil && p.Price.LessThan(*f.MinPrice) {
			continue
		}
		if f.MaxPrice != nil && p.Price.GreaterThan(*f.MaxPrice) {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

// CustomerRepository implementation on wrapper type
type MemoryCustomers struct{ store *MemoryStore }

func NewMemoryCustomers(store *MemoryStore) *MemoryCustomers { return &MemoryCustomers{store: store} }

var _ CustomerRepository = (*MemoryCustomers)(nil)

func (mc *MemoryCustomers) Create(ctx context.Context, c *domain.Customer) error {
	mc.store.wlock(ctx)
	defer mc.store.wunlock(ctx)
	c.ID = mc.store.nextCustomerID
	mc.store.nextCustomerID++
	mc.store.customersByID[c.ID] = *c
	return nil
}

func (mc *MemoryCustomers) GetByID(ctx context.Context, id int64) (*domain.Customer, error) {
	mc.store.rlock(ctx)
	defer mc.store.runlock(ctx)
	c, ok := mc.store.customersByID[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := c
	return &cp, nil
}

func (mc *MemoryCustomers) Update(ctx context.Context, c *domain.Customer) error {
	mc.store.wlock(ctx)
	defer mc.store.wunlock(ctx)
	if _, ok := mc.store.customersByID[c.ID]; !ok {
		return ErrNotFound
	}
	mc.store.customersByID[c.ID] = *c
	return nil
}

func (mc *MemoryCustomers) Delete(ctx context.Context, id int64) error {
	mc.store.wlock(ctx)
	defer mc.store.wunlock(ctx)
	if _, ok := mc.store.customersByID[id]; !ok {
		return ErrNotFound
	}
	delete(mc.store.customersByID, id)
	return nil
}

func (mc *MemoryCustomers) List(ctx context.Context) ([]domain.Customer, error) {
	mc.store.rlock(ctx)
	defer mc.store.runlock(ctx)
	out := make([]domain.Customer, 0, len(mc.store.customersByID))
	for _, c := range mc.store.customersByID {
		out = append(out, c)
	}
	return out, nil
}

// UserRepository implementation on wrapper type
type MemoryUsers struct{ store *MemoryStore }

func NewMemoryUsers(store *MemoryStore) *MemoryUsers { return &MemoryUsers{store: store} }

var _ UserRepository = (*MemoryUsers)(nil)

func (mu *MemoryUsers) Create(ctx context.Context, u *domain.User) error {
	mu.store.wlock(ctx)
	defer mu.store.wunlock(ctx)
	u.ID = mu.store.nextUserID
	mu.store.nextUserID++
	u.CreatedAt = time.Now().UTC()
	mu.store.usersByID[u.ID] = *u
	return nil
}

func (mu *MemoryUsers) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	mu.store.rlock(ctx)
	defer mu.store.runlock(ctx)
	u, ok := mu.store.usersByID[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := u
	return &cp, nil
}

func (mu *MemoryUsers) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	mu.store.rlock(ctx)
	defer mu.store.runlock(ctx)
	for _, u := range mu.store.usersByID {
		if u.Email == email {
			cp := u
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (mu *MemoryUsers) Delete(ctx context.Context, id int64) error {
	mu.store.wlock(ctx)
	defer mu.store.wunlock(ctx)
	if _, ok := mu.store.usersByID[id]; !ok {
		return ErrNotFound
	}
	delete(mu.store.usersByID, id)
	return nil
}

func (mu *MemoryUsers) List(ctx context.Context) ([]domain.User, error) {
	mu.store.rlock(ctx)
	defer mu.store.runlock(ctx)
	out := make([]domain.User, 0, len(mu.store.usersByID))
	for _, u := range mu.store.usersByID {
		out = append(out, u)
	}
	return out, nil
}

// SaleRepository implementation on wrapper type
type MemorySales struct{ store *MemoryStore }

func NewMemorySales(store *MemoryStore) *MemorySales { return &MemorySales{store: store} }

var _ SaleRepository = (*MemorySales)(nil)

func (ms *MemorySales) Create(ctx context.Context, s *domain.Sale) error {
	ms.store.wlock(ctx)
	defer ms.store.wunlock(ctx)
	s.ID = ms.store.nextSaleID
	ms.store.nextSaleID++
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now().UTC()
	}
	ms.store.salesByID[s.ID] = *s
	return nil
}

func (ms *MemorySales) GetByID(ctx context.Context, id int64) (*domain.Sale, error) {
	ms.store.rlock(ctx)
	defer ms.store.runlock(ctx)
	s, ok := ms.store.salesByID[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := s
	cp.Items = append([]domain.SaleItem(nil), s.Items...)
	return &cp, nil
}

func (ms *MemorySales) Update(ctx context.Context, s *domain.Sale) error {
	ms.store.wlock(ctx)
	defer ms.store.wunlock(ctx)
	if _, ok := ms.store.salesByID[s.ID]; !ok {
		return ErrNotFound
	}
	ms.store.salesByID[s.ID] = *s
	return nil
}

func (ms *MemorySales) List(ctx context.Context) ([]domain.Sale, error) {
	ms.store.rlock(ctx)
	defer ms.store.runlock(ctx)
	out := make([]domain.Sale, 0, len(ms.store.salesByID))
	for _, s := range ms.store.salesByID {
		out = append(out, s)
	}
	return out, nil
}

func (ms *MemorySales) ListBetween(ctx context.Context, from, to time.Time) ([]domain.Sale, error) {
	ms.store.rlock(ctx)
	defer ms.store.runlock(ctx)
	out := make([]domain.Sale, 0)
	for _, s := range ms.store.salesByID {
		if s.CreatedAt.Before(from) || !s.CreatedAt.Before(to) {
			continue
		}
		out = append(out, s)
	}
	return out, nil
}

// MovementRepository implementation on wrapper type
type MemoryMovements struct{ store *MemoryStore }

func NewMemoryMovements(store *MemoryStore) *MemoryMovements { return &MemoryMovements{store: store} }

var _ MovementRepository = (*MemoryMovements)(nil)

func (mm *MemoryMovements) Create(ctx context.Context, m *domain.Movement) error {
	mm.store.wlock(ctx)
	defer mm.store.wunlock(ctx)
	m.ID = mm.store.nextMovementID
	mm.store.nextMovementID++
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}
	mm.store.movementsByID[m.ID] = *m
	return nil
}

func (mm *MemoryMovements) List(ctx context.Context) ([]domain.Movement, error) {
	mm.store.rlock(ctx)
	defer mm.store.runlock(ctx)
	out := make([]domain.Movement, 0, len(mm.store.movementsByID))
	for _, m := range mm.store.movementsByID {
		out = append(out, m)
	}
	return out, nil
}

func (mm *MemoryMovements) ListBetween(ctx context.Context, from, to time.Time) ([]domain.Movement, error) {
	mm.store.rlock(ctx)
	defer mm.store.runlock(ctx)
	out := make([]domain.Movement, 0)
	for _, m := range mm.store.movementsByID {
		if m.CreatedAt.Before(from) || !m.CreatedAt.Before(to) {
			continue
		}
		out = append(out, m)
	}
	return out, nil
}

// Tx manager using write lock to emulate transaction boundary
type MemoryTx struct{ store *MemoryStore }

func NewMemoryTx(store *MemoryStore) *MemoryTx { return &MemoryTx{store: store} }

func (tx *MemoryTx) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	// Для in-memory используем блокировку записи и помечаем контекст, чтобы репозитории пропускали внутренние локи
	tx.store.mu.Lock()
	defer tx.store.mu.Unlock()
	ctx = context.WithValue(ctx, txKey{}, true)
	return fn(ctx)
}
