package services

import (
	"context"
	"sync"
	"time"

	apperrors "github.com/LiverNeZelc/vikaproject/backend/services/common/errors"
	"github.com/LiverNeZelc/vikaproject/backend/services/storefront-service/models"
	"github.com/LiverNeZelc/vikaproject/backend/services/storefront-service/repository"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type memCart struct {
	id      uuid.UUID
	version int64
	lines   []models.LineQuantity
}

type memState struct {
	cards    map[uuid.UUID]models.Card
	users    map[uuid.UUID]models.User
	products map[uuid.UUID]models.Product
	carts    map[uuid.UUID]memCart // by user id
	orders   map[uuid.UUID]models.Order
}

func newMemState() memState {
	return memState{
		cards:    map[uuid.UUID]models.Card{},
		users:    map[uuid.UUID]models.User{},
		products: map[uuid.UUID]models.Product{},
		carts:    map[uuid.UUID]memCart{},
		orders:   map[uuid.UUID]models.Order{},
	}
}

func (st memState) clone() memState {
	cp := newMemState()
	for k, v := range st.cards {
		cp.cards[k] = v
	}
	for k, v := range st.users {
		cp.users[k] = v
	}
	for k, v := range st.products {
		cp.products[k] = v
	}
	for k, v := range st.carts {
		v.lines = append([]models.LineQuantity(nil), v.lines...)
		cp.carts[k] = v
	}
	for k, v := range st.orders {
		cp.orders[k] = v
	}
	return cp
}

// memStore is an in-memory CheckoutStore. WithinTx holds the store lock for
// the whole transaction and restores the pre-transaction state on error.
type memStore struct {
	mu sync.Mutex
	st memState

	// beforeTx runs before the transaction lock is taken.
	beforeTx func()
	// debitFault is returned by DebitCard, after stock has been decremented.
	debitFault error
	txCount    int
}

var _ repository.CheckoutStore = (*memStore)(nil)

func newMemStore() *memStore {
	return &memStore{st: newMemState()}
}

func (s *memStore) snapshot() memState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.clone()
}

func (s *memStore) addUser(bonus int64) uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := uuid.New()
	s.st.users[id] = models.User{ID: id, Email: id.String() + "@example.com", FirstName: "Ann", LastName: "Lee", Role: models.RoleUser, Bonus: bonus}
	return id
}

func (s *memStore) addCard(userID uuid.UUID, balance string) uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := uuid.New()
	s.st.cards[id] = models.Card{ID: id, UserID: userID, CardNumber: "4111 1111 1111 1111", Balance: decimal.RequireFromString(balance)}
	return id
}

func (s *memStore) addProduct(name, price string, stock int) uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := uuid.New()
	s.st.products[id] = models.Product{ID: id, Name: name, Price: decimal.RequireFromString(price), QuantityInStock: stock, IsActive: true}
	return id
}

func (s *memStore) putInCart(userID, productID uuid.UUID, qty int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.st.carts[userID]
	if !ok {
		c = memCart{id: uuid.New()}
	}
	c.lines = models.MergeLines(c.lines, []models.LineQuantity{{ProductID: productID, Quantity: qty}})
	c.version++
	s.st.carts[userID] = c
}

func (s *memStore) FindCard(_ context.Context, cardID, userID uuid.UUID) (*models.Card, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.st.cards[cardID]
	if !ok || c.UserID != userID {
		return nil, apperrors.ErrPaymentInstrumentNotFound
	}
	return &c, nil
}

func (s *memStore) FindUser(_ context.Context, userID uuid.UUID) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.st.users[userID]
	if !ok {
		return nil, apperrors.ErrNotFound.WithMessage("User not found")
	}
	return &u, nil
}

func (s *memStore) LoadCart(_ context.Context, userID uuid.UUID) (*models.CartSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.st.carts[userID]
	if !ok {
		return &models.CartSnapshot{}, nil
	}
	snap := &models.CartSnapshot{CartID: c.id, Version: c.version}
	for _, l := range c.lines {
		p := s.st.products[l.ProductID]
		snap.Lines = append(snap.Lines, models.CartLine{ProductID: p.ID, Name: p.Name, Price: p.Price, Quantity: l.Quantity})
	}
	return snap, nil
}

func (s *memStore) FindByID(_ context.Context, id uuid.UUID) (*models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.st.orders[id]
	if !ok {
		return nil, apperrors.ErrNotFound.WithMessage("Order not found")
	}
	return &o, nil
}

func (s *memStore) WithinTx(ctx context.Context, fn func(tx repository.CheckoutTx) error) error {
	if s.beforeTx != nil {
		s.beforeTx()
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.txCount++

	saved := s.st.clone()
	if err := fn(&memTx{st: &s.st, debitFault: s.debitFault}); err != nil {
		s.st = saved
		return err
	}
	return nil
}

type memTx struct {
	st         *memState
	debitFault error
}

func (t *memTx) LockCart(_ context.Context, cartID uuid.UUID, version int64) error {
	for userID, c := range t.st.carts {
		if c.id != cartID {
			continue
		}
		if c.version != version {
			return apperrors.ErrConcurrentModification
		}
		c.version++
		t.st.carts[userID] = c
		return nil
	}
	return apperrors.ErrConcurrentModification
}

func (t *memTx) CreateOrder(_ context.Context, order *models.Order) error {
	t.st.orders[order.ID] = *order
	return nil
}

func (t *memTx) DecrementStock(_ context.Context, productID uuid.UUID, qty int) (int, error) {
	p, ok := t.st.products[productID]
	if !ok || p.QuantityInStock < qty {
		return 0, apperrors.ErrInsufficientStock.WithMessage("Insufficient stock for %s", p.Name)
	}
	p.QuantityInStock -= qty
	t.st.products[productID] = p
	return p.QuantityInStock, nil
}

func (t *memTx) DebitCard(_ context.Context, cardID, userID uuid.UUID, amount decimal.Decimal) error {
	if t.debitFault != nil {
		return t.debitFault
	}
	c, ok := t.st.cards[cardID]
	if !ok || c.UserID != userID || c.Balance.LessThan(amount) {
		return apperrors.ErrInsufficientFunds
	}
	c.Balance = c.Balance.Sub(amount)
	t.st.cards[cardID] = c
	return nil
}

func (t *memTx) AdjustBonus(_ context.Context, userID uuid.UUID, earned, redeemed int64) (int64, error) {
	u, ok := t.st.users[userID]
	if !ok || u.Bonus < redeemed {
		return 0, apperrors.ErrBonusOverLimit
	}
	u.Bonus += earned - redeemed
	t.st.users[userID] = u
	return u.Bonus, nil
}

func (t *memTx) ClearCart(_ context.Context, cartID uuid.UUID) error {
	for userID, c := range t.st.carts {
		if c.id == cartID {
			c.lines = nil
			t.st.carts[userID] = c
		}
	}
	return nil
}

type memIdempotency struct {
	mu   sync.Mutex
	data map[string]string
}

func newMemIdempotency() *memIdempotency {
	return &memIdempotency{data: map[string]string{}}
}

func (m *memIdempotency) Get(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.data[key], nil
}

func (m *memIdempotency) Set(_ context.Context, key, value string, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *memIdempotency) Claim(_ context.Context, key, value string, _ time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, held := m.data[key]; held {
		return false, nil
	}
	m.data[key] = value
	return true, nil
}

func (m *memIdempotency) Release(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []models.OrderEvent
}

func (p *recordingPublisher) PublishOrderEvent(_ context.Context, evt models.OrderEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, evt)
}

func (p *recordingPublisher) published() []models.OrderEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]models.OrderEvent(nil), p.events...)
}

type countingInvalidator struct {
	mu    sync.Mutex
	calls int
}

func (c *countingInvalidator) Invalidate(context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	return nil
}
