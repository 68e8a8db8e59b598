package repository

import (
	"context"

	"github.com/LiverNeZelc/vikaproject/backend/services/storefront-service/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CheckoutStore is the unit of work behind checkout: plain reads outside the
// transaction and a CheckoutTx whose writes commit or roll back together.
type CheckoutStore interface {
	FindCard(ctx context.Context, cardID, userID uuid.UUID) (*models.Card, error)
	FindUser(ctx context.Context, userID uuid.UUID) (*models.User, error)
	LoadCart(ctx context.Context, userID uuid.UUID) (*models.CartSnapshot, error)
	// WithinTx rolls back every write made through tx when fn returns an error.
	WithinTx(ctx context.Context, fn func(tx CheckoutTx) error) error
}

// CheckoutTx is the set of conditional writes a checkout performs. Each one
// re-validates its precondition in the database and fails with the matching
// application error when the precondition no longer holds.
type CheckoutTx interface {
	LockCart(ctx context.Context, cartID uuid.UUID, version int64) error
	CreateOrder(ctx context.Context, order *models.Order) error
	DecrementStock(ctx context.Context, productID uuid.UUID, qty int) (int, error)
	DebitCard(ctx context.Context, cardID, userID uuid.UUID, amount decimal.Decimal) error
	AdjustBonus(ctx context.Context, userID uuid.UUID, earned, redeemed int64) (int64, error)
	ClearCart(ctx context.Context, cartID uuid.UUID) error
}

type GormCheckoutStore struct {
	db *gorm.DB
}

func NewGormCheckoutStore(db *gorm.DB) CheckoutStore {
	return &GormCheckoutStore{db: db}
}

func (s *GormCheckoutStore) FindCard(ctx context.Context, cardID, userID uuid.UUID) (*models.Card, error) {
	return NewGormCardRepository(s.db).FindByIDAndUserID(ctx, cardID, userID)
}

func (s *GormCheckoutStore) FindUser(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	return NewGormUserRepository(s.db).FindByID(ctx, userID)
}

func (s *GormCheckoutStore) LoadCart(ctx context.Context, userID uuid.UUID) (*models.CartSnapshot, error) {
	return NewGormCartRepository(s.db).Snapshot(ctx, userID)
}

func (s *GormCheckoutStore) WithinTx(ctx context.Context, fn func(tx CheckoutTx) error) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormCheckoutTx{
			carts:     NewGormCartRepository(tx),
			orders:    NewGormOrderRepository(tx),
			inventory: NewGormInventoryRepository(tx),
			cards:     NewGormCardRepository(tx),
			users:     NewGormUserRepository(tx),
		})
	})
	return lockConflict(err)
}

// gormCheckoutTx binds the regular repositories to one *gorm.DB transaction.
type gormCheckoutTx struct {
	carts     CartRepository
	orders    OrderRepository
	inventory InventoryRepository
	cards     CardRepository
	users     UserRepository
}

func (t *gormCheckoutTx) LockCart(ctx context.Context, cartID uuid.UUID, version int64) error {
	return t.carts.LockVersion(ctx, cartID, version)
}

func (t *gormCheckoutTx) CreateOrder(ctx context.Context, order *models.Order) error {
	return t.orders.Create(ctx, order)
}

func (t *gormCheckoutTx) DecrementStock(ctx context.Context, productID uuid.UUID, qty int) (int, error) {
	return t.inventory.Decrement(ctx, productID, qty)
}

func (t *gormCheckoutTx) DebitCard(ctx context.Context, cardID, userID uuid.UUID, amount decimal.Decimal) error {
	return t.cards.Debit(ctx, cardID, userID, amount)
}

func (t *gormCheckoutTx) AdjustBonus(ctx context.Context, userID uuid.UUID, earned, redeemed int64) (int64, error) {
	return t.users.AdjustBonus(ctx, userID, earned, redeemed)
}

func (t *gormCheckoutTx) ClearCart(ctx context.Context, cartID uuid.UUID) error {
	return t.carts.Clear(ctx, cartID)
}
