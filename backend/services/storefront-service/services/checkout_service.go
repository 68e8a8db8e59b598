package services

import (
	"context"
	"errors"
	"strings"
	"time"

	aws_pkg "github.com/LiverNeZelc/vikaproject/backend/pkg/aws"
	apperrors "github.com/LiverNeZelc/vikaproject/backend/services/common/errors"
	"github.com/LiverNeZelc/vikaproject/backend/services/storefront-service/events"
	"github.com/LiverNeZelc/vikaproject/backend/services/storefront-service/loyalty"
	"github.com/LiverNeZelc/vikaproject/backend/services/storefront-service/metrics"
	"github.com/LiverNeZelc/vikaproject/backend/services/storefront-service/models"
	"github.com/LiverNeZelc/vikaproject/backend/services/storefront-service/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	DefaultCheckoutTimeout = 10 * time.Second
	idempotencyTTL         = 24 * time.Hour

	// idempotencyInFlight marks a key whose checkout has not finished yet.
	idempotencyInFlight     = "in-flight"
	idempotencyPollInterval = 25 * time.Millisecond
)

type CheckoutRequest struct {
	UserID          *uuid.UUID `json:"user_id"`
	CardID          uuid.UUID  `json:"card_id" binding:"required"`
	DeliveryAddress string     `json:"delivery_address" binding:"required"`
	BonusUsed       int64      `json:"bonus_used" binding:"gte=0"`
}

type QuoteRequest struct {
	CardID    *uuid.UUID `json:"card_id"`
	BonusUsed int64      `json:"bonus_used" binding:"gte=0"`
}

// QuoteResponse is the checkout preview. Valid is false when the same request
// sent to /checkout would be rejected; Reason then carries the rejection code.
type QuoteResponse struct {
	loyalty.Quote
	ItemsCount int    `json:"items_count"`
	Valid      bool   `json:"valid"`
	Reason     string `json:"reason,omitempty"`
	Message    string `json:"message,omitempty"`
}

// IdempotencyStore remembers which order a client key produced.
type IdempotencyStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	// Claim stores value only if key is unset and reports whether it did.
	Claim(ctx context.Context, key, value string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, key string) error
}

// CatalogInvalidator drops cached storefront listings after stock changes.
type CatalogInvalidator interface {
	Invalidate(ctx context.Context) error
}

type OrderFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
}

type CheckoutService struct {
	store     repository.CheckoutStore
	orders    OrderFinder
	publisher events.Publisher
	idem      IdempotencyStore
	catalog   CatalogInvalidator
	cw        *aws_pkg.MetricsClient
	prom      *metrics.Metrics
	log       *zap.Logger
	timeout   time.Duration
	now       func() time.Time
	newID     func() uuid.UUID
}

type CheckoutOption func(*CheckoutService)

func WithIdempotency(store IdempotencyStore) CheckoutOption {
	return func(s *CheckoutService) { s.idem = store }
}

func WithCatalogInvalidator(c CatalogInvalidator) CheckoutOption {
	return func(s *CheckoutService) { s.catalog = c }
}

func WithCheckoutMetrics(cw *aws_pkg.MetricsClient, prom *metrics.Metrics) CheckoutOption {
	return func(s *CheckoutService) {
		s.cw = cw
		s.prom = prom
	}
}

func WithCheckoutTimeout(d time.Duration) CheckoutOption {
	return func(s *CheckoutService) {
		if d > 0 {
			s.timeout = d
		}
	}
}

func withClock(now func() time.Time) CheckoutOption {
	return func(s *CheckoutService) { s.now = now }
}

func NewCheckoutService(store repository.CheckoutStore, orders OrderFinder, publisher events.Publisher, log *zap.Logger, opts ...CheckoutOption) *CheckoutService {
	if publisher == nil {
		publisher = events.Noop{}
	}
	s := &CheckoutService{
		store:     store,
		orders:    orders,
		publisher: publisher,
		log:       log,
		timeout:   DefaultCheckoutTimeout,
		now:       time.Now,
		newID:     uuid.New,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Checkout turns the user's cart into a paid pending order. The returned bool
// is true when idemKey matched an earlier checkout and nothing new was charged.
func (s *CheckoutService) Checkout(ctx context.Context, userID uuid.UUID, idemKey string, req *CheckoutRequest) (*models.OrderSummary, bool, *ServiceError) {
	if req.UserID != nil && *req.UserID != userID {
		return nil, false, newServiceError(apperrors.ErrForbidden, "user_id does not match the authenticated user")
	}
	address := strings.TrimSpace(req.DeliveryAddress)
	if address == "" {
		return nil, false, newServiceError(apperrors.ErrValidation, "Delivery address is required")
	}
	if req.CardID == uuid.Nil {
		return nil, false, newServiceError(apperrors.ErrValidation, "Payment card is required")
	}

	// The client going away must not abort a half-done transaction.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
	defer cancel()

	claimed := false
	if idemKey != "" && s.idem != nil && s.orders != nil {
		summary, ok, svcErr := s.claim(ctx, userID, idemKey)
		if svcErr != nil {
			return nil, false, svcErr
		}
		if summary != nil {
			return summary, true, nil
		}
		claimed = ok
	}

	start := time.Now()
	summary, quote, err := s.checkout(ctx, userID, address, req.CardID, req.BonusUsed)
	if err != nil {
		if claimed {
			if relErr := s.idem.Release(ctx, idempotencyKey(userID, idemKey)); relErr != nil {
				s.log.Warn("Failed to release idempotency key", zap.Error(relErr))
			}
		}
		if ctx.Err() != nil && errors.Is(ctx.Err(), context.DeadlineExceeded) {
			err = apperrors.ErrCheckoutTimeout.Wrap(err)
		}
		svcErr := serviceError(s.log, err, "Checkout failed")
		s.log.Info("Checkout rejected",
			zap.String("user_id", userID.String()),
			zap.String("reason", svcErr.Reason),
			zap.Error(err))
		s.prom.ObserveCheckout(strings.ToLower(svcErr.Reason), time.Since(start))
		recordAsync(s.cw, s.log, func(ctx context.Context, cw *aws_pkg.MetricsClient) error {
			return cw.RecordCount(ctx, aws_pkg.MetricCheckoutsRejected, map[string]string{"Reason": svcErr.Reason})
		})
		return nil, false, svcErr
	}

	s.afterCommit(ctx, userID, idemKey, summary, quote, time.Since(start))
	return summary, false, nil
}

func (s *CheckoutService) checkout(ctx context.Context, userID uuid.UUID, address string, cardID uuid.UUID, bonusUsed int64) (*models.OrderSummary, loyalty.Quote, error) {
	card, err := s.store.FindCard(ctx, cardID, userID)
	if err != nil {
		return nil, loyalty.Quote{}, err
	}
	snap, err := s.store.LoadCart(ctx, userID)
	if err != nil {
		return nil, loyalty.Quote{}, err
	}
	if len(snap.Lines) == 0 {
		return nil, loyalty.Quote{}, apperrors.ErrEmptyCart
	}
	user, err := s.store.FindUser(ctx, userID)
	if err != nil {
		return nil, loyalty.Quote{}, err
	}

	quote, err := priceCart(snap, bonusUsed, user.Bonus)
	if err != nil {
		return nil, loyalty.Quote{}, err
	}
	if card.Balance.LessThan(quote.FinalAmount) {
		return nil, loyalty.Quote{}, apperrors.ErrInsufficientFunds
	}

	order := s.buildOrder(userID, card.ID, address, snap, quote)

	var balance int64
	err = s.store.WithinTx(ctx, func(tx repository.CheckoutTx) error {
		if err := tx.LockCart(ctx, snap.CartID, snap.Version); err != nil {
			return err
		}
		if err := tx.CreateOrder(ctx, order); err != nil {
			return err
		}
		for _, line := range snap.Lines {
			if _, err := tx.DecrementStock(ctx, line.ProductID, line.Quantity); err != nil {
				return err
			}
		}
		if err := tx.DebitCard(ctx, card.ID, userID, quote.FinalAmount); err != nil {
			return err
		}
		newBalance, err := tx.AdjustBonus(ctx, userID, quote.PointsEarned, quote.PointsRedeemed)
		if err != nil {
			return err
		}
		balance = newBalance
		return tx.ClearCart(ctx, snap.CartID)
	})
	if err != nil {
		return nil, loyalty.Quote{}, err
	}

	return newOrderSummary(order, balance), quote, nil
}

// priceCart runs the loyalty rules over a cart snapshot. Any redemption the
// ledger refuses is reported as BonusOverLimit.
func priceCart(snap *models.CartSnapshot, requested, balance int64) (loyalty.Quote, error) {
	quote, err := loyalty.Compute(snap.Subtotal(), requested, balance)
	if err != nil {
		allowed := min(loyalty.MaxRedeemable(snap.Subtotal()), balance)
		return loyalty.Quote{}, apperrors.ErrBonusOverLimit.
			WithMessage("Requested %d bonus points, at most %d can be used for this order", requested, max(allowed, 0)).
			Wrap(err)
	}
	return quote, nil
}

func (s *CheckoutService) buildOrder(userID, cardID uuid.UUID, address string, snap *models.CartSnapshot, quote loyalty.Quote) *models.Order {
	now := s.now().UTC()
	id := s.newID()
	order := &models.Order{
		ID:              id,
		OrderNumber:     models.NewOrderNumber(now, id),
		UserID:          userID,
		CardID:          cardID,
		Status:          models.OrderStatusPending,
		PaymentStatus:   models.PaymentStatusPaid,
		PaymentMethod:   models.PaymentMethodCard,
		SubtotalAmount:  quote.Subtotal,
		TotalAmount:     quote.FinalAmount,
		BonusUsed:       quote.PointsRedeemed,
		BonusEarned:     quote.PointsEarned,
		DeliveryAddress: address,
		CreatedAt:       now,
		UpdatedAt:       now,
		OrderItems:      make([]models.OrderItem, 0, len(snap.Lines)),
	}
	for _, line := range snap.Lines {
		order.OrderItems = append(order.OrderItems, models.OrderItem{
			ID:           s.newID(),
			OrderID:      id,
			ProductID:    line.ProductID,
			ProductName:  line.Name,
			Quantity:     line.Quantity,
			PricePerUnit: line.Price,
		})
	}
	return order
}

func newOrderSummary(order *models.Order, bonusBalance int64) *models.OrderSummary {
	return &models.OrderSummary{
		OrderID:         order.ID,
		OrderNumber:     order.OrderNumber,
		Status:          order.Status,
		PaymentStatus:   order.PaymentStatus,
		SubtotalAmount:  order.SubtotalAmount,
		Discount:        order.SubtotalAmount.Sub(order.TotalAmount),
		TotalAmount:     order.TotalAmount,
		BonusUsed:       order.BonusUsed,
		BonusEarned:     order.BonusEarned,
		BonusBalance:    bonusBalance,
		DeliveryAddress: order.DeliveryAddress,
		ItemsCount:      order.ItemsCount(),
		CreatedAt:       order.CreatedAt,
	}
}

func idempotencyKey(userID uuid.UUID, key string) string {
	return userID.String() + ":" + key
}

// claim reserves idemKey for this request. While another request holds the key
// it waits for that checkout to finish and returns its order as a replay. The
// bool reports whether this request now owns the key.
func (s *CheckoutService) claim(ctx context.Context, userID uuid.UUID, idemKey string) (*models.OrderSummary, bool, *ServiceError) {
	key := idempotencyKey(userID, idemKey)
	ticker := time.NewTicker(idempotencyPollInterval)
	defer ticker.Stop()

	for {
		ok, err := s.idem.Claim(ctx, key, idempotencyInFlight, s.timeout)
		if err != nil {
			s.log.Warn("Idempotency claim failed", zap.Error(err))
			return nil, false, nil
		}
		if ok {
			return nil, true, nil
		}
		if summary, ok := s.replay(ctx, userID, idemKey); ok {
			return summary, false, nil
		}

		select {
		case <-ctx.Done():
			return nil, false, newServiceError(apperrors.ErrConcurrentModification,
				"A checkout with this Idempotency-Key is still in progress")
		case <-ticker.C:
		}
	}
}

func (s *CheckoutService) replay(ctx context.Context, userID uuid.UUID, idemKey string) (*models.OrderSummary, bool) {
	orderID, err := s.idem.Get(ctx, idempotencyKey(userID, idemKey))
	if err != nil {
		s.log.Warn("Idempotency lookup failed", zap.Error(err))
		return nil, false
	}
	if orderID == "" || orderID == idempotencyInFlight {
		return nil, false
	}
	id, err := uuid.Parse(orderID)
	if err != nil {
		return nil, false
	}
	order, err := s.orders.FindByID(ctx, id)
	if err != nil || order.UserID != userID {
		return nil, false
	}
	var balance int64
	if user, err := s.store.FindUser(ctx, userID); err == nil {
		balance = user.Bonus
	}
	s.log.Info("Checkout replayed", zap.String("order_id", order.ID.String()), zap.String("idempotency_key", idemKey))
	return newOrderSummary(order, balance), true
}

func (s *CheckoutService) afterCommit(ctx context.Context, userID uuid.UUID, idemKey string, summary *models.OrderSummary, quote loyalty.Quote, took time.Duration) {
	s.log.Info("Order created",
		zap.String("order_id", summary.OrderID.String()),
		zap.String("order_number", summary.OrderNumber),
		zap.String("user_id", userID.String()),
		zap.String("total_amount", summary.TotalAmount.StringFixed(2)),
		zap.Int64("bonus_used", summary.BonusUsed),
		zap.Int64("bonus_earned", summary.BonusEarned))

	if idemKey != "" && s.idem != nil {
		if err := s.idem.Set(ctx, idempotencyKey(userID, idemKey), summary.OrderID.String(), idempotencyTTL); err != nil {
			s.log.Warn("Failed to store idempotency key", zap.Error(err))
		}
	}
	if s.catalog != nil {
		if err := s.catalog.Invalidate(ctx); err != nil {
			s.log.Warn("Failed to invalidate catalog cache", zap.Error(err))
		}
	}

	s.publisher.PublishOrderEvent(ctx, models.OrderEvent{
		Event:       models.EventOrderCreated,
		OrderID:     summary.OrderID,
		OrderNumber: summary.OrderNumber,
		UserID:      userID,
		Status:      summary.Status,
		TotalAmount: summary.TotalAmount,
		BonusUsed:   summary.BonusUsed,
		BonusEarned: summary.BonusEarned,
		Timestamp:   summary.CreatedAt,
	})

	s.prom.ObserveCheckout(metrics.OutcomeSuccess, took)
	s.prom.AddBonusPoints(quote.PointsRedeemed, quote.PointsEarned)
	recordAsync(s.cw, s.log, func(ctx context.Context, cw *aws_pkg.MetricsClient) error {
		dims := map[string]string{"Service": "storefront"}
		if err := cw.RecordCount(ctx, aws_pkg.MetricOrdersCreated, dims); err != nil {
			return err
		}
		if err := cw.RecordCount(ctx, aws_pkg.MetricCartCheckouts, dims); err != nil {
			return err
		}
		if err := cw.RecordValue(ctx, aws_pkg.MetricBonusRedeemed, float64(quote.PointsRedeemed), dims); err != nil {
			return err
		}
		if err := cw.RecordValue(ctx, aws_pkg.MetricBonusEarned, float64(quote.PointsEarned), dims); err != nil {
			return err
		}
		return cw.RecordLatency(ctx, aws_pkg.MetricCheckoutLatency, took, dims)
	})
}

// Quote previews a checkout with the same pricing rules but never mutates.
func (s *CheckoutService) Quote(ctx context.Context, userID uuid.UUID, req *QuoteRequest) (*QuoteResponse, *ServiceError) {
	snap, err := s.store.LoadCart(ctx, userID)
	if err != nil {
		return nil, serviceError(s.log, err, "Failed to load cart")
	}
	resp := &QuoteResponse{ItemsCount: snap.ItemCount()}
	subtotal := snap.Subtotal()
	resp.Subtotal = subtotal
	resp.MaxRedeemable = loyalty.MaxRedeemable(subtotal)
	resp.PointsEarned = loyalty.Earned(subtotal)

	if len(snap.Lines) == 0 {
		return resp.reject(apperrors.ErrEmptyCart), nil
	}

	user, err := s.store.FindUser(ctx, userID)
	if err != nil {
		return nil, serviceError(s.log, err, "Failed to load user")
	}
	resp.BalanceBefore = user.Bonus

	quote, err := priceCart(snap, req.BonusUsed, user.Bonus)
	if err != nil {
		appErr, _ := apperrors.From(err)
		return resp.reject(appErr), nil
	}
	resp.Quote = quote

	if req.CardID != nil {
		card, err := s.store.FindCard(ctx, *req.CardID, userID)
		if err != nil {
			if appErr, ok := apperrors.From(err); ok && appErr.Code < 500 {
				return resp.reject(appErr), nil
			}
			return nil, serviceError(s.log, err, "Failed to load card")
		}
		if card.Balance.LessThan(quote.FinalAmount) {
			return resp.reject(apperrors.ErrInsufficientFunds), nil
		}
	}

	resp.Valid = true
	return resp, nil
}

func (r *QuoteResponse) reject(e *apperrors.Error) *QuoteResponse {
	r.Valid = false
	r.Reason = string(e.Reason)
	r.Message = e.Message
	return r
}
