package services

import (
	"context"
	"net/http"
	"time"

	apperrors "github.com/LiverNeZelc/vikaproject/backend/services/common/errors"
	"github.com/LiverNeZelc/vikaproject/backend/services/storefront-service/database"
	"github.com/LiverNeZelc/vikaproject/backend/services/storefront-service/models"
	"github.com/LiverNeZelc/vikaproject/backend/services/storefront-service/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type AddItemRequest struct {
	ProductID uuid.UUID `json:"product_id" binding:"required"`
	Quantity  int       `json:"quantity" binding:"required,gt=0"`
}

type ChangeQuantityRequest struct {
	UserID    *uuid.UUID `json:"user_id"`
	ProductID uuid.UUID  `json:"product_id" binding:"required"`
	Change    int        `json:"change"`
}

type MergeRequest struct {
	Items []models.LineQuantity `json:"items" binding:"omitempty,dive"`
}

// MergeResult is the merged cart plus the guest lines that were dropped because
// their product is unknown or no longer sold.
type MergeResult struct {
	Cart    models.CartView `json:"cart"`
	Skipped []uuid.UUID     `json:"skipped"`
}

type ProductLookup interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Product, error)
}

type GuestCartStore interface {
	Get(ctx context.Context, sessionID string) (*database.GuestCart, error)
	Save(ctx context.Context, cart *database.GuestCart) error
	Delete(ctx context.Context, sessionID string) error
}

var errGuestCartsUnavailable = apperrors.New(http.StatusServiceUnavailable, apperrors.ReasonInternal, "Guest carts are not available", nil)

type CartService struct {
	carts    repository.CartRepository
	products ProductLookup
	guests   GuestCartStore
	idem     IdempotencyStore
	log      *zap.Logger
}

func NewCartService(carts repository.CartRepository, products ProductLookup, guests GuestCartStore, idem IdempotencyStore, log *zap.Logger) *CartService {
	return &CartService{carts: carts, products: products, guests: guests, idem: idem, log: log}
}

func (s *CartService) GetCart(ctx context.Context, userID uuid.UUID) (*models.CartView, *ServiceError) {
	cart, err := s.carts.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, serviceError(s.log, err, "Failed to load cart")
	}
	return s.view(ctx, cart.ID)
}

func (s *CartService) view(ctx context.Context, cartID uuid.UUID) (*models.CartView, *ServiceError) {
	lines, err := s.carts.Lines(ctx, cartID)
	if err != nil {
		return nil, serviceError(s.log, err, "Failed to load cart lines")
	}
	view := models.NewCartView(lines)
	return &view, nil
}

// sellable loads a product that may be put in a cart.
func (s *CartService) sellable(ctx context.Context, productID uuid.UUID) (*models.Product, *ServiceError) {
	product, err := s.products.FindByID(ctx, productID)
	if err != nil {
		return nil, serviceError(s.log, err, "Failed to load product")
	}
	if !product.IsActive {
		return nil, newServiceError(apperrors.ErrNotFound, "Product not found")
	}
	return product, nil
}

func (s *CartService) AddItem(ctx context.Context, userID uuid.UUID, req *AddItemRequest) (*models.CartView, *ServiceError) {
	if req.Quantity <= 0 {
		return nil, newServiceError(apperrors.ErrValidation, "Quantity must be positive")
	}
	if _, svcErr := s.sellable(ctx, req.ProductID); svcErr != nil {
		return nil, svcErr
	}

	cart, err := s.carts.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, serviceError(s.log, err, "Failed to load cart")
	}
	if err := s.carts.AddItem(ctx, cart.ID, req.ProductID, req.Quantity); err != nil {
		return nil, serviceError(s.log, err, "Failed to add cart item")
	}
	return s.view(ctx, cart.ID)
}

// ChangeQuantity applies a signed delta; a result of zero or less removes the
// line. It returns the resulting quantity.
func (s *CartService) ChangeQuantity(ctx context.Context, userID uuid.UUID, req *ChangeQuantityRequest) (int, *ServiceError) {
	if req.UserID != nil && *req.UserID != userID {
		return 0, newServiceError(apperrors.ErrForbidden, "user_id does not match the authenticated user")
	}
	if req.Change == 0 {
		return 0, newServiceError(apperrors.ErrValidation, "change must not be zero")
	}

	cart, err := s.carts.GetOrCreate(ctx, userID)
	if err != nil {
		return 0, serviceError(s.log, err, "Failed to load cart")
	}
	qty, err := s.carts.ChangeQuantity(ctx, cart.ID, req.ProductID, req.Change)
	if err != nil {
		return 0, serviceError(s.log, err, "Failed to change cart quantity")
	}
	return qty, nil
}

func (s *CartService) RemoveItem(ctx context.Context, userID, productID uuid.UUID) *ServiceError {
	cart, err := s.carts.GetOrCreate(ctx, userID)
	if err != nil {
		return serviceError(s.log, err, "Failed to load cart")
	}
	if err := s.carts.RemoveItem(ctx, cart.ID, productID); err != nil {
		return serviceError(s.log, err, "Failed to remove cart item")
	}
	return nil
}

// Merge folds an anonymous cart into the user's cart. The guest lines come from
// the request body or, when the body is empty, from the session's stored guest
// cart, which is deleted once merged. Repeating a merge with the same
// idempotency key changes nothing.
func (s *CartService) Merge(ctx context.Context, userID uuid.UUID, sessionID, idemKey string, req *MergeRequest) (*MergeResult, *ServiceError) {
	cart, err := s.carts.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, serviceError(s.log, err, "Failed to load cart")
	}

	if s.alreadyMerged(ctx, userID, idemKey) {
		view, svcErr := s.view(ctx, cart.ID)
		if svcErr != nil {
			return nil, svcErr
		}
		return &MergeResult{Cart: *view, Skipped: []uuid.UUID{}}, nil
	}

	guest := req.Items
	fromSession := false
	if len(guest) == 0 && sessionID != "" && s.guests != nil {
		stored, err := s.guests.Get(ctx, sessionID)
		if err != nil {
			return nil, serviceError(s.log, err, "Failed to load guest cart")
		}
		if stored != nil {
			guest = stored.Items
			fromSession = true
		}
	}

	valid, skipped, svcErr := s.filterSellable(ctx, guest)
	if svcErr != nil {
		return nil, svcErr
	}

	if len(valid) > 0 {
		lines, err := s.carts.Lines(ctx, cart.ID)
		if err != nil {
			return nil, serviceError(s.log, err, "Failed to load cart lines")
		}
		server := make([]models.LineQuantity, 0, len(lines))
		for _, l := range lines {
			server = append(server, models.LineQuantity{ProductID: l.ProductID, Quantity: l.Quantity})
		}
		merged := models.MergeLines(server, valid)
		if err := s.carts.ReplaceLines(ctx, cart.ID, cart.Version, merged); err != nil {
			return nil, serviceError(s.log, err, "Failed to merge cart")
		}
	}

	if fromSession {
		if err := s.guests.Delete(ctx, sessionID); err != nil {
			s.log.Warn("Failed to delete merged guest cart", zap.String("session_id", sessionID), zap.Error(err))
		}
	}
	if idemKey != "" && s.idem != nil {
		if err := s.idem.Set(ctx, idempotencyKey(userID, idemKey), cart.ID.String(), idempotencyTTL); err != nil {
			s.log.Warn("Failed to store idempotency key", zap.Error(err))
		}
	}

	s.log.Info("Cart merged",
		zap.String("user_id", userID.String()),
		zap.Int("guest_lines", len(guest)),
		zap.Int("skipped", len(skipped)))

	view, svcErr := s.view(ctx, cart.ID)
	if svcErr != nil {
		return nil, svcErr
	}
	return &MergeResult{Cart: *view, Skipped: skipped}, nil
}

func (s *CartService) alreadyMerged(ctx context.Context, userID uuid.UUID, idemKey string) bool {
	if idemKey == "" || s.idem == nil {
		return false
	}
	v, err := s.idem.Get(ctx, idempotencyKey(userID, idemKey))
	if err != nil {
		s.log.Warn("Idempotency lookup failed", zap.Error(err))
		return false
	}
	return v != ""
}

// filterSellable keeps guest lines whose product exists and is active.
func (s *CartService) filterSellable(ctx context.Context, lines []models.LineQuantity) ([]models.LineQuantity, []uuid.UUID, *ServiceError) {
	skipped := []uuid.UUID{}
	if len(lines) == 0 {
		return nil, skipped, nil
	}

	ids := make([]uuid.UUID, 0, len(lines))
	for _, l := range lines {
		ids = append(ids, l.ProductID)
	}
	products, err := s.products.FindByIDs(ctx, ids)
	if err != nil {
		return nil, nil, serviceError(s.log, err, "Failed to load products")
	}
	active := make(map[uuid.UUID]bool, len(products))
	for _, p := range products {
		active[p.ID] = p.IsActive
	}

	valid := make([]models.LineQuantity, 0, len(lines))
	for _, l := range lines {
		if !active[l.ProductID] || l.Quantity <= 0 {
			skipped = append(skipped, l.ProductID)
			continue
		}
		valid = append(valid, l)
	}
	return valid, skipped, nil
}

func (s *CartService) GetGuestCart(ctx context.Context, sessionID string) (*models.CartView, *ServiceError) {
	if s.guests == nil {
		return nil, serviceError(s.log, errGuestCartsUnavailable, "Guest carts unavailable")
	}
	stored, err := s.guests.Get(ctx, sessionID)
	if err != nil {
		return nil, serviceError(s.log, err, "Failed to load guest cart")
	}
	if stored == nil {
		view := models.NewCartView(nil)
		return &view, nil
	}
	return s.guestView(ctx, stored.Items)
}

func (s *CartService) AddGuestItem(ctx context.Context, sessionID string, req *AddItemRequest) (*models.CartView, *ServiceError) {
	if s.guests == nil {
		return nil, serviceError(s.log, errGuestCartsUnavailable, "Guest carts unavailable")
	}
	if req.Quantity <= 0 {
		return nil, newServiceError(apperrors.ErrValidation, "Quantity must be positive")
	}
	if _, svcErr := s.sellable(ctx, req.ProductID); svcErr != nil {
		return nil, svcErr
	}

	stored, err := s.guests.Get(ctx, sessionID)
	if err != nil {
		return nil, serviceError(s.log, err, "Failed to load guest cart")
	}
	if stored == nil {
		stored = &database.GuestCart{SessionID: sessionID}
	}
	stored.Items = models.MergeLines(stored.Items, []models.LineQuantity{{ProductID: req.ProductID, Quantity: req.Quantity}})
	stored.UpdatedAt = time.Now()
	if err := s.guests.Save(ctx, stored); err != nil {
		return nil, serviceError(s.log, err, "Failed to save guest cart")
	}
	return s.guestView(ctx, stored.Items)
}

func (s *CartService) ClearGuestCart(ctx context.Context, sessionID string) *ServiceError {
	if s.guests == nil {
		return serviceError(s.log, errGuestCartsUnavailable, "Guest carts unavailable")
	}
	if err := s.guests.Delete(ctx, sessionID); err != nil {
		return serviceError(s.log, err, "Failed to clear guest cart")
	}
	return nil
}

// guestView prices guest lines with current product data. Lines whose product
// disappeared are left out.
func (s *CartService) guestView(ctx context.Context, items []models.LineQuantity) (*models.CartView, *ServiceError) {
	ids := make([]uuid.UUID, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.ProductID)
	}
	products, err := s.products.FindByIDs(ctx, ids)
	if err != nil {
		return nil, serviceError(s.log, err, "Failed to load products")
	}
	byID := make(map[uuid.UUID]models.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	lines := make([]models.CartLine, 0, len(items))
	for _, it := range items {
		p, ok := byID[it.ProductID]
		if !ok {
			continue
		}
		lines = append(lines, models.CartLine{ProductID: p.ID, Name: p.Name, Price: p.Price, Quantity: it.Quantity})
	}
	view := models.NewCartView(lines)
	return &view, nil
}
