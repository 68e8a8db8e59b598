package services

import (
	"context"
	"fmt"
	"strings"

	aws_pkg "github.com/LiverNeZelc/vikaproject/backend/pkg/aws"
	apperrors "github.com/LiverNeZelc/vikaproject/backend/services/common/errors"
	"github.com/LiverNeZelc/vikaproject/backend/services/storefront-service/metrics"
	"github.com/LiverNeZelc/vikaproject/backend/services/storefront-service/models"
	"github.com/LiverNeZelc/vikaproject/backend/services/storefront-service/repository"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type CreateProductRequest struct {
	Name            string          `json:"name" validate:"required,max=255"`
	Description     string          `json:"description"`
	Price           decimal.Decimal `json:"price"`
	QuantityInStock int             `json:"quantity_in_stock" validate:"gte=0"`
	Category        string          `json:"category" validate:"max=100"`
	SKU             string          `json:"sku" validate:"max=64"`
	ImageURL        string          `json:"image_url" validate:"omitempty,max=500"`
}

type ProductListResponse struct {
	Products []models.Product `json:"products"`
	Meta     MetaData         `json:"meta"`
}

// CatalogPageCache is the storefront listing cache.
type CatalogPageCache interface {
	GetPage(ctx context.Context, page, limit int) (*models.ProductPage, bool)
	SetPageAsync(page, limit int, result *models.ProductPage)
	Invalidate(ctx context.Context) error
}

type CatalogService struct {
	repo     repository.ProductRepository
	cache    CatalogPageCache
	validate *validator.Validate
	cw       *aws_pkg.MetricsClient
	prom     *metrics.Metrics
	log      *zap.Logger
}

func NewCatalogService(repo repository.ProductRepository, cache CatalogPageCache, cw *aws_pkg.MetricsClient, prom *metrics.Metrics, log *zap.Logger) *CatalogService {
	return &CatalogService{
		repo:     repo,
		cache:    cache,
		validate: validator.New(),
		cw:       cw,
		prom:     prom,
		log:      log,
	}
}

// ListAvailable is the guest catalog: active products in stock, newest first.
func (s *CatalogService) ListAvailable(ctx context.Context, page, limit int) (*ProductListResponse, *ServiceError) {
	if s.cache != nil {
		cached, ok := s.cache.GetPage(ctx, page, limit)
		s.recordCacheLookup(ok)
		if ok {
			return &ProductListResponse{Products: cached.Products, Meta: newMetaData(page, limit, cached.Total)}, nil
		}
	}

	products, total, err := s.repo.ListAvailable(ctx, page, limit)
	if err != nil {
		return nil, serviceError(s.log, err, "Failed to fetch products")
	}
	if s.cache != nil {
		s.cache.SetPageAsync(page, limit, &models.ProductPage{Products: products, Total: total})
	}
	return &ProductListResponse{Products: products, Meta: newMetaData(page, limit, total)}, nil
}

func (s *CatalogService) recordCacheLookup(hit bool) {
	s.prom.CacheLookup(hit)
	metric := aws_pkg.MetricCacheMisses
	if hit {
		metric = aws_pkg.MetricCacheHits
	}
	recordAsync(s.cw, s.log, func(ctx context.Context, cw *aws_pkg.MetricsClient) error {
		return cw.RecordCount(ctx, metric, map[string]string{"Cache": "catalog"})
	})
}

// ListAll is the admin listing and includes inactive and sold out products.
func (s *CatalogService) ListAll(ctx context.Context, page, limit int) (*ProductListResponse, *ServiceError) {
	products, total, err := s.repo.ListAll(ctx, page, limit)
	if err != nil {
		return nil, serviceError(s.log, err, "Failed to fetch products")
	}
	return &ProductListResponse{Products: products, Meta: newMetaData(page, limit, total)}, nil
}

func (s *CatalogService) GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, *ServiceError) {
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, serviceError(s.log, err, "Failed to fetch product")
	}
	return product, nil
}

// CreateProduct adds a product. SKU and image default to SKU{n} and
// /images/pic{n}.jpg where n is the product count plus one.
func (s *CatalogService) CreateProduct(ctx context.Context, req *CreateProductRequest) (*models.Product, *ServiceError) {
	req.Name = strings.TrimSpace(req.Name)
	if err := s.validate.Struct(req); err != nil {
		return nil, newServiceError(apperrors.ErrValidation, "Validation failed: %v", err)
	}
	if !req.Price.IsPositive() {
		return nil, newServiceError(apperrors.ErrValidation, "Price must be greater than zero")
	}

	sku, image := strings.TrimSpace(req.SKU), strings.TrimSpace(req.ImageURL)
	if sku == "" || image == "" {
		count, err := s.repo.Count(ctx)
		if err != nil {
			return nil, serviceError(s.log, err, "Failed to count products")
		}
		if sku == "" {
			sku = fmt.Sprintf("SKU%d", count+1)
		}
		if image == "" {
			image = fmt.Sprintf("/images/pic%d.jpg", count+1)
		}
	}

	product := &models.Product{
		ID:              uuid.New(),
		Name:            req.Name,
		Description:     req.Description,
		Price:           req.Price.Round(2),
		QuantityInStock: req.QuantityInStock,
		SKU:             sku,
		ImageURL:        image,
		Category:        req.Category,
		IsActive:        true,
	}
	if err := s.repo.Create(ctx, product); err != nil {
		if appErr, ok := apperrors.From(err); ok && appErr.Reason == apperrors.ReasonConflict {
			return nil, newServiceError(apperrors.ErrConflict, "Product with SKU %s already exists", sku)
		}
		return nil, serviceError(s.log, err, "Failed to create product")
	}

	s.invalidate(ctx)
	s.log.Info("Product created", zap.String("product_id", product.ID.String()), zap.String("sku", sku))
	recordAsync(s.cw, s.log, func(ctx context.Context, cw *aws_pkg.MetricsClient) error {
		return cw.RecordCount(ctx, aws_pkg.MetricProductsCreated, map[string]string{"Service": "storefront"})
	})
	return product, nil
}

func (s *CatalogService) UpdateProduct(ctx context.Context, id uuid.UUID, update *models.ProductUpdate) (*models.Product, *ServiceError) {
	if update.Empty() {
		return nil, newServiceError(apperrors.ErrValidation, "No fields to update")
	}
	if err := s.validate.Struct(update); err != nil {
		return nil, newServiceError(apperrors.ErrValidation, "Validation failed: %v", err)
	}
	if update.Price != nil && !update.Price.IsPositive() {
		return nil, newServiceError(apperrors.ErrValidation, "Price must be greater than zero")
	}

	product, err := s.repo.Update(ctx, id, *update)
	if err != nil {
		return nil, serviceError(s.log, err, "Failed to update product")
	}
	s.invalidate(ctx)
	return product, nil
}

func (s *CatalogService) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx); err != nil {
		s.log.Warn("Failed to invalidate catalog cache", zap.Error(err))
	}
}
