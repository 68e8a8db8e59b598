package controllers

import (
	"context"
	"net/http"

	"github.com/LiverNeZelc/vikaproject/backend/services/storefront-service/models"
	"github.com/LiverNeZelc/vikaproject/backend/services/storefront-service/services"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type CatalogService interface {
	ListAvailable(ctx context.Context, page, limit int) (*services.ProductListResponse, *services.ServiceError)
	ListAll(ctx context.Context, page, limit int) (*services.ProductListResponse, *services.ServiceError)
	GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, *services.ServiceError)
	CreateProduct(ctx context.Context, req *services.CreateProductRequest) (*models.Product, *services.ServiceError)
	UpdateProduct(ctx context.Context, id uuid.UUID, update *models.ProductUpdate) (*models.Product, *services.ServiceError)
}

type CatalogController struct {
	catalogService CatalogService
}

func NewCatalogController(catalogService CatalogService) *CatalogController {
	return &CatalogController{catalogService: catalogService}
}

// GetProducts is the storefront listing: active products in stock, newest first.
func (pc *CatalogController) GetProducts(ctx *gin.Context) {
	page, limit := parsePaginationParams(ctx)
	result, serviceErr := pc.catalogService.ListAvailable(ctx.Request.Context(), page, limit)
	if serviceErr != nil {
		respondError(ctx, serviceErr)
		return
	}
	ctx.JSON(http.StatusOK, result)
}

func (pc *CatalogController) GetAllProducts(ctx *gin.Context) {
	page, limit := parsePaginationParams(ctx)
	result, serviceErr := pc.catalogService.ListAll(ctx.Request.Context(), page, limit)
	if serviceErr != nil {
		respondError(ctx, serviceErr)
		return
	}
	ctx.JSON(http.StatusOK, result)
}

func (pc *CatalogController) GetProduct(ctx *gin.Context) {
	id, ok := uuidParam(ctx, "id", "product")
	if !ok {
		return
	}
	product, serviceErr := pc.catalogService.GetProduct(ctx.Request.Context(), id)
	if serviceErr != nil {
		respondError(ctx, serviceErr)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"product": product})
}

func (pc *CatalogController) CreateProduct(ctx *gin.Context) {
	var req services.CreateProductRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		respondBindError(ctx, err)
		return
	}
	product, serviceErr := pc.catalogService.CreateProduct(ctx.Request.Context(), &req)
	if serviceErr != nil {
		respondError(ctx, serviceErr)
		return
	}
	ctx.JSON(http.StatusCreated, gin.H{"product": product})
}

func (pc *CatalogController) UpdateProduct(ctx *gin.Context) {
	id, ok := uuidParam(ctx, "id", "product")
	if !ok {
		return
	}
	var update models.ProductUpdate
	if err := ctx.ShouldBindJSON(&update); err != nil {
		respondBindError(ctx, err)
		return
	}
	product, serviceErr := pc.catalogService.UpdateProduct(ctx.Request.Context(), id, &update)
	if serviceErr != nil {
		respondError(ctx, serviceErr)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"product": product})
}
