package controllers

import (
	"context"
	"net/http"

	"github.com/LiverNeZelc/vikaproject/backend/services/storefront-service/models"
	"github.com/LiverNeZelc/vikaproject/backend/services/storefront-service/services"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type AccountService interface {
	Register(ctx context.Context, req *services.RegisterRequest) (*services.AuthResponse, *services.ServiceError)
	Login(ctx context.Context, req *services.LoginRequest) (*services.AuthResponse, *services.ServiceError)
	Me(ctx context.Context, userID uuid.UUID) (*models.User, *services.ServiceError)
}

type CardService interface {
	ListCards(ctx context.Context, userID uuid.UUID) ([]models.Card, *services.ServiceError)
}

type AccountController struct {
	accounts AccountService
	cards    CardService
}

func NewAccountController(accounts AccountService, cards CardService) *AccountController {
	return &AccountController{accounts: accounts, cards: cards}
}

func (ac *AccountController) Register(ctx *gin.Context) {
	var req services.RegisterRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		respondBindError(ctx, err)
		return
	}
	resp, serviceErr := ac.accounts.Register(ctx.Request.Context(), &req)
	if serviceErr != nil {
		respondError(ctx, serviceErr)
		return
	}
	ctx.JSON(http.StatusCreated, resp)
}

func (ac *AccountController) Login(ctx *gin.Context) {
	var req services.LoginRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		respondBindError(ctx, err)
		return
	}
	resp, serviceErr := ac.accounts.Login(ctx.Request.Context(), &req)
	if serviceErr != nil {
		respondError(ctx, serviceErr)
		return
	}
	ctx.JSON(http.StatusOK, resp)
}

func (ac *AccountController) Me(ctx *gin.Context) {
	userID, ok := requireUser(ctx)
	if !ok {
		return
	}
	user, serviceErr := ac.accounts.Me(ctx.Request.Context(), userID)
	if serviceErr != nil {
		respondError(ctx, serviceErr)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"user": user})
}

func (ac *AccountController) ListCards(ctx *gin.Context) {
	userID, ok := requireUser(ctx)
	if !ok {
		return
	}
	cards, serviceErr := ac.cards.ListCards(ctx.Request.Context(), userID)
	if serviceErr != nil {
		respondError(ctx, serviceErr)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"cards": cards})
}
