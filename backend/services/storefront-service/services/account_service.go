package services

import (
	"context"
	"strings"
	"time"

	"github.com/LiverNeZelc/vikaproject/backend/services/common/auth"
	apperrors "github.com/LiverNeZelc/vikaproject/backend/services/common/errors"
	"github.com/LiverNeZelc/vikaproject/backend/services/storefront-service/models"
	"github.com/LiverNeZelc/vikaproject/backend/services/storefront-service/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type RegisterRequest struct {
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,min=8"`
	FirstName string `json:"first_name" binding:"required"`
	LastName  string `json:"last_name" binding:"required"`
	Phone     string `json:"phone"`
	Address   string `json:"address"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type AuthResponse struct {
	User        *models.User `json:"user"`
	AccessToken string       `json:"access_token"`
	ExpiresAt   time.Time    `json:"expires_at"`
}

type AccountService struct {
	users  repository.UserRepository
	tokens *auth.TokenManager
	log    *zap.Logger
	cost   int
}

func NewAccountService(users repository.UserRepository, tokens *auth.TokenManager, log *zap.Logger) *AccountService {
	return &AccountService{users: users, tokens: tokens, log: log, cost: bcrypt.DefaultCost}
}

func (s *AccountService) Register(ctx context.Context, req *RegisterRequest) (*AuthResponse, *ServiceError) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.cost)
	if err != nil {
		return nil, serviceError(s.log, err, "Failed to hash password")
	}

	user := &models.User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: string(hash),
		FirstName:    strings.TrimSpace(req.FirstName),
		LastName:     strings.TrimSpace(req.LastName),
		Phone:        req.Phone,
		Address:      req.Address,
		Role:         models.RoleUser,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if appErr, ok := apperrors.From(err); ok && appErr.Reason == apperrors.ReasonConflict {
			return nil, newServiceError(apperrors.ErrConflict, "Email is already registered")
		}
		return nil, serviceError(s.log, err, "Failed to create user")
	}

	s.log.Info("User registered", zap.String("user_id", user.ID.String()))
	return s.issue(user)
}

func (s *AccountService) Login(ctx context.Context, req *LoginRequest) (*AuthResponse, *ServiceError) {
	user, err := s.users.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		if appErr, ok := apperrors.From(err); ok && appErr.Reason == apperrors.ReasonNotFound {
			return nil, serviceError(s.log, apperrors.ErrInvalidCredentials, "Login failed")
		}
		return nil, serviceError(s.log, err, "Failed to load user")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, serviceError(s.log, apperrors.ErrInvalidCredentials, "Login failed")
	}
	return s.issue(user)
}

func (s *AccountService) issue(user *models.User) (*AuthResponse, *ServiceError) {
	token, expiresAt, err := s.tokens.IssueAccessToken(auth.Identity{
		UserID: user.ID.String(),
		Email:  user.Email,
		Role:   string(user.Role),
	})
	if err != nil {
		return nil, serviceError(s.log, err, "Failed to issue token")
	}
	return &AuthResponse{User: user, AccessToken: token, ExpiresAt: expiresAt}, nil
}

func (s *AccountService) Me(ctx context.Context, userID uuid.UUID) (*models.User, *ServiceError) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, serviceError(s.log, err, "Failed to load user")
	}
	return user, nil
}
