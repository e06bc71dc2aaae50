package service

import (
	"errors"
	"time"

	"flightschool_backend/internal/config"
	"flightschool_backend/internal/model"
	"flightschool_backend/internal/repository"
	"flightschool_backend/internal/util"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type AuthService struct {
	UserRepo   *repository.UserRepository
	TenantRepo *repository.TenantRepository
	Config     *config.Config
}

func NewAuthService(userRepo *repository.UserRepository, tenantRepo *repository.TenantRepository, cfg *config.Config) *AuthService {
	return &AuthService{
		UserRepo:   userRepo,
		TenantRepo: tenantRepo,
		Config:     cfg,
	}
}

type RegisterRequest struct {
	TenantCode string         `json:"tenantCode" binding:"required"`
	Name       string         `json:"name" binding:"required"`
	Email      string         `json:"email" binding:"required,email"`
	Password   string         `json:"password" binding:"required,min=6"`
	Role       model.UserRole `json:"role"`
}

type LoginRequest struct {
	TenantCode string `json:"tenantCode" binding:"required"`
	Email      string `json:"email" binding:"required,email"`
	Password   string `json:"password" binding:"required"`
}

type AuthResponse struct {
	Token string      `json:"token"`
	User  *model.User `json:"user"`
}

func (s *AuthService) Register(req RegisterRequest) (*AuthResponse, error) {
	tenant, err := s.TenantRepo.FindByCode(req.TenantCode)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}

	if _, err := s.UserRepo.FindByEmail(tenant.ID, req.Email); err == nil {
		return nil, util.ErrEmailRegistered
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	role := req.Role
	if role == "" {
		role = model.Student
	}

	user := &model.User{
		TenantID:  tenant.ID,
		Name:      req.Name,
		Email:     req.Email,
		Password:  string(hashed),
		Role:      role,
		LastLogin: time.Now(),
	}
	if err := s.UserRepo.Create(user); err != nil {
		return nil, err
	}

	return s.issueToken(user)
}

func (s *AuthService) Login(req LoginRequest) (*AuthResponse, error) {
	tenant, err := s.TenantRepo.FindByCode(req.TenantCode)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrInvalidCredential
	}
	if err != nil {
		return nil, err
	}

	user, err := s.UserRepo.FindByEmail(tenant.ID, req.Email)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrInvalidCredential
	}
	if err != nil {
		return nil, err
	}
	if user.Disabled {
		return nil, util.ErrPermissionDenied
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, util.ErrInvalidCredential
	}

	user.LastLogin = time.Now()
	if err := s.UserRepo.Update(user); err != nil {
		return nil, err
	}

	return s.issueToken(user)
}

func (s *AuthService) issueToken(user *model.User) (*AuthResponse, error) {
	token, err := util.GenerateJWT(user, s.Config.JWT.Secret, s.Config.JWT.ExpireTime)
	if err != nil {
		return nil, err
	}
	return &AuthResponse{Token: token, User: user}, nil
}
