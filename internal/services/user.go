package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/spinspot/server/internal/config"
	"github.com/spinspot/server/internal/database"
	"github.com/spinspot/server/internal/models"
	"github.com/spinspot/server/pkg/auth"
	"gorm.io/gorm"
)

var (
	// ErrEmailTaken means registration used an email that already exists.
	ErrEmailTaken = errors.New("email already registered")
	// ErrInvalidCredentials means login failed; the cause is deliberately
	// not distinguished.
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// UserService handles registration, login and token refresh.
type UserService struct {
	db  *database.DB
	cfg *config.Config
}

// NewUserService creates a new UserService.
func NewUserService(db *database.DB, cfg *config.Config) *UserService {
	return &UserService{db: db, cfg: cfg}
}

// RegisterInput is the caller-supplied registration shape.
type RegisterInput struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
}

// TokenPair is an issued access/refresh token pair.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// Register creates an account and issues tokens.
func (s *UserService) Register(ctx context.Context, input RegisterInput) (*models.User, *TokenPair, error) {
	if input.Email == "" || input.Password == "" || input.Username == "" {
		return nil, nil, fmt.Errorf("%w: email, password and username are required", ErrMissingQuery)
	}

	var existing models.User
	err := s.db.WithContext(ctx).Where("email = ?", input.Email).First(&existing).Error
	if err == nil {
		return nil, nil, ErrEmailTaken
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, fmt.Errorf("user lookup: %w", err)
	}

	hash, err := auth.HashPassword(input.Password)
	if err != nil {
		return nil, nil, fmt.Errorf("password hash: %w", err)
	}

	displayName := input.DisplayName
	if displayName == "" {
		displayName = input.Username
	}

	user := models.User{
		Email:        input.Email,
		PasswordHash: hash,
		Username:     input.Username,
		DisplayName:  displayName,
	}
	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		return nil, nil, fmt.Errorf("create user: %w", err)
	}

	tokens, err := s.issueTokens(user.ID)
	if err != nil {
		return nil, nil, err
	}
	return &user, tokens, nil
}

// Login verifies credentials and issues tokens.
func (s *UserService) Login(ctx context.Context, email, password string) (*models.User, *TokenPair, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrInvalidCredentials
		}
		return nil, nil, fmt.Errorf("user lookup: %w", err)
	}

	if !auth.CheckPassword(password, user.PasswordHash) {
		return nil, nil, ErrInvalidCredentials
	}

	tokens, err := s.issueTokens(user.ID)
	if err != nil {
		return nil, nil, err
	}
	return &user, tokens, nil
}

// Refresh exchanges a valid refresh token for a fresh pair.
func (s *UserService) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	claims, err := auth.ValidateRefreshToken(refreshToken, s.cfg.JWTSecretKey)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	var user models.User
	if err := s.db.WithContext(ctx).First(&user, claims.UserID).Error; err != nil {
		return nil, ErrInvalidCredentials
	}

	return s.issueTokens(user.ID)
}

// RegisterDevice stores or reactivates a push token for the viewer.
func (s *UserService) RegisterDevice(ctx context.Context, viewerID uint, token, platform string) error {
	if viewerID == 0 {
		return ErrUnauthenticated
	}
	if token == "" {
		return fmt.Errorf("%w: device token is required", ErrMissingQuery)
	}

	device := models.PushDevice{
		UserID:   viewerID,
		Token:    token,
		Platform: platform,
		IsActive: true,
	}
	err := s.db.WithContext(ctx).
		Where("token = ?", token).
		Assign(map[string]interface{}{"user_id": viewerID, "is_active": true, "platform": platform}).
		FirstOrCreate(&device).Error
	if err != nil {
		return fmt.Errorf("register device: %w", err)
	}
	return nil
}

func (s *UserService) issueTokens(userID uint) (*TokenPair, error) {
	access, refresh, err := auth.GenerateTokenPair(
		userID,
		s.cfg.JWTSecretKey,
		s.cfg.JWTAccessTokenExpireMin,
		s.cfg.JWTRefreshTokenExpireDays,
	)
	if err != nil {
		return nil, fmt.Errorf("token issue: %w", err)
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}
