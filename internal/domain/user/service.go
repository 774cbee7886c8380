// internal/domain/user/service.go
package user

import (
	"fmt"
	"time"

	"github.com/your-org/sameday-checkout/internal/config"
	"github.com/your-org/sameday-checkout/internal/domain/discount"
	"github.com/your-org/sameday-checkout/internal/pkg/auth"
	"gorm.io/gorm"
)

// Welcome discount terms granted to every new account
const (
	welcomePercentage = 10.0
	welcomeValidFor   = 30 * 24 * time.Hour
)

// Service handles user business logic
type Service struct {
	db              *gorm.DB
	config          *config.Config
	jwtManager      *auth.JWTManager
	passwordManager *auth.PasswordManager
	discountService *discount.Service
}

// NewService creates a new user service
func NewService(db *gorm.DB, cfg *config.Config, discountService *discount.Service) *Service {
	return &Service{
		db:              db,
		config:          cfg,
		jwtManager:      auth.NewJWTManager(cfg),
		passwordManager: auth.NewPasswordManager(cfg),
		discountService: discountService,
	}
}

// RegisterRequest represents user registration request
type RegisterRequest struct {
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,min=8"`
	FirstName string `json:"first_name" binding:"required"`
	LastName  string `json:"last_name" binding:"required"`
	Phone     string `json:"phone"`
}

// LoginRequest represents user login request
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// AuthResponse represents authentication response
type AuthResponse struct {
	User         *User  `json:"user"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}

// Register creates a new user account and grants the welcome discount
func (s *Service) Register(req *RegisterRequest) (*AuthResponse, error) {
	if err := s.passwordManager.ValidatePassword(req.Password); err != nil {
		return nil, err
	}

	var existing User
	if err := s.db.Where("email = ?", req.Email).First(&existing).Error; err == nil {
		return nil, fmt.Errorf("user with this email already exists")
	} else if err != gorm.ErrRecordNotFound {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}

	hashedPassword, err := s.passwordManager.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	newUser := User{
		Email:     req.Email,
		Password:  hashedPassword,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     req.Phone,
		IsActive:  true,
	}
	if err := s.db.Create(&newUser).Error; err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	// New accounts get a welcome discount for their first purchase
	if _, err := s.discountService.GrantWelcomeDiscount(newUser.ID, welcomePercentage, welcomeValidFor); err != nil {
		return nil, fmt.Errorf("failed to grant welcome discount: %w", err)
	}

	return s.generateAuthResponse(&newUser)
}

// Login authenticates a user
func (s *Service) Login(req *LoginRequest) (*AuthResponse, error) {
	var u User
	if err := s.db.Where("email = ? AND is_active = ?", req.Email, true).First(&u).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("invalid email or password")
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if err := s.passwordManager.VerifyPassword(req.Password, u.Password); err != nil {
		return nil, fmt.Errorf("invalid email or password")
	}

	now := time.Now().UTC()
	s.db.Model(&u).Update("last_login_at", now)

	return s.generateAuthResponse(&u)
}

// GetUserByID retrieves an active user by ID
func (s *Service) GetUserByID(userID uint) (*User, error) {
	var u User
	if err := s.db.Where("id = ? AND is_active = ?", userID, true).First(&u).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("user not found")
		}
		return nil, fmt.Errorf("failed to retrieve user: %w", err)
	}
	return &u, nil
}

// RefreshToken issues a new token pair from a valid refresh token
func (s *Service) RefreshToken(refreshToken string) (*AuthResponse, error) {
	claims, err := s.jwtManager.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, fmt.Errorf("invalid refresh token: %w", err)
	}

	u, err := s.GetUserByID(claims.UserID)
	if err != nil {
		return nil, err
	}

	return s.generateAuthResponse(u)
}

func (s *Service) generateAuthResponse(u *User) (*AuthResponse, error) {
	accessToken, err := s.jwtManager.GenerateAccessToken(u.ID, u.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	refreshToken, err := s.jwtManager.GenerateRefreshToken(u.ID, u.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	return &AuthResponse{
		User:         u,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int64(s.config.JWT.AccessTokenExpiry.Seconds()),
	}, nil
}
