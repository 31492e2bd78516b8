package services

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"hinglish-snaps/api/auth"
	"hinglish-snaps/api/dto"
	"hinglish-snaps/models"
	"hinglish-snaps/repositories"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailTaken         = errors.New("email already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// UserStore is the part of the user repository the auth service needs.
type UserStore interface {
	Create(ctx context.Context, u *models.User) error
	FindByEmail(ctx context.Context, email string) (*models.User, error)
}

type AuthService struct {
	users      UserStore
	jwtManager *auth.JWTManager
	bcryptCost int
}

func NewAuthService(users UserStore, jwtManager *auth.JWTManager, bcryptCost int) *AuthService {
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		bcryptCost = bcrypt.DefaultCost
	}
	return &AuthService{users: users, jwtManager: jwtManager, bcryptCost: bcryptCost}
}

// Register creates an account and returns a session token for it.
func (s *AuthService) Register(ctx context.Context, in dto.RegisterRequestDTO) (*dto.AuthResponseDTO, error) {
	if _, err := s.users.FindByEmail(ctx, in.Email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, repositories.ErrNotFound) {
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u := &models.User{
		Username: in.Username,
		Email:    in.Email,
		Phone:    in.Phone,
		Password: string(hash),
	}
	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	token, err := s.jwtManager.Sign(u.ID.Hex(), u.Email, u.IsAdmin)
	if err != nil {
		return nil, fmt.Errorf("jwt sign: %w", err)
	}
	return &dto.AuthResponseDTO{Message: "Registration Successful", Token: token, UserID: u.ID.Hex()}, nil
}

// Login verifies credentials. Unknown email and wrong password both yield
// ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, in dto.LoginRequestDTO) (*dto.AuthResponseDTO, error) {
	u, err := s.users.FindByEmail(ctx, in.Email)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(in.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	token, err := s.jwtManager.Sign(u.ID.Hex(), u.Email, u.IsAdmin)
	if err != nil {
		return nil, fmt.Errorf("jwt sign: %w", err)
	}
	return &dto.AuthResponseDTO{Message: "Login Successful", Token: token, UserID: u.ID.Hex()}, nil
}

// ParseAccessToken verifies a session token.
func (s *AuthService) ParseAccessToken(token string) (*auth.Claims, error) {
	return s.jwtManager.Parse(token)
}

// GetUser loads the account a token was issued for, by its email claim.
func (s *AuthService) GetUser(ctx context.Context, email string) (*dto.UserDTO, error) {
	u, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &dto.UserDTO{
		ID:       u.ID.Hex(),
		Username: u.Username,
		Email:    u.Email,
		Phone:    u.Phone,
		IsAdmin:  u.IsAdmin,
	}, nil
}
