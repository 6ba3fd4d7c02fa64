package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/flicky/haatbazar-api/internal/geo"
	"github.com/flicky/haatbazar-api/internal/model"
	"github.com/flicky/haatbazar-api/internal/repository"
)

var (
	ErrUserAlreadyExists = errors.New("user already exists")
	ErrUserNotFound      = errors.New("user not found")
	ErrInvalidRole       = errors.New("invalid role")
)

type RegisterInput struct {
	Name         string
	Mobile       string
	Role         model.Role
	Location     *model.Location
	SavedAddress string

	// UseDefaultLocation substitutes the fixed fallback when the device could not locate itself.
	UseDefaultLocation bool
}

type ProfileInput struct {
	Name         *string
	SavedAddress *string
	Location     *model.Location
}

type Session struct {
	Token string
	User  *model.User
}

type AuthService struct {
	userRepo  repository.UserRepository
	jwtSecret []byte
	jwtExpiry time.Duration
}

func NewAuthService(userRepo repository.UserRepository, jwtSecret string, jwtExpiry time.Duration) *AuthService {
	return &AuthService{userRepo: userRepo, jwtSecret: []byte(jwtSecret), jwtExpiry: jwtExpiry}
}

func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*Session, error) {
	switch in.Role {
	case model.RoleCustomer, model.RoleShopkeeper, model.RoleServiceProvider:
	default:
		return nil, ErrInvalidRole
	}

	loc := in.Location
	if loc == nil {
		if !in.UseDefaultLocation {
			return nil, ErrLocationRequired
		}
		fb := geo.Resolve(ctx)
		loc = &model.Location{Lat: fb.Lat, Lng: fb.Lng, Label: fb.Label}
	}

	existing, err := s.userRepo.GetByMobile(ctx, in.Mobile)
	if err != nil {
		return nil, fmt.Errorf("check user: %w", err)
	}
	if existing != nil {
		return nil, ErrUserAlreadyExists
	}

	user := &model.User{
		Name: in.Name, Mobile: in.Mobile, Role: in.Role,
		Location: loc, SavedAddress: in.SavedAddress,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return s.session(user)
}

// Login identifies a user by mobile number alone.
func (s *AuthService) Login(ctx context.Context, mobile string) (*Session, error) {
	user, err := s.userRepo.GetByMobile(ctx, mobile)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return s.session(user)
}

func (s *AuthService) Profile(ctx context.Context, userID uuid.UUID) (*model.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

func (s *AuthService) UpdateProfile(ctx context.Context, userID uuid.UUID, in ProfileInput) (*model.User, error) {
	user, err := s.Profile(ctx, userID)
	if err != nil {
		return nil, err
	}
	setString(&user.Name, in.Name)
	setString(&user.SavedAddress, in.SavedAddress)
	if in.Location != nil {
		user.Location = in.Location
	}
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}
	return user, nil
}

func (s *AuthService) session(user *model.User) (*Session, error) {
	token, err := s.generateToken(user)
	if err != nil {
		return nil, fmt.Errorf("generate token: %w", err)
	}
	return &Session{Token: token, User: user}, nil
}

func (s *AuthService) generateToken(user *model.User) (string, error) {
	claims := jwt.MapClaims{
		"sub":  user.ID.String(),
		"role": string(user.Role),
		"exp":  time.Now().Add(s.jwtExpiry).Unix(),
		"iat":  time.Now().Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
}
