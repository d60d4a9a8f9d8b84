package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"os"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/virendrasuryawanshi09/ratings-website/internal/events"
	"github.com/virendrasuryawanshi09/ratings-website/internal/jwt"
	"github.com/virendrasuryawanshi09/ratings-website/internal/model"
	"github.com/virendrasuryawanshi09/ratings-website/internal/repository"
)

var (
	ErrInvalidCredentials  = errors.New("invalid email or password")
	ErrTokenInvalid        = errors.New("token is invalid or expired")
	ErrAdminAlreadyExists  = errors.New("an admin account already exists")
	ErrBadBootstrapSecret  = errors.New("bootstrap secret does not match")
	ErrAdminPasswordChange = errors.New("admins cannot change their password via self-service")
)

type AuthService interface {
	RegisterUser(ctx context.Context, name, email, password, address string) (*model.User, error)
	// CreateUser is the admin-driven creation path and accepts any role.
	CreateUser(ctx context.Context, name, email, password, address, role string) (*model.User, error)
	// BootstrapAdmin creates the very first admin, gated by a pre-shared
	// secret. It fails once any admin exists.
	BootstrapAdmin(ctx context.Context, name, email, password, address, secret string) (*model.User, error)
	LoginUser(ctx context.Context, email, password string) (token string, user *model.User, err error)
	GetUserProfile(ctx context.Context, userID uuid.UUID) (*model.User, error)
	UpdatePassword(ctx context.Context, userID uuid.UUID, currentPassword, newPassword string) error
	ListUsers(ctx context.Context, params repository.ListUsersParams) (*repository.UserPage, error)
}

type authService struct {
	userRepo  repository.UserRepository
	publisher events.EventPublisher
}

func NewAuthService(userRepo repository.UserRepository, publisher events.EventPublisher) AuthService {
	return &authService{
		userRepo:  userRepo,
		publisher: publisher,
	}
}

func (s *authService) createUser(ctx context.Context, name, email, password, address, role string) (*model.User, error) {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)

	if err != nil {
		return nil, err
	}

	user := &model.User{
		Name:         name,
		Email:        email,
		PasswordHash: string(hashedPassword),
		Address:      address,
		Role:         role,
	}

	newID, err := s.userRepo.Create(ctx, user)
	if err != nil {
		return nil, err
	}

	user.ID = newID

	go s.publisher.PublishUserRegistered(user)

	return user, nil
}

func (s *authService) RegisterUser(ctx context.Context, name, email, password, address string) (*model.User, error) {
	return s.createUser(ctx, name, email, password, address, model.RoleUser)
}

func (s *authService) CreateUser(ctx context.Context, name, email, password, address, role string) (*model.User, error) {
	return s.createUser(ctx, name, email, password, address, role)
}

func (s *authService) BootstrapAdmin(ctx context.Context, name, email, password, address, secret string) (*model.User, error) {
	expected := os.Getenv("ADMIN_BOOTSTRAP_SECRET")
	if expected == "" || subtle.ConstantTimeCompare([]byte(secret), []byte(expected)) != 1 {
		return nil, ErrBadBootstrapSecret
	}

	count, err := s.userRepo.CountByRole(ctx, model.RoleAdmin)
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrAdminAlreadyExists
	}

	return s.createUser(ctx, name, email, password, address, model.RoleAdmin)
}

func (s *authService) LoginUser(ctx context.Context, email, password string) (string, *model.User, error) {
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return "", nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", nil, ErrInvalidCredentials
	}

	token, err := jwt.GenerateToken(user)
	if err != nil {
		return "", nil, err
	}

	return token, user, nil
}

func (s *authService) GetUserProfile(ctx context.Context, userID uuid.UUID) (*model.User, error) {
	return s.userRepo.FindByID(ctx, userID)
}

func (s *authService) UpdatePassword(ctx context.Context, userID uuid.UUID, currentPassword, newPassword string) error {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return err
	}

	if user.Role == model.RoleAdmin {
		return ErrAdminPasswordChange
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(currentPassword)); err != nil {
		return ErrInvalidCredentials
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	return s.userRepo.UpdatePasswordHash(ctx, userID, string(hashedPassword))
}

func (s *authService) ListUsers(ctx context.Context, params repository.ListUsersParams) (*repository.UserPage, error) {
	return s.userRepo.List(ctx, params)
}
