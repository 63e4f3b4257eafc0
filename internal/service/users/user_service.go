package users

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/SREENATHREDDY1234/music-freak/internal/auth"
	"github.com/SREENATHREDDY1234/music-freak/internal/domain"
	"github.com/SREENATHREDDY1234/music-freak/internal/repository"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

var (
	ErrNotFound           = errors.New("user not found")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrForbidden          = errors.New("forbidden")
	ErrInvalidInput       = errors.New("invalid user")
)

var validate = validator.New()

type UserUseCase interface {
	Register(ctx context.Context, input RegisterInput) (*AuthResult, error)
	Login(ctx context.Context, input LoginInput) (*AuthResult, error)
	Profile(ctx context.Context, userID string, caller auth.Identity) (*domain.Profile, error)
	UpdatePreferences(ctx context.Context, userID string, caller auth.Identity, prefs domain.Preferences) (*domain.User, error)
}

type RegisterInput struct {
	Name        string             `json:"name" validate:"required"`
	Email       string             `json:"email" validate:"required,email"`
	Password    string             `json:"password" validate:"required,min=8"`
	Location    string             `json:"location"`
	Preferences domain.Preferences `json:"preferences"`
}

type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type AuthResult struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      *domain.User `json:"user"`
}

type UserService struct {
	users       repository.UserRepository
	bookings    repository.BookingRepository
	tokens      *auth.TokenIssuer
	bcryptCost  int
	adminEmails map[string]bool
}

func NewUserService(
	users repository.UserRepository,
	bookings repository.BookingRepository,
	tokens *auth.TokenIssuer,
	bcryptCost int,
	adminEmails []string,
) *UserService {
	admins := make(map[string]bool, len(adminEmails))
	for _, e := range adminEmails {
		admins[strings.ToLower(e)] = true
	}
	return &UserService{users: users, bookings: bookings, tokens: tokens, bcryptCost: bcryptCost, adminEmails: admins}
}

// Register creates a user account. The role is never taken from the
// request: configured admin emails become admins, everyone else a user.
func (s *UserService) Register(ctx context.Context, input RegisterInput) (*AuthResult, error) {
	if err := validate.Struct(input); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	email := strings.ToLower(strings.TrimSpace(input.Email))

	hash, err := auth.HashPassword(input.Password, s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	role := domain.RoleUser
	if s.adminEmails[email] {
		role = domain.RoleAdmin
	}
	u := &domain.User{
		ID:           uuid.NewString(),
		Name:         input.Name,
		Email:        email,
		PasswordHash: hash,
		Location:     input.Location,
		Preferences:  normalizePreferences(input.Preferences),
		Role:         role,
	}
	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, fmt.Errorf("%w: %s", ErrEmailTaken, email)
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return s.issue(u)
}

func (s *UserService) Login(ctx context.Context, input LoginInput) (*AuthResult, error) {
	if err := validate.Struct(input); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	u, err := s.users.GetByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !auth.VerifyPassword(u.PasswordHash, input.Password) {
		return nil, ErrInvalidCredentials
	}
	return s.issue(u)
}

// Profile returns the user with their booking history.
func (s *UserService) Profile(ctx context.Context, userID string, caller auth.Identity) (*domain.Profile, error) {
	if userID != caller.UserID && !caller.IsAdmin() {
		return nil, ErrForbidden
	}
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, notFound(err, userID)
	}
	bookings, err := s.bookings.ListByPurchaser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	return &domain.Profile{User: *u, Bookings: bookings}, nil
}

func (s *UserService) UpdatePreferences(ctx context.Context, userID string, caller auth.Identity, prefs domain.Preferences) (*domain.User, error) {
	if userID != caller.UserID && !caller.IsAdmin() {
		return nil, ErrForbidden
	}
	u, err := s.users.UpdatePreferences(ctx, userID, normalizePreferences(prefs))
	if err != nil {
		return nil, notFound(err, userID)
	}
	return u, nil
}

func (s *UserService) issue(u *domain.User) (*AuthResult, error) {
	token, exp, err := s.tokens.Issue(u)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Token: token, ExpiresAt: exp, User: u}, nil
}

func normalizePreferences(p domain.Preferences) domain.Preferences {
	if p.Genres == nil {
		p.Genres = []string{}
	}
	if p.FavoriteArtists == nil {
		p.FavoriteArtists = []string{}
	}
	return p
}

func notFound(err error, id string) error {
	if errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return err
}

var _ UserUseCase = (*UserService)(nil)
