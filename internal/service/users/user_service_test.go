package users

import (
	"context"
	"testing"
	"time"

	"github.com/SREENATHREDDY1234/music-freak/internal/auth"
	"github.com/SREENATHREDDY1234/music-freak/internal/domain"
	"github.com/SREENATHREDDY1234/music-freak/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, u *domain.User) error {
	return m.Called(ctx, u).Error(0)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) UpdatePreferences(ctx context.Context, id string, prefs domain.Preferences) (*domain.User, error) {
	args := m.Called(ctx, id, prefs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

type MockBookingRepository struct {
	mock.Mock
	repository.BookingRepository
}

func (m *MockBookingRepository) ListByPurchaser(ctx context.Context, purchaserID string) ([]domain.Booking, error) {
	args := m.Called(ctx, purchaserID)
	return args.Get(0).([]domain.Booking), args.Error(1)
}

func newService(users *MockUserRepository, bookings *MockBookingRepository) *UserService {
	return NewUserService(users, bookings, auth.NewTokenIssuer("secret", time.Hour), bcrypt.MinCost, []string{"Boss@Example.com"})
}

func TestUserService_Register(t *testing.T) {
	mockUsers := &MockUserRepository{}
	service := newService(mockUsers, &MockBookingRepository{})
	ctx := context.Background()

	mockUsers.On("Create", ctx, mock.AnythingOfType("*domain.User")).Return(nil).Twice()

	res, err := service.Register(ctx, RegisterInput{Name: "Fan", Email: "Fan@Example.com", Password: "password1"})
	require.NoError(t, err)
	assert.NotEmpty(t, res.Token)
	assert.Equal(t, "fan@example.com", res.User.Email)
	assert.Equal(t, domain.RoleUser, res.User.Role)
	assert.NotEqual(t, "password1", res.User.PasswordHash)
	assert.True(t, auth.VerifyPassword(res.User.PasswordHash, "password1"))

	res, err = service.Register(ctx, RegisterInput{Name: "Boss", Email: "boss@example.com", Password: "password1"})
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, res.User.Role)
	mockUsers.AssertExpectations(t)
}

func TestUserService_Register_Invalid(t *testing.T) {
	service := newService(&MockUserRepository{}, &MockBookingRepository{})

	_, err := service.Register(context.Background(), RegisterInput{Name: "Fan", Email: "fan@example.com", Password: "short"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = service.Register(context.Background(), RegisterInput{Name: "Fan", Email: "not-an-email", Password: "password1"})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestUserService_Register_EmailTaken(t *testing.T) {
	mockUsers := &MockUserRepository{}
	service := newService(mockUsers, &MockBookingRepository{})
	ctx := context.Background()

	mockUsers.On("Create", ctx, mock.Anything).Return(repository.ErrDuplicate).Once()

	_, err := service.Register(ctx, RegisterInput{Name: "Fan", Email: "fan@example.com", Password: "password1"})
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestUserService_Login(t *testing.T) {
	mockUsers := &MockUserRepository{}
	service := newService(mockUsers, &MockBookingRepository{})
	ctx := context.Background()

	hash, err := auth.HashPassword("password1", bcrypt.MinCost)
	require.NoError(t, err)
	stored := &domain.User{ID: "u1", Email: "fan@example.com", PasswordHash: hash, Role: domain.RoleUser}

	mockUsers.On("GetByEmail", ctx, "fan@example.com").Return(stored, nil).Twice()
	mockUsers.On("GetByEmail", ctx, "ghost@example.com").Return(nil, repository.ErrNotFound).Once()

	res, err := service.Login(ctx, LoginInput{Email: "fan@example.com", Password: "password1"})
	require.NoError(t, err)

	id, err := auth.NewTokenIssuer("secret", time.Hour).Parse(res.Token)
	require.NoError(t, err)
	assert.Equal(t, "u1", id.UserID)

	_, err = service.Login(ctx, LoginInput{Email: "fan@example.com", Password: "wrong-password"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = service.Login(ctx, LoginInput{Email: "ghost@example.com", Password: "password1"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestUserService_Profile(t *testing.T) {
	mockUsers := &MockUserRepository{}
	mockBookings := &MockBookingRepository{}
	service := newService(mockUsers, mockBookings)
	ctx := context.Background()
	me := auth.Identity{UserID: "u1", Role: domain.RoleUser}

	mockUsers.On("GetByID", ctx, "u1").Return(&domain.User{ID: "u1"}, nil).Once()
	mockBookings.On("ListByPurchaser", ctx, "u1").Return([]domain.Booking{{ID: "b1"}}, nil).Once()

	profile, err := service.Profile(ctx, "u1", me)
	require.NoError(t, err)
	assert.Len(t, profile.Bookings, 1)

	_, err = service.Profile(ctx, "u2", me)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestUserService_UpdatePreferences(t *testing.T) {
	mockUsers := &MockUserRepository{}
	service := newService(mockUsers, &MockBookingRepository{})
	ctx := context.Background()
	admin := auth.Identity{UserID: "root", Role: domain.RoleAdmin}

	want := domain.Preferences{Genres: []string{"jazz"}, FavoriteArtists: []string{}}
	mockUsers.On("UpdatePreferences", ctx, "u1", want).Return(&domain.User{ID: "u1", Preferences: want}, nil).Once()
	mockUsers.On("UpdatePreferences", ctx, "ghost", mock.Anything).Return(nil, repository.ErrNotFound).Once()

	u, err := service.UpdatePreferences(ctx, "u1", admin, domain.Preferences{Genres: []string{"jazz"}})
	require.NoError(t, err)
	assert.Equal(t, want, u.Preferences)

	_, err = service.UpdatePreferences(ctx, "ghost", admin, domain.Preferences{})
	assert.ErrorIs(t, err, ErrNotFound)
	mockUsers.AssertExpectations(t)
}
