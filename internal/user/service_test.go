package user_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/invoicehub/backend/internal/user"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) GetByID(ctx context.Context, id int64) (*user.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.User), args.Error(1)
}

func (m *MockRepository) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.User), args.Error(1)
}

func (m *MockRepository) List(ctx context.Context, limit, offset int) ([]user.User, int64, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]user.User), args.Get(1).(int64), args.Error(2)
}

func (m *MockRepository) Update(ctx context.Context, id int64, profile user.UpdateProfile) (*user.User, error) {
	args := m.Called(ctx, id, profile)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.User), args.Error(1)
}

func (m *MockRepository) ListContacts(ctx context.Context, userID int64) ([]user.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]user.User), args.Error(1)
}

func (m *MockRepository) GetContact(ctx context.Context, userID, contactID int64) (*user.User, error) {
	args := m.Called(ctx, userID, contactID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.User), args.Error(1)
}

func (m *MockRepository) ListInvoices(ctx context.Context, userID int64) ([]user.Invoice, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]user.Invoice), args.Error(1)
}

func hashPassword(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(hash)
}

func TestService_Authenticate_EmptyInput(t *testing.T) {
	mockRepo := new(MockRepository)
	svc := user.NewService(mockRepo)

	_, err := svc.Authenticate(context.Background(), "", "P@ss1")
	assert.ErrorIs(t, err, user.ErrInvalidInput)

	_, err = svc.Authenticate(context.Background(), "a@x.com", "")
	assert.ErrorIs(t, err, user.ErrInvalidInput)

	mockRepo.AssertNotCalled(t, "GetByEmail", mock.Anything, mock.Anything)
}

func TestService_Authenticate_UnknownEmail(t *testing.T) {
	mockRepo := new(MockRepository)
	svc := user.NewService(mockRepo)

	mockRepo.On("GetByEmail", mock.Anything, "missing@x.com").
		Return(nil, user.ErrNotFound).
		Once()

	authenticated, err := svc.Authenticate(context.Background(), "missing@x.com", "whatever")
	assert.ErrorIs(t, err, user.ErrNotFound)
	assert.Nil(t, authenticated)
	mockRepo.AssertExpectations(t)
}

func TestService_Authenticate_WrongPassword(t *testing.T) {
	mockRepo := new(MockRepository)
	svc := user.NewService(mockRepo)

	stored := &user.User{ID: 1, Email: "a@x.com", Password: hashPassword(t, "P@ss1")}
	mockRepo.On("GetByEmail", mock.Anything, "a@x.com").Return(stored, nil).Once()

	authenticated, err := svc.Authenticate(context.Background(), "a@x.com", "wrong")
	assert.ErrorIs(t, err, user.ErrInvalidCredentials)
	assert.Nil(t, authenticated)
	mockRepo.AssertExpectations(t)
}

func TestService_Authenticate_Success(t *testing.T) {
	mockRepo := new(MockRepository)
	svc := user.NewService(mockRepo)

	stored := &user.User{ID: 1, Email: "a@x.com", Name: "Alice", Surnames: "Anders", Password: hashPassword(t, "P@ss1")}
	mockRepo.On("GetByEmail", mock.Anything, "a@x.com").Return(stored, nil).Once()

	authenticated, err := svc.Authenticate(context.Background(), "a@x.com", "P@ss1")
	require.NoError(t, err)
	require.NotNil(t, authenticated)
	assert.Equal(t, "a@x.com", authenticated.Email)
	assert.Equal(t, int64(1), authenticated.ID)
	mockRepo.AssertExpectations(t)
}

func TestService_Authenticate_RepositoryFailure(t *testing.T) {
	mockRepo := new(MockRepository)
	svc := user.NewService(mockRepo)

	mockRepo.On("GetByEmail", mock.Anything, "a@x.com").
		Return(nil, errors.New("connection refused")).
		Once()

	_, err := svc.Authenticate(context.Background(), "a@x.com", "P@ss1")
	require.Error(t, err)
	assert.NotErrorIs(t, err, user.ErrNotFound)
	assert.NotErrorIs(t, err, user.ErrInvalidCredentials)
	mockRepo.AssertExpectations(t)
}

func TestService_GetUser_NotFound(t *testing.T) {
	mockRepo := new(MockRepository)
	svc := user.NewService(mockRepo)

	mockRepo.On("GetByID", mock.Anything, int64(99)).Return(nil, user.ErrNotFound).Once()

	_, err := svc.GetUser(context.Background(), 99)
	assert.ErrorIs(t, err, user.ErrNotFound)
	mockRepo.AssertExpectations(t)
}

func TestService_ListUsers_PassesBoundsThrough(t *testing.T) {
	mockRepo := new(MockRepository)
	svc := user.NewService(mockRepo)

	expected := []user.User{{ID: 1}, {ID: 2}}
	mockRepo.On("List", mock.Anything, 10, 20).Return(expected, int64(57), nil).Once()

	users, total, err := svc.ListUsers(context.Background(), 10, 20)
	require.NoError(t, err)
	assert.Equal(t, expected, users)
	assert.Equal(t, int64(57), total)
	mockRepo.AssertExpectations(t)
}

func TestService_UpdateUser_EmailExists(t *testing.T) {
	mockRepo := new(MockRepository)
	svc := user.NewService(mockRepo)

	profile := user.UpdateProfile{Email: "taken@x.com", Name: "Alice", Surnames: "Anders"}
	mockRepo.On("Update", mock.Anything, int64(1), profile).Return(nil, user.ErrEmailExists).Once()

	_, err := svc.UpdateUser(context.Background(), 1, profile)
	assert.ErrorIs(t, err, user.ErrEmailExists)
	mockRepo.AssertExpectations(t)
}

func TestService_GetContact_NotFound(t *testing.T) {
	mockRepo := new(MockRepository)
	svc := user.NewService(mockRepo)

	mockRepo.On("GetContact", mock.Anything, int64(1), int64(2)).Return(nil, user.ErrNotFound).Once()

	_, err := svc.GetContact(context.Background(), 1, 2)
	assert.ErrorIs(t, err, user.ErrNotFound)
	mockRepo.AssertExpectations(t)
}
