package auth

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/aptfolio/backend/domain"
)

// MockOperatorRepository is a mock implementation of repository.OperatorRepository.
type MockOperatorRepository struct {
	mock.Mock
}

func (m *MockOperatorRepository) GetByUsername(ctx context.Context, username string) (*domain.Operator, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Operator), args.Error(1)
}

func (m *MockOperatorRepository) Upsert(ctx context.Context, operator *domain.Operator) error {
	args := m.Called(ctx, operator)
	return args.Error(0)
}

// MockSessionRepository is a mock implementation of repository.SessionRepository.
type MockSessionRepository struct {
	mock.Mock
}

func (m *MockSessionRepository) Get(ctx context.Context, id string) (*domain.Session, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Session), args.Error(1)
}

func (m *MockSessionRepository) Save(ctx context.Context, session *domain.Session) error {
	args := m.Called(ctx, session)
	return args.Error(0)
}

func (m *MockSessionRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockSessionRepository) Extend(ctx context.Context, id string, ttlSeconds int) error {
	args := m.Called(ctx, id, ttlSeconds)
	return args.Error(0)
}

const testSecret = "test-secret"

func setupUseCase() (*UseCase, *MockOperatorRepository, *MockSessionRepository) {
	operators := new(MockOperatorRepository)
	sessions := new(MockSessionRepository)
	uc := New(operators, sessions, Config{
		Secret: testSecret,
		Issuer: "aptfolio-test",
		TTL:    time.Hour,
	}, zap.NewNop())
	return uc, operators, sessions
}

func storedOperator(t *testing.T, password string) *domain.Operator {
	t.Helper()
	hash, err := domain.HashPassword(password)
	require.NoError(t, err)
	return &domain.Operator{
		ID:           "op-1",
		Username:     "admin",
		PasswordHash: hash,
	}
}

func TestLogin_Success(t *testing.T) {
	uc, operators, sessions := setupUseCase()

	operators.On("GetByUsername", mock.Anything, "admin").Return(storedOperator(t, "s3cret"), nil)
	sessions.On("Save", mock.Anything, mock.MatchedBy(func(s *domain.Session) bool {
		return s.OperatorID == "op-1" && s.ID != ""
	})).Return(nil)

	creds, err := uc.Login(context.Background(), "admin", "s3cret")
	require.NoError(t, err)
	require.NotNil(t, creds.Session)
	assert.Equal(t, "op-1", creds.Session.OperatorID)

	// The token is verifiable with the shared secret and carries the session.
	parsed, err := jwt.Parse(creds.Token, func(token *jwt.Token) (interface{}, error) {
		return []byte(testSecret), nil
	})
	require.NoError(t, err)
	claims := parsed.Claims.(jwt.MapClaims)
	assert.Equal(t, "op-1", claims["operator_id"])
	assert.Equal(t, creds.Session.ID, claims["session_id"])
	assert.Equal(t, "aptfolio-test", claims["iss"])

	operators.AssertExpectations(t)
	sessions.AssertExpectations(t)
}

func TestLogin_WrongPassword(t *testing.T) {
	uc, operators, sessions := setupUseCase()

	operators.On("GetByUsername", mock.Anything, "admin").Return(storedOperator(t, "s3cret"), nil)

	_, err := uc.Login(context.Background(), "admin", "guess")
	require.ErrorIs(t, err, domain.ErrUnauthorized)
	sessions.AssertNotCalled(t, "Save")
}

func TestLogin_UnknownOperator(t *testing.T) {
	uc, operators, sessions := setupUseCase()

	operators.On("GetByUsername", mock.Anything, "ghost").Return(nil, domain.ErrOperatorNotFound)

	_, err := uc.Login(context.Background(), "ghost", "whatever")
	require.ErrorIs(t, err, domain.ErrUnauthorized, "unknown users look like wrong passwords")
	sessions.AssertNotCalled(t, "Save")
}

func TestLogin_EmptyCredentials(t *testing.T) {
	uc, operators, _ := setupUseCase()

	_, err := uc.Login(context.Background(), "", "")
	require.Error(t, err)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeInvalid))
	operators.AssertNotCalled(t, "GetByUsername")
}

func TestRefreshSession(t *testing.T) {
	uc, _, sessions := setupUseCase()

	live := &domain.Session{
		ID:         "sess-1",
		OperatorID: "op-1",
		CreatedAt:  time.Now().Add(-time.Minute),
		ExpiresAt:  time.Now().Add(time.Minute),
	}
	sessions.On("Get", mock.Anything, "sess-1").Return(live, nil)
	sessions.On("Extend", mock.Anything, "sess-1", 3600).Return(nil)

	refreshed, err := uc.RefreshSession(context.Background(), "sess-1")
	require.NoError(t, err)
	assert.True(t, refreshed.ExpiresAt.After(time.Now().Add(50*time.Minute)))
	sessions.AssertExpectations(t)
}

func TestRefreshSession_Expired(t *testing.T) {
	uc, _, sessions := setupUseCase()

	stale := &domain.Session{
		ID:         "sess-1",
		OperatorID: "op-1",
		CreatedAt:  time.Now().Add(-2 * time.Hour),
		ExpiresAt:  time.Now().Add(-time.Hour),
	}
	sessions.On("Get", mock.Anything, "sess-1").Return(stale, nil)
	sessions.On("Delete", mock.Anything, "sess-1").Return(nil)

	_, err := uc.RefreshSession(context.Background(), "sess-1")
	require.ErrorIs(t, err, domain.ErrSessionNotFound)
	sessions.AssertNotCalled(t, "Extend")
}

func TestLogout(t *testing.T) {
	uc, _, sessions := setupUseCase()

	sessions.On("Delete", mock.Anything, "sess-1").Return(nil)
	require.NoError(t, uc.Logout(context.Background(), "sess-1"))
	sessions.AssertExpectations(t)
}
