package auth

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/aptfolio/backend/domain"
	"github.com/aptfolio/backend/repository"
)

// Config carries token issuance settings.
type Config struct {
	Secret string
	Issuer string
	TTL    time.Duration
}

type UseCase struct {
	operators repository.OperatorRepository
	sessions  repository.SessionRepository
	cfg       Config
	logger    *zap.Logger
}

func New(operators repository.OperatorRepository, sessions repository.SessionRepository, cfg Config, logger *zap.Logger) *UseCase {
	if cfg.TTL <= 0 {
		cfg.TTL = 24 * time.Hour
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		operators: operators,
		sessions:  sessions,
		cfg:       cfg,
		logger:    logger,
	}
}

// Credentials is the result of a successful login.
type Credentials struct {
	Token   string          `json:"token"`
	Session *domain.Session `json:"session"`
}

// Login verifies the operator's password and issues a signed bearer token
// backed by a Redis session. Unknown users and wrong passwords are
// indistinguishable to the caller.
func (uc *UseCase) Login(ctx context.Context, username, password string) (*Credentials, error) {
	if username == "" || password == "" {
		return nil, domain.WrapError(domain.ErrCodeInvalid, "username and password are required", nil)
	}

	operator, err := uc.operators.GetByUsername(ctx, username)
	if err != nil {
		if domain.IsDomainError(err, domain.ErrCodeNotFound) {
			return nil, domain.ErrUnauthorized
		}
		return nil, err
	}
	if !operator.CheckPassword(password) {
		uc.logger.Warn("login rejected", zap.String("username", username))
		return nil, domain.ErrUnauthorized
	}

	now := time.Now()
	session := &domain.Session{
		ID:         uuid.NewString(),
		OperatorID: operator.ID,
		CreatedAt:  now,
		ExpiresAt:  now.Add(uc.cfg.TTL),
	}
	if err := uc.sessions.Save(ctx, session); err != nil {
		return nil, err
	}

	token, err := uc.signToken(operator.ID, session)
	if err != nil {
		return nil, err
	}

	uc.logger.Info("operator logged in", zap.String("operator_id", operator.ID))
	return &Credentials{Token: token, Session: session}, nil
}

// RefreshSession extends a live session's TTL.
func (uc *UseCase) RefreshSession(ctx context.Context, sessionID string) (*domain.Session, error) {
	session, err := uc.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.IsExpired(time.Now()) {
		_ = uc.sessions.Delete(ctx, sessionID)
		return nil, domain.ErrSessionNotFound
	}
	if err := uc.sessions.Extend(ctx, sessionID, int(uc.cfg.TTL.Seconds())); err != nil {
		return nil, err
	}
	session.ExpiresAt = time.Now().Add(uc.cfg.TTL)
	return session, nil
}

// Logout revokes the session behind a token.
func (uc *UseCase) Logout(ctx context.Context, sessionID string) error {
	return uc.sessions.Delete(ctx, sessionID)
}

func (uc *UseCase) signToken(operatorID string, session *domain.Session) (string, error) {
	claims := jwt.MapClaims{
		"operator_id": operatorID,
		"session_id":  session.ID,
		"iss":         uc.cfg.Issuer,
		"iat":         session.CreatedAt.Unix(),
		"exp":         session.ExpiresAt.Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(uc.cfg.Secret))
}
