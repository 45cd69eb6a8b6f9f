package service

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/auth-service/internal/auth"
	"github.com/spec-kit/auth-service/internal/config"
	"github.com/spec-kit/auth-service/internal/domain"
	"github.com/spec-kit/auth-service/internal/events"
	"github.com/spec-kit/auth-service/internal/repository"
	apperrors "github.com/spec-kit/auth-service/pkg/util"
)

// SignUpInput carries the signup fields.
type SignUpInput struct {
	Name     string
	Email    string
	Password string
	Bio      string
	Location string
	JobTitle string
}

// Session is the result of a successful login: the account plus a fresh
// bearer token.
type Session struct {
	User      *domain.User
	Token     string
	ExpiresAt time.Time
}

// AuthService coordinates signup, login and logout flows.
type AuthService struct {
	users      repository.UserRepository
	authority  *auth.Authority
	revoked    auth.RevocationList
	dispatcher events.Dispatcher
	logger     *zap.Logger
	bcryptCost int
}

// AuthDependencies encapsulates collaborator requirements for the auth service.
type AuthDependencies struct {
	UserRepo       repository.UserRepository
	Authority      *auth.Authority
	RevocationList auth.RevocationList
	Dispatcher     events.Dispatcher
	Logger         *zap.Logger
}

// NewAuthService builds the service.
func NewAuthService(cfg config.Config, deps AuthDependencies) *AuthService {
	return &AuthService{
		users:      deps.UserRepo,
		authority:  deps.Authority,
		revoked:    deps.RevocationList,
		dispatcher: deps.Dispatcher,
		logger:     deps.Logger,
		bcryptCost: cfg.Auth.BcryptCost,
	}
}

// SignUp creates a new account. A duplicate email is rejected without
// touching the existing row; the unique index is the source of truth, so two
// concurrent signups for the same email cannot both succeed.
func (s *AuthService) SignUp(ctx context.Context, input SignUpInput) (*domain.User, error) {
	hash, err := auth.HashPassword(input.Password, s.bcryptCost)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Name:         input.Name,
		Email:        input.Email,
		PasswordHash: hash,
		Bio:          input.Bio,
		Location:     input.Location,
		JobTitle:     input.JobTitle,
		Status:       domain.UserStatusActive,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if err == repository.ErrDuplicateEmail {
			return nil, apperrors.NewDomainError("DUPLICATE_IDENTITY", "user with this email already registered", http.StatusBadRequest, nil)
		}
		return nil, err
	}

	s.publish(ctx, events.EventUserRegistered, user.ID, events.UserRegisteredPayload{
		Email: user.Email,
		Name:  user.Name,
	})
	return user, nil
}

// Login authenticates by email and password. An unknown email and a wrong
// password surface as the same generic unauthorized failure so the endpoint
// cannot be used to enumerate accounts; the distinction lives in the logs.
func (s *AuthService) Login(ctx context.Context, email, password string) (*Session, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if err == pgx.ErrNoRows {
			s.logger.Warn("login rejected", zap.String("email", email), zap.String("reason", "unknown email"))
			s.publish(ctx, events.EventLoginRejected, "", events.LoginRejectedPayload{Email: email})
			return nil, apperrors.NewUnauthorized("invalid email or password")
		}
		return nil, err
	}

	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		s.logger.Warn("login rejected", zap.String("email", email), zap.String("reason", "password mismatch"))
		s.publish(ctx, events.EventLoginRejected, user.ID, events.LoginRejectedPayload{Email: email})
		return nil, apperrors.NewUnauthorized("invalid email or password")
	}

	token, expiresAt, err := s.authority.Issue(user.ID)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.EventUserLoggedIn, user.ID, events.UserLoggedInPayload{Email: user.Email})
	return &Session{User: user, Token: token, ExpiresAt: expiresAt}, nil
}

// Logout withdraws the presented token ahead of its expiry.
func (s *AuthService) Logout(ctx context.Context, principal *auth.Principal) error {
	if s.revoked == nil || principal == nil || principal.Token == nil {
		return nil
	}
	if err := s.revoked.Revoke(ctx, principal.Token.TokenID, principal.Token.ExpiresAt); err != nil {
		return err
	}
	s.publish(ctx, events.EventTokenRevoked, principal.Token.SubjectID, events.TokenRevokedPayload{
		TokenID:   principal.Token.TokenID,
		ExpiresAt: principal.Token.ExpiresAt,
	})
	return nil
}

func (s *AuthService) publish(ctx context.Context, eventType events.EventType, subjectID string, payload interface{}) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		SubjectID: subjectID,
		Timestamp: time.Now(),
		Payload:   payload,
	})
}
