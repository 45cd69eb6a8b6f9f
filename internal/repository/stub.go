package repository

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/auth-service/internal/domain"
)

// StubUserRepository is an in-memory UserRepository for tests. It mirrors the
// Postgres behavior callers depend on: unique emails and pgx.ErrNoRows on
// misses.
type StubUserRepository struct {
	mu    sync.Mutex
	users map[string]*domain.User
}

// NewStubUserRepository creates an empty stub.
func NewStubUserRepository() *StubUserRepository {
	return &StubUserRepository{users: make(map[string]*domain.User)}
}

func (s *StubUserRepository) Create(_ context.Context, user *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if existing.Email == user.Email {
			return ErrDuplicateEmail
		}
	}
	user.ID = uuid.NewString()
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	clone := *user
	s.users[user.ID] = &clone
	return nil
}

func (s *StubUserRepository) GetByID(_ context.Context, id string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *user
	return &clone, nil
}

func (s *StubUserRepository) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, user := range s.users {
		if user.Email == email {
			clone := *user
			return &clone, nil
		}
	}
	return nil, pgx.ErrNoRows
}

// Delete removes a user. Tests use it to simulate a deleted subject behind a
// still-valid token.
func (s *StubUserRepository) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.users, id)
}

// Len reports the number of stored users.
func (s *StubUserRepository) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.users)
}

// StubRevocationList is an in-memory auth.RevocationList for tests.
type StubRevocationList struct {
	mu      sync.Mutex
	revoked map[string]time.Time
}

// NewStubRevocationList creates an empty stub.
func NewStubRevocationList() *StubRevocationList {
	return &StubRevocationList{revoked: make(map[string]time.Time)}
}

func (s *StubRevocationList) Revoke(_ context.Context, tokenID string, expiresAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.revoked[tokenID] = expiresAt
	return nil
}

func (s *StubRevocationList) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.revoked[tokenID]
	return ok, nil
}
