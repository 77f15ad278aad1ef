package test

import (
	"context"
	"fmt"
	"sync"

	domainErrors "github.com/polkiloo/storefront/internal/domain/errors"
	"github.com/polkiloo/storefront/internal/domain/model"
	"github.com/polkiloo/storefront/internal/domain/repository"
)

// UserRepositoryStub stores users in-memory for tests.
type UserRepositoryStub struct {
	mu    sync.Mutex
	Users map[string]*model.User
	ByID  map[int64]*model.User
	Next  int64
	Err   error
}

// NewUserRepositoryStub constructs stub repository with initialized maps.
func NewUserRepositoryStub() *UserRepositoryStub {
	return &UserRepositoryStub{
		Users: make(map[string]*model.User),
		ByID:  make(map[int64]*model.User),
		Next:  1,
	}
}

// Create registers user unless already exists or stub has explicit error.
func (s *UserRepositoryStub) Create(ctx context.Context, login, passwordHash string, role model.Role) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	if s.Users == nil {
		s.Users = make(map[string]*model.User)
	}
	if s.ByID == nil {
		s.ByID = make(map[int64]*model.User)
	}
	if _, exists := s.Users[login]; exists {
		return nil, domainErrors.ErrAlreadyExists
	}
	if s.Next == 0 {
		s.Next = 1
	}
	user := &model.User{ID: s.Next, Login: login, PasswordHash: passwordHash, Role: role}
	s.Next++
	s.Users[login] = user
	s.ByID[user.ID] = user
	return user, nil
}

// GetByLogin fetches user by login or returns not found.
func (s *UserRepositoryStub) GetByLogin(ctx context.Context, login string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	if user, ok := s.Users[login]; ok {
		return user, nil
	}
	return nil, domainErrors.ErrNotFound
}

// GetByID fetches user by identifier or returns not found.
func (s *UserRepositoryStub) GetByID(ctx context.Context, id int64) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	if user, ok := s.ByID[id]; ok {
		return user, nil
	}
	return nil, domainErrors.ErrNotFound
}

// IdempotencyStoreStub keeps idempotency keys in a map.
type IdempotencyStoreStub struct {
	mu      sync.Mutex
	entries map[string]int64
	Err     error
	Aborted int
}

func idempotencyKey(customerID int64, key string) string {
	return fmt.Sprintf("%d:%s", customerID, key)
}

// Begin reserves the key, reporting completed or in-flight duplicates.
func (s *IdempotencyStoreStub) Begin(ctx context.Context, customerID int64, key string) (int64, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return 0, false, s.Err
	}
	if s.entries == nil {
		s.entries = make(map[string]int64)
	}
	id, ok := s.entries[idempotencyKey(customerID, key)]
	switch {
	case !ok:
		s.entries[idempotencyKey(customerID, key)] = 0
		return 0, false, nil
	case id == 0:
		return 0, false, domainErrors.ErrRequestInProgress
	default:
		return id, true, nil
	}
}

// Complete stores the order id for the key.
func (s *IdempotencyStoreStub) Complete(ctx context.Context, customerID int64, key string, orderID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[idempotencyKey(customerID, key)] = orderID
	return nil
}

// Abort forgets the key.
func (s *IdempotencyStoreStub) Abort(ctx context.Context, customerID int64, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, idempotencyKey(customerID, key))
	s.Aborted++
	return nil
}

var (
	_ repository.UserRepository   = (*UserRepositoryStub)(nil)
	_ repository.IdempotencyStore = (*IdempotencyStoreStub)(nil)
)
