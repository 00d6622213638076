package repository

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/DhruvMalhotra01/Credit-Limit-Anly/internal/models"
)

var (
	ErrUserNotFound = errors.New("user not found")
	ErrUserExists   = errors.New("user already exists")
	// ErrProviderMismatch is returned when an email is already registered through another provider.
	ErrProviderMismatch = errors.New("user registered with another provider")
)

// Repository keeps users in memory for the lifetime of the process
type Repository struct {
	mu      sync.RWMutex
	byEmail map[string]*models.User
	now     func() time.Time
}

// NewRepository initializes a new repository
func NewRepository() *Repository {
	return &Repository{
		byEmail: make(map[string]*models.User),
		now:     time.Now,
	}
}

// CreateUser stores a new user and fills in its ID and creation time
func (r *Repository) CreateUser(user *models.User) error {
	key := normalizeEmail(user.Email)
	if key == "" {
		return fmt.Errorf("failed to create user: email is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byEmail[key]; exists {
		return fmt.Errorf("failed to create user %s: %w", key, ErrUserExists)
	}
	user.ID = uuid.NewString()
	user.Email = key
	user.CreatedAt = r.now().UTC()

	stored := *user
	r.byEmail[key] = &stored
	return nil
}

// FindUserByEmail retrieves a user by email
func (r *Repository) FindUserByEmail(email string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.byEmail[normalizeEmail(email)]
	if !ok {
		return nil, ErrUserNotFound
	}
	found := *user
	return &found, nil
}

// FindOrCreateUser returns the stored user for an external identity, creating it on first sign-in.
// An email registered through a different provider is never linked.
func (r *Repository) FindOrCreateUser(identity *models.User) (*models.User, error) {
	user, err := r.FindUserByEmail(identity.Email)
	if err == nil {
		return sameProvider(user, identity)
	}

	created := *identity
	if err := r.CreateUser(&created); err != nil {
		// Lost a race with a concurrent sign-in for the same email.
		if errors.Is(err, ErrUserExists) {
			if user, err = r.FindUserByEmail(identity.Email); err != nil {
				return nil, err
			}
			return sameProvider(user, identity)
		}
		return nil, err
	}
	return &created, nil
}

func sameProvider(user, identity *models.User) (*models.User, error) {
	if user.Provider != identity.Provider {
		return nil, fmt.Errorf("failed to sign in %s with %s: %w", user.Email, identity.Provider, ErrProviderMismatch)
	}
	return user, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
