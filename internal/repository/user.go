package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/sumire/collab/internal/docstore"
	"github.com/sumire/collab/internal/domain"
)

// UserRepository handles user profile documents.
type UserRepository struct {
	store docstore.Store
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(store docstore.Store) *UserRepository {
	return &UserRepository{store: store}
}

// FindByID retrieves a user profile by its ID.
func (r *UserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	doc, err := r.store.Get(ctx, docstore.CollectionUsers, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("find user %s: %w", id, err)
	}

	var user domain.User
	if err := decodeDoc(doc, &user); err != nil {
		return nil, fmt.Errorf("find user %s: %w", id, err)
	}
	user.ID = id
	return &user, nil
}

// FindByUsername scans the users collection for an exact username match.
// The first match wins; domain.ErrNotFound is returned when no user matches.
func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	entries, err := r.store.List(ctx, docstore.CollectionUsers)
	if err != nil {
		return nil, fmt.Errorf("scan users: %w", err)
	}

	for _, entry := range entries {
		var user domain.User
		if err := decodeDoc(entry.Doc, &user); err != nil {
			return nil, fmt.Errorf("scan users: %w", err)
		}
		if user.Username == username {
			user.ID = entry.Key
			return &user, nil
		}
	}
	return nil, domain.ErrNotFound
}

// Create stores a new user profile document.
func (r *UserRepository) Create(ctx context.Context, user domain.User) error {
	doc, err := encodeDoc(user)
	if err != nil {
		return fmt.Errorf("create user %s: %w", user.ID, err)
	}
	if err := r.store.Set(ctx, docstore.CollectionUsers, user.ID, doc); err != nil {
		return fmt.Errorf("create user %s: %w", user.ID, err)
	}
	return nil
}
