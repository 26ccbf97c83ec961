package repository

import (
	"context"
	"fmt"

	"github.com/sumire/collab/internal/docstore"
	"github.com/sumire/collab/internal/domain"
)

// AccountRepository handles the identity store's private credential documents.
type AccountRepository struct {
	store docstore.Store
}

// NewAccountRepository creates a new AccountRepository.
func NewAccountRepository(store docstore.Store) *AccountRepository {
	return &AccountRepository{store: store}
}

// FindByEmail scans accounts for an exact email match.
func (r *AccountRepository) FindByEmail(ctx context.Context, email string) (*domain.Account, error) {
	return r.scan(ctx, func(a *domain.Account) bool { return a.Email == email })
}

// FindByProvider scans accounts for an OAuth provider identity.
func (r *AccountRepository) FindByProvider(ctx context.Context, provider domain.AuthProvider, providerID string) (*domain.Account, error) {
	return r.scan(ctx, func(a *domain.Account) bool {
		return a.Provider == provider && a.ProviderID == providerID
	})
}

// Create stores a new account document keyed by the user ID.
func (r *AccountRepository) Create(ctx context.Context, account domain.Account) error {
	doc, err := encodeDoc(account)
	if err != nil {
		return fmt.Errorf("create account %s: %w", account.ID, err)
	}
	if err := r.store.Set(ctx, docstore.CollectionAccounts, account.ID, doc); err != nil {
		return fmt.Errorf("create account %s: %w", account.ID, err)
	}
	return nil
}

func (r *AccountRepository) scan(ctx context.Context, match func(*domain.Account) bool) (*domain.Account, error) {
	entries, err := r.store.List(ctx, docstore.CollectionAccounts)
	if err != nil {
		return nil, fmt.Errorf("scan accounts: %w", err)
	}

	for _, entry := range entries {
		var account domain.Account
		if err := decodeDoc(entry.Doc, &account); err != nil {
			return nil, fmt.Errorf("scan accounts: %w", err)
		}
		if match(&account) {
			account.ID = entry.Key
			return &account, nil
		}
	}
	return nil, domain.ErrNotFound
}
