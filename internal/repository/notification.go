package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/sumire/collab/internal/docstore"
	"github.com/sumire/collab/internal/domain"
)

// NotificationRepository handles the per-user notification records that hold
// pending invitations.
type NotificationRepository struct {
	store docstore.Store
}

// NewNotificationRepository creates a new NotificationRepository.
func NewNotificationRepository(store docstore.Store) *NotificationRepository {
	return &NotificationRepository{store: store}
}

// Find retrieves a user's notification record. A user who has never been
// invited has no record; that surfaces as domain.ErrNotFound.
func (r *NotificationRepository) Find(ctx context.Context, userID string) (*domain.NotificationRecord, error) {
	doc, err := r.store.Get(ctx, docstore.CollectionNotifications, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("find notifications for %s: %w", userID, err)
	}

	var record domain.NotificationRecord
	if err := decodeDoc(doc, &record); err != nil {
		return nil, fmt.Errorf("find notifications for %s: %w", userID, err)
	}
	record.UserID = userID
	return &record, nil
}

// AppendInvitation appends an invitation to the recipient's record, creating
// the record lazily on first use.
func (r *NotificationRepository) AppendInvitation(ctx context.Context, userID string, inv domain.Invitation) error {
	err := r.store.UnionAppend(ctx, docstore.CollectionNotifications, userID, "invitations", inv)
	if errors.Is(err, domain.ErrNotFound) {
		doc, encErr := encodeDoc(domain.NotificationRecord{Invitations: []domain.Invitation{inv}})
		if encErr != nil {
			return fmt.Errorf("append invitation for %s: %w", userID, encErr)
		}
		err = r.store.Set(ctx, docstore.CollectionNotifications, userID, doc)
	}
	if err != nil {
		return fmt.Errorf("append invitation for %s: %w", userID, err)
	}
	return nil
}

// SetInvitations rewrites the invitation list wholesale, matching the
// original client's filter-then-update behavior.
func (r *NotificationRepository) SetInvitations(ctx context.Context, userID string, invitations []domain.Invitation) error {
	if invitations == nil {
		invitations = []domain.Invitation{}
	}
	fields, err := encodeDoc(domain.NotificationRecord{Invitations: invitations})
	if err != nil {
		return fmt.Errorf("set invitations for %s: %w", userID, err)
	}
	if err := r.store.UpdateFields(ctx, docstore.CollectionNotifications, userID, fields); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("set invitations for %s: %w", userID, err)
	}
	return nil
}
