// Package docstore provides a schemaless document store organized into named
// collections of keyed JSON documents, mirroring the subset of Firestore the
// application was originally built against: whole-document get/set, partial
// field update, and array-union/array-remove mutations.
package docstore

import "context"

// Collection names used by the application. Field names inside these
// documents are the stored wire contract.
const (
	CollectionUsers         = "users"
	CollectionProjects      = "projects"
	CollectionNotifications = "notifications"
	CollectionAccounts      = "accounts"
)

// Document is a schemaless JSON document.
type Document = map[string]any

// Entry pairs a document with its key, as returned by List.
type Entry struct {
	Key string
	Doc Document
}

// Store is the document store interface. Implementations return
// domain.ErrNotFound when a requested document is absent and wrap backend
// failures in domain.ErrStoreUnavailable.
type Store interface {
	// Get returns the document stored under key in the collection.
	Get(ctx context.Context, collection, key string) (Document, error)

	// List returns every document in the collection, in unspecified order.
	List(ctx context.Context, collection string) ([]Entry, error)

	// Set stores the document under key, replacing any existing document.
	Set(ctx context.Context, collection, key string, doc Document) error

	// UpdateFields merges the given fields into an existing document,
	// replacing each named field wholesale.
	UpdateFields(ctx context.Context, collection, key string, fields Document) error

	// UnionAppend appends value to the array field unless an equal element
	// is already present.
	UnionAppend(ctx context.Context, collection, key, field string, value any) error

	// ArrayRemove removes every element equal to value from the array field.
	ArrayRemove(ctx context.Context, collection, key, field string, value any) error

	// Delete removes the document under key. Deleting an absent document is
	// not an error.
	Delete(ctx context.Context, collection, key string) error
}
