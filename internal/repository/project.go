package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/sumire/collab/internal/docstore"
	"github.com/sumire/collab/internal/domain"
)

// ProjectRepository handles project documents.
type ProjectRepository struct {
	store docstore.Store
}

// NewProjectRepository creates a new ProjectRepository.
func NewProjectRepository(store docstore.Store) *ProjectRepository {
	return &ProjectRepository{store: store}
}

// FindByID retrieves a project by its ID.
func (r *ProjectRepository) FindByID(ctx context.Context, id string) (*domain.Project, error) {
	doc, err := r.store.Get(ctx, docstore.CollectionProjects, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("find project %s: %w", id, err)
	}

	var project domain.Project
	if err := decodeDoc(doc, &project); err != nil {
		return nil, fmt.Errorf("find project %s: %w", id, err)
	}
	project.ID = id
	return &project, nil
}

// ListAll returns every stored project. Membership filtering is done by the
// caller, mirroring the original client behavior.
func (r *ProjectRepository) ListAll(ctx context.Context) ([]domain.Project, error) {
	entries, err := r.store.List(ctx, docstore.CollectionProjects)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}

	projects := make([]domain.Project, 0, len(entries))
	for _, entry := range entries {
		var project domain.Project
		if err := decodeDoc(entry.Doc, &project); err != nil {
			return nil, fmt.Errorf("list projects: %w", err)
		}
		project.ID = entry.Key
		projects = append(projects, project)
	}
	return projects, nil
}

// Create stores a new project document.
func (r *ProjectRepository) Create(ctx context.Context, project domain.Project) error {
	doc, err := encodeDoc(project)
	if err != nil {
		return fmt.Errorf("create project %s: %w", project.ID, err)
	}
	if err := r.store.Set(ctx, docstore.CollectionProjects, project.ID, doc); err != nil {
		return fmt.Errorf("create project %s: %w", project.ID, err)
	}
	return nil
}

// UpdateFields replaces the given project fields wholesale.
func (r *ProjectRepository) UpdateFields(ctx context.Context, id string, fields docstore.Document) error {
	if err := r.store.UpdateFields(ctx, docstore.CollectionProjects, id, fields); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("update project %s: %w", id, err)
	}
	return nil
}

// AddMember adds a user to the roster with union semantics: adding an
// existing member is a no-op.
func (r *ProjectRepository) AddMember(ctx context.Context, id, userID string) error {
	if err := r.store.UnionAppend(ctx, docstore.CollectionProjects, id, "members", userID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("add member %s to project %s: %w", userID, id, err)
	}
	return nil
}

// RemoveMember removes a user from the roster. Removing an absent member is
// a no-op.
func (r *ProjectRepository) RemoveMember(ctx context.Context, id, userID string) error {
	if err := r.store.ArrayRemove(ctx, docstore.CollectionProjects, id, "members", userID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("remove member %s from project %s: %w", userID, id, err)
	}
	return nil
}

// Delete permanently removes the project document. Invitations referencing
// it are left dangling and resolved defensively by readers.
func (r *ProjectRepository) Delete(ctx context.Context, id string) error {
	if err := r.store.Delete(ctx, docstore.CollectionProjects, id); err != nil {
		return fmt.Errorf("delete project %s: %w", id, err)
	}
	return nil
}
