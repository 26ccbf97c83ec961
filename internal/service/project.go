package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/sumire/collab/internal/docstore"
	"github.com/sumire/collab/internal/domain"
)

// ProjectService handles project creation and the content mutators:
// whiteboard, progress, updates, and resources. Whiteboard and progress are
// open to any member; updates deletion and resources are creator-only.
type ProjectService struct {
	users    UserStore
	projects ProjectStore
}

// NewProjectService creates a new ProjectService.
func NewProjectService(users UserStore, projects ProjectStore) *ProjectService {
	return &ProjectService{users: users, projects: projects}
}

// Create stores a new project with the acting user as creator and sole
// initial member.
func (s *ProjectService) Create(ctx context.Context, actingUserID, name, description string) (*domain.Project, error) {
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("project name is required: %w", domain.ErrInvalidInput)
	}

	project := domain.Project{
		ID:          uuid.NewString(),
		Name:        name,
		Description: description,
		Members:     []string{actingUserID},
		Creator:     actingUserID,
		Whiteboard:  "",
		Updates:     []domain.UpdateEntry{},
		Progress:    0,
		Resources:   []domain.ResourceEntry{},
	}
	if err := s.projects.Create(ctx, project); err != nil {
		return nil, fmt.Errorf("create project: %w", err)
	}
	return &project, nil
}

// ListForUser returns the projects the user is a member of. The full
// collection is listed and filtered here, mirroring the original client.
func (s *ProjectService) ListForUser(ctx context.Context, userID string) ([]domain.Project, error) {
	all, err := s.projects.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	mine := make([]domain.Project, 0, len(all))
	for _, p := range all {
		if p.IsMember(userID) {
			mine = append(mine, p)
		}
	}
	return mine, nil
}

// Get returns a project with its roster resolved to usernames. Only members
// may read a project.
func (s *ProjectService) Get(ctx context.Context, projectID, actingUserID string) (*domain.Project, []domain.Member, error) {
	project, err := s.memberProject(ctx, projectID, actingUserID)
	if err != nil {
		return nil, nil, err
	}

	members := make([]domain.Member, 0, len(project.Members))
	for _, uid := range project.Members {
		member := domain.Member{UserID: uid, Username: "Unknown"}
		user, err := s.users.FindByID(ctx, uid)
		switch {
		case err == nil:
			member.Username = user.Username
		case errors.Is(err, domain.ErrNotFound):
			// keep the sentinel
		default:
			return nil, nil, fmt.Errorf("resolve member %s: %w", uid, err)
		}
		members = append(members, member)
	}
	return project, members, nil
}

// UpdateWhiteboard replaces the whiteboard text. Any member may write.
func (s *ProjectService) UpdateWhiteboard(ctx context.Context, projectID, actingUserID, text string) error {
	if _, err := s.memberProject(ctx, projectID, actingUserID); err != nil {
		return err
	}
	return s.projects.UpdateFields(ctx, projectID, docstore.Document{"whiteboard": text})
}

// UpdateProgress replaces the progress value. Any member may write.
func (s *ProjectService) UpdateProgress(ctx context.Context, projectID, actingUserID string, progress int) error {
	if progress < 0 || progress > 100 {
		return fmt.Errorf("progress must be between 0 and 100: %w", domain.ErrInvalidInput)
	}
	if _, err := s.memberProject(ctx, projectID, actingUserID); err != nil {
		return err
	}
	return s.projects.UpdateFields(ctx, projectID, docstore.Document{"progress": progress})
}

// AddUpdate appends an update entry stamped with the acting user's username.
// Any member may post.
func (s *ProjectService) AddUpdate(ctx context.Context, projectID, actingUserID, text string) error {
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("update text is required: %w", domain.ErrInvalidInput)
	}

	project, err := s.memberProject(ctx, projectID, actingUserID)
	if err != nil {
		return err
	}
	username, err := s.actingUsername(ctx, actingUserID)
	if err != nil {
		return err
	}

	updates := append(project.Updates, domain.UpdateEntry{
		Text:      text,
		User:      username,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
	return s.projects.UpdateFields(ctx, projectID, docstore.Document{"updates": updates})
}

// DeleteUpdate removes the update at the given index. Creator only.
func (s *ProjectService) DeleteUpdate(ctx context.Context, projectID, actingUserID string, index int) error {
	project, err := s.creatorProject(ctx, projectID, actingUserID)
	if err != nil {
		return err
	}
	if index < 0 || index >= len(project.Updates) {
		return fmt.Errorf("update index %d out of range: %w", index, domain.ErrInvalidOperation)
	}

	updates := append(project.Updates[:index:index], project.Updates[index+1:]...)
	return s.projects.UpdateFields(ctx, projectID, docstore.Document{"updates": updates})
}

// AddResource appends a resource entry. Creator only.
func (s *ProjectService) AddResource(ctx context.Context, projectID, actingUserID, text string) error {
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("resource text is required: %w", domain.ErrInvalidInput)
	}

	project, err := s.creatorProject(ctx, projectID, actingUserID)
	if err != nil {
		return err
	}
	username, err := s.actingUsername(ctx, actingUserID)
	if err != nil {
		return err
	}

	resources := append(project.Resources, domain.ResourceEntry{
		Text:      text,
		AddedBy:   username,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
	return s.projects.UpdateFields(ctx, projectID, docstore.Document{"resources": resources})
}

// DeleteResource removes the resource at the given index. Creator only.
func (s *ProjectService) DeleteResource(ctx context.Context, projectID, actingUserID string, index int) error {
	project, err := s.creatorProject(ctx, projectID, actingUserID)
	if err != nil {
		return err
	}
	if index < 0 || index >= len(project.Resources) {
		return fmt.Errorf("resource index %d out of range: %w", index, domain.ErrInvalidOperation)
	}

	resources := append(project.Resources[:index:index], project.Resources[index+1:]...)
	return s.projects.UpdateFields(ctx, projectID, docstore.Document{"resources": resources})
}

func (s *ProjectService) memberProject(ctx context.Context, projectID, actingUserID string) (*domain.Project, error) {
	project, err := s.projects.FindByID(ctx, projectID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("project %s: %w", projectID, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("load project: %w", err)
	}
	if !project.IsMember(actingUserID) {
		return nil, fmt.Errorf("not a member of project %s: %w", projectID, domain.ErrForbidden)
	}
	return project, nil
}

func (s *ProjectService) creatorProject(ctx context.Context, projectID, actingUserID string) (*domain.Project, error) {
	project, err := s.memberProject(ctx, projectID, actingUserID)
	if err != nil {
		return nil, err
	}
	if project.Creator != actingUserID {
		return nil, fmt.Errorf("only the creator can do this: %w", domain.ErrForbidden)
	}
	return project, nil
}

func (s *ProjectService) actingUsername(ctx context.Context, userID string) (string, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("load acting user: %w", err)
	}
	return user.Username, nil
}
