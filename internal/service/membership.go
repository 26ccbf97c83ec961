package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/sumire/collab/internal/docstore"
	"github.com/sumire/collab/internal/domain"
)

// ProjectStore defines the project access interface consumed by services.
type ProjectStore interface {
	FindByID(ctx context.Context, id string) (*domain.Project, error)
	ListAll(ctx context.Context) ([]domain.Project, error)
	Create(ctx context.Context, project domain.Project) error
	UpdateFields(ctx context.Context, id string, fields docstore.Document) error
	AddMember(ctx context.Context, id, userID string) error
	RemoveMember(ctx context.Context, id, userID string) error
	Delete(ctx context.Context, id string) error
}

// NotificationStore defines the notification record access interface.
type NotificationStore interface {
	Find(ctx context.Context, userID string) (*domain.NotificationRecord, error)
	AppendInvitation(ctx context.Context, userID string, inv domain.Invitation) error
	SetInvitations(ctx context.Context, userID string, invitations []domain.Invitation) error
}

// MembershipService mediates the lifecycle of a user's relationship to a
// project: invitation, acceptance, decline, removal, and project deletion.
// Authorization is enforced here, not trusted to the caller.
type MembershipService struct {
	users         UserStore
	projects      ProjectStore
	notifications NotificationStore
}

// NewMembershipService creates a new MembershipService.
func NewMembershipService(users UserStore, projects ProjectStore, notifications NotificationStore) *MembershipService {
	return &MembershipService{users: users, projects: projects, notifications: notifications}
}

// SendInvitation resolves the recipient by username and appends a pending
// invitation to their notification record, creating the record if absent.
// Sending is idempotent per (project, recipient): if an invitation for the
// project is already pending, the call succeeds without appending another.
func (s *MembershipService) SendInvitation(ctx context.Context, projectID, recipientUsername, actingUserID string) error {
	if recipientUsername == "" {
		return fmt.Errorf("recipient username is required: %w", domain.ErrInvalidInput)
	}
	if projectID == "" {
		return fmt.Errorf("project id is required: %w", domain.ErrInvalidInput)
	}

	recipient, err := s.users.FindByUsername(ctx, recipientUsername)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("user %q: %w", recipientUsername, domain.ErrNotFound)
		}
		return fmt.Errorf("resolve recipient: %w", err)
	}

	project, err := s.projects.FindByID(ctx, projectID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("project %s: %w", projectID, domain.ErrNotFound)
		}
		return fmt.Errorf("load project: %w", err)
	}
	// The sender can only invite into projects they can see.
	if !project.IsMember(actingUserID) {
		return fmt.Errorf("project %s: %w", projectID, domain.ErrNotFound)
	}

	record, err := s.notifications.Find(ctx, recipient.ID)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("load notifications: %w", err)
	}
	if record != nil {
		for _, inv := range record.Invitations {
			if inv.ProjectID == projectID {
				return nil
			}
		}
	}

	return s.notifications.AppendInvitation(ctx, recipient.ID, domain.Invitation{
		ProjectID: projectID,
		Sender:    actingUserID,
		Status:    domain.InvitationPending,
	})
}

// AcceptInvitation adds the caller to the project roster with union
// semantics, then removes every invitation for that project from the
// caller's notification record. The two writes are independent: if the
// cleanup fails after the roster update succeeded, the stale invitation
// remains until the next accept or decline.
func (s *MembershipService) AcceptInvitation(ctx context.Context, projectID, actingUserID string) error {
	if projectID == "" {
		return fmt.Errorf("project id is required: %w", domain.ErrInvalidOperation)
	}

	if err := s.projects.AddMember(ctx, projectID, actingUserID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("invitation references a missing project: %w", domain.ErrInvalidOperation)
		}
		return fmt.Errorf("join project: %w", err)
	}

	return s.clearInvitations(ctx, projectID, actingUserID)
}

// DeclineInvitation removes every invitation for the project from the
// caller's notification record. The project itself is never touched.
func (s *MembershipService) DeclineInvitation(ctx context.Context, projectID, actingUserID string) error {
	if projectID == "" {
		return fmt.Errorf("project id is required: %w", domain.ErrInvalidOperation)
	}
	return s.clearInvitations(ctx, projectID, actingUserID)
}

func (s *MembershipService) clearInvitations(ctx context.Context, projectID, userID string) error {
	record, err := s.notifications.Find(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("load notifications: %w", err)
	}

	kept := make([]domain.Invitation, 0, len(record.Invitations))
	for _, inv := range record.Invitations {
		if inv.ProjectID != projectID {
			kept = append(kept, inv)
		}
	}
	if len(kept) == len(record.Invitations) {
		return nil
	}

	if err := s.notifications.SetInvitations(ctx, userID, kept); err != nil {
		return fmt.Errorf("clear invitations: %w", err)
	}
	return nil
}

// RemoveMember removes a member from the roster. Only the project creator
// may do this, and not to themselves.
func (s *MembershipService) RemoveMember(ctx context.Context, projectID, targetUserID, actingUserID string) error {
	if projectID == "" || targetUserID == "" {
		return fmt.Errorf("project and target user are required: %w", domain.ErrInvalidInput)
	}

	project, err := s.projects.FindByID(ctx, projectID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("project %s: %w", projectID, domain.ErrNotFound)
		}
		return fmt.Errorf("load project: %w", err)
	}

	if project.Creator != actingUserID {
		return fmt.Errorf("only the creator can remove members: %w", domain.ErrForbidden)
	}
	if targetUserID == actingUserID {
		return fmt.Errorf("creator cannot remove themselves: %w", domain.ErrInvalidOperation)
	}

	if err := s.projects.RemoveMember(ctx, projectID, targetUserID); err != nil {
		return fmt.Errorf("remove member: %w", err)
	}
	return nil
}

// DeleteProject permanently deletes a project. Only the creator may do this.
// Outstanding invitations referencing the project are left dangling and are
// resolved to a sentinel name by ListInvitations.
func (s *MembershipService) DeleteProject(ctx context.Context, projectID, actingUserID string) error {
	if projectID == "" {
		return fmt.Errorf("project id is required: %w", domain.ErrInvalidInput)
	}

	project, err := s.projects.FindByID(ctx, projectID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("project %s: %w", projectID, domain.ErrNotFound)
		}
		return fmt.Errorf("load project: %w", err)
	}

	if project.Creator != actingUserID {
		return fmt.Errorf("only the creator can delete the project: %w", domain.ErrForbidden)
	}

	if err := s.projects.Delete(ctx, projectID); err != nil {
		return fmt.Errorf("delete project: %w", err)
	}
	return nil
}

// ListInvitations returns the caller's pending invitations enriched for
// display. Dangling references resolve defensively: a deleted project shows
// as "Unknown Project", a malformed entry as "Invalid Project", and a
// missing sender as "Unknown User".
func (s *MembershipService) ListInvitations(ctx context.Context, userID string) ([]domain.InvitationView, error) {
	record, err := s.notifications.Find(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return []domain.InvitationView{}, nil
		}
		return nil, fmt.Errorf("load notifications: %w", err)
	}

	views := make([]domain.InvitationView, 0, len(record.Invitations))
	for _, inv := range record.Invitations {
		view := domain.InvitationView{ProjectID: inv.ProjectID, Sender: inv.Sender}

		if inv.ProjectID == "" {
			view.ProjectName = domain.InvalidProjectName
			view.SenderUsername = domain.UnknownUserName
			views = append(views, view)
			continue
		}

		project, err := s.projects.FindByID(ctx, inv.ProjectID)
		switch {
		case err == nil:
			view.ProjectName = project.Name
		case errors.Is(err, domain.ErrNotFound):
			view.ProjectName = domain.UnknownProjectName
		default:
			return nil, fmt.Errorf("resolve project %s: %w", inv.ProjectID, err)
		}

		sender, err := s.users.FindByID(ctx, inv.Sender)
		switch {
		case err == nil:
			view.SenderUsername = sender.Username
		case errors.Is(err, domain.ErrNotFound):
			view.SenderUsername = domain.UnknownUserName
		default:
			return nil, fmt.Errorf("resolve sender %s: %w", inv.Sender, err)
		}

		views = append(views, view)
	}
	return views, nil
}
