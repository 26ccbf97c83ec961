package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sumire/collab/internal/docstore"
	"github.com/sumire/collab/internal/domain"
	"github.com/sumire/collab/internal/repository"
)

type testEnv struct {
	users      *repository.UserRepository
	projects   *repository.ProjectRepository
	membership *MembershipService
	projectSvc *ProjectService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	store := docstore.NewMemory()
	users := repository.NewUserRepository(store)
	projects := repository.NewProjectRepository(store)
	notifications := repository.NewNotificationRepository(store)
	return &testEnv{
		users:      users,
		projects:   projects,
		membership: NewMembershipService(users, projects, notifications),
		projectSvc: NewProjectService(users, projects),
	}
}

func (e *testEnv) addUser(t *testing.T, id, username string) {
	t.Helper()
	err := e.users.Create(context.Background(), domain.User{
		ID:       id,
		Name:     username,
		Username: username,
		Email:    username + "@example.com",
	})
	require.NoError(t, err)
}

func TestMembershipLifecycle(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.addUser(t, "uid-a", "alice")
	env.addUser(t, "uid-b", "bob")

	project, err := env.projectSvc.Create(ctx, "uid-a", "Sprint1", "first sprint")
	require.NoError(t, err)
	assert.Equal(t, []string{"uid-a"}, project.Members)
	assert.Equal(t, "uid-a", project.Creator)

	require.NoError(t, env.membership.SendInvitation(ctx, project.ID, "bob", "uid-a"))

	views, err := env.membership.ListInvitations(ctx, "uid-b")
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, "Sprint1", views[0].ProjectName)
	assert.Equal(t, "alice", views[0].SenderUsername)

	require.NoError(t, env.membership.AcceptInvitation(ctx, project.ID, "uid-b"))

	stored, err := env.projects.FindByID(ctx, project.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"uid-a", "uid-b"}, stored.Members)

	views, err = env.membership.ListInvitations(ctx, "uid-b")
	require.NoError(t, err)
	assert.Empty(t, views)

	require.NoError(t, env.membership.RemoveMember(ctx, project.ID, "uid-b", "uid-a"))
	stored, err = env.projects.FindByID(ctx, project.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"uid-a"}, stored.Members)
}

func TestSendInvitationDedup(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.addUser(t, "uid-a", "alice")
	env.addUser(t, "uid-b", "bob")

	project, err := env.projectSvc.Create(ctx, "uid-a", "Sprint1", "")
	require.NoError(t, err)

	require.NoError(t, env.membership.SendInvitation(ctx, project.ID, "bob", "uid-a"))
	require.NoError(t, env.membership.SendInvitation(ctx, project.ID, "bob", "uid-a"))

	views, err := env.membership.ListInvitations(ctx, "uid-b")
	require.NoError(t, err)
	assert.Len(t, views, 1)
}

func TestSendInvitationValidation(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.addUser(t, "uid-a", "alice")
	env.addUser(t, "uid-b", "bob")

	project, err := env.projectSvc.Create(ctx, "uid-a", "Sprint1", "")
	require.NoError(t, err)

	err = env.membership.SendInvitation(ctx, project.ID, "", "uid-a")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	err = env.membership.SendInvitation(ctx, project.ID, "nobody", "uid-a")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	err = env.membership.SendInvitation(ctx, "missing-project", "bob", "uid-a")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	// A user who cannot see the project cannot invite into it.
	err = env.membership.SendInvitation(ctx, project.ID, "alice", "uid-b")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestAcceptInvitationIdempotent(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.addUser(t, "uid-a", "alice")
	env.addUser(t, "uid-b", "bob")

	project, err := env.projectSvc.Create(ctx, "uid-a", "Sprint1", "")
	require.NoError(t, err)
	require.NoError(t, env.membership.SendInvitation(ctx, project.ID, "bob", "uid-a"))

	require.NoError(t, env.membership.AcceptInvitation(ctx, project.ID, "uid-b"))
	require.NoError(t, env.membership.AcceptInvitation(ctx, project.ID, "uid-b"))
	require.NoError(t, env.membership.AcceptInvitation(ctx, project.ID, "uid-b"))

	stored, err := env.projects.FindByID(ctx, project.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"uid-a", "uid-b"}, stored.Members)
}

func TestAcceptInvitationInvalid(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.addUser(t, "uid-b", "bob")

	err := env.membership.AcceptInvitation(ctx, "", "uid-b")
	assert.ErrorIs(t, err, domain.ErrInvalidOperation)

	err = env.membership.AcceptInvitation(ctx, "deleted-project", "uid-b")
	assert.ErrorIs(t, err, domain.ErrInvalidOperation)
}

func TestDeclineInvitationLeavesRoster(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.addUser(t, "uid-a", "alice")
	env.addUser(t, "uid-b", "bob")

	project, err := env.projectSvc.Create(ctx, "uid-a", "Sprint1", "")
	require.NoError(t, err)
	require.NoError(t, env.membership.SendInvitation(ctx, project.ID, "bob", "uid-a"))

	require.NoError(t, env.membership.DeclineInvitation(ctx, project.ID, "uid-b"))

	views, err := env.membership.ListInvitations(ctx, "uid-b")
	require.NoError(t, err)
	assert.Empty(t, views)

	stored, err := env.projects.FindByID(ctx, project.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"uid-a"}, stored.Members)

	// Declining with no record at all is fine.
	require.NoError(t, env.membership.DeclineInvitation(ctx, project.ID, "uid-a"))

	err = env.membership.DeclineInvitation(ctx, "", "uid-b")
	assert.ErrorIs(t, err, domain.ErrInvalidOperation)
}

func TestRemoveMemberAuthorization(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.addUser(t, "uid-a", "alice")
	env.addUser(t, "uid-b", "bob")

	project, err := env.projectSvc.Create(ctx, "uid-a", "Sprint1", "")
	require.NoError(t, err)
	require.NoError(t, env.membership.SendInvitation(ctx, project.ID, "bob", "uid-a"))
	require.NoError(t, env.membership.AcceptInvitation(ctx, project.ID, "uid-b"))

	err = env.membership.RemoveMember(ctx, project.ID, "uid-a", "uid-b")
	assert.ErrorIs(t, err, domain.ErrForbidden)

	stored, err := env.projects.FindByID(ctx, project.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"uid-a", "uid-b"}, stored.Members)

	err = env.membership.RemoveMember(ctx, project.ID, "uid-a", "uid-a")
	assert.ErrorIs(t, err, domain.ErrInvalidOperation)

	// Removal is idempotent: removing a non-member succeeds without change.
	require.NoError(t, env.membership.RemoveMember(ctx, project.ID, "uid-z", "uid-a"))
}

func TestDeleteProjectLeavesDanglingInvitation(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.addUser(t, "uid-a", "alice")
	env.addUser(t, "uid-b", "bob")

	project, err := env.projectSvc.Create(ctx, "uid-a", "Sprint1", "")
	require.NoError(t, err)
	require.NoError(t, env.membership.SendInvitation(ctx, project.ID, "bob", "uid-a"))

	err = env.membership.DeleteProject(ctx, project.ID, "uid-b")
	assert.ErrorIs(t, err, domain.ErrForbidden)

	require.NoError(t, env.membership.DeleteProject(ctx, project.ID, "uid-a"))

	views, err := env.membership.ListInvitations(ctx, "uid-b")
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, domain.UnknownProjectName, views[0].ProjectName)
	assert.Equal(t, "alice", views[0].SenderUsername)
}

func TestListInvitationsMalformedEntry(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.addUser(t, "uid-b", "bob")

	store := docstore.NewMemory()
	notifications := repository.NewNotificationRepository(store)
	membership := NewMembershipService(env.users, env.projects, notifications)

	err := notifications.AppendInvitation(ctx, "uid-b", domain.Invitation{
		ProjectID: "",
		Sender:    "uid-a",
		Status:    domain.InvitationPending,
	})
	require.NoError(t, err)

	views, err := membership.ListInvitations(ctx, "uid-b")
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, domain.InvalidProjectName, views[0].ProjectName)
	assert.Equal(t, domain.UnknownUserName, views[0].SenderUsername)
}

func TestListInvitationsNoRecord(t *testing.T) {
	env := newTestEnv(t)
	env.addUser(t, "uid-b", "bob")

	views, err := env.membership.ListInvitations(context.Background(), "uid-b")
	require.NoError(t, err)
	assert.Empty(t, views)
}
