package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sumire/collab/internal/domain"
)

func TestCreateProjectRequiresName(t *testing.T) {
	env := newTestEnv(t)
	env.addUser(t, "uid-a", "alice")

	_, err := env.projectSvc.Create(context.Background(), "uid-a", "   ", "desc")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestListForUser(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.addUser(t, "uid-a", "alice")
	env.addUser(t, "uid-b", "bob")

	_, err := env.projectSvc.Create(ctx, "uid-a", "Sprint1", "")
	require.NoError(t, err)
	_, err = env.projectSvc.Create(ctx, "uid-b", "Sprint2", "")
	require.NoError(t, err)

	mine, err := env.projectSvc.ListForUser(ctx, "uid-a")
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "Sprint1", mine[0].Name)
}

func TestGetProjectResolvesMembers(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.addUser(t, "uid-a", "alice")
	env.addUser(t, "uid-b", "bob")

	project, err := env.projectSvc.Create(ctx, "uid-a", "Sprint1", "")
	require.NoError(t, err)
	require.NoError(t, env.membership.SendInvitation(ctx, project.ID, "bob", "uid-a"))
	require.NoError(t, env.membership.AcceptInvitation(ctx, project.ID, "uid-b"))

	_, members, err := env.projectSvc.Get(ctx, project.ID, "uid-a")
	require.NoError(t, err)
	assert.Equal(t, []domain.Member{
		{UserID: "uid-a", Username: "alice"},
		{UserID: "uid-b", Username: "bob"},
	}, members)

	// Non-members cannot read the project.
	env.addUser(t, "uid-c", "carol")
	_, _, err = env.projectSvc.Get(ctx, project.ID, "uid-c")
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestWhiteboardAndProgress(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.addUser(t, "uid-a", "alice")
	env.addUser(t, "uid-b", "bob")
	env.addUser(t, "uid-c", "carol")

	project, err := env.projectSvc.Create(ctx, "uid-a", "Sprint1", "")
	require.NoError(t, err)
	require.NoError(t, env.membership.SendInvitation(ctx, project.ID, "bob", "uid-a"))
	require.NoError(t, env.membership.AcceptInvitation(ctx, project.ID, "uid-b"))

	// Any member may write the whiteboard and progress.
	require.NoError(t, env.projectSvc.UpdateWhiteboard(ctx, project.ID, "uid-b", "notes"))
	require.NoError(t, env.projectSvc.UpdateProgress(ctx, project.ID, "uid-b", 40))

	stored, err := env.projects.FindByID(ctx, project.ID)
	require.NoError(t, err)
	assert.Equal(t, "notes", stored.Whiteboard)
	assert.Equal(t, 40, stored.Progress)

	err = env.projectSvc.UpdateWhiteboard(ctx, project.ID, "uid-c", "sneaky")
	assert.ErrorIs(t, err, domain.ErrForbidden)

	err = env.projectSvc.UpdateProgress(ctx, project.ID, "uid-a", 101)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	err = env.projectSvc.UpdateProgress(ctx, project.ID, "uid-a", -1)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestUpdates(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.addUser(t, "uid-a", "alice")
	env.addUser(t, "uid-b", "bob")

	project, err := env.projectSvc.Create(ctx, "uid-a", "Sprint1", "")
	require.NoError(t, err)
	require.NoError(t, env.membership.SendInvitation(ctx, project.ID, "bob", "uid-a"))
	require.NoError(t, env.membership.AcceptInvitation(ctx, project.ID, "uid-b"))

	require.NoError(t, env.projectSvc.AddUpdate(ctx, project.ID, "uid-b", "finished the login page"))

	stored, err := env.projects.FindByID(ctx, project.ID)
	require.NoError(t, err)
	require.Len(t, stored.Updates, 1)
	assert.Equal(t, "finished the login page", stored.Updates[0].Text)
	assert.Equal(t, "bob", stored.Updates[0].User)
	assert.NotEmpty(t, stored.Updates[0].Timestamp)

	// Only the creator may delete updates.
	err = env.projectSvc.DeleteUpdate(ctx, project.ID, "uid-b", 0)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	err = env.projectSvc.DeleteUpdate(ctx, project.ID, "uid-a", 5)
	assert.ErrorIs(t, err, domain.ErrInvalidOperation)

	require.NoError(t, env.projectSvc.DeleteUpdate(ctx, project.ID, "uid-a", 0))
	stored, err = env.projects.FindByID(ctx, project.ID)
	require.NoError(t, err)
	assert.Empty(t, stored.Updates)
}

func TestResourcesCreatorOnly(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.addUser(t, "uid-a", "alice")
	env.addUser(t, "uid-b", "bob")

	project, err := env.projectSvc.Create(ctx, "uid-a", "Sprint1", "")
	require.NoError(t, err)
	require.NoError(t, env.membership.SendInvitation(ctx, project.ID, "bob", "uid-a"))
	require.NoError(t, env.membership.AcceptInvitation(ctx, project.ID, "uid-b"))

	err = env.projectSvc.AddResource(ctx, project.ID, "uid-b", "https://example.com/doc")
	assert.ErrorIs(t, err, domain.ErrForbidden)

	require.NoError(t, env.projectSvc.AddResource(ctx, project.ID, "uid-a", "https://example.com/doc"))

	stored, err := env.projects.FindByID(ctx, project.ID)
	require.NoError(t, err)
	require.Len(t, stored.Resources, 1)
	assert.Equal(t, "alice", stored.Resources[0].AddedBy)

	err = env.projectSvc.DeleteResource(ctx, project.ID, "uid-b", 0)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	err = env.projectSvc.DeleteResource(ctx, project.ID, "uid-a", 1)
	assert.ErrorIs(t, err, domain.ErrInvalidOperation)

	require.NoError(t, env.projectSvc.DeleteResource(ctx, project.ID, "uid-a", 0))
	stored, err = env.projects.FindByID(ctx, project.ID)
	require.NoError(t, err)
	assert.Empty(t, stored.Resources)
}
