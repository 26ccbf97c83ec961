package handler

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/sumire/collab/internal/domain"
	"github.com/sumire/collab/internal/service"
)

// InvitationHandler handles invitation endpoints.
type InvitationHandler struct {
	membership *service.MembershipService
}

// NewInvitationHandler creates a new InvitationHandler.
func NewInvitationHandler(membership *service.MembershipService) *InvitationHandler {
	return &InvitationHandler{membership: membership}
}

// List returns the caller's pending invitations, enriched for display.
func (h *InvitationHandler) List(c echo.Context) error {
	userID, ok := GetUserID(c)
	if !ok {
		return domain.ErrUnauthorized
	}

	views, err := h.membership.ListInvitations(c.Request().Context(), userID)
	if err != nil {
		return err
	}
	return JSON(c, http.StatusOK, views)
}

type sendInvitationRequest struct {
	ProjectID string `json:"projectId" validate:"required"`
	Username  string `json:"username" validate:"required"`
}

// Send invites a user, by username, to one of the caller's projects.
func (h *InvitationHandler) Send(c echo.Context) error {
	userID, ok := GetUserID(c)
	if !ok {
		return domain.ErrUnauthorized
	}

	var req sendInvitationRequest
	if err := c.Bind(&req); err != nil {
		return fmt.Errorf("%w: invalid request body", domain.ErrInvalidInput)
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	if err := h.membership.SendInvitation(c.Request().Context(), req.ProjectID, req.Username, userID); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// Accept joins the caller to the project and clears the invitation.
func (h *InvitationHandler) Accept(c echo.Context) error {
	userID, ok := GetUserID(c)
	if !ok {
		return domain.ErrUnauthorized
	}

	if err := h.membership.AcceptInvitation(c.Request().Context(), c.Param("projectID"), userID); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// Decline clears the invitation without touching the project.
func (h *InvitationHandler) Decline(c echo.Context) error {
	userID, ok := GetUserID(c)
	if !ok {
		return domain.ErrUnauthorized
	}

	if err := h.membership.DeclineInvitation(c.Request().Context(), c.Param("projectID"), userID); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
