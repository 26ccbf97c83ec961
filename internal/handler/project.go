package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/sumire/collab/internal/domain"
	"github.com/sumire/collab/internal/service"
)

// ProjectHandler handles project endpoints.
type ProjectHandler struct {
	projects   *service.ProjectService
	membership *service.MembershipService
}

// NewProjectHandler creates a new ProjectHandler.
func NewProjectHandler(projects *service.ProjectService, membership *service.MembershipService) *ProjectHandler {
	return &ProjectHandler{projects: projects, membership: membership}
}

type createProjectRequest struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
}

// Create creates a project with the caller as creator and sole member.
func (h *ProjectHandler) Create(c echo.Context) error {
	userID, ok := GetUserID(c)
	if !ok {
		return domain.ErrUnauthorized
	}

	var req createProjectRequest
	if err := c.Bind(&req); err != nil {
		return fmt.Errorf("%w: invalid request body", domain.ErrInvalidInput)
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	project, err := h.projects.Create(c.Request().Context(), userID, req.Name, req.Description)
	if err != nil {
		return err
	}
	return JSON(c, http.StatusCreated, project)
}

// List returns the caller's projects.
func (h *ProjectHandler) List(c echo.Context) error {
	userID, ok := GetUserID(c)
	if !ok {
		return domain.ErrUnauthorized
	}

	projects, err := h.projects.ListForUser(c.Request().Context(), userID)
	if err != nil {
		return err
	}
	return JSON(c, http.StatusOK, projects)
}

type projectResponse struct {
	*domain.Project
	MemberDetails []domain.Member `json:"memberDetails"`
}

// Get returns one project with its roster resolved to usernames.
func (h *ProjectHandler) Get(c echo.Context) error {
	userID, ok := GetUserID(c)
	if !ok {
		return domain.ErrUnauthorized
	}

	project, members, err := h.projects.Get(c.Request().Context(), c.Param("id"), userID)
	if err != nil {
		return err
	}
	return JSON(c, http.StatusOK, projectResponse{Project: project, MemberDetails: members})
}

// Delete permanently deletes a project. Creator only.
func (h *ProjectHandler) Delete(c echo.Context) error {
	userID, ok := GetUserID(c)
	if !ok {
		return domain.ErrUnauthorized
	}

	if err := h.membership.DeleteProject(c.Request().Context(), c.Param("id"), userID); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// RemoveMember removes a member from the roster. Creator only.
func (h *ProjectHandler) RemoveMember(c echo.Context) error {
	userID, ok := GetUserID(c)
	if !ok {
		return domain.ErrUnauthorized
	}

	err := h.membership.RemoveMember(c.Request().Context(), c.Param("id"), c.Param("userID"), userID)
	if err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

type whiteboardRequest struct {
	Text string `json:"text"`
}

// UpdateWhiteboard replaces the whiteboard text. Any member.
func (h *ProjectHandler) UpdateWhiteboard(c echo.Context) error {
	userID, ok := GetUserID(c)
	if !ok {
		return domain.ErrUnauthorized
	}

	var req whiteboardRequest
	if err := c.Bind(&req); err != nil {
		return fmt.Errorf("%w: invalid request body", domain.ErrInvalidInput)
	}

	if err := h.projects.UpdateWhiteboard(c.Request().Context(), c.Param("id"), userID, req.Text); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

type progressRequest struct {
	Progress *int `json:"progress" validate:"required"`
}

// UpdateProgress replaces the progress value. Any member.
func (h *ProjectHandler) UpdateProgress(c echo.Context) error {
	userID, ok := GetUserID(c)
	if !ok {
		return domain.ErrUnauthorized
	}

	var req progressRequest
	if err := c.Bind(&req); err != nil {
		return fmt.Errorf("%w: invalid request body", domain.ErrInvalidInput)
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	if err := h.projects.UpdateProgress(c.Request().Context(), c.Param("id"), userID, *req.Progress); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

type entryRequest struct {
	Text string `json:"text" validate:"required"`
}

// AddUpdate appends an update entry. Any member.
func (h *ProjectHandler) AddUpdate(c echo.Context) error {
	userID, ok := GetUserID(c)
	if !ok {
		return domain.ErrUnauthorized
	}

	var req entryRequest
	if err := c.Bind(&req); err != nil {
		return fmt.Errorf("%w: invalid request body", domain.ErrInvalidInput)
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	if err := h.projects.AddUpdate(c.Request().Context(), c.Param("id"), userID, req.Text); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// DeleteUpdate removes the update at the given index. Creator only.
func (h *ProjectHandler) DeleteUpdate(c echo.Context) error {
	userID, ok := GetUserID(c)
	if !ok {
		return domain.ErrUnauthorized
	}

	index, err := pathIndex(c)
	if err != nil {
		return err
	}

	if err := h.projects.DeleteUpdate(c.Request().Context(), c.Param("id"), userID, index); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// AddResource appends a resource entry. Creator only.
func (h *ProjectHandler) AddResource(c echo.Context) error {
	userID, ok := GetUserID(c)
	if !ok {
		return domain.ErrUnauthorized
	}

	var req entryRequest
	if err := c.Bind(&req); err != nil {
		return fmt.Errorf("%w: invalid request body", domain.ErrInvalidInput)
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	if err := h.projects.AddResource(c.Request().Context(), c.Param("id"), userID, req.Text); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// DeleteResource removes the resource at the given index. Creator only.
func (h *ProjectHandler) DeleteResource(c echo.Context) error {
	userID, ok := GetUserID(c)
	if !ok {
		return domain.ErrUnauthorized
	}

	index, err := pathIndex(c)
	if err != nil {
		return err
	}

	if err := h.projects.DeleteResource(c.Request().Context(), c.Param("id"), userID, index); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func pathIndex(c echo.Context) (int, error) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		return 0, fmt.Errorf("%w: index must be an integer", domain.ErrInvalidInput)
	}
	return index, nil
}
