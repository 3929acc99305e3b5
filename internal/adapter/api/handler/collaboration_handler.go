package handler

import (
	"github.com/labstack/echo/v4"

	"artisanx/internal/usecase"
	"artisanx/pkg/response"
)

type CollaborationHandler struct{}

func NewCollaborationHandler() *CollaborationHandler {
	return &CollaborationHandler{}
}

type PostProjectRequest struct {
	Title        string   `json:"title" validate:"required"`
	Description  string   `json:"description" validate:"required"`
	SkillsNeeded []string `json:"skillsNeeded"`
}

type RespondToApplicationRequest struct {
	Accept *bool `json:"accept" validate:"required"`
}

type EndCollaborationRequest struct {
	Feedback string `json:"feedback"`
	Rating   int    `json:"rating" validate:"min=1,max=5"`
}

func (h *CollaborationHandler) PostNewProject(c echo.Context) error {
	var req PostProjectRequest
	if err := bindAndValidate(c, &req); err != nil {
		return response.Error(c, err)
	}
	s, err := currentSession(c)
	if err != nil {
		return response.Error(c, err)
	}

	project, err := s.PostNewProject(c.Request().Context(), usecase.PostProjectInput{
		Title:        req.Title,
		Description:  req.Description,
		SkillsNeeded: req.SkillsNeeded,
	})
	if err != nil {
		return response.Error(c, err)
	}
	return response.Created(c, project)
}

func (h *CollaborationHandler) ApplyForProject(c echo.Context) error {
	s, err := currentSession(c)
	if err != nil {
		return response.Error(c, err)
	}
	app, err := s.ApplyForProject(c.Request().Context(), c.Param("id"))
	if err != nil {
		return response.Error(c, err)
	}
	return response.Created(c, app)
}

// RespondToApplication accepts or declines. Declining returns no
// collaboration.
func (h *CollaborationHandler) RespondToApplication(c echo.Context) error {
	var req RespondToApplicationRequest
	if err := bindAndValidate(c, &req); err != nil {
		return response.Error(c, err)
	}
	id := c.Param("id")
	return withSession(c, func(s *usecase.Session) (interface{}, error) {
		collab, err := s.RespondToApplication(c.Request().Context(), id, *req.Accept)
		if err != nil {
			return nil, err
		}
		return map[string]interface{}{"applicationId": id, "accepted": *req.Accept, "collaboration": collab}, nil
	})
}

func (h *CollaborationHandler) EndCollaboration(c echo.Context) error {
	var req EndCollaborationRequest
	if err := bindAndValidate(c, &req); err != nil {
		return response.Error(c, err)
	}
	id := c.Param("id")
	return withSession(c, func(s *usecase.Session) (interface{}, error) {
		err := s.EndCollaboration(c.Request().Context(), id, usecase.EndCollaborationInput{
			Feedback: req.Feedback,
			Rating:   req.Rating,
		})
		if err != nil {
			return nil, err
		}
		return map[string]string{"id": id, "message": "Collaboration ended"}, nil
	})
}

// IssueCertificate returns the new record, or null when the volunteer
// already holds one for this project.
func (h *CollaborationHandler) IssueCertificate(c echo.Context) error {
	id := c.Param("id")
	return withSession(c, func(s *usecase.Session) (interface{}, error) {
		record, err := s.IssueCertificate(c.Request().Context(), id)
		if err != nil {
			return nil, err
		}
		return map[string]interface{}{"collaborationId": id, "certificate": record}, nil
	})
}
