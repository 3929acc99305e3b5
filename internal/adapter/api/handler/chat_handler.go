package handler

import (
	"github.com/labstack/echo/v4"

	"artisanx/internal/domain/entity"
	"artisanx/internal/usecase"
	"artisanx/pkg/response"
)

// ChatHandler serves connection requests and conversations.
type ChatHandler struct{}

func NewChatHandler() *ChatHandler {
	return &ChatHandler{}
}

type ConnectionRequestBody struct {
	ReceiverID string `json:"receiverId" validate:"required"`
}

type ConnectionResponseBody struct {
	Status string `json:"status" validate:"required,oneof=accepted rejected"`
}

type CreateConversationRequest struct {
	ParticipantID string `json:"participantId" validate:"required"`
	Name          string `json:"name"`
	Avatar        string `json:"avatar"`
}

type SendMessageRequest struct {
	Text string `json:"text" validate:"required,max=2000"`
}

func (h *ChatHandler) SendConnectionRequest(c echo.Context) error {
	var req ConnectionRequestBody
	if err := bindAndValidate(c, &req); err != nil {
		return response.Error(c, err)
	}
	s, err := currentSession(c)
	if err != nil {
		return response.Error(c, err)
	}

	id, err := s.SendConnectionRequest(c.Request().Context(), req.ReceiverID)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Created(c, map[string]string{"id": id})
}

func (h *ChatHandler) RespondToConnectionRequest(c echo.Context) error {
	var req ConnectionResponseBody
	if err := bindAndValidate(c, &req); err != nil {
		return response.Error(c, err)
	}
	id := c.Param("id")
	return withSession(c, func(s *usecase.Session) (interface{}, error) {
		convID, err := s.RespondToConnectionRequest(c.Request().Context(), id, entity.ConnectionStatus(req.Status))
		if err != nil {
			return nil, err
		}
		return map[string]string{"id": id, "status": req.Status, "conversationId": convID}, nil
	})
}

func (h *ChatHandler) CreateOrSelectConversation(c echo.Context) error {
	var req CreateConversationRequest
	if err := bindAndValidate(c, &req); err != nil {
		return response.Error(c, err)
	}
	return withSession(c, func(s *usecase.Session) (interface{}, error) {
		id, err := s.CreateOrSelectConversation(c.Request().Context(), usecase.ParticipantInput{
			ID:     req.ParticipantID,
			Name:   req.Name,
			Avatar: req.Avatar,
		})
		if err != nil {
			return nil, err
		}
		return map[string]string{"conversationId": id}, nil
	})
}

func (h *ChatHandler) SendMessage(c echo.Context) error {
	var req SendMessageRequest
	if err := bindAndValidate(c, &req); err != nil {
		return response.Error(c, err)
	}
	s, err := currentSession(c)
	if err != nil {
		return response.Error(c, err)
	}

	id, err := s.SendMessage(c.Request().Context(), c.Param("id"), req.Text)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Created(c, map[string]string{"id": id})
}
