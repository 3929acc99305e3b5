package usecase

import (
	"context"
	"fmt"

	"artisanx/internal/domain/entity"
	"artisanx/internal/domain/repository"
	"artisanx/pkg/errors"
	"artisanx/pkg/logger"
)

type ConnectionUseCase struct {
	store   repository.DocumentStore
	limiter Limiter
}

func NewConnectionUseCase(store repository.DocumentStore, limiter Limiter) *ConnectionUseCase {
	return &ConnectionUseCase{
		store:   store,
		limiter: limiter,
	}
}

func (uc *ConnectionUseCase) SendConnectionRequest(ctx context.Context, actor *entity.User, receiverID string) (string, error) {
	if err := requireIdentified(actor); err != nil {
		return "", err
	}
	if receiverID == actor.ID {
		return "", errors.BadRequest("you cannot connect with yourself", nil)
	}
	if err := checkRate(uc.limiter, actor, "connection_request"); err != nil {
		return "", err
	}

	if _, err := loadEntity[entity.User](ctx, uc.store, repository.Doc(repository.CollectionUsers, receiverID), "user"); err != nil {
		return "", err
	}

	pending, err := uc.store.Find(ctx, repository.NewQuery(repository.CollectionConnectionRequests).
		Where("senderId", repository.OpEqual, actor.ID).
		Where("receiverId", repository.OpEqual, receiverID).
		Where("status", repository.OpEqual, entity.ConnectionPending))
	if err != nil {
		return "", err
	}
	if len(pending) > 0 {
		return "", errors.Conflict("a connection request is already pending")
	}

	ref, err := uc.store.Add(ctx, repository.CollectionConnectionRequests, map[string]interface{}{
		"senderId":     actor.ID,
		"receiverId":   receiverID,
		"senderName":   actor.Name,
		"senderAvatar": actor.Avatar,
		"senderRole":   actor.Role,
		"status":       entity.ConnectionPending,
		"timestamp":    repository.ServerTimestamp,
	})
	if err != nil {
		logger.Error("SendConnectionRequest Error: %v", err)
		return "", err
	}
	return ref.ID, nil
}

// RespondToConnectionRequest answers a request sent to actor. Accepting also
// opens the conversation with the sender in the same transaction.
func (uc *ConnectionUseCase) RespondToConnectionRequest(ctx context.Context, actor *entity.User, requestID string, status entity.ConnectionStatus, sink NotificationSink) (string, error) {
	if err := requireIdentified(actor); err != nil {
		return "", err
	}
	if status != entity.ConnectionAccepted && status != entity.ConnectionRejected {
		return "", errors.BadRequest("status must be accepted or rejected", nil)
	}

	ref := repository.Doc(repository.CollectionConnectionRequests, requestID)
	var req *entity.ConnectionRequest
	var conversationID string

	err := uc.store.RunTransaction(ctx, func(ctx context.Context, tx repository.Transaction) error {
		var err error
		req, err = txLoad[entity.ConnectionRequest](tx, ref, "connection request")
		if err != nil {
			return err
		}
		if req.ReceiverID != actor.ID {
			return errors.Forbidden("this request was not sent to you", nil)
		}
		if req.Status != entity.ConnectionPending {
			return errors.PreconditionFailed("request was already answered")
		}

		if status != entity.ConnectionAccepted {
			return tx.Update(ref, []repository.Update{field("status", status)})
		}

		other := entity.User{ID: req.SenderID, Name: req.SenderName, Avatar: req.SenderAvatar}
		conversationID = entity.ConversationID(actor.ID, other.ID)
		convRef := repository.Doc(repository.CollectionConversations, conversationID)
		convDoc, err := tx.Get(convRef)
		if err != nil {
			return err
		}

		if err := tx.Update(ref, []repository.Update{field("status", status)}); err != nil {
			return err
		}
		if convDoc.Exists() {
			return nil
		}
		return tx.Set(convRef, newConversation(actor, &other))
	})
	if err != nil {
		logger.Error("RespondToConnectionRequest Error: %v", err)
		return "", err
	}

	if status == entity.ConnectionAccepted {
		notify(sink, fmt.Sprintf("You are now connected with %s.", req.SenderName), entity.NotificationSuccess,
			&entity.NotificationLink{Text: "Go to Chat", Page: chatPageFor(actor.Role)})
	}
	return conversationID, nil
}
