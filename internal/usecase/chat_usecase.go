package usecase

import (
	"context"
	"strings"

	"artisanx/internal/domain/entity"
	"artisanx/internal/domain/repository"
	"artisanx/pkg/errors"
	"artisanx/pkg/logger"
)

type ChatUseCase struct {
	store   repository.DocumentStore
	limiter Limiter
}

func NewChatUseCase(store repository.DocumentStore, limiter Limiter) *ChatUseCase {
	return &ChatUseCase{
		store:   store,
		limiter: limiter,
	}
}

// ParticipantInput names the other side of a conversation.
type ParticipantInput struct {
	ID     string
	Name   string
	Avatar string
}

func newConversation(a, b *entity.User) entity.Conversation {
	ids := []string{a.ID, b.ID}
	if ids[1] < ids[0] {
		ids[0], ids[1] = ids[1], ids[0]
	}
	return entity.Conversation{
		ParticipantIDs: ids,
		Participants: map[string]entity.Participant{
			a.ID: {Name: a.Name, Avatar: a.Avatar},
			b.ID: {Name: b.Name, Avatar: b.Avatar},
		},
	}
}

// CreateOrSelectConversation returns the id of the conversation between
// actor and other, creating it when it does not exist yet.
func (uc *ChatUseCase) CreateOrSelectConversation(ctx context.Context, actor *entity.User, other ParticipantInput) (string, error) {
	if err := requireIdentified(actor); err != nil {
		return "", err
	}
	if other.ID == "" || other.ID == actor.ID {
		return "", errors.BadRequest("choose someone else to chat with", nil)
	}

	id := entity.ConversationID(actor.ID, other.ID)
	ref := repository.Doc(repository.CollectionConversations, id)

	// selecting an existing conversation is free; only a create spends a token
	existing, err := uc.store.Get(ctx, ref)
	if err != nil {
		logger.Error("CreateOrSelectConversation Error: %v", err)
		return "", err
	}
	if existing.Exists() {
		return id, nil
	}
	if err := checkRate(uc.limiter, actor, "create_chat"); err != nil {
		logger.Warn("CreateOrSelectConversation Rate Limited: User %s", actor.ID)
		return "", err
	}

	created := false
	err = uc.store.RunTransaction(ctx, func(ctx context.Context, tx repository.Transaction) error {
		created = false
		doc, err := tx.Get(ref)
		if err != nil {
			return err
		}
		if doc.Exists() {
			return nil
		}
		created = true
		return tx.Set(ref, newConversation(actor, &entity.User{ID: other.ID, Name: other.Name, Avatar: other.Avatar}))
	})
	if err != nil {
		logger.Error("CreateOrSelectConversation Error: %v", err)
		return "", err
	}
	if created {
		logger.Debug("Created conversation %s", id)
	}
	return id, nil
}

// SendMessage writes the message and the conversation's last-message summary
// in one batch, both stamped by the store.
func (uc *ChatUseCase) SendMessage(ctx context.Context, actor *entity.User, conversationID, text string) (string, error) {
	if err := requireIdentified(actor); err != nil {
		return "", err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", errors.BadRequest("message cannot be empty", nil)
	}
	if err := checkRate(uc.limiter, actor, "send_message"); err != nil {
		logger.Warn("SendMessage Rate Limited: User %s", actor.ID)
		return "", err
	}

	convRef := repository.Doc(repository.CollectionConversations, conversationID)
	conv, err := loadEntity[entity.Conversation](ctx, uc.store, convRef, "conversation")
	if err != nil {
		return "", err
	}
	if !conv.HasParticipant(actor.ID) {
		return "", errors.Forbidden("you are not part of this conversation", nil)
	}

	msgRef := uc.store.NewRef(repository.MessagesCollection(conversationID))
	err = uc.store.Batch().
		Set(msgRef, map[string]interface{}{
			"senderId":  actor.ID,
			"text":      text,
			"timestamp": repository.ServerTimestamp,
		}).
		Update(convRef, []repository.Update{field("lastMessage", map[string]interface{}{
			"text":      text,
			"timestamp": repository.ServerTimestamp,
		})}).
		Commit(ctx)
	if err != nil {
		logger.Error("SendMessage Error: %v", err)
		return "", err
	}
	return msgRef.ID, nil
}
