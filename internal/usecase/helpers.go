package usecase

import (
	"context"
	"time"

	"artisanx/internal/domain/entity"
	"artisanx/internal/domain/repository"
	"artisanx/pkg/errors"
)

type entityPtr[T any] interface {
	*T
	repository.Identifiable
}

// loadEntity reads one document and fails with NOT_FOUND when it is missing.
func loadEntity[T any, PT entityPtr[T]](ctx context.Context, store repository.DocumentStore, ref repository.DocRef, resource string) (*T, error) {
	doc, err := store.Get(ctx, ref)
	if err != nil {
		return nil, err
	}
	if !doc.Exists() {
		return nil, errors.NotFound(resource, nil)
	}
	return repository.DecodeOne[T, PT](doc)
}

func txLoad[T any, PT entityPtr[T]](tx repository.Transaction, ref repository.DocRef, resource string) (*T, error) {
	doc, err := tx.Get(ref)
	if err != nil {
		return nil, err
	}
	if !doc.Exists() {
		return nil, errors.NotFound(resource, nil)
	}
	return repository.DecodeOne[T, PT](doc)
}

func requireActor(actor *entity.User) error {
	if actor == nil || actor.ID == "" {
		return errors.Unauthorized("sign in first", nil)
	}
	return nil
}

func requireRole(actor *entity.User, role entity.Role) error {
	if err := requireActor(actor); err != nil {
		return err
	}
	if actor.Role != role {
		return errors.Forbidden("only a "+string(role)+" can do this", nil)
	}
	return nil
}

// requireIdentified rejects guests, who have no stored profile.
func requireIdentified(actor *entity.User) error {
	if err := requireActor(actor); err != nil {
		return err
	}
	if actor.IsGuest() {
		return errors.Forbidden("guests cannot do this, please sign in", nil)
	}
	return nil
}

func checkRate(limiter Limiter, actor *entity.User, action string) error {
	if limiter == nil {
		return nil
	}
	if ok, wait := limiter.Allow(actor.ID, action); !ok {
		return errors.TooManyRequests("Rate limit exceeded. Please wait before trying again", wait)
	}
	return nil
}

func notify(sink NotificationSink, message string, typ entity.NotificationType, link *entity.NotificationLink) {
	if sink != nil {
		sink.Notify(message, typ, link)
	}
}

func nowRFC3339() string {
	return time.Now().UTC().Format(time.RFC3339)
}

func field(path string, value interface{}) repository.Update {
	return repository.Update{Path: path, Value: value}
}
