package usecase

import (
	"context"
	"time"

	"artisanx/internal/domain/entity"
)

// IdentityProvider establishes and ends user identities.
type IdentityProvider interface {
	SignInWithPassword(ctx context.Context, email, password string) (*entity.Identity, error)
	SignInWithProvider(ctx context.Context, providerID, credential string) (*entity.Identity, error)
	CreateIdentity(ctx context.Context, email, password string) (*entity.Identity, error)
	UpdateDisplayName(ctx context.Context, uid, name string) error
	SignOut(ctx context.Context, uid string) error
}

// EventPublisher pushes session events to connected clients. Publish must
// not block.
type EventPublisher interface {
	Publish(sessionID string, event entity.SessionEvent)
}

type Limiter interface {
	Allow(key, action string) (bool, time.Duration)
}

// NotificationSink receives user-facing notifications and returns their id.
type NotificationSink interface {
	Notify(message string, typ entity.NotificationType, link *entity.NotificationLink) string
}
