package store

import (
	"context"

	"sahaplatform-push/internal/models"
)

// SubscriptionStore handles push subscription persistence (PostgreSQL).
type SubscriptionStore interface {
	// UpsertPushSubscription creates or overwrites the (user, endpoint)
	// row. Calling it again with the same pair replaces the keys and
	// refreshes updated_at instead of inserting a duplicate.
	UpsertPushSubscription(ctx context.Context, userID int, endpoint, p256dh, auth string) (models.PushSubscription, error)
	// GetPushSubscriptions returns an empty slice, not an error, when the
	// user has no subscriptions.
	GetPushSubscriptions(ctx context.Context, userID int) ([]models.PushSubscription, error)
	// Delete methods are idempotent; deleting nothing is not an error.
	DeletePushSubscription(ctx context.Context, id string) error
	DeletePushSubscriptionsForUser(ctx context.Context, userID int) error
}

// MessageStore handles conversation messages (PostgreSQL).
type MessageStore interface {
	AddMessage(ctx context.Context, msg models.Message) (models.Message, error)
	// LatestUnreadMessage returns nil, nil when there is no unread message.
	LatestUnreadMessage(ctx context.Context, receiverID int) (*models.Message, error)
	MarkConversationRead(ctx context.Context, receiverID int, conversationID string) error
}

// UserStore handles user lookups for session login and sender names.
type UserStore interface {
	CreateUser(ctx context.Context, username, displayName, password string) (models.User, error)
	GetUser(ctx context.Context, id int) (models.User, error)
	GetUserByUsername(ctx context.Context, username string) (models.User, error)
}

// ListingEventStore handles short-lived listing change records (Redis).
type ListingEventStore interface {
	RecordListingEvent(ctx context.Context, ev models.ListingEvent) error
	// LatestListingEvent returns nil, nil when no event is inside the
	// freshness window.
	LatestListingEvent(ctx context.Context, userID int) (*models.ListingEvent, error)
}
