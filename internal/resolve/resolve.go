// Package resolve decides what a freshly woken device should actually show.
// The push itself carries nothing; the device calls back here and gets the
// single most relevant pending notification.
package resolve

import (
	"context"
	"fmt"
	"log"

	"sahaplatform-push/internal/models"
	"sahaplatform-push/internal/store"
)

// maxBodyRunes caps the message preview shown in a notification body.
const maxBodyRunes = 50

type Resolver struct {
	messages store.MessageStore
	users    store.UserStore
	listings store.ListingEventStore
}

func NewResolver(messages store.MessageStore, users store.UserStore, listings store.ListingEventStore) *Resolver {
	return &Resolver{messages: messages, users: users, listings: listings}
}

// ResolveLatest returns the highest-priority notification for the user.
// Direct messages always outrank listing status events. The checks run
// sequentially in priority order and the first match wins; a lookup failure
// is logged and falls through so the device always gets something to show.
func (r *Resolver) ResolveLatest(ctx context.Context, userID int) models.Notification {
	// Rule 1: most recent unread message.
	msg, err := r.messages.LatestUnreadMessage(ctx, userID)
	if err != nil {
		log.Printf("Failed to look up unread messages for user %d: %v", userID, err)
	}
	if msg != nil {
		sender := "Someone"
		if u, err := r.users.GetUser(ctx, msg.SenderID); err == nil {
			if u.DisplayName != "" {
				sender = u.DisplayName
			} else {
				sender = u.Username
			}
		}
		return models.Notification{
			Title:   "New message from " + sender,
			Message: truncate(msg.Content, maxBodyRunes),
			Data:    models.NotificationData{URL: "/conversations/" + msg.ConversationID},
		}
	}

	// Rule 2: a change to one of the user's own listings in the last
	// 5 minutes (the store's TTL enforces the window).
	ev, err := r.listings.LatestListingEvent(ctx, userID)
	if err != nil {
		log.Printf("Failed to look up listing events for user %d: %v", userID, err)
	}
	if ev != nil {
		body := fmt.Sprintf("%q was updated", ev.Title)
		if ev.Status == models.ListingStatusActive {
			body = fmt.Sprintf("%q is now active", ev.Title)
		}
		return models.Notification{
			Title:   "Listing status update",
			Message: body,
			Data:    models.NotificationData{URL: "/my/listings"},
		}
	}

	// Rule 3: nothing qualifying happened.
	return Fallback()
}

// Fallback is the generic notification shown when no qualifying event is
// pending.
func Fallback() models.Notification {
	return models.Notification{
		Title:   "Saha Platform",
		Message: "You have new activity",
		Data:    models.NotificationData{URL: "/notifications"},
	}
}

// Unauthenticated is returned when no session identity could be
// established. That is a user-visible state pointing at login, not a
// server error.
func Unauthenticated() models.Notification {
	return models.Notification{
		Title:   "Saha Platform",
		Message: "Sign in to see your notifications",
		Data:    models.NotificationData{URL: "/login"},
	}
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}
