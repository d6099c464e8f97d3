package models

import "time"

// Listing status values the marketplace reports on its ingest webhook.
const (
	ListingStatusActive  = "active"
	ListingStatusUpdated = "updated"
)

// ListingEvent records a change to one of a user's own listings. Events are
// only interesting for a few minutes, so they live in Redis with a TTL.
type ListingEvent struct {
	UserID    int       `json:"user_id"`
	ListingID string    `json:"listing_id"`
	Title     string    `json:"title"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}
