package models

import "time"

// PushSubscription is a device's registration with a browser push service.
// A user has at most one row per endpoint; re-subscribing the same endpoint
// overwrites the keys instead of creating a duplicate.
type PushSubscription struct {
	ID        string    `json:"id"`
	UserID    int       `json:"user_id"`
	Endpoint  string    `json:"endpoint"`
	P256dh    string    `json:"keys_p256dh"` // Mapped from keys.p256dh
	Auth      string    `json:"keys_auth"`   // Mapped from keys.auth
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Outcome states for a single tickle send.
const (
	OutcomeDelivered = "delivered"
	OutcomeFailed    = "failed"
	OutcomeDeleted   = "deleted"
)

// PushOutcome reports what happened to one subscription during a dispatch.
// One subscription's failure never affects its siblings, so the caller
// always gets one outcome per subscription no matter how many failed.
type PushOutcome struct {
	Endpoint string `json:"endpoint"`
	Status   string `json:"status"`
	HTTPCode int    `json:"http_code,omitempty"`
	Error    string `json:"error,omitempty"`
}
