package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"sahaplatform-push/internal/resolve"
)

// VAPIDKeyHandler returns the public VAPID key clients pass as
// applicationServerKey when subscribing.
func (h *Handler) VAPIDKeyHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"publicKey": h.PublicKey,
	})
}

// SubscribeHandler saves a push subscription. Re-subscribing the same
// endpoint overwrites the stored keys instead of adding a row.
func (h *Handler) SubscribeHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		UserID       int `json:"userId"`
		Subscription struct {
			Endpoint string `json:"endpoint"`
			Keys     struct {
				P256dh string `json:"p256dh"`
				Auth   string `json:"auth"`
			} `json:"keys"`
		} `json:"subscription"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}
	if req.UserID == 0 || req.Subscription.Endpoint == "" {
		http.Error(w, "userId and subscription.endpoint are required", http.StatusBadRequest)
		return
	}

	_, err := h.Subs.UpsertPushSubscription(r.Context(), req.UserID,
		req.Subscription.Endpoint, req.Subscription.Keys.P256dh, req.Subscription.Keys.Auth)
	if err != nil {
		log.Printf("Failed to save subscription: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]bool{"success": false})
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// UnsubscribeHandler removes all of a user's subscriptions. Removing none
// is still a success.
func (h *Handler) UnsubscribeHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		UserID int `json:"userId"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.UserID == 0 {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}

	if err := h.Subs.DeletePushSubscriptionsForUser(r.Context(), req.UserID); err != nil {
		log.Printf("Failed to delete subscriptions for user %d: %v", req.UserID, err)
		writeJSON(w, http.StatusInternalServerError, map[string]bool{"success": false})
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// TriggerHandler fans a tickle out to every device the receiver has. A user
// with no subscriptions is a valid terminal state, not an error.
func (h *Handler) TriggerHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		ReceiverID int `json:"receiverId"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ReceiverID == 0 {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}

	outcomes, err := h.Dispatcher.Tickle(r.Context(), req.ReceiverID)
	if err != nil {
		log.Printf("Failed to dispatch tickle to user %d: %v", req.ReceiverID, err)
		http.Error(w, "Failed to dispatch", http.StatusInternalServerError)
		return
	}

	if len(outcomes) == 0 {
		writeJSON(w, http.StatusOK, map[string]string{"message": "No subscriptions found"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"outcomes": outcomes})
}

// LatestHandler resolves what a woken device should display. Without a
// session it answers with the login fallback rather than an error: the
// device must always have something to show.
func (h *Handler) LatestHandler(w http.ResponseWriter, r *http.Request) {
	userID := GetCurrentUser(r)
	if userID == 0 {
		writeJSON(w, http.StatusOK, resolve.Unauthenticated())
		return
	}

	writeJSON(w, http.StatusOK, h.Resolver.ResolveLatest(r.Context(), userID))
}
