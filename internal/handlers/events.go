package handlers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"sahaplatform-push/internal/models"
)

// The marketplace app reports application events here. Recording the event
// and waking the receiver's devices are this service's whole job, so each
// ingest ends with a tickle dispatch.

// MessageEventHandler stores a new conversation message and tickles the
// receiver's devices.
func (h *Handler) MessageEventHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		SenderID       int    `json:"senderId"`
		ReceiverID     int    `json:"receiverId"`
		ConversationID string `json:"conversationId"`
		Content        string `json:"content"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}
	if req.SenderID == 0 || req.ReceiverID == 0 || req.ConversationID == "" {
		http.Error(w, "senderId, receiverId and conversationId are required", http.StatusBadRequest)
		return
	}

	msg, err := h.Messages.AddMessage(r.Context(), models.Message{
		ConversationID: req.ConversationID,
		SenderID:       req.SenderID,
		ReceiverID:     req.ReceiverID,
		Content:        req.Content,
	})
	if err != nil {
		log.Printf("Failed to store message: %v", err)
		http.Error(w, "Failed to store message", http.StatusInternalServerError)
		return
	}

	go h.tickle(req.ReceiverID)

	writeJSON(w, http.StatusOK, map[string]any{"success": true, "id": msg.ID})
}

// ListingEventHandler records a listing status change and tickles the
// owner's devices.
func (h *Handler) ListingEventHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		UserID    int    `json:"userId"`
		ListingID string `json:"listingId"`
		Title     string `json:"title"`
		Status    string `json:"status"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}
	if req.UserID == 0 || req.ListingID == "" {
		http.Error(w, "userId and listingId are required", http.StatusBadRequest)
		return
	}
	if req.Status != models.ListingStatusActive {
		req.Status = models.ListingStatusUpdated
	}

	err := h.Listings.RecordListingEvent(r.Context(), models.ListingEvent{
		UserID:    req.UserID,
		ListingID: req.ListingID,
		Title:     req.Title,
		Status:    req.Status,
	})
	if err != nil {
		log.Printf("Failed to record listing event: %v", err)
		http.Error(w, "Failed to record event", http.StatusInternalServerError)
		return
	}

	go h.tickle(req.UserID)

	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// ReadEventHandler clears the unread flag for a conversation once the
// marketplace app reports the user opened it. Without this, the latest
// unread message would outrank listing events forever.
func (h *Handler) ReadEventHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		UserID         int    `json:"userId"`
		ConversationID string `json:"conversationId"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}
	if req.UserID == 0 || req.ConversationID == "" {
		http.Error(w, "userId and conversationId are required", http.StatusBadRequest)
		return
	}

	if err := h.Messages.MarkConversationRead(r.Context(), req.UserID, req.ConversationID); err != nil {
		log.Printf("Failed to mark conversation %s read for user %d: %v", req.ConversationID, req.UserID, err)
		http.Error(w, "Failed to mark read", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// tickle runs a dispatch detached from the ingest request so a slow push
// service cannot hold the webhook response open.
func (h *Handler) tickle(userID int) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	outcomes, err := h.Dispatcher.Tickle(ctx, userID)
	if err != nil {
		log.Printf("Failed to dispatch tickle to user %d: %v", userID, err)
		return
	}
	for _, o := range outcomes {
		if o.Status != models.OutcomeDelivered {
			log.Printf("Tickle to %s for user %d: %s", o.Endpoint, userID, o.Status)
		}
	}
}
