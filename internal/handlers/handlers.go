package handlers

import (
	"encoding/json"
	"net/http"

	"sahaplatform-push/internal/dispatch"
	"sahaplatform-push/internal/resolve"
	"sahaplatform-push/internal/store"
)

type Handler struct {
	Subs       store.SubscriptionStore
	Users      store.UserStore
	Messages   store.MessageStore
	Listings   store.ListingEventStore
	Dispatcher *dispatch.Dispatcher
	Resolver   *resolve.Resolver
	PublicKey  string
}

func NewHandler(
	subs store.SubscriptionStore,
	users store.UserStore,
	messages store.MessageStore,
	listings store.ListingEventStore,
	dispatcher *dispatch.Dispatcher,
	resolver *resolve.Resolver,
	publicKey string,
) *Handler {
	return &Handler{
		Subs:       subs,
		Users:      users,
		Messages:   messages,
		Listings:   listings,
		Dispatcher: dispatcher,
		Resolver:   resolver,
		PublicKey:  publicKey,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
