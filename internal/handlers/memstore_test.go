package handlers

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"sahaplatform-push/internal/models"
)

// memStore backs handler tests with the same semantics the Postgres and
// Redis stores guarantee: endpoint upserts, idempotent deletes, empty-slice
// reads and a 5-minute listing event window.
type memStore struct {
	mu        sync.Mutex
	subs      map[string]models.PushSubscription // userID|endpoint
	users     map[int]models.User
	messages  []models.Message
	events    []models.ListingEvent
	nextMsgID int
}

func newMemStore() *memStore {
	return &memStore{
		subs:  make(map[string]models.PushSubscription),
		users: make(map[int]models.User),
	}
}

func subKey(userID int, endpoint string) string {
	return fmt.Sprintf("%d|%s", userID, endpoint)
}

func (m *memStore) UpsertPushSubscription(ctx context.Context, userID int, endpoint, p256dh, auth string) (models.PushSubscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := subKey(userID, endpoint)
	now := time.Now()
	sub, ok := m.subs[key]
	if !ok {
		sub = models.PushSubscription{ID: uuid.NewString(), UserID: userID, Endpoint: endpoint, CreatedAt: now}
	}
	sub.P256dh = p256dh
	sub.Auth = auth
	sub.UpdatedAt = now
	m.subs[key] = sub
	return sub, nil
}

func (m *memStore) GetPushSubscriptions(ctx context.Context, userID int) ([]models.PushSubscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := []models.PushSubscription{}
	for _, s := range m.subs {
		if s.UserID == userID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *memStore) DeletePushSubscription(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for key, s := range m.subs {
		if s.ID == id {
			delete(m.subs, key)
		}
	}
	return nil
}

func (m *memStore) DeletePushSubscriptionsForUser(ctx context.Context, userID int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for key, s := range m.subs {
		if s.UserID == userID {
			delete(m.subs, key)
		}
	}
	return nil
}

func (m *memStore) CreateUser(ctx context.Context, username, displayName, password string) (models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	hash, err := models.HashPassword(password)
	if err != nil {
		return models.User{}, err
	}
	u := models.User{ID: len(m.users) + 1, Username: username, DisplayName: displayName, PasswordHash: hash, CreatedAt: time.Now()}
	m.users[u.ID] = u
	return u, nil
}

func (m *memStore) GetUser(ctx context.Context, id int) (models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[id]
	if !ok {
		return models.User{}, errors.New("user not found")
	}
	return u, nil
}

func (m *memStore) GetUserByUsername(ctx context.Context, username string) (models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, u := range m.users {
		if u.Username == username {
			return u, nil
		}
	}
	return models.User{}, errors.New("user not found")
}

func (m *memStore) AddMessage(ctx context.Context, msg models.Message) (models.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextMsgID++
	msg.ID = m.nextMsgID
	msg.CreatedAt = time.Now()
	m.messages = append(m.messages, msg)
	return msg, nil
}

func (m *memStore) LatestUnreadMessage(ctx context.Context, receiverID int) (*models.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := len(m.messages) - 1; i >= 0; i-- {
		msg := m.messages[i]
		if msg.ReceiverID == receiverID && !msg.Read {
			return &msg, nil
		}
	}
	return nil, nil
}

func (m *memStore) MarkConversationRead(ctx context.Context, receiverID int, conversationID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, msg := range m.messages {
		if msg.ReceiverID == receiverID && msg.ConversationID == conversationID {
			m.messages[i].Read = true
		}
	}
	return nil
}

func (m *memStore) RecordListingEvent(ctx context.Context, ev models.ListingEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if ev.CreatedAt.IsZero() {
		ev.CreatedAt = time.Now()
	}
	m.events = append(m.events, ev)
	return nil
}

func (m *memStore) LatestListingEvent(ctx context.Context, userID int) (*models.ListingEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := len(m.events) - 1; i >= 0; i-- {
		ev := m.events[i]
		if ev.UserID == userID && time.Since(ev.CreatedAt) < 5*time.Minute {
			return &ev, nil
		}
	}
	return nil, nil
}
