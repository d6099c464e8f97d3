// Package dispatch fans a notification tickle out to every device a user
// has subscribed from. Pushes carry no payload; the device pulls the actual
// content over an authenticated channel after it wakes.
package dispatch

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"sync"
	"time"

	"sahaplatform-push/internal/metrics"
	"sahaplatform-push/internal/models"
	"sahaplatform-push/internal/store"
	"sahaplatform-push/internal/vapid"
)

// pushTTLSeconds is the TTL header sent with every tickle: how long the
// push service should queue it for an offline device.
const pushTTLSeconds = 30

type Dispatcher struct {
	subs    store.SubscriptionStore
	signer  *vapid.Signer
	client  *http.Client
	metrics *metrics.Collector
}

// NewDispatcher wires the fan-out against a subscription store and signer.
// A nil client falls back to a 10-second-timeout default.
func NewDispatcher(subs store.SubscriptionStore, signer *vapid.Signer, client *http.Client, m *metrics.Collector) *Dispatcher {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &Dispatcher{subs: subs, signer: signer, client: client, metrics: m}
}

// Tickle sends one empty push per subscription the user has, concurrently,
// and returns one outcome per subscription. An empty result with a nil
// error means the user has no subscriptions; the error return is reserved
// for the subscription load itself. A failing or hung endpoint never blocks
// or aborts the other sends.
func (d *Dispatcher) Tickle(ctx context.Context, userID int) ([]models.PushOutcome, error) {
	subs, err := d.subs.GetPushSubscriptions(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load subscriptions: %w", err)
	}
	if len(subs) == 0 {
		return []models.PushOutcome{}, nil
	}

	outcomes := make([]models.PushOutcome, len(subs))
	var wg sync.WaitGroup
	for i, sub := range subs {
		wg.Add(1)
		go func(i int, sub models.PushSubscription) {
			defer wg.Done()
			outcomes[i] = d.send(ctx, sub)
		}(i, sub)
	}
	wg.Wait()

	for _, o := range outcomes {
		switch o.Status {
		case models.OutcomeDelivered:
			d.metrics.RecordDelivered()
		case models.OutcomeDeleted:
			d.metrics.RecordExpired()
		default:
			d.metrics.RecordFailed()
		}
	}

	return outcomes, nil
}

func (d *Dispatcher) send(ctx context.Context, sub models.PushSubscription) models.PushOutcome {
	outcome := models.PushOutcome{Endpoint: sub.Endpoint}

	audience, err := vapid.Audience(sub.Endpoint)
	if err != nil {
		outcome.Status = models.OutcomeFailed
		outcome.Error = err.Error()
		return outcome
	}

	authHeader, err := d.signer.AuthorizationHeader(audience)
	if err != nil {
		outcome.Status = models.OutcomeFailed
		outcome.Error = err.Error()
		return outcome
	}

	// Empty body and no Content-Encoding: the push is only a wake signal.
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, sub.Endpoint, nil)
	if err != nil {
		outcome.Status = models.OutcomeFailed
		outcome.Error = err.Error()
		return outcome
	}
	req.Header.Set("Authorization", authHeader)
	req.Header.Set("TTL", fmt.Sprintf("%d", pushTTLSeconds))

	resp, err := d.client.Do(req)
	if err != nil {
		log.Printf("Failed to send push to %s: %v", sub.Endpoint, err)
		outcome.Status = models.OutcomeFailed
		outcome.Error = err.Error()
		return outcome
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	outcome.HTTPCode = resp.StatusCode
	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		outcome.Status = models.OutcomeDelivered
	case resp.StatusCode == http.StatusGone:
		// The endpoint is permanently dead. Delete it right away so a
		// crash mid-fan-out does not resurrect it on the next trigger.
		if err := d.subs.DeletePushSubscription(ctx, sub.ID); err != nil {
			log.Printf("Failed to delete gone subscription %s: %v", sub.ID, err)
		}
		outcome.Status = models.OutcomeDeleted
	default:
		// Anything else, 404 included, is treated as transient and the
		// subscription is kept for the next trigger.
		log.Printf("Push to %s returned %d", sub.Endpoint, resp.StatusCode)
		outcome.Status = models.OutcomeFailed
	}

	return outcome
}
