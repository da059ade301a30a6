package auth

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// SessionEventsChannel is the Redis pub/sub channel carrying session changes.
const SessionEventsChannel = "auth:session-events"

// Session event types.
const (
	EventSignedIn    = "signed_in"
	EventSignedOut   = "signed_out"
	EventInvalidated = "invalidated"
)

// SessionEvent is published whenever a session starts or ends.
type SessionEvent struct {
	Type      string    `json:"type"`
	AccountID string    `json:"account_id"`
	SessionID string    `json:"session_id,omitempty"`
	At        time.Time `json:"at"`
}

// SessionEvents publishes and subscribes to session changes over Redis.
type SessionEvents struct {
	Rdb *redis.Client
}

// Publish sends ev to every subscriber.
func (e *SessionEvents) Publish(ctx context.Context, ev SessionEvent) error {
	if e == nil || e.Rdb == nil {
		return nil
	}
	if ev.At.IsZero() {
		ev.At = time.Now().UTC()
	}
	b, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return e.Rdb.Publish(ctx, SessionEventsChannel, b).Err()
}

// Subscription is the handle returned by Subscribe.
type Subscription struct {
	ps   *redis.PubSub
	done chan struct{}
	once sync.Once
	err  error
}

// Subscribe calls cb for each session event until the subscription is closed.
// cb runs on a single goroutine, in publish order.
func (e *SessionEvents) Subscribe(ctx context.Context, cb func(SessionEvent)) (*Subscription, error) {
	ps := e.Rdb.Subscribe(ctx, SessionEventsChannel)
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return nil, err
	}
	sub := &Subscription{ps: ps, done: make(chan struct{})}
	ch := ps.Channel()
	go func() {
		defer close(sub.done)
		for msg := range ch {
			var ev SessionEvent
			if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
				log.Warn().Err(err).Msg("auth: dropping malformed session event")
				continue
			}
			cb(ev)
		}
	}()
	return sub, nil
}

// Close unsubscribes and waits for the callback goroutine to exit.
func (s *Subscription) Close() error {
	s.once.Do(func() {
		s.err = s.ps.Close()
		<-s.done
	})
	return s.err
}
