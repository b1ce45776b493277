package livequeue

import (
	"context"
	"encoding/json"
	"time"

	"github.com/dmehra2102/prod-golang-projects/opdflow/internal/domain/queue"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Event tells subscribed clients that a scope changed. It carries no entry data on
// purpose: consumers must refetch a full snapshot, never apply incremental deltas, so
// the dense-permutation checks on the snapshot stay valid.
type Event struct {
	DoctorID uuid.UUID `json:"doctor_id"`
	Date     string    `json:"date"`
	Kind     string    `json:"kind"`
	EntryID  uuid.UUID `json:"entry_id,omitempty"`
	At       time.Time `json:"at"`
}

// Broadcaster publishes queue change events on one redis channel per doctor scope.
type Broadcaster struct {
	client *redis.Client
	prefix string
	log    *zap.Logger
}

func NewBroadcaster(client *redis.Client, prefix string, log *zap.Logger) *Broadcaster {
	return &Broadcaster{client: client, prefix: prefix, log: log}
}

func (b *Broadcaster) channel(doctorID uuid.UUID) string {
	return b.prefix + doctorID.String()
}

// QueueChanged publishes after the mutation has committed. Publish failures are logged
// and swallowed: subscribers fall back to their regular poll tick, so delivery here is
// an optimization, not a correctness requirement.
func (b *Broadcaster) QueueChanged(ctx context.Context, scope queue.Scope, kind string, entryID uuid.UUID) {
	ev := Event{
		DoctorID: scope.DoctorID,
		Date:     scope.Date.Format("2006-01-02"),
		Kind:     kind,
		EntryID:  entryID,
		At:       time.Now(),
	}
	payload, err := json.Marshal(ev)
	if err != nil {
		b.log.Error("failed to encode queue event", zap.Error(err))
		return
	}

	if err := b.client.Publish(ctx, b.channel(scope.DoctorID), payload).Err(); err != nil {
		b.log.Warn("failed to publish queue event",
			zap.String("doctor_id", scope.DoctorID.String()),
			zap.Error(err),
		)
	}
}

// Subscribe listens for change events on one doctor's channel. The returned cancel
// function closes the subscription and the event channel.
func (b *Broadcaster) Subscribe(ctx context.Context, doctorID uuid.UUID) (<-chan Event, func(), error) {
	sub := b.client.Subscribe(ctx, b.channel(doctorID))
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, nil, err
	}

	events := make(chan Event, 16)
	go func() {
		defer close(events)
		for msg := range sub.Channel() {
			var ev Event
			if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
				b.log.Warn("dropping malformed queue event", zap.Error(err))
				continue
			}
			select {
			case events <- ev:
			default:
				// Slow consumer; it will reconcile on its next poll anyway.
			}
		}
	}()

	cancel := func() { _ = sub.Close() }
	return events, cancel, nil
}
