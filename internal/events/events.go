// Package events publishes image lifecycle notifications. Publishing is best
// effort: a failure is logged and never reaches the request that caused it.
package events

import (
	"context"
	"encoding/json"
	"github.com/google/uuid"
	"imageModeration/internal/lib/logger/sl"
	"log/slog"
	"time"
)

type Type string

const (
	// Uploaded follows a batch whose records were persisted.
	Uploaded Type = "images.uploaded"
	// Orphaned lists files written for a batch whose records were never
	// persisted. Paths are relative to the images root.
	Orphaned Type = "images.orphaned"
	Purged   Type = "images.purged"
)

const publishTimeout = 5 * time.Second

type Event struct {
	Type       Type        `json:"type"`
	OwnerID    uuid.UUID   `json:"ownerId"`
	ImageIDs   []uuid.UUID `json:"imageIds,omitempty"`
	Paths      []string    `json:"paths,omitempty"`
	Deleted    int64       `json:"deleted,omitempty"`
	DirRemoved bool        `json:"dirRemoved,omitempty"`
	At         time.Time   `json:"at"`
}

type Sender interface {
	SendMessage(ctx context.Context, key, message []byte) error
}

type Publisher struct {
	log    *slog.Logger
	sender Sender
}

func NewPublisher(log *slog.Logger, sender Sender) *Publisher {
	return &Publisher{log: log, sender: sender}
}

// Publish sends ev keyed by its owner. The send outlives cancellation of ctx
// so a client hanging up does not drop the event.
func (p *Publisher) Publish(ctx context.Context, ev Event) {
	const op = "events.Publish"

	log := p.log.With(
		slog.String("op", op),
		slog.String("type", string(ev.Type)),
		slog.String("owner_id", ev.OwnerID.String()),
	)

	if ev.At.IsZero() {
		ev.At = time.Now().UTC()
	}

	payload, err := json.Marshal(ev)
	if err != nil {
		log.Error("failed to marshal event", sl.Err(err))
		return
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	if err = p.sender.SendMessage(ctx, []byte(ev.OwnerID.String()), payload); err != nil {
		log.Warn("failed to publish event", sl.Err(err))
		return
	}

	log.Debug("event published")
}

func Decode(data []byte) (Event, error) {
	var ev Event
	err := json.Unmarshal(data, &ev)

	return ev, err
}
