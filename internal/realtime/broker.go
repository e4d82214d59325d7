package realtime

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const (
	channelPrefix  = "board:"
	publishTimeout = 5 * time.Second
)

// Broker fans events out through Redis pub/sub so that every server
// process sees every publish. No persistence, no acknowledgment, no
// replay.
type Broker struct {
	rdb *redis.Client
	log *logrus.Logger
}

func NewBroker(rdb *redis.Client, log *logrus.Logger) *Broker {
	return &Broker{rdb: rdb, log: log}
}

// Publish pushes an event to a board's channel. It runs post-commit and
// best-effort: failures are logged and never propagated to the mutation
// that triggered them.
func (b *Broker) Publish(boardID uuid.UUID, event Event) {
	const op = "realtime.Broker.Publish"

	payload, err := json.Marshal(event)
	if err != nil {
		b.log.WithField("operation", op).WithError(err).Warn("realtime event dropped")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()

	if err := b.rdb.Publish(ctx, channelPrefix+boardID.String(), payload).Err(); err != nil {
		b.log.WithField("operation", op).
			WithField("board_id", boardID).
			WithField("type", event.Type).
			WithError(err).
			Warn("realtime event dropped")
	}
}

// Listen subscribes to every board channel and returns the raw message
// stream. The stream closes when ctx is cancelled.
func (b *Broker) Listen(ctx context.Context) <-chan *redis.Message {
	return b.rdb.PSubscribe(ctx, channelPrefix+"*").Channel()
}
