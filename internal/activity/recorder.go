// Package activity writes the append-only audit trail. Appends run as
// post-commit hooks of the primary mutation: a failure here is retried
// once, logged, and never surfaced to the caller.
package activity

import (
	"context"
	"time"

	"workspace/internal/model"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const appendTimeout = 3 * time.Second

type appender interface {
	Create(ctx context.Context, activity *model.Activity) error
}

type Recorder struct {
	store appender
	log   *logrus.Logger
}

func NewRecorder(store appender, log *logrus.Logger) *Recorder {
	return &Recorder{store: store, log: log}
}

// Record appends an audit entry describing a mutation that already
// committed. It deliberately does not take the request context: the
// append must not be cancelled by the response having been written.
func (r *Recorder) Record(boardID uuid.UUID, user, action, target string) {
	const op = "activity.Recorder.Record"

	ctx, cancel := context.WithTimeout(context.Background(), appendTimeout)
	defer cancel()

	entry := &model.Activity{
		BoardID: boardID,
		User:    user,
		Action:  action,
		Target:  target,
	}

	err := r.store.Create(ctx, entry)
	if err == nil {
		return
	}
	// one bounded retry, then drop
	if err = r.store.Create(ctx, entry); err != nil {
		r.log.WithField("operation", op).
			WithField("board_id", boardID).
			WithField("action", action).
			WithError(err).
			Warn("activity entry dropped")
	}
}
