package audit

import (
	"context"
	"sync/atomic"

	"github.com/sirupsen/logrus"
)

// Auditor records audit events.
type Auditor interface {
	Log(event Event)
}

// Trail is the default Auditor: it writes every event to an RFC5424 logger
// and, when a store is configured, persists it. Failures are logged and never
// returned to the caller.
type Trail struct {
	logger  *Logger
	store   *Store
	enabled atomic.Bool
	log     logrus.FieldLogger
}

// NewTrail creates a trail. store may be nil.
func NewTrail(logger *Logger, store *Store, log logrus.FieldLogger) *Trail {
	t := &Trail{
		logger: logger,
		store:  store,
		log:    log.WithField("component", "audit"),
	}
	t.enabled.Store(true)
	return t
}

// SetEnabled switches auditing on or off.
func (t *Trail) SetEnabled(enabled bool) {
	t.enabled.Store(enabled)
}

// Log writes an event to the logger and store (if audit is enabled)
func (t *Trail) Log(event Event) {
	if !t.enabled.Load() {
		return
	}

	if t.logger != nil {
		if err := t.logger.Log(event); err != nil {
			t.log.WithError(err).Warn("failed to write audit record")
		}
	}

	if t.store != nil {
		if err := t.store.Save(context.Background(), event); err != nil {
			t.log.WithError(err).WithField("msgid", event.MessageID()).Warn("failed to persist audit record")
		}
	}
}

type discard struct{}

func (discard) Log(Event) {}

// Discard is an Auditor that drops every event.
var Discard Auditor = discard{}
