package reporter

import (
	"go-linkedin-extractor/internal/messaging"
	"go-linkedin-extractor/pkg/logging"
)

// Multi fans every event out to all notifiers, in order. Nil entries are
// skipped.
type Multi []messaging.Notifier

func (m Multi) Notify(ev messaging.Event) {
	for _, n := range m {
		if n != nil {
			n.Notify(ev)
		}
	}
}

// LogReporter writes automation events to the log.
type LogReporter struct {
	log *logging.Logger
}

func NewLogReporter(log *logging.Logger) *LogReporter {
	return &LogReporter{log: log}
}

func (r *LogReporter) Notify(ev messaging.Event) {
	switch ev.Action {
	case messaging.ActionAutomationStarted:
		r.log.Info("📣 event: automation started")
	case messaging.ActionAutomationStopped:
		r.log.Info("📣 event: automation stopped", "reason", ev.Reason)
	case messaging.ActionUpdateJobCount:
		if ev.Count != nil {
			r.log.Info("📣 event: job count", "count", *ev.Count)
		}
	default:
		r.log.Debug("📣 event", "action", ev.Action)
	}
}
