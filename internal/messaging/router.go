package messaging

import (
	"context"

	"github.com/cockroachdb/errors"

	"go-linkedin-extractor/pkg/logging"
)

// ErrUnknownAction is returned for actions that cannot be requested.
var ErrUnknownAction = errors.New("unknown action")

// Automation is what the page context exposes to message handlers.
type Automation interface {
	Start() bool
	Stop() bool
	Status() Status
	Extract(ctx context.Context) (ExtractResult, error)
}

// Router answers request messages.
type Router struct {
	auto Automation
	log  *logging.Logger
}

func NewRouter(auto Automation, log *logging.Logger) *Router {
	return &Router{auto: auto, log: log}
}

// Handle dispatches req and returns the response body for its action.
func (r *Router) Handle(ctx context.Context, req Request) (any, error) {
	switch req.Action {
	case ActionExtractJobs:
		res, err := r.auto.Extract(ctx)
		if err != nil {
			r.log.Warn("⚠️ manual extraction failed", "err", err)
			return ExtractResult{Success: false}, nil
		}
		return res, nil

	case ActionStartAutomation:
		if !r.auto.Start() {
			r.log.Info("automation already running")
		}
		return Ack{Success: true}, nil

	case ActionStopAutomation:
		r.auto.Stop()
		return Ack{Success: true}, nil

	case ActionGetStatus:
		return r.auto.Status(), nil

	default:
		return nil, errors.Wrapf(ErrUnknownAction, "%q", req.Action)
	}
}
