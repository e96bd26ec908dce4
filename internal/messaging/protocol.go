// Messages exchanged between the page context (the process driving the
// browser) and its controllers (popup CLI, HTTP clients, schedulers).

package messaging

// Action names a request or a pushed event.
type Action string

const (
	ActionExtractJobs     Action = "extractJobs"
	ActionStartAutomation Action = "startAutomation"
	ActionStopAutomation  Action = "stopAutomation"
	ActionGetStatus       Action = "getStatus"

	// Pushed by the page context, never requested.
	ActionAutomationStarted Action = "automationStarted"
	ActionAutomationStopped Action = "automationStopped"
	ActionUpdateJobCount    Action = "updateJobCount"
)

// Request is a single round-trip message.
type Request struct {
	Action Action `json:"action"`
}

// Extraction result types.
const (
	ExtractDetails  = "details"
	ExtractListings = "listings"
)

// ExtractResult answers extractJobs.
type ExtractResult struct {
	Success bool   `json:"success"`
	Type    string `json:"type,omitempty"`
	Count   *int   `json:"count,omitempty"`
}

// Ack answers startAutomation and stopAutomation.
type Ack struct {
	Success bool `json:"success"`
}

// Status answers getStatus.
type Status struct {
	IsRunning   bool `json:"isRunning"`
	CurrentPage int  `json:"currentPage"`
	MaxPages    int  `json:"maxPages"`
}

// StopReason says why automation stopped. Every reason produces the same
// automationStopped event; the reason is there for logs and telemetry.
type StopReason string

const (
	StopRequested         StopReason = "requested"
	StopCompleted         StopReason = "completed"
	StopNavigationMissing StopReason = "navigation_missing"
	StopFailed            StopReason = "failed"
	StopShutdown          StopReason = "shutdown"
)

// Event is a message pushed from the page context.
type Event struct {
	Action Action     `json:"action"`
	Count  *int       `json:"count,omitempty"`
	Reason StopReason `json:"reason,omitempty"`
}

func StartedEvent() Event { return Event{Action: ActionAutomationStarted} }

func StoppedEvent(reason StopReason) Event {
	return Event{Action: ActionAutomationStopped, Reason: reason}
}

func JobCountEvent(count int) Event {
	return Event{Action: ActionUpdateJobCount, Count: &count}
}

// Notifier receives pushed events. Implementations must not block for long:
// they are called from the automation loop.
type Notifier interface {
	Notify(ev Event)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(ev Event)

func (f NotifierFunc) Notify(ev Event) { f(ev) }

// PageInfo describes the page the extractor is attached to.
type PageInfo struct {
	URL        string `json:"url"`
	IsJobsPage bool   `json:"isJobsPage"`
}
