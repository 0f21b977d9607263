package crawler

// Stage describes what the executor is doing when a progress event fires.
type Stage string

const (
	StageStarting Stage = "starting"
	StageCrawling Stage = "crawling"
	StagePausing  Stage = "pausing"
	StagePaused   Stage = "paused"
	StageResumed  Stage = "resumed"
	StageStopping Stage = "stopping"
)

// EventKind doubles as the SSE event name on the wire.
type EventKind string

const (
	EventProgress  EventKind = "crawling-progress"
	EventCompleted EventKind = "crawling-completed"
	EventFailed    EventKind = "crawling-failed"
)

// Event is one item on the controller's outbound stream. Progress events for
// a session carry non-decreasing Current values; completed/failed are emitted
// exactly once per session. Consumers must drop events whose SessionID does
// not match the session they are tracking.
//
// CoveredThrough is the highest literal page fetched without any earlier
// failure in the run; coverage accounting uses it instead of the raw page
// counter so a failed page is never recorded as covered.
type Event struct {
	Kind               EventKind `json:"-"`
	SessionID          string    `json:"session_id"`
	Stage              Stage     `json:"stage,omitempty"`
	Current            uint      `json:"current"`
	Total              uint      `json:"total"`
	NewItems           uint      `json:"new_items"`
	ErrorCount         uint      `json:"error_count"`
	CoveredThrough     uint      `json:"covered_through"`
	ProgressPercentage float64   `json:"progress_percentage"`
	CurrentMessage     string    `json:"current_message"`
}
