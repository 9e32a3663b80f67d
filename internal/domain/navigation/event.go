package navigation

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// EventType identifies a navigation event on the host event stream.
type EventType string

const (
	EventStarted           EventType = "Started"
	EventStopped           EventType = "Stopped"
	EventPaused            EventType = "Paused"
	EventResumed           EventType = "Resumed"
	EventProgressUpdated   EventType = "ProgressUpdated"
	EventVoiceInstruction  EventType = "VoiceInstruction"
	EventBannerInstruction EventType = "BannerInstruction"
)

// Event is an ephemeral lifecycle or progress notification.
// Sequence is assigned by the emitting session and increases by one per event.
type Event struct {
	Type      EventType
	SessionID uuid.UUID
	Sequence  uint64
	Timestamp time.Time
	Data      any
}

// InstructionData is the payload of voice and banner instruction events.
type InstructionData struct {
	Text      string `json:"text"`
	LegIndex  int    `json:"legIndex"`
	StepIndex int    `json:"stepIndex"`
}

// RouteSummary is the payload of the Started event.
type RouteSummary struct {
	Distance  float64     `json:"distance"`
	Duration  float64     `json:"duration"`
	Waypoints [][]float64 `json:"waypoints"`
}

// StoppedData is the payload of the Stopped event.
type StoppedData struct {
	WasActive bool              `json:"wasActive"`
	Progress  *ProgressSnapshot `json:"progress,omitempty"`
}

// SummarizeRoute builds the Started payload for r.
func SummarizeRoute(r Route) RouteSummary {
	wps := r.Waypoints()
	pairs := make([][]float64, len(wps))
	for i, w := range wps {
		pairs[i] = w.Pair()
	}
	return RouteSummary{Distance: r.Distance(), Duration: r.Duration(), Waypoints: pairs}
}

type eventJSON struct {
	Type      EventType `json:"type"`
	Timestamp int64     `json:"timestamp"`
	SessionID string    `json:"sessionId"`
	Sequence  uint64    `json:"sequence"`
	Data      any       `json:"data,omitempty"`
}

// MarshalJSON renders the host wire form with a millisecond epoch timestamp.
func (e Event) MarshalJSON() ([]byte, error) {
	return json.Marshal(eventJSON{
		Type:      e.Type,
		Timestamp: e.Timestamp.UnixMilli(),
		SessionID: e.SessionID.String(),
		Sequence:  e.Sequence,
		Data:      e.Data,
	})
}
