package events

import (
	"time"

	"github.com/vsinha/acompreq/pkg/domain/entities"
)

// Event is a fact recorded while tracking requisitions or delivering digests.
// Pipeline events are streamed per run; delivery events per administrator.
type Event interface {
	Type() string
	StreamID() string
	RunID() string
	Administrator() entities.AdministratorName
	Data() any
	Timestamp() time.Time
	Version() int
}

type EventHandler interface {
	Handle(event Event) error
	CanHandle(eventType string) bool
}

type EventStore interface {
	AppendEvent(streamID string, event Event) error
	ReadEvents(streamID string, fromVersion int) ([]Event, error)
	ReadAllEvents(fromPosition int) ([]Event, error)
	Subscribe(eventTypes []string, handler EventHandler) error
	Unsubscribe(handler EventHandler) error
}

// Record is the stored form of an event. Version is its 1-based position in the stream.
type Record struct {
	Kind     string                     `json:"type"`
	Stream   string                     `json:"stream_id"`
	Run      string                     `json:"run_id,omitempty"`
	Admin    entities.AdministratorName `json:"administrator,omitempty"`
	Payload  any                        `json:"data"`
	At       time.Time                  `json:"timestamp"`
	Position int                        `json:"version"`
}

func (r Record) Type() string {
	return r.Kind
}

func (r Record) StreamID() string {
	return r.Stream
}

func (r Record) RunID() string {
	return r.Run
}

func (r Record) Administrator() entities.AdministratorName {
	return r.Admin
}

func (r Record) Data() any {
	return r.Payload
}

func (r Record) Timestamp() time.Time {
	return r.At
}

func (r Record) Version() int {
	return r.Position
}

// recordAt copies an event into the stream at the given position
func recordAt(event Event, streamID string, position int) Record {
	return Record{
		Kind:     event.Type(),
		Stream:   streamID,
		Run:      event.RunID(),
		Admin:    event.Administrator(),
		Payload:  event.Data(),
		At:       event.Timestamp(),
		Position: position,
	}
}

func newRunEvent(eventType, runID string, administrator entities.AdministratorName, data any) Event {
	return Record{Kind: eventType, Stream: runID, Run: runID, Admin: administrator, Payload: data, At: time.Now()}
}

func newDeliveryEvent(eventType, runID string, administrator entities.AdministratorName, data any) Event {
	return Record{Kind: eventType, Stream: string(administrator), Run: runID, Admin: administrator, Payload: data, At: time.Now()}
}
