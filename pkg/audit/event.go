package audit

import (
	"fmt"
	"maps"
	"time"
)

// Result is the outcome of an audited action.
type Result string

const (
	ResultSuccess  Result = "success"
	ResultRejected Result = "rejected"
	ResultFailure  Result = "failure"
)

// Event is a single audit record.
type Event struct {
	ID         string         `json:"id" bson:"_id"`
	Action     string         `json:"action" bson:"action"`
	Resource   string         `json:"resource,omitempty" bson:"resource,omitempty"`
	ResourceID string         `json:"resource_id,omitempty" bson:"resource_id,omitempty"`
	Result     Result         `json:"result" bson:"result"`
	Reason     string         `json:"reason,omitempty" bson:"reason,omitempty"`
	ActorID    string         `json:"actor_id,omitempty" bson:"actor_id,omitempty"`
	ActorRole  string         `json:"actor_role,omitempty" bson:"actor_role,omitempty"`
	RequestID  string         `json:"request_id,omitempty" bson:"request_id,omitempty"`
	IP         string         `json:"ip,omitempty" bson:"ip,omitempty"`
	UserAgent  string         `json:"user_agent,omitempty" bson:"user_agent,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty" bson:"metadata,omitempty"`
	CreatedAt  time.Time      `json:"created_at" bson:"created_at"`
}

// Validate checks the required fields.
func (e Event) Validate() error {
	if e.Action == "" {
		return fmt.Errorf("%w: action is required", ErrEventValidation)
	}
	switch e.Result {
	case ResultSuccess, ResultRejected, ResultFailure:
	default:
		return fmt.Errorf("%w: unknown result %q", ErrEventValidation, e.Result)
	}
	return nil
}

// EventOption customizes an event built by NewEvent.
type EventOption func(*Event)

// NewEvent builds a successful event for action. Identity, timestamp and
// request fields are filled in by the Logger when recorded.
func NewEvent(action string, opts ...EventOption) Event {
	e := Event{Action: action, Result: ResultSuccess}
	for _, opt := range opts {
		opt(&e)
	}
	return e
}

func WithResource(resource, id string) EventOption {
	return func(e *Event) {
		e.Resource = resource
		e.ResourceID = id
	}
}

func WithActor(id, role string) EventOption {
	return func(e *Event) {
		e.ActorID = id
		e.ActorRole = role
	}
}

func WithResult(r Result) EventOption {
	return func(e *Event) { e.Result = r }
}

// WithRejection marks the event as rejected with a machine-readable reason.
func WithRejection(reason string) EventOption {
	return func(e *Event) {
		e.Result = ResultRejected
		e.Reason = reason
	}
}

// WithFailure marks the event as failed and keeps the error text.
func WithFailure(err error) EventOption {
	return func(e *Event) {
		e.Result = ResultFailure
		if err != nil {
			e.Reason = err.Error()
		}
	}
}

func WithIP(ip string) EventOption {
	return func(e *Event) { e.IP = ip }
}

func WithUserAgent(ua string) EventOption {
	return func(e *Event) { e.UserAgent = ua }
}

// WithMetadata merges md into the event metadata.
func WithMetadata(md map[string]any) EventOption {
	return func(e *Event) {
		if len(md) == 0 {
			return
		}
		if e.Metadata == nil {
			e.Metadata = make(map[string]any, len(md))
		}
		maps.Copy(e.Metadata, md)
	}
}

// WithMeta sets a single metadata key.
func WithMeta(key string, value any) EventOption {
	return WithMetadata(map[string]any{key: value})
}
