package events

import "time"

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated  EventType = "ticket_created"
	EventTicketUpdated  EventType = "ticket_updated"
	EventTicketResolved EventType = "ticket_resolved"
	EventTicketReopened EventType = "ticket_reopened"
	EventTicketDeleted  EventType = "ticket_deleted"

	// EventLabelsChanged fires when a priority or category is created, renamed or removed.
	EventLabelsChanged EventType = "labels_changed"
)

// TicketEventTypes lists every ticket lifecycle event.
var TicketEventTypes = []EventType{
	EventTicketCreated,
	EventTicketUpdated,
	EventTicketResolved,
	EventTicketReopened,
	EventTicketDeleted,
}

// Event represents a domain event emitted by services.
type Event struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	TicketID  int64     `json:"ticket_id"`
	ActorID   *int64    `json:"actor_id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	Payload   any       `json:"payload,omitempty"`
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	Title      string `json:"title"`
	PriorityID int64  `json:"priority_id"`
}

// LabelChangedPayload accompanies EventLabelsChanged.
type LabelChangedPayload struct {
	Kind    string `json:"kind"`
	LabelID int64  `json:"label_id"`
	Action  string `json:"action"`
}

// TicketResolutionPayload accompanies resolve and reopen events.
type TicketResolutionPayload struct {
	Resolved bool `json:"resolved"`
}
