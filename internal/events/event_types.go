package events

import (
	"time"

	"github.com/spec-kit/ticket-bot/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketOpened         EventType = "ticket_opened"
	EventTicketCloseRequested EventType = "ticket_close_requested"
	EventTicketClosed         EventType = "ticket_closed"
	EventTicketCompleted      EventType = "ticket_completed"
)

// Event represents a lifecycle event emitted by the ticket workflows.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	ChannelID string      `json:"channel_id"`
	ActorID   string      `json:"actor_id"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// TicketOpenedPayload payload.
type TicketOpenedPayload struct {
	RequestType domain.RequestType `json:"request_type"`
	OwnerID     string             `json:"owner_id"`
	CategoryID  string             `json:"category_id"`
	DisplayKey  string             `json:"display_key"`
}

// TicketCloseRequestedPayload payload.
type TicketCloseRequestedPayload struct {
	Confirmed bool `json:"confirmed"`
}

// TicketClosedPayload payload.
type TicketClosedPayload struct {
	OwnerID      string `json:"owner_id"`
	MessageCount int    `json:"message_count"`
}

// TicketCompletedPayload payload.
type TicketCompletedPayload struct {
	OwnerID     string `json:"owner_id"`
	RoleGranted bool   `json:"role_granted"`
}
