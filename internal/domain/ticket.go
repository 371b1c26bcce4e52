package domain

import "time"

// RequestType distinguishes the two intake flows.
type RequestType string

const (
	RequestTypePurchase RequestType = "PURCHASE"
	RequestTypeSupport  RequestType = "SUPPORT"
)

// TicketState enumerates lifecycle states for tickets.
type TicketState string

const (
	TicketStateOpen                     TicketState = "OPEN"
	TicketStatePendingCloseConfirmation TicketState = "PENDING_CLOSE_CONFIRMATION"
	TicketStateClosing                  TicketState = "CLOSING"
	TicketStateClosed                   TicketState = "CLOSED"
)

// Ticket is the aggregate for a provisioned support-request channel. The
// channel id is its identity; DisplayKey is a formatted human-readable key
// used only in messages and carries no uniqueness guarantee.
type Ticket struct {
	ChannelID   string
	GuildID     string
	DisplayKey  string
	RequestType RequestType
	OwnerID     string
	CategoryID  string
	State       TicketState
	CreatedAt   time.Time
}
