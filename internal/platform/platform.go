package platform

import (
	"context"
	"io"

	"github.com/spec-kit/ticket-bot/internal/domain"
)

// ActionStyle selects the rendering of a message action button.
type ActionStyle string

const (
	ActionPrimary   ActionStyle = "primary"
	ActionSecondary ActionStyle = "secondary"
	ActionDanger    ActionStyle = "danger"
)

// Action is an interactive affordance attached to an outbound message. The
// ID comes back in the interaction event when a user activates it.
type Action struct {
	ID    string
	Label string
	Style ActionStyle
}

// File is an attachment uploaded alongside a message.
type File struct {
	Name        string
	ContentType string
	Reader      io.Reader
}

// Outbound is a message the bot sends to a channel or user.
type Outbound struct {
	Content string
	Files   []File
	Actions []Action
}

// Client is the messaging-platform surface the ticket workflows consume.
// Every call is a potential suspension point and is never retried here.
type Client interface {
	// CreateChannel provisions a text channel under a category with the
	// given permission grants and returns its id.
	CreateChannel(ctx context.Context, guildID, name, categoryID string, grants []domain.PermissionGrant) (string, error)
	DeleteChannel(ctx context.Context, channelID string) error
	RenameChannel(ctx context.Context, channelID, name string) error
	Channel(ctx context.Context, channelID string) (*domain.ChannelInfo, error)

	// EditMemberGrant applies a single grant to an existing channel.
	EditMemberGrant(ctx context.Context, channelID string, grant domain.PermissionGrant) error

	SendMessage(ctx context.Context, channelID string, out Outbound) error
	SendDirectMessage(ctx context.Context, userID string, out Outbound) error

	// FetchMessagePage returns up to limit messages strictly older than
	// beforeID (all newest messages when beforeID is empty), newest first.
	// An empty page signals exhaustion.
	FetchMessagePage(ctx context.Context, channelID string, limit int, beforeID string) ([]domain.Message, error)

	GrantRole(ctx context.Context, guildID, userID, roleID string) error
}
