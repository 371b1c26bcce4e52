package gateway

import (
	"time"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"github.com/spec-kit/ticket-bot/internal/config"
	"github.com/spec-kit/ticket-bot/internal/platform"
	"github.com/spec-kit/ticket-bot/internal/repository"
	"github.com/spec-kit/ticket-bot/internal/service"
)

// Gateway connects the Discord event stream to the ticket workflows. Each
// inbound event is handled as an independent unit of work on the handler
// goroutine discordgo schedules; per-ticket serialization lives in the
// services, not here.
type Gateway struct {
	session *discordgo.Session
	logger  *zap.Logger
	cfg     config.DiscordConfig

	factory       *service.TicketFactory
	closer        *service.ClosureCoordinator
	completion    *service.CompletionMarker
	autoresponses *service.AutoResponseService
	tickets       repository.TicketRepository
	addresses     repository.AddressRepository
	warnings      repository.WarningRepository
	snipes        *repository.SnipeStore
	platform      platform.Client
}

// Dependencies bundles collaborators for the gateway.
type Dependencies struct {
	Discord       config.DiscordConfig
	Logger        *zap.Logger
	Factory       *service.TicketFactory
	Closer        *service.ClosureCoordinator
	Completion    *service.CompletionMarker
	AutoResponses *service.AutoResponseService
	TicketRepo    repository.TicketRepository
	AddressRepo   repository.AddressRepository
	WarningRepo   repository.WarningRepository
	SnipeStore    *repository.SnipeStore
	Platform      platform.Client
}

// New builds the session and registers all handlers. The connection is not
// opened until Open is called.
func New(session *discordgo.Session, deps Dependencies) *Gateway {
	session.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMessages |
		discordgo.IntentMessageContent |
		discordgo.IntentsGuildMembers |
		discordgo.IntentsDirectMessages
	// keep recent messages in state so deleted ones can be sniped
	session.State.MaxMessageCount = 200

	g := &Gateway{
		session:       session,
		logger:        deps.Logger,
		cfg:           deps.Discord,
		factory:       deps.Factory,
		closer:        deps.Closer,
		completion:    deps.Completion,
		autoresponses: deps.AutoResponses,
		tickets:       deps.TicketRepo,
		addresses:     deps.AddressRepo,
		warnings:      deps.WarningRepo,
		snipes:        deps.SnipeStore,
		platform:      deps.Platform,
	}

	session.AddHandler(g.onReady)
	session.AddHandler(g.onMessageCreate)
	session.AddHandler(g.onMessageDelete)
	session.AddHandler(g.onInteractionCreate)
	return g
}

// Open connects to the gateway.
func (g *Gateway) Open() error {
	return g.session.Open()
}

// Close disconnects from the gateway.
func (g *Gateway) Close() error {
	return g.session.Close()
}

func (g *Gateway) onReady(s *discordgo.Session, _ *discordgo.Ready) {
	g.logger.Info("gateway ready", zap.String("user", s.State.User.Username))

	commands := []*discordgo.ApplicationCommand{
		{Name: "sendpanel", Description: "Send the main ticket panel"},
		{Name: "close", Description: "Close the current ticket"},
	}
	if _, err := s.ApplicationCommandBulkOverwrite(s.State.User.ID, g.cfg.GuildID, commands); err != nil {
		g.logger.Error("slash command registration failed", zap.Error(err))
		return
	}
	g.logger.Info("slash commands registered", zap.Int("count", len(commands)))
}

func (g *Gateway) hasSupportRole(member *discordgo.Member) bool {
	if member == nil || g.cfg.SupportRoleID == "" {
		return false
	}
	for _, role := range member.Roles {
		if role == g.cfg.SupportRoleID {
			return true
		}
	}
	return false
}

func (g *Gateway) onMessageDelete(s *discordgo.Session, m *discordgo.MessageDelete) {
	if g.snipes == nil || m.BeforeDelete == nil {
		return
	}
	deleted := m.BeforeDelete
	if deleted.Author == nil || deleted.Author.Bot {
		return
	}
	if deleted.Content == "" && len(deleted.Attachments) == 0 {
		return
	}

	sniped := repository.SnipedMessage{
		Content:   deleted.Content,
		AuthorTag: deleted.Author.Username,
		DeletedAt: time.Now(),
	}
	if len(deleted.Attachments) > 0 {
		sniped.AttachmentURL = deleted.Attachments[0].URL
	}
	if err := g.snipes.Set(contextForEvent(), m.ChannelID, sniped); err != nil {
		g.logger.Warn("snipe store write failed", zap.Error(err))
	}
}
