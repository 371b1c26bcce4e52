package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/ticket-bot/internal/config"
	"github.com/spec-kit/ticket-bot/internal/events"
	"github.com/spec-kit/ticket-bot/internal/platform"
	"github.com/spec-kit/ticket-bot/internal/repository"
	"github.com/spec-kit/ticket-bot/pkg/util"
)

const (
	donePrefix            = "done-"
	platformChannelMaxLen = 100
)

// CompletionMarker tags a ticket as done without closing it: customer role
// for the owner, a done- channel rename and a completion notice. State and
// channel are left intact.
type CompletionMarker struct {
	tickets    repository.TicketRepository
	platform   platform.Client
	dispatcher events.Dispatcher
	logger     *zap.Logger
	cfg        config.DiscordConfig
}

// NewCompletionMarker constructs the marker.
func NewCompletionMarker(tickets repository.TicketRepository, client platform.Client, dispatcher events.Dispatcher, logger *zap.Logger, cfg config.DiscordConfig) *CompletionMarker {
	return &CompletionMarker{
		tickets:    tickets,
		platform:   client,
		dispatcher: dispatcher,
		logger:     logger,
		cfg:        cfg,
	}
}

// MarkDone applies the completion marker. The role grant and rename are
// best-effort; invoking it twice re-applies them harmlessly.
func (m *CompletionMarker) MarkDone(ctx context.Context, channelID string) error {
	ticket, err := m.tickets.GetByChannelID(ctx, channelID)
	if err != nil {
		if errors.Is(err, repository.ErrTicketNotFound) {
			return util.NewNotATicket(channelID)
		}
		return err
	}

	roleGranted := false
	if m.cfg.CustomerRoleID != "" {
		if err := m.platform.GrantRole(ctx, ticket.GuildID, ticket.OwnerID, m.cfg.CustomerRoleID); err != nil {
			m.logger.Warn("customer role grant failed",
				zap.String("channel_id", channelID),
				zap.String("owner_id", ticket.OwnerID),
				zap.Error(util.NewDeliveryFailure("role grant", err)))
		} else {
			roleGranted = true
		}
	}

	if info, infoErr := m.platform.Channel(ctx, channelID); infoErr != nil {
		m.logger.Warn("channel lookup failed, skipping rename",
			zap.String("channel_id", channelID), zap.Error(infoErr))
	} else if !strings.HasPrefix(info.Name, donePrefix) {
		if err := m.platform.RenameChannel(ctx, channelID, DoneChannelName(info.Name)); err != nil {
			m.logger.Warn("done rename failed",
				zap.String("channel_id", channelID),
				zap.Error(util.NewDeliveryFailure("rename", err)))
		}
	}

	notice := fmt.Sprintf("Thanks for the deal <@%s>!\nTicket marked as **done**.", ticket.OwnerID)
	if err := m.platform.SendMessage(ctx, channelID, platform.Outbound{Content: notice}); err != nil {
		m.logger.Warn("completion notice send failed",
			zap.String("channel_id", channelID), zap.Error(err))
	}

	m.publishEvent(ctx, events.Event{
		Type:      events.EventTicketCompleted,
		ChannelID: channelID,
		ActorID:   ticket.OwnerID,
		Payload: events.TicketCompletedPayload{
			OwnerID:     ticket.OwnerID,
			RoleGranted: roleGranted,
		},
	})
	return nil
}

// DoneChannelName prefixes a channel name with done- and truncates to the
// platform limit.
func DoneChannelName(current string) string {
	renamed := donePrefix + current
	if len(renamed) > platformChannelMaxLen {
		renamed = renamed[:platformChannelMaxLen]
	}
	return renamed
}

func (m *CompletionMarker) publishEvent(ctx context.Context, event events.Event) {
	if m.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = m.dispatcher.Publish(ctx, event)
}
