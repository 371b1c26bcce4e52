package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/ticket-bot/internal/config"
	"github.com/spec-kit/ticket-bot/internal/domain"
	"github.com/spec-kit/ticket-bot/internal/events"
	"github.com/spec-kit/ticket-bot/internal/platform"
	"github.com/spec-kit/ticket-bot/internal/repository"
	"github.com/spec-kit/ticket-bot/internal/worker"
	"github.com/spec-kit/ticket-bot/pkg/util"
)

// ClosureCoordinator owns the confirm → finalize transition of a ticket.
// All state changes on one ticket run under that ticket's lock, so at most
// one transition is in flight per ticket at any time.
type ClosureCoordinator struct {
	tickets     repository.TicketRepository
	transcripts *TranscriptBuilder
	archives    *ArchiveDispatcher
	scheduler   *worker.DeletionScheduler
	platform    platform.Client
	dispatcher  events.Dispatcher
	logger      *zap.Logger
	cfg         config.DiscordConfig
	locks       *ticketLocks
	deleteDelay time.Duration
}

// ClosureDependencies bundles collaborators for the coordinator.
type ClosureDependencies struct {
	TicketRepo  repository.TicketRepository
	Transcripts *TranscriptBuilder
	Archives    *ArchiveDispatcher
	Scheduler   *worker.DeletionScheduler
	Platform    platform.Client
	Dispatcher  events.Dispatcher
	Logger      *zap.Logger
	Discord     config.DiscordConfig
}

// NewClosureCoordinator constructs the coordinator.
func NewClosureCoordinator(deps ClosureDependencies) *ClosureCoordinator {
	return &ClosureCoordinator{
		tickets:     deps.TicketRepo,
		transcripts: deps.Transcripts,
		archives:    deps.Archives,
		scheduler:   deps.Scheduler,
		platform:    deps.Platform,
		dispatcher:  deps.Dispatcher,
		logger:      deps.Logger,
		cfg:         deps.Discord,
		locks:       newTicketLocks(),
		deleteDelay: deps.Discord.DeleteDelay(),
	}
}

// RequestClose handles a bare close request: the ticket moves to
// PENDING_CLOSE_CONFIRMATION and a confirm/cancel prompt is posted. A
// second request while a prompt is outstanding is a no-op.
func (c *ClosureCoordinator) RequestClose(ctx context.Context, channelID, requestedBy string) error {
	release := c.locks.acquire(channelID)
	defer release()

	ticket, err := c.getTicket(ctx, channelID)
	if err != nil {
		return err
	}

	switch ticket.State {
	case domain.TicketStatePendingCloseConfirmation:
		// a prompt is already outstanding; never post a second one
		return nil
	case domain.TicketStateClosing, domain.TicketStateClosed:
		return util.NewConflict("ticket is already closing")
	}

	if err := c.tickets.UpdateState(ctx, channelID, domain.TicketStatePendingCloseConfirmation); err != nil {
		return err
	}

	prompt := platform.Outbound{
		Content: "Confirm ticket closure?",
		Actions: []platform.Action{
			{ID: ActionConfirmClose, Label: "Yes, Close", Style: platform.ActionDanger},
			{ID: ActionCancelClose, Label: "Cancel", Style: platform.ActionSecondary},
		},
	}
	if err := c.platform.SendMessage(ctx, channelID, prompt); err != nil {
		// without a visible prompt nobody can confirm; back out
		if revertErr := c.tickets.UpdateState(ctx, channelID, domain.TicketStateOpen); revertErr != nil {
			c.logger.Error("state revert failed after prompt send",
				zap.String("channel_id", channelID), zap.Error(revertErr))
		}
		return util.NewPrerequisiteFetchError("confirmation prompt", err)
	}

	c.publishEvent(ctx, events.Event{
		Type:      events.EventTicketCloseRequested,
		ChannelID: channelID,
		ActorID:   requestedBy,
		Payload:   events.TicketCloseRequestedPayload{Confirmed: false},
	})
	return nil
}

// CancelClose withdraws an outstanding confirmation prompt and reopens the
// ticket. Anything other than a pending confirmation is a no-op.
func (c *ClosureCoordinator) CancelClose(ctx context.Context, channelID string) error {
	release := c.locks.acquire(channelID)
	defer release()

	ticket, err := c.getTicket(ctx, channelID)
	if err != nil {
		return err
	}
	if ticket.State != domain.TicketStatePendingCloseConfirmation {
		return nil
	}
	return c.tickets.UpdateState(ctx, channelID, domain.TicketStateOpen)
}

// ConfirmClose runs finalization. It accepts both the explicit confirm
// action and a direct close that bypasses confirmation, so OPEN and
// PENDING_CLOSE_CONFIRMATION are both valid entry states.
func (c *ClosureCoordinator) ConfirmClose(ctx context.Context, channelID, closedBy string) error {
	release := c.locks.acquire(channelID)
	defer release()

	ticket, err := c.getTicket(ctx, channelID)
	if err != nil {
		return err
	}
	switch ticket.State {
	case domain.TicketStateClosing, domain.TicketStateClosed:
		return util.NewConflict("ticket is already closing")
	}

	if err := c.tickets.UpdateState(ctx, channelID, domain.TicketStateClosing); err != nil {
		return err
	}

	if err := c.finalize(ctx, ticket, closedBy); err != nil {
		if revertErr := c.tickets.UpdateState(ctx, channelID, domain.TicketStateOpen); revertErr != nil {
			c.logger.Error("state revert failed after finalization abort",
				zap.String("channel_id", channelID), zap.Error(revertErr))
		}
		return err
	}
	return nil
}

// finalize retrieves the history, renders and fans out the transcript,
// posts the deletion notice and schedules teardown. Only the history fetch
// is prerequisite; everything after it is best-effort.
func (c *ClosureCoordinator) finalize(ctx context.Context, ticket *domain.Ticket, closedBy string) error {
	history, err := c.transcripts.FetchHistory(ctx, ticket.ChannelID)
	if err != nil {
		return err
	}

	channelName := "ticket"
	if info, infoErr := c.platform.Channel(ctx, ticket.ChannelID); infoErr == nil {
		channelName = info.Name
	} else {
		c.logger.Warn("channel lookup failed, using placeholder name",
			zap.String("channel_id", ticket.ChannelID), zap.Error(infoErr))
	}

	record := domain.TranscriptRecord{
		ChannelID:   ticket.ChannelID,
		ChannelName: channelName,
		Messages:    history,
	}
	document := c.transcripts.Render(record)

	targets := []domain.ArchiveTarget{
		{Kind: domain.ArchiveTargetOwnerDM, RecipientID: ticket.OwnerID},
		{Kind: domain.ArchiveTargetOriginChannel, RecipientID: ticket.ChannelID},
	}
	if c.cfg.ArchiveChannelID != "" {
		targets = append(targets, domain.ArchiveTarget{
			Kind:        domain.ArchiveTargetArchiveChannel,
			RecipientID: c.cfg.ArchiveChannelID,
		})
	}

	summary := closureSummary(channelName, closedBy)
	c.archives.Deliver(ctx, targets, summary, TranscriptFileName(channelName), document)

	notice := fmt.Sprintf("Ticket will be deleted in %d seconds.", int(c.deleteDelay.Seconds()))
	if err := c.platform.SendMessage(ctx, ticket.ChannelID, platform.Outbound{Content: notice}); err != nil {
		c.logger.Warn("deletion notice send failed",
			zap.String("channel_id", ticket.ChannelID), zap.Error(err))
	}

	channelID := ticket.ChannelID
	c.scheduler.Schedule(channelID, c.deleteDelay, func() {
		c.teardown(channelID)
	})

	c.publishEvent(ctx, events.Event{
		Type:      events.EventTicketClosed,
		ChannelID: ticket.ChannelID,
		ActorID:   closedBy,
		Payload: events.TicketClosedPayload{
			OwnerID:      ticket.OwnerID,
			MessageCount: len(history),
		},
	})
	return nil
}

// teardown issues the channel delete. The ticket is CLOSED once the call is
// issued; a delete failure is logged, not retried.
func (c *ClosureCoordinator) teardown(channelID string) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := c.tickets.UpdateState(ctx, channelID, domain.TicketStateClosed); err != nil {
		c.logger.Warn("closed state update failed",
			zap.String("channel_id", channelID), zap.Error(err))
	}
	if err := c.platform.DeleteChannel(ctx, channelID); err != nil {
		c.logger.Warn("channel delete failed",
			zap.String("channel_id", channelID), zap.Error(err))
	}
	if err := c.tickets.Delete(ctx, channelID); err != nil {
		c.logger.Warn("ticket record delete failed",
			zap.String("channel_id", channelID), zap.Error(err))
	}
	c.locks.forget(channelID)
}

func (c *ClosureCoordinator) getTicket(ctx context.Context, channelID string) (*domain.Ticket, error) {
	ticket, err := c.tickets.GetByChannelID(ctx, channelID)
	if err != nil {
		if errors.Is(err, repository.ErrTicketNotFound) {
			return nil, util.NewNotATicket(channelID)
		}
		return nil, err
	}
	return ticket, nil
}

func closureSummary(channelName, closedBy string) string {
	return fmt.Sprintf(
		"Your ticket has been closed, and the transcript has been archived.\nChannel: #%s\nClosed By: <@%s>",
		channelName, closedBy)
}

func (c *ClosureCoordinator) publishEvent(ctx context.Context, event events.Event) {
	if c.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = c.dispatcher.Publish(ctx, event)
}
