package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/ticket-bot/internal/config"
	"github.com/spec-kit/ticket-bot/internal/domain"
	"github.com/spec-kit/ticket-bot/internal/events"
	"github.com/spec-kit/ticket-bot/internal/platform"
	"github.com/spec-kit/ticket-bot/internal/repository"
	"github.com/spec-kit/ticket-bot/pkg/util"
)

// Custom ids of the close affordance buttons, shared with the gateway.
const (
	ActionConfirmClose = "confirm-close"
	ActionCancelClose  = "cancel-close"
)

const channelNameMaxLen = 25

// TicketIntake carries the validated-to-be fields of an intake submission.
type TicketIntake struct {
	RequestType   domain.RequestType
	GuildID       string
	OwnerID       string
	OwnerUsername string

	// PURCHASE fields
	Product string
	Payment string
	Details string

	// SUPPORT field
	Concern string
}

// TicketFactory validates intake fields, provisions the ticket channel with
// its permission grants and posts the opening summary.
type TicketFactory struct {
	tickets    repository.TicketRepository
	platform   platform.Client
	dispatcher events.Dispatcher
	logger     *zap.Logger
	cfg        config.DiscordConfig
}

// NewTicketFactory constructs the factory.
func NewTicketFactory(tickets repository.TicketRepository, client platform.Client, dispatcher events.Dispatcher, logger *zap.Logger, cfg config.DiscordConfig) *TicketFactory {
	return &TicketFactory{
		tickets:    tickets,
		platform:   client,
		dispatcher: dispatcher,
		logger:     logger,
		cfg:        cfg,
	}
}

// OpenTicket runs the full intake flow and returns the created ticket.
// Repeated intake from the same requester opens additional independent
// tickets; there is deliberately no duplicate check.
func (f *TicketFactory) OpenTicket(ctx context.Context, intake TicketIntake) (*domain.Ticket, error) {
	if err := validateIntake(intake); err != nil {
		return nil, err
	}

	name := deriveChannelName(intake)
	categoryID := f.cfg.SupportCategoryID
	if intake.RequestType == domain.RequestTypePurchase {
		categoryID = f.cfg.PurchaseCategoryID
	}

	grants := domain.TicketGrants(intake.GuildID, intake.OwnerID, f.cfg.SupportRoleID)
	channelID, err := f.platform.CreateChannel(ctx, intake.GuildID, name, categoryID, grants)
	if err != nil {
		return nil, util.NewPrerequisiteFetchError("create channel", err)
	}

	ticket := &domain.Ticket{
		ChannelID:   channelID,
		GuildID:     intake.GuildID,
		DisplayKey:  generateDisplayKey(intake.RequestType),
		RequestType: intake.RequestType,
		OwnerID:     intake.OwnerID,
		CategoryID:  categoryID,
		State:       domain.TicketStateOpen,
		CreatedAt:   time.Now(),
	}
	if err := f.tickets.Create(ctx, ticket); err != nil {
		// the channel exists but the ticket record does not; tear the
		// channel down rather than leave an untracked one behind
		if delErr := f.platform.DeleteChannel(ctx, channelID); delErr != nil {
			f.logger.Warn("orphan channel cleanup failed",
				zap.String("channel_id", channelID), zap.Error(delErr))
		}
		return nil, err
	}

	if err := f.platform.SendMessage(ctx, channelID, openingMessage(ticket, intake)); err != nil {
		f.logger.Warn("opening summary send failed",
			zap.String("channel_id", channelID),
			zap.Error(util.NewDeliveryFailure("origin channel", err)))
	}

	f.publishEvent(ctx, events.Event{
		Type:      events.EventTicketOpened,
		ChannelID: channelID,
		ActorID:   intake.OwnerID,
		Payload: events.TicketOpenedPayload{
			RequestType: ticket.RequestType,
			OwnerID:     ticket.OwnerID,
			CategoryID:  ticket.CategoryID,
			DisplayKey:  ticket.DisplayKey,
		},
	})
	return ticket, nil
}

func validateIntake(intake TicketIntake) error {
	switch intake.RequestType {
	case domain.RequestTypePurchase:
		if strings.TrimSpace(intake.Product) == "" {
			return util.NewValidationError("product name is required", nil)
		}
		if strings.TrimSpace(intake.Payment) == "" {
			return util.NewValidationError("payment method is required", nil)
		}
	case domain.RequestTypeSupport:
		if strings.TrimSpace(intake.Concern) == "" {
			return util.NewValidationError("concern is required", nil)
		}
	default:
		return util.NewValidationError("unknown request type", map[string]any{"request_type": intake.RequestType})
	}
	return nil
}

func deriveChannelName(intake TicketIntake) string {
	if intake.RequestType == domain.RequestTypePurchase {
		if name := SanitizeChannelName(intake.Product); name != "" {
			return name
		}
		return SanitizeChannelName("shop-" + intake.OwnerUsername)
	}
	return SanitizeChannelName("support-" + intake.OwnerUsername)
}

// SanitizeChannelName lower-cases the input, strips everything outside
// [a-z0-9] and truncates to 25 characters. Deterministic, no collision
// detection: the channel id stays the real identity.
func SanitizeChannelName(input string) string {
	lowered := strings.ToLower(input)
	var b strings.Builder
	for _, r := range lowered {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			if b.Len() == channelNameMaxLen {
				break
			}
		}
	}
	return b.String()
}

// generateDisplayKey produces the human-readable order/ticket id shown in
// the opening summary. Display only, not guaranteed unique.
func generateDisplayKey(requestType domain.RequestType) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:4])
	if requestType == domain.RequestTypePurchase {
		return "#GX" + suffix
	}
	return "#SUP" + suffix
}

func openingMessage(ticket *domain.Ticket, intake TicketIntake) platform.Outbound {
	var b strings.Builder
	if intake.RequestType == domain.RequestTypePurchase {
		fmt.Fprintf(&b, "Hey <@%s>!\n\n", intake.OwnerID)
		fmt.Fprintf(&b, "Product: **%s**\n", strings.TrimSpace(intake.Product))
		fmt.Fprintf(&b, "Payment: **%s**\n", strings.TrimSpace(intake.Payment))
		details := strings.TrimSpace(intake.Details)
		if details == "" {
			details = "No details"
		}
		fmt.Fprintf(&b, "Details: %s\n", details)
		fmt.Fprintf(&b, "Order ID: %s", ticket.DisplayKey)
	} else {
		fmt.Fprintf(&b, "Hey <@%s>!\n", intake.OwnerID)
		fmt.Fprintf(&b, "Concern: **%s**\n", strings.TrimSpace(intake.Concern))
		fmt.Fprintf(&b, "Ticket ID: %s", ticket.DisplayKey)
	}
	return platform.Outbound{
		Content: b.String(),
		Actions: []platform.Action{
			{ID: ActionConfirmClose, Label: "Close Ticket", Style: platform.ActionDanger},
		},
	}
}

func (f *TicketFactory) publishEvent(ctx context.Context, event events.Event) {
	if f.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = f.dispatcher.Publish(ctx, event)
}
