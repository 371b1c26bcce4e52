package gateway

import (
	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"github.com/spec-kit/ticket-bot/internal/domain"
	"github.com/spec-kit/ticket-bot/internal/service"
	"github.com/spec-kit/ticket-bot/pkg/util"
)

// Custom ids for the intake panel and modals.
const (
	buttonCreateShopTicket    = "create-shop-ticket"
	buttonCreateSupportTicket = "create-support-ticket"
	modalShopTicket           = "shop-ticket-modal"
	modalSupportTicket        = "support-ticket-modal"
)

func (g *Gateway) onInteractionCreate(s *discordgo.Session, i *discordgo.InteractionCreate) {
	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		g.handleSlashCommand(s, i)
	case discordgo.InteractionMessageComponent:
		g.handleComponent(s, i)
	case discordgo.InteractionModalSubmit:
		g.handleModalSubmit(s, i)
	}
}

func (g *Gateway) handleSlashCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if !g.hasSupportRole(i.Member) {
		g.respondEphemeral(s, i, "Only the support team can use this.")
		return
	}
	switch i.ApplicationCommandData().Name {
	case "close":
		// the slash command bypasses the confirmation round-trip
		if err := g.closer.ConfirmClose(contextForEvent(), i.ChannelID, interactionUserID(i)); err != nil {
			g.respondEphemeral(s, i, util.UserMessage(err))
			return
		}
		g.respondEphemeral(s, i, "Closing ticket.")
	case "sendpanel":
		g.respondEphemeral(s, i, "Panel sent!")
		g.sendPanel(s, i.ChannelID)
	}
}

func (g *Gateway) handleComponent(s *discordgo.Session, i *discordgo.InteractionCreate) {
	switch i.MessageComponentData().CustomID {
	case buttonCreateShopTicket:
		g.showShopModal(s, i)
	case buttonCreateSupportTicket:
		g.showSupportModal(s, i)
	case service.ActionConfirmClose:
		if err := g.closer.ConfirmClose(contextForEvent(), i.ChannelID, interactionUserID(i)); err != nil {
			g.respondEphemeral(s, i, util.UserMessage(err))
			return
		}
		g.respondEphemeral(s, i, "Closing ticket.")
	case service.ActionCancelClose:
		if err := g.closer.CancelClose(contextForEvent(), i.ChannelID); err != nil {
			g.respondEphemeral(s, i, util.UserMessage(err))
			return
		}
		g.respondEphemeral(s, i, "Ticket closure cancelled.")
	}
}

func (g *Gateway) handleModalSubmit(s *discordgo.Session, i *discordgo.InteractionCreate) {
	data := i.ModalSubmitData()
	intake := service.TicketIntake{
		GuildID:       i.GuildID,
		OwnerID:       interactionUserID(i),
		OwnerUsername: interactionUsername(i),
	}
	switch data.CustomID {
	case modalShopTicket:
		intake.RequestType = domain.RequestTypePurchase
		intake.Product = modalValue(data, "product")
		intake.Payment = modalValue(data, "payment")
		intake.Details = modalValue(data, "details")
	case modalSupportTicket:
		intake.RequestType = domain.RequestTypeSupport
		intake.Concern = modalValue(data, "concern")
	default:
		return
	}

	ticket, err := g.factory.OpenTicket(contextForEvent(), intake)
	if err != nil {
		g.logger.Warn("ticket intake failed",
			zap.String("user_id", intake.OwnerID), zap.Error(err))
		g.respondEphemeral(s, i, util.UserMessage(err))
		return
	}
	g.respondEphemeral(s, i, "Ticket created: <#"+ticket.ChannelID+">")
}

func (g *Gateway) sendPanel(s *discordgo.Session, channelID string) {
	_, err := s.ChannelMessageSendComplex(channelID, &discordgo.MessageSend{
		Content: "**Shop & Support Tickets**\n> Click below to open a ticket.",
		Components: []discordgo.MessageComponent{
			discordgo.ActionsRow{Components: []discordgo.MessageComponent{
				discordgo.Button{CustomID: buttonCreateShopTicket, Label: "Purchase", Style: discordgo.PrimaryButton},
				discordgo.Button{CustomID: buttonCreateSupportTicket, Label: "Support", Style: discordgo.SecondaryButton},
			}},
		},
	})
	if err != nil {
		g.logger.Warn("panel send failed", zap.String("channel_id", channelID), zap.Error(err))
	}
}

func (g *Gateway) showShopModal(s *discordgo.Session, i *discordgo.InteractionCreate) {
	g.respondModal(s, i, modalShopTicket, "Shop Ticket", []discordgo.MessageComponent{
		textInputRow("product", "Product Name", discordgo.TextInputShort, true),
		textInputRow("payment", "Payment Method", discordgo.TextInputShort, true),
		textInputRow("details", "Description", discordgo.TextInputParagraph, false),
	})
}

func (g *Gateway) showSupportModal(s *discordgo.Session, i *discordgo.InteractionCreate) {
	g.respondModal(s, i, modalSupportTicket, "Support Ticket", []discordgo.MessageComponent{
		textInputRow("concern", "What is your concern?", discordgo.TextInputParagraph, true),
	})
}

func (g *Gateway) respondModal(s *discordgo.Session, i *discordgo.InteractionCreate, customID, title string, components []discordgo.MessageComponent) {
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseModal,
		Data: &discordgo.InteractionResponseData{
			CustomID:   customID,
			Title:      title,
			Components: components,
		},
	})
	if err != nil {
		g.logger.Warn("modal respond failed", zap.Error(err))
	}
}

func (g *Gateway) respondEphemeral(s *discordgo.Session, i *discordgo.InteractionCreate, content string) {
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: content,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	})
	if err != nil {
		g.logger.Warn("interaction respond failed", zap.Error(err))
	}
}

func textInputRow(customID, label string, style discordgo.TextInputStyle, required bool) discordgo.MessageComponent {
	return discordgo.ActionsRow{Components: []discordgo.MessageComponent{
		discordgo.TextInput{
			CustomID: customID,
			Label:    label,
			Style:    style,
			Required: required,
		},
	}}
}

func modalValue(data discordgo.ModalSubmitInteractionData, customID string) string {
	for _, component := range data.Components {
		row, ok := component.(*discordgo.ActionsRow)
		if !ok {
			continue
		}
		for _, inner := range row.Components {
			input, ok := inner.(*discordgo.TextInput)
			if !ok {
				continue
			}
			if input.CustomID == customID {
				return input.Value
			}
		}
	}
	return ""
}

func interactionUserID(i *discordgo.InteractionCreate) string {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User.ID
	}
	if i.User != nil {
		return i.User.ID
	}
	return ""
}

func interactionUsername(i *discordgo.InteractionCreate) string {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User.Username
	}
	if i.User != nil {
		return i.User.Username
	}
	return ""
}
