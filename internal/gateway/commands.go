package gateway

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"github.com/spec-kit/ticket-bot/internal/domain"
	"github.com/spec-kit/ticket-bot/internal/repository"
	"github.com/spec-kit/ticket-bot/internal/service"
	"github.com/spec-kit/ticket-bot/pkg/util"
)

// contextForEvent is the root context for work triggered by a gateway
// event. The session's HTTP client bounds individual platform calls.
func contextForEvent() context.Context {
	return context.Background()
}

func (g *Gateway) onMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.Bot || m.GuildID == "" {
		return
	}

	ctx := contextForEvent()

	if reply, ok := g.autoresponses.Match(ctx, m.GuildID, m.Content); ok {
		g.reply(s, m, reply)
		return
	}

	prefix := g.cfg.CommandPrefix
	if !strings.HasPrefix(m.Content, prefix) {
		return
	}
	args := strings.Fields(strings.TrimPrefix(m.Content, prefix))
	if len(args) == 0 {
		return
	}
	command := strings.ToLower(args[0])
	args = args[1:]

	switch command {
	case "close":
		g.requireSupport(s, m, func() {
			if err := g.closer.RequestClose(ctx, m.ChannelID, m.Author.ID); err != nil {
				g.reply(s, m, util.UserMessage(err))
			}
		})
	case "done":
		g.requireSupport(s, m, func() {
			if err := g.completion.MarkDone(ctx, m.ChannelID); err != nil {
				g.reply(s, m, util.UserMessage(err))
			}
		})
	case "add":
		g.requireSupport(s, m, func() { g.handleAddMember(ctx, s, m) })
	case "rename":
		g.requireSupport(s, m, func() { g.handleRename(ctx, s, m, args) })
	case "addaddy":
		g.requireSupport(s, m, func() { g.handleAddAddress(ctx, s, m, args) })
	case "showaddy":
		g.handleShowAddresses(ctx, s, m, args)
	case "upi", "ltc", "usdt":
		g.handleShowAddress(ctx, s, m, domain.PaymentMethod(command))
	case "warn":
		g.requireSupport(s, m, func() { g.handleWarn(ctx, s, m, args) })
	case "warnings":
		g.requireSupport(s, m, func() { g.handleListWarnings(ctx, s, m) })
	case "clearwarnings":
		g.requireSupport(s, m, func() { g.handleClearWarnings(ctx, s, m) })
	case "autoresponse", "autoresponses":
		g.requireSupport(s, m, func() { g.handleAutoResponse(ctx, s, m, args) })
	case "snipe":
		g.handleSnipe(ctx, s, m)
	}
}

func (g *Gateway) requireSupport(s *discordgo.Session, m *discordgo.MessageCreate, fn func()) {
	if !g.hasSupportRole(m.Member) {
		g.reply(s, m, "Only the support team can use this.")
		return
	}
	fn()
}

func (g *Gateway) handleAddMember(ctx context.Context, s *discordgo.Session, m *discordgo.MessageCreate) {
	if len(m.Mentions) == 0 {
		g.reply(s, m, "Mention a user to add.")
		return
	}
	if !g.isTicketChannel(ctx, m.ChannelID) {
		g.reply(s, m, "Use this inside a ticket channel.")
		return
	}
	user := m.Mentions[0]
	if err := g.platform.EditMemberGrant(ctx, m.ChannelID, domain.MemberGrant(user.ID)); err != nil {
		g.logger.Warn("member grant failed", zap.String("channel_id", m.ChannelID), zap.Error(err))
		g.reply(s, m, "Could not add that user.")
		return
	}
	g.reply(s, m, fmt.Sprintf("Added <@%s> to this ticket.", user.ID))
}

func (g *Gateway) handleRename(ctx context.Context, s *discordgo.Session, m *discordgo.MessageCreate, args []string) {
	name := service.SanitizeChannelName(strings.Join(args, " "))
	if name == "" {
		g.reply(s, m, "Provide a valid new name.")
		return
	}
	if !g.isTicketChannel(ctx, m.ChannelID) {
		g.reply(s, m, "Use this inside a ticket channel.")
		return
	}
	if err := g.platform.RenameChannel(ctx, m.ChannelID, name); err != nil {
		g.logger.Warn("rename failed", zap.String("channel_id", m.ChannelID), zap.Error(err))
		g.reply(s, m, "Could not rename the ticket.")
		return
	}
	g.reply(s, m, fmt.Sprintf("Renamed ticket to **%s**", name))
}

func (g *Gateway) handleAddAddress(ctx context.Context, s *discordgo.Session, m *discordgo.MessageCreate, args []string) {
	if len(args) < 3 {
		g.reply(s, m, "Usage: "+g.cfg.CommandPrefix+"addaddy USERID TYPE ADDRESS")
		return
	}
	method := strings.ToLower(args[1])
	if !domain.ValidPaymentMethod(method) {
		g.reply(s, m, "Type must be upi/ltc/usdt.")
		return
	}
	address := &domain.PaymentAddress{
		UserID:  args[0],
		Method:  domain.PaymentMethod(method),
		Address: strings.Join(args[2:], " "),
	}
	if err := g.addresses.Upsert(ctx, address); err != nil {
		g.logger.Warn("address upsert failed", zap.Error(err))
		g.reply(s, m, "Could not save that address.")
		return
	}
	g.reply(s, m, fmt.Sprintf("Saved %s for <@%s>.", strings.ToUpper(method), address.UserID))
}

func (g *Gateway) handleShowAddresses(ctx context.Context, s *discordgo.Session, m *discordgo.MessageCreate, args []string) {
	userID := m.Author.ID
	if len(args) > 0 {
		userID = args[0]
	}
	addresses, err := g.addresses.ListByUser(ctx, userID)
	if err != nil {
		g.logger.Warn("address list failed", zap.Error(err))
		g.reply(s, m, "Could not load addresses.")
		return
	}
	if len(addresses) == 0 {
		g.reply(s, m, "No addresses for that user.")
		return
	}
	var b strings.Builder
	for _, address := range addresses {
		fmt.Fprintf(&b, "**%s**: `%s`\n", strings.ToUpper(string(address.Method)), address.Address)
	}
	g.reply(s, m, b.String())
}

func (g *Gateway) handleShowAddress(ctx context.Context, s *discordgo.Session, m *discordgo.MessageCreate, method domain.PaymentMethod) {
	address, err := g.addresses.Get(ctx, m.Author.ID, method)
	if err != nil {
		g.reply(s, m, "No saved address found.")
		return
	}
	g.reply(s, m, fmt.Sprintf("**%s Address**\n```%s```", strings.ToUpper(string(method)), address.Address))
}

func (g *Gateway) handleWarn(ctx context.Context, s *discordgo.Session, m *discordgo.MessageCreate, args []string) {
	if len(m.Mentions) == 0 {
		g.reply(s, m, "Mention a user to warn.")
		return
	}
	reason := "No reason provided."
	if len(args) > 1 {
		reason = strings.Join(args[1:], " ")
	}
	warning := &domain.Warning{
		GuildID:  m.GuildID,
		UserID:   m.Mentions[0].ID,
		Reason:   reason,
		IssuedBy: m.Author.ID,
	}
	if err := g.warnings.Create(ctx, warning); err != nil {
		g.logger.Warn("warning create failed", zap.Error(err))
		g.reply(s, m, "Could not record the warning.")
		return
	}
	g.reply(s, m, fmt.Sprintf("<@%s> has been warned.", warning.UserID))
}

func (g *Gateway) handleListWarnings(ctx context.Context, s *discordgo.Session, m *discordgo.MessageCreate) {
	userID := m.Author.ID
	if len(m.Mentions) > 0 {
		userID = m.Mentions[0].ID
	}
	warnings, err := g.warnings.ListByUser(ctx, m.GuildID, userID)
	if err != nil {
		g.logger.Warn("warning list failed", zap.Error(err))
		g.reply(s, m, "Could not load warnings.")
		return
	}
	if len(warnings) == 0 {
		g.reply(s, m, "No warnings.")
		return
	}
	var b strings.Builder
	for idx, warning := range warnings {
		fmt.Fprintf(&b, "**%d.** %s (by <@%s>)\n", idx+1, warning.Reason, warning.IssuedBy)
	}
	g.reply(s, m, b.String())
}

func (g *Gateway) handleClearWarnings(ctx context.Context, s *discordgo.Session, m *discordgo.MessageCreate) {
	if len(m.Mentions) == 0 {
		g.reply(s, m, "Mention a user to clear.")
		return
	}
	userID := m.Mentions[0].ID
	if err := g.warnings.ClearByUser(ctx, m.GuildID, userID); err != nil {
		g.logger.Warn("warning clear failed", zap.Error(err))
		g.reply(s, m, "Could not clear warnings.")
		return
	}
	g.reply(s, m, fmt.Sprintf("Cleared all warnings for <@%s>.", userID))
}

func (g *Gateway) handleAutoResponse(ctx context.Context, s *discordgo.Session, m *discordgo.MessageCreate, args []string) {
	usage := "Usage: " + g.cfg.CommandPrefix + "autoresponse <add|remove|list|toggle>"
	if len(args) == 0 {
		g.reply(s, m, usage)
		return
	}
	switch strings.ToLower(args[0]) {
	case "add":
		if len(args) < 3 {
			g.reply(s, m, "Usage: "+g.cfg.CommandPrefix+"autoresponse add <trigger> <reply>")
			return
		}
		if err := g.autoresponses.Add(ctx, m.GuildID, args[1], strings.Join(args[2:], " ")); err != nil {
			g.reply(s, m, util.UserMessage(err))
			return
		}
		g.reply(s, m, fmt.Sprintf("Added autoresponse for trigger: `%s`", args[1]))
	case "remove", "rm":
		if len(args) < 2 {
			g.reply(s, m, "Usage: "+g.cfg.CommandPrefix+"autoresponse remove <trigger>")
			return
		}
		if err := g.autoresponses.Remove(ctx, m.GuildID, args[1]); err != nil {
			g.reply(s, m, util.UserMessage(err))
			return
		}
		g.reply(s, m, fmt.Sprintf("Removed autoresponse for trigger: `%s`", args[1]))
	case "list":
		responses, err := g.autoresponses.List(ctx, m.GuildID)
		if err != nil {
			g.reply(s, m, "Could not load autoresponses.")
			return
		}
		if len(responses) == 0 {
			g.reply(s, m, "No autoresponses set for this server.")
			return
		}
		var b strings.Builder
		for _, response := range responses {
			reply := response.Reply
			if len(reply) > 150 {
				reply = reply[:150]
			}
			fmt.Fprintf(&b, "• `%s` → %s\n", response.Trigger, reply)
		}
		g.reply(s, m, b.String())
	case "toggle":
		enabled, err := g.autoresponses.Toggle(ctx, m.GuildID)
		if err != nil {
			g.reply(s, m, "Could not toggle autoresponses.")
			return
		}
		state := "DISABLED"
		if enabled {
			state = "ENABLED"
		}
		g.reply(s, m, "Autoresponses are now **"+state+"**")
	default:
		g.reply(s, m, usage)
	}
}

func (g *Gateway) handleSnipe(ctx context.Context, s *discordgo.Session, m *discordgo.MessageCreate) {
	sniped, err := g.snipes.Get(ctx, m.ChannelID)
	if err != nil {
		g.logger.Warn("snipe read failed", zap.Error(err))
		return
	}
	if sniped == nil {
		g.reply(s, m, "No message to snipe.")
		return
	}
	content := sniped.Content
	if content == "" {
		content = "No text content"
	}
	text := fmt.Sprintf("**Sniped Message**\n%s\n— %s", content, sniped.AuthorTag)
	if sniped.AttachmentURL != "" {
		text += "\n" + sniped.AttachmentURL
	}
	g.reply(s, m, text)
}

// isTicketChannel checks ticket membership by metadata rather than by
// category, so moved channels stay recognizable.
func (g *Gateway) isTicketChannel(ctx context.Context, channelID string) bool {
	_, err := g.tickets.GetByChannelID(ctx, channelID)
	return !errors.Is(err, repository.ErrTicketNotFound) && err == nil
}

func (g *Gateway) reply(s *discordgo.Session, m *discordgo.MessageCreate, content string) {
	if content == "" {
		return
	}
	if _, err := s.ChannelMessageSendReply(m.ChannelID, content, m.Reference()); err != nil {
		g.logger.Warn("reply send failed", zap.String("channel_id", m.ChannelID), zap.Error(err))
	}
}
