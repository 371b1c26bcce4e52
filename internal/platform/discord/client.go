package discord

import (
	"context"

	"github.com/bwmarrin/discordgo"

	"github.com/spec-kit/ticket-bot/internal/domain"
	"github.com/spec-kit/ticket-bot/internal/platform"
)

// Client implements platform.Client on top of a discordgo session.
type Client struct {
	session *discordgo.Session
}

// NewClient wraps an established session.
func NewClient(session *discordgo.Session) *Client {
	return &Client{session: session}
}

func (c *Client) CreateChannel(ctx context.Context, guildID, name, categoryID string, grants []domain.PermissionGrant) (string, error) {
	overwrites := make([]*discordgo.PermissionOverwrite, 0, len(grants))
	for _, grant := range grants {
		overwrites = append(overwrites, overwriteFor(grant))
	}
	channel, err := c.session.GuildChannelCreateComplex(guildID, discordgo.GuildChannelCreateData{
		Name:                 name,
		Type:                 discordgo.ChannelTypeGuildText,
		ParentID:             categoryID,
		PermissionOverwrites: overwrites,
	}, discordgo.WithContext(ctx))
	if err != nil {
		return "", err
	}
	return channel.ID, nil
}

func (c *Client) DeleteChannel(ctx context.Context, channelID string) error {
	_, err := c.session.ChannelDelete(channelID, discordgo.WithContext(ctx))
	return err
}

func (c *Client) RenameChannel(ctx context.Context, channelID, name string) error {
	_, err := c.session.ChannelEdit(channelID, &discordgo.ChannelEdit{Name: name}, discordgo.WithContext(ctx))
	return err
}

func (c *Client) Channel(ctx context.Context, channelID string) (*domain.ChannelInfo, error) {
	channel, err := c.session.Channel(channelID, discordgo.WithContext(ctx))
	if err != nil {
		return nil, err
	}
	return &domain.ChannelInfo{ID: channel.ID, Name: channel.Name, ParentID: channel.ParentID}, nil
}

func (c *Client) EditMemberGrant(ctx context.Context, channelID string, grant domain.PermissionGrant) error {
	return c.session.ChannelPermissionSet(
		channelID,
		grant.SubjectID,
		overwriteType(grant.SubjectKind),
		permissionBits(grant.Allow),
		permissionBits(grant.Deny),
		discordgo.WithContext(ctx),
	)
}

func (c *Client) SendMessage(ctx context.Context, channelID string, out platform.Outbound) error {
	_, err := c.session.ChannelMessageSendComplex(channelID, messageSend(out), discordgo.WithContext(ctx))
	return err
}

func (c *Client) SendDirectMessage(ctx context.Context, userID string, out platform.Outbound) error {
	dm, err := c.session.UserChannelCreate(userID, discordgo.WithContext(ctx))
	if err != nil {
		return err
	}
	_, err = c.session.ChannelMessageSendComplex(dm.ID, messageSend(out), discordgo.WithContext(ctx))
	return err
}

func (c *Client) FetchMessagePage(ctx context.Context, channelID string, limit int, beforeID string) ([]domain.Message, error) {
	messages, err := c.session.ChannelMessages(channelID, limit, beforeID, "", "", discordgo.WithContext(ctx))
	if err != nil {
		return nil, err
	}
	page := make([]domain.Message, 0, len(messages))
	for _, msg := range messages {
		page = append(page, toDomainMessage(msg))
	}
	return page, nil
}

func (c *Client) GrantRole(ctx context.Context, guildID, userID, roleID string) error {
	return c.session.GuildMemberRoleAdd(guildID, userID, roleID, discordgo.WithContext(ctx))
}

func messageSend(out platform.Outbound) *discordgo.MessageSend {
	send := &discordgo.MessageSend{Content: out.Content}
	for _, file := range out.Files {
		send.Files = append(send.Files, &discordgo.File{
			Name:        file.Name,
			ContentType: file.ContentType,
			Reader:      file.Reader,
		})
	}
	if len(out.Actions) > 0 {
		row := discordgo.ActionsRow{}
		for _, action := range out.Actions {
			row.Components = append(row.Components, discordgo.Button{
				CustomID: action.ID,
				Label:    action.Label,
				Style:    buttonStyle(action.Style),
			})
		}
		send.Components = []discordgo.MessageComponent{row}
	}
	return send
}

func buttonStyle(style platform.ActionStyle) discordgo.ButtonStyle {
	switch style {
	case platform.ActionPrimary:
		return discordgo.PrimaryButton
	case platform.ActionDanger:
		return discordgo.DangerButton
	default:
		return discordgo.SecondaryButton
	}
}

func toDomainMessage(msg *discordgo.Message) domain.Message {
	out := domain.Message{
		ID:        msg.ID,
		Timestamp: msg.Timestamp,
		Body:      msg.Content,
	}
	if msg.Author != nil {
		out.AuthorID = msg.Author.ID
		out.AuthorTag = authorTag(msg.Author)
	}
	for _, attachment := range msg.Attachments {
		out.AttachmentURLs = append(out.AttachmentURLs, attachment.URL)
	}
	return out
}

func authorTag(user *discordgo.User) string {
	if user.Discriminator != "" && user.Discriminator != "0" {
		return user.Username + "#" + user.Discriminator
	}
	return user.Username
}

func overwriteFor(grant domain.PermissionGrant) *discordgo.PermissionOverwrite {
	return &discordgo.PermissionOverwrite{
		ID:    grant.SubjectID,
		Type:  overwriteType(grant.SubjectKind),
		Allow: permissionBits(grant.Allow),
		Deny:  permissionBits(grant.Deny),
	}
}

// The everyone principal is Discord's implicit role sharing the guild id.
func overwriteType(kind domain.SubjectKind) discordgo.PermissionOverwriteType {
	if kind == domain.SubjectMember {
		return discordgo.PermissionOverwriteTypeMember
	}
	return discordgo.PermissionOverwriteTypeRole
}

func permissionBits(capability domain.Capability) int64 {
	var bits int64
	if capability&domain.CapabilityView != 0 {
		bits |= discordgo.PermissionViewChannel
	}
	if capability&domain.CapabilitySend != 0 {
		bits |= discordgo.PermissionSendMessages
	}
	if capability&domain.CapabilityReadHistory != 0 {
		bits |= discordgo.PermissionReadMessageHistory
	}
	return bits
}
