package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/ticket-bot/internal/config"
	"github.com/spec-kit/ticket-bot/internal/domain"
	"github.com/spec-kit/ticket-bot/pkg/util"
)

func testDiscordConfig() config.DiscordConfig {
	return config.DiscordConfig{
		GuildID:            "guild-1",
		SupportRoleID:      "role-support",
		CustomerRoleID:     "role-customer",
		PurchaseCategoryID: "cat-purchase",
		SupportCategoryID:  "cat-support",
		ArchiveChannelID:   "chan-archive",
		DeleteDelaySeconds: 5,
	}
}

func newTestFactory(fp *fakePlatform, repo *memTicketRepo) *TicketFactory {
	return NewTicketFactory(repo, fp, nil, zap.NewNop(), testDiscordConfig())
}

func TestOpenTicketPurchaseProvisioning(t *testing.T) {
	fp := newFakePlatform()
	repo := newMemTicketRepo()
	factory := newTestFactory(fp, repo)

	ticket, err := factory.OpenTicket(context.Background(), TicketIntake{
		RequestType:   domain.RequestTypePurchase,
		GuildID:       "guild-1",
		OwnerID:       "user-alice",
		OwnerUsername: "alice",
		Product:       "Gift Card",
		Payment:       "LTC",
	})
	require.NoError(t, err)

	require.Len(t, fp.created, 1)
	created := fp.created[0]
	assert.Equal(t, "giftcard", created.name)
	assert.Equal(t, "cat-purchase", created.categoryID)

	require.Len(t, created.grants, 3)
	assert.Equal(t, domain.SubjectEveryone, created.grants[0].SubjectKind)
	assert.Equal(t, "guild-1", created.grants[0].SubjectID)
	assert.Equal(t, domain.CapabilityView, created.grants[0].Deny)
	assert.Equal(t, domain.SubjectMember, created.grants[1].SubjectKind)
	assert.Equal(t, "user-alice", created.grants[1].SubjectID)
	assert.Equal(t, domain.CapabilityAll, created.grants[1].Allow)
	assert.Equal(t, domain.SubjectRole, created.grants[2].SubjectKind)
	assert.Equal(t, "role-support", created.grants[2].SubjectID)

	assert.Equal(t, domain.TicketStateOpen, ticket.State)
	assert.Equal(t, "user-alice", ticket.OwnerID)
	assert.True(t, strings.HasPrefix(ticket.DisplayKey, "#GX"))

	stored, err := repo.GetByChannelID(context.Background(), ticket.ChannelID)
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStateOpen, stored.State)

	opening := fp.sentTo(ticket.ChannelID)
	require.Len(t, opening, 1)
	assert.Contains(t, opening[0].Content, "<@user-alice>")
	assert.Contains(t, opening[0].Content, "Gift Card")
	require.Len(t, opening[0].Actions, 1)
	assert.Equal(t, ActionConfirmClose, opening[0].Actions[0].ID)
}

func TestOpenTicketSupportUsesUsernameChannelName(t *testing.T) {
	fp := newFakePlatform()
	factory := newTestFactory(fp, newMemTicketRepo())

	ticket, err := factory.OpenTicket(context.Background(), TicketIntake{
		RequestType:   domain.RequestTypeSupport,
		GuildID:       "guild-1",
		OwnerID:       "user-bob",
		OwnerUsername: "Bob!!",
		Concern:       "payment not received",
	})
	require.NoError(t, err)

	require.Len(t, fp.created, 1)
	assert.Equal(t, "supportbob", fp.created[0].name)
	assert.Equal(t, "cat-support", fp.created[0].categoryID)
	assert.True(t, strings.HasPrefix(ticket.DisplayKey, "#SUP"))
}

func TestOpenTicketValidation(t *testing.T) {
	factory := newTestFactory(newFakePlatform(), newMemTicketRepo())

	cases := []struct {
		name   string
		intake TicketIntake
	}{
		{"missing product", TicketIntake{RequestType: domain.RequestTypePurchase, Payment: "UPI"}},
		{"missing payment", TicketIntake{RequestType: domain.RequestTypePurchase, Product: "Nitro"}},
		{"missing concern", TicketIntake{RequestType: domain.RequestTypeSupport}},
		{"blank concern", TicketIntake{RequestType: domain.RequestTypeSupport, Concern: "   "}},
		{"unknown type", TicketIntake{RequestType: domain.RequestType("BOGUS"), Product: "x"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := factory.OpenTicket(context.Background(), tc.intake)
			assert.True(t, util.IsCode(err, util.CodeValidation), "expected validation error, got %v", err)
		})
	}
}

func TestOpenTicketChannelCreateFailure(t *testing.T) {
	fp := newFakePlatform()
	fp.createChannelErr = errors.New("missing permissions")
	repo := newMemTicketRepo()
	factory := newTestFactory(fp, repo)

	_, err := factory.OpenTicket(context.Background(), TicketIntake{
		RequestType: domain.RequestTypeSupport,
		GuildID:     "guild-1",
		OwnerID:     "user-bob",
		Concern:     "help",
	})
	assert.True(t, util.IsCode(err, util.CodePrerequisite))
	assert.Empty(t, repo.tickets)
}

func TestOpenTicketRecordFailureCleansUpChannel(t *testing.T) {
	fp := newFakePlatform()
	repo := newMemTicketRepo()
	repo.createErr = errors.New("db down")
	factory := newTestFactory(fp, repo)

	_, err := factory.OpenTicket(context.Background(), TicketIntake{
		RequestType: domain.RequestTypeSupport,
		GuildID:     "guild-1",
		OwnerID:     "user-bob",
		Concern:     "help",
	})
	require.Error(t, err)
	assert.Equal(t, []string{"chan-1"}, fp.deleted)
}

func TestRepeatedIntakeOpensIndependentTickets(t *testing.T) {
	fp := newFakePlatform()
	repo := newMemTicketRepo()
	factory := newTestFactory(fp, repo)

	intake := TicketIntake{
		RequestType: domain.RequestTypeSupport,
		GuildID:     "guild-1",
		OwnerID:     "user-bob",
		Concern:     "help",
	}
	_, err := factory.OpenTicket(context.Background(), intake)
	require.NoError(t, err)

	fp.nextChannelID = "chan-2"
	_, err = factory.OpenTicket(context.Background(), intake)
	require.NoError(t, err)

	assert.Len(t, fp.created, 2)
	assert.Len(t, repo.tickets, 2)
}

func TestSanitizeChannelName(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Gift Card", "giftcard"},
		{"NITRO Classic!!", "nitroclassic"},
		{"---", ""},
		{"ABCDEFGHIJKLMNOPQRSTUVWXYZ1234", "abcdefghijklmnopqrstuvwxy"},
		{"café ☕ order", "caforder"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, SanitizeChannelName(tc.in), "input %q", tc.in)
	}
}
