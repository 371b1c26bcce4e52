package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/ticket-bot/internal/domain"
	"github.com/spec-kit/ticket-bot/pkg/util"
)

func newTestMarker(fp *fakePlatform, repo *memTicketRepo) *CompletionMarker {
	return NewCompletionMarker(repo, fp, nil, zap.NewNop(), testDiscordConfig())
}

func TestMarkDoneGrantsRoleAndRenames(t *testing.T) {
	fp := newFakePlatform()
	fp.channels["chan-1"] = domain.ChannelInfo{ID: "chan-1", Name: "support-alice"}
	repo := newMemTicketRepo()
	seedOpenTicket(repo, "chan-1")
	marker := newTestMarker(fp, repo)

	require.NoError(t, marker.MarkDone(context.Background(), "chan-1"))

	assert.Equal(t, []string{"guild-1/user-alice/role-customer"}, fp.roleGrants)
	assert.Equal(t, "done-support-alice", fp.renamed["chan-1"])

	notices := fp.sentTo("chan-1")
	require.Len(t, notices, 1)
	assert.Contains(t, notices[0].Content, "<@user-alice>")
	assert.Contains(t, notices[0].Content, "done")

	// state and channel stay intact
	assert.Equal(t, domain.TicketStateOpen, repo.state("chan-1"))
	assert.Empty(t, fp.deleted)
}

func TestMarkDoneOutsideTicketChannel(t *testing.T) {
	fp := newFakePlatform()
	marker := newTestMarker(fp, newMemTicketRepo())

	err := marker.MarkDone(context.Background(), "chan-random")
	assert.True(t, util.IsCode(err, util.CodeNotATicket))
	assert.Empty(t, fp.roleGrants)
}

func TestMarkDoneSkipsRenameWhenAlreadyPrefixed(t *testing.T) {
	fp := newFakePlatform()
	fp.channels["chan-1"] = domain.ChannelInfo{ID: "chan-1", Name: "done-support-alice"}
	repo := newMemTicketRepo()
	seedOpenTicket(repo, "chan-1")
	marker := newTestMarker(fp, repo)

	require.NoError(t, marker.MarkDone(context.Background(), "chan-1"))
	assert.Empty(t, fp.renamed)
}

func TestMarkDoneRoleFailureIsBestEffort(t *testing.T) {
	fp := newFakePlatform()
	fp.roleGrantErr = errors.New("missing permissions")
	fp.channels["chan-1"] = domain.ChannelInfo{ID: "chan-1", Name: "support-alice"}
	repo := newMemTicketRepo()
	seedOpenTicket(repo, "chan-1")
	marker := newTestMarker(fp, repo)

	require.NoError(t, marker.MarkDone(context.Background(), "chan-1"))
	assert.Equal(t, "done-support-alice", fp.renamed["chan-1"])
	assert.Len(t, fp.sentTo("chan-1"), 1)
}

func TestDoneChannelNameTruncation(t *testing.T) {
	long := make([]byte, 120)
	for i := range long {
		long[i] = 'a'
	}
	renamed := DoneChannelName(string(long))
	assert.Len(t, renamed, 100)
	assert.Equal(t, "done-", renamed[:5])
}
