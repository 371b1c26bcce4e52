package service

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/ticket-bot/internal/domain"
)

func TestDeliverFansOutToAllTargets(t *testing.T) {
	fp := newFakePlatform()
	dispatcher := NewArchiveDispatcher(fp, zap.NewNop())

	targets := []domain.ArchiveTarget{
		{Kind: domain.ArchiveTargetOwnerDM, RecipientID: "user-alice"},
		{Kind: domain.ArchiveTargetOriginChannel, RecipientID: "chan-1"},
		{Kind: domain.ArchiveTargetArchiveChannel, RecipientID: "chan-archive"},
	}
	document := []byte("<html>transcript</html>")
	delivered := dispatcher.Deliver(context.Background(), targets, "closed", "transcript-x.html", document)

	assert.Equal(t, 3, delivered)
	require.Len(t, fp.dmsTo("user-alice"), 1)
	require.Len(t, fp.sentTo("chan-1"), 1)
	require.Len(t, fp.sentTo("chan-archive"), 1)

	// each target gets the full document, not a shared exhausted reader
	dm := fp.dmsTo("user-alice")[0]
	require.Len(t, dm.Files, 1)
	body, err := io.ReadAll(dm.Files[0].Reader)
	require.NoError(t, err)
	assert.Equal(t, document, body)

	origin := fp.sentTo("chan-1")[0]
	body, err = io.ReadAll(origin.Files[0].Reader)
	require.NoError(t, err)
	assert.Equal(t, document, body)
}

func TestDeliverFailedTargetDoesNotBlockOthers(t *testing.T) {
	fp := newFakePlatform()
	fp.dmErrs["user-alice"] = errors.New("dms closed")
	dispatcher := NewArchiveDispatcher(fp, zap.NewNop())

	targets := []domain.ArchiveTarget{
		{Kind: domain.ArchiveTargetOwnerDM, RecipientID: "user-alice"},
		{Kind: domain.ArchiveTargetOriginChannel, RecipientID: "chan-1"},
	}
	delivered := dispatcher.Deliver(context.Background(), targets, "closed", "t.html", []byte("x"))

	assert.Equal(t, 1, delivered)
	assert.Empty(t, fp.dmsTo("user-alice"))
	assert.Len(t, fp.sentTo("chan-1"), 1)
}
