package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/ticket-bot/internal/domain"
)

func TestFetchHistoryReturnsOldestFirst(t *testing.T) {
	fp := newFakePlatform()
	fp.history = newestFirstHistory(5)
	builder := NewTranscriptBuilder(fp, zap.NewNop())

	history, err := builder.FetchHistory(context.Background(), "chan-1")
	require.NoError(t, err)

	require.Len(t, history, 5)
	assert.Equal(t, "m0001", history[0].ID)
	assert.Equal(t, "m0005", history[4].ID)
	for i := 1; i < len(history); i++ {
		assert.True(t, !history[i].Timestamp.Before(history[i-1].Timestamp))
	}
}

func TestFetchHistoryPageCount(t *testing.T) {
	cases := []struct {
		messages  int
		wantCalls int
	}{
		{0, 1},
		{42, 1},
		{100, 2},
		{101, 2},
		{250, 3},
	}
	for _, tc := range cases {
		fp := newFakePlatform()
		fp.history = newestFirstHistory(tc.messages)
		builder := NewTranscriptBuilder(fp, zap.NewNop())

		history, err := builder.FetchHistory(context.Background(), "chan-1")
		require.NoError(t, err)
		assert.Len(t, history, tc.messages)
		assert.Equal(t, tc.wantCalls, fp.fetchCalls, "%d messages", tc.messages)
	}
}

func TestFetchHistoryExactMultipleIssuesExtraCall(t *testing.T) {
	fp := newFakePlatform()
	fp.history = newestFirstHistory(200)
	builder := NewTranscriptBuilder(fp, zap.NewNop())

	history, err := builder.FetchHistory(context.Background(), "chan-1")
	require.NoError(t, err)

	assert.Len(t, history, 200)
	// two full pages plus the empty page that signals exhaustion
	assert.Equal(t, 3, fp.fetchCalls)
}

func TestRenderIsDeterministic(t *testing.T) {
	record := domain.TranscriptRecord{
		ChannelID:   "chan-1",
		ChannelName: "support-alice",
		Messages: []domain.Message{
			{
				ID:        "m1",
				AuthorTag: "alice#0",
				Timestamp: time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC),
				Body:      "hello <script>alert(1)</script>",
			},
			{
				ID:             "m2",
				AuthorTag:      "staff#0",
				Timestamp:      time.Date(2024, 5, 1, 9, 31, 0, 0, time.UTC),
				Body:           "hi there",
				AttachmentURLs: []string{"https://cdn.example/invoice.png"},
			},
		},
	}
	builder := NewTranscriptBuilder(newFakePlatform(), zap.NewNop())

	first := builder.Render(record)
	second := builder.Render(record)
	assert.Equal(t, first, second)

	doc := string(first)
	assert.Contains(t, doc, "Transcript of #support-alice")
	assert.Contains(t, doc, "&lt;script&gt;")
	assert.NotContains(t, doc, "<script>alert")
	assert.Contains(t, doc, "2024-05-01 09:30:00 UTC")
	assert.Contains(t, doc, "https://cdn.example/invoice.png")
}

func TestRenderEmptyHistory(t *testing.T) {
	builder := NewTranscriptBuilder(newFakePlatform(), zap.NewNop())
	doc := string(builder.Render(domain.TranscriptRecord{ChannelName: "empty"}))
	assert.Contains(t, doc, "Transcript of #empty")
	assert.NotContains(t, doc, "class=\"msg\"")
}

func TestTranscriptFileName(t *testing.T) {
	assert.Equal(t, "transcript-support-alice.html", TranscriptFileName("support-alice"))
}
