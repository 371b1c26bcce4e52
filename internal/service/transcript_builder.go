package service

import (
	"context"
	"fmt"
	"html"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/ticket-bot/internal/domain"
	"github.com/spec-kit/ticket-bot/internal/platform"
	"github.com/spec-kit/ticket-bot/pkg/util"
)

const historyPageSize = 100

// TranscriptBuilder reads a channel's full retrievable history and renders
// it as a static HTML document.
type TranscriptBuilder struct {
	platform platform.Client
	logger   *zap.Logger
}

// NewTranscriptBuilder constructs the builder.
func NewTranscriptBuilder(client platform.Client, logger *zap.Logger) *TranscriptBuilder {
	return &TranscriptBuilder{platform: client, logger: logger}
}

// FetchHistory pages backwards through the channel and returns every
// retrievable message oldest-first. A failure on the very first page
// propagates as a prerequisite error; later failures end pagination and the
// partial result is accepted.
func (b *TranscriptBuilder) FetchHistory(ctx context.Context, channelID string) ([]domain.Message, error) {
	var collected []domain.Message
	before := ""
	for {
		page, err := b.platform.FetchMessagePage(ctx, channelID, historyPageSize, before)
		if err != nil {
			if before == "" {
				return nil, util.NewPrerequisiteFetchError("history fetch", err)
			}
			b.logger.Warn("history page fetch failed, keeping partial history",
				zap.String("channel_id", channelID), zap.Error(err))
			break
		}
		if len(page) == 0 {
			break
		}
		collected = append(collected, page...)
		// pages arrive newest-first; the last entry is the next cursor
		before = page[len(page)-1].ID
		if len(page) < historyPageSize {
			break
		}
	}

	for i, j := 0, len(collected)-1; i < j; i, j = i+1, j-1 {
		collected[i], collected[j] = collected[j], collected[i]
	}
	return collected, nil
}

// Render produces the transcript document. The output depends only on the
// record contents, so rendering the same record twice is byte-identical.
func (b *TranscriptBuilder) Render(record domain.TranscriptRecord) []byte {
	var doc strings.Builder
	doc.WriteString("<html><head><style>\n")
	doc.WriteString("body{background:#313338;color:#dcddde;font-family:sans-serif}\n")
	doc.WriteString(".msg{margin:5px 0;padding:5px;border-bottom:1px solid #444}\n")
	doc.WriteString(".auth{color:#fff;font-weight:bold}\n")
	doc.WriteString(".time{color:#999;font-size:12px;margin-left:6px}\n")
	doc.WriteString(".att{color:#8ab4f8;font-size:12px}\n")
	doc.WriteString("</style></head><body>\n")
	fmt.Fprintf(&doc, "<h2>Transcript of #%s</h2>\n", html.EscapeString(record.ChannelName))

	for _, msg := range record.Messages {
		author := msg.AuthorTag
		if author == "" {
			author = "?"
		}
		fmt.Fprintf(&doc, "<div class=\"msg\"><span class=\"auth\">%s</span><span class=\"time\">%s</span><div>%s</div>",
			html.EscapeString(author),
			msg.Timestamp.UTC().Format("2006-01-02 15:04:05 UTC"),
			html.EscapeString(msg.Body),
		)
		for _, url := range msg.AttachmentURLs {
			fmt.Fprintf(&doc, "<div class=\"att\"><a href=\"%s\">%s</a></div>",
				html.EscapeString(url), html.EscapeString(url))
		}
		doc.WriteString("</div>\n")
	}

	doc.WriteString("</body></html>\n")
	return []byte(doc.String())
}

// TranscriptFileName names the emitted document artifact.
func TranscriptFileName(channelName string) string {
	return "transcript-" + channelName + ".html"
}
