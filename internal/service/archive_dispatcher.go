package service

import (
	"bytes"
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/ticket-bot/internal/domain"
	"github.com/spec-kit/ticket-bot/internal/platform"
	"github.com/spec-kit/ticket-bot/pkg/util"
)

// ArchiveDispatcher fans a rendered transcript out to its destinations.
// Every delivery is a single best-effort attempt; a failed target never
// blocks the others and never fails the surrounding closure.
type ArchiveDispatcher struct {
	platform platform.Client
	logger   *zap.Logger
}

// NewArchiveDispatcher constructs the dispatcher.
func NewArchiveDispatcher(client platform.Client, logger *zap.Logger) *ArchiveDispatcher {
	return &ArchiveDispatcher{platform: client, logger: logger}
}

// Deliver attempts delivery of the document to each target independently
// and returns the number of successful deliveries.
func (d *ArchiveDispatcher) Deliver(ctx context.Context, targets []domain.ArchiveTarget, summary, fileName string, document []byte) int {
	delivered := 0
	for _, target := range targets {
		out := platform.Outbound{
			Content: summary,
			Files: []platform.File{{
				Name:        fileName,
				ContentType: "text/html",
				Reader:      bytes.NewReader(document),
			}},
		}

		var err error
		switch target.Kind {
		case domain.ArchiveTargetOwnerDM:
			err = d.platform.SendDirectMessage(ctx, target.RecipientID, out)
		default:
			err = d.platform.SendMessage(ctx, target.RecipientID, out)
		}
		if err != nil {
			d.logger.Warn("transcript delivery failed",
				zap.String("target", string(target.Kind)),
				zap.Error(util.NewDeliveryFailure(string(target.Kind), err)))
			continue
		}
		delivered++
	}
	return delivered
}
