package service

import (
	"context"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/ticket-bot/internal/domain"
	"github.com/spec-kit/ticket-bot/internal/repository"
	"github.com/spec-kit/ticket-bot/pkg/util"
)

// AutoResponseService matches inbound messages against a guild's configured
// triggers and manages the trigger set.
type AutoResponseService struct {
	responses repository.AutoResponseRepository
	logger    *zap.Logger
}

// NewAutoResponseService constructs the service.
func NewAutoResponseService(responses repository.AutoResponseRepository, logger *zap.Logger) *AutoResponseService {
	return &AutoResponseService{responses: responses, logger: logger}
}

// Match returns the configured reply for the first trigger the content
// matches, or false. Triggers wrapped in slashes match as case-insensitive
// regular expressions; plain triggers match as case-insensitive substrings.
func (s *AutoResponseService) Match(ctx context.Context, guildID, content string) (string, bool) {
	enabled, err := s.responses.Enabled(ctx, guildID)
	if err != nil {
		s.logger.Warn("autoresponse settings lookup failed", zap.Error(err))
		return "", false
	}
	if !enabled {
		return "", false
	}

	responses, err := s.responses.ListByGuild(ctx, guildID)
	if err != nil {
		s.logger.Warn("autoresponse list failed", zap.Error(err))
		return "", false
	}

	lowered := strings.ToLower(content)
	for _, response := range responses {
		if matchesTrigger(response.Trigger, content, lowered) {
			return response.Reply, true
		}
	}
	return "", false
}

func matchesTrigger(trigger, content, loweredContent string) bool {
	if strings.HasPrefix(trigger, "/") && strings.HasSuffix(trigger, "/") && len(trigger) > 2 {
		pattern, err := regexp.Compile("(?i)" + trigger[1:len(trigger)-1])
		if err != nil {
			// a broken pattern never matches
			return false
		}
		return pattern.MatchString(content)
	}
	return strings.Contains(loweredContent, strings.ToLower(trigger))
}

// Add registers or replaces a trigger.
func (s *AutoResponseService) Add(ctx context.Context, guildID, trigger, reply string) error {
	if strings.TrimSpace(trigger) == "" || strings.TrimSpace(reply) == "" {
		return util.NewValidationError("trigger and reply are required", nil)
	}
	return s.responses.Upsert(ctx, &domain.AutoResponse{
		GuildID: guildID,
		Trigger: trigger,
		Reply:   reply,
	})
}

// Remove deletes a trigger; removing an unknown trigger is a validation
// error so the caller can tell the user.
func (s *AutoResponseService) Remove(ctx context.Context, guildID, trigger string) error {
	removed, err := s.responses.Remove(ctx, guildID, trigger)
	if err != nil {
		return err
	}
	if !removed {
		return util.NewValidationError("that trigger does not exist", nil)
	}
	return nil
}

// List returns all triggers configured for a guild.
func (s *AutoResponseService) List(ctx context.Context, guildID string) ([]domain.AutoResponse, error) {
	return s.responses.ListByGuild(ctx, guildID)
}

// Toggle flips the guild's enabled flag and returns the new value.
func (s *AutoResponseService) Toggle(ctx context.Context, guildID string) (bool, error) {
	enabled, err := s.responses.Enabled(ctx, guildID)
	if err != nil {
		return false, err
	}
	if err := s.responses.SetEnabled(ctx, guildID, !enabled); err != nil {
		return false, err
	}
	return !enabled, nil
}
