package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/ticket-bot/internal/domain"
	"github.com/spec-kit/ticket-bot/pkg/util"
)

type memAutoResponseRepo struct {
	responses []domain.AutoResponse
	enabled   bool
}

func newMemAutoResponseRepo() *memAutoResponseRepo {
	return &memAutoResponseRepo{enabled: true}
}

func (r *memAutoResponseRepo) Upsert(_ context.Context, response *domain.AutoResponse) error {
	for i, existing := range r.responses {
		if existing.GuildID == response.GuildID && existing.Trigger == response.Trigger {
			r.responses[i].Reply = response.Reply
			return nil
		}
	}
	r.responses = append(r.responses, *response)
	return nil
}

func (r *memAutoResponseRepo) Remove(_ context.Context, guildID, trigger string) (bool, error) {
	for i, existing := range r.responses {
		if existing.GuildID == guildID && existing.Trigger == trigger {
			r.responses = append(r.responses[:i], r.responses[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (r *memAutoResponseRepo) ListByGuild(_ context.Context, guildID string) ([]domain.AutoResponse, error) {
	var out []domain.AutoResponse
	for _, existing := range r.responses {
		if existing.GuildID == guildID {
			out = append(out, existing)
		}
	}
	return out, nil
}

func (r *memAutoResponseRepo) Enabled(_ context.Context, _ string) (bool, error) {
	return r.enabled, nil
}

func (r *memAutoResponseRepo) SetEnabled(_ context.Context, _ string, enabled bool) error {
	r.enabled = enabled
	return nil
}

func newTestAutoResponses(repo *memAutoResponseRepo) *AutoResponseService {
	return NewAutoResponseService(repo, zap.NewNop())
}

func TestMatchSubstringCaseInsensitive(t *testing.T) {
	repo := newMemAutoResponseRepo()
	svc := newTestAutoResponses(repo)
	require.NoError(t, svc.Add(context.Background(), "guild-1", "payment", "Check the pinned payment info."))

	reply, ok := svc.Match(context.Background(), "guild-1", "How do I send the PAYMENT?")
	require.True(t, ok)
	assert.Equal(t, "Check the pinned payment info.", reply)

	_, ok = svc.Match(context.Background(), "guild-1", "hello there")
	assert.False(t, ok)
}

func TestMatchRegexTrigger(t *testing.T) {
	repo := newMemAutoResponseRepo()
	svc := newTestAutoResponses(repo)
	require.NoError(t, svc.Add(context.Background(), "guild-1", "/^price\\??$/", "See #pricing."))

	reply, ok := svc.Match(context.Background(), "guild-1", "Price?")
	require.True(t, ok)
	assert.Equal(t, "See #pricing.", reply)

	_, ok = svc.Match(context.Background(), "guild-1", "what is the price of nitro")
	assert.False(t, ok)
}

func TestMatchBrokenRegexNeverMatches(t *testing.T) {
	repo := newMemAutoResponseRepo()
	svc := newTestAutoResponses(repo)
	require.NoError(t, svc.Add(context.Background(), "guild-1", "/[unclosed/", "nope"))

	_, ok := svc.Match(context.Background(), "guild-1", "[unclosed")
	assert.False(t, ok)
}

func TestMatchRespectsDisabledFlag(t *testing.T) {
	repo := newMemAutoResponseRepo()
	svc := newTestAutoResponses(repo)
	require.NoError(t, svc.Add(context.Background(), "guild-1", "help", "Use the panel."))

	enabled, err := svc.Toggle(context.Background(), "guild-1")
	require.NoError(t, err)
	assert.False(t, enabled)

	_, ok := svc.Match(context.Background(), "guild-1", "help me")
	assert.False(t, ok)

	enabled, err = svc.Toggle(context.Background(), "guild-1")
	require.NoError(t, err)
	assert.True(t, enabled)

	_, ok = svc.Match(context.Background(), "guild-1", "help me")
	assert.True(t, ok)
}

func TestAddValidation(t *testing.T) {
	svc := newTestAutoResponses(newMemAutoResponseRepo())
	err := svc.Add(context.Background(), "guild-1", "  ", "reply")
	assert.True(t, util.IsCode(err, util.CodeValidation))
	err = svc.Add(context.Background(), "guild-1", "trigger", "")
	assert.True(t, util.IsCode(err, util.CodeValidation))
}

func TestRemoveUnknownTrigger(t *testing.T) {
	svc := newTestAutoResponses(newMemAutoResponseRepo())
	err := svc.Remove(context.Background(), "guild-1", "ghost")
	assert.True(t, util.IsCode(err, util.CodeValidation))
}
