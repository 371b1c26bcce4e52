package gateway

import (
	"github.com/bwmarrin/discordgo"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

var presenceStatuses = []string{
	"over your tickets",
	"the support queue",
	"new orders come in",
}

// PresenceRotator cycles the bot's watching status on a fixed schedule.
type PresenceRotator struct {
	session *discordgo.Session
	logger  *zap.Logger
	cron    *cron.Cron
	next    int
}

func NewPresenceRotator(session *discordgo.Session, logger *zap.Logger) *PresenceRotator {
	return &PresenceRotator{
		session: session,
		logger:  logger,
		cron:    cron.New(),
	}
}

// Start sets the first status immediately and rotates every 30 seconds.
func (p *PresenceRotator) Start() error {
	p.rotate()
	if _, err := p.cron.AddFunc("@every 30s", p.rotate); err != nil {
		return err
	}
	p.cron.Start()
	return nil
}

// Stop halts the rotation schedule.
func (p *PresenceRotator) Stop() {
	p.cron.Stop()
}

func (p *PresenceRotator) rotate() {
	status := presenceStatuses[p.next%len(presenceStatuses)]
	p.next++
	if err := p.session.UpdateWatchStatus(0, status); err != nil {
		p.logger.Warn("presence update failed", zap.Error(err))
	}
}
