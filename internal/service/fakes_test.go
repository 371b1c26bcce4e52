package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/spec-kit/ticket-bot/internal/domain"
	"github.com/spec-kit/ticket-bot/internal/platform"
	"github.com/spec-kit/ticket-bot/internal/repository"
)

type createdChannel struct {
	guildID    string
	name       string
	categoryID string
	grants     []domain.PermissionGrant
}

// fakePlatform records every call and fails on demand.
type fakePlatform struct {
	mu sync.Mutex

	nextChannelID    string
	createChannelErr error
	created          []createdChannel

	deleteErr error
	deleted   []string

	renameErr error
	renamed   map[string]string

	channels   map[string]domain.ChannelInfo
	channelErr error

	memberGrants []domain.PermissionGrant

	sendErrs map[string]error
	sent     map[string][]platform.Outbound

	dmErrs map[string]error
	dms    map[string][]platform.Outbound

	history    []domain.Message
	fetchErrOn map[int]error
	fetchCalls int

	roleGrantErr error
	roleGrants   []string
}

func newFakePlatform() *fakePlatform {
	return &fakePlatform{
		nextChannelID: "chan-1",
		renamed:       make(map[string]string),
		channels:      make(map[string]domain.ChannelInfo),
		sendErrs:      make(map[string]error),
		sent:          make(map[string][]platform.Outbound),
		dmErrs:        make(map[string]error),
		dms:           make(map[string][]platform.Outbound),
		fetchErrOn:    make(map[int]error),
	}
}

func (f *fakePlatform) CreateChannel(_ context.Context, guildID, name, categoryID string, grants []domain.PermissionGrant) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createChannelErr != nil {
		return "", f.createChannelErr
	}
	f.created = append(f.created, createdChannel{guildID: guildID, name: name, categoryID: categoryID, grants: grants})
	return f.nextChannelID, nil
}

func (f *fakePlatform) DeleteChannel(_ context.Context, channelID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = append(f.deleted, channelID)
	return nil
}

func (f *fakePlatform) RenameChannel(_ context.Context, channelID, name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.renameErr != nil {
		return f.renameErr
	}
	f.renamed[channelID] = name
	return nil
}

func (f *fakePlatform) Channel(_ context.Context, channelID string) (*domain.ChannelInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.channelErr != nil {
		return nil, f.channelErr
	}
	info, ok := f.channels[channelID]
	if !ok {
		return nil, fmt.Errorf("unknown channel %s", channelID)
	}
	return &info, nil
}

func (f *fakePlatform) EditMemberGrant(_ context.Context, _ string, grant domain.PermissionGrant) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.memberGrants = append(f.memberGrants, grant)
	return nil
}

func (f *fakePlatform) SendMessage(_ context.Context, channelID string, out platform.Outbound) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.sendErrs[channelID]; err != nil {
		return err
	}
	f.sent[channelID] = append(f.sent[channelID], out)
	return nil
}

func (f *fakePlatform) SendDirectMessage(_ context.Context, userID string, out platform.Outbound) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.dmErrs[userID]; err != nil {
		return err
	}
	f.dms[userID] = append(f.dms[userID], out)
	return nil
}

func (f *fakePlatform) FetchMessagePage(_ context.Context, _ string, limit int, beforeID string) ([]domain.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetchCalls++
	if err := f.fetchErrOn[f.fetchCalls]; err != nil {
		return nil, err
	}

	start := 0
	if beforeID != "" {
		for i, msg := range f.history {
			if msg.ID == beforeID {
				start = i + 1
				break
			}
		}
	}
	if start >= len(f.history) {
		return nil, nil
	}
	end := start + limit
	if end > len(f.history) {
		end = len(f.history)
	}
	page := make([]domain.Message, end-start)
	copy(page, f.history[start:end])
	return page, nil
}

func (f *fakePlatform) GrantRole(_ context.Context, guildID, userID, roleID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.roleGrantErr != nil {
		return f.roleGrantErr
	}
	f.roleGrants = append(f.roleGrants, guildID+"/"+userID+"/"+roleID)
	return nil
}

func (f *fakePlatform) sentTo(channelID string) []platform.Outbound {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]platform.Outbound(nil), f.sent[channelID]...)
}

func (f *fakePlatform) dmsTo(userID string) []platform.Outbound {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]platform.Outbound(nil), f.dms[userID]...)
}

// newestFirstHistory builds n messages ordered newest first, the way the
// platform returns them.
func newestFirstHistory(n int) []domain.Message {
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	history := make([]domain.Message, n)
	for i := 0; i < n; i++ {
		seq := n - i
		history[i] = domain.Message{
			ID:        fmt.Sprintf("m%04d", seq),
			AuthorID:  "author",
			AuthorTag: "author#0",
			Timestamp: base.Add(time.Duration(seq) * time.Second),
			Body:      fmt.Sprintf("message %d", seq),
		}
	}
	return history
}

// memTicketRepo is an in-memory TicketRepository.
type memTicketRepo struct {
	mu        sync.Mutex
	tickets   map[string]*domain.Ticket
	createErr error
	updateErr error

	transitions []domain.TicketState
}

func newMemTicketRepo() *memTicketRepo {
	return &memTicketRepo{tickets: make(map[string]*domain.Ticket)}
}

func (r *memTicketRepo) Create(_ context.Context, ticket *domain.Ticket) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	stored := *ticket
	r.tickets[ticket.ChannelID] = &stored
	return nil
}

func (r *memTicketRepo) GetByChannelID(_ context.Context, channelID string) (*domain.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ticket, ok := r.tickets[channelID]
	if !ok {
		return nil, repository.ErrTicketNotFound
	}
	copied := *ticket
	return &copied, nil
}

func (r *memTicketRepo) UpdateState(_ context.Context, channelID string, state domain.TicketState) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.updateErr != nil {
		return r.updateErr
	}
	ticket, ok := r.tickets[channelID]
	if !ok {
		return repository.ErrTicketNotFound
	}
	ticket.State = state
	r.transitions = append(r.transitions, state)
	return nil
}

func (r *memTicketRepo) Delete(_ context.Context, channelID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.tickets, channelID)
	return nil
}

func (r *memTicketRepo) put(ticket *domain.Ticket) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored := *ticket
	r.tickets[ticket.ChannelID] = &stored
}

func (r *memTicketRepo) state(channelID string) domain.TicketState {
	r.mu.Lock()
	defer r.mu.Unlock()
	ticket, ok := r.tickets[channelID]
	if !ok {
		return ""
	}
	return ticket.State
}
