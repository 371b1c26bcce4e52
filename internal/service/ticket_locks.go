package service

import "sync"

// ticketLocks hands out one mutex per ticket channel so state transitions
// serialize within a ticket while different tickets proceed independently.
type ticketLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newTicketLocks() *ticketLocks {
	return &ticketLocks{locks: make(map[string]*sync.Mutex)}
}

// acquire blocks until the ticket's lock is held and returns the release
// function.
func (l *ticketLocks) acquire(channelID string) func() {
	l.mu.Lock()
	lock, ok := l.locks[channelID]
	if !ok {
		lock = &sync.Mutex{}
		l.locks[channelID] = lock
	}
	l.mu.Unlock()

	lock.Lock()
	return lock.Unlock
}

// forget drops the lock entry once a ticket is gone.
func (l *ticketLocks) forget(channelID string) {
	l.mu.Lock()
	delete(l.locks, channelID)
	l.mu.Unlock()
}
