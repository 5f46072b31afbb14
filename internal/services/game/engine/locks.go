package engine

import (
	"context"
	"sync"

	"golang.org/x/sync/semaphore"
)

// campaignLocks hands out one weighted semaphore per campaign id and drops it
// once no caller holds or waits for it.
type campaignLocks struct {
	mu    sync.Mutex
	locks map[string]*campaignLock
}

type campaignLock struct {
	sem  *semaphore.Weighted
	refs int
}

func newCampaignLocks() *campaignLocks {
	return &campaignLocks{locks: make(map[string]*campaignLock)}
}

// acquire blocks until campaignID is free or ctx ends.
func (l *campaignLocks) acquire(ctx context.Context, campaignID string) (func(), error) {
	l.mu.Lock()
	lock, ok := l.locks[campaignID]
	if !ok {
		lock = &campaignLock{sem: semaphore.NewWeighted(1)}
		l.locks[campaignID] = lock
	}
	lock.refs++
	l.mu.Unlock()

	if err := lock.sem.Acquire(ctx, 1); err != nil {
		l.release(campaignID, lock)
		return nil, err
	}
	return func() {
		lock.sem.Release(1)
		l.release(campaignID, lock)
	}, nil
}

func (l *campaignLocks) release(campaignID string, lock *campaignLock) {
	l.mu.Lock()
	defer l.mu.Unlock()
	lock.refs--
	if lock.refs == 0 {
		delete(l.locks, campaignID)
	}
}

// size reports how many campaigns currently have a lock entry.
func (l *campaignLocks) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
