package app

import (
	"sync"
	"time"

	"quizzy-service/internal/domain"
)

// leaderboardFeed fans leaderboard snapshots out to subscribers (the live
// websocket stream). Sends never block: a slow subscriber has its stale
// snapshot replaced by the newest one.
type leaderboardFeed struct {
	now func() time.Time

	mu          sync.Mutex
	subscribers map[chan domain.Leaderboard]struct{}
}

func newLeaderboardFeed(now func() time.Time) *leaderboardFeed {
	return &leaderboardFeed{
		now:         now,
		subscribers: make(map[chan domain.Leaderboard]struct{}),
	}
}

func (f *leaderboardFeed) subscribe(initial []domain.LeaderboardEntry) (<-chan domain.Leaderboard, func()) {
	ch := make(chan domain.Leaderboard, 8)

	f.mu.Lock()
	f.subscribers[ch] = struct{}{}
	f.mu.Unlock()

	ch <- domain.Leaderboard{Entries: initial, UpdatedAt: f.now()}

	cancel := func() {
		f.mu.Lock()
		if _, ok := f.subscribers[ch]; ok {
			delete(f.subscribers, ch)
			close(ch)
		}
		f.mu.Unlock()
	}
	return ch, cancel
}

func (f *leaderboardFeed) hasSubscribers() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.subscribers) > 0
}

func (f *leaderboardFeed) publish(entries []domain.LeaderboardEntry) {
	snapshot := domain.Leaderboard{Entries: entries, UpdatedAt: f.now()}

	f.mu.Lock()
	defer f.mu.Unlock()
	for ch := range f.subscribers {
		select {
		case ch <- snapshot:
		default:
			// Drop the stale snapshot so the newest one always fits.
			select {
			case <-ch:
			default:
			}
			ch <- snapshot
		}
	}
}
