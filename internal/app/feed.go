package app

import (
	"sync"

	"tryout-service/internal/domain"
)

// Feed fans out fresh analytics snapshots to subscribers of a try-out.
// Attempts are append-only, so a snapshot with fewer participants than the
// last one published was computed earlier and is dropped.
type Feed struct {
	mu          sync.Mutex
	subscribers map[string]map[chan domain.Stats]struct{}
	latest      map[string]domain.Stats
}

func NewFeed() *Feed {
	return &Feed{
		subscribers: make(map[string]map[chan domain.Stats]struct{}),
		latest:      make(map[string]domain.Stats),
	}
}

// subscribe registers a channel primed with initial, or with the latest
// published snapshot when that one is newer. The returned cancel closes the
// channel and must be called by the subscriber.
func (f *Feed) subscribe(tryOutID string, initial domain.Stats) (<-chan domain.Stats, func()) {
	ch := make(chan domain.Stats, 8)

	f.mu.Lock()
	if latest, ok := f.latest[tryOutID]; ok && latest.ParticipantCount > initial.ParticipantCount {
		initial = latest
	}
	ch <- initial
	subs, ok := f.subscribers[tryOutID]
	if !ok {
		subs = make(map[chan domain.Stats]struct{})
		f.subscribers[tryOutID] = subs
	}
	subs[ch] = struct{}{}
	f.mu.Unlock()

	cancel := func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		subs := f.subscribers[tryOutID]
		if _, ok := subs[ch]; !ok {
			return
		}
		delete(subs, ch)
		close(ch)
		if len(subs) == 0 {
			delete(f.subscribers, tryOutID)
			delete(f.latest, tryOutID)
		}
	}
	return ch, cancel
}

func (f *Feed) publish(stats domain.Stats) {
	f.mu.Lock()
	defer f.mu.Unlock()
	subs := f.subscribers[stats.TryOutID]
	if len(subs) == 0 {
		return
	}
	if latest, ok := f.latest[stats.TryOutID]; ok && stats.ParticipantCount < latest.ParticipantCount {
		return
	}
	f.latest[stats.TryOutID] = stats
	for ch := range subs {
		select {
		case ch <- stats:
		default:
			// Slow subscriber: drop its oldest snapshot to make room.
			select {
			case <-ch:
			default:
			}
			ch <- stats
		}
	}
}

func (f *Feed) subscriberCount(tryOutID string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.subscribers[tryOutID])
}
