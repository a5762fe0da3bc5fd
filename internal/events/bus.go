// Package events is the in-process notification channel between services.
// Delivery is synchronous: Publish returns only after every subscriber has
// seen the event, so derived state is rebuilt before the mutating call
// returns to its caller.
package events

import (
	"context"
	"sync"

	"github.com/vytor/codedrill/internal/logger"
	"github.com/vytor/codedrill/internal/models"
)

// Event is implemented by every typed payload below.
type Event interface {
	Name() string
}

// CatalogChanged is published when the problem snapshot is replaced or grows.
type CatalogChanged struct {
	Reason string
}

// BookmarkToggled is published after a bookmark was inserted or removed.
type BookmarkToggled struct {
	ProblemID  int64
	UserID     string
	Bookmarked bool
}

// SubmissionRecorded is published after a graded attempt was appended.
type SubmissionRecorded struct {
	ProblemID int64
	UserID    string
	Status    models.SubmissionStatus
	Completed bool
}

func (CatalogChanged) Name() string     { return "catalog.changed" }
func (BookmarkToggled) Name() string    { return "bookmark.toggled" }
func (SubmissionRecorded) Name() string { return "submission.recorded" }

// Handler receives events. It must not block for long since publishers wait.
type Handler func(ctx context.Context, ev Event)

type subscription struct {
	id int
	fn Handler
}

type Bus struct {
	mu     sync.RWMutex
	nextID int
	subs   []subscription
}

func NewBus() *Bus {
	return &Bus{}
}

// Subscribe registers h and returns a function that removes it again.
func (b *Bus) Subscribe(h Handler) (unsubscribe func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	id := b.nextID
	b.subs = append(b.subs, subscription{id: id, fn: h})

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			for i, s := range b.subs {
				if s.id == id {
					b.subs = append(b.subs[:i:i], b.subs[i+1:]...)
					return
				}
			}
		})
	}
}

// Publish delivers ev to every subscriber in subscription order.
func (b *Bus) Publish(ctx context.Context, ev Event) {
	b.mu.RLock()
	subs := make([]subscription, len(b.subs))
	copy(subs, b.subs)
	b.mu.RUnlock()

	logger.FromContext(ctx).WithPrefix("events").Debug("publishing %s to %d subscribers", ev.Name(), len(subs))
	for _, s := range subs {
		s.fn(ctx, ev)
	}
}
