package events_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/vytor/codedrill/internal/events"
)

func TestBus_DeliversInSubscriptionOrder(t *testing.T) {
	bus := events.NewBus()
	var got []string

	bus.Subscribe(func(_ context.Context, ev events.Event) { got = append(got, "first:"+ev.Name()) })
	bus.Subscribe(func(_ context.Context, ev events.Event) { got = append(got, "second:"+ev.Name()) })

	bus.Publish(context.Background(), events.BookmarkToggled{ProblemID: 1, UserID: "alice", Bookmarked: true})

	assert.Equal(t, []string{"first:bookmark.toggled", "second:bookmark.toggled"}, got)
}

func TestBus_TypedPayload(t *testing.T) {
	bus := events.NewBus()
	var toggled events.BookmarkToggled

	bus.Subscribe(func(_ context.Context, ev events.Event) {
		if e, ok := ev.(events.BookmarkToggled); ok {
			toggled = e
		}
	})
	bus.Publish(context.Background(), events.CatalogChanged{Reason: "refresh"})
	bus.Publish(context.Background(), events.BookmarkToggled{ProblemID: 7, UserID: "bob", Bookmarked: true})

	assert.Equal(t, events.BookmarkToggled{ProblemID: 7, UserID: "bob", Bookmarked: true}, toggled)
}

func TestBus_Unsubscribe(t *testing.T) {
	bus := events.NewBus()
	calls := 0

	unsubscribe := bus.Subscribe(func(context.Context, events.Event) { calls++ })
	bus.Publish(context.Background(), events.CatalogChanged{})
	unsubscribe()
	unsubscribe()
	bus.Publish(context.Background(), events.CatalogChanged{})

	assert.Equal(t, 1, calls)
}
