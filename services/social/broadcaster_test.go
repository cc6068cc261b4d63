package social

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBroadcasterPublish(t *testing.T) {
	b := NewBroadcaster(1)
	a := b.Subscribe("c1")
	other := b.Subscribe("c2")
	assert.Equal(t, 1, b.Subscribers("c1"))

	assert.Equal(t, 1, b.Publish("c1", Event{Type: EventNewComment}))
	assert.Equal(t, EventNewComment, (<-a).Type)
	assert.Empty(t, other)

	// buffer of one: the second publish is dropped for a client that never reads
	assert.Equal(t, 1, b.Publish("c1", Event{Type: "x"}))
	assert.Equal(t, 0, b.Publish("c1", Event{Type: "y"}))

	b.Unsubscribe("c1", a)
	assert.Equal(t, 0, b.Subscribers("c1"))
	_, open := <-a
	assert.True(t, open)
	_, open = <-a
	assert.False(t, open)

	// unsubscribing twice is harmless
	b.Unsubscribe("c1", a)
	b.Unsubscribe("c2", other)
}
