package social

import (
	"sync"
)

// Event is one server-sent event pushed to comment stream subscribers.
type Event struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

const (
	EventNewComment     = "new_comment"
	EventDeletedComment = "deleted_comment"
	EventCommentLiked   = "comment_liked"
)

// Broadcaster fans comment events out to the clients watching a content.
type Broadcaster struct {
	mu      sync.RWMutex
	clients map[string]map[chan Event]struct{}
	buffer  int
}

func NewBroadcaster(buffer int) *Broadcaster {
	if buffer <= 0 {
		buffer = 10
	}
	return &Broadcaster{
		clients: make(map[string]map[chan Event]struct{}),
		buffer:  buffer,
	}
}

// Subscribe registers a new client for contentID. The caller must hand the
// channel back to Unsubscribe when the connection ends.
func (b *Broadcaster) Subscribe(contentID string) chan Event {
	ch := make(chan Event, b.buffer)
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.clients[contentID] == nil {
		b.clients[contentID] = make(map[chan Event]struct{})
	}
	b.clients[contentID][ch] = struct{}{}
	return ch
}

func (b *Broadcaster) Unsubscribe(contentID string, ch chan Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	subs, ok := b.clients[contentID]
	if !ok {
		return
	}
	if _, ok := subs[ch]; !ok {
		return
	}
	delete(subs, ch)
	close(ch)
	if len(subs) == 0 {
		delete(b.clients, contentID)
	}
}

// Publish delivers ev to every subscriber of contentID. Slow clients whose
// buffer is full miss the event and it returns how many received it.
func (b *Broadcaster) Publish(contentID string, ev Event) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	sent := 0
	for ch := range b.clients[contentID] {
		select {
		case ch <- ev:
			sent++
		default:
		}
	}
	return sent
}

// Subscribers returns the number of open streams on contentID.
func (b *Broadcaster) Subscribers(contentID string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.clients[contentID])
}
