// Package bus provides the Change Bus: a topic-based publish/subscribe
// mechanism that fans out DMX, playback, and preview state changes to
// many concurrent subscribers without letting a slow subscriber block a
// publisher.
package bus

import (
	"sync"
	"sync/atomic"
)

// Topic identifies a class of event on the bus.
type Topic string

const (
	// TopicDMXOutput carries DMXOutputChanged payloads, filtered by universe.
	TopicDMXOutput Topic = "DMX_OUTPUT_CHANGED"
	// TopicCueListPlayback carries CueListPlaybackUpdated payloads, filtered by cue list id.
	TopicCueListPlayback Topic = "CUE_LIST_PLAYBACK_UPDATED"
	// TopicPreviewSession carries PreviewSessionUpdated payloads, filtered by project id.
	TopicPreviewSession Topic = "PREVIEW_SESSION_UPDATED"
)

// DMXOutputChanged is published whenever a universe's effective output
// actually changes while the Output Engine is transmitting at high rate.
type DMXOutputChanged struct {
	Universe int
	Channels [512]byte
}

// CueListPlaybackUpdated reports the current state of one cue list's playback.
type CueListPlaybackUpdated struct {
	CueListID       string
	CurrentIndex    *int
	IsPlaying       bool
	FadeProgress    float64
	CurrentCueID    *string
	NextCueID       *string
	PreviousCueID   *string
	LastUpdated     int64 // unix nanos
	Warnings        []string
}

// PreviewSessionUpdated reports a preview session's lifecycle transitions.
type PreviewSessionUpdated struct {
	SessionID string
	ProjectID string
	IsActive  bool
	CreatedAt int64 // unix nanos
}

// Subscription is a live subscription returned by Subscribe. Messages
// arrive in order on Channel(); call Unsubscribe when done to release it.
type Subscription struct {
	id      uint64
	topic   Topic
	filter  string
	ch      chan any
	dropped atomic.Uint64

	mu     sync.Mutex
	closed bool
}

// Channel returns the delivery channel for this subscription.
func (s *Subscription) Channel() <-chan any { return s.ch }

// Dropped returns the number of messages evicted for this subscriber
// because it could not keep up (bounded-queue overflow).
func (s *Subscription) Dropped() uint64 { return s.dropped.Load() }

// Bus is a topic -> subscribers registry supporting bounded, ordered,
// non-blocking fan-out.
type Bus struct {
	mu          sync.RWMutex
	subscribers map[Topic][]*Subscription
	nextID      uint64
	capacity    int
}

// DefaultCapacity is the default per-subscriber bounded queue size (§4.5).
const DefaultCapacity = 64

// New creates a Bus whose subscriber queues hold DefaultCapacity messages.
func New() *Bus {
	return NewWithCapacity(DefaultCapacity)
}

// NewWithCapacity creates a Bus with a custom per-subscriber queue capacity.
func NewWithCapacity(capacity int) *Bus {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Bus{
		subscribers: make(map[Topic][]*Subscription),
		capacity:    capacity,
	}
}

// Subscribe registers a new subscription for topic, optionally narrowed to
// filter (e.g. a universe number, cue list id, or project id as a string;
// empty matches everything published to the topic).
func (b *Bus) Subscribe(topic Topic, filter string) *Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	sub := &Subscription{
		id:     b.nextID,
		topic:  topic,
		filter: filter,
		ch:     make(chan any, b.capacity),
	}
	b.subscribers[topic] = append(b.subscribers[topic], sub)
	return sub
}

// Unsubscribe releases a subscription and closes its channel. Safe to call
// more than once.
func (b *Bus) Unsubscribe(sub *Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()

	subs := b.subscribers[sub.topic]
	for i, s := range subs {
		if s.id == sub.id {
			b.subscribers[sub.topic] = append(subs[:i], subs[i+1:]...)
			break
		}
	}

	sub.mu.Lock()
	if !sub.closed {
		sub.closed = true
		close(sub.ch)
	}
	sub.mu.Unlock()
}

// Publish sends message to every subscriber of topic whose filter matches
// (empty subscriber filter or empty publish filter matches all). Delivery
// never blocks: a subscriber at capacity has its oldest queued message
// evicted and its drop counter incremented before the new message is
// enqueued, so ordering of the messages that do survive is preserved.
func (b *Bus) Publish(topic Topic, filter string, message any) {
	b.mu.RLock()
	subs := append([]*Subscription(nil), b.subscribers[topic]...)
	b.mu.RUnlock()

	for _, sub := range subs {
		if sub.filter != "" && filter != "" && sub.filter != filter {
			continue
		}
		sub.deliver(message)
	}
}

// deliver enqueues message onto the subscriber's channel, evicting the
// oldest pending message first if the channel is already at capacity.
func (s *Subscription) deliver(message any) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}

	select {
	case s.ch <- message:
		return
	default:
	}

	// Channel full: drop the oldest pending message, then enqueue ours.
	// The channel itself has no "pop front" primitive, so drain one and
	// make a single further send attempt.
	select {
	case <-s.ch:
		s.dropped.Add(1)
	default:
	}

	select {
	case s.ch <- message:
	default:
		// Still full after the drain; count the new message as a drop
		// rather than block the publisher.
		s.dropped.Add(1)
	}
}

// SubscriberCount returns the number of active subscriptions for topic.
func (b *Bus) SubscriberCount(topic Topic) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers[topic])
}
