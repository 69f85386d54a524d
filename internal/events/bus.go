package events

// EventKind represents the type of domain event produced by the service layer.
// Add more kinds as board-refresh needs evolve.
type EventKind string

const (
	EventStoryCreated EventKind = "story_created"
	EventStoryMoved   EventKind = "story_moved"
	EventStoryDeleted EventKind = "story_deleted"
	EventTaskCreated  EventKind = "task_created"
	EventTaskAssigned EventKind = "task_assigned"
	EventTaskDeleted  EventKind = "task_deleted"
	EventCommentAdded EventKind = "comment_added"
)

// Event carries the minimum data a board consumer needs. Only IDs are
// carried; consumers query the full record from the store.
type Event struct {
	Kind      EventKind
	ProjectID string
	DocID     string
}

// Bus is a lightweight in-process pub-sub implementation backed by a buffered channel.
type Bus struct {
	ch chan Event
}

// NewBus creates a bus with the given buffer size.
func NewBus(buffer int) *Bus {
	return &Bus{ch: make(chan Event, buffer)}
}

// Publish attempts to enqueue the event without blocking.
// Returns true if published, false if the buffer is full.
func (b *Bus) Publish(evt Event) bool {
	select {
	case b.ch <- evt:
		return true
	default:
		return false
	}
}

// Subscribe returns a read-only channel for consumers.
func (b *Bus) Subscribe() <-chan Event {
	return b.ch
}
