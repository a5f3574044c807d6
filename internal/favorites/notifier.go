package favorites

import "sync"

// Event reports that a chalet's liked state changed.
type Event struct {
	ChaletID string `json:"chaletId"`
	IsLiked  bool   `json:"isLiked"`
}

// Handler receives published events.
type Handler func(Event)

type subscription struct {
	id      uint64
	handler Handler
}

// Notifier delivers events synchronously to every subscribed handler in registration order.
//
// A handler subscribed from within a handler first receives the next Publish.
// A handler unsubscribed from within a handler is not called again, even for the event being delivered.
type Notifier struct {
	mu     sync.Mutex
	nextID uint64
	subs   []subscription
}

// NewNotifier creates an empty [Notifier].
func NewNotifier() *Notifier {
	return &Notifier{}
}

// Subscribe registers h and returns a function that removes it. The returned function is idempotent.
func (n *Notifier) Subscribe(h Handler) (unsubscribe func()) {
	n.mu.Lock()
	n.nextID++
	id := n.nextID
	n.subs = append(n.subs, subscription{id: id, handler: h})
	n.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { n.remove(id) })
	}
}

func (n *Notifier) remove(id uint64) {
	n.mu.Lock()
	defer n.mu.Unlock()

	for i, s := range n.subs {
		if s.id == id {
			n.subs = append(n.subs[:i:i], n.subs[i+1:]...)
			return
		}
	}
}

// Publish delivers e to the handlers registered at the time of the call that are still subscribed when their turn comes.
func (n *Notifier) Publish(e Event) {
	n.mu.Lock()
	subs := make([]subscription, len(n.subs))
	copy(subs, n.subs)
	n.mu.Unlock()

	for _, s := range subs {
		if n.subscribed(s.id) {
			s.handler(e)
		}
	}
}

func (n *Notifier) subscribed(id uint64) bool {
	n.mu.Lock()
	defer n.mu.Unlock()

	for _, s := range n.subs {
		if s.id == id {
			return true
		}
	}
	return false
}

// Len returns the number of subscribed handlers.
func (n *Notifier) Len() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.subs)
}
