package notify

import (
	"reflect"
	"sync"
)

// Handler receives events of type E together with their sender.
type Handler[E any] func(sender any, event E)

// Notifier dispatches typed events to subscribers. Handlers are keyed by the
// event type, run synchronously on the sending goroutine, and in
// subscription order.
type Notifier struct {
	mu       sync.RWMutex
	handlers map[string][]subscriber
	nextID   uint64
}

type subscriber struct {
	id uint64
	fn func(sender any, event any)
}

// New returns an empty Notifier.
func New() *Notifier {
	return &Notifier{
		handlers: make(map[string][]subscriber, 4),
	}
}

// Subscription is returned by Subscribe. Closing it removes the handler.
type Subscription struct {
	n    *Notifier
	key  string
	id   uint64
	once sync.Once
}

// Close removes the handler. It is safe to call more than once.
func (s *Subscription) Close() error {
	if s == nil || s.n == nil {
		return nil
	}
	s.once.Do(func() {
		s.n.remove(s.key, s.id)
	})
	return nil
}

// Subscribe registers h for events of type E.
func Subscribe[E any](n *Notifier, h Handler[E]) *Subscription {
	key := eventKey[E]()

	n.mu.Lock()
	defer n.mu.Unlock()

	n.nextID++
	id := n.nextID
	n.handlers[key] = append(n.handlers[key], subscriber{
		id: id,
		fn: func(sender any, event any) { h(sender, event.(E)) },
	})

	return &Subscription{n: n, key: key, id: id}
}

// Notify sends event to every handler subscribed to E. A nil Notifier
// drops the event.
func Notify[E any](n *Notifier, sender any, event E) {
	if n == nil {
		return
	}
	key := eventKey[E]()

	// Handlers may subscribe or unsubscribe while running, so call a copy.
	n.mu.RLock()
	subs := append([]subscriber(nil), n.handlers[key]...)
	n.mu.RUnlock()

	for _, s := range subs {
		s.fn(sender, event)
	}
}

// Count returns the number of handlers subscribed to E.
func Count[E any](n *Notifier) int {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return len(n.handlers[eventKey[E]()])
}

func (n *Notifier) remove(key string, id uint64) {
	n.mu.Lock()
	defer n.mu.Unlock()

	subs := n.handlers[key]
	for i, s := range subs {
		if s.id == id {
			n.handlers[key] = append(subs[:i:i], subs[i+1:]...)
			break
		}
	}
	if len(n.handlers[key]) == 0 {
		delete(n.handlers, key)
	}
}

func eventKey[E any]() string {
	t := reflect.TypeOf((*E)(nil)).Elem()
	if t.PkgPath() == "" {
		return t.String()
	}
	return t.PkgPath() + "." + t.Name()
}
