package dynconfig

import "sync"

// ChangeEvent is delivered to a subscriber: either a real change, or a
// Lagged notice when the subscriber's channel was full and a change had
// to be dropped rather than block the publisher (spec §6 ordering
// guarantees: "a subscriber that missed changes ... sees a
// broadcast-lagged error rather than silent loss").
type ChangeEvent struct {
	Change *ConfigChange
	Lagged bool
}

// ChangeNotifier fans ConfigChange events out to bounded-capacity
// subscriber channels. Go has no built-in broadcast channel equivalent to
// tokio::sync::broadcast, so this replicates its semantics with a
// fan-out list under a mutex, grounded on
// original_source/src/core/dynamic_config/watchers/mod.rs's
// ConfigChangeNotifier.
type ChangeNotifier struct {
	capacity int
	mu       sync.Mutex
	subs     []chan ChangeEvent
}

func NewChangeNotifier(capacity int) *ChangeNotifier {
	if capacity <= 0 {
		capacity = 100
	}
	return &ChangeNotifier{capacity: capacity}
}

// Subscribe returns a new receive-only channel that will see every
// Notify call made after this point. The channel holds one slot beyond
// the notifier's capacity, kept free for a Lagged notice.
func (n *ChangeNotifier) Subscribe() <-chan ChangeEvent {
	ch := make(chan ChangeEvent, n.capacity+1)
	n.mu.Lock()
	n.subs = append(n.subs, ch)
	n.mu.Unlock()
	return ch
}

// Notify delivers change to every current subscriber without blocking. A
// subscriber already holding capacity undelivered events receives a Lagged
// event in the reserved slot instead of the change; while that slot is
// still occupied, further changes are dropped until the subscriber drains.
// A Notify call with no subscribers is not an error.
func (n *ChangeNotifier) Notify(change ConfigChange) {
	n.mu.Lock()
	subs := append([]chan ChangeEvent(nil), n.subs...)
	n.mu.Unlock()

	for _, ch := range subs {
		ev := ChangeEvent{Change: &change}
		if len(ch) >= n.capacity {
			ev = ChangeEvent{Lagged: true}
		}
		select {
		case ch <- ev:
		default:
		}
	}
}
