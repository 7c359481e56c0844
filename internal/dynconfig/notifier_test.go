package dynconfig

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestChangeNotifierDeliversToAllSubscribers(t *testing.T) {
	n := NewChangeNotifier(4)
	a := n.Subscribe()
	b := n.Subscribe()

	n.Notify(ConfigChange{FieldPath: "cache.max_size_mb", NewValue: "1024", Timestamp: time.Unix(0, 0)})

	for _, ch := range []<-chan ChangeEvent{a, b} {
		select {
		case ev := <-ch:
			require.False(t, ev.Lagged)
			require.Equal(t, "cache.max_size_mb", ev.Change.FieldPath)
		default:
			t.Fatal("expected a buffered event")
		}
	}
}

func TestChangeNotifierSignalsLagOnFullBuffer(t *testing.T) {
	n := NewChangeNotifier(1)
	sub := n.Subscribe()

	n.Notify(ConfigChange{FieldPath: "a"})
	n.Notify(ConfigChange{FieldPath: "b"})

	first := <-sub
	require.False(t, first.Lagged)
	require.Equal(t, "a", first.Change.FieldPath)

	second := <-sub
	require.True(t, second.Lagged)
}

func TestChangeNotifierWithNoSubscribersDoesNotPanic(t *testing.T) {
	n := NewChangeNotifier(1)
	require.NotPanics(t, func() {
		n.Notify(ConfigChange{FieldPath: "x"})
	})
}

func TestNewChangeNotifierDefaultsCapacity(t *testing.T) {
	n := NewChangeNotifier(0)
	require.Equal(t, 100, n.capacity)
}
