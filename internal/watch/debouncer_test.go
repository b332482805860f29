package watch

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestObserveSetsPending(t *testing.T) {
	d := NewDebouncer(5*time.Second, nil)

	assert.False(t, d.Pending())
	assert.True(t, d.Observe("/data/photos/a.jpg"))
	assert.True(t, d.Pending())
}

func TestObserveIgnoresExcluded(t *testing.T) {
	excluded := func(path string) bool { return strings.Contains(path, ".tmp") }
	d := NewDebouncer(5*time.Second, excluded)

	assert.False(t, d.Observe("/data/photos/upload.tmp"))
	assert.False(t, d.Pending())

	assert.True(t, d.Observe("/data/photos/a.jpg"))
	assert.True(t, d.Pending())
}

func TestDueRequiresPendingChanges(t *testing.T) {
	start := time.Now()
	d := NewDebouncer(5*time.Second, nil)

	assert.False(t, d.Due(start.Add(time.Hour)))
}

func TestDueWaitsForDebounceInterval(t *testing.T) {
	start := time.Now()
	d := NewDebouncer(5*time.Second, nil)
	d.Observe("/data/photos/a.jpg")

	assert.False(t, d.Due(start.Add(time.Second)))
	assert.True(t, d.Pending(), "changes must stay pending until dispatched")

	assert.True(t, d.Due(start.Add(30*time.Second)))
	assert.False(t, d.Pending(), "dispatch must consume the pending state")
}

func TestDueRestartsIntervalAfterDispatch(t *testing.T) {
	start := time.Now()
	d := NewDebouncer(5*time.Second, nil)

	d.Observe("/data/photos/a.jpg")
	dispatched := start.Add(30 * time.Second)
	assert.True(t, d.Due(dispatched))

	d.Observe("/data/photos/b.jpg")
	assert.False(t, d.Due(dispatched.Add(time.Second)))
	assert.True(t, d.Due(dispatched.Add(10*time.Second)))
}

func TestDueCoalescesBurst(t *testing.T) {
	start := time.Now()
	d := NewDebouncer(5*time.Second, nil)

	for i := 0; i < 50; i++ {
		d.Observe("/data/photos/a.jpg")
	}

	assert.True(t, d.Due(start.Add(30*time.Second)))
	assert.False(t, d.Due(start.Add(40*time.Second)), "a burst dispatches exactly once")
}
