package autosave

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var epoch = time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

func TestManualClock(t *testing.T) {
	clock := NewManualClock(epoch)
	var order []string

	clock.AfterFunc(2*time.Second, func() { order = append(order, "b") })
	clock.AfterFunc(time.Second, func() { order = append(order, "a") })
	stopped := clock.AfterFunc(time.Second, func() { order = append(order, "never") })
	require.True(t, stopped.Stop())
	require.False(t, stopped.Stop())
	assert.Equal(t, 2, clock.Pending())

	clock.Advance(500 * time.Millisecond)
	assert.Empty(t, order)

	clock.Advance(2 * time.Second)
	assert.Equal(t, []string{"a", "b"}, order)
	assert.Equal(t, epoch.Add(2500*time.Millisecond), clock.Now())
	assert.Zero(t, clock.Pending())
}

func TestDebouncer_CoalescesBursts(t *testing.T) {
	clock := NewManualClock(epoch)
	calls := 0
	d := NewDebouncer(clock, time.Second, func() { calls++ })

	for i := 0; i < 5; i++ {
		d.Trigger()
		clock.Advance(300 * time.Millisecond)
	}
	assert.Zero(t, calls)
	assert.True(t, d.Pending())

	clock.Advance(time.Second)
	assert.Equal(t, 1, calls)
	assert.False(t, d.Pending())

	clock.Advance(10 * time.Second)
	assert.Equal(t, 1, calls)
}

func TestDebouncer_Flush(t *testing.T) {
	clock := NewManualClock(epoch)
	calls := 0
	d := NewDebouncer(clock, time.Second, func() { calls++ })

	d.Flush()
	assert.Zero(t, calls, "flush with nothing pending")

	d.Trigger()
	d.Flush()
	assert.Equal(t, 1, calls)

	clock.Advance(2 * time.Second)
	assert.Equal(t, 1, calls, "flushed call must not run again")
}

func TestDebouncer_CancelAndStop(t *testing.T) {
	clock := NewManualClock(epoch)
	calls := 0
	d := NewDebouncer(clock, time.Second, func() { calls++ })

	d.Trigger()
	d.Cancel()
	clock.Advance(2 * time.Second)
	assert.Zero(t, calls)

	d.Stop()
	d.Trigger()
	clock.Advance(2 * time.Second)
	assert.Zero(t, calls)
	assert.False(t, d.Pending())
}

func TestDebouncer_Defaults(t *testing.T) {
	d := NewDebouncer(nil, 0, func() {})
	assert.Equal(t, DefaultDelay, d.delay)
	assert.IsType(t, SystemClock{}, d.clock)
}

func testStore(t *testing.T, store SnapshotStore) {
	t.Helper()
	ctx := context.Background()

	_, err := store.Load(ctx, DefaultSlot)
	require.ErrorIs(t, err, ErrNoSnapshot)

	require.NoError(t, store.Save(ctx, DefaultSlot, []byte("one")))
	require.NoError(t, store.Save(ctx, DefaultSlot, []byte("two")))
	require.NoError(t, store.Save(ctx, "other", []byte("three")))

	data, err := store.Load(ctx, DefaultSlot)
	require.NoError(t, err)
	assert.Equal(t, "two", string(data))

	require.NoError(t, store.Delete(ctx, DefaultSlot))
	require.NoError(t, store.Delete(ctx, DefaultSlot))
	_, err = store.Load(ctx, DefaultSlot)
	require.ErrorIs(t, err, ErrNoSnapshot)

	data, err = store.Load(ctx, "other")
	require.NoError(t, err)
	assert.Equal(t, "three", string(data))
}

func TestMemoryStore(t *testing.T) {
	store := NewMemoryStore()
	testStore(t, store)
	assert.Equal(t, 3, store.Saves())
}

func TestMemoryStore_CopiesPayload(t *testing.T) {
	store := NewMemoryStore()
	buf := []byte("abc")
	require.NoError(t, store.Save(context.Background(), "s", buf))
	buf[0] = 'x'

	data, err := store.Load(context.Background(), "s")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(data))
}

func TestDirStore(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "snapshots")
	store, err := NewDirStore(dir)
	require.NoError(t, err)
	testStore(t, store)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "other.json", entries[0].Name())
}

func TestDirStore_RejectsBadSlots(t *testing.T) {
	store, err := NewDirStore(t.TempDir())
	require.NoError(t, err)

	for _, slot := range []string{"", "..", "a/b", `a\b`} {
		assert.Error(t, store.Save(context.Background(), slot, []byte("x")), "slot %q", slot)
	}
}
