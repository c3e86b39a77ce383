package matchmaking

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeConn struct{ id string }

func (fakeConn) WriteJSON(any) error { return nil }
func (fakeConn) Close() error        { return nil }

type pairRecorder struct {
	pairs [][2]Entry
}

func (r *pairRecorder) record(a, b Entry) {
	r.pairs = append(r.pairs, [2]Entry{a, b})
}

func newTestQueue(rec *pairRecorder, at time.Time) *Queue {
	q := NewQueue(DefaultConfig(), rec.record)
	q.now = func() time.Time { return at }
	return q
}

func entry(id string, rating int) Entry {
	return Entry{ParticipantID: id, Rating: rating, Conn: fakeConn{}}
}

func TestEqualRatingsPairImmediately(t *testing.T) {
	rec := &pairRecorder{}
	q := newTestQueue(rec, time.Now())

	q.Enqueue(entry("a", 1000))
	require.Empty(t, rec.pairs)
	q.Enqueue(entry("b", 1000))

	require.Len(t, rec.pairs, 1)
	ids := []string{rec.pairs[0][0].ParticipantID, rec.pairs[0][1].ParticipantID}
	assert.ElementsMatch(t, []string{"a", "b"}, ids)
	assert.Equal(t, 0, q.Len())
}

func TestWideGapNeverPairsBeyondCap(t *testing.T) {
	rec := &pairRecorder{}
	base := time.Now()
	q := newTestQueue(rec, base)

	q.Enqueue(entry("a", 1000))
	q.Enqueue(entry("b", 1600))
	assert.Empty(t, rec.pairs)

	// Even after an hour the 600-point gap exceeds the 500 cap.
	q.now = func() time.Time { return base.Add(time.Hour) }
	q.TryPair()

	assert.Empty(t, rec.pairs)
	assert.Equal(t, 2, q.Len())
}

func TestGapWidensWithWait(t *testing.T) {
	rec := &pairRecorder{}
	base := time.Now()
	q := newTestQueue(rec, base)

	q.Enqueue(entry("a", 1000))
	q.Enqueue(entry("b", 1250))
	require.Empty(t, rec.pairs, "250 apart must not pair at base gap")

	// After 10s of average wait the gap has widened to 300.
	q.now = func() time.Time { return base.Add(10 * time.Second) }
	q.TryPair()

	require.Len(t, rec.pairs, 1)
	assert.Equal(t, 0, q.Len())
}

func TestClosestRatingsPairFirst(t *testing.T) {
	rec := &pairRecorder{}
	q := newTestQueue(rec, time.Now())

	q.Enqueue(entry("low", 1000))
	q.Enqueue(entry("high", 1600))
	q.Enqueue(entry("mid", 1010))

	require.Len(t, rec.pairs, 1)
	ids := []string{rec.pairs[0][0].ParticipantID, rec.pairs[0][1].ParticipantID}
	assert.ElementsMatch(t, []string{"low", "mid"}, ids)
	assert.Equal(t, 1, q.Len())
}

func TestReenqueueKeepsOriginalTimestamp(t *testing.T) {
	rec := &pairRecorder{}
	base := time.Now()
	q := newTestQueue(rec, base)

	q.Enqueue(entry("a", 1000))

	// A reconnecting participant re-enqueues; their wait keeps accruing.
	q.now = func() time.Time { return base.Add(30 * time.Second) }
	q.Enqueue(entry("a", 1000))

	require.Equal(t, 1, q.Len())
	assert.Equal(t, base, q.entries[0].EnqueuedAt)
}

func TestRemoveIfSparesReplacedEntry(t *testing.T) {
	rec := &pairRecorder{}
	q := newTestQueue(rec, time.Now())
	oldConn := fakeConn{id: "old"}
	newConn := fakeConn{id: "new"}

	q.Enqueue(Entry{ParticipantID: "a", Rating: 1000, Conn: oldConn})
	q.Enqueue(Entry{ParticipantID: "a", Rating: 1000, Conn: newConn})
	require.Equal(t, 1, q.Len())

	// The old connection's cleanup must not evict the replacement entry.
	q.RemoveIf("a", oldConn)
	assert.Equal(t, 1, q.Len())

	q.RemoveIf("a", newConn)
	assert.Equal(t, 0, q.Len())
}

func TestRemove(t *testing.T) {
	rec := &pairRecorder{}
	q := newTestQueue(rec, time.Now())

	q.Enqueue(entry("a", 1000))
	q.Remove("a")
	assert.Equal(t, 0, q.Len())

	q.Remove("missing")
	assert.Equal(t, 0, q.Len())
}

func TestAllowedGapSteps(t *testing.T) {
	q := NewQueue(DefaultConfig(), func(a, b Entry) {})
	now := time.Now()

	waiting := func(d time.Duration) Entry {
		return Entry{EnqueuedAt: now.Add(-d)}
	}

	assert.Equal(t, 100, q.allowedGap(waiting(0), waiting(0), now))
	assert.Equal(t, 200, q.allowedGap(waiting(5*time.Second), waiting(5*time.Second), now))
	assert.Equal(t, 300, q.allowedGap(waiting(10*time.Second), waiting(10*time.Second), now))
	assert.Equal(t, 500, q.allowedGap(waiting(time.Hour), waiting(time.Hour), now))
}
