package matchmaking

import (
	"sort"
	"sync"
	"time"

	"github.com/krendi/telecards/pkg/logging"
	"go.uber.org/zap"
)

// Conn is the write side of a queued participant's connection. The queue
// itself never writes; it only hands the connection back on pairing.
type Conn interface {
	WriteJSON(v any) error
	Close() error
}

// Entry is one waiting participant. Entries are unique per participant id.
type Entry struct {
	ParticipantID string
	Rating        int
	DeckID        string
	Conn          Conn
	EnqueuedAt    time.Time
}

// PairFunc receives both original queue entries of a pairing. It runs
// outside the queue lock and may re-enqueue.
type PairFunc func(a, b Entry)

type Config struct {
	// BaseGap is the allowed rating gap at zero wait; the gap grows by
	// another BaseGap for every WidenEvery of average wait, up to MaxGap.
	BaseGap    int
	MaxGap     int
	WidenEvery time.Duration
	// Interval between periodic pairing passes.
	Interval time.Duration
}

func DefaultConfig() Config {
	return Config{
		BaseGap:    100,
		MaxGap:     500,
		WidenEvery: 5 * time.Second,
		Interval:   3 * time.Second,
	}
}

// Queue pairs waiting participants by rating proximity, widening the
// acceptable gap the longer they wait. All mutating operations are
// serialized behind one mutex; the pairing callback runs unlocked.
type Queue struct {
	cfg    Config
	onPair PairFunc
	now    func() time.Time

	mu      sync.Mutex
	entries []Entry

	stopOnce sync.Once
	stopCh   chan struct{}
}

func NewQueue(cfg Config, onPair PairFunc) *Queue {
	return &Queue{
		cfg:    cfg,
		onPair: onPair,
		now:    time.Now,
		stopCh: make(chan struct{}),
	}
}

// Start launches the periodic pairing pass.
func (q *Queue) Start() {
	go func() {
		ticker := time.NewTicker(q.cfg.Interval)
		defer ticker.Stop()
		for {
			select {
			case <-q.stopCh:
				return
			case <-ticker.C:
				q.TryPair()
			}
		}
	}()
}

func (q *Queue) Stop() {
	q.stopOnce.Do(func() { close(q.stopCh) })
}

// Enqueue adds a participant, replacing any existing entry with the same
// id. A replaced entry keeps its original enqueue timestamp so waiting
// time (and the widened gap it earned) survives a reconnect.
func (q *Queue) Enqueue(e Entry) {
	if e.EnqueuedAt.IsZero() {
		e.EnqueuedAt = q.now()
	}
	q.mu.Lock()
	replaced := false
	for i := range q.entries {
		if q.entries[i].ParticipantID == e.ParticipantID {
			e.EnqueuedAt = q.entries[i].EnqueuedAt
			q.entries[i] = e
			replaced = true
			break
		}
	}
	if !replaced {
		q.entries = append(q.entries, e)
	}
	size := len(q.entries)
	q.mu.Unlock()

	logging.Info("participant queued",
		zap.String("participant_id", e.ParticipantID),
		zap.Int("rating", e.Rating),
		zap.Int("queue_size", size),
	)
	if size >= 2 {
		q.TryPair()
	}
}

// Remove drops the participant's entry if present.
func (q *Queue) Remove(participantID string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for i := range q.entries {
		if q.entries[i].ParticipantID == participantID {
			q.entries = append(q.entries[:i], q.entries[i+1:]...)
			return
		}
	}
}

// RemoveIf drops the participant's entry only while it still holds the
// given connection. A stale handler's cleanup must not evict an entry
// that a newer connection has since replaced.
func (q *Queue) RemoveIf(participantID string, conn Conn) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for i := range q.entries {
		if q.entries[i].ParticipantID == participantID {
			if q.entries[i].Conn == conn {
				q.entries = append(q.entries[:i], q.entries[i+1:]...)
			}
			return
		}
	}
}

func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.entries)
}

// allowedGap computes the acceptable rating gap for a candidate pair from
// their average wait.
func (q *Queue) allowedGap(a, b Entry, now time.Time) int {
	avgWait := (now.Sub(a.EnqueuedAt) + now.Sub(b.EnqueuedAt)) / 2
	steps := int(avgWait / q.cfg.WidenEvery)
	gap := q.cfg.BaseGap + steps*q.cfg.BaseGap
	return min(gap, q.cfg.MaxGap)
}

// TryPair runs one full pairing pass and invokes the callback once per
// matched pair, after all matched entries have left the queue.
func (q *Queue) TryPair() {
	now := q.now()

	q.mu.Lock()
	if len(q.entries) < 2 {
		q.mu.Unlock()
		return
	}
	sort.Slice(q.entries, func(i, j int) bool {
		if q.entries[i].Rating != q.entries[j].Rating {
			return q.entries[i].Rating < q.entries[j].Rating
		}
		return q.entries[i].EnqueuedAt.Before(q.entries[j].EnqueuedAt)
	})

	matched := make(map[int]bool)
	var pairs [][2]Entry
	for i := 0; i < len(q.entries); i++ {
		if matched[i] {
			continue
		}
		for j := i + 1; j < len(q.entries); j++ {
			if matched[j] {
				continue
			}
			a, b := q.entries[i], q.entries[j]
			diff := b.Rating - a.Rating
			if diff < 0 {
				diff = -diff
			}
			if diff <= q.allowedGap(a, b, now) {
				pairs = append(pairs, [2]Entry{a, b})
				matched[i] = true
				matched[j] = true
				break
			}
		}
	}

	if len(matched) > 0 {
		remaining := q.entries[:0:0]
		for i, e := range q.entries {
			if !matched[i] {
				remaining = append(remaining, e)
			}
		}
		q.entries = remaining
	}
	q.mu.Unlock()

	for _, pair := range pairs {
		logging.Info("participants paired",
			zap.String("participant_a", pair[0].ParticipantID),
			zap.String("participant_b", pair[1].ParticipantID),
		)
		q.onPair(pair[0], pair[1])
	}
}
