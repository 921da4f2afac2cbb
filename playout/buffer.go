package playout

import (
	"container/heap"
	"context"

	"github.com/moqtail/moqt-go/clock"
	"github.com/moqtail/moqt-go/internal/asynclock"
	"github.com/moqtail/moqt-go/internal/telemetry"
	"github.com/moqtail/moqt-go/object"
)

// DefaultCapacity is used when Config.Capacity is zero or negative.
const DefaultCapacity = 256

// targetFillRatio is the fraction of capacity eviction aims to leave
// occupied after dropping GOPs.
const targetFillRatio = 0.7

// maxGroupsDroppedPerEviction bounds how many GOPs a single eviction pass
// will remove before falling back to per-object dropping.
const maxGroupsDroppedPerEviction = 3

// Config holds a Buffer's capacity and latency policy.
type Config struct {
	Capacity        int
	TargetLatencyMs int64 // advisory; this module does not police it directly
	MaxLatencyMs    int64 // enforced: forces eviction when exceeded
}

// Buffer is a single-producer, single-consumer pull playout buffer: a
// background pump pulls MoqtObjects off source and stages them in a
// Location-ordered min-heap; NextObject pulls them back out in
// non-decreasing Location order, evicting GOPs under memory pressure.
type Buffer struct {
	cfg Config
	clk clock.Source
	tel *telemetry.Counters

	mu        asynclock.Mutex
	h         objectHeap
	exhausted bool
	closed    bool

	arrived chan struct{} // buffered(1); signaled on push, exhaustion, or Cleanup
	cancel  context.CancelFunc
}

// New starts a Buffer pulling from source until it closes, ctx is
// cancelled, or Cleanup is called.
func New(ctx context.Context, source <-chan object.MoqtObject, cfg Config, clk clock.Source, tel *telemetry.Counters) *Buffer {
	if cfg.Capacity <= 0 {
		cfg.Capacity = DefaultCapacity
	}
	if clk == nil {
		clk = clock.System{}
	}
	if tel == nil {
		tel = &telemetry.Counters{}
	}
	pumpCtx, cancel := context.WithCancel(ctx)
	b := &Buffer{
		cfg:     cfg,
		clk:     clk,
		tel:     tel,
		arrived: make(chan struct{}, 1),
		cancel:  cancel,
	}
	go b.pump(pumpCtx, source)
	return b
}

func (b *Buffer) pump(ctx context.Context, source <-chan object.MoqtObject) {
	defer b.markExhausted()
	for {
		select {
		case <-ctx.Done():
			return
		case obj, ok := <-source:
			if !ok {
				return
			}
			b.push(obj)
		}
	}
}

func (b *Buffer) signalArrived() {
	select {
	case b.arrived <- struct{}{}:
	default:
	}
}

func (b *Buffer) markExhausted() {
	_ = b.mu.Lock(context.Background())
	b.exhausted = true
	b.mu.Unlock()
	b.signalArrived()
}

func (b *Buffer) push(obj object.MoqtObject) {
	now := b.clk.NowMs()
	_ = b.mu.Lock(context.Background())
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	heap.Push(&b.h, entry{obj: obj, enqueuedAtMs: now})
	b.tel.IncObjectsPushed()
	if len(b.h) > b.cfg.Capacity {
		b.evictLocked()
	} else {
		b.checkMaxLatencyLocked(now)
	}
	b.signalArrived()
}

// NextObject blocks until an object is available, the source is
// exhausted, the buffer is cleaned up, or ctx is done. ok is false on
// exhaustion or cleanup; exhaustion reports a nil error, cleanup reports
// ErrClosed, and ctx expiring reports ctx.Err().
func (b *Buffer) NextObject(ctx context.Context) (obj object.MoqtObject, ok bool, err error) {
	for {
		if lockErr := b.mu.Lock(ctx); lockErr != nil {
			return object.MoqtObject{}, false, lockErr
		}
		if len(b.h) > 0 {
			e := heap.Pop(&b.h).(entry)
			b.mu.Unlock()
			return e.obj, true, nil
		}
		closed := b.closed
		exhausted := b.exhausted
		b.mu.Unlock()
		if closed {
			return object.MoqtObject{}, false, ErrClosed
		}
		if exhausted {
			return object.MoqtObject{}, false, nil
		}
		select {
		case <-b.arrived:
		case <-ctx.Done():
			return object.MoqtObject{}, false, ctx.Err()
		}
	}
}

// HasObjectReady is a non-blocking probe for at least one buffered object.
func (b *Buffer) HasObjectReady() bool {
	_ = b.mu.Lock(context.Background())
	defer b.mu.Unlock()
	return len(b.h) > 0
}

// Cleanup stops the background pump and discards buffered objects; a
// concurrently blocked NextObject returns (zero, false, ErrClosed).
func (b *Buffer) Cleanup() {
	b.cancel()
	_ = b.mu.Lock(context.Background())
	b.closed = true
	b.h = nil
	b.mu.Unlock()
	b.signalArrived()
}

// evictLocked implements spec's eviction policy: group by Location.Group
// (GOPs), drop the oldest group entirely, repeat up to
// maxGroupsDroppedPerEviction times or until size <= 70% of capacity; if
// zero groups could be dropped, fall back to dropping the oldest 20% of
// objects individually. Caller must hold mu.
func (b *Buffer) evictLocked() {
	target := int(float64(b.cfg.Capacity) * targetFillRatio)
	groupsDropped := 0
	for len(b.h) > target && groupsDropped < maxGroupsDroppedPerEviction {
		group, found := b.oldestGroupLocked()
		if !found {
			break
		}
		dropped := b.dropGroupLocked(group)
		if dropped == 0 {
			break
		}
		groupsDropped++
		b.tel.IncObjectsEvicted(int64(dropped))
	}
	if groupsDropped == 0 && len(b.h) > target {
		n := len(b.h) / 5
		if n == 0 {
			n = 1
		}
		b.dropOldestNLocked(n)
	}
}

// checkMaxLatencyLocked forces a GOP eviction pass when the oldest staged
// object has exceeded MaxLatencyMs, independent of capacity pressure.
func (b *Buffer) checkMaxLatencyLocked(nowMs int64) {
	if b.cfg.MaxLatencyMs <= 0 || len(b.h) == 0 {
		return
	}
	oldest := b.h[0].enqueuedAtMs
	for _, e := range b.h[1:] {
		if e.enqueuedAtMs < oldest {
			oldest = e.enqueuedAtMs
		}
	}
	if nowMs-oldest > b.cfg.MaxLatencyMs {
		b.evictLocked()
	}
}

func (b *Buffer) oldestGroupLocked() (uint64, bool) {
	if len(b.h) == 0 {
		return 0, false
	}
	min := b.h[0].obj.Location.Group
	for _, e := range b.h[1:] {
		if e.obj.Location.Group < min {
			min = e.obj.Location.Group
		}
	}
	return min, true
}

func (b *Buffer) dropGroupLocked(group uint64) int {
	orig := b.h
	kept := orig[:0]
	dropped := 0
	for _, e := range orig {
		if e.obj.Location.Group == group {
			dropped++
			continue
		}
		kept = append(kept, e)
	}
	b.h = kept
	heap.Init(&b.h)
	return dropped
}

func (b *Buffer) dropOldestNLocked(n int) int {
	dropped := 0
	for i := 0; i < n && len(b.h) > 0; i++ {
		heap.Pop(&b.h)
		dropped++
	}
	b.tel.IncObjectsEvicted(int64(dropped))
	return dropped
}

// Len reports the number of objects currently buffered.
func (b *Buffer) Len() int {
	_ = b.mu.Lock(context.Background())
	defer b.mu.Unlock()
	return len(b.h)
}
