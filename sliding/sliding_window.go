package sliding

import (
	"time"

	"github.com/alphadose/haxmap"
	"github.com/birc-stormtroopers/bucket-sort/bsort"
	"github.com/birc-stormtroopers/bucket-sort/ingestor"
)

// --- Sliding Window ---

// Window keeps the most recent records, bounded by age and by count.
// KeyCounts tracks how many records in the window carry each key.
type Window struct {
	Queue      []ingestor.Record
	KeyCounts  *haxmap.Map[uint32, int]
	timeLimit  time.Duration
	maxEntries int
	now        func() time.Time
}

func NewWindow(window time.Duration, maxEntries int) *Window {
	return &Window{
		Queue:      make([]ingestor.Record, 0),
		KeyCounts:  haxmap.New[uint32, int](1 << 10),
		timeLimit:  window,
		maxEntries: maxEntries,
		now:        time.Now,
	}
}

func incrementKey(m *haxmap.Map[uint32, int], key uint32) {
	count, _ := m.Get(key)
	m.Set(key, count+1)
}

func decrementKey(m *haxmap.Map[uint32, int], key uint32) {
	count, exists := m.Get(key)
	if !exists {
		return
	}
	count--
	if count <= 0 {
		m.Del(key)
		return
	}
	m.Set(key, count)
}

func (w *Window) InsertNew(records []ingestor.Record) {
	w.Queue = append(w.Queue, records...)
	for _, r := range records {
		incrementKey(w.KeyCounts, r.Key)
	}
}

func (w *Window) DropOld() {
	// enforce time limit
	cutoff := w.now().Add(-w.timeLimit)
	idxTime := 0
	for idxTime < len(w.Queue) && w.Queue[idxTime].Time.Before(cutoff) {
		decrementKey(w.KeyCounts, w.Queue[idxTime].Key)
		idxTime++
	}
	// enforce max entries
	remainingLen := len(w.Queue) - idxTime
	if remainingLen > w.maxEntries {
		toDelete := remainingLen - w.maxEntries
		for idxLen := 0; idxLen < toDelete; idxLen++ {
			decrementKey(w.KeyCounts, w.Queue[idxTime+idxLen].Key)
		}
		idxTime += toDelete
	}

	if idxTime > 0 {
		w.Queue = append([]ingestor.Record(nil), w.Queue[idxTime:]...)
	}
}

func (w *Window) Update(records []ingestor.Record) {
	w.InsertNew(records)
	w.DropOld()
}

// Len returns the number of records currently in the window
func (w *Window) Len() int {
	return len(w.Queue)
}

// DistinctKeys returns the number of different keys in the window
func (w *Window) DistinctKeys() int {
	return int(w.KeyCounts.Len())
}

// Snapshot returns a sorted copy of the window. The window itself keeps
// arrival order so that DropOld can keep evicting from the front.
// With stable set, records with equal keys keep their arrival order.
func (w *Window) Snapshot(stable bool, opts ...bsort.Option) ([]ingestor.Record, error) {
	out := make([]ingestor.Record, len(w.Queue))
	copy(out, w.Queue)

	if !stable {
		if err := bsort.SortInPlace(out, ingestor.RecordKey, opts...); err != nil {
			return nil, err
		}
		return out, nil
	}

	order, err := bsort.ComputeOrderFunc(out, ingestor.RecordKey, opts...)
	if err != nil {
		return nil, err
	}
	if err := bsort.ApplyOrder(out, order); err != nil {
		return nil, err
	}
	return out, nil
}

// Histogram returns counts[k] for every key k up to the largest key in the window.
func (w *Window) Histogram(opts ...bsort.Option) ([]int, error) {
	return bsort.CountKeys(ingestor.Keys(w.Queue), opts...)
}
