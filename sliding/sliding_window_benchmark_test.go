package sliding

import (
	"math/rand"
	"testing"
	"time"

	"github.com/birc-stormtroopers/bucket-sort/ingestor"
)

// BenchmarkWindowUpdate benchmarks the sliding window under a high load of
// record insertions followed by a sorted snapshot.
// Run with: go test -bench=BenchmarkWindowUpdate -benchmem
func BenchmarkWindowUpdate(b *testing.B) {
	r := rand.New(rand.NewSource(1))
	keys := make([]uint32, 100000)
	for i := range keys {
		keys[i] = uint32(r.Intn(1 << 16))
	}

	batchSize := 1000

	b.ResetTimer() // Start timing after setup
	for i := 0; i < b.N; i++ {
		b.StopTimer()
		w := NewWindow(10*time.Second, 50000)
		batch := make([]ingestor.Record, 0, batchSize)
		b.StartTimer()

		for u := 0; u < len(keys); u++ {
			batch = append(batch, ingestor.Record{Key: keys[u], Time: time.Now()})
			if len(batch) == batchSize {
				w.Update(batch)
				batch = make([]ingestor.Record, 0, batchSize)
			}
		}
		if _, err := w.Snapshot(false); err != nil {
			b.Fatal(err)
		}
	}
}
