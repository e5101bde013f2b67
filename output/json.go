package output

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/birc-stormtroopers/bucket-sort/ingestor"
	"github.com/birc-stormtroopers/bucket-sort/version"
)

// JSONOutput represents the complete result of one sort run
type JSONOutput struct {
	Metadata  Metadata   `json:"metadata"`
	Stats     Stats      `json:"stats"`
	Order     []int      `json:"order,omitempty"`
	Records   []Record   `json:"records,omitempty"`
	Counts    []KeyCount `json:"counts,omitempty"`
	Buckets   []int      `json:"buckets,omitempty"`
	LiveStats *LiveStats `json:"live_stats,omitempty"`
	Warnings  []Warning  `json:"warnings"`
	Errors    []Error    `json:"errors"`

	// Mutex for thread-safe warning/error appending
	mu sync.Mutex `json:"-"`
}

// Metadata contains information about the run
type Metadata struct {
	GeneratedAt time.Time `json:"generated_at"`
	Mode        string    `json:"mode"`
	Version     string    `json:"version"`
	DurationMS  int64     `json:"duration_ms"`
}

// Stats describes the input and the sort that ran over it
type Stats struct {
	InputFile      string  `json:"input_file,omitempty"`
	TotalRecords   int     `json:"total_records"`
	DistinctKeys   int     `json:"distinct_keys"`
	MaxKey         uint32  `json:"max_key"`
	BucketCount    int     `json:"bucket_count"`
	Algorithm      string  `json:"algorithm,omitempty"`
	SortDurationUS int64   `json:"sort_duration_us"`
	Parsing        Parsing `json:"parsing"`
}

// Parsing contains parsing performance metrics
type Parsing struct {
	DurationMS    int64 `json:"duration_ms"`
	RatePerSecond int64 `json:"rate_per_second"`
	Lines         int   `json:"lines"`
	Skipped       int   `json:"skipped,omitempty"`
	Malformed     int   `json:"malformed,omitempty"`
}

// Record is one sorted record as written to the output
type Record struct {
	Key     uint32 `json:"key"`
	Payload string `json:"payload,omitempty"`
	Line    int    `json:"line,omitempty"`
}

// KeyCount is the number of records carrying Key
type KeyCount struct {
	Key   uint32 `json:"key"`
	Count int    `json:"count"`
}

// Warning represents a warning message
type Warning struct {
	Type    string `json:"type"`
	Message string `json:"message"`
	Count   int    `json:"count,omitempty"`
}

// Error represents an error message
type Error struct {
	Type    string `json:"type"`
	Message string `json:"message"`
	Count   int    `json:"count,omitempty"`
}

// LiveStats contains statistics for one live iteration
type LiveStats struct {
	WindowSize     int        `json:"window_size"`
	DistinctKeys   int        `json:"distinct_keys"`
	ProcessedBatch int        `json:"processed_batch"`
	LoopDuration   int64      `json:"loop_duration_ms"`
	SortDuration   int64      `json:"sort_duration_us"`
	MinKey         uint32     `json:"min_key"`
	MaxKey         uint32     `json:"max_key"`
	TopKeys        []KeyCount `json:"top_keys"`
}

// NewJSONOutput creates a new JSONOutput with default metadata
func NewJSONOutput(mode string, startTime time.Time) *JSONOutput {
	return &JSONOutput{
		Metadata: Metadata{
			GeneratedAt: time.Now().UTC(),
			Mode:        mode,
			Version:     version.Version,
			DurationMS:  time.Since(startTime).Milliseconds(),
		},
		Warnings: []Warning{},
		Errors:   []Error{},
	}
}

// ToJSON converts the output to pretty-printed JSON
func (j *JSONOutput) ToJSON() ([]byte, error) {
	return json.MarshalIndent(j, "", "  ")
}

// ToCompactJSON converts the output to compact JSON
func (j *JSONOutput) ToCompactJSON() ([]byte, error) {
	return json.Marshal(j)
}

// AddWarning adds a warning to the output (thread-safe)
func (j *JSONOutput) AddWarning(warningType, message string, count int) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Warnings = append(j.Warnings, Warning{
		Type:    warningType,
		Message: message,
		Count:   count,
	})
}

// AddError adds an error to the output (thread-safe)
func (j *JSONOutput) AddError(errorType, message string, count int) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Errors = append(j.Errors, Error{
		Type:    errorType,
		Message: message,
		Count:   count,
	})
}

// SetRecords copies sorted records into the output
func (j *JSONOutput) SetRecords(records []ingestor.Record) {
	j.Records = make([]Record, len(records))
	for i, r := range records {
		j.Records[i] = Record{Key: r.Key, Payload: r.Payload, Line: r.Line}
	}
}

// UpdateDuration updates the duration in metadata
func (j *JSONOutput) UpdateDuration(startTime time.Time) {
	j.Metadata.DurationMS = time.Since(startTime).Milliseconds()
}

// KeyCounts turns a dense histogram into (key, count) pairs for the keys
// that occur, in ascending key order.
func KeyCounts(counts []int) []KeyCount {
	var out []KeyCount
	for k, c := range counts {
		if c > 0 {
			out = append(out, KeyCount{Key: uint32(k), Count: c})
		}
	}
	return out
}

// TopKeys returns the n most frequent keys, most frequent first.
// Ties go to the smaller key.
func TopKeys(counts []KeyCount, n int) []KeyCount {
	if n <= 0 {
		return nil
	}
	top := make([]KeyCount, 0, n)
	for _, kc := range counts {
		pos := len(top)
		for pos > 0 && top[pos-1].Count < kc.Count {
			pos--
		}
		if pos >= n {
			continue
		}
		if len(top) < n {
			top = append(top, KeyCount{})
		}
		copy(top[pos+1:], top[pos:len(top)-1])
		top[pos] = kc
	}
	return top
}
