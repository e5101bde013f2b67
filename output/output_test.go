package output

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/birc-stormtroopers/bucket-sort/ingestor"
)

func TestJSONOutput_ToJSON_RoundTrip(t *testing.T) {
	startTime := time.Now()
	out := NewJSONOutput("stable", startTime)

	out.Metadata.Version = "2.0.0"
	out.Stats = Stats{
		InputFile:      "/data/keys.txt",
		TotalRecords:   6,
		DistinctKeys:   4,
		MaxKey:         3,
		BucketCount:    4,
		Algorithm:      "counting",
		SortDurationUS: 12,
		Parsing: Parsing{
			DurationMS:    1,
			RatePerSecond: 6000,
			Lines:         7,
			Skipped:       1,
		},
	}
	out.Order = []int{3, 1, 5, 4, 0, 2}
	out.SetRecords([]ingestor.Record{
		{Key: 0, Payload: "d", Line: 4},
		{Key: 1, Payload: "b", Line: 2},
	})
	out.Counts = KeyCounts([]int{1, 2, 1, 2})
	out.Buckets = []int{0, 1, 3, 4}
	out.AddWarning("parse_error", "some lines failed to parse", 42)

	data, err := out.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON() error: %v", err)
	}

	var restored JSONOutput
	if err := json.Unmarshal(data, &restored); err != nil {
		t.Fatalf("Unmarshal error: %v", err)
	}

	if restored.Metadata.Mode != "stable" {
		t.Errorf("Mode = %q, want %q", restored.Metadata.Mode, "stable")
	}
	if restored.Metadata.Version != "2.0.0" {
		t.Errorf("Version = %q, want %q", restored.Metadata.Version, "2.0.0")
	}
	if restored.Stats.TotalRecords != 6 || restored.Stats.MaxKey != 3 || restored.Stats.Algorithm != "counting" {
		t.Errorf("Stats = %+v", restored.Stats)
	}
	if restored.Stats.Parsing.Lines != 7 || restored.Stats.Parsing.Skipped != 1 {
		t.Errorf("Parsing = %+v", restored.Stats.Parsing)
	}
	if fmt.Sprint(restored.Order) != "[3 1 5 4 0 2]" {
		t.Errorf("Order = %v", restored.Order)
	}
	if len(restored.Records) != 2 || restored.Records[1].Payload != "b" || restored.Records[1].Line != 2 {
		t.Errorf("Records = %+v", restored.Records)
	}
	if len(restored.Counts) != 4 || restored.Counts[3].Key != 3 || restored.Counts[3].Count != 2 {
		t.Errorf("Counts = %+v", restored.Counts)
	}
	if len(restored.Warnings) != 1 || restored.Warnings[0].Count != 42 {
		t.Errorf("Warnings = %+v", restored.Warnings)
	}

	compact, err := out.ToCompactJSON()
	if err != nil {
		t.Fatalf("ToCompactJSON() error: %v", err)
	}
	if bytes.Contains(compact, []byte("\n")) {
		t.Error("compact JSON should not contain newlines")
	}
	var restoredCompact JSONOutput
	if err := json.Unmarshal(compact, &restoredCompact); err != nil {
		t.Fatalf("Unmarshal compact error: %v", err)
	}
	if restoredCompact.Stats.TotalRecords != 6 {
		t.Errorf("compact TotalRecords = %d, want 6", restoredCompact.Stats.TotalRecords)
	}
}

func TestJSONOutput_OmitsEmptySections(t *testing.T) {
	out := NewJSONOutput("count", time.Now())
	data, err := out.ToCompactJSON()
	if err != nil {
		t.Fatalf("ToCompactJSON() error: %v", err)
	}
	for _, field := range []string{`"order"`, `"records"`, `"counts"`, `"buckets"`, `"live_stats"`} {
		if bytes.Contains(data, []byte(field)) {
			t.Errorf("expected %s to be omitted, got %s", field, data)
		}
	}
	if !bytes.Contains(data, []byte(`"warnings":[]`)) {
		t.Errorf("expected empty warnings array, got %s", data)
	}
}

func TestJSONOutput_AddWarning_Concurrent(t *testing.T) {
	out := NewJSONOutput("live", time.Now())

	const goroutines = 10
	var wg sync.WaitGroup
	wg.Add(goroutines)
	for i := 0; i < goroutines; i++ {
		go func(id int) {
			defer wg.Done()
			out.AddWarning("concurrent", fmt.Sprintf("warning from goroutine %d", id), id)
		}(i)
	}
	wg.Wait()

	if len(out.Warnings) != goroutines {
		t.Errorf("len(Warnings) = %d, want %d", len(out.Warnings), goroutines)
	}

	seen := make(map[int]bool)
	for _, w := range out.Warnings {
		seen[w.Count] = true
	}
	for i := 0; i < goroutines; i++ {
		if !seen[i] {
			t.Errorf("missing warning from goroutine %d", i)
		}
	}
}

func TestJSONOutput_AddError_Concurrent(t *testing.T) {
	out := NewJSONOutput("live", time.Now())

	const goroutines = 10
	var wg sync.WaitGroup
	wg.Add(goroutines)
	for i := 0; i < goroutines; i++ {
		go func(id int) {
			defer wg.Done()
			out.AddError("concurrent", fmt.Sprintf("error from goroutine %d", id), id)
		}(i)
	}
	wg.Wait()

	if len(out.Errors) != goroutines {
		t.Errorf("len(Errors) = %d, want %d", len(out.Errors), goroutines)
	}
}

func TestKeyCounts(t *testing.T) {
	got := KeyCounts([]int{0, 3, 0, 1})
	want := []KeyCount{{Key: 1, Count: 3}, {Key: 3, Count: 1}}
	if len(got) != len(want) {
		t.Fatalf("KeyCounts = %+v, want %+v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("KeyCounts[%d] = %+v, want %+v", i, got[i], want[i])
		}
	}
	if KeyCounts(nil) != nil {
		t.Error("expected nil for empty histogram")
	}
}

func TestTopKeys(t *testing.T) {
	counts := []KeyCount{
		{Key: 0, Count: 2},
		{Key: 1, Count: 5},
		{Key: 2, Count: 2},
		{Key: 3, Count: 7},
		{Key: 4, Count: 1},
	}
	tests := []struct {
		name string
		n    int
		want []KeyCount
	}{
		{name: "top two", n: 2, want: []KeyCount{{3, 7}, {1, 5}}},
		{name: "ties keep smaller key first", n: 4, want: []KeyCount{{3, 7}, {1, 5}, {0, 2}, {2, 2}}},
		{name: "more than available", n: 10, want: []KeyCount{{3, 7}, {1, 5}, {0, 2}, {2, 2}, {4, 1}}},
		{name: "zero", n: 0, want: nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TopKeys(counts, tt.n)
			if len(got) != len(tt.want) {
				t.Fatalf("TopKeys = %+v, want %+v", got, tt.want)
			}
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Errorf("TopKeys[%d] = %+v, want %+v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestWritePlain(t *testing.T) {
	out := NewJSONOutput("sort", time.Now())
	out.Stats = Stats{InputFile: "/data/keys.txt", TotalRecords: 1234567, MaxKey: 9}
	out.SetRecords([]ingestor.Record{{Key: 9, Payload: "nine", Line: 1}})
	out.Counts = KeyCounts([]int{0, 0, 0, 0, 0, 0, 0, 0, 0, 1})
	out.AddWarning("info", "hidden info", 0)
	out.AddWarning("bucket_limit", "fell back to radix order", 1)

	var buf bytes.Buffer
	out.WritePlain(&buf)
	text := buf.String()

	for _, want := range []string{"/data/keys.txt", "1,234,567", "nine", "fell back to radix order", "SORTED RECORDS (1)"} {
		if !strings.Contains(text, want) {
			t.Errorf("plain output missing %q", want)
		}
	}
	if strings.Contains(text, "hidden info") {
		t.Error("info warnings should not be printed in plain output")
	}
}

func TestJoinInts(t *testing.T) {
	if got := joinInts([]int{1, 2, 3}, 10); got != "1 2 3" {
		t.Errorf("joinInts = %q", got)
	}
	if got := joinInts([]int{1, 2, 3}, 2); got != "1 2 ... (+1)" {
		t.Errorf("joinInts truncated = %q", got)
	}
}

func TestPlotHistogram(t *testing.T) {
	path := filepath.Join(t.TempDir(), "histogram.html")
	if err := PlotHistogram([]int{1, 0, 4, 2}, path); err != nil {
		t.Fatalf("PlotHistogram() error: %v", err)
	}
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read histogram: %v", err)
	}
	if !bytes.Contains(content, []byte("Records per Key")) {
		t.Error("expected chart title in rendered page")
	}

	if err := PlotHistogram(nil, path); err == nil {
		t.Error("expected error for empty histogram")
	}
	if err := PlotHistogram([]int{1}, filepath.Join(t.TempDir(), "missing", "h.html")); err == nil {
		t.Error("expected error for unwritable path")
	}
}

func TestFormatNumber(t *testing.T) {
	tests := []struct {
		input int
		want  string
	}{
		{0, "0"},
		{1, "1"},
		{999, "999"},
		{1000, "1,000"},
		{1234567, "1,234,567"},
		{-1234, "-1,234"},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d", tt.input), func(t *testing.T) {
			got := FormatNumber(tt.input)
			if got != tt.want {
				t.Errorf("FormatNumber(%d) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func BenchmarkFormatNumber(b *testing.B) {
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		FormatNumber(1234567)
	}
}

func BenchmarkToJSON(b *testing.B) {
	out := NewJSONOutput("sort", time.Now())
	records := make([]ingestor.Record, 10000)
	for i := range records {
		records[i] = ingestor.Record{Key: uint32(i % 100), Payload: "payload", Line: i + 1}
	}
	out.SetRecords(records)
	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		out.ToJSON()
	}
}

func BenchmarkAddWarning(b *testing.B) {
	out := NewJSONOutput("live", time.Now())
	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		out.AddWarning("bench", "benchmark warning", 1)
	}
}
