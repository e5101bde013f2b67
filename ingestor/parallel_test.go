package ingestor

import (
	"bytes"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func generateInput(n int) []byte {
	r := rand.New(rand.NewSource(int64(n)))
	var b strings.Builder
	for i := 0; i < n; i++ {
		switch r.Intn(20) {
		case 0:
			b.WriteString("# comment\n")
		case 1:
			b.WriteString("\n")
		case 2:
			b.WriteString("not-a-key\n")
		default:
			fmt.Fprintf(&b, "%d payload-%d\n", r.Intn(1000), i)
		}
	}
	return []byte(b.String())
}

func TestSplitChunks(t *testing.T) {
	data := []byte("1\n22\n333\n4444\n55555")
	for n := 1; n <= 8; n++ {
		chunks := splitChunks(data, n)
		if len(chunks) > n {
			t.Errorf("n=%d: got %d chunks", n, len(chunks))
		}
		if got := bytes.Join(chunks, nil); !bytes.Equal(got, data) {
			t.Errorf("n=%d: chunks do not reassemble the input: %q", n, got)
		}
		for i, c := range chunks[:len(chunks)-1] {
			if c[len(c)-1] != '\n' {
				t.Errorf("n=%d: chunk %d does not end on a newline: %q", n, i, c)
			}
		}
	}

	if chunks := splitChunks(nil, 4); len(chunks) != 0 {
		t.Errorf("expected no chunks for empty input, got %d", len(chunks))
	}
}

func TestParseChunksMatchesSequential(t *testing.T) {
	inputs := [][]byte{
		generateInput(5000),
		[]byte("5 a\n3 b\nbad\n5 c"),
		[]byte("\n\n\n"),
	}

	for _, data := range inputs {
		want, wantStats, err := ParseRecords(bytes.NewReader(data), nil)
		if err != nil {
			t.Fatal(err)
		}
		for _, workers := range []int{2, 3, 8} {
			got, stats, err := parseChunks(data, workers, nil)
			if err != nil {
				t.Fatalf("workers=%d: unexpected error: %v", workers, err)
			}
			if len(got) != len(want) {
				t.Fatalf("workers=%d: got %d records, want %d", workers, len(got), len(want))
			}
			for i := range want {
				if got[i] != want[i] {
					t.Fatalf("workers=%d: record %d = %+v, want %+v", workers, i, got[i], want[i])
				}
			}
			if stats.Lines != wantStats.Lines || stats.Skipped != wantStats.Skipped || stats.Malformed != wantStats.Malformed {
				t.Errorf("workers=%d: stats = %+v, want %+v", workers, stats, wantStats)
			}
			if (stats.FirstError == nil) != (wantStats.FirstError == nil) ||
				(stats.FirstError != nil && stats.FirstError.Error() != wantStats.FirstError.Error()) {
				t.Errorf("workers=%d: FirstError = %v, want %v", workers, stats.FirstError, wantStats.FirstError)
			}
		}
	}
}

func TestParseRecordFileParallel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keys.txt")
	data := generateInput(1000)
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}

	want, _, err := ParseRecordFile(path, nil)
	if err != nil {
		t.Fatal(err)
	}
	prefix := []Record{{Key: 99}}
	got, _, err := ParseRecordFileParallel(path, 0, prefix)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != len(want)+1 || got[0].Key != 99 {
		t.Fatalf("expected records appended after the prefix, got %d", len(got))
	}
	for i := range want {
		if got[i+1] != want[i] {
			t.Fatalf("record %d = %+v, want %+v", i, got[i+1], want[i])
		}
	}

	if _, _, err := ParseRecordFileParallel(filepath.Join(t.TempDir(), "missing"), 4, nil); err == nil {
		t.Error("expected error for missing file")
	}
}

func BenchmarkParseChunks(b *testing.B) {
	data := generateInput(200000)
	b.SetBytes(int64(len(data)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, _, err := parseChunks(data, DefaultWorkers(), nil); err != nil {
			b.Fatal(err)
		}
	}
}
