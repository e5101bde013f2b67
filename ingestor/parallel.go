package ingestor

import (
	"bytes"
	"os"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Files below this size are parsed on a single goroutine
const parallelThreshold = 4 << 20

// DefaultWorkers returns the number of parse workers used when none is configured
func DefaultWorkers() int {
	workers := runtime.NumCPU()
	// parsing is bound by memory bandwidth beyond a handful of cores
	if workers > 8 {
		workers = 8
	}
	return workers
}

// ParseRecordFileParallel reads the records of the file at path, splitting
// large files into line-aligned chunks parsed concurrently. Records and line
// numbers come out exactly as ParseRecordFile would produce them.
// workers <= 0 selects DefaultWorkers.
func ParseRecordFileParallel(path string, workers int, dst []Record) ([]Record, ParseStats, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return dst, ParseStats{}, err
	}
	if workers <= 0 {
		workers = DefaultWorkers()
	}
	if workers == 1 || len(data) < parallelThreshold {
		return ParseRecords(bytes.NewReader(data), dst)
	}
	return parseChunks(data, workers, dst)
}

// splitChunks cuts data into at most n pieces, each ending on a newline
// except possibly the last.
func splitChunks(data []byte, n int) [][]byte {
	if n < 1 {
		n = 1
	}
	size := len(data)/n + 1
	chunks := make([][]byte, 0, n)
	for len(data) > 0 {
		end := size
		if end >= len(data) {
			chunks = append(chunks, data)
			break
		}
		if i := bytes.IndexByte(data[end:], '\n'); i >= 0 {
			end += i + 1
		} else {
			end = len(data)
		}
		chunks = append(chunks, data[:end])
		data = data[end:]
	}
	return chunks
}

func parseChunks(data []byte, workers int, dst []Record) ([]Record, ParseStats, error) {
	chunks := splitChunks(data, workers)

	// every chunk but the last ends on a newline, so its line count is exact
	firstLines := make([]int, len(chunks))
	for i := 1; i < len(chunks); i++ {
		firstLines[i] = firstLines[i-1] + bytes.Count(chunks[i-1], []byte{'\n'})
	}

	parts := make([][]Record, len(chunks))
	stats := make([]ParseStats, len(chunks))
	var g errgroup.Group
	for i, chunk := range chunks {
		g.Go(func() error {
			var err error
			parts[i], stats[i], err = parseRecords(bytes.NewReader(chunk), nil, firstLines[i])
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return dst, ParseStats{}, err
	}

	var total ParseStats
	for i, part := range parts {
		dst = append(dst, part...)
		total.Lines += stats[i].Lines
		total.Skipped += stats[i].Skipped
		total.Malformed += stats[i].Malformed
		if total.FirstError == nil {
			total.FirstError = stats[i].FirstError
		}
	}
	return dst, total, nil
}
