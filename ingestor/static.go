package ingestor

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// ParseStats summarizes one pass over a record source
type ParseStats struct {
	Lines     int
	Skipped   int // blank and comment lines
	Malformed int
	// FirstError is the first malformed line's error, if any
	FirstError error
}

// parseLine reads "key", "key payload" or "key,payload".
func parseLine(line string, out *Record) error {
	line = strings.TrimSpace(line)
	if line == "" {
		return errors.New("empty line")
	}

	end := strings.IndexAny(line, " \t,")
	if end == -1 {
		end = len(line)
	}
	key, err := parseKey(line[:end])
	if err != nil {
		return err
	}
	out.Key = key
	if end < len(line) {
		out.Payload = strings.TrimSpace(line[end+1:])
	}
	return nil
}

// ParseRecords reads one record per line from r, appending to dst.
// Blank lines and lines starting with '#' are skipped; malformed lines are
// counted in the stats and left out.
func ParseRecords(r io.Reader, dst []Record) ([]Record, ParseStats, error) {
	return parseRecords(r, dst, 0)
}

// parseRecords numbers lines starting after firstLine
func parseRecords(r io.Reader, dst []Record, firstLine int) ([]Record, ParseStats, error) {
	var stats ParseStats
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		stats.Lines++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			stats.Skipped++
			continue
		}

		rec := Record{Line: firstLine + stats.Lines}
		if err := parseLine(line, &rec); err != nil {
			stats.Malformed++
			if stats.FirstError == nil {
				stats.FirstError = fmt.Errorf("line %d: %w", rec.Line, err)
			}
			continue
		}
		dst = append(dst, rec)
	}

	if err := scanner.Err(); err != nil {
		return dst, stats, err
	}
	return dst, stats, nil
}

// ParseRecordFile reads the records of the file at path
func ParseRecordFile(path string, dst []Record) ([]Record, ParseStats, error) {
	f, err := os.Open(path)
	if err != nil {
		return dst, ParseStats{}, err
	}
	defer f.Close()

	return ParseRecords(f, dst)
}

// Keys returns the keys of records in order
func Keys(records []Record) []uint32 {
	keys := make([]uint32, len(records))
	for i, r := range records {
		keys[i] = r.Key
	}
	return keys
}
