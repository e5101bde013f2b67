package output

import (
	"fmt"
	"io"
	"strings"
)

const (
	heavyRule = "═══════════════════════════════════════════════════════════════════════════════"
	lightRule = "───────────────────────────────────────────────────────────────────────────────"
)

// maxPlainRows caps the per-section rows printed in plain mode
const maxPlainRows = 50

// WritePlain formats the output as human-readable plain text
func (j *JSONOutput) WritePlain(w io.Writer) {
	fmt.Fprintf(w, "%s\n", heavyRule)
	fmt.Fprintf(w, "                            bsort Results\n")
	fmt.Fprintf(w, "%s\n\n", heavyRule)

	// General Information
	fmt.Fprintf(w, "📊 OVERVIEW\n")
	fmt.Fprintf(w, "%s\n", lightRule)
	if j.Stats.InputFile != "" {
		fmt.Fprintf(w, "Input File:      %s\n", j.Stats.InputFile)
	}
	fmt.Fprintf(w, "Mode:            %s\n", j.Metadata.Mode)
	fmt.Fprintf(w, "Generated:       %s\n", j.Metadata.GeneratedAt.Format("2006-01-02 15:04:05 MST"))
	fmt.Fprintf(w, "Duration:        %d ms\n", j.Metadata.DurationMS)
	fmt.Fprintf(w, "\n")

	// Parsing and sorting
	fmt.Fprintf(w, "⚡ PERFORMANCE\n")
	fmt.Fprintf(w, "%s\n", lightRule)
	fmt.Fprintf(w, "Records:         %s\n", FormatNumber(j.Stats.TotalRecords))
	fmt.Fprintf(w, "Distinct Keys:   %s\n", FormatNumber(j.Stats.DistinctKeys))
	fmt.Fprintf(w, "Max Key:         %d\n", j.Stats.MaxKey)
	fmt.Fprintf(w, "Buckets:         %s\n", FormatNumber(j.Stats.BucketCount))
	fmt.Fprintf(w, "Parse Time:      %d ms\n", j.Stats.Parsing.DurationMS)
	fmt.Fprintf(w, "Parse Rate:      %s records/sec\n", FormatNumber(int(j.Stats.Parsing.RatePerSecond)))
	if j.Stats.Algorithm != "" {
		fmt.Fprintf(w, "Algorithm:       %s\n", j.Stats.Algorithm)
	}
	fmt.Fprintf(w, "Sort Time:       %d μs\n", j.Stats.SortDurationUS)
	fmt.Fprintf(w, "\n")

	if len(j.Order) > 0 {
		fmt.Fprintf(w, "🔢 ORDER\n")
		fmt.Fprintf(w, "%s\n", lightRule)
		fmt.Fprintf(w, "  %s\n\n", joinInts(j.Order, maxPlainRows))
	}

	if len(j.Records) > 0 {
		fmt.Fprintf(w, "📋 SORTED RECORDS (%d)\n", len(j.Records))
		fmt.Fprintf(w, "...............................................................................\n")
		for i, r := range j.Records {
			if i == maxPlainRows {
				fmt.Fprintf(w, "  ... %d more\n", len(j.Records)-maxPlainRows)
				break
			}
			fmt.Fprintf(w, "  %10d  line %-8d %s\n", r.Key, r.Line, r.Payload)
		}
		fmt.Fprintf(w, "\n")
	}

	if len(j.Counts) > 0 {
		fmt.Fprintf(w, "📍 KEY COUNTS\n")
		fmt.Fprintf(w, "...............................................................................\n")
		for i, kc := range j.Counts {
			if i == maxPlainRows {
				fmt.Fprintf(w, "  ... %d more keys\n", len(j.Counts)-maxPlainRows)
				break
			}
			fmt.Fprintf(w, "  %10d  %10s\n", kc.Key, FormatNumber(kc.Count))
		}
		fmt.Fprintf(w, "\n")
	}

	if len(j.Buckets) > 0 {
		fmt.Fprintf(w, "🪣 BUCKET STARTS\n")
		fmt.Fprintf(w, "%s\n", lightRule)
		fmt.Fprintf(w, "  %s\n\n", joinInts(j.Buckets, maxPlainRows))
	}

	if ls := j.LiveStats; ls != nil {
		fmt.Fprintf(w, "🔍 LIVE WINDOW\n")
		fmt.Fprintf(w, "%s\n", lightRule)
		fmt.Fprintf(w, "Window Size:     %s\n", FormatNumber(ls.WindowSize))
		fmt.Fprintf(w, "Distinct Keys:   %s\n", FormatNumber(ls.DistinctKeys))
		fmt.Fprintf(w, "Batch:           %s\n", FormatNumber(ls.ProcessedBatch))
		fmt.Fprintf(w, "Key Range:       %d - %d\n", ls.MinKey, ls.MaxKey)
		fmt.Fprintf(w, "Sort Time:       %d μs\n", ls.SortDuration)
		for _, kc := range ls.TopKeys {
			fmt.Fprintf(w, "  %10d  %10s\n", kc.Key, FormatNumber(kc.Count))
		}
		fmt.Fprintf(w, "\n")
	}

	// Warnings and Errors
	if len(j.Warnings) > 0 || len(j.Errors) > 0 {
		fmt.Fprintf(w, "⚠️  DIAGNOSTICS\n")
		fmt.Fprintf(w, "%s\n", lightRule)

		if len(j.Warnings) > 0 {
			fmt.Fprintf(w, "Warnings:\n")
			for _, warning := range j.Warnings {
				if warning.Type != "info" { // Skip info messages in plain output
					fmt.Fprintf(w, "  • %s\n", warning.Message)
				}
			}
		}

		if len(j.Errors) > 0 {
			fmt.Fprintf(w, "Errors:\n")
			for _, err := range j.Errors {
				fmt.Fprintf(w, "  • %s\n", err.Message)
			}
		}
		fmt.Fprintf(w, "\n")
	}

	fmt.Fprintf(w, "%s\n", heavyRule)
}

// joinInts renders at most limit values, space separated
func joinInts(values []int, limit int) string {
	var b strings.Builder
	for i, v := range values {
		if i == limit {
			fmt.Fprintf(&b, " ... (+%d)", len(values)-limit)
			break
		}
		if i > 0 {
			b.WriteByte(' ')
		}
		fmt.Fprintf(&b, "%d", v)
	}
	return b.String()
}

// FormatNumber adds thousand separators to numbers
func FormatNumber(n int) string {
	str := fmt.Sprintf("%d", n)
	sign := ""
	if n < 0 {
		sign, str = "-", str[1:]
	}
	if len(str) <= 3 {
		return sign + str
	}

	var result strings.Builder
	result.WriteString(sign)
	for i, digit := range str {
		if i > 0 && (len(str)-i)%3 == 0 {
			result.WriteString(",")
		}
		result.WriteRune(digit)
	}
	return result.String()
}
