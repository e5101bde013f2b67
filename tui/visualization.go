package tui

import (
	"fmt"
	"strings"

	"github.com/birc-stormtroopers/bucket-sort/output"
	"github.com/rivo/tview"
)

const (
	barWidth      = 60
	maxKeysPerRow = 1 << 20
)

// HistogramView draws the key histogram as horizontal bars, one row per
// group of keysPerRow consecutive keys.
type HistogramView struct {
	view       *tview.TextView
	counts     []int
	keysPerRow int

	// rendered text per zoom level
	cachedRenderText map[int]string
}

func NewHistogramView(counts []int) *HistogramView {
	v := &HistogramView{
		counts:           counts,
		keysPerRow:       initialKeysPerRow(len(counts)),
		cachedRenderText: make(map[int]string),
	}
	v.view = tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true).
		SetWrap(false)
	v.view.SetBorder(true).SetTitle(" Key Histogram ").SetTitleAlign(tview.AlignCenter)
	return v
}

// initialKeysPerRow picks the smallest power of two that fits the key range
// into roughly one screen of rows.
func initialKeysPerRow(numKeys int) int {
	const rows = 40
	per := 1
	for per < maxKeysPerRow && (numKeys+per-1)/per > rows {
		per <<= 1
	}
	return per
}

func (v *HistogramView) KeysPerRow() int {
	return v.keysPerRow
}

// ZoomIn halves the number of keys per row
func (v *HistogramView) ZoomIn() {
	if v.keysPerRow > 1 {
		v.keysPerRow >>= 1
		v.Render()
	}
}

// ZoomOut doubles the number of keys per row
func (v *HistogramView) ZoomOut() {
	if v.keysPerRow < maxKeysPerRow && v.keysPerRow < len(v.counts) {
		v.keysPerRow <<= 1
		v.Render()
	}
}

func (v *HistogramView) Render() {
	text, ok := v.cachedRenderText[v.keysPerRow]
	if !ok {
		text = renderHistogram(v.counts, v.keysPerRow, barWidth)
		v.cachedRenderText[v.keysPerRow] = text
	}
	v.view.SetText(text)
}

func (v *HistogramView) GetView() *tview.TextView {
	return v.view
}

// groupCounts sums counts over consecutive runs of per keys
func groupCounts(counts []int, per int) []int {
	if per < 1 {
		per = 1
	}
	groups := make([]int, (len(counts)+per-1)/per)
	for k, c := range counts {
		groups[k/per] += c
	}
	return groups
}

// renderHistogram returns tview-colored text with one bar per key group
func renderHistogram(counts []int, per, width int) string {
	if len(counts) == 0 {
		return "[dim]No keys to display[white]"
	}

	groups := groupCounts(counts, per)
	maxCount := 0
	total := 0
	for _, c := range groups {
		total += c
		if c > maxCount {
			maxCount = c
		}
	}

	var content strings.Builder
	fmt.Fprintf(&content, "[white::b]%s records over %d keys, %d keys per row[white::-]\n\n",
		output.FormatNumber(total), len(counts), per)

	for i, c := range groups {
		lo := i * per
		hi := lo + per - 1
		if hi >= len(counts) {
			hi = len(counts) - 1
		}
		label := fmt.Sprintf("%d", lo)
		if hi > lo {
			label = fmt.Sprintf("%d-%d", lo, hi)
		}

		n := 0
		if maxCount > 0 {
			n = c * width / maxCount
		}
		if c > 0 && n == 0 {
			n = 1
		}
		fmt.Fprintf(&content, "%21s │[%s]%s[white]%s %s\n",
			label, barColor(c, maxCount), strings.Repeat("█", n), strings.Repeat(" ", width-n), output.FormatNumber(c))
	}
	return content.String()
}

// barColor shades bars by their share of the fullest row
func barColor(count, maxCount int) string {
	if maxCount == 0 || count == 0 {
		return "#303030"
	}
	intensity := float64(count) / float64(maxCount)
	switch {
	case intensity >= 0.9:
		return "red"
	case intensity >= 0.6:
		return "orange"
	case intensity >= 0.3:
		return "yellow"
	default:
		return "green"
	}
}
