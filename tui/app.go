package tui

import (
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/birc-stormtroopers/bucket-sort/output"
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
)

// App represents the TUI application
type App struct {
	app               *tview.Application
	pages             *tview.Pages
	progressView      *tview.TextView
	resultsView       *tview.Flex
	visualizationView *HistogramView
	statusBar         *tview.TextView

	// Results panels
	summary        *tview.TextView
	records        *tview.TextView
	buckets        *tview.TextView
	diagnostics    *tview.TextView
	focusableItems []tview.Primitive
	panelNames     []string
	currentFocus   int

	inputFile string
	mode      string

	// Shared mutable state protected by mu (accessed from background goroutines)
	mu     sync.Mutex
	result *output.JSONOutput
	counts []int

	analysisComplete atomic.Bool
}

// NewApp creates a TUI for one static run over inputFile
func NewApp(inputFile, mode string) *App {
	app := &App{
		app:       tview.NewApplication(),
		pages:     tview.NewPages(),
		inputFile: inputFile,
		mode:      mode,
	}
	app.setupUI()
	return app
}

// SetResults hands the finished run to the TUI. counts is the dense key
// histogram used by the visualization page and may be nil.
func (a *App) SetResults(result *output.JSONOutput, counts []int) {
	if result == nil {
		a.ShowError("Sort completed but returned no results")
		return
	}

	a.mu.Lock()
	a.result = result
	a.counts = counts
	a.mu.Unlock()

	a.analysisComplete.Store(true)

	a.app.QueueUpdateDraw(func() {
		a.displayResults()
		a.updateStatusBar()
		a.pages.SwitchToPage("results")
	})
}

// ShowError displays an error message in the TUI and stops the progress animation
func (a *App) ShowError(message string) {
	a.app.QueueUpdateDraw(func() {
		a.progressView.SetText(fmt.Sprintf("[red]Error:[white] %s\n\n[yellow]Press 'q' to quit[white]", message))
		a.statusBar.SetText("[red]Sort failed[white] | Press 'q' to quit")
	})
	a.analysisComplete.Store(true)
}

func (a *App) setupUI() {
	a.progressView = tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(false).
		SetWrap(false)
	a.progressView.SetBorder(true).SetTitle(" bsort Progress ").SetTitleAlign(tview.AlignCenter)

	a.resultsView = tview.NewFlex().SetDirection(tview.FlexRow)
	a.setupResultsView()

	a.statusBar = tview.NewTextView().
		SetDynamicColors(true).
		SetText("[yellow]Sorting...[white] | Press 'q' to quit")
	a.statusBar.SetBorder(false)

	main := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(a.progressView, 0, 1, true).
		AddItem(a.statusBar, 1, 0, false)

	results := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(a.resultsView, 0, 1, true).
		AddItem(a.statusBar, 1, 0, false)

	a.pages.AddPage("progress", main, true, true)
	a.pages.AddPage("results", results, true, false)

	a.app.SetInputCapture(a.handleKey)
	a.app.SetRoot(a.pages, true)
}

func (a *App) handleKey(event *tcell.EventKey) *tcell.EventKey {
	switch event.Rune() {
	case 'q', 'Q':
		a.app.Stop()
		return nil
	case 'r', 'R':
		if a.analysisComplete.Load() {
			a.pages.SwitchToPage("results")
			a.updateStatusBar()
		}
		return nil
	case 'v', 'V':
		if a.analysisComplete.Load() {
			a.showVisualization()
		}
		return nil
	}

	frontPageName, _ := a.pages.GetFrontPage()
	if !a.analysisComplete.Load() {
		return event
	}

	switch frontPageName {
	case "results":
		switch event.Key() {
		case tcell.KeyTab:
			a.nextFocus()
			return nil
		case tcell.KeyBacktab:
			a.prevFocus()
			return nil
		case tcell.KeyDown:
			scrollBy(a.getFocusedItem(), 1)
			return nil
		case tcell.KeyUp:
			scrollBy(a.getFocusedItem(), -1)
			return nil
		case tcell.KeyPgDn:
			scrollBy(a.getFocusedItem(), 10)
			return nil
		case tcell.KeyPgUp:
			scrollBy(a.getFocusedItem(), -10)
			return nil
		}
	case "visualization":
		if a.visualizationView == nil {
			return event
		}
		switch event.Key() {
		case tcell.KeyLeft:
			a.visualizationView.ZoomOut()
			a.updateStatusBar()
			return nil
		case tcell.KeyRight:
			a.visualizationView.ZoomIn()
			a.updateStatusBar()
			return nil
		case tcell.KeyUp:
			scrollBy(a.visualizationView.GetView(), -1)
			return nil
		case tcell.KeyDown:
			scrollBy(a.visualizationView.GetView(), 1)
			return nil
		}
	}
	return event
}

// scrollBy moves a text view's scroll offset by delta rows, stopping at the top
func scrollBy(p tview.Primitive, delta int) {
	tv, ok := p.(*tview.TextView)
	if !ok {
		return
	}
	row, col := tv.GetScrollOffset()
	row += delta
	if row < 0 {
		row = 0
	}
	tv.ScrollTo(row, col)
}

func newPanel(title string, scrollable bool) *tview.TextView {
	tv := tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(scrollable)
	tv.SetBorder(true).SetTitle(" " + title + " ").SetTitleAlign(tview.AlignLeft)
	return tv
}

func (a *App) setupResultsView() {
	a.summary = newPanel("Summary", false)
	a.records = newPanel("Sorted Records", true)
	a.buckets = newPanel("Buckets", true)
	a.diagnostics = newPanel("Diagnostics", true)

	a.focusableItems = []tview.Primitive{a.records, a.buckets, a.diagnostics}
	a.panelNames = []string{"Sorted Records", "Buckets", "Diagnostics"}
	a.currentFocus = 0
	a.updateFocusBorders()

	// Layout: Summary on top, then 3 columns for the rest
	topRow := tview.NewFlex().SetDirection(tview.FlexColumn).
		AddItem(a.summary, 0, 1, false)

	bottomRow := tview.NewFlex().SetDirection(tview.FlexColumn).
		AddItem(a.records, 0, 2, false).
		AddItem(a.buckets, 0, 1, false).
		AddItem(a.diagnostics, 0, 1, false)

	a.resultsView.
		AddItem(topRow, 9, 0, false).
		AddItem(bottomRow, 0, 1, false)
}

// Run starts the TUI application
func (a *App) Run() error {
	go a.animateProgress()
	return a.app.Run()
}

func (a *App) animateProgress() {
	stages := []string{
		"[yellow]▶[white] Reading input...",
		"[blue]▶[white] Parsing records...",
		"[cyan]▶[white] Counting keys...",
		"[green]▶[white] Building bucket table...",
		"[magenta]▶[white] Sorting...",
	}

	stageIndex := 0
	dots := 0

	for !a.analysisComplete.Load() {
		stage := stages[stageIndex%len(stages)]
		dotStr := strings.Repeat(".", dots%4)

		content := fmt.Sprintf(`
[white::b]bsort[white::-]

%s%s

[dim]Input file:[white] %s
[dim]Mode:[white] %s

[dim]Press 'q' to quit[white]
`, stage, dotStr, a.inputFile, a.mode)

		a.app.QueueUpdateDraw(func() {
			a.progressView.SetText(content)
		})

		time.Sleep(200 * time.Millisecond)
		dots++

		if dots%20 == 0 {
			stageIndex++
		}
	}
}

func (a *App) displayResults() {
	a.mu.Lock()
	result := a.result
	a.mu.Unlock()
	if result == nil {
		return
	}

	a.summary.SetText(buildSummaryText(result))
	a.records.SetText(buildRecordsText(result))
	a.buckets.SetText(buildBucketsText(result))
	a.diagnostics.SetText(buildDiagnosticsText(result))
}

func (a *App) nextFocus() {
	a.currentFocus = (a.currentFocus + 1) % len(a.focusableItems)
	a.updateFocusBorders()
	a.updateStatusBar()
}

func (a *App) prevFocus() {
	a.currentFocus = (a.currentFocus - 1 + len(a.focusableItems)) % len(a.focusableItems)
	a.updateFocusBorders()
	a.updateStatusBar()
}

func (a *App) getFocusedItem() tview.Primitive {
	if a.currentFocus >= 0 && a.currentFocus < len(a.focusableItems) {
		return a.focusableItems[a.currentFocus]
	}
	return nil
}

func (a *App) updateFocusBorders() {
	for i, item := range a.focusableItems {
		tv, ok := item.(*tview.TextView)
		if !ok {
			continue
		}
		if i == a.currentFocus {
			tv.SetBorderColor(tcell.ColorYellow).SetTitle(" [::b]" + a.panelNames[i] + "[FOCUSED] ")
		} else {
			tv.SetBorderColor(tcell.ColorDefault).SetTitle(" " + a.panelNames[i] + " ")
		}
	}
}

func (a *App) updateStatusBar() {
	if !a.analysisComplete.Load() {
		a.statusBar.SetText("[yellow]Sorting...[white] | 'q' to quit")
		return
	}

	frontPageName, _ := a.pages.GetFrontPage()
	switch frontPageName {
	case "visualization":
		if a.visualizationView != nil {
			a.statusBar.SetText(fmt.Sprintf("[green]Histogram[white] | %d keys per row | ←→: zoom, ↑↓: scroll, 'r': results, 'q': quit",
				a.visualizationView.KeysPerRow()))
		}
	default:
		a.statusBar.SetText(fmt.Sprintf("[green]Sort complete![white] | [yellow]%s[white] focused | Tab/Shift+Tab: panels, ↑↓: scroll, 'v': histogram, 'q': quit",
			a.panelNames[a.currentFocus]))
	}
}

// showVisualization switches to the histogram page, building it on first use
func (a *App) showVisualization() {
	a.mu.Lock()
	counts := a.counts
	a.mu.Unlock()

	if a.visualizationView == nil {
		a.visualizationView = NewHistogramView(counts)
		a.pages.AddPage("visualization", a.visualizationView.GetView(), true, false)
	}
	a.visualizationView.Render()
	a.pages.SwitchToPage("visualization")
	a.updateStatusBar()
}

func buildSummaryText(result *output.JSONOutput) string {
	var b strings.Builder
	s := result.Stats
	fmt.Fprintf(&b, "[yellow]Input:[white] %s   [yellow]Mode:[white] %s   [yellow]Algorithm:[white] %s\n",
		s.InputFile, result.Metadata.Mode, s.Algorithm)
	fmt.Fprintf(&b, "[yellow]Records:[white] %s   [yellow]Distinct keys:[white] %s   [yellow]Max key:[white] %d\n",
		output.FormatNumber(s.TotalRecords), output.FormatNumber(s.DistinctKeys), s.MaxKey)
	fmt.Fprintf(&b, "[yellow]Buckets:[white] %s\n", output.FormatNumber(s.BucketCount))
	fmt.Fprintf(&b, "[yellow]Parse:[white] %d ms (%s records/sec, %d malformed)   [yellow]Sort:[white] %d μs\n",
		s.Parsing.DurationMS, output.FormatNumber(int(s.Parsing.RatePerSecond)), s.Parsing.Malformed, s.SortDurationUS)
	fmt.Fprintf(&b, "[yellow]Total:[white] %d ms", result.Metadata.DurationMS)
	return b.String()
}

func buildRecordsText(result *output.JSONOutput) string {
	var b strings.Builder
	if len(result.Records) == 0 && len(result.Order) == 0 {
		b.WriteString("[dim]No records[white]")
		return b.String()
	}
	for i, r := range result.Records {
		fmt.Fprintf(&b, "[cyan]%6d[white]  key [green]%-10d[white] line %-8d %s\n", i, r.Key, r.Line, tview.Escape(r.Payload))
	}
	if len(result.Records) == 0 {
		for i, idx := range result.Order {
			fmt.Fprintf(&b, "[cyan]%6d[white]  ← input %d\n", i, idx)
		}
	}
	return b.String()
}

func buildBucketsText(result *output.JSONOutput) string {
	if len(result.Counts) == 0 {
		return "[dim]No buckets[white]"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "[::b]%10s %10s %10s[::-]\n", "key", "count", "start")
	for _, kc := range result.Counts {
		start := "-"
		if int(kc.Key) < len(result.Buckets) {
			start = fmt.Sprintf("%d", result.Buckets[kc.Key])
		}
		fmt.Fprintf(&b, "%10d %10s %10s\n", kc.Key, output.FormatNumber(kc.Count), start)
	}
	return b.String()
}

func buildDiagnosticsText(result *output.JSONOutput) string {
	if len(result.Warnings) == 0 && len(result.Errors) == 0 {
		return "[green]No issues detected[white]"
	}
	var b strings.Builder
	for _, w := range result.Warnings {
		fmt.Fprintf(&b, "[yellow]•[white] %s\n", tview.Escape(w.Message))
	}
	for _, e := range result.Errors {
		fmt.Fprintf(&b, "[red]•[white] %s\n", tview.Escape(e.Message))
	}
	return b.String()
}
