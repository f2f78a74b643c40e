// Package reporting renders solutions, comparisons and verification results
// as text, markdown, HTML, JUnit XML and JSON results files.
package reporting

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/spboyer/loadout/internal/models"
	"github.com/spboyer/loadout/internal/orchestration"
)

const ruleWidth = 70

// truncateName shortens a name to maxLen cells, replacing the tail with "…" if needed.
func truncateName(name string, maxLen int) string {
	if runewidth.StringWidth(name) <= maxLen {
		return name
	}
	return runewidth.Truncate(name, maxLen, "…")
}

// padRight pads s with spaces so its terminal display width reaches width.
func padRight(s string, width int) string {
	sw := runewidth.StringWidth(s)
	if sw >= width {
		return s
	}
	return s + strings.Repeat(" ", width-sw)
}

// padLeft right-aligns s within width display cells.
func padLeft(s string, width int) string {
	sw := runewidth.StringWidth(s)
	if sw >= width {
		return s
	}
	return strings.Repeat(" ", width-sw) + s
}

// table is a minimal column-aligned text table.
type table struct {
	headers []string
	right   []bool
	rows    [][]string
}

func newTable(headers ...string) *table {
	return &table{headers: headers, right: make([]bool, len(headers))}
}

func (t *table) alignRight(cols ...int) *table {
	for _, c := range cols {
		t.right[c] = true
	}
	return t
}

func (t *table) add(cells ...string) {
	t.rows = append(t.rows, cells)
}

func (t *table) write(w io.Writer) {
	widths := make([]int, len(t.headers))
	for i, h := range t.headers {
		widths[i] = runewidth.StringWidth(h)
	}
	for _, row := range t.rows {
		for i, cell := range row {
			widths[i] = max(widths[i], runewidth.StringWidth(cell))
		}
	}

	line := func(cells []string) {
		parts := make([]string, len(cells))
		for i, cell := range cells {
			if t.right[i] {
				parts[i] = padLeft(cell, widths[i])
			} else {
				parts[i] = padRight(cell, widths[i])
			}
		}
		fmt.Fprintf(w, "  %s\n", strings.TrimRight(strings.Join(parts, "  "), " ")) //nolint:errcheck
	}

	line(t.headers)
	sep := make([]string, len(widths))
	for i, wd := range widths {
		sep[i] = strings.Repeat("-", wd)
	}
	line(sep)
	for _, row := range t.rows {
		line(row)
	}
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatLimit(c models.Container) string {
	if !c.HasMaxItems() {
		return "unlimited"
	}
	return strconv.Itoa(*c.MaxItems)
}

func banner(w io.Writer, title string) {
	fmt.Fprintln(w, strings.Repeat("=", ruleWidth)) //nolint:errcheck
	fmt.Fprintf(w, " %s\n", title)                  //nolint:errcheck
	fmt.Fprintln(w, strings.Repeat("=", ruleWidth)) //nolint:errcheck
}

func section(w io.Writer, title string) {
	fmt.Fprintln(w, strings.Repeat("-", ruleWidth)) //nolint:errcheck
	fmt.Fprintf(w, " %s\n", title)                  //nolint:errcheck
	fmt.Fprintln(w, strings.Repeat("-", ruleWidth)) //nolint:errcheck
}

// WriteSolution prints one solution with its selected items.
func WriteSolution(w io.Writer, sol *models.Solution) {
	banner(w, strings.ToUpper(sol.Algorithm))
	fmt.Fprintf(w, "  Truck:          #%d (capacity %s, pallets %s)\n", //nolint:errcheck
		sol.Container.ID, formatNumber(sol.Container.Capacity), formatLimit(sol.Container))
	fmt.Fprintf(w, "  Total profit:   %s\n", formatNumber(sol.TotalProfit))                                            //nolint:errcheck
	fmt.Fprintf(w, "  Total weight:   %s / %s\n", formatNumber(sol.TotalWeight), formatNumber(sol.Container.Capacity)) //nolint:errcheck
	fmt.Fprintf(w, "  Pallets loaded: %d\n", len(sol.SelectedItems))                                                   //nolint:errcheck
	fmt.Fprintf(w, "  Execution time: %s\n", FormatMicros(sol.ExecutionTimeMicros))                                    //nolint:errcheck
	if sol.Terminated {
		fmt.Fprintf(w, "  Terminated:     time budget exceeded, best found so far shown\n") //nolint:errcheck
		if sol.EstimatedTotalTimeSeconds > 0 {
			fmt.Fprintf(w, "  Estimated full search: %s\n", //nolint:errcheck
				FormatElapsed(secondsToDuration(sol.EstimatedTotalTimeSeconds)))
		}
	}
	fmt.Fprintln(w) //nolint:errcheck

	if len(sol.SelectedItems) == 0 {
		fmt.Fprintln(w, "  No pallets selected.") //nolint:errcheck
		return
	}
	t := newTable("Pallet", "Weight", "Profit", "Profit/Weight").alignRight(0, 1, 2, 3)
	for _, it := range sol.SelectedItems {
		t.add(strconv.Itoa(it.ID), formatNumber(it.Weight), formatNumber(it.Profit), strconv.FormatFloat(it.Ratio, 'f', 3, 64))
	}
	t.write(w)
}

// WriteComparison prints one row per outcome.
func WriteComparison(w io.Writer, c models.Container, outcomes []orchestration.Outcome) {
	banner(w, "COMPARISON REPORT")
	fmt.Fprintf(w, "  Truck #%d: capacity %s, pallets %s\n\n", c.ID, formatNumber(c.Capacity), formatLimit(c)) //nolint:errcheck

	t := newTable("Algorithm", "Profit", "Weight", "Pallets", "Time", "Note").alignRight(1, 2, 3)
	for _, o := range outcomes {
		name := truncateName(o.Algorithm.DisplayName(), 28)
		if o.Err != nil {
			t.add(name, "-", "-", "-", "-", truncateName("error: "+o.Err.Error(), 60))
			continue
		}
		sol := o.Solution
		var notes []string
		if o.Cached {
			notes = append(notes, "cached")
		}
		if sol.Terminated {
			notes = append(notes, "terminated")
		}
		t.add(name, formatNumber(sol.TotalProfit), formatNumber(sol.TotalWeight),
			strconv.Itoa(len(sol.SelectedItems)), FormatMicros(sol.ExecutionTimeMicros), strings.Join(notes, ", "))
	}
	t.write(w)
	fmt.Fprintln(w) //nolint:errcheck
}

// WriteVerification prints the verdict for every algorithm.
func WriteVerification(w io.Writer, v *orchestration.Verification) {
	section(w, "VERIFICATION")
	if v.Reference != "" {
		fmt.Fprintf(w, "  Optimum: %s (%s)\n\n", formatNumber(v.Optimum), v.Reference.DisplayName()) //nolint:errcheck
	}
	for _, c := range v.Checks {
		line := fmt.Sprintf("  %s %s", statusIcon(c.Status), padRight(c.Algorithm.DisplayName(), 28))
		line += string(c.Status)
		if c.Message != "" {
			line += ": " + c.Message
		}
		fmt.Fprintln(w, line) //nolint:errcheck
	}
	fmt.Fprintln(w) //nolint:errcheck
	if v.Passed() {
		fmt.Fprintln(w, "  All exact solvers agree.") //nolint:errcheck
	} else {
		fmt.Fprintf(w, "  %d mismatch(es).\n", len(v.Mismatches())) //nolint:errcheck
	}
}

// WriteBench prints timing statistics.
func WriteBench(w io.Writer, results []*orchestration.BenchResult) {
	banner(w, "BENCHMARK")
	t := newTable("Algorithm", "Runs", "Mean ms", "StdDev", "Min", "P50", "P95", "Max", "95% CI", "Bootstrap CI").alignRight(1, 2, 3, 4, 5, 6, 7)
	for _, r := range results {
		s := r.Summary
		name := r.Algorithm
		if r.Terminated {
			name += " *"
		}
		t.add(name, strconv.Itoa(s.Runs), ms(s.MeanMs), ms(s.StdDev), ms(s.MinMs), ms(s.P50Ms), ms(s.P95Ms), ms(s.MaxMs),
			fmt.Sprintf("[%s, %s]", ms(s.CILow), ms(s.CIHigh)),
			fmt.Sprintf("[%s, %s]", ms(s.Bootstrap.Lower), ms(s.Bootstrap.Upper)))
	}
	t.write(w)
	for _, r := range results {
		if r.Terminated {
			fmt.Fprintln(w, "\n  * stopped at the time budget; timings measure the budget, not a full search") //nolint:errcheck
			break
		}
	}
}

func ms(v float64) string {
	return strconv.FormatFloat(v, 'f', 3, 64)
}

func statusIcon(s orchestration.CheckStatus) string {
	switch s {
	case orchestration.CheckPassed:
		return "✓"
	case orchestration.CheckSuboptimal, orchestration.CheckSkipped:
		return "○"
	default:
		return "✗"
	}
}
