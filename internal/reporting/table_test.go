package reporting

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/spboyer/loadout/internal/metrics"
	"github.com/spboyer/loadout/internal/models"
	"github.com/spboyer/loadout/internal/orchestration"
	"github.com/spboyer/loadout/internal/solver"
)

func TestPadAndTruncate(t *testing.T) {
	assert.Equal(t, "ab  ", padRight("ab", 4))
	assert.Equal(t, "  ab", padLeft("ab", 4))
	assert.Equal(t, "abcdef", padRight("abcdef", 4))
	// Wide runes occupy two cells.
	assert.Equal(t, "日本 ", padRight("日本", 5))
	assert.Equal(t, "short", truncateName("short", 10))
	assert.Equal(t, "abcd…", truncateName("abcdefgh", 5))
}

func TestWriteSolution(t *testing.T) {
	r := testResults()
	var buf bytes.Buffer
	WriteSolution(&buf, r.Solutions[0])

	out := buf.String()
	assert.Contains(t, out, "DYNAMIC PROGRAMMING")
	assert.Contains(t, out, "capacity 10, pallets 2")
	assert.Contains(t, out, "Total profit:   10")
	assert.Contains(t, out, "Total weight:   10 / 10")
	assert.Contains(t, out, "Execution time: 00:00:00.001")
	assert.Contains(t, out, "Profit/Weight")
	assert.NotContains(t, out, "Terminated")
}

func TestWriteSolution_TerminatedAndEmpty(t *testing.T) {
	sol := models.NewSolution("Brute Force", models.Unlimited(5))
	sol.Terminated = true
	sol.EstimatedTotalTimeSeconds = 3725.5

	var buf bytes.Buffer
	WriteSolution(&buf, sol)

	out := buf.String()
	assert.Contains(t, out, "pallets unlimited")
	assert.Contains(t, out, "time budget exceeded")
	assert.Contains(t, out, "Estimated full search: 01:02:05.500")
	assert.Contains(t, out, "No pallets selected.")
}

func TestWriteComparison(t *testing.T) {
	r := testResults()
	outcomes := []orchestration.Outcome{
		{Algorithm: solver.DynamicProgramming, Solution: r.Solutions[0], Cached: true},
		{Algorithm: solver.ILP, Err: assert.AnError},
	}

	var buf bytes.Buffer
	WriteComparison(&buf, r.Container, outcomes)

	lines := strings.Split(buf.String(), "\n")
	var header, dp, ilpLine string
	for _, l := range lines {
		switch {
		case strings.HasPrefix(strings.TrimSpace(l), "Algorithm"):
			header = l
		case strings.Contains(l, "Dynamic Programming"):
			dp = l
		case strings.Contains(l, "Integer Linear Programming"):
			ilpLine = l
		}
	}
	assert.NotEmpty(t, header)
	assert.Contains(t, dp, "cached")
	assert.Contains(t, ilpLine, "error: ")
	// Columns line up: the profit column ends at the same offset.
	assert.Equal(t, strings.Index(header, "Profit")+len("Profit"), strings.Index(dp, "10")+2)
}

func TestWriteVerification(t *testing.T) {
	r := testResults()

	var buf bytes.Buffer
	WriteVerification(&buf, r.Verification)
	out := buf.String()

	assert.Contains(t, out, "Optimum: 10 (Dynamic Programming)")
	assert.Contains(t, out, "✓ Dynamic Programming")
	assert.Contains(t, out, "○ Greedy")
	assert.Contains(t, out, "✗ Integer Linear Programming")
	assert.Contains(t, out, "1 mismatch(es).")
}

func TestWriteBench(t *testing.T) {
	res := []*orchestration.BenchResult{
		{
			Algorithm: "Greedy",
			Summary:   metrics.Summarize([]time.Duration{time.Millisecond, 3 * time.Millisecond}),
		},
		{
			Algorithm:  "Brute Force",
			Terminated: true,
			Summary:    metrics.Summarize([]time.Duration{time.Second}),
		},
	}

	var buf bytes.Buffer
	WriteBench(&buf, res)
	out := buf.String()

	assert.Contains(t, out, "BENCHMARK")
	assert.Contains(t, out, "2.000")
	assert.Contains(t, out, "Brute Force *")
	assert.Contains(t, out, "stopped at the time budget")
}
