package reporting

import (
	"bytes"
	"fmt"
	"html"
	"strconv"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	gmhtml "github.com/yuin/goldmark/renderer/html"
)

// Markdown renders a results document as a GitHub-flavoured markdown report.
func Markdown(r *Results) string {
	var b strings.Builder

	b.WriteString("## Loadout Results\n\n")
	if r.Source != "" {
		fmt.Fprintf(&b, "**Pallets:** `%s` (%d) | ", r.Source, len(r.Items))
	} else {
		fmt.Fprintf(&b, "**Pallets:** %d | ", len(r.Items))
	}
	fmt.Fprintf(&b, "**Truck:** #%d | **Capacity:** %s | **Pallet limit:** %s\n\n",
		r.Container.ID, formatNumber(r.Container.Capacity), formatLimit(r.Container))

	if len(r.Solutions) > 0 {
		b.WriteString("| Algorithm | Profit | Weight | Pallets | Time | Status |\n")
		b.WriteString("|-----------|-------:|-------:|--------:|------|--------|\n")
		for _, sol := range r.Solutions {
			status := "✅ complete"
			if sol.Terminated {
				status = "⏱️ terminated"
			}
			fmt.Fprintf(&b, "| %s | %s | %s | %d | %s | %s |\n",
				escapeCell(sol.Algorithm), formatNumber(sol.TotalProfit), formatNumber(sol.TotalWeight),
				len(sol.SelectedItems), FormatMicros(sol.ExecutionTimeMicros), status)
		}
		b.WriteString("\n")
	}

	if len(r.Failures) > 0 {
		b.WriteString("### Failures\n\n")
		for _, f := range r.Failures {
			fmt.Fprintf(&b, "- **%s**: %s\n", f.Algorithm.DisplayName(), escapeCell(f.Error))
		}
		b.WriteString("\n")
	}

	if v := r.Verification; v != nil {
		b.WriteString("### Verification\n\n")
		if v.Passed() {
			b.WriteString("✅ All exact solvers agree")
		} else {
			fmt.Fprintf(&b, "❌ %d mismatch(es)", len(v.Mismatches()))
		}
		if v.Reference != "" {
			fmt.Fprintf(&b, " (optimum %s from %s)", formatNumber(v.Optimum), v.Reference.DisplayName())
		}
		b.WriteString("\n\n")
		for _, c := range v.Checks {
			fmt.Fprintf(&b, "- %s %s: %s", statusIcon(c.Status), c.Algorithm.DisplayName(), c.Status)
			if c.Message != "" {
				fmt.Fprintf(&b, " (%s)", escapeCell(c.Message))
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	for _, sol := range r.Solutions {
		fmt.Fprintf(&b, "<details>\n<summary>%s: selected pallets</summary>\n\n", html.EscapeString(sol.Algorithm))
		if len(sol.SelectedItems) == 0 {
			b.WriteString("No pallets selected.\n")
		} else {
			b.WriteString("| Pallet | Weight | Profit |\n")
			b.WriteString("|-------:|-------:|-------:|\n")
			for _, it := range sol.SelectedItems {
				fmt.Fprintf(&b, "| %s | %s | %s |\n", strconv.Itoa(it.ID), formatNumber(it.Weight), formatNumber(it.Profit))
			}
		}
		b.WriteString("\n</details>\n\n")
	}

	fmt.Fprintf(&b, "---\n_run `%s` at %s_\n", r.RunID, r.CreatedAt.Format("2006-01-02 15:04:05 MST"))
	return b.String()
}

func escapeCell(s string) string {
	s = strings.ReplaceAll(s, "|", "\\|")
	return strings.ReplaceAll(s, "\n", " ")
}

// HTML renders the markdown report as a standalone HTML page.
func HTML(r *Results) (string, error) {
	md := goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		// The report embeds <details> blocks; every value in it is escaped.
		goldmark.WithRendererOptions(gmhtml.WithUnsafe()),
	)
	var body bytes.Buffer
	if err := md.Convert([]byte(Markdown(r)), &body); err != nil {
		return "", fmt.Errorf("rendering markdown: %w", err)
	}

	var b strings.Builder
	b.WriteString("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n")
	fmt.Fprintf(&b, "<title>Loadout results %s</title>\n", html.EscapeString(r.RunID))
	b.WriteString("<style>body{font-family:sans-serif;max-width:60em;margin:2em auto}" +
		"table{border-collapse:collapse}td,th{border:1px solid #ccc;padding:.2em .6em}</style>\n")
	b.WriteString("</head>\n<body>\n")
	b.Write(body.Bytes())
	b.WriteString("</body>\n</html>\n")
	return b.String(), nil
}
