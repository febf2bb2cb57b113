// Package output renders human-readable reports about a selection run.
package output

import (
	"fmt"
	"io"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/inodb/mutect-vcf-selector/internal/classify"
)

// Summary describes a finished run.
type Summary struct {
	Input   string
	Engine  classify.Engine
	Stats   classify.Stats
	Elapsed time.Duration
}

// WriteSummary writes a per-reason table of decisions to w. Reasons that
// never occurred are left out.
func WriteSummary(w io.Writer, s Summary) error {
	tbl := table.NewWriter()
	tbl.SetOutputMirror(w)
	tbl.SetStyle(table.StyleLight)
	tbl.Style().Options.DrawBorder = false
	tbl.Style().Options.SeparateColumns = false
	tbl.SetTitle(fmt.Sprintf("%s (%s, %s)", s.Input, s.Engine, s.Elapsed.Round(time.Millisecond)))
	tbl.SetColumnConfigs([]table.ColumnConfig{
		{Number: 3, Align: text.AlignRight, AlignFooter: text.AlignRight},
		{Number: 4, Align: text.AlignRight, AlignFooter: text.AlignRight},
	})

	tbl.AppendHeader(table.Row{"Reason", "Decision", "Records", "Share"})
	for _, r := range classify.Reasons() {
		n := s.Stats.Count(r)
		if n == 0 {
			continue
		}
		decision := "drop"
		if r.Retains() {
			decision = "retain"
		}
		tbl.AppendRow(table.Row{r.String(), decision, humanize.Comma(n), share(n, s.Stats.Records)})
	}

	tbl.AppendFooter(table.Row{
		"Total",
		fmt.Sprintf("%s retained", humanize.Comma(s.Stats.Retained)),
		humanize.Comma(s.Stats.Records),
		share(s.Stats.Retained, s.Stats.Records),
	})

	tbl.Render()
	_, err := io.WriteString(w, "\n")
	return err
}

func share(n, total int64) string {
	if total == 0 {
		return "-"
	}
	return fmt.Sprintf("%.1f%%", float64(n)/float64(total)*100)
}
