package report

import (
	"fmt"
	"strings"

	"github.com/KaramelBytes/salesdash/internal/dataset"
	"github.com/KaramelBytes/salesdash/internal/engine"
)

// NoData marks a section whose filtered view was empty.
const NoData = "no data available for the selected filters"

// maxListed caps how many selected values are echoed per dimension.
const maxListed = 8

// Report pairs a pass snapshot with load diagnostics of its dataset.
type Report struct {
	Snapshot *engine.Snapshot
	Misses   map[dataset.Column]int
	Warnings []string
}

// New builds a report for snap. ds may be nil when diagnostics are not wanted.
func New(snap *engine.Snapshot, ds *dataset.Dataset) *Report {
	r := &Report{Snapshot: snap}
	if ds != nil {
		r.Misses = ds.Misses()
		r.Warnings = ds.Warnings()
	}
	return r
}

// Markdown renders a compact, deterministic summary of one pass.
func (r *Report) Markdown() string {
	s := r.Snapshot
	var b strings.Builder
	b.WriteString("[DATASET SUMMARY]\n")
	if s.Dataset != "" {
		b.WriteString(fmt.Sprintf("File: %s\n", s.Dataset))
	}
	b.WriteString(fmt.Sprintf("Rows: %d of %d\n", s.Rows, s.TotalRows))
	b.WriteString(fmt.Sprintf("Total Sales: %s\n", FormatLargeNumber(s.TotalSales)))
	b.WriteString(fmt.Sprintf("Total Value (USD): %s\n", FormatLargeNumber(s.TotalValue)))

	b.WriteString("\n[FILTERS]\n")
	for _, d := range dataset.FilterDimensions {
		b.WriteString(fmt.Sprintf("- %s: %s\n", d, listValues(s.Selection.Values(d))))
	}

	b.WriteString("\n[LEADERS]\n")
	if l := s.Aggregates.Leaders; l != nil {
		b.WriteString(fmt.Sprintf("- Top model: %s\n", l.Model))
		b.WriteString(fmt.Sprintf("- Top region: %s\n", l.Region))
		b.WriteString(fmt.Sprintf("- Top fuel type: %s\n", l.FuelType))
	} else {
		b.WriteString("- " + NoData + "\n")
	}

	a := s.Aggregates
	writePairTable(&b, "SALES BY YEAR AND MODEL", a.SalesByYearModel)
	writeRanking(&b, "TOTAL PRICE BY MODEL", a.PriceByModel, false)
	writeRanking(&b, "SALES BY REGION", a.SalesByRegion, true)
	writeRanking(&b, "SALES BY TRANSMISSION", a.SalesByTransmission, true)
	writeRanking(&b, "SALES BY COLOR", a.SalesByColor, true)

	b.WriteString("\n[CORRELATIONS]\n")
	if a.CorrelationMatrix.Empty {
		b.WriteString("- not enough complete rows\n")
	} else {
		for i, ma := range dataset.Metrics {
			for _, mb := range dataset.Metrics[i+1:] {
				if e, ok := a.CorrelationMatrix.Lookup(ma.String(), mb.String()); ok {
					b.WriteString(fmt.Sprintf("- %s ~ %s: r=%.3f\n", ma, mb, e.Value))
				}
			}
		}
	}

	b.WriteString("\n[YEAR-OVER-YEAR GROWTH]\n")
	if a.YoYGrowth.Empty {
		b.WriteString("- " + NoData + "\n")
	} else {
		for _, e := range a.YoYGrowth.Entries {
			if e.Valid {
				b.WriteString(fmt.Sprintf("- %s: %s\n", e.Key, FormatPercent(e.Value)))
			} else {
				b.WriteString(fmt.Sprintf("- %s: n/a\n", e.Key))
			}
		}
	}

	notes := r.notes()
	if len(notes) > 0 {
		b.WriteString("\n[NOTES]\n")
		for _, n := range notes {
			b.WriteString("- ")
			b.WriteString(n)
			b.WriteString("\n")
		}
	}
	return b.String()
}

func (r *Report) notes() []string {
	var out []string
	for _, c := range dataset.Columns {
		if n := r.Misses[c]; n > 0 {
			out = append(out, fmt.Sprintf("%s: %d value(s) could not be parsed and were treated as missing", c, n))
		}
	}
	return append(out, r.Warnings...)
}

func listValues(vals []string) string {
	if len(vals) == 0 {
		return "(none)"
	}
	if len(vals) <= maxListed {
		return strings.Join(vals, ", ")
	}
	return fmt.Sprintf("%s (+%d more)", strings.Join(vals[:maxListed], ", "), len(vals)-maxListed)
}

func writeRanking(b *strings.Builder, title string, res engine.Result, share bool) {
	b.WriteString("\n[" + title + "]\n")
	if res.Empty {
		b.WriteString("- " + NoData + "\n")
		return
	}
	total := res.Sum()
	for _, e := range res.Entries {
		if share && total > 0 {
			b.WriteString(fmt.Sprintf("- %s: %s (%.1f%%)\n", safeVal(e.Key), FormatLargeNumber(e.Value), e.Value*100/total))
			continue
		}
		b.WriteString(fmt.Sprintf("- %s: %s\n", safeVal(e.Key), FormatLargeNumber(e.Value)))
	}
}

func writePairTable(b *strings.Builder, title string, res engine.Result) {
	b.WriteString("\n[" + title + "]\n")
	if res.Empty {
		b.WriteString("- " + NoData + "\n")
		return
	}
	b.WriteString("| Year | Model | Sales |\n| --- | --- | --- |\n")
	for _, e := range res.Entries {
		b.WriteString(fmt.Sprintf("| %s | %s | %s |\n", safeVal(e.Key), safeVal(e.Group), FormatLargeNumber(e.Value)))
	}
}

func safeVal(s string) string { return strings.ReplaceAll(strings.ReplaceAll(s, "\n", " "), "|", "/") }
