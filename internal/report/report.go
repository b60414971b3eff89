package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/wonny/alphalens/internal/analysis"
)

// DefaultTail is the number of trailing IC moving average rows shown
const DefaultTail = 5

// Format names accepted by Write
const (
	FormatText = "text"
	FormatJSON = "json"
)

// Options controls the text layout
type Options struct {
	Tail int // trailing IC moving average rows, 0 hides the table
}

// Write renders sheet in the given format
func Write(w io.Writer, sheet *analysis.TearSheet, format string, opts Options) error {
	switch strings.ToLower(format) {
	case FormatJSON:
		return WriteJSON(w, sheet)
	case FormatText, "":
		return Render(w, sheet, opts)
	default:
		return fmt.Errorf("unknown report format %q (want text or json)", format)
	}
}

// WriteJSON writes the indented JSON tear sheet
func WriteJSON(w io.Writer, sheet *analysis.TearSheet) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(sheet)
}

// Render writes the text tear sheet
func Render(w io.Writer, sheet *analysis.TearSheet, opts Options) error {
	var b strings.Builder

	writeHeader(&b, sheet)
	if sheet.Empty {
		fmt.Fprintf(&b, "\n%s\n", sheet.Message)
		_, err := io.WriteString(w, b.String())
		return err
	}

	sections := []*section{
		quantileCountTable(sheet),
		meanReturnTable(sheet),
		returnsTable(sheet),
		informationTable(sheet),
		turnoverTable(sheet),
	}
	if t := cumulativeTable(sheet); t != nil {
		sections = append(sections, t)
	}
	if opts.Tail > 0 {
		if t := icTailTable(sheet, opts.Tail); t != nil {
			sections = append(sections, t)
		}
	}

	for _, t := range sections {
		fmt.Fprintf(&b, "\n%s\n", t.title)
		b.WriteString(t.Render())
		b.WriteString("\n")
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func writeHeader(b *strings.Builder, sheet *analysis.TearSheet) {
	hash := sheet.ConfigHash
	if len(hash) > 12 {
		hash = hash[:12]
	}

	fmt.Fprintf(b, "Tear sheet: %s (%s factor)\n", sheet.Ticker, sheet.FactorName)
	fmt.Fprintf(b, "Range:      %s .. %s\n", sheet.Start.Format("2006-01-02"), sheet.End.Format("2006-01-02"))
	fmt.Fprintf(b, "Data:       %d price bars, %d labeled rows\n", sheet.PriceBars, sheet.Observations)
	fmt.Fprintf(b, "Config:     %s (%s)\n", sheet.ConfigName, hash)
	for _, d := range sheet.Diagnostics {
		fmt.Fprintf(b, "%s:    [%s] %s\n", strings.ToUpper(d.Level), d.Code, d.Message)
	}
}

// section is a table printed under its own heading line. The heading is
// never wrapped to the table width.
type section struct {
	title string
	table.Writer
}

func newTable(title string) *section {
	t := table.NewWriter()
	t.SetStyle(table.StyleLight)
	return &section{title: title, Writer: t}
}

func periodHeader(first string, periods []int) table.Row {
	row := table.Row{first}
	for _, p := range periods {
		row = append(row, fmt.Sprintf("%dD", p))
	}
	return row
}

func quantileCountTable(sheet *analysis.TearSheet) *section {
	t := newTable("Quantile Statistics")
	t.AppendHeader(table.Row{"Quantile", "Rows", "Share %"})
	for _, qc := range sheet.QuantileCounts {
		share := 0.0
		if sheet.Observations > 0 {
			share = float64(qc.Rows) / float64(sheet.Observations) * 100
		}
		t.AppendRow(table.Row{qc.Quantile, qc.Rows, fmt.Sprintf("%.1f", share)})
	}
	return t
}

func meanReturnTable(sheet *analysis.TearSheet) *section {
	t := newTable("Mean Return by Quantile (bps)")
	t.AppendHeader(periodHeader("Quantile", sheet.Periods))

	for q := 1; q <= sheet.Quantiles; q++ {
		row := table.Row{q}
		for _, pr := range sheet.Returns {
			var v *float64
			if q-1 < len(pr.ByQuantile) {
				v = pr.ByQuantile[q-1].MeanBps
			}
			row = append(row, formatFloat(v, 2))
		}
		t.AppendRow(row)
	}
	return t
}

func returnsTable(sheet *analysis.TearSheet) *section {
	t := newTable("Returns Analysis (bps)")
	t.AppendHeader(periodHeader("", sheet.Periods))

	top := table.Row{"Mean Period Wise Return Top Quantile"}
	bottom := table.Row{"Mean Period Wise Return Bottom Quantile"}
	spread := table.Row{"Mean Period Wise Spread"}
	for _, pr := range sheet.Returns {
		top = append(top, formatFloat(pr.TopBps, 2))
		bottom = append(bottom, formatFloat(pr.BottomBps, 2))
		spread = append(spread, formatFloat(pr.SpreadBps, 2))
	}
	t.AppendRows([]table.Row{top, bottom, spread})
	return t
}

func informationTable(sheet *analysis.TearSheet) *section {
	t := newTable("Information Analysis")
	t.AppendHeader(periodHeader("", sheet.Periods))

	mean := table.Row{"IC Mean"}
	std := table.Row{"IC Std."}
	tstat := table.Row{"t-stat(IC)"}
	pvalue := table.Row{"p-value(IC)"}
	obs := table.Row{"Observations"}
	for _, pi := range sheet.Information {
		mean = append(mean, formatFloat(pi.Mean, 3))
		std = append(std, formatFloat(pi.Std, 3))
		tstat = append(tstat, formatFloat(pi.TStat, 3))
		pvalue = append(pvalue, fmt.Sprintf("%.3f", pi.PValue))
		obs = append(obs, pi.Observations)
	}
	t.AppendRows([]table.Row{mean, std, tstat, pvalue, obs})
	t.SetCaption("p-value is a placeholder and always 0")
	return t
}

func turnoverTable(sheet *analysis.TearSheet) *section {
	t := newTable("Turnover Analysis")
	t.AppendHeader(table.Row{"Lag", "Factor Rank Autocorrelation"})
	for _, lc := range sheet.Turnover {
		t.AppendRow(table.Row{lc.Lag, formatFloat(lc.Autocorrelation, 3)})
	}
	return t
}

func cumulativeTable(sheet *analysis.TearSheet) *section {
	if sheet.Cumulative == nil {
		return nil
	}

	t := newTable(fmt.Sprintf("Cumulative Return by Quantile (%dD)", sheet.Cumulative.Period))
	t.AppendHeader(table.Row{"Quantile", "Rows", "Last Date", "Growth of 1", "Total %"})
	for _, qc := range sheet.Cumulative.Quantiles {
		if len(qc.Points) == 0 {
			continue
		}
		last := qc.Points[len(qc.Points)-1]
		total := "n/a"
		if last.Value != nil {
			total = fmt.Sprintf("%.2f", (*last.Value-1)*100)
		}
		t.AppendRow(table.Row{
			qc.Quantile,
			len(qc.Points),
			last.Date.Format("2006-01-02"),
			formatFloat(last.Value, 4),
			total,
		})
	}
	return t
}

func icTailTable(sheet *analysis.TearSheet, tail int) *section {
	if len(sheet.Information) == 0 || len(sheet.Information[0].Series) == 0 {
		return nil
	}

	t := newTable(fmt.Sprintf("IC Moving Average (%d observations)", sheet.ICWindow))
	t.AppendHeader(periodHeader("Date", sheet.Periods))

	n := len(sheet.Information[0].Series)
	from := max(0, n-tail)
	for i := from; i < n; i++ {
		row := table.Row{sheet.Information[0].Series[i].Date.Format("2006-01-02")}
		for _, pi := range sheet.Information {
			var v *float64
			if i < len(pi.Series) {
				v = pi.Series[i].MovingAverage
			}
			row = append(row, formatFloat(v, 3))
		}
		t.AppendRow(row)
	}
	return t
}

func formatFloat(v *float64, decimals int) string {
	if v == nil {
		return "n/a"
	}
	return fmt.Sprintf("%.*f", decimals, *v)
}
