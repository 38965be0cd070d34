// Package terminal prints derived dashboard views as text tables for the
// command line.
package terminal

import (
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/lorrc/service-desk-dashboard/internal/adapters/secondary/panels"
	"github.com/lorrc/service-desk-dashboard/internal/core/domain"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// Output formats understood by Writer.
const (
	TextOut = "text"
	JSONOut = "json"
)

// Options controls what Write prints.
type Options struct {
	Format    string
	Precision int
	UseColors bool
	// ShowRows prints the raw data table after the charts.
	ShowRows bool
	Panels   panels.Config
}

// DefaultOptions prints coloured text with two decimals.
func DefaultOptions() Options {
	return Options{
		Format:    TextOut,
		Precision: 2,
		UseColors: true,
		Panels:    panels.DefaultConfig(),
	}
}

// Writer renders views to w.
type Writer struct {
	w    io.Writer
	opts Options
}

func NewWriter(w io.Writer, opts Options) *Writer {
	if opts.Precision < 0 {
		opts.Precision = 0
	}
	return &Writer{w: w, opts: opts}
}

// summary is the JSON document written for JSONOut.
type summary struct {
	Sequence     uint64                  `json:"sequence"`
	Placeholder  bool                    `json:"placeholder"`
	Statistics   panels.StatisticsModel  `json:"statistics"`
	Performance  panels.PerformanceModel `json:"performance"`
	Priority     panels.BreakdownModel   `json:"priority"`
	Satisfaction panels.BreakdownModel   `json:"satisfaction"`
	Table        *panels.TableModel      `json:"table,omitempty"`
}

// Write prints every section of view.
func (w *Writer) Write(view *domain.DerivedView) error {
	if view == nil {
		return nil
	}
	switch w.opts.Format {
	case JSONOut:
		return w.writeJSON(view)
	case TextOut, "":
		return w.writeText(view)
	default:
		return fmt.Errorf("unknown output format %q", w.opts.Format)
	}
}

func (w *Writer) writeJSON(view *domain.DerivedView) error {
	cfg := w.opts.Panels
	doc := summary{
		Sequence:     view.Sequence,
		Placeholder:  view.Placeholder,
		Statistics:   panels.BuildStatistics(view),
		Performance:  panels.BuildPerformance(view, cfg.Bands),
		Priority:     panels.BuildBreakdown(view, cfg.PriorityField, cfg.PriorityLabels),
		Satisfaction: panels.BuildBreakdown(view, cfg.RatingField, cfg.RatingLabels),
	}
	if w.opts.ShowRows {
		table := panels.BuildTable(view, cfg.TableColumns)
		doc.Table = &table
	}
	enc := json.NewEncoder(w.w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("error writing JSON output: %w", err)
	}
	return nil
}

func (w *Writer) writeText(view *domain.DerivedView) error {
	if view.Placeholder {
		_, err := fmt.Fprintln(w.w, w.header(view))
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w.w, panels.PlaceholderMessage)
		return err
	}

	cfg := w.opts.Panels
	if _, err := fmt.Fprintln(w.w, w.header(view)); err != nil {
		return err
	}
	if err := w.WriteStatistics(panels.BuildStatistics(view)); err != nil {
		return err
	}
	if err := w.WritePerformance(panels.BuildPerformance(view, cfg.Bands)); err != nil {
		return err
	}
	if err := w.WriteBreakdown(panels.BuildBreakdown(view, cfg.PriorityField, cfg.PriorityLabels)); err != nil {
		return err
	}
	if err := w.WriteBreakdown(panels.BuildBreakdown(view, cfg.RatingField, cfg.RatingLabels)); err != nil {
		return err
	}
	if w.opts.ShowRows {
		return w.WriteTable(panels.BuildTable(view, cfg.TableColumns))
	}
	return nil
}

func (w *Writer) header(view *domain.DerivedView) string {
	var b strings.Builder
	b.WriteString("Period: ")
	if view.Period != nil {
		fmt.Fprintf(&b, "%s to %s", view.Period.Start.Format("2006-01-02"), view.Period.End.Format("2006-01-02"))
	} else {
		b.WriteString("none")
	}
	if view.DataRange != nil {
		fmt.Fprintf(&b, " | Data: %s to %s", view.DataRange.First.Format("2006-01-02"), view.DataRange.Last.Format("2006-01-02"))
	}
	if len(view.Filters) > 0 {
		b.WriteString(" | Filters: ")
		b.WriteString(formatFilters(view.Filters))
	}
	return b.String()
}

// WriteStatistics prints one row per summarised field.
func (w *Writer) WriteStatistics(m panels.StatisticsModel) error {
	table := w.newTable()
	defer func() { _ = table.Close() }()

	table.Header([]string{"Field", "Count", "Mean", "Median", "Std Dev", "Min", "Max", "Mode", "Distinct"})

	var data [][]string
	add := func(label string, s *domain.StatisticsSummary) {
		if s == nil {
			return
		}
		row := []string{label, strconv.Itoa(s.Count), "-", "-", "-", "-", "-", strings.Join(s.Modes, ", "), strconv.Itoa(s.Distinct)}
		if s.Numeric {
			row[2] = w.float(s.Mean)
			row[3] = w.float(s.Median)
			row[4] = w.float(s.StdDev)
			row[5] = w.float(s.Min)
			row[6] = w.float(s.Max)
		}
		data = append(data, row)
	}
	add(m.ValueField, m.Value)
	add(w.opts.Panels.PriorityField, m.Priority)
	add(w.opts.Panels.RatingField, m.Satisfaction)

	if err := table.Bulk(data); err != nil {
		return fmt.Errorf("error adding statistics rows: %w", err)
	}
	if err := table.Render(); err != nil {
		return fmt.Errorf("error rendering statistics: %w", err)
	}
	_, err := fmt.Fprintf(w.w, "Records: %d, excluded values: %d\n", m.Records, m.Excluded)
	return err
}

// WritePerformance prints the per-group averages coloured by band.
func (w *Writer) WritePerformance(m panels.PerformanceModel) error {
	table := w.newTable()
	defer func() { _ = table.Close() }()

	table.Header([]string{strings.ToUpper(m.Field), "Average", "Count", "Band"})

	data := make([][]string, 0, len(m.Bars))
	for _, bar := range m.Bars {
		group := bar.Group
		if bar.Selected {
			group = "* " + group
		}
		data = append(data, []string{
			group,
			w.float(bar.Average),
			strconv.Itoa(bar.Count),
			w.band(bar.Band),
		})
	}
	if err := table.Bulk(data); err != nil {
		return fmt.Errorf("error adding performance rows: %w", err)
	}
	if err := table.Render(); err != nil {
		return fmt.Errorf("error rendering performance: %w", err)
	}
	return nil
}

// WriteBreakdown prints a categorical breakdown with its share of the total.
func (w *Writer) WriteBreakdown(m panels.BreakdownModel) error {
	table := w.newTable()
	defer func() { _ = table.Close() }()

	table.Header([]string{strings.ToUpper(m.Field), "Count", "Share"})

	data := make([][]string, 0, len(m.Slices))
	for _, s := range m.Slices {
		label := s.Label
		if s.Selected {
			label = "* " + label
		}
		share := 0.0
		if m.Total > 0 {
			share = float64(s.Count) / float64(m.Total) * 100
		}
		data = append(data, []string{label, strconv.Itoa(s.Count), w.float(share) + "%"})
	}
	if err := table.Bulk(data); err != nil {
		return fmt.Errorf("error adding breakdown rows: %w", err)
	}
	if err := table.Render(); err != nil {
		return fmt.Errorf("error rendering breakdown: %w", err)
	}
	return nil
}

// WriteTable prints the filtered records.
func (w *Writer) WriteTable(m panels.TableModel) error {
	table := tablewriter.NewWriter(w.w)
	defer func() { _ = table.Close() }()

	table.Header(m.Columns)
	if err := table.Bulk(m.Rows); err != nil {
		return fmt.Errorf("error adding table rows: %w", err)
	}
	if err := table.Render(); err != nil {
		return fmt.Errorf("error rendering table: %w", err)
	}
	_, err := fmt.Fprintf(w.w, "%d records\n", m.Total)
	return err
}

func (w *Writer) newTable() *tablewriter.Table {
	table := tablewriter.NewWriter(w.w)
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})
	return table
}

func (w *Writer) float(f float64) string {
	return strconv.FormatFloat(f, 'f', w.opts.Precision, 64)
}

var (
	goodColor   = color.New(color.FgGreen)
	mediumColor = color.New(color.FgYellow)
	badColor    = color.New(color.FgRed, color.Bold)
)

func (w *Writer) band(b panels.Band) string {
	label := string(b)
	if !w.opts.UseColors {
		return label
	}
	switch b {
	case panels.BandGood:
		return goodColor.Sprint(label)
	case panels.BandMedium:
		return mediumColor.Sprint(label)
	case panels.BandBad:
		return badColor.Sprint(label)
	default:
		return label
	}
}

func formatFilters(filters map[string]string) string {
	parts := make([]string, 0, len(filters))
	for field, value := range filters {
		parts = append(parts, field+"="+value)
	}
	slices.Sort(parts)
	return strings.Join(parts, ", ")
}
