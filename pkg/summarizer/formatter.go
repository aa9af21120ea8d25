package summarizer

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/user/webrec/pkg/adapters/mp4inspect"
)

// Formatter defines the interface for formatting a Summary.
type Formatter interface {
	// Format converts a Summary to a formatted string.
	Format(summary *Summary) string
}

// FormatFunc is a function adapter for the Formatter interface.
type FormatFunc func(summary *Summary) string

// Format implements the Formatter interface.
func (f FormatFunc) Format(summary *Summary) string {
	return f(summary)
}

// NewTableFormatter returns a Formatter that renders a two-column table.
func NewTableFormatter() Formatter {
	return FormatFunc(formatTable)
}

// NewJSONFormatter returns a Formatter that renders indented JSON.
func NewJSONFormatter() Formatter {
	return FormatFunc(func(s *Summary) string {
		data, err := json.MarshalIndent(s, "", "  ")
		if err != nil {
			return fmt.Sprintf(`{"error": %q}`, err.Error())
		}
		return string(data) + "\n"
	})
}

func formatTable(s *Summary) string {
	r := s.Recording
	rows := [][]string{
		{"Session", r.SessionID},
		{"URL", r.URL},
		{"Output", r.Output},
		{"Backend", r.Backend},
		{"Size", fmt.Sprintf("%dx%d", r.Width, r.Height)},
		{"Frame rate", r.RateString},
		{"Snapshots issued", strconv.FormatUint(r.Capture.Issued, 10)},
		{"Snapshots captured", strconv.FormatUint(r.Capture.Captured, 10)},
		{"Capture failures", strconv.FormatUint(r.Capture.Failed, 10)},
		{"Decode drops", strconv.FormatUint(r.Encode.DecodeDrops, 10)},
		{"Busy drops", strconv.FormatUint(r.Encode.BusyDrops, 10)},
		{"Frames encoded", strconv.FormatUint(r.Encode.Encoded, 10)},
		{"Video duration", formatDuration(s.Duration())},
		{"Wall time", formatDuration(r.Wall)},
	}
	if s.FileSize > 0 {
		rows = append(rows, []string{"File size", formatBytes(s.FileSize)})
	}
	if r.Abandoned {
		rows = append(rows, []string{"Abandoned snapshot", "yes"})
	}
	return renderTable([]string{"Item", "Value"}, rows, []columnAlignment{alignLeft, alignRight})
}

// FormatInspect renders the per-sample timing of an MP4 file. At most limit
// samples are listed; 0 lists all.
func FormatInspect(report *mp4inspect.Report, limit int) string {
	header := renderTable(
		[]string{"Item", "Value"},
		[][]string{
			{"Codec", report.Codec},
			{"Size", fmt.Sprintf("%dx%d", report.Width, report.Height)},
			{"Timescale", strconv.FormatUint(uint64(report.Timescale), 10)},
			{"Fragmented", strconv.FormatBool(report.Fragmented)},
			{"Samples", strconv.Itoa(len(report.Samples))},
			{"Duration", formatDuration(report.Duration())},
		},
		[]columnAlignment{alignLeft, alignRight},
	)

	n := len(report.Samples)
	if limit > 0 && limit < n {
		n = limit
	}
	rows := make([][]string, 0, n)
	for i := 0; i < n; i++ {
		sm := report.Samples[i]
		rows = append(rows, []string{
			strconv.Itoa(i),
			strconv.FormatUint(sm.DecodeTime, 10),
			strconv.FormatInt(int64(report.PTS(i)), 10),
			strconv.FormatUint(uint64(sm.Dur), 10),
			strconv.FormatUint(uint64(sm.Size), 10),
		})
	}
	samples := renderTable(
		[]string{"#", "Decode time", "PTS (ns)", "Duration", "Bytes"},
		rows,
		[]columnAlignment{alignRight, alignRight, alignRight, alignRight, alignRight},
	)
	return header + "\n" + samples + "\n"
}

type columnAlignment int

const (
	alignLeft columnAlignment = iota
	alignRight
)

func renderTable(headers []string, rows [][]string, aligns []columnAlignment) string {
	columns := len(headers)
	if columns == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	header := make(table.Row, columns)
	for i := 0; i < columns; i++ {
		header[i] = headers[i]
	}
	tw.AppendHeader(header)

	for _, row := range rows {
		r := make(table.Row, columns)
		for i := 0; i < columns; i++ {
			if i < len(row) {
				r[i] = row[i]
			} else {
				r[i] = ""
			}
		}
		tw.AppendRow(r)
	}

	configs := make([]table.ColumnConfig, 0, columns)
	for i := 0; i < columns; i++ {
		align := text.AlignLeft
		if i < len(aligns) && aligns[i] == alignRight {
			align = text.AlignRight
		}
		configs = append(configs, table.ColumnConfig{
			Number:      i + 1,
			Align:       align,
			AlignHeader: text.AlignLeft,
		})
	}
	tw.SetColumnConfigs(configs)

	return tw.Render()
}

func formatDuration(d time.Duration) string {
	return d.Round(time.Millisecond).String()
}

func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
