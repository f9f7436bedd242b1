package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
)

// Format is the output format selected with --output.
type Format string

// Output formats.
const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

// ParseFormat validates an --output value.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatText, FormatJSON:
		return f, nil
	default:
		return FormatText, fmt.Errorf("invalid output format: %s (must be 'text' or 'json')", s)
	}
}

// Formatter writes command results as text tables or JSON.
type Formatter struct {
	format Format
	writer io.Writer
}

// NewFormatter creates a formatter writing to w.
func NewFormatter(format Format, w io.Writer) *Formatter {
	return &Formatter{format: format, writer: w}
}

// IsJSON reports whether JSON output was requested.
func (f *Formatter) IsJSON() bool {
	return f.format == FormatJSON
}

// JSON writes data as indented JSON.
func (f *Formatter) JSON(data any) error {
	enc := json.NewEncoder(f.writer)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

// Output writes data as JSON, or calls text for the text format.
func (f *Formatter) Output(data any, text func(w io.Writer) error) error {
	if f.IsJSON() {
		return f.JSON(data)
	}
	return text(f.writer)
}

// Table writes rows under a header, aligned in columns.
func (f *Formatter) Table(header []string, rows [][]string) error {
	tw := tabwriter.NewWriter(f.writer, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(header, "\t"))
	for _, row := range rows {
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	return tw.Flush()
}

// Message writes a line of text. In JSON mode data is written instead.
func (f *Formatter) Message(data any, line string) error {
	return f.Output(data, func(w io.Writer) error {
		_, err := fmt.Fprintln(w, line)
		return err
	})
}
