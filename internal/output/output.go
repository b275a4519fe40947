// Package output handles formatting output in different formats.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-isatty"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"

	"github.com/adamancini/alfredwf/alfred"
)

// Format represents an output format.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	// FormatAlfred is Alfred's script filter JSON.
	FormatAlfred Format = "alfred"
	// FormatXML is the legacy Alfred 2 script filter XML.
	FormatXML Format = "xml"
)

// Itemer is implemented by results that can be shown as script filter items.
type Itemer interface {
	Items() []alfred.Item
}

// Field is one labelled value in text output.
type Field struct {
	Key   string
	Value string
}

// Fielder is implemented by results that render as key/value text.
type Fielder interface {
	Fields() []Field
}

// Writer handles output in the specified format.
type Writer struct {
	format Format
	w      io.Writer
	tty    bool
	width  int // terminal columns, 0 when unknown
}

// NewWriter creates a new output writer. Text output is drawn as a table
// when w is a terminal.
func NewWriter(w io.Writer, format Format) *Writer {
	out := &Writer{format: format, w: w}
	if fd, ok := terminalFd(w); ok {
		out.tty = true
		if width, _, err := term.GetSize(int(fd)); err == nil {
			out.width = width
		}
	}
	return out
}

// Format returns the configured format.
func (w *Writer) Format() Format {
	return w.format
}

// Write outputs the given value in the configured format.
func (w *Writer) Write(v interface{}) error {
	switch w.format {
	case FormatJSON:
		enc := json.NewEncoder(w.w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case FormatYAML:
		enc := yaml.NewEncoder(w.w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	case FormatAlfred:
		return alfred.WriteJSON(w.w, itemsOf(v))
	case FormatXML:
		return alfred.WriteXML(w.w, itemsOf(v))
	default:
		return w.writeText(v)
	}
}

func (w *Writer) writeText(v interface{}) error {
	if f, ok := v.(Fielder); ok {
		fields := f.Fields()
		if w.tty {
			_, err := fmt.Fprintln(w.w, renderTable(fields, w.width))
			return err
		}
		return writeFields(w.w, fields)
	}
	if s, ok := v.(fmt.Stringer); ok {
		_, err := fmt.Fprintln(w.w, s.String())
		return err
	}
	_, err := fmt.Fprintf(w.w, "%+v\n", v)
	return err
}

// itemsOf converts v to script filter items. Values that are not an Itemer
// become a single informational item.
func itemsOf(v interface{}) []alfred.Item {
	switch t := v.(type) {
	case Itemer:
		return t.Items()
	case []alfred.Item:
		return t
	case alfred.Item:
		return []alfred.Item{t}
	case fmt.Stringer:
		return []alfred.Item{alfred.NewBuilder(t.String()).Valid(false).Item()}
	default:
		return []alfred.Item{alfred.NewBuilder(fmt.Sprintf("%v", v)).Valid(false).Item()}
	}
}

func writeFields(w io.Writer, fields []Field) error {
	width := 0
	for _, f := range fields {
		if len(f.Key) > width {
			width = len(f.Key)
		}
	}
	var b strings.Builder
	for _, f := range fields {
		fmt.Fprintf(&b, "%-*s  %s\n", width+1, f.Key+":", f.Value)
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func renderTable(fields []Field, width int) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	if width > 0 {
		tw.SetAllowedRowLength(width)
	}
	tw.AppendHeader(table.Row{"Field", "Value"})
	for _, f := range fields {
		tw.AppendRow(table.Row{f.Key, f.Value})
	}
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignLeft, AlignHeader: text.AlignLeft},
		{Number: 2, Align: text.AlignLeft, AlignHeader: text.AlignLeft},
	})
	return tw.Render()
}

func terminalFd(w io.Writer) (uintptr, bool) {
	file, ok := w.(*os.File)
	if !ok {
		return 0, false
	}
	fd := file.Fd()
	return fd, isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// ParseFormat parses a format string into a Format.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "text", "":
		return FormatText, nil
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "alfred":
		return FormatAlfred, nil
	case "xml":
		return FormatXML, nil
	default:
		return "", fmt.Errorf("unknown format: %s", s)
	}
}
