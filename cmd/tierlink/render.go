package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"tierlink/internal/textutil"
)

// tone colors a field value when the output is a terminal.
type tone int

const (
	tonePlain tone = iota
	toneGood
	toneWarn
	toneBad
)

func (t tone) colors() text.Colors {
	switch t {
	case toneGood:
		return text.Colors{text.FgGreen}
	case toneWarn:
		return text.Colors{text.FgYellow}
	case toneBad:
		return text.Colors{text.FgRed, text.Bold}
	default:
		return nil
	}
}

type field struct {
	label string
	value string
	tone  tone
}

func plain(label, value string) field { return field{label: label, value: value} }

func toned(label, value string, t tone) field { return field{label: label, value: value, tone: t} }

// report writes human-readable command output: section headers, aligned
// label/value blocks and tables.
type report struct {
	w     io.Writer
	color bool
}

func newReport(w io.Writer) *report {
	return &report{w: w, color: isTerminal(w)}
}

func (r *report) section(title string) {
	line := "== " + strings.TrimSpace(title) + " =="
	if r.color {
		line = text.Colors{text.Bold, text.FgBlue}.Sprint(line)
	}
	fmt.Fprintln(r.w, line)
}

func (r *report) fields(fields ...field) {
	width := 0
	for _, f := range fields {
		width = max(width, len(f.label)+1)
	}
	for _, f := range fields {
		value := f.value
		if colors := f.tone.colors(); r.color && colors != nil {
			value = colors.Sprint(value)
		}
		fmt.Fprintf(r.w, "  %-*s %s\n", width, f.label+":", value)
	}
}

// table renders rows under headers. Columns listed in numeric are right
// aligned.
func (r *report) table(headers []string, rows [][]string, numeric ...int) {
	if len(headers) == 0 {
		return
	}
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.Style().Format.Header = text.FormatDefault
	if r.color {
		tw.Style().Color.Header = text.Colors{text.Bold, text.FgBlue}
	}
	tw.AppendHeader(toRow(headers, len(headers)))
	for _, row := range rows {
		tw.AppendRow(toRow(row, len(headers)))
	}
	configs := make([]table.ColumnConfig, len(headers))
	for i := range headers {
		configs[i] = table.ColumnConfig{Number: i + 1, AlignHeader: text.AlignLeft, Align: text.AlignLeft}
		if slices.Contains(numeric, i) {
			configs[i].Align = text.AlignRight
		}
	}
	tw.SetColumnConfigs(configs)
	fmt.Fprintln(r.w, tw.Render())
}

func toRow(values []string, width int) table.Row {
	row := make(table.Row, width)
	for i := range row {
		if i < len(values) {
			row[i] = values[i]
		} else {
			row[i] = ""
		}
	}
	return row
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// writeJSON encodes v as indented JSON to the command's stdout.
func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func yesNo(value bool) string {
	return textutil.Ternary(value, "yes", "no")
}
