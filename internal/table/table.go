// Package table renders records and summaries as console tables. Every
// function here is pure: it formats, it never reads or mutates a store.
package table

import (
	"fmt"
	"strings"

	"github.com/roach88/cms/internal/record"
	"github.com/roach88/cms/internal/store"
)

type column struct {
	title string
	width int
}

// Records renders rows as a boxed table. Column widths grow to fit the
// widest cell, measured in display columns.
func Records(rows []record.Record) string {
	cols := []column{
		{"ID", 10},
		{"Name", 14},
		{"Programme", 20},
		{"Mark", 6},
	}
	cells := make([][]string, len(rows))
	for i, r := range rows {
		cells[i] = []string{
			fmt.Sprintf("%d", r.ID),
			r.Name,
			r.Programme,
			fmt.Sprintf("%.2f", r.Mark),
		}
		for j, c := range cells[i] {
			cols[j].width = max(cols[j].width, record.DisplayWidth(c))
		}
	}

	var b strings.Builder
	rule := ruleLine(cols)
	b.WriteString(rule)
	writeRow(&b, cols, titles(cols))
	b.WriteString(rule)
	for _, row := range cells {
		writeRow(&b, cols, row)
	}
	b.WriteString(rule)
	return b.String()
}

// Record renders a single record as labelled lines, for QUERY output.
func Record(r record.Record) string {
	return fmt.Sprintf("ID        : %d\nName      : %s\nProgramme : %s\nMark      : %.2f\n",
		r.ID, r.Name, r.Programme, r.Mark)
}

// Summary renders aggregate statistics.
func Summary(s store.Summary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Total number of students: %d\n", s.Count)
	fmt.Fprintf(&b, "Average mark: %.2f\n", s.Average)
	fmt.Fprintf(&b, "Highest mark: %.2f (%s)\n", s.Max.Mark, s.Max.Name)
	fmt.Fprintf(&b, "Lowest mark: %.2f (%s)\n", s.Min.Mark, s.Min.Name)
	return b.String()
}

func titles(cols []column) []string {
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = c.title
	}
	return out
}

func ruleLine(cols []column) string {
	var b strings.Builder
	b.WriteByte('+')
	for _, c := range cols {
		b.WriteString(strings.Repeat("-", c.width+2))
		b.WriteByte('+')
	}
	b.WriteByte('\n')
	return b.String()
}

func writeRow(b *strings.Builder, cols []column, cells []string) {
	b.WriteByte('|')
	for i, c := range cols {
		cell := cells[i]
		b.WriteByte(' ')
		b.WriteString(cell)
		b.WriteString(strings.Repeat(" ", c.width-record.DisplayWidth(cell)))
		b.WriteString(" |")
	}
	b.WriteByte('\n')
}
