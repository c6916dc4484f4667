package output

import (
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// listStyle renders left-aligned, unwrapped columns with no borders so that
// payment references and emails can be copied straight from the terminal.
var listStyle = []tablewriter.Option{
	tablewriter.WithConfig(tablewriter.Config{
		Header: tw.CellConfig{
			Formatting: tw.CellFormatting{AutoFormat: tw.On},
			Alignment:  tw.CellAlignment{Global: tw.AlignLeft},
		},
		Row: tw.CellConfig{
			Formatting: tw.CellFormatting{AutoWrap: tw.WrapNone},
			Alignment:  tw.CellAlignment{Global: tw.AlignLeft},
		},
	}),
	tablewriter.WithRendition(tw.Rendition{
		Borders:  tw.BorderNone,
		Settings: tw.Settings{Separators: tw.Separators{ShowHeader: tw.Off}},
	}),
}

// Table collects rows for one listing and writes them through the printer
// that created it.
type Table struct {
	p      *Printer
	header []string
	rows   [][]string
}

// NewTable starts a listing with the given column headers.
func (p *Printer) NewTable(header []string) *Table {
	return &Table{p: p, header: header}
}

// AddRow appends one row, one cell per header.
func (t *Table) AddRow(cells ...string) {
	t.rows = append(t.rows, cells)
}

func (t *Table) Len() int {
	return len(t.rows)
}

// Render writes the table. Quiet printers write nothing.
func (t *Table) Render() {
	if t.p.quiet {
		return
	}
	table := tablewriter.NewTable(t.p.out, listStyle...)
	table.Header(t.header)
	_ = table.Bulk(t.rows)
	_ = table.Render()
}
