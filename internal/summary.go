package internal

import (
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/starford/lcsc2kicad/internal/batch"
	"github.com/starford/lcsc2kicad/internal/library"
	"github.com/starford/lcsc2kicad/internal/models"
)

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
	for i := range columns {
		header[i] = headers[i]
	}
	tw.AppendHeader(header)

	for _, row := range rows {
		r := make(table.Row, columns)
		for i := range columns {
			if i < len(row) {
				r[i] = row[i]
			} else {
				r[i] = ""
			}
		}
		tw.AppendRow(r)
	}

	configs := make([]table.ColumnConfig, 0, columns)
	for i := range columns {
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

func batchSummary(rep batch.Report) string {
	rows := [][]string{
		{"Total", strconv.Itoa(rep.Total)},
		{"Converted", strconv.Itoa(rep.Success)},
		{"Failed", strconv.Itoa(rep.Failed)},
	}
	out := renderTable([]string{"Result", "Count"}, rows, []columnAlignment{alignLeft, alignRight})
	if len(rep.Failures) == 0 {
		return out + "\n"
	}
	failed := make([][]string, 0, len(rep.Failures))
	for _, f := range rep.Failures {
		failed = append(failed, []string{f.ID, f.Err})
	}
	return out + "\n" + renderTable([]string{"Failed ID", "Error"}, failed, nil) + "\n"
}

func removeSummary(reports map[string]library.RemoveReport, ids []string) string {
	rows := make([][]string, 0, len(ids))
	for _, id := range ids {
		r := reports[id]
		rows = append(rows, []string{id, strconv.Itoa(r.Symbols), strconv.Itoa(r.Footprints), strconv.Itoa(r.Models)})
	}
	return renderTable([]string{"ID", "Symbols", "Footprints", "Models"}, rows,
		[]columnAlignment{alignLeft, alignRight, alignRight, alignRight}) + "\n"
}

func componentTable(items []models.ComponentSummary, total int) string {
	rows := make([][]string, 0, len(items))
	for _, c := range items {
		rows = append(rows, []string{
			c.ID,
			c.Name,
			c.Package,
			yesNo(c.HasSymbol),
			yesNo(c.HasFootprint),
			strings.Join(c.ModelFormats, ","),
			c.UpdatedAt.Format("2006-01-02 15:04"),
		})
	}
	out := renderTable([]string{"ID", "Name", "Package", "Symbol", "Footprint", "3D", "Updated"}, rows, nil)
	return out + "\n" + strconv.Itoa(len(items)) + " of " + strconv.Itoa(total) + " components\n"
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
