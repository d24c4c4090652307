// Package export renders rankings as spreadsheet workbooks.
package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/godilite/voting-tool/internal/service"
	"github.com/tealeg/xlsx"
)

const (
	SheetName   = "Ranking"
	ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

var header = []string{"Item", "Total Score", "Contributors"}

// FileName is the download name for a voting's workbook.
func FileName(voting string) string {
	return voting + "_ranking.xlsx"
}

// WriteRanking writes a single-sheet workbook with one row per entry, in
// ranking order, below a header row.
func WriteRanking(w io.Writer, entries []service.RankingEntry) error {
	file := xlsx.NewFile()
	sheet, err := file.AddSheet(SheetName)
	if err != nil {
		return fmt.Errorf("add sheet: %w", err)
	}

	row := sheet.AddRow()
	for _, h := range header {
		row.AddCell().SetString(h)
	}

	for _, e := range entries {
		row := sheet.AddRow()
		row.AddCell().SetString(e.Item)
		row.AddCell().SetInt(e.TotalScore)
		row.AddCell().SetString(strings.Join(e.Contributors, ", "))
	}

	if err := file.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}
