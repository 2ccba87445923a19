package reports

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

// ExcelExporter is implemented by report rows that can render themselves
// into a worksheet row.
type ExcelExporter interface {
	GetCellValues() []interface{}
}

// exportExcel writes one sheet with a heading row and one row per record.
func exportExcel(data []ExcelExporter, filename string, headings ...string) error {
	f := excelize.NewFile()
	sheetName := "Sheet1"
	if _, err := f.NewSheet(sheetName); err != nil {
		return err
	}

	col := 'A'
	for _, h := range headings {
		if err := f.SetCellValue(sheetName, string(col)+"1", h); err != nil {
			return err
		}
		col++
	}

	rowNo := 2
	for _, d := range data {
		col := 'A'
		for _, value := range d.GetCellValues() {
			if err := f.SetCellValue(sheetName, string(col)+fmt.Sprint(rowNo), value); err != nil {
				return err
			}
			col++
		}
		rowNo++
	}

	return f.SaveAs(filename)
}
