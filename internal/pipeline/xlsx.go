package pipeline

import (
	"os"
	"path/filepath"
	"time"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/sentiment-cli/internal/model"
)

var barHeader = []string{"symbol", "date", "open", "high", "low", "close", "volume"}

// writeBarsXLSX writes bars to a single-sheet workbook with a header row.
// Dates are written as plain YYYY-MM-DD text with no zone.
func writeBarsXLSX(path, sheetName string, bars []model.PriceBar) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return eris.Wrapf(err, "pipeline: create dir for %s", path)
	}

	f := xlsx.NewFile()
	sheet, err := f.AddSheet(sheetName)
	if err != nil {
		return eris.Wrapf(err, "pipeline: add sheet %s", sheetName)
	}

	header := sheet.AddRow()
	for _, h := range barHeader {
		header.AddCell().SetString(h)
	}
	for _, b := range bars {
		row := sheet.AddRow()
		row.AddCell().SetString(b.Symbol)
		row.AddCell().SetString(b.Date.UTC().Format(time.DateOnly))
		row.AddCell().SetFloat(b.Open)
		row.AddCell().SetFloat(b.High)
		row.AddCell().SetFloat(b.Low)
		row.AddCell().SetFloat(b.Close)
		row.AddCell().SetFloat(b.Volume)
	}

	if err := f.Save(path); err != nil {
		return eris.Wrapf(err, "pipeline: save %s", path)
	}
	return nil
}
