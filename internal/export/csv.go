package export

import (
	"encoding/csv"
	"fmt"
	"io"

	"agriedge/internal/model"
)

const CSVFilename = "registrations.csv"

// utf8BOM lets spreadsheet applications detect the encoding of accented names.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// WriteCSV writes the header and one flat row per registration.
func (f Formatter) WriteCSV(w io.Writer, regs []model.Registration) error {
	if _, err := w.Write(utf8BOM); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(f.FlatHeader()); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	if err := cw.WriteAll(f.FlatRows(regs)); err != nil {
		return fmt.Errorf("write csv rows: %w", err)
	}
	return nil
}
