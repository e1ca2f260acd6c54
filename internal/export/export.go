package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"

	"github.com/KaramelBytes/salesdash/internal/dataset"
	"github.com/xuri/excelize/v2"
)

// Rows is the read-only row access the serializers need. engine.View satisfies it.
type Rows interface {
	Len() int
	At(i int) *dataset.Record
}

// Filenames offered for downloads.
const (
	CSVFilename  = "filtered_sales_data.csv"
	XLSXFilename = "filtered_sales_data.xlsx"
	sheetName    = "Sales"
)

func header() []string {
	h := make([]string, len(dataset.Columns))
	for i, c := range dataset.Columns {
		h[i] = c.String()
	}
	return h
}

// CSV encodes rows with the canonical header in schema order. Missing cells are empty
// and numbers use their shortest exact form, so the output is deterministic.
func CSV(rows Rows) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, rows); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteCSV streams the CSV encoding of rows to w.
func WriteCSV(w io.Writer, rows Rows) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header()); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	rec := make([]string, len(dataset.Columns))
	for i := 0; i < rows.Len(); i++ {
		r := rows.At(i)
		for j, c := range dataset.Columns {
			rec[j] = r.Cell(c)
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}

// WriteXLSX writes rows to a single-sheet workbook. Numbers are stored as numeric
// cells; missing cells are left blank.
func WriteXLSX(w io.Writer, rows Rows) error {
	f := excelize.NewFile()
	defer f.Close()
	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	sw, err := f.NewStreamWriter(sheetName)
	if err != nil {
		return fmt.Errorf("stream writer: %w", err)
	}
	hdr := header()
	cells := make([]interface{}, len(hdr))
	for i, h := range hdr {
		cells[i] = h
	}
	if err := sw.SetRow("A1", cells); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i := 0; i < rows.Len(); i++ {
		r := rows.At(i)
		row := make([]interface{}, len(dataset.Columns))
		for j, c := range dataset.Columns {
			row[j] = xlsxCell(r, c)
		}
		axis, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := sw.SetRow(axis, row); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}
	if err := sw.Flush(); err != nil {
		return fmt.Errorf("flush xlsx: %w", err)
	}
	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write xlsx: %w", err)
	}
	return nil
}

func xlsxCell(r *dataset.Record, c dataset.Column) interface{} {
	switch c {
	case dataset.ColYear:
		if r.Year.Valid {
			return r.Year.Int
		}
		return nil
	case dataset.ColPriceUSD, dataset.ColSalesVolume, dataset.ColEngineSizeL, dataset.ColMileageKM:
		var v dataset.NullFloat
		switch c {
		case dataset.ColPriceUSD:
			v = r.PriceUSD
		case dataset.ColSalesVolume:
			v = r.SalesVolume
		case dataset.ColEngineSizeL:
			v = r.EngineSizeL
		default:
			v = r.MileageKM
		}
		if v.Valid {
			return v.Float
		}
		return nil
	}
	return r.Cell(c)
}
