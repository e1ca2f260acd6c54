package dataset

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Reader loads a dataset from a file format it recognizes by name.
type Reader interface {
	CanRead(filename string) bool
	Read(r io.Reader, opt Options) (*Dataset, error)
}

var readers []Reader

// Register adds a reader implementation to the registry.
func Register(r Reader) {
	readers = append(readers, r)
}

func init() {
	Register(delimitedReader{})
	Register(xlsxReader{})
}

type delimitedReader struct{}

func (delimitedReader) CanRead(filename string) bool {
	name := strings.ToLower(filename)
	return strings.HasSuffix(name, ".csv") || strings.HasSuffix(name, ".tsv") || strings.HasSuffix(name, ".txt")
}

func (delimitedReader) Read(r io.Reader, opt Options) (*Dataset, error) {
	if opt.Delimiter == 0 {
		opt.Delimiter = sniffDelimiter(opt.Name)
	}
	return Load(r, opt)
}

type xlsxReader struct{}

func (xlsxReader) CanRead(filename string) bool {
	return strings.HasSuffix(strings.ToLower(filename), ".xlsx")
}

func (xlsxReader) Read(r io.Reader, opt Options) (*Dataset, error) {
	return LoadXLSX(r, opt)
}

// LoadXLSX reads the selected worksheet (default: first) of an XLSX workbook.
func LoadXLSX(r io.Reader, opt Options) (*Dataset, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, &LoadError{Source: opt.Name, Err: fmt.Errorf("open xlsx: %w", err)}
	}
	defer f.Close()
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, &LoadError{Source: opt.Name, Err: errors.New("no sheets")}
	}
	sheet := sheets[0]
	if opt.Sheet != "" {
		sheet = ""
		for _, s := range sheets {
			if strings.EqualFold(s, opt.Sheet) {
				sheet = s
				break
			}
		}
		if sheet == "" {
			return nil, &LoadError{Source: opt.Name, Err: fmt.Errorf("sheet %q not found; available sheets: %s", opt.Sheet, strings.Join(sheets, ", "))}
		}
	}
	rows, err := f.Rows(sheet)
	if err != nil {
		return nil, &LoadError{Source: opt.Name, Err: fmt.Errorf("read rows: %w", err)}
	}
	defer rows.Close()
	return build(opt.Name, &xlsxSource{rows: rows}, opt)
}

type xlsxSource struct{ rows *excelize.Rows }

func (s *xlsxSource) Next() ([]string, error) {
	if !s.rows.Next() {
		if err := s.rows.Error(); err != nil {
			return nil, err
		}
		return nil, io.EOF
	}
	return s.rows.Columns(excelize.Options{RawCellValue: true})
}
