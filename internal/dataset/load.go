package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Options controls how a tabular source is read and coerced.
type Options struct {
	// Name labels the dataset; LoadFile defaults it to the file's base name.
	Name string
	// Delimiter for delimited text. If 0, '\t' for .tsv files and ',' otherwise.
	Delimiter rune
	// Numeric parsing locale. A zero DecimalSeparator auto-detects per value.
	DecimalSeparator   rune
	ThousandsSeparator rune
	// Sheet selects an XLSX worksheet by name; empty means the first sheet.
	Sheet string
	// MaxRows limits rows read; 0 means unlimited.
	MaxRows int
}

// DefaultOptions reads comma-separated text with '.' decimals.
func DefaultOptions() Options {
	return Options{
		Delimiter:        ',',
		DecimalSeparator: '.',
	}
}

// ErrMissingColumns is wrapped by LoadError when the header lacks schema columns.
var ErrMissingColumns = errors.New("missing required columns")

// ErrEmptySource is wrapped by LoadError when the source has no header row.
var ErrEmptySource = errors.New("empty source")

// LoadError is a structural failure reading a source. It is fatal to startup.
type LoadError struct {
	Source string
	Err    error
}

func (e *LoadError) Error() string {
	if e.Source == "" {
		return fmt.Sprintf("load dataset: %v", e.Err)
	}
	return fmt.Sprintf("load dataset %s: %v", e.Source, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// rowSource yields raw rows, header first, and io.EOF when exhausted.
type rowSource interface {
	Next() ([]string, error)
}

type csvSource struct{ r *csv.Reader }

func newCSVSource(r io.Reader, delim rune) *csvSource {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.Comma = delim
	return &csvSource{r: cr}
}

func (s *csvSource) Next() ([]string, error) { return s.r.Read() }

// Load reads a delimited text source.
func Load(r io.Reader, opt Options) (*Dataset, error) {
	delim := opt.Delimiter
	if delim == 0 {
		delim = ','
	}
	return build(opt.Name, newCSVSource(r, delim), opt)
}

// LoadFile opens path and picks a reader by extension.
func LoadFile(path string, opt Options) (*Dataset, error) {
	if opt.Name == "" {
		opt.Name = filepath.Base(path)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, &LoadError{Source: opt.Name, Err: err}
	}
	defer f.Close()
	for _, rd := range readers {
		if rd.CanRead(path) {
			return rd.Read(f, opt)
		}
	}
	// Unknown extensions fall back to delimited text.
	if opt.Delimiter == 0 {
		opt.Delimiter = sniffDelimiter(path)
	}
	return Load(f, opt)
}

func build(name string, src rowSource, opt Options) (*Dataset, error) {
	header, err := src.Next()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, &LoadError{Source: name, Err: ErrEmptySource}
		}
		return nil, &LoadError{Source: name, Err: fmt.Errorf("read header: %w", err)}
	}
	index, err := mapHeader(header)
	if err != nil {
		return nil, &LoadError{Source: name, Err: err}
	}

	ds := New(name, nil)
	maxRows := opt.MaxRows
	if maxRows <= 0 {
		maxRows = math.MaxInt
	}
	total := 0
	for {
		row, err := src.Next()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, &LoadError{Source: name, Err: fmt.Errorf("read row %d: %w", total+1, err)}
		}
		total++
		if len(ds.records) >= maxRows {
			continue
		}
		ds.records = append(ds.records, decodeRow(row, index, opt, ds.misses))
	}
	if len(ds.records) < total {
		ds.warnings = append(ds.warnings, fmt.Sprintf("processed only %d/%d rows due to MaxRows", len(ds.records), total))
	}
	return ds, nil
}

// headerAliases maps normalized header spellings, including known source typos, to columns.
var headerAliases = map[string]Column{
	"model":         ColModel,
	"year":          ColYear,
	"yearr":         ColYear,
	"region":        ColRegion,
	"regiion":       ColRegion,
	"fuel_type":     ColFuelType,
	"fueltype":      ColFuelType,
	"fuel":          ColFuelType,
	"transmission":  ColTransmission,
	"color":         ColColor,
	"colour":        ColColor,
	"colorr":        ColColor,
	"price_usd":     ColPriceUSD,
	"price":         ColPriceUSD,
	"sales_volume":  ColSalesVolume,
	"sales":         ColSalesVolume,
	"engine_size_l": ColEngineSizeL,
	"engine_size":   ColEngineSizeL,
	"mileage_km":    ColMileageKM,
	"mileage":       ColMileageKM,
}

// mapHeader resolves each schema column to a source index. The first match wins.
func mapHeader(header []string) ([len(columnNames)]int, error) {
	var idx [len(columnNames)]int
	for i := range idx {
		idx[i] = -1
	}
	for i, h := range header {
		c, ok := headerAliases[normalizeName(strings.TrimPrefix(h, "\ufeff"))]
		if !ok || idx[c] >= 0 {
			continue
		}
		idx[c] = i
	}
	var missing []string
	for _, c := range Columns {
		if idx[c] < 0 {
			missing = append(missing, c.String())
		}
	}
	if len(missing) > 0 {
		return idx, fmt.Errorf("%w: %s", ErrMissingColumns, strings.Join(missing, ", "))
	}
	return idx, nil
}

func decodeRow(row []string, index [len(columnNames)]int, opt Options, misses map[Column]int) Record {
	cell := func(c Column) string {
		i := index[c]
		if i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}
	num := func(c Column, nonNegative bool) NullFloat {
		raw := cell(c)
		if raw == "" {
			return NullFloat{}
		}
		f, ok := parseNumeric(raw, opt)
		if !ok || (nonNegative && f < 0) {
			misses[c]++
			return NullFloat{}
		}
		return Float(f)
	}
	var rec Record
	rec.Model = cell(ColModel)
	rec.Region = cell(ColRegion)
	rec.FuelType = cell(ColFuelType)
	rec.Transmission = cell(ColTransmission)
	rec.Color = cell(ColColor)
	if y := num(ColYear, false); y.Valid {
		if y.Float == math.Trunc(y.Float) && math.Abs(y.Float) < 1e9 {
			rec.Year = Int(int(y.Float))
		} else {
			misses[ColYear]++
		}
	}
	rec.PriceUSD = num(ColPriceUSD, true)
	rec.SalesVolume = num(ColSalesVolume, true)
	rec.EngineSizeL = num(ColEngineSizeL, false)
	rec.MileageKM = num(ColMileageKM, false)
	return rec
}

func sniffDelimiter(path string) rune {
	if strings.HasSuffix(strings.ToLower(path), ".tsv") {
		return '\t'
	}
	return ','
}

// parseNumeric coerces a cell to a finite float, honoring locale separators.
func parseNumeric(s string, opt Options) (float64, bool) {
	raw := strings.ReplaceAll(strings.TrimSpace(s), "\u00a0", " ")
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}
	dec := opt.DecimalSeparator
	thou := opt.ThousandsSeparator
	if dec == 0 {
		cpos := strings.LastIndex(raw, ",")
		dpos := strings.LastIndex(raw, ".")
		switch {
		case cpos >= 0 && dpos >= 0:
			if cpos > dpos {
				dec, thou = ',', '.'
			} else {
				dec, thou = '.', ','
			}
		case cpos >= 0:
			dec = ','
		default:
			dec = '.'
		}
	}
	if thou == 0 {
		for _, sep := range []rune{',', '.', ' '} {
			if sep != dec {
				raw = strings.ReplaceAll(raw, string(sep), "")
			}
		}
	} else if thou != dec {
		raw = strings.ReplaceAll(raw, string(thou), "")
	}
	if dec != '.' {
		raw = strings.ReplaceAll(raw, string(dec), ".")
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
