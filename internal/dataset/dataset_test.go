package dataset

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

const header = "Model,Year,Region,Fuel_Type,Transmission,Color,Price_USD,Sales_Volume,Engine_Size_L,Mileage_KM"

func loadString(t *testing.T, s string) *Dataset {
	t.Helper()
	ds, err := Load(strings.NewReader(s), DefaultOptions())
	require.NoError(t, err)
	return ds
}

func TestLoadCoercesNumericCells(t *testing.T) {
	ds := loadString(t, header+"\n"+
		"X3,2020,Europe,Petrol,Automatic,Black,45000.5,1200,2.0,15000\n"+
		"X5,n/a,Asia,Diesel,Manual,White,abc,900,3.0,\n"+
		"i8,2021.0,North America,Hybrid,Automatic,Blue,-5,300,1.5,200\n")

	require.Equal(t, 3, ds.Len())
	assert.NotEmpty(t, ds.ID())

	r0 := ds.Record(0)
	assert.Equal(t, "X3", r0.Model)
	assert.Equal(t, Int(2020), r0.Year)
	assert.Equal(t, Float(45000.5), r0.PriceUSD)
	assert.Equal(t, Float(1200), r0.SalesVolume)

	r1 := ds.Record(1)
	assert.False(t, r1.Year.Valid, "unparsable year must be missing")
	assert.False(t, r1.PriceUSD.Valid, "unparsable price must be missing")
	assert.False(t, r1.MileageKM.Valid, "empty cell must be missing")
	assert.Equal(t, Float(3.0), r1.EngineSizeL)

	r2 := ds.Record(2)
	assert.Equal(t, Int(2021), r2.Year)
	assert.False(t, r2.PriceUSD.Valid, "negative price is rejected")

	misses := ds.Misses()
	assert.Equal(t, 1, misses[ColYear])
	assert.Equal(t, 2, misses[ColPriceUSD])
	assert.Zero(t, misses[ColMileageKM], "empty cells are not coercion misses")
}

func TestLoadNormalizesHeaderTypos(t *testing.T) {
	ds := loadString(t, "model, Yearr ,Regiion,fuel type,Transmission,Colour,Price,Sales,engine-size,Mileage\n"+
		"M3,2019,Europe,Petrol,Manual,Red,1,2,3,4\n")
	require.Equal(t, 1, ds.Len())
	r := ds.Record(0)
	assert.Equal(t, "Europe", r.Region)
	assert.Equal(t, Int(2019), r.Year)
	assert.Equal(t, "Red", r.Color)
	assert.Equal(t, Float(4), r.MileageKM)
}

func TestLoadMissingColumnsIsLoadError(t *testing.T) {
	_, err := Load(strings.NewReader("Model,Year\nX3,2020\n"), Options{Name: "bad.csv"})
	require.Error(t, err)
	var le *LoadError
	require.True(t, errors.As(err, &le))
	assert.Equal(t, "bad.csv", le.Source)
	assert.ErrorIs(t, err, ErrMissingColumns)
	assert.Contains(t, err.Error(), "Sales_Volume")
}

func TestLoadEmptySource(t *testing.T) {
	_, err := Load(strings.NewReader(""), DefaultOptions())
	assert.ErrorIs(t, err, ErrEmptySource)

	ds := loadString(t, header+"\n")
	assert.Equal(t, 0, ds.Len())
}

func TestLoadShortRowsArePadded(t *testing.T) {
	ds := loadString(t, header+"\nX1,2020,Asia\n")
	require.Equal(t, 1, ds.Len())
	r := ds.Record(0)
	assert.Equal(t, "Asia", r.Region)
	assert.Empty(t, r.FuelType)
	assert.False(t, r.SalesVolume.Valid)
}

func TestLoadMaxRowsWarns(t *testing.T) {
	opt := DefaultOptions()
	opt.MaxRows = 1
	ds, err := Load(strings.NewReader(header+"\nA,2020,EU,P,M,R,1,1,1,1\nB,2020,EU,P,M,R,1,1,1,1\n"), opt)
	require.NoError(t, err)
	assert.Equal(t, 1, ds.Len())
	require.Len(t, ds.Warnings(), 1)
	assert.Contains(t, ds.Warnings()[0], "1/2")
}

func TestParseNumericLocales(t *testing.T) {
	cases := []struct {
		in   string
		opt  Options
		want float64
		ok   bool
	}{
		{"1,234.5", DefaultOptions(), 1234.5, true},
		{"1.234,5", Options{DecimalSeparator: ',', ThousandsSeparator: '.'}, 1234.5, true},
		{"1.234,5", Options{}, 1234.5, true},
		{"12 500", DefaultOptions(), 12500, true},
		{"NaN", DefaultOptions(), 0, false},
		{"inf", DefaultOptions(), 0, false},
		{"x", DefaultOptions(), 0, false},
	}
	for _, c := range cases {
		got, ok := parseNumeric(c.in, c.opt)
		assert.Equal(t, c.ok, ok, c.in)
		if c.ok {
			assert.InDelta(t, c.want, got, 1e-9, c.in)
		}
	}
}

func TestDistinctSortsYearsNumerically(t *testing.T) {
	ds := New("t", []Record{
		{Model: "B", Year: Int(2020)},
		{Model: "A", Year: Int(999)},
		{Model: "B", Year: Int(2020)},
		{Model: "", Year: NullInt{}},
	})
	assert.Equal(t, []string{"999", "2020"}, ds.Distinct(Year))
	assert.Equal(t, []string{"A", "B"}, ds.Distinct(Model))
}

func TestParseDimensionAndMetric(t *testing.T) {
	d, err := ParseDimension("Fuel_Type")
	require.NoError(t, err)
	assert.Equal(t, FuelType, d)
	_, err = ParseDimension("regiion")
	assert.Error(t, err)

	m, err := ParseMetric("Price_USD")
	require.NoError(t, err)
	assert.Equal(t, Price, m)
	m, err = ParseMetric("sales_volume")
	require.NoError(t, err)
	assert.Equal(t, SalesVolume, m)
}

func TestLoadFileTSVAndXLSX(t *testing.T) {
	dir := t.TempDir()
	tsv := filepath.Join(dir, "sales.tsv")
	content := strings.ReplaceAll(header, ",", "\t") + "\nX3\t2020\tEurope\tPetrol\tManual\tRed\t10\t20\t2\t100\n"
	require.NoError(t, os.WriteFile(tsv, []byte(content), 0o644))
	ds, err := LoadFile(tsv, Options{DecimalSeparator: '.'})
	require.NoError(t, err)
	assert.Equal(t, "sales.tsv", ds.Name())
	require.Equal(t, 1, ds.Len())
	assert.Equal(t, Float(20), ds.Record(0).SalesVolume)

	xlsx := filepath.Join(dir, "sales.xlsx")
	f := excelize.NewFile()
	cols := strings.Split(header, ",")
	for i, h := range cols {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		require.NoError(t, f.SetCellValue("Sheet1", cell, h))
	}
	row := []interface{}{"X5", 2021, "Asia", "Diesel", "Automatic", "Blue", 55000.25, 700, 3, 12000}
	for i, v := range row {
		cell, _ := excelize.CoordinatesToCellName(i+1, 2)
		require.NoError(t, f.SetCellValue("Sheet1", cell, v))
	}
	require.NoError(t, f.SaveAs(xlsx))
	require.NoError(t, f.Close())

	ds, err = LoadFile(xlsx, DefaultOptions())
	require.NoError(t, err)
	require.Equal(t, 1, ds.Len())
	r := ds.Record(0)
	assert.Equal(t, "X5", r.Model)
	assert.Equal(t, Int(2021), r.Year)
	assert.Equal(t, Float(55000.25), r.PriceUSD)

	_, err = LoadFile(xlsx, Options{Sheet: "Nope"})
	var le *LoadError
	assert.True(t, errors.As(err, &le))
}

func TestLoadFileMissingIsLoadError(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "absent.csv"), DefaultOptions())
	var le *LoadError
	require.True(t, errors.As(err, &le))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
