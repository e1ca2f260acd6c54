package export

import (
	"bytes"
	"strings"
	"testing"

	"github.com/KaramelBytes/salesdash/internal/dataset"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type records []dataset.Record

func (r records) Len() int                 { return len(r) }
func (r records) At(i int) *dataset.Record { return &r[i] }

func sample() records {
	return records{
		{
			Model: "X3", Year: dataset.Int(2020), Region: "Europe", FuelType: "Petrol",
			Transmission: "Automatic", Color: "Black",
			PriceUSD: dataset.Float(45000.5), SalesVolume: dataset.Float(1200),
			EngineSizeL: dataset.Float(2), MileageKM: dataset.Float(15000),
		},
		{
			Model: "M4, Competition", Year: dataset.Int(2021), Region: "Asia", FuelType: "Diesel",
			Transmission: "Manual", Color: "",
			SalesVolume: dataset.Float(0.1),
		},
	}
}

func TestCSVHeaderAndMissingCells(t *testing.T) {
	b, err := CSV(sample())
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(b)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Model,Year,Region,Fuel_Type,Transmission,Color,Price_USD,Sales_Volume,Engine_Size_L,Mileage_KM", lines[0])
	assert.Equal(t, "X3,2020,Europe,Petrol,Automatic,Black,45000.5,1200,2,15000", lines[1])
	assert.Equal(t, `"M4, Competition",2021,Asia,Diesel,Manual,,,0.1,,`, lines[2])
}

func TestCSVEmptyRowsHasHeaderOnly(t *testing.T) {
	b, err := CSV(records{})
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(string(b), "\n"))
}

func TestCSVRoundTrip(t *testing.T) {
	in := sample()
	b, err := CSV(in)
	require.NoError(t, err)

	ds, err := dataset.Load(bytes.NewReader(b), dataset.DefaultOptions())
	require.NoError(t, err)
	require.Equal(t, len(in), ds.Len())
	for i := range in {
		if diff := cmp.Diff(in[i], ds.Record(i)); diff != "" {
			t.Fatalf("row %d mismatch (-want +got):\n%s", i, diff)
		}
	}
}

func TestXLSXRoundTrip(t *testing.T) {
	in := sample()
	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, in))
	require.NotZero(t, buf.Len())

	opt := dataset.DefaultOptions()
	opt.Sheet = "Sales"
	ds, err := dataset.LoadXLSX(bytes.NewReader(buf.Bytes()), opt)
	require.NoError(t, err)
	require.Equal(t, len(in), ds.Len())
	for i := range in {
		if diff := cmp.Diff(in[i], ds.Record(i)); diff != "" {
			t.Fatalf("row %d mismatch (-want +got):\n%s", i, diff)
		}
	}
}
