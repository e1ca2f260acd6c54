package report

import (
	"strings"
	"testing"

	"github.com/KaramelBytes/salesdash/internal/dataset"
	"github.com/KaramelBytes/salesdash/internal/engine"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatLargeNumber(t *testing.T) {
	cases := map[float64]string{
		0:          "0",
		999:        "999",
		1234567.0:  "1.23 Million",
		999999:     "999,999",
		2500000000: "2.50 Billion",
		-3_000_000: "-3.00 Million",
		12345.6:    "12,346",
	}
	for in, want := range cases {
		assert.Equal(t, want, FormatLargeNumber(in), "%v", in)
	}
	assert.Equal(t, "+50.0%", FormatPercent(50))
	assert.Equal(t, "-12.5%", FormatPercent(-12.5))
}

func fixture(t *testing.T) (*engine.Engine, *dataset.Dataset) {
	t.Helper()
	rec := func(model string, year int, region string, sales float64) dataset.Record {
		return dataset.Record{
			Model: model, Year: dataset.Int(year), Region: region, FuelType: "Petrol",
			Transmission: "Automatic", Color: "Black",
			PriceUSD: dataset.Float(1000), SalesVolume: dataset.Float(sales),
		}
	}
	ds := dataset.New("bmw.csv", []dataset.Record{
		rec("X3", 2020, "US", 10),
		rec("X5", 2020, "EU", 20),
		rec("X3", 2021, "US", 30),
	})
	eng, err := engine.New(ds, engine.Options{})
	require.NoError(t, err)
	return eng, ds
}

func TestMarkdownSections(t *testing.T) {
	eng, ds := fixture(t)
	snap, err := eng.Run(eng.DefaultSelection())
	require.NoError(t, err)
	md := New(snap, ds).Markdown()

	for _, want := range []string{
		"[DATASET SUMMARY]",
		"File: bmw.csv",
		"Rows: 3 of 3",
		"Total Sales: 60",
		"- Top model: X3",
		"- Top region: US",
		"| 2020 | X3 | 10 |",
		"- US: 40 (66.7%)",
		"- 2020: n/a",
		"- 2021: +0.0%",
		"- not enough complete rows",
	} {
		assert.Contains(t, md, want)
	}
	assert.NotContains(t, md, "[NOTES]")
}

func TestMarkdownEmptySelection(t *testing.T) {
	eng, ds := fixture(t)
	sel := eng.DefaultSelection()
	sel.Region = nil
	snap, err := eng.Run(sel)
	require.NoError(t, err)
	md := New(snap, ds).Markdown()

	assert.Contains(t, md, "Rows: 0 of 3")
	assert.Contains(t, md, "- region: (none)")
	assert.GreaterOrEqual(t, strings.Count(md, NoData), 6)
}
