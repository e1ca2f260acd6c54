package dataset

import (
	"fmt"
	"strconv"
	"strings"
)

// Column identifies one field of the sales record schema, in export order.
type Column int

const (
	ColModel Column = iota
	ColYear
	ColRegion
	ColFuelType
	ColTransmission
	ColColor
	ColPriceUSD
	ColSalesVolume
	ColEngineSizeL
	ColMileageKM
)

// Columns lists every schema column in canonical order.
var Columns = []Column{
	ColModel, ColYear, ColRegion, ColFuelType, ColTransmission,
	ColColor, ColPriceUSD, ColSalesVolume, ColEngineSizeL, ColMileageKM,
}

var columnNames = [...]string{
	ColModel:        "Model",
	ColYear:         "Year",
	ColRegion:       "Region",
	ColFuelType:     "Fuel_Type",
	ColTransmission: "Transmission",
	ColColor:        "Color",
	ColPriceUSD:     "Price_USD",
	ColSalesVolume:  "Sales_Volume",
	ColEngineSizeL:  "Engine_Size_L",
	ColMileageKM:    "Mileage_KM",
}

// String returns the canonical header name (e.g. "Fuel_Type").
func (c Column) String() string {
	if c < 0 || int(c) >= len(columnNames) {
		return fmt.Sprintf("Column(%d)", int(c))
	}
	return columnNames[c]
}

// Numeric reports whether the column is coerced to a number at load time.
func (c Column) Numeric() bool {
	switch c {
	case ColYear, ColPriceUSD, ColSalesVolume, ColEngineSizeL, ColMileageKM:
		return true
	}
	return false
}

// Dimension is a categorical column usable for filtering and grouping.
type Dimension int

const (
	Model Dimension = iota
	Year
	Region
	FuelType
	Transmission
	Color
)

// Dimensions lists every dimension; FilterDimensions the five that take part in a Selection.
var (
	Dimensions       = []Dimension{Model, Year, Region, FuelType, Transmission, Color}
	FilterDimensions = []Dimension{Model, Year, Region, FuelType, Transmission}
)

var dimensionNames = [...]string{
	Model:        "model",
	Year:         "year",
	Region:       "region",
	FuelType:     "fuel_type",
	Transmission: "transmission",
	Color:        "color",
}

var dimensionColumns = [...]Column{
	Model:        ColModel,
	Year:         ColYear,
	Region:       ColRegion,
	FuelType:     ColFuelType,
	Transmission: ColTransmission,
	Color:        ColColor,
}

func (d Dimension) String() string {
	if d < 0 || int(d) >= len(dimensionNames) {
		return fmt.Sprintf("Dimension(%d)", int(d))
	}
	return dimensionNames[d]
}

// Column maps the dimension to its schema column.
func (d Dimension) Column() Column { return dimensionColumns[d] }

// MarshalText lets dimensions act as JSON object keys.
func (d Dimension) MarshalText() ([]byte, error) { return []byte(d.String()), nil }

// UnmarshalText parses a dimension name.
func (d *Dimension) UnmarshalText(b []byte) error {
	v, err := ParseDimension(string(b))
	if err != nil {
		return err
	}
	*d = v
	return nil
}

// ParseDimension accepts the snake_case name or the canonical header name.
func ParseDimension(s string) (Dimension, error) {
	key := normalizeName(s)
	for i, n := range dimensionNames {
		if key == n {
			return Dimension(i), nil
		}
	}
	return 0, fmt.Errorf("unknown dimension %q", s)
}

// Metric is a numeric column usable for aggregation.
type Metric int

const (
	Price Metric = iota
	SalesVolume
	EngineSize
	Mileage
)

// Metrics lists every metric in correlation-matrix order.
var Metrics = []Metric{Price, SalesVolume, EngineSize, Mileage}

var metricNames = [...]string{
	Price:       "price",
	SalesVolume: "sales_volume",
	EngineSize:  "engine_size",
	Mileage:     "mileage",
}

var metricColumns = [...]Column{
	Price:       ColPriceUSD,
	SalesVolume: ColSalesVolume,
	EngineSize:  ColEngineSizeL,
	Mileage:     ColMileageKM,
}

func (m Metric) String() string {
	if m < 0 || int(m) >= len(metricNames) {
		return fmt.Sprintf("Metric(%d)", int(m))
	}
	return metricNames[m]
}

// Column maps the metric to its schema column.
func (m Metric) Column() Column { return metricColumns[m] }

func (m Metric) MarshalText() ([]byte, error) { return []byte(m.String()), nil }

func (m *Metric) UnmarshalText(b []byte) error {
	v, err := ParseMetric(string(b))
	if err != nil {
		return err
	}
	*m = v
	return nil
}

// ParseMetric accepts the short name ("price") or the header name ("Price_USD").
func ParseMetric(s string) (Metric, error) {
	key := normalizeName(s)
	for i, n := range metricNames {
		if key == n || key == normalizeName(metricColumns[i].String()) {
			return Metric(i), nil
		}
	}
	return 0, fmt.Errorf("unknown metric %q", s)
}

// NullInt is an integer that may be missing.
type NullInt struct {
	Int   int
	Valid bool
}

// NullFloat is a decimal that may be missing. Missing values never count as zero.
type NullFloat struct {
	Float float64
	Valid bool
}

// Int returns a present integer.
func Int(v int) NullInt { return NullInt{Int: v, Valid: true} }

// Float returns a present decimal.
func Float(v float64) NullFloat { return NullFloat{Float: v, Valid: true} }

// Record is one vehicle sales observation. Empty strings mark missing categories.
type Record struct {
	Model        string
	Year         NullInt
	Region       string
	FuelType     string
	Transmission string
	Color        string
	PriceUSD     NullFloat
	SalesVolume  NullFloat
	EngineSizeL  NullFloat
	MileageKM    NullFloat
}

// Dimension returns the value of d and whether it is present.
func (r *Record) Dimension(d Dimension) (string, bool) {
	var v string
	switch d {
	case Model:
		v = r.Model
	case Year:
		if !r.Year.Valid {
			return "", false
		}
		return strconv.Itoa(r.Year.Int), true
	case Region:
		v = r.Region
	case FuelType:
		v = r.FuelType
	case Transmission:
		v = r.Transmission
	case Color:
		v = r.Color
	}
	return v, v != ""
}

// Metric returns the value of m.
func (r *Record) Metric(m Metric) NullFloat {
	switch m {
	case Price:
		return r.PriceUSD
	case SalesVolume:
		return r.SalesVolume
	case EngineSize:
		return r.EngineSizeL
	case Mileage:
		return r.MileageKM
	}
	return NullFloat{}
}

// Cell renders column c for export; missing values render as "".
func (r *Record) Cell(c Column) string {
	switch c {
	case ColModel:
		return r.Model
	case ColYear:
		if !r.Year.Valid {
			return ""
		}
		return strconv.Itoa(r.Year.Int)
	case ColRegion:
		return r.Region
	case ColFuelType:
		return r.FuelType
	case ColTransmission:
		return r.Transmission
	case ColColor:
		return r.Color
	case ColPriceUSD:
		return formatFloat(r.PriceUSD)
	case ColSalesVolume:
		return formatFloat(r.SalesVolume)
	case ColEngineSizeL:
		return formatFloat(r.EngineSizeL)
	case ColMileageKM:
		return formatFloat(r.MileageKM)
	}
	return ""
}

// formatFloat uses the shortest representation that parses back to the same value.
func formatFloat(v NullFloat) string {
	if !v.Valid {
		return ""
	}
	return strconv.FormatFloat(v.Float, 'f', -1, 64)
}

func normalizeName(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.NewReplacer(" ", "_", "-", "_").Replace(s)
	return s
}
