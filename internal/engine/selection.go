package engine

import (
	"sort"
	"strconv"
	"strings"

	"github.com/KaramelBytes/salesdash/internal/dataset"
)

// Selection holds one set of selected values per filterable dimension.
// OR within a set, AND across sets. A nil or empty set selects nothing.
// Selections are passed by value; use Clone before sharing across goroutines.
type Selection struct {
	Model        []string `json:"model"`
	Year         []string `json:"year"`
	Region       []string `json:"region"`
	FuelType     []string `json:"fuel_type"`
	Transmission []string `json:"transmission"`
}

// DefaultSelection selects every distinct value of every filterable dimension.
func DefaultSelection(ds *dataset.Dataset) Selection {
	var s Selection
	for _, d := range dataset.FilterDimensions {
		s.Set(d, ds.Distinct(d))
	}
	return s
}

// Values returns the selected values of dim (nil for Color, which is not filterable).
func (s Selection) Values(dim dataset.Dimension) []string {
	switch dim {
	case dataset.Model:
		return s.Model
	case dataset.Year:
		return s.Year
	case dataset.Region:
		return s.Region
	case dataset.FuelType:
		return s.FuelType
	case dataset.Transmission:
		return s.Transmission
	}
	return nil
}

// Set replaces the selected values of dim.
func (s *Selection) Set(dim dataset.Dimension, values []string) {
	v := append([]string{}, values...)
	switch dim {
	case dataset.Model:
		s.Model = v
	case dataset.Year:
		s.Year = v
	case dataset.Region:
		s.Region = v
	case dataset.FuelType:
		s.FuelType = v
	case dataset.Transmission:
		s.Transmission = v
	}
}

// Clone returns a deep copy so later mutations by the caller cannot leak into a pass.
func (s Selection) Clone() Selection {
	var out Selection
	for _, d := range dataset.FilterDimensions {
		out.Set(d, s.Values(d))
	}
	return out
}

// Key is a canonical encoding: per dimension, sorted and deduplicated values, each
// length-prefixed so no value content can imitate a separator. Two selections with the
// same membership have the same key, and different memberships never share one.
func (s Selection) Key() string {
	var b strings.Builder
	for _, d := range dataset.FilterDimensions {
		vals := append([]string{}, s.Values(d)...)
		sort.Strings(vals)
		b.WriteString(d.String())
		b.WriteByte('=')
		for i, v := range vals {
			if i > 0 && v == vals[i-1] {
				continue
			}
			b.WriteString(strconv.Itoa(len(v)))
			b.WriteByte(':')
			b.WriteString(v)
		}
		b.WriteByte(';')
	}
	return b.String()
}

// predicate is a compiled Selection: one lookup set per filterable dimension.
type predicate [len(filterDims)]map[string]struct{}

var filterDims = [...]dataset.Dimension{dataset.Model, dataset.Year, dataset.Region, dataset.FuelType, dataset.Transmission}

func compile(s Selection) (predicate, bool) {
	var p predicate
	for i, d := range filterDims {
		vals := s.Values(d)
		if len(vals) == 0 {
			return p, false
		}
		set := make(map[string]struct{}, len(vals))
		for _, v := range vals {
			set[v] = struct{}{}
		}
		p[i] = set
	}
	return p, true
}

// match reports whether r passes every membership test. Missing values never match.
func (p *predicate) match(r *dataset.Record) bool {
	for i, d := range filterDims {
		v, ok := r.Dimension(d)
		if !ok {
			return false
		}
		if _, in := p[i][v]; !in {
			return false
		}
	}
	return true
}
