package dataset

import (
	"sort"
	"strconv"

	"github.com/google/uuid"
)

// Dataset is an ordered, immutable sequence of records. It is built once by the
// loader and shared read-only by every downstream component.
type Dataset struct {
	id       string
	name     string
	records  []Record
	misses   map[Column]int
	warnings []string
}

// New wraps records in a Dataset with a fresh identity. The slice is copied.
func New(name string, records []Record) *Dataset {
	cp := make([]Record, len(records))
	copy(cp, records)
	return &Dataset{
		id:      uuid.NewString(),
		name:    name,
		records: cp,
		misses:  map[Column]int{},
	}
}

// ID identifies this dataset instance; it changes on every load.
func (d *Dataset) ID() string { return d.id }

// Name is the source name (usually the file's base name).
func (d *Dataset) Name() string { return d.name }

// Len returns the number of records.
func (d *Dataset) Len() int { return len(d.records) }

// Record returns a copy of the i-th record.
func (d *Dataset) Record(i int) Record { return d.records[i] }

// At returns a read-only pointer to the i-th record. Callers must not modify it.
func (d *Dataset) At(i int) *Record { return &d.records[i] }

// Misses returns the number of non-empty cells per column that failed numeric coercion.
func (d *Dataset) Misses() map[Column]int {
	out := make(map[Column]int, len(d.misses))
	for k, v := range d.misses {
		out[k] = v
	}
	return out
}

// Warnings lists non-fatal load notes (e.g. truncation by MaxRows).
func (d *Dataset) Warnings() []string {
	return append([]string(nil), d.warnings...)
}

// Distinct returns the sorted distinct non-missing values of dim. Years sort numerically.
func (d *Dataset) Distinct(dim Dimension) []string {
	seen := make(map[string]struct{})
	out := make([]string, 0)
	for i := range d.records {
		v, ok := d.records[i].Dimension(dim)
		if !ok {
			continue
		}
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	SortKeys(dim, out)
	return out
}

// SortKeys orders dimension values ascending: numerically for Year, lexically otherwise.
func SortKeys(dim Dimension, keys []string) {
	sort.SliceStable(keys, func(i, j int) bool { return KeyLess(dim, keys[i], keys[j]) })
}

// KeyLess is the ascending key order used by time series and leaderboards.
func KeyLess(dim Dimension, a, b string) bool {
	if dim == Year {
		ai, errA := strconv.Atoi(a)
		bi, errB := strconv.Atoi(b)
		if errA == nil && errB == nil {
			return ai < bi
		}
	}
	return a < b
}
