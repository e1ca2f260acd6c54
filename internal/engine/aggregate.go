package engine

import (
	"math"
	"sort"

	"github.com/KaramelBytes/salesdash/internal/dataset"
	"gonum.org/v1/gonum/stat"
)

// Entry is one cell of an aggregate. Group is the secondary key for two-level groupings
// and the column metric for correlation matrices. Valid=false marks an undefined value.
type Entry struct {
	Key   string  `json:"key"`
	Group string  `json:"group,omitempty"`
	Value float64 `json:"value"`
	Valid bool    `json:"valid"`
}

// Result is the uniform shape returned by every aggregate query. Empty results carry
// no entries; callers must check Empty before taking max/argmax.
type Result struct {
	Entries []Entry `json:"entries"`
	Empty   bool    `json:"empty"`
}

func emptyResult() Result { return Result{Entries: []Entry{}, Empty: true} }

// Lookup returns the value stored under (key, group).
func (r Result) Lookup(key, group string) (Entry, bool) {
	for _, e := range r.Entries {
		if e.Key == key && e.Group == group {
			return e, true
		}
	}
	return Entry{}, false
}

// Keys returns entry keys in result order.
func (r Result) Keys() []string {
	out := make([]string, len(r.Entries))
	for i, e := range r.Entries {
		out[i] = e.Key
	}
	return out
}

// Sum adds every valid entry value.
func (r Result) Sum() float64 {
	var t float64
	for _, e := range r.Entries {
		if e.Valid {
			t += e.Value
		}
	}
	return t
}

// Order selects how SumBy sorts its groups.
type Order int

const (
	// OrderValueDesc ranks by descending sum; ties keep first-seen key order.
	OrderValueDesc Order = iota
	// OrderKeyAsc sorts by key ascending (years numerically), for time series.
	OrderKeyAsc
)

// Total sums metric over the view, ignoring missing values. Zero on an empty view.
func Total(v View, metric dataset.Metric) float64 {
	var t float64
	for i := 0; i < v.Len(); i++ {
		if m := v.At(i).Metric(metric); m.Valid {
			t += m.Float
		}
	}
	return t
}

// SumBy groups the view by dim and sums metric per group. Rows with a missing dim
// value are skipped; missing metric values contribute nothing.
func SumBy(v View, dim dataset.Dimension, metric dataset.Metric, order Order) Result {
	if v.Empty() {
		return emptyResult()
	}
	sums := make(map[string]float64)
	keys := make([]string, 0)
	for i := 0; i < v.Len(); i++ {
		r := v.At(i)
		k, ok := r.Dimension(dim)
		if !ok {
			continue
		}
		if _, seen := sums[k]; !seen {
			keys = append(keys, k)
			sums[k] = 0
		}
		if m := r.Metric(metric); m.Valid {
			sums[k] += m.Float
		}
	}
	if len(keys) == 0 {
		return emptyResult()
	}
	switch order {
	case OrderKeyAsc:
		dataset.SortKeys(dim, keys)
	default:
		sort.SliceStable(keys, func(i, j int) bool { return sums[keys[i]] > sums[keys[j]] })
	}
	out := Result{Entries: make([]Entry, len(keys))}
	for i, k := range keys {
		out.Entries[i] = Entry{Key: k, Value: sums[k], Valid: true}
	}
	return out
}

// SumByPair sums metric over (outer, inner) groups, ordered by outer key then inner key,
// both ascending. Entry.Key is the outer value and Entry.Group the inner one.
func SumByPair(v View, outer, inner dataset.Dimension, metric dataset.Metric) Result {
	if v.Empty() {
		return emptyResult()
	}
	type pair struct{ outer, inner string }
	sums := make(map[pair]float64)
	pairs := make([]pair, 0)
	for i := 0; i < v.Len(); i++ {
		r := v.At(i)
		o, ok := r.Dimension(outer)
		if !ok {
			continue
		}
		in, ok := r.Dimension(inner)
		if !ok {
			continue
		}
		p := pair{o, in}
		if _, seen := sums[p]; !seen {
			pairs = append(pairs, p)
			sums[p] = 0
		}
		if m := r.Metric(metric); m.Valid {
			sums[p] += m.Float
		}
	}
	if len(pairs) == 0 {
		return emptyResult()
	}
	sort.SliceStable(pairs, func(i, j int) bool {
		a, b := pairs[i], pairs[j]
		if a.outer != b.outer {
			return dataset.KeyLess(outer, a.outer, b.outer)
		}
		return dataset.KeyLess(inner, a.inner, b.inner)
	})
	out := Result{Entries: make([]Entry, len(pairs))}
	for i, p := range pairs {
		out.Entries[i] = Entry{Key: p.outer, Group: p.inner, Value: sums[p], Valid: true}
	}
	return out
}

// Correlation computes the Pearson matrix over metrics using only rows where every
// metric is present. It is empty when fewer than two complete rows remain or any
// metric has zero variance. Entries are row-major: Key is the row metric, Group the column.
func Correlation(v View, metrics []dataset.Metric) Result {
	if v.Empty() || len(metrics) == 0 {
		return emptyResult()
	}
	cols := make([][]float64, len(metrics))
	for i := 0; i < v.Len(); i++ {
		r := v.At(i)
		complete := true
		for _, m := range metrics {
			if !r.Metric(m).Valid {
				complete = false
				break
			}
		}
		if !complete {
			continue
		}
		for j, m := range metrics {
			cols[j] = append(cols[j], r.Metric(m).Float)
		}
	}
	if len(cols[0]) < 2 {
		return emptyResult()
	}
	for _, c := range cols {
		if stat.Variance(c, nil) == 0 {
			return emptyResult()
		}
	}
	out := Result{Entries: make([]Entry, 0, len(metrics)*len(metrics))}
	for a, ma := range metrics {
		for b, mb := range metrics {
			r := 1.0
			if a != b {
				r = stat.Correlation(cols[a], cols[b], nil)
				if math.IsNaN(r) {
					return emptyResult()
				}
				r = clamp(r)
			}
			out.Entries = append(out.Entries, Entry{Key: ma.String(), Group: mb.String(), Value: r, Valid: true})
		}
	}
	return out
}

func clamp(r float64) float64 {
	if r > 1 {
		return 1
	}
	if r < -1 {
		return -1
	}
	return r
}

// YoYGrowth returns the percentage change of summed sales volume from each year to the
// next, ordered by year. The first year, and any year whose predecessor sums to zero,
// is undefined (Valid=false) rather than zero.
func YoYGrowth(v View) Result {
	yearly := SumBy(v, dataset.Year, dataset.SalesVolume, OrderKeyAsc)
	if yearly.Empty {
		return yearly
	}
	out := Result{Entries: make([]Entry, len(yearly.Entries))}
	for i, e := range yearly.Entries {
		out.Entries[i] = Entry{Key: e.Key}
		if i == 0 {
			continue
		}
		prev := yearly.Entries[i-1].Value
		if prev == 0 {
			continue
		}
		out.Entries[i].Value = (e.Value - prev) / prev * 100
		out.Entries[i].Valid = true
	}
	return out
}
