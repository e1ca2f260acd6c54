package engine

import "github.com/KaramelBytes/salesdash/internal/dataset"

// View is the subsequence of a dataset's records that passed a Selection.
// It holds indices into the parent dataset; the records themselves are never copied.
type View struct {
	ds      *dataset.Dataset
	indices []int
}

// Filter applies sel to ds in a single pass. An empty set in any dimension yields an
// empty view; rows with a missing value in a filtered dimension are excluded.
func Filter(ds *dataset.Dataset, sel Selection) View {
	v := View{ds: ds}
	if ds == nil {
		return v
	}
	p, ok := compile(sel)
	if !ok {
		return v
	}
	n := ds.Len()
	v.indices = make([]int, 0, n)
	for i := 0; i < n; i++ {
		if p.match(ds.At(i)) {
			v.indices = append(v.indices, i)
		}
	}
	return v
}

// All returns a view over every record of ds, without filtering.
func All(ds *dataset.Dataset) View {
	v := View{ds: ds, indices: make([]int, ds.Len())}
	for i := range v.indices {
		v.indices[i] = i
	}
	return v
}

// Len returns the number of records in the view.
func (v View) Len() int { return len(v.indices) }

// Empty reports whether the view has no records.
func (v View) Empty() bool { return len(v.indices) == 0 }

// At returns a read-only pointer to the i-th record of the view.
func (v View) At(i int) *dataset.Record { return v.ds.At(v.indices[i]) }

// Records copies the view's records in dataset order.
func (v View) Records() []dataset.Record {
	out := make([]dataset.Record, len(v.indices))
	for i, idx := range v.indices {
		out[i] = v.ds.Record(idx)
	}
	return out
}

// Dataset returns the parent dataset.
func (v View) Dataset() *dataset.Dataset { return v.ds }
