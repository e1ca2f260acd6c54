package engine

import (
	"errors"

	"github.com/KaramelBytes/salesdash/internal/dataset"
)

// ErrNoData is returned by Leaders when the view has no records.
var ErrNoData = errors.New("no data available for the selected filters")

// Leaders names the top-selling category per dimension by summed sales volume.
type Leaders struct {
	Model    string `json:"model"`
	Region   string `json:"region"`
	FuelType string `json:"fuel_type"`
}

// ComputeLeaders builds the leaderboard. The view must be non-empty. Ties resolve to the
// first maximum in ascending key order, so the answer depends only on category identity.
func ComputeLeaders(v View) (Leaders, error) {
	if v.Empty() {
		return Leaders{}, ErrNoData
	}
	var l Leaders
	var ok bool
	if l.Model, ok = leader(v, dataset.Model); !ok {
		return Leaders{}, ErrNoData
	}
	if l.Region, ok = leader(v, dataset.Region); !ok {
		return Leaders{}, ErrNoData
	}
	if l.FuelType, ok = leader(v, dataset.FuelType); !ok {
		return Leaders{}, ErrNoData
	}
	return l, nil
}

func leader(v View, dim dataset.Dimension) (string, bool) {
	res := SumBy(v, dim, dataset.SalesVolume, OrderKeyAsc)
	if res.Empty {
		return "", false
	}
	best := res.Entries[0]
	for _, e := range res.Entries[1:] {
		if e.Value > best.Value {
			best = e
		}
	}
	return best.Key, true
}
