package engine

import (
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/KaramelBytes/salesdash/internal/dataset"
	"github.com/KaramelBytes/salesdash/internal/export"
	"github.com/KaramelBytes/salesdash/internal/logger"
	"github.com/sirupsen/logrus"
)

// Options tunes an Engine.
type Options struct {
	// CacheSize bounds memoized snapshots; 0 uses the default, negative disables caching.
	CacheSize int
	Logger    *logger.Logger
}

const defaultCacheSize = 64

// Aggregates is the fixed battery of views computed on every pass.
type Aggregates struct {
	SalesByYearModel    Result   `json:"sales_by_year_model"`
	PriceByModel        Result   `json:"price_by_model"`
	SalesByRegion       Result   `json:"sales_by_region"`
	SalesByTransmission Result   `json:"sales_by_transmission"`
	SalesByColor        Result   `json:"sales_by_color"`
	CorrelationMatrix   Result   `json:"correlation_matrix"`
	YoYGrowth           Result   `json:"yoy_growth"`
	Leaders             *Leaders `json:"leaders"`
}

// Snapshot is the output of one pass. Each Run returns its own Snapshot with its own
// Selection; the aggregates, view and export bytes are shared through the cache and
// must be treated as read-only.
type Snapshot struct {
	Key        string     `json:"key"`
	Dataset    string     `json:"dataset"`
	Selection  Selection  `json:"selection"`
	Rows       int        `json:"rows"`
	TotalRows  int        `json:"total_rows"`
	TotalSales float64    `json:"total_sales"`
	TotalValue float64    `json:"total_value"`
	Aggregates Aggregates `json:"aggregates"`
	View       View       `json:"-"`
	Export     []byte     `json:"-"`
}

// Empty reports whether the filtered view had no rows.
func (s *Snapshot) Empty() bool { return s.Rows == 0 }

// Engine runs filter-and-aggregate passes over one immutable dataset.
type Engine struct {
	ds  *dataset.Dataset
	log *logger.Logger

	mu       sync.Mutex
	capacity int
	cache    map[string]*Snapshot
	order    []string
}

// New builds an engine over ds.
func New(ds *dataset.Dataset, opt Options) (*Engine, error) {
	if ds == nil {
		return nil, errors.New("engine: nil dataset")
	}
	capacity := opt.CacheSize
	if capacity == 0 {
		capacity = defaultCacheSize
	}
	log := opt.Logger
	if log == nil {
		log = logger.Discard()
	}
	return &Engine{
		ds:       ds,
		log:      log,
		capacity: capacity,
		cache:    make(map[string]*Snapshot),
	}, nil
}

// Dataset returns the engine's dataset.
func (e *Engine) Dataset() *dataset.Dataset { return e.ds }

// DistinctValues lists the sorted distinct values of dim.
func (e *Engine) DistinctValues(dim dataset.Dimension) []string { return e.ds.Distinct(dim) }

// DefaultSelection selects everything.
func (e *Engine) DefaultSelection() Selection { return DefaultSelection(e.ds) }

// Run executes one pass: filter, totals, aggregates, leaders and export. The selection
// is copied on entry so later caller mutations cannot affect the pass. Identical
// selections over the same dataset are served from the memo cache.
func (e *Engine) Run(sel Selection) (*Snapshot, error) {
	sel = sel.Clone()
	key := e.cacheKey(sel)
	if snap, ok := e.lookup(key); ok {
		e.log.WithField("key", key[:12]).Debug("snapshot cache hit")
		return snap.withSelection(sel), nil
	}

	start := time.Now()
	snap, err := compute(e.ds, sel)
	if err != nil {
		return nil, err
	}
	snap.Key = key
	e.store(key, snap)
	e.log.WithFields(logrus.Fields{
		"key":         key[:12],
		"rows":        snap.Rows,
		"total_rows":  snap.TotalRows,
		"duration_ms": time.Since(start).Milliseconds(),
	}).Debug("pass complete")
	return snap.withSelection(sel.Clone()), nil
}

// withSelection returns a shallow copy carrying the caller's own selection, so callers
// never share selection slices with the cached entry or with each other.
func (s *Snapshot) withSelection(sel Selection) *Snapshot {
	out := *s
	out.Selection = sel
	return &out
}

func compute(ds *dataset.Dataset, sel Selection) (*Snapshot, error) {
	v := Filter(ds, sel)
	snap := &Snapshot{
		Dataset:    ds.Name(),
		Selection:  sel,
		Rows:       v.Len(),
		TotalRows:  ds.Len(),
		TotalSales: Total(v, dataset.SalesVolume),
		TotalValue: Total(v, dataset.Price),
		View:       v,
		Aggregates: Aggregates{
			SalesByYearModel:    SumByPair(v, dataset.Year, dataset.Model, dataset.SalesVolume),
			PriceByModel:        SumBy(v, dataset.Model, dataset.Price, OrderValueDesc),
			SalesByRegion:       SumBy(v, dataset.Region, dataset.SalesVolume, OrderValueDesc),
			SalesByTransmission: SumBy(v, dataset.Transmission, dataset.SalesVolume, OrderValueDesc),
			SalesByColor:        SumBy(v, dataset.Color, dataset.SalesVolume, OrderValueDesc),
			CorrelationMatrix:   Correlation(v, dataset.Metrics),
			YoYGrowth:           YoYGrowth(v),
		},
	}
	if l, err := ComputeLeaders(v); err == nil {
		snap.Aggregates.Leaders = &l
	} else if !errors.Is(err, ErrNoData) {
		return nil, err
	}
	b, err := export.CSV(v)
	if err != nil {
		return nil, fmt.Errorf("export: %w", err)
	}
	snap.Export = b
	return snap, nil
}

// cacheKey hashes the dataset identity together with the canonical selection.
func (e *Engine) cacheKey(sel Selection) string {
	h := sha1.New()
	h.Write([]byte(e.ds.ID()))
	h.Write([]byte{0})
	h.Write([]byte(sel.Key()))
	return hex.EncodeToString(h.Sum(nil))
}

func (e *Engine) lookup(key string) (*Snapshot, bool) {
	if e.capacity < 0 {
		return nil, false
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	s, ok := e.cache[key]
	return s, ok
}

func (e *Engine) store(key string, s *Snapshot) {
	if e.capacity < 0 {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, ok := e.cache[key]; ok {
		return
	}
	for len(e.order) >= e.capacity {
		oldest := e.order[0]
		e.order = e.order[1:]
		delete(e.cache, oldest)
	}
	e.cache[key] = s
	e.order = append(e.order, key)
}

// CacheLen reports how many snapshots are memoized.
func (e *Engine) CacheLen() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.cache)
}
