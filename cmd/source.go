package cmd

import (
	"errors"
	"fmt"
	"strings"
	"time"

	cfgpkg "github.com/KaramelBytes/salesdash/internal/config"
	"github.com/KaramelBytes/salesdash/internal/dataset"
	"github.com/KaramelBytes/salesdash/internal/engine"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	// Source flags (override config if set)
	srcDelimiter string
	srcDecimal   string
	srcThousands string
	srcSheet     string
	srcMaxRows   int

	// Filter flags; an omitted flag selects every value of its dimension
	fltModel        []string
	fltYear         []string
	fltRegion       []string
	fltFuelType     []string
	fltTransmission []string
	fltNone         []string
)

func addSourceFlags(c *cobra.Command) {
	c.Flags().StringVar(&srcDelimiter, "delimiter", "", "CSV delimiter: ',' | ';' | 'tab' (auto-detect by extension if omitted)")
	c.Flags().StringVar(&srcDecimal, "decimal", "", "decimal separator for numbers: '.'|'comma'")
	c.Flags().StringVar(&srcThousands, "thousands", "", "thousands separator for numbers: ','|'.'|'space'")
	c.Flags().StringVar(&srcSheet, "sheet", "", "XLSX: sheet name to read (default: first sheet)")
	c.Flags().IntVar(&srcMaxRows, "max-rows", 0, "maximum rows to load (0 = unlimited)")
}

func addFilterFlags(c *cobra.Command) {
	c.Flags().StringSliceVar(&fltModel, "model", nil, "model(s) to include (repeatable; default all)")
	c.Flags().StringSliceVar(&fltYear, "year", nil, "year(s) to include (repeatable; default all)")
	c.Flags().StringSliceVar(&fltRegion, "region", nil, "region(s) to include (repeatable; default all)")
	c.Flags().StringSliceVar(&fltFuelType, "fuel-type", nil, "fuel type(s) to include (repeatable; default all)")
	c.Flags().StringSliceVar(&fltTransmission, "transmission", nil, "transmission(s) to include (repeatable; default all)")
	c.Flags().StringSliceVar(&fltNone, "none", nil, "dimension(s) to deselect entirely, e.g. --none region")
}

// datasetPath resolves the positional argument or falls back to dataset_path.
func datasetPath(args []string) (string, error) {
	if len(args) > 0 && args[0] != "" {
		return args[0], nil
	}
	if cfg != nil && cfg.DatasetPath != "" {
		return cfg.DatasetPath, nil
	}
	return "", errors.New("no dataset given: pass a file or set dataset_path (salesdash config set dataset_path <file>)")
}

// sourceOptions merges flags over config into loader options.
func sourceOptions() (dataset.Options, error) {
	opt := dataset.DefaultOptions()
	if cfg != nil {
		opt.Delimiter = cfgpkg.Rune(cfg.Delimiter)
		opt.DecimalSeparator = cfgpkg.Rune(cfg.DecimalSeparator)
		opt.ThousandsSeparator = cfgpkg.Rune(cfg.ThousandsSeparator)
		opt.Sheet = cfg.Sheet
		opt.MaxRows = cfg.MaxRows
	}
	switch strings.ToLower(srcDelimiter) {
	case "":
	case ",":
		opt.Delimiter = ','
	case ";":
		opt.Delimiter = ';'
	case "\t", "tab":
		opt.Delimiter = '\t'
	default:
		return opt, fmt.Errorf("unsupported --delimiter: %s", srcDelimiter)
	}
	switch strings.ToLower(strings.TrimSpace(srcDecimal)) {
	case "":
	case ",", "comma":
		opt.DecimalSeparator = ','
	case ".", "dot":
		opt.DecimalSeparator = '.'
	default:
		return opt, fmt.Errorf("unsupported --decimal: %s (use '.'|'comma')", srcDecimal)
	}
	switch strings.ToLower(srcThousands) {
	case "":
	case ",":
		opt.ThousandsSeparator = ','
	case ".":
		opt.ThousandsSeparator = '.'
	case "space", " ":
		opt.ThousandsSeparator = ' '
	default:
		return opt, fmt.Errorf("unsupported --thousands: %s (use ','|'.'|'space')", srcThousands)
	}
	if srcSheet != "" {
		opt.Sheet = srcSheet
	}
	if srcMaxRows > 0 {
		opt.MaxRows = srcMaxRows
	}
	return opt, nil
}

// loadEngine reads the dataset and wraps it in an engine.
func loadEngine(args []string) (*engine.Engine, error) {
	ensureConfig()
	path, err := datasetPath(args)
	if err != nil {
		return nil, err
	}
	opt, err := sourceOptions()
	if err != nil {
		return nil, err
	}
	start := time.Now()
	ds, err := dataset.LoadFile(path, opt)
	if err != nil {
		return nil, err
	}
	fields := logrus.Fields{
		"file":        ds.Name(),
		"rows":        ds.Len(),
		"duration_ms": time.Since(start).Milliseconds(),
	}
	for c, n := range ds.Misses() {
		fields["miss_"+strings.ToLower(c.String())] = n
	}
	appLog.WithFields(fields).Info("dataset loaded")
	for _, w := range ds.Warnings() {
		appLog.Warn(w)
	}
	return engine.New(ds, engine.Options{CacheSize: cfg.CacheSize, Logger: appLog})
}

// selectionFromFlags starts from everything and narrows by the filter flags.
func selectionFromFlags(c *cobra.Command, eng *engine.Engine) (engine.Selection, error) {
	sel := eng.DefaultSelection()
	flags := map[dataset.Dimension]struct {
		name string
		vals []string
	}{
		dataset.Model:        {"model", fltModel},
		dataset.Year:         {"year", fltYear},
		dataset.Region:       {"region", fltRegion},
		dataset.FuelType:     {"fuel-type", fltFuelType},
		dataset.Transmission: {"transmission", fltTransmission},
	}
	for _, d := range dataset.FilterDimensions {
		f := flags[d]
		if c.Flags().Changed(f.name) {
			sel.Set(d, f.vals)
		}
	}
	for _, name := range fltNone {
		d, err := dataset.ParseDimension(name)
		if err != nil {
			return sel, err
		}
		if d == dataset.Color {
			return sel, fmt.Errorf("dimension %s is not filterable", d)
		}
		sel.Set(d, nil)
	}
	return sel, nil
}
