package cmd

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/KaramelBytes/salesdash/internal/dataset"
	"github.com/spf13/pflag"
)

const sampleCSV = `Model,Year,Region,Fuel_Type,Transmission,Color,Price_USD,Sales_Volume,Engine_Size_L,Mileage_KM
X3,2020,US,Petrol,Automatic,Black,40000,10,2.0,1000
X5,2020,EU,Diesel,Manual,White,60000,20,3.0,2000
X3,2021,US,Petrol,Automatic,Blue,42000,30,2.0,500
`

// runCmd is a helper to execute the root command with args.
func runCmd(t *testing.T, args ...string) {
	t.Helper()
	resetFlags()
	rootCmd.SetArgs(args)
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("command %v failed: %v", args, err)
	}
}

// resetFlags clears sticky flag state between invocations of the shared root command.
func resetFlags() {
	sumOutputPath, sumJSON = "", false
	expOutputPath = ""
	fltModel, fltYear, fltRegion, fltFuelType, fltTransmission, fltNone = nil, nil, nil, nil, nil, nil
	srcDelimiter, srcDecimal, srcThousands, srcSheet, srcMaxRows = "", "", "", "", 0
	debug, logLevelArg = false, ""
	for _, c := range rootCmd.Commands() {
		c.Flags().VisitAll(func(f *pflag.Flag) { f.Changed = false })
	}
	cfg, appLog = nil, nil
}

func setup(t *testing.T) (home, data string) {
	t.Helper()
	home = t.TempDir()
	t.Setenv("HOME", home)
	data = filepath.Join(home, "sales.csv")
	if err := os.WriteFile(data, []byte(sampleCSV), 0o644); err != nil {
		t.Fatalf("write dataset: %v", err)
	}
	return home, data
}

func TestCLI_SummaryMarkdown(t *testing.T) {
	home, data := setup(t)
	out := filepath.Join(home, "summary.md")
	runCmd(t, "summary", data, "--output", out)

	b, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read summary: %v", err)
	}
	md := string(b)
	for _, want := range []string{"[DATASET SUMMARY]", "Rows: 3 of 3", "Total Sales: 60", "- Top model: X3"} {
		if !strings.Contains(md, want) {
			t.Fatalf("summary missing %q:\n%s", want, md)
		}
	}
}

func TestCLI_SummaryFiltersAndNone(t *testing.T) {
	home, data := setup(t)
	out := filepath.Join(home, "us.md")
	runCmd(t, "summary", data, "--region", "US", "--output", out)
	b, _ := os.ReadFile(out)
	if !strings.Contains(string(b), "Total Sales: 40") {
		t.Fatalf("expected region filter to keep 40 sales:\n%s", b)
	}

	out = filepath.Join(home, "none.json")
	runCmd(t, "summary", data, "--none", "region", "--json", "--output", out)
	b, _ = os.ReadFile(out)
	if !strings.Contains(string(b), `"rows": 0`) || !strings.Contains(string(b), `"leaders": null`) {
		t.Fatalf("expected empty snapshot JSON:\n%s", b)
	}
}

func TestCLI_ExportCSVAndXLSX(t *testing.T) {
	home, data := setup(t)
	csvOut := filepath.Join(home, "out", "x3.csv")
	runCmd(t, "export", data, "--model", "X3", "--output", csvOut)
	ds, err := dataset.LoadFile(csvOut, dataset.DefaultOptions())
	if err != nil {
		t.Fatalf("reload csv: %v", err)
	}
	if ds.Len() != 2 {
		t.Fatalf("expected 2 exported rows, got %d", ds.Len())
	}

	xlsxOut := filepath.Join(home, "out", "all.xlsx")
	runCmd(t, "export", data, "--output", xlsxOut)
	ds, err = dataset.LoadFile(xlsxOut, dataset.DefaultOptions())
	if err != nil {
		t.Fatalf("reload xlsx: %v", err)
	}
	if ds.Len() != 3 {
		t.Fatalf("expected 3 exported rows, got %d", ds.Len())
	}
}

func TestCLI_ConfigSetAndDatasetPathFallback(t *testing.T) {
	home, data := setup(t)
	runCmd(t, "config", "set", "dataset_path", data)
	if _, err := os.Stat(filepath.Join(home, ".salesdash", "config.yaml")); err != nil {
		t.Fatalf("config not saved: %v", err)
	}
	out := filepath.Join(home, "fallback.md")
	runCmd(t, "summary", "--output", out)
	if _, err := os.Stat(out); err != nil {
		t.Fatalf("summary without file argument failed: %v", err)
	}
}

func TestCLI_MissingColumnsFails(t *testing.T) {
	home, _ := setup(t)
	bad := filepath.Join(home, "bad.csv")
	if err := os.WriteFile(bad, []byte("Model,Year\nX3,2020\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	resetFlags()
	rootCmd.SetArgs([]string{"summary", bad})
	if err := rootCmd.Execute(); err == nil {
		t.Fatalf("expected load error for missing columns")
	}
}
