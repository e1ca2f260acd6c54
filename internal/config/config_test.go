package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	c, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if c.ListenAddr != ":8080" || c.CacheSize != 64 || c.ChartTheme != "light" || c.DecimalSeparator != "." {
		t.Fatalf("unexpected defaults: %+v", c)
	}
}

func TestSaveLoadRoundTripAndEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	c := &Global{
		DatasetPath:      "/data/bmw.csv",
		ListenAddr:       "127.0.0.1:9000",
		LogLevel:         "debug",
		LogFormat:        "json",
		CacheSize:        8,
		DecimalSeparator: ",",
		ChartTheme:       "dark",
	}
	if err := Save(c, path); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.DatasetPath != c.DatasetPath || got.CacheSize != 8 || got.ChartTheme != "dark" || got.DecimalSeparator != "," {
		t.Fatalf("round trip mismatch: %+v", got)
	}

	t.Setenv("SALESDASH_LISTEN_ADDR", ":7070")
	got, err = Load(path)
	if err != nil {
		t.Fatalf("load with env: %v", err)
	}
	if got.ListenAddr != ":7070" {
		t.Fatalf("env should override file, got %q", got.ListenAddr)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("chart_theme: neon\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatalf("expected validation error for chart_theme")
	}
}

func TestSetAndGet(t *testing.T) {
	var c Global
	if err := c.Set("cache_size", "12"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if v, _ := c.Get("cache_size"); v != "12" {
		t.Fatalf("get cache_size = %q", v)
	}
	if err := c.Set("cache_size", "12abc"); err == nil {
		t.Fatalf("expected integer error")
	}
	if err := c.Set("delimiter", ";;"); err == nil {
		t.Fatalf("expected single-character error")
	}
	if err := c.Set("nope", "x"); err == nil {
		t.Fatalf("expected unknown key error")
	}
	for _, k := range Keys {
		if _, err := c.Get(k); err != nil {
			t.Fatalf("key %s not gettable: %v", k, err)
		}
	}
	if Rune(";") != ';' || Rune("") != 0 {
		t.Fatalf("rune helper")
	}
}
