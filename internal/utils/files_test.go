package utils_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/KaramelBytes/salesdash/internal/utils"
)

func TestSafeWriteFileCreatesParents(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "nested", "data.csv")
	if err := utils.SafeWriteFile(path, []byte("a,b\n")); err != nil {
		t.Fatalf("write: %v", err)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if string(b) != "a,b\n" {
		t.Fatalf("content mismatch: %q", b)
	}
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Fatalf("temp file left behind")
	}
}

func TestPrettyJSON(t *testing.T) {
	b, err := utils.PrettyJSON(map[string]int{"rows": 3})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(b), "\n  \"rows\": 3") {
		t.Fatalf("expected indented output, got %s", b)
	}
}
