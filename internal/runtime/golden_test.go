package runtime

import (
	"bytes"
	"mslash/internal/module"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// goldenTest runs a .mslash file from disk and compares its output to a
// .expected file. Steal paths resolve relative to testdata/.
func goldenTest(t *testing.T, name string) {
	t.Helper()

	scriptPath := filepath.Join("..", "..", "testdata", name+".mslash")
	expectedPath := filepath.Join("..", "..", "testdata", name+".expected")

	expected, err := os.ReadFile(expectedPath)
	if err != nil {
		t.Fatalf("failed to read %s: %v", expectedPath, err)
	}

	prog, table, err := module.NewResolver(module.OSLoader{}, nil).LoadFile(scriptPath)
	if err != nil {
		t.Fatalf("load error: %v", err)
	}

	var buf bytes.Buffer
	if err := NewInterpreter(&buf).Run(prog, table); err != nil {
		t.Fatalf("runtime error: %v", err)
	}
	got := buf.String()

	expectedStr := strings.TrimRight(string(expected), "\n")
	gotStr := strings.TrimRight(got, "\n")

	if gotStr != expectedStr {
		expectedLines := strings.Split(expectedStr, "\n")
		gotLines := strings.Split(gotStr, "\n")

		t.Errorf("output mismatch for %s", name)
		maxLines := len(expectedLines)
		if len(gotLines) > maxLines {
			maxLines = len(gotLines)
		}
		for i := 0; i < maxLines; i++ {
			var exp, g string
			if i < len(expectedLines) {
				exp = expectedLines[i]
			} else {
				exp = "<missing>"
			}
			if i < len(gotLines) {
				g = gotLines[i]
			} else {
				g = "<missing>"
			}
			prefix := "  "
			if exp != g {
				prefix = "! "
			}
			t.Logf("%sline %d: expected=%q got=%q", prefix, i+1, exp, g)
		}
	}
}

func TestGoldenBasics(t *testing.T) {
	goldenTest(t, "golden_basics")
}

func TestGoldenClasses(t *testing.T) {
	goldenTest(t, "golden_classes")
}

func TestGoldenSteal(t *testing.T) {
	goldenTest(t, "golden_steal")
}
