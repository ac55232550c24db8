package scope

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func constant(v float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}

func TestRenderDimensions(t *testing.T) {
	tests := []struct {
		name          string
		samples       []float64
		width, height int
	}{
		{"waiting", nil, 40, 10},
		{"trace", constant(0.5, 800), 80, 24},
		{"fewer samples than columns", []float64{-1, 1}, 60, 11},
		{"single column", constant(0, 10), 1, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Render(tt.samples, tt.width, tt.height)
			if len(got) != tt.height {
				t.Fatalf("expected %d lines, got %d", tt.height, len(got))
			}
			for i, line := range got {
				if n := utf8.RuneCountInString(line); n != tt.width {
					t.Fatalf("line %d: expected width %d, got %d", i, tt.width, n)
				}
			}
		})
	}
}

func TestRenderEmptyCanvas(t *testing.T) {
	if got := Render(constant(0, 10), 0, 10); got != nil {
		t.Errorf("expected nil for zero width, got %v", got)
	}
	if got := Render(constant(0, 10), 10, -1); got != nil {
		t.Errorf("expected nil for negative height, got %v", got)
	}
}

func TestRenderWaiting(t *testing.T) {
	for _, samples := range [][]float64{nil, {0.5}} {
		got := Render(samples, 40, 9)
		if !strings.Contains(got[4], WaitingMessage) {
			t.Errorf("expected waiting message on middle row, got %q", got[4])
		}
		if strings.ContainsRune(strings.Join(got, ""), traceRune) {
			t.Error("waiting screen should not draw a trace")
		}
	}

	narrow := Render(nil, 7, 3)
	if narrow[1] != WaitingMessage[:7] {
		t.Errorf("expected truncated message, got %q", narrow[1])
	}
}

func TestRenderTracePosition(t *testing.T) {
	const width, height = 40, 11

	tests := []struct {
		name string
		v    float64
		row  int
	}{
		{"positive peak at top", 1, 0},
		{"negative peak at bottom", -1, height - 1},
		{"zero on centre row", 0, height / 2},
		{"clamped above", 5, 0},
		{"clamped below", -5, height - 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Render(constant(tt.v, 100), width, height)
			if got[tt.row] != strings.Repeat(string(traceRune), width) {
				t.Errorf("expected full trace on row %d, got %q", tt.row, got[tt.row])
			}
			for y, line := range got {
				if y != tt.row && strings.ContainsRune(line, traceRune) {
					t.Errorf("unexpected trace on row %d: %q", y, line)
				}
			}
		})
	}
}

func TestRenderGrid(t *testing.T) {
	got := Render(constant(1, 100), 41, 11)

	center := got[5]
	if center[1] != zeroRune || center[0] != crossRune || center[40] != crossRune {
		t.Errorf("unexpected zero line %q", center)
	}
	for _, row := range []int{2, 3, 7, 8} {
		if got[row][1] != gridRune {
			t.Errorf("expected grid on row %d, got %q", row, got[row])
		}
	}
	for _, col := range []int{0, 10, 20, 30, 40} {
		if got[1][col] != divRune {
			t.Errorf("expected division at column %d, got %q", col, got[1])
		}
	}
}

func TestRenderConnectsSteepEdges(t *testing.T) {
	samples := append(constant(-1, 50), constant(1, 50)...)
	got := Render(samples, 20, 9)

	// Some column must carry a vertical run through every row.
	for x := 0; x < 20; x++ {
		full := true
		for y := range got {
			if got[y][x] != traceRune {
				full = false
				break
			}
		}
		if full {
			return
		}
	}
	t.Errorf("no column joins the edge:\n%s", strings.Join(got, "\n"))
}
