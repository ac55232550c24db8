// Package scope draws a sample window as a text oscilloscope.
package scope

import (
	"math"
	"strings"
)

// WaitingMessage is shown when there is nothing to plot yet.
const WaitingMessage = "waiting for signal..."

const (
	traceRune = '*'
	zeroRune  = '-'
	gridRune  = '.'
	divRune   = ':'
	crossRune = '+'
)

// Render returns height lines of width runes each. Samples are expected in
// [-1, 1]; values outside that range are pinned to the top or bottom row.
func Render(samples []float64, width, height int) []string {
	if width <= 0 || height <= 0 {
		return nil
	}

	canvas := make([][]rune, height)
	for y := range canvas {
		canvas[y] = []rune(strings.Repeat(" ", width))
	}

	if len(samples) < 2 {
		putCentered(canvas, WaitingMessage)
		return lines(canvas)
	}

	drawGrid(canvas)
	drawTrace(canvas, samples)
	return lines(canvas)
}

func drawGrid(canvas [][]rune) {
	height, width := len(canvas), len(canvas[0])
	center := rowFor(0, height)

	for _, frac := range []float64{-2.0 / 3, -1.0 / 3, 1.0 / 3, 2.0 / 3} {
		y := rowFor(frac, height)
		if y == center {
			continue
		}
		for x := range canvas[y] {
			canvas[y][x] = gridRune
		}
	}
	for x := range canvas[center] {
		canvas[center][x] = zeroRune
	}

	for i := 0; i <= 4; i++ {
		x := i * (width - 1) / 4
		for y := range canvas {
			if canvas[y][x] == ' ' {
				canvas[y][x] = divRune
			} else {
				canvas[y][x] = crossRune
			}
		}
	}
}

// drawTrace resamples to one point per column and joins neighbouring points
// with a vertical run so steep edges stay connected.
func drawTrace(canvas [][]rune, samples []float64) {
	height, width := len(canvas), len(canvas[0])
	n := len(samples)

	prev := -1
	for x := 0; x < width; x++ {
		idx := 0
		if width > 1 {
			idx = x * (n - 1) / (width - 1)
		}
		y := rowFor(samples[idx], height)

		lo, hi := y, y
		if prev >= 0 {
			lo, hi = min(prev, y), max(prev, y)
		}
		for yy := lo; yy <= hi; yy++ {
			canvas[yy][x] = traceRune
		}
		prev = y
	}
}

// rowFor maps a value in [-1, 1] to a row, with +1 at the top.
func rowFor(v float64, height int) int {
	if math.IsNaN(v) {
		v = 0
	}
	v = math.Max(-1, math.Min(1, v))
	half := float64(height-1) / 2
	y := int(math.Round(half - v*half))
	return max(0, min(height-1, y))
}

func putCentered(canvas [][]rune, msg string) {
	height, width := len(canvas), len(canvas[0])
	runes := []rune(msg)
	if len(runes) > width {
		runes = runes[:width]
	}
	x := (width - len(runes)) / 2
	copy(canvas[height/2][x:], runes)
}

func lines(canvas [][]rune) []string {
	out := make([]string, len(canvas))
	for i, row := range canvas {
		out[i] = string(row)
	}
	return out
}
