package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/RenatoCabral2022/WaveStream/internal/config"
	"github.com/RenatoCabral2022/WaveStream/internal/consumer"
	"github.com/RenatoCabral2022/WaveStream/internal/logging"
	"github.com/RenatoCabral2022/WaveStream/internal/ringbuffer"
	"github.com/RenatoCabral2022/WaveStream/internal/scope"
)

const (
	defaultWidth  = 80
	defaultHeight = 24

	clearScreen = "\x1b[2J"
	cursorHome  = "\x1b[H"
	hideCursor  = "\x1b[?25l"
	showCursor  = "\x1b[?25h"
)

func main() {
	cfg := config.Load()
	logger, err := logging.New(cfg.LogLevel, "viewer")
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ring, err := ringbuffer.Open(cfg.ShmName)
	if err != nil {
		logger.Fatal("failed to open ring segment; is the generator running?",
			zap.String("path", ringbuffer.SegmentPath(cfg.ShmName)), zap.Error(err))
	}
	defer ring.Close()

	history := consumer.NewHistory(cfg.ViewerPoints)
	reader := consumer.NewReader(ring, history, cfg.ViewerPoll, logger)

	readerDone := make(chan struct{})
	go func() {
		defer close(readerDone)
		reader.Start(ctx)
	}()

	out := bufio.NewWriter(os.Stdout)
	fmt.Fprint(out, clearScreen+hideCursor)
	out.Flush()

	ticker := time.NewTicker(cfg.ViewerRefresh)
	defer ticker.Stop()

	lastW, lastH := 0, 0
	for running := true; running; {
		select {
		case <-ctx.Done():
			running = false
		case <-ticker.C:
			w, h := screenSize()
			if w != lastW || h != lastH {
				fmt.Fprint(out, clearScreen)
				lastW, lastH = w, h
			}
			draw(out, history.Snapshot(), reader.Status(), w, h)
		}
	}

	reader.Stop()
	<-readerDone

	fmt.Fprint(out, showCursor+"\n")
	out.Flush()
}

// screenSize reports the drawable area, leaving one row for the status line.
func screenSize() (int, int) {
	w, h, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || w <= 0 || h <= 1 {
		return defaultWidth, defaultHeight - 1
	}
	return w, h - 1
}

func draw(out *bufio.Writer, samples []float64, st consumer.Status, width, height int) {
	fmt.Fprint(out, cursorHome)
	for _, line := range scope.Render(samples, width, height) {
		fmt.Fprintln(out, line)
	}
	status := fmt.Sprintf(" %s | samples=%d drains=%d points=%d",
		st.State, st.SamplesRead, st.Drains, st.Buffered)
	if len(status) > width {
		status = status[:width]
	}
	fmt.Fprintf(out, "%-*s", width, status)
	out.Flush()
}
