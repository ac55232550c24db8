package control

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/RenatoCabral2022/WaveStream/internal/protocol"
)

// REPL reads one command per line and forwards it to a Sender.
type REPL struct {
	sender Sender
	logger *zap.Logger
	prompt bool
}

// NewREPL shows a prompt only when in is an interactive terminal.
func NewREPL(sender Sender, in io.Reader, logger *zap.Logger) *REPL {
	prompt := false
	if f, ok := in.(*os.File); ok {
		prompt = term.IsTerminal(int(f.Fd()))
	}
	return &REPL{sender: sender, logger: logger, prompt: prompt}
}

// Run prints the menu and processes lines until quit is sent, in reaches EOF,
// or ctx is cancelled. Input errors are reported to out and never sent. A send
// failure ends the session. Lines are read on a separate goroutine, which may
// stay blocked on in after Run returns until in is closed.
func (r *REPL) Run(ctx context.Context, in io.Reader, out io.Writer) error {
	fmt.Fprintln(out, "\n=== CONTROLLER ===")
	for _, v := range Verbs() {
		fmt.Fprintln(out, "  "+v)
	}
	fmt.Fprintln(out, "==================")

	done := make(chan struct{})
	defer close(done)
	lines, scanErr := readLines(in, done)

	for {
		if ctx.Err() != nil {
			return nil
		}
		if r.prompt {
			fmt.Fprint(out, "> ")
		}

		var line string
		select {
		case <-ctx.Done():
			return nil
		case l, ok := <-lines:
			if !ok {
				return <-scanErr
			}
			line = l
		}

		cmd, err := Parse(line)
		switch {
		case errors.Is(err, ErrEmpty):
			continue
		case err != nil:
			fmt.Fprintln(out, "Error:", err)
			continue
		}

		if err := r.sender.Send(cmd); err != nil {
			r.logger.Error("send failed", zap.Stringer("command", cmd), zap.Error(err))
			return fmt.Errorf("send %s: %w", cmd.Type, err)
		}
		fmt.Fprintln(out, Describe(cmd))

		if cmd.Type == protocol.CmdQuit {
			return nil
		}
	}
}

// readLines delivers lines from in until EOF or done is closed. The error
// channel receives the scanner's final error before lines is closed.
func readLines(in io.Reader, done <-chan struct{}) (<-chan string, <-chan error) {
	lines := make(chan string)
	errc := make(chan error, 1)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-done:
				return
			}
		}
		errc <- scanner.Err()
	}()
	return lines, errc
}
