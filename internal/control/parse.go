// Package control turns operator input (terminal lines, HTTP requests, Lua
// scripts) into protocol commands and hands them to a Sender.
package control

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"

	"github.com/RenatoCabral2022/WaveStream/internal/protocol"
)

var (
	ErrEmpty          = errors.New("empty command")
	ErrUnknownCommand = errors.New("unknown command")
	ErrInvalidValue   = errors.New("invalid value")
)

// Sender delivers one command to the generator. *protocol.Sender satisfies it.
type Sender interface {
	Send(cmd protocol.Command) error
}

type verb struct {
	cmd      protocol.CommandType
	hasValue bool
	usage    string
}

var verbs = map[string]verb{
	"start": {cmd: protocol.CmdStart, usage: "start"},
	"stop":  {cmd: protocol.CmdStop, usage: "stop"},
	"freq":  {cmd: protocol.CmdSetFreq, hasValue: true, usage: "freq <hz>"},
	"amp":   {cmd: protocol.CmdSetAmp, hasValue: true, usage: "amp <0..1>"},
	"quit":  {cmd: protocol.CmdQuit, usage: "quit"},
}

// Verbs lists the accepted verbs with their arguments in menu order.
func Verbs() []string {
	return []string{
		verbs["start"].usage,
		verbs["stop"].usage,
		verbs["freq"].usage,
		verbs["amp"].usage,
		verbs["quit"].usage,
	}
}

// Parse reads "<verb> [value]". Arguments after start, stop and quit are ignored.
func Parse(line string) (protocol.Command, error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return protocol.Command{}, ErrEmpty
	}
	name, rest := line, ""
	if i := strings.IndexFunc(line, unicode.IsSpace); i >= 0 {
		name, rest = line[:i], line[i:]
	}
	return Build(name, strings.TrimSpace(rest))
}

// Build maps a verb and its raw argument to a command.
func Build(name, arg string) (protocol.Command, error) {
	v, ok := verbs[strings.ToLower(name)]
	if !ok {
		return protocol.Command{}, fmt.Errorf("%w: %s", ErrUnknownCommand, name)
	}
	cmd := protocol.Command{Type: v.cmd}
	if !v.hasValue {
		return cmd, nil
	}

	value, err := strconv.ParseFloat(arg, 64)
	if err != nil || math.IsNaN(value) || math.IsInf(value, 0) {
		return protocol.Command{}, fmt.Errorf("%w for %s: %q", ErrInvalidValue, name, arg)
	}
	cmd.Value = value
	return cmd, nil
}

// Describe is the confirmation line printed after a command is sent.
func Describe(cmd protocol.Command) string {
	switch cmd.Type {
	case protocol.CmdSetFreq:
		return fmt.Sprintf("FREQ=%g Hz sent", cmd.Value)
	case protocol.CmdSetAmp:
		return fmt.Sprintf("AMP=%g sent", cmd.Value)
	default:
		return strings.ToUpper(cmd.Type.String()) + " sent"
	}
}
