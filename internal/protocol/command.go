// Package protocol carries control commands from the controller to the
// generator as fixed-size binary records over a named FIFO.
package protocol

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"strings"
)

// CommandType identifies what a Command asks the generator to do.
type CommandType uint32

const (
	CmdNone CommandType = iota
	CmdStart
	CmdStop
	CmdSetFreq
	CmdSetAmp
	CmdQuit
)

// RecordSize is the encoded size of one Command: a uint32 type, four reserved
// bytes and a float64 value, little-endian. It must stay below PIPE_BUF so a
// single write is never interleaved with another.
const RecordSize = 16

var ErrShortRecord = errors.New("protocol: short command record")

var commandNames = map[CommandType]string{
	CmdNone:    "none",
	CmdStart:   "start",
	CmdStop:    "stop",
	CmdSetFreq: "set_freq",
	CmdSetAmp:  "set_amp",
	CmdQuit:    "quit",
}

func (t CommandType) String() string {
	if name, ok := commandNames[t]; ok {
		return name
	}
	return fmt.Sprintf("unknown(%d)", uint32(t))
}

// ParseCommandType maps a name produced by String back to its type.
func ParseCommandType(name string) (CommandType, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	for t, n := range commandNames {
		if n == name {
			return t, true
		}
	}
	return CmdNone, false
}

// Command is one control message. Value is only meaningful for CmdSetFreq
// (Hz) and CmdSetAmp (0..1).
type Command struct {
	Type  CommandType
	Value float64
}

func (c Command) String() string {
	switch c.Type {
	case CmdSetFreq, CmdSetAmp:
		return fmt.Sprintf("%s(%g)", c.Type, c.Value)
	default:
		return c.Type.String()
	}
}

// Encode serializes cmd into its fixed-size wire record.
func Encode(cmd Command) [RecordSize]byte {
	var rec [RecordSize]byte
	binary.LittleEndian.PutUint32(rec[0:4], uint32(cmd.Type))
	binary.LittleEndian.PutUint64(rec[8:16], math.Float64bits(cmd.Value))
	return rec
}

// Decode parses one record. Extra trailing bytes are ignored.
func Decode(b []byte) (Command, error) {
	if len(b) < RecordSize {
		return Command{}, fmt.Errorf("%w: got %d of %d bytes", ErrShortRecord, len(b), RecordSize)
	}
	return Command{
		Type:  CommandType(binary.LittleEndian.Uint32(b[0:4])),
		Value: math.Float64frombits(binary.LittleEndian.Uint64(b[8:16])),
	}, nil
}
