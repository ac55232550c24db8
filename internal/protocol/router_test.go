package protocol

import (
	"errors"
	"testing"

	"go.uber.org/zap"
)

func TestRouterDispatch(t *testing.T) {
	r := NewRouter(zap.NewNop())

	var got []float64
	r.Register(CmdSetFreq, func(v float64) error {
		got = append(got, v)
		return nil
	})

	if err := r.Dispatch(Command{Type: CmdSetFreq, Value: 440}); err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0] != 440 {
		t.Errorf("handler saw %v", got)
	}
}

func TestRouterIgnoresUnregistered(t *testing.T) {
	r := NewRouter(zap.NewNop())
	for _, c := range []Command{{Type: CmdNone}, {Type: CommandType(42)}, {Type: CmdStart}} {
		if err := r.Dispatch(c); err != nil {
			t.Errorf("dispatch %s: %v", c, err)
		}
	}
}

func TestRouterPropagatesHandlerError(t *testing.T) {
	r := NewRouter(zap.NewNop())
	boom := errors.New("boom")
	r.Register(CmdStop, func(float64) error { return boom })
	if err := r.Dispatch(Command{Type: CmdStop}); !errors.Is(err, boom) {
		t.Errorf("expected handler error, got %v", err)
	}
}
