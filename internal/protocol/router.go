package protocol

import (
	"go.uber.org/zap"
)

// Handler applies one command type. value is the record's Value field.
type Handler func(value float64) error

// Router dispatches decoded commands to the handler registered for their type.
type Router struct {
	handlers map[CommandType]Handler
	logger   *zap.Logger
}

// NewRouter creates an empty router.
func NewRouter(logger *zap.Logger) *Router {
	return &Router{
		handlers: make(map[CommandType]Handler),
		logger:   logger,
	}
}

// Register adds a handler for a command type, replacing any previous one.
func (r *Router) Register(t CommandType, h Handler) {
	r.handlers[t] = h
}

// Dispatch runs the handler for cmd.Type. Types with no handler, including
// CmdNone, are ignored.
func (r *Router) Dispatch(cmd Command) error {
	h, ok := r.handlers[cmd.Type]
	if !ok {
		r.logger.Debug("ignoring command", zap.Stringer("type", cmd.Type))
		return nil
	}
	return h(cmd.Value)
}
