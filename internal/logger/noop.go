package logger

// NoOp is a logger that discards all messages. Useful in tests.
type NoOp struct{}

// NewNoOp creates a no-op logger.
func NewNoOp() Interface {
	return &NoOp{}
}

// Debug does nothing.
func (n *NoOp) Debug(msg string, fields ...any) {}

// Info does nothing.
func (n *NoOp) Info(msg string, fields ...any) {}

// Warn does nothing.
func (n *NoOp) Warn(msg string, fields ...any) {}

// Error does nothing.
func (n *NoOp) Error(msg string, fields ...any) {}

// Fatal does nothing.
func (n *NoOp) Fatal(msg string, fields ...any) {}

// With returns the same no-op logger.
func (n *NoOp) With(fields ...any) Interface { return n }
