package diag

// Sink receives normalized diagnostics from the pipeline.
//
// Push is append-only. Implementations must accept an empty location and
// NoPosition for line and column.
type Sink interface {
	Push(sev Severity, msg, location string, line, column int)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(sev Severity, msg, location string, line, column int)

func (f SinkFunc) Push(sev Severity, msg, location string, line, column int) {
	f(sev, msg, location, line, column)
}

// Emit pushes d into s.
func Emit(s Sink, d Diagnostic) {
	if s == nil {
		return
	}
	s.Push(d.Severity, d.Message, d.Location, d.Line, d.Column)
}

// EmitAll pushes ds into s in order.
func EmitAll(s Sink, ds []Diagnostic) {
	for _, d := range ds {
		Emit(s, d)
	}
}

// BagSink is an adapter that writes into *Bag.
type BagSink struct{ Bag *Bag }

func (s BagSink) Push(sev Severity, msg, location string, line, column int) {
	if s.Bag == nil {
		return
	}
	s.Bag.Add(New(sev, msg, location, line, column))
}

// MultiSink fans every diagnostic out to all sinks in order.
type MultiSink []Sink

func (m MultiSink) Push(sev Severity, msg, location string, line, column int) {
	for _, s := range m {
		if s != nil {
			s.Push(sev, msg, location, line, column)
		}
	}
}
