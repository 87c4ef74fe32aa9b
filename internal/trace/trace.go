// Package trace is the observability seam for the content pipeline.
// Components take a Tracer instead of logging directly, so hosts can
// route events to whatever diagnostics backend they run.
package trace

import (
	"log"
	"sort"
	"strings"
)

// Tracer receives pipeline events. Implementations must be safe for
// concurrent use; the catalog loader emits from multiple goroutines.
type Tracer interface {
	Event(component, event string, fields map[string]string)
}

// Nop discards all events.
type Nop struct{}

func (Nop) Event(string, string, map[string]string) {}

// LogTracer writes events through a *log.Logger, one line per event
// with key=value pairs in stable order.
type LogTracer struct {
	L *log.Logger
}

func (t LogTracer) Event(component, event string, fields map[string]string) {
	l := t.L
	if l == nil {
		l = log.Default()
	}
	var b strings.Builder
	b.WriteString(component)
	b.WriteByte(' ')
	b.WriteString(event)
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		b.WriteByte(' ')
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(fields[k])
	}
	l.Println(b.String())
}
