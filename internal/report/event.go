// Package report carries sync status as a stream of discrete events.
// The core only emits events; rendering lives in the reporters below.
package report

type Kind string

const (
	GroupStarted Kind = "group_started"
	ItemFound    Kind = "item_found"
	Progress     Kind = "progress"
	Complete     Kind = "complete"
	Skipped      Kind = "skipped"
	Error        Kind = "error"
)

// Indeterminate is the Percent value of a progress event without a size hint.
const Indeterminate = -1

// Event is one status update. Course and Name identify the file so interleaved
// events from parallel transfers can be attributed.
type Event struct {
	Kind     Kind
	Course   string
	ItemKind string // "folder" or "module" for ItemFound
	Name     string
	Percent  int
	Bytes    int64
	Message  string
}

// Reporter consumes events. Implementations must be safe for concurrent use.
type Reporter interface {
	Report(Event)
}

// Func adapts a function to Reporter.
type Func func(Event)

func (f Func) Report(e Event) { f(e) }

// Nop drops every event.
var Nop Reporter = Func(func(Event) {})

// Chan forwards events to ch. The caller owns ch and drains it.
func Chan(ch chan<- Event) Reporter {
	return Func(func(e Event) { ch <- e })
}

// WithCourse stamps every event that has no course with code.
func WithCourse(r Reporter, code string) Reporter {
	if r == nil {
		r = Nop
	}
	return Func(func(e Event) {
		if e.Course == "" {
			e.Course = code
		}
		r.Report(e)
	})
}

// Multi fans events out to several reporters in order.
func Multi(rs ...Reporter) Reporter {
	return Func(func(e Event) {
		for _, r := range rs {
			if r != nil {
				r.Report(e)
			}
		}
	})
}
