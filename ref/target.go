package ref

// PropertyTarget is an external object exposing named, settable properties.
type PropertyTarget interface {
	HasProperty(name string) bool
	Property(name string) (any, bool)
	SetProperty(name string, v any) bool
}

// MethodTarget is an external object exposing named single-argument handlers.
type MethodTarget interface {
	HasMethod(name string) bool
	Invoke(name string, arg any) error
}

// EventTarget is a PropertyTarget that delivers host events to installed filters.
// The returned func uninstalls the filter.
type EventTarget interface {
	PropertyTarget
	InstallEventFilter(f EventFilter) (remove func())
}

type EventFilter interface {
	FilterEvent(src EventTarget, evt Event)
}

type EventType uint32

const (
	// EventInput is a user edit in progress, e.g. dragging a slider.
	EventInput EventType = 1 << iota
	// EventEditFinished is the end of a user edit, e.g. return pressed in a line edit.
	EventEditFinished
	// EventPropertyWrite is a programmatic write. Listeners ignore it.
	EventPropertyWrite

	inputEvents = EventInput | EventEditFinished
)

type Event struct {
	Type     EventType
	Property string
}

func (t EventType) IsInput() bool {
	return t&inputEvents != 0
}
