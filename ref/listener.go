package ref

import (
	"sync"

	mapset "github.com/deckarep/golang-set/v2"
)

// Listener turns a target's input events for one property into values for its cell.
type Listener struct {
	mu       sync.Mutex
	name     string
	forward  func(any) bool
	sources  mapset.Set[uint64]
	removers []func()
}

func newListener(forward func(any) bool) *Listener {
	return &Listener{
		forward: forward,
		sources: mapset.NewSet[uint64](),
	}
}

func (l *Listener) PropertyName() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.name
}

func (l *Listener) SetPropertyName(name string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.name = name
}

// FilterEvent reads the watched property off src on input class events and
// forwards it. Programmatic writes are ignored, as are events naming another
// property. Events without a property name are taken to concern the watched one.
func (l *Listener) FilterEvent(src EventTarget, evt Event) {
	if !evt.Type.IsInput() {
		return
	}
	name := l.PropertyName()
	if evt.Property != "" && evt.Property != name {
		return
	}
	v, ok := src.Property(name)
	if !ok {
		return
	}
	l.forward(v)
}

// install adds l to target once. Pointer targets are told apart by address,
// value targets by their contents.
func (l *Listener) install(target EventTarget) {
	if !l.sources.Add(targetID(target)) {
		return
	}
	remove := target.InstallEventFilter(l)

	l.mu.Lock()
	l.removers = append(l.removers, remove)
	l.mu.Unlock()
}

// Installed returns the number of targets the listener is installed on.
func (l *Listener) Installed() int {
	return l.sources.Cardinality()
}

// Close uninstalls the listener from every target.
func (l *Listener) Close() {
	l.mu.Lock()
	removers := l.removers
	l.removers = nil
	l.mu.Unlock()

	for _, remove := range removers {
		remove()
	}
	l.sources.Clear()
}
