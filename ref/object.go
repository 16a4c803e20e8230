package ref

import (
	"fmt"
	"sync"

	mapset "github.com/deckarep/golang-set/v2"
)

type property struct {
	get func() any
	set func(any) bool
}

type installedFilter struct {
	f EventFilter
}

// Object adapts an arbitrary host object to the capability interfaces by explicit
// registration of its properties and methods.
type Object struct {
	name string

	mu          sync.RWMutex
	props       map[string]property
	methods     map[string]func(any) error
	propNames   mapset.Set[string]
	methodNames mapset.Set[string]
	filters     []*installedFilter
}

var (
	_ EventTarget  = (*Object)(nil)
	_ MethodTarget = (*Object)(nil)
)

func NewObject(name string) *Object {
	return &Object{
		name:        name,
		props:       map[string]property{},
		methods:     map[string]func(any) error{},
		propNames:   mapset.NewSet[string](),
		methodNames: mapset.NewSet[string](),
	}
}

func (o *Object) Name() string {
	return o.name
}

func (o *Object) String() string {
	return o.name
}

// DefineProperty registers a property. set reports whether it accepted the value.
func (o *Object) DefineProperty(name string, get func() any, set func(any) bool) *Object {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.props[name] = property{get: get, set: set}
	o.propNames.Add(name)
	return o
}

func (o *Object) DefineMethod(name string, fn func(any) error) *Object {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.methods[name] = fn
	o.methodNames.Add(name)
	return o
}

// Field registers a property of type T stored in *p.
func Field[T any](o *Object, name string, p *T) *Object {
	var mu sync.Mutex
	get := func() any {
		mu.Lock()
		defer mu.Unlock()
		return *p
	}
	set := func(v any) bool {
		t, ok := v.(T)
		if !ok {
			return false
		}
		mu.Lock()
		*p = t
		mu.Unlock()
		return true
	}
	return o.DefineProperty(name, get, set)
}

// Handler registers a method taking a single T.
func Handler[T any](o *Object, name string, fn func(T)) *Object {
	return o.DefineMethod(name, func(v any) error {
		t, ok := v.(T)
		if !ok {
			var want T
			return fmt.Errorf("%w: %s.%s wants %T, got %T", ErrRejected, o.name, name, want, v)
		}
		fn(t)
		return nil
	})
}

func (o *Object) HasProperty(name string) bool {
	return o.propNames.Contains(name)
}

func (o *Object) HasMethod(name string) bool {
	return o.methodNames.Contains(name)
}

func (o *Object) Properties() mapset.Set[string] {
	return o.propNames.Clone()
}

func (o *Object) Methods() mapset.Set[string] {
	return o.methodNames.Clone()
}

func (o *Object) Property(name string) (any, bool) {
	o.mu.RLock()
	p, ok := o.props[name]
	o.mu.RUnlock()
	if !ok || p.get == nil {
		return nil, false
	}
	return p.get(), true
}

// SetProperty is a programmatic write. Installed filters see an EventPropertyWrite.
func (o *Object) SetProperty(name string, v any) bool {
	if !o.store(name, v) {
		return false
	}
	o.PostEvent(Event{Type: EventPropertyWrite, Property: name})
	return true
}

func (o *Object) store(name string, v any) bool {
	o.mu.RLock()
	p, ok := o.props[name]
	o.mu.RUnlock()
	if !ok || p.set == nil {
		return false
	}
	return p.set(v)
}

func (o *Object) Invoke(name string, arg any) error {
	o.mu.RLock()
	fn, ok := o.methods[name]
	o.mu.RUnlock()
	if !ok {
		return fmt.Errorf("%w: method %q on %s", ErrNoSlot, name, o.name)
	}
	return fn(arg)
}

func (o *Object) InstallEventFilter(f EventFilter) (remove func()) {
	entry := &installedFilter{f: f}

	o.mu.Lock()
	o.filters = append(o.filters, entry)
	o.mu.Unlock()

	return func() {
		o.mu.Lock()
		defer o.mu.Unlock()
		for i, x := range o.filters {
			if x == entry {
				o.filters = append(o.filters[:i], o.filters[i+1:]...)
				return
			}
		}
	}
}

// PostEvent delivers evt to every installed filter on the calling goroutine.
func (o *Object) PostEvent(evt Event) {
	o.mu.RLock()
	filters := append([]*installedFilter(nil), o.filters...)
	o.mu.RUnlock()

	for _, entry := range filters {
		entry.f.FilterEvent(o, evt)
	}
}

// Input simulates a user edit: the value is stored and an EventInput is posted.
func (o *Object) Input(name string, v any) error {
	if !o.HasProperty(name) {
		return fmt.Errorf("%w: property %q on %s", ErrNoSlot, name, o.name)
	}
	if !o.store(name, v) {
		return fmt.Errorf("%w: %s.%s cannot take %T", ErrRejected, o.name, name, v)
	}
	o.PostEvent(Event{Type: EventInput, Property: name})
	return nil
}
