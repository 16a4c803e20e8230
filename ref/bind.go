package ref

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/cespare/xxhash/v2"
)

type BindKind uint8

const (
	// BindNone means the target exposes neither a property nor a method by that name.
	BindNone BindKind = iota
	BindProperty
	BindMethod
)

func (k BindKind) String() string {
	switch k {
	case BindProperty:
		return "property"
	case BindMethod:
		return "method"
	default:
		return "none"
	}
}

// Binding is the subscription created by BindRef, BindComputed or BindTwoWay.
type Binding struct {
	id   uint64
	name string
	kind BindKind

	mu   sync.Mutex
	stop func()
	err  error
}

func newBinding(target any, name string) *Binding {
	return &Binding{
		id:   slotID(target, name),
		name: name,
	}
}

// slotID identifies a (target, slot name) pair.
func slotID(target any, name string) uint64 {
	d := xxhash.New()
	d.WriteString(targetKey(target))
	d.WriteString("/")
	d.WriteString(name)
	return d.Sum64()
}

// targetID identifies a target without comparing it, so value types holding maps
// or slices can be keyed too.
func targetID(target any) uint64 {
	return xxhash.Sum64String(targetKey(target))
}

func targetKey(target any) string {
	return fmt.Sprintf("%T:%p", target, target)
}

func (b *Binding) ID() uint64 {
	return b.id
}

func (b *Binding) Name() string {
	return b.name
}

func (b *Binding) Kind() BindKind {
	return b.kind
}

// Bound reports whether a property or method matched.
func (b *Binding) Bound() bool {
	return b.kind != BindNone
}

// Err returns the last error met while writing to the target.
func (b *Binding) Err() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.err
}

func (b *Binding) setErr(err error) {
	b.mu.Lock()
	b.err = err
	b.mu.Unlock()
}

// Stop removes the observer the binding registered. It is safe to call more than once.
func (b *Binding) Stop() {
	b.mu.Lock()
	stop := b.stop
	b.stop = nil
	b.mu.Unlock()

	if stop != nil {
		stop()
	}
}

func (b *Binding) String() string {
	return fmt.Sprintf("%s(%s)#%016x", b.name, b.kind, b.id)
}

type writeFunc func(v any) error

// resolve probes target for a settable property, then for a method.
func resolve(target any, name string) (BindKind, writeFunc) {
	if pt, ok := target.(PropertyTarget); ok && pt.HasProperty(name) {
		return BindProperty, func(v any) error {
			if cur, ok := pt.Property(name); ok && equalValues(cur, v) {
				return nil
			}
			if !pt.SetProperty(name, v) {
				return fmt.Errorf("%w: property %q got %T", ErrRejected, name, v)
			}
			return nil
		}
	}
	if mt, ok := target.(MethodTarget); ok && mt.HasMethod(name) {
		return BindMethod, func(v any) error {
			return mt.Invoke(name, v)
		}
	}
	return BindNone, nil
}

func equalValues(a, b any) bool {
	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta != tb {
		return false
	}
	if ta == nil {
		return true
	}
	if !ta.Comparable() {
		return false
	}
	return a == b
}

func (b *Binding) write(w writeFunc, v any) {
	if err := w(v); err != nil {
		b.setErr(err)
	}
}

// BindRef writes r's value into the named property (or passes it to the named
// method) of target now and on every change. When target has neither, nothing
// happens and the returned Binding reports BindNone.
func BindRef[T comparable](target any, name string, r *Ref[T]) *Binding {
	b := newBinding(target, name)
	kind, w := resolve(target, name)
	if kind == BindNone {
		return b
	}
	b.kind = kind

	b.write(w, r.Value())
	// an earlier observer may already have moved r on, so write what it holds now
	stop := r.OnChanged(func(T) {
		b.write(w, r.Value())
	})

	b.mu.Lock()
	b.stop = stop
	b.mu.Unlock()
	return b
}

// BindComputed is BindRef for a Computed. The value written is always c.Value()
// at write time.
func BindComputed[T any](target any, name string, c *Computed[T]) *Binding {
	b := newBinding(target, name)
	kind, w := resolve(target, name)
	if kind == BindNone {
		return b
	}
	b.kind = kind

	push := func() {
		v, err := c.Value()
		if err != nil {
			b.setErr(fmt.Errorf("bind %q: %w", name, err))
			return
		}
		b.write(w, v)
	}
	push()
	stop := c.OnChanged(func(any) {
		push()
	})

	b.mu.Lock()
	b.stop = stop
	b.mu.Unlock()
	return b
}

// BindTwoWay binds r to target and feeds the target's input events for the same
// property back into r.
func BindTwoWay[T comparable](target EventTarget, name string, r *Ref[T]) *Binding {
	b := BindRef(target, name, r)
	r.ListenOn(target, name)
	return b
}
