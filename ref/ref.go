package ref

import (
	"fmt"
	"sync"
)

// Ref is an observable value cell. Assigning a value that is not equal to the current
// one notifies every observer synchronously, in registration order.
type Ref[T comparable] struct {
	mu       sync.Mutex
	value    T
	subs     fanout[T]
	listener *Listener
}

// Dependency is anything a Computed can be driven by.
type Dependency interface {
	subscribe(fn func(any)) (stop func())
}

func New[T comparable](initial ...T) *Ref[T] {
	r := &Ref[T]{}
	if len(initial) > 0 {
		r.value = initial[0]
	}
	return r
}

func (r *Ref[T]) Value() T {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.value
}

// SetValue stores v and notifies observers unless v equals the current value.
// Values whose dynamic type cannot be compared, like slices held in a Ref[any],
// always count as a change.
//
// Notifications for one cell never overlap. A SetValue made from inside an
// observer is delivered after the current pass, before the outermost SetValue
// returns. A SetValue racing with another goroutine's delivery is handed to that
// goroutine.
func (r *Ref[T]) SetValue(v T) {
	r.mu.Lock()
	if equalValues(r.value, v) {
		r.mu.Unlock()
		return
	}
	r.value = v
	drain := r.subs.push(v)
	r.mu.Unlock()

	if drain {
		r.subs.drain(&r.mu)
	}
}

// Update replaces the value with fn(current) and returns the previous value.
func (r *Ref[T]) Update(fn func(T) T) (prev T) {
	r.mu.Lock()
	prev = r.value
	next := fn(prev)
	if equalValues(next, prev) {
		r.mu.Unlock()
		return prev
	}
	r.value = next
	drain := r.subs.push(next)
	r.mu.Unlock()

	if drain {
		r.subs.drain(&r.mu)
	}
	return prev
}

// SetAny assigns v if its dynamic type is T and reports whether it did.
func (r *Ref[T]) SetAny(v any) bool {
	t, ok := v.(T)
	if !ok {
		return false
	}
	r.SetValue(t)
	return true
}

func (r *Ref[T]) OnChanged(fn func(T)) (stop func()) {
	r.mu.Lock()
	ob := r.subs.add(fn)
	r.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			r.mu.Lock()
			r.subs.remove(ob)
			r.mu.Unlock()
		})
	}
}

func (r *Ref[T]) subscribe(fn func(any)) (stop func()) {
	return r.OnChanged(func(v T) {
		fn(v)
	})
}

// Observers returns the number of registered observers.
func (r *Ref[T]) Observers() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.subs.len()
}

// ListenOn feeds input events for the named property of target back into r.
// A cell owns a single Listener: calling ListenOn again with another name re-points
// it, so every target it is installed on is then read through the new name.
func (r *Ref[T]) ListenOn(target EventTarget, name string) {
	r.mu.Lock()
	if r.listener == nil {
		r.listener = newListener(r.SetAny)
	}
	l := r.listener
	r.mu.Unlock()

	l.SetPropertyName(name)
	l.install(target)
}

// Listener returns the cell's reverse listener, nil until ListenOn was called.
func (r *Ref[T]) Listener() *Listener {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.listener
}

// Clone returns a new cell holding the current value, without observers or listener.
func (r *Ref[T]) Clone() *Ref[T] {
	return New(r.Value())
}

func (r *Ref[T]) String() string {
	return fmt.Sprint(r.Value())
}
