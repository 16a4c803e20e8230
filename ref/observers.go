package ref

import (
	"sync"
	"sync/atomic"
)

type observer[T any] struct {
	fn      func(T)
	stopped atomic.Bool
}

// observers is an ordered observer list. It is not safe on its own, owners guard it
// with their own mutex.
type observers[T any] struct {
	list []*observer[T]
}

func (o *observers[T]) add(fn func(T)) *observer[T] {
	ob := &observer[T]{fn: fn}
	o.list = append(o.list, ob)
	return ob
}

func (o *observers[T]) remove(ob *observer[T]) {
	ob.stopped.Store(true)
	for i, x := range o.list {
		if x == ob {
			o.list = append(o.list[:i], o.list[i+1:]...)
			return
		}
	}
}

func (o *observers[T]) snapshot() []*observer[T] {
	if len(o.list) == 0 {
		return nil
	}
	return append([]*observer[T](nil), o.list...)
}

func (o *observers[T]) len() int {
	return len(o.list)
}

func notify[T any](subs []*observer[T], v T) {
	for _, ob := range subs {
		if ob.stopped.Load() {
			continue
		}
		ob.fn(v)
	}
}

// fanout delivers values to observers one at a time, in the order they were pushed.
// Only one goroutine drains at a time: a push made while a drain is running, whether
// from an observer or from another goroutine, is delivered by that drain once the
// current pass is over.
type fanout[T any] struct {
	observers[T]
	pending  []T
	draining bool
}

// push queues v and reports whether the caller has to drain. The owner's lock must
// be held.
func (f *fanout[T]) push(v T) bool {
	f.pending = append(f.pending, v)
	if f.draining {
		return false
	}
	f.draining = true
	return true
}

// drain delivers queued values until none are left. mu is the owner's lock and
// must not be held.
func (f *fanout[T]) drain(mu sync.Locker) {
	done := false
	defer func() {
		if done {
			return
		}
		// an observer panicked, drop the rest so later pushes are delivered
		mu.Lock()
		f.pending = nil
		f.draining = false
		mu.Unlock()
	}()

	for {
		mu.Lock()
		if len(f.pending) == 0 {
			f.pending = nil
			f.draining = false
			mu.Unlock()
			done = true
			return
		}
		v := f.pending[0]
		f.pending = f.pending[1:]
		subs := f.snapshot()
		mu.Unlock()

		notify(subs, v)
	}
}
