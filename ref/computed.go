package ref

import "sync"

// Computed derives a value from the cells it was given. Nothing is cached: Value
// re-runs the method every time. Observers fire whenever any upstream cell changes
// and receive that cell's new value, not the derived one.
type Computed[T any] struct {
	mu     sync.Mutex
	method func() T
	deps   []Dependency
	subs   fanout[any]
}

func NewComputed[T any](deps ...Dependency) *Computed[T] {
	c := &Computed[T]{}
	return c.AddRef(deps...)
}

func (c *Computed[T]) AddRef(deps ...Dependency) *Computed[T] {
	for _, dep := range deps {
		dep.subscribe(c.updated)

		c.mu.Lock()
		c.deps = append(c.deps, dep)
		c.mu.Unlock()
	}
	return c
}

func (c *Computed[T]) updated(v any) {
	c.mu.Lock()
	drain := c.subs.push(v)
	c.mu.Unlock()

	if drain {
		c.subs.drain(&c.mu)
	}
}

func (c *Computed[T]) SetMethod(fn func() T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.method = fn
}

func (c *Computed[T]) Value() (T, error) {
	c.mu.Lock()
	fn := c.method
	c.mu.Unlock()

	if fn == nil {
		var zero T
		return zero, ErrNotConfigured
	}
	return fn(), nil
}

func (c *Computed[T]) OnChanged(fn func(any)) (stop func()) {
	c.mu.Lock()
	ob := c.subs.add(fn)
	c.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			c.mu.Lock()
			c.subs.remove(ob)
			c.mu.Unlock()
		})
	}
}

// Deps returns the number of upstream cells.
func (c *Computed[T]) Deps() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.deps)
}
