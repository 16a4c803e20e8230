package ref_test

import (
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/delaneyj/refbind/ref"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeTarget counts SetProperty calls and lets tests raise host events by hand.
type fakeTarget struct {
	props   map[string]any
	sets    map[string]int
	methods map[string][]any
	filters map[int]ref.EventFilter
	nextID  int
}

func newFakeTarget(props ...string) *fakeTarget {
	f := &fakeTarget{
		props:   map[string]any{},
		sets:    map[string]int{},
		methods: map[string][]any{},
		filters: map[int]ref.EventFilter{},
	}
	for _, p := range props {
		f.props[p] = nil
	}
	return f
}

func (f *fakeTarget) withMethod(name string) *fakeTarget {
	f.methods[name] = []any{}
	return f
}

func (f *fakeTarget) HasProperty(name string) bool {
	_, ok := f.props[name]
	return ok
}

func (f *fakeTarget) Property(name string) (any, bool) {
	v, ok := f.props[name]
	return v, ok
}

func (f *fakeTarget) SetProperty(name string, v any) bool {
	f.sets[name]++
	f.props[name] = v
	return true
}

func (f *fakeTarget) HasMethod(name string) bool {
	_, ok := f.methods[name]
	return ok
}

func (f *fakeTarget) Invoke(name string, arg any) error {
	if _, ok := f.methods[name]; !ok {
		return fmt.Errorf("%w: %s", ref.ErrNoSlot, name)
	}
	f.methods[name] = append(f.methods[name], arg)
	return nil
}

func (f *fakeTarget) InstallEventFilter(filter ref.EventFilter) func() {
	id := f.nextID
	f.nextID++
	f.filters[id] = filter
	return func() {
		delete(f.filters, id)
	}
}

// input mimics a user edit: the widget changes its own state, then the host
// dispatches an input event.
func (f *fakeTarget) input(name string, v any, typ ref.EventType) {
	f.props[name] = v
	for _, filter := range f.filters {
		filter.FilterEvent(f, ref.Event{Type: typ, Property: name})
	}
}

func TestBindRefProperty(t *testing.T) {
	target := newFakeTarget("text")
	text := ref.New("start")

	b := ref.BindRef(target, "text", text)
	assert.Equal(t, ref.BindProperty, b.Kind())
	assert.True(t, b.Bound())
	assert.Equal(t, "start", target.props["text"])

	text.SetValue("hi")
	assert.Equal(t, "hi", target.props["text"])
	assert.Equal(t, 2, target.sets["text"])
	assert.NoError(t, b.Err())
}

func TestBindRefMethod(t *testing.T) {
	target := newFakeTarget().withMethod("setMaximum")
	limit := ref.New(10)

	b := ref.BindRef(target, "setMaximum", limit)
	assert.Equal(t, ref.BindMethod, b.Kind())

	limit.SetValue(20)
	limit.SetValue(20)
	assert.Equal(t, []any{10, 20}, target.methods["setMaximum"])
}

func TestBindRefPrefersProperty(t *testing.T) {
	target := newFakeTarget("value").withMethod("value")
	r := ref.New(3)

	b := ref.BindRef(target, "value", r)
	assert.Equal(t, ref.BindProperty, b.Kind())
	assert.Equal(t, 3, target.props["value"])
	assert.Empty(t, target.methods["value"])
}

func TestBindRefNoSlot(t *testing.T) {
	target := newFakeTarget("text")
	r := ref.New("x")

	var b *ref.Binding
	require.NotPanics(t, func() {
		b = ref.BindRef(target, "missing", r)
	})
	assert.Equal(t, ref.BindNone, b.Kind())
	assert.False(t, b.Bound())
	assert.Equal(t, 0, r.Observers())
	assert.Empty(t, target.sets)
	assert.Nil(t, target.props["text"])

	r.SetValue("y")
	assert.Empty(t, target.sets)
	b.Stop()
}

func TestBindRefPlainValue(t *testing.T) {
	r := ref.New(1)
	b := ref.BindRef(struct{}{}, "anything", r)
	assert.Equal(t, ref.BindNone, b.Kind())
}

func TestBindRefStop(t *testing.T) {
	target := newFakeTarget("text")
	r := ref.New("a")
	b := ref.BindRef(target, "text", r)

	b.Stop()
	b.Stop()
	r.SetValue("b")
	assert.Equal(t, "a", target.props["text"])
	assert.Equal(t, 0, r.Observers())
}

func TestBindRefIndependentBindings(t *testing.T) {
	target := newFakeTarget("text", "toolTip")
	r := ref.New("a")

	b1 := ref.BindRef(target, "text", r)
	b2 := ref.BindRef(target, "toolTip", r)
	assert.NotEqual(t, b1.ID(), b2.ID())
	assert.Equal(t, b1.ID(), ref.BindRef(target, "text", r).ID())

	r.SetValue("b")
	assert.Equal(t, "b", target.props["text"])
	assert.Equal(t, "b", target.props["toolTip"])
}

func TestBindComputed(t *testing.T) {
	a := ref.New(1)
	b := ref.New(2)
	msg := ref.NewComputed[string](a, b)
	msg.SetMethod(func() string {
		return fmt.Sprintf("%d + %d = %d", a.Value(), b.Value(), a.Value()+b.Value())
	})

	label := newFakeTarget("text")
	binding := ref.BindComputed(label, "text", msg)
	assert.Equal(t, ref.BindProperty, binding.Kind())
	assert.Equal(t, "1 + 2 = 3", label.props["text"])

	// the raw payload is 5, the target must still get the derived string
	a.SetValue(5)
	assert.Equal(t, "5 + 2 = 7", label.props["text"])
}

func TestBindComputedMethod(t *testing.T) {
	a := ref.New(2)
	double := ref.NewComputed[int](a)
	double.SetMethod(func() int {
		return a.Value() * 2
	})

	target := newFakeTarget().withMethod("display")
	ref.BindComputed(target, "display", double)
	a.SetValue(4)
	assert.Equal(t, []any{4, 8}, target.methods["display"])
}

func TestBindComputedNotConfigured(t *testing.T) {
	a := ref.New(1)
	c := ref.NewComputed[int](a)
	target := newFakeTarget("value")

	b := ref.BindComputed(target, "value", c)
	assert.ErrorIs(t, b.Err(), ref.ErrNotConfigured)
	assert.Equal(t, 0, target.sets["value"])

	c.SetMethod(func() int {
		return a.Value() + 100
	})
	a.SetValue(2)
	assert.Equal(t, 102, target.props["value"])
}

func TestBindComputedNoSlot(t *testing.T) {
	c := ref.NewComputed[int](ref.New(1))
	b := ref.BindComputed(newFakeTarget(), "value", c)
	assert.Equal(t, ref.BindNone, b.Kind())
	assert.NoError(t, b.Err())
}

func TestBindRejectedValue(t *testing.T) {
	o := ref.NewObject("spin")
	var n int
	ref.Field(o, "value", &n)

	r := ref.New("not a number")
	b := ref.BindRef(o, "value", r)
	assert.ErrorIs(t, b.Err(), ref.ErrRejected)
	assert.Equal(t, 0, n)
}

func TestBindTwoWay(t *testing.T) {
	slider := newFakeTarget("value")
	v := ref.New(0)

	ref.BindTwoWay(slider, "value", v)
	assert.Equal(t, 0, slider.props["value"])
	assert.Equal(t, 1, slider.sets["value"])

	slider.input("value", 42, ref.EventInput)
	assert.Equal(t, 42, v.Value())
	// the cell change must not be written back into the slider that produced it
	assert.Equal(t, 1, slider.sets["value"])

	slider.input("value", 43, ref.EventEditFinished)
	assert.Equal(t, 43, v.Value())
	assert.Equal(t, 1, slider.sets["value"])

	v.SetValue(7)
	assert.Equal(t, 7, slider.props["value"])
	assert.Equal(t, 2, slider.sets["value"])
}

func TestBindTwoWayIgnoresProgrammaticEvents(t *testing.T) {
	slider := newFakeTarget("value")
	v := ref.New(0)
	ref.BindTwoWay(slider, "value", v)

	slider.input("value", 5, ref.EventPropertyWrite)
	assert.Equal(t, 0, v.Value())
}

func TestBindTwoWaySharedCell(t *testing.T) {
	a := newFakeTarget("value")
	b := newFakeTarget("value")
	v := ref.New(1)

	ref.BindTwoWay(a, "value", v)
	ref.BindTwoWay(b, "value", v)

	a.input("value", 9, ref.EventInput)
	assert.Equal(t, 9, v.Value())
	assert.Equal(t, 9, b.props["value"])
	assert.Equal(t, 1, a.sets["value"])
}

func TestBindTwoWayObject(t *testing.T) {
	var value int
	slider := ref.NewObject("slider")
	ref.Field(slider, "value", &value)

	a := ref.New(3)
	label := ref.NewObject("label")
	var text string
	ref.Field(label, "text", &text)
	msg := ref.NewComputed[string](a)
	msg.SetMethod(func() string {
		return fmt.Sprint("a=", a.Value())
	})

	ref.BindTwoWay(slider, "value", a)
	ref.BindComputed(label, "text", msg)
	assert.Equal(t, 3, value)
	assert.Equal(t, "a=3", text)

	require.NoError(t, slider.Input("value", 11))
	assert.Equal(t, 11, a.Value())
	assert.Equal(t, "a=11", text)
}

func TestBindKindString(t *testing.T) {
	assert.Equal(t, "none", ref.BindNone.String())
	assert.Equal(t, "property", ref.BindProperty.String())
	assert.Equal(t, "method", ref.BindMethod.String())

	b := ref.BindRef(newFakeTarget("text"), "text", ref.New("x"))
	assert.Contains(t, b.String(), "text(property)#")
	assert.Equal(t, "text", b.Name())
}

func TestBindRefAfterReentrantObserver(t *testing.T) {
	r := ref.New(0)
	r.OnChanged(func(v int) {
		if v == 1 {
			r.SetValue(2)
		}
	})
	target := newFakeTarget("value")
	ref.BindRef(target, "value", r)

	r.SetValue(1)
	assert.Equal(t, 2, r.Value())
	assert.Equal(t, 2, target.props["value"])
}

func TestBindRefConcurrentWriters(t *testing.T) {
	var value int
	o := ref.NewObject("counter")
	ref.Field(o, "value", &value)

	r := ref.New(0)
	ref.BindRef(o, "value", r)

	var inFlight, maxInFlight atomic.Int32
	r.OnChanged(func(int) {
		n := inFlight.Add(1)
		for {
			m := maxInFlight.Load()
			if n <= m || maxInFlight.CompareAndSwap(m, n) {
				break
			}
		}
		inFlight.Add(-1)
	})

	const n = 200
	var wg sync.WaitGroup
	for i := 1; i <= n; i++ {
		wg.Add(1)
		go func(v int) {
			defer wg.Done()
			r.SetValue(v)
		}(i)
	}
	wg.Wait()

	got, ok := o.Property("value")
	require.True(t, ok)
	assert.Equal(t, r.Value(), got)
	assert.Equal(t, int32(1), maxInFlight.Load())
}

func TestBindComputedConcurrentUpstream(t *testing.T) {
	a := ref.New(0)
	b := ref.New(0)
	sum := ref.NewComputed[int](a, b)
	sum.SetMethod(func() int {
		return a.Value() + b.Value()
	})

	var total int
	o := ref.NewObject("total")
	ref.Field(o, "value", &total)
	ref.BindComputed(o, "value", sum)

	var wg sync.WaitGroup
	for i := 1; i <= 100; i++ {
		wg.Add(2)
		go func(v int) {
			defer wg.Done()
			a.SetValue(v)
		}(i)
		go func(v int) {
			defer wg.Done()
			b.SetValue(v)
		}(i)
	}
	wg.Wait()

	want, err := sum.Value()
	require.NoError(t, err)
	got, _ := o.Property("value")
	assert.Equal(t, want, got)
}
