package main

import (
	"fmt"

	"github.com/delaneyj/refbind/ref"
	"github.com/rs/zerolog"
)

type model struct {
	valueA  *ref.Ref[int]
	valueB  *ref.Ref[int]
	message *ref.Computed[string]
	display *ref.Ref[string]
}

func newModel() *model {
	m := &model{
		valueA:  ref.New[int](),
		valueB:  ref.New[int](),
		display: ref.New("No Data"),
	}
	m.message = ref.NewComputed[string](m.valueA, m.valueB)
	m.message.SetMethod(func() string {
		a, b := m.valueA.Value(), m.valueB.Value()
		return fmt.Sprintf("%d + %d = %d", a, b, a+b)
	})
	return m
}

// set applies a programmatic write to the named cell.
func (m *model) set(name string, v any) error {
	var ok bool
	switch name {
	case "valueA":
		ok = m.valueA.SetAny(v)
	case "valueB":
		ok = m.valueB.SetAny(v)
	case "display":
		ok = m.display.SetAny(fmt.Sprint(v))
	default:
		return fmt.Errorf("unknown ref %q", name)
	}
	if !ok {
		return fmt.Errorf("ref %q cannot take %T", name, v)
	}
	return nil
}

type widgets struct {
	sliderA *slider
	sliderB *slider
	label   *label
}

func newWidgets() *widgets {
	return &widgets{
		sliderA: newSlider("sliderA"),
		sliderB: newSlider("sliderB"),
		label:   newLabel("label"),
	}
}

func (w *widgets) slider(name string) (*slider, bool) {
	switch name {
	case w.sliderA.Name():
		return w.sliderA, true
	case w.sliderB.Name():
		return w.sliderB, true
	}
	return nil, false
}

func (w *widgets) object(name string) (*ref.Object, bool) {
	if s, ok := w.slider(name); ok {
		return s.Object, true
	}
	if name == w.label.Name() {
		return w.label.Object, true
	}
	return nil, false
}

func (w *widgets) bindOn(m *model, logger zerolog.Logger) []*ref.Binding {
	bindings := []*ref.Binding{
		ref.BindTwoWay(w.sliderA, "value", m.valueA),
		ref.BindTwoWay(w.sliderB, "value", m.valueB),
		ref.BindComputed(w.label, "text", m.message),
		ref.BindRef(w.label, "text", m.display),
	}
	for _, b := range bindings {
		logger.Debug().
			Str("slot", b.Name()).
			Stringer("kind", b.Kind()).
			Uint64("id", b.ID()).
			Msg("bound")
	}
	return bindings
}
