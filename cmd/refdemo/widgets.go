package main

import (
	"github.com/delaneyj/refbind/ref"
)

type slider struct {
	*ref.Object
	value    int
	min, max int
}

func newSlider(name string) *slider {
	s := &slider{max: 99}
	s.Object = ref.NewObject(name)
	ref.Field(s.Object, "value", &s.value)
	ref.Handler(s.Object, "setMaximum", func(v int) {
		s.max = v
	})
	ref.Handler(s.Object, "setMinimum", func(v int) {
		s.min = v
	})
	return s
}

// clamp mirrors a slider refusing values outside its range.
func (s *slider) clamp(v int) int {
	if v < s.min {
		return s.min
	}
	if v > s.max {
		return s.max
	}
	return v
}

type label struct {
	*ref.Object
	text string
}

func newLabel(name string) *label {
	l := &label{}
	l.Object = ref.NewObject(name)
	ref.Field(l.Object, "text", &l.text)
	return l
}
