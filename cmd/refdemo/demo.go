package main

import (
	"fmt"
	"io"

	"github.com/delaneyj/refbind/ref"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/rs/zerolog"
	"github.com/valyala/quicktemplate"
)

type demo struct {
	logger   zerolog.Logger
	model    *model
	widgets  *widgets
	bindings []*ref.Binding
}

func newDemo(logger zerolog.Logger) *demo {
	d := &demo{
		logger:  logger,
		model:   newModel(),
		widgets: newWidgets(),
	}
	d.model.valueA.OnChanged(func(v int) {
		d.logger.Debug().Int("valueA", v).Msg("changed")
	})
	d.model.valueB.OnChanged(func(v int) {
		d.logger.Debug().Int("valueB", v).Msg("changed")
	})
	d.model.display.OnChanged(func(v string) {
		d.logger.Debug().Str("display", v).Msg("changed")
	})
	d.bindings = d.widgets.bindOn(d.model, logger)
	return d
}

func (d *demo) apply(s step) error {
	if s.Ref != "" {
		return d.model.set(s.Ref, s.Value)
	}

	o, ok := d.widgets.object(s.Widget)
	if !ok {
		return fmt.Errorf("%w: unknown widget %q", errBadStep, s.Widget)
	}
	v := s.Value
	if sl, ok := d.widgets.slider(s.Widget); ok {
		if n, ok := v.(int); ok {
			v = sl.clamp(n)
		}
	}
	return o.Input(s.Property, v)
}

func (d *demo) labelText() string {
	v, _ := d.widgets.label.Property("text")
	s, _ := v.(string)
	return s
}

func sliderValue(s *slider) int {
	v, _ := s.Property("value")
	n, _ := v.(int)
	return n
}

// render writes the widgets as HTML.
func (d *demo) render(w io.Writer) {
	qw := quicktemplate.AcquireWriter(w)
	defer quicktemplate.ReleaseWriter(qw)

	for _, s := range []*slider{d.widgets.sliderA, d.widgets.sliderB} {
		qw.N().S(`<input type="range" name="`)
		qw.E().S(s.Name())
		qw.N().S(`" min="`)
		qw.N().D(s.min)
		qw.N().S(`" max="`)
		qw.N().D(s.max)
		qw.N().S(`" value="`)
		qw.N().D(sliderValue(s))
		qw.N().S("\">\n")
	}
	qw.N().S("<label>")
	qw.E().S(d.labelText())
	qw.N().S("</label>\n")
}

func (d *demo) summary(w io.Writer) {
	message, err := d.model.message.Value()
	if err != nil {
		message = err.Error()
	}

	tbl := table.NewWriter()
	tbl.SetTitle("Final state")
	tbl.SetOutputMirror(w)
	tbl.AppendHeader(table.Row{"name", "value"})
	tbl.AppendRows([]table.Row{
		{"valueA", d.model.valueA.Value()},
		{"valueB", d.model.valueB.Value()},
		{"display", d.model.display.Value()},
		{"message", message},
		{"sliderA.value", sliderValue(d.widgets.sliderA)},
		{"sliderB.value", sliderValue(d.widgets.sliderB)},
		{"label.text", d.labelText()},
	})
	tbl.AppendSeparator()
	for _, b := range d.bindings {
		state := b.Kind().String()
		if err := b.Err(); err != nil {
			state = err.Error()
		}
		tbl.AppendRow(table.Row{b.String(), state})
	}
	tbl.Render()
}
