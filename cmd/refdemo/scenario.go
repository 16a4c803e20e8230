package main

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

const defaultScenario = `
name: sliders
steps:
  - widget: sliderA
    property: value
    value: 12
  - widget: sliderB
    property: value
    value: 30
  - ref: display
    value: Ready
  - ref: valueA
    value: 40
  - widget: sliderB
    property: value
    value: 250
`

type step struct {
	Widget   string `yaml:"widget,omitempty"`
	Property string `yaml:"property,omitempty"`
	Ref      string `yaml:"ref,omitempty"`
	Value    any    `yaml:"value"`
}

func (s step) String() string {
	if s.Ref != "" {
		return fmt.Sprintf("%s = %v", s.Ref, s.Value)
	}
	return fmt.Sprintf("%s.%s <- %v", s.Widget, s.Property, s.Value)
}

type scenario struct {
	Name  string `yaml:"name"`
	Steps []step `yaml:"steps"`
}

var errBadStep = errors.New("invalid scenario step")

func loadScenario(path string) (*scenario, error) {
	if path == "" {
		return parseScenario([]byte(defaultScenario))
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scenario: %w", err)
	}
	return parseScenario(data)
}

func parseScenario(data []byte) (*scenario, error) {
	sc := &scenario{}
	if err := yaml.Unmarshal(data, sc); err != nil {
		return nil, fmt.Errorf("parsing scenario: %w", err)
	}
	for i, s := range sc.Steps {
		switch {
		case s.Ref != "" && s.Widget != "":
			return nil, fmt.Errorf("%w %d: both ref and widget set", errBadStep, i)
		case s.Ref == "" && s.Widget == "":
			return nil, fmt.Errorf("%w %d: needs ref or widget", errBadStep, i)
		case s.Widget != "" && s.Property == "":
			return nil, fmt.Errorf("%w %d: widget %q needs a property", errBadStep, i, s.Widget)
		}
	}
	return sc, nil
}
