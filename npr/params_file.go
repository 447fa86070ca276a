package npr

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
)

const (
	presetAbstraction  = "abstraction"
	presetEdgeEmphasis = "edge_emphasis"
)

// LoadParameters reads a JSON object of parameter values on top of the defaults.
// The optional "abstraction" and "edge_emphasis" keys apply the presets first, so
// explicit values in the same file win over them.
func LoadParameters(r io.Reader) (*Parameters, error) {
	var raw map[string]any
	dec := json.NewDecoder(r)
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode parameters: %w", err)
	}

	p := NewParameters()
	for _, preset := range []string{presetAbstraction, presetEdgeEmphasis} {
		v, ok := raw[preset]
		if !ok {
			continue
		}
		level, err := jsonInt(v)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", preset, err)
		}
		if preset == presetAbstraction {
			p.SetAbstraction(level)
		} else {
			p.SetEdgeEmphasis(level)
		}
		delete(raw, preset)
	}

	for name, v := range raw {
		kind, ok := KindOf(name)
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownParameter, name)
		}
		var err error
		switch kind {
		case KindFloat:
			n, ok := v.(json.Number)
			if !ok {
				return nil, fmt.Errorf("%w: %s must be a number", ErrParameterKind, name)
			}
			var f float64
			if f, err = n.Float64(); err == nil {
				err = p.Set(name, f)
			}
		case KindInt:
			var i int
			if i, err = jsonInt(v); err == nil {
				err = p.Set(name, i)
			}
		case KindString:
			err = p.Set(name, v)
		}
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
	}
	return p, nil
}

func jsonInt(v any) (int, error) {
	n, ok := v.(json.Number)
	if !ok {
		return 0, fmt.Errorf("%w: expected an integer, got %T", ErrParameterKind, v)
	}
	f, err := n.Float64()
	if err != nil {
		return 0, err
	}
	if f != math.Trunc(f) {
		return 0, fmt.Errorf("%w: %v is not an integer", ErrParameterKind, n)
	}
	return int(f), nil
}

// Save writes every parameter as an indented JSON object.
func (p *Parameters) Save(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(p.values)
}
