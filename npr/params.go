package npr

import (
	"errors"
	"fmt"
	"strconv"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

var (
	ErrUnknownParameter = errors.New("unknown parameter")
	ErrParameterKind    = errors.New("parameter kind mismatch")
)

// Parameter names.
const (
	SstSigma    = "sst_sigma"
	BfSigmaD    = "bf_sigma_d"
	BfSigmaR    = "bf_sigma_r"
	DogSigmaE   = "dog_sigma_e"
	DogSigmaR   = "dog_sigma_r"
	DogSigmaM   = "dog_sigma_m"
	DogTau      = "dog_tau"
	DogPhi      = "dog_phi"
	DogEpsilon  = "dog_epsilon"
	CqPhiQ      = "cq_phi_q"
	FsSigma     = "fs_sigma"
	DefaultSize = "default_size"
	BfNE        = "bf_n_e"
	BfNA        = "bf_n_a"
	DogN        = "dog_n"
	CqNBins     = "cq_nbins"
	MaxSize     = "max_size"
	DogColor    = "dog_color"
	DogType     = "dog_type"
	CqSmoothing = "cq_smoothing"
	FsType      = "fs_type"
	ResultType  = "result_type"
)

// Values of the string parameters the pipeline branches on.
const (
	EdgeFDoG = "FDoG"
	EdgeDoG  = "DoG"

	Smooth3x3  = "3x3"
	Smooth5x5  = "5x5"
	SmoothFlow = "flow"
	SmoothNone = "none"

	ResultOriginal  = "original"
	ResultBfNE      = "bf_n_e"
	ResultBfNA      = "bf_n_a"
	ResultEdges     = "dog"
	ResultQuantized = "cq"
	ResultComposite = "result"
)

type Kind int

const (
	KindFloat Kind = iota
	KindInt
	KindString
)

func (k Kind) String() string {
	switch k {
	case KindFloat:
		return "float"
	case KindInt:
		return "int"
	}
	return "string"
}

var defaults = map[string]any{
	SstSigma:    2.0,
	BfSigmaD:    6.0,
	BfSigmaR:    5.25,
	DogSigmaE:   1.0,
	DogSigmaR:   1.6,
	DogSigmaM:   3.0,
	DogTau:      0.99,
	DogPhi:      2.0,
	DogEpsilon:  0.0,
	CqPhiQ:      2.0,
	FsSigma:     1.0,
	DefaultSize: 1024.0,
	BfNE:        1,
	BfNA:        3,
	DogN:        1,
	CqNBins:     8,
	MaxSize:     1024,
	DogColor:    "#000000",
	DogType:     EdgeFDoG,
	CqSmoothing: Smooth3x3,
	FsType:      Smooth3x3,
	ResultType:  ResultComposite,
}

// Preset tables indexed by level-1.
var (
	abstractionBfNA  = [9]int{0, 1, 3, 5, 7, 10, 13, 16, 20}
	edgeEmphasisBfNE = [9]int{20, 16, 13, 10, 7, 5, 3, 1, 0}
	edgeEmphasisTau  = [9]float64{0.93, 0.94, 0.95, 0.96, 0.97, 0.98, 0.99, 0.99, 0.99}
)

// Parameters holds the stylization settings. The engine only reads them; every
// stage receives the snapshot explicitly.
type Parameters struct {
	values map[string]any
}

func NewParameters() *Parameters {
	return &Parameters{values: maps.Clone(defaults)}
}

func (p *Parameters) Clone() *Parameters {
	return &Parameters{values: maps.Clone(p.values)}
}

// Names returns every parameter name in sorted order.
func (p *Parameters) Names() []string {
	names := maps.Keys(p.values)
	slices.Sort(names)
	return names
}

func KindOf(name string) (Kind, bool) {
	switch defaults[name].(type) {
	case float64:
		return KindFloat, true
	case int:
		return KindInt, true
	case string:
		return KindString, true
	}
	return 0, false
}

// Float returns a float parameter, or 0 for names that are not float parameters.
func (p *Parameters) Float(name string) float64 {
	v, _ := p.values[name].(float64)
	return v
}

// Int returns an int parameter, or 0 for names that are not int parameters.
func (p *Parameters) Int(name string) int {
	v, _ := p.values[name].(int)
	return v
}

// String returns a string parameter, or "" for names that are not string parameters.
func (p *Parameters) String(name string) string {
	v, _ := p.values[name].(string)
	return v
}

// Value returns the raw value of a parameter.
func (p *Parameters) Value(name string) (any, bool) {
	v, ok := p.values[name]
	return v, ok
}

// Set assigns a value of the parameter's kind. Integers are accepted for float parameters.
func (p *Parameters) Set(name string, value any) error {
	kind, ok := KindOf(name)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownParameter, name)
	}
	switch kind {
	case KindFloat:
		switch v := value.(type) {
		case float64:
			p.values[name] = v
			return nil
		case float32:
			p.values[name] = float64(v)
			return nil
		case int:
			p.values[name] = float64(v)
			return nil
		}
	case KindInt:
		if v, ok := value.(int); ok {
			p.values[name] = v
			return nil
		}
	case KindString:
		if v, ok := value.(string); ok {
			p.values[name] = v
			return nil
		}
	}
	return fmt.Errorf("%w: %s is a %v parameter, got %T", ErrParameterKind, name, kind, value)
}

// SetString parses text according to the parameter's kind.
func (p *Parameters) SetString(name, text string) error {
	kind, ok := KindOf(name)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownParameter, name)
	}
	switch kind {
	case KindFloat:
		v, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return fmt.Errorf("%w: %s: %v", ErrParameterKind, name, err)
		}
		return p.Set(name, v)
	case KindInt:
		v, err := strconv.Atoi(text)
		if err != nil {
			return fmt.Errorf("%w: %s: %v", ErrParameterKind, name, err)
		}
		return p.Set(name, v)
	}
	return p.Set(name, text)
}

// SetAbstraction applies the abstraction preset for level 1 to 9. Other levels are ignored.
func (p *Parameters) SetAbstraction(level int) {
	if level < 1 || level > len(abstractionBfNA) {
		return
	}
	p.values[BfNA] = abstractionBfNA[level-1]
}

// SetEdgeEmphasis applies the edge emphasis preset for level 1 to 9. Other levels are ignored.
func (p *Parameters) SetEdgeEmphasis(level int) {
	if level < 1 || level > len(edgeEmphasisBfNE) {
		return
	}
	p.values[BfNE] = edgeEmphasisBfNE[level-1]
	p.values[DogTau] = edgeEmphasisTau[level-1]
}
