package npr_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/alecthomas/assert/v2"

	"github.com/lonnibesancon/Arkangel/npr"
)

func TestLoadParameters(t *testing.T) {
	p, err := npr.LoadParameters(strings.NewReader(`{
		"abstraction": 4,
		"edge_emphasis": 1,
		"bf_n_a": 2,
		"dog_sigma_e": 1.25,
		"fs_sigma": 2,
		"dog_type": "DoG"
	}`))
	assert.NoError(t, err)
	// explicit values win over presets
	assert.Equal(t, 2, p.Int(npr.BfNA))
	assert.Equal(t, 20, p.Int(npr.BfNE))
	assert.Equal(t, 0.93, p.Float(npr.DogTau))
	assert.Equal(t, 1.25, p.Float(npr.DogSigmaE))
	assert.Equal(t, 2.0, p.Float(npr.FsSigma))
	assert.Equal(t, npr.EdgeDoG, p.String(npr.DogType))
	assert.Equal(t, 1024, p.Int(npr.MaxSize))
}

func TestLoadParametersErrors(t *testing.T) {
	tests := []struct {
		name string
		json string
		err  error
	}{
		{"unknown", `{"sigma": 1}`, npr.ErrUnknownParameter},
		{"fractional int", `{"dog_n": 1.5}`, npr.ErrParameterKind},
		{"string for float", `{"dog_tau": "high"}`, npr.ErrParameterKind},
		{"number for string", `{"dog_color": 0}`, npr.ErrParameterKind},
		{"fractional preset", `{"abstraction": 2.5}`, npr.ErrParameterKind},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := npr.LoadParameters(strings.NewReader(tt.json))
			assert.IsError(t, err, tt.err)
		})
	}

	_, err := npr.LoadParameters(strings.NewReader(`{"dog_n": `))
	assert.Error(t, err)
}

func TestSaveThenLoad(t *testing.T) {
	p := npr.NewParameters()
	p.SetAbstraction(9)
	assert.NoError(t, p.Set(npr.DogColor, "#202040"))
	assert.NoError(t, p.Set(npr.DefaultSize, 512))

	var buf bytes.Buffer
	assert.NoError(t, p.Save(&buf))
	loaded, err := npr.LoadParameters(&buf)
	assert.NoError(t, err)
	assert.Equal(t, p, loaded)
}
