package npr_test

import (
	"testing"

	"github.com/alecthomas/assert/v2"

	"github.com/lonnibesancon/Arkangel/npr"
)

func TestDefaults(t *testing.T) {
	p := npr.NewParameters()
	assert.Equal(t, 2.0, p.Float(npr.SstSigma))
	assert.Equal(t, 6.0, p.Float(npr.BfSigmaD))
	assert.Equal(t, 5.25, p.Float(npr.BfSigmaR))
	assert.Equal(t, 0.99, p.Float(npr.DogTau))
	assert.Equal(t, 8, p.Int(npr.CqNBins))
	assert.Equal(t, 1024, p.Int(npr.MaxSize))
	assert.Equal(t, "#000000", p.String(npr.DogColor))
	assert.Equal(t, npr.EdgeFDoG, p.String(npr.DogType))
	assert.Equal(t, npr.Smooth3x3, p.String(npr.CqSmoothing))
	assert.Equal(t, npr.Smooth3x3, p.String(npr.FsType))
	assert.Equal(t, npr.ResultComposite, p.String(npr.ResultType))
}

func TestAbstractionPreset(t *testing.T) {
	want := []int{0, 1, 3, 5, 7, 10, 13, 16, 20}
	for level := 1; level <= 9; level++ {
		p := npr.NewParameters()
		p.SetAbstraction(level)
		assert.Equal(t, want[level-1], p.Int(npr.BfNA), "level %d", level)
		assert.Equal(t, 1, p.Int(npr.BfNE), "level %d", level)
	}
}

func TestEdgeEmphasisPreset(t *testing.T) {
	wantN := []int{20, 16, 13, 10, 7, 5, 3, 1, 0}
	wantTau := []float64{0.93, 0.94, 0.95, 0.96, 0.97, 0.98, 0.99, 0.99, 0.99}
	for level := 1; level <= 9; level++ {
		p := npr.NewParameters()
		p.SetEdgeEmphasis(level)
		assert.Equal(t, wantN[level-1], p.Int(npr.BfNE), "level %d", level)
		assert.Equal(t, wantTau[level-1], p.Float(npr.DogTau), "level %d", level)
	}
}

func TestPresetOutOfRangeIsIgnored(t *testing.T) {
	for _, level := range []int{-1, 0, 10, 100} {
		p := npr.NewParameters()
		p.SetAbstraction(level)
		p.SetEdgeEmphasis(level)
		assert.Equal(t, npr.NewParameters(), p, "level %d", level)
	}
}

func TestSet(t *testing.T) {
	p := npr.NewParameters()
	assert.NoError(t, p.Set(npr.SstSigma, 3))
	assert.Equal(t, 3.0, p.Float(npr.SstSigma))
	assert.NoError(t, p.Set(npr.DogN, 4))
	assert.Equal(t, 4, p.Int(npr.DogN))

	assert.IsError(t, p.Set(npr.DogN, 1.5), npr.ErrParameterKind)
	assert.IsError(t, p.Set(npr.DogColor, 1), npr.ErrParameterKind)
	assert.IsError(t, p.Set("dog_colour", "#fff"), npr.ErrUnknownParameter)
	assert.Equal(t, 4, p.Int(npr.DogN))
}

func TestSetString(t *testing.T) {
	p := npr.NewParameters()
	assert.NoError(t, p.SetString(npr.BfSigmaR, "4.5"))
	assert.NoError(t, p.SetString(npr.BfNA, "7"))
	assert.NoError(t, p.SetString(npr.FsType, npr.SmoothFlow))
	assert.Equal(t, 4.5, p.Float(npr.BfSigmaR))
	assert.Equal(t, 7, p.Int(npr.BfNA))
	assert.Equal(t, npr.SmoothFlow, p.String(npr.FsType))

	assert.IsError(t, p.SetString(npr.BfNA, "7.5"), npr.ErrParameterKind)
	assert.IsError(t, p.SetString(npr.BfSigmaR, "wide"), npr.ErrParameterKind)
	assert.IsError(t, p.SetString("bf_n", "1"), npr.ErrUnknownParameter)
}

func TestCloneIsIndependent(t *testing.T) {
	p := npr.NewParameters()
	c := p.Clone()
	assert.NoError(t, c.Set(npr.CqNBins, 3))
	assert.Equal(t, 8, p.Int(npr.CqNBins))
	assert.Equal(t, 3, c.Int(npr.CqNBins))
}

func TestNames(t *testing.T) {
	names := npr.NewParameters().Names()
	assert.Equal(t, 22, len(names))
	assert.Equal(t, npr.BfNA, names[0])
	for i := 1; i < len(names); i++ {
		assert.True(t, names[i-1] < names[i])
	}
}
