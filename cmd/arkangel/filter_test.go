package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/alecthomas/assert/v2"

	"github.com/lonnibesancon/Arkangel/npr"
)

func TestAssignments(t *testing.T) {
	var a assignments
	assert.NoError(t, a.Set("dog_tau=0.95"))
	assert.NoError(t, a.Set("fs_type=flow"))
	assert.Equal(t, "dog_tau=0.95,fs_type=flow", a.String())

	assert.Error(t, a.Set("dog_tau"))
	assert.Error(t, a.Set("=1"))
	assert.IsError(t, a.Set("tau=1"), npr.ErrUnknownParameter)
}

func TestImplFlag(t *testing.T) {
	i := implGl
	assert.NoError(t, i.Set("software"))
	assert.Equal(t, implSw, i)
	assert.Error(t, i.Set("opencl"))
	assert.Equal(t, implSw, i)
}

func TestParameterLayers(t *testing.T) {
	path := filepath.Join(t.TempDir(), "params.json")
	assert.NoError(t, os.WriteFile(path, []byte(`{"bf_n_a": 2, "dog_tau": 0.9}`), 0o644))

	args := paramArgs{file: path, ee: 2, sets: assignments{"bf_n_a=9"}}
	p, err := args.parameters()
	assert.NoError(t, err)
	// the preset overrides the file and -set overrides both
	assert.Equal(t, 0.94, p.Float(npr.DogTau))
	assert.Equal(t, 9, p.Int(npr.BfNA))
	assert.Equal(t, 16, p.Int(npr.BfNE))

	args = paramArgs{sets: assignments{"bf_n_a=many"}}
	_, err = args.parameters()
	assert.IsError(t, err, npr.ErrParameterKind)

	args = paramArgs{file: filepath.Join(t.TempDir(), "missing.json")}
	_, err = args.parameters()
	assert.IsError(t, err, os.ErrNotExist)
}

func TestExportShaders(t *testing.T) {
	dir := t.TempDir()
	assert.NoError(t, exportShaders(shadersArgs{out: dir, compress: true}))

	fetch := npr.DirSources(dir)
	for _, name := range npr.BuiltinProgramNames() {
		want, err := npr.EmbeddedSources().Fetch(name)
		assert.NoError(t, err)
		got, err := fetch.Fetch(name)
		assert.NoError(t, err)
		assert.Equal(t, want, got)
	}
}
