package npr_test

import (
	"errors"
	"testing"

	"github.com/alecthomas/assert/v2"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"

	"github.com/lonnibesancon/Arkangel/npr"
	"github.com/lonnibesancon/Arkangel/surface"
)

func TestPlaceholdersApply(t *testing.T) {
	ph := npr.Placeholders{"halfWidth": "4", "n": "2"}
	got := ph.Apply("const int halfWidth = $halfWidth$;\nconst int n = $n$; // $halfWidth$")
	assert.Equal(t, "const int halfWidth = 4;\nconst int n = 2; // 4", got)

	assert.True(t, ph.Equal(npr.Placeholders{"n": "2", "halfWidth": "4"}))
	assert.False(t, ph.Equal(npr.Placeholders{"halfWidth": "4"}))
	assert.True(t, npr.Placeholders(nil).Equal(npr.Placeholders{}))
}

func TestBaseVariantIsCompiledOnce(t *testing.T) {
	cs := newCounting()
	log, _ := test.NewNullLogger()
	pc := npr.NewProgramCache(cs, npr.EmbeddedSources(), log)

	a := pc.Fragment("rgb2lab_fs", nil)
	assert.NotZero(t, a)
	b := pc.Fragment("rgb2lab_fs", npr.Placeholders{})
	assert.Equal(t, a, b)
	assert.Equal(t, 1, cs.compiles)

	pc.Vertex("default_vs", nil)
	pc.Vertex("default_vs", nil)
	assert.Equal(t, 2, cs.compiles)
}

func TestParameterizedVariantIsCompiledEveryTime(t *testing.T) {
	cs := newCounting()
	log, _ := test.NewNullLogger()
	pc := npr.NewProgramCache(cs, npr.EmbeddedSources(), log)

	ph := npr.Placeholders{"halfWidth": "3"}
	a := pc.Fragment("gauss1d_fs", ph)
	b := pc.Fragment("gauss1d_fs", ph)
	assert.NotZero(t, a)
	assert.NotZero(t, b)
	assert.Equal(t, 2, cs.compiles)
	assert.False(t, pc.Owned(ph))
	assert.True(t, pc.Owned(nil))
}

func TestCompileFailureYieldsNil(t *testing.T) {
	cs := newCounting()
	log, hook := test.NewNullLogger()
	pc := npr.NewProgramCache(cs, npr.EmbeddedSources(), log)

	// the base variant of a parameterized program keeps its placeholder
	assert.Zero(t, pc.Fragment("gauss1d_fs", nil))
	assert.Zero(t, pc.Fragment("gauss1d_fs", nil))
	assert.Equal(t, 1, cs.compiles)

	failures := entriesWith(hook, logrus.ErrorLevel, "program failed to compile")
	assert.Equal(t, 1, len(failures))
	assert.Equal(t, "gauss1d_fs", failures[0].Data["program"])
	assert.Contains(t, failures[0].Data[logrus.ErrorKey].(error).Error(), "unresolved placeholder $halfWidth$")
}

func TestSourceFetchFailureIsRemembered(t *testing.T) {
	fetches := 0
	fetch := npr.FetcherFunc(func(name string) (string, error) {
		fetches++
		return "", errors.New("offline")
	})
	log, hook := test.NewNullLogger()
	pc := npr.NewProgramCache(newCounting(), fetch, log)

	assert.Equal(t, "", pc.Source("sst_fs"))
	assert.Equal(t, "", pc.Source("sst_fs"))
	assert.Equal(t, 1, fetches)
	assert.Equal(t, 1, len(entriesWith(hook, logrus.WarnLevel, "could not load program source")))

	assert.Zero(t, pc.Fragment("sst_fs", nil))
}

func TestReleaseDeletesBaseVariants(t *testing.T) {
	deleted := 0
	cs := &deleteCounting{countingSurface: newCounting(), deleted: &deleted}
	log, _ := test.NewNullLogger()
	pc := npr.NewProgramCache(cs, npr.EmbeddedSources(), log)

	pc.Vertex("default_vs", nil)
	pc.Fragment("tfm_fs", nil)
	pc.Fragment("gauss1d_fs", nil)
	pc.Release()
	assert.Equal(t, 2, deleted)
}

type deleteCounting struct {
	*countingSurface
	deleted *int
}

func (d *deleteCounting) DeleteShader(s surface.Shader) {
	*d.deleted++
	d.countingSurface.DeleteShader(s)
}
