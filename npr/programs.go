package npr

import (
	"strings"

	"github.com/sirupsen/logrus"
	"golang.org/x/exp/maps"

	"github.com/lonnibesancon/Arkangel/surface"
)

// Placeholders are textual substitutions applied to a program source: every
// `$key$` token is replaced by its value before compiling.
type Placeholders map[string]string

func (p Placeholders) Equal(o Placeholders) bool {
	return maps.Equal(p, o)
}

// Apply returns source with every placeholder token substituted.
func (p Placeholders) Apply(source string) string {
	for k, v := range p {
		source = strings.ReplaceAll(source, "$"+k+"$", v)
	}
	return source
}

type shaderKey struct {
	kind surface.ShaderKind
	name string
}

// ProgramCache loads program sources by name and compiles them. Unspecialized
// programs are compiled once and kept; specialized ones are compiled on every
// request and belong to the caller.
type ProgramCache struct {
	surf    surface.Surface
	fetch   SourceFetcher
	log     logrus.FieldLogger
	sources map[string]string
	base    map[shaderKey]surface.Shader
}

func NewProgramCache(surf surface.Surface, fetch SourceFetcher, log logrus.FieldLogger) *ProgramCache {
	return &ProgramCache{
		surf:    surf,
		fetch:   fetch,
		log:     log,
		sources: map[string]string{},
		base:    map[shaderKey]surface.Shader{},
	}
}

// Source returns the program text for name, fetching it at most once.
// A failed fetch is logged and remembered as an empty source.
func (c *ProgramCache) Source(name string) string {
	if src, ok := c.sources[name]; ok {
		return src
	}
	src, err := c.fetch.Fetch(name)
	if err != nil {
		c.log.WithError(err).WithField("program", name).Warn("could not load program source")
		src = ""
	} else {
		c.log.WithField("program", name).Debug("loaded program source")
	}
	c.sources[name] = src
	return src
}

// Compile compiles one program unit. Failures are logged with the compiler
// diagnostic and yield nil.
func (c *ProgramCache) Compile(kind surface.ShaderKind, source, name string) surface.Shader {
	sh, err := c.surf.CompileShader(kind, source)
	if err != nil {
		c.log.WithFields(logrus.Fields{
			"program": name,
			"kind":    kind.String(),
		}).WithError(err).Error("program failed to compile")
		return nil
	}
	return sh
}

// Vertex returns the vertex program name specialized with placeholders.
func (c *ProgramCache) Vertex(name string, placeholders Placeholders) surface.Shader {
	return c.get(surface.VertexShader, name, placeholders)
}

// Fragment returns the fragment program name specialized with placeholders.
func (c *ProgramCache) Fragment(name string, placeholders Placeholders) surface.Shader {
	return c.get(surface.FragmentShader, name, placeholders)
}

func (c *ProgramCache) get(kind surface.ShaderKind, name string, placeholders Placeholders) surface.Shader {
	if len(placeholders) == 0 {
		key := shaderKey{kind, name}
		if sh, ok := c.base[key]; ok {
			return sh
		}
		sh := c.Compile(kind, c.Source(name), name)
		c.base[key] = sh
		return sh
	}
	return c.Compile(kind, placeholders.Apply(c.Source(name)), name)
}

// Owned reports whether a shader returned for these placeholders stays owned by the cache.
func (c *ProgramCache) Owned(placeholders Placeholders) bool {
	return len(placeholders) == 0
}

// Release deletes every cached unit.
func (c *ProgramCache) Release() {
	for _, sh := range c.base {
		if sh != nil {
			c.surf.DeleteShader(sh)
		}
	}
	c.base = map[shaderKey]surface.Shader{}
}
