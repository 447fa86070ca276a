package npr

import "github.com/lonnibesancon/Arkangel/surface"

// Results are the named textures of one run. They stay valid until the next run.
type Results struct {
	Original  surface.Texture
	BfNE      surface.Texture
	BfNA      surface.Texture
	Edges     surface.Texture
	Quantized surface.Texture
	Composite surface.Texture
}

// Get returns the result selected by a result_type value; unknown names select the composite.
func (r Results) Get(name string) surface.Texture {
	switch name {
	case ResultOriginal:
		return r.Original
	case ResultBfNE:
		return r.BfNE
	case ResultBfNA:
		return r.BfNA
	case ResultEdges:
		return r.Edges
	case ResultQuantized:
		return r.Quantized
	}
	return r.Composite
}

func (r Results) Named() map[string]surface.Texture {
	return map[string]surface.Texture{
		ResultOriginal:  r.Original,
		ResultBfNE:      r.BfNE,
		ResultBfNA:      r.BfNA,
		ResultEdges:     r.Edges,
		ResultQuantized: r.Quantized,
		ResultComposite: r.Composite,
	}
}
