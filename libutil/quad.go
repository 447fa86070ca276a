package libutil

import (
	"github.com/lonnibesancon/Arkangel/libgl"

	"github.com/go-gl/gl/v4.5-core/gl"
	"github.com/go-gl/mathgl/mgl32"
)

// Quad is a four vertex triangle strip with per vertex texture coordinates.
type Quad struct {
	Positions [4]mgl32.Vec3
	TexCoords [4]mgl32.Vec2
}

// FullScreen covers the whole viewport and maps it to the whole texture.
var FullScreen = Quad{
	Positions: [4]mgl32.Vec3{{1, -1, 0}, {-1, -1, 0}, {1, 1, 0}, {-1, 1, 0}},
	TexCoords: [4]mgl32.Vec2{{1, 0}, {0, 0}, {1, 1}, {0, 1}},
}

// Letterbox shrinks the full screen quad along one axis so a texW x texH texture keeps its
// aspect ratio on a surfW x surfH target. Borders thinner than one pixel are dropped.
func Letterbox(texW, texH, surfW, surfH int) Quad {
	q := FullScreen
	if texW <= 0 || texH <= 0 || surfW <= 0 || surfH <= 0 {
		return q
	}
	texAspect := float32(texW) / float32(texH)
	surfAspect := float32(surfW) / float32(surfH)

	if texAspect > surfAspect {
		h := surfAspect / texAspect
		if (1-h)*float32(surfH) < 1 {
			return q
		}
		for i := range q.Positions {
			q.Positions[i][1] *= h
		}
	} else {
		w := texAspect / surfAspect
		if (1-w)*float32(surfW) < 1 {
			return q
		}
		for i := range q.Positions {
			q.Positions[i][0] *= w
		}
	}
	return q
}

// Bounds returns the NDC rectangle spanned by the quad.
func (q Quad) Bounds() (min, max mgl32.Vec2) {
	min = mgl32.Vec2{q.Positions[0][0], q.Positions[0][1]}
	max = min
	for _, p := range q.Positions[1:] {
		min[0] = Min(min[0], p[0])
		min[1] = Min(min[1], p[1])
		max[0] = Max(max[0], p[0])
		max[1] = Max(max[1], p[1])
	}
	return min, max
}

// Interleaved returns x, y, z, s, t per vertex.
func (q Quad) Interleaved() []float32 {
	data := make([]float32, 0, 4*5)
	for i := range q.Positions {
		p, t := q.Positions[i], q.TexCoords[i]
		data = append(data, p[0], p[1], p[2], t[0], t[1])
	}
	return data
}

const quadStride = 5 * 4

// QuadMesh is the GL side of a Quad. The vertex data is rewritten in place when the geometry changes.
type QuadMesh struct {
	vbo     libgl.UnboundBuffer
	vao     libgl.UnboundVertexArray
	current Quad
	enabled map[int32]bool
}

func NewQuadMesh() *QuadMesh {
	vbo := libgl.NewBuffer()
	vbo.Allocate(FullScreen.Interleaved())
	vao := libgl.NewVertexArray()
	vao.BindBuffer(0, vbo, 0, quadStride)
	return &QuadMesh{
		vbo:     vbo,
		vao:     vao,
		current: FullScreen,
		enabled: map[int32]bool{},
	}
}

// Draw renders q, feeding positions to the position attribute and texture coordinates
// to the texCoord attribute. A location of -1 leaves that attribute disabled.
func (m *QuadMesh) Draw(q Quad, position, texCoord int32) {
	if q != m.current {
		m.vbo.Write(0, q.Interleaved())
		m.current = q
	}
	for loc := range m.enabled {
		if loc != position && loc != texCoord {
			m.vao.DisableAttribute(int(loc))
			delete(m.enabled, loc)
		}
	}
	if position >= 0 {
		m.vao.Layout(0, int(position), 3, gl.FLOAT, false, 0)
		m.enabled[position] = true
	}
	if texCoord >= 0 {
		m.vao.Layout(0, int(texCoord), 2, gl.FLOAT, false, 3*4)
		m.enabled[texCoord] = true
	}
	m.vao.Bind()
	gl.DrawArrays(gl.TRIANGLE_STRIP, 0, 4)
}

func (m *QuadMesh) Delete() {
	m.vao.Delete()
	m.vbo.Delete()
}
