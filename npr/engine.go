// Package npr stylizes photographs into a cartoon like rendering with a fixed graph
// of shader stages: Lab conversion, structure tensor flow, orientation aligned
// bilateral smoothing, flow based edge detection, color quantization and compositing.
package npr

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/lonnibesancon/Arkangel/surface"
)

var ErrUnavailable = errors.New("rendering surface unavailable")

// Opener acquires the rendering surface of an engine.
type Opener func() (surface.Surface, error)

func OpenGL(opts surface.OpenGLOptions) Opener {
	return func() (surface.Surface, error) {
		return surface.NewOpenGL(opts)
	}
}

// Software opens a CPU surface running the Go ports of the programs.
func Software(opts surface.SoftwareOptions) Opener {
	return func() (surface.Surface, error) {
		return surface.NewSoftware(Kernels(), opts), nil
	}
}

type Option func(e *Engine)

func WithLogger(log logrus.FieldLogger) Option {
	return func(e *Engine) {
		e.log = log
	}
}

// WithNotifier sets the function told once when no surface can be acquired.
func WithNotifier(notify func(error)) Option {
	return func(e *Engine) {
		e.notify = notify
	}
}

func WithEncoder(enc Encoder) Option {
	return func(e *Engine) {
		e.encoder = enc
	}
}

// WithSources replaces the built-in program sources.
func WithSources(fetch SourceFetcher) Option {
	return func(e *Engine) {
		e.fetch = fetch
	}
}

// Engine runs the stylization graph. It is not safe for concurrent use; with an
// OpenGL surface every call must come from the thread that opened it.
type Engine struct {
	log     logrus.FieldLogger
	notify  func(error)
	encoder Encoder
	fetch   SourceFetcher

	// err is set when the engine never became ready
	err      error
	surf     surface.Surface
	programs *ProgramCache
	textures *TextureManager
	stages   map[string]*Stage
	results  Results
}

// NewEngine acquires a surface and builds every stage. When the surface cannot be
// acquired the engine stays unusable and every call returns ErrUnavailable.
func NewEngine(open Opener, opts ...Option) *Engine {
	e := &Engine{
		log:     logrus.StandardLogger(),
		encoder: PNG,
		fetch:   EmbeddedSources(),
	}
	for _, opt := range opts {
		opt(e)
	}

	surf, err := open()
	if err != nil {
		e.err = fmt.Errorf("%w: %v", ErrUnavailable, err)
		e.log.WithError(err).Error("unable to initialize a rendering surface")
		if e.notify != nil {
			e.notify(e.err)
		}
		return e
	}

	e.surf = surf
	e.programs = NewProgramCache(surf, e.fetch, e.log)
	e.textures = NewTextureManager(surf)
	e.stages = make(map[string]*Stage, len(stageTable))
	for _, st := range stageTable {
		e.stages[st.name] = newStage(st.name, st.fragment, st.variant(e.textures), e.programs, e.textures, surf, e.log)
	}
	return e
}

// Err reports why the engine is unusable, nil when it is ready.
func (e *Engine) Err() error {
	return e.err
}

// Stage returns the named stage, nil for unknown names or an unusable engine.
func (e *Engine) Stage(name string) *Stage {
	return e.stages[name]
}

// LastResults returns the textures of the last run.
func (e *Engine) LastResults() Results {
	return e.results
}

// Filter stylizes img and returns it encoded. An image without pixels yields an empty slice.
func (e *Engine) Filter(img image.Image, p *Parameters) ([]byte, error) {
	if e.err != nil {
		return nil, e.err
	}
	if img.Bounds().Empty() {
		return []byte{}, nil
	}
	out, err := e.Render(img, p)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := e.encoder.Encode(&buf, out); err != nil {
		return nil, fmt.Errorf("encode result: %w", err)
	}
	return buf.Bytes(), nil
}

// Render stylizes img at its natural size. A nil p renders with the defaults.
// An image without pixels yields an empty image without touching the surface.
func (e *Engine) Render(img image.Image, p *Parameters) (*image.NRGBA, error) {
	if e.err != nil {
		return nil, e.err
	}
	if img.Bounds().Empty() {
		return image.NewNRGBA(image.Rectangle{}), nil
	}
	if p == nil {
		p = NewParameters()
	}

	start := time.Now()
	b := img.Bounds()
	if err := e.surf.Resize(b.Dx(), b.Dy()); err != nil {
		return nil, err
	}
	e.textures.UploadImage(img)
	results, err := e.run(p)
	if err != nil {
		return nil, err
	}
	e.results = results

	e.stages[StageDisplay].RenderToDisplay(results.Get(p.String(ResultType)), Args{Source: results.Original}, p)
	e.surf.Flush()
	e.log.WithField("elapsed", time.Since(start)).Debug("render time")

	return e.surf.ReadPixels()
}

// run executes the fixed stage graph on the uploaded image.
func (e *Engine) run(p *Parameters) (Results, error) {
	e.textures.BeginRun()
	src, err := e.textures.SourceTexture(p)
	if err != nil {
		return Results{}, err
	}
	st := e.stages
	none := Args{}

	lab := st[StageRgb2Lab].RenderToTexture(src, none, p)

	sst := st[StageSst].RenderToTexture(src, none, p)
	tmp := st[StageGauss].RenderToTexture(sst, Args{Horizontal: false}, p)
	tmp = st[StageGauss].RenderToTexture(tmp, Args{Horizontal: true}, p)
	tfm := st[StageTfm].RenderToTexture(tmp, none, p)

	bfe := st[StageBf].RenderToTexture(lab, Args{Flow: tfm, Iterations: p.Int(BfNE)}, p)
	bfa := st[StageBf].RenderToTexture(lab, Args{Flow: tfm, Iterations: p.Int(BfNA)}, p)

	var edges surface.Texture
	if p.String(DogType) == EdgeFDoG {
		edges = e.fdog(bfe, tfm, p)
	} else {
		edges = st[StageDoG].RenderToTexture(bfe, none, p)
	}

	cq := st[StageColor].RenderToTexture(bfa, none, p)
	switch p.String(CqSmoothing) {
	case Smooth3x3:
		cq = st[StageGauss3x3].RenderToTexture(cq, none, p)
	case Smooth5x5:
		cq = st[StageGauss5x5].RenderToTexture(cq, none, p)
	}
	cqRgb := st[StageLab2Rgb].RenderToTexture(cq, none, p)

	composite := st[StageMix].RenderToTexture(cqRgb, Args{Edges: edges}, p)
	switch p.String(FsType) {
	case Smooth3x3:
		composite = st[StageGauss3x3].RenderToTexture(composite, none, p)
	case Smooth5x5:
		composite = st[StageGauss5x5].RenderToTexture(composite, none, p)
	case SmoothFlow:
		composite = st[StageLic].RenderToTexture(composite, Args{Flow: tfm}, p)
	}

	return Results{
		Original:  src,
		BfNE:      st[StageLab2Rgb].RenderToTexture(bfe, none, p),
		BfNA:      st[StageLab2Rgb].RenderToTexture(bfa, none, p),
		Edges:     edges,
		Quantized: cqRgb,
		Composite: composite,
	}, nil
}

// fdog runs dog_n iterations of the flow based difference of Gaussians. From the
// second iteration on, the previous edges are overlaid on src to form the input.
func (e *Engine) fdog(src, flow surface.Texture, p *Parameters) surface.Texture {
	e.textures.SetFilter(src, surface.Linear)
	e.textures.SetFilter(flow, surface.Nearest)

	args := Args{Flow: flow}
	edges := src
	for i := 0; i < p.Int(DogN); i++ {
		input := src
		if i > 0 {
			input = e.stages[StageOverlay].RenderToTexture(src, Args{Edges: edges}, p)
		}
		edges = e.stages[StageFDoG0].RenderToTexture(input, args, p)
		edges = e.stages[StageFDoG1].RenderToTexture(edges, args, p)
	}
	return edges
}

// Release frees every stage, texture and program, then the surface.
func (e *Engine) Release() error {
	if e.surf == nil {
		return e.err
	}
	for _, s := range e.stages {
		s.Release()
	}
	e.programs.Release()
	e.textures.Release()
	err := e.surf.Release()
	e.surf = nil
	e.stages = nil
	e.results = Results{}
	e.err = surface.ErrReleased
	return err
}
