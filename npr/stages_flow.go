package npr

import (
	"github.com/lonnibesancon/Arkangel/surface"
)

// flowUniforms binds the tensor flow map to unit 1.
func flowUniforms(u *Uniforms, ps pass) {
	u.Set("imgSize", ps.imgSize())
	u.Texture("tfm", 1, ps.args.Flow)
}

// fdog0Variant evaluates the difference of Gaussians across the flow.
type fdog0Variant struct{ baseVariant }

func (fdog0Variant) placeholders(ps pass) (Placeholders, Placeholders) {
	return nil, halfWidthPlaceholders(halfWidth(ps.params.Float(DogSigmaR)))
}

func (fdog0Variant) bypass(ps pass) bool {
	return halfWidth(ps.params.Float(DogSigmaR)) <= 0
}

func (fdog0Variant) setUniforms(u *Uniforms, ps pass) {
	flowUniforms(u, ps)
	u.Set("sigmaE", ps.params.Float(DogSigmaE))
	u.Set("sigmaR", ps.params.Float(DogSigmaR))
	u.Set("tau", ps.params.Float(DogTau))
}

// fdog1Variant smooths the response along the flow and thresholds it.
type fdog1Variant struct{ baseVariant }

func (fdog1Variant) placeholders(ps pass) (Placeholders, Placeholders) {
	return nil, halfWidthPlaceholders(halfWidth(ps.params.Float(DogSigmaM)))
}

func (fdog1Variant) bypass(ps pass) bool {
	return halfWidth(ps.params.Float(DogSigmaM)) <= 0
}

func (fdog1Variant) setUniforms(u *Uniforms, ps pass) {
	flowUniforms(u, ps)
	u.Set("sigmaM", ps.params.Float(DogSigmaM))
	u.Set("phi", ps.params.Float(DogPhi))
	u.Set("epsilon", ps.params.Float(DogEpsilon))
}

// licVariant smooths colors along the streamlines of the flow.
type licVariant struct{ baseVariant }

func (licVariant) placeholders(ps pass) (Placeholders, Placeholders) {
	return nil, halfWidthPlaceholders(halfWidth(ps.params.Float(FsSigma)))
}

func (licVariant) bypass(ps pass) bool {
	return halfWidth(ps.params.Float(FsSigma)) <= 0
}

func (licVariant) setUniforms(u *Uniforms, ps pass) {
	flowUniforms(u, ps)
	u.Set("sigma", ps.params.Float(FsSigma))
}

// pingPong is the pair of scratch targets the bilateral filter alternates between.
// Phase 2i is the pass across the flow of iteration i, phase 2i+1 the pass along it.
type pingPong struct {
	slots [2]surface.Texture
	phase int
}

// ensure (re)allocates both slots at the current scratch size.
func (pp *pingPong) ensure(tm *TextureManager) {
	w, h := tm.Size()
	for i, tex := range pp.slots {
		if tex != nil && tex.Width() == w && tex.Height() == h {
			continue
		}
		if tex != nil {
			tm.DeleteTexture(tex)
		}
		tex = tm.ScratchTexture()
		tm.Persistent(tex)
		tm.SetFilter(tex, surface.Linear)
		pp.slots[i] = tex
	}
	pp.phase = 0
}

// read returns the texture phase samples from; src feeds the first phase.
func (pp *pingPong) read(src surface.Texture) surface.Texture {
	switch {
	case pp.phase == 0:
		return src
	case pp.phase%2 == 1:
		return pp.slots[0]
	default:
		return pp.slots[1]
	}
}

// write returns the texture phase renders into; nil means the final destination.
func (pp *pingPong) write(phases int) surface.Texture {
	switch {
	case pp.phase%2 == 0:
		return pp.slots[0]
	case pp.phase == phases-1:
		return nil
	default:
		return pp.slots[1]
	}
}

func (pp *pingPong) release(tm *TextureManager) {
	for i, tex := range pp.slots {
		if tex != nil {
			tm.DeleteTexture(tex)
			pp.slots[i] = nil
		}
	}
}

// bilateralVariant is the orientation aligned bilateral filter, run for args.Iterations
// iterations of two passes each.
type bilateralVariant struct {
	baseVariant
	textures *TextureManager
	pp       pingPong
}

func (*bilateralVariant) radius(ps pass) int {
	return halfWidth(ps.params.Float(BfSigmaD))
}

func (v *bilateralVariant) placeholders(ps pass) (Placeholders, Placeholders) {
	return nil, halfWidthPlaceholders(v.radius(ps))
}

func (v *bilateralVariant) bypass(ps pass) bool {
	return ps.args.Iterations <= 0 || v.radius(ps) <= 0
}

func (*bilateralVariant) setUniforms(u *Uniforms, ps pass) {
	flowUniforms(u, ps)
	u.Set("sigmaD", ps.scale(ps.params.Float(BfSigmaD)))
	u.Set("sigmaR", ps.params.Float(BfSigmaR)/100)
}

func (v *bilateralVariant) execute(x *Execution, ps pass) {
	v.pp.ensure(v.textures)
	v.textures.SetFilter(x.input, surface.Linear)

	phases := 2 * ps.args.Iterations
	for ; v.pp.phase < phases; v.pp.phase++ {
		x.Input(v.pp.read(x.input))
		x.Target(v.pp.write(phases))
		x.Uniforms.Set("pass", v.pp.phase%2)
		x.Draw()
	}
}

func (v *bilateralVariant) release(tm *TextureManager) {
	v.pp.release(tm)
}
