package npr

import (
	"github.com/lonnibesancon/Arkangel/libutil"
	"github.com/lonnibesancon/Arkangel/surface"
)

// Stage names.
const (
	StageRgb2Lab  = "rgb2Lab"
	StageLab2Rgb  = "lab2Rgb"
	StageGauss    = "gauss"
	StageGauss3x3 = "gauss3x3"
	StageGauss5x5 = "gauss5x5"
	StageSst      = "sst"
	StageTfm      = "tfm"
	StageBf       = "bf"
	StageDoG      = "dog"
	StageFDoG0    = "fdog0"
	StageFDoG1    = "fdog1"
	StageOverlay  = "overlay"
	StageMix      = "mix"
	StageColor    = "color"
	StageLic      = "lic"
	StageDisplay  = "displayResult"
)

// stageTable maps every stage to its fragment program and behavior.
var stageTable = []struct {
	name     string
	fragment string
	variant  func(tm *TextureManager) variant
}{
	{StageRgb2Lab, "rgb2lab_fs", func(*TextureManager) variant { return baseVariant{} }},
	{StageLab2Rgb, "lab2rgb_fs", func(*TextureManager) variant { return baseVariant{} }},
	{StageGauss, "gauss1d_fs", func(*TextureManager) variant { return gaussVariant{} }},
	{StageGauss3x3, "gauss3x3_fs", func(*TextureManager) variant { return sizedVariant{} }},
	{StageGauss5x5, "gauss5x5_fs", func(*TextureManager) variant { return sizedVariant{} }},
	{StageSst, "sst_fs", func(*TextureManager) variant { return sizedVariant{} }},
	{StageTfm, "tfm_fs", func(*TextureManager) variant { return baseVariant{} }},
	{StageBf, "bf_fs", func(tm *TextureManager) variant { return &bilateralVariant{textures: tm} }},
	{StageDoG, "dog_fs", func(*TextureManager) variant { return dogVariant{} }},
	{StageFDoG0, "fdog0_fs", func(*TextureManager) variant { return fdog0Variant{} }},
	{StageFDoG1, "fdog1_fs", func(*TextureManager) variant { return fdog1Variant{} }},
	{StageOverlay, "overlay_fs", func(*TextureManager) variant { return overlayVariant{} }},
	{StageMix, "mix_fs", func(*TextureManager) variant { return mixVariant{} }},
	{StageColor, "color_quantization_fs", func(*TextureManager) variant { return quantizeVariant{} }},
	{StageLic, "lic_fs", func(*TextureManager) variant { return licVariant{} }},
	{StageDisplay, "display_result_fs", func(*TextureManager) variant { return displayVariant{} }},
}

// sizedVariant only needs the texel size.
type sizedVariant struct{ baseVariant }

func (sizedVariant) setUniforms(u *Uniforms, ps pass) {
	u.Set("imgSize", ps.imgSize())
}

// gaussVariant is one direction of the separable blur of the structure tensor.
type gaussVariant struct{ baseVariant }

func (gaussVariant) radius(ps pass) int {
	return halfWidth(ps.scale(ps.params.Float(SstSigma)))
}

func (v gaussVariant) placeholders(ps pass) (Placeholders, Placeholders) {
	return nil, halfWidthPlaceholders(v.radius(ps))
}

func (v gaussVariant) bypass(ps pass) bool {
	return v.radius(ps) <= 0
}

func (gaussVariant) setUniforms(u *Uniforms, ps pass) {
	u.Set("imgSize", ps.imgSize())
	u.Set("sigma", ps.scale(ps.params.Float(SstSigma)))
	u.Set("horizontal", ps.args.Horizontal)
}

// dogVariant is the isotropic difference of Gaussians.
type dogVariant struct{ baseVariant }

func (dogVariant) placeholders(ps pass) (Placeholders, Placeholders) {
	return nil, halfWidthPlaceholders(halfWidth(ps.params.Float(DogSigmaR)))
}

func (dogVariant) bypass(ps pass) bool {
	return halfWidth(ps.params.Float(DogSigmaR)) <= 0
}

func (dogVariant) setUniforms(u *Uniforms, ps pass) {
	u.Set("imgSize", ps.imgSize())
	u.Set("sigmaE", ps.params.Float(DogSigmaE))
	u.Set("sigmaR", ps.params.Float(DogSigmaR))
	u.Set("tau", ps.params.Float(DogTau))
	u.Set("phi", ps.params.Float(DogPhi))
}

// overlayVariant writes an edge map into the lightness channel of its input.
type overlayVariant struct{ baseVariant }

func (overlayVariant) setUniforms(u *Uniforms, ps pass) {
	u.Texture("edges", 1, ps.args.Edges)
}

// mixVariant blends the edge color over its input where the edge map is dark.
type mixVariant struct{ baseVariant }

func (mixVariant) setUniforms(u *Uniforms, ps pass) {
	color, err := libutil.ParseColor(ps.params.String(DogColor))
	if err != nil {
		u.log.WithError(err).Warn("invalid edge color, using black")
	}
	u.Set("edgeColor", color)
	u.Texture("edges", 1, ps.args.Edges)
}

type quantizeVariant struct{ baseVariant }

func (quantizeVariant) setUniforms(u *Uniforms, ps pass) {
	u.Set("nbins", ps.params.Int(CqNBins))
	u.Set("phiQ", ps.params.Float(CqPhiQ))
}

// displayVariant draws a result letterboxed onto the display.
type displayVariant struct{ baseVariant }

func (displayVariant) setUniforms(u *Uniforms, ps pass) {
	u.Texture("src", 1, ps.args.Source)
}

func (displayVariant) execute(x *Execution, ps pass) {
	x.surf.SetFilter(x.input, surface.Linear)
	w, h := x.surf.Size()
	x.Quad = libutil.Letterbox(ps.width, ps.height, w, h)
	x.Draw()
}
