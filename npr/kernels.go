package npr

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/lonnibesancon/Arkangel/surface"
)

// Kernels returns the software implementation of every fragment program, keyed by
// the program's meta name. Each kernel follows the math of its GLSL source.
func Kernels() map[string]surface.Kernel {
	return map[string]surface.Kernel{
		"rgb2lab_fs":            rgb2LabKernel,
		"lab2rgb_fs":            lab2RgbKernel,
		"gauss1d_fs":            gauss1dKernel,
		"gauss3x3_fs":           binomialKernel([]float32{1, 2, 1}),
		"gauss5x5_fs":           binomialKernel([]float32{1, 4, 6, 4, 1}),
		"sst_fs":                sstKernel,
		"tfm_fs":                tfmKernel,
		"bf_fs":                 bilateralKernel,
		"dog_fs":                dogKernel,
		"fdog0_fs":              fdog0Kernel,
		"fdog1_fs":              fdog1Kernel,
		"overlay_fs":            overlayKernel,
		"mix_fs":                mixKernel,
		"color_quantization_fs": quantizeKernel,
		"lic_fs":                licKernel,
		"display_result_fs":     displayKernel,
	}
}

func smoothstep(edge0, edge1, x float32) float32 {
	t := mgl32.Clamp((x-edge0)/(edge1-edge0), 0, 1)
	return t * t * (3 - 2*t)
}

// twoSigma2 matches the max(2*sigma*sigma, 1e-8) guard of the programs.
func twoSigma2(sigma float32) float32 {
	return math32.Max(2*sigma*sigma, 1e-8)
}

func texel(size mgl32.Vec2) mgl32.Vec2 {
	return mgl32.Vec2{1 / size[0], 1 / size[1]}
}

func rgb2LabKernel(env *surface.Env) surface.Shade {
	img := env.Sampler("img")
	return func(uv mgl32.Vec2) mgl32.Vec4 {
		c := img.At(uv)
		return rgbToLab(c.Vec3()).Vec4(c[3])
	}
}

func lab2RgbKernel(env *surface.Env) surface.Shade {
	img := env.Sampler("img")
	return func(uv mgl32.Vec2) mgl32.Vec4 {
		c := img.At(uv)
		return labToRgb(c.Vec3()).Vec4(c[3])
	}
}

func gauss1dKernel(env *surface.Env) surface.Shade {
	img := env.Sampler("img")
	px := texel(env.Vec2("imgSize"))
	d := mgl32.Vec2{0, px[1]}
	if env.Bool("horizontal") {
		d = mgl32.Vec2{px[0], 0}
	}
	s2 := twoSigma2(env.Float("sigma"))
	hw := env.Const("halfWidth")

	return func(uv mgl32.Vec2) mgl32.Vec4 {
		sum := img.At(uv)
		norm := float32(1)
		for i := 1; i <= hw; i++ {
			fi := float32(i)
			k := math32.Exp(-fi * fi / s2)
			off := d.Mul(fi)
			sum = sum.Add(img.At(uv.Add(off)).Add(img.At(uv.Sub(off))).Mul(k))
			norm += 2 * k
		}
		return sum.Mul(1 / norm)
	}
}

// binomialKernel is a separable box of the given weights, normalized by their sum squared.
func binomialKernel(weights []float32) surface.Kernel {
	var total float32
	for _, w := range weights {
		total += w
	}
	norm := 1 / (total * total)
	r := len(weights) / 2

	return func(env *surface.Env) surface.Shade {
		img := env.Sampler("img")
		px := texel(env.Vec2("imgSize"))
		return func(uv mgl32.Vec2) mgl32.Vec4 {
			var sum mgl32.Vec4
			for j := -r; j <= r; j++ {
				for i := -r; i <= r; i++ {
					off := mgl32.Vec2{float32(i) * px[0], float32(j) * px[1]}
					sum = sum.Add(img.At(uv.Add(off)).Mul(weights[i+r] * weights[j+r]))
				}
			}
			return sum.Mul(norm)
		}
	}
}

var (
	sobelX = [6][3]float32{{-1, -1, -1}, {-2, -1, 0}, {-1, -1, 1}, {1, 1, -1}, {2, 1, 0}, {1, 1, 1}}
	sobelY = [6][3]float32{{-1, -1, -1}, {-2, 0, -1}, {-1, 1, -1}, {1, -1, 1}, {2, 0, 1}, {1, 1, 1}}
)

func sstKernel(env *surface.Env) surface.Shade {
	img := env.Sampler("img")
	px := texel(env.Vec2("imgSize"))
	gradient := func(uv mgl32.Vec2, taps [6][3]float32) mgl32.Vec3 {
		var g mgl32.Vec3
		for _, tap := range taps {
			off := mgl32.Vec2{tap[1] * px[0], tap[2] * px[1]}
			g = g.Add(img.At(uv.Add(off)).Vec3().Mul(tap[0]))
		}
		return g.Mul(0.25)
	}
	return func(uv mgl32.Vec2) mgl32.Vec4 {
		u := gradient(uv, sobelX)
		v := gradient(uv, sobelY)
		return mgl32.Vec4{u.Dot(u), v.Dot(v), u.Dot(v), 1}
	}
}

func tfmKernel(env *surface.Env) surface.Shade {
	img := env.Sampler("img")
	return func(uv mgl32.Vec2) mgl32.Vec4 {
		g := img.At(uv)
		e, gg, f := g[0], g[1], g[2]
		root := math32.Sqrt((e-gg)*(e-gg) + 4*f*f)
		lambda1 := 0.5 * (e + gg + root)
		lambda2 := 0.5 * (e + gg - root)

		t := mgl32.Vec2{lambda1 - e, -f}
		if l := t.Len(); l > 0 {
			t = t.Mul(1 / l)
		} else {
			t = mgl32.Vec2{0, 1}
		}
		phi := -math32.Atan2(t[1], t[0])
		var a float32
		if lambda1+lambda2 > 0 {
			a = (lambda1 - lambda2) / (lambda1 + lambda2)
		}
		return mgl32.Vec4{t[0], t[1], phi, a}
	}
}

func dogKernel(env *surface.Env) surface.Shade {
	img := env.Sampler("img")
	px := texel(env.Vec2("imgSize"))
	se, sr := twoSigma2(env.Float("sigmaE")), twoSigma2(env.Float("sigmaR"))
	tau, phi := env.Float("tau"), env.Float("phi")
	hw := env.Const("halfWidth")

	return func(uv mgl32.Vec2) mgl32.Vec4 {
		var sumE, sumR, normE, normR float32
		for j := -hw; j <= hw; j++ {
			for i := -hw; i <= hw; i++ {
				r2 := float32(i*i + j*j)
				ke, kr := math32.Exp(-r2/se), math32.Exp(-r2/sr)
				l := img.At(uv.Add(mgl32.Vec2{float32(i) * px[0], float32(j) * px[1]}))[0]
				normE += ke
				normR += kr
				sumE += ke * l
				sumR += kr * l
			}
		}
		h := 100 * (sumE/normE - tau*sumR/normR)
		edge := float32(1)
		if h <= 0 {
			edge = 2 * smoothstep(-2, 2, phi*h)
		}
		return mgl32.Vec4{edge, edge, edge, 1}
	}
}

func overlayKernel(env *surface.Env) surface.Shade {
	img, edges := env.Sampler("img"), env.Sampler("edges")
	return func(uv mgl32.Vec2) mgl32.Vec4 {
		c := img.At(uv)
		c[0] *= edges.At(uv)[0]
		return c
	}
}

func mixKernel(env *surface.Env) surface.Shade {
	img, edges := env.Sampler("img"), env.Sampler("edges")
	color := env.Vec3("edgeColor")
	return func(uv mgl32.Vec2) mgl32.Vec4 {
		c := img.At(uv)
		e := mgl32.Clamp(edges.At(uv)[0], 0, 1)
		rgb := color.Mul(1 - e).Add(c.Vec3().Mul(e))
		return rgb.Vec4(c[3])
	}
}

func quantizeKernel(env *surface.Env) surface.Shade {
	img := env.Sampler("img")
	bins := float32(max(env.Int("nbins"), 1))
	phiQ := env.Float("phiQ")
	return func(uv mgl32.Vec2) mgl32.Vec4 {
		c := img.At(uv)
		qn := math32.Floor(c[0]*bins+0.5) / bins
		qs := smoothstep(-2, 2, phiQ*(c[0]-qn)*100) - 0.5
		c[0] = qn + qs/bins
		return c
	}
}

func displayKernel(env *surface.Env) surface.Shade {
	img, src := env.Sampler("img"), env.Sampler("src")
	return func(uv mgl32.Vec2) mgl32.Vec4 {
		return img.At(uv).Vec3().Vec4(src.At(uv)[3])
	}
}
