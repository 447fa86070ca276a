package npr

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/lonnibesancon/Arkangel/surface"
)

// step is the sampling distance that advances one pixel along the major axis of dir.
func step(dir mgl32.Vec2) float32 {
	return 1 / math32.Max(math32.Max(math32.Abs(dir[0]), math32.Abs(dir[1])), 1e-6)
}

func scaleBy(v, px mgl32.Vec2) mgl32.Vec2 {
	return mgl32.Vec2{v[0] * px[0], v[1] * px[1]}
}

// streamline calls visit for every pixel step of length halfWidth in both directions
// along the flow starting at uv. The tangent sign is kept consistent between steps.
func streamline(flow surface.Sampler, uv, px mgl32.Vec2, halfWidth int, visit func(p mgl32.Vec2, i int)) {
	for side := 0; side < 2; side++ {
		v := flow.At(uv).Vec2()
		if side == 1 {
			v = v.Mul(-1)
		}
		p := uv
		for i := 1; i <= halfWidth; i++ {
			p = p.Add(scaleBy(v, px))
			visit(p, i)
			t := flow.At(p).Vec2()
			if t.Dot(v) < 0 {
				t = t.Mul(-1)
			}
			v = t
		}
	}
}

func bilateralKernel(env *surface.Env) surface.Shade {
	img, flow := env.Sampler("img"), env.Sampler("tfm")
	px := texel(env.Vec2("imgSize"))
	sd, sr := twoSigma2(env.Float("sigmaD")), twoSigma2(env.Float("sigmaR"))
	across := env.Int("pass") == 0
	hw := float32(env.Const("halfWidth"))

	return func(uv mgl32.Vec2) mgl32.Vec4 {
		t := flow.At(uv).Vec2()
		dir := t
		if across {
			dir = mgl32.Vec2{t[1], -t[0]}
		}
		ds := step(dir)
		dir = scaleBy(dir, px)

		center := img.At(uv)
		c := center.Vec3()
		sum := c
		norm := float32(1)
		for d := ds; d <= hw; d += ds {
			c0 := img.At(uv.Add(dir.Mul(d))).Vec3()
			c1 := img.At(uv.Sub(dir.Mul(d))).Vec3()
			e0, e1 := c0.Sub(c).Len(), c1.Sub(c).Len()
			kd := math32.Exp(-d * d / sd)
			k0 := kd * math32.Exp(-e0*e0/sr)
			k1 := kd * math32.Exp(-e1*e1/sr)
			norm += k0 + k1
			sum = sum.Add(c0.Mul(k0)).Add(c1.Mul(k1))
		}
		return sum.Mul(1 / norm).Vec4(center[3])
	}
}

func fdog0Kernel(env *surface.Env) surface.Shade {
	img, flow := env.Sampler("img"), env.Sampler("tfm")
	px := texel(env.Vec2("imgSize"))
	se, sr := twoSigma2(env.Float("sigmaE")), twoSigma2(env.Float("sigmaR"))
	tau := env.Float("tau")
	hw := float32(env.Const("halfWidth"))

	return func(uv mgl32.Vec2) mgl32.Vec4 {
		t := flow.At(uv).Vec2()
		n := mgl32.Vec2{t[1], -t[0]}
		ds := step(n)
		n = scaleBy(n, px)

		l := img.At(uv)[0]
		sumE, sumR := l, l
		normE, normR := float32(1), float32(1)
		for d := ds; d <= hw; d += ds {
			ke, kr := math32.Exp(-d*d/se), math32.Exp(-d*d/sr)
			l0 := img.At(uv.Sub(n.Mul(d)))[0]
			l1 := img.At(uv.Add(n.Mul(d)))[0]
			normE += 2 * ke
			normR += 2 * kr
			sumE += ke * (l0 + l1)
			sumR += kr * (l0 + l1)
		}
		diff := 100 * (sumE/normE - tau*sumR/normR)
		return mgl32.Vec4{diff, diff, diff, 1}
	}
}

func fdog1Kernel(env *surface.Env) surface.Shade {
	img, flow := env.Sampler("img"), env.Sampler("tfm")
	px := texel(env.Vec2("imgSize"))
	s2 := twoSigma2(env.Float("sigmaM"))
	phi, epsilon := env.Float("phi"), env.Float("epsilon")
	hw := env.Const("halfWidth")

	return func(uv mgl32.Vec2) mgl32.Vec4 {
		h := img.At(uv)[0]
		w := float32(1)
		streamline(flow, uv, px, hw, func(p mgl32.Vec2, i int) {
			fi := float32(i)
			k := math32.Exp(-fi * fi / s2)
			h += k * img.At(p)[0]
			w += k
		})
		h /= w

		edge := float32(1)
		if h <= epsilon {
			edge = 1 + math32.Tanh(phi*(h-epsilon))
		}
		return mgl32.Vec4{edge, edge, edge, 1}
	}
}

func licKernel(env *surface.Env) surface.Shade {
	img, flow := env.Sampler("img"), env.Sampler("tfm")
	px := texel(env.Vec2("imgSize"))
	s2 := twoSigma2(env.Float("sigma"))
	hw := env.Const("halfWidth")

	return func(uv mgl32.Vec2) mgl32.Vec4 {
		center := img.At(uv)
		sum := center.Vec3()
		w := float32(1)
		streamline(flow, uv, px, hw, func(p mgl32.Vec2, i int) {
			fi := float32(i)
			k := math32.Exp(-fi * fi / s2)
			sum = sum.Add(img.At(p).Vec3().Mul(k))
			w += k
		})
		return sum.Mul(1 / w).Vec4(center[3])
	}
}
