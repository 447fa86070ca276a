package npr

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Lab values are packed into texture channels as (L/100, 0.5+a/254, 0.5+b/254).

// D65 white point
const (
	whiteX = 0.950456
	whiteZ = 1.088754
)

func linearize(c float32) float32 {
	if c > 0.04045 {
		return math32.Pow((c+0.055)/1.055, 2.4)
	}
	return c / 12.92
}

func delinearize(c float32) float32 {
	if c > 0.0031308 {
		return 1.055*math32.Pow(c, 1/2.4) - 0.055
	}
	return 12.92 * c
}

func labF(t float32) float32 {
	if t > 0.008856 {
		return math32.Cbrt(t)
	}
	return 7.787*t + 16.0/116.0
}

func labFInv(t float32) float32 {
	if t > 0.206893 {
		return t * t * t
	}
	return (t - 16.0/116.0) / 7.787
}

// rgbToLab converts sRGB to packed Lab.
func rgbToLab(c mgl32.Vec3) mgl32.Vec3 {
	rgb := mgl32.Vec3{linearize(c[0]), linearize(c[1]), linearize(c[2])}
	x := rgb.Dot(mgl32.Vec3{0.412453, 0.357580, 0.180423}) / whiteX
	y := rgb.Dot(mgl32.Vec3{0.212671, 0.715160, 0.072169})
	z := rgb.Dot(mgl32.Vec3{0.019334, 0.119193, 0.950227}) / whiteZ
	fx, fy, fz := labF(x), labF(y), labF(z)

	l := 116*fy - 16
	a := 500 * (fx - fy)
	b := 200 * (fy - fz)
	return mgl32.Vec3{l / 100, 0.5 + a/254, 0.5 + b/254}
}

// labToRgb converts packed Lab back to sRGB, clamped to the displayable range.
func labToRgb(c mgl32.Vec3) mgl32.Vec3 {
	l := 100 * c[0]
	a := 254 * (c[1] - 0.5)
	b := 254 * (c[2] - 0.5)
	fy := (l + 16) / 116
	fx := fy + a/500
	fz := fy - b/200
	xyz := mgl32.Vec3{whiteX * labFInv(fx), labFInv(fy), whiteZ * labFInv(fz)}

	rgb := mgl32.Vec3{
		xyz.Dot(mgl32.Vec3{3.240479, -1.537150, -0.498535}),
		xyz.Dot(mgl32.Vec3{-0.969256, 1.875992, 0.041556}),
		xyz.Dot(mgl32.Vec3{0.055648, -0.204043, 1.057311}),
	}
	for i := range rgb {
		rgb[i] = delinearize(mgl32.Clamp(rgb[i], 0, 1))
	}
	return rgb
}
