package libutil_test

import (
	"testing"

	"github.com/alecthomas/assert/v2"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/lonnibesancon/Arkangel/libutil"
)

func TestParseColor(t *testing.T) {
	tests := []struct {
		in   string
		want mgl32.Vec3
	}{
		{"#000000", mgl32.Vec3{0, 0, 0}},
		{"#ffffff", mgl32.Vec3{1, 1, 1}},
		{"#FF0000", mgl32.Vec3{1, 0, 0}},
		{"#0f0", mgl32.Vec3{0, 1, 0}},
		{"blue", mgl32.Vec3{0, 0, 1}},
		{" White ", mgl32.Vec3{1, 1, 1}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := libutil.ParseColor(tt.in)
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseColorInvalid(t *testing.T) {
	for _, in := range []string{"", "000000", "#12", "#gggggg", "#1234567"} {
		_, err := libutil.ParseColor(in)
		assert.Error(t, err, in)
	}
}

func TestClamp(t *testing.T) {
	assert.Equal(t, 0, libutil.Clamp(-3, 0, 10))
	assert.Equal(t, 10, libutil.Clamp(30, 0, 10))
	assert.Equal(t, float32(0.5), libutil.Clamp(float32(0.5), 0, 1))
}
