package libutil

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
	"golang.org/x/image/colornames"
)

// ParseColor accepts #rrggbb, #rgb or an SVG color name and returns the color in [0, 1].
func ParseColor(s string) (mgl32.Vec3, error) {
	s = strings.TrimSpace(s)
	if c, ok := colornames.Map[strings.ToLower(s)]; ok {
		return mgl32.Vec3{float32(c.R) / 255, float32(c.G) / 255, float32(c.B) / 255}, nil
	}
	hex, ok := strings.CutPrefix(s, "#")
	if !ok {
		return mgl32.Vec3{}, fmt.Errorf("color %q: missing '#' prefix", s)
	}
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) != 6 {
		return mgl32.Vec3{}, fmt.Errorf("color %q: expected 3 or 6 hex digits", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return mgl32.Vec3{}, fmt.Errorf("color %q: %w", s, err)
	}
	return mgl32.Vec3{
		float32(v>>16&0xff) / 255,
		float32(v>>8&0xff) / 255,
		float32(v&0xff) / 255,
	}, nil
}
