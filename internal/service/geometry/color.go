package geometry

import (
	"fmt"
	"strings"

	"geocerca/internal/model"
)

// Category palette at a fixed translucency, keyed by the lower-cased zone
// category label.
const (
	colorSucursal = "rgba(33,102,172,0.250)"
	colorSegura   = "rgba(26,152,80,0.250)"
	colorRiesgo   = "rgba(215,48,39,0.250)"
	colorDefault  = "rgba(128,128,128,0.250)"
)

// ResolveColor picks the display fill for a zone: the packed ARGB encoding
// when the zone carries one, otherwise the category palette.
func ResolveColor(z *model.Geofence) string {
	if z.ColorARGB != nil {
		return argbToRGBA(*z.ColorARGB)
	}

	switch strings.ToLower(z.Category) {
	case "sucursal":
		return colorSucursal
	case "segura":
		return colorSegura
	case "riesgo":
		return colorRiesgo
	default:
		return colorDefault
	}
}

// argbToRGBA unpacks 0xAARRGGBB into an rgba() string, scaling the alpha
// channel to [0,1] at three-decimal precision.
func argbToRGBA(argb uint32) string {
	a := (argb >> 24) & 0xFF
	r := (argb >> 16) & 0xFF
	g := (argb >> 8) & 0xFF
	b := argb & 0xFF
	return fmt.Sprintf("rgba(%d,%d,%d,%.3f)", r, g, b, float64(a)/255)
}
