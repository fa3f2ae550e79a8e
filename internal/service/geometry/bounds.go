package geometry

import (
	"math"

	"geocerca/internal/model"

	"github.com/paulmach/orb"
)

// Box is the minimal axis-aligned lat/lon box covering everything fed into it.
// The zero-content box reports IsEmpty and must not be applied as a viewport.
// A box only ever widens; ExtendPoint and Merge return new values, so partial
// boxes can be folded together in any order.
type Box struct {
	MinLat float64 `json:"min_lat"`
	MinLon float64 `json:"min_lon"`
	MaxLat float64 `json:"max_lat"`
	MaxLon float64 `json:"max_lon"`

	nonEmpty bool
}

// EmptyBox is the identity value for accumulation.
func EmptyBox() Box {
	return Box{}
}

// IsEmpty reports whether no point has contributed to the box.
func (b Box) IsEmpty() bool {
	return !b.nonEmpty
}

// ExtendPoint widens the box to include the given coordinate. Non-finite
// values are skipped and never widen the box.
func (b Box) ExtendPoint(lat, lon float64) Box {
	if !finite(lat) || !finite(lon) {
		return b
	}
	if !b.nonEmpty {
		return Box{MinLat: lat, MinLon: lon, MaxLat: lat, MaxLon: lon, nonEmpty: true}
	}
	return Box{
		MinLat:   math.Min(b.MinLat, lat),
		MinLon:   math.Min(b.MinLon, lon),
		MaxLat:   math.Max(b.MaxLat, lat),
		MaxLon:   math.Max(b.MaxLon, lon),
		nonEmpty: true,
	}
}

// Merge combines two boxes; the empty box is the identity.
func (b Box) Merge(o Box) Box {
	if o.IsEmpty() {
		return b
	}
	return b.ExtendPoint(o.MinLat, o.MinLon).ExtendPoint(o.MaxLat, o.MaxLon)
}

// Bound converts a non-empty box to the orb representation ((lon, lat) order).
func (b Box) Bound() orb.Bound {
	return orb.Bound{
		Min: orb.Point{b.MinLon, b.MinLat},
		Max: orb.Point{b.MaxLon, b.MaxLat},
	}
}

// Accumulate folds normalized shapes and unit positions into a bounding box.
// Every polygon ring point and every circle center counts; a circle's radius
// does not widen the box, so the box may sit tighter than the drawn extent of
// a wide circle.
func Accumulate(shapes []*Normalized, positions []model.Point) Box {
	box := EmptyBox()
	for _, shape := range shapes {
		if shape == nil {
			continue
		}
		switch shape.Kind {
		case KindPolygon:
			for _, ring := range shape.Rings {
				for _, p := range ring {
					box = box.ExtendPoint(p.Lat(), p.Lon())
				}
			}
		case KindCircle:
			box = box.ExtendPoint(shape.Center.Lat, shape.Center.Lon)
		}
	}
	for _, p := range positions {
		box = box.ExtendPoint(p.Lat, p.Lon)
	}
	return box
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
