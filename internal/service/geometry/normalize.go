package geometry

import (
	"encoding/json"

	"geocerca/internal/model"

	"github.com/paulmach/orb"
)

// Kind tags the variant held by a Normalized shape.
type Kind int

const (
	KindPolygon Kind = iota
	KindCircle
)

// Normalized is the uniform renderable form of a geofence geometry: either a
// set of polygon rings (multi-polygons flatten into several rings) or a circle
// descriptor. Exactly one variant is populated.
type Normalized struct {
	ZoneID int64
	Name   string
	Kind   Kind

	// Rings holds the polygon variant, each point in (lon, lat) order.
	// Rings are used open; renderers close them if their format requires it.
	Rings []orb.Ring

	// Center and Radius hold the circle variant. Radius is in meters.
	Center model.Point
	Radius float64

	// Fill is the resolved translucent display color.
	Fill string
}

// embeddedGeometry mirrors the GeoJSON-style payload some zones embed. The
// type tag may be absent, in which case the coordinate array is read as a
// single polygon's ring set.
type embeddedGeometry struct {
	Type        string          `json:"type"`
	Coordinates json.RawMessage `json:"coordinates"`
}

// Normalize converts a raw geofence record into its renderable shape.
// Precedence: embedded payload, then point-list polygon, then center+radius
// circle. A zone with none of the three forms (or an undecodable payload)
// yields nil and simply renders nothing.
func Normalize(z *model.Geofence) *Normalized {
	if len(z.GeoJSON) > 0 {
		rings := decodeEmbedded(z.GeoJSON)
		if rings == nil {
			return nil
		}
		return &Normalized{
			ZoneID: z.ID,
			Name:   z.Name,
			Kind:   KindPolygon,
			Rings:  rings,
			Fill:   ResolveColor(z),
		}
	}

	if len(z.Points) > 2 {
		ring := make(orb.Ring, len(z.Points))
		for i, p := range z.Points {
			ring[i] = orb.Point{p.Lon, p.Lat}
		}
		return &Normalized{
			ZoneID: z.ID,
			Name:   z.Name,
			Kind:   KindPolygon,
			Rings:  []orb.Ring{ring},
			Fill:   ResolveColor(z),
		}
	}

	if z.Center != nil && z.Radius > 0 {
		return &Normalized{
			ZoneID: z.ID,
			Name:   z.Name,
			Kind:   KindCircle,
			Center: *z.Center,
			Radius: z.Radius,
			Fill:   ResolveColor(z),
		}
	}

	return nil
}

// decodeEmbedded extracts the ring set from an embedded geometry payload.
// Polygon coordinates pass through as-is; MultiPolygon rings flatten into one
// list. Without a type tag the coordinates are tried as a ring list first and
// as a single bare ring second. Returns nil when nothing decodes.
func decodeEmbedded(raw json.RawMessage) []orb.Ring {
	var geom embeddedGeometry
	if err := json.Unmarshal(raw, &geom); err != nil {
		// Not an object: the payload may be a bare coordinate array.
		geom.Coordinates = raw
	}
	if len(geom.Coordinates) == 0 {
		return nil
	}

	switch geom.Type {
	case "MultiPolygon":
		var polys [][][][]float64
		if err := json.Unmarshal(geom.Coordinates, &polys); err != nil {
			return nil
		}
		var rings []orb.Ring
		for _, poly := range polys {
			for _, ring := range poly {
				if r := toRing(ring); r != nil {
					rings = append(rings, r)
				}
			}
		}
		return rings
	case "Polygon":
		return decodeRingSet(geom.Coordinates)
	default:
		if rings := decodeRingSet(geom.Coordinates); rings != nil {
			return rings
		}
		// Last resort: a single bare ring.
		var ring [][]float64
		if err := json.Unmarshal(geom.Coordinates, &ring); err != nil {
			return nil
		}
		if r := toRing(ring); r != nil {
			return []orb.Ring{r}
		}
		return nil
	}
}

func decodeRingSet(raw json.RawMessage) []orb.Ring {
	var ringSet [][][]float64
	if err := json.Unmarshal(raw, &ringSet); err != nil {
		return nil
	}
	var rings []orb.Ring
	for _, ring := range ringSet {
		if r := toRing(ring); r != nil {
			rings = append(rings, r)
		}
	}
	return rings
}

// toRing converts a raw coordinate list into an orb.Ring, keeping the
// caller-supplied (lon, lat) pair order. Pairs with fewer than two values are
// dropped; a degenerate result yields nil.
func toRing(coords [][]float64) orb.Ring {
	ring := make(orb.Ring, 0, len(coords))
	for _, pair := range coords {
		if len(pair) < 2 {
			continue
		}
		ring = append(ring, orb.Point{pair[0], pair[1]})
	}
	if len(ring) == 0 {
		return nil
	}
	return ring
}
