package zones

import (
	"math"

	"geocerca/internal/model"
	"geocerca/internal/service/geometry"
	"geocerca/internal/util"

	"github.com/dhconnelly/rtreego"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// ZoneSpatial wraps a polygonal zone with its geometry for R-tree indexing.
type ZoneSpatial struct {
	ID          int64
	Polygon     orb.Polygon
	BoundingBox orb.Bound
	Shape       *geometry.Normalized
}

// Bounds implements the rtreego.Spatial interface
func (z *ZoneSpatial) Bounds() rtreego.Rect {
	minX, minY := z.BoundingBox.Min[0], z.BoundingBox.Min[1]
	maxX, maxY := z.BoundingBox.Max[0], z.BoundingBox.Max[1]

	// Degenerate polygons still need a rect with positive extent.
	rect, _ := rtreego.NewRect(
		rtreego.Point{minX, minY},
		[]float64{math.Max(maxX-minX, 1e-9), math.Max(maxY-minY, 1e-9)},
	)
	return rect
}

// circleZone is a center+radius zone; circles are few, so they are scanned
// linearly instead of going through the index.
type circleZone struct {
	ID     int64
	Center model.Point
	Radius float64
}

// Index answers point-membership queries over one resource's zones. Polygons
// sit in an R-tree for bounding-box prefiltering; the precise check is a
// planar point-in-polygon test. Circles use a haversine distance test.
type Index struct {
	tree    *rtreego.Rtree
	circles []circleZone
	shapes  []*geometry.Normalized
}

// NewIndex normalizes the given zones and builds the spatial index. Zones
// without usable geometry are skipped; they can never contain a unit.
func NewIndex(zonesList []*model.Geofence) *Index {
	ix := &Index{
		tree: rtreego.NewTree(2, 25, 50),
	}

	for _, zone := range zonesList {
		shape := geometry.Normalize(zone)
		if shape == nil {
			continue
		}
		ix.shapes = append(ix.shapes, shape)

		switch shape.Kind {
		case geometry.KindPolygon:
			polygon := closedPolygon(shape.Rings)
			ix.tree.Insert(&ZoneSpatial{
				ID:          zone.ID,
				Polygon:     polygon,
				BoundingBox: polygon.Bound(),
				Shape:       shape,
			})
		case geometry.KindCircle:
			ix.circles = append(ix.circles, circleZone{
				ID:     zone.ID,
				Center: shape.Center,
				Radius: shape.Radius,
			})
		}
	}
	return ix
}

// Shapes returns the normalized geometry of every indexed zone, in input order.
func (ix *Index) Shapes() []*geometry.Normalized {
	return ix.shapes
}

// ZonesAt returns the ids of all zones containing the given point, polygons
// first (in index candidate order), then circles in input order.
func (ix *Index) ZonesAt(lat, lon float64) []int64 {
	var ids []int64

	point := orb.Point{lon, lat}
	searchRect, err := rtreego.NewRect(
		rtreego.Point{lon, lat},
		[]float64{0.0001, 0.0001},
	)
	if err == nil {
		for _, item := range ix.tree.SearchIntersect(searchRect) {
			zone := item.(*ZoneSpatial)
			if planar.PolygonContains(zone.Polygon, point) {
				ids = append(ids, zone.ID)
			}
		}
	}

	for _, circle := range ix.circles {
		if util.HaversineDistance(lat, lon, circle.Center.Lat, circle.Center.Lon) <= circle.Radius {
			ids = append(ids, circle.ID)
		}
	}
	return ids
}

// CrossLocal computes the membership cross-reference geometrically: for every
// resource, which units stand inside which of its zones right now. Units
// without a position are skipped; units inside nothing get no entry.
func CrossLocal(units []model.Unit, zonesByResource map[int64][]*model.Geofence) model.CrossReference {
	crossRef := make(model.CrossReference, len(zonesByResource))

	for resourceID, resourceZones := range zonesByResource {
		index := NewIndex(resourceZones)

		byUnit := make(map[int64]model.GeofenceIDList)
		for i := range units {
			unit := &units[i]
			if !unit.HasPosition() {
				continue
			}
			if inside := index.ZonesAt(*unit.Lat, *unit.Lon); len(inside) > 0 {
				byUnit[unit.ID] = inside
			}
		}
		crossRef[resourceID] = byUnit
	}

	return crossRef
}

// closedPolygon builds an orb.Polygon, closing each ring so the containment
// test sees a proper boundary. Normalized rings arrive open.
func closedPolygon(rings []orb.Ring) orb.Polygon {
	polygon := make(orb.Polygon, 0, len(rings))
	for _, ring := range rings {
		if len(ring) > 0 && ring[0] != ring[len(ring)-1] {
			closed := make(orb.Ring, len(ring)+1)
			copy(closed, ring)
			closed[len(ring)] = ring[0]
			ring = closed
		}
		polygon = append(polygon, ring)
	}
	return polygon
}
