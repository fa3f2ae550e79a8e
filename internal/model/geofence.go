package model

import "encoding/json"

// Point is a geographic coordinate in degrees.
type Point struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Geofence is a zone owned by a resource. At most one of the three geometry
// representations is populated: an embedded GeoJSON-style payload, a point-list
// polygon, or a center+radius circle. A geofence without geometry renders
// nothing but still participates in name matching.
type Geofence struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Type     *int   `json:"type,omitempty"`
	Category string `json:"category,omitempty"`

	// ColorARGB is the packed 0xAARRGGBB display color, nil when unset.
	ColorARGB *uint32 `json:"color_argb"`

	// GeoJSON holds the embedded structured geometry payload, verbatim.
	GeoJSON json.RawMessage `json:"geojson,omitempty"`

	Points []Point `json:"points"`

	Center *Point  `json:"center"`
	Radius float64 `json:"radius,omitempty"`
}

// HasGeometry reports whether any of the three raw geometry forms is present.
func (g *Geofence) HasGeometry() bool {
	return len(g.GeoJSON) > 0 || len(g.Points) > 0 || (g.Center != nil && g.Radius > 0)
}
