package geometry

import (
	"encoding/json"
	"testing"

	"geocerca/internal/model"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func uint32Ptr(v uint32) *uint32 { return &v }

func TestNormalize_PointListPolygon(t *testing.T) {
	z := &model.Geofence{
		ID:   7,
		Name: "ACA01",
		Points: []model.Point{
			{Lat: 19.0, Lon: -99.0},
			{Lat: 19.1, Lon: -99.0},
			{Lat: 19.1, Lon: -99.1},
		},
	}

	n := Normalize(z)
	require.NotNil(t, n)
	assert.Equal(t, KindPolygon, n.Kind)
	require.Len(t, n.Rings, 1)
	require.Len(t, n.Rings[0], 3)
	// Input order kept, pairs emitted (lon, lat), ring left open.
	assert.Equal(t, orb.Point{-99.0, 19.0}, n.Rings[0][0])
	assert.Equal(t, orb.Point{-99.0, 19.1}, n.Rings[0][1])
	assert.Equal(t, orb.Point{-99.1, 19.1}, n.Rings[0][2])
}

func TestNormalize_TwoPointsIsNotAPolygon(t *testing.T) {
	z := &model.Geofence{
		Points: []model.Point{{Lat: 19, Lon: -99}, {Lat: 20, Lon: -99}},
	}
	assert.Nil(t, Normalize(z))
}

func TestNormalize_Circle(t *testing.T) {
	z := &model.Geofence{
		ID:     3,
		Center: &model.Point{Lat: 19, Lon: -99},
		Radius: 500,
	}

	n := Normalize(z)
	require.NotNil(t, n)
	assert.Equal(t, KindCircle, n.Kind)
	assert.Equal(t, model.Point{Lat: 19, Lon: -99}, n.Center)
	assert.Equal(t, 500.0, n.Radius)
	assert.Empty(t, n.Rings)
}

func TestNormalize_ZeroRadiusCircleIgnored(t *testing.T) {
	z := &model.Geofence{Center: &model.Point{Lat: 19, Lon: -99}}
	assert.Nil(t, Normalize(z))
}

func TestNormalize_EmbeddedPolygon(t *testing.T) {
	z := &model.Geofence{
		ID:      1,
		GeoJSON: json.RawMessage(`{"type":"Polygon","coordinates":[[[-99,19],[-99,19.1],[-99.1,19.1],[-99,19]]]}`),
	}

	n := Normalize(z)
	require.NotNil(t, n)
	assert.Equal(t, KindPolygon, n.Kind)
	require.Len(t, n.Rings, 1)
	assert.Len(t, n.Rings[0], 4)
	assert.Equal(t, orb.Point{-99, 19}, n.Rings[0][0])
}

func TestNormalize_EmbeddedMultiPolygonFlattensRings(t *testing.T) {
	z := &model.Geofence{
		GeoJSON: json.RawMessage(`{"type":"MultiPolygon","coordinates":[
			[[[-99,19],[-99,20],[-98,20]]],
			[[[-97,18],[-97,19],[-96,19]],[[-96.5,18.5],[-96.6,18.6],[-96.7,18.5]]]
		]}`),
	}

	n := Normalize(z)
	require.NotNil(t, n)
	assert.Equal(t, KindPolygon, n.Kind)
	assert.Len(t, n.Rings, 3)
}

func TestNormalize_EmbeddedWithoutTypeTag(t *testing.T) {
	// A ring set without the type wrapper.
	ringSet := &model.Geofence{
		GeoJSON: json.RawMessage(`{"coordinates":[[[-99,19],[-99,20],[-98,20]]]}`),
	}
	n := Normalize(ringSet)
	require.NotNil(t, n)
	require.Len(t, n.Rings, 1)
	assert.Len(t, n.Rings[0], 3)

	// A single bare ring.
	bare := &model.Geofence{
		GeoJSON: json.RawMessage(`{"coordinates":[[-99,19],[-99,20],[-98,20]]}`),
	}
	n = Normalize(bare)
	require.NotNil(t, n)
	require.Len(t, n.Rings, 1)
	assert.Len(t, n.Rings[0], 3)
}

func TestNormalize_EmbeddedTakesPrecedence(t *testing.T) {
	z := &model.Geofence{
		GeoJSON: json.RawMessage(`{"type":"Polygon","coordinates":[[[-99,19],[-99,20],[-98,20]]]}`),
		Points:  []model.Point{{Lat: 1, Lon: 1}, {Lat: 2, Lon: 2}, {Lat: 3, Lon: 3}},
		Center:  &model.Point{Lat: 5, Lon: 5},
		Radius:  100,
	}

	n := Normalize(z)
	require.NotNil(t, n)
	assert.Equal(t, KindPolygon, n.Kind)
	assert.Equal(t, orb.Point{-99, 19}, n.Rings[0][0])
}

func TestNormalize_NoGeometry(t *testing.T) {
	assert.Nil(t, Normalize(&model.Geofence{ID: 1, Name: "ACA01"}))
}

func TestNormalize_MalformedEmbeddedPayload(t *testing.T) {
	z := &model.Geofence{GeoJSON: json.RawMessage(`{"coordinates":"oops"}`)}
	assert.Nil(t, Normalize(z))
}

func TestResolveColor(t *testing.T) {
	assert.Equal(t, "rgba(255,0,0,0.502)",
		ResolveColor(&model.Geofence{ColorARGB: uint32Ptr(0x80FF0000)}))
	assert.Equal(t, "rgba(0,16,32,1.000)",
		ResolveColor(&model.Geofence{ColorARGB: uint32Ptr(0xFF001020)}))

	assert.Equal(t, colorSucursal, ResolveColor(&model.Geofence{Category: "Sucursal"}))
	assert.Equal(t, colorSegura, ResolveColor(&model.Geofence{Category: "segura"}))
	assert.Equal(t, colorRiesgo, ResolveColor(&model.Geofence{Category: "RIESGO"}))
	assert.Equal(t, colorDefault, ResolveColor(&model.Geofence{Category: "otra"}))
	assert.Equal(t, colorDefault, ResolveColor(&model.Geofence{}))

	// Explicit encoding wins over the category palette.
	z := &model.Geofence{Category: "riesgo", ColorARGB: uint32Ptr(0xFF000000)}
	assert.Equal(t, "rgba(0,0,0,1.000)", ResolveColor(z))
}
