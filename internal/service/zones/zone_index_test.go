package zones

import (
	"testing"

	"geocerca/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func floatPtr(v float64) *float64 { return &v }

// A unit square around the origin of the Mexico City area.
func squareZone(id int64) *model.Geofence {
	return &model.Geofence{
		ID:   id,
		Name: "ACA01",
		Points: []model.Point{
			{Lat: 19.0, Lon: -99.5},
			{Lat: 19.0, Lon: -99.0},
			{Lat: 19.5, Lon: -99.0},
			{Lat: 19.5, Lon: -99.5},
		},
	}
}

func TestIndex_ZonesAtPolygon(t *testing.T) {
	ix := NewIndex([]*model.Geofence{squareZone(5)})

	assert.Equal(t, []int64{5}, ix.ZonesAt(19.25, -99.25))
	assert.Empty(t, ix.ZonesAt(20.0, -99.25))
	assert.Empty(t, ix.ZonesAt(19.25, -98.0))
}

func TestIndex_ZonesAtCircle(t *testing.T) {
	circle := &model.Geofence{
		ID:     6,
		Name:   "GDL07",
		Center: &model.Point{Lat: 20.6, Lon: -103.3},
		Radius: 1000,
	}
	ix := NewIndex([]*model.Geofence{circle})

	assert.Equal(t, []int64{6}, ix.ZonesAt(20.6, -103.3))
	// ~0.005 deg latitude is ~550 m, still inside the kilometer radius.
	assert.Equal(t, []int64{6}, ix.ZonesAt(20.605, -103.3))
	// ~11 km away.
	assert.Empty(t, ix.ZonesAt(20.7, -103.3))
}

func TestIndex_SkipsZonesWithoutGeometry(t *testing.T) {
	ix := NewIndex([]*model.Geofence{
		{ID: 1, Name: "ACA01"},
		squareZone(2),
	})

	assert.Len(t, ix.Shapes(), 1)
	assert.Equal(t, []int64{2}, ix.ZonesAt(19.25, -99.25))
}

func TestCrossLocal(t *testing.T) {
	units := []model.Unit{
		{ID: 1, Name: "ACA01", Lat: floatPtr(19.25), Lon: floatPtr(-99.25)},
		{ID: 2, Name: "GDL07", Lat: floatPtr(0), Lon: floatPtr(0)},
		{ID: 3, Name: "MTY12"}, // never reported
	}
	zonesByResource := map[int64][]*model.Geofence{
		10: {squareZone(5)},
		20: {squareZone(7), {
			ID:     8,
			Center: &model.Point{Lat: 19.25, Lon: -99.25},
			Radius: 5000,
		}},
	}

	crossRef := CrossLocal(units, zonesByResource)

	require.Contains(t, crossRef, int64(10))
	require.Contains(t, crossRef, int64(20))

	assert.Equal(t, model.GeofenceIDList{5}, crossRef[10][1])
	assert.Equal(t, model.GeofenceIDList{7, 8}, crossRef[20][1])

	// Units outside everything or without a position get no entry.
	assert.NotContains(t, crossRef[10], int64(2))
	assert.NotContains(t, crossRef[10], int64(3))
}
