package wialon

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"

	"geocerca/internal/model"
)

type rawPosition struct {
	Lat   *float64 `json:"y"`
	Lon   *float64 `json:"x"`
	Time  *int64   `json:"t"`
	Speed *float64 `json:"s"`
}

type rawUnit struct {
	ID   int64        `json:"id"`
	Name string       `json:"nm"`
	Pos  *rawPosition `json:"pos"`
}

type rawResource struct {
	ID   int64  `json:"id"`
	Name string `json:"nm"`
}

func decodeUnits(body json.RawMessage) ([]model.Unit, error) {
	var payload struct {
		Items []rawUnit `json:"items"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("decode unit search response: %w", err)
	}

	units := make([]model.Unit, 0, len(payload.Items))
	for _, item := range payload.Items {
		u := model.Unit{ID: item.ID, Name: item.Name}
		if item.Pos != nil {
			u.Lat = item.Pos.Lat
			u.Lon = item.Pos.Lon
			u.Timestamp = item.Pos.Time
			u.Speed = item.Pos.Speed
		}
		units = append(units, u)
	}
	return units, nil
}

func decodeResources(body json.RawMessage) ([]model.Resource, error) {
	var payload struct {
		Items []rawResource `json:"items"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("decode resource search response: %w", err)
	}

	resources := make([]model.Resource, 0, len(payload.Items))
	for _, item := range payload.Items {
		resources = append(resources, model.Resource{ID: item.ID, Name: item.Name})
	}
	return resources, nil
}

// rawZonePoint accepts either the object form {"x":lon,"y":lat} or a bare
// [lon, lat] pair.
type rawZonePoint struct {
	Lat float64
	Lon float64
}

func (p *rawZonePoint) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '[' {
		var pair []float64
		if err := json.Unmarshal(data, &pair); err != nil {
			return err
		}
		if len(pair) < 2 {
			return fmt.Errorf("zone point pair too short")
		}
		p.Lon, p.Lat = pair[0], pair[1]
		return nil
	}

	var obj struct {
		X float64 `json:"x"`
		Y float64 `json:"y"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	p.Lon, p.Lat = obj.X, obj.Y
	return nil
}

// rawZoneProps mirrors the "jp" property bag a zone may carry.
type rawZoneProps struct {
	ColorARGB *uint32         `json:"color_argb"`
	Category  string          `json:"category"`
	Points    []model.Point   `json:"points"`
	Center    *model.Point    `json:"center"`
	Radius    float64         `json:"radius"`
	GeoJSON   json.RawMessage `json:"geojson"`
}

type rawZone struct {
	ID    *int64 `json:"id"`
	AltID *int64 `json:"i"`
	Name  string `json:"n"`
	Name2 string `json:"name"`
	Type  *int   `json:"t"`

	Color   *uint32         `json:"c"`
	Points  []rawZonePoint  `json:"p"`
	Center  *rawZonePoint   `json:"ct"`
	Radius  float64         `json:"r"`
	JP      *rawZoneProps   `json:"jp"`
	GeoJSON json.RawMessage `json:"geojson"`
}

// DecodeZones decodes a get_zone_data response. The payload arrives either as
// an array of zones or as an object keyed by zone id; both normalize to the
// same slice. Object entries are emitted in ascending key order since JSON
// objects carry no reliable ordering.
func DecodeZones(body json.RawMessage) ([]*model.Geofence, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 || bytes.Equal(body, []byte("null")) {
		return nil, nil
	}

	var raws []rawZone
	if body[0] == '{' {
		var byID map[string]rawZone
		if err := json.Unmarshal(body, &byID); err != nil {
			return nil, fmt.Errorf("decode zone data object: %w", err)
		}
		keys := make([]string, 0, len(byID))
		for key := range byID {
			keys = append(keys, key)
		}
		sort.Slice(keys, func(i, j int) bool {
			a, errA := strconv.ParseInt(keys[i], 10, 64)
			b, errB := strconv.ParseInt(keys[j], 10, 64)
			if errA != nil || errB != nil {
				return keys[i] < keys[j]
			}
			return a < b
		})
		for _, key := range keys {
			raws = append(raws, byID[key])
		}
	} else {
		if err := json.Unmarshal(body, &raws); err != nil {
			return nil, fmt.Errorf("decode zone data array: %w", err)
		}
	}

	zones := make([]*model.Geofence, 0, len(raws))
	for _, raw := range raws {
		zones = append(zones, raw.toGeofence())
	}
	return zones, nil
}

// toGeofence resolves the field aliases and picks one geometry representation
// for the zone, preferring the structured "jp" properties over the compact
// top-level encoding.
func (z *rawZone) toGeofence() *model.Geofence {
	g := &model.Geofence{
		Name: z.Name,
		Type: z.Type,
	}
	if g.Name == "" {
		g.Name = z.Name2
	}
	if z.ID != nil {
		g.ID = *z.ID
	} else if z.AltID != nil {
		g.ID = *z.AltID
	}

	g.ColorARGB = z.Color
	if g.ColorARGB == nil && z.JP != nil {
		g.ColorARGB = z.JP.ColorARGB
	}
	if z.JP != nil {
		g.Category = z.JP.Category
	}

	g.GeoJSON = z.GeoJSON
	if len(g.GeoJSON) == 0 && z.JP != nil {
		g.GeoJSON = z.JP.GeoJSON
	}

	if z.JP != nil && len(z.JP.Points) > 0 {
		g.Points = z.JP.Points
	} else if len(z.Points) > 0 {
		g.Points = make([]model.Point, len(z.Points))
		for i, p := range z.Points {
			g.Points[i] = model.Point{Lat: p.Lat, Lon: p.Lon}
		}
	}

	if z.JP != nil && z.JP.Center != nil && z.JP.Radius > 0 {
		g.Center = z.JP.Center
		g.Radius = z.JP.Radius
	} else if z.Center != nil && z.Radius > 0 {
		g.Center = &model.Point{Lat: z.Center.Lat, Lon: z.Center.Lon}
		g.Radius = z.Radius
	}

	return g
}
