package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// GeofencePG is the PostgreSQL archive row for a geofence. The archive keeps
// the last snapshot fetched from the remote so the service can warm-start
// when the telematics backend is unreachable. The raw record is kept whole as
// JSON; the indexed columns exist for lookups only.
type GeofencePG struct {
	ID         string `gorm:"primaryKey"`
	ResourceID int64  `gorm:"not null;uniqueIndex:idx_resource_zone"`
	ZoneID     int64  `gorm:"not null;uniqueIndex:idx_resource_zone"`
	Name       string `gorm:"size:255;not null"`
	Payload    string `gorm:"type:text;not null"`

	UpdatedAt time.Time `gorm:"column:updated_at"`
	CreatedAt time.Time `gorm:"column:created_at"`
}

// TableName overrides the table name
func (GeofencePG) TableName() string {
	return "geofences"
}

// GeofenceToPG builds an archive row from a fetched geofence.
func GeofenceToPG(resourceID int64, g *Geofence) (*GeofencePG, error) {
	payload, err := json.Marshal(g)
	if err != nil {
		return nil, err
	}
	return &GeofencePG{
		ID:         uuid.NewString(),
		ResourceID: resourceID,
		ZoneID:     g.ID,
		Name:       g.Name,
		Payload:    string(payload),
	}, nil
}

// ToGeofence restores the archived record.
func (pg *GeofencePG) ToGeofence() (*Geofence, error) {
	var g Geofence
	if err := json.Unmarshal([]byte(pg.Payload), &g); err != nil {
		return nil, err
	}
	return &g, nil
}

// ResourcePG is the PostgreSQL archive row for a resource. Without it the
// archived geofences are unreachable after a restart, since geofences are
// fetched per resource.
type ResourcePG struct {
	ID   int64  `gorm:"primaryKey"`
	Name string `gorm:"size:255;not null"`

	UpdatedAt time.Time `gorm:"column:updated_at"`
	CreatedAt time.Time `gorm:"column:created_at"`
}

// TableName overrides the table name
func (ResourcePG) TableName() string {
	return "resources"
}

// ResourceToPG builds an archive row from a fetched resource.
func ResourceToPG(r *Resource) *ResourcePG {
	return &ResourcePG{ID: r.ID, Name: r.Name}
}

// ToResource restores the archived record.
func (pg *ResourcePG) ToResource() Resource {
	return Resource{ID: pg.ID, Name: pg.Name}
}

// UnitPG is the PostgreSQL archive row for a unit's last known state.
type UnitPG struct {
	ID   int64  `gorm:"primaryKey"`
	Name string `gorm:"size:255;not null"`

	Lat       *float64 `gorm:""`
	Lon       *float64 `gorm:""`
	Timestamp *int64   `gorm:""`
	Speed     *float64 `gorm:""`

	UpdatedAt time.Time `gorm:"column:updated_at"`
	CreatedAt time.Time `gorm:"column:created_at"`
}

// TableName overrides the table name
func (UnitPG) TableName() string {
	return "units"
}

// UnitToPG builds an archive row from a fetched unit.
func UnitToPG(u *Unit) *UnitPG {
	return &UnitPG{
		ID:        u.ID,
		Name:      u.Name,
		Lat:       u.Lat,
		Lon:       u.Lon,
		Timestamp: u.Timestamp,
		Speed:     u.Speed,
	}
}

// ToUnit restores the archived record.
func (pg *UnitPG) ToUnit() Unit {
	return Unit{
		ID:        pg.ID,
		Name:      pg.Name,
		Lat:       pg.Lat,
		Lon:       pg.Lon,
		Timestamp: pg.Timestamp,
		Speed:     pg.Speed,
	}
}
