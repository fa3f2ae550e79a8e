package postgres

import (
	"fmt"

	"geocerca/internal/model"

	"gorm.io/gorm/clause"
)

// SaveUnits upserts the latest unit states into the archive.
func SaveUnits(units []*model.UnitPG) error {
	if len(units) == 0 {
		return nil
	}
	result := GetDB().Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "lat", "lon", "timestamp", "speed", "updated_at"}),
	}).Create(&units)
	if result.Error != nil {
		return fmt.Errorf("save units archive: %w", result.Error)
	}
	return nil
}

// SaveResources upserts the resource list into the archive.
func SaveResources(resources []*model.ResourcePG) error {
	if len(resources) == 0 {
		return nil
	}
	result := GetDB().Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "updated_at"}),
	}).Create(&resources)
	if result.Error != nil {
		return fmt.Errorf("save resources archive: %w", result.Error)
	}
	return nil
}

// SaveGeofences upserts one resource's geofence snapshot into the archive.
func SaveGeofences(geofences []*model.GeofencePG) error {
	if len(geofences) == 0 {
		return nil
	}
	result := GetDB().Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "resource_id"}, {Name: "zone_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "payload", "updated_at"}),
	}).Create(&geofences)
	if result.Error != nil {
		return fmt.Errorf("save geofences archive: %w", result.Error)
	}
	return nil
}

// LoadUnits returns the archived unit roster.
func LoadUnits() ([]model.Unit, error) {
	var rows []*model.UnitPG
	if result := GetDB().Find(&rows); result.Error != nil {
		return nil, fmt.Errorf("load units archive: %w", result.Error)
	}

	units := make([]model.Unit, 0, len(rows))
	for _, row := range rows {
		units = append(units, row.ToUnit())
	}
	return units, nil
}

// LoadResources returns the archived resource list.
func LoadResources() ([]model.Resource, error) {
	var rows []*model.ResourcePG
	if result := GetDB().Find(&rows); result.Error != nil {
		return nil, fmt.Errorf("load resources archive: %w", result.Error)
	}

	resources := make([]model.Resource, 0, len(rows))
	for _, row := range rows {
		resources = append(resources, row.ToResource())
	}
	return resources, nil
}

// LoadGeofences returns the archived geofences of one resource. Rows whose
// payload no longer decodes are skipped.
func LoadGeofences(resourceID int64) ([]*model.Geofence, error) {
	var rows []*model.GeofencePG
	result := GetDB().Where("resource_id = ?", resourceID).Find(&rows)
	if result.Error != nil {
		return nil, fmt.Errorf("load geofences archive: %w", result.Error)
	}

	geofences := make([]*model.Geofence, 0, len(rows))
	for _, row := range rows {
		g, err := row.ToGeofence()
		if err != nil {
			continue
		}
		geofences = append(geofences, g)
	}
	return geofences, nil
}
