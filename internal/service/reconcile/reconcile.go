package reconcile

import (
	"sort"
	"strings"

	"geocerca/internal/model"
	"geocerca/internal/service/whitelist"
)

// SyntheticIDOffset is added to a row's position to mint placeholder unit ids
// for requested names that match no unit. Real telematics ids are far below
// this range, so placeholders never collide with them.
const SyntheticIDOffset int64 = 1_000_000_000_000

// ExportMarker is the single character emitted for rows with at least one
// matched geofence in the text export column.
const ExportMarker = "✔"

// Result carries the reconciled rows plus a data-quality counter: how many
// units became unreachable because another unit claimed the same
// case-insensitive name in the lookup.
type Result struct {
	Rows                 []model.UnitRow
	SuppressedCollisions int
}

// Reconcile merges the three independently fetched collections into one output
// row per requested name, preserving request order and length exactly. It is a
// pure transform: missing units, missing cross-reference entries and dangling
// geofence ids all degrade to empty data, never to an error.
func Reconcile(
	requested []string,
	units []model.Unit,
	geofenceByID map[int64]*model.Geofence,
	crossRef model.CrossReference,
	filter *whitelist.Filter,
) Result {
	byName := make(map[string]*model.Unit, len(units))
	collisions := 0
	for i := range units {
		key := strings.ToLower(units[i].Name)
		if _, exists := byName[key]; exists {
			collisions++
		}
		byName[key] = &units[i]
	}

	zoneIDsByUnit := flattenCrossReference(crossRef)

	rows := make([]model.UnitRow, 0, len(requested))
	for i, name := range requested {
		unit, ok := byName[strings.ToLower(name)]
		if !ok {
			rows = append(rows, model.UnitRow{
				RequestedName: name,
				UnitID:        SyntheticIDOffset + int64(i),
				Geofences:     []*model.Geofence{},
			})
			continue
		}

		zones := []*model.Geofence{}
		for _, zoneID := range zoneIDsByUnit[unit.ID] {
			zone, found := geofenceByID[zoneID]
			if !found {
				continue
			}
			if filter.Permitted(zone.Name) {
				zones = append(zones, zone)
			}
		}

		rows = append(rows, model.UnitRow{
			RequestedName: name,
			UnitName:      unit.Name,
			UnitID:        unit.ID,
			Lat:           unit.Lat,
			Lon:           unit.Lon,
			Timestamp:     unit.Timestamp,
			Speed:         unit.Speed,
			Geofences:     zones,
		})
	}

	return Result{Rows: rows, SuppressedCollisions: collisions}
}

// flattenCrossReference collapses the resource -> unit -> ids nesting into one
// list per unit. Lists are concatenated across resources in ascending resource
// id order and are deliberately not de-duplicated: a unit reported by two
// resources keeps both contributions.
func flattenCrossReference(crossRef model.CrossReference) map[int64][]int64 {
	resourceIDs := make([]int64, 0, len(crossRef))
	for resourceID := range crossRef {
		resourceIDs = append(resourceIDs, resourceID)
	}
	sort.Slice(resourceIDs, func(i, j int) bool { return resourceIDs[i] < resourceIDs[j] })

	byUnit := make(map[int64][]int64)
	for _, resourceID := range resourceIDs {
		for unitID, zoneIDs := range crossRef[resourceID] {
			byUnit[unitID] = append(byUnit[unitID], zoneIDs...)
		}
	}
	return byUnit
}

// FormatRows renders the clipboard export column: one line per row, the marker
// character when the row matched at least one geofence, an empty line
// otherwise. Lines are joined with newlines in row order.
func FormatRows(rows []model.UnitRow) string {
	lines := make([]string, len(rows))
	for i, row := range rows {
		if len(row.Geofences) > 0 {
			lines[i] = ExportMarker
		}
	}
	return strings.Join(lines, "\n")
}
