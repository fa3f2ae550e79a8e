package model

import (
	"bytes"
	"encoding/json"
	"sort"
	"strconv"
)

// GeofenceIDList is an ordered list of geofence ids a unit currently occupies.
// Upstream encodes it either as a plain array of ids or as an object keyed by
// geofence id; both forms normalize to the same list at decode time, so nothing
// downstream ever branches on the source shape.
type GeofenceIDList []int64

// UnmarshalJSON accepts both the array and the object encoding. Object keys are
// coerced to integers and appended in ascending order, since JSON objects carry
// no reliable ordering.
func (l *GeofenceIDList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*l = nil
		return nil
	}

	if data[0] == '[' {
		var ids []int64
		if err := json.Unmarshal(data, &ids); err != nil {
			return err
		}
		*l = ids
		return nil
	}

	var byID map[string]json.RawMessage
	if err := json.Unmarshal(data, &byID); err != nil {
		return err
	}

	ids := make([]int64, 0, len(byID))
	for key := range byID {
		id, err := strconv.ParseInt(key, 10, 64)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	*l = ids
	return nil
}

// CrossReference maps resource id -> unit id -> occupied geofence ids. It is a
// snapshot rebuilt on every query cycle, never a delta.
type CrossReference map[int64]map[int64]GeofenceIDList

// UnitRow is one reconciled output row: the requested name, the matched unit
// (or a synthesized placeholder id when no unit matched), its last position and
// the filtered geofences it occupies. RequestedName echoes the caller's
// spelling verbatim; UnitName carries the unit's registered name when a match
// was found.
type UnitRow struct {
	RequestedName string `json:"name"`
	UnitName      string `json:"unit_name,omitempty"`
	UnitID        int64  `json:"id"`

	Lat       *float64 `json:"lat"`
	Lon       *float64 `json:"lon"`
	Timestamp *int64   `json:"t"`
	Speed     *float64 `json:"speed"`

	Geofences []*Geofence `json:"zones"`
}
