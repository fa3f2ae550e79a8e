package model

// Unit is a tracked fleet unit as reported by the telematics backend.
// Position fields are nil when the unit has never reported.
type Unit struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`

	Lat       *float64 `json:"lat"`
	Lon       *float64 `json:"lon"`
	Timestamp *int64   `json:"t"`
	Speed     *float64 `json:"speed"`
}

// HasPosition reports whether the unit carries a usable last-known position.
func (u *Unit) HasPosition() bool {
	return u.Lat != nil && u.Lon != nil
}

// Resource is a telematics account/resource that owns geofences.
type Resource struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}
