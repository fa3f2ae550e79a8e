package roster

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"geocerca/internal/config"
	"geocerca/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRemote struct {
	units     []model.Unit
	resources []model.Resource
	zones     map[int64][]*model.Geofence

	unitsErr     error
	resourcesErr error
	zonesErr     map[int64]error

	unitCalls     int
	resourceCalls int
	zoneCalls     map[int64]int
}

func (f *fakeRemote) Units(ctx context.Context) ([]model.Unit, error) {
	f.unitCalls++
	return f.units, f.unitsErr
}

func (f *fakeRemote) Resources(ctx context.Context) ([]model.Resource, error) {
	f.resourceCalls++
	return f.resources, f.resourcesErr
}

// fakeMirror is an in-process stand-in for the shared Redis tier.
type fakeMirror struct {
	entries map[string][]byte
	ttls    map[string]time.Duration
}

func newFakeMirror() *fakeMirror {
	return &fakeMirror{entries: map[string][]byte{}, ttls: map[string]time.Duration{}}
}

func (m *fakeMirror) GetJSON(ctx context.Context, key string, out interface{}) (bool, error) {
	raw, ok := m.entries[key]
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return false, err
	}
	return true, nil
}

func (m *fakeMirror) SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.entries[key] = raw
	m.ttls[key] = ttl
	return nil
}

func (f *fakeRemote) Geofences(ctx context.Context, resourceID int64) ([]*model.Geofence, error) {
	if f.zoneCalls == nil {
		f.zoneCalls = map[int64]int{}
	}
	f.zoneCalls[resourceID]++
	if err := f.zonesErr[resourceID]; err != nil {
		return nil, err
	}
	return f.zones[resourceID], nil
}

func TestRosterService_UnitsCached(t *testing.T) {
	remote := &fakeRemote{units: []model.Unit{{ID: 1, Name: "ACA01"}}}
	s := NewRosterService(remote)

	units, err := s.Units(context.Background())
	require.NoError(t, err)
	require.Len(t, units, 1)

	_, err = s.Units(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, remote.unitCalls, "second call should hit the cache")
}

func TestRosterService_UnitsStaleFallback(t *testing.T) {
	remote := &fakeRemote{units: []model.Unit{{ID: 1, Name: "ACA01"}}}
	s := NewRosterService(remote)
	s.units.Set(unitsKey, remote.units)

	// A failed fetch serves the stale entry instead of surfacing the error.
	units, err := s.unitsFallback(errors.New("upstream down"))
	require.NoError(t, err)
	assert.Len(t, units, 1)
}

func TestRosterService_UnitsErrorWithoutFallback(t *testing.T) {
	remote := &fakeRemote{unitsErr: errors.New("upstream down")}
	s := NewRosterService(remote)

	_, err := s.Units(context.Background())
	require.Error(t, err)
	assert.ErrorContains(t, err, "upstream down")
}

func TestRosterService_ResourcesStaleFallback(t *testing.T) {
	remote := &fakeRemote{resources: []model.Resource{{ID: 10, Name: "Flota Norte"}}}
	s := NewRosterService(remote)
	s.resources.Set(resourcesKey, remote.resources)

	// Same degradation as units: a failed fetch serves the stale entry, so
	// archived geofences stay reachable through the resource list.
	resources, err := s.resourcesFallback(errors.New("upstream down"))
	require.NoError(t, err)
	assert.Len(t, resources, 1)
}

func TestRosterService_ResourcesErrorWithoutFallback(t *testing.T) {
	remote := &fakeRemote{resourcesErr: errors.New("upstream down")}
	s := NewRosterService(remote)

	_, err := s.Resources(context.Background())
	require.Error(t, err)
	assert.ErrorContains(t, err, "upstream down")
}

func TestRosterService_MirrorHitSkipsRemote(t *testing.T) {
	remote := &fakeRemote{units: []model.Unit{{ID: 1, Name: "ACA01"}}}
	s := NewRosterService(remote)

	mirror := newFakeMirror()
	require.NoError(t, mirror.SetJSON(context.Background(), unitsRedisKey,
		[]model.Unit{{ID: 2, Name: "GDL07"}}, config.UnitsTTL))
	s.mirror = mirror

	units, err := s.Units(context.Background())
	require.NoError(t, err)
	require.Len(t, units, 1)
	assert.Equal(t, int64(2), units[0].ID, "mirror entry wins over the remote")
	assert.Zero(t, remote.unitCalls)

	// The hit also warms process memory, so the next lookup stays local.
	_, ok := s.units.GetFresh(unitsKey, config.UnitsTTL)
	assert.True(t, ok)
}

func TestRosterService_MirrorPopulatedAfterFetch(t *testing.T) {
	remote := &fakeRemote{
		units:     []model.Unit{{ID: 1, Name: "ACA01"}},
		resources: []model.Resource{{ID: 10, Name: "Flota Norte"}},
	}
	s := NewRosterService(remote)
	mirror := newFakeMirror()
	s.mirror = mirror

	_, err := s.Units(context.Background())
	require.NoError(t, err)
	_, err = s.Resources(context.Background())
	require.NoError(t, err)

	assert.Contains(t, mirror.entries, unitsRedisKey)
	assert.Contains(t, mirror.entries, resourcesRedisKey)
	assert.Equal(t, config.UnitsTTL, mirror.ttls[unitsRedisKey])
	assert.Equal(t, config.ResourcesTTL, mirror.ttls[resourcesRedisKey])
}

func TestRosterService_GeofencesByResourcePartialFailure(t *testing.T) {
	remote := &fakeRemote{
		resources: []model.Resource{{ID: 10}, {ID: 20}},
		zones: map[int64][]*model.Geofence{
			10: {{ID: 5, Name: "ACA01"}},
		},
		zonesErr: map[int64]error{20: errors.New("forbidden")},
	}
	s := NewRosterService(remote)

	byResource := s.GeofencesByResource(context.Background(), remote.resources)

	require.Len(t, byResource, 2)
	assert.Len(t, byResource[10], 1)
	// The failed resource degrades to an empty list, never an error.
	assert.Empty(t, byResource[20])
}

func TestRosterService_Snapshot(t *testing.T) {
	remote := &fakeRemote{
		units:     []model.Unit{{ID: 1, Name: "ACA01"}},
		resources: []model.Resource{{ID: 10, Name: "Flota Norte"}, {ID: 20, Name: "Flota Sur"}},
		zones: map[int64][]*model.Geofence{
			10: {{ID: 5, Name: "ACA01"}},
			20: {{ID: 6, Name: "GDL07"}},
		},
	}
	s := NewRosterService(remote)

	snap, err := s.Snapshot(context.Background(), nil)
	require.NoError(t, err)
	assert.Len(t, snap.Units, 1)
	assert.Len(t, snap.Resources, 2)
	assert.Len(t, snap.GeofencesByResource, 2)

	// Restricting to one resource keeps the full resource list but only that
	// resource's zones.
	resourceID := int64(20)
	snap, err = s.Snapshot(context.Background(), &resourceID)
	require.NoError(t, err)
	assert.Len(t, snap.Resources, 2)
	require.Len(t, snap.GeofencesByResource, 1)
	assert.Len(t, snap.GeofencesByResource[20], 1)
}

func TestGeofenceByID(t *testing.T) {
	byResource := map[int64][]*model.Geofence{
		10: {{ID: 5, Name: "ACA01"}},
		20: {{ID: 6, Name: "GDL07"}},
	}

	byID := GeofenceByID(byResource)
	require.Len(t, byID, 2)
	assert.Equal(t, "ACA01", byID[5].Name)
	assert.Equal(t, "GDL07", byID[6].Name)
}
