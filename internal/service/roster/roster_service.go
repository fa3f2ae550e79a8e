package roster

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"geocerca/internal/config"
	"geocerca/internal/model"
	pg "geocerca/internal/postgres"
	redis_client "geocerca/internal/redis"
	"geocerca/internal/service/storage"
)

const (
	unitsKey     = "units"
	resourcesKey = "resources"

	unitsRedisKey     = "geocerca:units"
	resourcesRedisKey = "geocerca:resources"
	zonesRedisKeyFmt  = "geocerca:geofences:%d"
)

// RemoteAPI is the upstream telematics source the service fetches from.
type RemoteAPI interface {
	Units(ctx context.Context) ([]model.Unit, error)
	Resources(ctx context.Context) ([]model.Resource, error)
	Geofences(ctx context.Context, resourceID int64) ([]*model.Geofence, error)
}

// Mirror is the shared cache tier sitting between process memory and the
// remote, so multiple instances warm each other's caches.
type Mirror interface {
	GetJSON(ctx context.Context, key string, out interface{}) (bool, error)
	SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

// redisMirror backs Mirror with the shared Redis client. A service running
// without Redis configured degrades to misses.
type redisMirror struct{}

func (redisMirror) GetJSON(ctx context.Context, key string, out interface{}) (bool, error) {
	if redis_client.GetClient() == nil {
		return false, nil
	}
	return redis_client.GetJSON(ctx, key, out)
}

func (redisMirror) SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if redis_client.GetClient() == nil {
		return nil
	}
	return redis_client.SetJSON(ctx, key, value, ttl)
}

// Snapshot bundles the three upstream collections in one response so the
// presentation layer needs a single round trip.
type Snapshot struct {
	Units               []model.Unit                `json:"units"`
	Resources           []model.Resource            `json:"resources"`
	GeofencesByResource map[int64][]*model.Geofence `json:"geofences_by_resource"`
}

// RosterService maintains TTL-cached snapshots of units, resources and
// per-resource geofences. Lookup order: fresh memory, Redis mirror, remote
// fetch. A failed remote fetch falls back to stale memory and then to the
// PostgreSQL archive, so a flaky upstream degrades to old data instead of
// an empty board.
type RosterService struct {
	remote RemoteAPI
	mirror Mirror

	units     storage.Storage[string, []model.Unit]
	resources storage.Storage[string, []model.Resource]
	geofences storage.Storage[int64, []*model.Geofence]
}

var (
	rosterServiceInstance *RosterService
	rosterServiceOnce     sync.Once
)

// GetRosterService returns the singleton instance of the RosterService
func GetRosterService() *RosterService {
	rosterServiceOnce.Do(func() {
		rosterServiceInstance = NewRosterService(nil)
	})
	return rosterServiceInstance
}

// NewRosterService creates a service around the given remote source.
func NewRosterService(remote RemoteAPI) *RosterService {
	return &RosterService{
		remote:    remote,
		mirror:    redisMirror{},
		units:     storage.NewMemoryStorage[string, []model.Unit](),
		resources: storage.NewMemoryStorage[string, []model.Resource](),
		geofences: storage.NewMemoryStorage[int64, []*model.Geofence](),
	}
}

// InitService wires the remote source; call once at startup.
func (s *RosterService) InitService(remote RemoteAPI) {
	s.remote = remote
}

// Units returns the unit roster, cached for config.UnitsTTL.
func (s *RosterService) Units(ctx context.Context) ([]model.Unit, error) {
	if units, ok := s.units.GetFresh(unitsKey, config.UnitsTTL); ok {
		return units, nil
	}

	var cached []model.Unit
	if s.redisGet(ctx, unitsRedisKey, &cached) {
		s.units.Set(unitsKey, cached)
		return cached, nil
	}

	units, err := s.remote.Units(ctx)
	if err != nil {
		return s.unitsFallback(err)
	}

	s.units.Set(unitsKey, units)
	s.redisSet(ctx, unitsRedisKey, units, config.UnitsTTL)
	return units, nil
}

// unitsFallback serves stale memory or the archive after a failed fetch.
func (s *RosterService) unitsFallback(fetchErr error) ([]model.Unit, error) {
	if units, ok := s.units.Get(unitsKey); ok {
		log.Printf("Unit fetch failed, serving stale roster: %v", fetchErr)
		return units, nil
	}
	if pg.GetDB() != nil {
		if units, err := pg.LoadUnits(); err == nil && len(units) > 0 {
			log.Printf("Unit fetch failed, serving archived roster: %v", fetchErr)
			return units, nil
		}
	}
	return nil, fmt.Errorf("fetch units: %w", fetchErr)
}

// Resources returns the resource list, cached for config.ResourcesTTL.
func (s *RosterService) Resources(ctx context.Context) ([]model.Resource, error) {
	if resources, ok := s.resources.GetFresh(resourcesKey, config.ResourcesTTL); ok {
		return resources, nil
	}

	var cached []model.Resource
	if s.redisGet(ctx, resourcesRedisKey, &cached) {
		s.resources.Set(resourcesKey, cached)
		return cached, nil
	}

	resources, err := s.remote.Resources(ctx)
	if err != nil {
		return s.resourcesFallback(err)
	}

	s.resources.Set(resourcesKey, resources)
	s.redisSet(ctx, resourcesRedisKey, resources, config.ResourcesTTL)
	return resources, nil
}

// resourcesFallback serves stale memory or the archive after a failed fetch.
// The archive matters here: without the resource list the archived geofences
// cannot be reached on a cold start.
func (s *RosterService) resourcesFallback(fetchErr error) ([]model.Resource, error) {
	if resources, ok := s.resources.Get(resourcesKey); ok {
		log.Printf("Resource fetch failed, serving stale list: %v", fetchErr)
		return resources, nil
	}
	if pg.GetDB() != nil {
		if resources, err := pg.LoadResources(); err == nil && len(resources) > 0 {
			log.Printf("Resource fetch failed, serving archived list: %v", fetchErr)
			return resources, nil
		}
	}
	return nil, fmt.Errorf("fetch resources: %w", fetchErr)
}

// Geofences returns one resource's geofences, cached for config.GeofencesTTL.
func (s *RosterService) Geofences(ctx context.Context, resourceID int64) ([]*model.Geofence, error) {
	if zones, ok := s.geofences.GetFresh(resourceID, config.GeofencesTTL); ok {
		return zones, nil
	}

	redisKey := fmt.Sprintf(zonesRedisKeyFmt, resourceID)
	var cached []*model.Geofence
	if s.redisGet(ctx, redisKey, &cached) {
		s.geofences.Set(resourceID, cached)
		return cached, nil
	}

	zones, err := s.remote.Geofences(ctx, resourceID)
	if err != nil {
		return s.geofencesFallback(resourceID, err)
	}

	s.geofences.Set(resourceID, zones)
	s.redisSet(ctx, redisKey, zones, config.GeofencesTTL)
	return zones, nil
}

func (s *RosterService) geofencesFallback(resourceID int64, fetchErr error) ([]*model.Geofence, error) {
	if zones, ok := s.geofences.Get(resourceID); ok {
		log.Printf("Geofence fetch for resource %d failed, serving stale zones: %v", resourceID, fetchErr)
		return zones, nil
	}
	if pg.GetDB() != nil {
		if zones, err := pg.LoadGeofences(resourceID); err == nil && len(zones) > 0 {
			log.Printf("Geofence fetch for resource %d failed, serving archived zones: %v", resourceID, fetchErr)
			return zones, nil
		}
	}
	return nil, fmt.Errorf("fetch geofences for resource %d: %w", resourceID, fetchErr)
}

// GeofencesByResource fetches every resource's geofences concurrently. A
// failed resource degrades to an empty list so the rest of the board still
// reconciles.
func (s *RosterService) GeofencesByResource(ctx context.Context, resources []model.Resource) map[int64][]*model.Geofence {
	byResource := make(map[int64][]*model.Geofence, len(resources))

	var wg sync.WaitGroup
	var mu sync.Mutex
	for _, resource := range resources {
		wg.Add(1)
		go func(resourceID int64) {
			defer wg.Done()

			zones, err := s.Geofences(ctx, resourceID)
			if err != nil {
				log.Printf("Skipping geofences of resource %d: %v", resourceID, err)
				zones = []*model.Geofence{}
			}

			mu.Lock()
			byResource[resourceID] = zones
			mu.Unlock()
		}(resource.ID)
	}
	wg.Wait()

	return byResource
}

// Snapshot bundles units, resources and geofences. A non-nil resourceID
// restricts the geofence section to that single resource.
func (s *RosterService) Snapshot(ctx context.Context, resourceID *int64) (*Snapshot, error) {
	units, err := s.Units(ctx)
	if err != nil {
		return nil, err
	}
	resources, err := s.Resources(ctx)
	if err != nil {
		return nil, err
	}

	wanted := resources
	if resourceID != nil {
		wanted = []model.Resource{{ID: *resourceID}}
	}

	return &Snapshot{
		Units:               units,
		Resources:           resources,
		GeofencesByResource: s.GeofencesByResource(ctx, wanted),
	}, nil
}

// GeofenceByID flattens a per-resource geofence map into an id lookup.
// A zone listed under two resources resolves to the last one seen in
// ascending-id order; ids are unique per account in practice.
func GeofenceByID(byResource map[int64][]*model.Geofence) map[int64]*model.Geofence {
	byID := make(map[int64]*model.Geofence)
	for _, zones := range byResource {
		for _, zone := range zones {
			byID[zone.ID] = zone
		}
	}
	return byID
}

// RefreshAll re-warms the three caches; the refresh worker calls this at the
// TTL cadence so interactive requests rarely pay the fetch cost.
func (s *RosterService) RefreshAll(ctx context.Context) {
	if _, err := s.Units(ctx); err != nil {
		log.Printf("Refresh: units fetch failed: %v", err)
	}

	resources, err := s.Resources(ctx)
	if err != nil {
		log.Printf("Refresh: resources fetch failed: %v", err)
		return
	}
	s.GeofencesByResource(ctx, resources)
}

// FlushArchive persists dirty snapshot entries to PostgreSQL so a later
// restart can warm-start without the remote.
func (s *RosterService) FlushArchive() error {
	if pg.GetDB() == nil {
		return nil
	}

	if units, ok := s.units.Get(unitsKey); ok {
		rows := make([]*model.UnitPG, 0, len(units))
		for i := range units {
			rows = append(rows, model.UnitToPG(&units[i]))
		}
		if err := pg.SaveUnits(rows); err != nil {
			return err
		}
		s.units.ClearDirty([]string{unitsKey})
	}

	if resources, ok := s.resources.Get(resourcesKey); ok {
		rows := make([]*model.ResourcePG, 0, len(resources))
		for i := range resources {
			rows = append(rows, model.ResourceToPG(&resources[i]))
		}
		if err := pg.SaveResources(rows); err != nil {
			return err
		}
		s.resources.ClearDirty([]string{resourcesKey})
	}

	dirty := s.geofences.GetDirty()
	if len(dirty) == 0 {
		return nil
	}

	flushed := make([]int64, 0, len(dirty))
	for resourceID, zones := range dirty {
		rows := make([]*model.GeofencePG, 0, len(zones))
		for _, zone := range zones {
			row, err := model.GeofenceToPG(resourceID, zone)
			if err != nil {
				continue
			}
			rows = append(rows, row)
		}
		if err := pg.SaveGeofences(rows); err != nil {
			return err
		}
		flushed = append(flushed, resourceID)
	}
	s.geofences.ClearDirty(flushed)

	log.Printf("Archived geofence snapshots for %d resources", len(flushed))
	return nil
}

func (s *RosterService) redisGet(ctx context.Context, key string, out interface{}) bool {
	hit, err := s.mirror.GetJSON(ctx, key, out)
	if err != nil {
		log.Printf("Redis read for %s failed: %v", key, err)
		return false
	}
	return hit
}

func (s *RosterService) redisSet(ctx context.Context, key string, value interface{}, ttl time.Duration) {
	if err := s.mirror.SetJSON(ctx, key, value, ttl); err != nil {
		log.Printf("Redis write for %s failed: %v", key, err)
	}
}
