package routes

import (
	"context"
	"log"
	"strconv"

	"geocerca/internal/model"
	"geocerca/internal/service/geometry"
	"geocerca/internal/service/reconcile"
	"geocerca/internal/service/roster"
	"geocerca/internal/service/whitelist"
	"geocerca/internal/service/zones"

	"github.com/gin-gonic/gin"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// SetupBoardHandlers registers the reconciliation and map endpoints
func SetupBoardHandlers(router *gin.RouterGroup, filter *whitelist.Filter) {
	router.POST("/rows", func(c *gin.Context) { BoardRows(c, filter) })
	router.GET("/viewport", BoardViewport)
	router.POST("/export", func(c *gin.Context) { BoardExport(c, filter) })
}

type rowsRequest struct {
	Names []string `json:"names"`

	// CrossRef optionally supplies a pre-computed membership cross-reference
	// (as returned by the local cross endpoint, list or map encoded). When
	// absent, the cross is computed geometrically from the cached snapshots.
	CrossRef model.CrossReference `json:"cross_ref"`
}

// buildRows assembles the snapshots and runs the reconciliation core.
func buildRows(ctx context.Context, req rowsRequest, filter *whitelist.Filter) (reconcile.Result, error) {
	rosterService := roster.GetRosterService()

	units, err := rosterService.Units(ctx)
	if err != nil {
		return reconcile.Result{}, err
	}
	resources, err := rosterService.Resources(ctx)
	if err != nil {
		return reconcile.Result{}, err
	}

	zonesByResource := rosterService.GeofencesByResource(ctx, resources)
	geofenceByID := roster.GeofenceByID(zonesByResource)

	crossRef := req.CrossRef
	if len(crossRef) == 0 {
		crossRef = zones.CrossLocal(units, zonesByResource)
	}

	return reconcile.Reconcile(req.Names, units, geofenceByID, crossRef, filter), nil
}

// BoardRows returns one reconciled row per requested unit name
func BoardRows(c *gin.Context, filter *whitelist.Filter) {
	var req rowsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(400, gin.H{"error": "body must be {\"names\": [...]}"})
		return
	}

	result, err := buildRows(c.Request.Context(), req, filter)
	if err != nil {
		log.Printf("Rows endpoint failed: %v", err)
		c.JSON(502, gin.H{"error": err.Error()})
		return
	}

	c.JSON(200, gin.H{
		"count":                 len(result.Rows),
		"rows":                  result.Rows,
		"suppressed_collisions": result.SuppressedCollisions,
	})
}

// BoardExport returns the clipboard text column for the requested names
func BoardExport(c *gin.Context, filter *whitelist.Filter) {
	var req rowsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(400, gin.H{"error": "body must be {\"names\": [...]}"})
		return
	}

	result, err := buildRows(c.Request.Context(), req, filter)
	if err != nil {
		log.Printf("Export endpoint failed: %v", err)
		c.JSON(502, gin.H{"error": err.Error()})
		return
	}

	c.String(200, reconcile.FormatRows(result.Rows))
}

type viewportCircle struct {
	ZoneID int64       `json:"zone_id"`
	Name   string      `json:"name"`
	Center model.Point `json:"center"`
	Radius float64     `json:"radius"`
	Fill   string      `json:"fill"`
}

// BoardViewport returns the renderable zone shapes plus the bounding box
// covering all zones and unit positions. An optional resource_id query
// restricts the zones to one resource; unit markers always contribute.
func BoardViewport(c *gin.Context) {
	ctx := c.Request.Context()
	rosterService := roster.GetRosterService()

	var resourceID *int64
	if raw := c.Query("resource_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			c.JSON(400, gin.H{"error": "invalid resource_id"})
			return
		}
		resourceID = &id
	}

	snapshot, err := rosterService.Snapshot(ctx, resourceID)
	if err != nil {
		log.Printf("Viewport endpoint failed: %v", err)
		c.JSON(502, gin.H{"error": err.Error()})
		return
	}

	var shapes []*geometry.Normalized
	for _, resourceZones := range snapshot.GeofencesByResource {
		shapes = append(shapes, zones.NewIndex(resourceZones).Shapes()...)
	}

	features := geojson.NewFeatureCollection()
	var circles []viewportCircle
	for _, shape := range shapes {
		switch shape.Kind {
		case geometry.KindPolygon:
			feature := geojson.NewFeature(orb.Polygon(shape.Rings))
			feature.Properties = geojson.Properties{
				"zone_id": shape.ZoneID,
				"name":    shape.Name,
				"fill":    shape.Fill,
			}
			features.Append(feature)
		case geometry.KindCircle:
			circles = append(circles, viewportCircle{
				ZoneID: shape.ZoneID,
				Name:   shape.Name,
				Center: shape.Center,
				Radius: shape.Radius,
				Fill:   shape.Fill,
			})
		}
	}

	positions := make([]model.Point, 0, len(snapshot.Units))
	for _, unit := range snapshot.Units {
		if unit.HasPosition() {
			positions = append(positions, model.Point{Lat: *unit.Lat, Lon: *unit.Lon})
		}
	}

	box := geometry.Accumulate(shapes, positions)

	response := gin.H{
		"polygons": features,
		"circles":  circles,
		"units":    positions,
	}
	if box.IsEmpty() {
		response["bounds"] = nil
	} else {
		response["bounds"] = box
	}
	c.JSON(200, response)
}
