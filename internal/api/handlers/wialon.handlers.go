package routes

import (
	"log"
	"strconv"

	"geocerca/internal/service/roster"
	"geocerca/internal/service/zones"

	"github.com/gin-gonic/gin"
)

// SetupWialonHandlers registers the telematics proxy endpoints
func SetupWialonHandlers(router *gin.RouterGroup) {
	router.GET("/units", ListUnits)
	router.GET("/resources", ListResources)
	router.GET("/resources/:id/geofences", GeofencesOfResource)
	router.GET("/units/in-geofences/local", UnitsInGeofencesLocal)
	router.GET("/snapshot", WialonSnapshot)
}

// ListUnits returns the cached unit roster
func ListUnits(c *gin.Context) {
	units, err := roster.GetRosterService().Units(c.Request.Context())
	if err != nil {
		log.Printf("Units endpoint failed: %v", err)
		c.JSON(502, gin.H{"error": err.Error()})
		return
	}
	c.JSON(200, gin.H{"count": len(units), "units": units})
}

// ListResources returns the cached resource list
func ListResources(c *gin.Context) {
	resources, err := roster.GetRosterService().Resources(c.Request.Context())
	if err != nil {
		log.Printf("Resources endpoint failed: %v", err)
		c.JSON(502, gin.H{"error": err.Error()})
		return
	}
	c.JSON(200, gin.H{"count": len(resources), "resources": resources})
}

// GeofencesOfResource returns the cached geofences of one resource
func GeofencesOfResource(c *gin.Context) {
	resourceID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(400, gin.H{"error": "invalid resource id"})
		return
	}

	geofences, err := roster.GetRosterService().Geofences(c.Request.Context(), resourceID)
	if err != nil {
		log.Printf("Geofences endpoint failed for resource %d: %v", resourceID, err)
		c.JSON(502, gin.H{"error": err.Error()})
		return
	}
	c.JSON(200, gin.H{"resource_id": resourceID, "count": len(geofences), "geofences": geofences})
}

// UnitsInGeofencesLocal computes the membership cross-reference geometrically
// from the cached snapshots.
func UnitsInGeofencesLocal(c *gin.Context) {
	ctx := c.Request.Context()
	rosterService := roster.GetRosterService()

	units, err := rosterService.Units(ctx)
	if err != nil {
		c.JSON(502, gin.H{"error": err.Error()})
		return
	}
	resources, err := rosterService.Resources(ctx)
	if err != nil {
		c.JSON(502, gin.H{"error": err.Error()})
		return
	}

	zonesByResource := rosterService.GeofencesByResource(ctx, resources)
	crossRef := zones.CrossLocal(units, zonesByResource)

	c.JSON(200, gin.H{"ok": true, "result": crossRef})
}

// WialonSnapshot bundles units, resources and geofences in one response.
// An optional resource_id query restricts the geofence section.
func WialonSnapshot(c *gin.Context) {
	var resourceID *int64
	if raw := c.Query("resource_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			c.JSON(400, gin.H{"error": "invalid resource_id"})
			return
		}
		resourceID = &id
	}

	snapshot, err := roster.GetRosterService().Snapshot(c.Request.Context(), resourceID)
	if err != nil {
		log.Printf("Snapshot endpoint failed: %v", err)
		c.JSON(502, gin.H{"error": err.Error()})
		return
	}
	c.JSON(200, snapshot)
}
