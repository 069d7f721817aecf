package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/jaykurgat/Nyumba-Finder/domain"
	"github.com/jaykurgat/Nyumba-Finder/dto"
	"github.com/jaykurgat/Nyumba-Finder/services"
	"github.com/jaykurgat/Nyumba-Finder/utils"
)

// ServiceName is reported by the health check.
const ServiceName = "nyumba-finder"

// PropertyController handles the HTTP endpoints for listings.
type PropertyController struct {
	service  services.PropertyService
	geocoder services.GeocodingService
	logger   *zap.Logger
}

// NewPropertyController creates a new controller.
func NewPropertyController(service services.PropertyService, geocoder services.GeocodingService, logger *zap.Logger) *PropertyController {
	return &PropertyController{service: service, geocoder: geocoder, logger: logger}
}

// RegisterRoutes mounts every endpoint on r.
func (ctrl *PropertyController) RegisterRoutes(r gin.IRouter) {
	r.GET("/health", ctrl.HealthCheck)
	r.GET("/amenities", ctrl.ListAmenities)

	properties := r.Group("/properties")
	properties.GET("", ctrl.ListProperties)
	properties.POST("", ctrl.CreateProperty)
	properties.GET("/:id", ctrl.GetProperty)
	properties.PUT("/:id", ctrl.UpdateProperty)
	properties.DELETE("/:id", ctrl.DeleteProperty)
	properties.GET("/:id/coordinates", ctrl.GetCoordinates)
}

// ListProperties handles GET /properties
func (ctrl *PropertyController) ListProperties(c *gin.Context) {
	filter := parseFilter(c)

	properties, err := ctrl.service.ListProperties(c.Request.Context(), filter)
	if err != nil {
		ctrl.writeError(c, err, "Error fetching properties")
		return
	}
	c.JSON(http.StatusOK, properties)
}

// CreateProperty handles POST /properties
func (ctrl *PropertyController) CreateProperty(c *gin.Context) {
	raw, ok := bindRaw(c)
	if !ok {
		return
	}

	property, err := ctrl.service.CreateProperty(c.Request.Context(), raw)
	if err != nil {
		ctrl.writeError(c, err, "Error listing property")
		return
	}

	c.JSON(http.StatusCreated, dto.PropertyResponse{
		Message:    "Property listed successfully",
		PropertyID: property.ID,
		Property:   property,
	})
}

// GetProperty handles GET /properties/:id
func (ctrl *PropertyController) GetProperty(c *gin.Context) {
	id := c.Param("id")

	property, err := ctrl.service.GetProperty(c.Request.Context(), id)
	if err != nil {
		ctrl.writeNotFoundOr(c, err, id, "Error fetching property details")
		return
	}
	c.JSON(http.StatusOK, property)
}

// UpdateProperty handles PUT /properties/:id
// Only the fields present in the body are changed.
func (ctrl *PropertyController) UpdateProperty(c *gin.Context) {
	id := c.Param("id")
	raw, ok := bindRaw(c)
	if !ok {
		return
	}

	property, err := ctrl.service.UpdateProperty(c.Request.Context(), id, raw)
	if err != nil {
		ctrl.writeNotFoundOr(c, err, id, "Error updating property")
		return
	}

	c.JSON(http.StatusOK, dto.PropertyResponse{
		Message:    "Property updated successfully",
		PropertyID: id,
		Property:   property,
	})
}

// DeleteProperty handles DELETE /properties/:id
func (ctrl *PropertyController) DeleteProperty(c *gin.Context) {
	id := c.Param("id")

	if err := ctrl.service.DeleteProperty(c.Request.Context(), id); err != nil {
		ctrl.writeNotFoundOr(c, err, id, "Error deleting property")
		return
	}

	c.JSON(http.StatusOK, dto.PropertyResponse{
		Message:    "Property deleted successfully",
		PropertyID: id,
	})
}

// GetCoordinates handles GET /properties/:id/coordinates
func (ctrl *PropertyController) GetCoordinates(c *gin.Context) {
	id := c.Param("id")

	property, err := ctrl.service.GetProperty(c.Request.Context(), id)
	if err != nil {
		ctrl.writeNotFoundOr(c, err, id, "Error fetching property details")
		return
	}

	coords, err := ctrl.geocoder.Coordinates(c.Request.Context(), property.Location)
	if err != nil {
		ctrl.writeError(c, err, "Error resolving coordinates")
		return
	}

	c.JSON(http.StatusOK, dto.CoordinatesResponse{
		PropertyID: id,
		Location:   property.Location,
		Lat:        coords.Lat,
		Lng:        coords.Lng,
	})
}

// ListAmenities handles GET /amenities
func (ctrl *PropertyController) ListAmenities(c *gin.Context) {
	c.JSON(http.StatusOK, domain.Amenities)
}

// HealthCheck handles GET /health
func (ctrl *PropertyController) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": ServiceName,
	})
}

// parseFilter reads the listing filters. Unparseable numbers are ignored, and
// "all" for the room counts means no bound.
func parseFilter(c *gin.Context) dto.PropertyFilter {
	return dto.PropertyFilter{
		Query:        strings.ToLower(c.Query("q")),
		Location:     strings.ToLower(c.Query("location")),
		MinPrice:     utils.CoerceOptionalNumber(c.Query("minPrice")),
		MaxPrice:     utils.CoerceOptionalNumber(c.Query("maxPrice")),
		MinBedrooms:  roomBound(c.Query("minBedrooms")),
		MinBathrooms: roomBound(c.Query("minBathrooms")),
		Amenities:    c.QueryArray("amenities"),
	}
}

func roomBound(value string) *float64 {
	if value == "all" {
		return nil
	}
	return utils.CoerceOptionalNumber(value)
}

// bindRaw decodes the body as a loose JSON object. The fields are coerced later.
func bindRaw(c *gin.Context) (map[string]any, bool) {
	var raw map[string]any
	if err := c.ShouldBindJSON(&raw); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "invalid_json",
			Message: "Invalid JSON payload",
		})
		return nil, false
	}
	if raw == nil {
		raw = map[string]any{}
	}
	return raw, true
}

func (ctrl *PropertyController) writeNotFoundOr(c *gin.Context, err error, id, prefix string) {
	if errors.Is(err, domain.ErrNotFound) {
		c.JSON(http.StatusNotFound, dto.ErrorResponse{
			Error:   "not_found",
			Message: fmt.Sprintf("Property with ID %s not found.", id),
		})
		return
	}
	ctrl.writeError(c, err, prefix)
}

// writeError maps a service error to its status code and body.
func (ctrl *PropertyController) writeError(c *gin.Context, err error, prefix string) {
	var ve *domain.ValidationError
	switch {
	case errors.As(err, &ve):
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "validation_error",
			Message: ve.Message,
		})
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, dto.ErrorResponse{
			Error:   "not_found",
			Message: err.Error(),
		})
	case errors.Is(err, domain.ErrStoreUnavailable):
		ctrl.logger.Error("Property store unavailable", zap.Error(err))
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{
			Error:   "store_unavailable",
			Message: "Property store is not initialized. Check server logs.",
		})
	default:
		ctrl.logger.Error(prefix, zap.Error(err))
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{
			Error:   "internal_error",
			Message: fmt.Sprintf("%s: %s", prefix, err.Error()),
		})
	}
}
