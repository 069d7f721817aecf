package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/jaykurgat/Nyumba-Finder/domain"
	"github.com/jaykurgat/Nyumba-Finder/dto"
	"github.com/jaykurgat/Nyumba-Finder/middleware"
	"github.com/jaykurgat/Nyumba-Finder/publishers"
	"github.com/jaykurgat/Nyumba-Finder/repositories"
	"github.com/jaykurgat/Nyumba-Finder/services"
)

type noopImageStore struct{}

func (noopImageStore) Delete(ctx context.Context, path string) error { return nil }

func newRouter(t *testing.T, repo repositories.PropertyRepository) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	logger := zap.NewNop()
	cache := repositories.NewCacheRepository("", time.Minute, logger)
	service := services.NewPropertyService(repo, noopImageStore{}, cache, publishers.NoopPublisher{}, logger, 2)
	ctrl := NewPropertyController(service, services.NewGeocodingService(logger), logger)

	router := gin.New()
	router.Use(middleware.CORS())
	ctrl.RegisterRoutes(router)
	return router
}

func newSQLiteRepository(t *testing.T) repositories.PropertyRepository {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "api.db")), &gorm.Config{Logger: gormlogger.Discard})
	require.NoError(t, err)

	repo := repositories.NewSQLPropertyRepository(db)
	require.NoError(t, repo.Migrate(context.Background()))
	return repo
}

func newSeededRouter(t *testing.T) *gin.Engine {
	t.Helper()
	repo := newSQLiteRepository(t)
	_, err := services.Seed(context.Background(), repo, services.SeedListings, zap.NewNop())
	require.NoError(t, err)
	return newRouter(t, repo)
}

func do(router *gin.Engine, method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func createListing(t *testing.T, router *gin.Engine, body string) dto.PropertyResponse {
	t.Helper()
	w := do(router, http.MethodPost, "/properties", body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decode[dto.PropertyResponse](t, w)
}

// ============================================
// Create
// ============================================

func TestCreateProperty_Created(t *testing.T) {
	router := newRouter(t, newSQLiteRepository(t))

	resp := createListing(t, router, `{
		"title": "Cozy Studio near Yaya Centre",
		"location": "Kilimani, Nairobi",
		"price": "40000",
		"bathrooms": 1,
		"amenities": ["Parking", "Security"],
		"images": ["https://example.com/a.jpg"]
	}`)

	assert.Equal(t, "Property listed successfully", resp.Message)
	assert.NotEmpty(t, resp.PropertyID)
	require.NotNil(t, resp.Property)
	assert.Equal(t, resp.PropertyID, resp.Property.ID)
	assert.Equal(t, 40000.0, resp.Property.Price)
	assert.Empty(t, resp.Property.Images)
}

func TestCreateProperty_MissingTitle(t *testing.T) {
	router := newRouter(t, newSQLiteRepository(t))

	w := do(router, http.MethodPost, "/properties", `{"location": "Kilimani", "price": 40000}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	resp := decode[dto.ErrorResponse](t, w)
	assert.Equal(t, "validation_error", resp.Error)
	assert.Equal(t, "Missing or invalid required fields: title, price, and location must be valid.", resp.Message)
}

func TestCreateProperty_MalformedJSON(t *testing.T) {
	router := newRouter(t, newSQLiteRepository(t))

	w := do(router, http.MethodPost, "/properties", `{"title": `)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid JSON payload", decode[dto.ErrorResponse](t, w).Message)
}

func TestCreateProperty_StoreUnavailable(t *testing.T) {
	router := newRouter(t, repositories.NewSQLPropertyRepository(nil))

	w := do(router, http.MethodPost, "/properties", `{"title": "Villa", "location": "Nyali", "price": 120000}`)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "store_unavailable", decode[dto.ErrorResponse](t, w).Error)
}

// ============================================
// Read
// ============================================

func TestGetProperty_RoundTrip(t *testing.T) {
	router := newRouter(t, newSQLiteRepository(t))
	created := createListing(t, router, `{"title": "Villa", "location": "Nyali, Mombasa", "price": 120000, "area": 250}`)

	w := do(router, http.MethodGet, "/properties/"+created.PropertyID, "")

	require.Equal(t, http.StatusOK, w.Code)
	got := decode[domain.Property](t, w)
	assert.Equal(t, *created.Property, got)
}

func TestGetProperty_NotFound(t *testing.T) {
	router := newRouter(t, newSQLiteRepository(t))

	w := do(router, http.MethodGet, "/properties/nope", "")

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Property with ID nope not found.", decode[dto.ErrorResponse](t, w).Message)
}

func TestGetCoordinates(t *testing.T) {
	router := newRouter(t, newSQLiteRepository(t))
	created := createListing(t, router, `{"title": "Villa", "location": "Nyali, Mombasa", "price": 120000}`)

	w := do(router, http.MethodGet, "/properties/"+created.PropertyID+"/coordinates", "")

	require.Equal(t, http.StatusOK, w.Code)
	resp := decode[dto.CoordinatesResponse](t, w)
	assert.Equal(t, "Nyali, Mombasa", resp.Location)
	assert.Equal(t, -1.286389, resp.Lat)
	assert.Equal(t, 36.817223, resp.Lng)

	w = do(router, http.MethodGet, "/properties/nope/coordinates", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

// ============================================
// List
// ============================================

func TestListProperties_Filters(t *testing.T) {
	router := newSeededRouter(t)

	tests := []struct {
		query string
		want  int
	}{
		{"", 6},
		{"?q=KILIMANI", 2},
		{"?location=nairobi", 5},
		{"?amenities=Parking&amenities=Gym", 2},
		{"?amenities=parking", 0},
		{"?minPrice=50000&maxPrice=130000", 3},
		{"?minPrice=abc", 6},
		{"?minBedrooms=all&minBathrooms=all", 6},
		{"?minBedrooms=3", 2},
		{"?minBathrooms=2&location=mombasa", 1},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			w := do(router, http.MethodGet, "/properties"+tt.query, "")
			require.Equal(t, http.StatusOK, w.Code)
			assert.Len(t, decode[[]domain.Property](t, w), tt.want)
		})
	}
}

func TestListProperties_PriceBoundOrdersByPrice(t *testing.T) {
	router := newSeededRouter(t)

	w := do(router, http.MethodGet, "/properties?minPrice=1", "")

	require.Equal(t, http.StatusOK, w.Code)
	got := decode[[]domain.Property](t, w)
	require.Len(t, got, 6)
	for i := 1; i < len(got); i++ {
		assert.LessOrEqual(t, got[i-1].Price, got[i].Price)
	}
}

func TestListProperties_EmptyIsArray(t *testing.T) {
	router := newRouter(t, newSQLiteRepository(t))

	w := do(router, http.MethodGet, "/properties", "")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "[]", strings.TrimSpace(w.Body.String()))
}

func TestListProperties_StoreUnavailable(t *testing.T) {
	router := newRouter(t, repositories.NewSQLPropertyRepository(nil))

	w := do(router, http.MethodGet, "/properties", "")

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

// ============================================
// Update
// ============================================

func TestUpdateProperty_Sparse(t *testing.T) {
	router := newRouter(t, newSQLiteRepository(t))
	created := createListing(t, router, `{
		"title": "Villa", "location": "Nyali, Mombasa", "price": 120000,
		"area": 250, "phoneNumber": "0712345678", "amenities": ["Beach Access"]
	}`)

	w := do(router, http.MethodPut, "/properties/"+created.PropertyID, `{"price": 110000, "area": ""}`)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resp := decode[dto.PropertyResponse](t, w)
	assert.Equal(t, "Property updated successfully", resp.Message)
	require.NotNil(t, resp.Property)
	assert.Equal(t, 110000.0, resp.Property.Price)
	assert.Nil(t, resp.Property.Area)
	assert.Equal(t, "Villa", resp.Property.Title)
	assert.Equal(t, []string{"Beach Access"}, resp.Property.Amenities)
	require.NotNil(t, resp.Property.PhoneNumber)
	assert.Equal(t, "0712345678", *resp.Property.PhoneNumber)
}

func TestUpdateProperty_DescriptionOnly(t *testing.T) {
	router := newRouter(t, newSQLiteRepository(t))
	created := createListing(t, router, `{
		"title": "Villa", "location": "Nyali, Mombasa", "price": 120000, "description": "old text"
	}`)
	path := "/properties/" + created.PropertyID

	w := do(router, http.MethodPut, path, `{"description": "new text"}`)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resp := decode[dto.PropertyResponse](t, w)
	require.NotNil(t, resp.Property)
	assert.Equal(t, "new text", resp.Property.Description)
	assert.Equal(t, "Villa", resp.Property.Title)
	assert.Equal(t, 120000.0, resp.Property.Price)
	assert.Equal(t, "Nyali, Mombasa", resp.Property.Location)

	// the stored record, not just the response
	w = do(router, http.MethodGet, path, "")
	require.Equal(t, http.StatusOK, w.Code)
	got := decode[domain.Property](t, w)
	assert.Equal(t, "new text", got.Description)
	assert.Equal(t, "Villa", got.Title)
	assert.Equal(t, 120000.0, got.Price)
	assert.Equal(t, "Nyali, Mombasa", got.Location)
}

func TestUpdateProperty_Errors(t *testing.T) {
	router := newRouter(t, newSQLiteRepository(t))
	created := createListing(t, router, `{"title": "Villa", "location": "Nyali", "price": 120000}`)
	path := "/properties/" + created.PropertyID

	tests := []struct {
		name    string
		path    string
		body    string
		status  int
		message string
	}{
		{"no fields", path, `{"colour": "blue"}`, http.StatusBadRequest, "No valid fields provided for update."},
		{"sentinel title", path, `{"title": "Untitled Property"}`, http.StatusBadRequest, "Missing or invalid required fields: title, price, and location must be valid."},
		{"zero price", path, `{"price": 0}`, http.StatusBadRequest, "Missing or invalid required fields: title, price, and location must be valid."},
		{"zero area", path, `{"area": 0}`, http.StatusBadRequest, "Area must be a positive number."},
		{"malformed", path, `[1, 2`, http.StatusBadRequest, "Invalid JSON payload"},
		{"missing", "/properties/nope", `{"price": 1}`, http.StatusNotFound, "Property with ID nope not found."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(router, http.MethodPut, tt.path, tt.body)
			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, tt.message, decode[dto.ErrorResponse](t, w).Message)
		})
	}
}

// ============================================
// Delete
// ============================================

func TestDeleteProperty(t *testing.T) {
	router := newRouter(t, newSQLiteRepository(t))
	created := createListing(t, router, `{"title": "Villa", "location": "Nyali", "price": 120000}`)
	path := "/properties/" + created.PropertyID

	// warm the cache so the delete has to evict it
	require.Equal(t, http.StatusOK, do(router, http.MethodGet, path, "").Code)

	w := do(router, http.MethodDelete, path, "")
	require.Equal(t, http.StatusOK, w.Code)
	resp := decode[dto.PropertyResponse](t, w)
	assert.Equal(t, "Property deleted successfully", resp.Message)
	assert.Equal(t, created.PropertyID, resp.PropertyID)
	assert.Nil(t, resp.Property)

	assert.Equal(t, http.StatusNotFound, do(router, http.MethodGet, path, "").Code)
	assert.Equal(t, http.StatusNotFound, do(router, http.MethodDelete, path, "").Code)
}

// ============================================
// Misc
// ============================================

func TestAmenitiesAndHealth(t *testing.T) {
	router := newRouter(t, newSQLiteRepository(t))

	w := do(router, http.MethodGet, "/amenities", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, domain.Amenities, decode[[]string](t, w))

	w = do(router, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, map[string]string{"status": "healthy", "service": ServiceName}, decode[map[string]string](t, w))
}

func TestCORSPreflight(t *testing.T) {
	router := newRouter(t, newSQLiteRepository(t))

	w := do(router, http.MethodOptions, "/properties", "")

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}
