package Controllers

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetServiceCatalog(t *testing.T) {
	env := newTestEnv(t)

	status, body := env.doJSON(t, http.MethodGet, "/api/services", nil)
	require.Equal(t, http.StatusOK, status)

	services, ok := body["services"].([]interface{})
	require.True(t, ok)
	require.Len(t, services, 1)

	service := services[0].(map[string]interface{})
	assert.Equal(t, "Periodic Service", service["name"])

	// Cheapest offer across City (4499) and Wagon R (3199).
	pricing, ok := service["pricing"].(map[string]interface{})
	require.True(t, ok)
	assert.EqualValues(t, 3199, pricing["discountPrice"])

	categories, ok := body["categories"].([]interface{})
	require.True(t, ok)
	assert.Len(t, categories, 1)
}

func TestGetServiceCatalogCategoryFilter(t *testing.T) {
	env := newTestEnv(t)

	status, body := env.doJSON(t, http.MethodGet, "/api/services?category=Periodic+Services", nil)
	require.Equal(t, http.StatusOK, status)
	services, _ := body["services"].([]interface{})
	assert.Len(t, services, 1)

	status, body = env.doJSON(t, http.MethodGet, "/api/services?category=Detailing", nil)
	require.Equal(t, http.StatusOK, status)
	services, _ = body["services"].([]interface{})
	assert.Empty(t, services)
}

func TestGetVehicleServices(t *testing.T) {
	env := newTestEnv(t)

	status, body := env.doJSON(t, http.MethodGet, "/api/services/petrol-honda-city-services", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, false, body["vehicleNotFound"])

	selection, ok := body["vehicleSelection"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "City", selection["modelName"])
	assert.Equal(t, "Petrol", selection["fuelType"])

	services, ok := body["services"].([]interface{})
	require.True(t, ok)
	require.Len(t, services, 1)

	// Vehicle-scoped pricing comes from the City link, not the cheapest one.
	pricing := services[0].(map[string]interface{})["pricing"].(map[string]interface{})
	assert.EqualValues(t, 4499, pricing["discountPrice"])
}

func TestGetVehicleServicesUnknownVehicle(t *testing.T) {
	env := newTestEnv(t)

	status, body := env.doJSON(t, http.MethodGet, "/api/services/electric-tesla-model-3-services", nil)
	require.Equal(t, http.StatusOK, status, "an unknown vehicle still renders the page")
	assert.Equal(t, true, body["vehicleNotFound"])

	services, ok := body["services"].([]interface{})
	require.True(t, ok)
	assert.Len(t, services, 1, "the full catalog backs the notice")
}

func TestGetBrandsEndpoint(t *testing.T) {
	env := newTestEnv(t)

	status, body := env.doJSON(t, http.MethodGet, "/api/catalog/brands", nil)
	require.Equal(t, http.StatusOK, status)
	assert.EqualValues(t, 2, body["count"])

	brands, ok := body["brands"].([]interface{})
	require.True(t, ok)
	require.Len(t, brands, 2)
	assert.Equal(t, "Honda", brands[0].(map[string]interface{})["name"])
}

func TestGetBrandModelsEndpoint(t *testing.T) {
	env := newTestEnv(t)

	status, body := env.doJSON(t, http.MethodGet, "/api/catalog/brands/honda/models", nil)
	require.Equal(t, http.StatusOK, status)

	models, ok := body["models"].([]interface{})
	require.True(t, ok)
	require.Len(t, models, 1)
	assert.Equal(t, "city", models[0].(map[string]interface{})["slug"])

	status, body = env.doJSON(t, http.MethodGet, "/api/catalog/brands/tesla/models", nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "Brand not found", body["error"])
}
