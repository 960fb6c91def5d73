package Catalog

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

type fakeBackend struct {
	brands      []Brand
	models      []Model
	services    []Service
	categories  []ServiceCategory
	brandHits   int64
	modelHits   int64
	serviceHits int64
	brandsFail  bool
	failBody    listEnvelope
}

func (f *fakeBackend) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/cars/brands", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&f.brandHits, 1)
		w.Header().Set("Content-Type", "application/json")
		if f.brandsFail {
			json.NewEncoder(w).Encode(f.failBody)
			return
		}
		data, _ := json.Marshal(f.brands)
		json.NewEncoder(w).Encode(listEnvelope{Success: true, Count: len(f.brands), Data: data})
	})
	mux.HandleFunc("/v1/cars/models", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&f.modelHits, 1)
		w.Header().Set("Content-Type", "application/json")
		data, _ := json.Marshal(f.models)
		json.NewEncoder(w).Encode(listEnvelope{Success: true, Count: len(f.models), Data: data})
	})
	mux.HandleFunc("/v1/services/details", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&f.serviceHits, 1)
		w.Header().Set("Content-Type", "application/json")
		data, _ := json.Marshal(f.services)
		json.NewEncoder(w).Encode(listEnvelope{Success: true, Count: len(f.services), Data: data})
	})
	mux.HandleFunc("/v1/services/service-category", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		data, _ := json.Marshal(f.categories)
		json.NewEncoder(w).Encode(listEnvelope{Success: true, Count: len(f.categories), Data: data})
	})
	return mux
}

func testBackend() *fakeBackend {
	return &fakeBackend{
		brands: []Brand{
			{Name: "Maruti Suzuki", Slug: "maruti-suzuki", Status: true, Icon: strPtr("/uploads/maruti.png")},
			{Name: "Honda", Slug: "honda", Status: true},
			{Name: "Defunct Motors", Slug: "defunct", Status: false},
			{Name: "Tata Motors", Slug: "null", Status: true},
		},
		models: []Model{
			{ID: 1, Name: "City", Slug: "city", BrandName: "Honda", Status: true,
				FuelType:  []string{"petrol", "Petrol", "diesel"},
				Thumbnail: strPtr("/uploads/city.jpg"),
				Services: []ModelService{
					{ServicesID: "svc-1", Discount: 10, OriginalPrice: 4999, DiscountPrice: 4499},
				}},
			{ID: 2, Name: "Wagon R", Slug: "wagon-r", BrandName: "maruti suzuki", Status: true,
				FuelType: []string{"petrol", "cng"},
				Services: []ModelService{
					{ServicesID: "svc-1", Discount: 20, OriginalPrice: 3999, DiscountPrice: 3199},
					{ServicesID: "svc-2", Discount: 0, OriginalPrice: 2499, DiscountPrice: 2499},
				}},
			{ID: 3, Name: "Ghost", Slug: "ghost", BrandName: "Unknown Brand", Status: true,
				FuelType: []string{"petrol"}},
			{ID: 4, Name: "Retired", Slug: "retired", BrandName: "Honda", Status: false,
				FuelType: []string{"petrol"}},
		},
		services: []Service{
			{ID: "svc-1", Name: "Periodic Service", CategoryID: 1, CategoryName: "Periodic Services", Status: true,
				Thumbnail: strPtr("/uploads/periodic.jpg")},
			{ID: "svc-2", Name: "AC Gas Refill", CategoryID: 2, CategoryName: "AC Service & Repair", Status: true,
				ServiceImages: []string{"/uploads/ac-1.jpg", "https://cdn.example.com/ac-2.jpg"}},
			{ID: "svc-3", Name: "Old Package", CategoryID: 1, CategoryName: "Periodic Services", Status: false},
		},
		categories: []ServiceCategory{
			{ID: 1, Name: "Periodic Services"},
			{ID: 2, Name: "AC Service & Repair"},
		},
	}
}

func newTestStore(t *testing.T, backend *fakeBackend) (*Store, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(backend.handler())
	t.Cleanup(srv.Close)
	return NewStore(NewClient(srv.URL)), srv
}

func TestEnsureNormalizesCatalog(t *testing.T) {
	backend := testBackend()
	store, srv := newTestStore(t, backend)

	require.NoError(t, store.Ensure(context.Background()))
	require.True(t, store.Loaded())

	brands := store.Brands()
	require.Len(t, brands, 3, "inactive brand must be dropped")

	// Sorted by name, case-insensitive.
	assert.Equal(t, "Honda", brands[0].Name)
	assert.Equal(t, "Maruti Suzuki", brands[1].Name)
	assert.Equal(t, "Tata Motors", brands[2].Name)

	// Junk slug "null" falls back to the slugified name.
	assert.Equal(t, "tata-motors", brands[2].Slug)

	// Relative icon paths resolve against the backend origin.
	assert.Equal(t, srv.URL+"/uploads/maruti.png", brands[1].IconURL)

	models := store.Models()
	require.Len(t, models, 2, "inactive and orphan models must be dropped")

	city, ok := store.FindModel("honda", "city")
	require.True(t, ok)
	assert.Equal(t, "Honda", city.BrandName)
	assert.Equal(t, []string{"Petrol", "Diesel"}, city.FuelTypes, "fuels de-duplicated and title-cased")
	assert.Equal(t, srv.URL+"/uploads/city.jpg", city.ThumbnailURL)

	// Brand name of the model resolves case-insensitively.
	wagonR, ok := store.FindModel("maruti-suzuki", "wagon-r")
	require.True(t, ok)
	assert.Equal(t, []string{"Petrol", "Cng"}, wagonR.FuelTypes)

	_, ok = store.FindBrand("defunct")
	assert.False(t, ok)
}

func TestEnsureIsIdempotent(t *testing.T) {
	backend := testBackend()
	store, _ := newTestStore(t, backend)

	require.NoError(t, store.Ensure(context.Background()))
	require.NoError(t, store.Ensure(context.Background()))
	require.NoError(t, store.Ensure(context.Background()))

	assert.EqualValues(t, 1, atomic.LoadInt64(&backend.brandHits))
	assert.EqualValues(t, 1, atomic.LoadInt64(&backend.modelHits))
}

func TestEnsureSingleFlight(t *testing.T) {
	backend := testBackend()
	store, _ := newTestStore(t, backend)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, store.Ensure(context.Background()))
		}()
	}
	wg.Wait()

	assert.EqualValues(t, 1, atomic.LoadInt64(&backend.brandHits), "concurrent callers must share one fetch")
}

func TestEnsureSurfacesBackendMessage(t *testing.T) {
	backend := testBackend()
	backend.brandsFail = true
	backend.failBody = listEnvelope{Success: false, Message: "Brands are temporarily unavailable."}
	store, _ := newTestStore(t, backend)

	err := store.Ensure(context.Background())
	require.Error(t, err)
	assert.Equal(t, "Brands are temporarily unavailable.", err.Error())
	assert.False(t, store.Loaded())

	var catalogErr *CatalogError
	assert.ErrorAs(t, err, &catalogErr)
}

func TestEnsureFallbackMessage(t *testing.T) {
	backend := testBackend()
	backend.brandsFail = true
	backend.failBody = listEnvelope{Success: false}
	store, _ := newTestStore(t, backend)

	err := store.Ensure(context.Background())
	require.Error(t, err)
	assert.Equal(t, "Unable to fetch car brands.", err.Error())
}

func TestEnsureRetriesAfterFailure(t *testing.T) {
	backend := testBackend()
	backend.brandsFail = true
	backend.failBody = listEnvelope{Success: false, Message: "down"}
	store, _ := newTestStore(t, backend)

	require.Error(t, store.Ensure(context.Background()))

	backend.brandsFail = false
	require.NoError(t, store.Ensure(context.Background()))
	assert.True(t, store.Loaded())
	assert.NotEmpty(t, store.Brands())
}

func TestRefreshKeepsOldDataOnFailure(t *testing.T) {
	backend := testBackend()
	store, _ := newTestStore(t, backend)

	require.NoError(t, store.Ensure(context.Background()))
	before := store.Brands()

	backend.brandsFail = true
	backend.failBody = listEnvelope{Success: false, Message: "down"}
	require.Error(t, store.Refresh(context.Background()))

	assert.Equal(t, before, store.Brands())
	assert.True(t, store.Loaded())
}

func TestModelsForBrand(t *testing.T) {
	store, _ := newTestStore(t, testBackend())
	require.NoError(t, store.Ensure(context.Background()))

	hondas := store.ModelsForBrand("honda")
	require.Len(t, hondas, 1)
	assert.Equal(t, "city", hondas[0].Slug)

	assert.Empty(t, store.ModelsForBrand("tata-motors"))
}
