package Controllers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"CSW/Catalog"
	"CSW/Models"
	"CSW/Otp"
	"CSW/Slack"
	"CSW/Wizard"
)

const testBrandsBody = `{"success":true,"count":2,"data":[
	{"name":"Honda","slug":"honda","status":true},
	{"name":"Maruti Suzuki","slug":"maruti-suzuki","status":true}
]}`

const testModelsBody = `{"success":true,"count":2,"data":[
	{"id":1,"name":"City","slug":"city","brand_name":"Honda","fuel_type":["Petrol","Diesel"],"status":true,
		"services":[{"services_id":"svc-1","discount":10,"original_price":4999,"discount_price":4499}]},
	{"id":2,"name":"Wagon R","slug":"wagon-r","brand_name":"Maruti Suzuki","fuel_type":["Petrol","CNG"],"status":true,
		"services":[{"services_id":"svc-1","discount":20,"original_price":3999,"discount_price":3199}]}
]}`

const testServicesBody = `{"success":true,"count":1,"data":[
	{"id":"svc-1","name":"Periodic Service","category_id":1,"category_name":"Periodic Services","status":true}
]}`

const testCategoriesBody = `{"success":true,"count":1,"data":[
	{"id":1,"name":"Periodic Services"}
]}`

type testEnv struct {
	app     *fiber.App
	db      *gorm.DB
	store   *Catalog.Store
	manager *Wizard.Manager
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	mux := http.NewServeMux()
	serve := func(path, body string) {
		mux.HandleFunc(path, func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(body))
		})
	}
	serve("/v1/cars/brands", testBrandsBody)
	serve("/v1/cars/models", testModelsBody)
	serve("/v1/services/details", testServicesBody)
	serve("/v1/services/service-category", testCategoriesBody)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")))
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&Models.User{}, &Models.CustomerSession{}, &Models.ActivityEntry{}))

	store := Catalog.NewStore(Catalog.NewClient(srv.URL))
	manager := Wizard.NewManager(store, 30*time.Minute)
	notifier := Slack.NewSlackClient("", "")
	ttl := time.Hour

	app := fiber.New()
	catalogController := NewCatalogController(store)
	wizardController := NewWizardController(manager)
	activityController := NewActivityController(db, Otp.MockProvider{}, notifier, ttl)
	quoteController := NewQuoteController(db, store, manager, Otp.MockProvider{}, notifier, ttl)
	resolveController := NewResolveController(store)
	servicesController := NewServicesController(store)

	app.Get("/api/catalog/brands", catalogController.GetBrands)
	app.Get("/api/catalog/brands/:slug/models", catalogController.GetBrandModels)
	app.Get("/api/catalog/models", catalogController.GetModels)
	app.Post("/api/wizard", wizardController.OpenWizard)
	app.Get("/api/wizard/:id", wizardController.GetWizard)
	app.Post("/api/wizard/:id/brand", wizardController.SelectBrand)
	app.Post("/api/wizard/:id/model", wizardController.SelectModel)
	app.Post("/api/wizard/:id/fuel", wizardController.SelectFuel)
	app.Post("/api/wizard/:id/back", wizardController.Back)
	app.Post("/api/quote", quoteController.SubmitQuote)
	app.Post("/api/quote/verify", quoteController.VerifyQuote)
	app.Post("/api/v1/activity/customers", activityController.LogCustomerActivity)
	app.Get("/api/resolve/:vehicleSlug", resolveController.ResolveVehicleSlug)
	app.Get("/api/services", servicesController.GetServiceCatalog)
	app.Get("/api/services/:vehicleSlug", servicesController.GetVehicleServices)

	return &testEnv{app: app, db: db, store: store, manager: manager}
}

// doJSON fires a request against the test app and decodes the JSON body.
func (e *testEnv) doJSON(t *testing.T, method, path string, payload interface{}) (int, map[string]interface{}) {
	t.Helper()

	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, body)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	decoded := map[string]interface{}{}
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &decoded), "body: %s", raw)
	}
	return resp.StatusCode, decoded
}

func cityVehicle() VehiclePayload {
	return VehiclePayload{
		BrandSlug: "honda",
		BrandName: "Honda",
		ModelSlug: "city",
		ModelName: "City",
		FuelType:  "Petrol",
	}
}

// completedWizard drives a wizard through the full brand/model/fuel pass.
func (e *testEnv) completedWizard(t *testing.T) *Wizard.Wizard {
	t.Helper()
	_, body := e.doJSON(t, http.MethodPost, "/api/wizard", nil)
	id, _ := body["id"].(string)
	require.NotEmpty(t, id)

	status, _ := e.doJSON(t, http.MethodPost, "/api/wizard/"+id+"/brand", fiber.Map{"slug": "honda"})
	require.Equal(t, http.StatusOK, status)
	status, _ = e.doJSON(t, http.MethodPost, "/api/wizard/"+id+"/model", fiber.Map{"slug": "city"})
	require.Equal(t, http.StatusOK, status)
	status, _ = e.doJSON(t, http.MethodPost, "/api/wizard/"+id+"/fuel", fiber.Map{"fuelType": "Petrol"})
	require.Equal(t, http.StatusOK, status)

	wizard, ok := e.manager.Get(id)
	require.True(t, ok)
	return wizard
}

func (e *testEnv) countEntries(t *testing.T) int64 {
	t.Helper()
	var count int64
	require.NoError(t, e.db.Model(&Models.ActivityEntry{}).Count(&count).Error)
	return count
}
