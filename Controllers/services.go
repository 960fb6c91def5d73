package Controllers

import (
	"github.com/gofiber/fiber/v2"

	"CSW/Catalog"
)

// ServicesController serves the services-page catalog, optionally scoped to
// a resolved vehicle
type ServicesController struct {
	Store *Catalog.Store
}

func NewServicesController(store *Catalog.Store) *ServicesController {
	return &ServicesController{Store: store}
}

// GetServiceCatalog handles GET /api/services
func (ctrl *ServicesController) GetServiceCatalog(c *fiber.Ctx) error {
	catalog, err := ctrl.Store.EnsureServices(c.Context())
	if err != nil {
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error":     err.Error(),
			"retryable": true,
		})
	}

	services := filterByCategory(catalog.Services, c.Query("category"))
	return c.JSON(fiber.Map{
		"services":   services,
		"categories": catalog.Categories,
	})
}

// GetVehicleServices handles GET /api/services/:vehicleSlug. An unknown
// vehicle still returns the full catalog so the page can render a notice
// instead of an error.
func (ctrl *ServicesController) GetVehicleServices(c *fiber.Ctx) error {
	catalog, err := ctrl.Store.EnsureServices(c.Context())
	if err != nil {
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error":     err.Error(),
			"retryable": true,
		})
	}

	match := resolveVehicle(c, ctrl.Store)
	if match == nil {
		return c.JSON(fiber.Map{
			"vehicleNotFound": true,
			"services":        filterByCategory(catalog.Services, c.Query("category")),
			"categories":      catalog.Categories,
		})
	}

	scoped := catalog.VehicleServices(*match)
	return c.JSON(fiber.Map{
		"vehicleNotFound": false,
		"vehicleSelection": fiber.Map{
			"brandSlug": match.Model.BrandSlug,
			"brandName": match.Model.BrandName,
			"modelSlug": match.Model.Slug,
			"modelName": match.Model.Name,
			"fuelType":  match.FuelType,
		},
		"path":       Catalog.BuildVehiclePath(match.FuelType, match.Model.BrandSlug, match.Model.Slug),
		"services":   filterByCategory(scoped, c.Query("category")),
		"categories": catalog.Categories,
	})
}

// filterByCategory narrows services to one normalized category key. An empty
// key returns everything.
func filterByCategory(services []Catalog.ServiceDetail, category string) []Catalog.ServiceDetail {
	if category == "" {
		return services
	}
	key := Catalog.NormalizeCategoryKey(category)
	filtered := make([]Catalog.ServiceDetail, 0, len(services))
	for _, service := range services {
		if Catalog.NormalizeCategoryKey(service.CategoryName) == key {
			filtered = append(filtered, service)
		}
	}
	return filtered
}
