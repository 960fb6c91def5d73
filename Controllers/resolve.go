package Controllers

import (
	"github.com/gofiber/fiber/v2"

	"CSW/Catalog"
)

// ResolveController maps services-page slugs back to vehicles
type ResolveController struct {
	Store *Catalog.Store
}

func NewResolveController(store *Catalog.Store) *ResolveController {
	return &ResolveController{Store: store}
}

// resolveVehicle reverses a vehicle slug against the loaded catalog, falling
// back to the navigation-state query params when slug parsing fails.
func resolveVehicle(c *fiber.Ctx, store *Catalog.Store) *Catalog.VehicleMatch {
	slug := c.Params("vehicleSlug")
	if slug != "" && Catalog.VehicleSlugPattern.MatchString(slug) {
		if match, ok := Catalog.MatchVehicleSlug(slug, store.Models()); ok {
			return match
		}
	}

	brandSlug := c.Query("selectedBrandSlug")
	modelSlug := c.Query("selectedModelSlug")
	if brandSlug == "" || modelSlug == "" {
		return nil
	}
	model, ok := store.FindModel(brandSlug, modelSlug)
	if !ok {
		return nil
	}
	fuelType := c.Query("selectedFuelType")
	if fuelType == "" {
		if len(model.FuelTypes) == 0 {
			return nil
		}
		fuelType = model.FuelTypes[0]
	}
	return &Catalog.VehicleMatch{Model: model, FuelType: fuelType}
}

// ResolveVehicleSlug handles GET /api/resolve/:vehicleSlug
func (ctrl *ResolveController) ResolveVehicleSlug(c *fiber.Ctx) error {
	if err := ctrl.Store.Ensure(c.Context()); err != nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error":     err.Error(),
			"retryable": true,
		})
	}

	match := resolveVehicle(c, ctrl.Store)
	if match == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "We could not find services for this vehicle.",
		})
	}

	return c.JSON(fiber.Map{
		"brandSlug": match.Model.BrandSlug,
		"brandName": match.Model.BrandName,
		"modelSlug": match.Model.Slug,
		"modelName": match.Model.Name,
		"fuelType":  match.FuelType,
		"path":      Catalog.BuildVehiclePath(match.FuelType, match.Model.BrandSlug, match.Model.Slug),
	})
}
