package Controllers

import (
	"github.com/gofiber/fiber/v2"

	"CSW/Catalog"
)

// CatalogController exposes the normalized vehicle catalog
type CatalogController struct {
	Store *Catalog.Store
}

func NewCatalogController(store *Catalog.Store) *CatalogController {
	return &CatalogController{Store: store}
}

// GetBrands returns all active brands, loading the catalog on first use
func (ctrl *CatalogController) GetBrands(c *fiber.Ctx) error {
	if err := ctrl.Store.Ensure(c.Context()); err != nil {
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error":     err.Error(),
			"retryable": true,
		})
	}
	brands := ctrl.Store.Brands()
	return c.JSON(fiber.Map{
		"brands": brands,
		"count":  len(brands),
	})
}

// GetBrandModels returns the models of one brand
func (ctrl *CatalogController) GetBrandModels(c *fiber.Ctx) error {
	if err := ctrl.Store.Ensure(c.Context()); err != nil {
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error":     err.Error(),
			"retryable": true,
		})
	}
	slug := c.Params("slug")
	brand, ok := ctrl.Store.FindBrand(slug)
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Brand not found"})
	}
	return c.JSON(fiber.Map{
		"brand":  brand,
		"models": ctrl.Store.ModelsForBrand(slug),
	})
}

// GetModels returns every model in the catalog
func (ctrl *CatalogController) GetModels(c *fiber.Ctx) error {
	if err := ctrl.Store.Ensure(c.Context()); err != nil {
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error":     err.Error(),
			"retryable": true,
		})
	}
	models := ctrl.Store.Models()
	return c.JSON(fiber.Map{
		"models": models,
		"count":  len(models),
	})
}
