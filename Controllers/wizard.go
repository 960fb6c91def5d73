package Controllers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"CSW/Wizard"
)

// WizardController drives the three-step selection sheet over HTTP
type WizardController struct {
	Manager *Wizard.Manager
}

func NewWizardController(manager *Wizard.Manager) *WizardController {
	return &WizardController{Manager: manager}
}

// OpenWizard starts a wizard at the first incomplete step
func (ctrl *WizardController) OpenWizard(c *fiber.Ctx) error {
	wizard := ctrl.Manager.Open(c.Context())
	return c.Status(fiber.StatusCreated).JSON(wizard.State())
}

// GetWizard returns the current sheet snapshot
func (ctrl *WizardController) GetWizard(c *fiber.Ctx) error {
	wizard, ok := ctrl.Manager.Get(c.Params("id"))
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Wizard session not found"})
	}
	return c.JSON(wizard.State())
}

// SelectBrand picks a brand and advances to the model step
func (ctrl *WizardController) SelectBrand(c *fiber.Ctx) error {
	wizard, ok := ctrl.Manager.Get(c.Params("id"))
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Wizard session not found"})
	}

	var input struct {
		Slug string `json:"slug"`
	}
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	if err := wizard.SelectBrand(c.Context(), input.Slug); err != nil {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(wizard.State())
}

// SelectModel picks a model of the selected brand and advances to fuel
func (ctrl *WizardController) SelectModel(c *fiber.Ctx) error {
	wizard, ok := ctrl.Manager.Get(c.Params("id"))
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Wizard session not found"})
	}

	var input struct {
		Slug string `json:"slug"`
	}
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	if err := wizard.SelectModel(c.Context(), input.Slug); err != nil {
		status := fiber.StatusUnprocessableEntity
		if errors.Is(err, Wizard.ErrBrandRequired) {
			status = fiber.StatusConflict
		}
		return c.Status(status).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(wizard.State())
}

// SelectFuel completes the selection and closes the sheet
func (ctrl *WizardController) SelectFuel(c *fiber.Ctx) error {
	wizard, ok := ctrl.Manager.Get(c.Params("id"))
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Wizard session not found"})
	}

	var input struct {
		FuelType string `json:"fuelType"`
	}
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	if err := wizard.SelectFuel(input.FuelType); err != nil {
		status := fiber.StatusUnprocessableEntity
		if errors.Is(err, Wizard.ErrModelRequired) {
			status = fiber.StatusConflict
		}
		return c.Status(status).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(wizard.State())
}

// Back moves one step left or closes the sheet at the brand step
func (ctrl *WizardController) Back(c *fiber.Ctx) error {
	wizard, ok := ctrl.Manager.Get(c.Params("id"))
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Wizard session not found"})
	}
	wizard.Back(c.Context())
	return c.JSON(wizard.State())
}

// Retry re-runs the catalog load after a failure on the brand step
func (ctrl *WizardController) Retry(c *fiber.Ctx) error {
	wizard, ok := ctrl.Manager.Get(c.Params("id"))
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Wizard session not found"})
	}
	wizard.Retry(c.Context())
	return c.JSON(wizard.State())
}

// CloseWizard hides the sheet without touching the selection
func (ctrl *WizardController) CloseWizard(c *fiber.Ctx) error {
	wizard, ok := ctrl.Manager.Get(c.Params("id"))
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Wizard session not found"})
	}
	wizard.Close()
	return c.JSON(wizard.State())
}

// ResetSelection clears the wizard's vehicle tuple
func (ctrl *WizardController) ResetSelection(c *fiber.Ctx) error {
	wizard, ok := ctrl.Manager.Get(c.Params("id"))
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Wizard session not found"})
	}
	wizard.ResetSelection()
	return c.JSON(wizard.State())
}
