package Controllers

import (
	"errors"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"CSW/Catalog"
	"CSW/Models"
	"CSW/Otp"
	"CSW/Slack"
	"CSW/Wizard"
)

// QuoteController implements the hero form submit gate: returning sessions
// log directly, valid phones get an OTP challenge first, empty phones
// navigate anonymously.
type QuoteController struct {
	DB         *gorm.DB
	Store      *Catalog.Store
	Manager    *Wizard.Manager
	OTP        Otp.Provider
	Notifier   *Slack.SlackClient
	SessionTTL time.Duration
}

func NewQuoteController(db *gorm.DB, store *Catalog.Store, manager *Wizard.Manager, otp Otp.Provider, notifier *Slack.SlackClient, sessionTTL time.Duration) *QuoteController {
	return &QuoteController{DB: db, Store: store, Manager: manager, OTP: otp, Notifier: notifier, SessionTTL: sessionTTL}
}

type quoteRequest struct {
	WizardID     string          `json:"wizardId"`
	SessionToken string          `json:"sessionToken"`
	Phone        string          `json:"phone"`
	Vehicle      *VehiclePayload `json:"vehicle"`
}

type verifyQuoteRequest struct {
	WizardID string          `json:"wizardId"`
	Phone    string          `json:"phone"`
	OtpCode  string          `json:"otpCode"`
	Vehicle  *VehiclePayload `json:"vehicle"`
}

// resolveQuoteVehicle turns the request into a verified vehicle payload,
// either from the referenced wizard or from the inline payload checked
// against the catalog. The fiber error is already written when nil is
// returned.
func (ctrl *QuoteController) resolveQuoteVehicle(c *fiber.Ctx, wizardID string, payload *VehiclePayload) (*VehiclePayload, *Wizard.Wizard) {
	if wizardID != "" {
		wizard, ok := ctrl.Manager.Get(wizardID)
		if !ok {
			c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Wizard session not found"})
			return nil, nil
		}
		selection := wizard.Selection()
		brand, hasBrand := selection.Brand()
		if !hasBrand {
			c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
				"message": "Please choose your car brand so we can personalise your quote.",
				"step":    Wizard.StepBrand,
			})
			return nil, nil
		}
		model, hasModel := selection.Model()
		if !hasModel {
			c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
				"message": "Select your car model to continue.",
				"step":    Wizard.StepModel,
			})
			return nil, nil
		}
		fuelType := selection.FuelType()
		if fuelType == "" {
			c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
				"message": "Pick the fuel type for your vehicle.",
				"step":    Wizard.StepFuel,
			})
			return nil, nil
		}
		return &VehiclePayload{
			BrandSlug: brand.Slug,
			BrandName: brand.Name,
			ModelSlug: model.Slug,
			ModelName: model.Name,
			FuelType:  fuelType,
		}, wizard
	}

	if payload == nil || validate.Struct(payload) != nil {
		c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"message": "Vehicle selection is incomplete. Please try again.",
		})
		return nil, nil
	}
	return payload, nil
}

// SubmitQuote handles POST /api/quote
func (ctrl *QuoteController) SubmitQuote(c *fiber.Ctx) error {
	var input quoteRequest
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	vehicle, wizard := ctrl.resolveQuoteVehicle(c, input.WizardID, input.Vehicle)
	if vehicle == nil {
		return nil
	}

	path := Catalog.BuildVehiclePath(vehicle.FuelType, vehicle.BrandSlug, vehicle.ModelSlug)

	// Returning session: log directly and navigate.
	if input.SessionToken != "" {
		session, err := Models.FindActiveSession(ctrl.DB, input.SessionToken)
		if err == nil {
			response, recordErr := recordActivity(ctrl.DB, session, *vehicle, ctrl.SessionTTL, ctrl.Notifier)
			if recordErr != nil {
				log.Println(recordErr)
				return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
					"message": "We could not log this search right now. Please try again.",
				})
			}
			finishWizard(wizard)
			return c.JSON(fiber.Map{
				"action":       "navigate",
				"path":         path,
				"phone":        session.Phone,
				"sessionToken": response.SessionToken,
				"entry":        response.Entry,
				"session":      response.Session,
			})
		}
		if !errors.Is(err, Models.ErrSessionNotFound) {
			log.Println(err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"message": "We could not log this search right now. Please try again.",
			})
		}
		// Expired token falls through to the phone branch.
	}

	trimmed, valid := NormalizePhone(input.Phone)

	// Empty phone submits anonymously: navigation only, no OTP, no log.
	if trimmed == "" {
		finishWizard(wizard)
		return c.JSON(fiber.Map{
			"action": "navigate",
			"path":   path,
			"phone":  "",
		})
	}

	if !valid {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"message": "Please enter a valid 10-digit mobile number.",
		})
	}

	if err := ctrl.OTP.Request(c.Context(), trimmed); err != nil {
		log.Println(err)
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"message": "Unable to send the OTP right now. Please try again.",
		})
	}
	return c.JSON(fiber.Map{
		"action":    "otp_required",
		"phone":     trimmed,
		"otpLength": Otp.CodeLength,
	})
}

// VerifyQuote handles POST /api/quote/verify
func (ctrl *QuoteController) VerifyQuote(c *fiber.Ctx) error {
	var input verifyQuoteRequest
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	vehicle, wizard := ctrl.resolveQuoteVehicle(c, input.WizardID, input.Vehicle)
	if vehicle == nil {
		return nil
	}

	phone, valid := NormalizePhone(input.Phone)
	if !valid {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"message": "Please enter a valid 10-digit mobile number.",
		})
	}

	if err := ctrl.OTP.Verify(c.Context(), phone, input.OtpCode); err != nil {
		message := "Incorrect OTP. Please try again."
		if errors.Is(err, Otp.ErrIncomplete) {
			message = "Please enter the 4-digit OTP."
		}
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": message})
	}

	session, err := Models.EstablishSession(ctrl.DB, phone, ctrl.SessionTTL)
	if err != nil {
		log.Println(err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Unable to verify the OTP right now. Please try again.",
		})
	}

	response, err := recordActivity(ctrl.DB, session, *vehicle, ctrl.SessionTTL, ctrl.Notifier)
	if err != nil {
		log.Println(err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Unable to verify the OTP right now. Please try again.",
		})
	}

	finishWizard(wizard)
	return c.JSON(fiber.Map{
		"action":       "navigate",
		"path":         Catalog.BuildVehiclePath(vehicle.FuelType, vehicle.BrandSlug, vehicle.ModelSlug),
		"phone":        session.Phone,
		"sessionToken": response.SessionToken,
		"entry":        response.Entry,
		"session":      response.Session,
	})
}

// finishWizard mirrors the post-navigation cleanup of the hero form: the
// sheet closes and the selection resets for the next visit.
func finishWizard(wizard *Wizard.Wizard) {
	if wizard == nil {
		return
	}
	wizard.ResetSelection()
	wizard.Close()
}
