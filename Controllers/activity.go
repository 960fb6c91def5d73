package Controllers

import (
	"errors"
	"log"
	"regexp"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"CSW/Models"
	"CSW/Otp"
	"CSW/Slack"
)

var validate = validator.New()

var nonDigits = regexp.MustCompile(`\D`)

// NormalizePhone strips everything but digits. The second return reports
// whether the result is a valid 10-digit mobile number.
func NormalizePhone(raw string) (string, bool) {
	digits := nonDigits.ReplaceAllString(raw, "")
	return digits, len(digits) == 10
}

// VehiclePayload is the finalized selection attached to an activity log call.
type VehiclePayload struct {
	BrandSlug string `json:"brandSlug" validate:"required"`
	BrandName string `json:"brandName" validate:"required"`
	ModelSlug string `json:"modelSlug" validate:"required"`
	ModelName string `json:"modelName" validate:"required"`
	FuelType  string `json:"fuelType" validate:"required"`
}

func (v VehiclePayload) toModel() Models.ActivityVehicle {
	return Models.ActivityVehicle{
		BrandSlug: v.BrandSlug,
		BrandName: v.BrandName,
		ModelSlug: v.ModelSlug,
		ModelName: v.ModelName,
		FuelType:  v.FuelType,
	}
}

// CustomerActivityRequest carries either a returning session token or a
// fresh phone + OTP verification, never both.
type CustomerActivityRequest struct {
	SessionToken string         `json:"sessionToken"`
	Phone        string         `json:"phone"`
	OtpCode      string         `json:"otpCode"`
	Vehicle      VehiclePayload `json:"vehicle"`
}

type CustomerActivityResponse struct {
	SessionToken string                  `json:"sessionToken"`
	Entry        *Models.ActivityEntry   `json:"entry"`
	Session      *Models.CustomerSession `json:"session"`
}

// ActivityController records finalized vehicle searches against customer
// sessions
type ActivityController struct {
	DB         *gorm.DB
	OTP        Otp.Provider
	Notifier   *Slack.SlackClient
	SessionTTL time.Duration
}

func NewActivityController(db *gorm.DB, otp Otp.Provider, notifier *Slack.SlackClient, sessionTTL time.Duration) *ActivityController {
	return &ActivityController{DB: db, OTP: otp, Notifier: notifier, SessionTTL: sessionTTL}
}

// LogCustomerActivity handles POST /api/v1/activity/customers
func (ctrl *ActivityController) LogCustomerActivity(c *fiber.Ctx) error {
	var input CustomerActivityRequest
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	if err := validate.Struct(input.Vehicle); err != nil {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"error": "Vehicle selection is incomplete. Please try again.",
		})
	}

	// Returning session: no OTP challenge, the token is enough.
	if input.SessionToken != "" {
		session, err := Models.FindActiveSession(ctrl.DB, input.SessionToken)
		if errors.Is(err, Models.ErrSessionNotFound) {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Your session has expired. Please verify your number again.",
			})
		}
		if err != nil {
			log.Println(err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "We could not log this search right now. Please try again.",
			})
		}
		return ctrl.complete(c, session, input.Vehicle)
	}

	// First-time verification: phone + OTP code.
	phone, ok := NormalizePhone(input.Phone)
	if !ok {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"error": "Please enter a valid 10-digit mobile number.",
		})
	}

	if err := ctrl.OTP.Verify(c.Context(), phone, input.OtpCode); err != nil {
		message := "Incorrect OTP. Please try again."
		if errors.Is(err, Otp.ErrIncomplete) {
			message = "Please enter the 4-digit OTP."
		}
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": message})
	}

	session, err := Models.EstablishSession(ctrl.DB, phone, ctrl.SessionTTL)
	if err != nil {
		log.Println(err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "We could not log this search right now. Please try again.",
		})
	}
	return ctrl.complete(c, session, input.Vehicle)
}

// complete rotates the session, appends the entry and replies with the full
// contract body.
func (ctrl *ActivityController) complete(c *fiber.Ctx, session *Models.CustomerSession, vehicle VehiclePayload) error {
	response, err := recordActivity(ctrl.DB, session, vehicle, ctrl.SessionTTL, ctrl.Notifier)
	if err != nil {
		log.Println(err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "We could not log this search right now. Please try again.",
		})
	}
	return c.JSON(response)
}

// recordActivity is shared between the raw activity endpoint and the quote
// flow. The returned token is the rotated one.
func recordActivity(db *gorm.DB, session *Models.CustomerSession, vehicle VehiclePayload, ttl time.Duration, notifier *Slack.SlackClient) (*CustomerActivityResponse, error) {
	if err := Models.RotateSession(db, session, ttl); err != nil {
		return nil, err
	}
	entry, err := Models.AppendActivityEntry(db, session, vehicle.toModel())
	if err != nil {
		return nil, err
	}
	if err := Models.LoadSessionEntries(db, session); err != nil {
		return nil, err
	}

	if notifier.Enabled() {
		notifier.NotifyLead(entry)
	}

	return &CustomerActivityResponse{
		SessionToken: session.Token,
		Entry:        entry,
		Session:      session,
	}, nil
}
