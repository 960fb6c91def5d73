package Controllers

import (
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"CSW/Wizard"
)

func TestSubmitQuoteAnonymous(t *testing.T) {
	env := newTestEnv(t)
	wizard := env.completedWizard(t)

	status, body := env.doJSON(t, http.MethodPost, "/api/quote", fiber.Map{
		"wizardId": wizard.ID,
		"phone":    "",
	})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "navigate", body["action"])
	assert.Equal(t, "/services/petrol-honda-city-services", body["path"])
	assert.Equal(t, "", body["phone"])

	assert.EqualValues(t, 0, env.countEntries(t), "anonymous submits are never logged")
	assert.Equal(t, Wizard.StepNone, wizard.Step())
	assert.False(t, wizard.Selection().Completed(), "the wizard resets after navigation")
}

func TestSubmitQuoteRequestsOTP(t *testing.T) {
	env := newTestEnv(t)
	wizard := env.completedWizard(t)

	status, body := env.doJSON(t, http.MethodPost, "/api/quote", fiber.Map{
		"wizardId": wizard.ID,
		"phone":    "98765 43210",
	})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "otp_required", body["action"])
	assert.Equal(t, "9876543210", body["phone"])
	assert.EqualValues(t, 4, body["otpLength"])

	assert.EqualValues(t, 0, env.countEntries(t), "nothing is logged before verification")
	assert.True(t, wizard.Selection().Completed(), "the selection survives until the OTP passes")
}

func TestSubmitQuoteInvalidPhone(t *testing.T) {
	env := newTestEnv(t)
	wizard := env.completedWizard(t)

	status, body := env.doJSON(t, http.MethodPost, "/api/quote", fiber.Map{
		"wizardId": wizard.ID,
		"phone":    "12345",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	assert.Equal(t, "Please enter a valid 10-digit mobile number.", body["message"])
}

func TestSubmitQuoteIncompleteWizard(t *testing.T) {
	env := newTestEnv(t)

	_, body := env.doJSON(t, http.MethodPost, "/api/wizard", nil)
	id, _ := body["id"].(string)
	require.NotEmpty(t, id)

	status, body := env.doJSON(t, http.MethodPost, "/api/quote", fiber.Map{
		"wizardId": id,
		"phone":    "9876543210",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	assert.Equal(t, "Please choose your car brand so we can personalise your quote.", body["message"])
	assert.Equal(t, "brand", body["step"])

	// Brand picked, model still missing.
	env.doJSON(t, http.MethodPost, "/api/wizard/"+id+"/brand", fiber.Map{"slug": "honda"})
	status, body = env.doJSON(t, http.MethodPost, "/api/quote", fiber.Map{
		"wizardId": id,
		"phone":    "9876543210",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	assert.Equal(t, "Select your car model to continue.", body["message"])
	assert.Equal(t, "model", body["step"])
}

func TestSubmitQuoteUnknownWizard(t *testing.T) {
	env := newTestEnv(t)

	status, body := env.doJSON(t, http.MethodPost, "/api/quote", fiber.Map{
		"wizardId": "missing",
		"phone":    "9876543210",
	})
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "Wizard session not found", body["error"])
}

func TestVerifyQuoteHappyPath(t *testing.T) {
	env := newTestEnv(t)
	wizard := env.completedWizard(t)

	status, body := env.doJSON(t, http.MethodPost, "/api/quote/verify", fiber.Map{
		"wizardId": wizard.ID,
		"phone":    "9876543210",
		"otpCode":  "1234",
	})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "navigate", body["action"])
	assert.Equal(t, "/services/petrol-honda-city-services", body["path"])
	assert.Equal(t, "9876543210", body["phone"])

	token, _ := body["sessionToken"].(string)
	require.NotEmpty(t, token)
	entry, ok := body["entry"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "Petrol Honda City", entry["vehicleSummary"])

	assert.EqualValues(t, 1, env.countEntries(t))
	assert.Equal(t, Wizard.StepNone, wizard.Step())
	assert.False(t, wizard.Selection().Completed())
}

func TestVerifyQuoteWrongCode(t *testing.T) {
	env := newTestEnv(t)
	wizard := env.completedWizard(t)

	status, body := env.doJSON(t, http.MethodPost, "/api/quote/verify", fiber.Map{
		"wizardId": wizard.ID,
		"phone":    "9876543210",
		"otpCode":  "4321",
	})
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "Incorrect OTP. Please try again.", body["message"])

	status, body = env.doJSON(t, http.MethodPost, "/api/quote/verify", fiber.Map{
		"wizardId": wizard.ID,
		"phone":    "9876543210",
		"otpCode":  "12",
	})
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "Please enter the 4-digit OTP.", body["message"])

	assert.EqualValues(t, 0, env.countEntries(t))
	assert.True(t, wizard.Selection().Completed(), "a failed OTP keeps the selection for another try")
}

func TestSubmitQuoteWithReturningSession(t *testing.T) {
	env := newTestEnv(t)
	wizard := env.completedWizard(t)

	// Establish the session through the verify flow first.
	status, body := env.doJSON(t, http.MethodPost, "/api/quote/verify", fiber.Map{
		"wizardId": wizard.ID,
		"phone":    "9876543210",
		"otpCode":  "1234",
	})
	require.Equal(t, http.StatusOK, status)
	token, _ := body["sessionToken"].(string)
	require.NotEmpty(t, token)

	// Second quote skips the OTP entirely.
	second := env.completedWizard(t)
	status, body = env.doJSON(t, http.MethodPost, "/api/quote", fiber.Map{
		"wizardId":     second.ID,
		"sessionToken": token,
		"phone":        "9876543210",
	})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "navigate", body["action"])
	rotated, _ := body["sessionToken"].(string)
	require.NotEmpty(t, rotated)
	assert.NotEqual(t, token, rotated)

	assert.EqualValues(t, 2, env.countEntries(t))
}

func TestSubmitQuoteExpiredTokenFallsBackToOTP(t *testing.T) {
	env := newTestEnv(t)
	wizard := env.completedWizard(t)

	status, body := env.doJSON(t, http.MethodPost, "/api/quote", fiber.Map{
		"wizardId":     wizard.ID,
		"sessionToken": "stale-token",
		"phone":        "9876543210",
	})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "otp_required", body["action"], "a dead token degrades to the OTP challenge")
}

func TestQuoteWithInlineVehicle(t *testing.T) {
	env := newTestEnv(t)

	status, body := env.doJSON(t, http.MethodPost, "/api/quote/verify", fiber.Map{
		"phone":   "9876543210",
		"otpCode": "1234",
		"vehicle": cityVehicle(),
	})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "navigate", body["action"])
	assert.Equal(t, "/services/petrol-honda-city-services", body["path"])
	assert.EqualValues(t, 1, env.countEntries(t))
}

func TestQuoteWithoutVehicle(t *testing.T) {
	env := newTestEnv(t)

	status, body := env.doJSON(t, http.MethodPost, "/api/quote", fiber.Map{
		"phone": "9876543210",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	assert.Equal(t, "Vehicle selection is incomplete. Please try again.", body["message"])
}
