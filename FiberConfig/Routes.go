package FiberConfig

import (
	"fmt"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"gorm.io/gorm"

	"CSW/Catalog"
	"CSW/Controllers"
	"CSW/Otp"
	"CSW/Slack"
	"CSW/Wizard"
	"CSW/middleware"
)

// Deps bundles everything the HTTP layer needs.
type Deps struct {
	DB         *gorm.DB
	Store      *Catalog.Store
	Manager    *Wizard.Manager
	OTP        Otp.Provider
	Notifier   *Slack.SlackClient
	SessionTTL time.Duration
}

func SetupRoutes(app *fiber.App, deps Deps) {
	// Initialize handlers
	catalogController := Controllers.NewCatalogController(deps.Store)
	wizardController := Controllers.NewWizardController(deps.Manager)
	activityController := Controllers.NewActivityController(deps.DB, deps.OTP, deps.Notifier, deps.SessionTTL)
	quoteController := Controllers.NewQuoteController(deps.DB, deps.Store, deps.Manager, deps.OTP, deps.Notifier, deps.SessionTTL)
	resolveController := Controllers.NewResolveController(deps.Store)
	servicesController := Controllers.NewServicesController(deps.Store)
	authController := Controllers.NewAuthController(deps.DB)
	leadsController := Controllers.NewLeadsController(deps.DB)

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	// API group
	api := app.Group("/api")

	// Vehicle catalog routes
	catalog := api.Group("/catalog")
	catalog.Get("/brands", catalogController.GetBrands)
	catalog.Get("/brands/:slug/models", catalogController.GetBrandModels)
	catalog.Get("/models", catalogController.GetModels)

	// Selection wizard routes
	wizard := api.Group("/wizard")
	wizard.Post("/", wizardController.OpenWizard)
	wizard.Get("/:id", wizardController.GetWizard)
	wizard.Post("/:id/brand", wizardController.SelectBrand)
	wizard.Post("/:id/model", wizardController.SelectModel)
	wizard.Post("/:id/fuel", wizardController.SelectFuel)
	wizard.Post("/:id/back", wizardController.Back)
	wizard.Post("/:id/retry", wizardController.Retry)
	wizard.Post("/:id/close", wizardController.CloseWizard)
	wizard.Post("/:id/reset", wizardController.ResetSelection)

	// Quote gate
	api.Post("/quote", quoteController.SubmitQuote)
	api.Post("/quote/verify", quoteController.VerifyQuote)

	// Raw activity contract used by the website client
	api.Post("/v1/activity/customers", activityController.LogCustomerActivity)

	// Services page
	api.Get("/resolve/:vehicleSlug", resolveController.ResolveVehicleSlug)
	api.Get("/services", servicesController.GetServiceCatalog)
	api.Get("/services/:vehicleSlug", servicesController.GetVehicleServices)

	// Dashboard
	api.Post("/login", authController.Login)
	api.Post("/logout", authController.Logout)
	leads := api.Group("/leads", middleware.Verify(1))
	leads.Get("/", leadsController.GetLeads)
	leads.Get("/export", middleware.Verify(3), leadsController.ExportLeads)
}

func FiberConfig(port string, deps Deps) {
	fmt.Println("Server Up...")
	app := fiber.New()
	app.Use(middleware.RequestLogger())
	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestCompression, // 2
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins:     "*", // Allow all origins
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS,PATCH",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Requested-With",
		AllowCredentials: true, // Important for cookies
		MaxAge:           300,  // Max age for preflight requests caching (5 minutes)
	}))

	SetupRoutes(app, deps)

	if err := app.Listen(":" + port); err != nil {
		log.Fatal(err)
	}
}
