package router

import (
	"net/http"
	"time"

	authsvc "hindtrade-backend/internal/application/auth"
	docsvc "hindtrade-backend/internal/application/documents"
	emailsvc "hindtrade-backend/internal/application/emails"
	exportersvc "hindtrade-backend/internal/application/exporters"
	healthsvc "hindtrade-backend/internal/application/health"
	productsvc "hindtrade-backend/internal/application/products"
	profilesvc "hindtrade-backend/internal/application/profiles"
	"hindtrade-backend/internal/application/qrcode"
	shipmentsvc "hindtrade-backend/internal/application/shipments"
	cardsvc "hindtrade-backend/internal/application/tradecards"
	uploadsvc "hindtrade-backend/internal/application/uploads"
	verifysvc "hindtrade-backend/internal/application/verification"
	"hindtrade-backend/internal/config"
	"hindtrade-backend/internal/constants"
	"hindtrade-backend/internal/infrastructure/database"
	authhandler "hindtrade-backend/internal/interfaces/handlers/auth"
	dochandler "hindtrade-backend/internal/interfaces/handlers/documents"
	exporterhandler "hindtrade-backend/internal/interfaces/handlers/exporters"
	healthhandler "hindtrade-backend/internal/interfaces/handlers/health"
	producthandler "hindtrade-backend/internal/interfaces/handlers/products"
	profilehandler "hindtrade-backend/internal/interfaces/handlers/profiles"
	shipmenthandler "hindtrade-backend/internal/interfaces/handlers/shipments"
	cardhandler "hindtrade-backend/internal/interfaces/handlers/tradecards"
	uploadhandler "hindtrade-backend/internal/interfaces/handlers/uploads"
	verifyhandler "hindtrade-backend/internal/interfaces/handlers/verification"
	"hindtrade-backend/internal/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// CreateApp connects Redis (and Postgres when DATABASE_URL is set) and builds the app.
func CreateApp(cfg *config.Config) (*fiber.App, *gorm.DB, *redis.Client, error) {
	rdb, err := middleware.NewRedisClient(cfg.RedisURL)
	if err != nil {
		return nil, nil, nil, err
	}

	var db *gorm.DB
	if cfg.DatabaseURL != "" {
		db, err = database.Open(cfg.DatabaseURL)
		if err != nil {
			_ = rdb.Close()
			return nil, nil, nil, err
		}
	}
	return Build(cfg, db, rdb), db, rdb, nil
}

// Build wires services and routes over existing connections. Domain routes
// are only mounted when db is non-nil.
func Build(cfg *config.Config, db *gorm.DB, rdb *redis.Client) *fiber.App {
	app := fiber.New(fiber.Config{
		DisableStartupMessage:   true,
		ErrorHandler:            middleware.ErrorHandler,
		EnableTrustedProxyCheck: true,
	})

	app.Use(middleware.CORS(middleware.CORSConfig{
		AllowedSuffix:  cfg.FrontendURLEndsWith,
		DevPassword:    cfg.DevPassword,
		AllowLocalhost: cfg.Env != "production",
	}))
	app.Use(middleware.Session(rdb))
	app.Use(middleware.HealthMarker(rdb))
	app.Use(middleware.Tracing())
	app.Use(middleware.RouteLogger())

	collector := &healthsvc.Collector{
		Rdb: rdb,
		Probes: []healthsvc.Probe{
			{Name: "frontend", URL: cfg.PublicAppURL},
			{Name: "qr", URL: cfg.QRServiceURL},
		},
	}
	if db != nil {
		collector.DB = &database.Pinger{DB: db}
	}
	hh := &healthhandler.Handlers{Rdb: rdb, Collector: collector, HealthAdminKey: cfg.HealthAdminKey}
	app.Get("/", hh.Dashboard)
	app.Get("/reset", hh.Reset)
	app.Get("/health/json", hh.JSON)
	app.Get("/health/errors", hh.Errors)

	if db == nil {
		return app
	}

	sessionCfg := middleware.SessionConfig{
		Secret:            cfg.SessionSecret,
		RedisURL:          cfg.RedisURL,
		AllowCrossSiteDev: cfg.AllowCrossSiteDev,
		IsProduction:      cfg.Env == "production",
	}
	mailer := &emailsvc.BrevoClient{
		APIKey:   cfg.SendinblueAPIKey,
		MailFrom: cfg.MailFrom,
		AppURL:   cfg.PublicAppURL,
	}

	authService := &authsvc.Service{
		DB:     db,
		Rdb:    rdb,
		Events: &authsvc.SessionEvents{Rdb: rdb},
		Mailer: mailer,
	}
	exporters := &exportersvc.Service{DB: db}
	profiles := &profilesvc.Service{DB: db, Sessions: authService}
	verification := &verifysvc.Service{
		DB: db,
		Cards: verifysvc.CardSettings{
			PublicBaseURL: cfg.PublicAppURL,
			QRServiceURL:  cfg.QRServiceURL,
			QRSize:        cfg.QRSize,
		},
		Notifier: mailer,
	}
	qr := &qrcode.Client{
		HTTP: &http.Client{Timeout: 10 * time.Second},
		Rdb:  rdb,
	}
	cards := &cardsvc.Service{DB: db, QR: qr}
	storage := &uploadsvc.Service{
		Client:      &uploadsvc.HTTPClient{BaseURL: cfg.SupabaseURL, SecretKey: cfg.SupabaseSecretKey},
		SupabaseURL: cfg.SupabaseURL,
	}
	products := &productsvc.Service{DB: db, Exporters: exporters}
	documents := &docsvc.Service{DB: db, Exporters: exporters, Uploads: storage}
	shipments := &shipmentsvc.Service{DB: db, Exporters: exporters}

	auth := middleware.RequireAuth()
	can := middleware.AuthorizePermission

	ah := &authhandler.Handlers{Service: authService, Config: sessionCfg}
	ag := app.Group("/api/v1/auth")
	ag.Post("/sign-up", ah.SignUp)
	ag.Post("/sign-in", ah.SignIn)
	ag.Get("/me", ah.Me)
	ag.Delete("/sign-out", ah.SignOut)

	ph := &profilehandler.Handlers{Service: profiles}
	pg := app.Group("/api/v1/profiles")
	pg.Get("/me", auth, ph.GetMe)
	pg.Patch("/me", auth, ph.UpdateMe)
	pg.Get("/", can(constants.ManageProfiles), ph.List)
	pg.Patch("/:id/status", can(constants.ManageProfiles), ph.SetStatus)
	pg.Patch("/:id/role", can(constants.ManageProfiles), ph.SetRole)
	pg.Patch("/:id/credits", can(constants.ManageProfiles), ph.AdjustCredits)

	eh := &exporterhandler.Handlers{Service: exporters}
	eg := app.Group("/api/v1/exporters", auth)
	eg.Get("/me", eh.GetMe)
	eg.Patch("/me", eh.UpdateMe)

	vh := &verifyhandler.Handlers{Service: verification}
	vg := app.Group("/api/v1/verification")
	vg.Post("/submit", can(constants.SubmitVerification), vh.Submit)
	vg.Get("/me", auth, vh.Mine)
	vg.Get("/requests", can(constants.ReviewVerification), vh.List)
	vg.Post("/requests/:id/approve", can(constants.ReviewVerification), vh.Approve)
	vg.Post("/requests/:id/reject", can(constants.ReviewVerification), vh.Reject)
	vg.Patch("/requests/:id/notes", can(constants.ReviewVerification), vh.UpdateNotes)

	ch := &cardhandler.Handlers{Service: cards}
	app.Get("/api/v1/trade-cards/me", auth, ch.GetMine)
	app.Get("/api/v1/trade-cards/public/:cardId", ch.GetPublic)
	app.Get("/trade-card/:cardId", ch.GetPublic)
	app.Get("/trade-card/:cardId/qr", ch.QR)

	prh := &producthandler.Handlers{Service: products}
	prg := app.Group("/api/v1/products")
	// registered before /:id so the static segment wins
	prg.Get("/enhancements", can(constants.DeliverEnhancement), prh.EnhancementQueue)
	prg.Post("/", can(constants.ManageProducts), prh.Create)
	prg.Get("/", can(constants.ManageProducts), prh.List)
	prg.Put("/:id", can(constants.ManageProducts), prh.Update)
	prg.Delete("/:id", can(constants.ManageProducts), prh.Delete)
	prg.Post("/:id/enhance", can(constants.ManageProducts), prh.RequestEnhancement)
	prg.Post("/:id/deliver-enhancement", can(constants.DeliverEnhancement), prh.DeliverEnhancement)

	dh := &dochandler.Handlers{Service: documents}
	dg := app.Group("/api/v1/documents", can(constants.ManageProducts))
	dg.Post("/", dh.Create)
	dg.Get("/", dh.List)
	dg.Delete("/:id", dh.Delete)

	sh := &shipmenthandler.Handlers{Service: shipments}
	sg := app.Group("/api/v1/shipments", can(constants.ManageProducts))
	sg.Post("/", sh.Create)
	sg.Get("/", sh.List)
	sg.Patch("/:id/status", sh.UpdateStatus)

	uh := &uploadhandler.Handlers{Service: storage, Exporters: exporters}
	ug := app.Group("/api/v1/uploads", auth)
	ug.Post("/product-image", uh.UploadProductImage)
	ug.Post("/company-logo", uh.UploadCompanyLogo)

	return app
}

// Handler adapts the app for net/http hosts (serverless entry point).
func Handler(app *fiber.App) http.Handler {
	return adaptor.FiberApp(app)
}
