package router

import (
	"context"
	"net/http"
	"strings"

	authsvc "postmarket-backend/internal/application/auth"
	cartsvc "postmarket-backend/internal/application/cart"
	commentsvc "postmarket-backend/internal/application/comments"
	emailsvc "postmarket-backend/internal/application/emails"
	"postmarket-backend/internal/application/events"
	healthsvc "postmarket-backend/internal/application/health"
	lesvc "postmarket-backend/internal/application/listingevents"
	listsvc "postmarket-backend/internal/application/listings"
	msgsvc "postmarket-backend/internal/application/messaging"
	orderssvc "postmarket-backend/internal/application/orders"
	uploadsvc "postmarket-backend/internal/application/uploads"
	usersvc "postmarket-backend/internal/application/user"
	"postmarket-backend/internal/config"
	"postmarket-backend/internal/infrastructure/database"
	"postmarket-backend/internal/infrastructure/metrics"
	authhandler "postmarket-backend/internal/interfaces/handlers/auth"
	carthandler "postmarket-backend/internal/interfaces/handlers/cart"
	healthhandler "postmarket-backend/internal/interfaces/handlers/health"
	lehandler "postmarket-backend/internal/interfaces/handlers/listingevents"
	listhandler "postmarket-backend/internal/interfaces/handlers/listings"
	msghandler "postmarket-backend/internal/interfaces/handlers/messages"
	orderhandler "postmarket-backend/internal/interfaces/handlers/orders"
	userhandler "postmarket-backend/internal/interfaces/handlers/user"
	"postmarket-backend/internal/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

const memoryDSN = "sqlite://:memory:"

func openDB(cfg *config.Config) (*gorm.DB, error) {
	if cfg.DatabaseURL == "" || cfg.DatabaseURL == memoryDSN {
		log.Warn().Msg("DATABASE_URL not set to a persistent store, using in-memory SQLite")
		return database.OpenMemory()
	}
	db, err := database.Open(cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	if cfg.AutoMigrate {
		if err := database.AutoMigrate(db); err != nil {
			return nil, err
		}
	}
	return db, nil
}

func newPublisher(cfg *config.Config) events.Publisher {
	if len(cfg.KafkaBrokers) == 0 {
		return events.NopPublisher{}
	}
	p, err := events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopicPrefix)
	if err != nil {
		log.Warn().Err(err).Msg("Kafka unavailable, domain events disabled")
		return events.NopPublisher{}
	}
	return p
}

// CreateApp wires storage, sessions and every route. The returned DB and Redis client
// are owned by the caller; the event publisher is closed on app shutdown.
func CreateApp(cfg *config.Config) (*fiber.App, *gorm.DB, *redis.Client, error) {
	db, err := openDB(cfg)
	if err != nil {
		return nil, nil, nil, err
	}
	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, nil, nil, err
	}
	rdb := redis.NewClient(opts)

	app := fiber.New(fiber.Config{
		DisableStartupMessage:   true,
		ErrorHandler:            middleware.ErrorHandler(rdb),
		EnableTrustedProxyCheck: true,
	})

	app.Use(middleware.Tracing())
	app.Use(middleware.RouteLogger())
	app.Use(middleware.Metrics())
	app.Use(middleware.HealthMarker(rdb))
	app.Use(middleware.CORS(middleware.CORSConfig{
		AllowedSuffix:  cfg.FrontendURLEndsWith,
		DevPassword:    cfg.DevPassword,
		AllowLocalhost: !cfg.IsProduction(),
	}))
	app.Use(middleware.Session(rdb))

	publisher := newPublisher(cfg)
	if closer, ok := publisher.(interface{ Close() error }); ok {
		app.Hooks().OnShutdown(closer.Close)
	}
	var mailer emailsvc.Sender
	if cfg.SendinblueAPIKey != "" {
		mailer = &emailsvc.BrevoClient{APIKey: cfg.SendinblueAPIKey, MailFrom: cfg.MailFrom}
	}
	uploads := &uploadsvc.Service{
		Client:      &uploadsvc.HTTPClient{BaseURL: cfg.SupabaseURL, SecretKey: cfg.SupabaseSecretKey},
		SupabaseURL: cfg.SupabaseURL,
		Bucket:      cfg.MediaBucket,
	}

	// Health and metrics
	hh := &healthhandler.Handlers{
		Rdb:            rdb,
		DB:             &database.Pinger{DB: db},
		Probes:         probes(cfg),
		HealthAdminKey: cfg.HealthAdminKey,
	}
	app.Get("/reset", hh.Reset)
	app.Get("/health/json", hh.JSON)
	app.Get("/health/errors", hh.Errors)
	app.Get("/metrics", adaptor.HTTPHandler(metrics.Handler()))

	api := app.Group("/api/v1")
	requireAuth := middleware.RequireAuth()

	// Auth
	users := &usersvc.Service{DB: db, Mailer: mailer}
	ah := &authhandler.Handlers{
		UserFinder: &authsvc.GormUserFinder{DB: db},
		Users:      users,
		Rdb:        rdb,
		Config: middleware.SessionConfig{
			Secret:            cfg.SessionSecret,
			AllowCrossSiteDev: cfg.AllowCrossSiteDev,
			IsProduction:      cfg.IsProduction(),
		},
	}
	ag := api.Group("/auth")
	ag.Post("/register", ah.Register)
	ag.Post("/login", ah.Login)
	ag.Get("/me", ah.Me)
	ag.Post("/logout", ah.Logout)
	ag.Post("/logout-all", requireAuth, ah.LogoutAll)

	// Users
	uh := &userhandler.Handlers{Service: users}
	api.Get("/users/:username", uh.Profile)

	// Listings, comments, direct purchase
	lh := &listhandler.Handlers{
		Service:  &listsvc.Service{DB: db, Uploads: uploads, PageSize: cfg.ListingPageSize},
		Comments: &commentsvc.Service{DB: db},
	}
	oh := &orderhandler.Handlers{Service: &orderssvc.Service{DB: db, Publisher: publisher}}
	lg := api.Group("/listings")
	lg.Get("/", lh.ListListings)
	lg.Post("/", requireAuth, lh.CreateListing)
	lg.Get("/:id", lh.GetListing)
	lg.Put("/:id", requireAuth, lh.UpdateListing)
	lg.Delete("/:id", requireAuth, lh.DeleteListing)
	lg.Post("/:id/image", requireAuth, lh.RequestImageUpload)
	lg.Post("/:id/comments", requireAuth, lh.AddComment)
	lg.Post("/:id/buy", requireAuth, oh.BuyListing)

	// Orders
	og := api.Group("/orders", requireAuth)
	og.Get("/mine", oh.MyPurchases)
	og.Get("/sales", oh.MySales)
	og.Get("/:id/payment-success", oh.PaymentSuccess)

	// Cart
	ch := &carthandler.Handlers{Service: &cartsvc.Service{DB: db, Publisher: publisher}}
	cg := api.Group("/cart", requireAuth)
	cg.Get("/", ch.ViewCart)
	cg.Post("/add/:listing_id", ch.AddToCart)
	cg.Delete("/remove/:entry_id", ch.RemoveFromCart)
	cg.Post("/checkout", ch.Checkout)

	// Messages
	mh := &msghandler.Handlers{Service: &msgsvc.Service{
		DB:          db,
		Mailer:      mailer,
		Publisher:   publisher,
		SiteBaseURL: cfg.SiteBaseURL,
	}}
	mg := api.Group("/messages", requireAuth)
	mg.Get("/inbox", mh.Inbox)
	mg.Post("/negotiate/:receiver_id", mh.Negotiate)
	mg.Get("/chat/:listing_id/:user_id", mh.Chat)
	mg.Post("/chat/:listing_id/:user_id", mh.ChatSend)

	// Listing events
	leh := &lehandler.Handlers{Service: &lesvc.Service{DB: db}}
	api.Get("/listing-events/mine", requireAuth, leh.Mine)

	return app, db, rdb, nil
}

func probes(cfg *config.Config) []healthsvc.Probe {
	var out []healthsvc.Probe
	if cfg.SupabaseURL != "" {
		out = append(out, healthsvc.Probe{Name: "storage", URL: strings.TrimRight(cfg.SupabaseURL, "/") + "/storage/v1/version"})
	}
	return out
}

// Handler exposes the app as a net/http handler for serverless entry points.
func Handler(app *fiber.App) http.Handler {
	return adaptor.FiberApp(app)
}

// Ping verifies the stores CreateApp connected to.
func Ping(ctx context.Context, db *gorm.DB, rdb *redis.Client) error {
	if err := (&database.Pinger{DB: db}).Ping(); err != nil {
		return err
	}
	return rdb.Ping(ctx).Err()
}
