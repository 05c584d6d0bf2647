package main

import (
	"log"

	"vehicle-rental-server/config"
	"vehicle-rental-server/routes"
	"vehicle-rental-server/services"
	"vehicle-rental-server/storage"
	"vehicle-rental-server/utils"

	"github.com/go-playground/validator/v10"
	"github.com/kataras/iris/v12"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Config: %v", err)
	}

	app := iris.New()
	app.Validator = validator.New()
	app.Logger().SetLevel(cfg.LogLevel)

	// Initialize services
	db := storage.InitializeDB(cfg.Database)
	rdb := storage.InitializeRedis(cfg.Redis)

	booking := services.NewBookingService(services.Deps{
		Store:            storage.NewStore(db),
		Logger:           app.Logger(),
		Cache:            services.NewRedisCalendarCache(rdb, cfg.Booking.CalendarCacheTTL),
		MaxRecurringDays: cfg.Booking.MaxRecurringDays,
	})

	if cfg.Booking.TrustRetrySchedule != "" {
		job, err := booking.StartTrustRetry(cfg.Booking.TrustRetrySchedule)
		if err != nil {
			app.Logger().Fatalf("trust retry schedule %q: %v", cfg.Booking.TrustRetrySchedule, err)
		}
		iris.RegisterOnInterrupt(func() { <-job.Stop().Done() })
	}

	// CORS configuration
	app.AllowMethods(iris.MethodOptions)
	app.UseRouter(func(ctx iris.Context) {
		ctx.Header("Access-Control-Allow-Origin", ctx.GetHeader("Origin"))
		ctx.Header("Vary", "Origin")
		ctx.Header("Access-Control-Allow-Credentials", "true")
		ctx.Header("Access-Control-Allow-Headers", "Authorization, Content-Type, X-Requested-With")
		ctx.Header("Access-Control-Allow-Methods", "GET,POST,PATCH,PUT,DELETE,OPTIONS")
		if ctx.Method() == iris.MethodOptions {
			ctx.StatusCode(iris.StatusNoContent)
			return
		}
		ctx.Next()
	})

	app.Use(iris.Compression)

	app.Get("/health", func(ctx iris.Context) {
		ctx.JSON(iris.Map{"status": "ok"})
	})

	handler := &routes.Handler{Booking: booking}
	handler.Register(app, utils.NewAccessTokenVerifier(cfg.Auth.AccessTokenSecret))

	addr := "0.0.0.0:" + cfg.Server.Port
	app.Logger().Infof("🚀 Server starting on %s", addr)

	if err := app.Listen(addr); err != nil {
		app.Logger().Fatalf("❌ Server failed: %v", err)
	}
}
