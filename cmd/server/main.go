package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/gofiber/contrib/otelfiber/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	"github.com/pressly/goose/v3"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/virendrasuryawanshi09/ratings-website/internal/api"
	"github.com/virendrasuryawanshi09/ratings-website/internal/events"
	"github.com/virendrasuryawanshi09/ratings-website/internal/model"
	"github.com/virendrasuryawanshi09/ratings-website/internal/repository"
	"github.com/virendrasuryawanshi09/ratings-website/internal/s3"
	"github.com/virendrasuryawanshi09/ratings-website/internal/service"
	"github.com/virendrasuryawanshi09/ratings-website/internal/tracing"

	_ "github.com/virendrasuryawanshi09/ratings-website/migrations"
)

func main() {
	if err := godotenv.Load(".env.dev"); err != nil {
		fmt.Println("No .env.dev file found, reading from environment variables provided by Docker")
	}

	api.SetupGlobalHandler("ratings-api")

	shutdownTracer, err := tracing.InitTracerProvider("ratings-api")
	if err != nil {
		log.Fatalf("Failed to initialize OpenTelemetry: %v", err)
	}
	defer func() {
		if err := shutdownTracer(context.Background()); err != nil {
			log.Printf("Error shutting down tracer provider: %v", err)
		}
	}()

	if len(os.Args) > 1 && os.Args[1] == "migrate" {
		handleMigrations()
		return
	}

	db := connectDB()
	defer db.Close()

	natsURL := os.Getenv("NATS_URL")
	if natsURL == "" {
		natsURL = "nats://localhost:4222"
	}
	eventPublisher, err := events.NewNatsPublisher(natsURL)
	if err != nil {
		log.Fatalf("Failed to connect to NATS: %v", err)
	}
	log.Println("Successfully connected to NATS.")

	filePresigner, err := s3.NewFilePresigner()
	if err != nil {
		log.Fatalf("Failed to initialize S3 presigner: %v", err)
	}

	userRepo := repository.NewPostgresUserRepository(db)
	storeRepo := repository.NewPostgresStoreRepository(db)
	ratingRepo := repository.NewPostgresRatingRepository(db)

	authService := service.NewAuthService(userRepo, eventPublisher)
	storeService := service.NewStoreService(storeRepo, userRepo, eventPublisher)
	ratingService := service.NewRatingService(ratingRepo, storeRepo, eventPublisher)
	dashboardService := service.NewDashboardService(userRepo, storeRepo, ratingRepo)

	authHandler := api.NewAuthHandler(authService)
	storeHandler := api.NewStoreHandler(storeService)
	ratingHandler := api.NewRatingHandler(ratingService)
	ownerHandler := api.NewOwnerHandler(storeService, ratingService, filePresigner)
	adminHandler := api.NewAdminHandler(authService, storeService, dashboardService)

	app := fiber.New()
	app.Use(otelfiber.Middleware())
	app.Use(api.PrometheusMiddleware())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": "ratings-api"})
	})

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	v1 := app.Group("/v1")

	authRoutes := v1.Group("/auth")
	authRoutes.Use(authRateLimiter())
	authRoutes.Post("/register", authHandler.Register)
	authRoutes.Post("/login", authHandler.Login)
	authRoutes.Post("/bootstrap-admin", authHandler.BootstrapAdmin)
	authRoutes.Put("/password", api.AuthMiddleware(authService), authHandler.UpdatePassword)

	v1.Get("/stores", storeHandler.ListPublic)

	userRoutes := v1.Group("/user")
	userRoutes.Use(api.AuthMiddleware(authService), api.RequireRole(model.RoleUser))
	userRoutes.Get("/stores", storeHandler.ListForUser)
	userRoutes.Post("/ratings", ratingHandler.SubmitRating)
	userRoutes.Get("/ratings", ratingHandler.ListMyRatings)
	userRoutes.Delete("/ratings/:store_id", ratingHandler.DeleteRating)

	ownerRoutes := v1.Group("/store-owner")
	ownerRoutes.Use(api.AuthMiddleware(authService), api.RequireRole(model.RoleStoreOwner))
	ownerRoutes.Get("/dashboard", ownerHandler.Dashboard)
	ownerRoutes.Get("/ratings", ownerHandler.Ratings)
	ownerRoutes.Get("/stores/:id", ownerHandler.StoreByID)
	ownerRoutes.Post("/stores/:id/logo/upload-url", ownerHandler.LogoUploadURL)

	adminRoutes := v1.Group("/admin")
	adminRoutes.Use(api.AuthMiddleware(authService), api.RequireRole(model.RoleAdmin))
	adminRoutes.Post("/users", adminHandler.CreateUser)
	adminRoutes.Get("/users", adminHandler.ListUsers)
	adminRoutes.Post("/stores", adminHandler.CreateStore)
	adminRoutes.Get("/stores", adminHandler.ListStores)
	adminRoutes.Get("/dashboard", adminHandler.Dashboard)

	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "8001"
	}

	log.Printf("Listening ratings-api on port %s", port)
	log.Fatal(app.Listen(":" + port))
}

func authRateLimiter() fiber.Handler {
	maxRequest, _ := strconv.Atoi(os.Getenv("RATE_LIMIT_MAX"))
	if maxRequest == 0 {
		maxRequest = 100
	}
	expirationSec, _ := strconv.Atoi(os.Getenv("RATE_LIMIT_EXPIRATION"))
	if expirationSec == 0 {
		expirationSec = 60
	}

	return limiter.New(limiter.Config{
		Max:        maxRequest,
		Expiration: time.Duration(expirationSec) * time.Second,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Too many requests, please try again later.",
			})
		},
	})
}

func connectDB() *sqlx.DB {
	dbUser := os.Getenv("DB_USER")
	dbPassword := os.Getenv("DB_PASSWORD")
	dbHost := os.Getenv("DB_HOST")
	dbPort := os.Getenv("DB_PORT")
	dbName := os.Getenv("DB_NAME")

	dbURL := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		dbUser, dbPassword, dbHost, dbPort, dbName,
	)

	db, err := sqlx.Connect("pgx", dbURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	log.Println("Successfully connected to the database.")
	return db
}

func handleMigrations() {
	fmt.Println("Running database migrations...")
	dbUser := os.Getenv("DB_USER")
	dbPassword := os.Getenv("DB_PASSWORD")
	dbHost := os.Getenv("DB_HOST")
	dbPort := os.Getenv("DB_PORT")
	dbName := os.Getenv("DB_NAME")

	dbURL := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		dbUser, dbPassword, dbHost, dbPort, dbName,
	)

	db, err := sql.Open("pgx", dbURL)
	if err != nil {
		log.Fatalf("failed to connect to database for migration: %v", err)
	}
	defer db.Close()

	if err := goose.SetDialect("postgres"); err != nil {
		log.Fatalf("failed to set goose dialect: %v", err)
	}

	if err := goose.Up(db, "migrations"); err != nil {
		log.Fatalf("goose: failed to run migrations: %v", err)
	}

	fmt.Println("Migrations applied successfully!")
}
