package main

import (
	"database/sql"
	"log"
	"os"
	"strings"
	"time"

	"http-codes-api/handlers"
	"http-codes-api/initializers"
	"http-codes-api/middleware"
	"http-codes-api/repository"

	"github.com/gin-gonic/gin"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/lib/pq"
)

func main() {
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL is not set")
	}

	jwtSecret := os.Getenv("JWT_SECRET")
	if len(jwtSecret) < 32 {
		log.Fatal("JWT_SECRET must be set and at least 32 characters")
	}

	var db *sql.DB
	var err error
	for i := 0; i < 10; i++ {
		db, err = sql.Open("postgres", dbURL)
		if err == nil {
			err = db.Ping()
			if err == nil {
				break
			}
		}
		log.Printf("DB connection failed: %v, retrying in 2s...", err)
		time.Sleep(2 * time.Second)
	}
	if err != nil {
		log.Fatal("Could not connect to database:", err)
	}
	defer db.Close()

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		log.Fatal("Migration driver error:", err)
	}
	m, err := migrate.NewWithDatabaseInstance("file://migrations", "postgres", driver)
	if err != nil {
		log.Fatal("Migration init error:", err)
	}
	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		log.Fatal("Migration failed:", err)
	}

	usersRepo := repository.NewUsersRepository(db)
	codesRepo := repository.NewHTTPCodesRepository(db)
	filtersRepo := repository.NewSavedFiltersRepository(db)

	if err := initializers.InitHTTPCodes(codesRepo); err != nil {
		log.Fatal("Failed to seed http codes catalog:", err)
	}

	if err := initializers.InitMinio(); err != nil {
		log.Fatal("Failed to initialize Minio:", err)
	}

	r := gin.New()
	// Structured request ID and JSON access logs
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.LoggerMiddleware())
	// Panic recovery
	r.Use(gin.Recovery())

	// Configure trusted proxies for correct client IP handling in production
	trustedProxies := os.Getenv("TRUSTED_PROXIES")
	if trustedProxies != "" {
		parts := strings.Split(trustedProxies, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		if err := r.SetTrustedProxies(parts); err != nil {
			log.Fatalf("Invalid TRUSTED_PROXIES: %v", err)
		}
	} else {
		// Default to loopback only; override via TRUSTED_PROXIES in production
		_ = r.SetTrustedProxies([]string{"127.0.0.1", "::1"})
	}

	r.Use(middleware.CORSMiddleware())
	// Apply rate limiting globally after CORS but before routes
	r.Use(middleware.RateLimitMiddleware())

	if os.Getenv("GIN_MODE") == "release" || strings.ToLower(os.Getenv("APP_ENV")) == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	authHandler := handlers.NewAuthHandler(usersRepo)
	codesHandler := handlers.NewHTTPCodesHandler(codesRepo)
	filtersHandler := handlers.NewSavedFiltersHandler(filtersRepo, codesRepo)

	// Public endpoints
	r.GET("/health", handlers.HealthCheck)

	// The catalog is public reference data
	r.GET("/codes", codesHandler.List)
	r.GET("/codes/:id", codesHandler.Get)
	r.GET("/codes/:id/image", codesHandler.GetImage)

	// Auth endpoints with stricter rate limit
	authPublic := r.Group("/", middleware.RateLimitAuthMiddleware())
	authPublic.POST("/register", authHandler.Register)
	authPublic.POST("/login", func(c *gin.Context) {
		c.Set("jwtSecret", jwtSecret)
		authHandler.Login(c)
	})

	// Owner-scoped endpoints
	auth := r.Group("/", handlers.AuthMiddleware(jwtSecret))
	{
		auth.POST("/filters", filtersHandler.Create)
		auth.GET("/filters", filtersHandler.List)
		auth.GET("/filters/:id", filtersHandler.GetByID)
		auth.PUT("/filters/:id", filtersHandler.Update)
		auth.DELETE("/filters/:id", filtersHandler.Delete)

		auth.POST("/codes/:id/image", codesHandler.UploadImage)
	}

	r.Run(":8080")
}
