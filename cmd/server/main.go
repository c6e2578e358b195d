package main // Entry point package

import (
	"log"  // Logging library
	"time" // Durations for token and cart lifetimes

	"github.com/joho/godotenv"    // Loads .env files in development
	"github.com/labstack/echo/v4" // Echo web framework

	"github.com/iliyamo/online-store/internal/config"     // Internal config loader
	"github.com/iliyamo/online-store/internal/database"   // MySQL connection pool
	"github.com/iliyamo/online-store/internal/handler"    // HTTP handlers
	"github.com/iliyamo/online-store/internal/queue"      // RabbitMQ publisher and mail consumer
	"github.com/iliyamo/online-store/internal/repository" // SQL repositories
	"github.com/iliyamo/online-store/internal/router"     // Route registration
	"github.com/iliyamo/online-store/internal/service"    // Token and cart services
)

func main() {
	// Load .env when present so local development does not need exported
	// variables.  In production the environment is injected directly and
	// the missing file is fine.
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file loaded: %v", err)
	}
	cfg := config.Load() // Load environment config; exits on missing values

	// Open the MySQL pool and fail fast when the database is unreachable.
	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// Redis is optional: when unreachable the rate limiter fails open and
	// the response cache becomes a no-op, so a dead Redis degrades the
	// service instead of killing it.
	rdb := config.NewRedisClient()

	// Repositories over the shared pool.
	users := repository.NewUserRepo(db)
	categories := repository.NewCategoryRepo(db)
	products := repository.NewProductRepo(db)
	carts := repository.NewCartRepo(db)
	cartItems := repository.NewCartItemRepo(db)

	// Services.  TTLs come from config: minutes for access tokens, days for
	// refresh tokens and carts.
	tokens := service.NewTokenService(
		users,
		cfg.JWTSecret,
		cfg.JWTRefreshSecret,
		time.Duration(cfg.AccessTTLMin)*time.Minute,
		time.Duration(cfg.RefreshTTLDays)*24*time.Hour,
	)
	cart := service.NewCartService(carts, cartItems, products, time.Duration(cfg.CartTTLDays)*24*time.Hour)

	// Password-reset notifications go through RabbitMQ; the consumer below
	// drains the queue in-process so a single binary still delivers mail.
	mailer := queue.NewPublisher()
	go func() {
		if err := queue.StartMailConsumer(); err != nil {
			log.Printf("mail consumer stopped: %v", err)
		}
	}()

	// Handlers.
	authH := handler.NewAuthHandler(cfg, users, tokens, mailer)
	cartH := handler.NewCartHandler(cart)
	catH := handler.NewCategoryHandler(categories)
	prodH := handler.NewProductHandler(products, categories)
	pubH := handler.NewPublicCatalogHandler(products, categories)

	e := echo.New() // Create Echo instance
	router.RegisterRoutes(e)
	router.RegisterAuth(e, authH, cfg.JWTSecret, config.LoadRateLimitConfig(), rdb)
	router.RegisterCart(e, cartH, cfg.JWTSecret)
	router.RegisterCatalog(e, catH, prodH, cfg.JWTSecret)
	router.RegisterPublic(e, pubH, config.LoadCacheConfig(), rdb)

	addr := ":" + cfg.Port                                // Address string with port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env) // Print startup info

	if err := e.Start(addr); err != nil { // Start HTTP server
		log.Fatal(err) // Log and exit if server fails
	}
}
