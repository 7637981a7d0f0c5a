package main

import (
	"log"

	"github.com/eventify/eventify-api/config"
	"github.com/eventify/eventify-api/internal/handler"
	"github.com/eventify/eventify-api/internal/middleware"
	"github.com/eventify/eventify-api/internal/repository"
	"github.com/eventify/eventify-api/internal/service"
	"github.com/eventify/eventify-api/pkg/cache"
	"github.com/eventify/eventify-api/pkg/database"
	"github.com/eventify/eventify-api/pkg/rabbitmq"
	"github.com/eventify/eventify-api/pkg/token"
	"github.com/labstack/echo/v4"
	echoMw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
)

func main() {
	cfg := config.Load()

	db := database.NewPostgresDB(cfg.DSN())

	// RabbitMQ publisher: domain events for downstream consumers (optional)
	var publisher *rabbitmq.Publisher
	if cfg.RabbitURL != "" {
		var err error
		publisher, err = rabbitmq.NewPublisher(cfg.RabbitURL)
		if err != nil {
			log.Fatalf("failed to connect to RabbitMQ: %v", err)
		}
		defer publisher.Close()
	}

	// Redis stock gate: advisory fast path for hot events (optional)
	var stock *cache.StockCache
	if cfg.RedisAddr != "" {
		stock = cache.NewStockCache(redis.NewClient(&redis.Options{Addr: cfg.RedisAddr}))
	}

	tokens := token.NewManager(cfg.JWTSecret, cfg.TokenTTL)

	// Repositories
	userRepo := repository.NewUserRepository(db)
	eventRepo := repository.NewEventRepository(db)
	ticketRepo := repository.NewTicketRepository(db)

	// Services
	authSvc := service.NewAuthService(userRepo, tokens)
	eventSvc := service.NewEventService(eventRepo, ticketRepo, publisher, stock)
	ticketSvc := service.NewTicketService(ticketRepo, eventRepo, publisher, stock, cfg.PurchaseTimeout)

	// Echo
	e := echo.New()
	e.HTTPErrorHandler = middleware.ErrorHandler
	e.Use(echoMw.RequestLoggerWithConfig(echoMw.RequestLoggerConfig{
		LogStatus: true,
		LogURI:    true,
		LogMethod: true,
		LogValuesFunc: func(c echo.Context, v echoMw.RequestLoggerValues) error {
			log.Printf("%s %s %d", v.Method, v.URI, v.Status)
			return nil
		},
	}))
	e.Use(echoMw.Recover())

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(200, map[string]string{"status": "ok", "service": "eventify-api"})
	})

	authn := middleware.Authenticate(tokens)
	api := e.Group("/api/v1")
	handler.NewAuthHandler(authSvc).RegisterRoutes(api.Group("/auth"))
	handler.NewEventHandler(eventSvc).RegisterRoutes(api, authn)
	handler.NewTicketHandler(ticketSvc).RegisterRoutes(api, authn)

	log.Printf("Eventify API starting on :%s", cfg.ServerPort)
	e.Logger.Fatal(e.Start(":" + cfg.ServerPort))
}
