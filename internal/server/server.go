package server

import (
	"fmt"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/farhanmaulana/eventgate/config"
	"github.com/farhanmaulana/eventgate/internal/handlers"
	"github.com/farhanmaulana/eventgate/internal/middleware"
	"github.com/farhanmaulana/eventgate/internal/services"
)

func Start() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %v", err)
	}

	db, err := config.InitDatabase(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %v", err)
	}

	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	r := gin.Default()

	setupRoutes(r, db, cfg, logger)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	return r.Run(":" + port)
}

func setupRoutes(r *gin.Engine, db *gorm.DB, cfg *config.Config, logger *logrus.Logger) {
	r.Use(middleware.DatabaseMiddleware(db))

	ledger := services.NewInventoryLedger(db, logger)
	promotions := services.NewPromotionValidator(db, logger)
	encoder := services.NewQRPayloadEncoder()
	orders := services.NewOrderService(services.OrderServiceProperty{
		DB:            db,
		Logger:        logger,
		Pricing:       config.LoadPricingConfig(),
		Ledger:        ledger,
		Promotions:    promotions,
		Encoder:       encoder,
		Notifier:      &services.LogNotifier{Logger: logger},
		PayloadSecret: cfg.PayloadSecret,
	})
	checkIns := services.NewCheckInService(db, logger)

	orderHandler := handlers.NewOrderHandler(orders)
	paymentHandler := handlers.NewPaymentHandler(orders)
	checkInHandler := handlers.NewCheckInHandler(db, checkIns, encoder, cfg.PayloadSecret)

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	public := r.Group("/v1")
	{
		public.POST("/register", handlers.Register)
		public.POST("/login", handlers.Login)

		eventPublic := public.Group("/events")
		{
			eventPublic.GET("", handlers.ListEvents)
			eventPublic.GET("/:id", handlers.GetEvent)
			eventPublic.GET("/:id/ticket-types", handlers.ListTicketTypes)
		}
	}

	webhook := r.Group("/v1/payments")
	webhook.Use(middleware.WebhookSignatureMiddleware(cfg.WebhookSecret))
	{
		webhook.POST("/webhook", paymentHandler.Webhook)
	}

	protected := r.Group("/v1")
	protected.Use(middleware.JWTAuthMiddleware())
	{
		eventProtected := protected.Group("/events")
		{
			eventProtected.POST("", handlers.CreateEvent)
			eventProtected.POST("/:id/ticket-types", handlers.CreateTicketType)
			eventProtected.POST("/:id/promotions", handlers.CreatePromotion)
			eventProtected.GET("/:id/promotions", handlers.ListPromotions)
		}

		orderProtected := protected.Group("/orders")
		{
			orderProtected.POST("", orderHandler.Create)
			orderProtected.GET("", orderHandler.List)
			orderProtected.GET("/:id", orderHandler.Get)
			orderProtected.POST("/:id/cancel", orderHandler.Cancel)
			orderProtected.POST("/:id/refund", orderHandler.Refund)
		}

		protected.GET("/tickets/:code/qr", checkInHandler.TicketQR)
		protected.POST("/check-in", checkInHandler.CheckIn)
		protected.POST("/check-in/validate", checkInHandler.Validate)
	}
}
