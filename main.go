package main

import (
	"log"
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/abellano-woodworks/abellano-furniture-api/config"
	"github.com/abellano-woodworks/abellano-furniture-api/controllers"
	"github.com/abellano-woodworks/abellano-furniture-api/middleware"
	"github.com/abellano-woodworks/abellano-furniture-api/models"
	"github.com/abellano-woodworks/abellano-furniture-api/services"
)

func main() {
	log.Println("Starting Abellano Woodworks API server...")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if err := config.ConnectDatabase(); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	db := config.GetDB()
	if err := db.AutoMigrate(
		&models.User{},
		&models.Material{},
		&models.Product{},
		&models.CartItem{},
		&models.Order{},
		&models.OrderLine{},
		&models.PendingPayment{},
	); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}
	log.Println("Database migration completed successfully")

	// Delivery photos go to S3 when a bucket is configured, local disk otherwise
	if cfg.AWSS3Bucket != "" {
		s3Service, err := services.InitS3Service()
		if err != nil {
			log.Fatalf("Failed to initialize S3 service: %v", err)
		}
		services.InitProofService(s3Service)
	} else {
		log.Println("AWS_S3_BUCKET not set, storing delivery photos locally")
		services.SetProofService(services.NewLocalProofService(""))
	}

	services.InitPaymentGateway(cfg.PaymentGatewayURL)
	services.InitAuditSink(cfg.AuditSinkURL)

	router := gin.Default()
	router.Use(cors.Default())

	quoteLimiter := middleware.NewRateLimiter(5, 10)

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", healthCheck)
		v1.GET("/materials", controllers.ListMaterials)
		v1.GET("/products", controllers.ListProducts)
		v1.GET("/products/:id", controllers.GetProduct)
		v1.POST("/pricing/quote", quoteLimiter.Limit(), controllers.QuoteCustomPiece)
		v1.POST("/payments/webhook", controllers.PaymentWebhook)
		v1.GET("/proofs/:filename", controllers.GetProofImage)

		authenticated := v1.Group("")
		authenticated.Use(middleware.EnsureValidToken(cfg))
		{
			authenticated.POST("/users", controllers.CreateUser)
			authenticated.GET("/users/me", controllers.GetMyProfile)
			authenticated.PUT("/users/me", controllers.UpdateMyProfile)

			authenticated.POST("/materials", controllers.CreateMaterial)

			authenticated.POST("/products", controllers.CreateProduct)
			authenticated.PUT("/products/:id", controllers.UpdateProduct)

			authenticated.GET("/cart", controllers.GetCart)
			authenticated.POST("/cart", controllers.AddCartItem)
			authenticated.DELETE("/cart/:id", controllers.RemoveCartItem)

			authenticated.POST("/orders", controllers.CreateOrder)
			authenticated.GET("/orders", controllers.ListOrders)
			authenticated.GET("/orders/:id", controllers.GetOrder)
			authenticated.GET("/orders/:id/payment", controllers.GetOrderPayment)
			authenticated.PUT("/orders/:id/status", controllers.TransitionOrder)
			authenticated.POST("/orders/:id/proof", controllers.UploadDeliveryProof)
			authenticated.POST("/orders/:id/payments/balance", controllers.CreateBalanceCheckout)

			authenticated.POST("/payments/reconcile", controllers.ReconcilePayments)
		}
	}

	port := ":" + cfg.Port
	log.Printf("Server is running on http://localhost%s", port)
	if err := router.Run(port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// healthCheck handles the health check endpoint
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Abellano Woodworks API is running",
	})
}
