package routes

import (
	"log"
	"time"

	"unit-supply-api-server/config"
	"unit-supply-api-server/internal/api/handlers"
	"unit-supply-api-server/internal/api/middleware"
	"unit-supply-api-server/internal/fulfillment"
	"unit-supply-api-server/internal/models"
	"unit-supply-api-server/internal/s3"
	"unit-supply-api-server/internal/socket"
	"unit-supply-api-server/internal/store"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// SetupRouter wires the handlers and role-based route groups.
func SetupRouter(
	cfg config.Config,
	st store.Store,
	svc *fulfillment.Service,
	s3Uploader *s3.Uploader,
	wsHub *socket.Hub,
) *gin.Engine {
	router := gin.Default()
	router.Use(gin.Recovery())
	router.Use(cors.Default())

	jwtExpiration, err := time.ParseDuration(cfg.JWT.Expiration)
	if err != nil {
		log.Printf("Invalid jwt.expiration %q, defaulting to 24h", cfg.JWT.Expiration)
		jwtExpiration = 24 * time.Hour
	}

	userHandler := &handlers.UserHandler{Store: st, Svc: svc, JWTExpiration: jwtExpiration}
	catalogHandler := &handlers.CatalogHandler{Store: st}
	requestHandler := &handlers.RequestHandler{Svc: svc, Hub: wsHub}
	furnitureHandler := &handlers.FurnitureHandler{Svc: svc, Hub: wsHub}
	removalHandler := &handlers.RemovalHandler{Svc: svc, Hub: wsHub}
	batchHandler := &handlers.BatchHandler{Svc: svc, Hub: wsHub, Uploader: s3Uploader}
	webSocketHandler := &handlers.WebSocketHandler{Hub: wsHub}

	apiV1 := router.Group("/api/v1")
	{
		apiV1.GET("/ws", webSocketHandler.ServeWs)

		auth := apiV1.Group("/auth")
		{
			auth.POST("/login", userHandler.Login)
		}

		// Administration, admin role only.
		admin := apiV1.Group("/admin")
		admin.Use(middleware.Authenticate())
		admin.Use(middleware.Authorize(models.RoleAdmin))
		{
			admin.POST("/users", userHandler.CreateUser)
			admin.POST("/items", catalogHandler.CreateItem)
			admin.POST("/units", catalogHandler.CreateUnit)
		}

		// Everything below requires a valid JWT; fine-grained role checks
		// live in the fulfillment core, the groups here only gate the
		// obvious cases.
		protected := apiV1.Group("/")
		protected.Use(middleware.Authenticate())
		{
			protected.GET("/me/daily-code", userHandler.GetMyDailyCode)
			protected.GET("/me/pending", userHandler.GetMyPending)
			protected.GET("/items", catalogHandler.GetAllItems)
			protected.GET("/units", catalogHandler.GetAllUnits)

			requests := protected.Group("/requests")
			{
				requests.POST("/", requestHandler.CreateRequest)
				requests.GET("/", requestHandler.GetAllRequests)
				requests.GET("/my-unit", requestHandler.GetMyUnitRequests)
				requests.GET("/:id", requestHandler.GetRequestByID)
				requests.POST("/:id/cancel", requestHandler.CancelRequest)

				review := requests.Group("/")
				review.Use(middleware.Authorize(models.RoleController, models.RoleWarehouse, models.RoleAdmin))
				{
					review.POST("/:id/approve", requestHandler.ApproveRequest)
					review.POST("/:id/reject", requestHandler.RejectRequest)
				}

				warehouse := requests.Group("/")
				warehouse.Use(middleware.Authorize(models.RoleWarehouse, models.RoleAdmin))
				{
					warehouse.POST("/:id/process", requestHandler.StartProcessing)
					warehouse.POST("/:id/ready", requestHandler.MarkAwaitingPickup)
				}
			}

			furniture := protected.Group("/furniture-requests")
			{
				furniture.POST("/", furnitureHandler.CreateFurnitureRequest)
				furniture.GET("/", furnitureHandler.GetAllFurnitureRequests)
				furniture.GET("/:id", furnitureHandler.GetFurnitureRequestByID)
				furniture.GET("/:id/confirmations", furnitureHandler.GetConfirmations)
				furniture.POST("/:id/confirm-receipt", furnitureHandler.ConfirmReceipt)

				designer := furniture.Group("/")
				designer.Use(middleware.Authorize(models.RoleDesigner, models.RoleAdmin))
				{
					designer.POST("/:id/approve-designer", furnitureHandler.ApproveByDesigner)
				}

				reviewers := furniture.Group("/")
				reviewers.Use(middleware.Authorize(models.RoleDesigner, models.RoleWarehouse, models.RoleAdmin))
				{
					reviewers.POST("/:id/reject", furnitureHandler.RejectFurnitureRequest)
				}

				storage := furniture.Group("/")
				storage.Use(middleware.Authorize(models.RoleWarehouse, models.RoleAdmin))
				{
					storage.POST("/:id/approve-storage", furnitureHandler.ApproveByStorage)
					storage.POST("/:id/separate", furnitureHandler.MarkSeparated)
					storage.POST("/:id/ready", furnitureHandler.MarkAwaitingDelivery)
					storage.POST("/:id/dispatch", furnitureHandler.DispatchFurniture)
				}

				driver := furniture.Group("/")
				driver.Use(middleware.Authorize(models.RoleDriver, models.RoleAdmin))
				{
					driver.POST("/:id/deliver", furnitureHandler.MarkDelivered)
				}
			}

			removals := protected.Group("/removal-requests")
			{
				removals.POST("/", removalHandler.CreateRemoval)
				removals.GET("/", removalHandler.GetAllRemovals)
				removals.GET("/:id", removalHandler.GetRemovalByID)

				warehouse := removals.Group("/")
				warehouse.Use(middleware.Authorize(models.RoleWarehouse, models.RoleAdmin))
				{
					warehouse.POST("/:id/review", removalHandler.ReviewRemoval)
					warehouse.POST("/:id/reject", removalHandler.RejectRemoval)
					warehouse.POST("/:id/schedule-pickup", removalHandler.SchedulePickup)
					warehouse.POST("/:id/complete", removalHandler.Complete)
				}

				driver := removals.Group("/")
				driver.Use(middleware.Authorize(models.RoleDriver, models.RoleAdmin))
				{
					driver.POST("/:id/pickup", removalHandler.PickUp)
				}
			}

			batches := protected.Group("/batches")
			{
				batches.GET("/", batchHandler.GetAllBatches)
				batches.GET("/my", batchHandler.GetMyBatches)
				batches.GET("/:id", batchHandler.GetBatchByID)
				batches.GET("/:id/confirmations", batchHandler.GetConfirmations)
				batches.POST("/:id/confirm-receipt", batchHandler.ConfirmReceipt)

				warehouse := batches.Group("/")
				warehouse.Use(middleware.Authorize(models.RoleWarehouse, models.RoleAdmin))
				{
					warehouse.POST("/", batchHandler.CreateBatch)
					warehouse.POST("/:id/cancel", batchHandler.CancelBatch)
				}

				driver := batches.Group("/")
				driver.Use(middleware.Authorize(models.RoleDriver, models.RoleWarehouse, models.RoleAdmin))
				{
					driver.POST("/:id/dispatch", batchHandler.DispatchBatch)
				}

				driverOnly := batches.Group("/")
				driverOnly.Use(middleware.Authorize(models.RoleDriver, models.RoleAdmin))
				{
					driverOnly.POST("/:id/confirm-delivery", batchHandler.ConfirmDelivery)
					driverOnly.POST("/:id/confirm-later", batchHandler.ConfirmLater)
					driverOnly.POST("/:id/delivery-photo", batchHandler.UploadDeliveryPhoto)
				}
			}
		}
	}

	return router
}
