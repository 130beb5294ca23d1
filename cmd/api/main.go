package main

import (
	"context"
	"log"

	"unit-supply-api-server/config"
	"unit-supply-api-server/internal/api/routes"
	"unit-supply-api-server/internal/auth"
	"unit-supply-api-server/internal/database"
	"unit-supply-api-server/internal/fulfillment"
	"unit-supply-api-server/internal/ledgeranchor"
	"unit-supply-api-server/internal/s3"
	"unit-supply-api-server/internal/socket"
	"unit-supply-api-server/internal/stock"
	"unit-supply-api-server/internal/store"

	"github.com/joho/godotenv"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func main() {
	// .env is optional; real deployments set environment variables directly.
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg, err := config.LoadConfig("./config")
	if err != nil {
		log.Fatalf("Could not load config: %v", err)
	}
	if cfg.JWT.Secret != "" {
		auth.JwtSecret = []byte(cfg.JWT.Secret)
	}

	ctx := context.Background()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.Mongo.URI))
	if err != nil {
		log.Fatalf("Could not connect to MongoDB: %v", err)
	}
	defer client.Disconnect(ctx)
	if err := client.Ping(ctx, nil); err != nil {
		log.Fatalf("Could not ping MongoDB: %v", err)
	}
	db := client.Database(cfg.Mongo.DBName)

	st := store.NewMongo(db)
	if err := st.EnsureIndexes(ctx); err != nil {
		log.Fatalf("Could not create indexes: %v", err)
	}

	adjuster := stock.NewMongoAdjuster(db)
	if err := adjuster.EnsureIndexes(ctx); err != nil {
		log.Fatalf("Could not create stock indexes: %v", err)
	}

	if err := database.SeedAdmin(ctx, st); err != nil {
		log.Fatalf("Could not seed admin account: %v", err)
	}

	svc := fulfillment.NewService(st, adjuster)

	if cfg.Fabric.Enabled {
		anchor, err := ledgeranchor.Initialize(cfg.Fabric)
		if err != nil {
			log.Fatalf("Could not initialize ledger anchor: %v", err)
		}
		defer anchor.Close()
		svc.Anchor = anchor
		log.Println("Ledger anchoring enabled")
	}

	var s3Uploader *s3.Uploader
	if cfg.S3.Bucket != "" {
		s3Uploader, err = s3.NewUploader(cfg.S3)
		if err != nil {
			log.Fatalf("Could not initialize S3 uploader: %v", err)
		}
	} else {
		log.Println("S3 bucket not configured, photo upload disabled")
	}

	wsHub := socket.NewHub()

	router := routes.SetupRouter(cfg, st, svc, s3Uploader, wsHub)

	log.Printf("Starting API server on port %s", cfg.Server.Port)
	if err := router.Run(":" + cfg.Server.Port); err != nil {
		log.Fatalf("Failed to run server: %v", err)
	}
}
