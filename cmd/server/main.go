package main

import (
	"context"
	"log"
	"net/http"

	"github.com/zaigner/my-garage/internal/clients"
	"github.com/zaigner/my-garage/internal/config"
	"github.com/zaigner/my-garage/internal/controllers"
	"github.com/zaigner/my-garage/internal/logger"
	"github.com/zaigner/my-garage/internal/middleware"
	"github.com/zaigner/my-garage/internal/routes"
	"github.com/zaigner/my-garage/internal/services"
	"github.com/zaigner/my-garage/internal/tasks"
)

func main() {
	// Structured logging to file
	logger.Setup()

	// Connect to the database
	config.InitDB()

	// Document store for receipt images and condition photos
	docs, err := config.ConnectDocStore(context.Background())
	if err != nil {
		log.Fatalf("document store: %v", err)
	}

	// Job queue
	queue, err := tasks.Connect(config.Env("NATS_URL", "nats://localhost:4222"))
	if err != nil {
		log.Fatalf("job queue: %v", err)
	}
	defer queue.Close()

	// External AI services
	market := clients.NewMarketAPI(config.Env("VALUATION_API_URL", "http://localhost:8001"))
	ocr := clients.NewOCRAPI(config.Env("OCR_API_URL", "http://localhost:8001"))

	svc := services.NewService(config.DB, market, ocr, docs)
	controllers.Init(svc, queue)

	// Setup Gin router (recovery + request logging live inside)
	r := routes.SetupRouter()

	// Wrap with CORS
	handler := middleware.EnableCORS(r)

	addr := "0.0.0.0:" + config.Env("PORT", "8080")
	log.Printf("🚀 Server running at %s", addr)
	log.Fatal(http.ListenAndServe(addr, handler))
}
