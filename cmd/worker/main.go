package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/zaigner/my-garage/internal/clients"
	"github.com/zaigner/my-garage/internal/config"
	"github.com/zaigner/my-garage/internal/logger"
	"github.com/zaigner/my-garage/internal/services"
	"github.com/zaigner/my-garage/internal/tasks"
)

// The worker process runs the OCR and valuation jobs off the request
// path, plus the periodic bulk valuation sweep when
// VALUATION_SWEEP_INTERVAL is set (e.g. "24h", "0" disables).
func main() {
	logger.Setup()
	config.InitDB()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	docs, err := config.ConnectDocStore(ctx)
	if err != nil {
		log.Fatalf("document store: %v", err)
	}

	queue, err := tasks.Connect(config.Env("NATS_URL", "nats://localhost:4222"))
	if err != nil {
		log.Fatalf("job queue: %v", err)
	}
	defer queue.Close()

	market := clients.NewMarketAPI(config.Env("VALUATION_API_URL", "http://localhost:8001"))
	ocr := clients.NewOCRAPI(config.Env("OCR_API_URL", "http://localhost:8001"))
	svc := services.NewService(config.DB, market, ocr, docs)

	worker := tasks.NewWorker(queue, svc, tasks.DefaultRetryPolicy())
	if err := worker.Start(ctx); err != nil {
		log.Fatalf("worker: %v", err)
	}

	if raw := config.Env("VALUATION_SWEEP_INTERVAL", ""); raw != "" && raw != "0" {
		interval, err := time.ParseDuration(raw)
		if err != nil {
			log.Fatalf("invalid VALUATION_SWEEP_INTERVAL %q: %v", raw, err)
		}
		go runSweepLoop(ctx, queue, interval)
	}

	log.Println("🔧 Worker running")
	<-ctx.Done()
	log.Println("Worker shutting down")
}

func runSweepLoop(ctx context.Context, queue *tasks.Queue, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			count, err := tasks.BulkValuationSweep(config.DB, queue)
			if err != nil {
				logrus.WithError(err).Error("bulk valuation sweep failed")
				continue
			}
			logrus.WithField("enqueued", count).Info("bulk valuation sweep complete")
		case <-ctx.Done():
			return
		}
	}
}
