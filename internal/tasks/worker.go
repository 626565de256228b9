package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/zaigner/my-garage/internal/services"
)

// ErrPermanent marks a job failure that must not be retried, e.g. the
// target entity no longer exists.
var ErrPermanent = errors.New("permanent job failure")

// Permanent wraps err so the retry runner stops immediately.
func Permanent(err error) error {
	return fmt.Errorf("%w: %w", ErrPermanent, err)
}

// RetryPolicy bounds how often a failed job is re-attempted. Delay
// escalates by Multiplier between attempts.
type RetryPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	Multiplier  float64
}

// DefaultRetryPolicy matches the shared policy for external-API jobs:
// up to 5 attempts, one minute base delay, doubling backoff.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxAttempts: 5, BaseDelay: time.Minute, Multiplier: 2}
}

// Delay returns how long to wait after the given attempt (1-based).
func (p RetryPolicy) Delay(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	return time.Duration(float64(p.BaseDelay) * math.Pow(p.Multiplier, float64(attempt-1)))
}

// Worker consumes jobs and runs them through the workflow layer.
type Worker struct {
	queue  *Queue
	svc    *services.Service
	policy RetryPolicy
}

func NewWorker(queue *Queue, svc *services.Service, policy RetryPolicy) *Worker {
	return &Worker{queue: queue, svc: svc, policy: policy}
}

// Start subscribes to the job subjects. It returns once subscriptions
// are in place; jobs run until ctx is canceled.
func (w *Worker) Start(ctx context.Context) error {
	_, err := w.queue.nc.QueueSubscribe(SubjectOCR, queueGroup, func(msg *nats.Msg) {
		var p ocrPayload
		if err := json.Unmarshal(msg.Data, &p); err != nil {
			logrus.WithError(err).Error("malformed OCR job payload")
			return
		}
		go w.runWithRetry(ctx, fmt.Sprintf("ocr record=%d", p.RecordID), func(ctx context.Context) error {
			return w.runOCR(ctx, p.RecordID)
		})
	})
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", SubjectOCR, err)
	}

	_, err = w.queue.nc.QueueSubscribe(SubjectValuation, queueGroup, func(msg *nats.Msg) {
		var p valuationPayload
		if err := json.Unmarshal(msg.Data, &p); err != nil {
			logrus.WithError(err).Error("malformed valuation job payload")
			return
		}
		go w.runWithRetry(ctx, fmt.Sprintf("valuation vehicle=%d", p.VehicleID), func(ctx context.Context) error {
			return w.runValuation(ctx, p.VehicleID)
		})
	})
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", SubjectValuation, err)
	}

	logrus.Info("job worker subscribed")
	return nil
}

func (w *Worker) runOCR(ctx context.Context, recordID uint) error {
	err := w.svc.ApplyOCRExtraction(ctx, recordID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Permanent(err)
	}
	return err
}

func (w *Worker) runValuation(ctx context.Context, vehicleID uint) error {
	_, err := w.svc.RefreshMarketValuation(ctx, vehicleID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Permanent(err)
	}
	return err
}

// runWithRetry drives one job through the retry policy. Every outcome
// leaves a log record; nothing fails silently.
func (w *Worker) runWithRetry(ctx context.Context, job string, fn func(context.Context) error) {
	for attempt := 1; attempt <= w.policy.MaxAttempts; attempt++ {
		err := fn(ctx)
		if err == nil {
			logrus.WithField("job", job).WithField("attempt", attempt).Info("job succeeded")
			return
		}
		if errors.Is(err, ErrPermanent) {
			logrus.WithField("job", job).WithError(err).Error("job failed permanently, not retrying")
			return
		}
		if attempt == w.policy.MaxAttempts {
			logrus.WithField("job", job).WithField("attempts", attempt).WithError(err).Error("job failed, retries exhausted")
			return
		}

		delay := w.policy.Delay(attempt)
		logrus.WithField("job", job).WithField("attempt", attempt).WithError(err).Warnf("job failed, retrying in %s", delay)
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			logrus.WithField("job", job).Warn("worker shutting down, abandoning job")
			return
		}
	}
}
