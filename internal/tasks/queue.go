// Package tasks wraps the workflow layer for execution off the request
// path. Jobs travel over NATS; retry behavior is an injectable policy,
// not per-job logic.
package tasks

import (
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"
	"gorm.io/gorm"

	"github.com/zaigner/my-garage/internal/models"
)

// Job subjects
const (
	SubjectOCR       = "garage.jobs.ocr"
	SubjectValuation = "garage.jobs.valuation"

	// Workers join one queue group so each job is delivered once
	queueGroup = "garage-workers"
)

type ocrPayload struct {
	RecordID uint `json:"record_id"`
}

type valuationPayload struct {
	VehicleID uint `json:"vehicle_id"`
}

// Queue publishes jobs to NATS.
type Queue struct {
	nc *nats.Conn
}

// Connect dials the NATS server.
func Connect(url string) (*Queue, error) {
	nc, err := nats.Connect(url, nats.Name("my-garage"))
	if err != nil {
		return nil, fmt.Errorf("connect job queue: %w", err)
	}
	return &Queue{nc: nc}, nil
}

func (q *Queue) publish(subject string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode job payload: %w", err)
	}
	if err := q.nc.Publish(subject, data); err != nil {
		return fmt.Errorf("enqueue %s: %w", subject, err)
	}
	return nil
}

// EnqueueOCR schedules OCR extraction for a service record.
func (q *Queue) EnqueueOCR(recordID uint) error {
	return q.publish(SubjectOCR, ocrPayload{RecordID: recordID})
}

// EnqueueValuation schedules a market valuation refresh for a vehicle.
func (q *Queue) EnqueueValuation(vehicleID uint) error {
	return q.publish(SubjectValuation, valuationPayload{VehicleID: vehicleID})
}

// Close drains the connection.
func (q *Queue) Close() {
	if q.nc != nil {
		q.nc.Close()
	}
}

// ValuationEnqueuer is what the bulk sweep needs from a queue.
type ValuationEnqueuer interface {
	EnqueueValuation(vehicleID uint) error
}

// BulkValuationSweep enqueues one valuation job per existing vehicle and
// returns the number enqueued. Vehicle ids are streamed in batches so a
// large garage does not get loaded wholesale.
func BulkValuationSweep(db *gorm.DB, queue ValuationEnqueuer) (int, error) {
	count := 0
	var batch []models.Vehicle
	result := db.Model(&models.Vehicle{}).Select("id").FindInBatches(&batch, 100, func(tx *gorm.DB, _ int) error {
		for _, v := range batch {
			if err := queue.EnqueueValuation(v.ID); err != nil {
				return err
			}
			count++
		}
		return nil
	})
	if result.Error != nil {
		return count, fmt.Errorf("bulk valuation sweep: %w", result.Error)
	}
	return count, nil
}
