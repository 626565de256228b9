// Package services holds the state-changing workflows of the garage:
// valuation refresh, receipt ingestion, OCR application, condition
// grading and upgrade installation. Aggregation queries live in
// internal/selectors.
package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/zaigner/my-garage/internal/clients"
	"github.com/zaigner/my-garage/internal/models"
)

// ErrGradeOutOfRange rejects condition grades outside the 1-10 scale.
var ErrGradeOutOfRange = errors.New("grade must be between 1.0 and 10.0")

// ValuationServiceError marks a failed call to the valuation engine.
// The job runner treats it as retryable.
type ValuationServiceError struct {
	Err error
}

func (e *ValuationServiceError) Error() string {
	return fmt.Sprintf("failed to reach valuation engine: %v", e.Err)
}

func (e *ValuationServiceError) Unwrap() error { return e.Err }

// MarketClient finds comparable listings for a vehicle.
type MarketClient interface {
	SearchListings(ctx context.Context, req clients.MarketSearchRequest) ([]clients.Listing, error)
}

// OCRClient extracts structured data from a receipt image.
type OCRClient interface {
	ExtractReceipt(ctx context.Context, image []byte) (*clients.ReceiptExtraction, error)
}

// DocumentStore persists binary uploads (receipts, condition photos).
type DocumentStore interface {
	Put(ctx context.Context, collection string, data []byte, contentType string) (string, error)
	Get(ctx context.Context, collection, key string) ([]byte, error)
}

// Document store collections
const (
	CollectionReceipts        = "receipts"
	CollectionConditionPhotos = "condition_checks"
)

type Service struct {
	db     *gorm.DB
	market MarketClient
	ocr    OCRClient
	docs   DocumentStore
}

func NewService(db *gorm.DB, market MarketClient, ocr OCRClient, docs DocumentStore) *Service {
	return &Service{db: db, market: market, ocr: ocr, docs: docs}
}

// RefreshMarketValuation asks the valuation engine for comparable
// listings (model year ±1) and persists the median listing price as the
// vehicle's new market value. For an even listing count the upper-middle
// element of the sorted prices is taken, not the average of the two
// middle ones. An empty result leaves the value unchanged; a failed call
// returns a *ValuationServiceError and performs no mutation.
func (s *Service) RefreshMarketValuation(ctx context.Context, vehicleID uint) (decimal.Decimal, error) {
	var vehicle models.Vehicle
	if err := s.db.WithContext(ctx).First(&vehicle, vehicleID).Error; err != nil {
		return decimal.Zero, err
	}

	listings, err := s.market.SearchListings(ctx, clients.MarketSearchRequest{
		Make:    vehicle.Make,
		Model:   vehicle.Model,
		Trim:    vehicle.Trim,
		YearMin: vehicle.Year - 1,
		YearMax: vehicle.Year + 1,
	})
	if err != nil {
		return decimal.Zero, &ValuationServiceError{Err: err}
	}

	if len(listings) == 0 {
		return vehicle.CurrentMarketValue, nil
	}

	prices := make([]decimal.Decimal, len(listings))
	for i, l := range listings {
		prices[i] = l.Price
	}
	sort.Slice(prices, func(i, j int) bool { return prices[i].LessThan(prices[j]) })
	median := prices[len(prices)/2]

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Model(&models.Vehicle{}).
			Where("id = ?", vehicle.ID).
			Update("current_market_value", median).Error
	})
	if err != nil {
		return decimal.Zero, fmt.Errorf("persist valuation for vehicle %d: %w", vehicle.ID, err)
	}

	logrus.WithFields(logrus.Fields{
		"vehicle_id": vehicle.ID,
		"value":      median.StringFixed(2),
		"listings":   len(listings),
	}).Info("market valuation updated")

	return median, nil
}

// CreateServiceRecordFromUpload stores the uploaded receipt image and
// creates the placeholder record. Extraction happens later, in the OCR
// job; this call never blocks on it.
func (s *Service) CreateServiceRecordFromUpload(ctx context.Context, vehicleID uint, image []byte, contentType string) (*models.ServiceRecord, error) {
	var vehicle models.Vehicle
	if err := s.db.WithContext(ctx).First(&vehicle, vehicleID).Error; err != nil {
		return nil, err
	}

	key, err := s.docs.Put(ctx, CollectionReceipts, image, contentType)
	if err != nil {
		return nil, fmt.Errorf("store receipt image: %w", err)
	}

	record := models.ServiceRecord{
		VehicleID:    vehicle.ID,
		Date:         time.Now().UTC(),
		Vendor:       models.VendorProcessing,
		Description:  models.DescriptionAwaitingOCR,
		TotalCost:    decimal.Zero,
		ReceiptImage: key,
		IsVerified:   false,
	}
	if err := s.db.WithContext(ctx).Create(&record).Error; err != nil {
		return nil, fmt.Errorf("create service record: %w", err)
	}
	return &record, nil
}

// ApplyOCRExtraction runs OCR over a record's stored receipt and fills
// in vendor, description and cost, falling back to the existing value
// for any field the payload omits. On any failure the record is left
// untouched and the error is returned for the job layer to decide on a
// retry.
func (s *Service) ApplyOCRExtraction(ctx context.Context, recordID uint) error {
	var record models.ServiceRecord
	if err := s.db.WithContext(ctx).First(&record, recordID).Error; err != nil {
		return err
	}

	if record.ReceiptImage == "" {
		return fmt.Errorf("service record %d has no receipt image", record.ID)
	}

	image, err := s.docs.Get(ctx, CollectionReceipts, record.ReceiptImage)
	if err != nil {
		logrus.WithField("record_id", record.ID).WithError(err).Warn("receipt image fetch failed")
		return err
	}

	extraction, err := s.ocr.ExtractReceipt(ctx, image)
	if err != nil {
		logrus.WithField("record_id", record.ID).WithError(err).Warn("OCR extraction failed")
		return err
	}

	updates := map[string]interface{}{
		"ocr_raw_data": datatypes.JSON(extraction.Raw),
		"is_verified":  true,
	}
	if extraction.Vendor != nil {
		updates["vendor"] = *extraction.Vendor
	}
	if extraction.Description != nil {
		updates["description"] = *extraction.Description
	}
	if extraction.TotalCost != nil {
		updates["total_cost"] = *extraction.TotalCost
	}

	if err := s.db.WithContext(ctx).Model(&record).Updates(updates).Error; err != nil {
		return fmt.Errorf("persist OCR extraction for record %d: %w", record.ID, err)
	}

	logrus.WithField("record_id", record.ID).Info("service record verified from OCR")
	return nil
}

// ConditionGradeInput is one AI assessment of an area of the car.
type ConditionGradeInput struct {
	VehicleID uint
	Area      string
	Photo     []byte
	PhotoType string
	Grade     float64
	Feedback  string
	Impact    decimal.Decimal
}

// AddConditionGrade saves the report and applies its value impact to
// the vehicle's market value in a single transaction: both writes land
// or neither does.
func (s *Service) AddConditionGrade(ctx context.Context, in ConditionGradeInput) (*models.ConditionReport, error) {
	if in.Grade < 1.0 || in.Grade > 10.0 {
		return nil, ErrGradeOutOfRange
	}

	var vehicle models.Vehicle
	if err := s.db.WithContext(ctx).First(&vehicle, in.VehicleID).Error; err != nil {
		return nil, err
	}

	var photoKey string
	if len(in.Photo) > 0 {
		key, err := s.docs.Put(ctx, CollectionConditionPhotos, in.Photo, in.PhotoType)
		if err != nil {
			return nil, fmt.Errorf("store condition photo: %w", err)
		}
		photoKey = key
	}

	report := models.ConditionReport{
		VehicleID:       vehicle.ID,
		Area:            in.Area,
		Photo:           photoKey,
		Grade:           in.Grade,
		AIFeedback:      in.Feedback,
		ValueAdjustment: in.Impact,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&report).Error; err != nil {
			return err
		}
		newValue := vehicle.CurrentMarketValue.Add(in.Impact)
		return tx.Model(&models.Vehicle{}).
			Where("id = ?", vehicle.ID).
			Update("current_market_value", newValue).Error
	})
	if err != nil {
		return nil, fmt.Errorf("save condition grade for vehicle %d: %w", vehicle.ID, err)
	}

	logrus.WithFields(logrus.Fields{
		"vehicle_id": vehicle.ID,
		"area":       in.Area,
		"impact":     in.Impact.StringFixed(2),
	}).Info("condition grade recorded")

	return &report, nil
}

// InstallUpgradePart moves a part to INSTALLED and logs the final cost.
// A nil or zero cost means "no override": the stored cost stays as is.
func (s *Service) InstallUpgradePart(ctx context.Context, upgradeID uint, cost *decimal.Decimal) (*models.Upgrade, error) {
	var upgrade models.Upgrade
	if err := s.db.WithContext(ctx).First(&upgrade, upgradeID).Error; err != nil {
		return nil, err
	}

	upgrade.Status = models.StatusInstalled
	if upgrade.InstallationDate == nil {
		now := time.Now().UTC()
		upgrade.InstallationDate = &now
	}
	if cost != nil && !cost.IsZero() {
		upgrade.Cost = *cost
	}

	if err := s.db.WithContext(ctx).Save(&upgrade).Error; err != nil {
		return nil, fmt.Errorf("install upgrade %d: %w", upgrade.ID, err)
	}
	return &upgrade, nil
}
