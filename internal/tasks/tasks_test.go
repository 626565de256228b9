package tasks

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	gormsqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"github.com/zaigner/my-garage/internal/models"
)

func TestRetryPolicyDelayEscalates(t *testing.T) {
	p := RetryPolicy{MaxAttempts: 5, BaseDelay: time.Minute, Multiplier: 2}

	cases := []struct {
		attempt int
		want    time.Duration
	}{
		{1, time.Minute},
		{2, 2 * time.Minute},
		{3, 4 * time.Minute},
		{0, time.Minute}, // clamped
	}
	for _, tc := range cases {
		if got := p.Delay(tc.attempt); got != tc.want {
			t.Fatalf("Delay(%d) = %s, want %s", tc.attempt, got, tc.want)
		}
	}
}

func testWorker(maxAttempts int) *Worker {
	return &Worker{policy: RetryPolicy{MaxAttempts: maxAttempts, BaseDelay: time.Millisecond, Multiplier: 1}}
}

func TestRunWithRetryStopsAfterSuccess(t *testing.T) {
	w := testWorker(5)
	calls := 0
	w.runWithRetry(context.Background(), "test", func(context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("transient")
		}
		return nil
	})
	if calls != 3 {
		t.Fatalf("calls = %d, want 3 (two failures then success)", calls)
	}
}

func TestRunWithRetryExhaustsBoundedAttempts(t *testing.T) {
	w := testWorker(5)
	calls := 0
	w.runWithRetry(context.Background(), "test", func(context.Context) error {
		calls++
		return errors.New("always failing")
	})
	if calls != 5 {
		t.Fatalf("calls = %d, want exactly MaxAttempts", calls)
	}
}

func TestRunWithRetryPermanentShortCircuits(t *testing.T) {
	w := testWorker(5)
	calls := 0
	w.runWithRetry(context.Background(), "test", func(context.Context) error {
		calls++
		return Permanent(gorm.ErrRecordNotFound)
	})
	if calls != 1 {
		t.Fatalf("calls = %d, want 1 for a permanent failure", calls)
	}
}

func TestRunWithRetryHonorsContextCancel(t *testing.T) {
	w := &Worker{policy: RetryPolicy{MaxAttempts: 5, BaseDelay: time.Hour, Multiplier: 1}}
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()
	w.runWithRetry(ctx, "test", func(context.Context) error {
		calls++
		return errors.New("transient")
	})
	if calls != 1 {
		t.Fatalf("calls = %d, want 1 before cancellation", calls)
	}
}

type countingEnqueuer struct {
	ids []uint
	err error
}

func (c *countingEnqueuer) EnqueueValuation(vehicleID uint) error {
	if c.err != nil {
		return c.err
	}
	c.ids = append(c.ids, vehicleID)
	return nil
}

func sweepDB(t *testing.T, vehicles int) *gorm.DB {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "garage.sqlite")
	db, err := gorm.Open(gormsqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}, &models.Vehicle{}); err != nil {
		t.Fatalf("auto migrate: %v", err)
	}
	user := models.User{Name: "Owner", Email: "owner@example.com", Password: "x"}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	for i := 0; i < vehicles; i++ {
		v := models.Vehicle{OwnerID: user.ID, Make: "Mazda", Model: "MX-5", Year: 2000 + i}
		if err := db.Create(&v).Error; err != nil {
			t.Fatalf("create vehicle: %v", err)
		}
	}
	return db
}

func TestBulkValuationSweepEnqueuesOnePerVehicle(t *testing.T) {
	db := sweepDB(t, 7)
	q := &countingEnqueuer{}

	count, err := BulkValuationSweep(db, q)
	if err != nil {
		t.Fatalf("BulkValuationSweep() error = %v", err)
	}
	if count != 7 {
		t.Fatalf("count = %d, want 7", count)
	}
	if len(q.ids) != 7 {
		t.Fatalf("enqueued = %d jobs, want 7", len(q.ids))
	}
	seen := map[uint]bool{}
	for _, id := range q.ids {
		if seen[id] {
			t.Fatalf("vehicle %d enqueued twice", id)
		}
		seen[id] = true
	}
}

func TestBulkValuationSweepEmptyGarage(t *testing.T) {
	db := sweepDB(t, 0)
	q := &countingEnqueuer{}

	count, err := BulkValuationSweep(db, q)
	if err != nil {
		t.Fatalf("BulkValuationSweep() error = %v", err)
	}
	if count != 0 {
		t.Fatalf("count = %d, want 0", count)
	}
}

func TestBulkValuationSweepSurfacesEnqueueFailure(t *testing.T) {
	db := sweepDB(t, 3)
	q := &countingEnqueuer{err: errors.New("queue down")}

	_, err := BulkValuationSweep(db, q)
	if err == nil {
		t.Fatalf("BulkValuationSweep() = nil, want error")
	}
}
