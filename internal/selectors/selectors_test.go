package selectors

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	gormsqlite "github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/zaigner/my-garage/internal/models"
)

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "garage.sqlite")
	db, err := gorm.Open(gormsqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("get sql db: %v", err)
	}
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})
	if err := db.AutoMigrate(&models.User{}, &models.Vehicle{}, &models.ServiceRecord{}, &models.Upgrade{}, &models.ConditionReport{}); err != nil {
		t.Fatalf("auto migrate: %v", err)
	}
	return db
}

func seedVehicle(t *testing.T, db *gorm.DB, purchase *decimal.Decimal, marketValue decimal.Decimal) *models.Vehicle {
	t.Helper()

	user := models.User{Name: "Owner", Email: "owner@example.com", Password: "x"}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	vehicle := models.Vehicle{
		OwnerID:            user.ID,
		Make:               "Mazda",
		Model:              "MX-5",
		Year:               2019,
		PurchasePrice:      purchase,
		CurrentMarketValue: marketValue,
	}
	if err := db.Create(&vehicle).Error; err != nil {
		t.Fatalf("create vehicle: %v", err)
	}
	return &vehicle
}

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestMaintenanceTotalNoVerifiedRecords(t *testing.T) {
	db := setupDB(t)
	vehicle := seedVehicle(t, db, nil, decimal.Zero)

	// Unverified records must not count
	rec := models.ServiceRecord{VehicleID: vehicle.ID, Date: time.Now(), Vendor: "Shop", TotalCost: dec("500.00"), IsVerified: false}
	if err := db.Create(&rec).Error; err != nil {
		t.Fatalf("create record: %v", err)
	}

	total, err := MaintenanceTotal(db, vehicle.ID)
	if err != nil {
		t.Fatalf("MaintenanceTotal() error = %v", err)
	}
	if !total.IsZero() {
		t.Fatalf("MaintenanceTotal() = %s, want 0", total)
	}
}

func TestMaintenanceTotalSumsVerifiedOnly(t *testing.T) {
	db := setupDB(t)
	vehicle := seedVehicle(t, db, nil, decimal.Zero)

	records := []models.ServiceRecord{
		{VehicleID: vehicle.ID, Date: time.Now(), Vendor: "A", TotalCost: dec("120.50"), IsVerified: true},
		{VehicleID: vehicle.ID, Date: time.Now(), Vendor: "B", TotalCost: dec("79.50"), IsVerified: true},
		{VehicleID: vehicle.ID, Date: time.Now(), Vendor: "C", TotalCost: dec("999.99"), IsVerified: false},
	}
	if err := db.Create(&records).Error; err != nil {
		t.Fatalf("create records: %v", err)
	}

	total, err := MaintenanceTotal(db, vehicle.ID)
	if err != nil {
		t.Fatalf("MaintenanceTotal() error = %v", err)
	}
	if !total.Equal(dec("200.00")) {
		t.Fatalf("MaintenanceTotal() = %s, want 200.00", total)
	}
}

func TestUpgradeTotalInstalledOnly(t *testing.T) {
	db := setupDB(t)
	vehicle := seedVehicle(t, db, nil, decimal.Zero)

	total, err := UpgradeTotal(db, vehicle.ID)
	if err != nil {
		t.Fatalf("UpgradeTotal() error = %v", err)
	}
	if !total.IsZero() {
		t.Fatalf("UpgradeTotal() with no upgrades = %s, want 0", total)
	}

	upgrades := []models.Upgrade{
		{VehicleID: vehicle.ID, PartName: "Coilovers", Status: models.StatusInstalled, Cost: dec("1200.00")},
		{VehicleID: vehicle.ID, PartName: "Intake", Status: models.StatusInstalled, Cost: dec("300.00")},
		{VehicleID: vehicle.ID, PartName: "Turbo kit", Status: models.StatusWishlist, Cost: dec("4500.00")},
		{VehicleID: vehicle.ID, PartName: "Exhaust", Status: models.StatusOrdered, Cost: dec("800.00")},
	}
	if err := db.Create(&upgrades).Error; err != nil {
		t.Fatalf("create upgrades: %v", err)
	}

	total, err = UpgradeTotal(db, vehicle.ID)
	if err != nil {
		t.Fatalf("UpgradeTotal() error = %v", err)
	}
	if !total.Equal(dec("1500.00")) {
		t.Fatalf("UpgradeTotal() = %s, want 1500.00", total)
	}
}

func TestBuildSummaryNotFound(t *testing.T) {
	db := setupDB(t)

	_, err := GetBuildSummary(db, 9999)
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("GetBuildSummary() error = %v, want record not found", err)
	}
}

func TestBuildSummaryFinancials(t *testing.T) {
	db := setupDB(t)
	purchase := dec("15000.00")
	vehicle := seedVehicle(t, db, &purchase, dec("20000.00"))

	service := models.ServiceRecord{VehicleID: vehicle.ID, Date: time.Now(), Vendor: "Shop", TotalCost: dec("1000.00"), IsVerified: true}
	if err := db.Create(&service).Error; err != nil {
		t.Fatalf("create record: %v", err)
	}
	upgrade := models.Upgrade{VehicleID: vehicle.ID, PartName: "Wheels", Status: models.StatusInstalled, Cost: dec("2000.00")}
	if err := db.Create(&upgrade).Error; err != nil {
		t.Fatalf("create upgrade: %v", err)
	}

	summary, err := GetBuildSummary(db, vehicle.ID)
	if err != nil {
		t.Fatalf("GetBuildSummary() error = %v", err)
	}

	if !summary.TotalInvestment.Equal(dec("18000.00")) {
		t.Fatalf("TotalInvestment = %s, want 18000.00", summary.TotalInvestment)
	}
	if !summary.Equity.Equal(dec("2000.00")) {
		t.Fatalf("Equity = %s, want 2000.00", summary.Equity)
	}
	if !summary.IsProfitable {
		t.Fatalf("IsProfitable = false, want true with positive equity")
	}
	if summary.LatestGrade != nil {
		t.Fatalf("LatestGrade = %v, want nil with no reports", *summary.LatestGrade)
	}

	// Investment identity: maintenance + upgrades + purchase
	want := summary.MaintenanceTotal.Add(summary.UpgradeTotal).Add(purchase)
	if !summary.TotalInvestment.Equal(want) {
		t.Fatalf("TotalInvestment = %s, want %s", summary.TotalInvestment, want)
	}
}

func TestBuildSummaryMissingPurchasePriceTreatedAsZero(t *testing.T) {
	db := setupDB(t)
	vehicle := seedVehicle(t, db, nil, dec("5000.00"))

	summary, err := GetBuildSummary(db, vehicle.ID)
	if err != nil {
		t.Fatalf("GetBuildSummary() error = %v", err)
	}
	if !summary.TotalInvestment.IsZero() {
		t.Fatalf("TotalInvestment = %s, want 0", summary.TotalInvestment)
	}
	if !summary.Equity.Equal(dec("5000.00")) {
		t.Fatalf("Equity = %s, want 5000.00", summary.Equity)
	}
}

func TestBuildSummaryLatestGrade(t *testing.T) {
	db := setupDB(t)
	vehicle := seedVehicle(t, db, nil, decimal.Zero)

	older := models.ConditionReport{VehicleID: vehicle.ID, Area: models.AreaExterior, Grade: 6.5, CreatedAt: time.Now().Add(-time.Hour)}
	newer := models.ConditionReport{VehicleID: vehicle.ID, Area: models.AreaInterior, Grade: 8.0, CreatedAt: time.Now()}
	if err := db.Create(&older).Error; err != nil {
		t.Fatalf("create report: %v", err)
	}
	if err := db.Create(&newer).Error; err != nil {
		t.Fatalf("create report: %v", err)
	}

	summary, err := GetBuildSummary(db, vehicle.ID)
	if err != nil {
		t.Fatalf("GetBuildSummary() error = %v", err)
	}
	if summary.LatestGrade == nil || *summary.LatestGrade != 8.0 {
		t.Fatalf("LatestGrade = %v, want 8.0", summary.LatestGrade)
	}
}

func TestWishlistItemsSortedAndScoped(t *testing.T) {
	db := setupDB(t)
	vehicle := seedVehicle(t, db, nil, decimal.Zero)
	other := models.Vehicle{OwnerID: vehicle.OwnerID, Make: "Honda", Model: "Civic", Year: 2020}
	if err := db.Create(&other).Error; err != nil {
		t.Fatalf("create vehicle: %v", err)
	}

	upgrades := []models.Upgrade{
		{VehicleID: vehicle.ID, PartName: "Zeta shifter", Status: models.StatusWishlist},
		{VehicleID: vehicle.ID, PartName: "Air filter", Status: models.StatusWishlist},
		{VehicleID: vehicle.ID, PartName: "Muffler", Status: models.StatusInstalled},
		{VehicleID: other.ID, PartName: "Brakes", Status: models.StatusWishlist},
	}
	if err := db.Create(&upgrades).Error; err != nil {
		t.Fatalf("create upgrades: %v", err)
	}

	items, err := WishlistItems(db, vehicle.ID)
	if err != nil {
		t.Fatalf("WishlistItems() error = %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("WishlistItems() len = %d, want 2", len(items))
	}
	if items[0].PartName != "Air filter" || items[1].PartName != "Zeta shifter" {
		t.Fatalf("WishlistItems() order = [%s, %s], want part name ascending", items[0].PartName, items[1].PartName)
	}
}

func TestPendingServiceCount(t *testing.T) {
	db := setupDB(t)
	vehicle := seedVehicle(t, db, nil, decimal.Zero)

	records := []models.ServiceRecord{
		{VehicleID: vehicle.ID, Date: time.Now(), Vendor: models.VendorProcessing, IsVerified: false},
		{VehicleID: vehicle.ID, Date: time.Now(), Vendor: models.VendorProcessing, IsVerified: false},
		{VehicleID: vehicle.ID, Date: time.Now(), Vendor: "Done", IsVerified: true},
	}
	if err := db.Create(&records).Error; err != nil {
		t.Fatalf("create records: %v", err)
	}

	count, err := PendingServiceCount(db, vehicle.ID)
	if err != nil {
		t.Fatalf("PendingServiceCount() error = %v", err)
	}
	if count != 2 {
		t.Fatalf("PendingServiceCount() = %d, want 2", count)
	}
}

func TestGarageValue(t *testing.T) {
	db := setupDB(t)
	vehicle := seedVehicle(t, db, nil, dec("20000.00"))
	second := models.Vehicle{OwnerID: vehicle.OwnerID, Make: "Honda", Model: "Civic", Year: 2020, CurrentMarketValue: dec("12500.00")}
	if err := db.Create(&second).Error; err != nil {
		t.Fatalf("create vehicle: %v", err)
	}

	total, err := GarageValue(db, vehicle.OwnerID)
	if err != nil {
		t.Fatalf("GarageValue() error = %v", err)
	}
	if !total.Equal(dec("32500.00")) {
		t.Fatalf("GarageValue() = %s, want 32500.00", total)
	}
}
