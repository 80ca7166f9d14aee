package database

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/arnavshah/clinic-scheduler-api/pkg/config"
	"github.com/arnavshah/clinic-scheduler-api/pkg/models"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("test db handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	if err := db.AutoMigrate(Models...); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return db
}

func request(id string, status models.ApprovalStatus) models.ApprovalRequest {
	return models.ApprovalRequest{ID: id, Type: models.ApprovalSub, Status: status, ClientID: "c1", StaffID: "ben", Block: models.BlockAM}
}

func TestInitDBSQLiteFile(t *testing.T) {
	cfg := &config.Config{DataPath: t.TempDir() + "/clinic.db"}
	db, err := InitDB(cfg)
	require.NoError(t, err)
	assert.True(t, db.Migrator().HasTable(&ApprovalDecision{}))
}

func TestSaveAndLoadApprovals(t *testing.T) {
	db := openTestDB(t)
	const date = "2026-10-12"

	require.NoError(t, SaveApprovals(db, date, []models.ApprovalRequest{request("a", models.StatusPending), request("b", models.StatusPending)}))
	got, err := LoadApprovals(db, date)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, request("a", models.StatusPending), got[0])

	other, err := LoadApprovals(db, "2026-10-13")
	require.NoError(t, err)
	assert.Empty(t, other, "dates are independent")

	require.NoError(t, SaveApprovals(db, date, []models.ApprovalRequest{request("b", models.StatusApproved)}))
	got, err = LoadApprovals(db, date)
	require.NoError(t, err)
	require.Len(t, got, 1, "requests no longer produced are dropped")
	assert.Equal(t, models.StatusApproved, got[0].Status)
}

func TestDecideApproval(t *testing.T) {
	db := openTestDB(t)
	const date = "2026-10-12"
	require.NoError(t, SaveApprovals(db, date, []models.ApprovalRequest{request("a", models.StatusPending)}))

	row, err := DecideApproval(db, date, "a", models.StatusDenied, "admin")
	require.NoError(t, err)
	assert.Equal(t, models.StatusDenied, row.Status)
	assert.Equal(t, "admin", row.DecidedBy)

	got, err := LoadApprovals(db, date)
	require.NoError(t, err)
	assert.Equal(t, models.StatusDenied, got[0].Status)

	_, err = DecideApproval(db, date, "missing", models.StatusApproved, "admin")
	assert.True(t, errors.Is(err, ErrApprovalNotFound))
}

func TestRecordUsageUpserts(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, RecordUsage(db, 7, 3, 5))
	require.NoError(t, RecordUsage(db, 7, 2, 1))

	usage, err := UsageHistory(db, 7)
	require.NoError(t, err)
	require.Len(t, usage, 1)
	assert.Equal(t, 2, usage[0].RequestCount)
	assert.Equal(t, 5, usage[0].TotalStaff)
	assert.Equal(t, 6, usage[0].TotalClients)
}
