package database

import (
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RecordUsage counts one request for a key on today's row, using a single
// upsert supported by both Postgres and SQLite.
func RecordUsage(db *gorm.DB, keyID uint, staffCount, clientCount int) error {
	today := time.Now().Format("2006-01-02")
	err := db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "key_id"}, {Name: "date"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"request_count": gorm.Expr("request_count + ?", 1),
			"total_staff":   gorm.Expr("total_staff + ?", staffCount),
			"total_clients": gorm.Expr("total_clients + ?", clientCount),
		}),
	}).Create(&APIUsage{
		KeyID:        keyID,
		Date:         today,
		RequestCount: 1,
		TotalStaff:   staffCount,
		TotalClients: clientCount,
	}).Error
	if err != nil {
		return fmt.Errorf("database: record usage: %w", err)
	}
	return nil
}

// UsageHistory returns the last 30 days of usage for a key, newest first.
func UsageHistory(db *gorm.DB, keyID uint) ([]APIUsage, error) {
	var usage []APIUsage
	if err := db.Where("key_id = ?", keyID).Order("date desc").Limit(30).Find(&usage).Error; err != nil {
		return nil, fmt.Errorf("database: usage history: %w", err)
	}
	return usage, nil
}
