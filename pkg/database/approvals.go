package database

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/arnavshah/clinic-scheduler-api/pkg/models"
)

// ErrApprovalNotFound is returned when no stored request has the given id.
var ErrApprovalNotFound = errors.New("database: approval not found")

// ApprovalDecision represents the approval_decisions table: one row per
// request id and schedule date.
type ApprovalDecision struct {
	ID        uint                  `gorm:"primaryKey" json:"-"`
	Date      string                `gorm:"uniqueIndex:idx_date_request;not null" json:"date"`
	RequestID string                `gorm:"uniqueIndex:idx_date_request;not null" json:"id"`
	Type      models.ApprovalType   `gorm:"not null" json:"type"`
	Status    models.ApprovalStatus `gorm:"not null;default:pending" json:"status"`
	ClientID  string                `json:"client_id"`
	StaffID   string                `json:"staff_id"`
	Block     models.Block          `json:"block"`
	Reason    string                `json:"reason"`
	DecidedBy string                `json:"decided_by,omitempty"`
	UpdatedAt time.Time             `json:"updated_at"`
}

// Request converts the row back to the engine's type.
func (d ApprovalDecision) Request() models.ApprovalRequest {
	return models.ApprovalRequest{
		ID:       d.RequestID,
		Type:     d.Type,
		Status:   d.Status,
		ClientID: d.ClientID,
		StaffID:  d.StaffID,
		Block:    d.Block,
		Reason:   d.Reason,
	}
}

// LoadApprovals returns the stored requests for a schedule date.
func LoadApprovals(db *gorm.DB, date string) ([]models.ApprovalRequest, error) {
	var rows []ApprovalDecision
	if err := db.Where("date = ?", date).Order("request_id").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("database: load approvals %s: %w", date, err)
	}
	out := make([]models.ApprovalRequest, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.Request())
	}
	return out, nil
}

// SaveApprovals replaces the stored requests for a date with reqs. Requests
// no longer produced are removed.
func SaveApprovals(db *gorm.DB, date string, reqs []models.ApprovalRequest) error {
	return db.Transaction(func(tx *gorm.DB) error {
		ids := make([]string, 0, len(reqs))
		for _, r := range reqs {
			ids = append(ids, r.ID)
			row := ApprovalDecision{
				Date:      date,
				RequestID: r.ID,
				Type:      r.Type,
				Status:    r.Status,
				ClientID:  r.ClientID,
				StaffID:   r.StaffID,
				Block:     r.Block,
				Reason:    r.Reason,
			}
			err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "date"}, {Name: "request_id"}},
				DoUpdates: clause.AssignmentColumns([]string{"status", "reason", "updated_at"}),
			}).Create(&row).Error
			if err != nil {
				return fmt.Errorf("database: save approval %s: %w", r.ID, err)
			}
		}

		stale := tx.Where("date = ?", date)
		if len(ids) > 0 {
			stale = stale.Where("request_id NOT IN ?", ids)
		}
		if err := stale.Delete(&ApprovalDecision{}).Error; err != nil {
			return fmt.Errorf("database: prune approvals %s: %w", date, err)
		}
		return nil
	})
}

// DecideApproval records an approve or deny decision on a stored request.
func DecideApproval(db *gorm.DB, date, requestID string, status models.ApprovalStatus, by string) (*ApprovalDecision, error) {
	var row ApprovalDecision
	if err := db.Where("date = ? AND request_id = ?", date, requestID).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrApprovalNotFound, requestID)
		}
		return nil, fmt.Errorf("database: get approval %s: %w", requestID, err)
	}
	row.Status = status
	row.DecidedBy = by
	if err := db.Save(&row).Error; err != nil {
		return nil, fmt.Errorf("database: decide approval %s: %w", requestID, err)
	}
	return &row, nil
}
