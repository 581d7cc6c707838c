package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type AttemptRepository struct {
	db *gorm.DB
}

func NewAttemptRepository(db *gorm.DB) *AttemptRepository {
	return &AttemptRepository{db: db}
}

func (VerificationAttempt) TableName() string {
	return "verification_attempts"
}

// VerificationAttempt is one append-only audit row. The BIGSERIAL id is
// the attempt id: assignment is serialized by Postgres, so concurrent
// appends get distinct, insertion-ordered ids. MatchedOwnerID is a value
// copy, not a foreign key.
type VerificationAttempt struct {
	ID             int64  `gorm:"primaryKey"`
	RawText        string `gorm:"not null"`
	ScannedPlate   string `gorm:"not null"`
	MatchedOwnerID *string
	MatchFound     bool           `gorm:"not null"`
	Confidence     float64        `gorm:"not null"`
	SnapshotURL    *string
	Details        datatypes.JSON `gorm:"type:jsonb"`
	ScanTimestamp  time.Time
}

// Append durably stores one attempt and fills in the assigned id.
// There is no update or delete path on this table.
func (r *AttemptRepository) Append(ctx context.Context, attempt *VerificationAttempt) error {
	if attempt.ScanTimestamp.IsZero() {
		attempt.ScanTimestamp = time.Now().UTC()
	}
	if err := r.db.WithContext(ctx).Create(attempt).Error; err != nil {
		return fmt.Errorf("failed to append verification attempt: %w", err)
	}
	return nil
}

// Find returns attempts most recent first, optionally filtered by
// canonical plate and scan-time window.
func (r *AttemptRepository) Find(ctx context.Context, scannedPlate *string, from, to *time.Time, limit, offset int) ([]VerificationAttempt, error) {
	query := r.db.WithContext(ctx).Model(&VerificationAttempt{})

	if scannedPlate != nil {
		query = query.Where("scanned_plate = ?", *scannedPlate)
	}
	if from != nil {
		query = query.Where("scan_timestamp >= ?", *from)
	}
	if to != nil {
		query = query.Where("scan_timestamp <= ?", *to)
	}

	query = query.Order("id DESC")

	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	var attempts []VerificationAttempt
	err := query.Find(&attempts).Error
	return attempts, err
}

// Stats counts all attempts and how many of them matched.
func (r *AttemptRepository) Stats(ctx context.Context) (total int64, matched int64, err error) {
	if err = r.db.WithContext(ctx).Model(&VerificationAttempt{}).Count(&total).Error; err != nil {
		return 0, 0, err
	}
	if err = r.db.WithContext(ctx).Model(&VerificationAttempt{}).Where("match_found = ?", true).Count(&matched).Error; err != nil {
		return 0, 0, err
	}
	return total, matched, nil
}
