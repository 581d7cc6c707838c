package service

import (
	"context"
	"time"

	"verification-service/internal/repository"
)

// OwnerStore is the persistence interface for the owner registry.
// Plate keys are already canonical when they reach the store.
type OwnerStore interface {
	// Insert persists a new owner; a uniqueness violation on owner_id or
	// plate_key surfaces as gorm.ErrDuplicatedKey.
	Insert(ctx context.Context, owner *repository.Owner) error

	// FindByOwnerID returns gorm.ErrRecordNotFound when absent.
	FindByOwnerID(ctx context.Context, ownerID string) (*repository.Owner, error)

	// FindByPlateKey matches exactly against stored canonical keys.
	FindByPlateKey(ctx context.Context, plateKey string) (*repository.Owner, error)

	// List returns all owners in insertion order.
	List(ctx context.Context) ([]repository.Owner, error)

	// DeleteByOwnerID reports how many rows were removed.
	DeleteByOwnerID(ctx context.Context, ownerID string) (int64, error)
}

// AttemptStore is the persistence interface for the append-only audit log.
type AttemptStore interface {
	// Append durably stores one attempt and assigns its id and timestamp.
	Append(ctx context.Context, attempt *repository.VerificationAttempt) error

	// Find returns attempts most recent first with optional plate/time filters.
	Find(ctx context.Context, scannedPlate *string, from, to *time.Time, limit, offset int) ([]repository.VerificationAttempt, error)

	// Stats counts all attempts and the matched subset.
	Stats(ctx context.Context) (total int64, matched int64, err error)
}
