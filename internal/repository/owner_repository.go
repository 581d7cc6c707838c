package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
)

type OwnerRepository struct {
	db *gorm.DB
}

func NewOwnerRepository(db *gorm.DB) *OwnerRepository {
	return &OwnerRepository{db: db}
}

func (Owner) TableName() string {
	return "owners"
}

// Owner is a registry record. PlateKey is always the canonical form;
// the repository never re-normalizes. The BIGSERIAL id doubles as the
// insertion-order cursor for listing.
type Owner struct {
	ID                int64  `gorm:"primaryKey"`
	OwnerID           string `gorm:"not null;uniqueIndex"`
	DisplayName       string `gorm:"not null"`
	VehicleDescriptor *string
	PlateKey          string `gorm:"not null;uniqueIndex"`
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// Insert persists a new owner. The unique indexes on owner_id and
// plate_key are the serialization point for concurrent registrations;
// a violation surfaces as gorm.ErrDuplicatedKey.
func (r *OwnerRepository) Insert(ctx context.Context, owner *Owner) error {
	if err := r.db.WithContext(ctx).Create(owner).Error; err != nil {
		return fmt.Errorf("failed to insert owner: %w", err)
	}
	return nil
}

func (r *OwnerRepository) FindByOwnerID(ctx context.Context, ownerID string) (*Owner, error) {
	var owner Owner
	err := r.db.WithContext(ctx).Where("owner_id = ?", ownerID).First(&owner).Error
	if err != nil {
		return nil, err
	}
	return &owner, nil
}

// FindByPlateKey does an exact, case-sensitive match on stored keys.
func (r *OwnerRepository) FindByPlateKey(ctx context.Context, plateKey string) (*Owner, error) {
	var owner Owner
	err := r.db.WithContext(ctx).Where("plate_key = ?", plateKey).First(&owner).Error
	if err != nil {
		return nil, err
	}
	return &owner, nil
}

// List returns all owners in insertion order.
func (r *OwnerRepository) List(ctx context.Context) ([]Owner, error) {
	var owners []Owner
	err := r.db.WithContext(ctx).Order("id ASC").Find(&owners).Error
	return owners, err
}

// DeleteByOwnerID removes one owner and reports how many rows went away.
// Audit entries referencing the owner are untouched.
func (r *OwnerRepository) DeleteByOwnerID(ctx context.Context, ownerID string) (int64, error) {
	result := r.db.WithContext(ctx).Where("owner_id = ?", ownerID).Delete(&Owner{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to delete owner: %w", result.Error)
	}
	return result.RowsAffected, nil
}
