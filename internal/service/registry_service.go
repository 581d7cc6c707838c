package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"verification-service/internal/repository"
	"verification-service/internal/utils"
)

type RegistryService struct {
	owners OwnerStore
	log    zerolog.Logger
}

func NewRegistryService(owners OwnerStore, log zerolog.Logger) *RegistryService {
	return &RegistryService{
		owners: owners,
		log:    log,
	}
}

type RegisterOwnerInput struct {
	OwnerID           string
	DisplayName       string
	VehicleDescriptor string
	Plate             string
}

// Register normalizes the submitted plate and stores a new owner record.
// Both uniqueness checks can fail independently; the duplicate reason is
// reported when it is known. The unique indexes remain the authoritative
// guard, so a concurrent duplicate that slips past the pre-checks still
// comes back as ErrDuplicateKey.
func (s *RegistryService) Register(ctx context.Context, input RegisterOwnerInput) (*OwnerRecord, error) {
	ownerID := strings.TrimSpace(input.OwnerID)
	displayName := strings.TrimSpace(input.DisplayName)
	if ownerID == "" {
		return nil, fmt.Errorf("%w: owner_id is required", ErrInvalidInput)
	}
	if displayName == "" {
		return nil, fmt.Errorf("%w: display_name is required", ErrInvalidInput)
	}

	plateKey := utils.NormalizePlate(input.Plate)
	if plateKey == "" {
		return nil, fmt.Errorf("%w: plate cannot be empty after normalization", ErrInvalidInput)
	}

	if _, err := s.owners.FindByOwnerID(ctx, ownerID); err == nil {
		return nil, fmt.Errorf("%w: owner id %s is already registered", ErrDuplicateKey, ownerID)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check owner id: %w", err)
	}

	if existing, err := s.owners.FindByPlateKey(ctx, plateKey); err == nil {
		return nil, fmt.Errorf("%w: plate %s is already registered to %s", ErrDuplicateKey, plateKey, existing.OwnerID)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check plate key: %w", err)
	}

	owner := &repository.Owner{
		OwnerID:     ownerID,
		DisplayName: displayName,
		PlateKey:    plateKey,
	}
	if descriptor := strings.TrimSpace(input.VehicleDescriptor); descriptor != "" {
		owner.VehicleDescriptor = &descriptor
	}

	if err := s.owners.Insert(ctx, owner); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("%w: owner id or plate is already registered", ErrDuplicateKey)
		}
		s.log.Error().
			Err(err).
			Str("owner_id", ownerID).
			Str("plate_key", plateKey).
			Msg("failed to register owner")
		return nil, fmt.Errorf("failed to register owner: %w", err)
	}

	s.log.Info().
		Str("owner_id", ownerID).
		Str("plate_key", plateKey).
		Msg("owner registered")

	record := toOwnerRecord(owner)
	return &record, nil
}

// Lookup resolves a plate query to the owner holding its canonical key.
func (s *RegistryService) Lookup(ctx context.Context, plateQuery string) (*OwnerRecord, error) {
	plateKey := utils.NormalizePlate(plateQuery)
	if plateKey == "" {
		return nil, fmt.Errorf("%w: plate query cannot be empty", ErrInvalidInput)
	}

	owner, err := s.owners.FindByPlateKey(ctx, plateKey)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to look up plate: %w", err)
	}

	record := toOwnerRecord(owner)
	return &record, nil
}

// List returns all registered owners in registration order.
func (s *RegistryService) List(ctx context.Context) ([]OwnerRecord, error) {
	owners, err := s.owners.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list owners: %w", err)
	}

	records := make([]OwnerRecord, 0, len(owners))
	for i := range owners {
		records = append(records, toOwnerRecord(&owners[i]))
	}
	return records, nil
}

// Remove deletes one owner. Existing audit entries that reference the
// owner keep their value copy of the id.
func (s *RegistryService) Remove(ctx context.Context, ownerID string) error {
	ownerID = strings.TrimSpace(ownerID)
	if ownerID == "" {
		return fmt.Errorf("%w: owner_id is required", ErrInvalidInput)
	}

	removed, err := s.owners.DeleteByOwnerID(ctx, ownerID)
	if err != nil {
		s.log.Error().Err(err).Str("owner_id", ownerID).Msg("failed to remove owner")
		return fmt.Errorf("failed to remove owner: %w", err)
	}
	if removed == 0 {
		return ErrNotFound
	}

	s.log.Info().Str("owner_id", ownerID).Msg("owner removed")
	return nil
}

func toOwnerRecord(owner *repository.Owner) OwnerRecord {
	record := OwnerRecord{
		OwnerID:      owner.OwnerID,
		DisplayName:  owner.DisplayName,
		PlateKey:     owner.PlateKey,
		RegisteredAt: owner.CreatedAt,
	}
	if owner.VehicleDescriptor != nil {
		record.VehicleDescriptor = *owner.VehicleDescriptor
	}
	return record
}

type OwnerRecord struct {
	OwnerID           string    `json:"owner_id"`
	DisplayName       string    `json:"display_name"`
	VehicleDescriptor string    `json:"vehicle_descriptor,omitempty"`
	PlateKey          string    `json:"plate_key"`
	RegisteredAt      time.Time `json:"registered_at"`
}
