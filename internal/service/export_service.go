package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"

	"verification-service/internal/model"
)

// exportAttemptsLimit bounds one workbook; the audit log itself is unbounded.
const exportAttemptsLimit = 10000

type ExportService struct {
	owners   OwnerStore
	attempts AttemptStore
	log      zerolog.Logger
}

func NewExportService(owners OwnerStore, attempts AttemptStore, log zerolog.Logger) *ExportService {
	return &ExportService{
		owners:   owners,
		attempts: attempts,
		log:      log,
	}
}

// OwnersWorkbook builds an .xlsx of the full registry. Owner data carries
// personal information, so only security admins may export it.
func (s *ExportService) OwnersWorkbook(ctx context.Context, principal model.Principal) (*excelize.File, error) {
	if !principal.IsSecurityAdmin() {
		return nil, ErrPermissionDenied
	}

	owners, err := s.owners.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list owners for export: %w", err)
	}

	f := excelize.NewFile()
	const sheet = "Owners"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, fmt.Errorf("failed to prepare workbook: %w", err)
	}

	header := []interface{}{"Owner ID", "Name", "Vehicle", "Plate", "Registered At"}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return nil, fmt.Errorf("failed to write workbook header: %w", err)
	}

	for i := range owners {
		owner := &owners[i]
		descriptor := ""
		if owner.VehicleDescriptor != nil {
			descriptor = *owner.VehicleDescriptor
		}
		row := []interface{}{
			owner.OwnerID,
			owner.DisplayName,
			descriptor,
			owner.PlateKey,
			owner.CreatedAt.Format(time.RFC3339),
		}
		cell := fmt.Sprintf("A%d", i+2)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return nil, fmt.Errorf("failed to write workbook row: %w", err)
		}
	}

	_ = f.SetColWidth(sheet, "A", "E", 20)

	s.log.Info().
		Str("user_id", principal.UserID.String()).
		Int("owners", len(owners)).
		Msg("owners workbook exported")

	return f, nil
}

// AttemptsWorkbook builds an .xlsx of the audit history, optionally
// bounded by an RFC3339 time window.
func (s *ExportService) AttemptsWorkbook(ctx context.Context, principal model.Principal, from, to *string) (*excelize.File, error) {
	if !principal.IsSecurityStaff() {
		return nil, ErrPermissionDenied
	}

	var fromTime, toTime *time.Time
	if from != nil && *from != "" {
		t, err := time.Parse(time.RFC3339, *from)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid from time format", ErrInvalidInput)
		}
		fromTime = &t
	}
	if to != nil && *to != "" {
		t, err := time.Parse(time.RFC3339, *to)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid to time format", ErrInvalidInput)
		}
		toTime = &t
	}

	attempts, err := s.attempts.Find(ctx, nil, fromTime, toTime, exportAttemptsLimit, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to load attempts for export: %w", err)
	}

	f := excelize.NewFile()
	const sheet = "Attempts"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, fmt.Errorf("failed to prepare workbook: %w", err)
	}

	header := []interface{}{"Attempt ID", "Scanned At", "Raw Text", "Plate", "Match", "Owner ID", "Confidence", "Snapshot"}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return nil, fmt.Errorf("failed to write workbook header: %w", err)
	}

	for i := range attempts {
		attempt := &attempts[i]
		row := []interface{}{
			attempt.ID,
			attempt.ScanTimestamp.Format(time.RFC3339),
			attempt.RawText,
			attempt.ScannedPlate,
			attempt.MatchFound,
			derefString(attempt.MatchedOwnerID),
			attempt.Confidence,
			derefString(attempt.SnapshotURL),
		}
		cell := fmt.Sprintf("A%d", i+2)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return nil, fmt.Errorf("failed to write workbook row: %w", err)
		}
	}

	_ = f.SetColWidth(sheet, "A", "H", 20)

	s.log.Info().
		Str("user_id", principal.UserID.String()).
		Int("attempts", len(attempts)).
		Msg("attempts workbook exported")

	return f, nil
}

func derefString(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}
