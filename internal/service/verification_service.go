package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"verification-service/internal/domain/verification"
	"verification-service/internal/repository"
	"verification-service/internal/utils"
)

var (
	ErrInvalidInput     = errors.New("invalid input")
	ErrNotFound         = errors.New("not found")
	ErrDuplicateKey     = errors.New("duplicate key")
	ErrPermissionDenied = errors.New("permission denied")
)

type VerificationService struct {
	owners   OwnerStore
	attempts AttemptStore
	log      zerolog.Logger
}

func NewVerificationService(owners OwnerStore, attempts AttemptStore, log zerolog.Logger) *VerificationService {
	return &VerificationService{
		owners:   owners,
		attempts: attempts,
		log:      log,
	}
}

// Verify runs one scan through the pipeline: normalize, look up the
// registry, append the audit entry, build the result. Exactly one audit
// entry is written per call, whatever the outcome, and it is durable
// before the result is returned. A store failure propagates as an error;
// it is never reported as a no-match.
func (s *VerificationService) Verify(ctx context.Context, payload verification.ScanPayload) (*verification.Result, error) {
	plateKey := utils.NormalizePlate(payload.ScannedText)
	confidence := clampConfidence(payload.Confidence)

	var owner *repository.Owner
	if plateKey != "" {
		found, err := s.owners.FindByPlateKey(ctx, plateKey)
		switch {
		case err == nil:
			owner = found
		case errors.Is(err, gorm.ErrRecordNotFound):
			// no match, still logged below
		default:
			s.log.Error().
				Err(err).
				Str("plate", plateKey).
				Msg("registry lookup failed during verification")
			return nil, fmt.Errorf("failed to look up plate: %w", err)
		}
	}

	attempt := &repository.VerificationAttempt{
		RawText:      payload.ScannedText,
		ScannedPlate: plateKey,
		MatchFound:   owner != nil,
		Confidence:   confidence,
	}
	if owner != nil {
		ownerID := owner.OwnerID
		attempt.MatchedOwnerID = &ownerID
	}
	if payload.SnapshotURL != "" {
		snapshotURL := payload.SnapshotURL
		attempt.SnapshotURL = &snapshotURL
	}
	if len(payload.Details) > 0 {
		raw, err := json.Marshal(payload.Details)
		if err != nil {
			return nil, fmt.Errorf("%w: details are not serializable", ErrInvalidInput)
		}
		attempt.Details = datatypes.JSON(raw)
	}

	if err := s.attempts.Append(ctx, attempt); err != nil {
		s.log.Error().
			Err(err).
			Str("plate", plateKey).
			Bool("match_found", attempt.MatchFound).
			Msg("failed to record verification attempt")
		return nil, fmt.Errorf("failed to record verification attempt: %w", err)
	}

	result := &verification.Result{
		AttemptID:    attempt.ID,
		MatchFound:   owner != nil,
		ScannedPlate: plateKey,
		Confidence:   confidence,
		ScanTime:     attempt.ScanTimestamp,
	}
	if owner != nil {
		info := verification.OwnerInfo{
			OwnerID:     owner.OwnerID,
			DisplayName: owner.DisplayName,
			PlateKey:    owner.PlateKey,
		}
		if owner.VehicleDescriptor != nil {
			info.VehicleDescriptor = *owner.VehicleDescriptor
		}
		result.Owner = &info
		result.Message = fmt.Sprintf("Match found: %s (%s)", owner.DisplayName, owner.OwnerID)
	} else {
		result.Message = fmt.Sprintf("No record found for plate: %s", plateKey)
	}

	s.log.Info().
		Int64("attempt_id", attempt.ID).
		Str("plate", plateKey).
		Str("raw_text", payload.ScannedText).
		Bool("match_found", result.MatchFound).
		Float64("confidence", confidence).
		Msg("verification attempt recorded")

	return result, nil
}

// RecentAttempts returns the newest audit entries, most recent first.
func (s *VerificationService) RecentAttempts(ctx context.Context, limit int) ([]AttemptInfo, error) {
	return s.FindAttempts(ctx, nil, nil, nil, limit, 0)
}

// FindAttempts pages through the audit log, optionally filtered by plate
// query and RFC3339 time window.
func (s *VerificationService) FindAttempts(ctx context.Context, plateQuery *string, from, to *string, limit, offset int) ([]AttemptInfo, error) {
	var scannedPlate *string
	if plateQuery != nil {
		plateKey := utils.NormalizePlate(*plateQuery)
		if plateKey != "" {
			scannedPlate = &plateKey
		}
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

	if limit <= 0 {
		limit = 50
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}

	attempts, err := s.attempts.Find(ctx, scannedPlate, fromTime, toTime, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to find attempts: %w", err)
	}

	result := make([]AttemptInfo, 0, len(attempts))
	for i := range attempts {
		result = append(result, toAttemptInfo(&attempts[i]))
	}
	return result, nil
}

// Stats summarizes the whole audit log.
func (s *VerificationService) Stats(ctx context.Context) (*AttemptStats, error) {
	total, matched, err := s.attempts.Stats(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compute attempt stats: %w", err)
	}

	stats := &AttemptStats{
		TotalScans: total,
		Matches:    matched,
	}
	if total > 0 {
		stats.MatchRate = float64(matched) / float64(total)
	}
	return stats, nil
}

func clampConfidence(value float64) float64 {
	if value < 0 {
		return 0
	}
	if value > 1 {
		return 1
	}
	return value
}

func toAttemptInfo(attempt *repository.VerificationAttempt) AttemptInfo {
	info := AttemptInfo{
		AttemptID:      attempt.ID,
		RawText:        attempt.RawText,
		ScannedPlate:   attempt.ScannedPlate,
		MatchedOwnerID: attempt.MatchedOwnerID,
		MatchFound:     attempt.MatchFound,
		Confidence:     attempt.Confidence,
		SnapshotURL:    attempt.SnapshotURL,
		ScanTimestamp:  attempt.ScanTimestamp,
	}
	if len(attempt.Details) > 0 {
		var details map[string]interface{}
		if err := json.Unmarshal(attempt.Details, &details); err == nil {
			info.Details = details
		}
	}
	return info
}

type AttemptInfo struct {
	AttemptID      int64                  `json:"attempt_id"`
	RawText        string                 `json:"raw_text"`
	ScannedPlate   string                 `json:"scanned_plate"`
	MatchedOwnerID *string                `json:"matched_owner_id,omitempty"`
	MatchFound     bool                   `json:"match_found"`
	Confidence     float64                `json:"confidence"`
	SnapshotURL    *string                `json:"snapshot_url,omitempty"`
	Details        map[string]interface{} `json:"details,omitempty"`
	ScanTimestamp  time.Time              `json:"scan_timestamp"`
}

type AttemptStats struct {
	TotalScans int64   `json:"total_scans"`
	Matches    int64   `json:"matches"`
	MatchRate  float64 `json:"match_rate"`
}
