package verification

import (
	"time"
)

// ScanPayload is what the detection/OCR pipeline hands over for one scan.
type ScanPayload struct {
	ScannedText string                 `json:"scanned_text"`
	Confidence  float64                `json:"confidence"`
	SnapshotURL string                 `json:"snapshot_url,omitempty"`
	Details     map[string]interface{} `json:"details,omitempty"`
}

type OwnerInfo struct {
	OwnerID           string `json:"owner_id"`
	DisplayName       string `json:"display_name"`
	VehicleDescriptor string `json:"vehicle_descriptor,omitempty"`
	PlateKey          string `json:"plate_key"`
}

// Result is the outcome of a single verification call. Owner is nil when
// no registry record matched; Message carries the human-readable summary
// shown at the gate.
type Result struct {
	AttemptID    int64      `json:"attempt_id"`
	MatchFound   bool       `json:"match_found"`
	Owner        *OwnerInfo `json:"owner_info"`
	ScannedPlate string     `json:"scanned_plate"`
	Confidence   float64    `json:"confidence"`
	Message      string     `json:"message"`
	ScanTime     time.Time  `json:"scan_time"`
}
