package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"verification-service/internal/domain/verification"
	"verification-service/internal/model"
)

func TestOwnersWorkbookRequiresAdmin(t *testing.T) {
	owners := newMemOwnerStore()
	attempts := newMemAttemptStore()
	svc := NewExportService(owners, attempts, zerolog.Nop())

	officer := model.Principal{UserID: uuid.New(), Role: model.UserRoleSecurityOfficer}
	if _, err := svc.OwnersWorkbook(context.Background(), officer); !errors.Is(err, ErrPermissionDenied) {
		t.Errorf("OwnersWorkbook() as officer error = %v, want ErrPermissionDenied", err)
	}
}

func TestOwnersWorkbookContents(t *testing.T) {
	owners := newMemOwnerStore()
	attempts := newMemAttemptStore()
	svc := NewExportService(owners, attempts, zerolog.Nop())
	seedOwner(t, owners, "STU001", "John Doe", "ABC1234")

	admin := model.Principal{UserID: uuid.New(), Role: model.UserRoleSecurityAdmin}
	f, err := svc.OwnersWorkbook(context.Background(), admin)
	if err != nil {
		t.Fatalf("OwnersWorkbook() error = %v", err)
	}

	tests := []struct {
		cell string
		want string
	}{
		{"A1", "Owner ID"},
		{"D1", "Plate"},
		{"A2", "STU001"},
		{"B2", "John Doe"},
		{"D2", "ABC1234"},
	}
	for _, tt := range tests {
		got, err := f.GetCellValue("Owners", tt.cell)
		if err != nil {
			t.Fatalf("GetCellValue(%s) error = %v", tt.cell, err)
		}
		if got != tt.want {
			t.Errorf("cell %s = %q, want %q", tt.cell, got, tt.want)
		}
	}
}

func TestAttemptsWorkbookForOfficer(t *testing.T) {
	owners := newMemOwnerStore()
	attempts := newMemAttemptStore()
	verifier := NewVerificationService(owners, attempts, zerolog.Nop())
	svc := NewExportService(owners, attempts, zerolog.Nop())

	payload := verification.ScanPayload{ScannedText: "UNKNOWN99", Confidence: 0.7}
	if _, err := verifier.Verify(context.Background(), payload); err != nil {
		t.Fatalf("Verify() error = %v", err)
	}

	officer := model.Principal{UserID: uuid.New(), Role: model.UserRoleSecurityOfficer}
	f, err := svc.AttemptsWorkbook(context.Background(), officer, nil, nil)
	if err != nil {
		t.Fatalf("AttemptsWorkbook() error = %v", err)
	}

	got, err := f.GetCellValue("Attempts", "D2")
	if err != nil {
		t.Fatalf("GetCellValue(D2) error = %v", err)
	}
	if got != "UNKNOWN99" {
		t.Errorf("cell D2 = %q, want %q", got, "UNKNOWN99")
	}
}

func TestAttemptsWorkbookInvalidWindow(t *testing.T) {
	owners := newMemOwnerStore()
	attempts := newMemAttemptStore()
	svc := NewExportService(owners, attempts, zerolog.Nop())

	admin := model.Principal{UserID: uuid.New(), Role: model.UserRoleSecurityAdmin}
	from := "not-a-timestamp"
	if _, err := svc.AttemptsWorkbook(context.Background(), admin, &from, nil); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("AttemptsWorkbook() error = %v, want ErrInvalidInput", err)
	}
}
