package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

// OwnerPayload структура для регистрации владельца
type OwnerPayload struct {
	OwnerID           string `json:"owner_id"`
	DisplayName       string `json:"display_name"`
	VehicleDescriptor string `json:"vehicle_descriptor"`
	Plate             string `json:"plate"`
}

// Sample records from the campus pilot rollout.
var sampleOwners = []OwnerPayload{
	{OwnerID: "STU001", DisplayName: "John Doe", VehicleDescriptor: "Silver", Plate: "ABC1234"},
	{OwnerID: "STU002", DisplayName: "Jane Smith", VehicleDescriptor: "Blue", Plate: "XYZ9876"},
	{OwnerID: "STU003", DisplayName: "Michael Johnson", VehicleDescriptor: "Black", Plate: "LMN5555"},
	{OwnerID: "STU004", DisplayName: "Sarah Williams", VehicleDescriptor: "Red", Plate: "PQR7890"},
	{OwnerID: "STU005", DisplayName: "David Brown", VehicleDescriptor: "White", Plate: "DEF4321"},
	{OwnerID: "STU006", DisplayName: "Emma Davis", VehicleDescriptor: "Gray", Plate: "GHI6789"},
}

func main() {
	baseURL := flag.String("base", "http://localhost:8080", "verification service base URL")
	flag.Parse()

	fmt.Printf("Seeding %d sample owners into %s\n", len(sampleOwners), *baseURL)

	successCount := 0
	skippedCount := 0
	failCount := 0

	for _, owner := range sampleOwners {
		status, err := registerOwner(*baseURL, owner)
		switch {
		case err != nil:
			fmt.Printf("  ✗ %s (%s): %v\n", owner.OwnerID, owner.Plate, err)
			failCount++
		case status == http.StatusCreated:
			fmt.Printf("  ✓ %s %s -> %s\n", owner.OwnerID, owner.DisplayName, owner.Plate)
			successCount++
		case status == http.StatusConflict:
			fmt.Printf("  ⊘ %s already registered, skipping\n", owner.OwnerID)
			skippedCount++
		default:
			fmt.Printf("  ✗ %s: unexpected status %d\n", owner.OwnerID, status)
			failCount++
		}
	}

	fmt.Printf("\nDone: %d created, %d skipped, %d failed\n", successCount, skippedCount, failCount)
	if failCount > 0 {
		os.Exit(1)
	}
}

func registerOwner(baseURL string, owner OwnerPayload) (int, error) {
	payload, err := json.Marshal(owner)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal payload: %w", err)
	}

	url := fmt.Sprintf("%s/api/v1/owners", baseURL)
	req, err := http.NewRequest("POST", url, bytes.NewReader(payload))
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	client := &http.Client{Timeout: 15 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusConflict {
		body, _ := io.ReadAll(resp.Body)
		return resp.StatusCode, fmt.Errorf("unexpected status code %d: %s", resp.StatusCode, string(body))
	}

	return resp.StatusCode, nil
}
