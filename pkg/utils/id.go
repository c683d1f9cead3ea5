package utils

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// GenerateRunID generates a run ID with a timestamp prefix
func GenerateRunID() string {
	timestamp := time.Now().UTC().Format("20060102-150405")
	return fmt.Sprintf("run-%s-%s", timestamp, uuid.NewString()[:8])
}

// ValidateRunID rejects IDs that would be ambiguous in HTTP paths
func ValidateRunID(runID string) error {
	if runID == "" {
		return fmt.Errorf("run id cannot be empty")
	}
	if strings.ContainsAny(runID, "/:?# ") {
		return fmt.Errorf("run id %q cannot contain '/', ':', '?', '#' or spaces", runID)
	}
	return nil
}
