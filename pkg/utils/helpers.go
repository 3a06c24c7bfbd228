package utils

import (
	"github.com/google/uuid"
)

// GenerateRunID generates a unique run ID for tracking
func GenerateRunID() string {
	return uuid.New().String()
}
