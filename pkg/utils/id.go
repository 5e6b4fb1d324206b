package utils

import (
	"fmt"

	"github.com/google/uuid"
)

// GenerateSessionID generates a unique session ID
func GenerateSessionID() string {
	return fmt.Sprintf("session_%s", uuid.NewString())
}
