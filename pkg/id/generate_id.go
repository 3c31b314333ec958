package id

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// NewID32 returns exactly 32 hex characters (no separators/prefixes).
func NewID32() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// Sequence renders the n-th number of a zero padded sequence of the given
// width. Numbers wider than width are returned unpadded.
func Sequence(n int64, width int) string {
	return fmt.Sprintf("%0*d", width, n)
}
