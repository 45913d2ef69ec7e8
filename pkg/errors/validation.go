package errors

import (
	"strconv"
	"strings"
	"unicode"
)

// MaxTaskNameLength is the longest task name accepted by [ValidateTaskName], in bytes.
const MaxTaskNameLength = 256

// ValidateTaskName validates a task name supplied by a user.
//
// The graph model itself accepts any text; this check is applied at the
// edges (CLI, TUI) so stored names stay printable:
//   - No empty or whitespace-only names
//   - No control characters (including newlines and null bytes)
//   - Maximum length of 256 bytes
func ValidateTaskName(name string) error {
	if strings.TrimSpace(name) == "" {
		return New(ErrCodeInvalidInput, "task name cannot be empty")
	}

	if len(name) > MaxTaskNameLength {
		return New(ErrCodeInvalidInput, "task name too long (max %d characters)", MaxTaskNameLength)
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "task name contains invalid control characters")
		}
	}

	return nil
}

// ParseTaskID parses a task id given on the command line or in a URL.
// Ids are non-negative decimal integers.
func ParseTaskID(s string) (int, error) {
	id, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, Wrap(ErrCodeInvalidInput, err, "invalid task id %q", s)
	}
	if id < 0 {
		return 0, New(ErrCodeInvalidInput, "task id must not be negative: %d", id)
	}
	return id, nil
}
