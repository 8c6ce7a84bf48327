// Package collegeid handles the opaque tenant identifier on college
// documents. Some flows generate the id, some accept one typed by a
// platform admin; both forms must be accepted everywhere a college_id
// is matched.
package collegeid

import (
	"strings"

	"github.com/google/uuid"
)

const prefix = "CLG-"

// New generates a short opaque college id, e.g. "CLG-9F86D081".
func New() string {
	u := uuid.NewString()
	return prefix + strings.ToUpper(u[:8])
}

// Normalize trims a supplied college id. Empty after trimming means
// "not supplied" and callers should generate one with New.
func Normalize(s string) string {
	return strings.TrimSpace(s)
}
