// Package normalize centralizes the string normalization applied to
// user-supplied identity and hierarchy fields before they are stored
// or matched. Every store writes normalized values; every lookup
// normalizes its input the same way.
package normalize

import "strings"

// Email lowercases and trims an email address. Emails are matched
// case-insensitively everywhere, so the stored form is always the
// normalized form.
func Email(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Name trims a display name. Case is preserved; case-insensitive
// comparison happens on the folded _ci companion fields.
func Name(s string) string {
	return strings.TrimSpace(s)
}

// Role lowercases and trims a role string.
func Role(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Department trims a sub-department (subject) display name. Like Name,
// case is preserved and matching uses the folded form.
func Department(s string) string {
	return strings.TrimSpace(s)
}

// CollegeID trims an opaque tenant identifier. College IDs are matched
// exactly as typed apart from surrounding whitespace; they may be
// human-typed or generated.
func CollegeID(s string) string {
	return strings.TrimSpace(s)
}
