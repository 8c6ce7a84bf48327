// Package htmlsanitize strips unsafe HTML from authored content before
// it is stored. Quiz questions and options may carry formatting
// (emphasis, lists, tables, images for diagrams) but never scripts,
// event handlers, or embedded frames.
package htmlsanitize

import (
	"html/template"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var policy = buildPolicy()

func buildPolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	// Question tables (truth tables, data sets) keep their layout attributes.
	p.AllowAttrs("colspan", "rowspan").OnElements("td", "th")
	p.AllowAttrs("class").Globally()
	p.AllowAttrs("style").OnElements("table", "tr", "td", "th")
	return p
}

// Sanitize returns s with all disallowed HTML removed.
func Sanitize(s string) string {
	if s == "" {
		return ""
	}
	return strings.TrimSpace(policy.Sanitize(s))
}

// SanitizeToHTML sanitizes s and marks the result safe for template
// rendering (used by the email bodies that echo question titles).
func SanitizeToHTML(s string) template.HTML {
	return template.HTML(Sanitize(s))
}
