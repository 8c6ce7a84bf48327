package htmlsanitize_test

import (
	"strings"
	"testing"

	"github.com/acadhub/quizhub/internal/app/system/htmlsanitize"
)

func TestSanitize_Empty(t *testing.T) {
	if got := htmlsanitize.Sanitize(""); got != "" {
		t.Errorf("expected empty string, got %q", got)
	}
}

func TestSanitize_PlainText(t *testing.T) {
	if got := htmlsanitize.Sanitize("What is 2 + 2?"); got != "What is 2 + 2?" {
		t.Errorf("expected plain text unchanged, got %q", got)
	}
}

func TestSanitize_SafeFormatting(t *testing.T) {
	input := "<p><strong>Solve</strong> for <em>x</em></p>"
	if got := htmlsanitize.Sanitize(input); got != input {
		t.Errorf("expected safe HTML preserved, got %q", got)
	}
}

func TestSanitize_RemovesScript(t *testing.T) {
	got := htmlsanitize.Sanitize("<p>Hello</p><script>alert('xss')</script>")
	if got != "<p>Hello</p>" {
		t.Errorf("expected script removed, got %q", got)
	}
}

func TestSanitize_RemovesOnclick(t *testing.T) {
	input := `<span onclick="alert('xss')">Click</span>`
	if got := htmlsanitize.Sanitize(input); strings.Contains(got, "onclick") {
		t.Errorf("expected onclick attribute removed, got %q", got)
	}
}

func TestSanitize_RemovesIframe(t *testing.T) {
	got := htmlsanitize.Sanitize(`<p>Q1</p><iframe src="https://evil.com"></iframe>`)
	if strings.Contains(got, "iframe") {
		t.Errorf("expected iframe removed, got %q", got)
	}
	if !strings.Contains(got, "Q1") {
		t.Errorf("expected safe content preserved, got %q", got)
	}
}

func TestSanitize_AllowsTables(t *testing.T) {
	input := `<table><tr><td colspan="2">Cell</td></tr></table>`
	got := htmlsanitize.Sanitize(input)
	if !strings.Contains(got, `colspan="2"`) {
		t.Errorf("expected colspan preserved, got %q", got)
	}
}

func TestSanitize_AllowsLists(t *testing.T) {
	input := "<ol><li>First</li><li>Second</li></ol>"
	if got := htmlsanitize.Sanitize(input); got != input {
		t.Errorf("expected ordered list preserved, got %q", got)
	}
}
