package firebase

import (
	"strings"
	"testing"
)

func TestSanitizeFilenameKeepsSafeName(t *testing.T) {
	result := sanitizeFilename("spring-latte_card.v2.png")
	if result != "spring-latte_card.v2.png" {
		t.Errorf("expected 'spring-latte_card.v2.png', got '%s'", result)
	}
}

func TestSanitizeFilenameReplacesSpecialChars(t *testing.T) {
	result := sanitizeFilename("summer offer (2x stamps)!.png")
	if strings.ContainsAny(result, " ()!") {
		t.Errorf("special chars not replaced: '%s'", result)
	}
	if !strings.HasSuffix(result, ".png") {
		t.Errorf("extension should survive sanitizing: '%s'", result)
	}
}

func TestSanitizeFilenameCapsLength(t *testing.T) {
	long := strings.Repeat("stamp", 50) + ".jpg"
	result := sanitizeFilename(long)
	if len(result) != 100 {
		t.Errorf("expected length capped at 100, got %d", len(result))
	}
}

func TestSanitizeFilenameDegenerateNames(t *testing.T) {
	for _, name := range []string{"", ".", ".."} {
		if got := sanitizeFilename(name); got != "file" {
			t.Errorf("sanitizeFilename(%q) = %q, want 'file'", name, got)
		}
	}
}
