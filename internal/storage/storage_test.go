package storage

import (
	"strings"
	"testing"
)

func TestGenerateName(t *testing.T) {
	tests := []struct {
		original string
		suffix   string
	}{
		{original: "photo.png", suffix: "_photo.png"},
		{original: "../../etc/passwd", suffix: "_passwd"},
		{original: `C:\Users\me\My Photo.jpg`, suffix: "_My_Photo.jpg"},
		{original: "", suffix: "_image"},
		{original: "..", suffix: "_image"},
		{original: ".hidden", suffix: "_hidden"},
		{original: "ação.png", suffix: "_a__o.png"},
	}

	for _, tt := range tests {
		t.Run(tt.original, func(t *testing.T) {
			got := GenerateName(tt.original)
			if !strings.HasSuffix(got, tt.suffix) {
				t.Errorf("expected suffix %q, got %q", tt.suffix, got)
			}
			if strings.ContainsAny(got, `/\`) {
				t.Errorf("name must not contain path separators: %q", got)
			}
			// uuid string is 36 characters
			if len(got) < 37 || got[36] != '_' {
				t.Errorf("expected uuid prefix, got %q", got)
			}
		})
	}
}

func TestGenerateNameUnique(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 1000; i++ {
		n := GenerateName("same.png")
		if seen[n] {
			t.Fatalf("duplicate name %q", n)
		}
		seen[n] = true
	}
}

func TestGenerateNameTruncatesLongNames(t *testing.T) {
	got := GenerateName(strings.Repeat("a", 500) + ".png")
	if !strings.HasSuffix(got, ".png") {
		t.Errorf("extension must survive truncation: %q", got)
	}
	if len(got) > 37+maxBaseNameLen {
		t.Errorf("name too long: %d", len(got))
	}
}
