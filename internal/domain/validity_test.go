package domain

import "testing"

func TestValidityKey(t *testing.T) {
	if got := ValidityKey("report.pdf"); got != "valid:report.pdf" {
		t.Errorf("ValidityKey() = %q, want %q", got, "valid:report.pdf")
	}
	if got := ValidityMatchPattern(); got != "valid:*" {
		t.Errorf("ValidityMatchPattern() = %q, want %q", got, "valid:*")
	}
}

func TestFileNameFromValidityKey(t *testing.T) {
	tests := []struct {
		key  string
		want string
	}{
		{"valid:file1", "file1"},
		{"valid:", ""},
		{"valid:valid:nested", "valid:nested"},
		{"valid:a:b.txt", "a:b.txt"},
		// only the first occurrence is removed, wherever it is
		{"tmp-valid:x", "tmp-x"},
		{"other", "other"},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			if got := FileNameFromValidityKey(tt.key); got != tt.want {
				t.Errorf("FileNameFromValidityKey(%q) = %q, want %q", tt.key, got, tt.want)
			}
		})
	}
}

func TestValidityKeyRoundTrip(t *testing.T) {
	for _, name := range []string{"file1", "", "valid:x", "日本語.txt"} {
		if got := FileNameFromValidityKey(ValidityKey(name)); got != name {
			t.Errorf("round trip of %q = %q", name, got)
		}
	}
}

func TestValidityEntry_Status(t *testing.T) {
	status := "success"
	present := ValidityEntry{FileName: "a", Status: &status}
	absent := ValidityEntry{FileName: "b"}

	if !present.HasStatus() {
		t.Error("HasStatus() = false for present status")
	}
	if absent.HasStatus() {
		t.Error("HasStatus() = true for absent status")
	}
	if got := present.StatusOr("none"); got != "success" {
		t.Errorf("StatusOr() = %q, want %q", got, "success")
	}
	if got := absent.StatusOr("none"); got != "none" {
		t.Errorf("StatusOr() = %q, want %q", got, "none")
	}
}
