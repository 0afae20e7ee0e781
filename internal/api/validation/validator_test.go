package validation

import "testing"

func TestIsValidEmail(t *testing.T) {
	tests := []struct {
		email string
		want  bool
	}{
		{"jane@example.com", true},
		{"jane.doe+quotes@example.co.uk", true},
		{"j_d%42@sub.example.io", true},
		{"jane@example", false},  // missing TLD
		{"jane.example.com", false}, // missing @
		{"@example.com", false},  // missing local part
		{"jane@.com", false},     // empty domain segment
		{"jane@example.c", false}, // TLD too short
		{"", false},
		{"jane doe@example.com", false}, // space in local part
	}

	for _, tt := range tests {
		t.Run(tt.email, func(t *testing.T) {
			if got := IsValidEmail(tt.email); got != tt.want {
				t.Errorf("IsValidEmail(%q) = %v, want %v", tt.email, got, tt.want)
			}
		})
	}
}
