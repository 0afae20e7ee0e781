package version

import (
	"testing"
)

func TestCompareVersions(t *testing.T) {
	tests := []struct {
		v1       string
		v2       string
		expected int
	}{
		{"v1.0.542", "v1.0.533", 1},
		{"v1.0.533", "v1.0.542", -1},
		{"1.0.542", "1.0.542", 0},
		{"v1.0.542", "1.0.542", 0},
		{"v1.0.10", "v1.0.2", 1},
		{"v2.0.0", "v1.9.9", 1},
		{"v1.0", "v1.0.0", 0},
		{"v1.0.1", "v1.0", 1},
	}

	for _, tt := range tests {
		t.Run(tt.v1+"_vs_"+tt.v2, func(t *testing.T) {
			if got := CompareVersions(tt.v1, tt.v2); got != tt.expected {
				t.Errorf("CompareVersions(%q, %q) = %d, want %d", tt.v1, tt.v2, got, tt.expected)
			}
		})
	}
}

func TestGetBuildInfo(t *testing.T) {
	info := GetBuildInfo()
	if info.Version == "" {
		t.Error("Version should never be empty")
	}
	if info.GoVersion == "" {
		t.Error("GoVersion should never be empty")
	}
	if info.Platform == "" {
		t.Error("Platform should never be empty")
	}
}
