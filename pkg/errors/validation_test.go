package errors

import (
	"math"
	"strings"
	"testing"
)

func TestValidateInputPath(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		wantErr bool
	}{
		{"relative", "profiles/cpu.pb.gz", false},
		{"absolute", "/tmp/cpu.folded", false},
		{"empty", "", true},
		{"null byte", "a\x00b", true},
		{"too long", strings.Repeat("a", 5000), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateInputPath(tt.path)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateInputPath(%q) error = %v, wantErr %v", tt.path, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidPath) {
				t.Errorf("error code = %v, want %v", GetCode(err), ErrCodeInvalidPath)
			}
		})
	}
}

func TestValidateProfileID(t *testing.T) {
	if err := ValidateProfileID("0f8fad5b-d9cb-469f-a165-70867728950e"); err != nil {
		t.Errorf("uuid should be valid: %v", err)
	}
	for _, bad := range []string{"", "../etc", "abc def"} {
		if err := ValidateProfileID(bad); err == nil {
			t.Errorf("ValidateProfileID(%q) should fail", bad)
		}
	}
}

func TestValidateViewport(t *testing.T) {
	tests := []struct {
		name             string
		left, width, top float64
		wantErr          bool
	}{
		{"ok", 0, 100, -1, false},
		{"nan", math.NaN(), 1, 0, true},
		{"inf width", 0, math.Inf(1), 0, true},
		{"negative width", 0, -1, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateViewport(tt.left, tt.width, tt.top)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateViewport() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateQuery(t *testing.T) {
	if err := ValidateQuery("render"); err != nil {
		t.Errorf("ValidateQuery() = %v", err)
	}
	if err := ValidateQuery(strings.Repeat("q", 2000)); err == nil {
		t.Error("long query should fail")
	}
}
