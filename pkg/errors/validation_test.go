package errors

import (
	"strings"
	"testing"
)

func TestValidateName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"simple", "k0_ZTS9kernel", false},
		{"with spaces inside", "Global Memory", false},
		{"empty", "", true},
		{"null byte", "bank\x000", true},
		{"control char", "bank\n0", true},
		{"leading space", " bank0", true},
		{"too long", strings.Repeat("a", maxNameLength+1), true},
		{"max length", strings.Repeat("a", maxNameLength), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateName("bank", tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidateName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidFocus) {
				t.Errorf("expected INVALID_FOCUS, got %v", GetCode(err))
			}
		})
	}
}

func TestValidateNames(t *testing.T) {
	if err := ValidateNames("bank", []string{"b0", "b1"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := ValidateNames("bank", []string{"b0", "b0"}); err == nil {
		t.Fatal("expected duplicate error")
	}
	if err := ValidateNames("bank", nil); err != nil {
		t.Fatalf("nil list should be valid: %v", err)
	}
}
