package identity

import (
	"errors"
	"testing"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    string
		wantErr bool
	}{
		{"formatted US number", "+1 (415) 555-0100", "14155550100", false},
		{"whatsapp prefix digits kept", "whatsapp:+919876543210", "919876543210", false},
		{"bare digits", "14155550100", "14155550100", false},
		{"too short", "555-0100", "", true},
		{"too long", "12345678901234567890", "", true},
		{"no digits", "not a number", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Normalize(tt.raw)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("Normalize(%q) = %q, want error", tt.raw, got)
				}
				if !errors.Is(err, ErrInvalid) {
					t.Errorf("error = %v, want ErrInvalid", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Normalize(%q) error = %v", tt.raw, err)
			}
			if got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	once, err := Normalize("+1 (415) 555-0100")
	if err != nil {
		t.Fatal(err)
	}
	twice, err := Normalize(once)
	if err != nil {
		t.Fatalf("second Normalize error = %v", err)
	}
	if twice != once {
		t.Errorf("Normalize(Normalize(x)) = %q, want %q", twice, once)
	}
}
