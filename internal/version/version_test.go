package version

import (
	"errors"
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{"plain", "1.2.3", "1.2.3", false},
		{"v prefix", "v10.0.0", "10.0.0", false},
		{"prerelease", "1.0.0-beta.1", "1.0.0-beta.1", false},
		{"build metadata", "1.0.0+abc", "1.0.0+abc", false},
		{"empty", "", "", true},
		{"two components", "1.2", "", true},
		{"single component", "10", "", true},
		{"garbage", "notaversion", "", true},
		{"dev", "dev", "", true},
		{"leading zero", "01.0.0", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := Parse(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("Parse(%q) expected error, got %s", tt.input, v)
				}
				if !errors.Is(err, ErrInvalidFormat) {
					t.Errorf("Parse(%q) error = %v, want ErrInvalidFormat", tt.input, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Parse(%q) unexpected error: %v", tt.input, err)
			}
			if v.String() != tt.want {
				t.Errorf("Parse(%q) = %s, want %s", tt.input, v, tt.want)
			}
		})
	}
}

func TestGreaterThan(t *testing.T) {
	tests := []struct {
		a, b string
		want bool
	}{
		{"2.0.0", "1.9.9", true},
		{"1.2.0", "1.1.9", true},
		{"1.0.1", "1.0.0", true},
		{"1.0.0", "1.0.0-beta", true},
		{"1.0.0-beta", "1.0.0-alpha", true},
		{"1.0.0-beta.11", "1.0.0-beta.2", true},
		{"1.0.0-beta", "1.0.0", false},
		{"1.9.9", "2.0.0", false},
		{"10.0.0", "10.0.0", false},
		{"10.0.0+build.1", "10.0.0", false},
		{"11.0.0", "10.0.0", true},
		{"10.0.0", "9.99.99", true},
	}

	for _, tt := range tests {
		t.Run(tt.a+">"+tt.b, func(t *testing.T) {
			a, err := Parse(tt.a)
			if err != nil {
				t.Fatalf("Parse(%q): %v", tt.a, err)
			}
			b, err := Parse(tt.b)
			if err != nil {
				t.Fatalf("Parse(%q): %v", tt.b, err)
			}
			if got := GreaterThan(a, b); got != tt.want {
				t.Errorf("GreaterThan(%s, %s) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestGreaterThan_StrictOrder(t *testing.T) {
	ordered := []string{"0.0.1", "0.1.0", "1.0.0-alpha", "1.0.0-alpha.1", "1.0.0-beta", "1.0.0", "1.1.9", "1.2.0", "1.9.9", "2.0.0"}
	for i := range ordered {
		for j := range ordered {
			a, _ := Parse(ordered[i])
			b, _ := Parse(ordered[j])
			if got, want := GreaterThan(a, b), i > j; got != want {
				t.Errorf("GreaterThan(%s, %s) = %v, want %v", ordered[i], ordered[j], got, want)
			}
		}
	}
}

func TestCompare(t *testing.T) {
	tests := []struct {
		name     string
		a, b     string
		expected int
		wantErr  bool
	}{
		{"older patch", "1.0.0", "1.0.1", -1, false},
		{"older major", "1.0.0", "2.0.0", -1, false},
		{"equal", "1.2.3", "1.2.3", 0, false},
		{"newer", "1.1.0", "1.0.0", 1, false},
		{"v prefix both", "v1.0.0", "v1.0.1", -1, false},
		{"prerelease less than release", "1.0.0-beta", "1.0.0", -1, false},
		{"invalid a", "notaversion", "1.0.0", 0, true},
		{"invalid b", "1.0.0", "1.0", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := Compare(tt.a, tt.b)
			if tt.wantErr {
				if err == nil {
					t.Errorf("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if result != tt.expected {
				t.Errorf("Compare(%q, %q) = %d, want %d", tt.a, tt.b, result, tt.expected)
			}
		})
	}
}
