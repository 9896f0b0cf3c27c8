package pin

import (
	"errors"
	"testing"
)

func TestParse_Valid(t *testing.T) {
	tests := []struct {
		in   string
		want Address
	}{
		{"v5", Address{Virtual, 5}},
		{"V5", Address{Virtual, 5}},
		{"d13", Address{Digital, 13}},
		{"D13", Address{Digital, 13}},
		{"a0", Address{Analog, 0}},
		{"A255", Address{Analog, 255}},
	}

	for _, tt := range tests {
		got, err := Parse(tt.in)
		if err != nil {
			t.Errorf("Parse(%q) error: %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("Parse(%q) = %+v, want %+v", tt.in, got, tt.want)
		}
	}
}

func TestParse_Malformed(t *testing.T) {
	tests := []string{
		"",      // empty
		"V",     // missing number
		"5",     // missing tag
		"X5",    // unknown tag
		"Vabc",  // non-numeric
		"V-1",   // negative
		"V256",  // overflows uint8
		"V5.0",  // not an integer
		"V 5",   // embedded space
	}

	for _, in := range tests {
		if _, err := Parse(in); !errors.Is(err, ErrMalformed) {
			t.Errorf("Parse(%q) error = %v, want ErrMalformed", in, err)
		}
	}
}

func TestString_RoundTrip(t *testing.T) {
	addrs := []Address{
		{Digital, 0},
		{Analog, 7},
		{Virtual, 99},
		{Virtual, 255},
	}

	for _, addr := range addrs {
		got, err := Parse(addr.String())
		if err != nil {
			t.Errorf("Parse(%q) error: %v", addr.String(), err)
			continue
		}
		if got != addr {
			t.Errorf("Parse(String(%+v)) = %+v", addr, got)
		}
	}
}

func TestTypeTag(t *testing.T) {
	if Digital.Tag() != 'd' || Analog.Tag() != 'a' || Virtual.Tag() != 'v' {
		t.Errorf("unexpected tags: %c %c %c", Digital.Tag(), Analog.Tag(), Virtual.Tag())
	}
}
