package validation

import (
	"testing"
	_ "time/tzdata"
)

func TestValidateTimeZone(t *testing.T) {
	tests := []struct {
		name    string
		tz      string
		wantErr bool
	}{
		{"empty uses local", "", false},
		{"UTC", "UTC", false},
		{"region", "Europe/Paris", false},
		{"unknown", "Mars/Olympus", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateTimeZone(tt.tz)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateTimeZone(%q) error = %v, wantErr %v", tt.tz, err, tt.wantErr)
			}
		})
	}
}

func TestValidateTimeFormat(t *testing.T) {
	tests := []struct {
		name    string
		format  string
		wantErr bool
	}{
		{"default", "yyyy-MM-dd HH:mm:ss", false},
		{"iso millis", "yyyy-MM-ddTHH:mm:ss.SSS", false},
		{"date only", "dd/MM/yyyy", false},
		{"empty", "", true},
		{"blank", "   ", true},
		{"no tokens", "hello", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateTimeFormat(tt.format)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateTimeFormat(%q) error = %v, wantErr %v", tt.format, err, tt.wantErr)
			}
		})
	}
}

func TestParseDelimiter(t *testing.T) {
	tests := []struct {
		input   string
		want    rune
		wantErr bool
	}{
		{",", ',', false},
		{";", ';', false},
		{" | ", '|', false},
		{`\t`, '\t', false},
		{"\t", '\t', false},
		{"", 0, true},
		{"ab", 0, true},
		{`"`, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseDelimiter(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseDelimiter(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseDelimiter(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
