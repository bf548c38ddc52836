package utils

import (
	"testing"
	"time"
)

func TestParseDecimal(t *testing.T) {
	cases := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"1000.50", "1000.5", false},
		{"  2.5 ", "2.5", false},
		{"-0.75", "-0.75", false},
		{"0", "0", false},
		{"", "", true},
		{"   ", "", true},
		{"abc", "", true},
		{"12,5", "", true},
	}

	for _, tc := range cases {
		got, err := ParseDecimal(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Errorf("ParseDecimal(%q) succeeded, want error", tc.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseDecimal(%q): %v", tc.in, err)
			continue
		}
		if got.String() != tc.want {
			t.Errorf("ParseDecimal(%q) = %s, want %s", tc.in, got, tc.want)
		}
	}
}

func TestParseDate(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"2024-01-15", "2024-01-15"},
		{"2024/01/15", "2024-01-15"},
		{"15-01-2024", "2024-01-15"},
		{"15/01/2024", "2024-01-15"},
		{"2024-01-15 10:30:00", "2024-01-15"},
		{"15 Jan 2024", "2024-01-15"},
	}

	for _, tc := range cases {
		got, err := ParseDate(tc.in)
		if err != nil {
			t.Errorf("ParseDate(%q): %v", tc.in, err)
			continue
		}
		if got.Format("2006-01-02") != tc.want {
			t.Errorf("ParseDate(%q) = %s, want %s", tc.in, got.Format("2006-01-02"), tc.want)
		}
	}

	for _, in := range []string{"", "someday", "32-13-2024"} {
		if _, err := ParseDate(in); err == nil {
			t.Errorf("ParseDate(%q) succeeded, want error", in)
		}
	}
}

func TestAgeAt(t *testing.T) {
	ref := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)

	cases := []struct {
		birth string
		want  int
	}{
		{"2006-06-15", 18}, // birthday today
		{"2006-06-16", 17}, // birthday tomorrow
		{"2006-06-14", 18},
		{"2000-01-01", 24},
		{"2010-12-31", 13},
	}

	for _, tc := range cases {
		birth, err := ParseDate(tc.birth)
		if err != nil {
			t.Fatal(err)
		}
		if got := AgeAt(birth, ref); got != tc.want {
			t.Errorf("AgeAt(%s) = %d, want %d", tc.birth, got, tc.want)
		}
	}
}

func TestIsValidEmail(t *testing.T) {
	for _, email := range []string{"user@example.com", "a.b+c@sub.domain.cl"} {
		if !IsValidEmail(email) {
			t.Errorf("IsValidEmail(%q) = false", email)
		}
	}
	for _, email := range []string{"", "user", "user@", "@example.com", "user@domain"} {
		if IsValidEmail(email) {
			t.Errorf("IsValidEmail(%q) = true", email)
		}
	}
}

func TestNilIfEmpty(t *testing.T) {
	if NilIfEmpty("") != nil {
		t.Error("empty string should map to nil")
	}
	if got := NilIfEmpty("x"); got == nil || *got != "x" {
		t.Errorf("NilIfEmpty(\"x\") = %v", got)
	}
	if NilIfEmpty(0) != nil {
		t.Error("zero int should map to nil")
	}
}
