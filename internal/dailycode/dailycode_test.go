package dailycode

import (
	"testing"
	"time"
)

var (
	day1 = time.Date(2025, 3, 10, 9, 30, 0, 0, time.UTC)
	day2 = time.Date(2025, 3, 11, 9, 30, 0, 0, time.UTC)
)

func TestCodeIsStableWithinDay(t *testing.T) {
	morning := time.Date(2025, 3, 10, 0, 0, 1, 0, time.UTC)
	night := time.Date(2025, 3, 10, 23, 59, 59, 0, time.UTC)

	if Code("user-1", morning) != Code("user-1", night) {
		t.Fatal("code changed within the same calendar day")
	}
	if Code("user-1", day1) != Code("user-1", day1) {
		t.Fatal("code not deterministic for repeated calls")
	}
}

func TestCodeChangesAcrossDaysAndUsers(t *testing.T) {
	if Code("user-1", day1) == Code("user-1", day2) {
		t.Fatal("code did not rotate at the date boundary")
	}
	if Code("user-1", day1) == Code("user-2", day1) {
		t.Fatal("two users share the same code on the same day")
	}
}

func TestCodeIsSixDigits(t *testing.T) {
	users := []string{"", "u", "driver-9f2a", "controller-unit-12"}
	for _, u := range users {
		code := Code(u, day1)
		if len(code) != 6 {
			t.Fatalf("Code(%q) = %q, want 6 digits", u, code)
		}
		for _, r := range code {
			if r < '0' || r > '9' {
				t.Fatalf("Code(%q) = %q contains non-digit", u, code)
			}
		}
	}
}

func TestFormatAndNormalize(t *testing.T) {
	if got := Format("123456"); got != "123-456" {
		t.Fatalf("Format = %q, want 123-456", got)
	}
	cases := []string{"123-456", "123 456", " 123456 ", "1-2-3-4-5-6"}
	for _, c := range cases {
		if got := Normalize(c); got != "123456" {
			t.Fatalf("Normalize(%q) = %q, want 123456", c, got)
		}
	}
}

func TestIsValidAcceptsFormattedInput(t *testing.T) {
	code := Code("user-1", day1)
	if !IsValid("user-1", Format(code), day1) {
		t.Fatal("formatted code rejected")
	}
	if !IsValid("user-1", code, day1) {
		t.Fatal("plain code rejected")
	}
}

func TestIsValidRejectsYesterdaysCode(t *testing.T) {
	yesterday := Code("user-1", day1)
	if IsValid("user-1", yesterday, day2) {
		t.Fatal("yesterday's code accepted today")
	}
}
