package validator

import (
	"testing"
)

func TestIsEmpty(t *testing.T) {
	cases := []struct {
		input string
		want  bool
	}{
		{"", true},
		{"   ", true},
		{"abc", false},
		{" abc ", false},
	}
	for _, c := range cases {
		got := IsEmpty(c.input)
		if got != c.want {
			t.Errorf("IsEmpty(%q) = %v, want %v", c.input, got, c.want)
		}
	}
}

func TestIsValidUUID(t *testing.T) {
	valid := []string{
		"123e4567-e89b-12d3-a456-426614174000",
		"0188d0f2-7b8c-7b4a-8a2b-6b8b8b8b8b8b",
		"0188D0F2-7B8C-7B4A-8A2B-6B8B8B8B8B8B",
	}
	invalid := []string{
		"0188d0f27b8c7b4a8a2b6b8b8b8b8b8b",     // missing dashes
		"g188d0f2-7b8c-7b4a-8a2b-6b8b8b8b8b8b", // invalid hex
		"",                                     // empty
	}
	for _, id := range valid {
		if !IsValidUUID(id) {
			t.Errorf("IsValidUUID(%q) = false, want true", id)
		}
	}
	for _, id := range invalid {
		if IsValidUUID(id) {
			t.Errorf("IsValidUUID(%q) = true, want false", id)
		}
	}
}

func TestIsValidDate(t *testing.T) {
	valid := []string{"2023-01-01", "2000-12-31"}
	invalid := []string{"2023-13-01", "2023-01-32", "01-01-2023", "2023/01/01", "", "today"}
	for _, s := range valid {
		if _, ok := IsValidDate(s); !ok {
			t.Errorf("IsValidDate(%q) = false, want true", s)
		}
	}
	for _, s := range invalid {
		if _, ok := IsValidDate(s); ok {
			t.Errorf("IsValidDate(%q) = true, want false", s)
		}
	}
}

func TestIsValidClockTime(t *testing.T) {
	valid := []string{"00:00", "09:00", "15:45", "23:59"}
	invalid := []string{"24:00", "9:0", "15:60", "nine", "", "15:04:05"}
	for _, s := range valid {
		if _, ok := IsValidClockTime(s); !ok {
			t.Errorf("IsValidClockTime(%q) = false, want true", s)
		}
	}
	for _, s := range invalid {
		if _, ok := IsValidClockTime(s); ok {
			t.Errorf("IsValidClockTime(%q) = true, want false", s)
		}
	}
}

func TestIsValidMonth(t *testing.T) {
	cases := []struct {
		year  int
		month int
		want  bool
	}{
		{2023, 1, true},
		{2023, 12, true},
		{2023, 0, false},
		{2023, 13, false},
		{1999, 6, false},
		{2101, 6, false},
	}
	for _, c := range cases {
		got := IsValidMonth(c.year, c.month)
		if got != c.want {
			t.Errorf("IsValidMonth(%d, %d) = %v, want %v", c.year, c.month, got, c.want)
		}
	}
}

func TestIsInSlice(t *testing.T) {
	slice := []string{"worker", "staff", "admin"}
	if !IsInSlice("worker", slice) {
		t.Error("IsInSlice(worker) = false, want true")
	}
	if IsInSlice("guest", slice) {
		t.Error("IsInSlice(guest) = true, want false")
	}
	if IsInSlice("worker", nil) {
		t.Error("IsInSlice on nil slice = true, want false")
	}
}
