package domain

import (
	"testing"
	"time"
)

func TestCreateEventInputValidate(t *testing.T) {
	valid := CreateEventInput{
		Profiles: []string{"Alice"},
		Timezone: "UTC",
		Start:    "2024-01-10T09:00:00Z",
		End:      "2024-01-10T10:00:00Z",
	}

	start, end, err := valid.Validate()
	if err != nil {
		t.Fatalf("expected valid input, got %v", err)
	}
	if !end.After(start) {
		t.Fatalf("expected parsed range to be ordered, got %v / %v", start, end)
	}
}

func TestCreateEventInputValidateRejections(t *testing.T) {
	cases := []struct {
		name  string
		input CreateEventInput
	}{
		{
			name: "no profiles",
			input: CreateEventInput{
				Timezone: "UTC",
				Start:    "2024-01-10T09:00:00Z",
				End:      "2024-01-10T10:00:00Z",
			},
		},
		{
			name: "missing timezone",
			input: CreateEventInput{
				Profiles: []string{"Alice"},
				Start:    "2024-01-10T09:00:00Z",
				End:      "2024-01-10T10:00:00Z",
			},
		},
		{
			name: "missing end",
			input: CreateEventInput{
				Profiles: []string{"Alice"},
				Timezone: "UTC",
				Start:    "2024-01-10T09:00:00Z",
			},
		},
		{
			name: "unparsable start",
			input: CreateEventInput{
				Profiles: []string{"Alice"},
				Timezone: "UTC",
				Start:    "tomorrow-ish",
				End:      "2024-01-10T10:00:00Z",
			},
		},
		{
			name: "end before start",
			input: CreateEventInput{
				Profiles: []string{"Alice"},
				Timezone: "UTC",
				Start:    "2024-01-10T10:00:00Z",
				End:      "2024-01-10T09:00:00Z",
			},
		},
		{
			name: "end equals start",
			input: CreateEventInput{
				Profiles: []string{"Alice"},
				Timezone: "UTC",
				Start:    "2024-01-10T09:00:00Z",
				End:      "2024-01-10T09:00:00Z",
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, _, err := tc.input.Validate(); !IsValidation(err) {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestValidateRangeBoundary(t *testing.T) {
	at := time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC)
	if err := ValidateRange(at, at); !IsValidation(err) {
		t.Fatalf("expected equal boundaries to fail, got %v", err)
	}
	if err := ValidateRange(at, at.Add(time.Second)); err != nil {
		t.Fatalf("expected strictly later end to pass, got %v", err)
	}
}
