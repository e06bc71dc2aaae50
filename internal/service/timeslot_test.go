package service

import (
	"errors"
	"testing"
	"time"

	"flightschool_backend/internal/util"
)

func TestValidateTimeSlot(t *testing.T) {
	base := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	cases := []struct {
		name    string
		start   time.Time
		end     time.Time
		wantErr bool
	}{
		{"valid", base, base.Add(time.Hour), false},
		{"start equals end", base, base, true},
		{"start after end", base.Add(time.Hour), base, true},
		{"zero start", time.Time{}, base, true},
		{"zero end", base, time.Time{}, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateTimeSlot(tc.start, tc.end)
			if tc.wantErr && !errors.Is(err, util.ErrInvalidTimeSlot) {
				t.Fatalf("expected ErrInvalidTimeSlot, got %v", err)
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestParseTimeSlot(t *testing.T) {
	start, end, err := ParseTimeSlot("2026-03-10T09:00:00Z", "2026-03-10T11:00:00Z")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if end.Sub(start) != 2*time.Hour {
		t.Fatalf("unexpected duration: %v", end.Sub(start))
	}

	if _, _, err := ParseTimeSlot("not-a-time", "2026-03-10T11:00:00Z"); !errors.Is(err, util.ErrInvalidTimeSlot) {
		t.Fatalf("expected ErrInvalidTimeSlot for malformed start, got %v", err)
	}
	if _, _, err := ParseTimeSlot("2026-03-10T11:00:00Z", "2026-03-10T09:00:00Z"); !errors.Is(err, util.ErrInvalidTimeSlot) {
		t.Fatalf("expected ErrInvalidTimeSlot for inverted slot, got %v", err)
	}
}
