package pricing

import (
	"errors"
	pricingerrors "parkgate/internal/pricing/errors"
	"testing"
	"time"
)

func TestComputeFee(t *testing.T) {
	entry := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		exit     time.Time
		rate     int64
		expected int64
	}{
		{
			name:     "exact two hours",
			exit:     entry.Add(2 * time.Hour),
			rate:     1000,
			expected: 2000,
		},
		{
			name:     "half hour rounds exactly",
			exit:     entry.Add(30 * time.Minute),
			rate:     1000,
			expected: 500,
		},
		{
			name:     "zero duration is free",
			exit:     entry,
			rate:     1000,
			expected: 0,
		},
		{
			name:     "zero rate is free",
			exit:     entry.Add(5 * time.Hour),
			rate:     0,
			expected: 0,
		},
		{
			name:     "sub-cent fraction rounds half up",
			exit:     entry.Add(time.Minute), // 1/60 h * 90c = 1.5c
			rate:     90,
			expected: 2,
		},
		{
			name:     "fraction below half rounds down",
			exit:     entry.Add(time.Minute), // 1/60 h * 80c = 1.333c
			rate:     80,
			expected: 1,
		},
		{
			name:     "millisecond precision",
			exit:     entry.Add(time.Hour + time.Millisecond),
			rate:     3600 * 1000, // 1 cent per millisecond
			expected: 3600001,
		},
		{
			name:     "long stay stays exact",
			exit:     entry.Add(30 * 24 * time.Hour),
			rate:     2500,
			expected: 30 * 24 * 2500,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ComputeFee(entry, tt.exit, tt.rate)
			if err != nil {
				t.Fatalf("ComputeFee: %v", err)
			}
			if got != tt.expected {
				t.Errorf("expected %d cents, got %d", tt.expected, got)
			}
		})
	}
}

func TestComputeFee_ExitBeforeEntry(t *testing.T) {
	entry := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)

	_, err := ComputeFee(entry, entry.Add(-time.Second), 1000)
	if !errors.Is(err, pricingerrors.ErrInvalidDuration) {
		t.Fatalf("expected ErrInvalidDuration, got %v", err)
	}
}

func TestComputeFee_NegativeRate(t *testing.T) {
	entry := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)

	_, err := ComputeFee(entry, entry.Add(time.Hour), -1)
	if !errors.Is(err, pricingerrors.ErrInvalidRate) {
		t.Fatalf("expected ErrInvalidRate, got %v", err)
	}
}

func TestComputeFee_Deterministic(t *testing.T) {
	entry := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	exit := entry.Add(97*time.Minute + 13*time.Second + 421*time.Millisecond)

	first, err := ComputeFee(entry, exit, 1750)
	if err != nil {
		t.Fatalf("ComputeFee: %v", err)
	}
	for i := 0; i < 100; i++ {
		again, err := ComputeFee(entry, exit, 1750)
		if err != nil {
			t.Fatalf("ComputeFee: %v", err)
		}
		if again != first {
			t.Fatalf("run %d: fee changed from %d to %d", i, first, again)
		}
	}
}
