package workers

import (
	"runtime"
	"testing"
)

func TestCount(t *testing.T) {
	t.Setenv(OverrideEnv, "")

	availableCPU := runtime.GOMAXPROCS(0)

	tests := []struct {
		name       string
		multiplier float64
		limit      int
		minExpect  int
		maxExpect  int
	}{
		{
			name:       "CPU-bound task (1.0x multiplier)",
			multiplier: 1.0,
			minExpect:  availableCPU,
			maxExpect:  availableCPU,
		},
		{
			name:       "I/O-bound task (2.0x multiplier)",
			multiplier: 2.0,
			minExpect:  availableCPU * 2,
			maxExpect:  availableCPU * 2,
		},
		{
			name:       "With limit lower than calculated",
			multiplier: 2.0,
			limit:      1,
			minExpect:  1,
			maxExpect:  1,
		},
		{
			name:       "Very low multiplier never drops below one",
			multiplier: 0.01,
			minExpect:  1,
			maxExpect:  1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Count(tt.multiplier, tt.limit)
			if got < tt.minExpect || got > tt.maxExpect {
				t.Errorf("Count(%v, %d) = %d, expected in [%d, %d]",
					tt.multiplier, tt.limit, got, tt.minExpect, tt.maxExpect)
			}
		})
	}
}

func TestCountWithEnvOverride(t *testing.T) {
	t.Setenv(OverrideEnv, "")

	tests := []struct {
		name     string
		envValue string
		limit    int
		want     int
	}{
		{name: "Valid override", envValue: "5", want: 5},
		{name: "Override respects limit", envValue: "50", limit: 8, want: 8},
		{name: "Zero is ignored", envValue: "0", want: Count(1.0, 0)},
		{name: "Negative is ignored", envValue: "-3", want: Count(1.0, 0)},
		{name: "Garbage is ignored", envValue: "many", want: Count(1.0, 0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(OverrideEnv, tt.envValue)
			if got := Count(1.0, tt.limit); got != tt.want {
				t.Errorf("Count(1.0, %d) with %s=%q = %d, want %d",
					tt.limit, OverrideEnv, tt.envValue, got, tt.want)
			}
		})
	}
}

func TestForIOIsAtLeastForCPU(t *testing.T) {
	t.Setenv(OverrideEnv, "")

	if ForIO(0) < ForCPU(0) {
		t.Errorf("ForIO(0) = %d should be >= ForCPU(0) = %d", ForIO(0), ForCPU(0))
	}
}

func TestForExtraction(t *testing.T) {
	t.Setenv(OverrideEnv, "")

	got := ForExtraction()
	if got < 1 || got > DefaultExtractionLimit {
		t.Errorf("ForExtraction() = %d, want within [1, %d]", got, DefaultExtractionLimit)
	}

	t.Setenv(OverrideEnv, "3")
	if got := ForExtraction(); got != 3 {
		t.Errorf("ForExtraction() with override = %d, want 3", got)
	}
}
