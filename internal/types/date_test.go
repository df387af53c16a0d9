package types

import (
	"testing"
	"time"
)

func TestNextBillingDate(t *testing.T) {
	tests := []struct {
		name    string
		start   time.Time
		count   int
		period  BillingPeriod
		want    time.Time
		wantErr bool
	}{
		{
			name:   "monthly",
			start:  time.Date(2025, time.January, 15, 0, 0, 0, 0, time.UTC),
			count:  1,
			period: BILLING_PERIOD_MONTHLY,
			want:   time.Date(2025, time.February, 15, 0, 0, 0, 0, time.UTC),
		},
		{
			name:   "monthly clamps to the end of February",
			start:  time.Date(2025, time.January, 31, 0, 0, 0, 0, time.UTC),
			count:  1,
			period: BILLING_PERIOD_MONTHLY,
			want:   time.Date(2025, time.February, 28, 0, 0, 0, 0, time.UTC),
		},
		{
			name:   "monthly clamps to leap-year February",
			start:  time.Date(2024, time.January, 31, 0, 0, 0, 0, time.UTC),
			count:  1,
			period: BILLING_PERIOD_MONTHLY,
			want:   time.Date(2024, time.February, 29, 0, 0, 0, 0, time.UTC),
		},
		{
			name:   "two months crosses a year boundary",
			start:  time.Date(2024, time.November, 30, 0, 0, 0, 0, time.UTC),
			count:  2,
			period: BILLING_PERIOD_MONTHLY,
			want:   time.Date(2025, time.January, 30, 0, 0, 0, 0, time.UTC),
		},
		{
			name:   "weekly",
			start:  time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC),
			count:  3,
			period: BILLING_PERIOD_WEEKLY,
			want:   time.Date(2025, time.March, 31, 0, 0, 0, 0, time.UTC),
		},
		{
			name:   "daily",
			start:  time.Date(2025, time.February, 27, 0, 0, 0, 0, time.UTC),
			count:  5,
			period: BILLING_PERIOD_DAILY,
			want:   time.Date(2025, time.March, 4, 0, 0, 0, 0, time.UTC),
		},
		{
			name:   "quarterly",
			start:  time.Date(2025, time.January, 15, 0, 0, 0, 0, time.UTC),
			count:  1,
			period: BILLING_PERIOD_QUARTERLY,
			want:   time.Date(2025, time.April, 15, 0, 0, 0, 0, time.UTC),
		},
		{
			name:   "half yearly",
			start:  time.Date(2025, time.January, 15, 0, 0, 0, 0, time.UTC),
			count:  1,
			period: BILLING_PERIOD_HALF_YEAR,
			want:   time.Date(2025, time.July, 15, 0, 0, 0, 0, time.UTC),
		},
		{
			name:   "annual preserves leap day clamping",
			start:  time.Date(2024, time.February, 29, 0, 0, 0, 0, time.UTC),
			count:  1,
			period: BILLING_PERIOD_ANNUAL,
			want:   time.Date(2025, time.February, 28, 0, 0, 0, 0, time.UTC),
		},
		{
			name:    "zero count is invalid",
			start:   time.Date(2025, time.January, 15, 0, 0, 0, 0, time.UTC),
			count:   0,
			period:  BILLING_PERIOD_MONTHLY,
			wantErr: true,
		},
		{
			name:    "unknown period is invalid",
			start:   time.Date(2025, time.January, 15, 0, 0, 0, 0, time.UTC),
			count:   1,
			period:  BillingPeriod("FORTNIGHTLY"),
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NextBillingDate(tt.start, tt.count, tt.period)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %v", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !got.Equal(tt.want) {
				t.Errorf("NextBillingDate() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPrevBillingDate(t *testing.T) {
	tests := []struct {
		name   string
		start  time.Time
		count  int
		period BillingPeriod
		want   time.Time
	}{
		{
			name:   "monthly",
			start:  time.Date(2025, time.February, 15, 0, 0, 0, 0, time.UTC),
			count:  1,
			period: BILLING_PERIOD_MONTHLY,
			want:   time.Date(2025, time.January, 15, 0, 0, 0, 0, time.UTC),
		},
		{
			name:   "monthly from March 31 clamps backwards",
			start:  time.Date(2025, time.March, 31, 0, 0, 0, 0, time.UTC),
			count:  1,
			period: BILLING_PERIOD_MONTHLY,
			want:   time.Date(2025, time.February, 28, 0, 0, 0, 0, time.UTC),
		},
		{
			name:   "weekly",
			start:  time.Date(2025, time.March, 31, 0, 0, 0, 0, time.UTC),
			count:  2,
			period: BILLING_PERIOD_WEEKLY,
			want:   time.Date(2025, time.March, 17, 0, 0, 0, 0, time.UTC),
		},
		{
			name:   "annual",
			start:  time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC),
			count:  1,
			period: BILLING_PERIOD_ANNUAL,
			want:   time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := PrevBillingDate(tt.start, tt.count, tt.period)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !got.Equal(tt.want) {
				t.Errorf("PrevBillingDate() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAddClampedDate_PreservesClock(t *testing.T) {
	start := time.Date(2025, time.January, 31, 14, 30, 45, 0, time.UTC)
	got := AddClampedDate(start, 0, 1, 0)
	want := time.Date(2025, time.February, 28, 14, 30, 45, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("AddClampedDate() = %v, want %v", got, want)
	}
}
