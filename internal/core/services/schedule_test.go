package services

import (
	"testing"
	"time"

	"lendbridge/internal/pkg/money"
)

func TestMonthlyEMI(t *testing.T) {
	cases := []struct {
		principal float64
		rate      float64
		tenure    int
		want      float64
	}{
		{120000.00, 12.00, 12, 10661.85},
		{50000.00, 0.00, 10, 5000.00},
		{100000.00, 10.50, 24, 4637.60},
	}
	for _, c := range cases {
		if got := MonthlyEMI(c.principal, c.rate, c.tenure); got != c.want {
			t.Errorf("MonthlyEMI(%v, %v, %d) = %v, want %v", c.principal, c.rate, c.tenure, got, c.want)
		}
	}
}

func TestGenerateScheduleFirstInstallmentSplit(t *testing.T) {
	start := time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)
	entries := GenerateSchedule("loan-1", 120000.00, 12.00, 12, start)

	if len(entries) != 12 {
		t.Fatalf("expected 12 entries, got %d", len(entries))
	}

	first := entries[0]
	if first.EMINumber != 1 {
		t.Errorf("first entry number = %d", first.EMINumber)
	}
	if first.InterestComponent != 1200.00 {
		t.Errorf("first interest = %v, want 1200.00", first.InterestComponent)
	}
	if first.PrincipalComponent != 9461.85 {
		t.Errorf("first principal = %v, want 9461.85", first.PrincipalComponent)
	}
	if first.EMIAmount != 10661.85 {
		t.Errorf("first emi = %v, want 10661.85", first.EMIAmount)
	}
	if !first.DueDate.Equal(start.AddDate(0, 1, 0)) {
		t.Errorf("first due date = %v", first.DueDate)
	}
}

func TestGenerateSchedulePrincipalSumsExactly(t *testing.T) {
	cases := []struct {
		principal float64
		rate      float64
		tenure    int
	}{
		{120000.00, 12.00, 12},
		{50000.00, 0.00, 10},
		{100000.00, 10.50, 24},
		{750000.00, 8.75, 60},
		{9999.99, 18.00, 6},
	}
	start := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	for _, c := range cases {
		entries := GenerateSchedule("loan-1", c.principal, c.rate, c.tenure, start)
		if len(entries) != c.tenure {
			t.Fatalf("%v/%v: expected %d entries, got %d", c.principal, c.rate, c.tenure, len(entries))
		}
		var sum int64
		for _, e := range entries {
			sum += money.Cents(e.PrincipalComponent)
		}
		if sum != money.Cents(c.principal) {
			t.Errorf("%v/%v/%d: principal components sum to %d cents, want %d",
				c.principal, c.rate, c.tenure, sum, money.Cents(c.principal))
		}
	}
}

func TestGenerateScheduleOrderingAndDates(t *testing.T) {
	start := time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC)
	entries := GenerateSchedule("loan-1", 100000.00, 10.50, 24, start)

	for i, e := range entries {
		if e.EMINumber != i+1 {
			t.Fatalf("entry %d has emi_number %d, numbering must be contiguous from 1", i, e.EMINumber)
		}
		want := start.AddDate(0, i+1, 0)
		if !e.DueDate.Equal(want) {
			t.Errorf("entry %d due date = %v, want %v", e.EMINumber, e.DueDate, want)
		}
		if e.IsPaid {
			t.Errorf("entry %d generated as paid", e.EMINumber)
		}
	}
}

func TestGenerateScheduleInterestShrinks(t *testing.T) {
	start := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	entries := GenerateSchedule("loan-1", 120000.00, 12.00, 12, start)

	for i := 1; i < len(entries); i++ {
		if entries[i].InterestComponent >= entries[i-1].InterestComponent {
			t.Errorf("interest component must shrink: entry %d has %v after %v",
				entries[i].EMINumber, entries[i].InterestComponent, entries[i-1].InterestComponent)
		}
		if entries[i].PrincipalComponent <= entries[i-1].PrincipalComponent {
			t.Errorf("principal component must grow: entry %d has %v after %v",
				entries[i].EMINumber, entries[i].PrincipalComponent, entries[i-1].PrincipalComponent)
		}
	}
}

func TestGenerateScheduleZeroRate(t *testing.T) {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	entries := GenerateSchedule("loan-1", 50000.00, 0.00, 10, start)

	for _, e := range entries {
		if e.InterestComponent != 0 {
			t.Errorf("entry %d: zero-rate schedule has interest %v", e.EMINumber, e.InterestComponent)
		}
		if e.PrincipalComponent != 5000.00 {
			t.Errorf("entry %d: principal = %v, want 5000.00", e.EMINumber, e.PrincipalComponent)
		}
	}
}
