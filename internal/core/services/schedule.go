package services

import (
	"math"
	"time"

	"lendbridge/internal/adapters/persistence/models"
	"lendbridge/internal/pkg/money"
)

// MonthlyEMI computes the equated monthly installment for an amortizing
// loan: emi = P*r*(1+r)^n / ((1+r)^n - 1) with monthly rate r. A zero
// rate degenerates to straight principal division.
func MonthlyEMI(principal, annualRate float64, tenureMonths int) float64 {
	n := float64(tenureMonths)
	r := annualRate / 12 / 100
	if r == 0 {
		return money.Round2(principal / n)
	}
	factor := math.Pow(1+r, n)
	return money.Round2(principal * r * factor / (factor - 1))
}

// GenerateSchedule produces the full EMI schedule for a loan. Each
// entry's interest component is the outstanding balance before the entry
// times the monthly rate; the principal component is the remainder of
// the EMI. The final installment absorbs residual cents so the principal
// components sum to the original principal exactly. Due dates step one
// calendar month from startDate.
func GenerateSchedule(loanID string, principal, annualRate float64, tenureMonths int, startDate time.Time) []models.EMISchedule {
	emi := MonthlyEMI(principal, annualRate, tenureMonths)
	r := annualRate / 12 / 100

	entries := make([]models.EMISchedule, 0, tenureMonths)
	balance := money.Round2(principal)
	for i := 1; i <= tenureMonths; i++ {
		interest := money.Round2(balance * r)
		principalPart := money.Round2(emi - interest)
		amount := emi
		if i == tenureMonths || principalPart > balance {
			// last entry absorbs the rounding residual
			principalPart = balance
			amount = money.Round2(principalPart + interest)
		}
		entries = append(entries, models.EMISchedule{
			LoanID:             loanID,
			EMINumber:          i,
			DueDate:            startDate.AddDate(0, i, 0),
			EMIAmount:          amount,
			PrincipalComponent: principalPart,
			InterestComponent:  interest,
		})
		balance = money.Round2(balance - principalPart)
		if balance <= 0 {
			balance = 0
		}
	}
	return entries
}
