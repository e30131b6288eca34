package services

import (
	"context"
	"log"
	"time"

	"lendbridge/internal/adapters/messaging"
	"lendbridge/internal/adapters/persistence/repositories"
	"lendbridge/internal/core/domain"

	"github.com/robfig/cron/v3"
)

// reminderWindowDays is how far ahead the due-date reminder looks
const reminderWindowDays = 3

// SweepService runs the daily ledger sweep: loans whose next due date has
// passed with the installment still unpaid go overdue, upcoming due dates
// produce reminder events, and expired OTP and refresh-token rows are
// purged.
type SweepService struct {
	loanRepo         *repositories.LoanRepository
	refreshTokenRepo repositories.RefreshTokenRepository
	otpService       *OTPService
	producer         *messaging.Producer
	cron             *cron.Cron
}

// NewSweepService creates a new sweep service
func NewSweepService(
	loanRepo *repositories.LoanRepository,
	refreshTokenRepo repositories.RefreshTokenRepository,
	otpService *OTPService,
	producer *messaging.Producer,
) *SweepService {
	return &SweepService{
		loanRepo:         loanRepo,
		refreshTokenRepo: refreshTokenRepo,
		otpService:       otpService,
		producer:         producer,
		cron:             cron.New(),
	}
}

// Start schedules the daily sweep
func (s *SweepService) Start() error {
	if _, err := s.cron.AddFunc("30 8 * * *", s.RunDailySweep); err != nil {
		return err
	}
	s.cron.Start()
	log.Println("🚀 SweepService started (daily at 08:30)")
	return nil
}

// Stop stops the scheduler without interrupting a running sweep
func (s *SweepService) Stop() {
	s.cron.Stop()
	log.Println("🛑 SweepService stopped")
}

// RunDailySweep executes one full sweep pass. Exposed so an operator can
// trigger it outside the schedule.
func (s *SweepService) RunDailySweep() {
	ctx := context.Background()

	s.markOverdueLoans(ctx)
	s.sendDueReminders(ctx)
	s.purgeExpired(ctx)
}

// markOverdueLoans flips active loans with a past next_due_date to overdue
func (s *SweepService) markOverdueLoans(ctx context.Context) {
	today := time.Now().UTC().Truncate(24 * time.Hour)

	loans, err := s.loanRepo.ListPastDue(ctx, today)
	if err != nil {
		log.Printf("❌ Overdue sweep query error: %v", err)
		return
	}

	for _, loan := range loans {
		loan.Status = domain.LoanOverdue
		if err := s.loanRepo.Update(ctx, loan); err != nil {
			log.Printf("❌ Overdue sweep update error (loan %s): %v", loan.ID, err)
			continue
		}

		s.producer.Publish(messaging.EventLoanOverdue, loan.UserID, map[string]interface{}{
			"loan_id":        loan.ID,
			"account_number": loan.AccountNumber,
			"next_due_date":  loan.NextDueDate,
		})
	}

	if len(loans) > 0 {
		log.Printf("⚠️ Overdue sweep: %d loan(s) marked overdue", len(loans))
	}
}

// sendDueReminders publishes reminder events for installments coming due
func (s *SweepService) sendDueReminders(ctx context.Context) {
	from := time.Now().UTC().Truncate(24 * time.Hour)
	to := from.AddDate(0, 0, reminderWindowDays)

	loans, err := s.loanRepo.ListDueBetween(ctx, from, to)
	if err != nil {
		log.Printf("❌ Reminder sweep query error: %v", err)
		return
	}

	for _, loan := range loans {
		s.producer.Publish(messaging.EventEMIDueReminder, loan.UserID, map[string]interface{}{
			"loan_id":        loan.ID,
			"account_number": loan.AccountNumber,
			"monthly_emi":    loan.MonthlyEMI,
			"next_due_date":  loan.NextDueDate,
		})
	}
}

// purgeExpired removes dead OTP and refresh-token rows
func (s *SweepService) purgeExpired(ctx context.Context) {
	if err := s.otpService.PurgeExpired(ctx); err != nil {
		log.Printf("❌ OTP purge error: %v", err)
	}
	if err := s.refreshTokenRepo.DeleteExpired(ctx); err != nil {
		log.Printf("❌ Refresh token purge error: %v", err)
	}
}
