package jobs

import (
	"context"
	"fmt"
	"time"

	"fintrack-backend/internal/analytics"
	"fintrack-backend/internal/daterange"
	"fintrack-backend/internal/models"
	"fintrack-backend/internal/money"
	"fintrack-backend/internal/notify"
	"fintrack-backend/internal/transaction"

	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// ReportSender builds the previous month's report for every user whose
// settings are due.
type ReportSender struct {
	db        *gorm.DB
	store     *transaction.Store
	publisher notify.Publisher
	log       zerolog.Logger
	now       func() time.Time
}

func NewReportSender(db *gorm.DB, publisher notify.Publisher, log zerolog.Logger) *ReportSender {
	return &ReportSender{
		db:        db,
		store:     transaction.NewStore(db),
		publisher: publisher,
		log:       log.With().Str("job", "monthly_report").Logger(),
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (s *ReportSender) Run(ctx context.Context) (int, error) {
	return s.RunAt(ctx, s.now())
}

// RunAt returns the number of reports recorded.
func (s *ReportSender) RunAt(ctx context.Context, now time.Time) (int, error) {
	var due []models.ReportSettings
	err := s.db.WithContext(ctx).
		Preload("User").
		Where("is_enabled = ? AND next_report_date IS NOT NULL AND next_report_date <= ?", true, now.UTC()).
		Find(&due).Error
	if err != nil {
		return 0, fmt.Errorf("load due report settings: %w", err)
	}

	done := 0
	for i := range due {
		settings := due[i]
		status, err := s.sendOne(ctx, &settings, now)
		if err != nil {
			s.log.Error().Err(err).Uint("user_id", settings.UserID).Msg("monthly report failed")
			continue
		}
		s.log.Info().Uint("user_id", settings.UserID).Str("status", string(status)).Msg("monthly report recorded")
		done++
	}
	return done, nil
}

func (s *ReportSender) sendOne(ctx context.Context, settings *models.ReportSettings, now time.Time) (models.ReportStatus, error) {
	if settings.User == nil {
		return "", fmt.Errorf("settings %d have no user", settings.ID)
	}
	from, to, period := daterange.PreviousMonth(now)

	count, err := s.store.CountBetween(ctx, settings.UserID, from, to)
	if err != nil {
		return "", err
	}

	rep := models.Report{
		UserID:   settings.UserID,
		Period:   period,
		SentDate: now,
		Status:   models.ReportPending,
	}
	if count == 0 {
		rep.Status = models.ReportNoActivity
	}
	if err := s.db.WithContext(ctx).Create(&rep).Error; err != nil {
		return "", fmt.Errorf("create report: %w", err)
	}

	if count > 0 {
		msg, err := s.buildMessage(ctx, settings.User, &rep, from, to, int(count), now)
		if err == nil {
			err = s.publisher.PublishMonthlyReport(ctx, msg)
		}
		rep.Status = models.ReportSent
		if err != nil {
			s.log.Warn().Err(err).Uint("report_id", rep.ID).Msg("monthly report not published")
			rep.Status = models.ReportFailed
		}
		if err := s.db.WithContext(ctx).Model(&rep).Update("status", rep.Status).Error; err != nil {
			return "", fmt.Errorf("update report status: %w", err)
		}
	}

	next := daterange.StartOfNextMonth(now)
	err = s.db.WithContext(ctx).Model(settings).Updates(map[string]any{
		"last_sent_date":   now,
		"next_report_date": next,
	}).Error
	if err != nil {
		return "", fmt.Errorf("advance report settings: %w", err)
	}
	return rep.Status, nil
}

func (s *ReportSender) buildMessage(ctx context.Context, user *models.User, rep *models.Report, from, to time.Time, count int, now time.Time) (*notify.MonthlyReport, error) {
	rows, err := s.store.Between(ctx, user.ID, &from, &to, "")
	if err != nil {
		return nil, err
	}
	totals := analytics.Sum(rows)
	breakdown := analytics.BuildBreakdown(rows, daterange.Range{From: &from, To: &to, Value: daterange.Custom})

	top := make([]string, 0, len(breakdown.Breakdown))
	for _, e := range breakdown.Breakdown {
		top = append(top, e.Name)
	}

	return &notify.MonthlyReport{
		ReportID:     rep.ID,
		UserID:       user.ID,
		Email:        user.Email,
		Name:         user.Name,
		Period:       rep.Period,
		From:         from,
		To:           to,
		TotalIncome:  money.ToMajor(totals.Income),
		TotalExpense: money.ToMajor(totals.Expenses),
		Balance:      money.ToMajor(totals.Balance()),
		SavingsRate:  money.Percent(totals.Balance(), totals.Income, 1),
		Transactions: count,
		TopExpenses:  top,
		Timestamp:    now,
	}, nil
}
