package jobs

import (
	"context"
	"fmt"
	"time"

	"fintrack-backend/internal/models"
	"fintrack-backend/internal/recurrence"
	"fintrack-backend/internal/transaction"

	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// RecurringProcessor materialises due occurrences of recurring transactions.
type RecurringProcessor struct {
	store *transaction.Store
	log   zerolog.Logger
	now   func() time.Time
}

func NewRecurringProcessor(store *transaction.Store, log zerolog.Logger) *RecurringProcessor {
	return &RecurringProcessor{
		store: store,
		log:   log.With().Str("job", "recurring").Logger(),
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// Run processes every template due at the current time and returns how many
// occurrences were created.
func (p *RecurringProcessor) Run(ctx context.Context) (int, error) {
	return p.RunAt(ctx, p.now())
}

func (p *RecurringProcessor) RunAt(ctx context.Context, now time.Time) (int, error) {
	due, err := p.store.DueRecurring(ctx, now)
	if err != nil {
		return 0, err
	}

	created := 0
	for i := range due {
		tmpl := due[i]
		if err := p.processOne(ctx, &tmpl, now); err != nil {
			p.log.Error().Err(err).
				Uint("transaction_id", tmpl.ID).
				Uint("user_id", tmpl.UserID).
				Msg("recurring transaction failed")
			continue
		}
		created++
	}

	if len(due) > 0 {
		p.log.Info().Int("due", len(due)).Int("created", created).Msg("recurring transactions processed")
	}
	return created, nil
}

func (p *RecurringProcessor) processOne(ctx context.Context, tmpl *models.Transaction, now time.Time) error {
	if tmpl.RecurringInterval == nil || tmpl.NextRecurringDate == nil {
		return fmt.Errorf("template %d has no schedule", tmpl.ID)
	}
	dueAt := tmpl.NextRecurringDate.UTC()

	next, err := recurrence.NextFrom(dueAt, *tmpl.RecurringInterval, now)
	if err != nil {
		return err
	}

	return p.store.DB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		occurrence := Occurrence(*tmpl, dueAt)
		if err := p.store.WithTx(tx).Create(ctx, &occurrence); err != nil {
			return err
		}

		res := tx.Model(&models.Transaction{}).
			Where("id = ? AND is_recurring = ?", tmpl.ID, true).
			Updates(map[string]any{
				"next_recurring_date": next,
				"last_processed":      now,
			})
		if res.Error != nil {
			return fmt.Errorf("advance template: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("template %d is no longer recurring", tmpl.ID)
		}
		return nil
	})
}

// Occurrence is the one-off copy of tmpl dated at dueAt.
func Occurrence(tmpl models.Transaction, dueAt time.Time) models.Transaction {
	return models.Transaction{
		UserID:        tmpl.UserID,
		Type:          tmpl.Type,
		Title:         tmpl.Title,
		Amount:        tmpl.Amount,
		Category:      tmpl.Category,
		ReceiptURL:    tmpl.ReceiptURL,
		Description:   tmpl.Description,
		Date:          dueAt,
		IsRecurring:   false,
		Status:        models.StatusCompleted,
		PaymentMethod: tmpl.PaymentMethod,
	}
}
