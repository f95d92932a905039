package analytics

import (
	"context"

	"fintrack-backend/internal/daterange"
	"fintrack-backend/internal/models"
	"fintrack-backend/internal/transaction"

	"golang.org/x/sync/errgroup"
)

type Service struct {
	store *transaction.Store
}

func NewService(store *transaction.Store) *Service {
	return &Service{store: store}
}

// Summary loads the range and, unless it is all-time, the prior window
// concurrently.
func (s *Service) Summary(ctx context.Context, userID uint, r daterange.Range) (Summary, error) {
	prevFrom, prevTo, compare := PriorWindow(r)

	var cur, prev []models.Transaction
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		cur, err = s.store.Between(gctx, userID, r.From, r.To, "")
		return err
	})
	if compare {
		g.Go(func() error {
			var err error
			prev, err = s.store.Between(gctx, userID, &prevFrom, &prevTo, "")
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return Summary{}, err
	}

	if !compare {
		return BuildSummary(Sum(cur), nil, r, nil, nil), nil
	}
	p := Sum(prev)
	return BuildSummary(Sum(cur), &p, r, &prevFrom, &prevTo), nil
}

func (s *Service) Chart(ctx context.Context, userID uint, r daterange.Range) (Chart, error) {
	rows, err := s.store.Between(ctx, userID, r.From, r.To, "")
	if err != nil {
		return Chart{}, err
	}
	return BuildChart(rows, r), nil
}

func (s *Service) ExpenseBreakdown(ctx context.Context, userID uint, r daterange.Range) (Breakdown, error) {
	rows, err := s.store.Between(ctx, userID, r.From, r.To, models.TransactionExpense)
	if err != nil {
		return Breakdown{}, err
	}
	return BuildBreakdown(rows, r), nil
}
