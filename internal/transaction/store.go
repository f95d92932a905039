package transaction

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"fintrack-backend/internal/models"

	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

var ErrNotFound = errors.New("transaction not found")

type RecurringStatus string

const (
	Recurring    RecurringStatus = "RECURRING"
	NonRecurring RecurringStatus = "NON_RECURRING"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

type ListFilter struct {
	Keyword         string
	Type            models.TransactionType
	RecurringStatus RecurringStatus
	PageSize        int
	PageNumber      int
}

func (f *ListFilter) normalize() {
	if f.PageSize <= 0 {
		f.PageSize = DefaultPageSize
	}
	if f.PageSize > MaxPageSize {
		f.PageSize = MaxPageSize
	}
	if f.PageNumber <= 0 {
		f.PageNumber = 1
	}
}

func (f ListFilter) Skip() int {
	return (f.PageNumber - 1) * f.PageSize
}

type Page struct {
	Items      []models.Transaction
	TotalCount int64
	Filter     ListFilter
}

func (p Page) TotalPages() int {
	if p.Filter.PageSize == 0 {
		return 0
	}
	return int((p.TotalCount + int64(p.Filter.PageSize) - 1) / int64(p.Filter.PageSize))
}

// Store is the typed query layer over the transactions table. Every user
// facing method is scoped by user id; a row owned by someone else behaves
// exactly like a missing one.
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// DB exposes the handle for callers that need their own db.Transaction.
func (s *Store) DB() *gorm.DB { return s.db }

// WithTx returns a store bound to tx.
func (s *Store) WithTx(tx *gorm.DB) *Store { return &Store{db: tx} }

func (s *Store) filtered(ctx context.Context, userID uint, f ListFilter) *gorm.DB {
	q := s.db.WithContext(ctx).Model(&models.Transaction{}).Where("user_id = ?", userID)

	if kw := strings.TrimSpace(f.Keyword); kw != "" {
		like := "%" + strings.ToLower(kw) + "%"
		q = q.Where("(LOWER(title) LIKE ? OR LOWER(category) LIKE ?)", like, like)
	}
	if f.Type != "" {
		q = q.Where("type = ?", f.Type)
	}
	switch f.RecurringStatus {
	case Recurring:
		q = q.Where("is_recurring = ?", true)
	case NonRecurring:
		q = q.Where("is_recurring = ?", false)
	}
	return q
}

// List returns one page of the user's transactions, newest first. The page
// and the total count are fetched concurrently.
func (s *Store) List(ctx context.Context, userID uint, f ListFilter) (Page, error) {
	f.normalize()
	page := Page{Filter: f}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var items []models.Transaction
		err := s.filtered(gctx, userID, f).
			Order("created_at DESC").
			Order("id DESC").
			Limit(f.PageSize).
			Offset(f.Skip()).
			Find(&items).Error
		if err != nil {
			return fmt.Errorf("list transactions: %w", err)
		}
		page.Items = items
		return nil
	})
	g.Go(func() error {
		var total int64
		if err := s.filtered(gctx, userID, f).Count(&total).Error; err != nil {
			return fmt.Errorf("count transactions: %w", err)
		}
		page.TotalCount = total
		return nil
	})
	if err := g.Wait(); err != nil {
		return Page{}, err
	}
	if page.Items == nil {
		page.Items = []models.Transaction{}
	}
	return page, nil
}

func (s *Store) FindOwned(ctx context.Context, userID, id uint) (*models.Transaction, error) {
	var tx models.Transaction
	err := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&tx).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find transaction %d: %w", id, err)
	}
	return &tx, nil
}

func (s *Store) Create(ctx context.Context, tx *models.Transaction) error {
	if err := s.db.WithContext(ctx).Create(tx).Error; err != nil {
		return fmt.Errorf("create transaction: %w", err)
	}
	return nil
}

// CreateMany inserts all rows in one database transaction.
func (s *Store) CreateMany(ctx context.Context, txs []models.Transaction) error {
	if len(txs) == 0 {
		return nil
	}
	err := s.db.WithContext(ctx).Transaction(func(db *gorm.DB) error {
		return db.CreateInBatches(&txs, 100).Error
	})
	if err != nil {
		return fmt.Errorf("create transactions: %w", err)
	}
	return nil
}

// UpdateOwned saves every column of tx, which must already belong to userID.
func (s *Store) UpdateOwned(ctx context.Context, userID uint, tx *models.Transaction) error {
	res := s.db.WithContext(ctx).
		Model(&models.Transaction{}).
		Where("id = ? AND user_id = ?", tx.ID, userID).
		Select("*").
		Omit("id", "user_id", "created_at", "User").
		Updates(tx)
	if res.Error != nil {
		return fmt.Errorf("update transaction %d: %w", tx.ID, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) DeleteOwned(ctx context.Context, userID, id uint) error {
	res := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).Delete(&models.Transaction{})
	if res.Error != nil {
		return fmt.Errorf("delete transaction %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteManyOwned deletes the listed ids the user owns and reports how many
// went away. Foreign ids are silently skipped.
func (s *Store) DeleteManyOwned(ctx context.Context, userID uint, ids []uint) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res := s.db.WithContext(ctx).Where("user_id = ? AND id IN ?", userID, ids).Delete(&models.Transaction{})
	if res.Error != nil {
		return 0, fmt.Errorf("delete transactions: %w", res.Error)
	}
	return res.RowsAffected, nil
}

// Between loads the user's rows whose occurrence date falls in [from, to].
// Nil bounds are open. An empty typ matches both types.
func (s *Store) Between(ctx context.Context, userID uint, from, to *time.Time, typ models.TransactionType) ([]models.Transaction, error) {
	q := s.db.WithContext(ctx).Where("user_id = ?", userID)
	if from != nil {
		q = q.Where("date >= ?", from.UTC())
	}
	if to != nil {
		q = q.Where("date <= ?", to.UTC())
	}
	if typ != "" {
		q = q.Where("type = ?", typ)
	}

	var rows []models.Transaction
	if err := q.Order("date ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("load transactions in range: %w", err)
	}
	return rows, nil
}

// CountBetween counts the user's rows in [from, to].
func (s *Store) CountBetween(ctx context.Context, userID uint, from, to time.Time) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).
		Model(&models.Transaction{}).
		Where("user_id = ? AND date >= ? AND date <= ?", userID, from.UTC(), to.UTC()).
		Count(&n).Error
	if err != nil {
		return 0, fmt.Errorf("count transactions in range: %w", err)
	}
	return n, nil
}

// DueRecurring returns every recurring template whose next date has passed.
func (s *Store) DueRecurring(ctx context.Context, now time.Time) ([]models.Transaction, error) {
	var rows []models.Transaction
	err := s.db.WithContext(ctx).
		Where("is_recurring = ? AND next_recurring_date IS NOT NULL AND next_recurring_date <= ?", true, now.UTC()).
		Order("next_recurring_date ASC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("load due recurring transactions: %w", err)
	}
	return rows, nil
}
