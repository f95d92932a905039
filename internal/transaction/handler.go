package transaction

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"fintrack-backend/internal/apperr"
	"fintrack-backend/internal/auth"
	"fintrack-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

const notFoundMessage = "Transaction not found or you don't have permission to access it"

func errNotFound() error {
	return apperr.NotFound(notFoundMessage)
}

func parseID(c *fiber.Ctx) (uint, error) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, fiber.NewError(fiber.StatusBadRequest, "Invalid transaction id")
	}
	return uint(id), nil
}

// loadOwned fetches the :id transaction for the current user. A missing row
// and one owned by someone else give the same 404.
func loadOwned(c *fiber.Ctx, store *Store) (uint, *models.Transaction, error) {
	userID, err := auth.UserID(c)
	if err != nil {
		return 0, nil, err
	}
	id, err := parseID(c)
	if err != nil {
		return 0, nil, err
	}
	tx, err := store.FindOwned(c.UserContext(), userID, id)
	if errors.Is(err, ErrNotFound) {
		return 0, nil, errNotFound()
	}
	if err != nil {
		return 0, nil, err
	}
	return userID, tx, nil
}

// POST /api/transactions/create
func CreateHandler(store *Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := auth.UserID(c)
		if err != nil {
			return err
		}

		var body CreateRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		tx, err := body.Build(userID, time.Now().UTC())
		if err != nil {
			return err
		}
		if err := store.Create(c.UserContext(), &tx); err != nil {
			return err
		}

		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"message":     "Transaction created successfully",
			"transaction": ToResponse(tx),
		})
	}
}

// GET /api/transactions/all?keyword=&type=&recurringStatus=&pageSize=&pageNumber=
func ListHandler(store *Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := auth.UserID(c)
		if err != nil {
			return err
		}

		filter := ListFilter{
			Keyword:    c.Query("keyword"),
			PageSize:   c.QueryInt("pageSize", DefaultPageSize),
			PageNumber: c.QueryInt("pageNumber", 1),
		}
		if t := strings.ToUpper(c.Query("type")); t != "" {
			filter.Type = models.TransactionType(t)
			if !filter.Type.Valid() {
				return fiber.NewError(fiber.StatusBadRequest, "Transaction type must either INCOME or EXPENSE")
			}
		}
		switch rs := RecurringStatus(strings.ToUpper(c.Query("recurringStatus"))); rs {
		case "":
		case Recurring, NonRecurring:
			filter.RecurringStatus = rs
		default:
			return fiber.NewError(fiber.StatusBadRequest, "recurringStatus must be RECURRING or NON_RECURRING")
		}

		page, err := store.List(c.UserContext(), userID, filter)
		if err != nil {
			return err
		}

		return c.JSON(fiber.Map{
			"message":      "Transactions fetched successfully",
			"transactions": ToResponses(page.Items),
			"pagination":   PaginationOf(page),
		})
	}
}

// GET /api/transactions/:id
func GetHandler(store *Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		_, tx, err := loadOwned(c, store)
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{
			"message":     "Transaction fetched successfully",
			"transaction": ToResponse(*tx),
		})
	}
}

// PUT /api/transactions/update/:id
func UpdateHandler(store *Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, tx, err := loadOwned(c, store)
		if err != nil {
			return err
		}

		var body UpdateRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
		if err := body.Apply(tx, time.Now().UTC()); err != nil {
			return err
		}

		if err := store.UpdateOwned(c.UserContext(), userID, tx); err != nil {
			if errors.Is(err, ErrNotFound) {
				return errNotFound()
			}
			return err
		}

		return c.JSON(fiber.Map{
			"message":     "Transaction updated successfully",
			"transaction": ToResponse(*tx),
		})
	}
}

// Duplicate copies an owned transaction as a one-off entry.
func Duplicate(src models.Transaction) models.Transaction {
	desc := "Duplicated transaction"
	if src.Description != nil && *src.Description != "" {
		desc = *src.Description + " (Duplicate)"
	}
	return models.Transaction{
		UserID:        src.UserID,
		Type:          src.Type,
		Title:         "Duplicate - " + src.Title,
		Amount:        src.Amount,
		Category:      src.Category,
		ReceiptURL:    src.ReceiptURL,
		Description:   &desc,
		Date:          src.Date,
		IsRecurring:   false,
		Status:        src.Status,
		PaymentMethod: src.PaymentMethod,
	}
}

// PUT /api/transactions/duplicate/:id
func DuplicateHandler(store *Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		_, src, err := loadOwned(c, store)
		if err != nil {
			return err
		}

		dup := Duplicate(*src)
		if err := store.Create(c.UserContext(), &dup); err != nil {
			return err
		}

		return c.JSON(fiber.Map{
			"message":     "Transaction duplicated successfully",
			"transaction": ToResponse(dup),
		})
	}
}

// DELETE /api/transactions/delete/:id
func DeleteHandler(store *Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := auth.UserID(c)
		if err != nil {
			return err
		}
		id, err := parseID(c)
		if err != nil {
			return err
		}

		if err := store.DeleteOwned(c.UserContext(), userID, id); err != nil {
			if errors.Is(err, ErrNotFound) {
				return apperr.NotFound("Transaction not found or you don't have permission to delete it")
			}
			return err
		}

		return c.JSON(fiber.Map{"message": "Transaction deleted successfully"})
	}
}

// POST /api/transactions/delete/bulk
func BulkDeleteHandler(store *Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := auth.UserID(c)
		if err != nil {
			return err
		}

		var body BulkDeleteRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
		if err := body.Validate(); err != nil {
			return err
		}

		deleted, err := store.DeleteManyOwned(c.UserContext(), userID, body.TransactionIDs)
		if err != nil {
			return err
		}
		if deleted == 0 {
			return apperr.NotFound("No transactions found or you don't have permission to delete them")
		}

		return c.JSON(fiber.Map{
			"success":      true,
			"message":      "Transactions deleted successfully",
			"deletedCount": deleted,
		})
	}
}

// POST /api/transactions/bulk-transaction
func BulkCreateHandler(store *Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := auth.UserID(c)
		if err != nil {
			return err
		}

		var body BulkCreateRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		rows, err := body.Build(userID, time.Now().UTC())
		if err != nil {
			return err
		}
		if err := store.CreateMany(c.UserContext(), rows); err != nil {
			return err
		}

		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"success":       true,
			"message":       "Bulk transactions inserted successfully",
			"insertedCount": len(rows),
			"transactions":  ToResponses(rows),
		})
	}
}
