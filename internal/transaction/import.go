package transaction

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"fintrack-backend/internal/auth"
	"fintrack-backend/internal/daterange"
	"fintrack-backend/internal/models"
	"fintrack-backend/internal/validation"

	"github.com/gofiber/fiber/v2"
	"github.com/xuri/excelize/v2"
)

// Spreadsheet columns, in order.
const (
	colTitle = iota
	colType
	colAmount
	colCategory
	colDate
	colPaymentMethod
	colDescription
)

// excel date renderings we accept besides ISO dates
var sheetDateLayouts = []string{"01-02-06", "1/2/2006", "1/2/06", "02.01.2006"}

// ParseSheet reads the first sheet of an .xlsx file into transactions owned
// by userID. A header row (first cell "title") is skipped, blank rows are
// ignored and every row problem is reported as rows[N].field with N the
// 1-based sheet row.
func ParseSheet(r io.Reader, userID uint, now time.Time) ([]models.Transaction, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, "Could not read the Excel file")
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fiber.NewError(fiber.StatusBadRequest, "The Excel file has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}

	start := 0
	if len(rows) > 0 && len(rows[0]) > 0 && strings.EqualFold(strings.TrimSpace(rows[0][0]), "title") {
		start = 1
	}

	errs := validation.Errors{}
	var out []models.Transaction
	for i := start; i < len(rows); i++ {
		row := rows[i]
		if isBlank(row) {
			continue
		}
		if len(out) >= maxBulkItems {
			errs.Add("rows", fmt.Sprintf("Must not exceed %d transactions", maxBulkItems))
			break
		}

		prefix := "rows[" + strconv.Itoa(i+1) + "]"
		req, rowErrs := rowRequest(row)
		if rowErrs != nil {
			errs.Merge(prefix, rowErrs)
			continue
		}
		tx, err := req.Build(userID, now)
		if verr, ok := err.(validation.Errors); ok {
			errs.Merge(prefix, verr)
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, tx)
	}

	if err := errs.Err(); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, fiber.NewError(fiber.StatusBadRequest, "The Excel file contains no transactions")
	}
	return out, nil
}

func rowRequest(row []string) (CreateRequest, validation.Errors) {
	cell := func(i int) string {
		if i < len(row) {
			return strings.TrimSpace(row[i])
		}
		return ""
	}

	errs := validation.Errors{}
	req := CreateRequest{
		Title:         cell(colTitle),
		Type:          models.TransactionType(strings.ToUpper(cell(colType))),
		Category:      cell(colCategory),
		PaymentMethod: models.PaymentMethod(strings.ToUpper(strings.ReplaceAll(cell(colPaymentMethod), " ", "_"))),
	}
	if d := cell(colDescription); d != "" {
		req.Description = &d
	}

	amount, err := strconv.ParseFloat(strings.ReplaceAll(cell(colAmount), ",", ""), 64)
	if err != nil {
		errs.Add("amount", "must be a number")
	}
	req.Amount = amount

	if raw := cell(colDate); raw != "" {
		d, ok := parseSheetDate(raw)
		if !ok {
			errs.Add("date", "must be a date (YYYY-MM-DD)")
		}
		req.Date = d.Format(time.RFC3339)
	}

	if len(errs) > 0 {
		return CreateRequest{}, errs
	}
	return req, nil
}

func parseSheetDate(s string) (time.Time, bool) {
	if d, ok := daterange.ParseDate(s); ok {
		return d, true
	}
	for _, layout := range sheetDateLayouts {
		if d, err := time.Parse(layout, s); err == nil {
			return d, true
		}
	}
	return time.Time{}, false
}

func isBlank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// POST /api/transactions/import (multipart: file)
func ImportHandler(store *Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := auth.UserID(c)
		if err != nil {
			return err
		}

		fileHeader, err := c.FormFile("file")
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "No file uploaded")
		}
		if !strings.HasSuffix(strings.ToLower(fileHeader.Filename), ".xlsx") {
			return fiber.NewError(fiber.StatusBadRequest, "Only .xlsx files can be imported")
		}

		file, err := fileHeader.Open()
		if err != nil {
			return fmt.Errorf("open upload: %w", err)
		}
		defer file.Close()

		rows, err := ParseSheet(file, userID, time.Now().UTC())
		if err != nil {
			return err
		}
		if err := store.CreateMany(c.UserContext(), rows); err != nil {
			return err
		}

		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"success":       true,
			"message":       "Transactions imported successfully",
			"insertedCount": len(rows),
			"transactions":  ToResponses(rows),
		})
	}
}
