package analytics

import (
	"time"

	"fintrack-backend/internal/auth"
	"fintrack-backend/internal/daterange"

	"github.com/gofiber/fiber/v2"
)

func resolveRange(c *fiber.Ctx) daterange.Range {
	return daterange.Resolve(c.Query("preset"), c.Query("from"), c.Query("to"), time.Now().UTC())
}

// GET /api/analytics/summary?preset=&from=&to=
func SummaryHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := auth.UserID(c)
		if err != nil {
			return err
		}
		summary, err := svc.Summary(c.UserContext(), userID, resolveRange(c))
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{
			"message": "Summary fetched successfully",
			"data":    summary,
		})
	}
}

// GET /api/analytics/chart?preset=&from=&to=
func ChartHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := auth.UserID(c)
		if err != nil {
			return err
		}
		chart, err := svc.Chart(c.UserContext(), userID, resolveRange(c))
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{
			"message": "Chart fetched successfully",
			"data":    chart,
		})
	}
}

// GET /api/analytics/expense-breakdown?preset=&from=&to=
func ExpenseBreakdownHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := auth.UserID(c)
		if err != nil {
			return err
		}
		breakdown, err := svc.ExpenseBreakdown(c.UserContext(), userID, resolveRange(c))
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{
			"message": "Expense breakdown fetched successfully",
			"data":    breakdown,
		})
	}
}
