package report

import (
	"errors"
	"fmt"
	"time"

	"fintrack-backend/internal/auth"
	"fintrack-backend/internal/daterange"
	"fintrack-backend/internal/models"
	"fintrack-backend/internal/transaction"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// GET /api/reports/all
func ListHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := auth.UserID(c)
		if err != nil {
			return err
		}

		pageSize := c.QueryInt("pageSize", transaction.DefaultPageSize)
		if pageSize <= 0 {
			pageSize = transaction.DefaultPageSize
		}
		if pageSize > transaction.MaxPageSize {
			pageSize = transaction.MaxPageSize
		}
		pageNumber := c.QueryInt("pageNumber", 1)
		if pageNumber <= 0 {
			pageNumber = 1
		}
		skip := (pageNumber - 1) * pageSize

		owned := func() *gorm.DB {
			return db.WithContext(c.UserContext()).Model(&models.Report{}).Where("user_id = ?", userID)
		}

		var total int64
		if err := owned().Count(&total).Error; err != nil {
			return fmt.Errorf("count reports: %w", err)
		}

		reports := []models.Report{}
		if err := owned().Order("sent_date DESC, id DESC").Offset(skip).Limit(pageSize).Find(&reports).Error; err != nil {
			return fmt.Errorf("list reports: %w", err)
		}

		return c.JSON(fiber.Map{
			"message": "Reports fetched successfully",
			"reports": reports,
			"pagination": transaction.Pagination{
				PageSize:   pageSize,
				PageNumber: pageNumber,
				TotalCount: total,
				TotalPages: int((total + int64(pageSize) - 1) / int64(pageSize)),
				Skip:       skip,
			},
		})
	}
}

type UpdateSettingRequest struct {
	IsEnabled *bool `json:"isEnabled"`
}

// PUT /api/reports/update-setting
func UpdateSettingHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := auth.UserID(c)
		if err != nil {
			return err
		}

		var body UpdateSettingRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
		if body.IsEnabled == nil {
			return fiber.NewError(fiber.StatusBadRequest, "isEnabled is required")
		}

		settings, err := UpdateSetting(db.WithContext(c.UserContext()), userID, *body.IsEnabled, time.Now().UTC())
		if err != nil {
			return err
		}

		return c.JSON(fiber.Map{
			"message": "Report setting updated successfully",
			"data":    settings,
		})
	}
}

// UpdateSetting toggles delivery for userID, creating the settings row for
// accounts that predate it. Enabling schedules the next report when none is
// pending.
func UpdateSetting(db *gorm.DB, userID uint, enabled bool, now time.Time) (*models.ReportSettings, error) {
	var settings models.ReportSettings
	err := db.Where("user_id = ?", userID).First(&settings).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		settings = models.ReportSettings{UserID: userID, Frequency: models.FrequencyMonthly}
	case err != nil:
		return nil, fmt.Errorf("load report settings: %w", err)
	}

	settings.IsEnabled = enabled
	if enabled && settings.NextReportDate == nil {
		next := daterange.StartOfNextMonth(now)
		settings.NextReportDate = &next
	}

	if err := db.Omit("User").Save(&settings).Error; err != nil {
		return nil, fmt.Errorf("save report settings: %w", err)
	}
	return &settings, nil
}
