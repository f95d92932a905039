package auth

import (
	"errors"
	"strings"
	"time"

	"fintrack-backend/internal/apperr"
	"fintrack-backend/internal/config"
	"fintrack-backend/internal/daterange"
	"fintrack-backend/internal/models"
	"fintrack-backend/internal/validation"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type RegisterRequest struct {
	Name     string `json:"name" validate:"required,max=255"`
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"min=4"`
}

func (r *RegisterRequest) Validate() error {
	r.Name = strings.TrimSpace(r.Name)
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	r.Password = strings.TrimSpace(r.Password)
	return validation.Struct(r).Err()
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"min=4"`
}

func (r *LoginRequest) Validate() error {
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	r.Password = strings.TrimSpace(r.Password)
	return validation.Struct(r).Err()
}

// Register creates the user and its report settings atomically.
func Register(db *gorm.DB, req RegisterRequest, now time.Time) (*models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperr.Internal("Could not hash password", err)
	}

	user := models.User{
		Name:     req.Name,
		Email:    req.Email,
		Password: string(hash),
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.User{}).Where("email = ?", user.Email).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return apperr.Conflict("User already exists")
		}

		if err := tx.Create(&user).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return apperr.Conflict("User already exists")
			}
			return err
		}

		next := daterange.StartOfNextMonth(now)
		settings := models.ReportSettings{
			UserID:         user.ID,
			Frequency:      models.FrequencyMonthly,
			IsEnabled:      true,
			NextReportDate: &next,
		}
		return tx.Create(&settings).Error
	})
	if err != nil {
		if _, ok := apperr.As(err); ok {
			return nil, err
		}
		return nil, apperr.Internal("Registration failed", err)
	}
	return &user, nil
}

// POST /api/auth/register
func RegisterHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body RegisterRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
		if err := body.Validate(); err != nil {
			return err
		}

		user, err := Register(db.WithContext(c.UserContext()), body, time.Now().UTC())
		if err != nil {
			return err
		}

		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"message": "User registered successfully",
			"data":    fiber.Map{"user": user},
		})
	}
}

// POST /api/auth/login
func LoginHandler(cfg *config.Config, db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body LoginRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
		if err := body.Validate(); err != nil {
			return err
		}

		var user models.User
		if err := db.WithContext(c.UserContext()).Where("email = ?", body.Email).First(&user).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.Unauthorized("Invalid email or password")
			}
			return err
		}

		if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(body.Password)); err != nil {
			return apperr.Unauthorized("Invalid email or password")
		}

		token, expiresAt, err := GenerateToken(cfg, &user, time.Now())
		if err != nil {
			return err
		}

		return c.JSON(fiber.Map{
			"message":     "User logged in successfully",
			"user":        user,
			"accessToken": token,
			"expiresAt":   expiresAt.UnixMilli(),
		})
	}
}
